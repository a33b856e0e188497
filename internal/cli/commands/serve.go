package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqldoc-labs/sqldoc/internal/site"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port int
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview the site locally with live reload",
		Long: `Serve builds the site in memory and serves it on a local HTTP server.

The server watches the docs directory, rebuilds on every change, and
live-reloads connected browsers. Nothing is written to disk; use build
for a deployable copy.`,
		Example: `  sqldoc serve               # preview on :8080
  sqldoc serve --port 3000   # preview on a custom port`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", 8080, "port to serve on")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx := NewCommandContextWithoutStore(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	if err := cfg.ValidateDirectories(); err != nil {
		return err
	}

	// Live preview never minifies; builds stay fast on every save.
	sopts := siteBuildOptions(cfg, &BuildOptions{Minify: false})
	srv := site.NewDevServer(cfg.ProjectRoot, cfg.Project(), sopts, opts.Port, cmdCtx.Logger)

	r.Printf("Previewing at http://localhost:%d\n", opts.Port)
	r.Muted("Watching for changes (Ctrl+C to stop)...")

	if err := srv.Serve(cmd.Context()); err != nil {
		return fmt.Errorf("preview server: %w", err)
	}
	return nil
}
