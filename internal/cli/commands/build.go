package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sqldoc-labs/sqldoc/internal/cli/config"
	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
	"github.com/sqldoc-labs/sqldoc/internal/site"
)

// BuildOptions holds options for the build command.
type BuildOptions struct {
	Format  string
	OutDir  string
	BaseURL string
	Minify  bool
}

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	opts := &BuildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the static site",
		Long: `Build renders every document to HTML and writes a deployable static
site: pages with shared navigation, the project's assets, minified CSS
and JS, and a manifest.json describing the build.

Draft documents (draft: true in the frontmatter) are left out. Heading
anchors on the generated pages match the anchors check validates, so a
clean check means working fragment links on the published site.

The output directory comes from the site section of sqldoc.yaml, the
--out flag, or defaults to _site under the project root.`,
		Example: `  sqldoc build                        # build to _site
  sqldoc build --out public           # build to a custom directory
  sqldoc build --base-url https://example.com/sql
  sqldoc build --format json          # print the build manifest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format for this command (text, markdown, json)")
	cmd.Flags().StringVar(&opts.OutDir, "out", "", "output directory (default: site.out_dir or _site)")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "base URL recorded in the manifest")
	cmd.Flags().BoolVar(&opts.Minify, "minify", true, "minify the generated CSS and JS")

	return cmd
}

func runBuild(cmd *cobra.Command, opts *BuildOptions) error {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	if opts.Format != "" {
		mode, err := output.ParseMode(opts.Format)
		if err != nil {
			return err
		}
		cmdCtx.Renderer = output.NewRenderer(os.Stdout, os.Stderr, mode)
	}

	return buildOnce(cmd.Context(), cmdCtx, opts)
}

func buildOnce(ctx context.Context, cmdCtx *CommandContext, opts *BuildOptions) error {
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	p, err := cmdCtx.LoadProject(ctx)
	if err != nil {
		return err
	}
	if renderParseErrors(r, p) {
		return fmt.Errorf("%d %s failed to parse", len(p.ParseErrors),
			output.Pluralize(len(p.ParseErrors), "document", "documents"))
	}

	sopts := siteBuildOptions(cfg, opts)
	built, err := site.NewBuilder(p, sopts, cmdCtx.Logger).Build()
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(built.Manifest)
	}

	outDir := resolveOutDir(cfg, sopts.OutDir)
	pages := len(built.Manifest.Documents)
	r.Success(fmt.Sprintf("Built %d %s (%d files) to %s",
		pages, output.Pluralize(pages, "page", "pages"), len(built.Files), outDir))
	r.Muted(fmt.Sprintf("Open %s in your browser", filepath.Join(outDir, filepath.FromSlash(built.IndexOutput))))
	return nil
}

// siteBuildOptions layers the build flags over the site section of
// sqldoc.yaml. Flags win.
func siteBuildOptions(cfg *config.Config, opts *BuildOptions) site.BuildOptions {
	sopts := site.BuildOptions{
		Title:  cfg.Title,
		Minify: opts.Minify,
	}
	if cfg.Site != nil {
		sopts.OutDir = cfg.Site.OutDir
		sopts.BaseURL = cfg.Site.BaseURL
	}
	if opts.OutDir != "" {
		sopts.OutDir = opts.OutDir
	}
	if opts.BaseURL != "" {
		sopts.BaseURL = opts.BaseURL
	}
	return sopts
}

// resolveOutDir mirrors how the builder places the output directory.
func resolveOutDir(cfg *config.Config, outDir string) string {
	if outDir == "" {
		outDir = site.DefaultOutDir
	}
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(cfg.ProjectRoot, outDir)
	}
	return outDir
}
