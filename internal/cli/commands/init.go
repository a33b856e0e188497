package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new sqldoc project",
		Long: `Init scaffolds a documentation project: a sqldoc.yaml configuration
file, a docs directory with a landing page, and an image directory.

This creates:
  - sqldoc.yaml configuration file
  - docs/ directory with index.md
  - docs/img/ directory for screenshots and figures

Use --example to also get a starter article with a table of contents
and SQL snippets, plus a custom Starlark lint rule under rules/.`,
		Example: `  # Initialize in the current directory
  sqldoc init

  # Initialize with a starter article and custom rule
  sqldoc init --example

  # Initialize in a new directory
  sqldoc init my-articles --example

  # Force overwrite existing files
  sqldoc init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			if example {
				return runInitExample(r, dir, force)
			}
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Create a starter article and a custom lint rule")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("sqldoc project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Write articles in docs/, images in docs/img/")
	r.Println("  2. Run 'sqldoc check' to lint the project")
	r.Println("  3. Run 'sqldoc toc --write' to keep tables of contents current")
	r.Println("  4. Run 'sqldoc serve' to preview the site")

	return nil
}

func runInitExample(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("example", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("example")
	groups := groupTemplateFiles(files)

	r.Header(2, "Configuration")
	for _, f := range groups["config"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Documents")
	for _, f := range groups["docs"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Custom rules")
	for _, f := range groups["rules"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("sqldoc project initialized with a starter article!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  sqldoc check       Lint the documents and their SQL")
	r.Println("  sqldoc toc         Inspect tables of contents")
	r.Println("  sqldoc build       Render the static site")
	r.Println("  sqldoc serve       Preview with live reload")

	return nil
}

// prepareInitDir creates the target directory and refuses to scribble over
// an existing project unless --force is given.
func prepareInitDir(dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "sqldoc.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("sqldoc.yaml already exists. Use --force to overwrite")
	}
	return nil
}
