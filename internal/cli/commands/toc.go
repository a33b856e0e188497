package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
)

// TOCOptions holds options for the toc command.
type TOCOptions struct {
	Path     string
	Format   string
	Write    bool
	Check    bool
	MinLevel int
	MaxLevel int
}

// NewTOCCommand creates the toc command.
func NewTOCCommand() *cobra.Command {
	opts := &TOCOptions{}

	cmd := &cobra.Command{
		Use:   "toc [path]",
		Short: "Generate or update document tables of contents",
		Long: `Toc derives the canonical table of contents of a document from its
headings and either prints it, rewrites the document in place, or
verifies that the one on disk is current.

The canonical TOC lists every heading between --min-level and
--max-level in document order, as a bullet list of anchor links. With
--write the document is updated atomically; an existing TOC block is
replaced, otherwise the list is inserted after the first level-1
heading. With --check nothing is written and a stale TOC makes the
command exit non-zero, which is the mode CI wants.

An optional path argument narrows the command to one document or one
directory; the default is every document in the project.`,
		Example: `  sqldoc toc                       # print the TOC of every document
  sqldoc toc sort-spool-join.md    # print one document's TOC
  sqldoc toc --write               # rewrite stale TOCs in place
  sqldoc toc --check               # fail if any TOC is out of date`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			return runTOC(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format for this command (text, markdown, json)")
	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "rewrite documents whose TOC is out of date")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "exit non-zero if any TOC is out of date, write nothing")
	cmd.Flags().IntVar(&opts.MinLevel, "min-level", doc.DefaultTOCMinLevel, "smallest heading level included")
	cmd.Flags().IntVar(&opts.MaxLevel, "max-level", doc.DefaultTOCMaxLevel, "largest heading level included")
	cmd.MarkFlagsMutuallyExclusive("write", "check")

	return cmd
}

func runTOC(cmd *cobra.Command, opts *TOCOptions) error {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	if opts.Format != "" {
		mode, err := output.ParseMode(opts.Format)
		if err != nil {
			return err
		}
		cmdCtx.Renderer = output.NewRenderer(os.Stdout, os.Stderr, mode)
	}

	return tocOnce(cmd.Context(), cmdCtx, opts)
}

func tocOnce(ctx context.Context, cmdCtx *CommandContext, opts *TOCOptions) error {
	r := cmdCtx.Renderer

	minLevel, maxLevel := opts.MinLevel, opts.MaxLevel
	if minLevel == 0 {
		minLevel = doc.DefaultTOCMinLevel
	}
	if maxLevel == 0 {
		maxLevel = doc.DefaultTOCMaxLevel
	}
	if minLevel < 1 || maxLevel < minLevel {
		return fmt.Errorf("invalid heading range %d..%d", minLevel, maxLevel)
	}

	p, err := cmdCtx.LoadProject(ctx)
	if err != nil {
		return err
	}

	docPaths, err := selectDocs(p, opts.Path)
	if err != nil {
		return err
	}

	var results []output.TOCDocResult
	var stale []string
	for _, key := range docPaths {
		d := p.Docs[key]
		if d == nil {
			continue
		}
		entries := doc.TOCForHeadings(d, minLevel, maxLevel)
		if len(entries) == 0 {
			continue
		}

		updated, changed := doc.UpdateTOC(d, minLevel, maxLevel)
		res := output.TOCDocResult{Path: key, Stale: changed}
		for _, e := range entries {
			res.Entries = append(res.Entries, output.TOCEntry{Text: e.Text, Anchor: e.Anchor, Level: e.Level})
		}
		results = append(results, res)

		if changed {
			stale = append(stale, key)
			if opts.Write {
				if err := renameio.WriteFile(p.AbsPath(key), updated, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", key, err)
				}
			}
		}
	}

	switch {
	case opts.Check:
		return renderTOCCheck(r, results, stale, len(docPaths))
	case opts.Write:
		return renderTOCWrite(r, stale, len(docPaths))
	default:
		return renderTOCPrint(r, opts, results)
	}
}

// renderTOCCheck reports stale documents and fails if any were found.
func renderTOCCheck(r *output.Renderer, results []output.TOCDocResult, stale []string, docsScanned int) error {
	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(results); err != nil {
			return err
		}
		if len(stale) > 0 {
			return fmt.Errorf("toc out of date")
		}
		return nil
	}

	if len(stale) == 0 {
		r.Success(fmt.Sprintf("TOC up to date in %d %s",
			docsScanned, output.Pluralize(docsScanned, "document", "documents")))
		return nil
	}
	for _, path := range stale {
		r.Error(fmt.Sprintf("%s: TOC out of date (run: sqldoc toc --write %s)", path, path))
	}
	return fmt.Errorf("toc out of date in %d %s",
		len(stale), output.Pluralize(len(stale), "document", "documents"))
}

func renderTOCWrite(r *output.Renderer, stale []string, docsScanned int) error {
	if len(stale) == 0 {
		r.Success(fmt.Sprintf("TOC already current in %d %s",
			docsScanned, output.Pluralize(docsScanned, "document", "documents")))
		return nil
	}
	styles := r.Styles()
	for _, path := range stale {
		r.Printf("%s %s\n", styles.Success.Render("updated"), styles.DocPath.Render(path))
	}
	r.Println()
	r.Success(fmt.Sprintf("Updated %d of %d %s",
		len(stale), docsScanned, output.Pluralize(docsScanned, "document", "documents")))
	return nil
}

func renderTOCPrint(r *output.Renderer, opts *TOCOptions, results []output.TOCDocResult) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(results)
	}

	if len(results) == 0 {
		r.Muted("No headings to list")
		return nil
	}

	styles := r.Styles()
	for i, res := range results {
		if i > 0 {
			r.Println()
		}
		// A single named document prints bare so the list can be pasted.
		if len(results) > 1 || opts.Path == "" {
			r.Println(styles.DocPath.Render(res.Path))
		}
		var entries []doc.TOCEntry
		for _, e := range res.Entries {
			entries = append(entries, doc.TOCEntry{Text: e.Text, Anchor: e.Anchor, Level: e.Level})
		}
		r.Printf("%s", doc.FormatTOC(entries))
	}
	return nil
}
