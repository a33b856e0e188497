package commands

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
	"github.com/sqldoc-labs/sqldoc/internal/project"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	lintproject "github.com/sqldoc-labs/sqldoc/pkg/lint/project"

	// Register the built-in document and project rules.
	_ "github.com/sqldoc-labs/sqldoc/pkg/lint/project/rules"
	_ "github.com/sqldoc-labs/sqldoc/pkg/lint/rules"
)

// excerptContext is how many source lines surround a finding in the
// detail view.
const excerptContext = 2

// BrowseOptions holds options for the browse command.
type BrowseOptions struct {
	Path string
}

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	opts := &BrowseOptions{}

	cmd := &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse findings in an interactive terminal UI",
		Long: `Browse runs the same analysis as check and opens the findings in an
interactive list: filter by typing, move with the arrow keys, and press
enter to see a finding in context with the source excerpt and the
suggested fix.

Browse needs an interactive terminal. In scripts and pipelines use
check, which renders the same findings as text, markdown, or JSON.`,
		Example: `  sqldoc browse                    # browse every finding
  sqldoc browse guides/joins.md    # browse one document`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			return runBrowse(cmd, opts)
		},
	}

	return cmd
}

func runBrowse(cmd *cobra.Command, opts *BrowseOptions) error {
	cmdCtx := NewCommandContextWithoutStore(cmd)
	r := cmdCtx.Renderer

	if !r.IsTTY() {
		return fmt.Errorf("browse needs an interactive terminal; use check instead")
	}

	items, docsChecked, err := collectBrowseItems(cmd.Context(), cmdCtx, opts.Path)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		r.Success(fmt.Sprintf("No issues found in %d %s",
			docsChecked, output.Pluralize(docsChecked, "document", "documents")))
		return nil
	}

	program := tea.NewProgram(newBrowseModel(items), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("browse UI: %w", err)
	}
	return nil
}

// browseItem is one finding prepared for the UI: the diagnostic plus the
// rule documentation and a pre-rendered source excerpt.
type browseItem struct {
	Diag     lint.Diagnostic
	RuleName string
	Group    string
	Fix      string
	Excerpt  string
}

// collectBrowseItems runs the full analysis and flattens the findings in
// reading order: documents sorted by path, project findings last.
func collectBrowseItems(ctx context.Context, cmdCtx *CommandContext, path string) ([]browseItem, int, error) {
	cfg := cmdCtx.Cfg

	p, err := cmdCtx.LoadProject(ctx)
	if err != nil {
		return nil, 0, err
	}

	registry, err := buildRuleRegistry(cfg, cmdCtx.Logger)
	if err != nil {
		return nil, 0, err
	}
	lintCfg, err := buildLintConfig(cfg, &CheckOptions{}, registry)
	if err != nil {
		return nil, 0, err
	}

	docPaths, err := selectDocs(p, path)
	if err != nil {
		return nil, 0, err
	}

	analyzer := lint.NewAnalyzerWithRegistry(lintCfg, registry)
	env := project.NewEnv(p)

	var items []browseItem
	for _, res := range analyzeDocs(p, docPaths, analyzer, env) {
		for _, d := range res.Diagnostics {
			items = append(items, newBrowseItem(d, registry, p))
		}
	}

	if isProjectLintEnabled(cfg) {
		projectDiags, err := analyzeProjectRules(cfg, &CheckOptions{}, p)
		if err != nil {
			return nil, 0, err
		}
		for _, d := range projectDiags {
			items = append(items, newBrowseItem(d, registry, p))
		}
	}

	return items, len(docPaths), nil
}

func newBrowseItem(d lint.Diagnostic, registry *lint.Registry, p *project.Project) browseItem {
	item := browseItem{Diag: d}
	if rule, ok := registry.Get(d.RuleID); ok {
		item.RuleName = rule.Name
		item.Group = rule.Group
		item.Fix = rule.Fix
	} else if rule, ok := lintproject.Get(d.RuleID); ok {
		item.RuleName = rule.Name
		item.Group = rule.Group
		item.Fix = rule.Fix
	}
	if doc, ok := p.Docs[d.DocPath]; ok && d.Pos.Line > 0 {
		item.Excerpt = sourceExcerpt(doc.Source, d.Pos.Line)
	}
	return item
}

// sourceExcerpt renders the lines around line with a marker, 1-based:
//
//	  12 │ SELECT *
//	> 13 │ FROM Products
func sourceExcerpt(source []byte, line int) string {
	lines := strings.Split(strings.ReplaceAll(string(source), "\r\n", "\n"), "\n")
	if line < 1 || line > len(lines) {
		return ""
	}

	start := line - excerptContext
	if start < 1 {
		start = 1
	}
	end := line + excerptContext
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	for n := start; n <= end; n++ {
		marker := "  "
		if n == line {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%4d │ %s\n", marker, n, lines[n-1])
	}
	return strings.TrimRight(b.String(), "\n")
}
