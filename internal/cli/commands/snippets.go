package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sqldoc-labs/sqldoc/internal/cli/config"
	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
	"github.com/sqldoc-labs/sqldoc/internal/project"
	"github.com/sqldoc-labs/sqldoc/internal/verify"
	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/sqlcheck"
)

// SnippetsOptions holds options shared by the snippets subcommands.
type SnippetsOptions struct {
	Path    string
	Format  string
	Dialect string
	Target  string
}

// NewSnippetsCommand creates the snippets command and its subcommands.
func NewSnippetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snippets",
		Short: "Work with the SQL snippets embedded in documents",
		Long: `Snippets extracts the fenced SQL blocks from the project's documents
and inspects them in increasing depth:

  list     inventory every snippet with its dialect and statement count
  check    run the offline structural checker against each snippet
  repl     paste SQL interactively and get the same verdicts
  verify   prepare each statement against a live database target

The offline checker needs no database: it lexes each snippet in its
dialect and verifies statement starters, clause order, paren and
CASE/BEGIN balance, and dialect portability. Verify goes further and
asks a real engine, using PREPARE so nothing ever executes.`,
		Example: `  sqldoc snippets list
  sqldoc snippets check
  sqldoc snippets repl --dialect tsql
  sqldoc snippets verify --target dev`,
	}

	cmd.AddCommand(newSnippetsListCommand())
	cmd.AddCommand(newSnippetsCheckCommand())
	cmd.AddCommand(newSnippetsREPLCommand())
	cmd.AddCommand(newSnippetsVerifyCommand())

	return cmd
}

func newSnippetsListCommand() *cobra.Command {
	opts := &SnippetsOptions{}

	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "List the SQL snippets found in documents",
		Example: `  sqldoc snippets list
  sqldoc snippets list sort-spool-join.md
  sqldoc snippets list --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			cmdCtx, err := snippetsContext(cmd, opts)
			if err != nil {
				return err
			}
			return snippetsList(cmd.Context(), cmdCtx, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format for this command (text, markdown, json)")
	return cmd
}

func newSnippetsCheckCommand() *cobra.Command {
	opts := &SnippetsOptions{}

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Check snippets offline, without a database",
		Long: `Check lexes every fenced SQL block in its dialect and reports
structural defects: statements that open with a non-keyword, SELECT
clauses out of order, unbalanced parentheses or CASE/BEGIN blocks, and
constructs foreign to the dialect, like LIMIT in T-SQL.

The same findings surface as SQ01/SQ02 diagnostics in sqldoc check;
this subcommand scopes the run to snippets and shows every finding
regardless of lint configuration.`,
		Example: `  sqldoc snippets check
  sqldoc snippets check sort-spool-join.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			cmdCtx, err := snippetsContext(cmd, opts)
			if err != nil {
				return err
			}
			return snippetsCheck(cmd.Context(), cmdCtx, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format for this command (text, markdown, json)")
	return cmd
}

func newSnippetsVerifyCommand() *cobra.Command {
	opts := &SnippetsOptions{}

	cmd := &cobra.Command{
		Use:   "verify [path]",
		Short: "Verify snippets against a live database target",
		Long: `Verify connects to a target from sqldoc.yaml and round-trips every
statement of every matching snippet through the engine's prepare path.
Nothing is executed; the engine checks syntax and referenced objects
and the statement is deallocated immediately.

Snippets in a dialect the target does not speak are skipped, not
failed. T-SQL targets are refused up front (no embeddable driver);
the offline checker still covers those snippets.`,
		Example: `  sqldoc snippets verify --target dev
  sqldoc snippets verify sort-spool-join.md --target duck`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			cmdCtx, err := snippetsContext(cmd, opts)
			if err != nil {
				return err
			}
			return snippetsVerify(cmd.Context(), cmdCtx, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format for this command (text, markdown, json)")
	cmd.Flags().StringVarP(&opts.Target, "target", "t", "", "target name from sqldoc.yaml (default: the only one defined)")
	return cmd
}

// snippetsContext builds the command context and applies the --format
// override shared by the snippets subcommands.
func snippetsContext(cmd *cobra.Command, opts *SnippetsOptions) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutStore(cmd)
	if opts.Format != "" {
		mode, err := output.ParseMode(opts.Format)
		if err != nil {
			return nil, err
		}
		cmdCtx.Renderer = output.NewRenderer(os.Stdout, os.Stderr, mode)
	}
	return cmdCtx, nil
}

// snippetRef is one fenced SQL block located in the project.
type snippetRef struct {
	DocPath string
	Index   int // 1-based within the document
	Block   doc.CodeBlock
	Doc     *doc.Document
}

// collectSnippets gathers the SQL blocks of the selected documents in
// document order.
func collectSnippets(p *project.Project, path string) ([]snippetRef, error) {
	docPaths, err := selectDocs(p, path)
	if err != nil {
		return nil, err
	}
	var refs []snippetRef
	for _, key := range docPaths {
		d := p.Docs[key]
		if d == nil {
			continue
		}
		for i, cb := range d.SQLBlocks() {
			refs = append(refs, snippetRef{DocPath: key, Index: i + 1, Block: cb, Doc: d})
		}
	}
	return refs, nil
}

// snippetFallbackDialect resolves the default dialect for one document:
// frontmatter wins, then the project default.
func snippetFallbackDialect(p *project.Project, d *doc.Document) string {
	if d.Frontmatter != nil && d.Frontmatter.Dialect != "" {
		return d.Frontmatter.Dialect
	}
	return p.Dialect
}

func snippetsList(ctx context.Context, cmdCtx *CommandContext, opts *SnippetsOptions) error {
	r := cmdCtx.Renderer

	p, err := cmdCtx.LoadProject(ctx)
	if err != nil {
		return err
	}
	refs, err := collectSnippets(p, opts.Path)
	if err != nil {
		return err
	}

	infos := make([]output.SnippetInfo, 0, len(refs))
	for _, ref := range refs {
		info := output.SnippetInfo{
			Doc:   ref.DocPath,
			Line:  ref.Block.Pos.Line,
			Lines: countLines(ref.Block.Content),
		}
		if sd, ok := sqlcheck.SnippetDialect(ref.Block, snippetFallbackDialect(p, ref.Doc)); ok {
			info.Dialect = sd.Name
			info.Statements = len(verify.SplitStatements(ref.Block.Content, sd))
		} else {
			info.Dialect = ref.Block.Lang
		}
		infos = append(infos, info)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}

	if len(infos) == 0 {
		r.Muted("No SQL snippets found")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Document", "Line", "Dialect", "Stmts", "Lines"})
	for _, info := range infos {
		t.AppendRow(table.Row{info.Doc, info.Line, info.Dialect, info.Statements, info.Lines})
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}

	r.Printf("%d %s in %d %s\n",
		len(infos), output.Pluralize(len(infos), "snippet", "snippets"),
		countDocs(infos), output.Pluralize(countDocs(infos), "document", "documents"))
	return nil
}

func snippetsCheck(ctx context.Context, cmdCtx *CommandContext, opts *SnippetsOptions) error {
	r := cmdCtx.Renderer

	p, err := cmdCtx.LoadProject(ctx)
	if err != nil {
		return err
	}
	refs, err := collectSnippets(p, opts.Path)
	if err != nil {
		return err
	}

	type snippetFinding struct {
		ref    snippetRef
		issues []sqlcheck.Issue
	}

	infos := make([]output.SnippetInfo, 0, len(refs))
	var findings []snippetFinding
	for _, ref := range refs {
		info := output.SnippetInfo{
			Doc:   ref.DocPath,
			Line:  ref.Block.Pos.Line,
			Lines: countLines(ref.Block.Content),
		}

		if !ref.Block.Terminated {
			info.Status = "failed"
			info.Error = "code fence is never closed"
			findings = append(findings, snippetFinding{ref: ref, issues: []sqlcheck.Issue{{
				Pos: ref.Block.Pos, Code: "fence", Message: "code fence is never closed",
			}}})
			infos = append(infos, info)
			continue
		}

		sd, ok := sqlcheck.SnippetDialect(ref.Block, snippetFallbackDialect(p, ref.Doc))
		if !ok {
			info.Status = "skipped"
			info.Error = "unknown dialect"
			infos = append(infos, info)
			continue
		}
		info.Dialect = sd.Name
		info.Statements = len(verify.SplitStatements(ref.Block.Content, sd))

		issues := sqlcheck.CheckSnippet(ref.Block, sd)
		if len(issues) == 0 {
			info.Status = "ok"
		} else {
			info.Status = "failed"
			msgs := make([]string, 0, len(issues))
			for _, issue := range issues {
				msgs = append(msgs, issue.Message)
			}
			info.Error = strings.Join(msgs, "; ")
			findings = append(findings, snippetFinding{ref: ref, issues: issues})
		}
		infos = append(infos, info)
	}

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(infos); err != nil {
			return err
		}
		if len(findings) > 0 {
			return fmt.Errorf("snippet check failed")
		}
		return nil
	}

	if len(infos) == 0 {
		r.Muted("No SQL snippets found")
		return nil
	}

	if len(findings) == 0 {
		r.Success(fmt.Sprintf("%d %s pass in %d %s",
			len(infos), output.Pluralize(len(infos), "snippet", "snippets"),
			countDocs(infos), output.Pluralize(countDocs(infos), "document", "documents")))
		return nil
	}

	styles := r.Styles()
	for _, f := range findings {
		r.Println()
		r.Printf("%s %s\n",
			styles.DocPath.Render(f.ref.DocPath),
			styles.Muted.Render(fmt.Sprintf("(snippet %d, line %d)", f.ref.Index, f.ref.Block.Pos.Line)))
		for _, issue := range f.issues {
			r.Printf("  %s  %s  %s\n",
				styles.Muted.Render(fmt.Sprintf("%-5s", fmt.Sprintf("%d:%d", issue.Pos.Line, issue.Pos.Column))),
				styles.Code.Render(issue.Code),
				issue.Message)
		}
	}
	r.Println()
	return fmt.Errorf("%d of %d %s failed",
		len(findings), len(infos), output.Pluralize(len(infos), "snippet", "snippets"))
}

func snippetsVerify(ctx context.Context, cmdCtx *CommandContext, opts *SnippetsOptions) error {
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	target, targetName, err := resolveTarget(cfg, opts.Target)
	if err != nil {
		return err
	}

	p, err := cmdCtx.LoadProject(ctx)
	if err != nil {
		return err
	}
	docPaths, err := selectDocs(p, opts.Path)
	if err != nil {
		return err
	}

	v, err := verify.New(target, cmdCtx.Logger)
	if err != nil {
		return err
	}
	if err := v.Connect(ctx, target); err != nil {
		return fmt.Errorf("connecting to target %q: %w", targetName, err)
	}
	defer func() { _ = v.Close() }()

	runner := verify.NewRunner(v, cmdCtx.Logger)
	var results []verify.Result
	for _, key := range docPaths {
		d := p.Docs[key]
		if d == nil {
			continue
		}
		results = append(results, runner.VerifyDocument(ctx, key, d, snippetFallbackDialect(p, d))...)
	}

	return renderVerifyResults(r, results, targetName)
}

// resolveTarget picks the named target, or the only one defined when the
// name is empty.
func resolveTarget(cfg *config.Config, name string) (core.TargetConfig, string, error) {
	names := cfg.TargetNames()
	sort.Strings(names)

	if name != "" {
		t := cfg.Target(name)
		if t == nil {
			return core.TargetConfig{}, "", fmt.Errorf("target %q not found in sqldoc.yaml (defined: %s)",
				name, strings.Join(names, ", "))
		}
		return *t, name, nil
	}

	switch len(names) {
	case 0:
		return core.TargetConfig{}, "", fmt.Errorf("no targets defined in sqldoc.yaml; add a targets section to use verify")
	case 1:
		return *cfg.Target(names[0]), names[0], nil
	default:
		return core.TargetConfig{}, "", fmt.Errorf("multiple targets defined (%s); pick one with --target",
			strings.Join(names, ", "))
	}
}

func renderVerifyResults(r *output.Renderer, results []verify.Result, targetName string) error {
	okCount, failed, skipped := verify.Count(results)

	if r.EffectiveMode() == output.ModeJSON {
		infos := make([]output.SnippetInfo, 0, len(results))
		for _, res := range results {
			infos = append(infos, output.SnippetInfo{
				Doc:        res.DocPath,
				Line:       res.Pos.Line,
				Dialect:    res.Dialect,
				Statements: res.Statements,
				Status:     string(res.Status),
				Error:      res.Detail,
			})
		}
		if err := r.JSON(infos); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("snippet verification failed")
		}
		return nil
	}

	if len(results) == 0 {
		r.Muted("No SQL snippets found")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Document", "#", "Dialect", "Stmts", "Status", "Detail"})
	for _, res := range results {
		t.AppendRow(table.Row{res.DocPath, res.Index, res.Dialect, res.Statements, string(res.Status), res.Detail})
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}

	summary := fmt.Sprintf("target %s: %d ok, %d failed, %d skipped", targetName, okCount, failed, skipped)
	if failed > 0 {
		r.Error(summary)
		return fmt.Errorf("%d %s failed verification", failed, output.Pluralize(failed, "snippet", "snippets"))
	}
	r.Success(summary)
	return nil
}

func countLines(s string) int {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func countDocs(infos []output.SnippetInfo) int {
	seen := make(map[string]bool)
	for _, info := range infos {
		seen[info.Doc] = true
	}
	return len(seen)
}
