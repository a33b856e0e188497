package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqldoc-labs/sqldoc/internal/cli/config"
	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
	"github.com/sqldoc-labs/sqldoc/internal/project"
	"github.com/sqldoc-labs/sqldoc/internal/rulescript"
	"github.com/sqldoc-labs/sqldoc/internal/state"
	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	lintproject "github.com/sqldoc-labs/sqldoc/pkg/lint/project"

	// Register the built-in document and project rules.
	_ "github.com/sqldoc-labs/sqldoc/pkg/lint/project/rules"
	_ "github.com/sqldoc-labs/sqldoc/pkg/lint/rules"
)

// checkRunRetention is how many completed runs the state database keeps.
const checkRunRetention = 50

// watchExts lists the file extensions that trigger a re-check in watch mode.
var watchExts = []string{".md", ".star", ".yaml", ".yml"}

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Path        string
	Format      string
	Disable     []string
	Severity    string
	Rules       []string
	Changed     bool
	SkipProject bool
	Watch       bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Check documents for style and consistency issues",
		Long: `Check runs lint rules against the Markdown documents of a project.

Document rules inspect each file in isolation: frontmatter, heading
structure, table of contents, prose conventions, and the SQL inside
fenced snippets. Project rules inspect the corpus as a whole:
cross-document links, orphaned assets, and index coverage.

An optional path argument narrows checking to one document or one
directory. Custom rules written in Starlark are loaded from the rules
directory and may shadow built-ins with the same ID.

Every run is recorded in the local state database so later invocations
can report history (doctor) and skip unchanged documents (--changed).
State failures never block checking; they degrade to a warning.

Output adapts to environment:
- Interactive terminal: styled text with colors
- Piped/redirected: markdown
- Use --output to override (auto, text, markdown, json)`,
		Example: `  sqldoc check                          # check every document
  sqldoc check guides/indexing.md       # check a single document
  sqldoc check --changed                # only documents changed since last run
  sqldoc check --severity error         # report errors, ignore the rest
  sqldoc check --rule SN01 --rule SN02  # run two rules only
  sqldoc check --watch                  # re-check whenever files change`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format for this command (text, markdown, json)")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "rule IDs to disable (repeatable)")
	cmd.Flags().StringVar(&opts.Severity, "severity", "warning", "minimum severity to report (error, warning, info, hint)")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "run only the listed rule IDs (repeatable)")
	cmd.Flags().BoolVar(&opts.Changed, "changed", false, "check only documents changed since the last recorded run")
	cmd.Flags().BoolVar(&opts.SkipProject, "skip-project", false, "skip project-wide rules")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "watch the docs and rules directories and re-check on change")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions) error {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	if opts.Format != "" {
		mode, err := output.ParseMode(opts.Format)
		if err != nil {
			return err
		}
		cmdCtx.Renderer = output.NewRenderer(os.Stdout, os.Stderr, mode)
	}

	if _, ok := core.ParseSeverity(opts.Severity); !ok {
		return fmt.Errorf("invalid severity %q (valid: error, warning, info, hint)", opts.Severity)
	}

	if opts.Watch {
		return runCheckWatch(cmd.Context(), cmdCtx, opts)
	}

	hasIssues, err := checkOnce(cmd.Context(), cmdCtx, opts)
	if err != nil {
		return err
	}
	if hasIssues {
		// Non-zero exit for CI; the findings are already rendered.
		return fmt.Errorf("check issues found")
	}
	return nil
}

// runCheckWatch re-runs the check whenever a watched file changes. Findings
// do not end the loop; only a config or I/O failure does.
func runCheckWatch(ctx context.Context, cmdCtx *CommandContext, opts *CheckOptions) error {
	r := cmdCtx.Renderer

	pass := func() {
		if _, err := checkOnce(ctx, cmdCtx, opts); err != nil {
			r.Error(err.Error())
		}
	}
	pass()

	dirs := []string{cmdCtx.Cfg.DocsDir}
	if cmdCtx.Cfg.RulesDir != "" {
		if info, err := os.Stat(cmdCtx.Cfg.RulesDir); err == nil && info.IsDir() {
			dirs = append(dirs, cmdCtx.Cfg.RulesDir)
		}
	}

	r.Println()
	r.Muted("Watching for changes (Ctrl+C to stop)...")

	err := project.Watch(ctx, dirs, watchExts, cmdCtx.Logger, func() {
		r.Println()
		pass()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// checkFileResult groups the diagnostics of one document for rendering.
type checkFileResult struct {
	Path        string
	Diagnostics []lint.Diagnostic
}

func checkOnce(ctx context.Context, cmdCtx *CommandContext, opts *CheckOptions) (bool, error) {
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	p, err := cmdCtx.LoadProject(ctx)
	if err != nil {
		return false, err
	}

	registry, err := buildRuleRegistry(cfg, cmdCtx.Logger)
	if err != nil {
		return false, err
	}

	lintCfg, err := buildLintConfig(cfg, opts, registry)
	if err != nil {
		return false, err
	}

	docPaths, err := selectDocs(p, opts.Path)
	if err != nil {
		return false, err
	}

	var store *state.Store
	if st, serr := openStore(cfg, cmdCtx.Logger); serr != nil {
		r.Warning(fmt.Sprintf("state unavailable, run not recorded: %v", serr))
	} else {
		store = st
		defer func() { _ = store.Close() }()
	}

	hashes := contentHashes(p, docPaths)
	if opts.Changed {
		docPaths = filterChanged(store, docPaths, hashes)
	}

	analyzer := lint.NewAnalyzerWithRegistry(lintCfg, registry)
	env := project.NewEnv(p)
	results := analyzeDocs(p, docPaths, analyzer, env)

	var projectDiags []lint.Diagnostic
	if !opts.SkipProject && isProjectLintEnabled(cfg) {
		projectDiags, err = analyzeProjectRules(cfg, opts, p)
		if err != nil {
			return false, err
		}
	}

	recordCheckRun(cmdCtx, store, results, projectDiags, len(docPaths), hashes)

	// The severity threshold narrows reporting, not history.
	reported := make([]checkFileResult, 0, len(results))
	for _, res := range results {
		diags := filterBySeverity(res.Diagnostics, opts.Severity)
		if len(diags) > 0 {
			reported = append(reported, checkFileResult{Path: res.Path, Diagnostics: diags})
		}
	}
	projectReported := filterBySeverity(projectDiags, opts.Severity)

	hadParseErrors := renderParseErrors(r, p)
	hasIssues := renderCheckResults(r, reported, projectReported, len(docPaths))

	return hasIssues || hadParseErrors, nil
}

// buildRuleRegistry loads Starlark rules from the rules directory and lays
// them over the built-in registry. Script rules shadow built-ins by ID.
func buildRuleRegistry(cfg *config.Config, logger *slog.Logger) (*lint.Registry, error) {
	defs, err := rulescript.NewLoader(cfg.RulesDir, logger).Load()
	if err != nil {
		return nil, err
	}
	return rulescript.BuildRegistry(defs), nil
}

// buildLintConfig layers CLI flags over the lint section of sqldoc.yaml.
// Flags win: --disable adds to the disabled set, and --rule disables every
// registered rule it does not name.
func buildLintConfig(cfg *config.Config, opts *CheckOptions, registry *lint.Registry) (*lint.Config, error) {
	lintCfg, err := lint.FromCore(cfg.Lint)
	if err != nil {
		return nil, err
	}

	for _, id := range opts.Disable {
		lintCfg.Disable(strings.TrimSpace(id))
	}

	if len(opts.Rules) > 0 {
		keep := make(map[string]bool, len(opts.Rules))
		for _, id := range opts.Rules {
			keep[strings.TrimSpace(id)] = true
		}
		for _, rule := range registry.All() {
			if keep[rule.ID] {
				delete(lintCfg.DisabledRules, rule.ID)
			} else {
				lintCfg.Disable(rule.ID)
			}
		}
	}

	return lintCfg, nil
}

// isProjectLintEnabled reports whether project rules should run. Absent
// configuration means enabled.
func isProjectLintEnabled(cfg *config.Config) bool {
	if cfg.Lint == nil {
		return true
	}
	return cfg.Lint.Project.IsEnabled()
}

func analyzeProjectRules(cfg *config.Config, opts *CheckOptions, p *project.Project) ([]lint.Diagnostic, error) {
	var plc *core.ProjectLintConfig
	if cfg.Lint != nil {
		plc = cfg.Lint.Project
	}
	pcfg, err := lintproject.ConfigFromCore(plc)
	if err != nil {
		return nil, err
	}

	for _, id := range opts.Disable {
		pcfg.DisabledRules[strings.TrimSpace(id)] = true
	}
	if len(opts.Rules) > 0 {
		keep := make(map[string]bool, len(opts.Rules))
		for _, id := range opts.Rules {
			keep[strings.TrimSpace(id)] = true
		}
		for _, rule := range lintproject.All() {
			if keep[rule.ID] {
				delete(pcfg.DisabledRules, rule.ID)
			} else {
				pcfg.DisabledRules[rule.ID] = true
			}
		}
	}

	return lintproject.NewAnalyzer(pcfg).Analyze(p.Context()), nil
}

// selectDocs returns the sorted doc keys to check, narrowed by an optional
// path. The path may be spelled relative to the working directory, relative
// to the docs directory, or absolute; a directory selects everything under it.
func selectDocs(p *project.Project, path string) ([]string, error) {
	keys := p.DocPaths()
	if path == "" {
		return keys, nil
	}

	norm := normalizeDocPath(p, path)
	var out []string
	for _, key := range keys {
		if key == norm || strings.HasPrefix(key, norm+"/") {
			out = append(out, key)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no documents match %q", path)
	}
	return out, nil
}

func normalizeDocPath(p *project.Project, path string) string {
	raw := filepath.ToSlash(strings.TrimSuffix(path, "/"))
	abs, err := filepath.Abs(path)
	if err != nil {
		return raw
	}
	rel, err := filepath.Rel(p.DocsDir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return raw
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), "/")
}

func analyzeDocs(p *project.Project, keys []string, analyzer *lint.Analyzer, env lint.Env) []checkFileResult {
	var results []checkFileResult
	for _, key := range keys {
		d, ok := p.Docs[key]
		if !ok {
			continue
		}
		diags := analyzer.AnalyzeDocument(d, env)
		for i := range diags {
			// Report docs-relative paths, not absolute ones.
			diags[i].DocPath = key
		}
		if len(diags) > 0 {
			results = append(results, checkFileResult{Path: key, Diagnostics: diags})
		}
	}
	return results
}

// contentHashes reads each selected document and hashes its bytes for change
// tracking. Unreadable files are left out and re-checked next time.
func contentHashes(p *project.Project, keys []string) map[string]string {
	hashes := make(map[string]string, len(keys))
	for _, key := range keys {
		data, err := os.ReadFile(p.AbsPath(key))
		if err != nil {
			continue
		}
		hashes[key] = project.ContentHash(data)
	}
	return hashes
}

// filterChanged keeps only documents whose content hash differs from the one
// recorded by the previous run. Without a store everything is checked.
func filterChanged(store *state.Store, keys []string, hashes map[string]string) []string {
	if store == nil {
		return keys
	}
	var out []string
	for _, key := range keys {
		hash, ok := hashes[key]
		if !ok {
			out = append(out, key)
			continue
		}
		prev, err := store.GetContentHash(key)
		if err != nil || prev != hash {
			out = append(out, key)
		}
	}
	return out
}

// recordCheckRun persists run history and content hashes. The severity
// threshold does not apply here: history keeps every finding. Failures are
// logged and otherwise ignored.
func recordCheckRun(cmdCtx *CommandContext, store *state.Store, results []checkFileResult, projectDiags []lint.Diagnostic, docsChecked int, hashes map[string]string) {
	if store == nil {
		return
	}
	logger := cmdCtx.Logger

	run, err := store.CreateRun(cmdCtx.Cfg.ProjectRoot)
	if err != nil {
		cmdCtx.Renderer.Warning(fmt.Sprintf("check history not recorded: %v", err))
		return
	}

	var counts core.SeverityCounts
	var recs []core.DiagnosticRecord
	collect := func(docPath string, d lint.Diagnostic) {
		counts.Add(d.Severity)
		recs = append(recs, core.DiagnosticRecord{
			RunID:    run.ID,
			DocPath:  docPath,
			RuleID:   d.RuleID,
			Severity: d.Severity.String(),
			Message:  d.Message,
			Line:     d.Pos.Line,
			Column:   d.Pos.Column,
		})
	}
	for _, res := range results {
		for _, d := range res.Diagnostics {
			collect(res.Path, d)
		}
	}
	for _, d := range projectDiags {
		collect(d.DocPath, d)
	}

	if err := store.RecordDiagnostics(run.ID, recs); err != nil {
		logger.Warn("recording diagnostics", "error", err)
	}
	if err := store.SetDocsChecked(run.ID, docsChecked); err != nil {
		logger.Warn("recording docs checked", "error", err)
	}

	status := core.RunStatusPassed
	if counts.Errors > 0 || counts.Warnings > 0 {
		status = core.RunStatusFailed
	}
	if err := store.CompleteRun(run.ID, status, counts); err != nil {
		logger.Warn("completing run", "error", err)
	}

	for path, hash := range hashes {
		if err := store.SetContentHash(path, hash); err != nil {
			logger.Warn("recording content hash", "path", path, "error", err)
			break
		}
	}

	if _, err := store.DeleteOldRuns(checkRunRetention); err != nil {
		logger.Warn("pruning run history", "error", err)
	}
}

// filterBySeverity keeps diagnostics at or above the threshold. Severity
// values are ordered error < warning < info < hint.
func filterBySeverity(diags []lint.Diagnostic, severity string) []lint.Diagnostic {
	threshold, ok := core.ParseSeverity(severity)
	if !ok {
		threshold = core.SeverityWarning
	}
	var out []lint.Diagnostic
	for _, d := range diags {
		if d.Severity <= threshold {
			out = append(out, d)
		}
	}
	return out
}

// renderParseErrors reports documents that could not be read or parsed.
// They count as issues for the exit code.
func renderParseErrors(r *output.Renderer, p *project.Project) bool {
	if len(p.ParseErrors) == 0 {
		return false
	}
	for _, pe := range p.ParseErrors {
		r.Error(fmt.Sprintf("%s: %v", pe.Path, pe.Err))
	}
	return true
}

// renderCheckResults reports per-document and project findings and returns
// whether any were found.
func renderCheckResults(r *output.Renderer, results []checkFileResult, projectDiags []lint.Diagnostic, filesAnalyzed int) bool {
	var counts core.SeverityCounts
	for _, res := range results {
		for _, d := range res.Diagnostics {
			counts.Add(d.Severity)
		}
	}
	for _, d := range projectDiags {
		counts.Add(d.Severity)
	}
	totalIssues := counts.Total()

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(buildCheckJSON(results, projectDiags, counts, filesAnalyzed)); err != nil {
			r.Error(err.Error())
			return true
		}
		return totalIssues > 0
	}

	if totalIssues == 0 {
		if filesAnalyzed == 0 {
			r.Success("Nothing to check")
		} else {
			r.Success(fmt.Sprintf("No issues found in %d %s",
				filesAnalyzed, output.Pluralize(filesAnalyzed, "document", "documents")))
		}
		return false
	}

	styles := r.Styles()
	for _, res := range results {
		r.Println()
		r.Println(styles.DocPath.Render(res.Path))
		for _, d := range res.Diagnostics {
			loc := "-"
			if d.Pos.Line > 0 {
				loc = fmt.Sprintf("%d:%d", d.Pos.Line, d.Pos.Column)
			}
			r.Printf("  %s  %s  %s  %s\n",
				styles.Muted.Render(fmt.Sprintf("%-5s", loc)),
				severityStyle(r, d.Severity),
				styles.Bold.Render(d.RuleID),
				d.Message)
		}
	}

	if len(projectDiags) > 0 {
		r.Println()
		r.Println(styles.Bold.Render("Project:"))
		for _, d := range projectDiags {
			msg := d.Message
			if d.DocPath != "" {
				msg = fmt.Sprintf("%s: %s", d.DocPath, d.Message)
			}
			r.Printf("  %s  %s  %s\n",
				severityStyle(r, d.Severity),
				styles.Bold.Render(d.RuleID),
				msg)
		}
	}

	r.Println()
	var parts []string
	if counts.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", counts.Errors, output.Pluralize(counts.Errors, "error", "errors")))
	}
	if counts.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", counts.Warnings, output.Pluralize(counts.Warnings, "warning", "warnings")))
	}
	if counts.Infos > 0 {
		parts = append(parts, fmt.Sprintf("%d info", counts.Infos))
	}
	if counts.Hints > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", counts.Hints, output.Pluralize(counts.Hints, "hint", "hints")))
	}
	r.Printf("Summary: %s in %d %s\n",
		strings.Join(parts, ", "),
		filesAnalyzed, output.Pluralize(filesAnalyzed, "document", "documents"))

	return true
}

func buildCheckJSON(results []checkFileResult, projectDiags []lint.Diagnostic, counts core.SeverityCounts, filesAnalyzed int) output.CheckOutput {
	out := output.CheckOutput{
		Summary: output.CheckSummary{
			FilesAnalyzed: filesAnalyzed,
			TotalIssues:   counts.Total(),
			Errors:        counts.Errors,
			Warnings:      counts.Warnings,
			Info:          counts.Infos,
			Hints:         counts.Hints,
		},
		Files: make([]output.CheckFileResult, 0, len(results)),
	}
	for _, res := range results {
		file := output.CheckFileResult{
			Path:        res.Path,
			Diagnostics: make([]output.CheckDiagnostic, 0, len(res.Diagnostics)),
		}
		for _, d := range res.Diagnostics {
			file.Diagnostics = append(file.Diagnostics, checkDiagnosticJSON(d))
		}
		out.Files = append(out.Files, file)
	}
	for _, d := range projectDiags {
		jd := checkDiagnosticJSON(d)
		jd.Path = d.DocPath
		out.Project = append(out.Project, jd)
	}
	return out
}

func checkDiagnosticJSON(d lint.Diagnostic) output.CheckDiagnostic {
	return output.CheckDiagnostic{
		RuleID:           d.RuleID,
		Severity:         d.Severity.String(),
		Message:          d.Message,
		Line:             d.Pos.Line,
		Column:           d.Pos.Column,
		DocumentationURL: d.DocumentationURL,
	}
}

func severityStyle(r *output.Renderer, sev core.Severity) string {
	styles := r.Styles()
	switch sev {
	case core.SeverityError:
		return styles.Error.Render("error  ")
	case core.SeverityWarning:
		return styles.Warning.Render("warning")
	case core.SeverityInfo:
		return styles.Info.Render("info   ")
	case core.SeverityHint:
		return styles.Hint.Render("hint   ")
	default:
		return sev.String()
	}
}
