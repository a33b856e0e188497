package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
	"github.com/sqldoc-labs/sqldoc/internal/project"
	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	lintproject "github.com/sqldoc-labs/sqldoc/pkg/lint/project"

	// Register the built-in document and project rules.
	_ "github.com/sqldoc-labs/sqldoc/pkg/lint/project/rules"
	_ "github.com/sqldoc-labs/sqldoc/pkg/lint/rules"
)

// doctorRunHistory is how many recent check runs the report includes.
const doctorRunHistory = 5

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run a comprehensive project health check",
		Long: `Doctor analyzes the whole project and reports on its health.

The report covers:
- Project summary (documents, words, snippets, assets, link structure)
- Health checks for every registered rule, grouped by category
- Health score (0-100)
- Actionable recommendations drawn from the failing rules
- Recent check runs from the state database

Unlike check, doctor always runs every rule at its default settings, so
the report shows the full picture even when sqldoc.yaml disables rules.

Output adapts to environment:
- Interactive terminal: styled text with colors
- Piped/redirected: markdown
- Use --format to override (text, markdown, json)`,
		Example: `  sqldoc doctor                  # full health report
  sqldoc doctor --format json    # machine-readable report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format for this command (text, markdown, json)")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         ProjectSummary `json:"summary"`
	HealthChecks    []HealthCheck  `json:"health_checks"`
	RecentRuns      []RunSummary   `json:"recent_runs,omitempty"`
	Score           int            `json:"score"`
	Recommendations []string       `json:"recommendations"`
	IssueCount      int            `json:"issue_count"`
}

// ProjectSummary contains project-level statistics.
type ProjectSummary struct {
	Documents int `json:"documents"`
	Drafts    int `json:"drafts"`
	Words     int `json:"words"`
	Snippets  int `json:"snippets"`
	Images    int `json:"images"`
	Assets    int `json:"assets"`
	LinkDepth int `json:"link_depth"`
	Roots     int `json:"roots"`
	Leaves    int `json:"leaves"`
	Links     int `json:"links"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	RuleID     string   `json:"rule_id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

// RunSummary is one line of check history.
type RunSummary struct {
	StartedAt   string `json:"started_at"`
	Status      string `json:"status"`
	DocsChecked int    `json:"docs_checked"`
	Errors      int    `json:"errors"`
	Warnings    int    `json:"warnings"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	if opts.Format != "" {
		mode, err := output.ParseMode(opts.Format)
		if err != nil {
			return err
		}
		cmdCtx.Renderer = output.NewRenderer(os.Stdout, os.Stderr, mode)
	}

	return doctorOnce(cmd.Context(), cmdCtx)
}

func doctorOnce(ctx context.Context, cmdCtx *CommandContext) error {
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	p, err := cmdCtx.LoadProject(ctx)
	if err != nil {
		return err
	}
	if len(p.Docs) == 0 {
		r.Warning("No documents found in project")
		return nil
	}

	// Doctor diagnoses the project as-is: every rule runs at its default
	// severity, including Starlark rules, regardless of sqldoc.yaml.
	registry, err := buildRuleRegistry(cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	analyzer := lint.NewAnalyzerWithRegistry(lint.NewConfig(), registry)
	env := project.NewEnv(p)

	var docDiags []lint.Diagnostic
	for _, res := range analyzeDocs(p, p.DocPaths(), analyzer, env) {
		docDiags = append(docDiags, res.Diagnostics...)
	}

	pcfg, err := lintproject.ConfigFromCore(nil)
	if err != nil {
		return err
	}
	projectDiags := lintproject.NewAnalyzer(pcfg).Analyze(p.Context())

	out := buildDoctorOutput(p, registry, docDiags, projectDiags)
	out.RecentRuns = loadRecentRuns(cmdCtx)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, out)
	default:
		return renderDoctorText(r, out)
	}
}

func buildDoctorOutput(p *project.Project, registry *lint.Registry, docDiags, projectDiags []lint.Diagnostic) *DoctorOutput {
	summary := buildProjectSummary(p)

	diagsByRule := make(map[string][]lint.Diagnostic)
	for _, d := range docDiags {
		diagsByRule[d.RuleID] = append(diagsByRule[d.RuleID], d)
	}
	for _, d := range projectDiags {
		diagsByRule[d.RuleID] = append(diagsByRule[d.RuleID], d)
	}

	var healthChecks []HealthCheck
	for _, rule := range registry.All() {
		healthChecks = append(healthChecks, buildHealthCheck(
			rule.ID, rule.Name, rule.Group, rule.Severity, diagsByRule[rule.ID]))
	}
	for _, rule := range lintproject.All() {
		healthChecks = append(healthChecks, buildHealthCheck(
			rule.ID, rule.Name, rule.Group, rule.Severity, diagsByRule[rule.ID]))
	}

	sort.Slice(healthChecks, func(i, j int) bool {
		if healthChecks[i].Group != healthChecks[j].Group {
			return healthChecks[i].Group < healthChecks[j].Group
		}
		return healthChecks[i].RuleID < healthChecks[j].RuleID
	})

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    healthChecks,
		Score:           calculateHealthScore(healthChecks, summary.Documents),
		Recommendations: generateRecommendations(healthChecks, registry),
		IssueCount:      len(docDiags) + len(projectDiags),
	}
}

func buildHealthCheck(id, name, group string, sev core.Severity, diags []lint.Diagnostic) HealthCheck {
	status := "pass"
	if len(diags) > 0 {
		if sev == core.SeverityError {
			status = "error"
		} else {
			status = "warn"
		}
	}

	details := make([]string, 0, len(diags))
	for _, d := range diags {
		details = append(details, formatDiagDetail(d))
	}

	return HealthCheck{
		RuleID:     id,
		Name:       name,
		Group:      group,
		Status:     status,
		IssueCount: len(diags),
		Details:    details,
	}
}

// formatDiagDetail renders one diagnostic as a report line. Document
// diagnostics carry a path and line; project diagnostics may carry neither.
func formatDiagDetail(d lint.Diagnostic) string {
	switch {
	case d.DocPath != "" && d.Pos.Line > 0:
		return fmt.Sprintf("%s:%d: %s", d.DocPath, d.Pos.Line, d.Message)
	case d.DocPath != "":
		return fmt.Sprintf("%s: %s", d.DocPath, d.Message)
	default:
		return d.Message
	}
}

func buildProjectSummary(p *project.Project) ProjectSummary {
	stats := p.Stats()
	g := p.Graph()

	return ProjectSummary{
		Documents: stats.Documents,
		Drafts:    stats.Drafts,
		Words:     stats.Words,
		Snippets:  stats.Snippets,
		Images:    stats.Images,
		Assets:    stats.Assets,
		LinkDepth: g.MaxDepth(p.Index),
		Roots:     len(g.Roots()),
		Leaves:    len(g.Leaves()),
		Links:     g.EdgeCount(),
	}
}

// calculateHealthScore computes a health score from 0-100. Errors count
// double, and in larger projects each individual issue weighs less.
func calculateHealthScore(checks []HealthCheck, docCount int) int {
	if len(checks) == 0 {
		return 100
	}

	score := 100.0

	basePenalty := 5.0
	if docCount > 10 {
		basePenalty = 3.0
	}
	if docCount > 50 {
		basePenalty = 2.0
	}
	if docCount > 100 {
		basePenalty = 1.0
	}

	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= float64(check.IssueCount) * basePenalty * 2
		case "warn":
			score -= float64(check.IssueCount) * basePenalty
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return int(score)
}

// generateRecommendations turns failing checks into the fixes their rules
// declare, deduplicated and capped at five.
func generateRecommendations(checks []HealthCheck, registry *lint.Registry) []string {
	var recommendations []string
	seen := make(map[string]bool)

	for _, check := range checks {
		if check.IssueCount == 0 {
			continue
		}
		rec := lookupFix(check.RuleID, registry)
		if rec != "" && !seen[rec] {
			recommendations = append(recommendations, rec)
			seen[rec] = true
		}
	}

	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}

	return recommendations
}

func lookupFix(ruleID string, registry *lint.Registry) string {
	if rule, ok := registry.Get(ruleID); ok {
		return rule.Fix
	}
	if rule, ok := lintproject.Get(ruleID); ok {
		return rule.Fix
	}
	return ""
}

// loadRecentRuns pulls the last few check runs from the state database.
// A missing or broken store just leaves the history section empty.
func loadRecentRuns(cmdCtx *CommandContext) []RunSummary {
	store, err := openStore(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		cmdCtx.Logger.Warn("state unavailable, run history omitted", "error", err)
		return nil
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(doctorRunHistory)
	if err != nil {
		cmdCtx.Logger.Warn("listing run history", "error", err)
		return nil
	}

	out := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunSummary{
			StartedAt:   run.StartedAt.Format("2006-01-02 15:04"),
			Status:      string(run.Status),
			DocsChecked: run.DocsChecked,
			Errors:      run.Counts.Errors,
			Warnings:    run.Counts.Warnings,
		})
	}
	return out
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	r.Println()
	r.Println(styles.Header1.Render("Project Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println()

	r.Println(styles.Header2.Render("Project Summary"))
	r.Printf("   Documents: %d (%d drafts) | Words: %d | Snippets: %d\n",
		out.Summary.Documents, out.Summary.Drafts, out.Summary.Words, out.Summary.Snippets)
	r.Printf("   Images: %d | Assets on disk: %d\n", out.Summary.Images, out.Summary.Assets)
	r.Printf("   Links: %d | Depth from index: %d | Roots: %d | Leaves: %d\n",
		out.Summary.Links, out.Summary.LinkDepth, out.Summary.Roots, out.Summary.Leaves)
	r.Println()

	r.Println(styles.Header2.Render("Health Checks"))
	r.Println()

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.StatusSuccess.Render("✓")
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.StatusFailed.Render("✗")
		}

		status := fmt.Sprintf("%s %s: %s", icon, check.RuleID, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d %s)", check.IssueCount, output.Pluralize(check.IssueCount, "issue", "issues"))
		}
		r.Println("   " + status)

		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println()

	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println()

	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println()
	}

	if len(out.RecentRuns) > 0 {
		r.Println(styles.Header2.Render("Recent Runs"))
		for _, run := range out.RecentRuns {
			statusStyle := styles.Success
			if run.Status != string(core.RunStatusPassed) {
				statusStyle = styles.Warning
			}
			r.Printf("   %s  %s  %d docs, %d errors, %d warnings\n",
				styles.Muted.Render(run.StartedAt),
				statusStyle.Render(fmt.Sprintf("%-7s", run.Status)),
				run.DocsChecked, run.Errors, run.Warnings)
		}
		r.Println()
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# Project Health Report")
	r.Println()

	r.Println("## Project Summary")
	r.Println()
	r.Printf("- **Documents**: %d (%d drafts)\n", out.Summary.Documents, out.Summary.Drafts)
	r.Printf("- **Words**: %d\n", out.Summary.Words)
	r.Printf("- **Snippets**: %d\n", out.Summary.Snippets)
	r.Printf("- **Images**: %d\n", out.Summary.Images)
	r.Printf("- **Assets on disk**: %d\n", out.Summary.Assets)
	r.Printf("- **Links**: %d (depth %d from the index)\n", out.Summary.Links, out.Summary.LinkDepth)
	r.Println()

	r.Println("## Health Checks")
	r.Println()

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + titleCaser.String(currentGroup))
			r.Println()
		}

		status := "PASS"
		switch check.Status {
		case "warn":
			status = "WARN"
		case "error":
			status = "ERROR"
		}

		r.Printf("- **[%s]** %s: %s", status, check.RuleID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d %s)", check.IssueCount, output.Pluralize(check.IssueCount, "issue", "issues"))
		}
		r.Println()

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println()

	r.Println("## Health Score")
	r.Println()
	r.Printf("**%d/100**\n", out.Score)
	r.Println()

	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println()
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println()
	}

	if len(out.RecentRuns) > 0 {
		r.Println("## Recent Runs")
		r.Println()
		for _, run := range out.RecentRuns {
			r.Printf("- %s: %s, %d docs, %d errors, %d warnings\n",
				run.StartedAt, run.Status, run.DocsChecked, run.Errors, run.Warnings)
		}
		r.Println()
	}

	return nil
}
