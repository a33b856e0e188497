package lint

import (
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
)

// Analyzer runs registered document rules with a given configuration.
type Analyzer struct {
	config   *Config
	registry *Registry
}

// NewAnalyzer creates an analyzer over the default registry.
// A nil config enables every rule at its default severity.
func NewAnalyzer(config *Config) *Analyzer {
	return &Analyzer{config: config, registry: defaultRegistry}
}

// NewAnalyzerWithRegistry creates an analyzer over a specific registry.
// Used by tests that need isolation from the global rule set.
func NewAnalyzerWithRegistry(config *Config, reg *Registry) *Analyzer {
	return &Analyzer{config: config, registry: reg}
}

// AnalyzeDocument runs all enabled rules against one document and returns
// position-sorted diagnostics.
func (a *Analyzer) AnalyzeDocument(d *doc.Document, env Env) []Diagnostic {
	var diags []Diagnostic
	for _, rule := range a.registry.All() {
		if a.config.IsDisabled(rule.ID) {
			continue
		}
		opts := a.config.GetRuleOptions(rule.ID)
		for _, diag := range rule.Check(d, env, opts) {
			diags = append(diags, a.finish(rule, d, diag))
		}
	}
	Sort(diags)
	return diags
}

// AnalyzeDocuments runs all enabled rules against each document. Output is
// sorted by path, line, then rule ID.
func (a *Analyzer) AnalyzeDocuments(docs []*doc.Document, env Env) []Diagnostic {
	var diags []Diagnostic
	for _, d := range docs {
		diags = append(diags, a.AnalyzeDocument(d, env)...)
	}
	Sort(diags)
	return diags
}

// finish fills defaults and applies configuration overrides.
func (a *Analyzer) finish(rule RuleDef, d *doc.Document, diag Diagnostic) Diagnostic {
	if diag.RuleID == "" {
		diag.RuleID = rule.ID
	}
	if diag.DocPath == "" {
		diag.DocPath = d.Path
	}
	if diag.Pos.Line == 0 {
		diag.Pos.Line, diag.Pos.Column = 1, 1
	}
	if diag.DocumentationURL == "" {
		diag.DocumentationURL = BuildDocURL(diag.RuleID)
	}
	diag.Severity = a.config.GetSeverity(rule.ID, rule.Severity)
	return diag
}
