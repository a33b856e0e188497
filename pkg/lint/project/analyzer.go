package project

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

// AnalyzerConfig controls which project rules run and at what severity.
type AnalyzerConfig struct {
	DisabledRules     map[string]bool
	SeverityOverrides map[string]core.Severity
}

// NewAnalyzerConfig creates a config with every rule enabled at default
// severity.
func NewAnalyzerConfig() *AnalyzerConfig {
	return &AnalyzerConfig{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]core.Severity),
	}
}

// ConfigFromCore builds an AnalyzerConfig from the lint.project section of
// sqldoc.yaml, where a severity of "off" disables a rule.
func ConfigFromCore(plc *core.ProjectLintConfig) (*AnalyzerConfig, error) {
	cfg := NewAnalyzerConfig()
	if plc == nil {
		return cfg, nil
	}
	for id, s := range plc.Rules {
		if s == "off" {
			cfg.DisabledRules[id] = true
			continue
		}
		sev, ok := core.ParseSeverity(s)
		if !ok {
			return nil, fmt.Errorf("lint.project.rules.%s: unknown severity %q", id, s)
		}
		cfg.SeverityOverrides[id] = sev
	}
	return cfg, nil
}

// Analyzer runs registered project rules with a given configuration.
type Analyzer struct {
	config *AnalyzerConfig
}

// NewAnalyzer creates a project analyzer. A nil config enables every rule
// at its default severity.
func NewAnalyzer(config *AnalyzerConfig) *Analyzer {
	if config == nil {
		config = NewAnalyzerConfig()
	}
	return &Analyzer{config: config}
}

// Analyze runs all enabled project rules and returns sorted diagnostics.
func (a *Analyzer) Analyze(ctx *Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, rule := range All() {
		if a.config.DisabledRules[rule.ID] {
			continue
		}
		sev := rule.Severity
		if override, ok := a.config.SeverityOverrides[rule.ID]; ok {
			sev = override
		}
		for _, diag := range rule.Check(ctx) {
			if diag.RuleID == "" {
				diag.RuleID = rule.ID
			}
			if diag.Pos.Line == 0 {
				diag.Pos.Line, diag.Pos.Column = 1, 1
			}
			if diag.DocumentationURL == "" {
				diag.DocumentationURL = lint.BuildDocURL(diag.RuleID)
			}
			diag.Severity = sev
			diags = append(diags, diag)
		}
	}
	lint.Sort(diags)
	return diags
}
