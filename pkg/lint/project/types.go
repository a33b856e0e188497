package project

import (
	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

// CheckFunc inspects the whole project and returns diagnostics. Rules must
// set DocPath on every diagnostic since there is no ambient document.
type CheckFunc func(ctx *Context) []lint.Diagnostic

// RuleDef defines a project-wide lint rule declaratively.
type RuleDef struct {
	// ID is the unique rule identifier (e.g. "PD01").
	ID string

	// Name is the human-readable rule name (e.g. "project.unreachable").
	Name string

	// Group is the category for grouping in output.
	Group string

	// Description explains what the rule checks.
	Description string

	// Severity is the default severity (can be overridden in config).
	Severity core.Severity

	// Check performs the analysis over the project context.
	Check CheckFunc

	// ConfigKeys lists configuration options this rule accepts.
	ConfigKeys []string

	// Documentation fields surfaced by the rules command.
	Rationale   string
	BadExample  string
	GoodExample string
	Fix         string
}

// GetRuleInfo converts a project RuleDef to the shared metadata DTO.
func GetRuleInfo(def RuleDef) core.RuleInfo {
	return core.RuleInfo{
		ID:              def.ID,
		Name:            def.Name,
		Group:           def.Group,
		Description:     def.Description,
		DefaultSeverity: def.Severity,
		ConfigKeys:      def.ConfigKeys,
		Type:            "project",
		Rationale:       def.Rationale,
		BadExample:      def.BadExample,
		GoodExample:     def.GoodExample,
		Fix:             def.Fix,
	}
}
