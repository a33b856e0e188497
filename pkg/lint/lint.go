// Package lint provides data-driven documentation linting.
//
// Rules are stateless RuleDef values registered from init() functions in
// pkg/lint/rules. The Analyzer runs every enabled rule against a parsed
// document and returns position-sorted diagnostics. Rules that need to look
// beyond the document itself (does a linked file exist, what anchors does a
// sibling document define) go through the Env interface, so the same rule
// set serves the project checker, the LSP server, and ad-hoc single-file
// runs.
//
// Project-wide rules (reachability, slug collisions, shared asset audits)
// live in pkg/lint/project and run over a Context built by
// internal/project.
package lint

import (
	"sort"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

// Sort orders diagnostics by document path, then line, then column, then
// rule ID. Analyzer output is already sorted; this is for callers that
// merge diagnostics from several sources.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.DocPath != b.DocPath {
			return a.DocPath < b.DocPath
		}
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		if a.Pos.Column != b.Pos.Column {
			return a.Pos.Column < b.Pos.Column
		}
		return a.RuleID < b.RuleID
	})
}

// Count tallies diagnostics by severity.
func Count(diags []Diagnostic) core.SeverityCounts {
	var counts core.SeverityCounts
	for _, d := range diags {
		counts.Add(d.Severity)
	}
	return counts
}

// HasBlocking reports whether any diagnostic is at or above the given
// severity threshold. Severities order Error < Warning < Info < Hint, so
// "at or above" means numerically less than or equal.
func HasBlocking(diags []Diagnostic, threshold core.Severity) bool {
	for _, d := range diags {
		if d.Severity <= threshold {
			return true
		}
	}
	return false
}
