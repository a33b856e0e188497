package lint

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

// CheckFunc inspects a single document and returns diagnostics.
// env answers questions about the world around the document; opts carries
// rule options from configuration (keys listed in RuleDef.ConfigKeys).
type CheckFunc func(d *doc.Document, env Env, opts map[string]any) []Diagnostic

// RuleDef defines a document lint rule declaratively.
type RuleDef struct {
	// ID is the unique rule identifier (e.g. "IM01").
	ID string

	// Name is the human-readable rule name (e.g. "images.missing-file").
	Name string

	// Group is the category for grouping in output (e.g. "images").
	Group string

	// Description explains what the rule checks.
	Description string

	// Severity is the default severity (can be overridden in config).
	Severity core.Severity

	// Check is the function that performs the actual analysis.
	Check CheckFunc

	// ConfigKeys lists configuration options this rule accepts.
	ConfigKeys []string

	// Documentation fields surfaced by the rules command.
	Rationale   string
	BadExample  string
	GoodExample string
	Fix         string
}

// Diagnostic represents a single lint finding.
type Diagnostic struct {
	// RuleID identifies which rule produced this diagnostic.
	RuleID string `json:"rule_id"`

	// Severity after config overrides are applied.
	Severity core.Severity `json:"severity"`

	// Message is the human-readable description of the finding.
	Message string `json:"message"`

	// DocPath is the path of the file the finding is in, relative to the
	// project docs directory (or as given for single-file runs).
	DocPath string `json:"doc_path"`

	// Pos is the 1-based position where the finding starts.
	Pos token.Position `json:"pos"`

	// EndPos is the exclusive end of the finding, if known.
	EndPos token.Position `json:"end_pos,omitempty"`

	// DocumentationURL links to the online rule documentation.
	DocumentationURL string `json:"documentation_url,omitempty"`

	// ImpactScore estimates reader impact on a 0-100 scale.
	ImpactScore int `json:"impact_score,omitempty"`
}

// String formats the diagnostic as path:line:col: severity: message [ID].
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]",
		d.DocPath, d.Pos.Line, d.Pos.Column, d.Severity, d.Message, d.RuleID)
}

// FileInfo describes a file resolved through an Env.
type FileInfo struct {
	// Path is the resolved path, relative to the project docs directory
	// when the Env is project-backed, absolute otherwise.
	Path string

	// ActualName is the base name as it exists on disk.
	ActualName string

	// CaseMatches is false when the file was found only by a
	// case-insensitive match.
	CaseMatches bool

	// Size in bytes.
	Size int64
}

// Env answers questions a rule cannot answer from the document alone.
//
// Paths passed to ResolveFile and AnchorsIn are link targets as written in
// the document: slash-separated, relative to the document's own directory.
// Implementations must treat lookups as case-sensitive and report
// near-misses through FileInfo.CaseMatches, since published sites serve
// from case-sensitive hosts.
type Env interface {
	// ResolveFile resolves a relative target from the given document and
	// reports whether it exists.
	ResolveFile(d *doc.Document, target string) (FileInfo, bool)

	// AnchorsIn returns the anchors defined by the document at the given
	// relative target. ok is false when the target is missing or not a
	// markdown document.
	AnchorsIn(d *doc.Document, target string) (map[string]token.Position, bool)

	// DefaultDialect is the project's default SQL dialect for fenced
	// blocks that do not name one ("" means ansi).
	DefaultDialect() string
}

// GetRuleInfo converts a RuleDef to the shared metadata DTO.
func GetRuleInfo(def RuleDef) core.RuleInfo {
	return core.RuleInfo{
		ID:              def.ID,
		Name:            def.Name,
		Group:           def.Group,
		Description:     def.Description,
		DefaultSeverity: def.Severity,
		ConfigKeys:      def.ConfigKeys,
		Type:            "document",
		Rationale:       def.Rationale,
		BadExample:      def.BadExample,
		GoodExample:     def.GoodExample,
		Fix:             def.Fix,
	}
}
