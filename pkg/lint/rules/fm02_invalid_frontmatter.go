package rules

import (
	"errors"
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "FM02",
		Name:        "frontmatter.invalid",
		Group:       "frontmatter",
		Description: "Frontmatter fails strict parsing",
		Severity:    core.SeverityWarning,
		Check:       checkInvalidFrontmatter,
		Rationale:   "Frontmatter parsing is strict so that a typo like titel does not silently vanish. Custom fields belong under meta, where tooling knows to leave them alone.",
		BadExample:  "---\ntitel: My article\n---",
		GoodExample: "---\ntitle: My article\nmeta:\n  reviewed_by: jk\n---",
		Fix:         "Fix the YAML, correct the field name, or move custom fields under meta.",
	})
}

func checkInvalidFrontmatter(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	if d.FrontmatterErr == nil {
		return nil
	}

	pos := token.Position{Line: 1, Column: 1}
	msg := d.FrontmatterErr.Error()

	var parseErr *doc.FrontmatterParseError
	if errors.As(d.FrontmatterErr, &parseErr) {
		if parseErr.Line > 0 {
			pos.Line = parseErr.Line
		}
		msg = parseErr.Message
	}
	var unknown *doc.UnknownFieldError
	if errors.As(d.FrontmatterErr, &unknown) {
		msg = fmt.Sprintf("unknown frontmatter field %q; custom fields go under meta", unknown.Field)
	}

	return []lint.Diagnostic{{
		Message:     msg,
		Pos:         pos,
		ImpactScore: lint.ImpactHigh.Score(),
	}}
}
