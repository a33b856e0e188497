package rules

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "HD02",
		Name:        "headings.level-skip",
		Group:       "headings",
		Description: "Heading level increases by more than one",
		Severity:    core.SeverityWarning,
		Check:       checkLevelSkip,
		Rationale:   "Jumping from h2 to h4 breaks outline navigation and the generated contents block, and usually means a heading was demoted for its font size rather than its place in the structure.",
		BadExample:  "## Join strategies\n#### Nested loops",
		GoodExample: "## Join strategies\n### Nested loops",
		Fix:         "Use the next heading level down, and style with CSS if the size is wrong.",
	})
}

func checkLevelSkip(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	var diags []lint.Diagnostic
	prev := 0
	for _, h := range d.Headings {
		if prev > 0 && h.Level > prev+1 {
			diags = append(diags, lint.Diagnostic{
				Message:     fmt.Sprintf("heading level jumps from h%d to h%d", prev, h.Level),
				Pos:         h.Pos,
				ImpactScore: lint.ImpactLow.Score(),
			})
		}
		prev = h.Level
	}
	return diags
}
