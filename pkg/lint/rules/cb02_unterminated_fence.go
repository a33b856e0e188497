package rules

import (
	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "CB02",
		Name:        "code.unterminated-fence",
		Group:       "code",
		Description: "Code fence is never closed",
		Severity:    core.SeverityError,
		Check:       checkUnterminatedFence,
		Rationale:   "An unclosed fence swallows the rest of the document into one code block, so everything after it renders as code instead of prose.",
		BadExample:  "```tsql\nSELECT 1\n\n## Next section",
		GoodExample: "```tsql\nSELECT 1\n```\n\n## Next section",
		Fix:         "Close the fence with a matching run of backticks or tildes.",
	})
}

func checkUnterminatedFence(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, cb := range d.CodeBlocks {
		if cb.Terminated {
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Message:     "code fence opened here is never closed",
			Pos:         cb.Pos,
			ImpactScore: lint.ImpactHigh.Score(),
		})
	}
	return diags
}
