package rules

import (
	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "CB01",
		Name:        "code.missing-language",
		Group:       "code",
		Description: "Fenced code block has no language tag",
		Severity:    core.SeverityHint,
		Check:       checkMissingLanguage,
		Rationale:   "Untagged blocks get no syntax highlighting and are invisible to snippet checking. In a SQL article nearly every block is SQL or console output; say which.",
		BadExample:  "```\nSELECT * FROM Orders\n```",
		GoodExample: "```tsql\nSELECT * FROM Orders\n```",
		Fix:         "Add a language tag: tsql for SQL, text for console output.",
	})
}

func checkMissingLanguage(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, cb := range d.CodeBlocks {
		if cb.Info != "" {
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Message:     "fenced code block has no language tag",
			Pos:         cb.Pos,
			ImpactScore: lint.ImpactLow.Score(),
		})
	}
	return diags
}
