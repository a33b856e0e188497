package rules

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "HD01",
		Name:        "headings.multiple-h1",
		Group:       "headings",
		Description: "Document has more than one top-level heading",
		Severity:    core.SeverityWarning,
		Check:       checkMultipleH1,
		Rationale:   "The first h1 is the document title in rendered output and search results. A second one usually marks a section that belongs at h2, or a document that wants splitting.",
		BadExample:  "# Avoiding sorts\n...\n# Avoiding spools",
		GoodExample: "# Avoiding sorts and spools\n\n## Avoiding sorts\n...\n## Avoiding spools",
		Fix:         "Demote extra h1 headings, or split the document.",
	})
}

func checkMultipleH1(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	var firstLine int
	var diags []lint.Diagnostic
	for _, h := range d.Headings {
		if h.Level != 1 {
			continue
		}
		if firstLine == 0 {
			firstLine = h.Pos.Line
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Message:     fmt.Sprintf("second top-level heading %q; the title is at line %d", h.Text, firstLine),
			Pos:         h.Pos,
			ImpactScore: lint.ImpactMedium.Score(),
		})
	}
	return diags
}
