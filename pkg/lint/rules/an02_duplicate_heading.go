package rules

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "AN02",
		Name:        "anchors.duplicate-heading",
		Group:       "anchors",
		Description: "Repeated heading text makes anchor suffixes unstable",
		Severity:    core.SeverityWarning,
		Check:       checkDuplicateHeading,
		Rationale:   "Two headings named \"Results\" get anchors #results and #results-1, and which is which depends on document order. Reordering a section silently retargets every link to the suffixed anchor.",
		BadExample:  "## Results\n...\n## Results",
		GoodExample: "## Results with the index\n...\n## Results without the index",
		Fix:         "Make heading text unique within the document.",
	})
}

func checkDuplicateHeading(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	first := make(map[string]token.Position)

	var diags []lint.Diagnostic
	for _, h := range d.Headings {
		base := doc.Slugify(h.Text)
		if base == "" {
			continue
		}
		if prev, ok := first[base]; ok {
			diags = append(diags, lint.Diagnostic{
				Message:     fmt.Sprintf("heading %q repeats the heading at line %d; its anchor shifted to #%s", h.Text, prev.Line, h.Anchor),
				Pos:         h.Pos,
				ImpactScore: lint.ImpactMedium.Score(),
			})
			continue
		}
		first[base] = h.Pos
	}
	return diags
}
