package rules

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "AN04",
		Name:        "toc.out-of-order",
		Group:       "toc",
		Description: "Table of contents lists sections in a different order than the document",
		Severity:    core.SeverityInfo,
		Check:       checkTOCOrder,
		Rationale:   "Sections get reordered during editing and the contents block is forgotten. A contents list that contradicts the document order misleads more than it helps.",
		Fix:         "Run sqldoc toc --write to regenerate the block in document order.",
	})
}

func checkTOCOrder(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	toc := d.TOC()
	if toc == nil {
		return nil
	}
	order := make(map[string]int, len(d.Headings))
	for i, h := range d.Headings {
		if _, ok := order[h.Anchor]; !ok {
			order[h.Anchor] = i
		}
	}

	var diags []lint.Diagnostic
	last := -1
	for _, e := range toc.Entries {
		idx, ok := order[e.Anchor]
		if !ok {
			continue
		}
		if idx < last {
			diags = append(diags, lint.Diagnostic{
				Message:     fmt.Sprintf("contents entry %q appears after sections that follow it in the document", e.Text),
				Pos:         e.Pos,
				ImpactScore: lint.ImpactLow.Score(),
			})
			continue
		}
		last = idx
	}
	return diags
}
