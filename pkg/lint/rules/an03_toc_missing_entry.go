package rules

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "AN03",
		Name:        "toc.missing-entry",
		Group:       "toc",
		Description: "Heading is absent from the table of contents",
		Severity:    core.SeverityInfo,
		Check:       checkTOCMissingEntry,
		ConfigKeys:  []string{"min_level", "max_level"},
		Rationale:   "A hand-maintained contents block drifts as sections are added. Readers use it to judge what the article covers; a missing section is invisible to them.",
		Fix:         "Run sqldoc toc --write to regenerate the block, or add the entry by hand.",
	})
}

func checkTOCMissingEntry(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	toc := d.TOC()
	if toc == nil {
		return nil
	}
	minLevel := lint.GetIntOption(opts, "min_level", doc.DefaultTOCMinLevel)
	maxLevel := lint.GetIntOption(opts, "max_level", doc.DefaultTOCMaxLevel)

	listed := make(map[string]bool, len(toc.Entries))
	for _, e := range toc.Entries {
		listed[e.Anchor] = true
	}

	var diags []lint.Diagnostic
	for _, want := range doc.TOCForHeadings(d, minLevel, maxLevel) {
		// Headings above the block (the title, a Contents heading) are
		// not expected to list themselves.
		if want.Pos.Line <= toc.Pos.Line {
			continue
		}
		if listed[want.Anchor] {
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Message:     fmt.Sprintf("table of contents is missing %q (#%s)", want.Text, want.Anchor),
			Pos:         toc.Pos,
			ImpactScore: lint.ImpactLow.Score(),
		})
	}
	return diags
}
