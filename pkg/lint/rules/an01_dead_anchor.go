package rules

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "AN01",
		Name:        "anchors.dead",
		Group:       "anchors",
		Description: "Link points at an anchor that does not exist in this document",
		Severity:    core.SeverityError,
		Check:       checkDeadAnchor,
		Rationale:   "Internal #anchors silently fall back to the top of the page when the target is missing. Long articles lean on them heavily, so a dead one strands the reader mid-argument.",
		BadExample:  "see [the spool section](#avoiding-spools)   <!-- heading says \"Avoiding the spool\" -->",
		GoodExample: "see [the spool section](#avoiding-the-spool)",
		Fix:         "Point the link at an existing heading anchor, or add an explicit <a id=\"...\"></a>.",
	})
}

func checkDeadAnchor(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	anchors := d.Anchors()

	var diags []lint.Diagnostic
	for _, l := range d.Links {
		rl, ok := d.ResolveLink(l)
		if !ok || rl.Kind != doc.TargetAnchor || rl.Fragment == "" {
			continue
		}
		if _, ok := anchors[rl.Fragment]; ok {
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Message:     fmt.Sprintf("anchor #%s does not match any heading or anchor in this document", rl.Fragment),
			Pos:         l.Pos,
			ImpactScore: lint.ImpactHigh.Score(),
		})
	}
	return diags
}
