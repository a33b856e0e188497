package rules

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "LN01",
		Name:        "links.dead-file",
		Group:       "links",
		Description: "Relative link target does not exist",
		Severity:    core.SeverityError,
		Check:       checkDeadFileLink,
		Rationale:   "A relative link is a promise that the file ships with the article. Renames and moves break them without any visible change to the source document.",
		BadExample:  "[the join article](join-strategies.md)   <!-- renamed to sort-spool-join.md -->",
		GoodExample: "[the join article](sort-spool-join.md)",
		Fix:         "Update the link to the file's current path.",
	})
}

func checkDeadFileLink(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, l := range d.Links {
		rl, ok := d.ResolveLink(l)
		if !ok || rl.Kind != doc.TargetRelative || rl.Path == "" {
			continue
		}
		if _, ok := env.ResolveFile(d, rl.Path); !ok {
			diags = append(diags, lint.Diagnostic{
				Message:     fmt.Sprintf("linked file %q does not exist", rl.Path),
				Pos:         l.Pos,
				ImpactScore: lint.ImpactCritical.Score(),
			})
			continue
		}
		if rl.Fragment == "" {
			continue
		}
		anchors, ok := env.AnchorsIn(d, rl.Path)
		if !ok {
			continue
		}
		if _, found := anchors[rl.Fragment]; !found {
			diags = append(diags, lint.Diagnostic{
				Message:     fmt.Sprintf("anchor #%s does not exist in %q", rl.Fragment, rl.Path),
				Pos:         l.Pos,
				ImpactScore: lint.ImpactHigh.Score(),
			})
		}
	}
	return diags
}
