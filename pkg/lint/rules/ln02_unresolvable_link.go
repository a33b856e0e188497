package rules

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "LN02",
		Name:        "links.unresolvable",
		Group:       "links",
		Description: "Link has no usable target",
		Severity:    core.SeverityWarning,
		Check:       checkUnresolvableLink,
		Rationale:   "Empty targets, bare # fragments, undefined reference labels, and links from a document to itself all render as links but take the reader nowhere.",
		BadExample:  "[the docs][api-docs]   <!-- [api-docs]: never defined -->",
		GoodExample: "[the docs][api-docs]\n\n[api-docs]: https://example.com/api",
		Fix:         "Define the reference label, or give the link a real target.",
	})
}

func checkUnresolvableLink(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	self := filepath.Base(d.Path)

	var diags []lint.Diagnostic
	for _, l := range d.Links {
		rl, ok := d.ResolveLink(l)
		if !ok {
			diags = append(diags, lint.Diagnostic{
				Message:     fmt.Sprintf("reference link label %q is not defined", l.Label),
				Pos:         l.Pos,
				ImpactScore: lint.ImpactMedium.Score(),
			})
			continue
		}
		switch {
		case rl.Target == "":
			diags = append(diags, lint.Diagnostic{
				Message:     "link has an empty target",
				Pos:         l.Pos,
				ImpactScore: lint.ImpactMedium.Score(),
			})
		case rl.Kind == doc.TargetAnchor && rl.Fragment == "":
			diags = append(diags, lint.Diagnostic{
				Message:     `link target "#" names no anchor`,
				Pos:         l.Pos,
				ImpactScore: lint.ImpactMedium.Score(),
			})
		case rl.Kind == doc.TargetRelative && rl.Fragment == "" && rl.Path != "" && path.Clean(rl.Path) == self:
			diags = append(diags, lint.Diagnostic{
				Message:     fmt.Sprintf("link points at its own document %q", self),
				Pos:         l.Pos,
				ImpactScore: lint.ImpactMedium.Score(),
			})
		}
	}
	return diags
}
