package rules

import (
	"strings"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "IM03",
		Name:        "images.missing-alt",
		Group:       "images",
		Description: "Image has no alt text",
		Severity:    core.SeverityHint,
		Check:       checkMissingAlt,
		Rationale:   "Alt text is what screen readers and image-blocked clients get. For plan screenshots it should say what the plan shows, not that it is a screenshot.",
		BadExample:  "![](img/plan3.png)",
		GoodExample: "![Merge join with both inputs pre-sorted by index](img/plan3.png)",
		Fix:         "Describe what the image shows in the alt text.",
	})
}

func checkMissingAlt(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, img := range d.Images {
		if strings.TrimSpace(img.Alt) != "" {
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Message:     "image has no alt text",
			Pos:         img.Pos,
			ImpactScore: lint.ImpactLow.Score(),
		})
	}
	return diags
}
