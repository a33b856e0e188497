package rules

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "IM01",
		Name:        "images.missing-file",
		Group:       "images",
		Description: "Referenced image file does not exist",
		Severity:    core.SeverityError,
		Check:       checkMissingImage,
		Rationale:   "A missing image renders as a broken placeholder in the published article. Execution-plan screenshots carry the argument; a dead one guts the section it illustrates.",
		BadExample:  "![Sort operator](img/plan-sort.png)   <!-- img/plan-sort.png was never committed -->",
		GoodExample: "![Sort operator](img/plan1.png)",
		Fix:         "Commit the image under the assets directory, or correct the path.",
	})
}

func checkMissingImage(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, img := range d.Images {
		if img.Kind != doc.TargetRelative || img.Path == "" {
			continue
		}
		if _, ok := env.ResolveFile(d, img.Path); ok {
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Message:     fmt.Sprintf("image file %q does not exist", img.Path),
			Pos:         img.Pos,
			ImpactScore: lint.ImpactCritical.Score(),
		})
	}
	return diags
}
