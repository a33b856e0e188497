package rules

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "IM05",
		Name:        "images.case-mismatch",
		Group:       "images",
		Description: "Image path casing differs from the file on disk",
		Severity:    core.SeverityWarning,
		Check:       checkImageCase,
		Rationale:   "Case-insensitive filesystems make the article look fine locally while the published site, served from a case-sensitive host, shows a broken image.",
		BadExample:  "![Plan](img/Plan1.PNG)   <!-- on disk: img/plan1.png -->",
		GoodExample: "![Plan](img/plan1.png)",
		Fix:         "Match the reference to the exact on-disk casing.",
	})
}

func checkImageCase(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, img := range d.Images {
		if img.Kind != doc.TargetRelative || img.Path == "" {
			continue
		}
		fi, ok := env.ResolveFile(d, img.Path)
		if !ok || fi.CaseMatches {
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Message:     fmt.Sprintf("image path %q does not match on-disk casing (file is %q)", img.Path, fi.ActualName),
			Pos:         img.Pos,
			ImpactScore: lint.ImpactHigh.Score(),
		})
	}
	return diags
}
