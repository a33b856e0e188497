package rules

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "IM04",
		Name:        "images.offsite",
		Group:       "images",
		Description: "Image is served from outside the project",
		Severity:    core.SeverityWarning,
		Check:       checkOffsiteImage,
		ConfigKeys:  []string{"allow_external"},
		Rationale:   "External hosts disappear, hotlink-block, or rot; absolute paths break local preview and any deployment that is not rooted at /. Screenshots belong in the repository next to the prose they support.",
		BadExample:  "![Plan](https://i.imgur.com/abc123.png)",
		GoodExample: "![Plan](img/plan7.png)",
		Fix:         "Copy the image into the assets directory and reference it relatively. Set allow_external: true to permit external hosts.",
	})
}

func checkOffsiteImage(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	allowExternal := lint.GetBoolOption(opts, "allow_external", false)

	var diags []lint.Diagnostic
	for _, img := range d.Images {
		var msg string
		switch img.Kind {
		case doc.TargetExternal:
			if allowExternal {
				continue
			}
			msg = fmt.Sprintf("image %q is fetched from an external host", img.Source)
		case doc.TargetAbsolute:
			msg = fmt.Sprintf("image %q uses an absolute path", img.Source)
		default:
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Message:     msg,
			Pos:         img.Pos,
			ImpactScore: lint.ImpactMedium.Score(),
		})
	}
	return diags
}
