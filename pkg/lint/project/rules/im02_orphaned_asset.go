package rules

import (
	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	"github.com/sqldoc-labs/sqldoc/pkg/lint/project"
)

func init() {
	project.Register(project.RuleDef{
		ID:          "IM02",
		Name:        "images.orphaned-asset",
		Group:       "images",
		Description: "Asset is not referenced by any document",
		Severity:    core.SeverityWarning,
		Check:       checkOrphanedAsset,
		Rationale:   "Plan screenshots accumulate as an article is rewritten. Orphans bloat the repository and the published site, and make it unclear which image is the current version of a figure.",
		Fix:         "Delete the file, or restore the reference that was meant to use it.",
	})
}

func checkOrphanedAsset(ctx *project.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, p := range ctx.AssetPaths() {
		asset, _ := ctx.Asset(p)
		if len(asset.Refs) > 0 {
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Message:     "asset is not referenced by any document",
			DocPath:     p,
			ImpactScore: lint.ImpactLow.Score(),
		})
	}
	return diags
}
