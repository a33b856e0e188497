package rules

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	"github.com/sqldoc-labs/sqldoc/pkg/lint/project"
)

func init() {
	project.Register(project.RuleDef{
		ID:          "PD03",
		Name:        "assets.case-divergence",
		Group:       "assets",
		Description: "Asset is referenced under more than one casing",
		Severity:    core.SeverityInfo,
		Check:       checkAssetCaseDivergence,
		Rationale:   "When half the documents write plan1.png and the other half Plan1.PNG, at most one spelling survives on a case-sensitive host. Per-document casing checks catch the mismatch against disk; this catches documents disagreeing with each other.",
		Fix:         "Pick the on-disk casing and use it everywhere.",
	})
}

func checkAssetCaseDivergence(ctx *project.Context) []lint.Diagnostic {
	var diags []lint.Diagnostic
	for _, p := range ctx.AssetPaths() {
		asset, _ := ctx.Asset(p)
		spellings := make(map[string]bool)
		for _, ref := range asset.Refs {
			spellings[path.Base(ref.Spelled)] = true
		}
		if len(spellings) < 2 {
			continue
		}
		names := make([]string, 0, len(spellings))
		for s := range spellings {
			names = append(names, s)
		}
		sort.Strings(names)
		diags = append(diags, lint.Diagnostic{
			Message:     fmt.Sprintf("referenced under %d casings (%s); file on disk is %q", len(names), strings.Join(names, ", "), path.Base(asset.Path)),
			DocPath:     asset.Path,
			ImpactScore: lint.ImpactLow.Score(),
		})
	}
	return diags
}
