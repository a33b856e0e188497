package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	"github.com/sqldoc-labs/sqldoc/pkg/lint/project"
)

func init() {
	project.Register(project.RuleDef{
		ID:          "PD02",
		Name:        "project.duplicate-slug",
		Group:       "project",
		Description: "Two documents publish to the same site URL",
		Severity:    core.SeverityError,
		Check:       checkDuplicateSlug,
		Rationale:   "Site URLs are the lowercased document path. Sort-Spool.md and sort-spool.md coexist happily in the repository and then fight over one URL at publish time.",
		Fix:         "Rename one of the documents so their lowercased paths differ.",
	})
}

// siteSlug is the URL path a document publishes to, without extension.
func siteSlug(docPath string) string {
	return strings.ToLower(strings.TrimSuffix(docPath, ".md"))
}

func checkDuplicateSlug(ctx *project.Context) []lint.Diagnostic {
	bySlug := make(map[string][]string)
	for _, p := range ctx.DocPaths() {
		slug := siteSlug(p)
		bySlug[slug] = append(bySlug[slug], p)
	}
	slugs := make([]string, 0, len(bySlug))
	for slug := range bySlug {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	var diags []lint.Diagnostic
	for _, slug := range slugs {
		paths := bySlug[slug]
		if len(paths) < 2 {
			continue
		}
		for i, p := range paths {
			other := paths[(i+1)%len(paths)]
			diags = append(diags, lint.Diagnostic{
				Message:     fmt.Sprintf("publishes to %s.html, same URL as %q", slug, other),
				DocPath:     p,
				ImpactScore: lint.ImpactCritical.Score(),
			})
		}
	}
	return diags
}
