package rules

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	"github.com/sqldoc-labs/sqldoc/pkg/lint/project"
)

func init() {
	project.Register(project.RuleDef{
		ID:          "PD01",
		Name:        "project.unreachable",
		Group:       "project",
		Description: "Document cannot be reached by following links from the index",
		Severity:    core.SeverityWarning,
		Check:       checkUnreachableDocument,
		Rationale:   "Readers land on the index and navigate by links. A page nothing links to is published but effectively invisible, which usually means a link was dropped during a restructure.",
		Fix:         "Link the document from the index or another reachable page, or delete it.",
	})
}

func checkUnreachableDocument(ctx *project.Context) []lint.Diagnostic {
	start := ctx.IndexPath()
	if _, ok := ctx.Doc(start); !ok {
		return nil
	}
	reached := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range ctx.LinksFrom(cur) {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}

	var diags []lint.Diagnostic
	for _, p := range ctx.DocPaths() {
		if reached[p] {
			continue
		}
		diags = append(diags, lint.Diagnostic{
			Message:     fmt.Sprintf("document is not reachable from %s", start),
			DocPath:     p,
			ImpactScore: lint.ImpactMedium.Score(),
		})
	}
	return diags
}
