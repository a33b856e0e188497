package rules

import (
	"strings"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "FM01",
		Name:        "frontmatter.missing-title",
		Group:       "frontmatter",
		Description: "Document has no usable frontmatter title",
		Severity:    core.SeverityWarning,
		Check:       checkMissingTitle,
		ConfigKeys:  []string{"require"},
		Rationale:   "The frontmatter title feeds the page <title>, the site index, and import tooling. Without it the document falls back to its first heading or, worse, its filename.",
		BadExample:  "---\nauthor: jk\n---",
		GoodExample: "---\ntitle: How to avoid sorting and spooling\nauthor: jk\n---",
		Fix:         "Add a title field to the frontmatter block.",
	})
}

func checkMissingTitle(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	if d.FrontmatterErr != nil {
		return nil
	}
	require := lint.GetBoolOption(opts, "require", true)

	if d.Frontmatter == nil || !d.Frontmatter.Present {
		if !require {
			return nil
		}
		return []lint.Diagnostic{{
			Message:     "document has no frontmatter; add a block with at least a title",
			ImpactScore: lint.ImpactMedium.Score(),
		}}
	}
	if strings.TrimSpace(d.Frontmatter.Title) == "" {
		return []lint.Diagnostic{{
			Message:     "frontmatter has no title",
			ImpactScore: lint.ImpactMedium.Score(),
		}}
	}
	return nil
}
