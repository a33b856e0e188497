package rules

import (
	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	"github.com/sqldoc-labs/sqldoc/pkg/sqlcheck"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "SQ01",
		Name:        "sql.syntax",
		Group:       "sql",
		Description: "SQL snippet fails structural checks",
		Severity:    core.SeverityError,
		Check:       checkSQLSyntax,
		Rationale:   "Readers copy snippets straight into a query window. A snippet with an unclosed string or a misplaced clause cannot run, and a snippet that cannot run costs the article its credibility.",
		BadExample:  "```tsql\nSELECT Name\nWHERE Price > 10\nFROM Products\n```",
		GoodExample: "```tsql\nSELECT Name\nFROM Products\nWHERE Price > 10\n```",
		Fix:         "Fix the snippet so it parses in the block's dialect.",
	})
}

func checkSQLSyntax(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	return sqlIssueDiagnostics(d, env, true, lint.ImpactCritical)
}

// sqlIssueDiagnostics runs snippet checking over every SQL block and keeps
// syntax or dialect findings depending on wantSyntax. Shared by SQ01/SQ02.
func sqlIssueDiagnostics(d *doc.Document, env lint.Env, wantSyntax bool, impact lint.ImpactLevel) []lint.Diagnostic {
	fallback := documentDialect(d, env)

	var diags []lint.Diagnostic
	for _, cb := range d.SQLBlocks() {
		if !cb.Terminated {
			continue
		}
		dl, ok := sqlcheck.SnippetDialect(cb, fallback)
		if !ok {
			continue
		}
		for _, issue := range sqlcheck.CheckSnippet(cb, dl) {
			if issue.IsSyntax() != wantSyntax {
				continue
			}
			diags = append(diags, lint.Diagnostic{
				Message:     issue.Message,
				Pos:         issue.Pos,
				ImpactScore: impact.Score(),
			})
		}
	}
	return diags
}

// documentDialect resolves the fallback dialect for a document's SQL
// blocks: frontmatter wins, then the project default.
func documentDialect(d *doc.Document, env lint.Env) string {
	if d.Frontmatter != nil && d.Frontmatter.Dialect != "" {
		return d.Frontmatter.Dialect
	}
	if env != nil {
		return env.DefaultDialect()
	}
	return ""
}
