package rules

import (
	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "SQ02",
		Name:        "sql.dialect",
		Group:       "sql",
		Description: "SQL snippet uses syntax from a different dialect",
		Severity:    core.SeverityWarning,
		Check:       checkSQLDialect,
		Rationale:   "A LIMIT clause in a block tagged tsql fails the moment a reader pastes it into SQL Server Management Studio. Either the snippet or the tag is wrong.",
		BadExample:  "```tsql\nSELECT * FROM Orders LIMIT 10\n```",
		GoodExample: "```tsql\nSELECT TOP (10) * FROM Orders\n```",
		Fix:         "Rewrite the snippet for the tagged dialect, or retag the block.",
	})
}

func checkSQLDialect(d *doc.Document, env lint.Env, opts map[string]any) []lint.Diagnostic {
	return sqlIssueDiagnostics(d, env, false, lint.ImpactMedium)
}
