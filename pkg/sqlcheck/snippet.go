package sqlcheck

import (
	"github.com/sqldoc-labs/sqldoc/pkg/dialect"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
)

// CheckSnippet validates a fenced SQL block and remaps every issue position
// from snippet-relative to document-relative, so diagnostics point at the
// Markdown source line the offending SQL sits on.
func CheckSnippet(cb doc.CodeBlock, d *dialect.Dialect) []Issue {
	issues := Check(cb.Content, d)
	for i := range issues {
		issues[i].Pos.Line += cb.ContentPos.Line - 1
		issues[i].Pos.Offset += cb.ContentPos.Offset
	}
	return issues
}

// SnippetDialect resolves the dialect for a fenced block: a dialect-named
// language tag wins, the generic "sql" tag and unknown tags fall back to the
// given default. Reports false only when no dialect can be resolved at all.
func SnippetDialect(cb doc.CodeBlock, fallback string) (*dialect.Dialect, bool) {
	if cb.Lang != "" && cb.Lang != "sql" {
		if d, ok := dialect.Get(cb.Lang); ok {
			return d, true
		}
	}
	if fallback != "" {
		if d, ok := dialect.Get(fallback); ok {
			return d, true
		}
	}
	return dialect.Get("ansi")
}
