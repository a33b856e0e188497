package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func TestSQ01SyntaxIssue(t *testing.T) {
	src := `---
title: T
dialect: tsql
---

# T

` + "```tsql" + `
SELECT (OrderID + 1
FROM Orders
` + "```" + `
`
	d := doc.Parse([]byte(src))
	diags := checkSQLSyntax(d, lint.NewFSEnv(""), nil)

	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unclosed parenthesis")
	assert.Equal(t, 9, diags[0].Pos.Line, "position maps to the markdown source line")
	assert.Equal(t, 8, diags[0].Pos.Column)
}

func TestSQ01CleanSnippet(t *testing.T) {
	src := "# T\n\n```tsql\nSELECT TOP (5) Name FROM Products ORDER BY Name;\n```\n"
	d := doc.Parse([]byte(src))
	assert.Empty(t, checkSQLSyntax(d, lint.NewFSEnv(""), nil))
}

func TestSQ01SkipsUnterminatedFence(t *testing.T) {
	src := "# T\n\n```tsql\nSELECT (1\n"
	d := doc.Parse([]byte(src))
	assert.Empty(t, checkSQLSyntax(d, lint.NewFSEnv(""), nil),
		"an unterminated fence is a CB02 finding; its content is not trustworthy SQL")
}

func TestSQ01IgnoresNonSQLBlocks(t *testing.T) {
	src := "# T\n\n```text\nthis is ( console output\n```\n"
	d := doc.Parse([]byte(src))
	assert.Empty(t, checkSQLSyntax(d, lint.NewFSEnv("tsql"), nil))
}

func TestSQ02ForeignFeature(t *testing.T) {
	src := "# T\n\n```tsql\nSELECT * FROM Orders LIMIT 10\n```\n"
	d := doc.Parse([]byte(src))

	syntax := checkSQLSyntax(d, lint.NewFSEnv(""), nil)
	assert.Empty(t, syntax, "a dialect mismatch is not a syntax defect")

	dialect := checkSQLDialect(d, lint.NewFSEnv(""), nil)
	require.Len(t, dialect, 1)
	assert.Contains(t, dialect[0].Message, "TOP")
	assert.Equal(t, 4, dialect[0].Pos.Line)
}

func TestSQ02FallbackDialectFromFrontmatter(t *testing.T) {
	src := `---
title: T
dialect: tsql
---

# T

` + "```sql" + `
SELECT * FROM Orders LIMIT 10
` + "```" + `
`
	d := doc.Parse([]byte(src))
	diags := checkSQLDialect(d, lint.NewFSEnv(""), nil)
	require.Len(t, diags, 1, "generic sql blocks take the frontmatter dialect")
	assert.Contains(t, diags[0].Message, "TOP")
}

func TestSQ02FallbackDialectFromEnv(t *testing.T) {
	src := "# T\n\n```sql\nSELECT * FROM Orders LIMIT 10\n```\n"
	d := doc.Parse([]byte(src))

	diags := checkSQLDialect(d, lint.NewFSEnv("tsql"), nil)
	require.Len(t, diags, 1, "generic sql blocks take the project dialect")

	diags = checkSQLDialect(d, lint.NewFSEnv("postgres"), nil)
	assert.Empty(t, diags, "LIMIT is native postgres")
}
