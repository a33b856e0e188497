package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

// fixture writes files into a temp dir and parses name as the document
// under test. Other entries become resolvable neighbors for env lookups.
func fixture(t *testing.T, name, src string, neighbors map[string]string) (*doc.Document, lint.Env) {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range neighbors {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	full := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(src), 0o644))
	d, err := doc.ParseFile(full)
	require.NoError(t, err)
	return d, lint.NewFSEnv("tsql")
}

// messages extracts diagnostic messages for compact assertions.
func messages(diags []lint.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Message)
	}
	return out
}

func TestBuiltinRulesRegistered(t *testing.T) {
	ids := []string{
		"IM01", "IM03", "IM04", "IM05",
		"AN01", "AN02", "AN03", "AN04",
		"LN01", "LN02",
		"HD01", "HD02",
		"CB01", "CB02",
		"SQ01", "SQ02",
		"FM01", "FM02",
	}
	for _, id := range ids {
		def, ok := lint.Get(id)
		require.True(t, ok, "rule %s must be registered", id)
		assert.Equal(t, id, def.ID)
		assert.NotEmpty(t, def.Name)
		assert.NotEmpty(t, def.Group)
		assert.NotEmpty(t, def.Description)
		assert.NotNil(t, def.Check)
	}
	assert.GreaterOrEqual(t, lint.RuleCount(), len(ids))
}

// TestCleanArticlePasses runs the full rule set against a well-formed
// article and expects silence.
func TestCleanArticlePasses(t *testing.T) {
	src := `---
title: Clean article
dialect: tsql
---

# Clean article

- [Setup](#setup)
- [Queries](#queries)

## Setup

![Execution plan with a merge join](img/plan1.png)

See [the appendix](other.md#appendix) and [Queries](#queries).

## Queries

` + "```tsql" + `
SELECT TOP (10) OrderID, OrderDate
FROM Orders
ORDER BY OrderDate DESC;
` + "```" + `
`
	d, env := fixture(t, "article.md", src, map[string]string{
		"img/plan1.png": "png",
		"other.md":      "# Other\n\n## Appendix\n",
	})

	diags := lint.NewAnalyzer(lint.NewConfig()).AnalyzeDocument(d, env)
	assert.Empty(t, diags, "clean article must produce no diagnostics, got: %v", messages(diags))
}
