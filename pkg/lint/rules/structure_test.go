package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func TestHD01MultipleH1(t *testing.T) {
	src := "# One\n# Two\n# Three\n"
	d := doc.Parse([]byte(src))

	diags := checkMultipleH1(d, lint.NewFSEnv(""), nil)
	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Message, `"Two"`)
	assert.Contains(t, diags[0].Message, "line 1")
	assert.Equal(t, 2, diags[0].Pos.Line)
	assert.Equal(t, 3, diags[1].Pos.Line)
}

func TestHD01SingleH1Clean(t *testing.T) {
	src := "# Only\n\n## Section\n"
	d := doc.Parse([]byte(src))
	assert.Empty(t, checkMultipleH1(d, lint.NewFSEnv(""), nil))
}

func TestHD02LevelSkip(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		lines []int
	}{
		{"h1 to h4", "# T\n#### Deep\n", []int{2}},
		{"h2 to h4 later", "## A\n### B\n## C\n#### D\n", []int{4}},
		{"descending is fine", "# T\n## A\n### B\n## C\n", nil},
		{"first heading deep is fine", "### Start\n#### Next\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := doc.Parse([]byte(tt.src))
			diags := checkLevelSkip(d, lint.NewFSEnv(""), nil)
			var got []int
			for _, diag := range diags {
				got = append(got, diag.Pos.Line)
			}
			assert.Equal(t, tt.lines, got)
		})
	}
}

func TestCB01MissingLanguage(t *testing.T) {
	src := "# T\n\n```\nSELECT 1\n```\n\n```text\noutput\n```\n"
	d := doc.Parse([]byte(src))

	diags := checkMissingLanguage(d, lint.NewFSEnv(""), nil)
	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Pos.Line)
}

func TestCB02UnterminatedFence(t *testing.T) {
	src := "# T\n\n```sql\nSELECT 1\n"
	d := doc.Parse([]byte(src))

	diags := checkUnterminatedFence(d, lint.NewFSEnv(""), nil)
	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Pos.Line)
	assert.Contains(t, diags[0].Message, "never closed")
}

func TestCB02TerminatedClean(t *testing.T) {
	src := "# T\n\n```sql\nSELECT 1\n```\n"
	d := doc.Parse([]byte(src))
	assert.Empty(t, checkUnterminatedFence(d, lint.NewFSEnv(""), nil))
}
