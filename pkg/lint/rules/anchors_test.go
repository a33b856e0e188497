package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func TestAN01DeadAnchor(t *testing.T) {
	src := `# Title

## Setup

[ok](#setup)
[bad](#missing-section)
[ref][target]

[target]: #also-missing
`
	d := doc.Parse([]byte(src))
	diags := checkDeadAnchor(d, lint.NewFSEnv(""), nil)

	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Message, "#missing-section")
	assert.Equal(t, 6, diags[0].Pos.Line)
	assert.Contains(t, diags[1].Message, "#also-missing")
	assert.Equal(t, 7, diags[1].Pos.Line)
}

func TestAN01AcceptsHTMLAnchors(t *testing.T) {
	src := "# T\n\n<a id=\"custom-spot\"></a>\n\n[jump](#custom-spot)\n"
	d := doc.Parse([]byte(src))
	assert.Empty(t, checkDeadAnchor(d, lint.NewFSEnv(""), nil))
}

func TestAN02DuplicateHeading(t *testing.T) {
	src := "# T\n## Results\n## Results\n## Results\n"
	d := doc.Parse([]byte(src))

	diags := checkDuplicateHeading(d, lint.NewFSEnv(""), nil)
	require.Len(t, diags, 2)
	assert.Equal(t, 3, diags[0].Pos.Line)
	assert.Contains(t, diags[0].Message, "line 2")
	assert.Contains(t, diags[0].Message, "#results-1")
	assert.Equal(t, 4, diags[1].Pos.Line)
	assert.Contains(t, diags[1].Message, "#results-2")
}

func TestAN03MissingEntry(t *testing.T) {
	src := `# T

- [Setup](#setup)
- [Cleanup](#cleanup)

## Setup

## Queries

## Cleanup
`
	d := doc.Parse([]byte(src))

	diags := checkTOCMissingEntry(d, lint.NewFSEnv(""), nil)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, `"Queries"`)
	assert.Contains(t, diags[0].Message, "#queries")
	assert.Equal(t, 3, diags[0].Pos.Line, "reported at the contents block")
}

func TestAN03LevelOptions(t *testing.T) {
	src := `# T

- [Setup](#setup)
- [Queries](#queries)

## Setup

### Deep Dive

## Queries
`
	d := doc.Parse([]byte(src))
	env := lint.NewFSEnv("")

	diags := checkTOCMissingEntry(d, env, nil)
	require.Len(t, diags, 1, "h3 is in range by default")
	assert.Contains(t, diags[0].Message, "Deep Dive")

	diags = checkTOCMissingEntry(d, env, map[string]any{"max_level": 2})
	assert.Empty(t, diags)
}

func TestAN03IgnoresHeadingsAboveBlock(t *testing.T) {
	src := `# T

## Contents

- [Setup](#setup)
- [Queries](#queries)

## Setup

## Queries
`
	d := doc.Parse([]byte(src))
	assert.Empty(t, checkTOCMissingEntry(d, lint.NewFSEnv(""), nil),
		"a Contents heading does not have to list itself")
}

func TestAN03NoTOCNoFindings(t *testing.T) {
	src := "# T\n\n## Setup\n\n## Queries\n"
	d := doc.Parse([]byte(src))
	assert.Empty(t, checkTOCMissingEntry(d, lint.NewFSEnv(""), nil))
}

func TestAN04OutOfOrder(t *testing.T) {
	src := `# T

- [Queries](#queries)
- [Setup](#setup)

## Setup

## Queries
`
	d := doc.Parse([]byte(src))

	diags := checkTOCOrder(d, lint.NewFSEnv(""), nil)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, `"Setup"`)
	assert.Equal(t, 4, diags[0].Pos.Line, "reported at the offending entry")
}

func TestAN04SkipsUnknownAnchors(t *testing.T) {
	src := `# T

- [Setup](#setup)
- [Elsewhere](#nowhere)
- [Queries](#queries)

## Setup

## Queries
`
	d := doc.Parse([]byte(src))
	assert.Empty(t, checkTOCOrder(d, lint.NewFSEnv(""), nil),
		"dead anchors are AN01 findings, not ordering problems")
}
