package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tocDoc = `# Sort, Spool, Join

- [Overview](#overview)
- [Merge Join](#merge-join)
  - [Sort Avoidance](#sort-avoidance)
- [Spools](#spools)

## Overview

## Merge Join

### Sort Avoidance

## Spools
`

func TestDetectTOC(t *testing.T) {
	d := Parse([]byte(tocDoc))
	toc := d.TOC()
	require.NotNil(t, toc)
	require.Len(t, toc.Entries, 4)

	assert.Equal(t, "Overview", toc.Entries[0].Text)
	assert.Equal(t, "overview", toc.Entries[0].Anchor)
	assert.Equal(t, 0, toc.Entries[0].Level)
	assert.Equal(t, 3, toc.Pos.Line)
	assert.Equal(t, 6, toc.EndLine)

	assert.Equal(t, 1, toc.Entries[2].Level)
	assert.Equal(t, "sort-avoidance", toc.Entries[2].Anchor)
}

func TestDetectTOCIgnoresOrdinaryLists(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"plain list", "- apples\n- oranges\n"},
		{"mixed list", "- [Overview](#overview)\n- not a link\n"},
		{"single entry", "- [Overview](#overview)\n\ntext\n"},
		{"file links", "- [a](a.md)\n- [b](b.md)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Parse([]byte(tt.src))
			assert.Nil(t, d.TOC())
		})
	}
}

func TestDetectTOCFirstBlockWins(t *testing.T) {
	src := `- [A](#a)
- [B](#b)

- [C](#c)
- [D](#d)
`
	d := Parse([]byte(src))
	toc := d.TOC()
	require.NotNil(t, toc)
	require.Len(t, toc.Entries, 2)
	assert.Equal(t, "a", toc.Entries[0].Anchor)
}

func TestTOCForHeadings(t *testing.T) {
	d := Parse([]byte("# Title\n## A\n### B\n#### D\n## C\n"))
	entries := TOCForHeadings(d, 0, 0)
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Anchor)
	assert.Equal(t, 0, entries[0].Level)
	assert.Equal(t, "b", entries[1].Anchor)
	assert.Equal(t, 1, entries[1].Level)
	assert.Equal(t, "c", entries[2].Anchor)

	wide := TOCForHeadings(d, 2, 4)
	assert.Len(t, wide, 4)
}

func TestFormatTOC(t *testing.T) {
	entries := []TOCEntry{
		{Text: "Overview", Anchor: "overview", Level: 0},
		{Text: "Sort Avoidance", Anchor: "sort-avoidance", Level: 1},
	}
	want := "- [Overview](#overview)\n  - [Sort Avoidance](#sort-avoidance)\n"
	assert.Equal(t, want, FormatTOC(entries))
}

func TestUpdateTOCReplacesStaleBlock(t *testing.T) {
	src := `# Title

- [Old Name](#old-name)
- [Gone](#gone)

## Overview

## Merge Join
`
	d := Parse([]byte(src))
	out, changed := UpdateTOC(d, 0, 0)
	require.True(t, changed)

	updated := Parse(out)
	toc := updated.TOC()
	require.NotNil(t, toc)
	require.Len(t, toc.Entries, 2)
	assert.Equal(t, "overview", toc.Entries[0].Anchor)
	assert.Equal(t, "merge-join", toc.Entries[1].Anchor)
	// Surrounding content is untouched.
	assert.Len(t, updated.Headings, 3)
}

func TestUpdateTOCInsertsAfterTitle(t *testing.T) {
	src := "# Title\n\nSome intro.\n\n## Overview\n\n## Spools\n"
	d := Parse([]byte(src))
	out, changed := UpdateTOC(d, 0, 0)
	require.True(t, changed)

	updated := Parse(out)
	toc := updated.TOC()
	require.NotNil(t, toc)
	assert.Len(t, toc.Entries, 2)
	// Inserted directly under the title.
	assert.Equal(t, 3, toc.Pos.Line)
}

func TestUpdateTOCNoHeadingsNoChange(t *testing.T) {
	d := Parse([]byte("just prose\n"))
	out, changed := UpdateTOC(d, 0, 0)
	assert.False(t, changed)
	assert.Equal(t, "just prose\n", string(out))
}

func TestUpdateTOCIdempotent(t *testing.T) {
	d := Parse([]byte(tocDoc))
	out, changed := UpdateTOC(d, 0, 0)
	assert.False(t, changed, "canonical TOC must not be rewritten:\n%s", out)
}
