package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
)

func TestNewTOCCommand(t *testing.T) {
	cmd := NewTOCCommand()

	assert.Equal(t, "toc [path]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"format", "write", "check", "min-level", "max-level"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

// tocArticle has level-2 and level-3 headings but no TOC block yet.
const tocArticle = `---
title: Sorting
---

# Sorting

Intro paragraph.

## Why sorts happen

Body.

### Memory grants

Body.

## Avoiding the sort

Body.
`

// tocArticleStale carries a TOC that no longer matches the headings.
const tocArticleStale = `---
title: Sorting
---

# Sorting

- [Why sorts happen](#why-sorts-happen)
- [Removed section](#removed-section)

## Why sorts happen

Body.

## Avoiding the sort

Body.
`

func decodeTOCResults(t *testing.T, data []byte) []output.TOCDocResult {
	t.Helper()
	var out []output.TOCDocResult
	require.NoError(t, json.Unmarshal(data, &out), "output should be valid JSON: %s", string(data))
	return out
}

func TestTOCOnce_PrintEntries(t *testing.T) {
	cmdCtx, stdout := writeCheckProject(t, map[string]string{
		"index.md": cleanIndex,
		"guide.md": tocArticle,
	})

	err := tocOnce(context.Background(), cmdCtx, &TOCOptions{Path: "guide.md"})
	require.NoError(t, err)

	results := decodeTOCResults(t, stdout.Bytes())
	require.Len(t, results, 1)
	assert.Equal(t, "guide.md", results[0].Path)
	assert.True(t, results[0].Stale, "document without a TOC block counts as stale")

	require.Len(t, results[0].Entries, 3)
	assert.Equal(t, "Why sorts happen", results[0].Entries[0].Text)
	assert.Equal(t, "why-sorts-happen", results[0].Entries[0].Anchor)
	assert.Equal(t, 0, results[0].Entries[0].Level)
	assert.Equal(t, "Memory grants", results[0].Entries[1].Text)
	assert.Equal(t, 1, results[0].Entries[1].Level, "level-3 heading nests one step")
	assert.Equal(t, "Avoiding the sort", results[0].Entries[2].Text)
}

func TestTOCOnce_MinMaxLevels(t *testing.T) {
	cmdCtx, stdout := writeCheckProject(t, map[string]string{
		"index.md": cleanIndex,
		"guide.md": tocArticle,
	})

	err := tocOnce(context.Background(), cmdCtx, &TOCOptions{Path: "guide.md", MinLevel: 2, MaxLevel: 2})
	require.NoError(t, err)

	results := decodeTOCResults(t, stdout.Bytes())
	require.Len(t, results, 1)
	require.Len(t, results[0].Entries, 2, "level-3 headings fall outside 2..2")
	assert.Equal(t, "Why sorts happen", results[0].Entries[0].Text)
	assert.Equal(t, "Avoiding the sort", results[0].Entries[1].Text)
}

func TestTOCOnce_InvalidRange(t *testing.T) {
	cmdCtx, _ := writeCheckProject(t, map[string]string{"index.md": cleanIndex})

	err := tocOnce(context.Background(), cmdCtx, &TOCOptions{MinLevel: 3, MaxLevel: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid heading range")
}

func TestTOCOnce_WriteInsertsAndConverges(t *testing.T) {
	cmdCtx, stdout := writeCheckProject(t, map[string]string{
		"index.md": cleanIndex,
		"guide.md": tocArticle,
	})
	ctx := context.Background()

	err := tocOnce(ctx, cmdCtx, &TOCOptions{Path: "guide.md", Write: true})
	require.NoError(t, err)

	updated, err := os.ReadFile(filepath.Join(cmdCtx.Cfg.DocsDir, "guide.md"))
	require.NoError(t, err)
	assert.Contains(t, string(updated), "- [Why sorts happen](#why-sorts-happen)")
	assert.Contains(t, string(updated), "  - [Memory grants](#memory-grants)")

	// A second write pass finds nothing to do.
	stdout.Reset()
	err = tocOnce(ctx, cmdCtx, &TOCOptions{Path: "guide.md", Write: true})
	require.NoError(t, err)
	again, err := os.ReadFile(filepath.Join(cmdCtx.Cfg.DocsDir, "guide.md"))
	require.NoError(t, err)
	assert.Equal(t, string(updated), string(again), "write must be idempotent")
}

func TestTOCOnce_WriteReplacesStaleBlock(t *testing.T) {
	cmdCtx, _ := writeCheckProject(t, map[string]string{
		"index.md": cleanIndex,
		"guide.md": tocArticleStale,
	})

	err := tocOnce(context.Background(), cmdCtx, &TOCOptions{Path: "guide.md", Write: true})
	require.NoError(t, err)

	updated, err := os.ReadFile(filepath.Join(cmdCtx.Cfg.DocsDir, "guide.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(updated), "Removed section")
	assert.Contains(t, string(updated), "- [Avoiding the sort](#avoiding-the-sort)")
}

func TestTOCOnce_CheckFailsOnStale(t *testing.T) {
	cmdCtx, _ := writeCheckProject(t, map[string]string{
		"index.md": cleanIndex,
		"guide.md": tocArticleStale,
	})
	ctx := context.Background()

	err := tocOnce(ctx, cmdCtx, &TOCOptions{Check: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toc out of date")

	// After --write the check passes and nothing was modified by it.
	require.NoError(t, tocOnce(ctx, cmdCtx, &TOCOptions{Write: true}))
	before, err := os.ReadFile(filepath.Join(cmdCtx.Cfg.DocsDir, "guide.md"))
	require.NoError(t, err)

	require.NoError(t, tocOnce(ctx, cmdCtx, &TOCOptions{Check: true}))
	after, err := os.ReadFile(filepath.Join(cmdCtx.Cfg.DocsDir, "guide.md"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "--check must not write")
}

func TestTOCOnce_NoHeadings(t *testing.T) {
	cmdCtx, stdout := writeCheckProject(t, map[string]string{
		"index.md": "# Index\n\nNo sections here.\n",
	})

	err := tocOnce(context.Background(), cmdCtx, &TOCOptions{Check: true})
	require.NoError(t, err, "documents without TOC-able headings are skipped")
	assert.NotEmpty(t, stdout.String())
}
