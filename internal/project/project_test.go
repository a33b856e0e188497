package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

// writeProject lays out a small docs tree and returns its root.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func TestLoadParsesAllDocuments(t *testing.T) {
	root := writeProject(t, map[string]string{
		"docs/index.md":  "# Welcome\n\nSee [the article](sort-spool-join.md).\n",
		"docs/sort-spool-join.md": "# Sorts and Spools\n\nBody.\n",
		"docs/notes/scratch.md":   "# Scratch\n",
		"docs/.obsidian/hidden.md": "# Hidden\n",
		"docs/node_modules/pkg/readme.md": "# Dep\n",
	})

	p, err := Load(context.Background(), Options{Root: root})
	require.NoError(t, err)

	assert.Equal(t, []string{"index.md", "notes/scratch.md", "sort-spool-join.md"}, p.DocPaths())
	assert.Empty(t, p.ParseErrors)
	assert.Equal(t, "index.md", p.Index)
	assert.Equal(t, "tsql", p.Dialect)
}

func TestLoadBuildsLinkGraph(t *testing.T) {
	root := writeProject(t, map[string]string{
		"docs/index.md":   "# Index\n\n[One](one.md) and [Two](sub/two.md).\n",
		"docs/one.md":     "# One\n\nBack [home](index.md). Again [home](index.md#index).\n",
		"docs/sub/two.md": "# Two\n\nUp to [one](../one.md).\n",
		"docs/orphan.md":  "# Orphan\n\nNothing links here.\n",
	})

	p, err := Load(context.Background(), Options{Root: root})
	require.NoError(t, err)

	assert.Equal(t, []string{"one.md", "sub/two.md"}, p.Links["index.md"])
	assert.Equal(t, []string{"index.md"}, p.Links["one.md"])
	assert.Equal(t, []string{"one.md"}, p.Links["sub/two.md"])
	assert.Empty(t, p.Links["orphan.md"])
}

func TestLoadLinkGraphSurvivesCasingSlips(t *testing.T) {
	root := writeProject(t, map[string]string{
		"docs/index.md":   "# Index\n\n[Guide](GUIDE.md)\n",
		"docs/Guide.md":   "# Guide\n",
	})

	p, err := Load(context.Background(), Options{Root: root})
	require.NoError(t, err)

	assert.Equal(t, []string{"Guide.md"}, p.Links["index.md"])
}

func TestLoadCollectsAssetsAndRefs(t *testing.T) {
	root := writeProject(t, map[string]string{
		"docs/index.md": "# Index\n\n![plan](img/plan1.png)\n\n[data](img/rows.csv)\n",
		"docs/img/plan1.png": "notapng",
		"docs/img/rows.csv":  "a,b\n1,2\n",
		"docs/img/unused.png": "x",
	})

	p, err := Load(context.Background(), Options{Root: root})
	require.NoError(t, err)

	require.Len(t, p.Assets, 3)

	plan, ok := p.Assets["img/plan1.png"]
	require.True(t, ok)
	require.Len(t, plan.Refs, 1)
	assert.Equal(t, "index.md", plan.Refs[0].DocPath)
	assert.Equal(t, "img/plan1.png", plan.Refs[0].Spelled)

	rows, ok := p.Assets["img/rows.csv"]
	require.True(t, ok)
	assert.Len(t, rows.Refs, 1)

	unused, ok := p.Assets["img/unused.png"]
	require.True(t, ok)
	assert.Empty(t, unused.Refs)
}

func TestLoadIgnoresDotFilesInAssets(t *testing.T) {
	root := writeProject(t, map[string]string{
		"docs/index.md":           "# Index\n",
		"docs/img/.gitkeep":       "",
		"docs/img/.DS_Store":      "junk",
		"docs/img/.cache/tmp.png": "x",
	})

	p, err := Load(context.Background(), Options{Root: root})
	require.NoError(t, err)

	// Scaffolding files must never surface as orphaned assets.
	assert.Empty(t, p.Assets)
}

func TestLoadRespectsConfig(t *testing.T) {
	root := writeProject(t, map[string]string{
		"articles/start.md":        "# Start\n",
		"articles/media/chart.svg": "<svg/>",
	})

	p, err := Load(context.Background(), Options{
		Root: root,
		Config: &core.ProjectConfig{
			DocsDir:   "articles",
			AssetsDir: "media",
			Index:     "start.md",
			Dialect:   "postgres",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "start.md", p.Index)
	assert.Equal(t, "postgres", p.Dialect)
	assert.Contains(t, p.Docs, "start.md")
	assert.Contains(t, p.Assets, "media/chart.svg")
}

func TestLoadMissingDocsDir(t *testing.T) {
	root := t.TempDir()
	_, err := Load(context.Background(), Options{Root: root})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docs directory")
}

func TestContextFeedsProjectRules(t *testing.T) {
	root := writeProject(t, map[string]string{
		"docs/index.md":  "# Index\n\n[One](one.md)\n",
		"docs/one.md":    "# One\n",
		"docs/orphan.md": "# Orphan\n",
	})

	p, err := Load(context.Background(), Options{Root: root})
	require.NoError(t, err)

	ctx := p.Context()
	assert.Equal(t, "index.md", ctx.IndexPath())
	assert.Equal(t, []string{"index.md", "one.md", "orphan.md"}, ctx.DocPaths())
	assert.Equal(t, []string{"one.md"}, ctx.LinksFrom("index.md"))
}

func TestStats(t *testing.T) {
	root := writeProject(t, map[string]string{
		"docs/index.md": "---\ntitle: Index\n---\n\n# Index\n\nSome words here.\n\n```sql\nSELECT 1;\n```\n",
		"docs/wip.md":   "---\ntitle: WIP\ndraft: true\n---\n\n# WIP\n",
	})

	p, err := Load(context.Background(), Options{Root: root})
	require.NoError(t, err)

	s := p.Stats()
	assert.Equal(t, 2, s.Documents)
	assert.Equal(t, 1, s.Snippets)
	assert.Equal(t, 1, s.Drafts)
	assert.Greater(t, s.Words, 0)
}

func TestEnvAnchorsFromLoadedDocs(t *testing.T) {
	root := writeProject(t, map[string]string{
		"docs/index.md": "# Index\n\n[jump](other.md#section-two)\n",
		"docs/other.md": "# Other\n\n## Section Two\n",
	})

	p, err := Load(context.Background(), Options{Root: root})
	require.NoError(t, err)

	env := NewEnv(p)
	assert.Equal(t, "tsql", env.DefaultDialect())

	idx := p.Docs["index.md"]
	anchors, ok := env.AnchorsIn(idx, "other.md")
	require.True(t, ok)
	assert.Contains(t, anchors, "section-two")

	fi, ok := env.ResolveFile(idx, "other.md")
	require.True(t, ok)
	assert.True(t, fi.CaseMatches)
}

// projectArchive is a whole project as a txtar archive; keeping multi-file
// fixtures in one literal makes the tree readable at a glance.
const projectArchive = `-- sqldoc.yaml --
title: "Archived"
docs_dir: docs
dialect: postgres
-- docs/index.md --
---
title: Index
---

# Index

[Article](article.md)
-- docs/article.md --
---
title: Article
---

# Article

![plan](img/plan.png)

` + "```sql\nSELECT id FROM customers LIMIT 5;\n```\n" + `
-- docs/img/plan.png --
notapng
`

func TestLoadFromArchive(t *testing.T) {
	root := t.TempDir()
	ar := txtar.Parse([]byte(projectArchive))
	for _, f := range ar.Files {
		full := filepath.Join(root, filepath.FromSlash(f.Name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, f.Data, 0o644))
	}

	p, err := Load(context.Background(), Options{
		Root:   root,
		Config: &core.ProjectConfig{DocsDir: "docs", Dialect: "postgres"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"article.md", "index.md"}, p.DocPaths())
	assert.Equal(t, "postgres", p.Dialect)
	assert.Equal(t, []string{"article.md"}, p.Links["index.md"])
	assert.Contains(t, p.Assets, "img/plan.png")
}

func TestContentHash(t *testing.T) {
	h1 := ContentHash([]byte("a"))
	h2 := ContentHash([]byte("a"))
	h3 := ContentHash([]byte("b"))
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}
