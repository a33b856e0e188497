package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
)

func TestNewAssetsCommand(t *testing.T) {
	cmd := NewAssetsCommand()

	assert.Equal(t, "assets", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"format", "orphans"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

// writeAssetProject extends the docs tree with binary files under img/.
func writeAssetProject(t *testing.T, docs map[string]string, assets map[string][]byte) (*CommandContext, *bytes.Buffer) {
	t.Helper()
	cmdCtx, stdout := writeCheckProject(t, docs)
	for rel, content := range assets {
		path := filepath.Join(cmdCtx.Cfg.DocsDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, content, 0o600))
	}
	return cmdCtx, stdout
}

func decodeAssetInfos(t *testing.T, data []byte) []output.AssetInfo {
	t.Helper()
	var out []output.AssetInfo
	require.NoError(t, json.Unmarshal(data, &out), "output should be valid JSON: %s", string(data))
	return out
}

const assetIndex = `---
title: Index
---

# Index

![Plan one](img/plan1.png)

See [the guide](guide.md).
`

const assetGuide = `---
title: Guide
---

# Guide

![Plan one again](img/plan1.png)
`

func TestAssetsOnce_Audit(t *testing.T) {
	cmdCtx, stdout := writeAssetProject(t,
		map[string]string{
			"index.md": assetIndex,
			"guide.md": assetGuide,
		},
		map[string][]byte{
			"img/plan1.png":  []byte("png-bytes"),
			"img/unused.png": []byte("stale"),
		})

	err := assetsOnce(context.Background(), cmdCtx, &AssetsOptions{})
	require.NoError(t, err)

	infos := decodeAssetInfos(t, stdout.Bytes())
	require.Len(t, infos, 2)

	assert.Equal(t, "img/plan1.png", infos[0].Path)
	assert.Equal(t, int64(len("png-bytes")), infos[0].Size)
	assert.Equal(t, 2, infos[0].References)
	assert.Equal(t, []string{"guide.md", "index.md"}, infos[0].ReferencedBy)
	assert.False(t, infos[0].Orphaned)

	assert.Equal(t, "img/unused.png", infos[1].Path)
	assert.Zero(t, infos[1].References)
	assert.True(t, infos[1].Orphaned)
}

func TestAssetsOnce_OrphansOnly(t *testing.T) {
	cmdCtx, stdout := writeAssetProject(t,
		map[string]string{
			"index.md": assetIndex,
			"guide.md": assetGuide,
		},
		map[string][]byte{
			"img/plan1.png":  []byte("png-bytes"),
			"img/unused.png": []byte("stale"),
		})

	err := assetsOnce(context.Background(), cmdCtx, &AssetsOptions{Orphans: true})
	require.NoError(t, err)

	infos := decodeAssetInfos(t, stdout.Bytes())
	require.Len(t, infos, 1)
	assert.Equal(t, "img/unused.png", infos[0].Path)
}

func TestAssetsOnce_NoAssets(t *testing.T) {
	cmdCtx, stdout := writeCheckProject(t, map[string]string{
		"index.md": cleanIndex,
		"guide.md": cleanGuide,
	})

	err := assetsOnce(context.Background(), cmdCtx, &AssetsOptions{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(bytes.TrimSpace(stdout.Bytes())))
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.n))
	}
}
