package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldoc-labs/sqldoc/internal/cli/config"
	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
	"github.com/sqldoc-labs/sqldoc/internal/project"
	"github.com/sqldoc-labs/sqldoc/internal/rulescript"
	"github.com/sqldoc-labs/sqldoc/internal/state"
	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

func TestNewCheckCommand(t *testing.T) {
	cmd := NewCheckCommand()

	assert.Equal(t, "check [path]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	// Verify flags exist
	flags := []string{"format", "disable", "severity", "rule", "changed", "skip-project", "watch"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

// writeCheckProject lays out a docs tree under a temp root and returns a
// command context whose renderer emits JSON into the returned buffer.
func writeCheckProject(t *testing.T, docs map[string]string) (*CommandContext, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	docsDir := filepath.Join(root, "docs")
	require.NoError(t, os.MkdirAll(docsDir, 0o755))
	for rel, content := range docs {
		path := filepath.Join(docsDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmdCtx := &CommandContext{
		Cfg: &config.Config{
			ProjectRoot: root,
			DocsDir:     docsDir,
			AssetsDir:   "img",
			Index:       "index.md",
			Dialect:     "tsql",
			RulesDir:    filepath.Join(root, "rules"),
			StatePath:   filepath.Join(root, ".sqldoc", "state.db"),
		},
		Logger:   slog.New(slog.DiscardHandler),
		Renderer: output.NewRenderer(&stdout, &stderr, output.ModeJSON),
	}
	return cmdCtx, &stdout
}

func decodeCheckOutput(t *testing.T, buf *bytes.Buffer) output.CheckOutput {
	t.Helper()
	var out output.CheckOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), "output should be valid JSON: %s", buf.String())
	return out
}

func openCheckState(t *testing.T, cmdCtx *CommandContext) *state.Store {
	t.Helper()
	st := state.New()
	require.NoError(t, st.Open(cmdCtx.Cfg.StatePath))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

const cleanIndex = `---
title: Index
---

# Index

Welcome. See [the guide](guide.md).
`

const cleanGuide = `---
title: Guide
---

# Guide

Body text.
`

// orphanDoc has no frontmatter (FM01) and nothing links to it (PD01).
const orphanDoc = `# Orphan

Nobody links here.
`

func TestCheckOnce_CleanProject(t *testing.T) {
	cmdCtx, stdout := writeCheckProject(t, map[string]string{
		"index.md": cleanIndex,
		"guide.md": cleanGuide,
	})

	hasIssues, err := checkOnce(context.Background(), cmdCtx, &CheckOptions{Severity: "warning"})
	require.NoError(t, err)
	assert.False(t, hasIssues)

	out := decodeCheckOutput(t, stdout)
	assert.Equal(t, 2, out.Summary.FilesAnalyzed)
	assert.Equal(t, 0, out.Summary.TotalIssues)
	assert.Empty(t, out.Files)
	assert.Empty(t, out.Project)

	st := openCheckState(t, cmdCtx)
	run, err := st.GetLatestRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, core.RunStatusPassed, run.Status)
	assert.Equal(t, 2, run.DocsChecked)
	assert.NotNil(t, run.CompletedAt)

	hash, err := st.GetContentHash("guide.md")
	require.NoError(t, err)
	assert.NotEmpty(t, hash, "content hash should be recorded for change tracking")
}

func TestCheckOnce_ReportsIssuesAndRecordsHistory(t *testing.T) {
	cmdCtx, stdout := writeCheckProject(t, map[string]string{
		"index.md":         cleanIndex,
		"guide.md":         cleanGuide,
		"guides/orphan.md": orphanDoc,
	})

	hasIssues, err := checkOnce(context.Background(), cmdCtx, &CheckOptions{Severity: "warning"})
	require.NoError(t, err)
	assert.True(t, hasIssues)

	out := decodeCheckOutput(t, stdout)
	assert.Equal(t, 3, out.Summary.FilesAnalyzed)
	assert.GreaterOrEqual(t, out.Summary.Warnings, 2)

	require.Len(t, out.Files, 1)
	assert.Equal(t, "guides/orphan.md", out.Files[0].Path)
	ruleIDs := make([]string, 0, len(out.Files[0].Diagnostics))
	for _, d := range out.Files[0].Diagnostics {
		ruleIDs = append(ruleIDs, d.RuleID)
	}
	assert.Contains(t, ruleIDs, "FM01")

	require.NotEmpty(t, out.Project)
	assert.Equal(t, "PD01", out.Project[0].RuleID)
	assert.Equal(t, "guides/orphan.md", out.Project[0].Path)

	st := openCheckState(t, cmdCtx)
	run, err := st.GetLatestRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, core.RunStatusFailed, run.Status)
	assert.GreaterOrEqual(t, run.Counts.Warnings, 2)

	recs, err := st.GetDiagnosticsForRun(run.ID)
	require.NoError(t, err)
	var recRules []string
	for _, rec := range recs {
		recRules = append(recRules, rec.RuleID)
	}
	assert.Contains(t, recRules, "FM01")
	assert.Contains(t, recRules, "PD01")
}

func TestCheckOnce_SeverityNarrowsReportingNotHistory(t *testing.T) {
	cmdCtx, stdout := writeCheckProject(t, map[string]string{
		"index.md":         cleanIndex,
		"guide.md":         cleanGuide,
		"guides/orphan.md": orphanDoc,
	})

	hasIssues, err := checkOnce(context.Background(), cmdCtx, &CheckOptions{Severity: "error"})
	require.NoError(t, err)
	assert.False(t, hasIssues, "warnings are below the error threshold")

	out := decodeCheckOutput(t, stdout)
	assert.Equal(t, 0, out.Summary.TotalIssues)

	// History keeps the full picture regardless of the threshold.
	st := openCheckState(t, cmdCtx)
	run, err := st.GetLatestRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, core.RunStatusFailed, run.Status)
	assert.GreaterOrEqual(t, run.Counts.Warnings, 2)
}

func TestCheckOnce_ChangedSkipsUnmodifiedDocuments(t *testing.T) {
	cmdCtx, stdout := writeCheckProject(t, map[string]string{
		"index.md": cleanIndex,
		"guide.md": cleanGuide,
	})
	ctx := context.Background()

	_, err := checkOnce(ctx, cmdCtx, &CheckOptions{Severity: "warning"})
	require.NoError(t, err)
	assert.Equal(t, 2, decodeCheckOutput(t, stdout).Summary.FilesAnalyzed)

	stdout.Reset()
	_, err = checkOnce(ctx, cmdCtx, &CheckOptions{Severity: "warning", Changed: true})
	require.NoError(t, err)
	assert.Equal(t, 0, decodeCheckOutput(t, stdout).Summary.FilesAnalyzed)

	guidePath := filepath.Join(cmdCtx.Cfg.DocsDir, "guide.md")
	require.NoError(t, os.WriteFile(guidePath, []byte(cleanGuide+"\nMore body text.\n"), 0o600))

	stdout.Reset()
	_, err = checkOnce(ctx, cmdCtx, &CheckOptions{Severity: "warning", Changed: true})
	require.NoError(t, err)
	assert.Equal(t, 1, decodeCheckOutput(t, stdout).Summary.FilesAnalyzed)
}

func TestCheckOnce_PathFilter(t *testing.T) {
	cmdCtx, stdout := writeCheckProject(t, map[string]string{
		"index.md":         cleanIndex,
		"guide.md":         cleanGuide,
		"guides/orphan.md": orphanDoc,
	})
	ctx := context.Background()

	t.Run("directory narrows the run", func(t *testing.T) {
		stdout.Reset()
		_, err := checkOnce(ctx, cmdCtx, &CheckOptions{Severity: "warning", Path: "guides"})
		require.NoError(t, err)
		out := decodeCheckOutput(t, stdout)
		assert.Equal(t, 1, out.Summary.FilesAnalyzed)
	})

	t.Run("no match is an error", func(t *testing.T) {
		_, err := checkOnce(ctx, cmdCtx, &CheckOptions{Severity: "warning", Path: "nope"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no documents match")
	})
}

func TestCheckOnce_RuleSelection(t *testing.T) {
	docs := map[string]string{
		"index.md":         cleanIndex,
		"guide.md":         cleanGuide,
		"guides/orphan.md": orphanDoc,
	}
	ctx := context.Background()

	t.Run("document rule only", func(t *testing.T) {
		cmdCtx, stdout := writeCheckProject(t, docs)
		_, err := checkOnce(ctx, cmdCtx, &CheckOptions{Severity: "hint", Rules: []string{"FM01"}})
		require.NoError(t, err)
		out := decodeCheckOutput(t, stdout)
		assert.Empty(t, out.Project, "project rules not listed in --rule should not run")
		require.Len(t, out.Files, 1)
		for _, d := range out.Files[0].Diagnostics {
			assert.Equal(t, "FM01", d.RuleID)
		}
	})

	t.Run("project rule only", func(t *testing.T) {
		cmdCtx, stdout := writeCheckProject(t, docs)
		_, err := checkOnce(ctx, cmdCtx, &CheckOptions{Severity: "hint", Rules: []string{"PD01"}})
		require.NoError(t, err)
		out := decodeCheckOutput(t, stdout)
		assert.Empty(t, out.Files)
		require.NotEmpty(t, out.Project)
		assert.Equal(t, "PD01", out.Project[0].RuleID)
	})
}

func TestCheckOnce_SkipProject(t *testing.T) {
	cmdCtx, stdout := writeCheckProject(t, map[string]string{
		"index.md":         cleanIndex,
		"guide.md":         cleanGuide,
		"guides/orphan.md": orphanDoc,
	})

	_, err := checkOnce(context.Background(), cmdCtx, &CheckOptions{Severity: "warning", SkipProject: true})
	require.NoError(t, err)

	out := decodeCheckOutput(t, stdout)
	assert.Empty(t, out.Project)
	require.Len(t, out.Files, 1, "document rules still run")
}

func TestCheckOnce_MissingDocsDir(t *testing.T) {
	cmdCtx, _ := writeCheckProject(t, nil)
	cmdCtx.Cfg.DocsDir = filepath.Join(cmdCtx.Cfg.ProjectRoot, "absent")

	_, err := checkOnce(context.Background(), cmdCtx, &CheckOptions{Severity: "warning"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docs directory does not exist")
}

func TestBuildLintConfig(t *testing.T) {
	registry := rulescript.BuildRegistry(nil)

	t.Run("empty options", func(t *testing.T) {
		cfg, err := buildLintConfig(&config.Config{}, &CheckOptions{}, registry)
		require.NoError(t, err)
		assert.False(t, cfg.IsDisabled("FM01"))
	})

	t.Run("disable rules", func(t *testing.T) {
		opts := &CheckOptions{Disable: []string{"FM01", " HD01 "}}
		cfg, err := buildLintConfig(&config.Config{}, opts, registry)
		require.NoError(t, err)
		assert.True(t, cfg.IsDisabled("FM01"))
		assert.True(t, cfg.IsDisabled("HD01"))
		assert.False(t, cfg.IsDisabled("CB01"))
	})

	t.Run("rule list disables everything else", func(t *testing.T) {
		opts := &CheckOptions{Rules: []string{"FM01"}}
		cfg, err := buildLintConfig(&config.Config{}, opts, registry)
		require.NoError(t, err)
		assert.False(t, cfg.IsDisabled("FM01"))
		for _, rule := range registry.All() {
			if rule.ID != "FM01" {
				assert.True(t, cfg.IsDisabled(rule.ID), "rule %q should be disabled", rule.ID)
			}
		}
	})

	t.Run("rule list overrides config disable", func(t *testing.T) {
		projectCfg := &config.Config{
			Lint: &config.LintConfig{Disabled: []string{"FM01"}},
		}
		opts := &CheckOptions{Rules: []string{"FM01"}}
		cfg, err := buildLintConfig(projectCfg, opts, registry)
		require.NoError(t, err)
		assert.False(t, cfg.IsDisabled("FM01"))
	})

	t.Run("config severity overrides", func(t *testing.T) {
		projectCfg := &config.Config{
			Lint: &config.LintConfig{
				Severity: map[string]string{"FM01": "error", "HD01": "hint"},
			},
		}
		cfg, err := buildLintConfig(projectCfg, &CheckOptions{}, registry)
		require.NoError(t, err)
		assert.Equal(t, core.SeverityError, cfg.GetSeverity("FM01", core.SeverityWarning))
		assert.Equal(t, core.SeverityHint, cfg.GetSeverity("HD01", core.SeverityWarning))
		assert.Equal(t, core.SeverityWarning, cfg.GetSeverity("CB01", core.SeverityWarning))
	})

	t.Run("invalid config severity is an error", func(t *testing.T) {
		projectCfg := &config.Config{
			Lint: &config.LintConfig{
				Severity: map[string]string{"FM01": "fatal"},
			},
		}
		_, err := buildLintConfig(projectCfg, &CheckOptions{}, registry)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown severity")
	})

	t.Run("config rule options", func(t *testing.T) {
		projectCfg := &config.Config{
			Lint: &config.LintConfig{
				Rules: map[string]config.RuleOptions{
					"FM01": {"require": false},
				},
			},
		}
		cfg, err := buildLintConfig(projectCfg, &CheckOptions{}, registry)
		require.NoError(t, err)
		opts := cfg.GetRuleOptions("FM01")
		require.NotNil(t, opts)
		assert.Equal(t, false, opts["require"])
	})
}

func TestFilterBySeverity(t *testing.T) {
	diags := []lint.Diagnostic{
		{RuleID: "FM01", Severity: core.SeverityError},
		{RuleID: "HD01", Severity: core.SeverityWarning},
		{RuleID: "CB01", Severity: core.SeverityInfo},
		{RuleID: "AN01", Severity: core.SeverityHint},
	}

	tests := []struct {
		threshold string
		want      int
	}{
		{"error", 1},
		{"warning", 2},
		{"info", 3},
		{"hint", 4},
		{"bogus", 2}, // falls back to warning
	}
	for _, tt := range tests {
		t.Run(tt.threshold, func(t *testing.T) {
			assert.Len(t, filterBySeverity(diags, tt.threshold), tt.want)
		})
	}
}

func TestSelectDocs(t *testing.T) {
	p := &project.Project{
		DocsDir: filepath.Join(t.TempDir(), "docs"),
		Docs: map[string]*doc.Document{
			"index.md":           {},
			"guides/indexing.md": {},
			"guides/joins.md":    {},
		},
	}

	t.Run("no path selects everything", func(t *testing.T) {
		keys, err := selectDocs(p, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"guides/indexing.md", "guides/joins.md", "index.md"}, keys)
	})

	t.Run("docs-relative file", func(t *testing.T) {
		keys, err := selectDocs(p, "guides/joins.md")
		require.NoError(t, err)
		assert.Equal(t, []string{"guides/joins.md"}, keys)
	})

	t.Run("docs-relative directory", func(t *testing.T) {
		keys, err := selectDocs(p, "guides/")
		require.NoError(t, err)
		assert.Equal(t, []string{"guides/indexing.md", "guides/joins.md"}, keys)
	})

	t.Run("absolute path under docs dir", func(t *testing.T) {
		keys, err := selectDocs(p, filepath.Join(p.DocsDir, "guides", "joins.md"))
		require.NoError(t, err)
		assert.Equal(t, []string{"guides/joins.md"}, keys)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := selectDocs(p, "missing.md")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"missing.md"`)
	})
}

func TestRecordCheckRun_HintsOnlyRunPasses(t *testing.T) {
	cmdCtx, _ := writeCheckProject(t, nil)
	st, err := openStore(cmdCtx.Cfg, cmdCtx.Logger)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	results := []checkFileResult{{
		Path: "index.md",
		Diagnostics: []lint.Diagnostic{
			{RuleID: "AN01", Severity: core.SeverityHint, Message: "dead anchor"},
		},
	}}
	recordCheckRun(cmdCtx, st, results, nil, 1, map[string]string{"index.md": "abc123"})

	run, err := st.GetLatestRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, core.RunStatusPassed, run.Status, "hints alone do not fail a run")
	assert.Equal(t, 1, run.DocsChecked)
	assert.Equal(t, 1, run.Counts.Hints)

	recs, err := st.GetDiagnosticsForRun(run.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "AN01", recs[0].RuleID)
	assert.Equal(t, "hint", recs[0].Severity)

	hash, err := st.GetContentHash("index.md")
	require.NoError(t, err)
	assert.Equal(t, "abc123", hash)
}
