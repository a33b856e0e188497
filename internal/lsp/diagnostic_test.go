package lsp

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

func newTestServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s := NewServerWithLogger(strings.NewReader(""), &out, slog.New(slog.DiscardHandler))
	s.cfg = &core.ProjectConfig{}
	return s, &out
}

func writeProjectFile(t *testing.T, root string, parts ...string) {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts[:len(parts)-1]...)...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(parts[len(parts)-1]), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestToLSPSeverity(t *testing.T) {
	tests := []struct {
		in       core.Severity
		expected DiagnosticSeverity
	}{
		{core.SeverityError, DiagnosticSeverityError},
		{core.SeverityWarning, DiagnosticSeverityWarning},
		{core.SeverityInfo, DiagnosticSeverityInformation},
		{core.SeverityHint, DiagnosticSeverityHint},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, toLSPSeverity(tt.in), "toLSPSeverity(%v)", tt.in)
	}
}

func TestToLSPDiagnostics(t *testing.T) {
	diags := toLSPDiagnostics([]lint.Diagnostic{
		{
			RuleID:           "LN01",
			Severity:         core.SeverityError,
			Message:          "link points to a missing file",
			Pos:              token.Position{Line: 3, Column: 5},
			EndPos:           token.Position{Line: 3, Column: 25},
			DocumentationURL: "https://example.com/rules/LN01",
		},
		{
			RuleID:   "HD02",
			Severity: core.SeverityHint,
			Message:  "heading level skips from h1 to h3",
			Pos:      token.Position{Line: 10, Column: 1},
		},
	}, "sqldoc-lint")

	require.Len(t, diags, 2)

	// Positions shift from 1-based to 0-based
	assert.Equal(t, uint32(2), diags[0].Range.Start.Line)
	assert.Equal(t, uint32(4), diags[0].Range.Start.Character)
	assert.Equal(t, uint32(2), diags[0].Range.End.Line)
	assert.Equal(t, uint32(24), diags[0].Range.End.Character)
	assert.Equal(t, DiagnosticSeverityError, diags[0].Severity)
	assert.Equal(t, "LN01", diags[0].Code)
	assert.Equal(t, "sqldoc-lint", diags[0].Source)
	require.NotNil(t, diags[0].CodeDescription)
	assert.Equal(t, "https://example.com/rules/LN01", diags[0].CodeDescription.Href)

	// Missing EndPos pads ten columns past the start
	assert.Equal(t, uint32(9), diags[1].Range.Start.Line)
	assert.Equal(t, uint32(0), diags[1].Range.Start.Character)
	assert.Equal(t, uint32(10), diags[1].Range.End.Character)
	assert.Equal(t, DiagnosticSeverityHint, diags[1].Severity)
	require.NotNil(t, diags[1].CodeDescription)
	assert.Equal(t, lint.BuildDocURL("HD02"), diags[1].CodeDescription.Href)
}

func TestServer_LintDocument(t *testing.T) {
	s, _ := newTestServer(t)

	content := `---
title: Sort operators
---

# Sorts

Body text.

# Spools
`
	d := &Document{URI: "file:///tmp/notes.md", Content: content, Version: 1}
	diags := s.lintDocument(d)

	var hd01 *Diagnostic
	for i := range diags {
		if diags[i].Code == "HD01" {
			hd01 = &diags[i]
		}
	}
	require.NotNil(t, hd01, "expected an HD01 finding, got %+v", diags)

	assert.Equal(t, "sqldoc-lint", hd01.Source)
	assert.Equal(t, DiagnosticSeverityWarning, hd01.Severity)
	assert.Equal(t, uint32(8), hd01.Range.Start.Line, "second h1 sits on line 9, zero-based 8")
	require.NotNil(t, hd01.CodeDescription)
	assert.NotEmpty(t, hd01.CodeDescription.Href)
}

func TestServer_LintDocumentTracksOverlay(t *testing.T) {
	s, _ := newTestServer(t)

	clean := &Document{URI: "file:///tmp/notes.md", Content: "---\ntitle: T\n---\n\n# Only one\n", Version: 1}
	for _, d := range s.lintDocument(clean) {
		assert.NotEqual(t, "HD01", d.Code)
	}

	dirty := &Document{URI: clean.URI, Content: clean.Content + "\n# Another\n", Version: 2}
	codes := make([]string, 0)
	for _, d := range s.lintDocument(dirty) {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, "HD01")
}

func TestServer_RunProjectDiagnostics(t *testing.T) {
	s, _ := newTestServer(t)

	root := t.TempDir()
	writeProjectFile(t, root, "docs", "index.md", "---\ntitle: Home\n---\n\n# Home\n")
	writeProjectFile(t, root, "docs", "orphan.md", "---\ntitle: Orphan\n---\n\n# Orphan\n")
	writeProjectFile(t, root, "docs", "img", "unused.png", "\x89PNG\r\n")
	s.projectRoot = root

	byURI := s.runProjectDiagnostics()
	require.NotNil(t, byURI)

	orphanURI := PathToURI(filepath.Join(root, "docs", "orphan.md"))
	require.Contains(t, byURI, orphanURI)
	require.NotEmpty(t, byURI[orphanURI])
	assert.Equal(t, "PD01", byURI[orphanURI][0].Code)
	assert.Equal(t, "sqldoc-project", byURI[orphanURI][0].Source)

	unusedURI := PathToURI(filepath.Join(root, "docs", "img", "unused.png"))
	require.Contains(t, byURI, unusedURI)
	require.NotEmpty(t, byURI[unusedURI])
	assert.Equal(t, "IM02", byURI[unusedURI][0].Code)
}

func TestServer_RunProjectDiagnosticsDisabled(t *testing.T) {
	s, _ := newTestServer(t)

	root := t.TempDir()
	writeProjectFile(t, root, "docs", "index.md", "---\ntitle: Home\n---\n\n# Home\n")
	writeProjectFile(t, root, "docs", "orphan.md", "---\ntitle: Orphan\n---\n\n# Orphan\n")
	s.projectRoot = root

	enabled := false
	s.cfg = &core.ProjectConfig{Lint: &core.LintConfig{Project: &core.ProjectLintConfig{Enabled: &enabled}}}

	assert.Nil(t, s.runProjectDiagnostics())
}

func TestServer_PublishDiagnosticsClearsNonMarkdown(t *testing.T) {
	s, out := newTestServer(t)

	s.documents.Open("file:///tmp/site.css", "body { color: red }", 1)
	s.publishDiagnostics("file:///tmp/site.css")

	payload := out.String()
	assert.Contains(t, payload, `"textDocument/publishDiagnostics"`)
	assert.Contains(t, payload, `"diagnostics":[]`)
}
