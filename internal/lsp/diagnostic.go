package lsp

import (
	"context"
	"strings"

	"github.com/sqldoc-labs/sqldoc/internal/project"
	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
)

// publishDiagnostics lints an open document and publishes the findings.
func (s *Server) publishDiagnostics(uri string) {
	d := s.documents.Get(uri)
	if d == nil {
		return
	}

	// Only markdown documents are linted; everything else gets an empty
	// publish so stale findings clear.
	diagnostics := []Diagnostic{}
	if strings.HasSuffix(uri, ".md") {
		diagnostics = append(diagnostics, s.lintDocument(d)...)
	}

	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// lintDocument runs document rules against the in-editor content. The
// overlay content wins over whatever is on disk, so diagnostics track
// unsaved edits.
func (s *Server) lintDocument(d *Document) []Diagnostic {
	parsed := doc.Parse([]byte(d.Content))
	parsed.Path = URIToPath(d.URI)

	return toLSPDiagnostics(s.analyzer.AnalyzeDocument(parsed, s.env), "sqldoc-lint")
}

// runProjectDiagnostics loads the project from disk and runs project-wide
// rules, returning LSP diagnostics grouped by file URI.
func (s *Server) runProjectDiagnostics() map[string][]Diagnostic {
	if s.projectRoot == "" || !s.projectLintEnabled() {
		return nil
	}

	p, err := project.Load(context.Background(), project.Options{
		Root:   s.projectRoot,
		Config: s.cfg,
		Logger: s.logger,
	})
	if err != nil {
		s.logger.Warn("Project load failed, skipping project diagnostics", "error", err)
		return nil
	}

	diags := s.projectAnalyzer.Analyze(p.Context())
	if len(diags) == 0 {
		return nil
	}

	// Group diagnostics by file
	byURI := make(map[string][]Diagnostic)
	for _, d := range diags {
		if d.DocPath == "" {
			continue // Skip diagnostics without file paths
		}
		uri := PathToURI(p.AbsPath(d.DocPath))
		byURI[uri] = append(byURI[uri], toLSPDiagnostics([]lint.Diagnostic{d}, "sqldoc-project")...)
	}

	return byURI
}

// publishProjectDiagnostics runs project-wide rules and publishes the
// findings. Files that are open get their per-document findings merged in,
// since a publish replaces everything the client holds for that URI.
func (s *Server) publishProjectDiagnostics() {
	for uri, diags := range s.runProjectDiagnostics() {
		if d := s.documents.Get(uri); d != nil && strings.HasSuffix(uri, ".md") {
			diags = append(s.lintDocument(d), diags...)
		}
		s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: diags,
		})
	}
}

// toLSPDiagnostics converts lint diagnostics to LSP diagnostics. Lint
// positions are 1-based, LSP positions 0-based.
func toLSPDiagnostics(diags []lint.Diagnostic, source string) []Diagnostic {
	var result []Diagnostic
	for _, d := range diags {
		// Determine end position - use EndPos if available, otherwise estimate
		endLine := d.EndPos.Line
		endCol := d.EndPos.Column
		if endLine == 0 && endCol == 0 {
			endLine = d.Pos.Line
			endCol = d.Pos.Column + 10
		}

		diag := Diagnostic{
			Range: Range{
				Start: Position{
					Line:      uint32(max(0, d.Pos.Line-1)),   //nolint:gosec // G115: line is always non-negative
					Character: uint32(max(0, d.Pos.Column-1)), //nolint:gosec // G115: column is always non-negative
				},
				End: Position{
					Line:      uint32(max(0, endLine-1)), //nolint:gosec // G115: line is always non-negative
					Character: uint32(max(0, endCol-1)),  //nolint:gosec // G115: column is always non-negative
				},
			},
			Severity: toLSPSeverity(d.Severity),
			Code:     d.RuleID,
			Source:   source,
			Message:  d.Message,
		}

		// Add documentation URL if available
		if d.DocumentationURL != "" {
			diag.CodeDescription = &CodeDescription{Href: d.DocumentationURL}
		} else {
			diag.CodeDescription = &CodeDescription{Href: lint.BuildDocURL(d.RuleID)}
		}

		result = append(result, diag)
	}
	return result
}

// toLSPSeverity converts core.Severity to LSP DiagnosticSeverity.
func toLSPSeverity(s core.Severity) DiagnosticSeverity {
	switch s {
	case core.SeverityError:
		return DiagnosticSeverityError
	case core.SeverityWarning:
		return DiagnosticSeverityWarning
	case core.SeverityInfo:
		return DiagnosticSeverityInformation
	case core.SeverityHint:
		return DiagnosticSeverityHint
	default:
		return DiagnosticSeverityWarning
	}
}
