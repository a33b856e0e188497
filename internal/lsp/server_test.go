package lsp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frame wraps a JSON-RPC body in the Content-Length header the wire format
// requires.
func frame(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

// decodeFrames parses every framed message a server wrote to out.
func decodeFrames(t *testing.T, out *bytes.Buffer) []*JSONRPCMessage {
	t.Helper()
	parser := NewServer(bytes.NewReader(out.Bytes()), io.Discard)

	var msgs []*JSONRPCMessage
	for {
		msg, err := parser.readMessage()
		if errors.Is(err, io.EOF) {
			return msgs
		}
		require.NoError(t, err)
		msgs = append(msgs, msg)
	}
}

func TestReadMessage(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":1,"method":"initialize"}`
	in := strings.NewReader(frame(body))
	s := NewServerWithLogger(in, io.Discard, nil)

	msg, err := s.readMessage()
	require.NoError(t, err)
	assert.Equal(t, "initialize", msg.Method)
	require.NotNil(t, msg.ID)
	assert.Equal(t, json.RawMessage("1"), *msg.ID)
}

func TestReadMessageMissingContentLength(t *testing.T) {
	in := strings.NewReader("X-Other: 1\r\n\r\n{}")
	s := NewServerWithLogger(in, io.Discard, nil)

	_, err := s.readMessage()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Content-Length")
}

func TestWriteMessageFraming(t *testing.T) {
	s, out := newTestServer(t)

	s.sendNotification("window/showMessage", &ShowMessageParams{
		Type:    MessageTypeInfo,
		Message: "hello",
	})

	msgs := decodeFrames(t, out)
	require.Len(t, msgs, 1)
	assert.Equal(t, "2.0", msgs[0].JSONRPC)
	assert.Equal(t, "window/showMessage", msgs[0].Method)
	assert.Contains(t, string(msgs[0].Params), `"hello"`)
}

func TestHandleMessageUnknownMethod(t *testing.T) {
	s, out := newTestServer(t)

	id := json.RawMessage("7")
	err := s.handleMessage(&JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  "workspace/doesNotExist",
	})
	require.NoError(t, err)

	msgs := decodeFrames(t, out)
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].Error)
	assert.Equal(t, -32601, msgs[0].Error.Code)
	assert.Contains(t, msgs[0].Error.Message, "workspace/doesNotExist")
}

func TestHandleMessageUnknownNotification(t *testing.T) {
	s, out := newTestServer(t)

	// Notifications (no ID) for unknown methods are ignored silently
	err := s.handleMessage(&JSONRPCMessage{
		JSONRPC: "2.0",
		Method:  "$/cancelRequest",
	})
	require.NoError(t, err)
	assert.Empty(t, decodeFrames(t, out))
}

func TestHandleDidOpenPublishesDiagnostics(t *testing.T) {
	s, out := newTestServer(t)

	content := "---\ntitle: T\n---\n\n# One\n\n# Two\n"
	params, err := json.Marshal(DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{
			URI:        "file:///tmp/notes.md",
			LanguageID: "markdown",
			Version:    1,
			Text:       content,
		},
	})
	require.NoError(t, err)

	require.NoError(t, s.handleMessage(&JSONRPCMessage{JSONRPC: "2.0", Method: "textDocument/didOpen", Params: params}))

	msgs := decodeFrames(t, out)
	require.Len(t, msgs, 1)
	assert.Equal(t, "textDocument/publishDiagnostics", msgs[0].Method)

	var published PublishDiagnosticsParams
	require.NoError(t, json.Unmarshal(msgs[0].Params, &published))
	assert.Equal(t, "file:///tmp/notes.md", published.URI)

	codes := make([]string, 0, len(published.Diagnostics))
	for _, d := range published.Diagnostics {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, "HD01")
}

func TestHandleDidCloseClearsDiagnostics(t *testing.T) {
	s, out := newTestServer(t)
	s.documents.Open("file:///tmp/notes.md", "# One\n", 1)

	params, err := json.Marshal(DidCloseTextDocumentParams{
		TextDocument: TextDocumentIdentifier{URI: "file:///tmp/notes.md"},
	})
	require.NoError(t, err)

	require.NoError(t, s.handleMessage(&JSONRPCMessage{JSONRPC: "2.0", Method: "textDocument/didClose", Params: params}))

	assert.Nil(t, s.documents.Get("file:///tmp/notes.md"))

	msgs := decodeFrames(t, out)
	require.Len(t, msgs, 1)
	var published PublishDiagnosticsParams
	require.NoError(t, json.Unmarshal(msgs[0].Params, &published))
	assert.Empty(t, published.Diagnostics)
}

func TestHandleDidChangeUsesLastChange(t *testing.T) {
	s, _ := newTestServer(t)
	s.documents.Open("file:///tmp/notes.md", "# v1\n", 1)

	params, err := json.Marshal(DidChangeTextDocumentParams{
		TextDocument: VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: TextDocumentIdentifier{URI: "file:///tmp/notes.md"},
			Version:                3,
		},
		ContentChanges: []TextDocumentContentChangeEvent{
			{Text: "# v2\n"},
			{Text: "# v3\n"},
		},
	})
	require.NoError(t, err)

	require.NoError(t, s.handleMessage(&JSONRPCMessage{JSONRPC: "2.0", Method: "textDocument/didChange", Params: params}))

	doc := s.documents.Get("file:///tmp/notes.md")
	require.NotNil(t, doc)
	assert.Equal(t, "# v3\n", doc.Content)
	assert.Equal(t, 3, doc.Version)
}

func TestLoadProjectConfigDefaults(t *testing.T) {
	s, _ := newTestServer(t)
	s.projectRoot = t.TempDir()

	s.loadProjectConfig()

	assert.False(t, s.configFound)
	require.NotNil(t, s.cfg)
	assert.Equal(t, "docs", s.cfg.DocsDir)
	assert.Equal(t, "tsql", s.cfg.Dialect)
}

func TestLoadProjectConfigCustomRules(t *testing.T) {
	s, _ := newTestServer(t)

	root := t.TempDir()
	writeProjectFile(t, root, "sqldoc.yaml", "title: Notes\ndialect: sqlite\n")
	writeProjectFile(t, root, "rules", "no_select_star.star", `
def check(doc):
    diags = []
    for snippet in doc.snippets:
        if "select *" in snippet.sql.lower():
            diags.append(diagnostic(message = "snippet uses SELECT *", line = snippet.line))
    return diags

rule(
    id = "XS01",
    name = "custom.no-select-star",
    check = check,
    severity = "error",
)
`)
	s.projectRoot = root
	s.loadProjectConfig()

	assert.True(t, s.configFound)
	assert.Equal(t, "sqlite", s.cfg.Dialect)

	content := "---\ntitle: T\n---\n\n# T\n\n```sql\nSELECT * FROM plans;\n```\n"
	d := &Document{URI: "file:///tmp/notes.md", Content: content, Version: 1}

	var found *Diagnostic
	for _, diag := range s.lintDocument(d) {
		if diag.Code == "XS01" {
			found = &diag
			break
		}
	}
	require.NotNil(t, found, "expected the Starlark rule to fire")
	assert.Equal(t, DiagnosticSeverityError, found.Severity)
	assert.Contains(t, found.Message, "SELECT *")
}

func TestIsConfigFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/proj/sqldoc.yaml", true},
		{"/proj/sqldoc.yml", true},
		{"/proj/docs/index.md", false},
		{"/proj/other.yaml", false},
	}

	for _, tt := range tests {
		if got := isConfigFile(tt.path); got != tt.expected {
			t.Errorf("isConfigFile(%q) = %v, want %v", tt.path, got, tt.expected)
		}
	}
}
