package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/sqldoc-labs/sqldoc/internal/config"
	"github.com/sqldoc-labs/sqldoc/internal/rulescript"
	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/lint"
	lintproject "github.com/sqldoc-labs/sqldoc/pkg/lint/project"
	_ "github.com/sqldoc-labs/sqldoc/pkg/lint/project/rules" // Register project rules
	_ "github.com/sqldoc-labs/sqldoc/pkg/lint/rules"         // Register document lint rules
)

// Server implements the Language Server Protocol for sqldoc.
type Server struct {
	// Document management
	documents *DocumentStore

	// Project context
	projectRoot string
	initialized bool
	configFound bool

	// Effective project configuration (defaults applied, never nil after
	// initialization)
	cfg *core.ProjectConfig

	// Lint pipeline, rebuilt whenever configuration is (re)loaded
	analyzer        *lint.Analyzer
	env             lint.Env
	projectAnalyzer *lintproject.Analyzer

	// I/O
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex

	// Logging
	logger *slog.Logger

	// Shutdown state
	shutdown   bool
	shutdownMu sync.RWMutex
}

// NewServer creates a new LSP server instance.
func NewServer(reader io.Reader, writer io.Writer) *Server {
	return NewServerWithLogger(reader, writer, nil)
}

// NewServerWithLogger creates a new LSP server instance with a custom logger.
// Logs go to the given logger's handler, never to the writer: stdout carries
// the JSON-RPC stream.
func NewServerWithLogger(reader io.Reader, writer io.Writer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Server{
		documents:       NewDocumentStore(),
		reader:          bufio.NewReader(reader),
		writer:          writer,
		logger:          logger,
		analyzer:        lint.NewAnalyzer(nil),
		env:             lint.NewFSEnv(""),
		projectAnalyzer: lintproject.NewAnalyzer(nil),
	}
}

// Run starts the server's main loop, processing JSON-RPC messages.
func (s *Server) Run() error {
	s.logger.Info("sqldoc LSP server starting...")

	for {
		s.shutdownMu.RLock()
		if s.shutdown {
			s.shutdownMu.RUnlock()
			return nil
		}
		s.shutdownMu.RUnlock()

		// Read message
		msg, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("Client disconnected")
				return nil
			}
			s.logger.Error("Error reading message", "error", err)
			continue
		}

		// Handle message
		if err := s.handleMessage(msg); err != nil {
			s.logger.Error("Error handling message", "error", err)
		}
	}
}

// JSONRPCMessage represents a JSON-RPC 2.0 message.
type JSONRPCMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *JSONRPCError    `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC error.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// readMessage reads a JSON-RPC message from the input stream.
func (s *Server) readMessage() (*JSONRPCMessage, error) {
	// Read headers
	var contentLength int
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			break // End of headers
		}

		if strings.HasPrefix(line, "Content-Length: ") {
			lengthStr := strings.TrimPrefix(line, "Content-Length: ")
			contentLength, err = strconv.Atoi(lengthStr)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
		}
	}

	if contentLength == 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	// Read body
	body := make([]byte, contentLength)
	_, err := io.ReadFull(s.reader, body)
	if err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}

	// Parse message
	var msg JSONRPCMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}

	return &msg, nil
}

// sendResponse sends a JSON-RPC response.
func (s *Server) sendResponse(id *json.RawMessage, result any, err *JSONRPCError) {
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
	}

	if err != nil {
		msg.Error = err
	} else {
		resultBytes, _ := json.Marshal(result)
		msg.Result = resultBytes
	}

	s.writeMessage(&msg)
}

// sendNotification sends a JSON-RPC notification (no ID).
func (s *Server) sendNotification(method string, params any) {
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		Method:  method,
	}

	if params != nil {
		paramsBytes, _ := json.Marshal(params)
		msg.Params = paramsBytes
	}

	s.writeMessage(&msg)
}

// writeMessage writes a JSON-RPC message to the output stream.
func (s *Server) writeMessage(msg *JSONRPCMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	body, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Error marshaling message", "error", err)
		return
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	_, _ = s.writer.Write([]byte(header))
	_, _ = s.writer.Write(body)
}

// handleMessage dispatches a message to the appropriate handler.
func (s *Server) handleMessage(msg *JSONRPCMessage) error {
	s.logger.Info("Received", "method", msg.Method)

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return s.handleInitialized(msg)
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		return s.handleExit(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	default:
		if msg.ID != nil {
			// Unknown method with ID - respond with method not found
			s.sendResponse(msg.ID, nil, &JSONRPCError{
				Code:    -32601,
				Message: "Method not found: " + msg.Method,
			})
		}
		return nil
	}
}

// --- Lifecycle handlers ---

func (s *Server) handleInitialize(msg *JSONRPCMessage) error {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: -32602, Message: err.Error()})
		return err
	}

	s.projectRoot = URIToPath(params.RootURI)

	// sqldoc.yaml may live above the workspace folder when the editor was
	// opened on the docs directory itself.
	if s.projectRoot != "" {
		if root := config.FindProjectRoot(s.projectRoot); root != "" {
			s.projectRoot = root
		}
	}
	s.logger.Info("Project root", "path", s.projectRoot)

	s.loadProjectConfig()

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
				Save: &SaveOptions{
					IncludeText: true,
				},
			},
		},
	}

	s.sendResponse(msg.ID, result, nil)
	return nil
}

func (s *Server) handleInitialized(_ *JSONRPCMessage) error {
	s.initialized = true
	s.logger.Info("Server initialized")

	// Show info if running without a project config
	if !s.configFound {
		s.sendNotification("window/showMessage", &ShowMessageParams{
			Type:    MessageTypeInfo,
			Message: "No sqldoc.yaml found. Linting with default settings; run 'sqldoc init' to create a project.",
		})
	}

	// Run project-wide diagnostics on startup
	s.publishProjectDiagnostics()

	return nil
}

func (s *Server) handleShutdown(msg *JSONRPCMessage) error {
	s.shutdownMu.Lock()
	s.shutdown = true
	s.shutdownMu.Unlock()

	s.sendResponse(msg.ID, nil, nil)
	s.logger.Info("Server shutdown")
	return nil
}

func (s *Server) handleExit(_ *JSONRPCMessage) error {
	s.logger.Info("Server exit")
	os.Exit(0)
	return nil
}

// --- Document handlers ---

func (s *Server) handleDidOpen(msg *JSONRPCMessage) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	s.documents.Open(params.TextDocument.URI, params.TextDocument.Text, params.TextDocument.Version)
	s.logger.Info("Opened", "uri", params.TextDocument.URI)

	// Run diagnostics
	s.publishDiagnostics(params.TextDocument.URI)

	return nil
}

func (s *Server) handleDidClose(msg *JSONRPCMessage) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	s.documents.Close(params.TextDocument.URI)
	s.logger.Info("Closed", "uri", params.TextDocument.URI)

	// Clear diagnostics
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []Diagnostic{},
	})

	return nil
}

func (s *Server) handleDidChange(msg *JSONRPCMessage) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	// We use full sync, so take the last change
	if len(params.ContentChanges) > 0 {
		lastChange := params.ContentChanges[len(params.ContentChanges)-1]
		s.documents.Update(params.TextDocument.URI, lastChange.Text, params.TextDocument.Version)
	}

	// Run diagnostics
	s.publishDiagnostics(params.TextDocument.URI)

	return nil
}

func (s *Server) handleDidSave(msg *JSONRPCMessage) error {
	var params DidSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	path := URIToPath(params.TextDocument.URI)
	s.logger.Info("Saved", "path", path)

	switch {
	case isConfigFile(path) || strings.HasSuffix(path, ".star"):
		// Config or custom rules changed: rebuild the lint pipeline and
		// re-lint everything that is open.
		s.loadProjectConfig()
		for _, uri := range s.documents.List() {
			s.publishDiagnostics(uri)
		}
		s.publishProjectDiagnostics()
	case strings.HasSuffix(path, ".md"):
		// The link graph may have changed, re-run project-wide rules
		s.publishProjectDiagnostics()
	}

	return nil
}

// --- Helper methods ---

// loadProjectConfig loads sqldoc.yaml and rebuilds the analyzers from it.
// Missing or broken configuration degrades to defaults so the server keeps
// serving diagnostics.
func (s *Server) loadProjectConfig() {
	cfg, err := config.LoadFromDir(s.projectRoot)
	if err != nil {
		s.logger.Warn("Failed to load sqldoc.yaml", "error", err)
		cfg = nil
	}
	s.configFound = cfg != nil
	if cfg == nil {
		cfg = &core.ProjectConfig{}
		config.ApplyDefaults(cfg)
	}
	s.cfg = cfg

	lintCfg, err := lint.FromCore(cfg.Lint)
	if err != nil {
		s.logger.Warn("Invalid lint configuration", "error", err)
		lintCfg = lint.NewConfig()
	}

	// Custom Starlark rules extend (or shadow) the built-in rule set
	var defs []lint.RuleDef
	if s.projectRoot != "" {
		loader := rulescript.NewLoader(filepath.Join(s.projectRoot, cfg.RulesDir), s.logger)
		defs, err = loader.Load()
		if err != nil {
			s.logger.Warn("Failed to load custom rules", "error", err)
		}
	}
	s.analyzer = lint.NewAnalyzerWithRegistry(lintCfg, rulescript.BuildRegistry(defs))
	s.env = lint.NewFSEnv(cfg.Dialect)

	var plc *core.ProjectLintConfig
	if cfg.Lint != nil {
		plc = cfg.Lint.Project
	}
	projCfg, err := lintproject.ConfigFromCore(plc)
	if err != nil {
		s.logger.Warn("Invalid project lint configuration", "error", err)
		projCfg = nil
	}
	s.projectAnalyzer = lintproject.NewAnalyzer(projCfg)

	s.logger.Info("Configuration loaded",
		"config_found", s.configFound,
		"custom_rules", len(defs),
		"dialect", cfg.Dialect)
}

// projectLintEnabled reports whether project-wide rules should run.
func (s *Server) projectLintEnabled() bool {
	if s.cfg == nil || s.cfg.Lint == nil {
		return true
	}
	return s.cfg.Lint.Project.IsEnabled()
}

// isConfigFile reports whether path names the project config file.
func isConfigFile(path string) bool {
	base := filepath.Base(path)
	return base == config.ConfigFileName || base == config.ConfigFileNameAlt
}
