package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/sqldoc-labs/sqldoc/internal/project"
	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

// DevServer serves the built site from memory, rebuilding when project
// files change and live-reloading connected browsers over SSE.
type DevServer struct {
	root   string
	cfg    *core.ProjectConfig
	opts   BuildOptions
	port   int
	logger *slog.Logger

	mu   sync.RWMutex
	site *Site

	clientsMu sync.Mutex
	clients   map[chan struct{}]struct{}
}

// NewDevServer creates a preview server for the project at root. The build
// options are used as given except that live reload is always on.
func NewDevServer(root string, cfg *core.ProjectConfig, opts BuildOptions, port int, logger *slog.Logger) *DevServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts.LiveReload = true
	return &DevServer{
		root:    root,
		cfg:     cfg,
		opts:    opts,
		port:    port,
		logger:  logger,
		clients: make(map[chan struct{}]struct{}),
	}
}

// Serve builds the site, then blocks serving it until ctx is cancelled.
func (s *DevServer) Serve(ctx context.Context) error {
	p, err := s.rebuild()
	if err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(middleware.Recoverer)
	r.Get("/__reload", s.handleSSE)
	r.Get("/*", s.handlePage)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		return project.Watch(egctx, []string{p.DocsDir}, nil, s.logger, func() {
			if _, err := s.rebuild(); err != nil {
				s.logger.Error("rebuild failed", "error", err)
				return
			}
			s.notifyClients()
		})
	})

	eg.Go(func() error {
		s.logger.Info("preview server running", "addr", fmt.Sprintf("http://localhost:%d", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// rebuild reloads the project and swaps in a fresh render. The previous
// site keeps serving when the rebuild fails.
func (s *DevServer) rebuild() (*project.Project, error) {
	p, err := project.Load(context.Background(), project.Options{
		Root:   s.root,
		Config: s.cfg,
		Logger: s.logger,
	})
	if err != nil {
		return nil, err
	}

	built, err := NewBuilder(p, s.opts, s.logger).Render()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.site = built
	s.mu.Unlock()
	s.logger.Debug("site rebuilt", "files", len(built.Files))
	return p, nil
}

func (s *DevServer) currentSite() *Site {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.site
}

// handlePage serves a file from the in-memory site. "/" maps to the index
// page, bare directories to their index.html.
func (s *DevServer) handlePage(w http.ResponseWriter, r *http.Request) {
	site := s.currentSite()
	if site == nil {
		http.Error(w, "site not built yet", http.StatusServiceUnavailable)
		return
	}

	rel := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if rel == "" || rel == "." {
		rel = site.IndexOutput
	}

	content, ok := site.Files[rel]
	if !ok {
		if c, found := site.Files[rel+"/index.html"]; found {
			content, ok = c, true
		}
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctype := mime.TypeByExtension(path.Ext(rel))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write(content)
}

// handleSSE holds the connection open and sends a reload event after each
// successful rebuild.
func (s *DevServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	ch := make(chan struct{}, 1)
	s.clientsMu.Lock()
	s.clients[ch] = struct{}{}
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, ch)
		s.clientsMu.Unlock()
	}()

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			_, _ = fmt.Fprintf(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}

// notifyClients signals every connected SSE client.
func (s *DevServer) notifyClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- struct{}{}:
		default:
			// client already has a pending reload
		}
	}
}
