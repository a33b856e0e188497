// Package state persists check-run history in SQLite: one row per check
// invocation, its diagnostics, and per-file content hashes for change
// detection. The store is a thin layer over database/sql with the pure-Go
// driver; schema changes go through goose migrations embedded in the binary.
package state

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

// timeLayout is how timestamps are stored. Text keeps the database readable
// with any sqlite shell.
const timeLayout = time.RFC3339Nano

// Store implements core.Store on SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ core.Store = (*Store)(nil)

// New creates an unopened store.
func New() *Store {
	return NewWithLogger(nil)
}

// NewWithLogger creates an unopened store with the given logger. A nil
// logger discards.
func NewWithLogger(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger}
}

// NewWithDB wraps an existing connection. Useful for tests and for callers
// that manage the connection themselves; Open must not be called on it.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db, logger: slog.New(slog.DiscardHandler)}
}

// Open opens the SQLite database at path, creating parent directories as
// needed. Use ":memory:" for an in-memory database.
func (s *Store) Open(path string) error {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// One connection only: a second connection to ":memory:" would see a
	// different database, and SQLite serializes writers regardless.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("state database opened", "path", path)
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, err)
	}
	return t, nil
}
