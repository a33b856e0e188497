package verify

import (
	"context"
	"log/slog"

	_ "modernc.org/sqlite" // sqlite driver (cgo-free)

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

func init() {
	Register("sqlite", func(logger *slog.Logger) Verifier {
		return &sqliteVerifier{sqlConn{logger: logger}}
	})
}

type sqliteVerifier struct {
	sqlConn
}

func (v *sqliteVerifier) DialectName() string { return "sqlite" }

// Connect opens the SQLite database at the target's Database path, or an
// in-memory one when the path is empty.
func (v *sqliteVerifier) Connect(ctx context.Context, cfg core.TargetConfig) error {
	path := cfg.Database
	if path == "" {
		path = ":memory:"
	}
	v.logger.Debug("connecting to sqlite", slog.String("path", path))
	if err := v.open(ctx, "sqlite", path); err != nil {
		return err
	}
	// ":memory:" is per-connection; a second connection would see a
	// different database.
	v.db.SetMaxOpenConns(1)
	return nil
}
