package verify

import (
	"context"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

func init() {
	Register("duckdb", func(logger *slog.Logger) Verifier {
		return &duckdbVerifier{sqlConn{logger: logger}}
	})
}

type duckdbVerifier struct {
	sqlConn
}

func (v *duckdbVerifier) DialectName() string { return "duckdb" }

// Connect opens the DuckDB database at the target's Database path, or an
// in-memory one when the path is empty.
func (v *duckdbVerifier) Connect(ctx context.Context, cfg core.TargetConfig) error {
	path := cfg.Database
	if path == "" {
		path = ":memory:"
	}
	v.logger.Debug("connecting to duckdb", slog.String("path", path))
	return v.open(ctx, "duckdb", path)
}
