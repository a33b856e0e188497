package verify

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// sqlConn provides the database/sql plumbing shared by all verifiers.
// Concrete verifiers embed it and implement Connect and DialectName.
type sqlConn struct {
	db     *sql.DB
	logger *slog.Logger
}

// open connects through the named driver and pings to confirm the target is
// actually reachable.
func (c *sqlConn) open(ctx context.Context, driver, dsn string) error {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s: %w", driver, err)
	}
	c.db = db
	return nil
}

// Prepare compiles one statement and immediately closes the handle. The
// engine's error comes back unwrapped so the caller can show it verbatim.
func (c *sqlConn) Prepare(ctx context.Context, stmt string) error {
	if c.db == nil {
		return fmt.Errorf("database connection not established")
	}
	prepared, err := c.db.PrepareContext(ctx, stmt)
	if err != nil {
		return err
	}
	return prepared.Close()
}

// Close closes the database connection.
func (c *sqlConn) Close() error {
	if c.db != nil {
		c.logger.Debug("closing database connection")
		return c.db.Close()
	}
	return nil
}
