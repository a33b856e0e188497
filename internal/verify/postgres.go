package verify

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

func init() {
	Register("postgres", func(logger *slog.Logger) Verifier {
		return &postgresVerifier{sqlConn{logger: logger}}
	})
}

// postgresVerifier prepares statements over the pgx extended protocol, so
// Postgres parses and plans each one without running it.
type postgresVerifier struct {
	sqlConn
}

func (v *postgresVerifier) DialectName() string { return "postgres" }

func (v *postgresVerifier) Connect(ctx context.Context, cfg core.TargetConfig) error {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = buildPostgresDSN(cfg)
	}
	v.logger.Debug("connecting to postgres", slog.String("database", cfg.Database))
	return v.open(ctx, "pgx", dsn)
}

// buildPostgresDSN assembles a key=value connection string when the target
// gives no DSN. Host, port, user, password and sslmode come from the
// target's options map.
func buildPostgresDSN(cfg core.TargetConfig) string {
	opt := func(key, fallback string) string {
		if v, ok := cfg.Options[key]; ok && v != "" {
			return v
		}
		return fallback
	}

	dsn := fmt.Sprintf("host=%s port=%s dbname=%s sslmode=%s",
		opt("host", "localhost"), opt("port", "5432"), cfg.Database, opt("sslmode", "disable"))
	if user := opt("user", ""); user != "" {
		dsn += " user=" + user
	}
	if password := opt("password", ""); password != "" {
		dsn += " password=" + password
	}
	return dsn
}
