// Package verify runs documentation SQL snippets against a live database
// without executing them: every statement is prepared and immediately
// deallocated, so the real engine checks syntax and referenced objects while
// the data stays untouched.
//
// Drivers register themselves through init(), the way database adapters
// usually do. Import the package and the postgres, duckdb and sqlite
// verifiers are available; T-SQL has no embeddable driver, so targets of
// that type are refused up front.
package verify

import (
	"context"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

// Verifier is a live connection that can round-trip statements through a
// database engine's prepare path.
type Verifier interface {
	// Connect establishes the connection described by the target.
	Connect(ctx context.Context, cfg core.TargetConfig) error

	// Close releases the connection.
	Close() error

	// Prepare compiles one statement on the server and discards the
	// handle. The returned error is the engine's own message.
	Prepare(ctx context.Context, stmt string) error

	// DialectName names the SQL dialect the target speaks.
	DialectName() string
}
