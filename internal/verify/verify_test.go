package verify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
	"github.com/sqldoc-labs/sqldoc/pkg/dialect"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
)

func TestSplitStatements(t *testing.T) {
	pg, ok := dialect.Get("postgres")
	require.True(t, ok)
	tsql, ok := dialect.Get("tsql")
	require.True(t, ok)

	tests := []struct {
		name string
		d    *dialect.Dialect
		src  string
		want []string
	}{
		{
			name: "two statements",
			d:    pg,
			src:  "SELECT 1;\nSELECT 2;",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "trailing statement without semicolon",
			d:    pg,
			src:  "SELECT 1; SELECT 2",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "semicolon inside string does not split",
			d:    pg,
			src:  "SELECT 'a;b'; SELECT 2;",
			want: []string{"SELECT 'a;b'", "SELECT 2"},
		},
		{
			name: "semicolon inside comment does not split",
			d:    pg,
			src:  "SELECT 1 -- trailing; note\n;SELECT 2;",
			want: []string{"SELECT 1 -- trailing; note", "SELECT 2"},
		},
		{
			name: "batch separator splits",
			d:    tsql,
			src:  "SELECT 1\nGO\nSELECT 2",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "comment-only source yields nothing",
			d:    pg,
			src:  "-- nothing here\n/* still nothing */",
			want: nil,
		},
		{
			name: "empty statements dropped",
			d:    pg,
			src:  ";;SELECT 1;;",
			want: []string{"SELECT 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := SplitStatements(tt.src, tt.d)
			var got []string
			for _, s := range stmts {
				got = append(got, s.SQL)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitStatementsPositions(t *testing.T) {
	pg, ok := dialect.Get("postgres")
	require.True(t, ok)

	stmts := SplitStatements("SELECT 1;\nSELECT 2;", pg)
	require.Len(t, stmts, 2)
	assert.Equal(t, 1, stmts[0].Pos.Line)
	assert.Equal(t, 2, stmts[1].Pos.Line)
}

func TestNewRefusesTSQL(t *testing.T) {
	for _, typ := range []string{"tsql", "mssql", "sqlserver"} {
		_, err := New(core.TargetConfig{Type: typ}, nil)
		require.Error(t, err, typ)
		assert.Contains(t, err.Error(), "no embeddable driver")
	}
}

func TestNewUnknownTarget(t *testing.T) {
	_, err := New(core.TargetConfig{Type: "oracle"}, nil)
	require.Error(t, err)
	var unknown *UnknownTargetError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Type)
	assert.Contains(t, unknown.Available, "sqlite")
}

func TestNewRegisteredTargets(t *testing.T) {
	for _, typ := range []string{"postgres", "duckdb", "sqlite"} {
		assert.True(t, IsRegistered(typ), typ)
		v, err := New(core.TargetConfig{Type: typ}, nil)
		require.NoError(t, err, typ)
		assert.Equal(t, typ, v.DialectName())
	}
}

func TestVerifyDocumentAgainstSQLite(t *testing.T) {
	ctx := context.Background()
	v, err := New(core.TargetConfig{Type: "sqlite"}, nil)
	require.NoError(t, err)
	require.NoError(t, v.Connect(ctx, core.TargetConfig{Type: "sqlite"}))
	t.Cleanup(func() { _ = v.Close() })

	// Give the prepare path something to resolve against.
	sv := v.(*sqliteVerifier)
	_, err = sv.db.ExecContext(ctx, "CREATE TABLE plans (id INTEGER, cost REAL)")
	require.NoError(t, err)

	src := strings.Join([]string{
		"# Plans",
		"",
		"```sql",
		"SELECT id, cost FROM plans WHERE cost > 1.0;",
		"```",
		"",
		"```sql",
		"SELECT id FROM missing_table;",
		"```",
		"",
		"```tsql",
		"SELECT TOP 5 * FROM plans;",
		"```",
		"",
		"```sql",
		"-- commentary only",
		"```",
		"",
	}, "\n")
	d := doc.Parse([]byte(src))

	results := NewRunner(v, nil).VerifyDocument(ctx, "plans.md", d, "sqlite")
	require.Len(t, results, 4)

	assert.Equal(t, StatusOK, results[0].Status)
	assert.Equal(t, 1, results[0].Statements)

	assert.Equal(t, StatusFailed, results[1].Status)
	assert.Contains(t, results[1].Detail, "missing_table")
	// The failed statement's line is reported in document coordinates.
	assert.Contains(t, results[1].Detail, "line 8:")

	assert.Equal(t, StatusSkipped, results[2].Status)
	assert.Contains(t, results[2].Detail, "tsql snippet, sqlite target")

	assert.Equal(t, StatusSkipped, results[3].Status)
	assert.Equal(t, "no statements", results[3].Detail)

	okCount, failed, skipped := Count(results)
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, skipped)
}

func TestPrepareBeforeConnect(t *testing.T) {
	v, err := New(core.TargetConfig{Type: "sqlite"}, nil)
	require.NoError(t, err)
	err = v.Prepare(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")
}
