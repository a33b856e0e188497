package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureString(t *testing.T) {
	tests := []struct {
		feature Feature
		want    string
	}{
		{FeatureTop, "TOP"},
		{FeatureLimit, "LIMIT"},
		{FeatureOffsetFetch, "OFFSET ... FETCH"},
		{FeatureQualify, "QUALIFY"},
		{FeatureForXML, "FOR XML"},
		{FeatureCrossApply, "CROSS APPLY"},
		{FeatureGroupByAll, "GROUP BY ALL"},
		{FeatureIlike, "ILIKE"},
		{FeatureTableHints, "table hints"},
		{Feature(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.feature.String())
		})
	}
}

func TestGetResolvesAliases(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"tsql", "tsql"},
		{"TSQL", "tsql"},
		{"mssql", "tsql"},
		{"sqlserver", "tsql"},
		{"t-sql", "tsql"},
		{"pg", "postgres"},
		{"postgresql", "postgres"},
		{"duckdb", "duckdb"},
		{"sqlite", "sqlite"},
		{"ansi", "ansi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Get(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.want, d.Name)
		})
	}
}

func TestGetUnknownDialect(t *testing.T) {
	_, ok := Get("oracle-9i")
	assert.False(t, ok)
}

func TestListIsSorted(t *testing.T) {
	names := List()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
	assert.Contains(t, names, "tsql")
	assert.Contains(t, names, "postgres")
}

func TestTSQLSurface(t *testing.T) {
	d, ok := Get("tsql")
	require.True(t, ok)

	closing, ok := d.QuoteFor('[')
	require.True(t, ok)
	assert.Equal(t, byte(']'), closing)

	_, ok = d.QuoteFor('`')
	assert.False(t, ok, "backtick identifiers are not T-SQL")

	assert.True(t, d.IsParamMarker('@'))
	assert.False(t, d.IsParamMarker('$'))
	assert.True(t, d.UnicodeStrings())
	assert.True(t, d.AllowsNestedComments())
	assert.True(t, d.HasBeginEndBlocks())
	assert.Equal(t, "GO", d.BatchSeparator())
}

func TestStatementStarters(t *testing.T) {
	tsql, _ := Get("tsql")
	pg, _ := Get("postgres")

	tests := []struct {
		dialect *Dialect
		word    string
		want    bool
	}{
		{tsql, "SELECT", true},
		{tsql, "select", true},
		{tsql, "DBCC", true},
		{tsql, "EXEC", true},
		{tsql, "PRAGMA", false},
		{pg, "VACUUM", true},
		{pg, "DBCC", false},
		{pg, "listen", true},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name+"_"+tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.IsStatementStarter(tt.word))
		})
	}
}

func TestFeatureGates(t *testing.T) {
	tests := []struct {
		dialect string
		feature Feature
		want    bool
	}{
		{"tsql", FeatureTop, true},
		{"tsql", FeatureLimit, false},
		{"tsql", FeatureOffsetFetch, true},
		{"tsql", FeatureForXML, true},
		{"postgres", FeatureLimit, true},
		{"postgres", FeatureTop, false},
		{"postgres", FeatureIlike, true},
		{"duckdb", FeatureQualify, true},
		{"duckdb", FeatureGroupByAll, true},
		{"sqlite", FeatureLimit, true},
		{"sqlite", FeatureOffsetFetch, false},
		{"ansi", FeatureOffsetFetch, true},
		{"ansi", FeatureLimit, false},
	}

	for _, tt := range tests {
		t.Run(tt.dialect+"_"+tt.feature.String(), func(t *testing.T) {
			d, ok := Get(tt.dialect)
			require.True(t, ok)
			assert.Equal(t, tt.want, d.Has(tt.feature))
		})
	}
}

func TestHints(t *testing.T) {
	tsql, _ := Get("tsql")
	assert.Contains(t, tsql.Hint(FeatureLimit), "TOP")
	assert.Empty(t, tsql.Hint(FeatureTop), "no hint for an accepted construct")
}

func TestStatementStartersSorted(t *testing.T) {
	d, _ := Get("ansi")
	words := d.StatementStarters()
	require.NotEmpty(t, words)
	for i := 1; i < len(words); i++ {
		assert.Less(t, words[i-1], words[i])
	}
}
