package dialect

// ansiStarters are the statement-starter keywords shared by every builtin
// dialect. Individual dialects extend this set.
var ansiStarters = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "MERGE",
	"CREATE", "ALTER", "DROP", "TRUNCATE",
	"WITH", "VALUES", "TABLE",
	"GRANT", "REVOKE",
	"COMMIT", "ROLLBACK", "SAVEPOINT", "RELEASE",
	"SET", "CALL", "DECLARE",
}

// builtinTSQL is the SQL Server dialect. It is the default for ```sql blocks
// in this project's articles.
var builtinTSQL = NewDialect("tsql").
	Quotes(QuotePair{'"', '"'}, QuotePair{'[', ']'}).
	Params('@').
	UnicodeStrings().
	NestedComments().
	BeginEndBlocks().
	BatchSeparator("GO").
	Starters(ansiStarters...).
	Starters(
		"EXEC", "EXECUTE", "USE", "PRINT", "IF", "WHILE", "RETURN",
		"BEGIN", "END", "RAISERROR", "THROW", "DBCC", "CHECKPOINT",
		"WAITFOR", "OPEN", "CLOSE", "FETCH", "DEALLOCATE",
		"BACKUP", "RESTORE", "BULK", "ELSE",
	).
	Features(FeatureTop, FeatureOffsetFetch, FeatureForXML, FeatureCrossApply, FeatureTableHints).
	Hint(FeatureLimit, "use TOP (n) or OFFSET ... FETCH instead").
	Hint(FeatureQualify, "filter a ranked subquery or CTE instead").
	Hint(FeatureIlike, "LIKE is case-insensitive under the default collation").
	Hint(FeatureGroupByAll, "list the grouping columns explicitly").
	Build()

// builtinANSI is a strict SQL standard dialect.
var builtinANSI = NewDialect("ansi").
	Quotes(QuotePair{'"', '"'}).
	Params(':').
	UnicodeStrings().
	NestedComments().
	Starters(ansiStarters...).
	Features(FeatureOffsetFetch).
	Hint(FeatureTop, "use FETCH FIRST n ROWS ONLY").
	Hint(FeatureLimit, "use FETCH FIRST n ROWS ONLY").
	Build()

// builtinPostgres is the PostgreSQL dialect.
var builtinPostgres = NewDialect("postgres").
	Quotes(QuotePair{'"', '"'}).
	Params('$').
	NestedComments().
	DollarStrings().
	Starters(ansiStarters...).
	Starters(
		"BEGIN", "END", "DO", "EXPLAIN", "ANALYZE", "VACUUM", "COPY",
		"SHOW", "RESET", "REINDEX", "CLUSTER", "COMMENT",
		"LISTEN", "NOTIFY", "UNLISTEN",
		"PREPARE", "EXECUTE", "DEALLOCATE", "DISCARD", "LOCK",
		"REFRESH", "ABORT", "CHECKPOINT",
	).
	Features(FeatureLimit, FeatureOffsetFetch, FeatureIlike).
	Hint(FeatureTop, "use LIMIT n or FETCH FIRST n ROWS ONLY").
	Hint(FeatureCrossApply, "use a LATERAL join").
	Hint(FeatureForXML, "use the xml* or json aggregate functions").
	Build()

// builtinDuckDB is the DuckDB dialect.
var builtinDuckDB = NewDialect("duckdb").
	Quotes(QuotePair{'"', '"'}).
	Params('?', '$').
	NestedComments().
	DollarStrings().
	Starters(ansiStarters...).
	Starters(
		"BEGIN", "END", "EXPLAIN", "ANALYZE", "PRAGMA",
		"ATTACH", "DETACH", "COPY", "EXPORT", "IMPORT",
		"INSTALL", "LOAD", "DESCRIBE", "SUMMARIZE", "SHOW", "USE",
		"PREPARE", "EXECUTE", "DEALLOCATE", "CHECKPOINT",
		"FROM", "PIVOT", "UNPIVOT",
	).
	Features(FeatureLimit, FeatureOffsetFetch, FeatureQualify, FeatureGroupByAll, FeatureIlike).
	Hint(FeatureTop, "use LIMIT n").
	Hint(FeatureCrossApply, "use a LATERAL join").
	Build()

// builtinSQLite is the SQLite dialect.
var builtinSQLite = NewDialect("sqlite").
	Quotes(QuotePair{'"', '"'}, QuotePair{'[', ']'}, QuotePair{'`', '`'}).
	Params('?', ':', '@', '$').
	Starters(ansiStarters...).
	Starters(
		"BEGIN", "END", "EXPLAIN", "ANALYZE", "VACUUM",
		"PRAGMA", "ATTACH", "DETACH", "REINDEX",
	).
	Features(FeatureLimit).
	Hint(FeatureTop, "use LIMIT n").
	Hint(FeatureOffsetFetch, "use LIMIT n OFFSET m").
	Build()

func init() {
	Register(builtinTSQL)
	Register(builtinANSI)
	Register(builtinPostgres)
	Register(builtinDuckDB)
	Register(builtinSQLite)

	RegisterAlias("mssql", "tsql")
	RegisterAlias("sqlserver", "tsql")
	RegisterAlias("t-sql", "tsql")
	RegisterAlias("pg", "postgres")
	RegisterAlias("postgresql", "postgres")
}
