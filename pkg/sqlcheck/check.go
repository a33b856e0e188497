// Package sqlcheck validates SQL snippets lexically and structurally.
//
// The checker is deliberately not a SQL parser. It verifies the properties a
// documentation snippet must have to be plausible SQL in its dialect: it
// lexes cleanly, parentheses and CASE/BEGIN blocks balance, every statement
// opens with a keyword the dialect accepts, SELECT clauses appear in order,
// and no construct foreign to the dialect (LIMIT in T-SQL, TOP in Postgres)
// sneaks in. Anything deeper belongs to a real database; see internal/verify.
package sqlcheck

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sqldoc-labs/sqldoc/pkg/dialect"
	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

// Clause ranks for SELECT statement ordering. Higher ranks must appear later.
const (
	rankSelect  = 10
	rankFrom    = 20
	rankWhere   = 30
	rankGroupBy = 40
	rankHaving  = 50
	rankWindow  = 60
	rankQualify = 65
	rankOrderBy = 70
	rankLimit   = 80 // LIMIT, OFFSET and FETCH share a rank; order among them is free
	rankFor     = 90
)

// tableHintWords are T-SQL table hints recognized inside WITH (...).
var tableHintWords = map[string]bool{
	"NOLOCK": true, "HOLDLOCK": true, "UPDLOCK": true, "XLOCK": true,
	"ROWLOCK": true, "PAGLOCK": true, "TABLOCK": true, "TABLOCKX": true,
	"READPAST": true, "READUNCOMMITTED": true, "REPEATABLEREAD": true,
	"SERIALIZABLE": true, "SNAPSHOT": true, "FORCESEEK": true,
	"FORCESCAN": true, "INDEX": true, "NOEXPAND": true, "NOWAIT": true,
}

// Check validates a SQL snippet under the given dialect and returns all
// findings ordered by position. A nil or empty result means the snippet
// passed.
func Check(src string, d *dialect.Dialect) []Issue {
	lx := NewLexer(src, d)
	toks := lx.Lex()

	c := &checker{d: d}
	c.issues = append(c.issues, lx.Issues...)
	c.run(toks)

	sort.SliceStable(c.issues, func(i, j int) bool {
		return c.issues[i].Pos.Offset < c.issues[j].Pos.Offset
	})
	return c.issues
}

type checker struct {
	d      *dialect.Dialect
	issues []Issue
}

// batchState tracks BEGIN...END block nesting across the statements of one
// batch. T-SQL blocks legitimately span semicolons.
type batchState struct {
	beginPos []token.Position
}

// stmtState tracks SELECT clause ordering and per-statement feature findings.
type stmtState struct {
	tracking bool
	rank     int
	clause   string
	flagged  map[dialect.Feature]bool
}

func (c *checker) addIssue(pos token.Position, code, format string, args ...any) {
	c.issues = append(c.issues, Issue{
		Pos:     pos,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// run splits the token stream into statements on semicolons and batch
// separators and checks each one.
func (c *checker) run(toks []Token) {
	batch := &batchState{}
	var stmt []Token

	flushBatch := func() {
		for _, p := range batch.beginPos {
			c.addIssue(p, CodeBlockMismatch, "BEGIN block is never closed with END")
		}
		batch.beginPos = nil
	}

	for _, t := range toks {
		switch t.Type {
		case TOKEN_SEMICOLON:
			c.checkStatement(stmt, batch)
			stmt = nil
		case TOKEN_BATCH_SEP:
			c.checkStatement(stmt, batch)
			stmt = nil
			flushBatch()
		default:
			stmt = append(stmt, t)
		}
	}
	c.checkStatement(stmt, batch)
	flushBatch()
}

func (c *checker) checkStatement(stmt []Token, batch *batchState) {
	if len(stmt) == 0 {
		return
	}
	c.checkStarter(stmt)
	c.checkStructure(stmt, batch)
}

// checkStarter verifies the statement opens with a keyword the dialect
// accepts. Leading parentheses are allowed for parenthesized set operations.
func (c *checker) checkStarter(stmt []Token) {
	i := 0
	for i < len(stmt) && stmt[i].Type == TOKEN_LPAREN {
		i++
	}
	if i >= len(stmt) {
		return
	}

	t := stmt[i]
	switch t.Type {
	case TOKEN_WORD:
		if !c.d.IsStatementStarter(t.Literal) {
			c.addIssue(t.Pos, CodeBadStatementStart,
				"%q cannot start a statement in %s", t.Literal, c.d.Name)
		}
	case TOKEN_RPAREN, TOKEN_ILLEGAL:
		// already reported by the paren check or the lexer
	default:
		c.addIssue(t.Pos, CodeBadStatementStart,
			"statement starts with a %s, expected a keyword",
			strings.ToLower(t.Type.String()))
	}
}

// checkStructure walks one statement: paren balance, CASE/BEGIN...END
// pairing, SELECT clause order and dialect feature gates.
func (c *checker) checkStructure(stmt []Token, batch *batchState) {
	depth := 0
	var openParens []token.Position
	var caseStack []token.Position
	st := &stmtState{flagged: make(map[dialect.Feature]bool)}

	for i := range stmt {
		t := stmt[i]
		switch t.Type {
		case TOKEN_LPAREN:
			depth++
			openParens = append(openParens, t.Pos)
		case TOKEN_RPAREN:
			if depth == 0 {
				c.addIssue(t.Pos, CodeParenMismatch, "unmatched closing parenthesis")
			} else {
				depth--
				openParens = openParens[:len(openParens)-1]
			}
		case TOKEN_WORD:
			c.checkWord(stmt, i, depth, &caseStack, batch, st)
		}
	}

	for _, p := range openParens {
		c.addIssue(p, CodeParenMismatch, "unclosed parenthesis")
	}
	for _, p := range caseStack {
		c.addIssue(p, CodeBlockMismatch, "CASE expression is never closed with END")
	}
}

func (c *checker) checkWord(stmt []Token, i, depth int, caseStack *[]token.Position, batch *batchState, st *stmtState) {
	upper := strings.ToUpper(stmt[i].Literal)
	pos := stmt[i].Pos

	switch upper {
	case "CASE":
		*caseStack = append(*caseStack, pos)

	case "BEGIN":
		if !c.d.HasBeginEndBlocks() {
			return
		}
		// BEGIN TRAN starts a transaction, not a block
		if next, ok := wordAt(stmt, i+1); ok && (next == "TRAN" || next == "TRANSACTION" || next == "DISTRIBUTED") {
			return
		}
		batch.beginPos = append(batch.beginPos, pos)

	case "END":
		if n := len(*caseStack); n > 0 {
			*caseStack = (*caseStack)[:n-1]
			return
		}
		if n := len(batch.beginPos); n > 0 {
			batch.beginPos = batch.beginPos[:n-1]
			return
		}
		if c.d.HasBeginEndBlocks() {
			c.addIssue(pos, CodeBlockMismatch, "END has no matching CASE or BEGIN")
		}

	case "SELECT":
		if depth != 0 {
			return
		}
		if st.tracking {
			c.clause(st, rankSelect, "SELECT", pos)
		} else {
			st.tracking = true
			st.rank = rankSelect
			st.clause = "SELECT"
		}
		j := skipSelectModifiers(stmt, i+1)
		if w, ok := wordAt(stmt, j); ok && w == "FROM" {
			c.addIssue(stmt[j].Pos, CodeEmptySelectList, "SELECT list is empty")
		}

	case "UNION", "INTERSECT", "EXCEPT", "ELSE":
		// a fresh SELECT may follow
		if depth == 0 && st.tracking {
			st.rank = 0
			st.clause = upper
		}

	case "FROM":
		if depth == 0 {
			c.clause(st, rankFrom, "FROM", pos)
		}

	case "WHERE":
		if depth == 0 {
			c.clause(st, rankWhere, "WHERE", pos)
		}

	case "GROUP":
		next, ok := wordAt(stmt, i+1)
		if !ok || next != "BY" {
			return
		}
		if depth == 0 {
			c.clause(st, rankGroupBy, "GROUP BY", pos)
		}
		if all, ok := wordAt(stmt, i+2); ok && all == "ALL" {
			c.feature(st, dialect.FeatureGroupByAll, stmt[i+2].Pos)
		}

	case "HAVING":
		if depth == 0 {
			c.clause(st, rankHaving, "HAVING", pos)
		}

	case "WINDOW":
		if depth == 0 {
			c.clause(st, rankWindow, "WINDOW", pos)
		}

	case "QUALIFY":
		if depth == 0 && st.tracking {
			c.clause(st, rankQualify, "QUALIFY", pos)
			c.feature(st, dialect.FeatureQualify, pos)
		}

	case "ORDER":
		if next, ok := wordAt(stmt, i+1); ok && next == "BY" && depth == 0 {
			c.clause(st, rankOrderBy, "ORDER BY", pos)
		}

	case "LIMIT":
		if !limitArgFollows(stmt, i+1) {
			return
		}
		c.feature(st, dialect.FeatureLimit, pos)
		if depth == 0 {
			c.clause(st, rankLimit, "LIMIT", pos)
		}

	case "OFFSET":
		if !st.tracking {
			return
		}
		if offsetRowsFollows(stmt, i+1) {
			c.feature(st, dialect.FeatureOffsetFetch, pos)
		} else {
			c.feature(st, dialect.FeatureLimit, pos)
		}
		if depth == 0 {
			c.clause(st, rankLimit, "OFFSET", pos)
		}

	case "FETCH":
		next, ok := wordAt(stmt, i+1)
		if !ok || (next != "FIRST" && next != "NEXT") || !st.tracking {
			return
		}
		c.feature(st, dialect.FeatureOffsetFetch, pos)
		if depth == 0 {
			c.clause(st, rankLimit, "FETCH", pos)
		}

	case "FOR":
		next, ok := wordAt(stmt, i+1)
		if !ok {
			return
		}
		switch next {
		case "XML", "JSON":
			c.feature(st, dialect.FeatureForXML, pos)
			if depth == 0 {
				c.clause(st, rankFor, "FOR "+next, pos)
			}
		case "UPDATE", "SHARE", "NO", "KEY":
			if depth == 0 {
				c.clause(st, rankFor, "FOR "+next, pos)
			}
		}

	case "TOP":
		if prev, ok := wordAt(stmt, i-1); ok {
			switch prev {
			case "SELECT", "DISTINCT", "ALL", "DELETE", "UPDATE", "INSERT":
				c.feature(st, dialect.FeatureTop, pos)
			}
		}

	case "ILIKE":
		c.feature(st, dialect.FeatureIlike, pos)

	case "APPLY":
		if prev, ok := wordAt(stmt, i-1); ok && (prev == "CROSS" || prev == "OUTER") {
			c.feature(st, dialect.FeatureCrossApply, stmt[i-1].Pos)
		}

	case "WITH":
		// WITH ( NOLOCK ... ) is a table hint; WITH name AS (...) is a CTE
		if i+1 < len(stmt) && stmt[i+1].Type == TOKEN_LPAREN {
			if w, ok := wordAt(stmt, i+2); ok && tableHintWords[w] {
				c.feature(st, dialect.FeatureTableHints, pos)
			}
		}
	}
}

// clause enforces SELECT clause ordering. Equal ranks are allowed for
// different clauses (LIMIT 1 OFFSET 2) but not for a repeat of the same one.
func (c *checker) clause(st *stmtState, rank int, name string, pos token.Position) {
	if !st.tracking {
		return
	}
	if rank < st.rank || (rank == st.rank && name == st.clause) {
		c.addIssue(pos, CodeClauseOrder, "%s cannot follow %s", name, st.clause)
		return
	}
	st.rank = rank
	st.clause = name
}

// feature reports use of a construct the dialect rejects, once per statement.
func (c *checker) feature(st *stmtState, f dialect.Feature, pos token.Position) {
	if c.d.Has(f) || st.flagged[f] {
		return
	}
	st.flagged[f] = true

	msg := fmt.Sprintf("%s is not available in %s", f, c.d.Name)
	if hint := c.d.Hint(f); hint != "" {
		msg += " (" + hint + ")"
	}
	c.addIssue(pos, CodeForeignFeature, "%s", msg)
}

// wordAt returns the uppercased word at index i, if it is a word token.
func wordAt(toks []Token, i int) (string, bool) {
	if i < 0 || i >= len(toks) || toks[i].Type != TOKEN_WORD {
		return "", false
	}
	return strings.ToUpper(toks[i].Literal), true
}

// skipSelectModifiers advances past DISTINCT/ALL/TOP n and friends to the
// first token of the select list.
func skipSelectModifiers(stmt []Token, j int) int {
	for {
		w, ok := wordAt(stmt, j)
		if !ok {
			return j
		}
		switch w {
		case "DISTINCT", "ALL":
			j++
		case "TOP":
			j = skipTopArg(stmt, j+1)
		default:
			return j
		}
	}
}

// skipTopArg advances past TOP's argument: (expr) or a bare number or
// parameter, plus optional PERCENT and WITH TIES.
func skipTopArg(stmt []Token, j int) int {
	if j < len(stmt) {
		switch stmt[j].Type {
		case TOKEN_LPAREN:
			j = skipParens(stmt, j)
		case TOKEN_NUMBER, TOKEN_PARAM:
			j++
		}
	}
	if w, ok := wordAt(stmt, j); ok && w == "PERCENT" {
		j++
	}
	if w, ok := wordAt(stmt, j); ok && w == "WITH" {
		if w2, ok := wordAt(stmt, j+1); ok && w2 == "TIES" {
			j += 2
		}
	}
	return j
}

// skipParens advances past a balanced parenthesized group starting at j.
func skipParens(stmt []Token, j int) int {
	if j >= len(stmt) || stmt[j].Type != TOKEN_LPAREN {
		return j
	}
	depth := 0
	for ; j < len(stmt); j++ {
		switch stmt[j].Type {
		case TOKEN_LPAREN:
			depth++
		case TOKEN_RPAREN:
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return j
}

// limitArgFollows reports whether tokens after a LIMIT word look like its
// argument, distinguishing the clause from an identifier named "limit".
func limitArgFollows(stmt []Token, j int) bool {
	if j >= len(stmt) {
		return false
	}
	switch stmt[j].Type {
	case TOKEN_NUMBER, TOKEN_PARAM:
		return true
	case TOKEN_WORD:
		return strings.EqualFold(stmt[j].Literal, "ALL")
	}
	return false
}

// offsetRowsFollows reports whether OFFSET is the ANSI/T-SQL form
// "OFFSET n ROWS" rather than the LIMIT-style "OFFSET n".
func offsetRowsFollows(stmt []Token, j int) bool {
	if j >= len(stmt) || (stmt[j].Type != TOKEN_NUMBER && stmt[j].Type != TOKEN_PARAM) {
		return false
	}
	w, ok := wordAt(stmt, j+1)
	return ok && (w == "ROW" || w == "ROWS")
}
