package verify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sqldoc-labs/sqldoc/pkg/dialect"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
	"github.com/sqldoc-labs/sqldoc/pkg/sqlcheck"
	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

// Status classifies the outcome of verifying one snippet.
type Status string

// Snippet verification outcomes.
const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result reports the verification outcome for one fenced SQL block.
type Result struct {
	DocPath    string
	Index      int            // 1-based snippet number within the document
	Pos        token.Position // fence position in the Markdown source
	Dialect    string
	Statements int
	Status     Status
	Detail     string // engine error or skip reason
}

// Statement is one executable statement carved out of a snippet.
type Statement struct {
	SQL string
	Pos token.Position // position within the snippet body
}

// SplitStatements carves a snippet into statements on semicolons and batch
// separators. The dialect's lexer does the splitting, so separators inside
// strings, comments and quoted identifiers do not count.
func SplitStatements(src string, d *dialect.Dialect) []Statement {
	lx := sqlcheck.NewLexer(src, d)
	toks := lx.Lex()

	var stmts []Statement
	var first *sqlcheck.Token
	flush := func(end int) {
		if first == nil {
			return
		}
		if sqlText := strings.TrimSpace(src[first.Pos.Offset:end]); sqlText != "" {
			stmts = append(stmts, Statement{SQL: sqlText, Pos: first.Pos})
		}
		first = nil
	}

	for i := range toks {
		t := &toks[i]
		switch t.Type {
		case sqlcheck.TOKEN_SEMICOLON, sqlcheck.TOKEN_BATCH_SEP:
			flush(t.Pos.Offset)
		default:
			if first == nil {
				first = t
			}
		}
	}
	flush(len(src))
	return stmts
}

// Runner verifies document snippets against one live target.
type Runner struct {
	v      Verifier
	logger *slog.Logger
}

// NewRunner creates a runner for a connected verifier.
func NewRunner(v Verifier, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{v: v, logger: logger}
}

// VerifyDocument prepares every SQL snippet of one document against the
// target. Snippets in a dialect the target does not speak are skipped, not
// failed; the offline checker already covers those. Generic "ansi" snippets
// verify against any target.
func (r *Runner) VerifyDocument(ctx context.Context, docPath string, d *doc.Document, defaultDialect string) []Result {
	target := r.v.DialectName()

	var results []Result
	for i, cb := range d.SQLBlocks() {
		res := Result{DocPath: docPath, Index: i + 1, Pos: cb.Pos}

		sd, ok := sqlcheck.SnippetDialect(cb, defaultDialect)
		if !ok {
			res.Status = StatusSkipped
			res.Detail = "unknown dialect"
			results = append(results, res)
			continue
		}
		res.Dialect = sd.Name

		if sd.Name != target && sd.Name != "ansi" {
			res.Status = StatusSkipped
			res.Detail = fmt.Sprintf("%s snippet, %s target", sd.Name, target)
			results = append(results, res)
			continue
		}

		stmts := SplitStatements(cb.Content, sd)
		res.Statements = len(stmts)
		if len(stmts) == 0 {
			res.Status = StatusSkipped
			res.Detail = "no statements"
			results = append(results, res)
			continue
		}

		res.Status = StatusOK
		for _, stmt := range stmts {
			if err := ctx.Err(); err != nil {
				res.Status = StatusFailed
				res.Detail = err.Error()
				break
			}
			if err := r.v.Prepare(ctx, stmt.SQL); err != nil {
				res.Status = StatusFailed
				res.Detail = fmt.Sprintf("line %d: %v", cb.ContentPos.Line+stmt.Pos.Line-1, err)
				break
			}
		}
		r.logger.Debug("snippet verified",
			slog.String("doc", docPath),
			slog.Int("snippet", res.Index),
			slog.String("status", string(res.Status)))
		results = append(results, res)
	}
	return results
}

// Count tallies results by status.
func Count(results []Result) (ok, failed, skipped int) {
	for _, r := range results {
		switch r.Status {
		case StatusOK:
			ok++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return ok, failed, skipped
}
