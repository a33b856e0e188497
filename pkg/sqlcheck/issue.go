package sqlcheck

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

// Issue codes. CodeForeignFeature marks dialect-portability findings; all
// other codes mark snippets that do not lex or hang together structurally.
const (
	CodeUnterminatedString  = "unterminated-string"
	CodeUnterminatedComment = "unterminated-comment"
	CodeUnterminatedIdent   = "unterminated-identifier"
	CodeIllegalChar         = "illegal-character"
	CodeParenMismatch       = "paren-mismatch"
	CodeBlockMismatch       = "block-mismatch"
	CodeBadStatementStart   = "statement-start"
	CodeClauseOrder         = "clause-order"
	CodeEmptySelectList     = "empty-select-list"
	CodeForeignFeature      = "foreign-feature"
)

// Issue is a single finding about a SQL snippet.
type Issue struct {
	Pos     token.Position
	Code    string
	Message string
}

// String formats the issue as "line:col: message [code]".
func (i Issue) String() string {
	return fmt.Sprintf("%s: %s [%s]", i.Pos, i.Message, i.Code)
}

// IsSyntax reports whether the issue is a syntax defect rather than a
// dialect-portability finding.
func (i Issue) IsSyntax() bool {
	return i.Code != CodeForeignFeature
}
