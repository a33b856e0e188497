package sqlcheck

import "github.com/sqldoc-labs/sqldoc/pkg/token"

// TokenType identifies the lexical class of a token.
type TokenType int

// Token types produced by the Lexer.
const (
	TOKEN_EOF TokenType = iota
	TOKEN_WORD
	TOKEN_QUOTED_IDENT
	TOKEN_STRING
	TOKEN_NUMBER
	TOKEN_PARAM
	TOKEN_OP
	TOKEN_COMMA
	TOKEN_DOT
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_SEMICOLON
	TOKEN_BATCH_SEP
	TOKEN_ILLEGAL
)

// String returns a human-readable name for the token type.
func (t TokenType) String() string {
	switch t {
	case TOKEN_EOF:
		return "EOF"
	case TOKEN_WORD:
		return "WORD"
	case TOKEN_QUOTED_IDENT:
		return "QUOTED_IDENT"
	case TOKEN_STRING:
		return "STRING"
	case TOKEN_NUMBER:
		return "NUMBER"
	case TOKEN_PARAM:
		return "PARAM"
	case TOKEN_OP:
		return "OP"
	case TOKEN_COMMA:
		return "COMMA"
	case TOKEN_DOT:
		return "DOT"
	case TOKEN_LPAREN:
		return "LPAREN"
	case TOKEN_RPAREN:
		return "RPAREN"
	case TOKEN_SEMICOLON:
		return "SEMICOLON"
	case TOKEN_BATCH_SEP:
		return "BATCH_SEP"
	case TOKEN_ILLEGAL:
		return "ILLEGAL"
	default:
		return "UNKNOWN"
	}
}

// Token is a lexical token with its position in the snippet.
type Token struct {
	Type    TokenType
	Literal string
	Pos     token.Position
}
