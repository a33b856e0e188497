package sqlcheck

import (
	"fmt"
	"strings"

	"github.com/sqldoc-labs/sqldoc/pkg/dialect"
	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

// Lexer tokenizes a SQL snippet under a dialect's lexical rules.
//
// The lexer never fails hard: malformed input produces TOKEN_ILLEGAL tokens
// and entries in Issues, so the structural checker can keep going and report
// everything it finds in one pass.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	dialect *dialect.Dialect

	// Issues collected during lexing (unterminated literals, illegal bytes)
	Issues []Issue
}

// NewLexer creates a new Lexer for the given input and dialect.
func NewLexer(input string, d *dialect.Dialect) *Lexer {
	l := &Lexer{
		input:   input,
		line:    1,
		col:     0,
		dialect: d,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

func (l *Lexer) addIssue(pos token.Position, code, format string, args ...any) {
	l.Issues = append(l.Issues, Issue{
		Pos:     pos,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// Lex returns all tokens up to EOF. The EOF token itself is not included.
func (l *Lexer) Lex() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		if tok.Type == TOKEN_EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	var tok Token
	tok.Pos = pos

	switch l.ch {
	case 0:
		tok.Type = TOKEN_EOF
		tok.Literal = ""
		return tok
	case ';':
		tok = l.newToken(TOKEN_SEMICOLON, ";")
	case ',':
		tok = l.newToken(TOKEN_COMMA, ",")
	case '.':
		if isDigit(l.peekChar()) {
			tok.Type = TOKEN_NUMBER
			tok.Literal = l.readNumber()
			return tok
		}
		tok = l.newToken(TOKEN_DOT, ".")
	case '(':
		tok = l.newToken(TOKEN_LPAREN, "(")
	case ')':
		tok = l.newToken(TOKEN_RPAREN, ")")
	case '\'':
		return l.readString(pos)
	case '$':
		if tok, ok := l.readDollarString(pos); ok {
			return tok
		}
		if l.dialect.IsParamMarker('$') && isParamChar(l.peekChar()) {
			return l.readParam(pos)
		}
		tok = l.newToken(TOKEN_OP, "$")
	case '?':
		if l.dialect.IsParamMarker('?') {
			tok = l.newToken(TOKEN_PARAM, "?")
		} else {
			tok = l.newToken(TOKEN_OP, "?")
		}
	case ':':
		if l.dialect.IsParamMarker(':') && isParamChar(l.peekChar()) {
			return l.readParam(pos)
		}
		if l.peekChar() == ':' {
			l.readChar()
			tok = Token{Type: TOKEN_OP, Literal: "::", Pos: pos}
		} else {
			tok = l.newToken(TOKEN_OP, ":")
		}
	case '@':
		if l.dialect.IsParamMarker('@') {
			return l.readParam(pos)
		}
		tok = l.newToken(TOKEN_OP, "@")
	case '<':
		switch l.peekChar() {
		case '=', '>':
			c := l.peekChar()
			l.readChar()
			tok = Token{Type: TOKEN_OP, Literal: "<" + string(c), Pos: pos}
		default:
			tok = l.newToken(TOKEN_OP, "<")
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TOKEN_OP, Literal: ">=", Pos: pos}
		} else {
			tok = l.newToken(TOKEN_OP, ">")
		}
	case '!':
		switch l.peekChar() {
		case '=', '<', '>':
			c := l.peekChar()
			l.readChar()
			tok = Token{Type: TOKEN_OP, Literal: "!" + string(c), Pos: pos}
		default:
			tok = l.newToken(TOKEN_OP, "!")
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = Token{Type: TOKEN_OP, Literal: "||", Pos: pos}
		} else {
			tok = l.newToken(TOKEN_OP, "|")
		}
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			if l.peekChar() == '>' {
				l.readChar()
				tok = Token{Type: TOKEN_OP, Literal: "->>", Pos: pos}
			} else {
				tok = Token{Type: TOKEN_OP, Literal: "->", Pos: pos}
			}
		} else {
			tok = l.newToken(TOKEN_OP, "-")
		}
	case '+', '*', '/', '%', '=', '&', '^', '~', '{', '}', '\\':
		tok = l.newToken(TOKEN_OP, string(l.ch))
	default:
		switch {
		case l.isQuoteOpen(l.ch):
			return l.readQuotedIdentifier(pos)
		case (l.ch == 'N' || l.ch == 'n') && l.peekChar() == '\'' && l.dialect.UnicodeStrings():
			l.readChar() // skip prefix
			return l.readString(pos)
		case isWordStart(l.ch):
			return l.readWordToken(pos)
		case isDigit(l.ch):
			tok.Type = TOKEN_NUMBER
			tok.Literal = l.readNumber()
			return tok
		case l.ch == '[' || l.ch == ']' || l.ch == '`':
			// not a quote pair in this dialect; pass through as an operator
			tok = l.newToken(TOKEN_OP, string(l.ch))
		default:
			l.addIssue(pos, CodeIllegalChar, "illegal character 0x%02x", l.ch)
			tok = l.newToken(TOKEN_ILLEGAL, string(l.ch))
		}
	}

	l.readChar()
	return tok
}

// newToken creates a new token at the current position.
func (l *Lexer) newToken(tokenType TokenType, literal string) Token {
	return Token{Type: tokenType, Literal: literal, Pos: l.currentPos()}
}

func (l *Lexer) isQuoteOpen(ch byte) bool {
	_, ok := l.dialect.QuoteFor(ch)
	return ok
}

// skipWhitespaceAndComments skips whitespace and comments.
// Unterminated block comments are reported as issues.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' || l.ch == '\v' {
			l.readChar()
		}

		if l.ch == '-' && l.peekChar() == '-' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			l.skipBlockComment()
			continue
		}

		break
	}
}

// skipBlockComment consumes a block comment, honoring nesting where the
// dialect allows it.
func (l *Lexer) skipBlockComment() {
	startPos := l.currentPos()

	l.readChar() // skip '/'
	l.readChar() // skip '*'

	depth := 1
	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			depth--
			if depth == 0 {
				return
			}
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' && l.dialect.AllowsNestedComments() {
			l.readChar()
			l.readChar()
			depth++
			continue
		}
		l.readChar()
	}

	l.addIssue(startPos, CodeUnterminatedComment, "unterminated block comment")
}

// readString reads a single-quoted string literal.
// Handles doubled single quotes as escape: 'it''s' -> it's
func (l *Lexer) readString(pos token.Position) Token {
	l.readChar() // skip opening quote

	var result strings.Builder
	for {
		if l.ch == 0 {
			l.addIssue(pos, CodeUnterminatedString, "unterminated string literal")
			break
		}
		if l.ch == '\'' {
			if l.peekChar() == '\'' {
				result.WriteByte('\'')
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			break
		}
		result.WriteByte(l.ch)
		l.readChar()
	}
	return Token{Type: TOKEN_STRING, Literal: result.String(), Pos: pos}
}

// readDollarString reads a $tag$...$tag$ string if the input at the current
// position opens one. Returns ok=false when the '$' is not a string opener.
func (l *Lexer) readDollarString(pos token.Position) (Token, bool) {
	if !l.dialect.DollarStrings() {
		return Token{}, false
	}

	// Scan the candidate tag without consuming: $ [A-Za-z_][A-Za-z0-9_]* $
	end := l.pos + 1
	if end < len(l.input) && (isLetter(l.input[end]) || l.input[end] == '_') {
		end++
		for end < len(l.input) && (isLetter(l.input[end]) || isDigit(l.input[end]) || l.input[end] == '_') {
			end++
		}
	}
	if end >= len(l.input) || l.input[end] != '$' {
		return Token{}, false
	}
	delim := l.input[l.pos : end+1]

	for range delim {
		l.readChar()
	}

	bodyStart := l.pos
	for {
		if l.ch == 0 {
			l.addIssue(pos, CodeUnterminatedString, "unterminated dollar-quoted string")
			return Token{Type: TOKEN_STRING, Literal: l.input[bodyStart:l.pos], Pos: pos}, true
		}
		if l.ch == '$' && strings.HasPrefix(l.input[l.pos:], delim) {
			body := l.input[bodyStart:l.pos]
			for range delim {
				l.readChar()
			}
			return Token{Type: TOKEN_STRING, Literal: body, Pos: pos}, true
		}
		l.readChar()
	}
}

// readQuotedIdentifier reads a quoted identifier using the dialect's quote
// pair. The closing quote is escaped by doubling: [a]]b] -> a]b
func (l *Lexer) readQuotedIdentifier(pos token.Position) Token {
	closing, _ := l.dialect.QuoteFor(l.ch)
	l.readChar() // skip opening quote

	var result strings.Builder
	for {
		if l.ch == 0 {
			l.addIssue(pos, CodeUnterminatedIdent, "unterminated quoted identifier")
			break
		}
		if l.ch == closing {
			if l.peekChar() == closing {
				result.WriteByte(closing)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			break
		}
		result.WriteByte(l.ch)
		l.readChar()
	}
	return Token{Type: TOKEN_QUOTED_IDENT, Literal: result.String(), Pos: pos}
}

// readParam reads a parameter token: @name, @@name, $1, :name.
func (l *Lexer) readParam(pos token.Position) Token {
	var result strings.Builder
	result.WriteByte(l.ch)
	l.readChar()

	// @@ROWCOUNT style system variables
	if l.ch == '@' && result.String() == "@" {
		result.WriteByte(l.ch)
		l.readChar()
	}

	for isWordChar(l.ch) || isDigit(l.ch) {
		result.WriteByte(l.ch)
		l.readChar()
	}
	return Token{Type: TOKEN_PARAM, Literal: result.String(), Pos: pos}
}

// readWordToken reads an identifier or keyword, or a batch separator when
// the word matches the dialect's separator on a line of its own.
func (l *Lexer) readWordToken(pos token.Position) Token {
	word := l.readWord()

	if sep := l.dialect.BatchSeparator(); sep != "" && strings.EqualFold(word, sep) && l.onOwnLine(pos.Offset) {
		// Consume an optional repeat count (GO 5) so it is not lexed as a
		// stray statement.
		l.consumeBatchCount()
		return Token{Type: TOKEN_BATCH_SEP, Literal: strings.ToUpper(word), Pos: pos}
	}

	return Token{Type: TOKEN_WORD, Literal: word, Pos: pos}
}

// readWord reads an unquoted identifier or keyword.
func (l *Lexer) readWord() string {
	start := l.pos
	for isWordChar(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal: integers, decimals, exponents, 0x hex.
func (l *Lexer) readNumber() string {
	start := l.pos

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) {
			l.readChar()
		}
		return l.input[start:l.pos]
	}

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	} else if l.ch == '.' {
		l.readChar()
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.input[start:l.pos]
}

// onOwnLine reports whether only blanks precede offset on its line.
func (l *Lexer) onOwnLine(offset int) bool {
	for i := offset - 1; i >= 0; i-- {
		switch l.input[i] {
		case ' ', '\t':
			continue
		case '\n', '\r':
			return true
		default:
			return false
		}
	}
	return true
}

// consumeBatchCount eats blanks and digits up to end of line after a batch
// separator.
func (l *Lexer) consumeBatchCount() {
	for l.ch == ' ' || l.ch == '\t' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
}

func isWordStart(ch byte) bool {
	return isLetter(ch) || ch == '_' || ch == '#'
}

func isWordChar(ch byte) bool {
	return isLetter(ch) || ch == '_' || ch == '#' || ch == '$'
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch >= 0x80
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isParamChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}
