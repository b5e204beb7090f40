package tdparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mesh-intelligence/recordkeeper/pkg/types"
)

// TokenType identifies a lexical token.
type TokenType int

const (
	EOF TokenType = iota

	// Punctuation
	LANGLE  // "<"
	RANGLE  // ">"
	LBRACE  // "{"
	RBRACE  // "}"
	LSQUARE // "["
	RSQUARE // "]"
	LPAREN  // "("
	RPAREN  // ")"
	COMMA   // ","
	SEMI    // ";"
	COLON   // ":"
	ASSIGN  // "="
	QUESTION

	// Literals
	IDENT
	VARNAME // "$name"
	INT
	STRING
	CODE // "[{ ... }]"

	// Keywords
	CLASS
	DEF
	LET
	IN
	INCLUDE
	FIELD
	TRUE
	FALSE
)

var tokenNames = map[TokenType]string{
	EOF:      "end of file",
	LANGLE:   "'<'",
	RANGLE:   "'>'",
	LBRACE:   "'{'",
	RBRACE:   "'}'",
	LSQUARE:  "'['",
	RSQUARE:  "']'",
	LPAREN:   "'('",
	RPAREN:   "')'",
	COMMA:    "','",
	SEMI:     "';'",
	COLON:    "':'",
	ASSIGN:   "'='",
	QUESTION: "'?'",
	IDENT:    "identifier",
	VARNAME:  "variable name",
	INT:      "integer",
	STRING:   "string",
	CODE:     "code fragment",
	CLASS:    "'class'",
	DEF:      "'def'",
	LET:      "'let'",
	IN:       "'in'",
	INCLUDE:  "'include'",
	FIELD:    "'field'",
	TRUE:     "'true'",
	FALSE:    "'false'",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

var keywords = map[string]TokenType{
	"class":   CLASS,
	"def":     DEF,
	"let":     LET,
	"in":      IN,
	"include": INCLUDE,
	"field":   FIELD,
	"true":    TRUE,
	"false":   FALSE,
}

// Token is a lexical token. Text holds the identifier, variable name or
// decoded string; Int holds the value of an INT token.
type Token struct {
	Type TokenType
	Text string
	Int  int64
	Loc  types.Location
}

// ErrSyntax is wrapped by every lexing and parsing diagnostic.
var ErrSyntax = errors.New("syntax error")

// Lexer scans record-language source into tokens.
type Lexer struct {
	file string
	src  string
	cur  int
	line int
	col  int // 1-based column of src[cur]

	start types.Location
}

// NewLexer returns a lexer over src. file names the buffer in locations.
func NewLexer(file, src string) *Lexer {
	return &Lexer{file: file, src: src, line: 1, col: 1}
}

func (l *Lexer) atEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekAt(n int) byte {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) loc() types.Location {
	return types.Location{File: l.file, Line: l.line, Col: l.col}
}

func (l *Lexer) errorf(format string, args ...any) error {
	return types.WithLocation(fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrSyntax), l.start)
}

func (l *Lexer) token(tt TokenType, text string) Token {
	return Token{Type: tt, Text: text, Loc: l.start}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

// skipSpace skips whitespace and both comment forms.
func (l *Lexer) skipSpace() error {
	for !l.atEnd() {
		switch ch := l.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peekAt(1) == '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		case ch == '/' && l.peekAt(1) == '*':
			l.start = l.loc()
			l.advance()
			l.advance()
			for {
				if l.atEnd() {
					return l.errorf("unterminated comment")
				}
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

// Next returns the next token. At the end of input it keeps returning EOF.
func (l *Lexer) Next() (Token, error) {
	if err := l.skipSpace(); err != nil {
		return Token{}, err
	}
	l.start = l.loc()
	if l.atEnd() {
		return l.token(EOF, ""), nil
	}

	ch := l.peek()
	switch {
	case ch == '[' && l.peekAt(1) == '{':
		return l.scanCode()
	case ch == '"':
		return l.scanString()
	case isDigit(ch) || ((ch == '-' || ch == '+') && isDigit(l.peekAt(1))):
		return l.scanInt()
	case ch == '$':
		l.advance()
		if !isAlpha(l.peek()) {
			return Token{}, l.errorf("expected variable name after '$'")
		}
		return l.token(VARNAME, l.scanWord()), nil
	case isAlpha(ch):
		word := l.scanWord()
		if tt, ok := keywords[word]; ok {
			return l.token(tt, word), nil
		}
		return l.token(IDENT, word), nil
	}

	l.advance()
	switch ch {
	case '<':
		return l.token(LANGLE, "<"), nil
	case '>':
		return l.token(RANGLE, ">"), nil
	case '{':
		return l.token(LBRACE, "{"), nil
	case '}':
		return l.token(RBRACE, "}"), nil
	case '[':
		return l.token(LSQUARE, "["), nil
	case ']':
		return l.token(RSQUARE, "]"), nil
	case '(':
		return l.token(LPAREN, "("), nil
	case ')':
		return l.token(RPAREN, ")"), nil
	case ',':
		return l.token(COMMA, ","), nil
	case ';':
		return l.token(SEMI, ";"), nil
	case ':':
		return l.token(COLON, ":"), nil
	case '=':
		return l.token(ASSIGN, "="), nil
	case '?':
		return l.token(QUESTION, "?"), nil
	}
	return Token{}, l.errorf("unexpected character %q", ch)
}

// Scan returns every token of the source, EOF included.
func (l *Lexer) Scan() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) scanWord() string {
	from := l.cur
	for !l.atEnd() && isAlphaNum(l.peek()) {
		l.advance()
	}
	return l.src[from:l.cur]
}

func (l *Lexer) scanInt() (Token, error) {
	from := l.cur
	if c := l.peek(); c == '-' || c == '+' {
		l.advance()
	}
	base := 10
	digitsFrom := l.cur
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'b') {
		if l.peekAt(1) == 'x' {
			base = 16
		} else {
			base = 2
		}
		l.advance()
		l.advance()
		digitsFrom = l.cur
	}
	for !l.atEnd() && isAlphaNum(l.peek()) {
		l.advance()
	}
	digits := l.src[digitsFrom:l.cur]
	if digits == "" {
		return Token{}, l.errorf("malformed integer %q", l.src[from:l.cur])
	}
	u, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return Token{}, l.errorf("malformed integer %q", l.src[from:l.cur])
	}
	v := int64(u)
	if l.src[from] == '-' {
		v = -v
	}
	return Token{Type: INT, Text: l.src[from:l.cur], Int: v, Loc: l.start}, nil
}

func (l *Lexer) scanString() (Token, error) {
	l.advance()
	var sb strings.Builder
	for {
		if l.atEnd() || l.peek() == '\n' {
			return Token{}, l.errorf("unterminated string")
		}
		ch := l.advance()
		if ch == '"' {
			if !utf8.ValidString(sb.String()) {
				return Token{}, l.errorf("string literal is not valid UTF-8")
			}
			return l.token(STRING, sb.String()), nil
		}
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		if l.atEnd() {
			return Token{}, l.errorf("unterminated string")
		}
		switch esc := l.advance(); esc {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case '\\', '"', '\'':
			sb.WriteByte(esc)
		default:
			return Token{}, l.errorf("unknown escape \\%c", esc)
		}
	}
}

func (l *Lexer) scanCode() (Token, error) {
	l.advance()
	l.advance()
	from := l.cur
	for {
		if l.atEnd() {
			return Token{}, l.errorf("unterminated code fragment")
		}
		if l.peek() == '}' && l.peekAt(1) == ']' {
			text := l.src[from:l.cur]
			if !utf8.ValidString(text) {
				return Token{}, l.errorf("code fragment is not valid UTF-8")
			}
			l.advance()
			l.advance()
			return l.token(CODE, text), nil
		}
		l.advance()
	}
}
