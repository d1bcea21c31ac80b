package ascii

import (
	"strconv"
	"strings"
	"time"

	"github.com/templexxx/xhex"

	"github.com/arloliu/plist/errs"
	"github.com/arloliu/plist/value"
)

// Date layouts accepted inside <*D...> and as quoted Apple date literals.
const (
	dateLayout    = "2006-01-02 15:04:05 -0700"
	rfc3339Layout = "2006-01-02T15:04:05Z07:00"
)

// Lexer tokenizes old-style ASCII plist text of either dialect.
//
// The input must already be UTF-8; Parse normalises other encodings first.
type Lexer struct {
	input []byte
	pos   int // Current position in input
	line  int // Current line number (1-based)
	col   int // Current column number (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input []byte) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
}

// Next returns the next token. At end of input it returns a TokenEOF token
// on every call.
func (l *Lexer) Next() (Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	start := l.currentPos()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: start}, nil
	}

	ch := l.peek()
	switch ch {
	case '(':
		return l.punct(TokenLParen, start), nil
	case ')':
		return l.punct(TokenRParen, start), nil
	case '{':
		return l.punct(TokenLBrace, start), nil
	case '}':
		return l.punct(TokenRBrace, start), nil
	case '=':
		return l.punct(TokenEquals, start), nil
	case ';':
		return l.punct(TokenSemicolon, start), nil
	case ',':
		return l.punct(TokenComma, start), nil
	case '"':
		return l.scanString(start)
	case '<':
		if l.peekAt(1) == '*' {
			return l.scanTyped(start)
		}

		return l.scanData(start)
	}

	if isWordChar(ch) {
		return l.scanWord(start), nil
	}

	return Token{}, errs.NewSyntaxError(start, string(l.runeAt(l.pos)), "unexpected character")
}

func (l *Lexer) punct(typ TokenType, start errs.Pos) Token {
	l.advance()

	return Token{Type: typ, Text: typ.String(), Pos: start}
}

// scanWord scans a bare word and classifies it, most specific first.
func (l *Lexer) scanWord(start errs.Pos) Token {
	from := l.pos
	for l.pos < len(l.input) && isWordChar(l.peek()) {
		l.advance()
	}
	text := string(l.input[from:l.pos])

	return Token{Type: TokenWord, Text: text, Value: classifyWord(text), Pos: start}
}

// classifyWord maps a bare word to Integer, Real, Bool or String.
func classifyWord(text string) *value.Value {
	switch numberShape(text) {
	case shapeInteger:
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return value.Int(i)
		}
		// Out of int64 range: keep the digits as text.
	case shapeReal:
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return value.Real(f)
		}
	}

	switch text {
	case "YES":
		return value.Bool(true)
	case "NO":
		return value.Bool(false)
	}

	return value.String(text)
}

type wordShape uint8

const (
	shapeNone wordShape = iota
	shapeInteger
	shapeReal
)

// numberShape matches [+-]?digits or [+-]?digits.digits.
func numberShape(s string) wordShape {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}

	intPart, frac, hasDot := strings.Cut(s, ".")
	if !isDigits(intPart) {
		return shapeNone
	}
	if !hasDot {
		return shapeInteger
	}
	if !isDigits(frac) {
		return shapeNone
	}

	return shapeReal
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// scanString scans a double-quoted string. A quoted string without escapes
// whose whole content is a date is an Apple date literal.
func (l *Lexer) scanString(start errs.Pos) (Token, error) {
	l.advance() // consume opening "

	var sb strings.Builder
	escaped := false
	for {
		if l.pos >= len(l.input) {
			return Token{}, errs.NewSyntaxError(start, "\"", "unterminated string")
		}

		ch := l.peek()
		if ch == '"' {
			l.advance() // consume closing "
			break
		}

		if ch == '\\' {
			escaped = true
			if err := l.scanEscape(&sb); err != nil {
				return Token{}, err
			}

			continue
		}

		sb.WriteByte(ch)
		l.advance()
	}

	text := sb.String()
	tok := Token{Type: TokenString, Text: text, Value: value.String(text), Pos: start}
	if !escaped {
		if t, ok := parseAppleDate(text); ok {
			tok.Value = value.Date(t)
		}
	}

	return tok, nil
}

// parseAppleDate recognises "YYYY-MM-DD HH:MM:SS +ZZZZ" and RFC 3339 dates.
func parseAppleDate(s string) (time.Time, bool) {
	if len(s) < len("2006-01-02T15:04:05Z") || s[4] != '-' || s[7] != '-' || !isDigits(s[:4]) {
		return time.Time{}, false
	}

	for _, layout := range []string{dateLayout, rfc3339Layout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// scanTyped scans a GnuStep typed literal: <*I..>, <*R..>, <*BY>, <*BN>
// or <*D..>.
func (l *Lexer) scanTyped(start errs.Pos) (Token, error) {
	from := l.pos
	end := l.indexByte('>')
	if end < 0 {
		return Token{}, errs.NewSyntaxError(start, "<*", "unterminated typed literal")
	}

	text := string(l.input[from : end+1])
	body := text[2 : len(text)-1]
	l.advanceTo(end + 1)

	v, ok := typedValue(body)
	if !ok {
		return Token{}, errs.NewSyntaxError(start, text, "invalid typed literal")
	}

	return Token{Type: TokenTyped, Text: text, Value: v, Pos: start}, nil
}

func typedValue(body string) (*value.Value, bool) {
	if body == "" {
		return nil, false
	}

	arg := body[1:]
	switch body[0] {
	case 'I':
		if numberShape(arg) != shapeInteger {
			return nil, false
		}
		i, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, false
		}

		return value.Int(i), true
	case 'R':
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, false
		}

		return value.Real(f), true
	case 'B':
		switch arg {
		case "Y":
			return value.Bool(true), true
		case "N":
			return value.Bool(false), true
		}
	case 'D':
		t, err := time.Parse(dateLayout, arg)
		if err != nil {
			return nil, false
		}

		return value.Date(t), true
	}

	return nil, false
}

// scanData scans a hex data block. Whitespace between digits is ignored.
func (l *Lexer) scanData(start errs.Pos) (Token, error) {
	from := l.pos
	end := l.indexByte('>')
	if end < 0 {
		return Token{}, errs.NewSyntaxError(start, "<", "unterminated data block")
	}

	text := string(l.input[from : end+1])
	digits := make([]byte, 0, end-from)
	for i := from + 1; i < end; i++ {
		c := l.input[i]
		switch {
		case isSpace(c):
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f':
			digits = append(digits, c)
		case c >= 'A' && c <= 'F':
			digits = append(digits, c+'a'-'A')
		default:
			return Token{}, errs.NewSyntaxError(start, text, "invalid hex digit %q in data block", c)
		}
	}
	if len(digits)%2 != 0 {
		return Token{}, errs.NewSyntaxError(start, text, "odd number of hex digits in data block")
	}

	data := make([]byte, len(digits)/2)
	if len(data) > 0 {
		if err := xhex.Decode(data, digits); err != nil {
			return Token{}, errs.NewSyntaxError(start, text, "invalid data block: %v", err)
		}
	}
	l.advanceTo(end + 1)

	return Token{Type: TokenData, Text: text, Value: value.Data(data), Pos: start}, nil
}

// skipWhitespaceAndComments skips whitespace, // line comments and
// /* block */ comments.
func (l *Lexer) skipWhitespaceAndComments() error {
	for l.pos < len(l.input) {
		ch := l.peek()

		if isSpace(ch) {
			l.advance()
			continue
		}

		if ch != '/' {
			return nil
		}

		switch l.peekAt(1) {
		case '/':
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
		case '*':
			start := l.currentPos()
			l.advance()
			l.advance()
			for {
				if l.pos >= len(l.input) {
					return errs.NewSyntaxError(start, "/*", "unterminated comment")
				}
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()

					break
				}
				l.advance()
			}
		default:
			// A lone slash starts a bare word.
			return nil
		}
	}

	return nil
}

func (l *Lexer) currentPos() errs.Pos {
	return errs.Pos{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) peek() byte {
	return l.input[l.pos]
}

// peekAt returns the byte n positions ahead, or 0 past the end.
func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}

	return l.input[l.pos+n]
}

// runeAt returns the character starting at i for error messages.
func (l *Lexer) runeAt(i int) rune {
	return []rune(string(l.input[i:min(i+4, len(l.input))]))[0]
}

func (l *Lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) advanceTo(pos int) {
	for l.pos < pos {
		l.advance()
	}
}

// indexByte returns the absolute index of the next c at or after pos, or -1.
func (l *Lexer) indexByte(c byte) int {
	for i := l.pos; i < len(l.input); i++ {
		if l.input[i] == c {
			return i
		}
	}

	return -1
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return false
	}
}

// isWordChar reports whether c may appear in a bare word: printable ASCII
// other than the delimiters " , ; ( ) { } < > =.
func isWordChar(c byte) bool {
	if c <= ' ' || c >= 0x7F {
		return false
	}

	switch c {
	case '"', ',', ';', '(', ')', '{', '}', '<', '>', '=':
		return false
	default:
		return true
	}
}
