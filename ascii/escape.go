package ascii

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/arloliu/plist/errs"
)

// scanEscape decodes one backslash sequence at the cursor into sb.
//
//	\\ \" \b \n \r \t  the literal or control byte
//	\uXXXX \UXXXX      one UTF-16 code unit; a high surrogate followed by an
//	                   escaped low surrogate forms one character
//	\ooo               three octal digits, one Latin-1 character
func (l *Lexer) scanEscape(sb *strings.Builder) error {
	start := l.currentPos()
	l.advance() // consume backslash

	if l.pos >= len(l.input) {
		return errs.NewSyntaxError(start, "\\", "unterminated escape")
	}

	ch := l.peek()
	switch ch {
	case '\\', '"':
		sb.WriteByte(ch)
	case 'b':
		sb.WriteByte('\b')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'u', 'U':
		l.advance()
		unit, err := l.scanCodeUnit(start)
		if err != nil {
			return err
		}

		r := rune(unit)
		if utf16.IsSurrogate(r) {
			r = l.completeSurrogate(r)
		}
		sb.WriteRune(r)

		return nil
	default:
		b, ok := l.octalByte()
		if !ok {
			return errs.NewSyntaxError(start, l.escapeText(start.Offset), "invalid escape")
		}
		sb.WriteRune(rune(b)) // Latin-1 maps onto the first 256 code points
		l.advanceTo(l.pos + 3)

		return nil
	}

	l.advance()

	return nil
}

// scanCodeUnit reads exactly four hex digits.
func (l *Lexer) scanCodeUnit(start errs.Pos) (uint16, error) {
	if l.pos+4 > len(l.input) {
		return 0, errs.NewSyntaxError(start, l.escapeText(start.Offset), "truncated unicode escape")
	}

	var unit uint16
	for i := range 4 {
		d, ok := hexDigit(l.input[l.pos+i])
		if !ok {
			return 0, errs.NewSyntaxError(start, l.escapeText(start.Offset), "invalid unicode escape")
		}
		unit = unit<<4 | uint16(d)
	}
	l.advanceTo(l.pos + 4)

	return unit, nil
}

// completeSurrogate pairs a high surrogate with an immediately following
// \uXXXX low surrogate. Unpaired surrogates become U+FFFD.
func (l *Lexer) completeSurrogate(high rune) rune {
	if high >= 0xDC00 || l.pos+6 > len(l.input) || l.input[l.pos] != '\\' {
		return utf8.RuneError
	}
	if c := l.input[l.pos+1]; c != 'u' && c != 'U' {
		return utf8.RuneError
	}

	var low rune
	for i := range 4 {
		d, ok := hexDigit(l.input[l.pos+2+i])
		if !ok {
			return utf8.RuneError
		}
		low = low<<4 | rune(d)
	}

	r := utf16.DecodeRune(high, low)
	if r == utf8.RuneError {
		// Not a low surrogate: leave it to be read as its own escape.
		return r
	}
	l.advanceTo(l.pos + 6)

	return r
}

// octalByte reads the three octal digits at the cursor without consuming them.
func (l *Lexer) octalByte() (byte, bool) {
	if l.pos+3 > len(l.input) {
		return 0, false
	}

	n := 0
	for i := range 3 {
		c := l.input[l.pos+i]
		if c < '0' || c > '7' {
			return 0, false
		}
		n = n<<3 | int(c-'0')
	}
	if n > 0xFF {
		return 0, false
	}

	return byte(n), true
}

// escapeText returns up to six bytes of source from offset for error messages.
func (l *Lexer) escapeText(offset int) string {
	return string(l.input[offset:min(offset+6, len(l.input))])
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
