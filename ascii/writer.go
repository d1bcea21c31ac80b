package ascii

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/templexxx/xhex"

	"github.com/arloliu/plist/errs"
	"github.com/arloliu/plist/format"
	"github.com/arloliu/plist/internal/pool"
	"github.com/arloliu/plist/value"
)

// Marshal renders v as an ASCII plist in the given dialect.
//
// Dictionary keys are written in sorted order, one entry per line. Strings
// are written bare when they would read back as the same string, quoted
// otherwise. Dates lose sub-second precision.
//
// Returns:
//   - []byte: Newly allocated text owned by the caller
//   - error: errs.ErrEncoding when the root is not a container, or the tree
//     holds a null, a UID, a nil node or a value the dialect cannot express
func Marshal(v *value.Value, dialect format.Dialect) ([]byte, error) {
	if dialect != format.DialectApple && dialect != format.DialectGnuStep {
		return nil, fmt.Errorf("%w: unknown dialect %d", errs.ErrEncoding, dialect)
	}
	if v == nil || (v.Kind() != value.KindArray && v.Kind() != value.KindDictionary) {
		return nil, fmt.Errorf("%w: root must be an array or a dictionary", errs.ErrEncoding)
	}

	buf := pool.GetEncodeBuffer()
	defer pool.PutEncodeBuffer(buf)

	w := &writer{buf: buf, dialect: dialect}
	if err := w.writeValue(v, 0); err != nil {
		return nil, err
	}
	_ = buf.WriteByte('\n')

	return buf.Clone(), nil
}

type writer struct {
	buf     *pool.ByteBuffer
	dialect format.Dialect
}

func (w *writer) indent(level int) {
	for range level {
		_ = w.buf.WriteByte('\t')
	}
}

func (w *writer) writeValue(v *value.Value, level int) error {
	if v == nil {
		return fmt.Errorf("%w: nil value", errs.ErrEncoding)
	}

	gnu := w.dialect == format.DialectGnuStep

	switch v.Kind() {
	case value.KindArray:
		return w.writeArray(v, level)

	case value.KindDictionary:
		return w.writeDictionary(v, level)

	case value.KindString:
		s, _ := v.AsString()
		w.writeString(s)

	case value.KindBool:
		b, _ := v.AsBool()
		switch {
		case gnu && b:
			_, _ = w.buf.WriteString("<*BY>")
		case gnu:
			_, _ = w.buf.WriteString("<*BN>")
		case b:
			_, _ = w.buf.WriteString("YES")
		default:
			_, _ = w.buf.WriteString("NO")
		}

	case value.KindInteger:
		i, _ := v.AsInt()
		if gnu {
			_, _ = w.buf.WriteString("<*I")
		}
		w.buf.B = strconv.AppendInt(w.buf.B, i, 10)
		if gnu {
			_ = w.buf.WriteByte('>')
		}

	case value.KindReal:
		f, _ := v.AsReal()
		if gnu {
			_, _ = w.buf.WriteString("<*R")
			w.buf.B = strconv.AppendFloat(w.buf.B, f, 'g', -1, 64)
			_ = w.buf.WriteByte('>')

			return nil
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %v has no Apple text form", errs.ErrEncoding, f)
		}
		_, _ = w.buf.WriteString(appleReal(f))

	case value.KindDate:
		t, _ := v.AsDate()
		stamp := t.UTC().Format(dateLayout)
		if gnu {
			_, _ = w.buf.WriteString("<*D" + stamp + ">")
		} else {
			_, _ = w.buf.WriteString(`"` + stamp + `"`)
		}

	case value.KindData:
		b, _ := v.AsData()
		w.writeData(b)

	default:
		return fmt.Errorf("%w: %s has no ASCII form", errs.ErrEncoding, v.Kind())
	}

	return nil
}

func (w *writer) writeArray(v *value.Value, level int) error {
	elems, _ := v.AsArray()
	if len(elems) == 0 {
		_, _ = w.buf.WriteString("()")
		return nil
	}

	_, _ = w.buf.WriteString("(\n")
	for i, e := range elems {
		w.indent(level + 1)
		if err := w.writeValue(e, level+1); err != nil {
			return err
		}
		if i < len(elems)-1 {
			_ = w.buf.WriteByte(',')
		}
		_ = w.buf.WriteByte('\n')
	}
	w.indent(level)
	_ = w.buf.WriteByte(')')

	return nil
}

func (w *writer) writeDictionary(v *value.Value, level int) error {
	keys := v.Keys()
	if len(keys) == 0 {
		_, _ = w.buf.WriteString("{}")
		return nil
	}

	_, _ = w.buf.WriteString("{\n")
	for _, k := range keys {
		w.indent(level + 1)
		w.writeString(k)
		_, _ = w.buf.WriteString(" = ")
		if err := w.writeValue(v.Get(k), level+1); err != nil {
			return err
		}
		_, _ = w.buf.WriteString(";\n")
	}
	w.indent(level)
	_ = w.buf.WriteByte('}')

	return nil
}

// appleReal formats f so that it reads back as a real, never as an integer.
func appleReal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// writeData writes <hex> with a space after every four bytes.
func (w *writer) writeData(b []byte) {
	if len(b) == 0 {
		_, _ = w.buf.WriteString("<>")
		return
	}

	hex := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(hex)

	hex.Grow(2 * len(b))
	hex.B = hex.B[:2*len(b)]
	xhex.Encode(hex.B, b)

	_ = w.buf.WriteByte('<')
	for i := 0; i < len(hex.B); i += 8 {
		if i > 0 {
			_ = w.buf.WriteByte(' ')
		}
		_, _ = w.buf.Write(hex.B[i:min(i+8, len(hex.B))])
	}
	_ = w.buf.WriteByte('>')
}

// writeString writes s bare when it reads back as the same string, quoted
// and escaped otherwise.
func (w *writer) writeString(s string) {
	if isBareString(s) {
		_, _ = w.buf.WriteString(s)
		return
	}

	// Unescaped quoted dates read back as dates.
	_, dateLike := parseAppleDate(s)

	_ = w.buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' || c == '"':
			_ = w.buf.WriteByte('\\')
			_ = w.buf.WriteByte(c)
		case c == '\n':
			_, _ = w.buf.WriteString(`\n`)
		case c == '\t':
			_, _ = w.buf.WriteString(`\t`)
		case c == '\r':
			_, _ = w.buf.WriteString(`\r`)
		case c == '\b':
			_, _ = w.buf.WriteString(`\b`)
		case c < ' ' || c == 0x7F || (dateLike && i == 4):
			_, _ = fmt.Fprintf(w.buf, `\%03o`, c)
		default:
			_ = w.buf.WriteByte(c)
		}
	}
	_ = w.buf.WriteByte('"')
}

// isBareString reports whether s lexes back as the bare word s.
func isBareString(s string) bool {
	if s == "" || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/*") {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordChar(s[i]) {
			return false
		}
	}

	return classifyWord(s).Kind() == value.KindString
}
