// Package ascii reads and writes old-style ASCII property lists in the Apple
// and GnuStep dialects.
//
// Both dialects share one grammar:
//
//	array      := '(' [value (',' value)* [',']] ')'
//	dictionary := '{' (key '=' value ';')* '}'
//
// GnuStep adds typed literals (<*I42>, <*R1.5>, <*BY>, <*D2001-01-01
// 00:00:00 +0000>); Apple text encodes the same kinds as bare words and
// quoted date strings. The root of a document is always an array or a
// dictionary.
package ascii

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/arloliu/plist/errs"
	"github.com/arloliu/plist/internal/options"
	"github.com/arloliu/plist/value"
)

// DefaultMaxDepth bounds container nesting.
const DefaultMaxDepth = 512

// ParserConfig holds the limits a Parser enforces.
type ParserConfig struct {
	maxDepth int
}

// NewParserConfig creates a ParserConfig with default limits.
func NewParserConfig() *ParserConfig {
	return &ParserConfig{maxDepth: DefaultMaxDepth}
}

// MaxDepth returns the deepest accepted container nesting.
func (c *ParserConfig) MaxDepth() int { return c.maxDepth }

// ParserOption is a functional option for configuring Parser.
type ParserOption = options.Option[*ParserConfig]

// WithMaxDepth rejects containers nested deeper than n levels.
// Default is DefaultMaxDepth.
func WithMaxDepth(n int) ParserOption {
	return options.New(func(cfg *ParserConfig) error {
		if err := options.Positive("max depth", n); err != nil {
			return err
		}
		cfg.maxDepth = n

		return nil
	})
}

// Parser parses ASCII plists. A Parser is safe for concurrent use.
type Parser struct {
	cfg *ParserConfig
}

// NewParser creates a Parser.
func NewParser(opts ...ParserOption) (*Parser, error) {
	cfg := NewParserConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Parser{cfg: cfg}, nil
}

// Parse parses data with a Parser built from opts.
func Parse(data []byte, opts ...ParserOption) (*value.Value, error) {
	p, err := NewParser(opts...)
	if err != nil {
		return nil, err
	}

	return p.Parse(data)
}

// Parse parses a complete document.
//
// UTF-16 input marked with a byte order mark is transcoded to UTF-8 first,
// so error positions refer to the UTF-8 text.
//
// Returns:
//   - *value.Value: Root array or dictionary
//   - error: *errs.SyntaxError (errs.ErrSyntax) for malformed text,
//     errs.ErrResourceLimit when nesting exceeds the configured depth
func (p *Parser) Parse(data []byte) (*value.Value, error) {
	text, err := normalize(data)
	if err != nil {
		return nil, err
	}

	st := &parseState{cfg: p.cfg, lex: NewLexer(text)}
	if err := st.advance(); err != nil {
		return nil, err
	}

	switch st.tok.Type {
	case TokenLParen, TokenLBrace:
	case TokenEOF:
		return nil, errs.NewSyntaxError(st.tok.Pos, "", "empty document")
	default:
		return nil, errs.NewSyntaxError(st.tok.Pos, st.tok.Text, "root must be an array or a dictionary, found")
	}

	root, err := st.parseValue(0)
	if err != nil {
		return nil, err
	}

	if st.tok.Type != TokenEOF {
		return nil, errs.NewSyntaxError(st.tok.Pos, st.tok.Text, "unexpected content after root")
	}

	return root, nil
}

// normalize transcodes BOM-marked UTF-16 to UTF-8 and drops a UTF-8 BOM.
// Unmarked input is read as UTF-8.
func normalize(data []byte) ([]byte, error) {
	return transcode(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
}

func transcode(t transform.Transformer, data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(t, data)
	if err != nil {
		return nil, errs.NewSyntaxError(errs.Pos{Line: 1, Column: 1}, "", "cannot decode input: %v", err)
	}

	return out, nil
}

// parseState is the per-call parse context. tok is the current lookahead.
type parseState struct {
	cfg *ParserConfig
	lex *Lexer
	tok Token
}

func (st *parseState) advance() error {
	tok, err := st.lex.Next()
	if err != nil {
		return err
	}
	st.tok = tok

	return nil
}

// expect consumes a token of type typ.
func (st *parseState) expect(typ TokenType, context string) error {
	if st.tok.Type != typ {
		return st.unexpected(fmt.Sprintf("expected %q %s, found", typ.String(), context))
	}

	return st.advance()
}

func (st *parseState) unexpected(msg string) error {
	if st.tok.Type == TokenEOF {
		return errs.NewSyntaxError(st.tok.Pos, "", "%s end of input", msg)
	}

	return errs.NewSyntaxError(st.tok.Pos, st.tok.Text, "%s", msg)
}

// parseValue parses the value starting at the current token.
func (st *parseState) parseValue(depth int) (*value.Value, error) {
	switch st.tok.Type {
	case TokenLParen:
		return st.parseArray(depth)
	case TokenLBrace:
		return st.parseDictionary(depth)
	case TokenString, TokenWord, TokenTyped, TokenData:
		v := st.tok.Value

		return v, st.advance()
	default:
		return nil, st.unexpected("expected a value, found")
	}
}

func (st *parseState) enter(depth int) error {
	if depth > st.cfg.maxDepth {
		return fmt.Errorf("%w: nesting deeper than %d at %s", errs.ErrResourceLimit, st.cfg.maxDepth, st.tok.Pos)
	}

	return nil
}

func (st *parseState) parseArray(depth int) (*value.Value, error) {
	if err := st.enter(depth); err != nil {
		return nil, err
	}
	if err := st.advance(); err != nil { // consume (
		return nil, err
	}

	arr := value.Array()
	for st.tok.Type != TokenRParen {
		elem, err := st.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		arr.Append(elem)

		if st.tok.Type == TokenRParen {
			break
		}
		if err := st.expect(TokenComma, "between array elements"); err != nil {
			return nil, err
		}
	}

	return arr, st.advance() // consume )
}

func (st *parseState) parseDictionary(depth int) (*value.Value, error) {
	if err := st.enter(depth); err != nil {
		return nil, err
	}
	if err := st.advance(); err != nil { // consume {
		return nil, err
	}

	dict := value.Dict()
	for st.tok.Type != TokenRBrace {
		if !st.tok.IsKey() {
			return nil, st.unexpected("expected a dictionary key, found")
		}
		key := st.tok.Text
		if err := st.advance(); err != nil {
			return nil, err
		}

		if err := st.expect(TokenEquals, "after dictionary key"); err != nil {
			return nil, err
		}

		v, err := st.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}

		if err := st.expect(TokenSemicolon, "after dictionary entry"); err != nil {
			return nil, err
		}
		dict.Set(key, v)
	}

	return dict, st.advance() // consume }
}
