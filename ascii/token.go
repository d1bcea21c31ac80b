package ascii

import (
	"fmt"

	"github.com/arloliu/plist/errs"
	"github.com/arloliu/plist/value"
)

// TokenType represents the type of a lexer token.
type TokenType uint8

const (
	TokenEOF TokenType = iota

	// Structural
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenEquals    // =
	TokenSemicolon // ;
	TokenComma     // ,

	// Literals
	TokenString // "quoted", possibly an Apple date literal
	TokenWord   // bare word: integer, real, YES/NO or string
	TokenTyped  // GnuStep <*I..>, <*R..>, <*B.>, <*D..>
	TokenData   // <hex digits>
)

// String returns the token type name.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenLBrace:
		return "{"
	case TokenRBrace:
		return "}"
	case TokenEquals:
		return "="
	case TokenSemicolon:
		return ";"
	case TokenComma:
		return ","
	case TokenString:
		return "STRING"
	case TokenWord:
		return "WORD"
	case TokenTyped:
		return "TYPED"
	case TokenData:
		return "DATA"
	default:
		return "UNKNOWN"
	}
}

// Token is one lexeme.
type Token struct {
	Type TokenType
	// Text is the source lexeme, except for quoted strings where it is the
	// unescaped content. Dictionary keys use it verbatim.
	Text string
	// Value is the literal a value token denotes, nil for structural tokens.
	Value *value.Value
	Pos   errs.Pos
}

// IsKey reports whether the token may name a dictionary entry.
func (t Token) IsKey() bool {
	return t.Type == TokenString || t.Type == TokenWord
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Value == nil {
		return t.Type.String()
	}

	return fmt.Sprintf("%s(%q)", t.Type, t.Text)
}
