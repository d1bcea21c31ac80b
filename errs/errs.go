// Package errs defines the error kinds shared by the plist codecs.
//
// Every failure returned by a decode, encode or parse call wraps exactly one
// of the kind sentinels below, so callers can branch with errors.Is:
//
//	v, err := plist.DecodeBinary(data)
//	switch {
//	case errors.Is(err, errs.ErrResourceLimit):
//	    // rejected for safety, the data may still be well-formed
//	case errors.Is(err, errs.ErrFormat):
//	    // malformed binary input
//	}
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat reports malformed binary input: bad magic, bad trailer,
	// unknown marker, malformed extended length or a truncated record.
	ErrFormat = errors.New("plist: invalid format")
	// ErrReference reports an object reference outside the offset table.
	ErrReference = errors.New("plist: object reference out of range")
	// ErrResourceLimit reports input rejected by a configured limit.
	ErrResourceLimit = errors.New("plist: resource limit exceeded")
	// ErrSyntax reports malformed ASCII input.
	ErrSyntax = errors.New("plist: syntax error")
	// ErrEncoding reports a value tree that cannot be serialized.
	ErrEncoding = errors.New("plist: cannot encode value")

	// ErrInvalidTrailer reports a trailer whose fields are inconsistent
	// with the buffer.
	ErrInvalidTrailer = fmt.Errorf("%w: invalid trailer", ErrFormat)
	// ErrKindMismatch is returned by value accessors used on the wrong kind.
	ErrKindMismatch = errors.New("plist: value kind mismatch")
	// ErrInvalidOption reports a rejected functional option.
	ErrInvalidOption = errors.New("plist: invalid option")
	// ErrUnsupportedCompression reports an unknown compression type.
	ErrUnsupportedCompression = errors.New("plist: unsupported compression")
)

// Pos is a location in an ASCII input stream.
type Pos struct {
	Line   int // 1-based
	Column int // 1-based, in bytes
	Offset int // 0-based byte offset
}

// String returns the position as "line:column".
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SyntaxError describes a failed ASCII parse.
type SyntaxError struct {
	Msg   string
	Token string // offending lexeme, may be empty at end of input
	Pos   Pos
}

// Error implements error.
func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s: %s at %s", ErrSyntax, e.Msg, e.Pos)
	}

	return fmt.Sprintf("%s: %s %q at %s", ErrSyntax, e.Msg, e.Token, e.Pos)
}

// Unwrap returns ErrSyntax.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// NewSyntaxError builds a SyntaxError.
func NewSyntaxError(pos Pos, token, format string, args ...any) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Token: token, Pos: pos}
}
