package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyntaxError(t *testing.T) {
	err := NewSyntaxError(Pos{Line: 3, Column: 7, Offset: 20}, "}", "unexpected token")

	require.ErrorIs(t, err, ErrSyntax)
	require.NotErrorIs(t, err, ErrFormat)
	require.Equal(t, `plist: syntax error: unexpected token "}" at 3:7`, err.Error())

	var se *SyntaxError
	wrapped := fmt.Errorf("parse config: %w", err)
	require.True(t, errors.As(wrapped, &se))
	require.Equal(t, 20, se.Pos.Offset)
}

func TestSyntaxError_NoToken(t *testing.T) {
	err := NewSyntaxError(Pos{Line: 1, Column: 1}, "", "unterminated %s", "string")
	require.Equal(t, "plist: syntax error: unterminated string at 1:1", err.Error())
}

func TestInvalidTrailerIsFormat(t *testing.T) {
	require.ErrorIs(t, ErrInvalidTrailer, ErrFormat)
	require.NotErrorIs(t, ErrResourceLimit, ErrFormat)
}
