package bplist

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/arloliu/plist/errs"
)

// utf16BE transcodes the 0x6 string records. Byte order marks are data, not
// signatures, inside a record.
var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// isASCII reports whether s fits a single-byte 0x5 string record.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}

	return true
}

// decodeSingleByte decodes a 0x5 record. Bytes above 0x7F are read as Latin-1.
func decodeSingleByte(b []byte) (string, error) {
	if isASCII(string(b)) {
		return string(b), nil
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: latin-1 string: %w", errs.ErrFormat, err)
	}

	return string(out), nil
}

// decodeUTF16 decodes a 0x6 record. Unpaired surrogates become U+FFFD.
func decodeUTF16(b []byte) (string, error) {
	out, err := utf16BE.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: utf-16 string: %w", errs.ErrFormat, err)
	}

	return string(out), nil
}

// encodeUTF16 encodes s as UTF-16BE. Invalid UTF-8 becomes U+FFFD.
func encodeUTF16(s string) ([]byte, error) {
	out, err := utf16BE.NewEncoder().String(s)
	if err != nil {
		return nil, fmt.Errorf("%w: utf-16 string: %w", errs.ErrEncoding, err)
	}

	return []byte(out), nil
}
