// Package plist reads and writes property lists: the bplist00 binary layout
// and the old-style ASCII text layout in its Apple and GnuStep dialects.
//
// All formats share one in-memory model, the value tree of package value.
//
// # Basic Usage
//
// Decoding a file whose format is not known up front:
//
//	v, f, err := plist.Decode(data)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(f, v.Get("CFBundleIdentifier"))
//
// Converting between formats:
//
//	v, _ := plist.ParseASCII(text)
//	bin, _ := plist.EncodeBinary(v)
//
// Building a tree by hand:
//
//	root := value.DictOf(map[string]*value.Value{
//	    "name":  value.String("plist"),
//	    "count": value.Int(87),
//	})
//	text, _ := plist.MarshalASCII(root, format.DialectApple)
//
// # Error Handling
//
// Every error wraps one sentinel of package errs (ErrFormat, ErrReference,
// ErrResourceLimit, ErrSyntax, ErrEncoding) and is meant for errors.Is.
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the bplist,
// ascii and compress packages. For reusable configured decoders and parsers,
// use those packages directly.
package plist

import (
	"bytes"

	"github.com/arloliu/plist/ascii"
	"github.com/arloliu/plist/bplist"
	"github.com/arloliu/plist/compress"
	"github.com/arloliu/plist/format"
	"github.com/arloliu/plist/section"
	"github.com/arloliu/plist/value"
)

// IsBinary reports whether data starts with the bplist00 signature.
func IsBinary(data []byte) bool {
	return bytes.HasPrefix(data, []byte(section.Magic))
}

// DecodeBinary decodes a binary plist.
//
// Parameters:
//   - data: Complete bplist00 document, not retained after the call
//   - opts: Optional decoder limits
//
// Returns:
//   - *value.Value: Root object of any kind
//   - error: errs.ErrFormat, errs.ErrReference or errs.ErrResourceLimit
func DecodeBinary(data []byte, opts ...bplist.DecoderOption) (*value.Value, error) {
	dec, err := bplist.NewDecoder(opts...)
	if err != nil {
		return nil, err
	}

	return dec.Decode(data)
}

// EncodeBinary encodes v as a binary plist with default limits.
// Equal subtrees are written once and shared.
func EncodeBinary(v *value.Value, opts ...bplist.EncoderOption) ([]byte, error) {
	enc, err := bplist.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	return enc.Encode(v)
}

// ParseASCII parses an ASCII plist in either dialect.
func ParseASCII(data []byte, opts ...ascii.ParserOption) (*value.Value, error) {
	return ascii.Parse(data, opts...)
}

// MarshalASCII renders a tree rooted at an array or dictionary as ASCII text.
func MarshalASCII(v *value.Value, dialect format.Dialect) ([]byte, error) {
	return ascii.Marshal(v, dialect)
}

// Decode decodes data in whichever format it is in, with default limits.
//
// Data starting with the bplist00 signature is decoded as binary; anything
// else is parsed as ASCII text.
//
// Returns:
//   - *value.Value: Root object
//   - format.Format: FormatBinary or FormatASCII, set even when decoding fails
//   - error: Error from the selected decoder
func Decode(data []byte) (*value.Value, format.Format, error) {
	if IsBinary(data) {
		v, err := DecodeBinary(data)
		return v, format.FormatBinary, err
	}

	v, err := ParseASCII(data)

	return v, format.FormatASCII, err
}

// Compress compresses an encoded plist with the given algorithm.
// The algorithm is not recorded in the output.
//
// Returns:
//   - []byte: Compressed data; with CompressionNone, data itself
//   - error: errs.ErrUnsupportedCompression for unknown types
func Compress(data []byte, compression format.CompressionType) ([]byte, error) {
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, err
	}

	return codec.Compress(data)
}

// Decompress reverses Compress. The compression type must match the one
// used to compress.
func Decompress(data []byte, compression format.CompressionType) ([]byte, error) {
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, err
	}

	return codec.Decompress(data)
}
