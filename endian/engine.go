// Package endian provides byte order utilities for the binary plist layout.
//
// This package extends Go's standard encoding/binary package by combining
// ByteOrder and AppendByteOrder interfaces into a unified EndianEngine
// interface, and adds helpers for the variable-width integers the binary
// format is built from: offset table entries, object references, integer
// records and extended lengths are all 1, 2, 4 or 8 bytes wide.
//
// # Basic Usage
//
// The binary plist format is big-endian throughout:
//
//	engine := endian.GetBigEndianEngine()
//	buf = endian.AppendUint(engine, buf, offset, endian.UintWidth(maxOffset))
//	v, ok := endian.ReadUint(engine, buf[pos:pos+width])
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"math"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// ValidWidth reports whether width is one of the supported integer widths 1, 2, 4 and 8.
func ValidWidth(width int) bool {
	return width == 1 || width == 2 || width == 4 || width == 8
}

// ReadUint reads an unsigned integer whose width is len(b).
// It returns false when len(b) is not 1, 2, 4 or 8.
func ReadUint(engine EndianEngine, b []byte) (uint64, bool) {
	switch len(b) {
	case 1:
		return uint64(b[0]), true
	case 2:
		return uint64(engine.Uint16(b)), true
	case 4:
		return uint64(engine.Uint32(b)), true
	case 8:
		return engine.Uint64(b), true
	default:
		return 0, false
	}
}

// ReadInt reads a two's-complement signed integer whose width is len(b).
// It returns false when len(b) is not 1, 2, 4 or 8.
func ReadInt(engine EndianEngine, b []byte) (int64, bool) {
	u, ok := ReadUint(engine, b)
	if !ok {
		return 0, false
	}

	return SignExtend(u, len(b)), true
}

// SignExtend interprets the low width bytes of v as a two's-complement integer.
func SignExtend(v uint64, width int) int64 {
	shift := uint(64 - 8*width) //nolint:gosec
	return int64(v<<shift) >> shift //nolint:gosec
}

// AppendUint appends the low width bytes of v to dst.
// Width must satisfy ValidWidth; other widths panic.
func AppendUint(engine EndianEngine, dst []byte, v uint64, width int) []byte {
	switch width {
	case 1:
		return append(dst, byte(v))
	case 2:
		return engine.AppendUint16(dst, uint16(v)) //nolint:gosec
	case 4:
		return engine.AppendUint32(dst, uint32(v)) //nolint:gosec
	case 8:
		return engine.AppendUint64(dst, v)
	default:
		panic("endian: invalid integer width")
	}
}

// UintWidth returns the smallest of 1, 2, 4 and 8 bytes that holds v unsigned.
func UintWidth(v uint64) int {
	switch {
	case v <= math.MaxUint8:
		return 1
	case v <= math.MaxUint16:
		return 2
	case v <= math.MaxUint32:
		return 4
	default:
		return 8
	}
}

// IntWidth returns the smallest of 1, 2, 4 and 8 bytes that holds v in two's complement.
func IntWidth(v int64) int {
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return 1
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return 2
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return 4
	default:
		return 8
	}
}

// WidthExponent returns log2(width) for a valid width, the form used in
// record markers.
func WidthExponent(width int) byte {
	switch width {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	default:
		return 3
	}
}
