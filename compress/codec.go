package compress

import (
	"fmt"

	"github.com/arloliu/plist/errs"
	"github.com/arloliu/plist/format"
)

// MaxDecompressedSize bounds the output of every Decompress call, so a small
// hostile envelope cannot expand without limit.
const MaxDecompressedSize = 64 << 20

// Compressor compresses an encoded plist.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller, except
	//     for the no-op codec which returns its input
	//   - Input slice is not modified
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores data produced by the matching Compressor.
//
// Thread Safety: Decompressor implementations must be safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or invalid
	//   - Returns error if data was compressed with incompatible algorithm
	//   - Returns errs.ErrResourceLimit if the output would exceed
	//     MaxDecompressedSize
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes one compression run.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the size of input data before compression
	OriginalSize int64

	// CompressedSize is the size of data after compression
	CompressedSize int64
}

// NewCompressionStats records the sizes of a compression run.
func NewCompressionStats(algorithm format.CompressionType, original, compressed []byte) CompressionStats {
	return CompressionStats{
		Algorithm:      algorithm,
		OriginalSize:   int64(len(original)),
		CompressedSize: int64(len(compressed)),
	}
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage.
// It is negative when compression grew the data.
func (s CompressionStats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.CompressionRatio()) * 100.0
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
// Built-in codecs are stateless and safe for concurrent use.
//
// Returns:
//   - Codec: Shared codec instance
//   - error: errs.ErrUnsupportedCompression for unknown types
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s (%d)", errs.ErrUnsupportedCompression, compressionType, uint8(compressionType))
}

func checkSize(n uint64) error {
	if n > MaxDecompressedSize {
		return fmt.Errorf("%w: decompressed size %d, limit %d", errs.ErrResourceLimit, n, MaxDecompressedSize)
	}

	return nil
}
