package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/plist/endian"
	"github.com/arloliu/plist/errs"
)

// LZ4 envelope layout: 4-byte big-endian original length, one mode byte,
// then the payload.
const (
	lz4HeaderSize = 5

	lz4ModeRaw   = 0x0 // payload stored uncompressed
	lz4ModeBlock = 0x1 // payload is an LZ4 block
)

// lz4CompressorPool pools lz4.Compressor instances; their hash tables are
// worth reusing.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor provides LZ4 block compression with the fastest
// decompression of the built-in codecs.
//
// Raw LZ4 blocks carry no length, so the compressor prefixes the original
// size. Incompressible input is stored raw.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data using LZ4 compression.
//
// Returns:
//   - []byte: Envelope (nil if input is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if err := checkSize(uint64(len(data))); err != nil {
		return nil, err
	}

	engine := endian.GetBigEndianEngine()
	dst := make([]byte, lz4HeaderSize+lz4.CompressBlockBound(len(data)))
	endian.AppendUint(engine, dst[:0], uint64(len(data)), 4)

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[lz4HeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	// CompressBlock reports 0 for incompressible input.
	if n == 0 || n >= len(data) {
		dst[4] = lz4ModeRaw
		n = copy(dst[lz4HeaderSize:], data)
	} else {
		dst[4] = lz4ModeBlock
	}

	return dst[:lz4HeaderSize+n], nil
}

// Decompress decompresses an envelope produced by Compress.
//
// Returns errs.ErrFormat for a malformed envelope or block and
// errs.ErrResourceLimit when the declared length exceeds
// MaxDecompressedSize.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < lz4HeaderSize {
		return nil, fmt.Errorf("%w: lz4 envelope of %d bytes is too short", errs.ErrFormat, len(data))
	}

	size, _ := endian.ReadUint(endian.GetBigEndianEngine(), data[:4])
	if err := checkSize(size); err != nil {
		return nil, err
	}
	payload := data[lz4HeaderSize:]

	switch data[4] {
	case lz4ModeRaw:
		if uint64(len(payload)) != size {
			return nil, fmt.Errorf("%w: lz4 raw payload of %d bytes, declared %d", errs.ErrFormat, len(payload), size)
		}

		return append([]byte(nil), payload...), nil

	case lz4ModeBlock:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", errs.ErrFormat, err)
		}
		if uint64(n) != size {
			return nil, fmt.Errorf("%w: lz4 block decoded to %d bytes, declared %d", errs.ErrFormat, n, size)
		}

		return out, nil

	default:
		return nil, fmt.Errorf("%w: unknown lz4 envelope mode 0x%02x", errs.ErrFormat, data[4])
	}
}
