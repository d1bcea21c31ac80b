package compress

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/plist/bplist"
	"github.com/arloliu/plist/errs"
	"github.com/arloliu/plist/format"
	"github.com/arloliu/plist/internal/plisttest"
)

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"none": NewNoOpCompressor(),
		"zstd": NewZstdCompressor(),
		"s2":   NewS2Compressor(),
		"lz4":  NewLZ4Compressor(),
	}
}

// encodedPlists returns binary plists of a few sizes, the payload these
// codecs are meant for.
func encodedPlists(t testing.TB) [][]byte {
	t.Helper()

	enc, err := bplist.NewEncoder()
	require.NoError(t, err)

	gen := plisttest.NewGenerator("compress", plisttest.AllScalars)
	out := make([][]byte, 0, 8)
	for range 8 {
		data, err := enc.Encode(gen.Tree())
		require.NoError(t, err)
		out = append(out, data)
	}

	return out
}

func TestGetCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		codec, err := GetCodec(ct)
		require.NoError(t, err, ct.String())
		require.NotNil(t, codec)
	}

	_, err := GetCodec(format.CompressionType(0))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)

	_, err = GetCodec(format.CompressionType(0xFF))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestCompressionStats_Calculations(t *testing.T) {
	tests := []struct {
		name       string
		original   int
		compressed int
		ratio      float64
		savings    float64
	}{
		{"halved", 1000, 500, 0.5, 50},
		{"unchanged", 1000, 1000, 1, 0},
		{"grew", 100, 125, 1.25, -25},
		{"empty", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := NewCompressionStats(format.CompressionZstd,
				make([]byte, tt.original), make([]byte, tt.compressed))

			require.Equal(t, format.CompressionZstd, stats.Algorithm)
			require.Equal(t, int64(tt.original), stats.OriginalSize)
			require.InDelta(t, tt.ratio, stats.CompressionRatio(), 1e-9)
			require.InDelta(t, tt.savings, stats.SpaceSavings(), 1e-9)
		})
	}
}

func TestNoOpCompressor_SharesInput(t *testing.T) {
	c := NewNoOpCompressor()
	data := []byte("bplist00")

	out, err := c.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &out[0])

	out, err = c.Decompress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &out[0])
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			for _, in := range [][]byte{nil, {}} {
				packed, err := codec.Compress(in)
				require.NoError(t, err)

				out, err := codec.Decompress(packed)
				require.NoError(t, err)
				require.Empty(t, out)
			}
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"single byte":    {0x42},
		"zeros":          make([]byte, 64<<10),
		"text":           bytes.Repeat([]byte("{ key = value; list = (1, 2, 3); }\n"), 500),
		"incompressible": generateBenchmarkData(4096, "incompressible"),
	}
	for i, p := range encodedPlists(t) {
		payloads[fmt.Sprintf("bplist %d", i)] = p
	}

	for name, codec := range getAllCodecs() {
		for pname, data := range payloads {
			t.Run(name+"/"+pname, func(t *testing.T) {
				original := append([]byte(nil), data...)

				packed, err := codec.Compress(data)
				require.NoError(t, err)
				require.Equal(t, original, data, "input modified")

				out, err := codec.Decompress(packed)
				require.NoError(t, err)
				require.Equal(t, original, out)
			})
		}
	}
}

func TestAllCodecs_Shrinks(t *testing.T) {
	data := bytes.Repeat([]byte("CFBundleIdentifier = com.example.app;\n"), 1000)

	for name, codec := range getAllCodecs() {
		if name == "none" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			packed, err := codec.Compress(data)
			require.NoError(t, err)
			require.Less(t, len(packed), len(data)/4)
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	garbage := []byte{0xFF, 0xFE, 0xFD, 0xFC, 0xFB, 0xFA, 0xF9, 0xF8, 0x01, 0x02}

	for name, codec := range getAllCodecs() {
		if name == "none" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decompress(garbage)
			require.Error(t, err)
		})
	}
}

func TestZstd_Truncated(t *testing.T) {
	c := NewZstdCompressor()
	packed, err := c.Compress(bytes.Repeat([]byte("abcdefgh"), 1000))
	require.NoError(t, err)

	_, err = c.Decompress(packed[:len(packed)/2])
	require.ErrorIs(t, err, errs.ErrFormat)
}

func TestS2_DeclaredLengthLimit(t *testing.T) {
	// Varint header declaring a 1 GiB block.
	data := []byte{0x80, 0x80, 0x80, 0x80, 0x04, 0x00}

	_, err := NewS2Compressor().Decompress(data)
	require.ErrorIs(t, err, errs.ErrResourceLimit)
}

func TestLZ4_Envelope(t *testing.T) {
	c := NewLZ4Compressor()

	t.Run("compressible uses block mode", func(t *testing.T) {
		packed, err := c.Compress(make([]byte, 1000))
		require.NoError(t, err)
		require.Equal(t, []byte{0x00, 0x00, 0x03, 0xE8, lz4ModeBlock}, packed[:lz4HeaderSize])
	})

	t.Run("tiny input stored raw", func(t *testing.T) {
		packed, err := c.Compress([]byte{0x42})
		require.NoError(t, err)
		require.Equal(t, []byte{0x00, 0x00, 0x00, 0x01, lz4ModeRaw, 0x42}, packed)
	})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", []byte{0x00, 0x00, 0x01}, errs.ErrFormat},
		{"unknown mode", []byte{0x00, 0x00, 0x00, 0x01, 0x07, 0x42}, errs.ErrFormat},
		{"raw length mismatch", []byte{0x00, 0x00, 0x00, 0x02, lz4ModeRaw, 0x42}, errs.ErrFormat},
		{"declared too large", []byte{0xFF, 0xFF, 0xFF, 0xFF, lz4ModeBlock, 0x00}, errs.ErrResourceLimit},
		{"corrupt block", []byte{0x00, 0x00, 0x00, 0x10, lz4ModeBlock, 0xF0, 0x00}, errs.ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decompress(tt.data)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	payloads := encodedPlists(t)

	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			errCh := make(chan error, 8*len(payloads))

			for g := range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := range payloads {
						data := payloads[(g+i)%len(payloads)]

						packed, err := codec.Compress(data)
						if err != nil {
							errCh <- err
							return
						}
						out, err := codec.Decompress(packed)
						if err != nil {
							errCh <- err
							return
						}
						if !bytes.Equal(data, out) {
							errCh <- fmt.Errorf("goroutine %d: payload %d mismatch", g, i)
							return
						}
					}
				}()
			}

			wg.Wait()
			close(errCh)
			for err := range errCh {
				require.NoError(t, err)
			}
		})
	}
}
