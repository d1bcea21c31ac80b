// Package compress provides envelope compression for stored or transported
// plists.
//
// A binary or ASCII plist is compressed as a whole after encoding. The
// algorithm is not recorded in the output; callers keep the
// format.CompressionType next to the data and pass it back on decompression.
//
// Supported algorithms:
//   - None: No compression, the data is returned as is
//   - Zstd: Best ratio, moderate speed (github.com/klauspost/compress/zstd)
//   - S2: Balanced speed and ratio (github.com/klauspost/compress/s2)
//   - LZ4: Fastest decompression (github.com/pierrec/lz4/v4)
//
// Usage:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(encoded)
//	...
//	encoded, err = codec.Decompress(packed)
//
// All codecs are safe for concurrent use. Decompression output is capped at
// MaxDecompressedSize.
package compress
