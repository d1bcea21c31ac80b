package format

type (
	Format          uint8
	Dialect         uint8
	CompressionType uint8
)

const (
	FormatBinary Format = 0x1 // FormatBinary is the bplist00 layout.
	FormatASCII  Format = 0x2 // FormatASCII is the old-style text layout, either dialect.

	DialectApple   Dialect = 0x1 // DialectApple writes untyped scalars (YES/NO, bare numbers).
	DialectGnuStep Dialect = 0x2 // DialectGnuStep writes typed wrappers (<*I1>, <*BY>, ...).

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "Binary"
	case FormatASCII:
		return "ASCII"
	default:
		return "Unknown"
	}
}

func (d Dialect) String() string {
	switch d {
	case DialectApple:
		return "Apple"
	case DialectGnuStep:
		return "GnuStep"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompression maps a lower-case name ("none", "zstd", "s2", "lz4") to a
// CompressionType. The second result is false for unknown names.
func ParseCompression(name string) (CompressionType, bool) {
	switch name {
	case "", "none":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}
