package section

const (
	// Magic is the 8-byte signature opening every binary plist.
	Magic = "bplist00"

	// Record type tags (high nibble of a marker byte)
	TagSingleton  = 0x0 // null, booleans and fill
	TagInteger    = 0x1 // 2^info bytes, big-endian two's complement
	TagReal       = 0x2 // 2^info bytes, IEEE-754 big-endian
	TagDate       = 0x3 // info 0x3, 8-byte double seconds since ReferenceDate
	TagData       = 0x4 // length + raw bytes
	TagASCII      = 0x5 // length + single-byte characters
	TagUTF16      = 0x6 // length in code units + UTF-16BE
	TagUID        = 0x8 // info+1 raw bytes
	TagArray      = 0xA // length + object references
	TagDictionary = 0xD // length + key references + value references

	// Singleton markers (full byte)
	MarkerNull  = 0x00
	MarkerFalse = 0x08
	MarkerTrue  = 0x09
	MarkerFill  = 0x0F
	MarkerDate  = 0x33

	// InfoExtended in the low nibble means a length record follows the marker.
	InfoExtended = 0xF
	// MaxInlineLength is the largest length stored directly in a marker.
	MaxInlineLength = 14
	// MaxUIDSize is the largest UID payload a marker can describe.
	MaxUIDSize = 16
)

// offset and section sizes in the binary file
const (
	MagicSize   = len(Magic) // byte offset of the first object record
	TrailerSize = 32         // fixed trailer size at the end of the buffer
	// MinFileSize covers the magic, one marker byte, one offset entry and the trailer.
	MinFileSize = MagicSize + 1 + 1 + TrailerSize
)
