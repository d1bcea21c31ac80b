// Package section defines the low-level structures and constants of the
// bplist00 binary layout.
//
// # File Structure
//
// A binary plist is a header, a run of object records, an offset table and
// a fixed trailer:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Magic (8 bytes): "bplist00"                             │
//	├─────────────────────────────────────────────────────────┤
//	│ Object records (variable)                               │
//	│  - one marker byte: type tag (high nibble) and info     │
//	│  - optional extended length (marker 0x1n + integer)     │
//	│  - payload or object references                         │
//	├─────────────────────────────────────────────────────────┤
//	│ Offset table: ObjectCount × OffsetIntSize bytes         │
//	├─────────────────────────────────────────────────────────┤
//	│ Trailer (32 bytes, fixed)                               │
//	└─────────────────────────────────────────────────────────┘
//
// All multi-byte integers are big-endian. Object references inside arrays
// and dictionaries are indexes into the offset table, ObjectRefSize bytes
// wide.
//
// # Dates
//
// Date records hold a float64 count of seconds since ReferenceDate,
// 2001-01-01T00:00:00Z. See TimeToSeconds and SecondsToTime.
package section
