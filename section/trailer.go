package section

import (
	"fmt"
	"math"

	"github.com/arloliu/plist/endian"
	"github.com/arloliu/plist/errs"
)

// Trailer is the fixed 32-byte footer of a binary plist.
//
// Layout (big-endian):
//   - 6 bytes: reserved, written as zero and ignored on read
//   - 1 byte:  OffsetIntSize, width of each offset table entry
//   - 1 byte:  ObjectRefSize, width of each object reference in containers
//   - 8 bytes: ObjectCount
//   - 8 bytes: TopObject, index of the root object
//   - 8 bytes: OffsetTableOffset, byte offset of the offset table
type Trailer struct {
	Reserved          [6]byte
	OffsetIntSize     uint8
	ObjectRefSize     uint8
	ObjectCount       uint64
	TopObject         uint64
	OffsetTableOffset uint64
}

// ParseTrailer parses the trailer from the last TrailerSize bytes of data
// and validates it against the buffer length.
func ParseTrailer(data []byte) (Trailer, error) {
	var t Trailer
	if len(data) < MagicSize+TrailerSize {
		return t, fmt.Errorf("%w: buffer of %d bytes has no room for a trailer", errs.ErrInvalidTrailer, len(data))
	}

	if err := t.Parse(data[len(data)-TrailerSize:]); err != nil {
		return t, err
	}

	if err := t.Validate(len(data)); err != nil {
		return t, err
	}

	return t, nil
}

// Parse parses the trailer from a byte slice.
// It returns an error if the data is not exactly 32 bytes.
func (t *Trailer) Parse(data []byte) error {
	if len(data) != TrailerSize {
		return fmt.Errorf("%w: trailer must be %d bytes, got %d", errs.ErrInvalidTrailer, TrailerSize, len(data))
	}

	engine := endian.GetBigEndianEngine()

	copy(t.Reserved[:], data[0:6])
	t.OffsetIntSize = data[6]
	t.ObjectRefSize = data[7]
	t.ObjectCount = engine.Uint64(data[8:16])
	t.TopObject = engine.Uint64(data[16:24])
	t.OffsetTableOffset = engine.Uint64(data[24:32])

	return nil
}

// Validate checks the trailer fields against a buffer of fileSize bytes.
func (t *Trailer) Validate(fileSize int) error {
	if !endian.ValidWidth(int(t.OffsetIntSize)) {
		return fmt.Errorf("%w: offset int size %d", errs.ErrInvalidTrailer, t.OffsetIntSize)
	}
	if !endian.ValidWidth(int(t.ObjectRefSize)) {
		return fmt.Errorf("%w: object ref size %d", errs.ErrInvalidTrailer, t.ObjectRefSize)
	}
	if t.ObjectCount == 0 {
		return fmt.Errorf("%w: no objects", errs.ErrInvalidTrailer)
	}
	if t.TopObject >= t.ObjectCount {
		return fmt.Errorf("%w: top object %d out of %d objects", errs.ErrInvalidTrailer, t.TopObject, t.ObjectCount)
	}

	tableEnd := uint64(fileSize - TrailerSize) //nolint:gosec
	if t.OffsetTableOffset < uint64(MagicSize) || t.OffsetTableOffset > tableEnd {
		return fmt.Errorf("%w: offset table at %d outside [%d, %d]",
			errs.ErrInvalidTrailer, t.OffsetTableOffset, MagicSize, tableEnd)
	}

	// ObjectCount*OffsetIntSize must fit between the table start and the trailer.
	room := tableEnd - t.OffsetTableOffset
	if t.ObjectCount > math.MaxUint64/uint64(t.OffsetIntSize) || t.ObjectCount*uint64(t.OffsetIntSize) > room {
		return fmt.Errorf("%w: offset table of %d entries overruns the trailer", errs.ErrInvalidTrailer, t.ObjectCount)
	}

	return nil
}

// Bytes serializes the trailer into a new 32-byte slice.
func (t *Trailer) Bytes() []byte {
	return t.AppendTo(make([]byte, 0, TrailerSize))
}

// AppendTo appends the serialized trailer to dst.
func (t *Trailer) AppendTo(dst []byte) []byte {
	engine := endian.GetBigEndianEngine()

	dst = append(dst, t.Reserved[:]...)
	dst = append(dst, t.OffsetIntSize, t.ObjectRefSize)
	dst = engine.AppendUint64(dst, t.ObjectCount)
	dst = engine.AppendUint64(dst, t.TopObject)
	dst = engine.AppendUint64(dst, t.OffsetTableOffset)

	return dst
}
