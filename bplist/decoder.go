package bplist

import (
	"fmt"
	"math"

	"github.com/arloliu/plist/endian"
	"github.com/arloliu/plist/errs"
	"github.com/arloliu/plist/internal/options"
	"github.com/arloliu/plist/section"
	"github.com/arloliu/plist/value"
)

// Decoder parses binary plists into value trees.
//
// The decoder validates the magic and trailer, builds the offset table and
// resolves the top object recursively. Each Decode call keeps its parse state
// (buffer, trailer, offset table, memo of decoded objects) in a per-call
// context, so a Decoder is safe for concurrent use and reusable.
//
// Objects referenced from several containers are decoded once and shared:
// the resulting tree holds the same *value.Value at every position that
// referenced the same object index.
//
// Integer records of 1, 2 and 4 bytes are sign-extended, so 0x10 0xC8 decodes
// as -56. CoreFoundation reads those widths as unsigned and writes 200 exactly
// that way, so such files decode to different values here.
type Decoder struct {
	cfg *DecoderConfig
}

// NewDecoder creates a Decoder.
//
// Parameters:
//   - opts: Optional limits (WithMaxObjectCount, WithMaxLength, WithMaxDepth)
//
// Returns:
//   - *Decoder: New decoder instance
//   - error: errs.ErrInvalidOption when an option is rejected
func NewDecoder(opts ...DecoderOption) (*Decoder, error) {
	cfg := NewDecoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Decoder{cfg: cfg}, nil
}

// Config returns the decoder limits.
func (d *Decoder) Config() *DecoderConfig {
	return d.cfg
}

// Decode parses data into a value tree.
//
// Returns:
//   - *value.Value: Root object
//   - error: errs.ErrFormat for malformed input, errs.ErrReference for
//     out-of-range object references, errs.ErrResourceLimit when a
//     configured limit is exceeded
func (d *Decoder) Decode(data []byte) (*value.Value, error) {
	if len(data) < section.MagicSize || string(data[:section.MagicSize]) != section.Magic {
		return nil, fmt.Errorf("%w: missing %q magic", errs.ErrFormat, section.Magic)
	}

	trailer, err := section.ParseTrailer(data)
	if err != nil {
		return nil, err
	}

	if trailer.ObjectCount > uint64(d.cfg.maxObjectCount) {
		return nil, fmt.Errorf("%w: %d objects, limit %d",
			errs.ErrResourceLimit, trailer.ObjectCount, d.cfg.maxObjectCount)
	}

	st := &decodeState{
		cfg:     d.cfg,
		data:    data,
		trailer: trailer,
		engine:  endian.GetBigEndianEngine(),
		limit:   int(trailer.OffsetTableOffset), //nolint:gosec
	}

	if err := st.readOffsetTable(); err != nil {
		return nil, err
	}

	return st.parseObject(trailer.TopObject, 0)
}

// decodeState is the per-call parse context.
type decodeState struct {
	cfg     *DecoderConfig
	data    []byte
	trailer section.Trailer
	engine  endian.EndianEngine
	limit   int // object records end where the offset table starts

	offsets []int
	memo    []*value.Value
	active  []bool
}

// readOffsetTable reads ObjectCount offsets of OffsetIntSize bytes each.
// The trailer has been validated, so the table lies inside the buffer.
func (st *decodeState) readOffsetTable() error {
	count := int(st.trailer.ObjectCount) //nolint:gosec
	width := int(st.trailer.OffsetIntSize)
	pos := int(st.trailer.OffsetTableOffset) //nolint:gosec

	st.offsets = make([]int, count)
	st.memo = make([]*value.Value, count)
	st.active = make([]bool, count)

	for i := range count {
		off, _ := endian.ReadUint(st.engine, st.data[pos:pos+width])
		if off < uint64(section.MagicSize) || off >= uint64(st.limit) { //nolint:gosec
			return fmt.Errorf("%w: object %d at offset %d outside [%d, %d)",
				errs.ErrFormat, i, off, section.MagicSize, st.limit)
		}
		st.offsets[i] = int(off) //nolint:gosec
		pos += width
	}

	return nil
}

// need fails unless n bytes are available at pos.
func (st *decodeState) need(pos, n int, what string) error {
	if n < 0 || pos > st.limit-n {
		return fmt.Errorf("%w: truncated %s at offset %d", errs.ErrFormat, what, pos)
	}

	return nil
}

// parseObject decodes object index, reusing the result for repeated references.
func (st *decodeState) parseObject(index uint64, depth int) (*value.Value, error) {
	if index >= st.trailer.ObjectCount {
		return nil, fmt.Errorf("%w: object %d, table holds %d", errs.ErrReference, index, st.trailer.ObjectCount)
	}
	if v := st.memo[index]; v != nil {
		return v, nil
	}
	if st.active[index] {
		return nil, fmt.Errorf("%w: object %d references itself", errs.ErrFormat, index)
	}
	if depth > st.cfg.maxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", errs.ErrResourceLimit, st.cfg.maxDepth)
	}

	st.active[index] = true
	v, err := st.parseRecord(st.offsets[index], depth)
	st.active[index] = false
	if err != nil {
		return nil, err
	}

	st.memo[index] = v

	return v, nil
}

// parseRecord decodes the record starting at pos.
func (st *decodeState) parseRecord(pos int, depth int) (*value.Value, error) {
	// Fill bytes pad records and carry no value.
	for pos < st.limit && st.data[pos] == section.MarkerFill {
		pos++
	}
	if err := st.need(pos, 1, "marker"); err != nil {
		return nil, err
	}

	marker := section.Marker(st.data[pos])
	pos++

	switch marker.Tag() {
	case section.TagSingleton:
		switch marker {
		case section.MarkerNull:
			return value.Null(), nil
		case section.MarkerFalse:
			return value.Bool(false), nil
		case section.MarkerTrue:
			return value.Bool(true), nil
		default:
			return nil, fmt.Errorf("%w: unknown singleton marker 0x%02x", errs.ErrFormat, byte(marker))
		}

	case section.TagInteger:
		i, err := st.readInteger(marker, pos)
		if err != nil {
			return nil, err
		}

		return value.Int(i), nil

	case section.TagReal:
		return st.readReal(marker, pos)

	case section.TagDate:
		if marker != section.MarkerDate {
			return nil, fmt.Errorf("%w: date marker 0x%02x", errs.ErrFormat, byte(marker))
		}
		if err := st.need(pos, 8, "date"); err != nil {
			return nil, err
		}
		secs := math.Float64frombits(st.engine.Uint64(st.data[pos : pos+8]))
		t, ok := section.SecondsToTime(secs)
		if !ok {
			return nil, fmt.Errorf("%w: date %v out of range", errs.ErrFormat, secs)
		}

		return value.Date(t), nil

	case section.TagData:
		b, err := st.readBytes(marker, pos, 1, "data")
		if err != nil {
			return nil, err
		}

		return value.Data(b), nil

	case section.TagASCII:
		b, err := st.readBytes(marker, pos, 1, "string")
		if err != nil {
			return nil, err
		}
		s, err := decodeSingleByte(b)
		if err != nil {
			return nil, err
		}

		return value.String(s), nil

	case section.TagUTF16:
		b, err := st.readBytes(marker, pos, 2, "utf-16 string")
		if err != nil {
			return nil, err
		}
		s, err := decodeUTF16(b)
		if err != nil {
			return nil, err
		}

		return value.String(s), nil

	case section.TagUID:
		n := int(marker.Info()) + 1
		if err := st.need(pos, n, "uid"); err != nil {
			return nil, err
		}

		return value.UID(clone(st.data[pos : pos+n])), nil

	case section.TagArray:
		return st.readArray(marker, pos, depth)

	case section.TagDictionary:
		return st.readDictionary(marker, pos, depth)

	default:
		return nil, fmt.Errorf("%w: unknown marker 0x%02x (tag 0x%x)", errs.ErrFormat, byte(marker), marker.Tag())
	}
}

// readInteger reads an integer record body of 2^info bytes at pos.
// Widths up to 8 bytes are two's complement; a 16-byte body is accepted when
// its high half only sign-extends the low half.
func (st *decodeState) readInteger(marker section.Marker, pos int) (int64, error) {
	info := marker.Info()
	if info > 4 {
		return 0, fmt.Errorf("%w: integer width 2^%d", errs.ErrFormat, info)
	}

	width := 1 << info
	if err := st.need(pos, width, "integer"); err != nil {
		return 0, err
	}

	if width == 16 {
		hi := st.engine.Uint64(st.data[pos : pos+8])
		lo := int64(st.engine.Uint64(st.data[pos+8 : pos+16])) //nolint:gosec
		if (lo >= 0 && hi != 0) || (lo < 0 && hi != math.MaxUint64) {
			return 0, fmt.Errorf("%w: 128-bit integer out of int64 range", errs.ErrFormat)
		}

		return lo, nil
	}

	i, _ := endian.ReadInt(st.engine, st.data[pos:pos+width])

	return i, nil
}

func (st *decodeState) readReal(marker section.Marker, pos int) (*value.Value, error) {
	switch marker.Info() {
	case 2:
		if err := st.need(pos, 4, "real"); err != nil {
			return nil, err
		}
		f := math.Float32frombits(st.engine.Uint32(st.data[pos : pos+4]))

		return value.Real(float64(f)), nil
	case 3:
		if err := st.need(pos, 8, "real"); err != nil {
			return nil, err
		}

		return value.Real(math.Float64frombits(st.engine.Uint64(st.data[pos : pos+8]))), nil
	default:
		return nil, fmt.Errorf("%w: real width 2^%d", errs.ErrFormat, marker.Info())
	}
}

// readLength resolves the inline or extended length of the record whose
// marker precedes pos. It returns the length and the position of the body.
func (st *decodeState) readLength(marker section.Marker, pos int) (int, int, error) {
	if !marker.HasExtendedLength() {
		return int(marker.Info()), pos, nil
	}

	if err := st.need(pos, 1, "length marker"); err != nil {
		return 0, 0, err
	}

	lm := section.Marker(st.data[pos])
	if lm.Tag() != section.TagInteger || lm.Info() > 3 {
		return 0, 0, fmt.Errorf("%w: malformed extended length marker 0x%02x", errs.ErrFormat, byte(lm))
	}
	pos++

	width := 1 << lm.Info()
	if err := st.need(pos, width, "length"); err != nil {
		return 0, 0, err
	}

	n, _ := endian.ReadUint(st.engine, st.data[pos:pos+width])
	if n > uint64(st.cfg.maxLength) {
		return 0, 0, fmt.Errorf("%w: length %d, limit %d", errs.ErrResourceLimit, n, st.cfg.maxLength)
	}

	return int(n), pos + width, nil //nolint:gosec
}

// readBytes reads a length-prefixed body of length*unit bytes.
func (st *decodeState) readBytes(marker section.Marker, pos, unit int, what string) ([]byte, error) {
	n, pos, err := st.readLength(marker, pos)
	if err != nil {
		return nil, err
	}

	size := n * unit
	if err := st.need(pos, size, what); err != nil {
		return nil, err
	}

	return clone(st.data[pos : pos+size]), nil
}

// readRefs reads count object references of ObjectRefSize bytes at pos.
func (st *decodeState) readRefs(pos, count int) ([]uint64, error) {
	width := int(st.trailer.ObjectRefSize)
	if err := st.need(pos, count*width, "object references"); err != nil {
		return nil, err
	}

	refs := make([]uint64, count)
	for i := range refs {
		refs[i], _ = endian.ReadUint(st.engine, st.data[pos:pos+width])
		pos += width
	}

	return refs, nil
}

func (st *decodeState) readArray(marker section.Marker, pos int, depth int) (*value.Value, error) {
	n, pos, err := st.readLength(marker, pos)
	if err != nil {
		return nil, err
	}

	refs, err := st.readRefs(pos, n)
	if err != nil {
		return nil, err
	}

	elems := make([]*value.Value, n)
	for i, ref := range refs {
		if elems[i], err = st.parseObject(ref, depth+1); err != nil {
			return nil, err
		}
	}

	return value.Array(elems...), nil
}

// readDictionary reads n key references followed by n value references.
func (st *decodeState) readDictionary(marker section.Marker, pos int, depth int) (*value.Value, error) {
	n, pos, err := st.readLength(marker, pos)
	if err != nil {
		return nil, err
	}

	refs, err := st.readRefs(pos, 2*n)
	if err != nil {
		return nil, err
	}

	dict := value.Dict()
	for i := range n {
		k, err := st.parseObject(refs[i], depth+1)
		if err != nil {
			return nil, err
		}

		key, ok := k.Text()
		if !ok {
			return nil, fmt.Errorf("%w: dictionary key of kind %s", errs.ErrFormat, k.Kind())
		}

		v, err := st.parseObject(refs[n+i], depth+1)
		if err != nil {
			return nil, err
		}
		dict.Set(key, v)
	}

	return dict, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)

	return out
}
