package bplist

import (
	"fmt"
	"math"

	"github.com/arloliu/plist/endian"
	"github.com/arloliu/plist/errs"
	"github.com/arloliu/plist/internal/collision"
	"github.com/arloliu/plist/internal/hash"
	"github.com/arloliu/plist/internal/options"
	"github.com/arloliu/plist/internal/pool"
	"github.com/arloliu/plist/section"
	"github.com/arloliu/plist/value"
)

// Encoder serializes value trees into the binary plist layout.
//
// Encoding runs in two phases. The first walks the whole tree and assigns a
// dense object ID to every distinct value; values that are equal by content
// share one ID even when they are separate nodes, so the output stores each
// distinct value once. Only when the object count is final does the second
// phase pick the reference width and emit records, the offset table and the
// trailer.
//
// Integers are written in the smallest two's-complement width that holds
// them, so -1 becomes the single byte 0xFF. CoreFoundation reads 1, 2 and
// 4 byte integer records as unsigned and would see 255; values in
// [-2^31, 0) therefore do not round-trip through Apple's reader.
//
// The first phase costs time linear in the number of distinct nodes of the
// input, however much of it is shared. The input tree is never modified. An
// Encoder is safe for concurrent use.
type Encoder struct {
	cfg *EncoderConfig
}

// NewEncoder creates an Encoder.
//
// Parameters:
//   - opts: Optional limits (WithEncoderMaxObjectCount, WithEncoderMaxDepth)
//
// Returns:
//   - *Encoder: New encoder instance
//   - error: errs.ErrInvalidOption when an option is rejected
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	cfg := NewEncoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Encoder{cfg: cfg}, nil
}

// Encode serializes root.
//
// Returns:
//   - []byte: Newly allocated binary plist owned by the caller
//   - error: errs.ErrEncoding for nil nodes, cycles and unrepresentable
//     values, errs.ErrResourceLimit when a configured limit is exceeded
func (e *Encoder) Encode(root *value.Value) ([]byte, error) {
	st := &encodeState{
		cfg:    e.cfg,
		table:  collision.NewTable(),
		engine: endian.GetBigEndianEngine(),
		memo:   make(map[*value.Value]int),
		active: make(map[*value.Value]struct{}),
	}

	// Phase 1 must see the whole tree: the reference width depends on the
	// final object count.
	rootClass, err := st.intern(root, 0)
	if err != nil {
		return nil, err
	}
	st.number(rootClass)

	return st.serialize()
}

// encodeState is the per-call encoding context.
//
// Interning names every distinct value by a class, the ID the object table
// gave it. Classes are numbered children first; object IDs are then handed
// out in a depth-first pass from the root, so the root is object 0 and
// every container precedes its children.
type encodeState struct {
	cfg    *EncoderConfig
	table  *collision.Table
	engine endian.EndianEngine

	memo   map[*value.Value]int      // node -> class
	active map[*value.Value]struct{} // containers on the current path

	ids     []int // class -> object ID + 1, 0 while unnumbered
	objects []*value.Value
	// refs[id] holds the child IDs of container object id: element IDs for
	// arrays, key IDs followed by value IDs for dictionaries.
	refs [][]int
}

// intern returns the class of v, interning its descendants first. Each node
// is visited once however many positions reference it.
func (st *encodeState) intern(v *value.Value, depth int) (int, error) {
	if depth > st.cfg.maxDepth {
		return 0, fmt.Errorf("%w: nesting deeper than %d", errs.ErrResourceLimit, st.cfg.maxDepth)
	}
	if v == nil {
		return 0, fmt.Errorf("%w: nil value", errs.ErrEncoding)
	}
	if class, ok := st.memo[v]; ok {
		return class, nil
	}

	var (
		class int
		added bool
	)

	switch v.Kind() {
	case value.KindArray, value.KindDictionary:
		if _, ok := st.active[v]; ok {
			return 0, fmt.Errorf("%w: cyclic %s", errs.ErrEncoding, v.Kind())
		}
		st.active[v] = struct{}{}
		children, err := st.internChildren(v, depth)
		delete(st.active, v)
		if err != nil {
			return 0, err
		}
		class, added = st.table.InternContainer(v, children)

	default:
		digest, err := hash.Scalar(v)
		if err != nil {
			return 0, err
		}
		class, added = st.table.Intern(digest, v)
	}

	if added {
		if err := st.checkCount(); err != nil {
			return 0, err
		}
	}
	st.memo[v] = class

	return class, nil
}

func (st *encodeState) internChildren(v *value.Value, depth int) ([]int, error) {
	if v.Kind() == value.KindArray {
		elems, _ := v.AsArray()
		children := make([]int, len(elems))
		for i, elem := range elems {
			class, err := st.intern(elem, depth+1)
			if err != nil {
				return nil, err
			}
			children[i] = class
		}

		return children, nil
	}

	keys := v.Keys()
	children := make([]int, 2*len(keys))
	for i, k := range keys {
		class, added := st.table.Intern(hash.String(k), value.String(k))
		if added {
			if err := st.checkCount(); err != nil {
				return nil, err
			}
		}
		children[i] = class
	}
	for i, k := range keys {
		class, err := st.intern(v.Get(k), depth+1)
		if err != nil {
			return nil, err
		}
		children[len(keys)+i] = class
	}

	return children, nil
}

func (st *encodeState) checkCount() error {
	if n := st.table.Len(); n > st.cfg.maxObjectCount {
		return fmt.Errorf("%w: more than %d objects", errs.ErrResourceLimit, st.cfg.maxObjectCount)
	}

	return nil
}

// number assigns object IDs depth-first: a container, then its children in
// order. It returns the object ID of class.
func (st *encodeState) number(class int) int {
	if st.ids == nil {
		st.ids = make([]int, st.table.Len())
		st.objects = make([]*value.Value, 0, st.table.Len())
		st.refs = make([][]int, 0, st.table.Len())
	}
	if id := st.ids[class]; id > 0 {
		return id - 1
	}

	id := len(st.objects)
	st.ids[class] = id + 1
	st.objects = append(st.objects, st.table.Object(class))
	st.refs = append(st.refs, nil)

	children := st.table.Children(class)
	if children == nil {
		return id
	}

	refs := make([]int, len(children))
	for i, c := range children {
		refs[i] = st.number(c)
	}
	st.refs[id] = refs

	return id
}

// serialize emits magic, records in ID order, offset table and trailer.
// The root is object 0.
func (st *encodeState) serialize() ([]byte, error) {
	count := len(st.objects)
	refSize := endian.UintWidth(uint64(count))

	buf := pool.GetEncodeBuffer()
	defer pool.PutEncodeBuffer(buf)

	offsets, cleanup := pool.GetOffsetSlice(count)
	defer cleanup()

	_, _ = buf.WriteString(section.Magic)

	for id := range count {
		offsets[id] = uint64(buf.Len())
		if err := st.writeObject(buf, st.objects[id], st.refs[id], refSize); err != nil {
			return nil, err
		}
	}

	// Offsets grow with ID, the last one is the largest.
	offsetSize := endian.UintWidth(offsets[count-1])
	tableOffset := uint64(buf.Len())

	buf.Grow(count*offsetSize + section.TrailerSize)
	for _, off := range offsets {
		buf.B = endian.AppendUint(st.engine, buf.B, off, offsetSize)
	}

	trailer := section.Trailer{
		OffsetIntSize:     uint8(offsetSize), //nolint:gosec
		ObjectRefSize:     uint8(refSize),    //nolint:gosec
		ObjectCount:       uint64(count),
		TopObject:         0,
		OffsetTableOffset: tableOffset,
	}
	buf.B = trailer.AppendTo(buf.B)

	return buf.Clone(), nil
}

// writeObject emits one record. Containers write only child references.
func (st *encodeState) writeObject(buf *pool.ByteBuffer, v *value.Value, children []int, refSize int) error {
	switch v.Kind() {
	case value.KindNull:
		_ = buf.WriteByte(section.MarkerNull)

	case value.KindBool:
		b, _ := v.AsBool()
		if b {
			_ = buf.WriteByte(section.MarkerTrue)
		} else {
			_ = buf.WriteByte(section.MarkerFalse)
		}

	case value.KindInteger:
		i, _ := v.AsInt()
		st.writeInteger(buf, uint64(i), endian.IntWidth(i)) //nolint:gosec

	case value.KindReal:
		f, _ := v.AsReal()
		if f32 := float32(f); !math.IsNaN(f) && float64(f32) == f {
			_ = buf.WriteByte(byte(section.NewMarker(section.TagReal, 2)))
			buf.B = st.engine.AppendUint32(buf.B, math.Float32bits(f32))
		} else {
			_ = buf.WriteByte(byte(section.NewMarker(section.TagReal, 3)))
			buf.B = st.engine.AppendUint64(buf.B, math.Float64bits(f))
		}

	case value.KindDate:
		t, _ := v.AsDate()
		_ = buf.WriteByte(section.MarkerDate)
		buf.B = st.engine.AppendUint64(buf.B, math.Float64bits(section.TimeToSeconds(t)))

	case value.KindData:
		b, _ := v.AsData()
		st.writeHeader(buf, section.TagData, len(b))
		_, _ = buf.Write(b)

	case value.KindString:
		s, _ := v.AsString()
		if isASCII(s) {
			st.writeHeader(buf, section.TagASCII, len(s))
			_, _ = buf.WriteString(s)

			return nil
		}

		b, err := encodeUTF16(s)
		if err != nil {
			return err
		}
		st.writeHeader(buf, section.TagUTF16, len(b)/2)
		_, _ = buf.Write(b)

	case value.KindUID:
		b, _ := v.AsUID()
		if len(b) == 0 || len(b) > section.MaxUIDSize {
			return fmt.Errorf("%w: uid of %d bytes, want 1..%d", errs.ErrEncoding, len(b), section.MaxUIDSize)
		}
		_ = buf.WriteByte(byte(section.NewMarker(section.TagUID, byte(len(b)-1))))
		_, _ = buf.Write(b)

	case value.KindArray:
		st.writeHeader(buf, section.TagArray, len(children))
		st.writeRefs(buf, children, refSize)

	case value.KindDictionary:
		st.writeHeader(buf, section.TagDictionary, len(children)/2)
		st.writeRefs(buf, children, refSize)

	default:
		return fmt.Errorf("%w: unknown kind %s", errs.ErrEncoding, v.Kind())
	}

	return nil
}

// writeInteger emits an integer record of width bytes.
func (st *encodeState) writeInteger(buf *pool.ByteBuffer, u uint64, width int) {
	_ = buf.WriteByte(byte(section.NewMarker(section.TagInteger, endian.WidthExponent(width))))
	buf.B = endian.AppendUint(st.engine, buf.B, u, width)
}

// writeHeader emits a marker with an inline length, or the extended form
// followed by the smallest unsigned integer record holding n.
func (st *encodeState) writeHeader(buf *pool.ByteBuffer, tag byte, n int) {
	if n <= section.MaxInlineLength {
		_ = buf.WriteByte(byte(section.NewMarker(tag, byte(n))))
		return
	}

	_ = buf.WriteByte(byte(section.NewMarker(tag, section.InfoExtended)))
	st.writeInteger(buf, uint64(n), endian.UintWidth(uint64(n)))
}

func (st *encodeState) writeRefs(buf *pool.ByteBuffer, children []int, refSize int) {
	buf.Grow(len(children) * refSize)
	for _, id := range children {
		buf.B = endian.AppendUint(st.engine, buf.B, uint64(id), refSize) //nolint:gosec
	}
}
