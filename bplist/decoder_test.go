package bplist

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/plist/endian"
	"github.com/arloliu/plist/errs"
	"github.com/arloliu/plist/section"
	"github.com/arloliu/plist/value"
)

// ==============================================================================
// Helper Functions
// ==============================================================================

// buildPlist lays out raw object records after the magic and appends an
// offset table and trailer. Offsets and references use one byte unless the
// layout needs more.
func buildPlist(t *testing.T, top int, refSize uint8, records ...[]byte) []byte {
	t.Helper()

	data := []byte(section.Magic)
	offsets := make([]uint64, len(records))
	for i, r := range records {
		offsets[i] = uint64(len(data))
		data = append(data, r...)
	}

	offsetSize := endian.UintWidth(offsets[len(offsets)-1])
	tableOffset := uint64(len(data))
	for _, off := range offsets {
		data = endian.AppendUint(endian.GetBigEndianEngine(), data, off, offsetSize)
	}

	tr := section.Trailer{
		OffsetIntSize:     uint8(offsetSize),
		ObjectRefSize:     refSize,
		ObjectCount:       uint64(len(records)),
		TopObject:         uint64(top),
		OffsetTableOffset: tableOffset,
	}

	return tr.AppendTo(data)
}

func decode(t *testing.T, data []byte, opts ...DecoderOption) (*value.Value, error) {
	t.Helper()

	dec, err := NewDecoder(opts...)
	require.NoError(t, err)

	return dec.Decode(data)
}

func mustDecode(t *testing.T, data []byte, opts ...DecoderOption) *value.Value {
	t.Helper()

	v, err := decode(t, data, opts...)
	require.NoError(t, err)

	return v
}

// ==============================================================================
// Basic Decoder Tests
// ==============================================================================

func TestDecoder_SingleBooleanTrue(t *testing.T) {
	// magic + 0x09 + offset table [8] + trailer
	data := []byte("bplist00")
	data = append(data, 0x09, 0x08)
	data = append(data, 0, 0, 0, 0, 0, 0, 1, 1)
	data = append(data, 0, 0, 0, 0, 0, 0, 0, 1) // object count
	data = append(data, 0, 0, 0, 0, 0, 0, 0, 0) // top object
	data = append(data, 0, 0, 0, 0, 0, 0, 0, 9) // offset table offset

	v := mustDecode(t, data)
	require.True(t, value.Equal(value.Bool(true), v))
}

func TestDecoder_Scalars(t *testing.T) {
	tests := []struct {
		name   string
		record []byte
		want   *value.Value
	}{
		{"null", []byte{0x00}, value.Null()},
		{"false", []byte{0x08}, value.Bool(false)},
		{"int8", []byte{0x10, 0x57}, value.Int(87)},
		{"int8 negative", []byte{0x10, 0xFF}, value.Int(-1)},
		{"int8 sign extended", []byte{0x10, 0xC8}, value.Int(-56)},
		{"int16 sign extended", []byte{0x11, 0xFF, 0x38}, value.Int(-200)},
		{"int16", []byte{0x11, 0x01, 0x00}, value.Int(256)},
		{"int32 negative", []byte{0x12, 0xFF, 0xFF, 0xFF, 0xFE}, value.Int(-2)},
		{"int64", []byte{0x13, 0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, value.Int(math.MaxInt64)},
		{
			"int128 negative",
			append([]byte{0x14}, append(repeat(0xFF, 8), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x9C)...),
			value.Int(-100),
		},
		{"real32", []byte{0x22, 0x3F, 0xC0, 0x00, 0x00}, value.Real(1.5)},
		{"real64", []byte{0x23, 0x40, 0x09, 0x21, 0xFB, 0x54, 0x44, 0x2D, 0x18}, value.Real(math.Pi)},
		{"date", []byte{0x33, 0, 0, 0, 0, 0, 0, 0, 0}, value.Date(section.ReferenceDate)},
		{"data", []byte{0x42, 0xDE, 0xAD}, value.Data([]byte{0xDE, 0xAD})},
		{"ascii", []byte{0x53, 'a', 'b', 'c'}, value.String("abc")},
		{"latin-1", []byte{0x52, 'c', 0xE9}, value.String("cé")},
		{"utf-16", []byte{0x62, 0x00, 'h', 0x00, 0xE9}, value.String("hé")},
		{"utf-16 surrogate pair", []byte{0x62, 0xD8, 0x3D, 0xDE, 0x00}, value.String("\U0001F600")},
		{"uid", []byte{0x81, 0x01, 0x02}, value.UID([]byte{0x01, 0x02})},
		{"fill then true", []byte{0x0F, 0x0F, 0x09}, value.Bool(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustDecode(t, buildPlist(t, 0, 1, tt.record))
			require.True(t, value.Equal(tt.want, v), "want %s, got %s", tt.want, v)
		})
	}
}

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}

	return out
}

func TestDecoder_Dictionary(t *testing.T) {
	// { "keyA": "valueA", "count": 87 }
	data := buildPlist(t, 0, 1,
		[]byte{0xD2, 1, 2, 3, 4},
		append([]byte{0x54}, "keyA"...),
		append([]byte{0x55}, "count"...),
		append([]byte{0x56}, "valueA"...),
		[]byte{0x10, 87},
	)

	v := mustDecode(t, data)
	require.Equal(t, value.KindDictionary, v.Kind())
	require.Equal(t, []string{"count", "keyA"}, v.Keys())
	require.True(t, value.Equal(value.String("valueA"), v.Get("keyA")))
	require.True(t, value.Equal(value.Int(87), v.Get("count")))
}

func TestDecoder_DictionaryKeyCoercion(t *testing.T) {
	data := buildPlist(t, 0, 1,
		[]byte{0xD3, 1, 2, 3, 4, 4, 4},
		[]byte{0x10, 7},
		[]byte{0x09},
		[]byte{0x22, 0x3F, 0xC0, 0x00, 0x00},
		[]byte{0x00},
	)

	v := mustDecode(t, data)
	require.Equal(t, []string{"1.5", "7", "true"}, v.Keys())
}

func TestDecoder_DictionaryKeyContainerRejected(t *testing.T) {
	data := buildPlist(t, 0, 1,
		[]byte{0xD1, 1, 2},
		[]byte{0xA0},
		[]byte{0x00},
	)

	_, err := decode(t, data)
	require.ErrorIs(t, err, errs.ErrFormat)
	require.Contains(t, err.Error(), "dictionary key of kind array")
}

func TestDecoder_SharedReferences(t *testing.T) {
	// [ x, x ] where both elements reference object 1
	data := buildPlist(t, 0, 1,
		[]byte{0xA2, 1, 1},
		[]byte{0xA1, 2},
		[]byte{0x10, 5},
	)

	v := mustDecode(t, data)
	elems, err := v.AsArray()
	require.NoError(t, err)
	require.Len(t, elems, 2)
	require.Same(t, elems[0], elems[1], "shared index decodes to one node")
}

func TestDecoder_ExtendedLength(t *testing.T) {
	records := [][]byte{append([]byte{0xAF, 0x10, 20}, seq(1, 20)...)}
	for range 20 {
		records = append(records, []byte{0x08})
	}

	v := mustDecode(t, buildPlist(t, 0, 1, records...))
	require.Equal(t, 20, v.Len())
}

func seq(from, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(from + i)
	}

	return out
}

func TestDecoder_TwoByteReferences(t *testing.T) {
	data := buildPlist(t, 0, 2,
		[]byte{0xA2, 0x00, 0x01, 0x00, 0x02},
		[]byte{0x10, 1},
		[]byte{0x10, 2},
	)

	v := mustDecode(t, data)
	require.True(t, value.Equal(value.Array(value.Int(1), value.Int(2)), v))
}

// ==============================================================================
// Error Tests
// ==============================================================================

func TestDecoder_FormatErrors(t *testing.T) {
	valid := buildPlist(t, 0, 1, []byte{0x09})

	badMagic := append([]byte(nil), valid...)
	badMagic[7] = '1'

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("bplist")},
		{"bad magic", badMagic},
		{"no trailer", []byte("bplist00\x09")},
		{"unknown tag", buildPlist(t, 0, 1, []byte{0x70})},
		{"unknown singleton", buildPlist(t, 0, 1, []byte{0x01})},
		{"bad date marker", buildPlist(t, 0, 1, []byte{0x32, 0, 0, 0, 0, 0, 0, 0, 0})},
		{"nan date", buildPlist(t, 0, 1, []byte{0x33, 0x7F, 0xF8, 0, 0, 0, 0, 0, 0})},
		{"real width", buildPlist(t, 0, 1, []byte{0x21, 0, 0})},
		{"integer width", buildPlist(t, 0, 1, []byte{0x15, 0})},
		{"int128 overflow", buildPlist(t, 0, 1, append([]byte{0x14, 0x01}, repeat(0, 15)...))},
		{"truncated integer", buildPlist(t, 0, 1, []byte{0x13, 0x01})},
		{"truncated data", buildPlist(t, 0, 1, []byte{0x45, 0x01})},
		{"truncated uid", buildPlist(t, 0, 1, []byte{0x8F})},
		{"bad extended length marker", buildPlist(t, 0, 1, []byte{0x4F, 0x20, 0x01})},
		{"truncated extended length", buildPlist(t, 0, 1, []byte{0x4F, 0x11, 0x01})},
		{"truncated refs", buildPlist(t, 0, 1, []byte{0xA5, 0x00})},
		{"self cycle", buildPlist(t, 0, 1, []byte{0xA1, 0x00})},
		{"indirect cycle", buildPlist(t, 0, 1, []byte{0xA1, 0x01}, []byte{0xA1, 0x00})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(t, tt.data)
			require.ErrorIs(t, err, errs.ErrFormat)
			require.NotErrorIs(t, err, errs.ErrResourceLimit)
		})
	}
}

func TestDecoder_OffsetOutOfRange(t *testing.T) {
	data := buildPlist(t, 0, 1, []byte{0x09})
	// The offset table entry is the byte right before the trailer.
	data[len(data)-section.TrailerSize-1] = 3

	_, err := decode(t, data)
	require.ErrorIs(t, err, errs.ErrFormat)
}

func TestDecoder_ReferenceError(t *testing.T) {
	data := buildPlist(t, 0, 1,
		[]byte{0xA2, 1, 9},
		[]byte{0x09},
	)

	_, err := decode(t, data)
	require.ErrorIs(t, err, errs.ErrReference)
	require.NotErrorIs(t, err, errs.ErrFormat)
}

func TestDecoder_ResourceLimits(t *testing.T) {
	t.Run("object count", func(t *testing.T) {
		data := buildPlist(t, 0, 1, []byte{0xA2, 1, 2}, []byte{0x08}, []byte{0x09})

		_, err := decode(t, data, WithMaxObjectCount(2))
		require.ErrorIs(t, err, errs.ErrResourceLimit)
		require.NotErrorIs(t, err, errs.ErrFormat)

		_, err = decode(t, data, WithMaxObjectCount(3))
		require.NoError(t, err)
	})

	t.Run("declared length", func(t *testing.T) {
		// A data record claiming 2^32-1 bytes fails before any allocation.
		data := buildPlist(t, 0, 1, []byte{0x4F, 0x12, 0xFF, 0xFF, 0xFF, 0xFF})

		_, err := decode(t, data, WithMaxLength(1024))
		require.ErrorIs(t, err, errs.ErrResourceLimit)
	})

	t.Run("depth", func(t *testing.T) {
		data := buildPlist(t, 0, 1,
			[]byte{0xA1, 1},
			[]byte{0xA1, 2},
			[]byte{0xA1, 3},
			[]byte{0xA0},
		)

		_, err := decode(t, data, WithMaxDepth(2))
		require.ErrorIs(t, err, errs.ErrResourceLimit)

		_, err = decode(t, data, WithMaxDepth(3))
		require.NoError(t, err)
	})
}

func TestNewDecoder_InvalidOptions(t *testing.T) {
	for _, opt := range []DecoderOption{WithMaxObjectCount(0), WithMaxLength(-1), WithMaxDepth(0)} {
		_, err := NewDecoder(opt)
		require.ErrorIs(t, err, errs.ErrInvalidOption)
	}
}

func TestDecoder_Config(t *testing.T) {
	dec, err := NewDecoder(WithMaxLength(10))
	require.NoError(t, err)
	require.Equal(t, 10, dec.Config().MaxLength())
	require.Equal(t, DefaultMaxObjectCount, dec.Config().MaxObjectCount())
	require.Equal(t, DefaultMaxDepth, dec.Config().MaxDepth())
}

func TestDecoder_DoesNotAliasInput(t *testing.T) {
	data := buildPlist(t, 0, 1, []byte{0x42, 0x01, 0x02})

	v := mustDecode(t, data)
	data[9] = 0xFF

	b, err := v.AsData()
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, b)
}

func TestDecoder_DateMicrosecondRounding(t *testing.T) {
	want := time.Date(2021, 6, 1, 8, 0, 0, 250000000, time.UTC)
	record := []byte{0x33}
	record = endian.GetBigEndianEngine().AppendUint64(record, math.Float64bits(section.TimeToSeconds(want)))

	v := mustDecode(t, buildPlist(t, 0, 1, record))
	got, err := v.AsDate()
	require.NoError(t, err)
	require.True(t, want.Equal(got))
}
