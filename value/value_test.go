package value

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/plist/errs"
)

func TestKindString(t *testing.T) {
	require.Equal(t, "null", KindNull.String())
	require.Equal(t, "dictionary", KindDictionary.String())
	require.Equal(t, "uid", KindUID.String())
	require.Equal(t, "unknown", Kind(200).String())
}

func TestAccessors(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	b, err := Bool(true).AsBool()
	require.NoError(t, err)
	require.True(t, b)

	i, err := Int(-42).AsInt()
	require.NoError(t, err)
	require.Equal(t, int64(-42), i)

	f, err := Real(1.5).AsReal()
	require.NoError(t, err)
	require.InDelta(t, 1.5, f, 0)

	d, err := Date(now).AsDate()
	require.NoError(t, err)
	require.True(t, now.Equal(d))

	data, err := Data([]byte{1, 2}).AsData()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, data)

	s, err := String("hi").AsString()
	require.NoError(t, err)
	require.Equal(t, "hi", s)

	uid, err := UID([]byte{7}).AsUID()
	require.NoError(t, err)
	require.Equal(t, []byte{7}, uid)

	arr, err := Array(Int(1), Int(2)).AsArray()
	require.NoError(t, err)
	require.Len(t, arr, 2)

	require.True(t, Null().IsNull())
}

func TestAccessors_KindMismatch(t *testing.T) {
	_, err := String("x").AsInt()
	require.ErrorIs(t, err, errs.ErrKindMismatch)
	require.Contains(t, err.Error(), "want integer, have string")

	_, err = Int(1).AsBool()
	require.ErrorIs(t, err, errs.ErrKindMismatch)

	_, err = Dict().AsArray()
	require.ErrorIs(t, err, errs.ErrKindMismatch)

	_, err = Int(1).Index(0)
	require.ErrorIs(t, err, errs.ErrKindMismatch)
}

func TestDictionary_LastWriteWins(t *testing.T) {
	d := Dict()
	d.Set("a", Int(1))
	d.Set("b", Int(2))
	d.Set("a", Int(3))

	require.Equal(t, 2, d.Len())
	require.Equal(t, []string{"a", "b"}, d.Keys())
	require.True(t, Equal(Int(3), d.Get("a")))
	require.Nil(t, d.Get("missing"))
	require.Nil(t, Int(1).Get("a"))
}

func TestDictOf_Copies(t *testing.T) {
	src := map[string]*Value{"k": String("v")}
	d := DictOf(src)
	src["other"] = Null()

	require.Equal(t, 1, d.Len())
}

func TestArray_IndexAndAppend(t *testing.T) {
	a := Array()
	a.Append(String("x"))
	a.Append(String("y"))

	require.Equal(t, 2, a.Len())
	e, err := a.Index(1)
	require.NoError(t, err)
	require.True(t, Equal(String("y"), e))

	_, err = a.Index(2)
	require.Error(t, err)
	_, err = a.Index(-1)
	require.Error(t, err)
}

func TestSetAppend_PanicOnWrongKind(t *testing.T) {
	require.Panics(t, func() { Int(1).Set("a", Null()) })
	require.Panics(t, func() { Dict().Append(Null()) })
}

func TestEqual(t *testing.T) {
	nan := math.NaN()
	when := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b *Value
		want bool
	}{
		{"null", Null(), Null(), true},
		{"bool", Bool(true), Bool(true), true},
		{"bool differs", Bool(true), Bool(false), false},
		{"int vs real", Int(1), Real(1), false},
		{"nan", Real(nan), Real(nan), true},
		{"signed zero", Real(0), Real(math.Copysign(0, -1)), false},
		{"date zones", Date(when), Date(when.In(time.FixedZone("x", 3600))), true},
		{"data", Data([]byte{1}), Data([]byte{1}), true},
		{"data vs uid", Data([]byte{1}), UID([]byte{1}), false},
		{"string", String("a"), String("a"), true},
		{"array order", Array(Int(1), Int(2)), Array(Int(2), Int(1)), false},
		{"array equal", Array(Int(1), String("x")), Array(Int(1), String("x")), true},
		{"array length", Array(Int(1)), Array(Int(1), Int(1)), false},
		{
			"dict layout",
			DictOf(map[string]*Value{"a": Int(1), "b": Int(2)}),
			DictOf(map[string]*Value{"b": Int(2), "a": Int(1)}),
			true,
		},
		{
			"dict keys",
			DictOf(map[string]*Value{"a": Int(1)}),
			DictOf(map[string]*Value{"b": Int(1)}),
			false,
		},
		{"nil", nil, Null(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Equal(tt.a, tt.b))
			require.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

// doubling returns a DAG of depth levels, each an array holding the level
// below twice. It has depth+1 distinct nodes and 2^depth paths.
func doubling(leaf *Value, depth int) *Value {
	n := leaf
	for range depth {
		n = Array(n, n)
	}

	return n
}

func TestEqual_SharedSubtrees(t *testing.T) {
	require.True(t, Equal(doubling(Int(1), 64), doubling(Int(1), 64)))
	require.False(t, Equal(doubling(Int(1), 64), doubling(Int(2), 64)))
	require.False(t, Equal(doubling(Int(1), 64), doubling(Int(1), 63)))

	dict := func(leaf *Value) *Value {
		n := leaf
		for range 64 {
			n = DictOf(map[string]*Value{"a": n, "b": n})
		}

		return n
	}
	require.True(t, Equal(dict(String("x")), dict(String("x"))))
	require.False(t, Equal(dict(String("x")), dict(String("y"))))
}

func TestEqual_Cycles(t *testing.T) {
	a := Array(Int(1))
	a.Append(a)
	b := Array(Int(1))
	b.Append(b)
	require.True(t, Equal(a, b))

	c := Array(Int(2))
	c.Append(c)
	require.False(t, Equal(a, c))
}

func TestNative(t *testing.T) {
	v := DictOf(map[string]*Value{
		"list": Array(Int(1), Bool(false), Null()),
		"name": String("x"),
		"raw":  Data([]byte{9}),
	})

	require.Equal(t, map[string]any{
		"list": []any{int64(1), false, nil},
		"name": "x",
		"raw":  []byte{9},
	}, v.Native())
}

func TestText(t *testing.T) {
	s, ok := Int(-7).Text()
	require.True(t, ok)
	require.Equal(t, "-7", s)

	s, ok = Real(0.25).Text()
	require.True(t, ok)
	require.Equal(t, "0.25", s)

	s, ok = Bool(true).Text()
	require.True(t, ok)
	require.Equal(t, "true", s)

	_, ok = Data(nil).Text()
	require.False(t, ok)
	_, ok = Array().Text()
	require.False(t, ok)
}

func TestString(t *testing.T) {
	require.Equal(t, `"a"`, String("a").String())
	require.Equal(t, "array(2)", Array(Null(), Null()).String())
	require.Equal(t, "uid(0a)", UID([]byte{10}).String())
	require.Equal(t, "12", Int(12).String())
	require.Equal(t, "2001-01-01T00:00:00Z", Date(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)).String())
}
