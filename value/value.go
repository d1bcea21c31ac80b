// Package value is the in-memory tree shared by every plist codec.
//
// A *Value is a closed tagged union over ten kinds. Codecs produce and consume
// trees of *Value; a tree may reference the same node from several positions
// (the binary decoder does this for shared object references), so values are
// treated as immutable once handed to an encoder.
package value

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/arloliu/plist/errs"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindReal
	KindDate
	KindData
	KindString
	KindArray
	KindDictionary
	KindUID
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindDate:
		return "date"
	case KindData:
		return "data"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindDictionary:
		return "dictionary"
	case KindUID:
		return "uid"
	default:
		return "unknown"
	}
}

// Value is a property list node.
type Value struct {
	kind Kind

	// Scalar payloads, only the one matching kind is set.
	boolVal  bool
	intVal   int64
	realVal  float64
	dateVal  time.Time
	bytesVal []byte // Data and UID
	strVal   string

	// Container payloads
	arrVal  []*Value
	dictVal map[string]*Value
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{kind: KindInteger, intVal: v}
}

// Real creates a real value.
func Real(v float64) *Value {
	return &Value{kind: KindReal, realVal: v}
}

// Date creates a date value.
func Date(v time.Time) *Value {
	return &Value{kind: KindDate, dateVal: v}
}

// Data creates a data value. The slice is not copied.
func Data(v []byte) *Value {
	if v == nil {
		v = []byte{}
	}

	return &Value{kind: KindData, bytesVal: v}
}

// String creates a string value.
func String(v string) *Value {
	return &Value{kind: KindString, strVal: v}
}

// Array creates an array value holding elems in order.
func Array(elems ...*Value) *Value {
	if elems == nil {
		elems = []*Value{}
	}

	return &Value{kind: KindArray, arrVal: elems}
}

// Dict creates an empty dictionary value.
func Dict() *Value {
	return &Value{kind: KindDictionary, dictVal: make(map[string]*Value)}
}

// DictOf creates a dictionary value holding a copy of m.
func DictOf(m map[string]*Value) *Value {
	d := &Value{kind: KindDictionary, dictVal: make(map[string]*Value, len(m))}
	maps.Copy(d.dictVal, m)

	return d
}

// UID creates an opaque UID reference. The slice is not copied.
func UID(v []byte) *Value {
	return &Value{kind: KindUID, bytesVal: v}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the variant held by v.
func (v *Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is the null value.
func (v *Value) IsNull() bool {
	return v.kind == KindNull
}

func (v *Value) mismatch(want Kind) error {
	return fmt.Errorf("%w: want %s, have %s", errs.ErrKindMismatch, want, v.kind)
}

// AsBool returns the boolean payload.
func (v *Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, v.mismatch(KindBool)
	}

	return v.boolVal, nil
}

// AsInt returns the integer payload.
func (v *Value) AsInt() (int64, error) {
	if v.kind != KindInteger {
		return 0, v.mismatch(KindInteger)
	}

	return v.intVal, nil
}

// AsReal returns the real payload.
func (v *Value) AsReal() (float64, error) {
	if v.kind != KindReal {
		return 0, v.mismatch(KindReal)
	}

	return v.realVal, nil
}

// AsDate returns the date payload.
func (v *Value) AsDate() (time.Time, error) {
	if v.kind != KindDate {
		return time.Time{}, v.mismatch(KindDate)
	}

	return v.dateVal, nil
}

// AsData returns the data payload. The returned slice must not be modified.
func (v *Value) AsData() ([]byte, error) {
	if v.kind != KindData {
		return nil, v.mismatch(KindData)
	}

	return v.bytesVal, nil
}

// AsString returns the string payload.
func (v *Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", v.mismatch(KindString)
	}

	return v.strVal, nil
}

// AsArray returns the array elements. The returned slice must not be modified.
func (v *Value) AsArray() ([]*Value, error) {
	if v.kind != KindArray {
		return nil, v.mismatch(KindArray)
	}

	return v.arrVal, nil
}

// AsUID returns the UID payload. The returned slice must not be modified.
func (v *Value) AsUID() ([]byte, error) {
	if v.kind != KindUID {
		return nil, v.mismatch(KindUID)
	}

	return v.bytesVal, nil
}

// Len returns the number of elements or entries of a container, the byte
// length of data, UID and string values, and 0 otherwise.
func (v *Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arrVal)
	case KindDictionary:
		return len(v.dictVal)
	case KindData, KindUID:
		return len(v.bytesVal)
	case KindString:
		return len(v.strVal)
	default:
		return 0
	}
}

// Index returns the i-th array element.
func (v *Value) Index(i int) (*Value, error) {
	if v.kind != KindArray {
		return nil, v.mismatch(KindArray)
	}
	if i < 0 || i >= len(v.arrVal) {
		return nil, fmt.Errorf("index %d out of range [0, %d)", i, len(v.arrVal))
	}

	return v.arrVal[i], nil
}

// Get returns the dictionary entry for key, or nil when v is not a
// dictionary or has no such key.
func (v *Value) Get(key string) *Value {
	if v.kind != KindDictionary {
		return nil
	}

	return v.dictVal[key]
}

// Keys returns the dictionary keys in sorted order, or nil for other kinds.
func (v *Value) Keys() []string {
	if v.kind != KindDictionary {
		return nil
	}

	return slices.Sorted(maps.Keys(v.dictVal))
}

// Set stores val under key, replacing any previous entry.
// It panics when v is not a dictionary.
func (v *Value) Set(key string, val *Value) {
	if v.kind != KindDictionary {
		panic("value: Set on " + v.kind.String())
	}
	v.dictVal[key] = val
}

// Append adds val to the end of an array.
// It panics when v is not an array.
func (v *Value) Append(val *Value) {
	if v.kind != KindArray {
		panic("value: Append on " + v.kind.String())
	}
	v.arrVal = append(v.arrVal, val)
}

// ============================================================
// Equality
// ============================================================

// Equal reports whether a and b hold the same kind and content.
//
// Reals compare by bit pattern, so NaN equals an identical NaN and 0 differs
// from -0. Dates compare as instants. Two nil values are equal.
//
// Each pair of containers is compared at most once, so trees that share
// subtrees compare in time linear in their distinct nodes, and cyclic trees
// terminate.
func Equal(a, b *Value) bool {
	var eq equality

	return eq.equal(a, b)
}

// equality memoizes container pairs already under comparison. A pair seen
// again is reported equal: either its comparison finished as equal, or it is
// still in progress and any difference surfaces there.
type equality struct {
	seen map[[2]*Value]struct{}
}

func (eq *equality) equal(a, b *Value) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindInteger:
		return a.intVal == b.intVal
	case KindReal:
		return math.Float64bits(a.realVal) == math.Float64bits(b.realVal)
	case KindDate:
		return a.dateVal.Equal(b.dateVal)
	case KindData, KindUID:
		return string(a.bytesVal) == string(b.bytesVal)
	case KindString:
		return a.strVal == b.strVal
	case KindArray, KindDictionary:
		if eq.seen == nil {
			eq.seen = make(map[[2]*Value]struct{})
		}
		pair := [2]*Value{a, b}
		if _, ok := eq.seen[pair]; ok {
			return true
		}
		eq.seen[pair] = struct{}{}

		if a.kind == KindArray {
			return slices.EqualFunc(a.arrVal, b.arrVal, eq.equal)
		}

		return maps.EqualFunc(a.dictVal, b.dictVal, eq.equal)
	default:
		return false
	}
}

// ============================================================
// Rendering
// ============================================================

// Native converts v into plain Go values: nil, bool, int64, float64,
// time.Time, []byte, string, []any and map[string]any. UIDs become []byte.
func (v *Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.boolVal
	case KindInteger:
		return v.intVal
	case KindReal:
		return v.realVal
	case KindDate:
		return v.dateVal
	case KindData, KindUID:
		return v.bytesVal
	case KindString:
		return v.strVal
	case KindArray:
		out := make([]any, len(v.arrVal))
		for i, e := range v.arrVal {
			out[i] = e.Native()
		}

		return out
	case KindDictionary:
		out := make(map[string]any, len(v.dictVal))
		for k, e := range v.dictVal {
			out[k] = e.Native()
		}

		return out
	default:
		return nil
	}
}

// Text returns the textual form of a scalar: the string itself, decimal
// integers, shortest round-tripping reals and "true"/"false". The second
// result is false for kinds without a textual form.
func (v *Value) Text() (string, bool) {
	switch v.kind {
	case KindString:
		return v.strVal, true
	case KindInteger:
		return strconv.FormatInt(v.intVal, 10), true
	case KindReal:
		return strconv.FormatFloat(v.realVal, 'g', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.boolVal), true
	default:
		return "", false
	}
}

// String returns a short debug representation.
func (v *Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindDate:
		return v.dateVal.UTC().Format(time.RFC3339Nano)
	case KindData:
		return fmt.Sprintf("data(%d)", len(v.bytesVal))
	case KindUID:
		return fmt.Sprintf("uid(%x)", v.bytesVal)
	case KindString:
		return strconv.Quote(v.strVal)
	case KindArray:
		return fmt.Sprintf("array(%d)", len(v.arrVal))
	case KindDictionary:
		return fmt.Sprintf("dict(%d)", len(v.dictVal))
	default:
		s, _ := v.Text()
		return s
	}
}
