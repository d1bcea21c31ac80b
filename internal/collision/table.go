// Package collision implements the content-addressed object table of the
// binary encoder.
package collision

import (
	"encoding/binary"

	"github.com/arloliu/plist/value"
)

// Table assigns dense object IDs to distinct values during binary encoding.
//
// Scalars are bucketed by content digest; a digest hit is only a match when
// value.Equal confirms it, so two unequal scalars whose digests collide get
// separate IDs. Containers are keyed by their kind and the IDs of their
// children, which must be interned first: equal containers then have equal
// keys, and a lookup costs time proportional to the number of children.
type Table struct {
	byDigest map[uint64][]int // scalar digest -> IDs sharing it
	byKey    map[string]int   // container key -> ID
	objects  []*value.Value   // ID -> representative value
	children [][]int          // ID -> child IDs, nil for scalars
	key      []byte
}

// NewTable creates an empty object table.
func NewTable() *Table {
	return &Table{
		byDigest: make(map[uint64][]int),
		byKey:    make(map[string]int),
		objects:  make([]*value.Value, 0, 16),
		children: make([][]int, 0, 16),
	}
}

// Intern returns the ID of the scalar equal to v, assigning the next ID when
// none is present yet. The second result is true when a new ID was assigned.
func (t *Table) Intern(digest uint64, v *value.Value) (int, bool) {
	ids := t.byDigest[digest]
	for _, id := range ids {
		if value.Equal(t.objects[id], v) {
			return id, false
		}
	}

	id := t.add(v, nil)
	t.byDigest[digest] = append(ids, id)

	return id, true
}

// InternContainer returns the ID of the container with v's kind and the
// given child IDs, assigning the next ID when none is present yet.
//
// For arrays children are the element IDs in order; for dictionaries the key
// IDs in sorted key order followed by the value IDs. The table keeps
// children, so callers must not modify it afterwards.
func (t *Table) InternContainer(v *value.Value, children []int) (int, bool) {
	t.key = append(t.key[:0], byte(v.Kind()))
	t.key = binary.AppendUvarint(t.key, uint64(len(children)))
	for _, c := range children {
		t.key = binary.AppendUvarint(t.key, uint64(c)) //nolint:gosec
	}

	if id, ok := t.byKey[string(t.key)]; ok {
		return id, false
	}

	id := t.add(v, children)
	t.byKey[string(t.key)] = id

	return id, true
}

func (t *Table) add(v *value.Value, children []int) int {
	id := len(t.objects)
	t.objects = append(t.objects, v)
	t.children = append(t.children, children)

	return id
}

// Object returns the representative value of id.
func (t *Table) Object(id int) *value.Value {
	return t.objects[id]
}

// Children returns the child IDs of container id, nil for scalars.
func (t *Table) Children(id int) []int {
	return t.children[id]
}

// Len returns the number of distinct objects.
func (t *Table) Len() int {
	return len(t.objects)
}
