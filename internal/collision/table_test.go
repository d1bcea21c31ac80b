package collision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/plist/value"
)

func TestNewTable(t *testing.T) {
	table := NewTable()

	require.NotNil(t, table)
	require.Equal(t, 0, table.Len())
}

func TestTable_Intern_DenseIDs(t *testing.T) {
	table := NewTable()

	id, added := table.Intern(1, value.String("a"))
	require.True(t, added)
	require.Equal(t, 0, id)

	id, added = table.Intern(2, value.String("b"))
	require.True(t, added)
	require.Equal(t, 1, id)

	require.Equal(t, 2, table.Len())
	require.True(t, value.Equal(value.String("b"), table.Object(1)))
	require.Nil(t, table.Children(1))
}

func TestTable_Intern_DeduplicatesEqualValues(t *testing.T) {
	table := NewTable()

	first := value.String("k")
	second := value.String("k")

	id1, added := table.Intern(7, first)
	require.True(t, added)

	id2, added := table.Intern(7, second)
	require.False(t, added)
	require.Equal(t, id1, id2)
	require.Same(t, first, table.Object(id1), "the first instance represents the object")
	require.Equal(t, 1, table.Len())
}

func TestTable_Intern_Collision(t *testing.T) {
	table := NewTable()

	// Same digest, different content: must not be merged.
	id1, _ := table.Intern(99, value.Int(1))
	id2, added := table.Intern(99, value.Int(2))

	require.True(t, added)
	require.NotEqual(t, id1, id2)

	// Both remain addressable through the shared bucket.
	id, added := table.Intern(99, value.Int(2))
	require.False(t, added)
	require.Equal(t, id2, id)
}

func TestTable_InternContainer(t *testing.T) {
	table := NewTable()
	one, _ := table.Intern(1, value.Int(1))
	two, _ := table.Intern(2, value.Int(2))

	arr := value.Array(value.Int(1), value.Int(2))
	id, added := table.InternContainer(arr, []int{one, two})
	require.True(t, added)
	require.Equal(t, []int{one, two}, table.Children(id))
	require.Same(t, arr, table.Object(id))

	again, added := table.InternContainer(value.Array(value.Int(1), value.Int(2)), []int{one, two})
	require.False(t, added)
	require.Equal(t, id, again)

	// Order, kind and length all distinguish containers.
	for _, tc := range []struct {
		v        *value.Value
		children []int
	}{
		{value.Array(value.Int(2), value.Int(1)), []int{two, one}},
		{value.Array(value.Int(1)), []int{one}},
		{value.Array(value.Int(1), value.Int(2), value.Int(2)), []int{one, two, two}},
		{value.Dict(), []int{one, two}},
		{value.Array(), nil},
	} {
		_, added := table.InternContainer(tc.v, tc.children)
		require.True(t, added, "%v", tc.children)
	}

	require.Equal(t, 8, table.Len())
}
