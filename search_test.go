package btree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchLinearAt(t *testing.T) {
	t.Parallel()

	keys := []int{10, 20, 30}
	type exp struct {
		key   int
		start int
		idx   int
		found bool
	}
	cases := []exp{
		{5, 0, 0, false},
		{10, 0, 0, true},
		{15, 0, 1, false},
		{25, 1, 2, false},
		{30, 2, 2, true},
		{35, 0, 3, false},
		{35, 3, 3, false},
	}
	for _, tc := range cases {
		idx, found := searchLinearAt(defaultCompare[int], keys, tc.key, tc.start)
		require.Equal(t, tc.idx, idx, "key %d from %d", tc.key, tc.start)
		require.Equal(t, tc.found, found, "key %d from %d", tc.key, tc.start)
	}
}

func TestSearchTree(t *testing.T) {
	t.Parallel()

	m := New[int, int]()
	fill(t, m, seq(0, 1000, 2)...)
	root, ok := m.rootRef()
	require.True(t, ok)
	require.Greater(t, root.height, 1)

	res := searchTree(m.cmp, root, 500)
	require.True(t, res.found)
	require.Equal(t, 500, res.kv.key())
	require.Equal(t, 500, res.kv.value())

	res = searchTree(m.cmp, root, 501)
	require.False(t, res.found)
	require.True(t, res.edge.ref.isLeaf())
	// The leaf edge sits between the neighbours of the missing key.
	left, ok := res.edge.leftKV()
	if ok {
		require.Equal(t, 500, left.key())
	}
	right, ok := res.edge.rightKV()
	if ok {
		require.Equal(t, 502, right.key())
	}
}

func TestSearchNodeAt_Resumes(t *testing.T) {
	t.Parallel()

	m := New[int, int]()
	fill(t, m, seq(0, 10, 1)...)
	root, _ := m.rootRef()

	res := searchNodeAt(m.cmp, newEdge(root, 4), 7)
	require.True(t, res.found)
	require.Equal(t, 7, res.kv.idx)

	res = searchNodeAt(m.cmp, newEdge(root, 10), 11)
	require.False(t, res.found)
	require.Equal(t, 10, res.edge.idx)
}
