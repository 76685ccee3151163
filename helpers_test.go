package btree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect[K any, V any](m *Map[K, V]) []Entry[K, V] {
	var out []Entry[K, V]
	m.Walk(func(k K, v V) bool {
		out = append(out, Entry[K, V]{Key: k, Value: v})
		return false
	})
	return out
}

// snapshot captures everything observable about a map's shape and content.
type snapshot[K any, V any] struct {
	entries []Entry[K, V]
	height  int
	length  int
	dump    string
	live    int
}

func takeSnapshot[K any, V any](t *testing.T, m *Map[K, V]) snapshot[K, V] {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, m.Dump(&buf))
	return snapshot[K, V]{
		entries: collect(m),
		height:  m.Height(),
		length:  m.Len(),
		dump:    buf.String(),
		live:    m.store.live,
	}
}

func fill(t *testing.T, m *Map[int, int], keys ...int) {
	t.Helper()
	for _, k := range keys {
		_, _, err := m.Insert(k, k)
		require.NoError(t, err)
	}
}

func seq(from, to, step int) []int {
	var out []int
	for i := from; i < to; i += step {
		out = append(out, i)
	}
	return out
}
