// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

import (
	"bytes"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hashicorp/go-uuid"
	"github.com/stretchr/testify/require"
)

func TestMap_InsertTwiceOverwrites(t *testing.T) {
	t.Parallel()

	m := New[int64, uint64]()
	for pass := 0; pass < 2; pass++ {
		for i := 0; i < 64; i++ {
			old, replaced, err := m.Insert(int64(i), uint64(i))
			require.NoError(t, err)
			require.Equal(t, pass == 1, replaced)
			if replaced {
				require.Equal(t, uint64(i), old)
			}
		}
	}
	require.Equal(t, 64, m.Len())
	require.NoError(t, m.Check())

	var want []Entry[int64, uint64]
	for i := 0; i < 64; i++ {
		want = append(want, Entry[int64, uint64]{Key: int64(i), Value: uint64(i)})
	}
	require.Equal(t, want, collect(m))
}

func TestMap_Empty(t *testing.T) {
	t.Parallel()

	m := New[string, int]()
	require.Equal(t, 0, m.Len())
	require.Equal(t, 0, m.Height())
	_, ok := m.Get("foo")
	require.False(t, ok)
	_, _, ok = m.Minimum()
	require.False(t, ok)
	_, _, ok = m.Maximum()
	require.False(t, ok)
	require.Empty(t, collect(m))
	require.NoError(t, m.Check())

	var buf bytes.Buffer
	require.NoError(t, m.Dump(&buf))
	require.Equal(t, "(empty)\n", buf.String())
}

func TestMap_GetAfterSplits(t *testing.T) {
	t.Parallel()

	type exp struct {
		desc string
		keys []int
	}
	cases := []exp{
		{"ascending", seq(0, 5000, 1)},
		{"descending", func() []int { s := seq(0, 5000, 1); slices.Reverse(s); return s }()},
		{"random", rand.New(rand.NewSource(42)).Perm(5000)},
		{"single leaf", seq(0, capacity, 1)},
		{"first split", seq(0, capacity+1, 1)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			m := New[int, int]()
			for i, k := range tc.keys {
				fill(t, m, k)
				if i%97 == 0 {
					require.NoError(t, m.Check())
				}
			}
			require.NoError(t, m.Check())
			require.Equal(t, len(tc.keys), m.Len())
			for _, k := range tc.keys {
				v, ok := m.Get(k)
				require.True(t, ok, "missing %d", k)
				require.Equal(t, k, v)
			}
			_, ok := m.Get(-1)
			require.False(t, ok)
			_, ok = m.Get(len(tc.keys))
			require.False(t, ok)
		})
	}
}

func TestMap_Height(t *testing.T) {
	t.Parallel()

	m := New[int, int]()
	fill(t, m, seq(0, capacity, 1)...)
	require.Equal(t, 0, m.Height())
	fill(t, m, capacity)
	require.Equal(t, 1, m.Height())
	fill(t, m, seq(capacity+1, 20000, 1)...)
	require.Greater(t, m.Height(), 2)
	require.NoError(t, m.Check())
}

func TestMap_MinimumMaximum(t *testing.T) {
	t.Parallel()

	m := New[int, string]()
	for _, k := range rand.New(rand.NewSource(7)).Perm(1000) {
		_, _, err := m.Insert(k+10, strings.Repeat("x", k%5))
		require.NoError(t, err)
	}
	k, _, ok := m.Minimum()
	require.True(t, ok)
	require.Equal(t, 10, k)
	k, _, ok = m.Maximum()
	require.True(t, ok)
	require.Equal(t, 1009, k)
}

func TestMap_WalkStops(t *testing.T) {
	t.Parallel()

	m := New[int, int]()
	fill(t, m, seq(0, 100, 1)...)
	var seen []int
	m.Walk(func(k int, v int) bool {
		seen = append(seen, k)
		return k == 41
	})
	require.Equal(t, seq(0, 42, 1), seen)
}

func TestMap_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	m := New[int, int]()
	fill(t, m, rand.New(rand.NewSource(6)).Perm(10000)...)
	keys := seq(0, 12000, 3)

	var wrong atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20000; i++ {
				k := (i*31 + g) % 12000
				v, ok := m.Get(k)
				if ok != (k < 10000) || (ok && v != k) {
					wrong.Add(1)
				}
			}
			for round := 0; round < 20; round++ {
				for i, r := range m.GetMany(keys, nil) {
					if r.Found != (keys[i] < 10000) || (r.Found && r.Value != keys[i]) {
						wrong.Add(1)
					}
				}
			}
			n := 0
			m.Walk(func(int, int) bool {
				n++
				return false
			})
			if n != 10000 {
				wrong.Add(1)
			}
		}(g)
	}
	wg.Wait()
	require.Zero(t, wrong.Load())
	require.NoError(t, m.Check())
}

func TestMap_MutationDuringWalkPanics(t *testing.T) {
	t.Parallel()

	m := New[int, int]()
	fill(t, m, 1, 2, 3)
	require.Panics(t, func() {
		m.Walk(func(k int, v int) bool {
			m.Insert(k+100, v)
			return false
		})
	})
	// The guard is released again once the walk unwinds.
	fill(t, m, 4)
	require.Equal(t, 4, m.Len())
}

func TestMap_Clear(t *testing.T) {
	t.Parallel()

	budget := NewBudget(1 << 20)
	m := New[int, int](WithAllocator(budget))
	fill(t, m, seq(0, 3000, 1)...)
	require.Greater(t, budget.Live(), 1)
	require.Equal(t, budget.Live(), m.store.live)

	m.Clear()
	require.Equal(t, 0, budget.Live())
	require.Equal(t, 0, m.Len())
	require.Equal(t, 0, m.Height())
	require.NoError(t, m.Check())
	_, ok := m.Get(5)
	require.False(t, ok)

	fill(t, m, 3, 1, 2)
	require.Equal(t, []Entry[int, int]{{1, 1}, {2, 2}, {3, 3}}, collect(m))
	require.NoError(t, m.Check())
}

func TestMap_CustomOrder(t *testing.T) {
	t.Parallel()

	m := NewFunc[string, int](func(a, b string) int {
		return strings.Compare(b, a)
	})
	for i, k := range []string{"b", "a", "d", "c"} {
		_, _, err := m.Insert(k, i)
		require.NoError(t, err)
	}
	var keys []string
	m.Walk(func(k string, _ int) bool {
		keys = append(keys, k)
		return false
	})
	require.Equal(t, []string{"d", "c", "b", "a"}, keys)
	require.NoError(t, m.Check())
}

func TestMap_Dump(t *testing.T) {
	t.Parallel()

	m := New[int, int]()
	fill(t, m, seq(0, capacity+1, 1)...)
	var buf bytes.Buffer
	require.NoError(t, m.Dump(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "internal len -> 1 keys -> [6]")
	require.True(t, strings.HasPrefix(lines[1], "    id -> "))
	require.Contains(t, lines[1], "leaf len -> 6 keys -> [0 1 2 3 4 5]")
	require.Contains(t, lines[2], "leaf len -> 5 keys -> [7 8 9 10 11]")
}

const datasetSize = 20000

func generateDataset(size int) []string {
	dataset := make([]string, size)
	for i := 0; i < size; i++ {
		uuid1, _ := uuid.GenerateUUID()
		dataset[i] = uuid1
	}
	return dataset
}

func TestMap_RandomSortedRoundTrip(t *testing.T) {
	t.Parallel()

	keys := generateDataset(datasetSize)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	entries := make([]Entry[string, int], len(keys))
	for i, k := range keys {
		entries[i] = Entry[string, int]{Key: k, Value: i}
	}
	m := New[string, int]()
	require.NoError(t, m.InsertMany(entries))
	require.Equal(t, len(keys), m.Len())
	require.NoError(t, m.Check())

	got := collect(m)
	require.True(t, slices.IsSortedFunc(got, func(a, b Entry[string, int]) int {
		return strings.Compare(a.Key, b.Key)
	}))
	for i, k := range keys {
		v, ok := m.Get(k)
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}
