// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

import "github.com/cockroachdb/errors"

// Entry is a key-value pair passed to InsertMany.
type Entry[K any, V any] struct {
	Key   K
	Value V
}

// Lookup is one result of GetMany.
type Lookup[V any] struct {
	Value V
	Found bool
}

// boundStack holds the ancestor edges whose right entry bounds the subtree a
// batch cursor is in. It never grows past the tree height.
type boundStack[K any, V any] struct {
	edges [maxDepth]edgeHandle[K, V]
	top   int
}

func (s *boundStack[K, V]) push(e edgeHandle[K, V]) {
	if s.top == len(s.edges) {
		assertf("bound stack overflow at depth %d", s.top)
	}
	s.edges[s.top] = e
	s.top++
}

func (s *boundStack[K, V]) pop() edgeHandle[K, V] {
	if s.top == 0 {
		assertf("bound stack underflow")
	}
	s.top--
	return s.edges[s.top]
}

// cursor is the position of a sorted batch inside the tree. cur is the edge
// the next scan resumes from; every key of the subtree holding cur is less
// than the entry right of bound, if bound has one. Ancestor bounds wait on
// the stack.
type cursor[K any, V any] struct {
	cur   edgeHandle[K, V]
	bound edgeHandle[K, V]
	stack boundStack[K, V]
}

func (c *cursor[K, V]) reset(root nodeRef[K, V]) {
	c.cur = root.firstEdge()
	c.bound = root.lastEdge()
	c.stack.top = 0
}

// rewind climbs out of every subtree that key no longer fits in.
func (c *cursor[K, V]) rewind(cmp func(a, b K) int, key K) {
	for {
		kv, ok := c.bound.rightKV()
		if !ok || cmp(key, kv.key()) < 0 {
			return
		}
		c.cur = c.bound
		c.bound = c.stack.pop()
	}
}

// seek scans for key from the cursor, descending as needed. A hit leaves the
// cursor on the left edge of the entry so a repeated key hits again; a miss
// leaves it on the leaf edge where key belongs.
func (c *cursor[K, V]) seek(cmp func(a, b K) int, key K) searchResult[K, V] {
	for {
		res := searchNodeAt(cmp, c.cur, key)
		if res.found {
			c.cur = res.kv.leftEdge()
			return res
		}
		c.cur = res.edge
		f := res.edge.force()
		if f.kind == LeafNode {
			return res
		}
		// Only a child with an entry to its right has a tighter bound than
		// the one already in effect.
		if _, ok := res.edge.rightKV(); ok {
			c.stack.push(c.bound)
			c.bound = res.edge
		}
		c.cur = f.internal.descend().firstEdge()
	}
}

// anchor points the cursor at the left edge of kv and rebuilds the bounds
// from kv's ancestors, leaving it where a fresh descent to kv's key would.
func (c *cursor[K, V]) anchor(root nodeRef[K, V], kv kvHandle[K, V]) {
	var path [maxDepth]edgeHandle[K, V]
	depth := 0
	for e, ok := kv.ref.ascend(); ok; e, ok = e.ref.ascend() {
		if depth == len(path) {
			assertf("cursor path deeper than %d", depth)
		}
		path[depth] = e
		depth++
	}
	c.cur = kv.leftEdge()
	c.bound = root.lastEdge()
	c.stack.top = 0
	for i := depth - 1; i >= 0; i-- {
		if _, ok := path[i].rightKV(); ok {
			c.stack.push(c.bound)
			c.bound = path[i]
		}
	}
}

// InsertMany inserts entries, which must be sorted by key in non-decreasing
// order, with the same result as calling Insert for each in turn: for equal
// keys the later entry wins. Out-of-order input panics before anything is
// inserted.
//
// The batch is all or nothing. If an allocation is refused, every entry the
// call already applied is undone, the map is exactly as it was, and the
// error names the failing entry and matches ErrAllocationFailed.
func (m *Map[K, V]) InsertMany(entries []Entry[K, V]) error {
	defer m.guard.exclusive()()

	for i := 1; i < len(entries); i++ {
		if m.cmp(entries[i].Key, entries[i-1].Key) < 0 {
			assertf("btree: InsertMany entries out of order at index %d", i)
		}
	}

	u := m.beginBatch()
	defer func() { m.undo = nil }()

	var c cursor[K, V]
	fresh := true
	for i := range entries {
		e := &entries[i]
		root, ok := m.rootRef()
		if !ok {
			if err := m.insertIntoEmpty(e.Key, e.Value); err != nil {
				m.rollback(u)
				return errors.Wrapf(err, "inserting entry %d", i)
			}
			fresh = true
			continue
		}
		if fresh {
			c.reset(root)
			fresh = false
		}
		c.rewind(m.cmp, e.Key)
		res := c.seek(m.cmp, e.Key)
		if res.found {
			u.save(res.kv.ref.node)
			res.kv.replaceValue(e.Value)
			m.version++
			continue
		}
		kv, split, err := m.insertAtLeaf(res.edge, e.Key, e.Value)
		if err != nil {
			m.rollback(u)
			return errors.Wrapf(err, "inserting entry %d", i)
		}
		// A split moves separators in the ancestors the cursor relies on,
		// so rebuild its bounds from where the new entry ended up.
		if split {
			root, _ = m.rootRef()
			c.anchor(root, kv)
		}
	}
	return nil
}

// GetMany looks up keys, which must be sorted in non-decreasing order, and
// appends one Lookup per key to out, in the same order. The results equal
// calling Get for each key. Out-of-order input panics.
func (m *Map[K, V]) GetMany(keys []K, out []Lookup[V]) []Lookup[V] {
	defer m.guard.shared()()

	root, ok := m.rootRef()
	var c cursor[K, V]
	if ok {
		c.reset(root)
	}
	for i, k := range keys {
		if i > 0 && m.cmp(k, keys[i-1]) < 0 {
			assertf("btree: GetMany keys out of order at index %d", i)
		}
		if !ok {
			out = append(out, Lookup[V]{})
			continue
		}
		c.rewind(m.cmp, k)
		res := c.seek(m.cmp, k)
		if res.found {
			out = append(out, Lookup[V]{Value: res.kv.value(), Found: true})
		} else {
			out = append(out, Lookup[V]{})
		}
	}
	return out
}
