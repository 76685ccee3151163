// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

// Iterator walks a map in ascending key order. It is lazy: nothing is read
// until Next is called. Any mutation of the map after the iterator was
// created makes Next panic. Call Map.Iterator again to restart.
type Iterator[K any, V any] struct {
	m       *Map[K, V]
	version uint64

	// front is the edge just before the next entry to yield.
	front   edgeHandle[K, V]
	started bool
	done    bool
}

// Iterator returns an iterator positioned before the smallest key.
func (m *Map[K, V]) Iterator() *Iterator[K, V] {
	return &Iterator[K, V]{m: m, version: m.version}
}

// Next returns the next entry in ascending order, or false once the map is
// exhausted.
func (i *Iterator[K, V]) Next() (K, V, bool) {
	var zk K
	var zv V

	if i.m.version != i.version {
		assertf("btree: map modified during iteration")
	}
	if i.done {
		return zk, zv, false
	}
	if !i.started {
		i.started = true
		root, ok := i.m.rootRef()
		if !ok {
			i.done = true
			return zk, zv, false
		}
		i.front = firstLeafEdge(root.firstEdge())
	}

	e := i.front
	for {
		if kv, ok := e.rightKV(); ok {
			i.front = firstLeafEdge(kv.rightEdge())
			return kv.key(), kv.value(), true
		}
		parent, ok := e.ref.ascend()
		if !ok {
			i.done = true
			return zk, zv, false
		}
		e = parent
	}
}

// firstLeafEdge follows leftmost children from e down to a leaf edge.
func firstLeafEdge[K any, V any](e edgeHandle[K, V]) edgeHandle[K, V] {
	for {
		f := e.force()
		if f.kind == LeafNode {
			return f.leaf.edgeHandle
		}
		e = f.internal.descend().firstEdge()
	}
}
