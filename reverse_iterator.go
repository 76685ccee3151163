// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

// ReverseIterator walks a map in descending key order, with the same
// laziness and fail-fast rules as Iterator.
type ReverseIterator[K any, V any] struct {
	m       *Map[K, V]
	version uint64

	// back is the edge just after the next entry to yield.
	back    edgeHandle[K, V]
	started bool
	done    bool
}

// ReverseIterator returns an iterator positioned after the largest key.
func (m *Map[K, V]) ReverseIterator() *ReverseIterator[K, V] {
	return &ReverseIterator[K, V]{m: m, version: m.version}
}

// SeekReverseLowerBound positions the iterator so that the next call to
// Previous returns the largest key lower than or equal to key.
func (ri *ReverseIterator[K, V]) SeekReverseLowerBound(key K) {
	ri.version = ri.m.version
	ri.started = true
	ri.done = false

	root, ok := ri.m.rootRef()
	if !ok {
		ri.done = true
		return
	}
	res := searchTree(ri.m.cmp, root, key)
	if res.found {
		ri.back = res.kv.rightEdge()
		return
	}
	ri.back = res.edge
}

// Previous returns the previous entry in descending order, or false once the
// smallest key has been passed.
func (ri *ReverseIterator[K, V]) Previous() (K, V, bool) {
	var zk K
	var zv V

	if ri.m.version != ri.version {
		assertf("btree: map modified during iteration")
	}
	if ri.done {
		return zk, zv, false
	}
	if !ri.started {
		ri.started = true
		root, ok := ri.m.rootRef()
		if !ok {
			ri.done = true
			return zk, zv, false
		}
		ri.back = lastLeafEdge(root.lastEdge())
	}

	e := ri.back
	for {
		if kv, ok := e.leftKV(); ok {
			ri.back = lastLeafEdge(kv.leftEdge())
			return kv.key(), kv.value(), true
		}
		parent, ok := e.ref.ascend()
		if !ok {
			ri.done = true
			return zk, zv, false
		}
		e = parent
	}
}

// lastLeafEdge follows rightmost children from e down to a leaf edge.
func lastLeafEdge[K any, V any](e edgeHandle[K, V]) edgeHandle[K, V] {
	for {
		f := e.force()
		if f.kind == LeafNode {
			return f.leaf.edgeHandle
		}
		e = f.internal.descend().lastEdge()
	}
}
