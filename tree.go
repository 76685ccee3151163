// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package btree implements an in-memory ordered map on a B-tree whose node
// allocations may fail. A refused allocation is reported as an error and
// leaves the map untouched. Sorted batches of inserts and lookups reuse the
// position of the previous key instead of descending from the root each time.
//
// A Map is safe for concurrent readers, not for concurrent mutation: Get,
// GetMany, Walk, Check and Dump may run together, but nothing may run
// alongside Insert, InsertMany or Clear.
package btree

import (
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
)

// Map is an ordered map from K to V.
type Map[K any, V any] struct {
	root   *node[K, V]
	height int
	length int

	cmp    func(a, b K) int
	store  *nodeStore[K, V]
	logger *zap.Logger

	guard borrowGuard
	// undo is set while InsertMany runs.
	undo *batchUndo[K, V]
	// version changes on every mutation; iterators use it to fail fast.
	version uint64
}

// WalkFn is used when walking the map. Takes a key and value, returning if
// iteration should be terminated.
type WalkFn[K any, V any] func(k K, v V) bool

// New returns an empty map ordered by the natural order of K.
func New[K constraints.Ordered, V any](opts ...Option) *Map[K, V] {
	return NewFunc[K, V](defaultCompare[K], opts...)
}

// NewFunc returns an empty map ordered by cmp, which must return a negative
// number, zero or a positive number as a is less than, equal to or greater
// than b, and must define a total order.
func NewFunc[K any, V any](cmp func(a, b K) int, opts ...Option) *Map[K, V] {
	c := buildConfig(opts)
	return &Map[K, V]{
		cmp:    cmp,
		store:  newNodeStore[K, V](c.allocator, c.freeListSize),
		logger: c.logger,
	}
}

func defaultCompare[K constraints.Ordered](a, b K) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Len is used to return the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.length
}

// Height returns the number of edges between the root and the leaves. It is
// 0 for an empty map and for a map whose root is a leaf.
func (m *Map[K, V]) Height() int {
	return m.height
}

func (m *Map[K, V]) rootRef() (nodeRef[K, V], bool) {
	if m.root == nil {
		return nodeRef[K, V]{}, false
	}
	return nodeRef[K, V]{node: m.root, height: m.height}, true
}

// Get returns the value stored under key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	defer m.guard.shared()()

	var zero V
	root, ok := m.rootRef()
	if !ok {
		return zero, false
	}
	res := searchTree(m.cmp, root, key)
	if !res.found {
		return zero, false
	}
	return res.kv.value(), true
}

// Minimum returns the smallest key and its value.
func (m *Map[K, V]) Minimum() (K, V, bool) {
	return m.extreme(func(r nodeRef[K, V]) edgeHandle[K, V] { return r.firstEdge() },
		func(e edgeHandle[K, V]) (kvHandle[K, V], bool) { return e.rightKV() })
}

// Maximum returns the largest key and its value.
func (m *Map[K, V]) Maximum() (K, V, bool) {
	return m.extreme(func(r nodeRef[K, V]) edgeHandle[K, V] { return r.lastEdge() },
		func(e edgeHandle[K, V]) (kvHandle[K, V], bool) { return e.leftKV() })
}

func (m *Map[K, V]) extreme(pick func(nodeRef[K, V]) edgeHandle[K, V],
	kv func(edgeHandle[K, V]) (kvHandle[K, V], bool)) (K, V, bool) {
	defer m.guard.shared()()

	var zk K
	var zv V
	ref, ok := m.rootRef()
	if !ok {
		return zk, zv, false
	}
	for {
		e := pick(ref)
		f := e.force()
		if f.kind == LeafNode {
			h, ok := kv(e)
			if !ok {
				return zk, zv, false
			}
			return h.key(), h.value(), true
		}
		ref = f.internal.descend()
	}
}

// Walk is used to walk the map in ascending key order. The map must not be
// modified from fn.
func (m *Map[K, V]) Walk(fn WalkFn[K, V]) {
	defer m.guard.shared()()

	it := m.Iterator()
	for {
		k, v, ok := it.Next()
		if !ok || fn(k, v) {
			return
		}
	}
}

// Clear removes every entry, releasing all nodes to the Allocator.
func (m *Map[K, V]) Clear() {
	defer m.guard.exclusive()()

	root, ok := m.rootRef()
	if !ok {
		return
	}
	released := m.releaseSubtree(root)
	m.root = nil
	m.height = 0
	m.length = 0
	m.version++
	if ce := m.logger.Check(zap.DebugLevel, "map cleared"); ce != nil {
		ce.Write(zap.Int("nodes", released))
	}
}

func (m *Map[K, V]) releaseSubtree(ref nodeRef[K, V]) int {
	f := ref.force()
	if f.kind == LeafNode {
		m.store.release(ref.node, LeafNode)
		return 1
	}
	released := 0
	for i := 0; i <= ref.len(); i++ {
		released += m.releaseSubtree(f.internal.child(i))
	}
	m.store.release(ref.node, InternalNode)
	return released + 1
}
