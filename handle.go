// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

// edgeHandle addresses the gap at idx in a node: before the entry at idx and
// after the entry at idx-1. On internal nodes the gap is also a child
// pointer.
type edgeHandle[K any, V any] struct {
	ref nodeRef[K, V]
	idx int
}

// kvHandle addresses the existing entry at idx in a node.
type kvHandle[K any, V any] struct {
	ref nodeRef[K, V]
	idx int
}

func newEdge[K any, V any](ref nodeRef[K, V], idx int) edgeHandle[K, V] {
	if idx < 0 || idx > ref.len() {
		assertf("edge index %d out of range [0, %d]", idx, ref.len())
	}
	return edgeHandle[K, V]{ref: ref, idx: idx}
}

func newKV[K any, V any](ref nodeRef[K, V], idx int) kvHandle[K, V] {
	if idx < 0 || idx >= ref.len() {
		assertf("kv index %d out of range [0, %d)", idx, ref.len())
	}
	return kvHandle[K, V]{ref: ref, idx: idx}
}

func (e edgeHandle[K, V]) leftKV() (kvHandle[K, V], bool) {
	if e.idx == 0 {
		return kvHandle[K, V]{}, false
	}
	return kvHandle[K, V]{ref: e.ref, idx: e.idx - 1}, true
}

func (e edgeHandle[K, V]) rightKV() (kvHandle[K, V], bool) {
	if e.idx >= e.ref.len() {
		return kvHandle[K, V]{}, false
	}
	return kvHandle[K, V]{ref: e.ref, idx: e.idx}, true
}

// leafEdge is an edge of a leaf: the insertion point for an absent key.
type leafEdge[K any, V any] struct {
	edgeHandle[K, V]
}

// internalEdge is an edge of an internal node and therefore a child pointer.
type internalEdge[K any, V any] struct {
	edgeHandle[K, V]
}

// descend returns the child this edge points at.
func (e internalEdge[K, V]) descend() nodeRef[K, V] {
	return nodeRef[K, V]{node: e.ref.node.edges[e.idx], height: e.ref.height - 1}
}

type forcedEdge[K any, V any] struct {
	kind     NodeKind
	leaf     leafEdge[K, V]
	internal internalEdge[K, V]
}

// force resolves whether the edge belongs to a leaf or an internal node.
func (e edgeHandle[K, V]) force() forcedEdge[K, V] {
	if e.ref.isLeaf() {
		return forcedEdge[K, V]{kind: LeafNode, leaf: leafEdge[K, V]{e}}
	}
	return forcedEdge[K, V]{kind: InternalNode, internal: internalEdge[K, V]{e}}
}

func (h kvHandle[K, V]) leftEdge() edgeHandle[K, V] {
	return edgeHandle[K, V]{ref: h.ref, idx: h.idx}
}

func (h kvHandle[K, V]) rightEdge() edgeHandle[K, V] {
	return edgeHandle[K, V]{ref: h.ref, idx: h.idx + 1}
}

func (h kvHandle[K, V]) key() K {
	return h.ref.node.keys[h.idx]
}

func (h kvHandle[K, V]) value() V {
	return h.ref.node.vals[h.idx]
}

// replaceValue stores v in the entry and returns the previous value.
func (h kvHandle[K, V]) replaceValue(v V) V {
	old := h.ref.node.vals[h.idx]
	h.ref.node.vals[h.idx] = v
	return old
}
