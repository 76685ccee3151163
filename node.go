// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

const (
	branchFactor = 6

	// capacity is the maximum number of entries in a node.
	capacity = 2*branchFactor - 1

	// minLen is the minimum number of entries in a non-root node.
	minLen = (capacity+1)/2 - 1

	// splitMid is the index of the promoted entry within the virtual
	// capacity+1 entry node formed by inserting into a full node.
	splitMid = branchFactor

	// maxDepth bounds the height of any tree whose length fits in a uint64:
	// every non-root internal node has at least minLen+1 children.
	maxDepth = 32
)

// node is the storage of a single tree node. Leaves and internal nodes share
// this layout; edges is only allocated for internal nodes, and a node's kind
// is decided by the height it is reached at, never by inspecting edges.
type node[K any, V any] struct {
	id        uint64
	parent    *node[K, V]
	parentIdx uint16
	len       uint16
	keys      [capacity]K
	vals      [capacity]V
	edges     *[capacity + 1]*node[K, V]
}

// nodeRef is a borrowed reference to a node together with its height above
// the leaves. Height 0 means leaf.
type nodeRef[K any, V any] struct {
	node   *node[K, V]
	height int
}

func (r nodeRef[K, V]) len() int {
	return int(r.node.len)
}

func (r nodeRef[K, V]) keys() []K {
	return r.node.keys[:r.node.len]
}

func (r nodeRef[K, V]) isLeaf() bool {
	return r.height == 0
}

func (r nodeRef[K, V]) firstEdge() edgeHandle[K, V] {
	return edgeHandle[K, V]{ref: r, idx: 0}
}

func (r nodeRef[K, V]) lastEdge() edgeHandle[K, V] {
	return edgeHandle[K, V]{ref: r, idx: r.len()}
}

// ascend returns the edge in the parent that points at this node, or false
// for the root.
func (r nodeRef[K, V]) ascend() (edgeHandle[K, V], bool) {
	p := r.node.parent
	if p == nil {
		return edgeHandle[K, V]{}, false
	}
	return edgeHandle[K, V]{
		ref: nodeRef[K, V]{node: p, height: r.height + 1},
		idx: int(r.node.parentIdx),
	}, true
}

// force classifies the node as a leaf or internal node.
func (r nodeRef[K, V]) force() forcedNode[K, V] {
	if r.height == 0 {
		return forcedNode[K, V]{kind: LeafNode, leaf: leafRef[K, V]{r}}
	}
	return forcedNode[K, V]{kind: InternalNode, internal: internalRef[K, V]{r}}
}

// leafRef is a node known to be a leaf.
type leafRef[K any, V any] struct {
	nodeRef[K, V]
}

// internalRef is a node known to be internal; only it can reach children.
type internalRef[K any, V any] struct {
	nodeRef[K, V]
}

func (r internalRef[K, V]) child(idx int) nodeRef[K, V] {
	if idx < 0 || idx > r.len() {
		assertf("child index %d out of range [0, %d]", idx, r.len())
	}
	return nodeRef[K, V]{node: r.node.edges[idx], height: r.height - 1}
}

type forcedNode[K any, V any] struct {
	kind     NodeKind
	leaf     leafRef[K, V]
	internal internalRef[K, V]
}

// correctChildLinks rewrites the parent back-links of children [from, to].
func (n *node[K, V]) correctChildLinks(from, to int) {
	for i := from; i <= to; i++ {
		c := n.edges[i]
		c.parent = n
		c.parentIdx = uint16(i)
	}
}

// reset clears a node so that it holds no references before being recycled.
func (n *node[K, V]) reset() {
	n.keys = [capacity]K{}
	n.vals = [capacity]V{}
	if n.edges != nil {
		*n.edges = [capacity + 1]*node[K, V]{}
	}
	n.parent = nil
	n.parentIdx = 0
	n.len = 0
}
