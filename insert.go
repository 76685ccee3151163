// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Insert stores value under key. If key was present its previous value is
// returned with replaced set, and no allocation happens. Otherwise the entry
// is added, splitting full nodes on the way up as needed.
//
// If the Allocator refuses any node the split chain needs, Insert returns an
// error matching ErrAllocationFailed and the map is exactly as it was.
func (m *Map[K, V]) Insert(key K, value V) (old V, replaced bool, err error) {
	defer m.guard.exclusive()()

	root, ok := m.rootRef()
	if !ok {
		return old, false, m.insertIntoEmpty(key, value)
	}
	res := searchTree(m.cmp, root, key)
	if res.found {
		m.version++
		return res.kv.replaceValue(value), true, nil
	}
	_, _, err = m.insertAtLeaf(res.edge, key, value)
	return old, false, err
}

func (m *Map[K, V]) insertIntoEmpty(key K, value V) error {
	leaf, err := m.store.allocate(LeafNode)
	if err != nil {
		m.logAllocFailure(err, LeafNode, 0)
		return errors.Wrap(err, "creating root leaf")
	}
	m.undo.track(leaf, LeafNode)
	leaf.keys[0] = key
	leaf.vals[0] = value
	leaf.len = 1
	m.root = leaf
	m.height = 0
	m.length = 1
	m.version++
	return nil
}

// insertAtLeaf inserts a new entry at a leaf edge. Every node the split chain
// needs is reserved before any existing node is touched, so a refused
// allocation leaves the tree unchanged. It returns the handle of the new
// entry and reports whether any node split.
func (m *Map[K, V]) insertAtLeaf(edge edgeHandle[K, V], key K, value V) (kvHandle[K, V], bool, error) {
	leaf := edge.ref.node

	// Count the run of full nodes from the leaf upward; each one splits.
	// If the run includes the root a new root is needed as well.
	splits := 0
	top := leaf
	for top != nil && top.len == capacity {
		splits++
		top = top.parent
	}
	need := splits
	if top == nil {
		need++
	}

	var reserved [maxDepth + 1]*node[K, V]
	for i := 0; i < need; i++ {
		kind := reservedKind(i)
		n, err := m.store.allocate(kind)
		if err != nil {
			for j := i - 1; j >= 0; j-- {
				m.store.release(reserved[j], reservedKind(j))
			}
			m.logAllocFailure(err, kind, splits)
			return kvHandle[K, V]{}, false, errors.Wrapf(err, "splitting %d nodes at height %d", splits, m.height)
		}
		reserved[i] = n
	}
	if m.undo != nil {
		for i := 0; i < need; i++ {
			m.undo.track(reserved[i], reservedKind(i))
		}
		for n := leaf; ; n = n.parent {
			m.undo.save(n)
			if n == top || n.parent == nil {
				break
			}
		}
	}

	m.length++
	m.version++
	if splits == 0 {
		leaf.insertFit(edge.idx, key, value, nil)
		return kvHandle[K, V]{ref: edge.ref, idx: edge.idx}, false, nil
	}

	// The new entry lands in the first node that does not promote it.
	var pos kvHandle[K, V]
	landed := false
	n, idx := leaf, edge.idx
	var right *node[K, V]
	for level := 0; level < splits; level++ {
		sib := reserved[level]
		if !landed {
			switch {
			case idx < splitMid:
				pos, landed = kvHandle[K, V]{ref: nodeRef[K, V]{node: n, height: level}, idx: idx}, true
			case idx > splitMid:
				pos, landed = kvHandle[K, V]{ref: nodeRef[K, V]{node: sib, height: level}, idx: idx - splitMid - 1}, true
			}
		}
		key, value = n.splitInsert(idx, key, value, right, sib)
		right = sib
		if n.parent == nil {
			m.growRoot(reserved[splits], key, value, right)
			if !landed {
				pos = kvHandle[K, V]{ref: nodeRef[K, V]{node: m.root, height: m.height}, idx: 0}
			}
			return pos, true, nil
		}
		idx = int(n.parentIdx)
		n = n.parent
	}
	n.insertFit(idx, key, value, right)
	if !landed {
		pos = kvHandle[K, V]{ref: nodeRef[K, V]{node: n, height: splits}, idx: idx}
	}
	return pos, true, nil
}

// reservedKind is the kind of the i-th node reserved for a split chain: the
// leaf's sibling first, then internal siblings and possibly a new root.
func reservedKind(i int) NodeKind {
	if i == 0 {
		return LeafNode
	}
	return InternalNode
}

// growRoot installs newRoot above the split old root, holding the promoted
// entry between the two halves.
func (m *Map[K, V]) growRoot(newRoot *node[K, V], key K, value V, right *node[K, V]) {
	newRoot.keys[0] = key
	newRoot.vals[0] = value
	newRoot.len = 1
	newRoot.edges[0] = m.root
	newRoot.edges[1] = right
	newRoot.correctChildLinks(0, 1)
	m.root = newRoot
	m.height++
	if ce := m.logger.Check(zap.DebugLevel, "root split"); ce != nil {
		ce.Write(zap.Int("height", m.height), zap.Int("len", m.length))
	}
}

// insertFit inserts an entry at idx into a node with room for it. For
// internal nodes right is the new child to the right of the entry.
func (n *node[K, V]) insertFit(idx int, key K, value V, right *node[K, V]) {
	l := int(n.len)
	if l >= capacity {
		assertf("insertFit into full node %d", n.id)
	}
	copy(n.keys[idx+1:l+1], n.keys[idx:l])
	copy(n.vals[idx+1:l+1], n.vals[idx:l])
	n.keys[idx] = key
	n.vals[idx] = value
	n.len = uint16(l + 1)
	if right != nil {
		copy(n.edges[idx+2:l+2], n.edges[idx+1:l+1])
		n.edges[idx+1] = right
		n.correctChildLinks(idx+1, l+1)
	}
}

// splitInsert inserts an entry into the full node n by splitting it into n
// and the empty node sib. The virtual node of capacity+1 entries is divided
// at splitMid: the entries before it stay in n, the entries after it move to
// sib, and the entry at splitMid is returned for the parent.
func (n *node[K, V]) splitInsert(idx int, key K, value V, right, sib *node[K, V]) (K, V) {
	var pk K
	var pv V
	switch {
	case idx < splitMid:
		n.moveTail(sib, splitMid, splitMid, 0)
		pk, pv = n.popLast()
		n.insertFit(idx, key, value, right)
	case idx == splitMid:
		n.moveTail(sib, splitMid, splitMid+1, 1)
		if right != nil {
			sib.edges[0] = right
		}
		pk, pv = key, value
	default:
		n.moveTail(sib, splitMid+1, splitMid+1, 0)
		pk, pv = n.popLast()
		sib.insertFit(idx-splitMid-1, key, value, right)
	}
	if sib.edges != nil {
		sib.correctChildLinks(0, int(sib.len))
	}
	return pk, pv
}

// moveTail moves entries [from, len) into the empty node sib. On internal
// nodes edges [edgeFrom, len] move to sib starting at edgeDst.
func (n *node[K, V]) moveTail(sib *node[K, V], from, edgeFrom, edgeDst int) {
	l := int(n.len)
	cnt := l - from
	copy(sib.keys[:cnt], n.keys[from:l])
	copy(sib.vals[:cnt], n.vals[from:l])
	clear(n.keys[from:l])
	clear(n.vals[from:l])
	if n.edges != nil {
		copy(sib.edges[edgeDst:], n.edges[edgeFrom:l+1])
		clear(n.edges[edgeFrom : l+1])
	}
	sib.len = uint16(cnt)
	n.len = uint16(from)
}

// popLast removes and returns the last entry; on internal nodes the edge to
// its right must already have been moved away.
func (n *node[K, V]) popLast() (K, V) {
	i := int(n.len) - 1
	k, v := n.keys[i], n.vals[i]
	var zk K
	var zv V
	n.keys[i], n.vals[i] = zk, zv
	n.len--
	return k, v
}

func (m *Map[K, V]) logAllocFailure(err error, kind NodeKind, splits int) {
	if ce := m.logger.Check(zap.DebugLevel, "node allocation failed"); ce != nil {
		ce.Write(zap.Error(err), zap.Stringer("kind", kind),
			zap.Int("splits", splits), zap.Int("height", m.height))
	}
}
