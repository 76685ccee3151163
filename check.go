// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

import "github.com/cockroachdb/errors"

// Check verifies the structure of the whole tree: node fill, key order
// within and across nodes, uniform leaf depth, parent links, the entry count
// and the node count charged to the store. It is meant for tests and
// debugging, and visits every node.
func (m *Map[K, V]) Check() error {
	defer m.guard.shared()()

	root, ok := m.rootRef()
	if !ok {
		if m.length != 0 || m.height != 0 {
			return errors.Newf("empty tree with len %d height %d", m.length, m.height)
		}
		if m.store.live != 0 {
			return errors.Newf("empty tree holds %d live nodes", m.store.live)
		}
		return nil
	}
	if root.node.parent != nil {
		return errors.Newf("root %d has a parent", root.node.id)
	}
	if root.len() == 0 {
		return errors.Newf("root %d is empty", root.node.id)
	}
	var st checkState
	if err := m.checkNode(root, nil, nil, &st); err != nil {
		return err
	}
	if st.entries != m.length {
		return errors.Newf("tree holds %d entries, len is %d", st.entries, m.length)
	}
	if st.nodes != m.store.live {
		return errors.Newf("tree holds %d nodes, store has %d live", st.nodes, m.store.live)
	}
	return nil
}

type checkState struct {
	entries int
	nodes   int
}

func (m *Map[K, V]) checkNode(ref nodeRef[K, V], lo, hi *K, st *checkState) error {
	n := ref.node
	st.nodes++
	st.entries += ref.len()
	if ref.len() > capacity {
		return errors.Newf("node %d has %d entries", n.id, ref.len())
	}
	if n != m.root && ref.len() < minLen {
		return errors.Newf("node %d underfull: %d entries", n.id, ref.len())
	}
	keys := ref.keys()
	for i, k := range keys {
		if i > 0 && m.cmp(keys[i-1], k) >= 0 {
			return errors.Newf("node %d keys out of order at %d", n.id, i)
		}
		if lo != nil && m.cmp(*lo, k) >= 0 {
			return errors.Newf("node %d key %d not above its lower separator", n.id, i)
		}
		if hi != nil && m.cmp(k, *hi) >= 0 {
			return errors.Newf("node %d key %d not below its upper separator", n.id, i)
		}
	}

	f := ref.force()
	if f.kind == LeafNode {
		if n.edges != nil {
			return errors.Newf("leaf %d carries edges", n.id)
		}
		return nil
	}
	if n.edges == nil {
		return errors.Newf("internal node %d has no edges", n.id)
	}
	for i := 0; i <= ref.len(); i++ {
		child := f.internal.child(i)
		if child.node == nil {
			return errors.Newf("internal node %d missing child %d", n.id, i)
		}
		if child.node.parent != n || int(child.node.parentIdx) != i {
			return errors.Newf("child %d of node %d has a stale parent link", i, n.id)
		}
		clo, chi := lo, hi
		if i > 0 {
			clo = &keys[i-1]
		}
		if i < ref.len() {
			chi = &keys[i]
		}
		if err := m.checkNode(child, clo, chi, st); err != nil {
			return errors.Wrapf(err, "under node %d", n.id)
		}
	}
	for i := ref.len() + 1; i <= capacity; i++ {
		if n.edges[i] != nil {
			return errors.Newf("node %d holds a stray edge at %d", n.id, i)
		}
	}
	return nil
}
