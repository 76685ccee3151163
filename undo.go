// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

import "go.uber.org/zap"

// nodeImage is a copy of a node taken before a batch first modifies it.
type nodeImage[K any, V any] struct {
	keys      [capacity]K
	vals      [capacity]V
	edges     [capacity + 1]*node[K, V]
	parent    *node[K, V]
	parentIdx uint16
	len       uint16
}

type createdNode[K any, V any] struct {
	n    *node[K, V]
	kind NodeKind
}

// batchUndo records what an InsertMany call changed so that a refused
// allocation can put the map back the way the call found it. Nodes the batch
// allocated are never imaged; rolling back releases them instead.
//
// All methods are no-ops on a nil receiver, which is what Insert runs with.
type batchUndo[K any, V any] struct {
	root   *node[K, V]
	height int
	length int

	images  map[*node[K, V]]*nodeImage[K, V]
	created []createdNode[K, V]
	fresh   map[*node[K, V]]struct{}
}

func (m *Map[K, V]) beginBatch() *batchUndo[K, V] {
	u := &batchUndo[K, V]{root: m.root, height: m.height, length: m.length}
	m.undo = u
	return u
}

// save images n the first time the batch is about to modify it.
func (u *batchUndo[K, V]) save(n *node[K, V]) {
	if u == nil {
		return
	}
	if _, ok := u.fresh[n]; ok {
		return
	}
	if _, ok := u.images[n]; ok {
		return
	}
	if u.images == nil {
		u.images = make(map[*node[K, V]]*nodeImage[K, V])
	}
	img := &nodeImage[K, V]{
		keys:      n.keys,
		vals:      n.vals,
		parent:    n.parent,
		parentIdx: n.parentIdx,
		len:       n.len,
	}
	if n.edges != nil {
		img.edges = *n.edges
	}
	u.images[n] = img
}

// track records a node allocated by the batch.
func (u *batchUndo[K, V]) track(n *node[K, V], kind NodeKind) {
	if u == nil {
		return
	}
	if u.fresh == nil {
		u.fresh = make(map[*node[K, V]]struct{})
	}
	u.fresh[n] = struct{}{}
	u.created = append(u.created, createdNode[K, V]{n: n, kind: kind})
}

// rollback restores every imaged node, releases every node the batch
// allocated and puts back the root, height and length.
func (m *Map[K, V]) rollback(u *batchUndo[K, V]) {
	for n, img := range u.images {
		n.keys = img.keys
		n.vals = img.vals
		n.parent = img.parent
		n.parentIdx = img.parentIdx
		n.len = img.len
		if n.edges != nil {
			*n.edges = img.edges
		}
	}
	// Children moved by a split still point at their new parent.
	for n := range u.images {
		if n.edges != nil {
			n.correctChildLinks(0, int(n.len))
		}
	}
	for i := len(u.created) - 1; i >= 0; i-- {
		m.store.release(u.created[i].n, u.created[i].kind)
	}
	m.root = u.root
	m.height = u.height
	m.length = u.length
	m.version++

	if ce := m.logger.Check(zap.DebugLevel, "batch rolled back"); ce != nil {
		ce.Write(zap.Int("restored", len(u.images)), zap.Int("released", len(u.created)))
	}
}
