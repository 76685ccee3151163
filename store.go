// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

import (
	"github.com/cockroachdb/errors"
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// nodeStore owns node lifetimes for one Map. Every allocation goes through
// the Allocator first; released nodes are reset and parked on a bounded
// per-kind free list, oldest reused first, overflow left to the collector.
type nodeStore[K any, V any] struct {
	alloc  Allocator
	free   [2]*simplelru.LRU[uint64, *node[K, V]]
	nextID uint64
	live   int
}

func newNodeStore[K any, V any](alloc Allocator, freeListSize int) *nodeStore[K, V] {
	s := &nodeStore[K, V]{alloc: alloc}
	if freeListSize > 0 {
		for kind := range s.free {
			l, err := simplelru.NewLRU[uint64, *node[K, V]](freeListSize, nil)
			if err != nil {
				panic(errors.Wrap(err, "creating node free list"))
			}
			s.free[kind] = l
		}
	}
	return s
}

// allocate returns an empty node of the given kind, or an error marked with
// ErrAllocationFailed if the Allocator refused.
func (s *nodeStore[K, V]) allocate(kind NodeKind) (*node[K, V], error) {
	if err := s.alloc.Allocate(kind); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "allocating %s node", kind), ErrAllocationFailed)
	}
	s.live++
	if l := s.free[kind]; l != nil {
		if _, n, ok := l.RemoveOldest(); ok {
			return n, nil
		}
	}
	s.nextID++
	n := &node[K, V]{id: s.nextID}
	if kind == InternalNode {
		n.edges = new([capacity + 1]*node[K, V])
	}
	return n, nil
}

// release hands a node that is no longer reachable from the tree back to the
// Allocator.
func (s *nodeStore[K, V]) release(n *node[K, V], kind NodeKind) {
	n.reset()
	s.live--
	s.alloc.Release(kind)
	if l := s.free[kind]; l != nil {
		l.Add(n.id, n)
	}
}

// recycled reports how many released nodes of a kind are parked for reuse.
func (s *nodeStore[K, V]) recycled(kind NodeKind) int {
	if l := s.free[kind]; l != nil {
		return l.Len()
	}
	return 0
}
