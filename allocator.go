// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

import "github.com/cockroachdb/errors"

// NodeKind tells an Allocator which shape of node is being requested.
// Internal nodes carry a child array and are larger than leaves.
type NodeKind uint8

const (
	LeafNode NodeKind = iota
	InternalNode
)

func (k NodeKind) String() string {
	switch k {
	case LeafNode:
		return "leaf"
	case InternalNode:
		return "internal"
	default:
		return "unknown"
	}
}

// Allocator is the node allocation collaborator of a Map. Allocate is called
// before a node is created and may refuse by returning an error; Release is
// called once for every node that was successfully allocated and is no longer
// part of the tree.
type Allocator interface {
	Allocate(kind NodeKind) error
	Release(kind NodeKind)
}

type unlimited struct{}

func (unlimited) Allocate(NodeKind) error { return nil }
func (unlimited) Release(NodeKind)        {}

// Unlimited returns an Allocator that never refuses.
func Unlimited() Allocator {
	return unlimited{}
}

// AllocatorFunc adapts a function to the Allocator interface. Release is a
// no-op.
type AllocatorFunc func(kind NodeKind) error

func (f AllocatorFunc) Allocate(kind NodeKind) error { return f(kind) }
func (f AllocatorFunc) Release(NodeKind)             {}

// Budget is an Allocator that caps the number of live nodes. It can be shared
// by several maps to cap them together, but like the maps themselves it is
// not safe for concurrent use.
type Budget struct {
	max  int
	live int
}

// NewBudget returns a Budget admitting at most maxNodes live nodes.
func NewBudget(maxNodes int) *Budget {
	return &Budget{max: maxNodes}
}

func (b *Budget) Allocate(kind NodeKind) error {
	if b.live >= b.max {
		return errors.Newf("node budget of %d exhausted", b.max)
	}
	b.live++
	return nil
}

func (b *Budget) Release(kind NodeKind) {
	if b.live == 0 {
		assertf("budget released more nodes than it allocated")
	}
	b.live--
}

// Live returns the number of nodes currently charged to the budget.
func (b *Budget) Live() int {
	return b.live
}

// Max returns the configured cap.
func (b *Budget) Max() int {
	return b.max
}

// Grow raises the cap by n nodes.
func (b *Budget) Grow(n int) {
	b.max += n
}
