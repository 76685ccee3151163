// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

import "sync/atomic"

// borrowGuard enforces the handle aliasing rule at runtime: either a single
// exclusive borrow (a mutation in progress) or any number of shared borrows
// (lookups, walks). Shared borrows may be taken from several goroutines at
// once. It catches reentrant misuse such as inserting from a Walk callback
// and a mutation racing a reader; it is not a lock and never waits.
type borrowGuard struct {
	// -1 while exclusively borrowed, otherwise the number of shared borrows.
	state atomic.Int32
}

// exclusive acquires the exclusive borrow and returns its release.
func (g *borrowGuard) exclusive() func() {
	if !g.state.CompareAndSwap(0, -1) {
		assertf("btree: map mutated while %s", describeBorrow(g.state.Load()))
	}
	return func() {
		g.state.Store(0)
	}
}

// shared acquires a shared borrow and returns its release.
func (g *borrowGuard) shared() func() {
	for {
		s := g.state.Load()
		if s < 0 {
			assertf("btree: map read while %s", describeBorrow(s))
		}
		if g.state.CompareAndSwap(s, s+1) {
			break
		}
	}
	return func() {
		g.state.Add(-1)
	}
}

func describeBorrow(state int32) string {
	if state < 0 {
		return "a mutation is in progress"
	}
	return "it is being read"
}
