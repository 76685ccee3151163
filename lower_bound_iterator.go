// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

// SeekLowerBound positions the iterator so that the next call to Next
// returns the smallest key greater than or equal to key. Seeking also
// re-synchronizes an iterator with a map that was modified since it was
// created.
func (i *Iterator[K, V]) SeekLowerBound(key K) {
	i.version = i.m.version
	i.started = true
	i.done = false

	root, ok := i.m.rootRef()
	if !ok {
		i.done = true
		return
	}
	res := searchTree(i.m.cmp, root, key)
	if res.found {
		// The entries left of this edge in its child subtree are all
		// smaller than key, so starting on an internal edge is fine.
		i.front = res.kv.leftEdge()
		return
	}
	i.front = res.edge
}
