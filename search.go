// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

// searchResult is either found, addressing the matching entry, or not found,
// addressing the edge to go down (or, at a leaf, to insert at).
type searchResult[K any, V any] struct {
	found bool
	kv    kvHandle[K, V]
	edge  edgeHandle[K, V]
}

// searchLinearAt scans the keys of a node from start upward. It returns the
// index of the first key not less than key and whether that key is equal.
// A linear scan beats binary search at this node size.
func searchLinearAt[K any](cmp func(a, b K) int, keys []K, key K, start int) (int, bool) {
	for i := start; i < len(keys); i++ {
		switch c := cmp(key, keys[i]); {
		case c == 0:
			return i, true
		case c < 0:
			return i, false
		}
	}
	return len(keys), false
}

func searchNode[K any, V any](cmp func(a, b K) int, ref nodeRef[K, V], key K) searchResult[K, V] {
	return searchNodeAt(cmp, ref.firstEdge(), key)
}

// searchNodeAt resumes a node scan at the given edge. The caller guarantees
// that key is not less than the key left of the edge.
func searchNodeAt[K any, V any](cmp func(a, b K) int, from edgeHandle[K, V], key K) searchResult[K, V] {
	idx, found := searchLinearAt(cmp, from.ref.keys(), key, from.idx)
	if found {
		return searchResult[K, V]{found: true, kv: newKV(from.ref, idx)}
	}
	return searchResult[K, V]{edge: newEdge(from.ref, idx)}
}

// searchTree descends from root until key is found or a leaf edge is
// reached; that edge is where key would be inserted.
func searchTree[K any, V any](cmp func(a, b K) int, root nodeRef[K, V], key K) searchResult[K, V] {
	ref := root
	for {
		res := searchNode(cmp, ref, key)
		if res.found {
			return res
		}
		switch f := res.edge.force(); f.kind {
		case LeafNode:
			return searchResult[K, V]{edge: f.leaf.edgeHandle}
		case InternalNode:
			ref = f.internal.descend()
		}
	}
}
