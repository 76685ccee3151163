// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes one line per node to w, children indented below their parent,
// in key order.
func (m *Map[K, V]) Dump(w io.Writer) error {
	defer m.guard.shared()()

	root, ok := m.rootRef()
	if !ok {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}
	return dumpNode(w, root, 0)
}

func dumpNode[K any, V any](w io.Writer, ref nodeRef[K, V], depth int) error {
	pad := strings.Repeat(" ", depth*4)
	f := ref.force()
	if _, err := fmt.Fprintf(w, "%sid -> %d %s len -> %d keys -> %v\n",
		pad, ref.node.id, f.kind, ref.len(), ref.keys()); err != nil {
		return err
	}
	if f.kind == LeafNode {
		return nil
	}
	for i := 0; i <= ref.len(); i++ {
		if err := dumpNode(w, f.internal.child(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}
