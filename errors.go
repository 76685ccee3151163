// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

import "github.com/cockroachdb/errors"

// ErrAllocationFailed is returned (wrapped) when the Allocator refuses a node
// needed to complete an insert. Use errors.Is to test for it.
var ErrAllocationFailed = errors.New("btree: node allocation failed")

// assertf panics with an assertion failure. Used for caller contract
// violations that must never be mistaken for recoverable errors.
func assertf(format string, args ...interface{}) {
	panic(errors.AssertionFailedf(format, args...))
}
