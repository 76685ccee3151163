// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package btree

import "go.uber.org/zap"

// DefaultFreeListSize is the number of released nodes of each kind a Map
// keeps around for reuse.
const DefaultFreeListSize = 32

type config struct {
	allocator    Allocator
	logger       *zap.Logger
	freeListSize int
}

// Option configures a Map at construction time.
type Option func(*config)

// WithAllocator sets the allocator that gates every node allocation.
// The default never fails.
func WithAllocator(a Allocator) Option {
	return func(c *config) {
		c.allocator = a
	}
}

// WithLogger sets the logger used for debug-level structural events.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithFreeListSize bounds how many released nodes of each kind are kept for
// reuse. Zero disables recycling.
func WithFreeListSize(size int) Option {
	return func(c *config) {
		c.freeListSize = size
	}
}

func buildConfig(opts []Option) config {
	c := config{
		allocator:    Unlimited(),
		logger:       zap.NewNop(),
		freeListSize: DefaultFreeListSize,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.allocator == nil {
		c.allocator = Unlimited()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.freeListSize < 0 {
		c.freeListSize = 0
	}
	return c
}
