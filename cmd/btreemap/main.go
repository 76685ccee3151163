// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"bufio"
	"flag"
	"os"

	btree "github.com/absolutelightning/go-fallible-btree"
	"go.uber.org/zap"
)

func main() {
	budget := flag.Int("budget", 0, "maximum number of tree nodes (0 means unlimited)")
	debug := flag.Bool("debug", false, "log structural events to stderr")
	flag.Parse()

	opts := []btree.Option{}
	if *budget > 0 {
		opts = append(opts, btree.WithAllocator(btree.NewBudget(*budget)))
	}
	if *debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		defer logger.Sync()
		opts = append(opts, btree.WithLogger(logger))
	}

	tree := btree.New[string, string](opts...)
	demo := NewCli(bufio.NewScanner(os.Stdin), os.Stdout, tree)
	demo.Start()
}
