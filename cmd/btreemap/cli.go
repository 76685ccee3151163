// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	btree "github.com/absolutelightning/go-fallible-btree"
	"github.com/fatih/color"
)

type Cli struct {
	scanner *bufio.Scanner
	out     io.Writer
	tree    *btree.Map[string, string]

	errorf  func(format string, a ...interface{}) string
	okf     func(format string, a ...interface{}) string
	missing func(format string, a ...interface{}) string
}

func NewCli(s *bufio.Scanner, out io.Writer, t *btree.Map[string, string]) *Cli {
	return &Cli{
		scanner: s,
		out:     out,
		tree:    t,
		errorf:  color.New(color.FgRed).SprintfFunc(),
		okf:     color.New(color.FgGreen).SprintfFunc(),
		missing: color.New(color.FgYellow).SprintfFunc(),
	}
}

// Start reads commands until EXIT or end of input.
func (c *Cli) Start() {
	c.printHelp()
	c.printPrompt()
	for c.scanner.Scan() {
		if !c.processInput(c.scanner.Text()) {
			return
		}
		c.printPrompt()
	}
}

func (c *Cli) printHelp() {
	fmt.Fprint(c.out, `
B-Tree map CLI

Available Commands:
  SET <key> <val>             Insert or replace a key
  MSET <key> <val> [...]      Insert many pairs in one sorted batch
  GET <key>                   Look up a key
  MGET <key> [...]            Look up many keys in one sorted batch
  RANGE <from> [<to>]         List keys in [from, to] in ascending order
  RRANGE <from> [<to>]        List keys in [to, from] in descending order
  LEN                         Number of entries
  DUMP                        Print the tree structure
  HELP                        Show this text
  EXIT                        Terminate this session

`)
}

func (c *Cli) printPrompt() {
	fmt.Fprint(c.out, "> ")
}

// processInput runs one command line and reports whether to keep going.
func (c *Cli) processInput(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return true
	}
	command := strings.ToLower(fields[0])
	switch command {
	default:
		fmt.Fprintln(c.out, c.errorf("Unknown command %q", command))
	case "set":
		c.processSetCommand(fields[1:])
	case "mset":
		c.processMultiSetCommand(fields[1:])
	case "get":
		c.processGetCommand(fields[1:])
	case "mget":
		c.processMultiGetCommand(fields[1:])
	case "range":
		c.processRangeCommand(fields[1:])
	case "rrange":
		c.processReverseRangeCommand(fields[1:])
	case "len":
		fmt.Fprintln(c.out, c.tree.Len())
	case "dump":
		if err := c.tree.Dump(c.out); err != nil {
			fmt.Fprintln(c.out, c.errorf("%v", err))
		}
	case "help":
		c.printHelp()
	case "exit":
		return false
	}
	return true
}

func (c *Cli) processSetCommand(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.out, "Usage: SET <key> <value>")
		return
	}
	old, replaced, err := c.tree.Insert(args[0], args[1])
	switch {
	case err != nil:
		fmt.Fprintln(c.out, c.errorf("%v", err))
	case replaced:
		fmt.Fprintln(c.out, c.okf("OK (was %q)", old))
	default:
		fmt.Fprintln(c.out, c.okf("OK"))
	}
}

func (c *Cli) processMultiSetCommand(args []string) {
	if len(args) == 0 || len(args)%2 != 0 {
		fmt.Fprintln(c.out, "Usage: MSET <key> <value> [<key> <value> ...]")
		return
	}
	entries := make([]btree.Entry[string, string], 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		entries = append(entries, btree.Entry[string, string]{Key: args[i], Value: args[i+1]})
	}
	// Stable, so a repeated key keeps its last value.
	slices.SortStableFunc(entries, func(a, b btree.Entry[string, string]) int {
		return strings.Compare(a.Key, b.Key)
	})
	if err := c.tree.InsertMany(entries); err != nil {
		fmt.Fprintln(c.out, c.errorf("%v", err))
		return
	}
	fmt.Fprintln(c.out, c.okf("OK"))
}

func (c *Cli) processGetCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: GET <key>")
		return
	}
	val, ok := c.tree.Get(args[0])
	if !ok {
		fmt.Fprintln(c.out, c.missing("Key not found."))
		return
	}
	fmt.Fprintln(c.out, val)
}

func (c *Cli) processMultiGetCommand(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "Usage: MGET <key> [<key> ...]")
		return
	}
	keys := slices.Clone(args)
	slices.Sort(keys)
	for i, r := range c.tree.GetMany(keys, nil) {
		if r.Found {
			fmt.Fprintf(c.out, "%s: %s\n", keys[i], r.Value)
		} else {
			fmt.Fprintf(c.out, "%s: %s\n", keys[i], c.missing("(nil)"))
		}
	}
}

func (c *Cli) processRangeCommand(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(c.out, "Usage: RANGE <from> [<to>]")
		return
	}
	it := c.tree.Iterator()
	it.SeekLowerBound(args[0])
	for {
		k, v, ok := it.Next()
		if !ok || (len(args) == 2 && k > args[1]) {
			return
		}
		fmt.Fprintf(c.out, "%s: %s\n", k, v)
	}
}

func (c *Cli) processReverseRangeCommand(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(c.out, "Usage: RRANGE <from> [<to>]")
		return
	}
	it := c.tree.ReverseIterator()
	it.SeekReverseLowerBound(args[0])
	for {
		k, v, ok := it.Previous()
		if !ok || (len(args) == 2 && k < args[1]) {
			return
		}
		fmt.Fprintf(c.out, "%s: %s\n", k, v)
	}
}
