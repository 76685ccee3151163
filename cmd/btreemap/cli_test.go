package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	btree "github.com/absolutelightning/go-fallible-btree"
	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func runCli(t *testing.T, tree *btree.Map[string, string], input string) string {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	NewCli(bufio.NewScanner(strings.NewReader(input)), &out, tree).Start()
	return out.String()
}

func TestCli_Commands(t *testing.T) {
	tree := btree.New[string, string]()
	out := runCli(t, tree, strings.Join([]string{
		"SET b 2",
		"SET b 3",
		"MSET c x a 1 c y",
		"GET b",
		"GET zz",
		"MGET c a nope",
		"LEN",
		"bogus",
		"EXIT",
		"SET never reached",
	}, "\n"))

	require.Contains(t, out, `OK (was "2")`)
	require.Contains(t, out, "3\n")
	require.Contains(t, out, "Key not found.")
	require.Contains(t, out, "a: 1\nc: y\nnope: (nil)\n")
	require.Contains(t, out, `Unknown command "bogus"`)
	require.Equal(t, 3, tree.Len())
	_, ok := tree.Get("never")
	require.False(t, ok)
}

func TestCli_BudgetErrors(t *testing.T) {
	tree := btree.New[string, string](btree.WithAllocator(btree.NewBudget(0)))
	out := runCli(t, tree, "SET a 1\nDUMP\n")
	require.Contains(t, out, "node budget of 0 exhausted")
	require.Contains(t, out, "(empty)")
}

func TestCli_Ranges(t *testing.T) {
	tree := btree.New[string, string]()
	out := runCli(t, tree, "MSET a 1 b 2 c 3 d 4\nRANGE b c\nRRANGE cc\n")
	require.Contains(t, out, "b: 2\nc: 3\n> ")
	require.Contains(t, out, "c: 3\nb: 2\na: 1\n> ")
	require.NotContains(t, out, "d: 4")
}

func TestCli_MultiSetIsAllOrNothing(t *testing.T) {
	tree := btree.New[string, string](btree.WithAllocator(btree.NewBudget(1)))
	var pairs []string
	for _, k := range strings.Split("a b c d e f g h i j k l", " ") {
		pairs = append(pairs, k, k)
	}
	out := runCli(t, tree, "MSET "+strings.Join(pairs, " ")+"\nLEN\n")
	require.Contains(t, out, "inserting entry 11")
	require.Contains(t, out, "> 0\n")
	require.Equal(t, 0, tree.Len())
}
