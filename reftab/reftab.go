// Package reftab implements the reference table of one serialization
// session.
//
// Symbols, environments and the other referencable nodes are entered the
// first time they are seen; later occurrences are written as
// back-references to their 1-based index. Index 0 never names an entry.
// The reader and the writer number entries in traversal order, so a graph
// read from a stream and written again reproduces the same indices.
package reftab

import (
	"fmt"

	"github.com/signadot/go-rdata/robj"
)

// ReadTable maps indices to the nodes read so far.
type ReadTable struct {
	nodes []*robj.Node
}

// Add enters n and returns its index.
func (t *ReadTable) Add(n *robj.Node) int {
	t.nodes = append(t.nodes, n)
	return len(t.nodes)
}

// Get returns the node at index id. An index that was never entered is a
// corrupt stream.
func (t *ReadTable) Get(id int) (*robj.Node, error) {
	if id <= 0 || id > len(t.nodes) {
		return nil, fmt.Errorf("%w: unresolved reference %d (table holds %d)", robj.ErrFormat, id, len(t.nodes))
	}
	return t.nodes[id-1], nil
}

// Len returns the number of entries.
func (t *ReadTable) Len() int {
	return len(t.nodes)
}

// WriteTable assigns indices while writing. Symbols are keyed by print
// name, every other referencable node by identity.
type WriteTable struct {
	symbols map[string]int
	nodes   map[*robj.Node]int
	n       int
}

// NewWriteTable returns an empty table.
func NewWriteTable() *WriteTable {
	return &WriteTable{
		symbols: map[string]int{},
		nodes:   map[*robj.Node]int{},
	}
}

// Lookup returns the index of n, or 0 when n has not been entered.
// Back-references are looked up through their target.
func (t *WriteTable) Lookup(n *robj.Node) int {
	n = n.Resolve()
	if name, ok := symbolKey(n); ok {
		return t.symbols[name]
	}
	return t.nodes[n]
}

// Intern returns the index of n, entering it first if needed. The boolean
// reports whether n was already present.
func (t *WriteTable) Intern(n *robj.Node) (int, bool) {
	if id := t.Lookup(n); id != 0 {
		return id, true
	}
	n = n.Resolve()
	t.n++
	if name, ok := symbolKey(n); ok {
		t.symbols[name] = t.n
	} else {
		t.nodes[n] = t.n
	}
	return t.n, false
}

// Len returns the number of entries.
func (t *WriteTable) Len() int {
	return t.n
}

func symbolKey(n *robj.Node) (string, bool) {
	if n == nil || n.Type != robj.SymType {
		return "", false
	}
	return n.SymbolName()
}
