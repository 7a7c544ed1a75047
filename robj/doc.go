// Package robj provides the object model for serialized R values.
//
// # Overview
//
// Every value in an R serialization stream is a node: a flag word (the
// Header) followed by a type specific payload. The Node type mirrors that
// layout, so a graph read from a stream can be written back byte for byte.
//
// # Node Structure
//
// Nodes are a tagged union keyed by Header.Type. Atomic vectors keep their
// values in Ints, Reals, Complexes or Bytes together with a missing value
// mask in NA; consumers test NA rather than comparing against R's sentinel
// bit patterns. Character vectors hold CHARSXP nodes in Elems, each
// carrying its declared encoding in the GP bits.
//
// Cons chains (pairlists, calls, closures, promises) are flattened into a
// Pairlist of Cells. A chain stays one Pairlist as long as each cdr is
// itself a cons cell, which keeps long argument and attribute lists
// iterative.
//
// # References
//
// Symbols, environments, external pointers, weak references and the
// persistent, package and namespace placeholders are entered in a
// reference table the first time they are written. Later occurrences are
// RefType nodes whose Target points at the first one. Targets are not
// owned: environments may reach themselves through their frames, so code
// walking a graph must not follow Target blindly. Walk and Equal handle
// cycles.
//
// # Creating Nodes
//
//	v := robj.Ints([]int32{1, 0, 3}, []bool{false, true, false})
//	df, err := robj.WithAttributes(robj.List(v), robj.TaggedList(
//	    robj.KeyVal{Key: "names", Val: robj.Strings("x")},
//	    robj.KeyVal{Key: "class", Val: robj.Strings("data.frame")},
//	))
//
// Build validates hand assembled nodes and derives the header flags that
// follow from their fields.
//
// # Text
//
// CHARSXP bytes are decoded with Node.Text, which honors the UTF-8,
// LATIN1, BYTES and ASCII flags and falls back to the stream's native
// encoding label.
package robj
