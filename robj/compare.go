package robj

import (
	"bytes"
	"math"
)

// Equal reports whether two graphs are structurally equal.
//
// Back-references are equal when their targets are equal, whatever their
// ids. Pairs of nodes already under comparison are assumed equal, so the
// comparison terminates on cyclic environment graphs.
func Equal(a, b *Node) bool {
	eq := &equality{seen: map[[2]*Node]bool{}}
	return eq.nodes(a, b)
}

type equality struct {
	seen map[[2]*Node]bool
}

func (e *equality) nodes(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type == RefType && b.Type == RefType {
		return e.nodes(a.Target, b.Target)
	}
	if a.Type == RefType || b.Type == RefType {
		return false
	}
	if a == b {
		return true
	}
	key := [2]*Node{a, b}
	if e.seen[key] {
		return true
	}
	e.seen[key] = true

	if a.Header != b.Header {
		return false
	}
	if !e.nodes(a.Attributes, b.Attributes) || !e.nodes(a.Tag, b.Tag) {
		return false
	}
	if a.Missing != b.Missing || !bytes.Equal(a.Bytes, b.Bytes) {
		return false
	}
	if !masksEqual(a.NA, b.NA) || !intsEqual(a.Ints, b.Ints) {
		return false
	}
	if !realsEqual(a.Reals, b.Reals) || !complexesEqual(a.Complexes, b.Complexes) {
		return false
	}
	if len(a.Elems) != len(b.Elems) {
		return false
	}
	for i := range a.Elems {
		if !e.nodes(a.Elems[i], b.Elems[i]) {
			return false
		}
	}
	return e.pairs(a.Pairs, b.Pairs) &&
		e.envs(a.Env, b.Env) &&
		e.altreps(a.Altrep, b.Altrep) &&
		e.bytecodes(a.Bytecode, b.Bytecode)
}

func (e *equality) pairs(a, b *Pairlist) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Cells) != len(b.Cells) {
		return false
	}
	for i := range a.Cells {
		ca, cb := &a.Cells[i], &b.Cells[i]
		if ca.Header != cb.Header {
			return false
		}
		if !e.nodes(ca.Attributes, cb.Attributes) || !e.nodes(ca.Tag, cb.Tag) || !e.nodes(ca.Car, cb.Car) {
			return false
		}
	}
	return e.nodes(a.End, b.End)
}

func (e *equality) envs(a, b *Environment) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Locked == b.Locked &&
		e.nodes(a.Enclosure, b.Enclosure) &&
		e.nodes(a.Frame, b.Frame) &&
		e.nodes(a.HashTab, b.HashTab) &&
		e.nodes(a.Attributes, b.Attributes)
}

func (e *equality) altreps(a, b *Altrep) bool {
	if a == nil || b == nil {
		return a == b
	}
	return e.nodes(a.Info, b.Info) && e.nodes(a.State, b.State) && e.nodes(a.Attributes, b.Attributes)
}

func (e *equality) bytecodes(a, b *Bytecode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Reps != b.Reps || !e.nodes(a.Code, b.Code) || len(a.Consts) != len(b.Consts) {
		return false
	}
	for i := range a.Consts {
		ca, cb := &a.Consts[i], &b.Consts[i]
		if ca.Code != cb.Code || !e.nodes(ca.Node, cb.Node) ||
			!e.bytecodes(ca.Bytecode, cb.Bytecode) || !e.langs(ca.Lang, cb.Lang) {
			return false
		}
	}
	return true
}

func (e *equality) langs(a, b *BCLang) bool {
	for a != nil && b != nil {
		if a.Code != b.Code || a.Pos != b.Pos || a.Inner != b.Inner {
			return false
		}
		if !e.nodes(a.Attributes, b.Attributes) || !e.nodes(a.Tag, b.Tag) || !e.nodes(a.Item, b.Item) {
			return false
		}
		if !e.langs(a.Car, b.Car) {
			return false
		}
		a, b = a.Cdr, b.Cdr
	}
	return a == nil && b == nil
}

// masksEqual treats a nil mask like an all false one.
func masksEqual(a, b []bool) bool {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		if (i < len(a) && a[i]) != (i < len(b) && b[i]) {
			return false
		}
	}
	return true
}

func intsEqual(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// realsEqual compares bit patterns so NA, NaN and signed zeros are told
// apart.
func realsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			return false
		}
	}
	return true
}

func complexesEqual(a, b []complex128) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Float64bits(real(a[i])) != math.Float64bits(real(b[i])) ||
			math.Float64bits(imag(a[i])) != math.Float64bits(imag(b[i])) {
			return false
		}
	}
	return true
}
