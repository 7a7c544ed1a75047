package robj

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/blake3"
)

// Fingerprint returns a blake3 digest of the graph under n. A node reached a
// second time, directly or through a back-reference, contributes its first
// visit ordinal, so the digest terminates on cycles and captures sharing but
// not reference numbering.
func Fingerprint(n *Node) [32]byte {
	f := &fingerprint{h: blake3.New(), seen: map[*Node]uint64{}}
	f.node(n)
	var res [32]byte
	copy(res[:], f.h.Sum(nil))
	return res
}

type fingerprint struct {
	h    *blake3.Hasher
	seen map[*Node]uint64
	buf  [8]byte
}

func (f *fingerprint) u64(v uint64) {
	binary.BigEndian.PutUint64(f.buf[:], v)
	f.h.Write(f.buf[:])
}

func (f *fingerprint) node(n *Node) {
	if n == nil {
		f.h.Write([]byte{0})
		return
	}
	if n.Type == RefType {
		n = n.Resolve()
		if n == nil || n.Type == RefType {
			f.h.Write([]byte{0})
			return
		}
	}
	if ord, ok := f.seen[n]; ok {
		f.h.Write([]byte{2})
		f.u64(ord)
		return
	}
	f.seen[n] = uint64(len(f.seen))
	f.h.Write([]byte{1})
	f.u64(uint64(uint32(n.Header.Flags())))
	if n.Missing {
		f.h.Write([]byte{1})
	}
	f.u64(uint64(len(n.Bytes)))
	f.h.Write(n.Bytes)
	f.u64(uint64(len(n.Ints)))
	for i, x := range n.Ints {
		if n.IsNA(i) {
			x = NAInteger
		}
		f.u64(uint64(uint32(x)))
	}
	f.u64(uint64(len(n.Reals)))
	for _, x := range n.Reals {
		f.u64(math.Float64bits(x))
	}
	f.u64(uint64(len(n.Complexes)))
	for _, x := range n.Complexes {
		f.u64(math.Float64bits(real(x)))
		f.u64(math.Float64bits(imag(x)))
	}
	f.node(n.Attributes)
	f.node(n.Tag)
	f.u64(uint64(len(n.Elems)))
	for _, e := range n.Elems {
		f.node(e)
	}
	if p := n.Pairs; p != nil {
		f.u64(uint64(len(p.Cells)))
		for i := range p.Cells {
			f.u64(uint64(uint32(p.Cells[i].Flags())))
			f.node(p.Cells[i].Attributes)
			f.node(p.Cells[i].Tag)
			f.node(p.Cells[i].Car)
		}
		f.node(p.End)
	}
	if e := n.Env; e != nil {
		f.u64(uint64(uint32(e.Locked)))
		f.node(e.Enclosure)
		f.node(e.Frame)
		f.node(e.HashTab)
		f.node(e.Attributes)
	}
	if a := n.Altrep; a != nil {
		f.node(a.Info)
		f.node(a.State)
		f.node(a.Attributes)
	}
	if b := n.Bytecode; b != nil {
		f.bytecode(b)
	}
}

func (f *fingerprint) bytecode(b *Bytecode) {
	f.u64(uint64(uint32(b.Reps)))
	f.node(b.Code)
	f.u64(uint64(len(b.Consts)))
	for i := range b.Consts {
		c := &b.Consts[i]
		f.u64(uint64(uint32(c.Code)))
		switch {
		case c.Bytecode != nil:
			f.bytecode(c.Bytecode)
		case c.Lang != nil:
			f.lang(c.Lang)
		default:
			f.node(c.Node)
		}
	}
}

func (f *fingerprint) lang(l *BCLang) {
	for ; l != nil; l = l.Cdr {
		f.u64(uint64(uint32(l.Code)))
		f.u64(uint64(uint32(l.Pos)))
		f.u64(uint64(uint32(l.Inner)))
		f.node(l.Attributes)
		f.node(l.Tag)
		f.node(l.Item)
		f.lang(l.Car)
	}
	f.h.Write([]byte{0})
}
