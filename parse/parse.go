// Package parse reads R serialization streams into robj graphs.
//
// Both wire encodings are accepted, with or without the RDA prefix of
// save() files. Compression is handled by package rfile; Parse expects the
// raw stream.
package parse

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/signadot/go-rdata/codec"
	"github.com/signadot/go-rdata/debug"
	"github.com/signadot/go-rdata/format"
	"github.com/signadot/go-rdata/reftab"
	"github.com/signadot/go-rdata/robj"
)

// Parse reads one serialized object from r. The whole of r must be
// consumed: trailing bytes are a format error.
func Parse(r io.Reader, opts ...ParseOption) (*robj.RData, error) {
	o := newParseOpts(opts)
	br := bufio.NewReader(r)
	res := &robj.RData{FileType: format.RDSFile}

	prefixWire, isRDA, err := sniffRDA(br)
	if err != nil {
		return nil, err
	}
	if isRDA {
		res.FileType = format.RDAFile
	}
	wire, err := codec.SniffWire(br)
	if err != nil {
		return nil, err
	}
	if isRDA && wire != prefixWire {
		return nil, errWireMatch
	}
	res.Wire = wire
	cr := codec.NewReader(wire, br)
	if err := readHeader(cr, res); err != nil {
		return nil, err
	}
	o.logger.Debug("parsing rdata",
		"wire", wire,
		"file", res.FileType,
		"version", res.Versions.Format,
		"writer", robj.RVersion(res.Versions.Serialized),
		"encoding", res.Extra.Encoding)

	p := &parser{
		opts:     o,
		r:        cr,
		refs:     &reftab.ReadTable{},
		encoding: res.Extra.Encoding,
	}
	obj, err := p.item(0)
	if err != nil {
		return nil, err
	}
	if err := cr.Finish(); err != nil {
		return nil, err
	}
	res.Object = obj
	return res, nil
}

// ParseBytes is Parse on an in-memory stream.
func ParseBytes(b []byte, opts ...ParseOption) (*robj.RData, error) {
	return Parse(bytes.NewReader(b), opts...)
}

var rdaPrefixes = map[string]format.Wire{
	"RDX2\n": format.XDRWire,
	"RDX3\n": format.XDRWire,
	"RDA2\n": format.ASCIIWire,
	"RDA3\n": format.ASCIIWire,
}

// sniffRDA consumes an RDA prefix when one is present.
func sniffRDA(br *bufio.Reader) (format.Wire, bool, error) {
	head, _ := br.Peek(5)
	if w, ok := rdaPrefixes[string(head)]; ok {
		_, err := br.Discard(5)
		return w, true, err
	}
	if len(head) == 5 && head[0] == 'R' && head[1] == 'D' && head[4] == '\n' {
		return 0, false, fmt.Errorf("%w: rda prefix %q", robj.ErrUnsupported, head)
	}
	return 0, false, nil
}

func readHeader(cr codec.Reader, res *robj.RData) error {
	v, err := cr.ReadInts(3)
	if err != nil {
		return err
	}
	res.Versions = robj.Versions{Format: int(v[0]), Serialized: int(v[1]), Minimum: int(v[2])}
	switch res.Versions.Format {
	case 2:
		return nil
	case 3:
	default:
		return fmt.Errorf("%w: format version %d", robj.ErrUnsupported, res.Versions.Format)
	}
	n, err := cr.ReadInt()
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("%w: encoding name length %d", robj.ErrFormat, n)
	}
	enc, err := cr.ReadString(int(n))
	if err != nil {
		return err
	}
	res.Extra.Encoding = string(enc)
	return nil
}

type parser struct {
	opts     *parseOpts
	r        codec.Reader
	refs     *reftab.ReadTable
	encoding string
}

func (p *parser) item(depth int) (*robj.Node, error) {
	flags, err := p.r.ReadInt()
	if err != nil {
		return nil, err
	}
	return p.itemFlags(flags, depth)
}

func (p *parser) itemFlags(flags int32, depth int) (*robj.Node, error) {
	if depth > p.opts.maxDepth {
		return nil, fmt.Errorf("%w: more than %d levels", ErrDepth, p.opts.maxDepth)
	}
	h := robj.HeaderFromFlags(flags)
	if debug.Parse() {
		debug.Logf("parse %*s%s\n", depth, "", h)
	}
	switch {
	case h.Type == robj.RefType:
		return p.ref(h)
	case h.Type.IsSingleton():
		return &robj.Node{Header: robj.Header{Type: h.Type}}, nil
	case h.Type.IsPairlist():
		return p.pairlist(h, depth)
	}
	n := &robj.Node{Header: h}
	var err error
	switch h.Type {
	case robj.PersistType, robj.PackageType, robj.NamespaceType:
		return p.names(n, depth)
	case robj.EnvType:
		return p.env(n, depth)
	case robj.AltrepType:
		return p.altrep(n, depth)
	case robj.CharType:
		return p.char(n, depth)
	case robj.SymType:
		name, err := p.item(depth + 1)
		if err != nil {
			return nil, err
		}
		if name.Type != robj.CharType {
			return nil, fmt.Errorf("%w: symbol print name of type %s", robj.ErrFormat, name.Type)
		}
		n.Elems = []*robj.Node{name}
		p.addRef(n)
		return n, nil
	case robj.ExtPtrType:
		p.addRef(n)
		n.Elems = make([]*robj.Node, 2)
		for i := range n.Elems {
			if n.Elems[i], err = p.item(depth + 1); err != nil {
				return nil, err
			}
		}
	case robj.WeakRefType:
		p.addRef(n)
	case robj.SpecialType, robj.BuiltinType:
		l, err := p.r.ReadInt()
		if err != nil {
			return nil, err
		}
		if l < 0 {
			return nil, fmt.Errorf("%w: %s name length %d", robj.ErrFormat, h.Type, l)
		}
		if n.Bytes, err = p.r.ReadString(int(l)); err != nil {
			return nil, err
		}
	case robj.LogicalType, robj.IntType:
		l, err := p.length()
		if err != nil {
			return nil, err
		}
		raw, err := p.r.ReadInts(l)
		if err != nil {
			return nil, err
		}
		n.NA = robj.IntMask(raw)
		for i := range n.NA {
			if n.NA[i] {
				raw[i] = 0
			}
		}
		n.Ints = raw
	case robj.RealType:
		l, err := p.length()
		if err != nil {
			return nil, err
		}
		if n.Reals, err = p.r.ReadDoubles(l); err != nil {
			return nil, err
		}
		n.NA = robj.RealMask(n.Reals)
	case robj.ComplexType:
		l, err := p.length()
		if err != nil {
			return nil, err
		}
		if n.Complexes, err = p.r.ReadComplexes(l); err != nil {
			return nil, err
		}
		n.NA = robj.ComplexMask(n.Complexes)
	case robj.RawType:
		l, err := p.length()
		if err != nil {
			return nil, err
		}
		if n.Bytes, err = p.r.ReadRaw(l); err != nil {
			return nil, err
		}
	case robj.StrType, robj.VecType, robj.ExprType:
		if err := p.elems(n, depth); err != nil {
			return nil, err
		}
	case robj.S4Type:
	case robj.BytecodeType:
		reps, err := p.r.ReadInt()
		if err != nil {
			return nil, err
		}
		if reps < 0 {
			return nil, fmt.Errorf("%w: bytecode reps %d", robj.ErrFormat, reps)
		}
		bc := &bcReader{parser: p, reps: reps}
		if n.Bytecode, err = bc.code(depth + 1); err != nil {
			return nil, err
		}
		n.Bytecode.Reps = reps
	case robj.ClassRefType, robj.GenericRefType:
		return nil, fmt.Errorf("%w: %s", robj.ErrUnsupported, h.Type)
	default:
		return nil, fmt.Errorf("%w: unexpected %s", robj.ErrFormat, h.Type)
	}
	if h.HasAttributes {
		if n.Attributes, err = p.item(depth + 1); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (p *parser) addRef(n *robj.Node) {
	id := p.refs.Add(n)
	if debug.Refs() {
		debug.Logf("ref %d := %s\n", id, n.Header)
	}
}

func (p *parser) ref(h robj.Header) (*robj.Node, error) {
	id := h.Ref
	if id == 0 {
		v, err := p.r.ReadInt()
		if err != nil {
			return nil, err
		}
		id = int(v)
	}
	target, err := p.refs.Get(id)
	if err != nil {
		return nil, err
	}
	return &robj.Node{Header: robj.Header{Type: robj.RefType, Ref: id}, Target: target}, nil
}

// length reads a vector length, which is -1 followed by two words for
// long vectors.
func (p *parser) length() (int, error) {
	l, err := p.r.ReadInt()
	if err != nil {
		return 0, err
	}
	if l >= 0 {
		return int(l), nil
	}
	if l != -1 {
		return 0, fmt.Errorf("%w: vector length %d", robj.ErrFormat, l)
	}
	hl, err := p.r.ReadInts(2)
	if err != nil {
		return 0, err
	}
	long := int64(uint32(hl[0]))<<32 | int64(uint32(hl[1]))
	if long < 0 || int64(int(long)) != long {
		return 0, fmt.Errorf("%w: long vector length %d", robj.ErrFormat, long)
	}
	return int(long), nil
}

func (p *parser) elems(n *robj.Node, depth int) error {
	l, err := p.length()
	if err != nil {
		return err
	}
	n.Elems = make([]*robj.Node, 0, min(l, 1<<16))
	for range l {
		e, err := p.item(depth + 1)
		if err != nil {
			return err
		}
		if n.Type == robj.StrType && e.Type != robj.CharType {
			return fmt.Errorf("%w: %s element in string vector", robj.ErrFormat, e.Type)
		}
		n.Elems = append(n.Elems, e)
	}
	return nil
}

func (p *parser) char(n *robj.Node, depth int) (*robj.Node, error) {
	l, err := p.r.ReadInt()
	if err != nil {
		return nil, err
	}
	switch {
	case l == -1:
		n.Missing = true
	case l < 0:
		return nil, fmt.Errorf("%w: string length %d", robj.ErrFormat, l)
	default:
		if n.Bytes, err = p.r.ReadString(int(l)); err != nil {
			return nil, err
		}
		if err := n.CheckEncoding(p.encoding); err != nil {
			return nil, err
		}
	}
	if n.HasAttributes {
		// R stores the string cache in this slot; anything written
		// here is read and dropped.
		if _, err := p.item(depth + 1); err != nil {
			return nil, err
		}
		n.HasAttributes = false
	}
	return n, nil
}

// names reads the string vector of a PERSISTSXP, PACKAGESXP or
// NAMESPACESXP, registering the node once it is complete.
func (p *parser) names(n *robj.Node, depth int) (*robj.Node, error) {
	zero, err := p.r.ReadInt()
	if err != nil {
		return nil, err
	}
	if zero != 0 {
		return nil, fmt.Errorf("%w: %s names with flag %d", robj.ErrFormat, n.Type, zero)
	}
	vec := &robj.Node{Header: robj.Header{Type: robj.StrType}}
	if err := p.elems(vec, depth); err != nil {
		return nil, err
	}
	n.Header = robj.Header{Type: n.Type}
	n.Elems = vec.Elems
	p.addRef(n)
	return n, nil
}

func (p *parser) env(n *robj.Node, depth int) (*robj.Node, error) {
	n.Header = robj.Header{Type: robj.EnvType}
	n.Env = &robj.Environment{}
	p.addRef(n)
	locked, err := p.r.ReadInt()
	if err != nil {
		return nil, err
	}
	n.Env.Locked = locked
	for _, dst := range []**robj.Node{&n.Env.Enclosure, &n.Env.Frame, &n.Env.HashTab, &n.Env.Attributes} {
		if *dst, err = p.item(depth + 1); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// pairlist reads a cons chain. Each cdr that is itself a cons cell extends
// the chain in place instead of recursing.
func (p *parser) pairlist(h robj.Header, depth int) (*robj.Node, error) {
	pl := &robj.Pairlist{}
	for {
		c := robj.Cell{Header: h}
		var err error
		if h.HasAttributes {
			if c.Attributes, err = p.item(depth + 1); err != nil {
				return nil, err
			}
		}
		if h.HasTag {
			if c.Tag, err = p.item(depth + 1); err != nil {
				return nil, err
			}
		}
		if c.Car, err = p.item(depth + 1); err != nil {
			return nil, err
		}
		pl.Cells = append(pl.Cells, c)
		flags, err := p.r.ReadInt()
		if err != nil {
			return nil, err
		}
		next := robj.HeaderFromFlags(flags)
		if !next.Type.IsPairlist() {
			if pl.End, err = p.itemFlags(flags, depth+1); err != nil {
				return nil, err
			}
			break
		}
		h = next
	}
	first := pl.Cells[0]
	return &robj.Node{
		Header:     first.Header,
		Attributes: first.Attributes,
		Tag:        first.Tag,
		Pairs:      pl,
	}, nil
}

func (p *parser) altrep(n *robj.Node, depth int) (*robj.Node, error) {
	n.Altrep = &robj.Altrep{}
	var err error
	for _, dst := range []**robj.Node{&n.Altrep.Info, &n.Altrep.State, &n.Altrep.Attributes} {
		if *dst, err = p.item(depth + 1); err != nil {
			return nil, err
		}
	}
	if !p.opts.expand {
		return n, nil
	}
	res, err := p.opts.registry.Expand(n)
	if err != nil {
		return nil, err
	}
	if debug.Altrep() {
		debug.Logf("altrep expanded to %s[%d]\n", res.Header, res.Len())
	}
	p.opts.logger.Debug("expanded compact representation", slog.String("type", res.Type.String()), slog.Int("len", res.Len()))
	return res, nil
}
