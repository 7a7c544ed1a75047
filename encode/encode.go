// Package encode writes robj graphs as R serialization streams.
//
// Streams written from a graph produced by package parse reproduce the
// parsed bytes exactly, provided the same wire encoding is chosen and
// compact representations were kept unexpanded.
package encode

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/signadot/go-rdata/altrep"
	"github.com/signadot/go-rdata/codec"
	"github.com/signadot/go-rdata/debug"
	"github.com/signadot/go-rdata/format"
	"github.com/signadot/go-rdata/reftab"
	"github.com/signadot/go-rdata/robj"
)

// EncState holds the state of one Encode call.
type EncState struct {
	wire        format.Wire
	wireSet     bool
	fileType    format.FileType
	fileTypeSet bool
	compact     bool
	logger      *slog.Logger

	w       codec.Writer
	refs    *reftab.WriteTable
	version int
	depth   int
}

// Encode writes d to w.
func Encode(w io.Writer, d *robj.RData, opts ...EncodeOption) error {
	es := &EncState{}
	for _, opt := range opts {
		opt(es)
	}
	if es.logger == nil {
		es.logger = slog.Default()
	}
	if err := d.Check(); err != nil {
		return err
	}
	if !es.wireSet {
		es.wire = d.Wire
	}
	if !es.fileTypeSet {
		es.fileType = d.FileType
	}
	if _, err := es.wire.MarshalText(); err != nil {
		return fmt.Errorf("%w: %w", robj.ErrConfig, err)
	}
	es.version = d.Versions.Format
	es.refs = reftab.NewWriteTable()
	es.logger.Debug("encoding rdata",
		"wire", es.wire,
		"file", es.fileType,
		"version", es.version,
		"encoding", d.Extra.Encoding)

	if es.fileType == format.RDAFile {
		if _, err := w.Write(format.RDAPrefix(es.wire, es.version)); err != nil {
			return err
		}
	}
	if _, err := w.Write(es.wire.Magic()); err != nil {
		return err
	}
	es.w = codec.NewWriter(es.wire, w)
	if err := es.header(d); err != nil {
		return err
	}
	if err := es.item(d.Object); err != nil {
		return err
	}
	return es.w.Flush()
}

// Bytes returns the encoding of d.
func Bytes(d *robj.RData, opts ...EncodeOption) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := Encode(buf, d, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (es *EncState) header(d *robj.RData) error {
	v := d.Versions
	if err := es.w.WriteInts([]int32{int32(v.Format), int32(v.Serialized), int32(v.Minimum)}); err != nil {
		return err
	}
	if v.Format < robj.MinVersionWithEncoding {
		return nil
	}
	if err := es.w.WriteInt(int32(len(d.Extra.Encoding))); err != nil {
		return err
	}
	return es.w.WriteString([]byte(d.Extra.Encoding))
}

func (es *EncState) writeRef(id int) error {
	h := robj.Header{Type: robj.RefType, Ref: id}
	if err := es.w.WriteInt(h.Flags()); err != nil {
		return err
	}
	if id > robj.MaxPackedRef {
		return es.w.WriteInt(int32(id))
	}
	return nil
}

func (es *EncState) intern(n *robj.Node) {
	id, _ := es.refs.Intern(n)
	if debug.Refs() {
		debug.Logf("ref %d := %s\n", id, n.Header)
	}
}

// itemOrNil writes n, or R NULL when n is nil.
func (es *EncState) itemOrNil(n *robj.Node) error {
	if n == nil {
		return es.w.WriteInt(int32(robj.NilValueType))
	}
	return es.item(n)
}

func (es *EncState) item(n *robj.Node) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", robj.ErrInvalid)
	}
	if n.Type == robj.RefType {
		if n.Target == nil {
			return fmt.Errorf("%w: back-reference %d without target", robj.ErrInvalid, n.Ref)
		}
		if id := es.refs.Lookup(n.Target); id != 0 {
			return es.writeRef(id)
		}
		// the target has not been written yet, so write it in place
		return es.item(n.Target)
	}
	if n.Type.IsReferencable() {
		if id := es.refs.Lookup(n); id != 0 {
			return es.writeRef(id)
		}
	}
	if n.Type.IsSingleton() {
		return es.w.WriteInt(int32(n.Type))
	}
	if es.compact && n.Type == robj.IntType && es.version >= robj.MinVersionWithAltrep {
		if c, ok := altrep.Compact(n); ok {
			n = c
		}
	}
	if debug.Encode() {
		debug.Logf("encode %*s%s\n", es.depth, "", n.Header)
	}
	es.depth++
	defer func() { es.depth-- }()

	if n.Type.IsPairlist() {
		return es.pairlist(n)
	}
	h := n.Header
	h.HasTag = false
	h.HasAttributes = n.Attributes != nil
	var err error
	switch n.Type {
	case robj.EnvType:
		return es.env(n)
	case robj.PersistType, robj.PackageType, robj.NamespaceType:
		return es.names(n)
	case robj.AltrepType:
		return es.altrep(n)
	case robj.CharType:
		h.HasAttributes = false
		if err := es.w.WriteInt(h.Flags()); err != nil {
			return err
		}
		if n.Missing {
			return es.w.WriteInt(-1)
		}
		if err := es.w.WriteInt(int32(len(n.Bytes))); err != nil {
			return err
		}
		return es.w.WriteString(n.Bytes)
	}
	if err := es.w.WriteInt(h.Flags()); err != nil {
		return err
	}
	switch n.Type {
	case robj.SymType:
		if len(n.Elems) != 1 {
			return fmt.Errorf("%w: symbol without print name", robj.ErrInvalid)
		}
		if err := es.item(n.Elems[0]); err != nil {
			return err
		}
		es.intern(n)
		return nil
	case robj.ExtPtrType:
		es.intern(n)
		if len(n.Elems) != 2 {
			return fmt.Errorf("%w: external pointer with %d children", robj.ErrInvalid, len(n.Elems))
		}
		for _, e := range n.Elems {
			if err := es.itemOrNil(e); err != nil {
				return err
			}
		}
	case robj.WeakRefType:
		es.intern(n)
	case robj.SpecialType, robj.BuiltinType:
		if err := es.w.WriteInt(int32(len(n.Bytes))); err != nil {
			return err
		}
		err = es.w.WriteString(n.Bytes)
	case robj.LogicalType, robj.IntType:
		if err := es.length(len(n.Ints)); err != nil {
			return err
		}
		err = es.w.WriteInts(n.WireInts())
	case robj.RealType:
		if err := es.length(len(n.Reals)); err != nil {
			return err
		}
		err = es.w.WriteDoubles(n.WireReals())
	case robj.ComplexType:
		if err := es.length(len(n.Complexes)); err != nil {
			return err
		}
		err = es.w.WriteComplexes(n.WireComplexes())
	case robj.RawType:
		if err := es.length(len(n.Bytes)); err != nil {
			return err
		}
		err = es.w.WriteRaw(n.Bytes)
	case robj.StrType, robj.VecType, robj.ExprType:
		if err := es.length(len(n.Elems)); err != nil {
			return err
		}
		for _, e := range n.Elems {
			if n.Type == robj.StrType && (e == nil || e.Resolve().Type != robj.CharType) {
				return fmt.Errorf("%w: non string element in string vector", robj.ErrInvalid)
			}
			if err := es.item(e); err != nil {
				return err
			}
		}
	case robj.S4Type:
	case robj.BytecodeType:
		if n.Bytecode == nil {
			return fmt.Errorf("%w: bytecode without code", robj.ErrInvalid)
		}
		if err := es.w.WriteInt(n.Bytecode.Reps); err != nil {
			return err
		}
		err = es.bytecode(n.Bytecode)
	default:
		return fmt.Errorf("%w: cannot write %s node", robj.ErrInvalid, n.Type)
	}
	if err != nil {
		return err
	}
	if h.HasAttributes {
		return es.item(n.Attributes)
	}
	return nil
}

func (es *EncState) length(l int) error {
	if l <= math.MaxInt32 {
		return es.w.WriteInt(int32(l))
	}
	return es.w.WriteInts([]int32{-1, int32(uint64(l) >> 32), int32(uint32(l))})
}

// pairlist writes the cells of n in order, each followed directly by the
// next one as its cdr.
func (es *EncState) pairlist(n *robj.Node) error {
	if n.Pairs == nil || len(n.Pairs.Cells) == 0 {
		return fmt.Errorf("%w: %s node without cells", robj.ErrInvalid, n.Type)
	}
	for i := range n.Pairs.Cells {
		c := &n.Pairs.Cells[i]
		if !c.Type.IsPairlist() {
			return fmt.Errorf("%w: %s cell in pairlist", robj.ErrInvalid, c.Type)
		}
		h := c.Header
		h.HasAttributes = c.Attributes != nil
		h.HasTag = c.Tag != nil
		if err := es.w.WriteInt(h.Flags()); err != nil {
			return err
		}
		if h.HasAttributes {
			if err := es.item(c.Attributes); err != nil {
				return err
			}
		}
		if h.HasTag {
			if err := es.item(c.Tag); err != nil {
				return err
			}
		}
		if err := es.itemOrNil(c.Car); err != nil {
			return err
		}
	}
	return es.itemOrNil(n.Pairs.End)
}

func (es *EncState) env(n *robj.Node) error {
	if n.Env == nil {
		return fmt.Errorf("%w: environment without frame", robj.ErrInvalid)
	}
	if err := es.w.WriteInt(int32(robj.EnvType)); err != nil {
		return err
	}
	es.intern(n)
	if err := es.w.WriteInt(n.Env.Locked); err != nil {
		return err
	}
	for _, c := range []*robj.Node{n.Env.Enclosure, n.Env.Frame, n.Env.HashTab, n.Env.Attributes} {
		if err := es.itemOrNil(c); err != nil {
			return err
		}
	}
	return nil
}

func (es *EncState) names(n *robj.Node) error {
	if err := es.w.WriteInt(int32(n.Type)); err != nil {
		return err
	}
	es.intern(n)
	if err := es.w.WriteInts([]int32{0, int32(len(n.Elems))}); err != nil {
		return err
	}
	for _, e := range n.Elems {
		if err := es.item(e); err != nil {
			return err
		}
	}
	return nil
}

func (es *EncState) altrep(n *robj.Node) error {
	if es.version < robj.MinVersionWithAltrep {
		return fmt.Errorf("%w: compact representation requires format version %d, have %d",
			robj.ErrUnsupported, robj.MinVersionWithAltrep, es.version)
	}
	if n.Altrep == nil {
		return fmt.Errorf("%w: compact representation without state", robj.ErrInvalid)
	}
	h := robj.Header{Type: robj.AltrepType, Object: n.Object, GP: n.GP}
	if err := es.w.WriteInt(h.Flags()); err != nil {
		return err
	}
	for _, c := range []*robj.Node{n.Altrep.Info, n.Altrep.State, n.Altrep.Attributes} {
		if err := es.itemOrNil(c); err != nil {
			return err
		}
	}
	return nil
}
