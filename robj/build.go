package robj

import (
	"fmt"
)

// Build checks n against the model invariants and derives the header flags
// that follow from its fields. It returns n.
//
// A back-reference must carry a positive id and a target; no other node may
// carry an id. Attributes must be a pairlist and a tag must be a symbol.
// For pairlist nodes the header, attributes and tag are taken from the
// first cell; a node with cells and no type takes the first cell's type.
func Build(n *Node) (*Node, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", ErrInvalid)
	}
	if n.Type == NilType && n.Pairs != nil && len(n.Pairs.Cells) > 0 {
		n.Type = n.Pairs.Cells[0].Type
	}
	if err := n.Header.Check(); err != nil {
		return nil, err
	}
	if n.Type == RefType {
		if n.Target == nil {
			return nil, fmt.Errorf("%w: back-reference %d without target", ErrInvalid, n.Ref)
		}
		return n, nil
	}
	if n.Target != nil {
		return nil, fmt.Errorf("%w: %s node with reference target", ErrInvalid, n.Type)
	}
	if n.Type.IsPairlist() {
		if n.Pairs == nil || len(n.Pairs.Cells) == 0 {
			return nil, fmt.Errorf("%w: %s node without cells", ErrInvalid, n.Type)
		}
		for i := range n.Pairs.Cells {
			c := &n.Pairs.Cells[i]
			if !c.Type.IsPairlist() {
				return nil, fmt.Errorf("%w: %s cell in pairlist", ErrInvalid, c.Type)
			}
			if err := checkAttrTag(c.Attributes, c.Tag); err != nil {
				return nil, err
			}
			c.HasAttributes = c.Attributes != nil
			c.HasTag = c.Tag != nil
		}
		if n.Pairs.End == nil {
			n.Pairs.End = NilValue()
		}
		first := n.Pairs.Cells[0]
		n.Header = first.Header
		n.Attributes = first.Attributes
		n.Tag = first.Tag
		return n, nil
	}
	if n.Tag != nil {
		return nil, fmt.Errorf("%w: tag on %s node", ErrInvalid, n.Type)
	}
	if err := checkAttrTag(n.Attributes, nil); err != nil {
		return nil, err
	}
	switch n.Type {
	case EnvType, AltrepType, NilValueType, EmptyEnvType, BaseEnvType,
		GlobalEnvType, UnboundType, MissingArgType, BaseNSType,
		PersistType, PackageType, NamespaceType:
		// written without the generic flag word
		if n.Attributes != nil {
			return nil, fmt.Errorf("%w: attributes on %s node", ErrInvalid, n.Type)
		}
	}
	n.HasAttributes = n.Attributes != nil
	n.HasTag = false
	switch n.Type {
	case LogicalType, IntType:
		if err := checkMask(n, len(n.Ints)); err != nil {
			return nil, err
		}
	case RealType:
		if err := checkMask(n, len(n.Reals)); err != nil {
			return nil, err
		}
	case ComplexType:
		if err := checkMask(n, len(n.Complexes)); err != nil {
			return nil, err
		}
	case SymType:
		if len(n.Elems) != 1 || n.Elems[0] == nil {
			return nil, fmt.Errorf("%w: symbol without print name", ErrInvalid)
		}
	case EnvType:
		if n.Env == nil {
			return nil, fmt.Errorf("%w: environment without frame", ErrInvalid)
		}
	case AltrepType:
		if n.Altrep == nil {
			return nil, fmt.Errorf("%w: compact representation without state", ErrInvalid)
		}
	case BytecodeType:
		if n.Bytecode == nil {
			return nil, fmt.Errorf("%w: bytecode without code", ErrInvalid)
		}
	}
	return n, nil
}

func checkMask(n *Node, l int) error {
	if n.NA != nil && len(n.NA) != l {
		return fmt.Errorf("%w: %s mask length %d for %d elements", ErrInvalid, n.Type, len(n.NA), l)
	}
	return nil
}

func checkAttrTag(attr, tag *Node) error {
	if attr != nil {
		a := attr.Resolve()
		if a.Type != NilValueType && !a.Type.IsPairlist() {
			return fmt.Errorf("%w: attributes of type %s", ErrInvalid, a.Type)
		}
	}
	if tag != nil {
		// closures keep their environment in the tag slot
		switch tag.Resolve().Type {
		case SymType, EnvType, GlobalEnvType, BaseEnvType, EmptyEnvType,
			NamespaceType, PackageType, BaseNSType, NilValueType:
		default:
			return fmt.Errorf("%w: tag of type %s", ErrInvalid, tag.Resolve().Type)
		}
	}
	return nil
}

// MustBuild is Build for literals known to be valid; it panics on error.
func MustBuild(n *Node) *Node {
	res, err := Build(n)
	if err != nil {
		panic(err)
	}
	return res
}

// NilValue returns a new R NULL.
func NilValue() *Node {
	return &Node{Header: Header{Type: NilValueType}}
}

// Singleton returns a node for one of the payload-free singleton types.
func Singleton(t Type) (*Node, error) {
	if !t.IsSingleton() {
		return nil, fmt.Errorf("%w: %s is not a singleton", ErrInvalid, t)
	}
	return &Node{Header: Header{Type: t}}, nil
}

// NewRef returns a back-reference to target with the given table id.
func NewRef(id int, target *Node) (*Node, error) {
	return Build(&Node{Header: Header{Type: RefType, Ref: id}, Target: target})
}

// Symbol returns a symbol whose print name is name, flagged as ASCII or
// UTF-8.
func Symbol(name string) *Node {
	return &Node{
		Header: Header{Type: SymType},
		Elems:  []*Node{Char(name)},
	}
}

// Ints returns an integer vector. A nil mask means no value is missing.
func Ints(v []int32, na []bool) *Node {
	return MustBuild(&Node{Header: Header{Type: IntType}, Ints: zeroMasked(v, na), NA: na})
}

// Logicals returns a logical vector.
func Logicals(v []bool, na []bool) *Node {
	ints := make([]int32, len(v))
	for i, b := range v {
		if b {
			ints[i] = 1
		}
	}
	return MustBuild(&Node{Header: Header{Type: LogicalType}, Ints: zeroMasked(ints, na), NA: na})
}

func zeroMasked(v []int32, na []bool) []int32 {
	if na == nil {
		return v
	}
	res := make([]int32, len(v))
	for i, x := range v {
		if i < len(na) && na[i] {
			x = 0
		}
		res[i] = x
	}
	return res
}

// Reals returns a double vector.
func Reals(v []float64, na []bool) *Node {
	return MustBuild(&Node{Header: Header{Type: RealType}, Reals: v, NA: na})
}

// Complexes returns a complex vector.
func Complexes(v []complex128, na []bool) *Node {
	return MustBuild(&Node{Header: Header{Type: ComplexType}, Complexes: v, NA: na})
}

// Raw returns a raw vector.
func Raw(b []byte) *Node {
	return &Node{Header: Header{Type: RawType}, Bytes: b}
}

// Strings returns a character vector of UTF-8 strings.
func Strings(v ...string) *Node {
	elems := make([]*Node, len(v))
	for i, s := range v {
		elems[i] = Char(s)
	}
	return &Node{Header: Header{Type: StrType}, Elems: elems}
}

// StringsOf returns a character vector of the given CHARSXP nodes.
func StringsOf(elems ...*Node) *Node {
	return &Node{Header: Header{Type: StrType}, Elems: elems}
}

// List returns a generic vector.
func List(elems ...*Node) *Node {
	return &Node{Header: Header{Type: VecType}, Elems: elems}
}

// Expression returns an expression vector.
func Expression(elems ...*Node) *Node {
	return &Node{Header: Header{Type: ExprType}, Elems: elems}
}

// KeyVal is one entry of a tagged pairlist.
type KeyVal struct {
	Key string
	Val *Node
}

// TaggedList returns a LISTSXP pairlist whose cells are tagged with the
// keys. Keys that are empty give untagged cells.
func TaggedList(kvs ...KeyVal) *Node {
	cells := make([]Cell, len(kvs))
	for i, kv := range kvs {
		cells[i] = Cell{Header: Header{Type: ListType}, Car: kv.Val}
		if kv.Key != "" {
			cells[i].Tag = Symbol(kv.Key)
		}
	}
	return MustBuild(&Node{Header: Header{Type: ListType}, Pairs: &Pairlist{Cells: cells}})
}

// PairlistOf returns a pairlist of type t with untagged cells.
func PairlistOf(t Type, vals ...*Node) (*Node, error) {
	if !t.IsPairlist() {
		return nil, fmt.Errorf("%w: %s is not a pairlist type", ErrInvalid, t)
	}
	if len(vals) == 0 {
		return NilValue(), nil
	}
	cells := make([]Cell, len(vals))
	for i, v := range vals {
		cells[i] = Cell{Header: Header{Type: ListType}, Car: v}
	}
	cells[0].Type = t
	return Build(&Node{Header: Header{Type: t}, Pairs: &Pairlist{Cells: cells}})
}

// WithAttributes sets the attributes of n and recomputes its object bit:
// the node is an object when any cell of the attribute chain is tagged
// "class".
func WithAttributes(n *Node, attrs *Node) (*Node, error) {
	if err := checkAttrTag(attrs, nil); err != nil {
		return nil, err
	}
	obj := hasClass(attrs)
	if n.Type.IsPairlist() && n.Pairs != nil && len(n.Pairs.Cells) > 0 {
		c := &n.Pairs.Cells[0]
		c.Attributes = attrs
		c.Object = obj
		return Build(n)
	}
	n.Attributes = attrs
	n.Object = obj
	return Build(n)
}

func hasClass(attrs *Node) bool {
	a := attrs.Resolve()
	if a == nil || a.Pairs == nil {
		return false
	}
	for i := range a.Pairs.Cells {
		if a.Pairs.Cells[i].Tag == nil {
			continue
		}
		if s, ok := a.Pairs.Cells[i].Tag.SymbolName(); ok && s == "class" {
			return true
		}
	}
	return false
}
