package robj

// Node is one value of a serialized R object graph.
//
// The payload lives in the field matching Header.Type, the others stay
// zero:
//
//   - LGLSXP, INTSXP: Ints
//   - REALSXP: Reals
//   - CPLXSXP: Complexes
//   - RAWSXP, CHARSXP, SPECIALSXP, BUILTINSXP: Bytes
//   - STRSXP, VECSXP, EXPRSXP: Elems
//   - SYMSXP: Elems[0] is the print name (a CHARSXP)
//   - EXTPTRSXP: Elems holds the protected value and the tag
//   - PERSISTSXP, PACKAGESXP, NAMESPACESXP: Elems holds the name CHARSXPs
//   - pairlist types: Pairs
//   - ENVSXP: Env
//   - ALTREP_SXP: Altrep
//   - BCODESXP: Bytecode
//
// NA is the missing value mask of atomic vectors: NA[i] is true when
// element i is missing. It is nil when no element is missing.
type Node struct {
	Header

	Attributes *Node
	Tag        *Node
	// Target is the node a back-reference resolves to. It does not own
	// the target.
	Target *Node

	Ints      []int32
	Reals     []float64
	Complexes []complex128
	NA        []bool
	Bytes     []byte
	// Missing marks the NA_STRING CHARSXP.
	Missing bool
	Elems   []*Node

	Pairs    *Pairlist
	Env      *Environment
	Altrep   *Altrep
	Bytecode *Bytecode
}

// Cell is one cons cell of a pairlist chain.
type Cell struct {
	Header
	Attributes *Node
	Tag        *Node
	Car        *Node
}

// Pairlist is a cons chain flattened into its cells. End is the cdr of the
// last cell, a NILVALUE_SXP node for proper lists.
//
// A chain continues through any cdr that is itself a cons cell, so a LANGSXP
// call and the LISTSXP arguments that follow it share one Pairlist.
type Pairlist struct {
	Cells []Cell
	End   *Node
}

// Environment is the payload of an ENVSXP.
type Environment struct {
	Locked     int32
	Enclosure  *Node
	Frame      *Node
	HashTab    *Node
	Attributes *Node
}

// Altrep is the payload of a compact representation. Info is the pairlist
// (class symbol, package symbol, base type), State the class specific
// state and Attributes the attributes of the represented vector (a
// NILVALUE_SXP node when there are none).
type Altrep struct {
	Info       *Node
	State      *Node
	Attributes *Node
}

// Bytecode is the payload of a BCODESXP. Reps is the size of the table of
// shared language cells; it is only meaningful on a top level bytecode node.
type Bytecode struct {
	Reps   int32
	Code   *Node
	Consts []BCConst
}

// BCConst is one entry of a bytecode constant pool. Code is the type code
// written before the constant; exactly one of Node, Bytecode and Lang is
// set.
type BCConst struct {
	Code     int32
	Node     *Node
	Bytecode *Bytecode
	Lang     *BCLang
}

// BCLang is a language cell inside a bytecode constant pool. Code is the
// integer written before the cell. BCREPDEF cells carry their slot in Pos and
// the real cell type in Inner; BCREPREF cells carry the slot they refer to
// in Pos. For any other code Item holds an ordinary node.
type BCLang struct {
	Code       int32
	Pos        int32
	Inner      int32
	Attributes *Node
	Tag        *Node
	Car        *BCLang
	Cdr        *BCLang
	Item       *Node
}

// Resolve follows back-references to the node they denote.
func (n *Node) Resolve() *Node {
	for n != nil && n.Type == RefType && n.Target != nil {
		n = n.Target
	}
	return n
}

// Len returns the number of elements of a vector-like node.
func (n *Node) Len() int {
	switch n.Type {
	case LogicalType, IntType:
		return len(n.Ints)
	case RealType:
		return len(n.Reals)
	case ComplexType:
		return len(n.Complexes)
	case RawType, CharType:
		return len(n.Bytes)
	case StrType, VecType, ExprType:
		return len(n.Elems)
	}
	if n.Type.IsPairlist() && n.Pairs != nil {
		return len(n.Pairs.Cells)
	}
	return 0
}

// IsNA reports whether element i of an atomic vector is missing, or for a
// CHARSXP whether it is NA_STRING.
func (n *Node) IsNA(i int) bool {
	if n.Type == CharType {
		return n.Missing
	}
	return i < len(n.NA) && n.NA[i]
}

// SymbolName returns the print name of a symbol, following
// back-references.
func (n *Node) SymbolName() (string, bool) {
	s := n.Resolve()
	if s == nil || s.Type != SymType || len(s.Elems) == 0 || s.Elems[0] == nil {
		return "", false
	}
	return string(s.Elems[0].Bytes), true
}

// Car returns the value of the first cell of a pairlist node.
func (n *Node) Car() *Node {
	if n.Pairs == nil || len(n.Pairs.Cells) == 0 {
		return nil
	}
	return n.Pairs.Cells[0].Car
}

// Cdr returns the rest of a pairlist node as a node of its own, or the end
// of the chain after the last cell.
func (n *Node) Cdr() *Node {
	if n.Pairs == nil || len(n.Pairs.Cells) == 0 {
		return nil
	}
	if len(n.Pairs.Cells) == 1 {
		return n.Pairs.End
	}
	return fromCells(n.Pairs.Cells[1:], n.Pairs.End)
}

func fromCells(cells []Cell, end *Node) *Node {
	c := cells[0]
	return &Node{
		Header:     c.Header,
		Attributes: c.Attributes,
		Tag:        c.Tag,
		Pairs:      &Pairlist{Cells: cells, End: end},
	}
}

// Get returns the value of the first cell of a pairlist whose tag is the
// symbol name.
func (n *Node) Get(name string) *Node {
	n = n.Resolve()
	if n == nil || n.Pairs == nil {
		return nil
	}
	for i := range n.Pairs.Cells {
		c := &n.Pairs.Cells[i]
		if c.Tag == nil {
			continue
		}
		if s, ok := c.Tag.SymbolName(); ok && s == name {
			return c.Car
		}
	}
	return nil
}

// Attr returns the attribute called name, or nil.
func (n *Node) Attr(name string) *Node {
	if n.Type == EnvType && n.Env != nil {
		return n.Env.Attributes.Get(name)
	}
	if n.Attributes == nil {
		return nil
	}
	return n.Attributes.Get(name)
}

// Class returns the class attribute as strings.
func (n *Node) Class() []string {
	c := n.Attr("class").Resolve()
	if c == nil || c.Type != StrType {
		return nil
	}
	res := make([]string, 0, len(c.Elems))
	for _, e := range c.Elems {
		res = append(res, string(e.Bytes))
	}
	return res
}

// Walk calls f on n and on every node it owns in wire order, stopping at
// back-references. Walk does not descend into the targets of
// back-references, so it terminates on cyclic graphs.
func (n *Node) Walk(f func(*Node) error) error {
	stack := []*Node{n}
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if x == nil {
			continue
		}
		if err := f(x); err != nil {
			return err
		}
		kids := x.children()
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return nil
}

// children returns the owned children of n in wire order.
func (n *Node) children() []*Node {
	var res []*Node
	switch {
	case n.Type == RefType:
		return nil
	case n.Pairs != nil:
		for i := range n.Pairs.Cells {
			c := &n.Pairs.Cells[i]
			res = append(res, c.Attributes, c.Tag, c.Car)
		}
		return append(res, n.Pairs.End)
	case n.Env != nil:
		return []*Node{n.Env.Enclosure, n.Env.Frame, n.Env.HashTab, n.Env.Attributes}
	case n.Altrep != nil:
		return []*Node{n.Altrep.Info, n.Altrep.State, n.Altrep.Attributes}
	case n.Bytecode != nil:
		res = n.Bytecode.nodes(res)
	default:
		res = append(res, n.Elems...)
	}
	return append(res, n.Attributes)
}

func (b *Bytecode) nodes(res []*Node) []*Node {
	res = append(res, b.Code)
	for _, c := range b.Consts {
		switch {
		case c.Bytecode != nil:
			res = c.Bytecode.nodes(res)
		case c.Lang != nil:
			res = c.Lang.nodes(res)
		default:
			res = append(res, c.Node)
		}
	}
	return res
}

func (l *BCLang) nodes(res []*Node) []*Node {
	for ; l != nil; l = l.Cdr {
		if l.Item != nil {
			return append(res, l.Item)
		}
		res = append(res, l.Attributes, l.Tag)
		if l.Car != nil {
			res = l.Car.nodes(res)
		}
	}
	return res
}
