package altrep

import (
	"fmt"
	"maps"

	"github.com/signadot/go-rdata/debug"
	"github.com/signadot/go-rdata/robj"
)

// Key identifies a compact representation class.
type Key struct {
	Class   string
	Package string
}

func (k Key) String() string {
	return k.Package + "::" + k.Class
}

// Expander materializes the plain vector represented by a compact state.
// The returned node's attributes and object bit are set by the caller.
type Expander func(state *robj.Node) (*robj.Node, error)

// Registry maps classes to expanders.
type Registry struct {
	m map[Key]Expander
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{m: map[Key]Expander{}}
}

// Default returns a new registry holding the built in classes.
func Default() *Registry {
	r := NewRegistry()
	r.Register(Key{"compact_intseq", "base"}, expandIntSeq)
	r.Register(Key{"compact_realseq", "base"}, expandRealSeq)
	r.Register(Key{"deferred_string", "base"}, expandDeferredString)
	for c, t := range wrapperTypes {
		r.Register(Key{c, "base"}, expandWrapper(t))
	}
	return r
}

// Register adds or replaces the expander for k.
func (r *Registry) Register(k Key, f Expander) {
	r.m[k] = f
}

// Lookup returns the expander for k.
func (r *Registry) Lookup(k Key) (Expander, bool) {
	f, ok := r.m[k]
	return f, ok
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	return &Registry{m: maps.Clone(r.m)}
}

// ClassOf returns the class key of a compact node.
func ClassOf(n *robj.Node) (Key, error) {
	if n.Type != robj.AltrepType || n.Altrep == nil {
		return Key{}, fmt.Errorf("%w: %s is not a compact representation", robj.ErrInvalid, n.Type)
	}
	info := n.Altrep.Info.Resolve()
	if info == nil || info.Pairs == nil || len(info.Pairs.Cells) < 2 {
		return Key{}, fmt.Errorf("%w: malformed compact representation info", robj.ErrFormat)
	}
	class, ok := info.Pairs.Cells[0].Car.SymbolName()
	if !ok {
		return Key{}, fmt.Errorf("%w: compact representation class is not a symbol", robj.ErrFormat)
	}
	pkg, ok := info.Pairs.Cells[1].Car.SymbolName()
	if !ok {
		return Key{}, fmt.Errorf("%w: compact representation package is not a symbol", robj.ErrFormat)
	}
	return Key{Class: class, Package: pkg}, nil
}

// Expand returns the plain vector a compact node stands for. Unknown
// classes yield robj.ErrUnsupported.
func (r *Registry) Expand(n *robj.Node) (*robj.Node, error) {
	k, err := ClassOf(n)
	if err != nil {
		return nil, err
	}
	f, ok := r.Lookup(k)
	if !ok {
		return nil, fmt.Errorf("%w: compact representation class %s", robj.ErrUnsupported, k)
	}
	if debug.Altrep() {
		debug.Logf("expand %s\n", k)
	}
	res, err := f(n.Altrep.State.Resolve())
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", k, err)
	}
	res.Object = n.Object
	res.GP = n.GP
	res.Attributes = nil
	if a := n.Altrep.Attributes; a != nil && a.Resolve().Type != robj.NilValueType {
		res.Attributes = a
	}
	return robj.Build(res)
}
