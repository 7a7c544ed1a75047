package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/signadot/go-rdata/altrep"
	"github.com/signadot/go-rdata/robj"

	"github.com/scott-cotton/cli"
)

// maxShown is the number of vector elements dump prints before eliding.
const maxShown = 10

func dump(cfg *DumpConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Dump.Parse(cc, args)
	if err != nil {
		return err
	}
	for _, arg := range inputs(args) {
		d, err := cfg.load(arg)
		if err != nil {
			return err
		}
		if cfg.YAML {
			if err := dumpYAML(cc.Out, arg, d); err != nil {
				return err
			}
			continue
		}
		p := &printer{
			w:        cc.Out,
			c:        plainColors(),
			native:   d.Extra.Encoding,
			maxDepth: cfg.Depth,
		}
		if cfg.colorize(cc.Out) {
			p.c = newColors()
		}
		p.header(arg, d)
		p.node("", d.Object, 0)
		if p.err != nil {
			return p.err
		}
	}
	return nil
}

type printer struct {
	w        io.Writer
	c        *colors
	native   string
	maxDepth int
	err      error
}

func (p *printer) printf(depth int, f string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s"+f+"\n", append([]any{strings.Repeat("  ", depth)}, args...)...)
}

func (p *printer) header(name string, d *robj.RData) {
	v := d.Versions
	p.printf(0, "%s %s format %d written by R %s readable by R %s",
		p.c.Dim("#"), name, v.Format, robj.RVersion(v.Serialized), robj.RVersion(v.Minimum))
	if d.Extra.Encoding != "" {
		p.printf(0, "%s native encoding %s", p.c.Dim("#"), d.Extra.Encoding)
	}
}

func (p *printer) label(label string) string {
	if label == "" {
		return ""
	}
	return p.c.Tag("%s", label) + ": "
}

func (p *printer) node(label string, n *robj.Node, depth int) {
	if p.err != nil {
		return
	}
	lbl := p.label(label)
	if n == nil {
		p.printf(depth, "%s%s", lbl, p.c.NA("<nil>"))
		return
	}
	if p.maxDepth > 0 && depth >= p.maxDepth {
		p.printf(depth, "%s%s ...", lbl, p.c.Type("%s", n.Type))
		return
	}
	typ := p.c.Type("%s", n.Type)
	if n.Object {
		typ += p.c.Dim(" object")
	}
	switch {
	case n.Type == robj.RefType:
		p.printf(depth, "%s%s %s", lbl, p.c.Ref("ref %d", n.Ref), p.describe(n.Target))
		return
	case n.Type.IsSingleton():
		p.printf(depth, "%s%s", lbl, typ)
		return
	case n.Type == robj.SymType:
		name, _ := n.SymbolName()
		p.printf(depth, "%s%s %s", lbl, typ, p.c.Value("%s", name))
	case n.Type == robj.CharType:
		p.printf(depth, "%s%s %s", lbl, typ, p.text(n))
	case n.Type.IsAtomic() || n.Type == robj.RawType:
		p.printf(depth, "%s%s[%d] %s", lbl, typ, n.Len(), p.values(n))
	case n.Type == robj.StrType:
		p.printf(depth, "%s%s[%d] %s", lbl, typ, n.Len(), p.strings(n))
	case n.Type.IsVector():
		p.printf(depth, "%s%s[%d]", lbl, typ, n.Len())
		for i, e := range n.Elems {
			p.node(fmt.Sprintf("[%d]", i+1), e, depth+1)
		}
	case n.Type.IsPairlist():
		p.pairlist(lbl, typ, n, depth)
	case n.Type == robj.EnvType:
		p.printf(depth, "%s%s locked=%d", lbl, typ, n.Env.Locked)
		p.node("enclosure", n.Env.Enclosure, depth+1)
		p.node("frame", n.Env.Frame, depth+1)
		p.node("hashtab", n.Env.HashTab, depth+1)
		p.node("attributes", n.Env.Attributes, depth+1)
	case n.Type == robj.AltrepType:
		k, err := altrep.ClassOf(n)
		class := k.String()
		if err != nil {
			class = "?"
		}
		p.printf(depth, "%s%s %s", lbl, typ, p.c.Value("%s", class))
		p.node("state", n.Altrep.State, depth+1)
		p.node("attributes", n.Altrep.Attributes, depth+1)
	case n.Type == robj.BytecodeType:
		p.printf(depth, "%s%s reps=%d consts=%d", lbl, typ, n.Bytecode.Reps, len(n.Bytecode.Consts))
		p.node("code", n.Bytecode.Code, depth+1)
	case n.Type == robj.SpecialType || n.Type == robj.BuiltinType:
		p.printf(depth, "%s%s %s", lbl, typ, p.c.Value("%s", n.Bytes))
	case n.Type == robj.PersistType || n.Type == robj.PackageType || n.Type == robj.NamespaceType:
		p.printf(depth, "%s%s %s", lbl, typ, p.strings(n))
	default:
		p.printf(depth, "%s%s", lbl, typ)
		for i, e := range n.Elems {
			p.node(strconv.Itoa(i), e, depth+1)
		}
	}
	if n.Attributes != nil && !n.Type.IsPairlist() {
		p.attributes(n.Attributes, depth+1)
	}
}

func (p *printer) pairlist(lbl, typ string, n *robj.Node, depth int) {
	p.printf(depth, "%s%s(%d)", lbl, typ, n.Len())
	for i := range n.Pairs.Cells {
		c := &n.Pairs.Cells[i]
		name, ok := c.Tag.SymbolName()
		if !ok {
			name = fmt.Sprintf("[%d]", i+1)
		}
		p.node(name, c.Car, depth+1)
		if c.Attributes != nil {
			p.attributes(c.Attributes, depth+2)
		}
	}
	if end := n.Pairs.End; end != nil && end.Type != robj.NilValueType {
		p.node("end", end, depth+1)
	}
}

func (p *printer) attributes(attrs *robj.Node, depth int) {
	attrs = attrs.Resolve()
	if attrs.Pairs == nil {
		p.node("@", attrs, depth)
		return
	}
	for i := range attrs.Pairs.Cells {
		c := &attrs.Pairs.Cells[i]
		name, _ := c.Tag.SymbolName()
		p.node("@"+name, c.Car, depth)
	}
}

func (p *printer) describe(n *robj.Node) string {
	if n == nil {
		return ""
	}
	if name, ok := n.SymbolName(); ok {
		return p.c.Dim("(%s)", name)
	}
	return p.c.Dim("(%s)", n.Type)
}

func (p *printer) text(n *robj.Node) string {
	if n.Missing {
		return p.c.NA("NA")
	}
	s, err := n.Text(p.native)
	if err != nil {
		return p.c.Str("%q", n.Bytes)
	}
	return p.c.Str("%q", s)
}

func (p *printer) strings(n *robj.Node) string {
	parts := make([]string, 0, min(len(n.Elems), maxShown+1))
	for i, e := range n.Elems {
		if i == maxShown {
			parts = append(parts, p.c.Dim("..."))
			break
		}
		e = e.Resolve()
		if e == nil || e.Type != robj.CharType {
			parts = append(parts, p.c.NA("?"))
			continue
		}
		parts = append(parts, p.text(e))
	}
	return strings.Join(parts, " ")
}

func (p *printer) values(n *robj.Node) string {
	l := n.Len()
	parts := make([]string, 0, min(l, maxShown+1))
	for i := range l {
		if i == maxShown {
			parts = append(parts, p.c.Dim("..."))
			break
		}
		if n.Type != robj.RawType && n.IsNA(i) {
			parts = append(parts, p.c.NA("NA"))
			continue
		}
		parts = append(parts, p.c.value(n.Type)("%s", element(n, i)))
	}
	return strings.Join(parts, " ")
}

// element formats element i of an atomic or raw vector the way R prints
// it.
func element(n *robj.Node, i int) string {
	switch n.Type {
	case robj.LogicalType:
		if n.Ints[i] != 0 {
			return "TRUE"
		}
		return "FALSE"
	case robj.IntType:
		return strconv.Itoa(int(n.Ints[i]))
	case robj.RealType:
		return altrep.FormatReal(n.Reals[i], 0)
	case robj.ComplexType:
		c := n.Complexes[i]
		im := altrep.FormatReal(imag(c), 0)
		if !strings.HasPrefix(im, "-") {
			im = "+" + im
		}
		return altrep.FormatReal(real(c), 0) + im + "i"
	case robj.RawType:
		return fmt.Sprintf("%02x", n.Bytes[i])
	}
	return ""
}
