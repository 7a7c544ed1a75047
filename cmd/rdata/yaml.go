package main

import (
	"fmt"
	"io"

	"github.com/signadot/go-rdata/altrep"
	"github.com/signadot/go-rdata/robj"

	"github.com/goccy/go-yaml"
)

func dumpYAML(w io.Writer, name string, d *robj.RData) error {
	doc := yaml.MapSlice{
		{Key: "file", Value: name},
		{Key: "format", Value: d.Versions.Format},
		{Key: "writer", Value: robj.RVersion(d.Versions.Serialized)},
		{Key: "reader", Value: robj.RVersion(d.Versions.Minimum)},
	}
	if d.Extra.Encoding != "" {
		doc = append(doc, yaml.MapItem{Key: "encoding", Value: d.Extra.Encoding})
	}
	doc = append(doc, yaml.MapItem{Key: "object", Value: toYAML(d.Object, d.Extra.Encoding)})
	out, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// toYAML maps a graph onto plain values. Back-references become
// {ref: id} so shared and cyclic graphs stay finite.
func toYAML(n *robj.Node, native string) any {
	if n == nil {
		return nil
	}
	switch {
	case n.Type == robj.RefType:
		return yaml.MapSlice{{Key: "ref", Value: n.Ref}}
	case n.Type == robj.NilValueType:
		return nil
	case n.Type.IsSingleton():
		return n.Type.String()
	case n.Type == robj.SymType:
		name, _ := n.SymbolName()
		return yaml.MapSlice{{Key: "symbol", Value: name}}
	case n.Type == robj.CharType:
		return charYAML(n, native)
	}
	var body any
	switch {
	case n.Type.IsAtomic():
		body = atomicYAML(n)
	case n.Type == robj.RawType:
		body = fmt.Sprintf("%x", n.Bytes)
	case n.Type.IsVector():
		elems := make([]any, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = toYAML(e, native)
		}
		body = elems
	case n.Type.IsPairlist():
		body = pairlistYAML(n.Pairs, native)
	case n.Type == robj.EnvType:
		body = yaml.MapSlice{
			{Key: "locked", Value: n.Env.Locked != 0},
			{Key: "enclosure", Value: toYAML(n.Env.Enclosure, native)},
			{Key: "frame", Value: toYAML(n.Env.Frame, native)},
			{Key: "hashtab", Value: toYAML(n.Env.HashTab, native)},
		}
	case n.Type == robj.AltrepType:
		k, _ := altrep.ClassOf(n)
		body = yaml.MapSlice{
			{Key: "class", Value: k.String()},
			{Key: "state", Value: toYAML(n.Altrep.State, native)},
		}
	case n.Type == robj.SpecialType || n.Type == robj.BuiltinType:
		body = string(n.Bytes)
	case n.Type == robj.BytecodeType:
		body = yaml.MapSlice{
			{Key: "reps", Value: n.Bytecode.Reps},
			{Key: "consts", Value: len(n.Bytecode.Consts)},
		}
	default:
		elems := make([]any, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = toYAML(e, native)
		}
		body = elems
	}
	attrs := n.Attributes
	if n.Type == robj.EnvType {
		attrs = n.Env.Attributes
	}
	if n.Type == robj.AltrepType {
		attrs = n.Altrep.Attributes
	}
	if n.Type.IsPairlist() && n.Pairs != nil && len(n.Pairs.Cells) > 0 {
		attrs = n.Pairs.Cells[0].Attributes
	}
	if attrs != nil && attrs.Type == robj.NilValueType {
		attrs = nil
	}
	if !n.Object && attrs == nil && (n.Type.IsAtomic() || n.Type.IsVector() || n.Type == robj.ListType) {
		return body
	}
	res := yaml.MapSlice{
		{Key: "type", Value: n.Type.String()},
		{Key: "value", Value: body},
	}
	if n.Object {
		res = append(res, yaml.MapItem{Key: "object", Value: true})
	}
	if attrs != nil {
		res = append(res, yaml.MapItem{Key: "attributes", Value: toYAML(attrs, native)})
	}
	return res
}

func charYAML(n *robj.Node, native string) any {
	if n.Missing {
		return nil
	}
	s, err := n.Text(native)
	if err != nil {
		return fmt.Sprintf("%x", n.Bytes)
	}
	return s
}

func atomicYAML(n *robj.Node) []any {
	res := make([]any, n.Len())
	for i := range res {
		if n.IsNA(i) {
			continue
		}
		switch n.Type {
		case robj.LogicalType:
			res[i] = n.Ints[i] != 0
		case robj.IntType:
			res[i] = n.Ints[i]
		case robj.RealType:
			res[i] = n.Reals[i]
		case robj.ComplexType:
			res[i] = element(n, i)
		}
	}
	return res
}

// pairlistYAML renders a fully tagged chain as a mapping and any other
// chain as a sequence.
func pairlistYAML(pl *robj.Pairlist, native string) any {
	tagged := true
	for i := range pl.Cells {
		if _, ok := pl.Cells[i].Tag.SymbolName(); !ok {
			tagged = false
			break
		}
	}
	if tagged {
		res := make(yaml.MapSlice, 0, len(pl.Cells))
		for i := range pl.Cells {
			name, _ := pl.Cells[i].Tag.SymbolName()
			res = append(res, yaml.MapItem{Key: name, Value: toYAML(pl.Cells[i].Car, native)})
		}
		return res
	}
	res := make([]any, 0, len(pl.Cells))
	for i := range pl.Cells {
		c := &pl.Cells[i]
		v := toYAML(c.Car, native)
		if name, ok := c.Tag.SymbolName(); ok {
			v = yaml.MapSlice{{Key: name, Value: v}}
		}
		res = append(res, v)
	}
	return res
}
