package parse

import (
	"fmt"

	"github.com/signadot/go-rdata/robj"
)

// bcReader reads the body of a BCODESXP. Language cells in the constant
// pools use their own encoding: shared cells are numbered with BCREPDEF
// and referred to with BCREPREF, and reps is the size of that numbering.
type bcReader struct {
	*parser
	reps int32
}

func (b *bcReader) code(depth int) (*robj.Bytecode, error) {
	if depth > b.opts.maxDepth {
		return nil, fmt.Errorf("%w: more than %d levels", ErrDepth, b.opts.maxDepth)
	}
	code, err := b.item(depth + 1)
	if err != nil {
		return nil, err
	}
	n, err := b.r.ReadInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %d bytecode constants", robj.ErrFormat, n)
	}
	bc := &robj.Bytecode{Code: code, Consts: make([]robj.BCConst, 0, min(int(n), 1<<12))}
	for range n {
		t, err := b.r.ReadInt()
		if err != nil {
			return nil, err
		}
		c := robj.BCConst{Code: t}
		switch robj.Type(t) {
		case robj.BytecodeType:
			c.Bytecode, err = b.code(depth + 1)
		case robj.LangType, robj.ListType, robj.BCRepDefType, robj.BCRepRefType,
			robj.AttrLangType, robj.AttrListType:
			c.Lang, err = b.lang(t, depth+1)
		default:
			c.Node, err = b.item(depth + 1)
		}
		if err != nil {
			return nil, err
		}
		bc.Consts = append(bc.Consts, c)
	}
	return bc, nil
}

func (b *bcReader) slot() (int32, error) {
	pos, err := b.r.ReadInt()
	if err != nil {
		return 0, err
	}
	if pos < 0 || pos >= b.reps {
		return 0, fmt.Errorf("%w: bytecode cell slot %d of %d", robj.ErrFormat, pos, b.reps)
	}
	return pos, nil
}

func (b *bcReader) lang(code int32, depth int) (*robj.BCLang, error) {
	if depth > b.opts.maxDepth {
		return nil, fmt.Errorf("%w: more than %d levels", ErrDepth, b.opts.maxDepth)
	}
	l := &robj.BCLang{Code: code}
	var err error
	switch robj.Type(code) {
	case robj.BCRepRefType:
		l.Pos, err = b.slot()
		return l, err
	case robj.BCRepDefType:
		if l.Pos, err = b.slot(); err != nil {
			return nil, err
		}
		if l.Inner, err = b.r.ReadInt(); err != nil {
			return nil, err
		}
		code = l.Inner
	case robj.LangType, robj.ListType, robj.AttrLangType, robj.AttrListType:
	default:
		// any other node is preceded by a pad word
		l.Item, err = b.item(depth + 1)
		return l, err
	}
	switch robj.Type(code) {
	case robj.AttrLangType, robj.AttrListType:
		if l.Attributes, err = b.item(depth + 1); err != nil {
			return nil, err
		}
	case robj.LangType, robj.ListType:
	default:
		return nil, fmt.Errorf("%w: bytecode cell of type %d", robj.ErrFormat, code)
	}
	if l.Tag, err = b.item(depth + 1); err != nil {
		return nil, err
	}
	for _, dst := range []**robj.BCLang{&l.Car, &l.Cdr} {
		next, err := b.r.ReadInt()
		if err != nil {
			return nil, err
		}
		if *dst, err = b.lang(next, depth+1); err != nil {
			return nil, err
		}
	}
	return l, nil
}
