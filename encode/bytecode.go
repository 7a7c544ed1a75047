package encode

import (
	"fmt"

	"github.com/signadot/go-rdata/robj"
)

func (es *EncState) bytecode(b *robj.Bytecode) error {
	if err := es.itemOrNil(b.Code); err != nil {
		return err
	}
	if err := es.w.WriteInt(int32(len(b.Consts))); err != nil {
		return err
	}
	for i := range b.Consts {
		c := &b.Consts[i]
		if err := es.w.WriteInt(c.Code); err != nil {
			return err
		}
		var err error
		switch {
		case c.Bytecode != nil:
			err = es.bytecode(c.Bytecode)
		case c.Lang != nil:
			err = es.bcLang(c.Lang)
		default:
			err = es.itemOrNil(c.Node)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// bcLang writes the body of a bytecode language cell; its code has already
// been written.
func (es *EncState) bcLang(l *robj.BCLang) error {
	code := l.Code
	switch robj.Type(code) {
	case robj.BCRepRefType:
		return es.w.WriteInt(l.Pos)
	case robj.BCRepDefType:
		if err := es.w.WriteInts([]int32{l.Pos, l.Inner}); err != nil {
			return err
		}
		code = l.Inner
	case robj.LangType, robj.ListType, robj.AttrLangType, robj.AttrListType:
	default:
		return es.itemOrNil(l.Item)
	}
	switch robj.Type(code) {
	case robj.AttrLangType, robj.AttrListType:
		if err := es.itemOrNil(l.Attributes); err != nil {
			return err
		}
	case robj.LangType, robj.ListType:
	default:
		return fmt.Errorf("%w: bytecode cell of type %d", robj.ErrInvalid, code)
	}
	if err := es.itemOrNil(l.Tag); err != nil {
		return err
	}
	for _, next := range []*robj.BCLang{l.Car, l.Cdr} {
		if next == nil {
			return fmt.Errorf("%w: incomplete bytecode cell", robj.ErrInvalid)
		}
		if err := es.w.WriteInt(next.Code); err != nil {
			return err
		}
		if err := es.bcLang(next); err != nil {
			return err
		}
	}
	return nil
}
