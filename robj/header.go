package robj

import "fmt"

const (
	objectBit    = 1 << 8
	attributeBit = 1 << 9
	tagBit       = 1 << 10
	gpShift      = 12

	// MaxPackedRef is the largest reference id that fits in the flags word.
	// Larger ids are written as a separate integer after a bare RefType flag.
	MaxPackedRef = (1<<31 - 1) >> 8
)

// Header is the per node flag word of the wire format.
type Header struct {
	Type          Type
	Object        bool
	HasAttributes bool
	HasTag        bool
	// GP holds the 16 general purpose bits, the "levels" of R. For CHARSXP
	// they carry the declared text encoding.
	GP uint16
	// Ref is the 1-based reference table index of a back-reference and 0
	// for every other node.
	Ref int
}

// HeaderFromFlags unpacks a flag word. For a back-reference whose index was
// too large to pack, Ref is 0 and the caller must read the index that
// follows.
func HeaderFromFlags(flags int32) Header {
	u := uint32(flags)
	h := Header{Type: Type(u & 0xFF)}
	if h.Type == RefType {
		h.Ref = int(u >> 8)
		return h
	}
	h.Object = u&objectBit != 0
	h.HasAttributes = u&attributeBit != 0
	h.HasTag = u&tagBit != 0
	h.GP = uint16(u >> gpShift)
	return h
}

// Flags packs the header. A back-reference with an id above MaxPackedRef
// packs to a bare RefType, the id then follows as a separate integer.
func (h Header) Flags() int32 {
	if h.Type == RefType {
		if h.Ref > MaxPackedRef {
			return int32(RefType)
		}
		return int32(uint32(h.Ref)<<8 | uint32(RefType))
	}
	u := uint32(h.Type) | uint32(h.GP)<<gpShift
	if h.Object {
		u |= objectBit
	}
	if h.HasAttributes {
		u |= attributeBit
	}
	if h.HasTag {
		u |= tagBit
	}
	return int32(u)
}

// Check enforces the back-reference invariant.
func (h Header) Check() error {
	if (h.Ref != 0) != (h.Type == RefType) {
		return fmt.Errorf("%w: reference id %d on %s node", ErrInvalid, h.Ref, h.Type)
	}
	if h.Ref < 0 {
		return fmt.Errorf("%w: negative reference id %d", ErrInvalid, h.Ref)
	}
	return nil
}

func (h Header) String() string {
	if h.Type == RefType {
		return fmt.Sprintf("%s(%d)", h.Type, h.Ref)
	}
	s := h.Type.String()
	if h.Object {
		s += " obj"
	}
	if h.HasAttributes {
		s += " attr"
	}
	if h.HasTag {
		s += " tag"
	}
	if h.GP != 0 {
		s += fmt.Sprintf(" gp=%#x", h.GP)
	}
	return s
}
