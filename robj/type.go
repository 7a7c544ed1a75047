package robj

import "fmt"

// Type is the type code of a serialized node. Values below 32 are R SEXP
// types, values from 238 up are the pseudo types the serializer uses for
// shared singletons, references and special encodings.
type Type uint8

const (
	NilType        Type = 0
	SymType        Type = 1
	ListType       Type = 2
	ClosureType    Type = 3
	EnvType        Type = 4
	PromiseType    Type = 5
	LangType       Type = 6
	SpecialType    Type = 7
	BuiltinType    Type = 8
	CharType       Type = 9
	LogicalType    Type = 10
	IntType        Type = 13
	RealType       Type = 14
	ComplexType    Type = 15
	StrType        Type = 16
	DotType        Type = 17
	AnyType        Type = 18
	VecType        Type = 19
	ExprType       Type = 20
	BytecodeType   Type = 21
	ExtPtrType     Type = 22
	WeakRefType    Type = 23
	RawType        Type = 24
	S4Type         Type = 25
	AltrepType     Type = 238
	AttrListType   Type = 239
	AttrLangType   Type = 240
	BaseEnvType    Type = 241
	EmptyEnvType   Type = 242
	BCRepRefType   Type = 243
	BCRepDefType   Type = 244
	GenericRefType Type = 245
	ClassRefType   Type = 246
	PersistType    Type = 247
	PackageType    Type = 248
	NamespaceType  Type = 249
	BaseNSType     Type = 250
	MissingArgType Type = 251
	UnboundType    Type = 252
	GlobalEnvType  Type = 253
	NilValueType   Type = 254
	RefType        Type = 255
)

var typeNames = map[Type]string{
	NilType:        "NILSXP",
	SymType:        "SYMSXP",
	ListType:       "LISTSXP",
	ClosureType:    "CLOSXP",
	EnvType:        "ENVSXP",
	PromiseType:    "PROMSXP",
	LangType:       "LANGSXP",
	SpecialType:    "SPECIALSXP",
	BuiltinType:    "BUILTINSXP",
	CharType:       "CHARSXP",
	LogicalType:    "LGLSXP",
	IntType:        "INTSXP",
	RealType:       "REALSXP",
	ComplexType:    "CPLXSXP",
	StrType:        "STRSXP",
	DotType:        "DOTSXP",
	AnyType:        "ANYSXP",
	VecType:        "VECSXP",
	ExprType:       "EXPRSXP",
	BytecodeType:   "BCODESXP",
	ExtPtrType:     "EXTPTRSXP",
	WeakRefType:    "WEAKREFSXP",
	RawType:        "RAWSXP",
	S4Type:         "S4SXP",
	AltrepType:     "ALTREP_SXP",
	AttrListType:   "ATTRLISTSXP",
	AttrLangType:   "ATTRLANGSXP",
	BaseEnvType:    "BASEENV_SXP",
	EmptyEnvType:   "EMPTYENV_SXP",
	BCRepRefType:   "BCREPREF",
	BCRepDefType:   "BCREPDEF",
	GenericRefType: "GENERICREFSXP",
	ClassRefType:   "CLASSREFSXP",
	PersistType:    "PERSISTSXP",
	PackageType:    "PACKAGESXP",
	NamespaceType:  "NAMESPACESXP",
	BaseNSType:     "BASENAMESPACE_SXP",
	MissingArgType: "MISSINGARG_SXP",
	UnboundType:    "UNBOUNDVALUE_SXP",
	GlobalEnvType:  "GLOBALENV_SXP",
	NilValueType:   "NILVALUE_SXP",
	RefType:        "REFSXP",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("<unknown type %d>", uint8(t))
}

func (t Type) MarshalText() ([]byte, error) {
	if _, ok := typeNames[t]; !ok {
		return nil, fmt.Errorf("%w: unknown type %d", ErrFormat, uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(d []byte) error {
	for k, v := range typeNames {
		if v == string(d) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unrecognized type %q", d)
}

// Types returns every known type in code order.
func Types() []Type {
	res := make([]Type, 0, len(typeNames))
	for i := 0; i < 256; i++ {
		if _, ok := typeNames[Type(i)]; ok {
			res = append(res, Type(i))
		}
	}
	return res
}

// Known reports whether t is a type code the serializer can produce.
func (t Type) Known() bool {
	_, ok := typeNames[t]
	return ok
}

// IsPairlist reports whether nodes of type t are cons cells written as
// attributes, tag, car and cdr.
func (t Type) IsPairlist() bool {
	switch t {
	case ListType, LangType, ClosureType, PromiseType, DotType:
		return true
	}
	return false
}

// IsAtomic reports whether t is a fixed width numeric vector type.
func (t Type) IsAtomic() bool {
	switch t {
	case LogicalType, IntType, RealType, ComplexType:
		return true
	}
	return false
}

// IsVector reports whether t holds an ordered sequence of child nodes.
func (t Type) IsVector() bool {
	switch t {
	case StrType, VecType, ExprType:
		return true
	}
	return false
}

// IsSingleton reports whether t denotes a shared R singleton that is written
// as a bare type code with no payload.
func (t Type) IsSingleton() bool {
	switch t {
	case NilValueType, EmptyEnvType, BaseEnvType, GlobalEnvType,
		UnboundType, MissingArgType, BaseNSType:
		return true
	}
	return false
}

// IsReferencable reports whether nodes of type t are entered in the
// reference table when first seen.
func (t Type) IsReferencable() bool {
	switch t {
	case SymType, EnvType, ExtPtrType, WeakRefType,
		PersistType, PackageType, NamespaceType:
		return true
	}
	return false
}
