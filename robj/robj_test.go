package robj

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHeaderFlags(t *testing.T) {
	tests := []struct {
		flags int32
		want  Header
	}{
		{254, Header{Type: NilValueType}},
		{531, Header{Type: VecType, HasAttributes: true}},
		{1026, Header{Type: ListType, HasTag: true}},
		{262153, Header{Type: CharType, GP: ASCIIFlag}},
		{787, Header{Type: VecType, Object: true, HasAttributes: true}},
		{511, Header{Type: RefType, Ref: 1}},
	}
	for _, tc := range tests {
		h := HeaderFromFlags(tc.flags)
		if diff := cmp.Diff(tc.want, h); diff != "" {
			t.Errorf("%d: %s", tc.flags, diff)
		}
		if got := h.Flags(); got != tc.flags {
			t.Errorf("%s packs to %d, want %d", h, got, tc.flags)
		}
	}
	big := Header{Type: RefType, Ref: MaxPackedRef + 1}
	if big.Flags() != int32(RefType) {
		t.Errorf("large reference packs to %#x", big.Flags())
	}
}

func TestBuildRejects(t *testing.T) {
	sym := Symbol("x")
	tests := []struct {
		name string
		n    *Node
	}{
		{"ref id on vector", &Node{Header: Header{Type: IntType, Ref: 2}}},
		{"ref without target", &Node{Header: Header{Type: RefType, Ref: 2}}},
		{"ref without id", &Node{Header: Header{Type: RefType}, Target: sym}},
		{"vector attributes", &Node{Header: Header{Type: IntType}, Attributes: Ints([]int32{1}, nil)}},
		{"tag on vector", &Node{Header: Header{Type: IntType}, Tag: sym}},
		{"integer tag", &Node{
			Header: Header{Type: ListType},
			Pairs:  &Pairlist{Cells: []Cell{{Header: Header{Type: ListType}, Tag: Ints(nil, nil), Car: NilValue()}}},
		}},
		{"mask length", &Node{Header: Header{Type: IntType}, Ints: []int32{1, 2}, NA: []bool{true}}},
		{"empty pairlist", &Node{Header: Header{Type: ListType}, Pairs: &Pairlist{}}},
		{"symbol without name", &Node{Header: Header{Type: SymType}}},
		{"env attributes", &Node{Header: Header{Type: EnvType}, Env: &Environment{}, Attributes: NilValue()}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Build(tc.n); !errors.Is(err, ErrInvalid) {
				t.Errorf("got %v, want ErrInvalid", err)
			}
		})
	}
}

func TestWithAttributesObjectBit(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		for pos := range n {
			kvs := make([]KeyVal, n)
			for i := range kvs {
				kvs[i] = KeyVal{Key: "a" + string(rune('a'+i)), Val: Strings("v")}
			}
			kvs[pos].Key = "class"
			res, err := WithAttributes(Ints([]int32{1}, nil), TaggedList(kvs...))
			if err != nil {
				t.Fatal(err)
			}
			if !res.Object || !res.HasAttributes {
				t.Errorf("chain of %d with class at %d: %s", n, pos, res.Header)
			}
		}
	}
	for _, n := range []int{1, 2, 5} {
		kvs := make([]KeyVal, n)
		for i := range kvs {
			kvs[i] = KeyVal{Key: "a" + string(rune('a'+i)), Val: Strings("v")}
		}
		kvs[0].Key = "names"
		res, err := WithAttributes(Ints([]int32{1}, nil), TaggedList(kvs...))
		if err != nil {
			t.Fatal(err)
		}
		if res.Object || !res.HasAttributes {
			t.Errorf("chain of %d without class: %s", n, res.Header)
		}
	}
}

func TestPairlistOfType(t *testing.T) {
	for _, typ := range []Type{ListType, LangType, DotType} {
		n, err := PairlistOf(typ, Symbol("f"))
		if err != nil {
			t.Fatal(err)
		}
		if n.Type != typ || n.Pairs.Cells[0].Type != typ {
			t.Errorf("got %s, want %s", n.Type, typ)
		}
	}
	n, err := Build(&Node{Pairs: &Pairlist{Cells: []Cell{{Header: Header{Type: LangType}, Car: Symbol("g")}}}})
	if err != nil {
		t.Fatal(err)
	}
	if n.Type != LangType {
		t.Errorf("untyped node with cells: got %s", n.Type)
	}
}

func TestWithAttributesOnPairlist(t *testing.T) {
	call, err := PairlistOf(LangType, Symbol("f"), Reals([]float64{1}, nil))
	if err != nil {
		t.Fatal(err)
	}
	res, err := WithAttributes(call, TaggedList(KeyVal{Key: "class", Val: Strings("formula")}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Pairs.Cells[0].HasAttributes || !res.Object || res.Type != LangType {
		t.Errorf("got %s", res.Header)
	}
	if diff := cmp.Diff([]string{"formula"}, res.Class()); diff != "" {
		t.Error(diff)
	}
}

func TestNAValues(t *testing.T) {
	if !IsNAReal(NAReal()) {
		t.Error("NAReal is not NA")
	}
	if IsNAReal(NaN()) || IsNAReal(math.NaN()) || IsNAReal(1) {
		t.Error("NaN taken for NA")
	}
	n := Reals([]float64{1, math.NaN(), 3}, []bool{false, true, false})
	w := n.WireReals()
	if !IsNAReal(w[1]) || w[0] != 1 {
		t.Errorf("got %v", w)
	}
	ints := Ints([]int32{7, 8}, []bool{true, false})
	if diff := cmp.Diff([]int32{NAInteger, 8}, ints.WireInts()); diff != "" {
		t.Error(diff)
	}
	if diff := cmp.Diff([]bool{false, true}, IntMask([]int32{0, NAInteger})); diff != "" {
		t.Error(diff)
	}
	if IntMask([]int32{1, 2}) != nil {
		t.Error("mask without missing values")
	}
}

func TestText(t *testing.T) {
	latin, err := CharIn("café", "latin1")
	if err != nil {
		t.Fatal(err)
	}
	if latin.GP != Latin1Flag || string(latin.Bytes) != "caf\xe9" {
		t.Errorf("got %s %q", latin.Header, latin.Bytes)
	}
	tests := []struct {
		name   string
		n      *Node
		native string
		want   string
		err    error
	}{
		{"ascii", Char("abc"), "", "abc", nil},
		{"utf8", Char("naïve"), "", "naïve", nil},
		{"latin1 flag", latin, "UTF-8", "café", nil},
		{"native cp1252", &Node{Header: Header{Type: CharType}, Bytes: []byte("\x80")}, "CP1252", "€", nil},
		{"native latin1", &Node{Header: Header{Type: CharType}, Bytes: []byte("\xe9")}, "latin1", "é", nil},
		{"bytes", &Node{Header: Header{Type: CharType, GP: BytesFlag}, Bytes: []byte("\xff")}, "", "\xff", nil},
		{"bad utf8", &Node{Header: Header{Type: CharType, GP: UTF8Flag}, Bytes: []byte("\xff")}, "", "", ErrEncoding},
		{"unknown native", &Node{Header: Header{Type: CharType}, Bytes: []byte("\xff")}, "KOI8-R", "", ErrEncoding},
		{"na", CharNA(), "", "", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.n.Text(tc.native)
			if !errors.Is(err, tc.err) {
				t.Fatalf("got error %v, want %v", err, tc.err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
	if _, err := CharIn("€", "latin1"); !errors.Is(err, ErrEncoding) {
		t.Errorf("euro in latin1: %v", err)
	}
}

func cyclicEnv(name string) *Node {
	env := &Node{Header: Header{Type: EnvType}, Env: &Environment{Enclosure: MustBuild(&Node{Header: Header{Type: GlobalEnvType}})}}
	self, err := NewRef(1, env)
	if err != nil {
		panic(err)
	}
	env.Env.Frame = TaggedList(KeyVal{Key: name, Val: self})
	env.Env.HashTab = NilValue()
	env.Env.Attributes = NilValue()
	return MustBuild(env)
}

func TestEqualCycles(t *testing.T) {
	a, b := cyclicEnv("self"), cyclicEnv("self")
	if !Equal(a, b) {
		t.Error("identical cyclic environments differ")
	}
	if Equal(a, cyclicEnv("other")) {
		t.Error("different bindings compare equal")
	}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("fingerprints differ")
	}
	if Fingerprint(a) == Fingerprint(cyclicEnv("other")) {
		t.Error("fingerprint ignores bindings")
	}
	var visited int
	if err := a.Walk(func(*Node) error { visited++; return nil }); err != nil {
		t.Fatal(err)
	}
	if visited == 0 {
		t.Error("walk visited nothing")
	}
}

func TestEqualValues(t *testing.T) {
	tests := []struct {
		name  string
		a, b  *Node
		equal bool
	}{
		{"nil mask", Ints([]int32{1}, nil), Ints([]int32{1}, []bool{false}), true},
		{"values", Ints([]int32{1}, nil), Ints([]int32{2}, nil), false},
		{"nan bits", Reals([]float64{NaN()}, nil), Reals([]float64{NAReal()}, nil), false},
		{"strings", Strings("a", "b"), Strings("a", "b"), true},
		{"types", Ints(nil, nil), Logicals(nil, nil), false},
	}
	for _, tc := range tests {
		if got := Equal(tc.a, tc.b); got != tc.equal {
			t.Errorf("%s: got %v", tc.name, got)
		}
	}
}

func TestCheck(t *testing.T) {
	d := New(Ints([]int32{1}, nil))
	if err := d.Check(); err != nil {
		t.Fatal(err)
	}
	d.Versions = VersionsFor(2)
	if err := d.Check(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("got %v", err)
	}
	d.Extra.Encoding = ""
	if err := d.Check(); err != nil {
		t.Error(err)
	}
	if RVersion(DefaultWriterVersion) != "4.2.1" {
		t.Errorf("got %s", RVersion(DefaultWriterVersion))
	}
}

func TestTypeText(t *testing.T) {
	for _, ty := range Types() {
		d, err := ty.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Type
		if err := back.UnmarshalText(d); err != nil {
			t.Fatal(err)
		}
		if back != ty {
			t.Errorf("%s came back as %s", ty, back)
		}
	}
}
