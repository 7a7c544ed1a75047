package parse

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/go-rdata/encode"
	"github.com/signadot/go-rdata/format"
	"github.com/signadot/go-rdata/robj"
)

// stream assembles an XDR stream: ints become 4 byte words, float64s 8
// byte words, strings raw bytes and nested slices are flattened.
func stream(parts ...any) []byte {
	var b []byte
	for _, p := range parts {
		switch x := p.(type) {
		case int:
			b = binary.BigEndian.AppendUint32(b, uint32(int32(x)))
		case uint32:
			b = binary.BigEndian.AppendUint32(b, x)
		case float64:
			b = binary.BigEndian.AppendUint64(b, math.Float64bits(x))
		case string:
			b = append(b, x...)
		case []any:
			b = append(b, stream(x...)...)
		default:
			panic(x)
		}
	}
	return b
}

const (
	asciiChar  = 9 | 1<<6<<12
	taggedList = 2 | 1<<10
	withAttr   = 1 << 9
	nilValue   = 254
)

var v3 = []any{"X\n", 3, 0x40201, 0x30500, 5, "UTF-8"}

func char(s string) []any { return []any{asciiChar, len(s), s} }
func sym(s string) []any  { return []any{1, char(s)} }
func ref(id int) int      { return id<<8 | 255 }

// namedInts is list(c(x=1L), c(y=2L)) with names c("a", "b"): the names
// symbol is written once and referenced twice.
func namedInts() []byte {
	return stream(v3,
		19|withAttr, 2,
		13|withAttr, 1, 1,
		taggedList, sym("names"), 16, 1, char("x"), nilValue,
		13|withAttr, 1, 2,
		taggedList, ref(1), 16, 1, char("y"), nilValue,
		taggedList, ref(1), 16, 2, char("a"), char("b"), nilValue,
	)
}

func mustParse(t *testing.T, b []byte, opts ...ParseOption) *robj.RData {
	t.Helper()
	d, err := ParseBytes(b, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func mustEncode(t *testing.T, d *robj.RData, opts ...encode.EncodeOption) []byte {
	t.Helper()
	b, err := encode.Bytes(d, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestSymbolReference(t *testing.T) {
	in := namedInts()
	d := mustParse(t, in)
	if d.Versions != (robj.Versions{Format: 3, Serialized: 0x40201, Minimum: 0x30500}) {
		t.Errorf("versions %+v", d.Versions)
	}
	if d.Extra.Encoding != "UTF-8" {
		t.Errorf("encoding %q", d.Extra.Encoding)
	}
	obj := d.Object
	if obj.Type != robj.VecType || len(obj.Elems) != 2 {
		t.Fatalf("got %s", obj.Header)
	}
	second := obj.Elems[1].Attributes
	tag := second.Pairs.Cells[0].Tag
	if tag.Type != robj.RefType || tag.Ref != 1 {
		t.Fatalf("second names tag is %s", tag.Header)
	}
	if name, ok := tag.SymbolName(); !ok || name != "names" {
		t.Errorf("tag resolves to %q", name)
	}
	names, _, err := obj.Attr("names").StringsText(d.Extra.Encoding)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, names); diff != "" {
		t.Error(diff)
	}
	if out := mustEncode(t, d); !bytes.Equal(in, out) {
		t.Errorf("round trip differs:\n%x\n%x", in, out)
	}
}

func TestASCIIRoundTrip(t *testing.T) {
	d := mustParse(t, namedInts())
	text := mustEncode(t, d, encode.EncodeFormat(format.ASCIIWire))
	if !bytes.HasPrefix(text, []byte("A\n3\n262657\n197888\n5\nUTF-8\n531\n2\n")) {
		t.Fatalf("unexpected text stream:\n%s", text)
	}
	back := mustParse(t, text)
	if !robj.Equal(d.Object, back.Object) {
		t.Error("ascii round trip changed the graph")
	}
	if again := mustEncode(t, back, encode.EncodeFormat(format.ASCIIWire)); !bytes.Equal(text, again) {
		t.Errorf("ascii re-encoding differs:\n%s\n%s", text, again)
	}
	if bin := mustEncode(t, back, encode.EncodeFormat(format.XDRWire)); !bytes.Equal(namedInts(), bin) {
		t.Error("xdr from ascii differs")
	}
}

func TestASCIIMissingInteger(t *testing.T) {
	in := "A\n3\n262657\n197888\n5\nUTF-8\n13\n2\n1\nNA\n"
	d := mustParse(t, []byte(in))
	if diff := cmp.Diff([]bool{false, true}, d.Object.NA); diff != "" {
		t.Error(diff)
	}
	if out := mustEncode(t, d, encode.EncodeFormat(format.ASCIIWire)); string(out) != in {
		t.Errorf("got %q", out)
	}
}

func TestMissingIntegerFidelity(t *testing.T) {
	in := stream(v3, 13, 3, 1, uint32(0x80000000), 3)
	d := mustParse(t, in)
	obj := d.Object
	if diff := cmp.Diff([]bool{false, true, false}, obj.NA); diff != "" {
		t.Error(diff)
	}
	if obj.Ints[1] != 0 {
		t.Errorf("missing element exposes %d", obj.Ints[1])
	}
	out := mustEncode(t, d)
	if !bytes.Equal(in, out) {
		t.Errorf("got %x", out)
	}
}

func TestRealNAKeepsPayload(t *testing.T) {
	na := math.Float64frombits(0x7FF00000000007A2)
	in := stream(v3, 14, 3, 1.5, na, robj.NaN())
	d := mustParse(t, in)
	if diff := cmp.Diff([]bool{false, true, false}, d.Object.NA); diff != "" {
		t.Error(diff)
	}
	if out := mustEncode(t, d); !bytes.Equal(in, out) {
		t.Errorf("got %x", out)
	}
}

func TestTruncated(t *testing.T) {
	in := namedInts()
	for _, cut := range []int{3, 1, 10, len(in) - 2} {
		_, err := ParseBytes(in[:len(in)-cut])
		if !errors.Is(err, robj.ErrFormat) {
			t.Errorf("cut %d: got %v, want ErrFormat", cut, err)
		}
	}

	text := "A\n3\n262657\n197888\n5\nUTF-8\n13\n1\n12345\n"
	if d := mustParse(t, []byte(text)); !cmp.Equal(d.Object.Ints, []int32{12345}) {
		t.Fatalf("got %v", d.Object.Ints)
	}
	for _, cut := range []int{1, 3, 8} {
		_, err := ParseBytes([]byte(text[:len(text)-cut]))
		if !errors.Is(err, io.ErrUnexpectedEOF) || !errors.Is(err, robj.ErrFormat) {
			t.Errorf("text cut %d: got %v, want truncation", cut, err)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"trailing", append(namedInts(), 0), robj.ErrFormat},
		{"bad magic", []byte("Z\n"), robj.ErrFormat},
		{"native", []byte("B\n"), robj.ErrUnsupported},
		{"version", stream("X\n", 4, 0x40201, 0x30500), robj.ErrUnsupported},
		{"unresolved ref", stream(v3, ref(3)), robj.ErrFormat},
		{"string element", stream(v3, 16, 1, 13, 0), robj.ErrFormat},
		{"unknown type", stream(v3, 100), robj.ErrFormat},
		{"mixed encoding flags", stream(v3, 9|(1<<3|1<<2)<<12, 1, "\xe9"), robj.ErrEncoding},
		{"false ascii flag", stream(v3, asciiChar, 1, "\xe9"), robj.ErrEncoding},
		{"rda mismatch", append([]byte("RDA3\n"), namedInts()...), robj.ErrFormat},
		{"negative length", stream(v3, 13, -5), robj.ErrFormat},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseBytes(tc.in)
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestVersion2(t *testing.T) {
	in := stream("X\n", 2, 0x30603, 0x20300, 10, 2, 1, 0)
	d := mustParse(t, in)
	if d.Versions.Format != 2 || d.Extra.Encoding != "" {
		t.Errorf("got %+v %+v", d.Versions, d.Extra)
	}
	if d.Object.Type != robj.LogicalType {
		t.Errorf("got %s", d.Object.Type)
	}
	if out := mustEncode(t, d); !bytes.Equal(in, out) {
		t.Errorf("got %x", out)
	}
}

func compactIntSeq(start, n int) []byte {
	return stream(v3,
		238,
		2, sym("compact_intseq"), 2, sym("base"), 2, 13, 1, 13, nilValue,
		14, 3, float64(n), float64(start), 1.0,
		nilValue,
	)
}

func TestCompactIntSeq(t *testing.T) {
	in := compactIntSeq(1, 5)
	d := mustParse(t, in)
	if diff := cmp.Diff([]int32{1, 2, 3, 4, 5}, d.Object.Ints); diff != "" {
		t.Error(diff)
	}

	kept := mustParse(t, in, ExpandAltrep(false))
	if kept.Object.Type != robj.AltrepType {
		t.Fatalf("got %s", kept.Object.Type)
	}
	if out := mustEncode(t, kept); !bytes.Equal(in, out) {
		t.Errorf("unexpanded round trip:\n%x\n%x", in, out)
	}
	if out := mustEncode(t, d, encode.EncodeCompact(true)); !bytes.Equal(in, out) {
		t.Errorf("compacted:\n%x\n%x", in, out)
	}
}

// wrapper is an ALTREP wrap_* node whose state is (vector . metadata).
func wrapper(class string, vec []any) []byte {
	return stream(v3,
		238,
		2, sym(class), 2, sym("base"), 2, 13, 1, 13, nilValue,
		2, vec, 13, 2, 0, 0,
		nilValue,
	)
}

func TestWrapInteger(t *testing.T) {
	in := wrapper("wrap_integer", []any{13, 2, 1, 2})
	d := mustParse(t, in)
	if d.Object.Type != robj.IntType {
		t.Fatalf("got %s", d.Object.Type)
	}
	if diff := cmp.Diff([]int32{1, 2}, d.Object.Ints); diff != "" {
		t.Error(diff)
	}

	d = mustParse(t, wrapper("wrap_real", []any{14, 1, 2.5}))
	if diff := cmp.Diff([]float64{2.5}, d.Object.Reals); diff != "" {
		t.Error(diff)
	}

	_, err := ParseBytes(wrapper("wrap_real", []any{13, 2, 1, 2}))
	if !errors.Is(err, robj.ErrFormat) {
		t.Errorf("mismatched wrapper: got %v, want ErrFormat", err)
	}
}

func TestCompactUnknownClass(t *testing.T) {
	in := stream(v3,
		238,
		2, sym("mmap_integer"), 2, sym("mmap"), 2, 13, 1, 13, nilValue,
		nilValue,
		nilValue,
	)
	if _, err := ParseBytes(in); !errors.Is(err, robj.ErrUnsupported) {
		t.Errorf("got %v, want ErrUnsupported", err)
	}
	d := mustParse(t, in, ExpandAltrep(false))
	if d.Object.Type != robj.AltrepType {
		t.Errorf("got %s", d.Object.Type)
	}
}

func TestCyclicEnvironment(t *testing.T) {
	// e <- new.env(); e$self <- e
	in := stream(v3,
		4, 0, 253,
		taggedList, sym("self"), ref(1), nilValue,
		nilValue,
		nilValue,
	)
	d := mustParse(t, in)
	env := d.Object
	if env.Type != robj.EnvType {
		t.Fatalf("got %s", env.Type)
	}
	self := env.Env.Frame.Pairs.Cells[0].Car
	if self.Type != robj.RefType || self.Target != env {
		t.Fatalf("self binding is %s", self.Header)
	}
	if env.Env.Enclosure.Type != robj.GlobalEnvType {
		t.Errorf("enclosure %s", env.Env.Enclosure.Type)
	}
	out := mustEncode(t, d)
	if !bytes.Equal(in, out) {
		t.Errorf("got %x", out)
	}
	if !robj.Equal(env, mustParse(t, out).Object) {
		t.Error("cyclic graphs differ")
	}
}

func TestBytecode(t *testing.T) {
	in := stream(v3,
		21, 1,
		13, 2, 12, 1,
		3,
		244, 0, 6, nilValue, 0, sym("f"), 0, nilValue,
		243, 0,
		14, 14, 1, 1.0,
	)
	d := mustParse(t, in)
	bc := d.Object.Bytecode
	if bc == nil || bc.Reps != 1 || len(bc.Consts) != 3 {
		t.Fatalf("got %+v", bc)
	}
	def := bc.Consts[0].Lang
	if def.Code != int32(robj.BCRepDefType) || def.Inner != int32(robj.LangType) {
		t.Errorf("got %+v", def)
	}
	if name, _ := def.Car.Item.SymbolName(); name != "f" {
		t.Errorf("car %q", name)
	}
	if bc.Consts[1].Lang.Code != int32(robj.BCRepRefType) {
		t.Errorf("got %+v", bc.Consts[1])
	}
	if out := mustEncode(t, d); !bytes.Equal(in, out) {
		t.Errorf("got %x", out)
	}
	if _, err := ParseBytes(stream(v3, 21, 1, 13, 0, 1, 243, 4)); !errors.Is(err, robj.ErrFormat) {
		t.Errorf("out of range slot: %v", err)
	}
}

func TestRDA(t *testing.T) {
	in := stream("RDX3\n", v3, taggedList, sym("x"), 14, 1, 1.5, nilValue)
	d := mustParse(t, in)
	if d.FileType != format.RDAFile {
		t.Errorf("file type %s", d.FileType)
	}
	objs, err := d.Objects()
	if err != nil {
		t.Fatal(err)
	}
	if len(objs) != 1 || objs[0].Key != "x" || objs[0].Val.Reals[0] != 1.5 {
		t.Errorf("got %+v", objs)
	}
	if out := mustEncode(t, d); !bytes.Equal(in, out) {
		t.Errorf("got %x", out)
	}
}

func TestLongPairlist(t *testing.T) {
	const n = 100000
	parts := []any{v3}
	for range n {
		parts = append(parts, 2, 13, 1, 7)
	}
	parts = append(parts, nilValue)
	in := stream(parts...)
	d := mustParse(t, in, ParseMaxDepth(8))
	if got := len(d.Object.Pairs.Cells); got != n {
		t.Errorf("got %d cells", got)
	}
	if out := mustEncode(t, d); !bytes.Equal(in, out) {
		t.Error("round trip differs")
	}
}

func TestMaxDepth(t *testing.T) {
	in := stream(v3, 19, 1, 19, 1, 19, 1, 19, 1, 19, 0)
	if _, err := ParseBytes(in, ParseMaxDepth(2)); !errors.Is(err, ErrDepth) {
		t.Errorf("got %v", err)
	}
	mustParse(t, in, ParseMaxDepth(4))
}

func TestLatin1String(t *testing.T) {
	in := stream(v3, 16, 1, 9|1<<2<<12, 4, "caf\xe9")
	d := mustParse(t, in)
	s, err := d.Object.Elems[0].Text(d.Extra.Encoding)
	if err != nil {
		t.Fatal(err)
	}
	if s != "café" {
		t.Errorf("got %q", s)
	}
}

func TestMissingString(t *testing.T) {
	in := stream(v3, 16, 2, 9, -1, char("b"))
	d := mustParse(t, in)
	if !d.Object.Elems[0].Missing {
		t.Error("expected NA_STRING")
	}
	if out := mustEncode(t, d); !bytes.Equal(in, out) {
		t.Errorf("got %x", out)
	}
}
