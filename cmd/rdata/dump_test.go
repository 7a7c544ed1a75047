package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/signadot/go-rdata/format"
	"github.com/signadot/go-rdata/robj"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

func frame(t *testing.T) *robj.RData {
	t.Helper()
	obj, err := robj.WithAttributes(
		robj.List(robj.Ints([]int32{1, 2}, []bool{false, true}), robj.Strings("a", "b")),
		robj.TaggedList(
			robj.KeyVal{Key: "names", Val: robj.Strings("x", "y")},
			robj.KeyVal{Key: "class", Val: robj.Strings("data.frame")},
		))
	if err != nil {
		t.Fatal(err)
	}
	return robj.New(obj)
}

func TestPrinter(t *testing.T) {
	buf := &bytes.Buffer{}
	p := &printer{w: buf, c: plainColors(), native: "UTF-8"}
	p.node("", frame(t).Object, 0)
	if p.err != nil {
		t.Fatal(p.err)
	}
	want := `VECSXP object[2]
  [1]: INTSXP[2] 1 NA
  [2]: STRSXP[2] "a" "b"
  @names: STRSXP[2] "x" "y"
  @class: STRSXP[1] "data.frame"
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Error(diff)
	}
}

func TestPrinterDepth(t *testing.T) {
	buf := &bytes.Buffer{}
	p := &printer{w: buf, c: plainColors(), maxDepth: 1}
	p.node("", robj.List(robj.List(robj.Ints([]int32{1}, nil))), 0)
	if !strings.Contains(buf.String(), "[1]: VECSXP ...") {
		t.Errorf("got %q", buf.String())
	}
}

func TestYAML(t *testing.T) {
	out, err := yaml.Marshal(toYAML(frame(t).Object, "UTF-8"))
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back["type"] != "VECSXP" || back["object"] != true {
		t.Errorf("got %v", back)
	}
	attrs, ok := back["attributes"].(map[string]any)
	if !ok {
		t.Fatalf("attributes: %v", back["attributes"])
	}
	if diff := cmp.Diff([]any{"x", "y"}, attrs["names"]); diff != "" {
		t.Error(diff)
	}
}

func TestYAMLReference(t *testing.T) {
	sym := robj.Symbol("f")
	ref, err := robj.NewRef(3, sym)
	if err != nil {
		t.Fatal(err)
	}
	got := toYAML(robj.List(sym, ref), "")
	want := []any{
		yaml.MapSlice{{Key: "symbol", Value: "f"}},
		yaml.MapSlice{{Key: "ref", Value: 3}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error(diff)
	}
}

func TestElement(t *testing.T) {
	tests := []struct {
		n    *robj.Node
		want string
	}{
		{robj.Logicals([]bool{true}, nil), "TRUE"},
		{robj.Ints([]int32{-4}, nil), "-4"},
		{robj.Reals([]float64{0.5}, nil), "0.5"},
		{robj.Complexes([]complex128{complex(1, -2)}, nil), "1-2i"},
		{robj.Raw([]byte{0xab}), "ab"},
	}
	for _, tc := range tests {
		if got := element(tc.n, 0); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.n.Type, got, tc.want)
		}
	}
}

func TestLines(t *testing.T) {
	got := lines([]byte{0, 0, 0, 3, 0xff, 1}, format.XDRWire)
	if got != "00000003\nff01\n" {
		t.Errorf("got %q", got)
	}
	if got := lines([]byte("A\n3\n"), format.ASCIIWire); got != "A\n3\n" {
		t.Errorf("got %q", got)
	}
	if firstDiff([]byte("abc"), []byte("abd")) != 2 || firstDiff([]byte("ab"), []byte("abc")) != 2 {
		t.Error("firstDiff")
	}
}

func TestDiff(t *testing.T) {
	cfg := &CheckConfig{MainConfig: &MainConfig{Color: false}}
	var from, to strings.Builder
	for i := range 20 {
		from.WriteString(strings.Repeat("x", i) + "\n")
		if i == 10 {
			to.WriteString("changed\n")
			continue
		}
		to.WriteString(strings.Repeat("x", i) + "\n")
	}
	buf := &bytes.Buffer{}
	cfg.diff(buf, from.String(), to.String())
	out := buf.String()
	for _, want := range []string{"-xxxxxxxxxx\n", "+changed\n", "@@ 7 lines @@\n", "@@ 6 lines @@\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}
