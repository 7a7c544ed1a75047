package altrep

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/signadot/go-rdata/robj"
)

// seqState reads the (length, first, step) triple of a compact sequence.
// R writes it as a double vector; older writers used integers.
func seqState(state *robj.Node) (n int, first, step float64, err error) {
	var v []float64
	switch state.Type {
	case robj.RealType:
		v = state.Reals
	case robj.IntType:
		for _, x := range state.Ints {
			v = append(v, float64(x))
		}
	default:
		return 0, 0, 0, fmt.Errorf("%w: sequence state of type %s", robj.ErrFormat, state.Type)
	}
	if len(v) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: sequence state of length %d", robj.ErrFormat, len(v))
	}
	if v[0] < 0 || v[0] > math.MaxInt32 || v[0] != math.Trunc(v[0]) {
		return 0, 0, 0, fmt.Errorf("%w: sequence length %g", robj.ErrFormat, v[0])
	}
	return int(v[0]), v[1], v[2], nil
}

func expandIntSeq(state *robj.Node) (*robj.Node, error) {
	n, first, step, err := seqState(state)
	if err != nil {
		return nil, err
	}
	last := first + float64(n-1)*step
	if n > 0 && (math.Abs(first) > math.MaxInt32 || math.Abs(last) > math.MaxInt32) {
		return nil, fmt.Errorf("%w: integer sequence leaves the int32 range", robj.ErrFormat)
	}
	v := make([]int32, n)
	for i := range v {
		v[i] = int32(first) + int32(i)*int32(step)
	}
	return &robj.Node{Header: robj.Header{Type: robj.IntType}, Ints: v}, nil
}

func expandRealSeq(state *robj.Node) (*robj.Node, error) {
	n, first, step, err := seqState(state)
	if err != nil {
		return nil, err
	}
	v := make([]float64, n)
	for i := range v {
		v[i] = first + float64(i)*step
	}
	return &robj.Node{Header: robj.Header{Type: robj.RealType}, Reals: v}, nil
}

// wrapperTypes maps each wrap_* class to the type of vector it wraps.
var wrapperTypes = map[string]robj.Type{
	"wrap_integer": robj.IntType,
	"wrap_logical": robj.LogicalType,
	"wrap_real":    robj.RealType,
	"wrap_complex": robj.ComplexType,
	"wrap_string":  robj.StrType,
	"wrap_raw":     robj.RawType,
	"wrap_list":    robj.VecType,
}

// expandWrapper returns the expander of a wrap_* class around vectors of
// type t. The state is (wrapped vector . metadata).
func expandWrapper(t robj.Type) Expander {
	return func(state *robj.Node) (*robj.Node, error) {
		if !state.Type.IsPairlist() || state.Pairs == nil {
			return nil, fmt.Errorf("%w: wrapper state of type %s", robj.ErrFormat, state.Type)
		}
		w := state.Pairs.Cells[0].Car.Resolve()
		if w == nil || w.Type != t {
			got := robj.NilValueType
			if w != nil {
				got = w.Type
			}
			return nil, fmt.Errorf("%w: %s wrapper around %s", robj.ErrFormat, t, got)
		}
		res := *w
		res.Ref = 0
		return &res, nil
	}
}

// expandDeferredString converts the (argument . scipen) state of a
// deferred string to the character vector as.character would give.
func expandDeferredString(state *robj.Node) (*robj.Node, error) {
	if !state.Type.IsPairlist() || state.Pairs == nil {
		return nil, fmt.Errorf("%w: deferred string state of type %s", robj.ErrFormat, state.Type)
	}
	arg := state.Pairs.Cells[0].Car.Resolve()
	scipen := 0
	if len(state.Pairs.Cells) == 1 {
		if info := state.Pairs.End.Resolve(); info != nil && info.Type == robj.IntType && len(info.Ints) > 0 && !info.IsNA(0) {
			scipen = int(info.Ints[0])
		}
	}
	if arg == nil {
		return nil, fmt.Errorf("%w: deferred string without argument", robj.ErrFormat)
	}
	var elems []*robj.Node
	switch arg.Type {
	case robj.IntType:
		elems = make([]*robj.Node, len(arg.Ints))
		for i, x := range arg.Ints {
			if arg.IsNA(i) {
				elems[i] = robj.CharNA()
				continue
			}
			elems[i] = robj.Char(strconv.FormatInt(int64(x), 10))
		}
	case robj.RealType:
		elems = make([]*robj.Node, len(arg.Reals))
		for i, x := range arg.Reals {
			if arg.IsNA(i) || robj.IsNAReal(x) {
				elems[i] = robj.CharNA()
				continue
			}
			elems[i] = robj.Char(FormatReal(x, scipen))
		}
	default:
		return nil, fmt.Errorf("%w: deferred string of %s", robj.ErrFormat, arg.Type)
	}
	return robj.StringsOf(elems...), nil
}

// FormatReal renders x the way as.character does: up to 15 significant
// digits, in fixed notation unless scientific notation is shorter by more
// than scipen characters.
func FormatReal(x float64, scipen int) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Inf"
	case math.IsInf(x, -1):
		return "-Inf"
	case x == 0:
		return "0"
	}
	e := strconv.FormatFloat(x, 'e', 14, 64)
	mant, exp, _ := strings.Cut(e, "e")
	e10, _ := strconv.Atoi(exp)
	neg := strings.HasPrefix(mant, "-")
	mant = strings.TrimPrefix(mant, "-")
	digits := strings.TrimRight(strings.Replace(mant, ".", "", 1), "0")
	if digits == "" {
		digits = "0"
	}
	sign := ""
	if neg {
		sign = "-"
	}

	sci := digits[:1]
	if len(digits) > 1 {
		sci += "." + digits[1:]
	}
	esign := "+"
	if e10 < 0 {
		esign = "-"
	}
	ea := e10
	if ea < 0 {
		ea = -ea
	}
	sci = fmt.Sprintf("%s%se%s%02d", sign, sci, esign, ea)

	var fixed string
	switch {
	case e10 >= len(digits)-1:
		fixed = digits + strings.Repeat("0", e10-len(digits)+1)
	case e10 >= 0:
		fixed = digits[:e10+1] + "." + digits[e10+1:]
	default:
		fixed = "0." + strings.Repeat("0", -e10-1) + digits
	}
	fixed = sign + fixed
	if len(fixed) <= len(sci)+scipen {
		return fixed
	}
	return sci
}
