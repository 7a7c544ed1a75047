package altrep

import (
	"math"

	"github.com/signadot/go-rdata/robj"
)

// intSeqType is the base type code recorded in a compact_intseq info list.
const intSeqType = int32(robj.IntType)

// CompactIntRange returns a compact_intseq node for the n integers start,
// start+step, ... with step 1 or -1.
func CompactIntRange(start int32, n int, step int32) *robj.Node {
	info, _ := robj.PairlistOf(robj.ListType,
		robj.Symbol("compact_intseq"),
		robj.Symbol("base"),
		robj.Ints([]int32{intSeqType}, nil),
	)
	return robj.MustBuild(&robj.Node{
		Header: robj.Header{Type: robj.AltrepType},
		Altrep: &robj.Altrep{
			Info:       info,
			State:      robj.Reals([]float64{float64(n), float64(start), float64(step)}, nil),
			Attributes: robj.NilValue(),
		},
	})
}

// Compact returns the compact form of n when n is a plain integer vector
// of at least two elements counting up or down by one, without missing
// values or attributes.
func Compact(n *robj.Node) (*robj.Node, bool) {
	if n == nil || n.Type != robj.IntType || n.Object || n.HasAttributes || n.Attributes != nil || n.GP != 0 {
		return nil, false
	}
	v := n.Ints
	if len(v) < 2 || n.NA != nil {
		return nil, false
	}
	step := int64(v[1]) - int64(v[0])
	if step != 1 && step != -1 {
		return nil, false
	}
	for i := 1; i < len(v); i++ {
		if int64(v[i])-int64(v[i-1]) != step {
			return nil, false
		}
	}
	if v[0] == math.MinInt32 {
		return nil, false
	}
	return CompactIntRange(v[0], len(v), int32(step)), true
}
