package robj

import "math"

const (
	// NAInteger is the bit pattern of a missing integer or logical.
	NAInteger int32 = math.MinInt32

	naRealBits = 0x7FF00000000007A2
	nanBits    = 0x7FF8000000000000
	naLowWord  = 1954
)

// NAReal returns R's NA_real_, a NaN whose low word is 1954.
func NAReal() float64 {
	return math.Float64frombits(naRealBits)
}

// NaN returns the NaN R writes for R_NaN. It differs from math.NaN in its
// payload.
func NaN() float64 {
	return math.Float64frombits(nanBits)
}

// IsNAReal reports whether x is NA_real_ rather than an ordinary NaN. Like R
// it only inspects the low word, so quieted NA payloads still count.
func IsNAReal(x float64) bool {
	return math.IsNaN(x) && uint32(math.Float64bits(x)) == naLowWord
}

// IsNAComplex reports whether either part of x is NA_real_.
func IsNAComplex(x complex128) bool {
	return IsNAReal(real(x)) || IsNAReal(imag(x))
}

// IntMask returns the missing value mask for raw integers, nil when no
// element is NAInteger.
func IntMask(v []int32) []bool {
	var mask []bool
	for i, x := range v {
		if x != NAInteger {
			continue
		}
		if mask == nil {
			mask = make([]bool, len(v))
		}
		mask[i] = true
	}
	return mask
}

// RealMask returns the missing value mask for raw doubles.
func RealMask(v []float64) []bool {
	var mask []bool
	for i, x := range v {
		if !IsNAReal(x) {
			continue
		}
		if mask == nil {
			mask = make([]bool, len(v))
		}
		mask[i] = true
	}
	return mask
}

// ComplexMask returns the missing value mask for raw complex numbers.
func ComplexMask(v []complex128) []bool {
	var mask []bool
	for i, x := range v {
		if !IsNAComplex(x) {
			continue
		}
		if mask == nil {
			mask = make([]bool, len(v))
		}
		mask[i] = true
	}
	return mask
}

// WireInts returns the integers to write for an integer or logical vector:
// masked elements become NAInteger.
func (n *Node) WireInts() []int32 {
	if n.NA == nil {
		return n.Ints
	}
	res := make([]int32, len(n.Ints))
	for i, x := range n.Ints {
		if i < len(n.NA) && n.NA[i] {
			x = NAInteger
		}
		res[i] = x
	}
	return res
}

// WireReals returns the doubles to write. Masked elements keep their
// stored bits when those already encode NA, so non-canonical NA payloads
// read from a stream are written back unchanged.
func (n *Node) WireReals() []float64 {
	if n.NA == nil {
		return n.Reals
	}
	res := make([]float64, len(n.Reals))
	for i, x := range n.Reals {
		if i < len(n.NA) && n.NA[i] && !IsNAReal(x) {
			x = NAReal()
		}
		res[i] = x
	}
	return res
}

// WireComplexes returns the complex numbers to write.
func (n *Node) WireComplexes() []complex128 {
	if n.NA == nil {
		return n.Complexes
	}
	res := make([]complex128, len(n.Complexes))
	for i, x := range n.Complexes {
		if i < len(n.NA) && n.NA[i] && !IsNAComplex(x) {
			x = complex(NAReal(), NAReal())
		}
		res[i] = x
	}
	return res
}
