// Package codec implements the primitive reads and writes of the two wire
// encodings of R serialization streams.
//
// The binary encoding ("xdr") writes 32-bit integers and IEEE-754 doubles
// big-endian and strings as raw bytes. The text encoding ("ascii") writes
// one field per line: decimal integers with NA for missing values, doubles
// with 16 significant digits (NA, NaN, Inf, -Inf for the special values),
// strings with C escapes and octal escapes for bytes outside the printable
// range, raw bytes as two digit hex.
//
// Lengths are not part of these primitives: the caller reads or writes the
// length as an integer and then the payload.
//
//	r := codec.NewReader(format.XDRWire, br)
//	n, err := r.ReadInt()
//	vals, err := r.ReadInts(int(n))
//	err = r.Finish() // fails if bytes remain
package codec
