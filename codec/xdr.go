package codec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/signadot/go-rdata/robj"
)

type xdrReader struct {
	r   *bufio.Reader
	buf [16]byte
}

func (x *xdrReader) fill(n int) ([]byte, error) {
	b := x.buf[:n]
	if _, err := io.ReadFull(x.r, b); err != nil {
		return nil, short(err)
	}
	return b, nil
}

func (x *xdrReader) ReadInt() (int32, error) {
	b, err := x.fill(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (x *xdrReader) ReadDouble() (float64, error) {
	b, err := x.fill(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func (x *xdrReader) ReadComplex() (complex128, error) {
	b, err := x.fill(16)
	if err != nil {
		return 0, err
	}
	re := math.Float64frombits(binary.BigEndian.Uint64(b[:8]))
	im := math.Float64frombits(binary.BigEndian.Uint64(b[8:]))
	return complex(re, im), nil
}

// readBytes reads exactly n bytes, growing the buffer as data arrives.
func (x *xdrReader) readBytes(n int) ([]byte, error) {
	if err := checkLen(n); err != nil {
		return nil, err
	}
	res := make([]byte, 0, min(n, maxPrealloc))
	for len(res) < n {
		chunk := min(n-len(res), maxPrealloc)
		start := len(res)
		res = append(res, make([]byte, chunk)...)
		if _, err := io.ReadFull(x.r, res[start:]); err != nil {
			return nil, short(err)
		}
	}
	return res, nil
}

func (x *xdrReader) ReadString(n int) ([]byte, error) {
	return x.readBytes(n)
}

func (x *xdrReader) ReadRaw(n int) ([]byte, error) {
	return x.readBytes(n)
}

func (x *xdrReader) ReadInts(n int) ([]int32, error) {
	if n > math.MaxInt/4 {
		return nil, fmt.Errorf("%w: length %d", robj.ErrFormat, n)
	}
	b, err := x.readBytes(4 * n)
	if err != nil {
		return nil, err
	}
	res := make([]int32, n)
	for i := range res {
		res[i] = int32(binary.BigEndian.Uint32(b[4*i:]))
	}
	return res, nil
}

func (x *xdrReader) ReadDoubles(n int) ([]float64, error) {
	if n > math.MaxInt/8 {
		return nil, fmt.Errorf("%w: length %d", robj.ErrFormat, n)
	}
	b, err := x.readBytes(8 * n)
	if err != nil {
		return nil, err
	}
	res := make([]float64, n)
	for i := range res {
		res[i] = math.Float64frombits(binary.BigEndian.Uint64(b[8*i:]))
	}
	return res, nil
}

func (x *xdrReader) ReadComplexes(n int) ([]complex128, error) {
	if n > math.MaxInt/16 {
		return nil, fmt.Errorf("%w: length %d", robj.ErrFormat, n)
	}
	d, err := x.ReadDoubles(2 * n)
	if err != nil {
		return nil, err
	}
	res := make([]complex128, n)
	for i := range res {
		res[i] = complex(d[2*i], d[2*i+1])
	}
	return res, nil
}

func (x *xdrReader) Finish() error {
	_, err := x.r.ReadByte()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", robj.ErrFormat, err)
	}
	return fmt.Errorf("%w: trailing data after top level object", robj.ErrFormat)
}

type xdrWriter struct {
	w   *bufio.Writer
	buf [16]byte
}

func (x *xdrWriter) WriteInt(v int32) error {
	binary.BigEndian.PutUint32(x.buf[:4], uint32(v))
	_, err := x.w.Write(x.buf[:4])
	return err
}

func (x *xdrWriter) WriteDouble(v float64) error {
	binary.BigEndian.PutUint64(x.buf[:8], math.Float64bits(v))
	_, err := x.w.Write(x.buf[:8])
	return err
}

func (x *xdrWriter) WriteComplex(v complex128) error {
	binary.BigEndian.PutUint64(x.buf[:8], math.Float64bits(real(v)))
	binary.BigEndian.PutUint64(x.buf[8:], math.Float64bits(imag(v)))
	_, err := x.w.Write(x.buf[:16])
	return err
}

func (x *xdrWriter) WriteString(b []byte) error {
	_, err := x.w.Write(b)
	return err
}

func (x *xdrWriter) WriteRaw(b []byte) error {
	_, err := x.w.Write(b)
	return err
}

func (x *xdrWriter) WriteInts(v []int32) error {
	b := make([]byte, 4*len(v))
	for i, e := range v {
		binary.BigEndian.PutUint32(b[4*i:], uint32(e))
	}
	_, err := x.w.Write(b)
	return err
}

func (x *xdrWriter) WriteDoubles(v []float64) error {
	b := make([]byte, 8*len(v))
	for i, e := range v {
		binary.BigEndian.PutUint64(b[8*i:], math.Float64bits(e))
	}
	_, err := x.w.Write(b)
	return err
}

func (x *xdrWriter) WriteComplexes(v []complex128) error {
	b := make([]byte, 16*len(v))
	for i, e := range v {
		binary.BigEndian.PutUint64(b[16*i:], math.Float64bits(real(e)))
		binary.BigEndian.PutUint64(b[16*i+8:], math.Float64bits(imag(e)))
	}
	_, err := x.w.Write(b)
	return err
}

func (x *xdrWriter) Flush() error {
	return x.w.Flush()
}
