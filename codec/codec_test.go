package codec

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/signadot/go-rdata/format"
	"github.com/signadot/go-rdata/robj"
	"github.com/stretchr/testify/require"
)

func reader(w format.Wire, data string) Reader {
	return NewReader(w, bufio.NewReader(strings.NewReader(data)))
}

func written(t *testing.T, w format.Wire, f func(Writer) error) string {
	t.Helper()
	buf := &bytes.Buffer{}
	cw := NewWriter(w, buf)
	require.NoError(t, f(cw))
	require.NoError(t, cw.Flush())
	return buf.String()
}

func TestXDRIntNA(t *testing.T) {
	r := reader(format.XDRWire, "\x80\x00\x00\x00\x00\x00\x00\x05")
	v, err := r.ReadInts(2)
	require.NoError(t, err)
	require.Equal(t, []int32{robj.NAInteger, 5}, v)
	require.NoError(t, r.Finish())

	out := written(t, format.XDRWire, func(w Writer) error {
		return w.WriteInts(v)
	})
	require.Equal(t, "\x80\x00\x00\x00\x00\x00\x00\x05", out)
}

func TestXDRDoubles(t *testing.T) {
	vals := []float64{1.5, -0.0, math.Inf(1), robj.NAReal(), robj.NaN()}
	out := written(t, format.XDRWire, func(w Writer) error {
		return w.WriteDoubles(vals)
	})
	require.Len(t, out, 40)
	require.Equal(t, "\x7f\xf0\x00\x00\x00\x00\x07\xa2", out[24:32])

	got, err := reader(format.XDRWire, out).ReadDoubles(len(vals))
	require.NoError(t, err)
	for i := range vals {
		require.Equal(t, math.Float64bits(vals[i]), math.Float64bits(got[i]), "element %d", i)
	}
}

func TestXDRComplex(t *testing.T) {
	out := written(t, format.XDRWire, func(w Writer) error {
		return w.WriteComplex(complex(1, -2))
	})
	got, err := reader(format.XDRWire, out).ReadComplexes(1)
	require.NoError(t, err)
	require.Equal(t, []complex128{complex(1, -2)}, got)
}

func TestXDRTruncated(t *testing.T) {
	r := reader(format.XDRWire, "\x00\x00\x00")
	_, err := r.ReadInt()
	require.True(t, errors.Is(err, robj.ErrFormat), "got %v", err)

	r = reader(format.XDRWire, "abc")
	_, err = r.ReadString(10)
	require.True(t, errors.Is(err, robj.ErrFormat), "got %v", err)
}

func TestXDRTrailing(t *testing.T) {
	r := reader(format.XDRWire, "\x00\x00\x00\x01!")
	_, err := r.ReadInt()
	require.NoError(t, err)
	require.ErrorIs(t, r.Finish(), robj.ErrFormat)
}

func TestASCIIInts(t *testing.T) {
	out := written(t, format.ASCIIWire, func(w Writer) error {
		return w.WriteInts([]int32{3, robj.NAInteger, -7})
	})
	require.Equal(t, "3\nNA\n-7\n", out)

	r := reader(format.ASCIIWire, out)
	got, err := r.ReadInts(3)
	require.NoError(t, err)
	require.Equal(t, []int32{3, robj.NAInteger, -7}, got)
	require.NoError(t, r.Finish())
}

func TestASCIIDoubles(t *testing.T) {
	tests := []struct {
		in  float64
		out string
	}{
		{1, "1"},
		{0.1, "0.1"},
		{1e20, "1e+20"},
		{1e-5, "1e-05"},
		{123456.5, "123456.5"},
		{1.0 / 3, "0.3333333333333333"},
		{math.Inf(-1), "-Inf"},
		{robj.NAReal(), "NA"},
		{robj.NaN(), "NaN"},
	}
	for _, tt := range tests {
		out := written(t, format.ASCIIWire, func(w Writer) error {
			return w.WriteDouble(tt.in)
		})
		require.Equal(t, tt.out+"\n", out)
		got, err := reader(format.ASCIIWire, out).ReadDouble()
		require.NoError(t, err)
		if math.IsNaN(tt.in) {
			require.Equal(t, math.Float64bits(tt.in), math.Float64bits(got))
			continue
		}
		require.Equal(t, tt.in, got)
	}
}

// Text doubles carry 16 significant digits like R's writer, so some values
// do not survive a text round trip.
func TestASCIIDoubleSixteenDigits(t *testing.T) {
	x := 0.1
	x += 0.2
	out := written(t, format.ASCIIWire, func(w Writer) error {
		return w.WriteDouble(x)
	})
	require.Equal(t, "0.3\n", out)
	got, err := reader(format.ASCIIWire, out).ReadDouble()
	require.NoError(t, err)
	require.Equal(t, 0.3, got)
	require.NotEqual(t, x, got)
}

func TestASCIIStringEscapes(t *testing.T) {
	in := []byte("a b\n\"q\"?\\\xe9\x01")
	out := written(t, format.ASCIIWire, func(w Writer) error {
		return w.WriteString(in)
	})
	require.Equal(t, `a\040b\n\"q\"\?\\\351\001`+"\n", out)

	got, err := reader(format.ASCIIWire, out).ReadString(len(in))
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestASCIIOctalFollowedByDigit(t *testing.T) {
	// \0401 is a space followed by the character 1
	got, err := reader(format.ASCIIWire, `\0401`+"\n").ReadString(2)
	require.NoError(t, err)
	require.Equal(t, []byte(" 1"), got)
}

func TestASCIIRaw(t *testing.T) {
	out := written(t, format.ASCIIWire, func(w Writer) error {
		return w.WriteRaw([]byte{0, 0xff, 0x10})
	})
	require.Equal(t, "00\nff\n10\n", out)
	got, err := reader(format.ASCIIWire, out).ReadRaw(3)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0xff, 0x10}, got)
}

func TestASCIICRLF(t *testing.T) {
	r := reader(format.ASCIIWire, "1\r\n2\r\n")
	got, err := r.ReadInts(2)
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2}, got)
	require.NoError(t, r.Finish())
}

func TestASCIITrailing(t *testing.T) {
	r := reader(format.ASCIIWire, "1\n2\n")
	_, err := r.ReadInt()
	require.NoError(t, err)
	require.ErrorIs(t, r.Finish(), robj.ErrFormat)
}

func TestASCIITruncated(t *testing.T) {
	r := reader(format.ASCIIWire, "123")
	_, err := r.ReadInt()
	require.ErrorIs(t, err, robj.ErrFormat)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	r = reader(format.ASCIIWire, "1\nf")
	_, err = r.ReadRaw(2)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	r = reader(format.ASCIIWire, "7")
	_, err = r.ReadInt()
	require.ErrorIs(t, err, robj.ErrFormat)

	for _, in := range []string{"7\n", "7\r\n"} {
		r = reader(format.ASCIIWire, in)
		_, err = r.ReadInt()
		require.NoError(t, err)
		require.NoError(t, r.Finish(), "%q", in)
	}
}

func TestASCIIMissingFinalNewline(t *testing.T) {
	r := reader(format.ASCIIWire, "1\n2")
	_, err := r.ReadInt()
	require.NoError(t, err)
	_, err = r.ReadInt()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestSniffWire(t *testing.T) {
	for in, want := range map[string]format.Wire{
		"X\n":   format.XDRWire,
		"A\n":   format.ASCIIWire,
		"A\r\n": format.ASCIIWire,
	} {
		got, err := SniffWire(bufio.NewReader(strings.NewReader(in)))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := SniffWire(bufio.NewReader(strings.NewReader("B\n")))
	require.ErrorIs(t, err, robj.ErrUnsupported)
	_, err = SniffWire(bufio.NewReader(strings.NewReader("Q\n")))
	require.ErrorIs(t, err, robj.ErrFormat)
}
