package codec

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/signadot/go-rdata/robj"
)

type asciiReader struct {
	r *bufio.Reader
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func (a *asciiReader) skipSpace() error {
	for {
		c, err := a.r.ReadByte()
		if err != nil {
			return short(err)
		}
		if !isSpace(c) {
			return a.r.UnreadByte()
		}
	}
}

// word reads the next whitespace delimited field. Every field is written
// with a line terminator, so input ending inside a field is truncated.
func (a *asciiReader) word() (string, error) {
	if err := a.skipSpace(); err != nil {
		return "", err
	}
	var buf []byte
	for {
		c, err := a.r.ReadByte()
		if err != nil {
			return "", short(err)
		}
		if isSpace(c) {
			if err := a.r.UnreadByte(); err != nil {
				return "", err
			}
			break
		}
		buf = append(buf, c)
	}
	return string(buf), nil
}

func (a *asciiReader) ReadInt() (int32, error) {
	w, err := a.word()
	if err != nil {
		return 0, err
	}
	if w == "NA" {
		return robj.NAInteger, nil
	}
	v, err := strconv.ParseInt(w, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad integer %q", robj.ErrFormat, w)
	}
	return int32(v), nil
}

func parseDouble(w string) (float64, error) {
	switch w {
	case "NA":
		return robj.NAReal(), nil
	case "NaN":
		return robj.NaN(), nil
	case "Inf":
		return math.Inf(1), nil
	case "-Inf":
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad double %q", robj.ErrFormat, w)
	}
	return v, nil
}

func (a *asciiReader) ReadDouble() (float64, error) {
	w, err := a.word()
	if err != nil {
		return 0, err
	}
	return parseDouble(w)
}

func (a *asciiReader) ReadComplex() (complex128, error) {
	re, err := a.ReadDouble()
	if err != nil {
		return 0, err
	}
	im, err := a.ReadDouble()
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}

// ReadString decodes n bytes of an escaped string. Leading whitespace is
// skipped; the writer escapes whitespace inside strings so it never starts
// the payload.
func (a *asciiReader) ReadString(n int) ([]byte, error) {
	if err := checkLen(n); err != nil {
		return nil, err
	}
	if n == 0 {
		return []byte{}, nil
	}
	if err := a.skipSpace(); err != nil {
		return nil, err
	}
	res := make([]byte, 0, min(n, maxPrealloc))
	for len(res) < n {
		c, err := a.r.ReadByte()
		if err != nil {
			return nil, short(err)
		}
		if c != '\\' {
			res = append(res, c)
			continue
		}
		c, err = a.r.ReadByte()
		if err != nil {
			return nil, short(err)
		}
		switch c {
		case 'n':
			c = '\n'
		case 't':
			c = '\t'
		case 'v':
			c = '\v'
		case 'b':
			c = '\b'
		case 'r':
			c = '\r'
		case 'f':
			c = '\f'
		case 'a':
			c = '\a'
		case '0', '1', '2', '3', '4', '5', '6', '7':
			d := 0
			for j := 0; j < 3 && '0' <= c && c <= '7'; j++ {
				d = d*8 + int(c-'0')
				if c, err = a.r.ReadByte(); err != nil {
					break
				}
			}
			if err == nil {
				if err := a.r.UnreadByte(); err != nil {
					return nil, err
				}
			} else if err != io.EOF {
				return nil, short(err)
			}
			c = byte(d)
		}
		res = append(res, c)
	}
	return res, nil
}

func (a *asciiReader) ReadInts(n int) ([]int32, error) {
	if err := checkLen(n); err != nil {
		return nil, err
	}
	res := make([]int32, 0, min(n, maxPrealloc))
	for len(res) < n {
		v, err := a.ReadInt()
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

func (a *asciiReader) ReadDoubles(n int) ([]float64, error) {
	if err := checkLen(n); err != nil {
		return nil, err
	}
	res := make([]float64, 0, min(n, maxPrealloc))
	for len(res) < n {
		v, err := a.ReadDouble()
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

func (a *asciiReader) ReadComplexes(n int) ([]complex128, error) {
	if err := checkLen(n); err != nil {
		return nil, err
	}
	res := make([]complex128, 0, min(n, maxPrealloc))
	for len(res) < n {
		v, err := a.ReadComplex()
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

func (a *asciiReader) ReadRaw(n int) ([]byte, error) {
	if err := checkLen(n); err != nil {
		return nil, err
	}
	res := make([]byte, 0, min(n, maxPrealloc))
	for len(res) < n {
		w, err := a.word()
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseUint(w, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: bad raw byte %q", robj.ErrFormat, w)
		}
		res = append(res, byte(v))
	}
	return res, nil
}

// Finish consumes the terminator of the last field, which must be present.
func (a *asciiReader) Finish() error {
	c, err := a.r.ReadByte()
	if err == nil && c == '\r' {
		c, err = a.r.ReadByte()
	}
	if err != nil {
		return short(err)
	}
	if c != '\n' {
		return fmt.Errorf("%w: trailing data after top level object", robj.ErrFormat)
	}
	_, err = a.r.ReadByte()
	if err == io.EOF {
		return nil
	}
	return fmt.Errorf("%w: trailing data after top level object", robj.ErrFormat)
}

type asciiWriter struct {
	w   *bufio.Writer
	buf []byte
}

func (a *asciiWriter) line(b []byte) error {
	b = append(b, '\n')
	_, err := a.w.Write(b)
	return err
}

func (a *asciiWriter) WriteInt(v int32) error {
	if v == robj.NAInteger {
		return a.line(append(a.buf[:0], "NA"...))
	}
	return a.line(strconv.AppendInt(a.buf[:0], int64(v), 10))
}

// appendDouble formats like R's "%.16g".
func appendDouble(b []byte, v float64) []byte {
	switch {
	case robj.IsNAReal(v):
		return append(b, "NA"...)
	case math.IsNaN(v):
		return append(b, "NaN"...)
	case math.IsInf(v, 1):
		return append(b, "Inf"...)
	case math.IsInf(v, -1):
		return append(b, "-Inf"...)
	}
	return strconv.AppendFloat(b, v, 'g', 16, 64)
}

func (a *asciiWriter) WriteDouble(v float64) error {
	return a.line(appendDouble(a.buf[:0], v))
}

func (a *asciiWriter) WriteComplex(v complex128) error {
	if err := a.WriteDouble(real(v)); err != nil {
		return err
	}
	return a.WriteDouble(imag(v))
}

// WriteString escapes b the way R does: the usual C escapes, octal for
// everything else outside '!'..'~'.
func (a *asciiWriter) WriteString(b []byte) error {
	out := a.buf[:0]
	for _, c := range b {
		switch c {
		case '\n':
			out = append(out, `\n`...)
		case '\t':
			out = append(out, `\t`...)
		case '\v':
			out = append(out, `\v`...)
		case '\b':
			out = append(out, `\b`...)
		case '\r':
			out = append(out, `\r`...)
		case '\f':
			out = append(out, `\f`...)
		case '\a':
			out = append(out, `\a`...)
		case '\\':
			out = append(out, `\\`...)
		case '?':
			out = append(out, `\?`...)
		case '\'':
			out = append(out, `\'`...)
		case '"':
			out = append(out, `\"`...)
		default:
			if c <= 32 || c > 126 {
				out = fmt.Appendf(out, "\\%03o", c)
			} else {
				out = append(out, c)
			}
		}
	}
	err := a.line(out)
	a.buf = out[:0]
	return err
}

func (a *asciiWriter) WriteInts(v []int32) error {
	for _, x := range v {
		if err := a.WriteInt(x); err != nil {
			return err
		}
	}
	return nil
}

func (a *asciiWriter) WriteDoubles(v []float64) error {
	for _, x := range v {
		if err := a.WriteDouble(x); err != nil {
			return err
		}
	}
	return nil
}

func (a *asciiWriter) WriteComplexes(v []complex128) error {
	for _, x := range v {
		if err := a.WriteComplex(x); err != nil {
			return err
		}
	}
	return nil
}

func (a *asciiWriter) WriteRaw(b []byte) error {
	for _, c := range b {
		if err := a.line(fmt.Appendf(a.buf[:0], "%02x", c)); err != nil {
			return err
		}
	}
	return nil
}

func (a *asciiWriter) Flush() error {
	return a.w.Flush()
}
