package codec

import (
	"bufio"
	"fmt"
	"io"

	"github.com/signadot/go-rdata/format"
	"github.com/signadot/go-rdata/robj"
)

// Reader reads the primitives of one wire encoding. Integers come back raw:
// a missing integer is robj.NAInteger.
type Reader interface {
	ReadInt() (int32, error)
	ReadDouble() (float64, error)
	ReadComplex() (complex128, error)
	ReadString(n int) ([]byte, error)
	ReadInts(n int) ([]int32, error)
	ReadDoubles(n int) ([]float64, error)
	ReadComplexes(n int) ([]complex128, error)
	ReadRaw(n int) ([]byte, error)
	// Finish fails if anything but a final line terminator remains.
	Finish() error
}

// Writer writes the primitives of one wire encoding.
type Writer interface {
	WriteInt(int32) error
	WriteDouble(float64) error
	WriteComplex(complex128) error
	WriteString([]byte) error
	WriteInts([]int32) error
	WriteDoubles([]float64) error
	WriteComplexes([]complex128) error
	WriteRaw([]byte) error
	Flush() error
}

// NewReader returns the reader for wire w. The magic must already have been
// consumed from br.
func NewReader(w format.Wire, br *bufio.Reader) Reader {
	if w == format.ASCIIWire {
		return &asciiReader{r: br}
	}
	return &xdrReader{r: br}
}

// NewWriter returns the writer for wire w. It does not write the magic.
func NewWriter(w format.Wire, out io.Writer) Writer {
	bw := bufio.NewWriter(out)
	if w == format.ASCIIWire {
		return &asciiWriter{w: bw}
	}
	return &xdrWriter{w: bw}
}

// SniffWire reads the two byte magic at the head of br.
func SniffWire(br *bufio.Reader) (format.Wire, error) {
	m := make([]byte, 2)
	if _, err := io.ReadFull(br, m); err != nil {
		return 0, short(err)
	}
	switch string(m) {
	case "X\n":
		return format.XDRWire, nil
	case "A\n":
		return format.ASCIIWire, nil
	case "A\r":
		// text streams written on Windows
		if b, err := br.ReadByte(); err != nil || b != '\n' {
			return 0, fmt.Errorf("%w: bad magic %q", robj.ErrFormat, m)
		}
		return format.ASCIIWire, nil
	case "B\n":
		return 0, fmt.Errorf("%w: native binary streams", robj.ErrUnsupported)
	}
	return 0, fmt.Errorf("%w: bad magic %q", robj.ErrFormat, m)
}

// short converts an io error of a read that must succeed into a format
// error.
func short(err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %w", robj.ErrFormat, err)
}

// maxPrealloc bounds allocations made from untrusted lengths; longer
// payloads are read in chunks so a corrupt length fails at end of input
// rather than at allocation.
const maxPrealloc = 1 << 16

func checkLen(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative length %d", robj.ErrFormat, n)
	}
	return nil
}
