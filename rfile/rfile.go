// Package rfile reads and writes R data files: a serialization stream,
// optionally compressed with gzip, bzip2 or xz.
package rfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/signadot/go-rdata/encode"
	"github.com/signadot/go-rdata/format"
	"github.com/signadot/go-rdata/parse"
	"github.com/signadot/go-rdata/robj"
	"github.com/ulikunitz/xz"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// Sniff reports the compression of the stream at the head of br without
// consuming it.
func Sniff(br *bufio.Reader) format.Compression {
	head, _ := br.Peek(len(xzMagic))
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return format.GzipCompression
	case bytes.HasPrefix(head, bzip2Magic):
		return format.Bzip2Compression
	case bytes.HasPrefix(head, xzMagic):
		return format.XZCompression
	}
	return format.NoCompression
}

// NewReader returns a reader of the decompressed stream in r along with
// the compression found.
func NewReader(r io.Reader) (io.ReadCloser, format.Compression, error) {
	br := bufio.NewReader(r)
	c := Sniff(br)
	switch c {
	case format.GzipCompression:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, c, fmt.Errorf("%w: %w", robj.ErrFormat, err)
		}
		return zr, c, nil
	case format.Bzip2Compression:
		zr, err := bzip2.NewReader(br, nil)
		if err != nil {
			return nil, c, fmt.Errorf("%w: %w", robj.ErrFormat, err)
		}
		return zr, c, nil
	case format.XZCompression:
		zr, err := xz.NewReader(br)
		if err != nil {
			return nil, c, fmt.Errorf("%w: %w", robj.ErrFormat, err)
		}
		return io.NopCloser(zr), c, nil
	}
	return io.NopCloser(br), c, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewWriter returns a writer compressing to w. Closing it flushes the
// compressed stream but does not close w.
func NewWriter(w io.Writer, c format.Compression) (io.WriteCloser, error) {
	switch c {
	case format.NoCompression:
		return nopWriteCloser{w}, nil
	case format.GzipCompression:
		return gzip.NewWriterLevel(w, gzip.DefaultCompression)
	case format.Bzip2Compression:
		return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	case format.XZCompression:
		return xz.NewWriter(w)
	}
	return nil, fmt.Errorf("%w: compression %d", robj.ErrConfig, c)
}

// Options control how Write lays out a file.
type Options struct {
	Compression format.Compression
	Wire        format.Wire
	FileType    format.FileType
	// Compact writes integer ranges as compact sequences.
	Compact bool
}

// DefaultOptions are those of saveRDS: gzip over XDR.
func DefaultOptions() Options {
	return Options{Compression: format.GzipCompression}
}

// Decode reads a possibly compressed stream.
func Decode(r io.Reader, opts ...parse.ParseOption) (*robj.RData, error) {
	zr, _, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return parse.Parse(zr, opts...)
}

// Read parses the file at path.
func Read(path string, opts ...parse.ParseOption) (*robj.RData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return d, nil
}

// Encode writes d to w with the layout in o.
func Encode(w io.Writer, d *robj.RData, o Options, opts ...encode.EncodeOption) error {
	zw, err := NewWriter(w, o.Compression)
	if err != nil {
		return err
	}
	opts = append([]encode.EncodeOption{
		encode.EncodeFormat(o.Wire),
		encode.EncodeFileType(o.FileType),
		encode.EncodeCompact(o.Compact),
	}, opts...)
	if err := encode.Encode(zw, d, opts...); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// Write writes d to the file at path, replacing it only once the whole
// file has been written.
func Write(path string, d *robj.RData, o Options, opts ...encode.EncodeOption) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Encode(f, d, o, opts...); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
