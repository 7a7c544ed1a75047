package format

import (
	"errors"
	"fmt"
)

// Wire is the node-level encoding of a serialization stream.
type Wire int

const (
	XDRWire Wire = iota
	ASCIIWire
)

var ErrBadFormat = errors.New("bad format")

func ParseWire(v string) (Wire, error) {
	w, ok := map[string]Wire{
		"x":      XDRWire,
		"xdr":    XDRWire,
		"binary": XDRWire,
		"a":      ASCIIWire,
		"ascii":  ASCIIWire,
		"text":   ASCIIWire,
	}[v]
	if ok {
		return w, nil
	}
	return 0, fmt.Errorf("%w: wire format %q", ErrBadFormat, v)
}

func (w Wire) String() string {
	d, err := w.MarshalText()
	if err != nil {
		return err.Error()
	}
	return string(d)
}

func (w Wire) MarshalText() ([]byte, error) {
	switch w {
	case XDRWire:
		return []byte("xdr"), nil
	case ASCIIWire:
		return []byte("ascii"), nil
	default:
		return nil, fmt.Errorf("<err: %d is not a wire format>", w)
	}
}

func (w *Wire) UnmarshalText(d []byte) error {
	pw, err := ParseWire(string(d))
	if err != nil {
		return err
	}
	*w = pw
	return nil
}

// Magic returns the two byte stream header for the wire format.
func (w Wire) Magic() []byte {
	if w == ASCIIWire {
		return []byte("A\n")
	}
	return []byte("X\n")
}

// FileType distinguishes single object files (saveRDS) from multi object
// files (save).
type FileType int

const (
	RDSFile FileType = iota
	RDAFile
)

func ParseFileType(v string) (FileType, error) {
	switch v {
	case "rds":
		return RDSFile, nil
	case "rda", "rdata":
		return RDAFile, nil
	}
	return 0, fmt.Errorf("%w: file type %q", ErrBadFormat, v)
}

func (f FileType) String() string {
	switch f {
	case RDSFile:
		return "rds"
	case RDAFile:
		return "rda"
	default:
		return fmt.Sprintf("<err: %d is not a file type>", int(f))
	}
}

func (f FileType) MarshalText() ([]byte, error) {
	switch f {
	case RDSFile, RDAFile:
		return []byte(f.String()), nil
	}
	return nil, fmt.Errorf("<err: %d is not a file type>", f)
}

func (f *FileType) UnmarshalText(d []byte) error {
	pf, err := ParseFileType(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}

// Suffix returns the file extension for this file type (including the dot).
func (f FileType) Suffix() string {
	if f == RDAFile {
		return ".rda"
	}
	return ".rds"
}

// RDAPrefix returns the header line R writes in front of the serialization
// stream of a multi object file.
func RDAPrefix(w Wire, version int) []byte {
	if w == ASCIIWire {
		return fmt.Appendf(nil, "RDA%d\n", version)
	}
	return fmt.Appendf(nil, "RDX%d\n", version)
}

// Compression is the outer stream compression of a file.
type Compression int

const (
	NoCompression Compression = iota
	GzipCompression
	Bzip2Compression
	XZCompression
)

func ParseCompression(v string) (Compression, error) {
	c, ok := map[string]Compression{
		"none":  NoCompression,
		"gzip":  GzipCompression,
		"gz":    GzipCompression,
		"bzip2": Bzip2Compression,
		"bz2":   Bzip2Compression,
		"xz":    XZCompression,
	}[v]
	if ok {
		return c, nil
	}
	if v == "" {
		return 0, fmt.Errorf("%w: empty compression, use \"none\" for no compression", ErrBadFormat)
	}
	return 0, fmt.Errorf("%w: unknown compression %q", ErrBadFormat, v)
}

func (c Compression) String() string {
	d, err := c.MarshalText()
	if err != nil {
		return err.Error()
	}
	return string(d)
}

func (c Compression) MarshalText() ([]byte, error) {
	switch c {
	case NoCompression:
		return []byte("none"), nil
	case GzipCompression:
		return []byte("gzip"), nil
	case Bzip2Compression:
		return []byte("bzip2"), nil
	case XZCompression:
		return []byte("xz"), nil
	default:
		return nil, fmt.Errorf("<err: %d is not a compression>", c)
	}
}

func (c *Compression) UnmarshalText(d []byte) error {
	pc, err := ParseCompression(string(d))
	if err != nil {
		return err
	}
	*c = pc
	return nil
}

// AllCompressions returns all supported compressions, default first.
func AllCompressions() []Compression {
	return []Compression{GzipCompression, Bzip2Compression, XZCompression, NoCompression}
}
