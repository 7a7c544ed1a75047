package robj

import (
	"fmt"

	"github.com/signadot/go-rdata/format"
)

const (
	// DefaultWriterVersion is the R version (4.2.1) written as creator of
	// new streams.
	DefaultWriterVersion = 0x40201

	// MinVersionWithEncoding is the first format version with a native
	// encoding label in its header.
	MinVersionWithEncoding = 3
	// MinVersionWithAltrep is the first format version that may contain
	// compact representations.
	MinVersionWithAltrep = 3
)

// MinimumReaderVersion maps a format version to the R version R records as
// the oldest able to read it.
var MinimumReaderVersion = map[int]int{
	2: 0x20300,
	3: 0x30500,
}

// Versions is the version triple at the head of every stream.
type Versions struct {
	Format     int
	Serialized int
	Minimum    int
}

// DefaultVersions returns the versions of a format 3 stream written by R
// 4.2.1.
func DefaultVersions() Versions {
	return VersionsFor(3)
}

// VersionsFor returns the versions R would write for the given format.
func VersionsFor(formatVersion int) Versions {
	return Versions{
		Format:     formatVersion,
		Serialized: DefaultWriterVersion,
		Minimum:    MinimumReaderVersion[formatVersion],
	}
}

// RVersion formats a packed R version such as 0x40201 as "4.2.1".
func RVersion(v int) string {
	return fmt.Sprintf("%d.%d.%d", v>>16, (v>>8)&0xFF, v&0xFF)
}

// ExtraInfo is the format 3 header extension.
type ExtraInfo struct {
	// Encoding is the native encoding label of the writing session, empty
	// when absent.
	Encoding string
}

// RData is one parsed stream.
type RData struct {
	Versions Versions
	Extra    ExtraInfo
	FileType format.FileType
	// Wire is the encoding the stream was read with, and the one it is
	// written with unless another is asked for.
	Wire   format.Wire
	Object *Node
}

// New returns an RDS RData for obj at the default versions, labelled
// UTF-8.
func New(obj *Node) *RData {
	return &RData{
		Versions: DefaultVersions(),
		Extra:    ExtraInfo{Encoding: "UTF-8"},
		FileType: format.RDSFile,
		Object:   obj,
	}
}

// Check validates the header fields and the features they allow.
func (d *RData) Check() error {
	switch d.Versions.Format {
	case 2, 3:
	default:
		return fmt.Errorf("%w: format version %d", ErrUnsupported, d.Versions.Format)
	}
	if d.Extra.Encoding != "" && d.Versions.Format < MinVersionWithEncoding {
		return fmt.Errorf("%w: encoding label %q requires format version %d, have %d",
			ErrUnsupported, d.Extra.Encoding, MinVersionWithEncoding, d.Versions.Format)
	}
	if d.Object == nil {
		return fmt.Errorf("%w: no object", ErrInvalid)
	}
	return nil
}

// Objects returns the named objects of an RDA file in file order.
func (d *RData) Objects() ([]KeyVal, error) {
	if d.FileType != format.RDAFile {
		return nil, fmt.Errorf("%w: Objects on %s data", ErrConfig, d.FileType)
	}
	obj := d.Object.Resolve()
	if obj.Type == NilValueType {
		return nil, nil
	}
	if obj.Pairs == nil {
		return nil, fmt.Errorf("%w: rda object is %s, not a pairlist", ErrFormat, obj.Type)
	}
	res := make([]KeyVal, 0, len(obj.Pairs.Cells))
	for i := range obj.Pairs.Cells {
		c := &obj.Pairs.Cells[i]
		name, ok := c.Tag.SymbolName()
		if !ok {
			return nil, fmt.Errorf("%w: untagged object %d in rda", ErrFormat, i)
		}
		res = append(res, KeyVal{Key: name, Val: c.Car})
	}
	return res, nil
}
