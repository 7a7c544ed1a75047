package encode

import (
	"log/slog"

	"github.com/signadot/go-rdata/format"
)

type EncodeOption func(*EncState)

// EncodeFormat overrides the wire encoding recorded in the data.
func EncodeFormat(w format.Wire) EncodeOption {
	return func(es *EncState) {
		es.wire = w
		es.wireSet = true
	}
}

// EncodeFileType overrides the file type recorded in the data.
func EncodeFileType(t format.FileType) EncodeOption {
	return func(es *EncState) {
		es.fileType = t
		es.fileTypeSet = true
	}
}

// EncodeCompact writes plain integer vectors that count by one as
// compact sequences. It has no effect below format version 3.
func EncodeCompact(v bool) EncodeOption {
	return func(es *EncState) { es.compact = v }
}

func EncodeLogger(l *slog.Logger) EncodeOption {
	return func(es *EncState) { es.logger = l }
}
