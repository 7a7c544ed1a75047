package robj

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Declared text encoding bits of a CHARSXP's GP field.
const (
	BytesFlag  uint16 = 1 << 1
	Latin1Flag uint16 = 1 << 2
	UTF8Flag   uint16 = 1 << 3
	CachedFlag uint16 = 1 << 5
	ASCIIFlag  uint16 = 1 << 6

	encodingFlags = BytesFlag | Latin1Flag | UTF8Flag | ASCIIFlag
)

// Char returns a CHARSXP holding s. Pure ASCII strings get the ASCII flag,
// everything else the UTF-8 flag.
func Char(s string) *Node {
	gp := UTF8Flag
	if isASCII([]byte(s)) {
		gp = ASCIIFlag
	}
	return &Node{Header: Header{Type: CharType, GP: gp}, Bytes: []byte(s)}
}

// CharNA returns the NA_STRING CHARSXP.
func CharNA() *Node {
	return &Node{Header: Header{Type: CharType}, Missing: true}
}

// CharIn returns a CHARSXP holding s encoded in enc, which is "UTF-8" or one
// of the single byte labels accepted by Decoder.
//
// Strings encoded as CP1252 are flagged LATIN1, which is what R on Windows
// does; the two encodings differ in 0x80-0x9F and the flag does not record
// which one was meant.
func CharIn(s string, enc string) (*Node, error) {
	if isASCII([]byte(s)) {
		return &Node{Header: Header{Type: CharType, GP: ASCIIFlag}, Bytes: []byte(s)}, nil
	}
	switch canonicalEncoding(enc) {
	case "UTF-8":
		return &Node{Header: Header{Type: CharType, GP: UTF8Flag}, Bytes: []byte(s)}, nil
	case "LATIN1":
		b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("%w: %q not representable in latin1: %w", ErrEncoding, s, err)
		}
		return &Node{Header: Header{Type: CharType, GP: Latin1Flag}, Bytes: b}, nil
	case "CP1252":
		b, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("%w: %q not representable in CP1252: %w", ErrEncoding, s, err)
		}
		return &Node{Header: Header{Type: CharType, GP: Latin1Flag}, Bytes: b}, nil
	}
	return nil, fmt.Errorf("%w: unsupported encoding %q", ErrEncoding, enc)
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

// canonicalEncoding maps the labels R writes for its native encoding to
// the names used here. Unknown labels map to "".
func canonicalEncoding(enc string) string {
	switch strings.ToUpper(strings.ReplaceAll(enc, "_", "-")) {
	case "", "UTF-8", "UTF8":
		return "UTF-8"
	case "LATIN1", "ISO-8859-1", "ISO8859-1", "ISO88591":
		return "LATIN1"
	case "CP1252", "WINDOWS-1252":
		return "CP1252"
	case "ASCII", "US-ASCII", "ANSI-X3.4-1968":
		return "ASCII"
	}
	return ""
}

// CheckEncoding reports an ErrEncoding when the declared encoding of a
// CHARSXP conflicts with its bytes or with the stream's native encoding
// label.
func (n *Node) CheckEncoding(native string) error {
	if n.Type != CharType || n.Missing {
		return nil
	}
	flags := n.GP & (BytesFlag | Latin1Flag | UTF8Flag)
	if flags&(flags-1) != 0 {
		return fmt.Errorf("%w: conflicting encoding flags %#x", ErrEncoding, n.GP)
	}
	if n.GP&ASCIIFlag != 0 && !isASCII(n.Bytes) {
		return fmt.Errorf("%w: non-ASCII bytes in string flagged ASCII", ErrEncoding)
	}
	if n.GP&encodingFlags == 0 && !isASCII(n.Bytes) && canonicalEncoding(native) == "" {
		return fmt.Errorf("%w: unsupported native encoding %q", ErrEncoding, native)
	}
	return nil
}

// Text decodes a CHARSXP to a Go string. The GP flags take precedence; a
// string without flags is in the stream's native encoding. Bytes flagged
// BYTES are returned unchanged. NA_STRING decodes to "".
func (n *Node) Text(native string) (string, error) {
	if n.Type != CharType {
		return "", fmt.Errorf("%w: Text on %s node", ErrInvalid, n.Type)
	}
	if n.Missing {
		return "", nil
	}
	enc := canonicalEncoding(native)
	switch {
	case n.GP&UTF8Flag != 0:
		enc = "UTF-8"
	case n.GP&Latin1Flag != 0:
		enc = "LATIN1"
	case n.GP&BytesFlag != 0:
		return string(n.Bytes), nil
	case n.GP&ASCIIFlag != 0:
		enc = "ASCII"
	}
	switch enc {
	case "UTF-8":
		if !utf8.Valid(n.Bytes) {
			return "", fmt.Errorf("%w: invalid UTF-8", ErrEncoding)
		}
		return string(n.Bytes), nil
	case "ASCII":
		if !isASCII(n.Bytes) {
			return "", fmt.Errorf("%w: non-ASCII bytes in ASCII string", ErrEncoding)
		}
		return string(n.Bytes), nil
	case "LATIN1":
		b, err := charmap.ISO8859_1.NewDecoder().Bytes(n.Bytes)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrEncoding, err)
		}
		return string(b), nil
	case "CP1252":
		b, err := charmap.Windows1252.NewDecoder().Bytes(n.Bytes)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrEncoding, err)
		}
		return string(b), nil
	}
	if isASCII(n.Bytes) {
		return string(n.Bytes), nil
	}
	return "", fmt.Errorf("%w: unsupported native encoding %q", ErrEncoding, native)
}

// StringsText decodes every element of a STRSXP. Missing elements decode
// to "" and are reported in the returned mask.
func (n *Node) StringsText(native string) ([]string, []bool, error) {
	n = n.Resolve()
	if n.Type != StrType {
		return nil, nil, fmt.Errorf("%w: StringsText on %s node", ErrInvalid, n.Type)
	}
	res := make([]string, len(n.Elems))
	var na []bool
	for i, e := range n.Elems {
		if e.Missing {
			if na == nil {
				na = make([]bool, len(n.Elems))
			}
			na[i] = true
			continue
		}
		s, err := e.Text(native)
		if err != nil {
			return nil, nil, fmt.Errorf("element %d: %w", i, err)
		}
		res[i] = s
	}
	return res, na, nil
}
