package robj

import (
	"errors"
	"fmt"

	"github.com/signadot/go-rdata/format"
)

var (
	// ErrFormat reports a malformed, truncated or over-long stream.
	ErrFormat = errors.New("rdata format error")
	// ErrUnsupported reports a valid R feature this package cannot read or
	// write. It is kept distinct from ErrFormat so tools can mark inputs as
	// not yet supported rather than invalid.
	ErrUnsupported = errors.New("unsupported feature")
	// ErrEncoding reports an unsupported or inconsistent text encoding.
	ErrEncoding = errors.New("text encoding error")
	// ErrConfig reports invalid caller input.
	ErrConfig = format.ErrBadFormat

	// ErrInvalid reports a node graph that violates the model invariants.
	ErrInvalid = fmt.Errorf("%w: invalid node", ErrConfig)
)
