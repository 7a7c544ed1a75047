package parse

import (
	"fmt"

	"github.com/signadot/go-rdata/robj"
)

var (
	ErrDepth     = fmt.Errorf("%w: nesting too deep", robj.ErrFormat)
	errWireMatch = fmt.Errorf("%w: rda prefix and stream magic disagree", robj.ErrFormat)
)
