package parse

import (
	"log/slog"

	"github.com/signadot/go-rdata/altrep"
)

// DefaultMaxDepth bounds the nesting of nodes that are not pairlist
// cdrs. Pairlist chains are read iteratively and do not count.
const DefaultMaxDepth = 10000

type parseOpts struct {
	expand   bool
	registry *altrep.Registry
	logger   *slog.Logger
	maxDepth int
}

func newParseOpts(opts []ParseOption) *parseOpts {
	o := &parseOpts{expand: true, maxDepth: DefaultMaxDepth}
	for _, f := range opts {
		f(o)
	}
	if o.registry == nil {
		o.registry = altrep.Default()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

type ParseOption func(*parseOpts)

// ExpandAltrep selects whether compact representations are materialized
// as plain vectors (the default) or kept as ALTREP_SXP nodes.
func ExpandAltrep(v bool) ParseOption {
	return func(o *parseOpts) { o.expand = v }
}

// AltrepRegistry sets the registry used to expand compact representations.
func AltrepRegistry(r *altrep.Registry) ParseOption {
	return func(o *parseOpts) { o.registry = r }
}

func ParseLogger(l *slog.Logger) ParseOption {
	return func(o *parseOpts) { o.logger = l }
}

func ParseMaxDepth(n int) ParseOption {
	return func(o *parseOpts) { o.maxDepth = n }
}
