// Package format names the stream-level choices made when reading or writing
// R serialized data.
//
// # Usage
//
//	w, err := format.ParseWire("ascii")
//	ft, err := format.ParseFileType("rda")
//	c, err := format.ParseCompression("xz")
//
// All three types implement encoding.TextMarshaler and
// encoding.TextUnmarshaler so they can be used directly as CLI options or in
// configuration files.
//
// # Related Packages
//
//   - github.com/signadot/go-rdata/parse - Parse streams into robj nodes
//   - github.com/signadot/go-rdata/encode - Encode robj nodes into streams
//   - github.com/signadot/go-rdata/rfile - Compressed files on disk
package format
