package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Parse  bool
	Encode bool
	Refs   bool
	Altrep bool
}

var d *debug

func init() {
	d = &debug{}
	d.Parse = boolEnv("RDATA_DEBUG_PARSE")
	d.Encode = boolEnv("RDATA_DEBUG_ENCODE")
	d.Refs = boolEnv("RDATA_DEBUG_REFS")
	d.Altrep = boolEnv("RDATA_DEBUG_ALTREP")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

// Parse reports whether every node read should be traced.
func Parse() bool {
	return d.Parse
}
func Encode() bool {
	return d.Encode
}
func Refs() bool {
	return d.Refs
}
func Altrep() bool {
	return d.Altrep
}

func Logf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg, args...)
}
