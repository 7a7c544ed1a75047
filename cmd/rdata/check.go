package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/signadot/go-rdata/encode"
	"github.com/signadot/go-rdata/format"
	"github.com/signadot/go-rdata/parse"
	"github.com/signadot/go-rdata/rfile"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines shown around a difference.
const diffContext = 3

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	failed := 0
	for _, arg := range inputs(args) {
		if err := cfg.checkOne(cc.Out, arg); err != nil {
			fmt.Fprintf(cc.Out, "FAIL %s: %v\n", arg, err)
			failed++
			continue
		}
		if !cfg.Quiet {
			fmt.Fprintf(cc.Out, "ok   %s\n", arg)
		}
	}
	if failed != 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// checkOne parses the decompressed stream in arg without expanding
// compact representations and writes it back on the same wire.
func (cfg *CheckConfig) checkOne(w io.Writer, arg string) error {
	var in io.Reader = os.Stdin
	if arg != "-" {
		f, err := os.Open(arg)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	zr, comp, err := rfile.NewReader(in)
	if err != nil {
		return err
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return err
	}
	d, err := parse.ParseBytes(raw, append(cfg.parseOpts(), parse.ExpandAltrep(false))...)
	if err != nil {
		return err
	}
	cfg.logger().Debug("checking", "file", arg, "compression", comp, "wire", d.Wire, "size", len(raw))
	out, err := encode.Bytes(d, encode.EncodeLogger(cfg.logger()))
	if err != nil {
		return err
	}
	if bytes.Equal(raw, out) {
		return nil
	}
	if !cfg.Quiet {
		cfg.diff(w, lines(raw, d.Wire), lines(out, d.Wire))
	}
	return fmt.Errorf("rewritten stream differs at byte %d", firstDiff(raw, out))
}

func firstDiff(a, b []byte) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// lines splits a stream into diffable lines: text streams as they are,
// binary streams as one four byte word per line.
func lines(b []byte, w format.Wire) string {
	if w == format.ASCIIWire {
		return string(b)
	}
	buf := &strings.Builder{}
	for i := 0; i < len(b); i += 4 {
		fmt.Fprintf(buf, "%x\n", b[i:min(i+4, len(b))])
	}
	return buf.String()
}

func (cfg *CheckConfig) diff(w io.Writer, from, to string) {
	del, ins := fmt.Sprintf, fmt.Sprintf
	if cfg.colorize(w) {
		del, ins = color.RedString, color.GreenString
	}
	dmp := diffpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)
	for i, d := range diffs {
		ls := strings.SplitAfter(d.Text, "\n")
		if ls[len(ls)-1] == "" {
			ls = ls[:len(ls)-1]
		}
		switch d.Type {
		case diffpatch.DiffDelete:
			for _, l := range ls {
				io.WriteString(w, del("-%s", l))
			}
		case diffpatch.DiffInsert:
			for _, l := range ls {
				io.WriteString(w, ins("+%s", l))
			}
		case diffpatch.DiffEqual:
			var head, tail []string
			if i > 0 {
				head = ls[:min(diffContext, len(ls))]
			}
			if i < len(diffs)-1 {
				tail = ls[max(len(ls)-diffContext, len(head)):]
			}
			for _, l := range head {
				io.WriteString(w, " "+l)
			}
			if skipped := len(ls) - len(head) - len(tail); skipped > 0 {
				fmt.Fprintf(w, "@@ %d lines @@\n", skipped)
			}
			for _, l := range tail {
				io.WriteString(w, " "+l)
			}
		}
	}
}
