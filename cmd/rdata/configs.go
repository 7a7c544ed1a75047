package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/signadot/go-rdata/parse"
	"github.com/signadot/go-rdata/rfile"
	"github.com/signadot/go-rdata/robj"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color   bool `cli:"name=color desc='dump with color'"`
	Raw     bool `cli:"name=raw desc='keep compact representations unexpanded'"`
	Verbose bool `cli:"name=v aliases=verbose desc='log parse and encode details'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) logger() *slog.Logger {
	if cfg.Verbose {
		return verboseLog
	}
	return theLog
}

func (cfg *MainConfig) parseOpts() []parse.ParseOption {
	return []parse.ParseOption{
		parse.ExpandAltrep(!cfg.Raw),
		parse.ParseLogger(cfg.logger()),
	}
}

// load reads and parses file, "-" meaning stdin.
func (cfg *MainConfig) load(file string, opts ...parse.ParseOption) (*robj.RData, error) {
	opts = append(cfg.parseOpts(), opts...)
	if file == "-" {
		return rfile.Decode(os.Stdin, opts...)
	}
	return rfile.Read(file, opts...)
}

func (cfg *MainConfig) colorize(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	if cfg.Main != nil {
		for _, opt := range cfg.Main.Opts {
			if opt.Name != "color" {
				continue
			}
			if opt.Value != nil {
				return false
			}
			break
		}
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

type DumpConfig struct {
	*MainConfig

	YAML  bool `cli:"name=yaml desc='dump as yaml'"`
	Depth int  `cli:"name=depth desc='maximum depth to show, 0 for all'"`

	Dump *cli.Command
}

type CheckConfig struct {
	*MainConfig

	Quiet bool `cli:"name=q desc='only report failures'"`

	Check *cli.Command
}

type ConvertConfig struct {
	*MainConfig

	Wire        string `cli:"name=wire desc='output wire format: xdr, ascii'"`
	Compression string `cli:"name=z aliases=compress desc='output compression: gzip, bzip2, xz, none'"`
	FileType    string `cli:"name=type desc='output file type: rds, rda (default: same as input)'"`
	Version     int    `cli:"name=version desc='output format version: 2 or 3 (default: same as input)'"`
	Compact     bool   `cli:"name=compact desc='write integer ranges compactly'"`

	Convert *cli.Command
}

func (cfg *ConvertConfig) options(d *robj.RData) (rfile.Options, error) {
	o := rfile.DefaultOptions()
	o.Wire = d.Wire
	o.FileType = d.FileType
	o.Compact = cfg.Compact
	if cfg.Wire != "" {
		if err := o.Wire.UnmarshalText([]byte(cfg.Wire)); err != nil {
			return o, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
	}
	if cfg.Compression != "" {
		if err := o.Compression.UnmarshalText([]byte(cfg.Compression)); err != nil {
			return o, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
	}
	if cfg.FileType != "" {
		if err := o.FileType.UnmarshalText([]byte(cfg.FileType)); err != nil {
			return o, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
	}
	return o, nil
}

type HashConfig struct {
	*MainConfig

	Hash *cli.Command
}
