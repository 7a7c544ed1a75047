package main

import (
	"fmt"

	"github.com/signadot/go-rdata/encode"
	"github.com/signadot/go-rdata/rfile"
	"github.com/signadot/go-rdata/robj"

	"github.com/scott-cotton/cli"
)

func convert(cfg *ConvertConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Convert.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: convert takes at most one file", cli.ErrUsage)
	}
	d, err := cfg.load(inputs(args)[0])
	if err != nil {
		return err
	}
	o, err := cfg.options(d)
	if err != nil {
		return err
	}
	switch cfg.Version {
	case 0:
	case 2, 3:
		writer := d.Versions.Serialized
		d.Versions = robj.VersionsFor(cfg.Version)
		d.Versions.Serialized = writer
		if cfg.Version < robj.MinVersionWithEncoding {
			d.Extra.Encoding = ""
		} else if d.Extra.Encoding == "" {
			d.Extra.Encoding = "UTF-8"
		}
	default:
		return fmt.Errorf("%w: format version %d", cli.ErrUsage, cfg.Version)
	}
	cfg.logger().Debug("converting",
		"wire", o.Wire,
		"compression", o.Compression,
		"file", o.FileType,
		"version", d.Versions.Format)
	return rfile.Encode(cc.Out, d, o, encode.EncodeLogger(cfg.logger()))
}
