package main

import (
	"fmt"

	"github.com/signadot/go-rdata/robj"

	"github.com/scott-cotton/cli"
)

func hash(cfg *HashConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Hash.Parse(cc, args)
	if err != nil {
		return err
	}
	for _, arg := range inputs(args) {
		d, err := cfg.load(arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cc.Out, "%x  %s\n", robj.Fingerprint(d.Object), arg)
	}
	return nil
}
