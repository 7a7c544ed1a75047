package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "rdata").
		WithSynopsis("rdata [opts] command [opts]").
		WithDescription("rdata reads and writes R serialized data (.rds, .rda).").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return rdataMain(cfg, cc, args)
		}).
		WithSubs(
			DumpCommand(cfg),
			CheckCommand(cfg),
			ConvertCommand(cfg),
			HashCommand(cfg))
}

func DumpCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DumpConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Dump, "dump").
		WithAliases("d").
		WithSynopsis("dump [-yaml] [-depth n] [files]").
		WithDescription("show the object graph of each file").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return dump(cfg, cc, args)
		})
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CheckConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Check, "check").
		WithSynopsis("check [-q] [files]").
		WithDescription("parse each file and check that writing it back reproduces the stream byte for byte").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return check(cfg, cc, args)
		})
}

func ConvertCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ConvertConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Convert, "convert").
		WithAliases("c").
		WithSynopsis("convert [-wire w] [-z c] [-type t] [-version v] [-compact] [file]").
		WithDescription("rewrite a file with another wire format, compression, file type or version").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return convert(cfg, cc, args)
		})
}

func HashCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &HashConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Hash, "hash").
		WithSynopsis("hash [files]").
		WithDescription("print a structural fingerprint of each file's object graph").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return hash(cfg, cc, args)
		})
}
