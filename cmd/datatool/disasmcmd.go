package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"

	"github.com/tanglebyte/supersetds/disasmtool"
	"github.com/tanglebyte/supersetds/evaluate"
	"github.com/tanglebyte/supersetds/superset"
	"github.com/tanglebyte/supersetds/xerrors"
	"github.com/tanglebyte/supersetds/xlog"
)

func loadRunnersConfig(path string) (*disasmtool.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.IO(err, "reading runners config "+path)
	}
	var cfg disasmtool.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, xerrors.Decode(err, "parsing runners config "+path)
	}
	return &cfg, nil
}

func printEvaluation(name string, r evaluate.Result) {
	fmt.Printf("%s: tp=%d fp=%d fn=%d precision=%.4f recall=%.4f f1=%.4f\n",
		name, r.TruePositives, r.FalsePositives, r.FalseNegatives, r.Precision, r.Recall, r.F1)
}

var runDisasmToolCommand = cli.Command{
	Name:      "run-disasm-tool",
	Usage:     "run one configured disassembler against a sample and print its evaluation",
	ArgsUsage: "tool-name sample-path runners-config",
	Action: func(c *cli.Context) error {
		if c.NArg() < 3 {
			return cli.NewExitError("usage: run-disasm-tool tool-name sample-path runners-config", 1)
		}
		name, ok := disasmtool.ParseName(c.Args().Get(0))
		if !ok {
			return cli.NewExitError("unknown tool name "+c.Args().Get(0), 1)
		}
		s, err := loadSample(c.Args().Get(1))
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		cfg, err := loadRunnersConfig(c.Args().Get(2))
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		ss, err := superset.Build(s.Memory, s.Classes)
		if err != nil {
			return cli.NewExitError(xerrors.Wrap(err, "building superset"), 1)
		}

		predicted, err := disasmtool.Run(context.Background(), name, cfg, s)
		if err != nil {
			return cli.NewExitError(xerrors.Wrap(err, "running "+name.String()), 1)
		}

		printEvaluation(name.String(), evaluate.Evaluate(ss, predicted))
		return nil
	},
}

var runDisasmToolsCommand = cli.Command{
	Name:      "run-disasm-tools",
	Usage:     "run every tool configured in runners.yaml against a sample and print one summary per tool",
	ArgsUsage: "sample-path runners-config",
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			return cli.NewExitError("usage: run-disasm-tools sample-path runners-config", 1)
		}
		s, err := loadSample(c.Args().Get(0))
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		cfg, err := loadRunnersConfig(c.Args().Get(1))
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		ss, err := superset.Build(s.Memory, s.Classes)
		if err != nil {
			return cli.NewExitError(xerrors.Wrap(err, "building superset"), 1)
		}

		log := xlog.L()
		for _, name := range []disasmtool.Name{disasmtool.Ida, disasmtool.DeepDi, disasmtool.IdentifyX86} {
			predicted, err := disasmtool.Run(context.Background(), name, cfg, s)
			if err != nil {
				log.Error().Err(err).Str("tool", name.String()).Msg("tool run failed")
				continue
			}
			printEvaluation(name.String(), evaluate.Evaluate(ss, predicted))
		}
		return nil
	},
}
