// Command datatool is the CLI entrypoint tying every core package into the
// eleven subcommands spec.md §6 names, in the same shape as the teacher's
// cmd/asm68 and cmd/dis68 being thin wrappers around the assembler and
// disassembler packages — except here the surface is wide enough to
// warrant urfave/cli instead of hand-rolled flag parsing.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/tanglebyte/supersetds/xlog"
)

func main() {
	if err := xlog.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := cli.NewApp()
	app.Name = "datatool"
	app.Usage = "build a superset-disassembly / GNN training dataset from x86-32 executables with ground truth"
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}
	app.Commands = []cli.Command{
		fetchDataCommand,
		showSampleCommand,
		sampleToStrippedElfCommand,
		makeSupersetCommand,
		makeGraphCommand,
		bulkMakeGraphCommand,
		runDisasmToolCommand,
		runDisasmToolsCommand,
		evaluateCommand,
		checkSimilarityCommand,
		splitSamplesCommand,
	}

	if err := app.Run(os.Args); err != nil {
		xlog.L().Error().Err(err).Msg("datatool failed")
		os.Exit(1)
	}
}
