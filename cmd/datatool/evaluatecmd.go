package main

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/tanglebyte/supersetds/superset"
	"github.com/tanglebyte/supersetds/xerrors"

	"github.com/tanglebyte/supersetds/evaluate"
)

// readAddressList parses a plain-text address list, one hex address per
// line (with or without a 0x prefix), the shape run_ida/parse_lst produces
// in the original tool.
func readAddressList(path string) (map[uint32]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.IO(err, "opening address list "+path)
	}
	defer f.Close()

	addrs := make(map[uint32]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(strings.TrimPrefix(line, "0x"), "0X")
		v, err := strconv.ParseUint(line, 16, 32)
		if err != nil {
			return nil, xerrors.Decode(err, "parsing address "+line)
		}
		addrs[uint32(v)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.IO(err, "reading address list "+path)
	}
	return addrs, nil
}

var evaluateCommand = cli.Command{
	Name:      "evaluate",
	Usage:     "score a plain-text predicted-address list against a sample's ground truth",
	ArgsUsage: "sample-path address-list-path",
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			return cli.NewExitError("usage: evaluate sample-path address-list-path", 1)
		}
		s, err := loadSample(c.Args().Get(0))
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		ss, err := superset.Build(s.Memory, s.Classes)
		if err != nil {
			return cli.NewExitError(xerrors.Wrap(err, "building superset"), 1)
		}

		predicted, err := readAddressList(c.Args().Get(1))
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		printEvaluation("evaluate", evaluate.Evaluate(ss, predicted))
		return nil
	},
}
