package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/tanglebyte/supersetds/elfpack"
	"github.com/tanglebyte/supersetds/sample"
	"github.com/tanglebyte/supersetds/xerrors"
)

func loadSample(path string) (*sample.ExecutableSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.IO(err, "opening sample "+path)
	}
	defer f.Close()
	s, err := sample.DecodeFrom(f)
	if err != nil {
		return nil, xerrors.Decode(err, "decoding sample "+path)
	}
	return s, nil
}

var showSampleCommand = cli.Command{
	Name:      "show-sample",
	Usage:     "print a persisted sample's memory map and ground-truth coverage",
	ArgsUsage: "sample-path",
	Flags: []cli.Flag{
		cli.BoolFlag{Name: "dump-ranges", Usage: "also print the instruction/data interval listing"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return cli.NewExitError("missing sample-path", 1)
		}
		s, err := loadSample(c.Args().First())
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		fmt.Println("Memory map:")
		for _, r := range s.Memory.Regions {
			fmt.Printf("  %#08x-%#08x %s %s\n", r.Addr, r.End(), r.Prot, r.Name)
		}

		if c.Bool("dump-ranges") {
			fmt.Println("Ranges:")
			fmt.Println(s.Classes.Dump())
		}

		instrBytes, dataBytes := s.Classes.Coverage()
		var total uint64
		for _, r := range s.Memory.Regions {
			total += uint64(len(r.Data))
		}
		var pct float64
		if total > 0 {
			pct = float64(instrBytes) / float64(total) * 100
		}
		fmt.Printf("Coverage: %d/%d instruction bytes (%.2f%%), %d data bytes\n", instrBytes, total, pct, dataBytes)
		return nil
	},
}

var sampleToStrippedElfCommand = cli.Command{
	Name:      "sample-to-stripped-elf",
	Usage:     "package a sample's memory image as a minimal ELF32 for external disassemblers",
	ArgsUsage: "sample-path output-path",
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			return cli.NewExitError("usage: sample-to-stripped-elf sample-path output-path", 1)
		}
		s, err := loadSample(c.Args().Get(0))
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		out, err := os.Create(c.Args().Get(1))
		if err != nil {
			return cli.NewExitError(xerrors.IO(err, "creating output elf"), 1)
		}
		defer out.Close()
		if err := elfpack.Write(s.Memory, out); err != nil {
			return cli.NewExitError(xerrors.Wrap(err, "writing stripped elf"), 1)
		}
		return nil
	},
}
