package main

import (
	"context"
	"os"

	"github.com/urfave/cli"

	"github.com/tanglebyte/supersetds/bulk"
	"github.com/tanglebyte/supersetds/graphbuild"
	"github.com/tanglebyte/supersetds/npz"
	"github.com/tanglebyte/supersetds/superset"
	"github.com/tanglebyte/supersetds/vocab"
	"github.com/tanglebyte/supersetds/xerrors"
	"github.com/tanglebyte/supersetds/xlog"
)

var makeSupersetCommand = cli.Command{
	Name:      "make-superset",
	Usage:     "build and persist the dense superset decode for one sample",
	ArgsUsage: "sample-path output-path",
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			return cli.NewExitError("usage: make-superset sample-path output-path", 1)
		}
		s, err := loadSample(c.Args().Get(0))
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		ss, err := superset.Build(s.Memory, s.Classes)
		if err != nil {
			return cli.NewExitError(xerrors.Wrap(err, "building superset"), 1)
		}

		out, err := os.Create(c.Args().Get(1))
		if err != nil {
			return cli.NewExitError(xerrors.IO(err, "creating superset output"), 1)
		}
		defer out.Close()
		if err := ss.EncodeTo(out); err != nil {
			return cli.NewExitError(xerrors.Wrap(err, "encoding superset"), 1)
		}
		return nil
	},
}

var makeGraphCommand = cli.Command{
	Name:      "make-graph",
	Usage:     "build the relation graph for one sample and emit its NPZ bundle",
	ArgsUsage: "sample-path vocab-path output-path",
	Action: func(c *cli.Context) error {
		if c.NArg() < 3 {
			return cli.NewExitError("usage: make-graph sample-path vocab-path output-path", 1)
		}
		s, err := loadSample(c.Args().Get(0))
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		ss, err := superset.Build(s.Memory, s.Classes)
		if err != nil {
			return cli.NewExitError(xerrors.Wrap(err, "building superset"), 1)
		}
		gs := graphbuild.Build(ss)

		v, err := loadVocab(c.Args().Get(1))
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		out, err := os.Create(c.Args().Get(2))
		if err != nil {
			return cli.NewExitError(xerrors.IO(err, "creating graph output"), 1)
		}
		defer out.Close()
		if err := npz.Emit(out, gs, v); err != nil {
			return cli.NewExitError(xerrors.Wrap(err, "emitting npz"), 1)
		}
		return nil
	},
}

func loadVocab(path string) (*vocab.Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.IO(err, "opening vocab "+path)
	}
	defer f.Close()
	v, err := vocab.Deserialize(f)
	if err != nil {
		return nil, xerrors.Decode(err, "parsing vocab "+path)
	}
	return v, nil
}

var bulkMakeGraphCommand = cli.Command{
	Name:      "bulk-make-graph",
	Usage:     "build a shared vocabulary and every sample's graph NPZ across a samples directory",
	ArgsUsage: "samples-path vocab-out-path graphs-out-path",
	Flags: []cli.Flag{
		cli.IntFlag{Name: "vocab-size", Value: 500, Usage: "top-k opcode vocabulary size"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 3 {
			return cli.NewExitError("usage: bulk-make-graph samples-path vocab-out-path graphs-out-path", 1)
		}
		samplesPath := c.Args().Get(0)
		vocabOutPath := c.Args().Get(1)
		graphsOutPath := c.Args().Get(2)

		log := xlog.L()
		ctx := context.Background()

		paths, err := bulk.CollectSamples(samplesPath)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		log.Info().Int("count", len(paths)).Msg("found samples")

		log.Info().Msg("building vocab")
		v, _, vocabSummary, err := bulk.BuildVocabulary(ctx, paths, c.Int("vocab-size"), true)
		log.Info().Int("succeeded", vocabSummary.Succeeded).Int("failed", len(vocabSummary.Failed)).Msg("vocab pass done")
		for _, f := range vocabSummary.Failed {
			log.Error().Err(f.Err).Str("sample", f.Path).Msg("vocab pass failure")
		}
		if err != nil {
			return cli.NewExitError(xerrors.Wrap(err, "vocabulary pass failed fast"), 1)
		}

		if err := os.MkdirAll(graphsOutPath, 0o755); err != nil {
			return cli.NewExitError(xerrors.IO(err, "creating graphs output directory"), 1)
		}
		if err := writeVocabTo(v, vocabOutPath); err != nil {
			return cli.NewExitError(err, 1)
		}
		// also drop a copy alongside the graphs, matching the original
		// tool's code.vocab convention for downstream training code that
		// only knows the graphs directory.
		if err := writeVocabTo(v, graphsOutPath+"/code.vocab"); err != nil {
			return cli.NewExitError(err, 1)
		}

		log.Info().Msg("building graphs")
		graphSummary, err := bulk.MakeGraphsRelative(ctx, paths, samplesPath, graphsOutPath, v, true)
		log.Info().Int("succeeded", graphSummary.Succeeded).Int("failed", len(graphSummary.Failed)).Msg("graph pass done")
		for _, f := range graphSummary.Failed {
			log.Error().Err(f.Err).Str("sample", f.Path).Msg("graph pass failure")
		}
		if err != nil {
			return cli.NewExitError(xerrors.Wrap(err, "graph pass failed fast"), 1)
		}

		return nil
	},
}

func writeVocabTo(v *vocab.Vocab, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.IO(err, "creating vocab output "+path)
	}
	defer f.Close()
	if err := v.Serialize(f); err != nil {
		return xerrors.Wrap(err, "serializing vocab "+path)
	}
	return nil
}
