package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/tanglebyte/supersetds/bulk"
	"github.com/tanglebyte/supersetds/similarity"
	"github.com/tanglebyte/supersetds/xerrors"
)

// ngramN is the n-gram window width spec.md §4.H fixes for every
// similarity comparison.
const ngramN = 4

// splitThreshold is the pairwise-similarity cutoff at or above which two samples
// are joined into the same connected component before greedy assignment.
const splitThreshold = 0.3

func buildNGramIndexes(paths []string) ([]*similarity.NGramIndex, error) {
	indexes := make([]*similarity.NGramIndex, len(paths))
	for i, path := range paths {
		s, err := loadSample(path)
		if err != nil {
			return nil, err
		}
		indexes[i] = similarity.NewNGramIndex(s.Memory, ngramN)
	}
	return indexes, nil
}

var checkSimilarityCommand = cli.Command{
	Name:      "check-similarity",
	Usage:     "print the pairwise n-gram similarity matrix for a list of samples",
	ArgsUsage: "sample-path...",
	Action: func(c *cli.Context) error {
		paths := []string(c.Args())
		if len(paths) < 2 {
			return cli.NewExitError("usage: check-similarity sample-path sample-path...", 1)
		}

		indexes, err := buildNGramIndexes(paths)
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		m := similarity.NewMatrix(len(paths))
		for _, pair := range similarity.Pairs(len(paths)) {
			i, j := pair[0], pair[1]
			m.Set(i, j, similarity.Similarity(indexes[i], indexes[j]))
		}

		bold := color.New(color.Bold)
		fmt.Print("       ")
		for _, p := range paths {
			fmt.Printf("%-8s", filepath.Base(p))
		}
		fmt.Println()
		for i := range paths {
			fmt.Printf("%-7s", filepath.Base(paths[i]))
			for j := range paths {
				v := m.At(i, j)
				cell := fmt.Sprintf("%-8.2f", v)
				if i == j {
					bold.Print(cell)
				} else {
					fmt.Print(cell)
				}
			}
			fmt.Println()
		}
		return nil
	},
}

var splitSamplesCommand = cli.Command{
	Name:      "split-samples",
	Usage:     "partition a samples directory into train/test lists by similarity-clustered components",
	ArgsUsage: "samples-path output-directory",
	Flags: []cli.Flag{
		cli.Float64Flag{Name: "train-fraction", Value: 0.8, Usage: "target fraction of samples assigned to train.txt"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			return cli.NewExitError("usage: split-samples samples-path output-directory", 1)
		}
		samplesPath := c.Args().Get(0)
		outDir := c.Args().Get(1)

		paths, err := bulk.CollectSamples(samplesPath)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		if len(paths) == 0 {
			return cli.NewExitError("no samples found under "+samplesPath, 1)
		}

		indexes, err := buildNGramIndexes(paths)
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		uf := similarity.NewUnionFind(len(paths))
		for _, pair := range similarity.Pairs(len(paths)) {
			i, j := pair[0], pair[1]
			if similarity.Similarity(indexes[i], indexes[j]) >= splitThreshold {
				uf.Union(i, j)
			}
		}

		sizes := make([]uint64, len(paths))
		for i, idx := range indexes {
			sizes[i] = idx.Total
		}
		components := uf.Components(sizes)

		trainFraction := c.Float64("train-fraction")
		builder := similarity.NewBuilder([]float64{trainFraction, 1 - trainFraction})
		for _, members := range components {
			builder.PushComponent(members, componentSizeOf(members, sizes))
		}
		results := builder.Build()

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return cli.NewExitError(xerrors.IO(err, "creating output directory"), 1)
		}
		names := []string{"train.txt", "test.txt"}
		for i, res := range results {
			if i >= len(names) {
				break
			}
			if err := writeSplitList(filepath.Join(outDir, names[i]), res.Items, paths); err != nil {
				return cli.NewExitError(err, 1)
			}
		}
		return nil
	},
}

func componentSizeOf(members []int, sizes []uint64) uint64 {
	var total uint64
	for _, m := range members {
		total += sizes[m]
	}
	return total
}

func writeSplitList(path string, indices []int, paths []string) error {
	lines := make([]string, len(indices))
	for i, idx := range indices {
		lines[i] = paths[idx]
	}
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return xerrors.IO(err, "writing split list "+path)
	}
	return nil
}
