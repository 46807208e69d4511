// Package bulk implements the 16-worker data-parallel sample pipeline:
// collecting *.sample files, reducing a shared vocabulary across all of
// them, and turning each into a graph NPZ bundle, using
// golang.org/x/sync/errgroup the way the original tool's rayon thread pool
// processes samples independently and reduces per-sample results. Jobs fail
// fast: the first per-sample failure is logged, counted, and cancels
// dispatch of any remaining work, while samples already in flight are left
// to finish, matching the original tool's try_reduce/try_for_each.
package bulk

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/karrick/godirwalk"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tanglebyte/supersetds/graphbuild"
	"github.com/tanglebyte/supersetds/npz"
	"github.com/tanglebyte/supersetds/sample"
	"github.com/tanglebyte/supersetds/superset"
	"github.com/tanglebyte/supersetds/vocab"
	"github.com/tanglebyte/supersetds/xerrors"
	"github.com/tanglebyte/supersetds/xlog"
)

// Workers is the recommended fixed worker-pool size from spec.md §5.
const Workers = 16

// CollectSamples walks root and returns every "*.sample" file found, in
// lexical order, the way the original tool's walkdir-based bulk jobs
// enumerate a corpus directory.
func CollectSamples(root string) ([]string, error) {
	var paths []string
	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			if strings.HasSuffix(osPathname, ".sample") {
				paths = append(paths, osPathname)
			}
			return nil
		},
	})
	if err != nil {
		return nil, xerrors.IO(err, "walking samples directory "+root)
	}
	sort.Strings(paths)
	return paths, nil
}

// FailedSample records one per-sample failure for a bulk job's summary.
type FailedSample struct {
	Path string
	Err  error
}

// Summary aggregates one bulk job's per-sample outcomes.
type Summary struct {
	Total     int
	Succeeded int
	Failed    []FailedSample
}

// loadSample reads and decodes one persisted sample file.
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

// BuildVocabulary runs the vocabulary map-reduce over paths: each worker
// builds a private FreqMap for its sample, merged pairwise into one shared
// accumulator guarded by a mutex (merge is associative and commutative, so
// reduction order never matters). showProgress mirrors the original's
// indicatif::ParallelProgressIterator over the vocabulary pass. The first
// per-sample failure cancels dispatch of any remaining paths and is
// returned; samples already dispatched are left to finish.
func BuildVocabulary(ctx context.Context, paths []string, topK int, showProgress bool) (*vocab.Vocab, vocab.FreqMap, Summary, error) {
	log := xlog.L()

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(len(paths)), "building vocabulary")
	}

	var mu sync.Mutex
	acc := make(vocab.FreqMap)
	summary := Summary{Total: len(paths)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(Workers)

dispatch:
	for _, path := range paths {
		select {
		case <-gctx.Done():
			break dispatch
		default:
		}

		path := path
		g.Go(func() error {
			freq, err := vocabForSample(path)
			if bar != nil {
				_ = bar.Add(1)
			}
			if err != nil {
				log.Error().Err(err).Str("sample", path).Msg("vocabulary pass failed for sample")
				mu.Lock()
				summary.Failed = append(summary.Failed, FailedSample{Path: path, Err: err})
				mu.Unlock()
				return err // fail fast: stop dispatching new work, let in-flight samples finish
			}

			mu.Lock()
			acc = acc.Merge(freq)
			summary.Succeeded++
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	return vocab.BuildTopK(acc, topK), acc, summary, err
}

func vocabForSample(path string) (vocab.FreqMap, error) {
	s, err := loadSample(path)
	if err != nil {
		return nil, err
	}
	ss, err := superset.Build(s.Memory, s.Classes)
	if err != nil {
		return nil, xerrors.Wrap(err, "building superset")
	}
	freq := make(vocab.FreqMap)
	for _, e := range ss.Entries {
		if !e.Feature.Valid() {
			freq[vocab.Invalid]++
			continue
		}
		freq[e.Feature.Opcode]++
	}
	return freq, nil
}

// MakeGraphForPath loads, decodes, builds the superset and graph for one
// sample, and writes its NPZ bundle to outPath.
func MakeGraphForPath(path, outPath string, v *vocab.Vocab) error {
	s, err := loadSample(path)
	if err != nil {
		return err
	}
	ss, err := superset.Build(s.Memory, s.Classes)
	if err != nil {
		return xerrors.Wrap(err, "building superset")
	}
	gs := graphbuild.Build(ss)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return xerrors.IO(err, "creating output directory")
	}
	f, err := os.Create(outPath)
	if err != nil {
		return xerrors.IO(err, "creating npz output "+outPath)
	}
	defer f.Close()

	if err := npz.Emit(f, gs, v); err != nil {
		return xerrors.Wrap(err, "emitting npz "+outPath)
	}
	return nil
}

// MakeGraphs runs MakeGraphForPath over every path in a bounded
// errgroup-backed worker pool, writing each result under outDir with the
// same base name and a .npz extension. The first failing sample is logged,
// counted, and cancels dispatch of any remaining paths; samples already
// dispatched are left to finish, and the first failure is returned.
func MakeGraphs(ctx context.Context, paths []string, outDir string, v *vocab.Vocab, showProgress bool) (Summary, error) {
	log := xlog.L()

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(len(paths)), "building graphs")
	}

	var mu sync.Mutex
	summary := Summary{Total: len(paths)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(Workers)

dispatch:
	for _, path := range paths {
		select {
		case <-gctx.Done():
			break dispatch
		default:
		}

		path := path
		g.Go(func() error {
			outPath := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(path), ".sample")+".npz")
			err := MakeGraphForPath(path, outPath, v)
			if bar != nil {
				_ = bar.Add(1)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error().Err(err).Str("sample", path).Msg("graph pass failed for sample")
				summary.Failed = append(summary.Failed, FailedSample{Path: path, Err: err})
				return err // fail fast: stop dispatching new work, let in-flight samples finish
			}
			summary.Succeeded++
			return nil
		})
	}
	err := g.Wait()
	return summary, err
}

// MakeGraphsRelative behaves like MakeGraphs but mirrors each sample's
// position under samplesRoot into outDir instead of flattening every
// output into one directory, the way the original tool's bulk-make-graph
// command derives each output path via sample_path.strip_prefix(samples_path).
func MakeGraphsRelative(ctx context.Context, paths []string, samplesRoot, outDir string, v *vocab.Vocab, showProgress bool) (Summary, error) {
	log := xlog.L()

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(len(paths)), "building graphs")
	}

	var mu sync.Mutex
	summary := Summary{Total: len(paths)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(Workers)

dispatch:
	for _, path := range paths {
		select {
		case <-gctx.Done():
			break dispatch
		default:
		}

		path := path
		g.Go(func() error {
			rel, err := filepath.Rel(samplesRoot, path)
			if err != nil {
				rel = filepath.Base(path)
			}
			outPath := filepath.Join(outDir, strings.TrimSuffix(rel, ".sample")+".npz")
			err = MakeGraphForPath(path, outPath, v)
			if bar != nil {
				_ = bar.Add(1)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error().Err(err).Str("sample", path).Msg("graph pass failed for sample")
				summary.Failed = append(summary.Failed, FailedSample{Path: path, Err: err})
				return err // fail fast: stop dispatching new work, let in-flight samples finish
			}
			summary.Succeeded++
			return nil
		})
	}
	err := g.Wait()
	return summary, err
}
