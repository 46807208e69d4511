// Package fetch implements the sources config and sync-stamp bookkeeping for
// `fetch-data`: deciding which configured corpus subdirectories are stale
// and need re-fetching. The actual Debian/ByteWeight network fetchers are
// external collaborators out of spec.md's scope (§1); this package owns the
// contract around them — config shape, staleness comparison, stamp
// persistence — the way the teacher's cmd/run68 owns process lifecycle
// around an emulator loop it doesn't implement the instruction set for
// itself in that command.
package fetch

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tanglebyte/supersetds/xerrors"
)

// SourceType tags which corpus a Source pulls from.
type SourceType string

const (
	SourceDebian     SourceType = "debian"
	SourceByteWeight SourceType = "byteweight"
)

// DebianSource configures a Debian package-archive source.
type DebianSource struct {
	Suite        string `yaml:"suite" json:"suite"`
	Architecture string `yaml:"architecture" json:"architecture"`
	Component    string `yaml:"component" json:"component"`
}

// ByteWeightSource configures a ByteWeight-corpus source.
type ByteWeightSource struct {
	URL string `yaml:"url" json:"url"`
}

// Source is one configured corpus entry: where it lands (Subdirectory) and
// which fetcher and parameters produce it.
type Source struct {
	Subdirectory string            `yaml:"subdirectory" json:"subdirectory"`
	Type         SourceType        `yaml:"type" json:"type"`
	Debian       *DebianSource     `yaml:"debian,omitempty" json:"debian,omitempty"`
	ByteWeight   *ByteWeightSource `yaml:"byteweight,omitempty" json:"byteweight,omitempty"`
}

// Config is the top-level sources.yaml shape.
type Config struct {
	Sources []Source `yaml:"sources"`
}

const stampFileName = "sync-stamp"

// readStamp returns the SourceType-specific config recorded by the last
// successful sync of dir, or nil if no stamp exists yet.
func readStamp(dir string) (*Source, error) {
	raw, err := os.ReadFile(filepath.Join(dir, stampFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.IO(err, "reading sync-stamp")
	}
	var s Source
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, xerrors.Decode(err, "parsing sync-stamp")
	}
	return &s, nil
}

func writeStamp(dir string, src Source) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return xerrors.Wrap(err, "encoding sync-stamp")
	}
	if err := os.WriteFile(filepath.Join(dir, stampFileName), raw, 0o644); err != nil {
		return xerrors.IO(err, "writing sync-stamp")
	}
	return nil
}

// specEqual reports whether two Source values describe the same fetch
// parameters, ignoring nothing — the stamp records the config object used
// last, and any field change (including which subdirectory it targets)
// counts as outdated.
func specEqual(a, b Source) bool {
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return string(ab) == string(bb)
}

// Fetcher performs the actual network fetch for one source into dir,
// writing one *.sample file per recovered executable. The Debian and
// ByteWeight fetchers are external collaborators (spec.md §1 Out of
// scope); StubFetcher below documents the contract without performing any
// network I/O.
type Fetcher interface {
	Fetch(src Source, dir string) error
}

// StubFetcher satisfies Fetcher without touching the network: it exists so
// sync staleness/stamping logic is fully exercised and testable even though
// the corpus fetchers themselves are out of scope.
type StubFetcher struct{}

func (StubFetcher) Fetch(src Source, dir string) error {
	return xerrors.Tool(nil, "fetching "+string(src.Type)+" sources is an external collaborator not implemented by this core")
}

// Outdated returns the subset of cfg.Sources whose recorded stamp under
// directory/<subdirectory> doesn't match, in configured order.
func Outdated(cfg *Config, directory string) ([]Source, error) {
	seen := make(map[string]struct{}, len(cfg.Sources))
	var outdated []Source
	for _, src := range cfg.Sources {
		if _, dup := seen[src.Subdirectory]; dup {
			return nil, xerrors.Invariant("subdirectory " + src.Subdirectory + " is used for multiple sources")
		}
		seen[src.Subdirectory] = struct{}{}

		stamped, err := readStamp(filepath.Join(directory, src.Subdirectory))
		if err != nil {
			return nil, err
		}
		if stamped != nil && specEqual(*stamped, src) {
			continue
		}
		outdated = append(outdated, src)
	}
	return outdated, nil
}

// Sync fetches every outdated source with fetcher and stamps it on success.
// A per-source failure is wrapped with context and returned immediately:
// unlike the bulk sample pipeline, fetch-data is a small, sequential job
// with no fan-out to keep running after one source fails.
func Sync(cfg *Config, directory string, fetcher Fetcher) error {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return xerrors.IO(err, "creating sources directory")
	}

	outdated, err := Outdated(cfg, directory)
	if err != nil {
		return err
	}

	for _, src := range outdated {
		dir := filepath.Join(directory, src.Subdirectory)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return xerrors.IO(err, "creating source directory "+src.Subdirectory)
		}
		if err := fetcher.Fetch(src, dir); err != nil {
			return xerrors.Wrapf(err, "fetching source %s", src.Subdirectory)
		}
		if err := writeStamp(dir, src); err != nil {
			return xerrors.Wrapf(err, "stamping source %s", src.Subdirectory)
		}
	}
	return nil
}
