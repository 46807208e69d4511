package fetch

import (
	"os"
	"path/filepath"
	"testing"
)

type fakeFetcher struct {
	calls []Source
}

func (f *fakeFetcher) Fetch(src Source, dir string) error {
	f.calls = append(f.calls, src)
	return nil
}

func TestOutdatedRejectsDuplicateSubdirectory(t *testing.T) {
	cfg := &Config{Sources: []Source{
		{Subdirectory: "debian", Type: SourceDebian},
		{Subdirectory: "debian", Type: SourceByteWeight},
	}}
	if _, err := Outdated(cfg, t.TempDir()); err == nil {
		t.Fatalf("Outdated() = nil, want duplicate-subdirectory error")
	}
}

func TestSyncStampsAndSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Sources: []Source{
		{Subdirectory: "debian", Type: SourceDebian, Debian: &DebianSource{Suite: "bookworm", Architecture: "i386"}},
	}}

	f := &fakeFetcher{}
	if err := Sync(cfg, dir, f); err != nil {
		t.Fatalf("first Sync() = %v, want nil", err)
	}
	if len(f.calls) != 1 {
		t.Fatalf("fetch called %d times, want 1", len(f.calls))
	}

	if _, err := os.Stat(filepath.Join(dir, "debian", stampFileName)); err != nil {
		t.Fatalf("sync-stamp not written: %v", err)
	}

	if err := Sync(cfg, dir, f); err != nil {
		t.Fatalf("second Sync() = %v, want nil", err)
	}
	if len(f.calls) != 1 {
		t.Fatalf("fetch called %d times after unchanged resync, want still 1", len(f.calls))
	}
}

func TestSyncRefetchesOnSpecChange(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Sources: []Source{
		{Subdirectory: "debian", Type: SourceDebian, Debian: &DebianSource{Suite: "bookworm", Architecture: "i386"}},
	}}
	f := &fakeFetcher{}
	if err := Sync(cfg, dir, f); err != nil {
		t.Fatalf("first Sync() = %v, want nil", err)
	}

	cfg.Sources[0].Debian.Suite = "bullseye"
	if err := Sync(cfg, dir, f); err != nil {
		t.Fatalf("second Sync() = %v, want nil", err)
	}
	if len(f.calls) != 2 {
		t.Fatalf("fetch called %d times after spec change, want 2", len(f.calls))
	}
}

func TestStubFetcherReturnsToolError(t *testing.T) {
	err := StubFetcher{}.Fetch(Source{Type: SourceDebian}, t.TempDir())
	if err == nil {
		t.Fatalf("StubFetcher.Fetch() = nil, want error")
	}
}
