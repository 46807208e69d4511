package superset

import (
	"testing"

	"github.com/tanglebyte/supersetds/addrclass"
	"github.com/tanglebyte/supersetds/memimage"
)

// S3: NOP NOP RET pad, ground truth covers the three real instructions.
func TestBuildSmallSuperset(t *testing.T) {
	img, err := memimage.New([]memimage.Region{
		{Addr: 0x1000, Data: []byte{0x90, 0x90, 0xC3, 0x00}, Prot: memimage.ProtRead | memimage.ProtExec},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	classes := addrclass.New()
	classes.MarkInstruction(0x1000, 3)

	s, err := Build(img, classes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Entries) != 4 {
		t.Fatalf("len(Entries) = %d, want 4", len(s.Entries))
	}

	want := []Label{Code, Code, Code, NotCode}
	for i, e := range s.Entries {
		if e.Label == nil {
			t.Fatalf("entry %d has no label", i)
		}
		if *e.Label != want[i] {
			t.Errorf("entry %d label = %v, want %v", i, *e.Label, want[i])
		}
	}

	ret := s.Entries[2]
	if ret.Feature.FallsThrough {
		t.Error("RET at 0x1002 should not fall through")
	}
}

func TestAtIndex(t *testing.T) {
	img, _ := memimage.New([]memimage.Region{
		{Addr: 0x2000, Data: []byte{0x90, 0x90}, Prot: memimage.ProtRead | memimage.ProtExec},
	})
	s, err := Build(img, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i, ok := s.At(0x2001)
	if !ok || i != 1 {
		t.Fatalf("At(0x2001) = %d,%v, want 1,true", i, ok)
	}
	for _, e := range s.Entries {
		if e.Label != nil {
			t.Fatal("no classes given, labels should be nil")
		}
	}
}
