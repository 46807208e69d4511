package addrclass

import (
	"reflect"
	"testing"

	"github.com/tanglebyte/supersetds/interval"
)

func TestMarkAndStarts(t *testing.T) {
	c := New()
	c.MarkInstruction(0x100, 2)
	c.MarkInstruction(0x102, 3)
	c.MarkData(0x200, 4)

	// the two marks touch at 0x102, so they merge into one [0x100,0x105)
	got := c.InstructionStarts()
	want := []uint32{0x100}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("starts = %v, want %v", got, want)
	}

	if c.IsInstructionStart(0x102) {
		t.Fatal("0x102 lies inside the merged interval, not at its start")
	}
	if c.IsInstructionStart(0x103) {
		t.Fatal("0x103 is mid-instruction, not a start")
	}
}

func TestRelocateAndFilter(t *testing.T) {
	c := New()
	c.MarkInstruction(0x0, 4)
	c.MarkData(0x10, 4)
	c.Relocate(0x1000)

	if !c.IsInstructionStart(0x1000) {
		t.Fatal("expected relocated start at 0x1000")
	}

	f := c.FilterTo(interval.FromLen[uint32](0x1000, 4))
	instrBytes, dataBytes := f.Coverage()
	if instrBytes != 4 || dataBytes != 0 {
		t.Fatalf("coverage after filter = %d,%d, want 4,0", instrBytes, dataBytes)
	}
}

func TestCoverage(t *testing.T) {
	c := New()
	c.MarkInstruction(0, 3)
	c.MarkInstruction(3, 5)
	c.MarkData(100, 7)

	instrBytes, dataBytes := c.Coverage()
	if instrBytes != 8 || dataBytes != 7 {
		t.Fatalf("coverage = %d,%d, want 8,7", instrBytes, dataBytes)
	}
}
