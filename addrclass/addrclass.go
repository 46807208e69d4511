// Package addrclass holds the ground-truth address classification of a
// sample: which byte addresses belong to true instructions versus data,
// built on top of interval.Set the way the teacher's disassembler keeps a
// flat node list alongside the raw opcode bytes.
package addrclass

import (
	"fmt"

	"github.com/tanglebyte/supersetds/interval"
)

// Classes holds the disjoint true-instruction and true-data address ranges
// of a sample. The two sets need not cover every byte: unknown bytes are
// neither.
type Classes struct {
	Instructions *interval.Set[uint32]
	Data         *interval.Set[uint32]
}

// New returns an empty Classes.
func New() *Classes {
	return &Classes{
		Instructions: interval.NewSet[uint32](),
		Data:         interval.NewSet[uint32](),
	}
}

// MarkInstruction records [addr, addr+size) as a true instruction.
func (c *Classes) MarkInstruction(addr uint32, size uint32) {
	c.Instructions.Push(interval.FromLen(addr, size))
}

// MarkData records [addr, addr+size) as data.
func (c *Classes) MarkData(addr uint32, size uint32) {
	c.Data.Push(interval.FromLen(addr, size))
}

// IsInstructionStart reports whether addr is the first byte of a known
// instruction interval. Unlike Instructions.Contains, this only matches at
// an interval's start.
func (c *Classes) IsInstructionStart(addr uint32) bool {
	for _, iv := range c.Instructions.Iter() {
		if iv.Start() == addr {
			return true
		}
		if iv.Start() > addr {
			break
		}
	}
	return false
}

// InstructionStarts returns the start address of every true-instruction
// interval in ascending order. Touching or overlapping marks merge into one
// interval, so the starts of later instructions inside a merged run are not
// listed.
func (c *Classes) InstructionStarts() []uint32 {
	var out []uint32
	for _, iv := range c.Instructions.Iter() {
		out = append(out, iv.Start())
	}
	return out
}

// Relocate shifts every recorded address by delta, e.g. when a sample is
// re-based to a new load address.
func (c *Classes) Relocate(delta uint32) {
	c.Instructions.Shift(delta)
	c.Data.Shift(delta)
}

// FilterTo clips both classes to window, dropping anything outside it.
func (c *Classes) FilterTo(window interval.Interval[uint32]) *Classes {
	return &Classes{
		Instructions: c.Instructions.Intersect(window),
		Data:         c.Data.Intersect(window),
	}
}

// Coverage returns the number of bytes classified as instructions and as
// data respectively.
func (c *Classes) Coverage() (instrBytes, dataBytes uint32) {
	return c.Instructions.Coverage(), c.Data.Coverage()
}

// Dump renders both classes as a human-readable listing, for show-sample.
func (c *Classes) Dump() string {
	s := "instructions:\n"
	for _, iv := range c.Instructions.Iter() {
		s += fmt.Sprintf("  %s\n", iv)
	}
	s += "data:\n"
	for _, iv := range c.Data.Iter() {
		s += fmt.Sprintf("  %s\n", iv)
	}
	return s
}
