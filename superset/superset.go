// Package superset builds the dense, per-byte-address candidate instruction
// array that downstream graph construction and NPZ emission consume, the
// way the teacher's disassembler package walks every byte of a loaded
// program and turns it into a flat ordered node list (disassembler.Disasm).
package superset

import (
	"github.com/tanglebyte/supersetds/addrclass"
	"github.com/tanglebyte/supersetds/memimage"
	"github.com/tanglebyte/supersetds/regset"
	"github.com/tanglebyte/supersetds/xdecode"
)

// Label is the ground-truth classification of a candidate decode.
type Label uint8

const (
	NotCode Label = iota
	Code
)

func (l Label) String() string {
	if l == Code {
		return "Code"
	}
	return "NotCode"
}

// Feature is the per-candidate-instruction record extracted from the
// decoder at one byte address.
type Feature struct {
	Size         uint8 // 1..15; 0 means the decode failed (invalid opcode)
	Opcode       uint16
	JumpTarget   *uint32
	FallsThrough bool
	Uses         regset.Set
	Defines      regset.Set
}

// Valid reports whether a decode succeeded at this address.
func (f Feature) Valid() bool { return f.Size > 0 }

// Entry is one dense-array record: the address, its decoded feature, and an
// optional ground-truth label.
type Entry struct {
	Addr    uint32
	Feature Feature
	Label   *Label
}

// Sample is the dense ordered sequence of entries, one per byte of every
// executable region in the source image, in region-then-ascending-address
// order. At gives O(1) address-to-index lookup.
type Sample struct {
	Entries []Entry

	// addrIndex maps an address back to its position in Entries.
	addrIndex map[uint32]int
}

// At returns the index of addr in the dense array, if it was decoded.
func (s *Sample) At(addr uint32) (int, bool) {
	i, ok := s.addrIndex[addr]
	return i, ok
}

// Build runs the two-pass superset algorithm over img, labeling entries
// against classes when classes is non-nil.
func Build(img *memimage.Image, classes *addrclass.Classes) (*Sample, error) {
	var truthStarts map[uint32]struct{}
	if classes != nil {
		truthStarts = groundTruthStarts(img, classes)
	}

	s := &Sample{addrIndex: make(map[uint32]int)}
	for _, region := range img.Executable() {
		for off := 0; off < len(region.Data); off++ {
			addr := region.Addr + uint32(off)
			feat := decodeAt(region.Data[off:], addr)

			entry := Entry{Addr: addr, Feature: feat}
			if classes != nil {
				_, isStart := truthStarts[addr]
				lbl := NotCode
				if isStart {
					lbl = Code
				}
				entry.Label = &lbl
			}

			s.addrIndex[addr] = len(s.Entries)
			s.Entries = append(s.Entries, entry)
		}
	}
	return s, nil
}

// groundTruthStarts decodes linearly within each true_instructions interval
// to recover the exact set of addresses where a true instruction begins.
func groundTruthStarts(img *memimage.Image, classes *addrclass.Classes) map[uint32]struct{} {
	starts := make(map[uint32]struct{})
	for _, iv := range classes.Instructions.Iter() {
		addr := iv.Start()
		for addr < iv.End() {
			remaining := img.Slice(addr, int(iv.End()-addr))
			if len(remaining) == 0 {
				break
			}
			inst, err := xdecode.Decode(remaining, addr)
			if err != nil || inst.Size == 0 {
				break
			}
			if uint64(addr)+uint64(inst.Size) > uint64(iv.End()) {
				break
			}
			starts[addr] = struct{}{}
			addr += uint32(inst.Size)
		}
	}
	return starts
}

// decodeAt decodes a single candidate instruction at addr; a decode failure
// yields a zero-value (invalid) Feature rather than an error, since invalid
// opcodes are a normal, expected outcome of dense byte-wise decoding.
func decodeAt(window []byte, addr uint32) Feature {
	inst, err := xdecode.Decode(window, addr)
	if err != nil || inst.Size == 0 || inst.Size > 15 {
		return Feature{}
	}
	return Feature{
		Size:         uint8(inst.Size),
		Opcode:       uint16(inst.Op),
		JumpTarget:   inst.JumpTarget,
		FallsThrough: inst.FallsThrough,
		Uses:         inst.Uses,
		Defines:      inst.Defines,
	}
}
