// Package memimage models the loaded memory layout of an executable sample:
// an ordered list of byte-backed regions, each carrying a base address and
// page protection, the same way the teacher's disassembler walks a flat
// ordered list of decoded nodes rather than a random-access structure.
package memimage

import (
	"fmt"
	"sort"

	"github.com/tanglebyte/supersetds/interval"
)

// Protection is a page-permission bitmask.
type Protection uint8

const (
	ProtRead Protection = 1 << iota
	ProtWrite
	ProtExec
)

func (p Protection) String() string {
	r, w, x := "-", "-", "-"
	if p&ProtRead != 0 {
		r = "r"
	}
	if p&ProtWrite != 0 {
		w = "w"
	}
	if p&ProtExec != 0 {
		x = "x"
	}
	return r + w + x
}

// Region is a contiguous span of bytes loaded at a fixed virtual address.
type Region struct {
	Addr  uint32
	Data  []byte
	Prot  Protection
	Name  string // section/segment name, informational only
}

// End returns the address one past the last byte of the region.
func (r Region) End() uint32 { return r.Addr + uint32(len(r.Data)) }

// Interval returns the region's address range as a half-open interval.
func (r Region) Interval() interval.Interval[uint32] {
	return interval.FromLen(r.Addr, uint32(len(r.Data)))
}

// Image is an ordered, non-overlapping collection of memory regions, in
// ascending address order.
type Image struct {
	Regions []Region
}

// New builds an Image from regions, sorting them by address. Returns an
// error if any two regions overlap.
func New(regions []Region) (*Image, error) {
	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Addr < sorted[j].Addr })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Addr < sorted[i-1].End() {
			return nil, fmt.Errorf("memimage: region %q [%#x,%#x) overlaps %q ending at %#x",
				sorted[i].Name, sorted[i].Addr, sorted[i].End(), sorted[i-1].Name, sorted[i-1].End())
		}
	}
	return &Image{Regions: sorted}, nil
}

// Executable returns the regions with the exec bit set.
func (m *Image) Executable() []Region {
	var out []Region
	for _, r := range m.Regions {
		if r.Prot&ProtExec != 0 {
			out = append(out, r)
		}
	}
	return out
}

// ByteAt returns the byte at addr and whether addr falls within a region.
func (m *Image) ByteAt(addr uint32) (byte, bool) {
	r, ok := m.RegionContaining(addr)
	if !ok {
		return 0, false
	}
	return r.Data[addr-r.Addr], true
}

// RegionContaining returns the region spanning addr, if any.
func (m *Image) RegionContaining(addr uint32) (Region, bool) {
	i := sort.Search(len(m.Regions), func(i int) bool { return m.Regions[i].End() > addr })
	if i < len(m.Regions) && m.Regions[i].Addr <= addr {
		return m.Regions[i], true
	}
	return Region{}, false
}

// Slice returns up to maxLen bytes starting at addr, truncated to the end of
// the region addr falls in. Returns nil if addr is unmapped.
func (m *Image) Slice(addr uint32, maxLen int) []byte {
	r, ok := m.RegionContaining(addr)
	if !ok {
		return nil
	}
	off := addr - r.Addr
	end := int(off) + maxLen
	if end > len(r.Data) {
		end = len(r.Data)
	}
	return r.Data[off:end]
}

// AddressBounds returns the lowest and highest+1 addresses spanned by any
// region, or (0, 0) for an empty image.
func (m *Image) AddressBounds() (lo, hi uint32) {
	if len(m.Regions) == 0 {
		return 0, 0
	}
	return m.Regions[0].Addr, m.Regions[len(m.Regions)-1].End()
}
