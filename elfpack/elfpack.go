// Package elfpack emits a minimal stripped ELF32 executable from a memory
// image: one PT_LOAD segment per region and nothing else, for feeding
// third-party disassemblers that expect a real ELF container. Grounded on
// stdlib debug/elf's constants the same way the teacher's assembler package
// leans on the target format's fixed binary layout rather than a
// general-purpose writer library.
package elfpack

import (
	"debug/elf"
	"encoding/binary"
	"io"

	"github.com/tanglebyte/supersetds/memimage"
)

const (
	pageAlign   = 0x1000
	ehdrSize    = 52 // ELF32 header
	phdrEntSize = 32 // one Elf32_Phdr
)

// Write emits a minimal ET_EXEC/EM_386 little-endian ELF32 to w: one
// PT_LOAD program header per region of img, segment permissions derived
// from protection, p_align = 0x1000, entry point 0. No section headers, no
// symbol or string tables.
func Write(img *memimage.Image, w io.Writer) error {
	regions := img.Regions
	phoff := uint32(ehdrSize)
	dataStart := alignUp(phoff+uint32(len(regions))*phdrEntSize, pageAlign)

	offsets := make([]uint32, len(regions))
	off := dataStart
	for i, r := range regions {
		offsets[i] = off
		off = alignUp(off+uint32(len(r.Data)), pageAlign)
	}
	total := off

	buf := make([]byte, total)
	writeEhdr(buf, phoff, uint16(len(regions)))
	for i, r := range regions {
		writePhdr(buf[ehdrSize+i*phdrEntSize:], r, offsets[i])
		copy(buf[offsets[i]:], r.Data)
	}

	_, err := w.Write(buf)
	return err
}

func alignUp(v, align uint32) uint32 {
	if v%align == 0 {
		return v
	}
	return v + (align - v%align)
}

func writeEhdr(buf []byte, phoff uint32, phnum uint16) {
	copy(buf[0:4], elf.ELFMAG)
	buf[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	buf[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	buf[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	buf[elf.EI_OSABI] = byte(elf.ELFOSABI_NONE)

	le := binary.LittleEndian
	le.PutUint16(buf[16:], uint16(elf.ET_EXEC))
	le.PutUint16(buf[18:], uint16(elf.EM_386))
	le.PutUint32(buf[20:], uint32(elf.EV_CURRENT))
	le.PutUint32(buf[24:], 0) // e_entry
	le.PutUint32(buf[28:], phoff)
	le.PutUint32(buf[32:], 0) // e_shoff: no section headers
	le.PutUint32(buf[36:], 0) // e_flags
	le.PutUint16(buf[40:], ehdrSize)
	le.PutUint16(buf[42:], phdrEntSize)
	le.PutUint16(buf[44:], phnum)
	le.PutUint16(buf[46:], 0) // e_shentsize
	le.PutUint16(buf[48:], 0) // e_shnum
	le.PutUint16(buf[50:], 0) // e_shstrndx
}

func writePhdr(buf []byte, r memimage.Region, fileOff uint32) {
	le := binary.LittleEndian
	le.PutUint32(buf[0:], uint32(elf.PT_LOAD))
	le.PutUint32(buf[4:], fileOff)
	le.PutUint32(buf[8:], r.Addr)  // p_vaddr
	le.PutUint32(buf[12:], r.Addr) // p_paddr
	le.PutUint32(buf[16:], uint32(len(r.Data)))
	le.PutUint32(buf[20:], uint32(len(r.Data)))
	le.PutUint32(buf[24:], uint32(segmentFlags(r.Prot)))
	le.PutUint32(buf[28:], pageAlign)
}

func segmentFlags(p memimage.Protection) elf.ProgFlag {
	var f elf.ProgFlag
	if p&memimage.ProtRead != 0 {
		f |= elf.PF_R
	}
	if p&memimage.ProtWrite != 0 {
		f |= elf.PF_W
	}
	if p&memimage.ProtExec != 0 {
		f |= elf.PF_X
	}
	return f
}
