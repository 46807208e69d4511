package memimage

import "testing"

func TestNewSortsAndRejectsOverlap(t *testing.T) {
	img, err := New([]Region{
		{Addr: 0x1000, Data: make([]byte, 0x10), Prot: ProtRead | ProtExec, Name: ".text"},
		{Addr: 0x0, Data: make([]byte, 0x10), Prot: ProtRead, Name: ".header"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Regions[0].Name != ".header" {
		t.Fatalf("expected .header first, got %v", img.Regions)
	}

	_, err = New([]Region{
		{Addr: 0x0, Data: make([]byte, 0x10)},
		{Addr: 0x8, Data: make([]byte, 0x10)},
	})
	if err == nil {
		t.Fatal("expected overlap error")
	}
}

func TestByteAtAndSlice(t *testing.T) {
	img, _ := New([]Region{
		{Addr: 0x1000, Data: []byte{0xaa, 0xbb, 0xcc, 0xdd}, Prot: ProtRead | ProtExec},
	})
	b, ok := img.ByteAt(0x1001)
	if !ok || b != 0xbb {
		t.Fatalf("ByteAt(0x1001) = %#x, %v", b, ok)
	}
	if _, ok := img.ByteAt(0x2000); ok {
		t.Fatal("expected unmapped address to miss")
	}

	s := img.Slice(0x1002, 10)
	if len(s) != 2 || s[0] != 0xcc {
		t.Fatalf("Slice truncation wrong: %v", s)
	}
}

func TestAddressBounds(t *testing.T) {
	img, _ := New([]Region{
		{Addr: 0x1000, Data: make([]byte, 0x10)},
		{Addr: 0x2000, Data: make([]byte, 0x20)},
	})
	lo, hi := img.AddressBounds()
	if lo != 0x1000 || hi != 0x2020 {
		t.Fatalf("bounds = %#x,%#x", lo, hi)
	}
}
