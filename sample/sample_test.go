package sample

import (
	"bytes"
	"testing"

	"github.com/tanglebyte/supersetds/addrclass"
	"github.com/tanglebyte/supersetds/memimage"
)

// property #9: round trip preserves classes set-equality and memory bytes.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	img, err := memimage.New([]memimage.Region{
		{Addr: 0x1000, Data: []byte{0x90, 0x90, 0xC3}, Prot: memimage.ProtRead | memimage.ProtExec, Name: ".text"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	classes := addrclass.New()
	classes.MarkInstruction(0x1000, 3)
	classes.MarkData(0x2000, 4)

	src := &Source{Kind: SourceDebian, DebianPackage: "coreutils", DebianPath: "/bin/ls"}
	original := &ExecutableSample{Memory: img, Classes: classes, Source: src}

	var buf bytes.Buffer
	if err := EncodeTo(&buf, original); err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}

	got, err := DecodeFrom(&buf)
	if err != nil {
		t.Fatalf("DecodeFrom: %v", err)
	}

	if !Equal(original, got) {
		t.Fatal("round trip did not preserve memory/classes")
	}
	if got.Source == nil || got.Source.DebianPackage != "coreutils" {
		t.Fatalf("source not preserved: %+v", got.Source)
	}
}

func TestEncodeDecodeWithNilSource(t *testing.T) {
	img, _ := memimage.New([]memimage.Region{{Addr: 0, Data: []byte{0x01}, Prot: memimage.ProtRead}})
	classes := addrclass.New()
	original := &ExecutableSample{Memory: img, Classes: classes}

	var buf bytes.Buffer
	if err := EncodeTo(&buf, original); err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	got, err := DecodeFrom(&buf)
	if err != nil {
		t.Fatalf("DecodeFrom: %v", err)
	}
	if got.Source != nil {
		t.Fatalf("expected nil source, got %+v", got.Source)
	}
}
