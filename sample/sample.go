// Package sample implements the persisted ExecutableSample artifact and its
// zstd+binary codec, in the same spirit as the teacher's assembler/run68
// pairing producing and consuming one private binary format with no
// outside compatibility promise.
package sample

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/tanglebyte/supersetds/addrclass"
	"github.com/tanglebyte/supersetds/memimage"
)

// SourceKind tags which provenance shape Source carries.
type SourceKind uint8

const (
	SourceNone SourceKind = iota
	SourcePdb
	SourceDebian
)

// Source records where a sample's ground truth came from. Only the fields
// for Kind are meaningful; it is not an interface because gob needs
// concrete, registered types for those and a flat struct is simpler for a
// private, single-implementation format.
type Source struct {
	Kind SourceKind

	// SourcePdb
	PdbUUID string
	PdbPath string

	// SourceDebian
	DebianPackage string
	DebianPath    string
	DebianBuildID string
}

// ExecutableSample is the persisted unit: a memory image, its ground-truth
// address classes, and optional provenance.
type ExecutableSample struct {
	Memory  *memimage.Image
	Classes *addrclass.Classes
	Source  *Source
}

// wireSample is the gob-serializable shape: addrclass.Classes holds
// interval.Set values whose fields are unexported, so the codec flattens
// the sample into plain exported data instead of gob-encoding the live
// types directly.
type wireRegion struct {
	Addr uint32
	Data []byte
	Prot memimage.Protection
	Name string
}

type wireInterval struct {
	Start, End uint32
}

type wireSample struct {
	Regions          []wireRegion
	TrueInstructions []wireInterval
	TrueData         []wireInterval
	Source           *Source
}

// EncodeTo zstd-wraps (level 6) a fixed binary encoding of s.
func EncodeTo(w io.Writer, s *ExecutableSample) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(6)))
	if err != nil {
		return err
	}

	wire := toWire(s)
	if err := gob.NewEncoder(zw).Encode(wire); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// DecodeFrom reverses EncodeTo.
func DecodeFrom(r io.Reader) (*ExecutableSample, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var wire wireSample
	if err := gob.NewDecoder(zr.IOReadCloser()).Decode(&wire); err != nil {
		return nil, err
	}
	return fromWire(&wire)
}

func toWire(s *ExecutableSample) *wireSample {
	w := &wireSample{Source: s.Source}
	if s.Memory != nil {
		for _, r := range s.Memory.Regions {
			w.Regions = append(w.Regions, wireRegion{Addr: r.Addr, Data: r.Data, Prot: r.Prot, Name: r.Name})
		}
	}
	if s.Classes != nil {
		for _, iv := range s.Classes.Instructions.Iter() {
			w.TrueInstructions = append(w.TrueInstructions, wireInterval{Start: iv.Start(), End: iv.End()})
		}
		for _, iv := range s.Classes.Data.Iter() {
			w.TrueData = append(w.TrueData, wireInterval{Start: iv.Start(), End: iv.End()})
		}
	}
	return w
}

func fromWire(w *wireSample) (*ExecutableSample, error) {
	regions := make([]memimage.Region, len(w.Regions))
	for i, r := range w.Regions {
		regions[i] = memimage.Region{Addr: r.Addr, Data: r.Data, Prot: r.Prot, Name: r.Name}
	}
	img, err := memimage.New(regions)
	if err != nil {
		return nil, err
	}

	classes := addrclass.New()
	for _, iv := range w.TrueInstructions {
		classes.MarkInstruction(iv.Start, iv.End-iv.Start)
	}
	for _, iv := range w.TrueData {
		classes.MarkData(iv.Start, iv.End-iv.Start)
	}

	return &ExecutableSample{Memory: img, Classes: classes, Source: w.Source}, nil
}

// Equal performs a structural comparison used by tests: byte-identical
// memory content and set-equal address classes.
func Equal(a, b *ExecutableSample) bool {
	if len(a.Memory.Regions) != len(b.Memory.Regions) {
		return false
	}
	for i := range a.Memory.Regions {
		ra, rb := a.Memory.Regions[i], b.Memory.Regions[i]
		if ra.Addr != rb.Addr || ra.Prot != rb.Prot || !bytes.Equal(ra.Data, rb.Data) {
			return false
		}
	}
	return intervalsEqual(a.Classes.Instructions.Iter(), b.Classes.Instructions.Iter()) &&
		intervalsEqual(a.Classes.Data.Iter(), b.Classes.Data.Iter())
}

func intervalsEqual[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
