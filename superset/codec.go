package superset

import (
	"encoding/gob"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/tanglebyte/supersetds/regset"
)

// wireEntry mirrors Entry with RegisterSet's underlying type made concrete
// for gob, which needs the Feature's zero-valued pointer fields handled
// explicitly rather than relying on gob's own (imperfect) nil-pointer
// support across separately-registered types.
type wireEntry struct {
	Addr         uint32
	Size         uint8
	Opcode       uint16
	HasJump      bool
	JumpTarget   uint32
	FallsThrough bool
	Uses         uint16
	Defines      uint16
	HasLabel     bool
	Label        uint8
}

// EncodeTo persists a superset sample the same way the sample package
// persists an ExecutableSample: zstd-wrapped gob of a flattened wire shape.
// This is an internal-only artifact with no cross-implementation
// compatibility guarantee, unlike the NPZ bundle.
func (s *Sample) EncodeTo(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	wire := make([]wireEntry, len(s.Entries))
	for i, e := range s.Entries {
		we := wireEntry{
			Addr:         e.Addr,
			Size:         e.Feature.Size,
			Opcode:       e.Feature.Opcode,
			FallsThrough: e.Feature.FallsThrough,
			Uses:         uint16(e.Feature.Uses),
			Defines:      uint16(e.Feature.Defines),
		}
		if e.Feature.JumpTarget != nil {
			we.HasJump = true
			we.JumpTarget = *e.Feature.JumpTarget
		}
		if e.Label != nil {
			we.HasLabel = true
			we.Label = uint8(*e.Label)
		}
		wire[i] = we
	}

	if err := gob.NewEncoder(zw).Encode(wire); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// DecodeFrom reverses EncodeTo.
func DecodeFrom(r io.Reader) (*Sample, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var wire []wireEntry
	if err := gob.NewDecoder(zr.IOReadCloser()).Decode(&wire); err != nil {
		return nil, err
	}

	s := &Sample{addrIndex: make(map[uint32]int, len(wire))}
	for i, we := range wire {
		feat := Feature{
			Size:         we.Size,
			Opcode:       we.Opcode,
			FallsThrough: we.FallsThrough,
			Uses:         regset.Set(we.Uses),
			Defines:      regset.Set(we.Defines),
		}
		if we.HasJump {
			t := we.JumpTarget
			feat.JumpTarget = &t
		}
		entry := Entry{Addr: we.Addr, Feature: feat}
		if we.HasLabel {
			lbl := Label(we.Label)
			entry.Label = &lbl
		}
		s.addrIndex[we.Addr] = i
		s.Entries = append(s.Entries, entry)
	}
	return s, nil
}
