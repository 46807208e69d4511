package npz

import (
	"io"

	"github.com/tanglebyte/supersetds/graphbuild"
	"github.com/tanglebyte/supersetds/vocab"
)

// Emit writes the five named arrays for gs/v to w as a single npz archive:
// instruction_sizes, instruction_codes, instruction_labels (only when every
// node carries a label), relation_types, relations.
func Emit(w io.Writer, gs *graphbuild.Sample, v *vocab.Vocab) error {
	nw := NewWriter(w)

	sizes := make([]uint8, len(gs.Entries))
	codes := make([]int32, len(gs.Entries))
	allLabeled := true
	labels := make([]uint8, len(gs.Entries))
	for i, e := range gs.Entries {
		if e.Feature.Size > 0 {
			sizes[i] = e.Feature.Size - 1
		}
		codes[i] = v.IndexOf(e.Feature.Opcode)
		if e.Label == nil {
			allLabeled = false
			continue
		}
		if *e.Label != 0 {
			labels[i] = 1
		}
	}

	if err := nw.WriteArray("instruction_sizes.npy", EncodeU8(sizes)); err != nil {
		return err
	}
	if err := nw.WriteArray("instruction_codes.npy", EncodeI32(codes)); err != nil {
		return err
	}
	if allLabeled {
		if err := nw.WriteArray("instruction_labels.npy", EncodeU8(labels)); err != nil {
			return err
		}
	}

	types := make([]uint8, len(gs.Graph.Types))
	for i, t := range gs.Graph.Types {
		types[i] = uint8(t)
	}
	if err := nw.WriteArray("relation_types.npy", EncodeU8(types)); err != nil {
		return err
	}
	if err := nw.WriteArray("relations.npy", EncodeI32Matrix(gs.Graph.Edges)); err != nil {
		return err
	}

	return nw.Close()
}
