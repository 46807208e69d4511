// Package vocab builds and serializes the fixed-size opcode vocabulary used
// to turn InstructionFeature.Opcode into a small, dense training index, the
// way the teacher's cpu package keeps a closed table of named opcodes rather
// than using raw encoded bytes directly.
package vocab

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"golang.org/x/arch/x86/x86asm"

	"github.com/tanglebyte/supersetds/xerrors"
)

// Reserved vocabulary indices.
const (
	Invalid = 0 // decode failed at this address
	Unknown = 1 // decoded successfully but opcode fell outside the top-k
)

const headerInvalid = "INVALID"
const headerUnknown = "UNKNOWN"

// nameTable and its inverse are built once from every opcode x86asm is
// willing to name, standing in for "the decoder's name table" the spec asks
// lookups to be built from.
var (
	nameByOpcode = map[uint16]string{}
	opcodeByName = map[string]uint16{}
)

func init() {
	// x86asm.Op has no exported enumeration; recovering its name table means
	// probing every value and keeping the ones String() actually names
	// (it falls back to "Op(%d)" for anything out of range).
	const maxProbe = 4096
	for v := 0; v < maxProbe; v++ {
		op := x86asm.Op(v)
		name := op.String()
		if name == fmt.Sprintf("Op(%d)", v) {
			continue
		}
		nameByOpcode[uint16(v)] = name
		opcodeByName[name] = uint16(v)
	}
}

// NameOf returns the textual mnemonic for opcode, or its numeric fallback.
func NameOf(opcode uint16) string {
	if name, ok := nameByOpcode[opcode]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", opcode)
}

// OpcodeByName resolves a mnemonic back to its numeric opcode.
func OpcodeByName(name string) (uint16, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}

// FreqMap counts observed opcode occurrences, keyed by opcode value. It
// merges associatively so partial counts can be reduced in parallel across
// samples.
type FreqMap map[uint16]uint64

// Merge sums b's counts into a new map, leaving a and b untouched.
func (a FreqMap) Merge(b FreqMap) FreqMap {
	out := make(FreqMap, len(a))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] += v
	}
	return out
}

// Vocab maps opcodes to dense rank-based indices (2 + rank), reserving 0 for
// Invalid and 1 for Unknown.
type Vocab struct {
	rankOf map[uint16]int32 // opcode -> index (>=2)
	opOf   []uint16         // index-2 -> opcode, in rank order
}

type countedOpcode struct {
	opcode uint16
	count  uint64
}

// BuildTopK drops any Invalid entry from freq, sorts the rest by
// (descending count, ascending opcode) for a deterministic tie-break, and
// keeps the first k as the vocabulary.
func BuildTopK(freq FreqMap, k int) *Vocab {
	entries := make([]countedOpcode, 0, len(freq))
	for op, count := range freq {
		if op == Invalid {
			continue
		}
		entries = append(entries, countedOpcode{opcode: op, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].opcode < entries[j].opcode
	})
	if len(entries) > k {
		entries = entries[:k]
	}

	v := &Vocab{
		rankOf: make(map[uint16]int32, len(entries)),
		opOf:   make([]uint16, len(entries)),
	}
	for rank, e := range entries {
		idx := int32(2 + rank)
		v.rankOf[e.opcode] = idx
		v.opOf[rank] = e.opcode
	}
	return v
}

// IndexOf returns the vocabulary index for opcode: Invalid for the
// invalid-decode opcode, otherwise its rank index, or Unknown if it fell
// outside the top-k.
func (v *Vocab) IndexOf(opcode uint16) int32 {
	if opcode == Invalid {
		return Invalid
	}
	if idx, ok := v.rankOf[opcode]; ok {
		return idx
	}
	return Unknown
}

// OpcodeAt returns the opcode for vocabulary index idx. Invalid (0) maps to
// Invalid itself; Unknown (1) is not a resolvable opcode and is an error.
func (v *Vocab) OpcodeAt(idx int32) (uint16, error) {
	switch {
	case idx == Invalid:
		return Invalid, nil
	case idx == Unknown:
		return 0, xerrors.Invariant(fmt.Sprintf("vocab: index %d (UNKNOWN) has no opcode", idx))
	}
	rank := int(idx) - 2
	if rank < 0 || rank >= len(v.opOf) {
		return 0, fmt.Errorf("vocab: index %d out of range", idx)
	}
	return v.opOf[rank], nil
}

// Len returns the number of real (non-sentinel) entries in the vocabulary.
func (v *Vocab) Len() int { return len(v.opOf) }

// Serialize writes the two sentinel header lines followed by one mnemonic
// per line in rank order.
func (v *Vocab) Serialize(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, headerInvalid); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(bw, headerUnknown); err != nil {
		return err
	}
	for _, op := range v.opOf {
		if _, err := fmt.Fprintln(bw, NameOf(op)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Deserialize reads back a vocabulary written by Serialize, failing if the
// header lines don't match or any mnemonic is unrecognized.
func Deserialize(r io.Reader) (*Vocab, error) {
	sc := bufio.NewScanner(r)

	if !sc.Scan() {
		return nil, fmt.Errorf("vocab: missing %s header", headerInvalid)
	}
	if sc.Text() != headerInvalid {
		return nil, fmt.Errorf("vocab: expected %q header, got %q", headerInvalid, sc.Text())
	}
	if !sc.Scan() {
		return nil, fmt.Errorf("vocab: missing %s header", headerUnknown)
	}
	if sc.Text() != headerUnknown {
		return nil, fmt.Errorf("vocab: expected %q header, got %q", headerUnknown, sc.Text())
	}

	v := &Vocab{rankOf: make(map[uint16]int32)}
	for sc.Scan() {
		name := sc.Text()
		op, ok := OpcodeByName(name)
		if !ok {
			return nil, fmt.Errorf("vocab: unrecognized opcode name %q", name)
		}
		idx := int32(2 + len(v.opOf))
		v.rankOf[op] = idx
		v.opOf = append(v.opOf, op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return v, nil
}
