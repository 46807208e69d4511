package vocab

import (
	"bytes"
	"testing"

	"golang.org/x/arch/x86/x86asm"
)

func opcode(t *testing.T, name string) uint16 {
	t.Helper()
	op, ok := OpcodeByName(name)
	if !ok {
		t.Fatalf("test depends on x86asm naming %q, but it was not found", name)
	}
	return op
}

// S6-style scenario: a frequency map with a clear top-k ordering and a tie
// broken by opcode value.
func TestBuildTopKOrderingAndTieBreak(t *testing.T) {
	mov := opcode(t, "MOV")
	add := opcode(t, "ADD")
	sub := opcode(t, "SUB")

	freq := FreqMap{
		Invalid: 1000, // must be dropped
		mov:     10,
		add:     5,
		sub:     5, // ties with add on count; broken by opcode value
	}

	v := BuildTopK(freq, 2)
	if v.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", v.Len())
	}
	if idx := v.IndexOf(mov); idx != 2 {
		t.Errorf("MOV index = %d, want 2", idx)
	}

	lo, hi := add, sub
	if lo > hi {
		lo, hi = hi, lo
	}
	if idx := v.IndexOf(lo); idx != 3 {
		t.Errorf("lower-opcode tie winner index = %d, want 3", idx)
	}
	if idx := v.IndexOf(hi); idx != Unknown {
		t.Errorf("higher-opcode tie loser should be Unknown, got %d", idx)
	}
}

func TestIndexOfUnknownOpcode(t *testing.T) {
	v := BuildTopK(FreqMap{opcode(t, "MOV"): 5}, 10)
	if idx := v.IndexOf(opcode(t, "NOP")); idx != Unknown {
		t.Errorf("unseen opcode should map to Unknown, got %d", idx)
	}
}

func TestOpcodeAtInvalidAndUnknown(t *testing.T) {
	v := BuildTopK(FreqMap{}, 10)
	op, err := v.OpcodeAt(Invalid)
	if err != nil || op != Invalid {
		t.Fatalf("OpcodeAt(Invalid) = %d,%v", op, err)
	}
	if _, err := v.OpcodeAt(Unknown); err == nil {
		t.Fatal("OpcodeAt(Unknown) should error")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	mov := opcode(t, "MOV")
	add := opcode(t, "ADD")
	v := BuildTopK(FreqMap{mov: 10, add: 3}, 10)

	var buf bytes.Buffer
	if err := v.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	got, err := Deserialize(&buf)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got.Len() != v.Len() {
		t.Fatalf("round trip Len() = %d, want %d", got.Len(), v.Len())
	}
	if got.IndexOf(mov) != v.IndexOf(mov) || got.IndexOf(add) != v.IndexOf(add) {
		t.Fatal("round trip did not preserve indices")
	}
}

func TestDeserializeRejectsBadHeaderOrName(t *testing.T) {
	if _, err := Deserialize(bytes.NewBufferString("NOPE\nUNKNOWN\n")); err == nil {
		t.Fatal("expected header mismatch error")
	}
	if _, err := Deserialize(bytes.NewBufferString("INVALID\nUNKNOWN\nNOT_A_REAL_MNEMONIC\n")); err == nil {
		t.Fatal("expected unrecognized mnemonic error")
	}
}

func TestMergeIsAssociative(t *testing.T) {
	mov := opcode(t, "MOV")
	add := opcode(t, "ADD")
	sub := opcode(t, "SUB")

	a := FreqMap{mov: 1, add: 2}
	b := FreqMap{add: 3, sub: 4}
	c := FreqMap{mov: 5}

	left := a.Merge(b).Merge(c)
	right := a.Merge(b.Merge(c))

	for _, op := range []uint16{mov, add, sub} {
		if left[op] != right[op] {
			t.Fatalf("merge not associative at opcode %d: %d vs %d", op, left[op], right[op])
		}
	}
}

func TestNameOfUnknownFallback(t *testing.T) {
	var huge uint16 = 65000
	got := NameOf(huge)
	want := x86asm.Op(huge).String()
	if got != want {
		t.Fatalf("NameOf(%d) = %q, want %q", huge, got, want)
	}
}
