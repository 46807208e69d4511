package graphbuild

import "testing"

func TestSingleVecInlineThenSpill(t *testing.T) {
	var v SingleVec
	if v.Len() != 0 {
		t.Fatal("new SingleVec should be empty")
	}
	v.Push(1)
	v.Push(1) // duplicate, ignored
	v.Push(2)
	if v.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", v.Len())
	}
	if !v.Contains(1) || !v.Contains(2) {
		t.Fatalf("expected both 1 and 2 present: %v", v.Values())
	}
}

func TestSingleVecSetIsStrongUpdate(t *testing.T) {
	var v SingleVec
	v.Push(1)
	v.Push(2)
	v.Set(9)
	if v.Len() != 1 || !v.Contains(9) {
		t.Fatalf("Set should discard prior members, got %v", v.Values())
	}
}

func TestSingleVecMergeFromUnionsNoDuplicates(t *testing.T) {
	var a, b SingleVec
	a.Push(1)
	b.Push(1)
	b.Push(2)
	a.MergeFrom(b)
	if a.Len() != 2 {
		t.Fatalf("merged Len() = %d, want 2: %v", a.Len(), a.Values())
	}
}
