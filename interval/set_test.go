package interval

import "testing"

func ivs[V Unsigned](s *Set[V]) [][2]V {
	out := make([][2]V, 0)
	for _, iv := range s.Iter() {
		out = append(out, [2]V{iv.Start(), iv.End()})
	}
	return out
}

func equalIvs[V Unsigned](t *testing.T, got [][2]V, want [][2]V) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// S1: push [1,3) then [3,6) merges into [1,6); remove [2,4) splits it.
func TestPushMergeThenRemove(t *testing.T) {
	s := NewSet[uint32]()
	s.Push(New[uint32](1, 3))
	s.Push(New[uint32](3, 6))
	equalIvs(t, ivs(s), [][2]uint32{{1, 6}})

	s.Remove(New[uint32](2, 4))
	equalIvs(t, ivs(s), [][2]uint32{{1, 2}, {4, 6}})
}

// S2: pushing an empty interval is a silent no-op.
func TestPushEmptyNoop(t *testing.T) {
	s := NewSet[uint32]()
	s.Push(New[uint32](1, 3))
	before := ivs(s)

	s.Push(New[uint32](5, 5))
	equalIvs(t, ivs(s), before)
	if !s.CheckInvariant() {
		t.Fatal("invariant broken after empty push")
	}
}

func TestContainsAndCoverage(t *testing.T) {
	s := NewSet[uint32]()
	s.Push(New[uint32](10, 20))
	s.Push(New[uint32](30, 35))

	for _, p := range []uint32{10, 15, 19} {
		if !s.Contains(p) {
			t.Errorf("expected %d to be contained", p)
		}
	}
	if s.Contains(25) {
		t.Error("25 should not be contained")
	}

	if got := s.Coverage(); got != 15 {
		t.Errorf("coverage = %d, want 15", got)
	}
}

func TestPushCommutative(t *testing.T) {
	a := NewSet[uint32]()
	a.Push(New[uint32](1, 5))
	a.Push(New[uint32](10, 15))

	b := NewSet[uint32]()
	b.Push(New[uint32](10, 15))
	b.Push(New[uint32](1, 5))

	equalIvs(t, ivs(a), ivs(b))
}

func TestShift(t *testing.T) {
	s := NewSet[uint32]()
	s.Push(New[uint32](1, 5))
	s.Shift(100)
	equalIvs(t, ivs(s), [][2]uint32{{101, 105}})
}

func TestIntersect(t *testing.T) {
	s := NewSet[uint32]()
	s.Push(New[uint32](0, 10))
	s.Push(New[uint32](20, 30))

	clipped := s.Intersect(New[uint32](5, 25))
	equalIvs(t, ivs(clipped), [][2]uint32{{5, 10}, {20, 25}})
}

func TestInvariantAlwaysAlternates(t *testing.T) {
	s := NewSet[uint32]()
	ops := []Interval[uint32]{
		New[uint32](5, 10),
		New[uint32](1, 6),
		New[uint32](20, 25),
		New[uint32](8, 22),
	}
	for _, iv := range ops {
		s.Push(iv)
		if !s.CheckInvariant() {
			t.Fatalf("invariant broken after push %v: %v", iv, ivs(s))
		}
	}
	s.Remove(New[uint32](2, 24))
	if !s.CheckInvariant() {
		t.Fatalf("invariant broken after remove: %v", ivs(s))
	}
}

func TestAdjacentMerge(t *testing.T) {
	a := NewSet[uint32]()
	a.Push(FromLen[uint32](1, 2)) // [1,3)
	a.Push(FromLen[uint32](3, 3)) // [3,6), touches at 3
	equalIvs(t, ivs(a), [][2]uint32{{1, 6}})
}
