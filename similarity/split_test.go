package similarity

import "testing"

// S8: targets [0.8, 0.2]; push 100, 50, 25 in that order -> group0 gets
// 100 then 25 (125 total), group1 gets 50; fractions ~0.714 / ~0.286.
func TestSplitBuilderS8(t *testing.T) {
	b := NewBuilder([]float64{0.8, 0.2})
	b.PushComponent([]int{0}, 100)
	b.PushComponent([]int{1}, 50)
	b.PushComponent([]int{2}, 25)

	results := b.Build()
	if results[0].Size != 125 || results[1].Size != 50 {
		t.Fatalf("sizes = %d, %d, want 125, 50", results[0].Size, results[1].Size)
	}

	want0, want1 := 125.0/175.0, 50.0/175.0
	if diff := results[0].ActualFraction - want0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("group0 fraction = %v, want %v", results[0].ActualFraction, want0)
	}
	if diff := results[1].ActualFraction - want1; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("group1 fraction = %v, want %v", results[1].ActualFraction, want1)
	}
}

func TestUnionFindComponents(t *testing.T) {
	uf := NewUnionFind(5)
	uf.Union(0, 1)
	uf.Union(1, 2)
	uf.Union(3, 4)

	sizes := []uint64{10, 20, 5, 1, 1}
	comps := uf.Components(sizes)
	if len(comps) != 2 {
		t.Fatalf("expected 2 components, got %d: %v", len(comps), comps)
	}
	// largest-size component (0,1,2 summing to 35) must sort first.
	if len(comps[0]) != 3 {
		t.Fatalf("expected the 3-member component first, got %v", comps[0])
	}
}
