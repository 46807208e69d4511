package similarity

import "sort"

// SplitGroup is one target-fraction bucket of the split builder: its target
// share of the total corpus, the items assigned so far, and their combined
// size.
type SplitGroup struct {
	Target float64
	Items  []int
	Size   uint64
}

// SplitResult is a finished SplitGroup plus its realized fraction of the
// total pushed size.
type SplitResult struct {
	Target         float64
	Items          []int
	Size           uint64
	ActualFraction float64
}

// Builder greedily assigns whole connected components (or any indivisible
// chunk) to one of a fixed set of target-fraction groups, by size, so that
// each group's running fraction tracks its target as closely as possible.
type Builder struct {
	groups    []SplitGroup
	totalSize uint64
}

// NewBuilder returns an empty Builder with one group per target fraction.
func NewBuilder(targets []float64) *Builder {
	groups := make([]SplitGroup, len(targets))
	for i, t := range targets {
		groups[i] = SplitGroup{Target: t}
	}
	return &Builder{groups: groups}
}

// PushComponent assigns indices (and their combined size) to whichever
// group currently minimizes the assignment loss: an empty group has loss
// -1-target (so groups fill in descending target order before any group's
// fraction is compared at all); otherwise loss is current_fraction-target,
// where current_fraction is computed against the size pushed so far (not
// including this component).
func (b *Builder) PushComponent(indices []int, size uint64) {
	best := -1
	var bestLoss float64
	for i, g := range b.groups {
		var loss float64
		if g.Size == 0 {
			loss = -1 - g.Target
		} else {
			currentFraction := float64(g.Size) / float64(b.totalSize)
			loss = currentFraction - g.Target
		}
		if best == -1 || loss < bestLoss {
			best = i
			bestLoss = loss
		}
	}

	b.groups[best].Items = append(b.groups[best].Items, indices...)
	b.groups[best].Size += size
	b.totalSize += size
}

// Build returns the final groups with their realized fractions.
func (b *Builder) Build() []SplitResult {
	out := make([]SplitResult, len(b.groups))
	for i, g := range b.groups {
		var frac float64
		if b.totalSize > 0 {
			frac = float64(g.Size) / float64(b.totalSize)
		}
		out[i] = SplitResult{Target: g.Target, Items: g.Items, Size: g.Size, ActualFraction: frac}
	}
	return out
}

// UnionFind is a simple disjoint-set structure used to extract connected
// components from the thresholded similarity graph.
type UnionFind struct {
	parent []int
}

// NewUnionFind returns a UnionFind over n singleton elements.
func NewUnionFind(n int) *UnionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &UnionFind{parent: p}
}

func (u *UnionFind) Find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// Union merges the components containing a and b.
func (u *UnionFind) Union(a, b int) {
	ra, rb := u.Find(a), u.Find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// Components groups element indices by root, sorted by descending total
// size (sizes indexed the same way as the elements passed to NewUnionFind).
func (u *UnionFind) Components(sizes []uint64) [][]int {
	byRoot := make(map[int][]int)
	for i := range u.parent {
		r := u.Find(i)
		byRoot[r] = append(byRoot[r], i)
	}

	comps := make([][]int, 0, len(byRoot))
	for _, members := range byRoot {
		comps = append(comps, members)
	}
	sort.Slice(comps, func(i, j int) bool {
		return componentSize(comps[i], sizes) > componentSize(comps[j], sizes)
	})
	return comps
}

func componentSize(members []int, sizes []uint64) uint64 {
	var total uint64
	for _, m := range members {
		total += sizes[m]
	}
	return total
}
