// Package graphbuild turns a dense superset sample into a relation graph:
// lexical adjacency between candidate instructions plus a forward
// reaching-definitions dataflow pass, in the spirit of the teacher's
// disassembler.Node linked structure but generalized to a non-tree,
// possibly-cyclic candidate graph.
package graphbuild

import (
	"sort"

	"github.com/tanglebyte/supersetds/superset"
)

// Graph is the edge list of a candidate-instruction graph. Node indices are
// positions in the originating superset.Sample.Entries.
type Graph struct {
	Edges [][2]int32
	Types []RelationType
}

func (g *Graph) add(from, to int32, rel RelationType) {
	g.Edges = append(g.Edges, [2]int32{from, to})
	g.Types = append(g.Types, rel)
}

// Sample pairs the decoded features with the graph built over them, ready
// for vocabulary application and NPZ emission.
type Sample struct {
	Entries []superset.Entry
	Graph   *Graph
}

// Build constructs the full relation graph for s: lexical edges first, then
// jump edges, then the data-dependency pass.
func Build(s *superset.Sample) *Sample {
	g := &Graph{}
	addLexicalEdges(g, s)
	addJumpEdges(g, s)
	addDataDependencyEdges(g, s)
	sortEdges(g)
	return &Sample{Entries: s.Entries, Graph: g}
}

func addLexicalEdges(g *Graph, s *superset.Sample) {
	for i, e := range s.Entries {
		if !e.Feature.FallsThrough || e.Feature.Size == 0 {
			continue
		}
		size := uint32(e.Feature.Size)

		if n, ok := s.At(e.Addr + size); ok {
			g.add(int32(i), int32(n), Next)
			g.add(int32(n), int32(i), Previous)
		}
		for off := uint32(1); off < size; off++ {
			if o, ok := s.At(e.Addr + off); ok {
				g.add(int32(i), int32(o), Overlap)
				g.add(int32(o), int32(i), Overlap)
			}
		}
	}
}

func addJumpEdges(g *Graph, s *superset.Sample) {
	for i, e := range s.Entries {
		if e.Feature.JumpTarget == nil {
			continue
		}
		if j, ok := s.At(*e.Feature.JumpTarget); ok {
			g.add(int32(i), int32(j), JumpTo)
			g.add(int32(j), int32(i), JumpFrom)
		}
	}
}

// sortEdges stably sorts edges (and their parallel type slice) ascending
// lexicographically over (from, to), so later adjacency lookups are
// cache-friendly.
func sortEdges(g *Graph) {
	idx := make([]int, len(g.Edges))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ea, eb := g.Edges[idx[a]], g.Edges[idx[b]]
		if ea[0] != eb[0] {
			return ea[0] < eb[0]
		}
		return ea[1] < eb[1]
	})

	edges := make([][2]int32, len(g.Edges))
	types := make([]RelationType, len(g.Types))
	for newPos, oldPos := range idx {
		edges[newPos] = g.Edges[oldPos]
		types[newPos] = g.Types[oldPos]
	}
	g.Edges = edges
	g.Types = types
}

// outEdges returns a node's at-most-two successors for the acyclic
// projection used by topological sort and dataflow: jump target first, then
// the fall-through neighbor.
func outEdges(s *superset.Sample, i int) []int {
	e := s.Entries[i]
	var out []int
	if e.Feature.JumpTarget != nil {
		if j, ok := s.At(*e.Feature.JumpTarget); ok {
			out = append(out, j)
		}
	}
	if e.Feature.FallsThrough && e.Feature.Size != 0 {
		if n, ok := s.At(e.Addr + uint32(e.Feature.Size)); ok {
			out = append(out, n)
		}
	}
	return out
}
