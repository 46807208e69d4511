package graphbuild

import (
	"fmt"

	"github.com/tanglebyte/supersetds/regset"
	"github.com/tanglebyte/supersetds/superset"
)

// topologicalOrder computes a topological order of the acyclic projection of
// the candidate graph (out-edges from outEdges), breaking back edges by
// index comparison: a depth-first traversal started from every unvisited
// node in descending start order, ignoring any successor n with n <= the
// current node (a back edge) or already visited (a forward/cross edge into
// a finished region). Nodes are appended to a result list on finishing and
// the list is reversed at the end.
func topologicalOrder(s *superset.Sample) []int {
	n := len(s.Entries)
	visited := make([]bool, n)
	inStack := make([]bool, n)
	var result []int

	type frame struct {
		node int
		succ []int
		next int
	}

	for start := n - 1; start >= 0; start-- {
		if visited[start] {
			continue
		}

		stack := []*frame{{node: start, succ: outEdges(s, start)}}
		visited[start] = true
		inStack[start] = true

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			advanced := false
			for top.next < len(top.succ) {
				cand := top.succ[top.next]
				top.next++
				if cand <= top.node {
					continue // back edge, rule 1
				}
				if visited[cand] {
					continue // forward/cross edge into finished region
				}
				if inStack[cand] {
					panic(fmt.Sprintf("graphbuild: successor %d of %d entered an in-stack node", cand, top.node))
				}
				visited[cand] = true
				inStack[cand] = true
				stack = append(stack, &frame{node: cand, succ: outEdges(s, cand)})
				advanced = true
				break
			}
			if advanced {
				continue
			}
			inStack[top.node] = false
			result = append(result, top.node)
			stack = stack[:len(stack)-1]
		}
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// nodeState is a per-node DataDepState: for every tracked register/flag, the
// set of node indices that last defined it on some path reaching this node.
type nodeState [regset.NumBits]SingleVec

func addDataDependencyEdges(g *Graph, s *superset.Sample) {
	order := topologicalOrder(s)
	states := make(map[int]*nodeState, len(s.Entries))

	for _, i := range order {
		st := states[i]
		if st == nil {
			st = &nodeState{}
		}

		e := s.Entries[i]
		for _, bit := range e.Feature.Uses.Bits() {
			slot := &st[regset.Index(bit)]
			for _, d := range slot.Values() {
				g.add(int32(i), int32(d), DataDependency)
				g.add(int32(d), int32(i), DataDependent)
			}
		}

		post := *st
		for _, bit := range e.Feature.Defines.Bits() {
			post[regset.Index(bit)].Set(int32(i))
		}

		for _, succ := range outEdges(s, i) {
			succSt := states[succ]
			if succSt == nil {
				succSt = &nodeState{}
				states[succ] = succSt
			}
			for slot := range succSt {
				succSt[slot].MergeFrom(post[slot])
			}
		}

		delete(states, i)
	}
}
