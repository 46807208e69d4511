package graphbuild

import (
	"testing"

	"github.com/tanglebyte/supersetds/memimage"
	"github.com/tanglebyte/supersetds/superset"
)

// A self-jumping instruction (JMP rel8 -2) creates a one-node cycle in the
// candidate graph; back-edge breaking must still terminate without panicking
// and must still visit every node exactly once.
func TestTopologicalOrderBreaksCycles(t *testing.T) {
	img, _ := memimage.New([]memimage.Region{
		{Addr: 0x1000, Data: []byte{0xEB, 0xFE, 0x90, 0x90}, Prot: memimage.ProtRead | memimage.ProtExec},
	})
	s, err := superset.Build(img, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("topologicalOrder panicked on a cyclic candidate graph: %v", r)
		}
	}()

	order := topologicalOrder(s)
	if len(order) != len(s.Entries) {
		t.Fatalf("order visits %d nodes, want %d", len(order), len(s.Entries))
	}
	seen := make(map[int]bool, len(order))
	for _, n := range order {
		if seen[n] {
			t.Fatalf("node %d visited twice", n)
		}
		seen[n] = true
	}
}
