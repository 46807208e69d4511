package xlog

import "testing"

// TestInitTwiceErrors exercises the double-init guard directly against the
// package-level state, since Init is otherwise only ever called once from
// main.
func TestInitTwiceErrors(t *testing.T) {
	mu.Lock()
	inited = false
	mu.Unlock()

	if err := Init(); err != nil {
		t.Fatalf("first Init() = %v, want nil", err)
	}
	if err := Init(); err == nil {
		t.Fatalf("second Init() = nil, want error")
	}

	mu.Lock()
	inited = false
	mu.Unlock()
}

func TestLPanicsBeforeInit(t *testing.T) {
	mu.Lock()
	inited = false
	mu.Unlock()

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("L() before Init did not panic")
		}
	}()
	L()
}
