package similarity

import "sync"

// Matrix is a square similarity matrix over a fixed set of samples, built
// concurrently: per spec.md §5, writes are guarded by one coarse lock since
// each cell write is a cheap two-cell (i,j)/(j,i) assignment and contention
// stays low even with many workers computing cells in parallel.
type Matrix struct {
	n     int
	cells []float64
	mu    sync.Mutex
}

// NewMatrix returns an n*n matrix with the diagonal pre-filled to 1, the
// value Similarity(a,a) gives for any index with at least one window (an
// empty index compares as 0, but its diagonal cell is still 1).
func NewMatrix(n int) *Matrix {
	m := &Matrix{n: n, cells: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		m.cells[i*n+i] = 1
	}
	return m
}

// Set idempotently writes both (i,j) and (j,i) under the coarse lock.
func (m *Matrix) Set(i, j int, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells[i*m.n+j] = v
	m.cells[j*m.n+i] = v
}

// At returns the similarity between samples i and j.
func (m *Matrix) At(i, j int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cells[i*m.n+j]
}

// N returns the matrix dimension.
func (m *Matrix) N() int { return m.n }

// Pairs streams every unordered (i,j) pair with i<j, for distributing
// pairwise work across a worker pool.
func Pairs(n int) [][2]int {
	var out [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, [2]int{i, j})
		}
	}
	return out
}
