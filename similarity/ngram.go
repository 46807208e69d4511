// Package similarity implements n-gram Jaccard similarity between sample
// memory contents and the greedy size-balanced split builder that uses it,
// grounded the same way the teacher's cpu package counts fixed-width
// encodings rather than variable-width tokens.
package similarity

import "github.com/tanglebyte/supersetds/memimage"

// NGramIndex is a multiset of fixed-length byte n-grams drawn from a
// memory image, one window per region, never sliding across a region
// boundary.
type NGramIndex struct {
	N      int
	Counts map[string]uint64
	Total  uint64
}

// NewNGramIndex slides an n-byte window across each region of img
// independently.
func NewNGramIndex(img *memimage.Image, n int) *NGramIndex {
	idx := &NGramIndex{N: n, Counts: make(map[string]uint64)}
	for _, r := range img.Regions {
		if len(r.Data) < n {
			continue
		}
		for i := 0; i+n <= len(r.Data); i++ {
			idx.Counts[string(r.Data[i:i+n])]++
			idx.Total++
		}
	}
	return idx
}

// Similarity computes the multiset Jaccard index between a and b:
// Σmin(a[g],b[g]) / (a.Total + b.Total − Σmin(...)). Returns 0 when both
// indices are empty (no windows to compare).
func Similarity(a, b *NGramIndex) float64 {
	var overlap uint64
	small, large := a, b
	if len(large.Counts) < len(small.Counts) {
		small, large = large, small
	}
	for g, ac := range small.Counts {
		if bc, ok := large.Counts[g]; ok {
			if ac < bc {
				overlap += ac
			} else {
				overlap += bc
			}
		}
	}

	denom := a.Total + b.Total - overlap
	if denom == 0 {
		return 0
	}
	return float64(overlap) / float64(denom)
}
