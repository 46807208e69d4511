package interval

import "sort"

type marker uint8

const (
	markerStart marker = iota
	markerEnd
)

// Set is a collection of pairwise-disjoint half-open intervals, stored as an
// ordered map from coordinate to a Start/End marker. Markers strictly
// alternate Start, End, Start, End, ... in ascending coordinate order; that
// invariant lets Contains answer with one O(log N) binary search. Push and
// Remove find their boundaries the same way, but inserting or deleting a
// marker moves the tail of the backing slices, which is linear in N.
type Set[V Unsigned] struct {
	// keys is always kept sorted ascending; it backs a poor-man's ordered
	// map since the stdlib has none. Lookups are by binary search.
	keys    []V
	markers []marker
}

// NewSet returns an empty interval set.
func NewSet[V Unsigned]() *Set[V] {
	return &Set[V]{}
}

// search returns the index of key in s.keys, and whether it was found.
func (s *Set[V]) search(key V) (int, bool) {
	i := sort.Search(len(s.keys), func(i int) bool { return s.keys[i] >= key })
	if i < len(s.keys) && s.keys[i] == key {
		return i, true
	}
	return i, false
}

func (s *Set[V]) insertAt(i int, key V, m marker) {
	s.keys = append(s.keys, 0)
	s.markers = append(s.markers, 0)
	copy(s.keys[i+1:], s.keys[i:])
	copy(s.markers[i+1:], s.markers[i:])
	s.keys[i] = key
	s.markers[i] = m
}

func (s *Set[V]) removeAt(i int) {
	s.keys = append(s.keys[:i], s.keys[i+1:]...)
	s.markers = append(s.markers[:i], s.markers[i+1:]...)
}

// Contains reports whether p lies in some half-open member interval: true
// iff the nearest marker at or before p is a Start. A Start coordinate is
// contained and an End coordinate is not.
func (s *Set[V]) Contains(p V) bool {
	i, found := s.search(p) // first index with keys[i] >= p; everything before i is < p
	if found {
		return s.markers[i] == markerStart
	}
	if i == 0 {
		return false
	}
	return s.markers[i-1] == markerStart
}

// Push unions the set with iv. Adjacent intervals merge. Empty intervals are
// a silent no-op.
func (s *Set[V]) Push(iv Interval[V]) {
	if iv.IsEmpty() {
		return
	}

	containsStart := s.Contains(iv.start)
	containsEnd := s.Contains(iv.end)

	// handle the start boundary
	if i, found := s.search(iv.start); found {
		if s.markers[i] == markerStart {
			// already a Start here, nothing to do
		} else {
			// an End sits here: remove it, merging with the interval before
			s.removeAt(i)
		}
	} else if !containsStart {
		s.insertAt(i, iv.start, markerStart)
	}

	// handle the end boundary
	if i, found := s.search(iv.end); found {
		if s.markers[i] == markerEnd {
			// already an End here, nothing to do
		} else {
			s.removeAt(i)
		}
	} else if !containsEnd {
		s.insertAt(i, iv.end, markerEnd)
	}

	// remove every marker strictly between start and end
	s.removeRange(iv.start, iv.end)
}

// Remove subtracts iv from the set. Empty intervals are a no-op.
func (s *Set[V]) Remove(iv Interval[V]) {
	if iv.IsEmpty() {
		return
	}

	containsStart := s.Contains(iv.start)
	containsEnd := s.Contains(iv.end)

	if i, found := s.search(iv.start); found {
		if s.markers[i] == markerEnd {
			// already an End here
		} else {
			s.removeAt(i)
		}
	} else if containsStart {
		s.insertAt(i, iv.start, markerEnd)
	}

	if i, found := s.search(iv.end); found {
		if s.markers[i] == markerStart {
			// already a Start here
		} else {
			s.removeAt(i)
		}
	} else if containsEnd {
		s.insertAt(i, iv.end, markerStart)
	}

	s.removeRange(iv.start, iv.end)
}

// removeRange deletes every marker with start < key < end.
func (s *Set[V]) removeRange(start, end V) {
	lo, _ := s.search(start)
	// skip the marker exactly at start, if any
	if lo < len(s.keys) && s.keys[lo] == start {
		lo++
	}
	hi, _ := s.search(end)
	if lo >= hi {
		return
	}
	s.keys = append(s.keys[:lo], s.keys[hi:]...)
	s.markers = append(s.markers[:lo], s.markers[hi:]...)
}

// Shift rigidly translates every interval by delta. The caller must ensure
// this does not change the relative order of coordinates (no wraparound).
func (s *Set[V]) Shift(delta V) {
	for i := range s.keys {
		s.keys[i] += delta
	}
}

// Extend pushes every interval from the slice in order.
func (s *Set[V]) Extend(ivs []Interval[V]) {
	for _, iv := range ivs {
		s.Push(iv)
	}
}

// Intersect returns a new set containing the intersection of every member
// interval with window, dropping empty results.
func (s *Set[V]) Intersect(window Interval[V]) *Set[V] {
	out := NewSet[V]()
	for _, iv := range s.Iter() {
		clipped := iv.Intersection(window)
		if !clipped.IsEmpty() {
			out.Push(clipped)
		}
	}
	return out
}

// Coverage returns the sum of member interval lengths.
func (s *Set[V]) Coverage() V {
	var total V
	for _, iv := range s.Iter() {
		total += iv.Len()
	}
	return total
}

// Iter returns the member intervals in ascending order.
func (s *Set[V]) Iter() []Interval[V] {
	out := make([]Interval[V], 0, len(s.keys)/2)
	for i := 0; i+1 < len(s.keys); i += 2 {
		out = append(out, New(s.keys[i], s.keys[i+1]))
	}
	return out
}

// CheckInvariant reports whether markers strictly alternate Start, End, ...; it
// exists for tests and debug assertions, mirroring the original's
// debug-only check_iter.
func (s *Set[V]) CheckInvariant() bool {
	for i, m := range s.markers {
		want := markerStart
		if i%2 == 1 {
			want = markerEnd
		}
		if m != want {
			return false
		}
	}
	return len(s.markers)%2 == 0
}
