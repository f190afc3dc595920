package broadphase

import (
	"slices"

	"collide2d/internal/geom"
)

// SweepAndPrune sorts interval endpoints along the x axis and sweeps them
// with an active set, so only shapes overlapping on x are tested on y.
// Classic single-axis sweep (Baraff & Witkin); near-sorted input makes the
// insertion sort approach O(n) between ticks.
type SweepAndPrune struct {
	entries   []entry
	endpoints []sapEndpoint
	active    []int
	pairs     []Pair
}

type sapEndpoint struct {
	value float64
	slot  int // index into entries
	isMin bool
}

// NewSweepAndPrune creates the sweep strategy. capacity hints the expected
// shape count for preallocation.
func NewSweepAndPrune(capacity int) *SweepAndPrune {
	return &SweepAndPrune{
		entries:   make([]entry, 0, capacity),
		endpoints: make([]sapEndpoint, 0, capacity*2),
		active:    make([]int, 0, 16),
		pairs:     make([]Pair, 0, capacity),
	}
}

func (s *SweepAndPrune) Add(index uint32, bounds geom.AABB) {
	slot := len(s.entries)
	s.entries = append(s.entries, entry{index, bounds})
	s.endpoints = append(s.endpoints,
		sapEndpoint{bounds.Min.X, slot, true},
		sapEndpoint{bounds.Max.X, slot, false},
	)
}

func (s *SweepAndPrune) Clear() {
	s.entries = s.entries[:0]
	s.endpoints = s.endpoints[:0]
}

func (s *SweepAndPrune) Pairs() []Pair {
	s.pairs = s.pairs[:0]
	if len(s.entries) < 2 {
		return s.pairs
	}

	sortEndpoints(s.endpoints)

	s.active = s.active[:0]
	for _, ep := range s.endpoints {
		if !ep.isMin {
			for i, slot := range s.active {
				if slot == ep.slot {
					s.active[i] = s.active[len(s.active)-1]
					s.active = s.active[:len(s.active)-1]
					break
				}
			}
			continue
		}

		// New interval starts: every active entry overlaps on x, the full
		// AABB test settles y and endpoint ties.
		e := s.entries[ep.slot]
		for _, slot := range s.active {
			o := s.entries[slot]
			if !geom.Overlaps(e.bounds, o.bounds) {
				continue
			}
			lo, hi := e.index, o.index
			if lo > hi {
				lo, hi = hi, lo
			}
			s.pairs = append(s.pairs, Pair{lo, hi})
		}
		s.active = append(s.active, ep.slot)
	}

	return s.pairs
}

// sortEndpoints uses insertion sort for nearly-sorted input and falls back
// to the standard sort when the list is badly out of order. The fallback
// check runs only between insertions, when every element is in the slice
// exactly once.
func sortEndpoints(eps []sapEndpoint) {
	swaps := 0
	for i := 1; i < len(eps); i++ {
		key := eps[i]
		j := i - 1
		for j >= 0 && eps[j].value > key.value {
			eps[j+1] = eps[j]
			j--
			swaps++
		}
		eps[j+1] = key

		if swaps > len(eps)*8 {
			slices.SortFunc(eps, func(a, b sapEndpoint) int {
				switch {
				case a.value < b.value:
					return -1
				case a.value > b.value:
					return 1
				default:
					return 0
				}
			})
			return
		}
	}
}
