// Package broadphase provides the candidate-pair pre-filter for collision
// detection: cheap structures over shape AABBs that produce every index pair
// whose bounding boxes overlap.
//
// All strategies share one contract: Add stages a shape's AABB for the tick,
// Clear resets staged state, and Pairs returns deduplicated index pairs with
// the lower index first. Structures are rebuilt fully every tick; nothing is
// carried across ticks. The candidate set is always a superset of the true
// overlap set - a strategy may over-report, never under-report.
//
// Buffers are preallocated and reused between ticks to keep the per-tick
// allocation count flat (same approach as a fixed-grid neighbor index).
package broadphase

import "collide2d/internal/geom"

// Pair is a candidate pair of shape indices with A < B.
type Pair struct {
	A, B uint32
}

// Strategy is the common broad-phase contract.
type Strategy interface {
	// Add stages one shape's bounding box for the current tick.
	Add(index uint32, bounds geom.AABB)
	// Clear resets staged state, keeping allocated capacity where possible.
	Clear()
	// Pairs returns the candidate pairs for the staged shapes, deduplicated,
	// self-pairs excluded, lower index first.
	//
	// The returned slice is reused on subsequent calls; copy it if it must
	// outlive the next Clear.
	Pairs() []Pair
}

// entry is a staged shape.
type entry struct {
	index  uint32
	bounds geom.AABB
}

// pairSet collapses duplicate pairs found through multiple cells or leaves.
// Keys pack both indices into one word; the map is reused across ticks.
type pairSet map[uint64]struct{}

func pairKey(a, b uint32) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(b)
}

func (s pairSet) insert(a, b uint32) bool {
	k := pairKey(a, b)
	if _, dup := s[k]; dup {
		return false
	}
	s[k] = struct{}{}
	return true
}
