package broadphase

import "collide2d/internal/geom"

// BruteForce tests every unordered pair directly: O(n²) AABB checks.
// It is the ground truth the other strategies must match exactly, and is
// perfectly adequate for small scenes.
type BruteForce struct {
	entries []entry
	pairs   []Pair
}

// NewBruteForce creates the baseline strategy. capacity hints the expected
// shape count for preallocation.
func NewBruteForce(capacity int) *BruteForce {
	return &BruteForce{
		entries: make([]entry, 0, capacity),
		pairs:   make([]Pair, 0, capacity),
	}
}

func (b *BruteForce) Add(index uint32, bounds geom.AABB) {
	b.entries = append(b.entries, entry{index, bounds})
}

func (b *BruteForce) Clear() {
	b.entries = b.entries[:0]
}

func (b *BruteForce) Pairs() []Pair {
	b.pairs = b.pairs[:0]
	for i := 0; i < len(b.entries); i++ {
		for j := i + 1; j < len(b.entries); j++ {
			if !geom.Overlaps(b.entries[i].bounds, b.entries[j].bounds) {
				continue
			}
			lo, hi := b.entries[i].index, b.entries[j].index
			if lo > hi {
				lo, hi = hi, lo
			}
			b.pairs = append(b.pairs, Pair{lo, hi})
		}
	}
	return b.pairs
}
