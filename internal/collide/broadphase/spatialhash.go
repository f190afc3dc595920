package broadphase

import (
	"math"

	"collide2d/internal/geom"
)

// SpatialHash partitions the plane into fixed-size square cells keyed by
// hashed cell coordinates, so the grid needs no world bounds. Each AABB is
// inserted into every cell its bounds span; skipping the extra cells would
// miss pairs straddling a cell boundary. A good cell size is roughly twice
// the largest expected shape extent.
type SpatialHash struct {
	cellSize    float64
	invCellSize float64 // 1/cellSize, multiplication beats division per insert

	entries []entry
	buckets map[int64][]int // cell key -> slots into entries
	seen    pairSet
	pairs   []Pair
}

// NewSpatialHash creates a hash grid with the given cell size.
// capacity hints the expected shape count for preallocation.
func NewSpatialHash(cellSize float64, capacity int) *SpatialHash {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialHash{
		cellSize:    cellSize,
		invCellSize: 1 / cellSize,
		entries:     make([]entry, 0, capacity),
		buckets:     make(map[int64][]int, capacity),
		seen:        make(pairSet, capacity),
		pairs:       make([]Pair, 0, capacity),
	}
}

// cellKey packs a cell coordinate into one map key.
func cellKey(cx, cy int32) int64 {
	return int64(cx)<<32 | int64(uint32(cy))
}

func (h *SpatialHash) Add(index uint32, bounds geom.AABB) {
	slot := len(h.entries)
	h.entries = append(h.entries, entry{index, bounds})

	minX := int32(math.Floor(bounds.Min.X * h.invCellSize))
	maxX := int32(math.Floor(bounds.Max.X * h.invCellSize))
	minY := int32(math.Floor(bounds.Min.Y * h.invCellSize))
	maxY := int32(math.Floor(bounds.Max.Y * h.invCellSize))

	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			k := cellKey(cx, cy)
			h.buckets[k] = append(h.buckets[k], slot)
		}
	}
}

func (h *SpatialHash) Clear() {
	h.entries = h.entries[:0]
	for k, bucket := range h.buckets {
		h.buckets[k] = bucket[:0] // keep capacity, reset length
	}
	clear(h.seen)
}

func (h *SpatialHash) Pairs() []Pair {
	h.pairs = h.pairs[:0]
	clear(h.seen)
	for _, bucket := range h.buckets {
		if len(bucket) < 2 {
			continue
		}
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := &h.entries[bucket[i]], &h.entries[bucket[j]]
				if !h.seen.insert(a.index, b.index) {
					continue // pair shares more than one cell
				}
				if !geom.Overlaps(a.bounds, b.bounds) {
					continue
				}
				lo, hi := a.index, b.index
				if lo > hi {
					lo, hi = hi, lo
				}
				h.pairs = append(h.pairs, Pair{lo, hi})
			}
		}
	}
	return h.pairs
}

// Stats returns bucket occupancy counters for tuning the cell size.
type Stats struct {
	NonEmptyBuckets int
	TotalEntries    int
	MaxInBucket     int
}

func (h *SpatialHash) Stats() Stats {
	var s Stats
	for _, bucket := range h.buckets {
		n := len(bucket)
		if n == 0 {
			continue
		}
		s.NonEmptyBuckets++
		s.TotalEntries += n
		if n > s.MaxInBucket {
			s.MaxInBucket = n
		}
	}
	return s
}
