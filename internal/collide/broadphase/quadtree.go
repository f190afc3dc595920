package broadphase

import "collide2d/internal/geom"

// Quadtree recursively splits a bounded region into four quadrants, storing
// shapes only at leaves. A leaf splits once it holds more than maxItems
// entries, unless its region has already shrunk to minSize. Entries whose
// AABB overlaps several quadrants are duplicated into each, exactly like the
// spatial hash's multi-cell insertion - every leaf a shape touches must list
// that shape or pair queries from neighbouring leaves would miss it.
//
// The tree is rebuilt from scratch every tick rather than maintained
// incrementally. That largely negates its asymptotic advantage over the
// spatial hash for this workload; known limitation, kept for simplicity.
type Quadtree struct {
	bounds   geom.AABB
	maxItems int
	minSize  float64

	root    *qtNode
	entries []entry
	seen    pairSet
	pairs   []Pair
	leaves  []*qtNode // scratch for leaf collection
}

type qtNode struct {
	bounds   geom.AABB
	items    []int // slots into Quadtree.entries; only leaves hold items
	children *[4]qtNode
}

// NewQuadtree creates a quadtree over the given world bounds.
// maxItems is the leaf capacity before a split; minSize is the smallest leaf
// edge below which splitting stops even over capacity.
func NewQuadtree(bounds geom.AABB, maxItems int, minSize float64, capacity int) *Quadtree {
	if maxItems < 1 {
		maxItems = 1
	}
	if minSize <= 0 {
		minSize = 1
	}
	return &Quadtree{
		bounds:   bounds,
		maxItems: maxItems,
		minSize:  minSize,
		root:     &qtNode{bounds: bounds},
		entries:  make([]entry, 0, capacity),
		seen:     make(pairSet, capacity),
		pairs:    make([]Pair, 0, capacity),
		leaves:   make([]*qtNode, 0, 16),
	}
}

func (q *Quadtree) Add(index uint32, bounds geom.AABB) {
	slot := len(q.entries)
	q.entries = append(q.entries, entry{index, bounds})
	q.insert(q.root, slot, bounds)
}

func (q *Quadtree) Clear() {
	q.entries = q.entries[:0]
	q.root = &qtNode{bounds: q.bounds}
	clear(q.seen)
}

func (q *Quadtree) insert(n *qtNode, slot int, bounds geom.AABB) {
	if !geom.Overlaps(n.bounds, bounds) {
		return
	}
	if n.children != nil {
		for i := range n.children {
			q.insert(&n.children[i], slot, bounds)
		}
		return
	}

	n.items = append(n.items, slot)

	// Split when over capacity, but never below the minimum leaf size.
	if len(n.items) <= q.maxItems {
		return
	}
	if min(n.bounds.Width(), n.bounds.Height())/2 < q.minSize {
		return
	}
	n.split()
	for _, s := range n.items {
		for i := range n.children {
			q.insert(&n.children[i], s, q.entries[s].bounds)
		}
	}
	n.items = nil
}

func (n *qtNode) split() {
	c := n.bounds.Center()
	n.children = &[4]qtNode{
		{bounds: geom.AABB{Min: n.bounds.Min, Max: c}},
		{bounds: geom.AABB{Min: geom.Vec2{X: c.X, Y: n.bounds.Min.Y}, Max: geom.Vec2{X: n.bounds.Max.X, Y: c.Y}}},
		{bounds: geom.AABB{Min: geom.Vec2{X: n.bounds.Min.X, Y: c.Y}, Max: geom.Vec2{X: c.X, Y: n.bounds.Max.Y}}},
		{bounds: geom.AABB{Min: c, Max: n.bounds.Max}},
	}
}

// findLeaves collects every leaf whose bound overlaps the query AABB into
// the scratch slice.
func (q *Quadtree) findLeaves(n *qtNode, bounds geom.AABB) {
	if !geom.Overlaps(n.bounds, bounds) {
		return
	}
	if n.children == nil {
		q.leaves = append(q.leaves, n)
		return
	}
	for i := range n.children {
		q.findLeaves(&n.children[i], bounds)
	}
}

func (q *Quadtree) Pairs() []Pair {
	q.pairs = q.pairs[:0]
	clear(q.seen)
	for slot := range q.entries {
		e := &q.entries[slot]
		q.leaves = q.leaves[:0]
		q.findLeaves(q.root, e.bounds)

		for _, leaf := range q.leaves {
			for _, other := range leaf.items {
				o := &q.entries[other]
				// Only look upward in index order; the reverse direction is
				// covered when that shape runs its own query.
				if o.index <= e.index {
					continue
				}
				if !q.seen.insert(e.index, o.index) {
					continue // already found through a shared leaf
				}
				if !geom.Overlaps(e.bounds, o.bounds) {
					continue
				}
				q.pairs = append(q.pairs, Pair{e.index, o.index})
			}
		}
	}
	return q.pairs
}

// TreeStats reports tree shape for tuning maxItems / minSize.
type TreeStats struct {
	Leaves    int
	MaxInLeaf int
	MaxDepth  int
}

func (q *Quadtree) Stats() TreeStats {
	var s TreeStats
	var walk func(n *qtNode, depth int)
	walk = func(n *qtNode, depth int) {
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		if n.children == nil {
			s.Leaves++
			if len(n.items) > s.MaxInLeaf {
				s.MaxInLeaf = len(n.items)
			}
			return
		}
		for i := range n.children {
			walk(&n.children[i], depth+1)
		}
	}
	walk(q.root, 0)
	return s
}
