package collide

import "collide2d/internal/geom"

// Ad-hoc queries for gameplay code. These reuse the narrow-phase dispatch
// but bypass the broad phase, the event stage, and resolution; they never
// touch the result tables.

// QueryPoint returns the first registered collider containing the point, in
// registration order, or nil.
func (w *World) QueryPoint(p geom.Vec2) *Collider {
	for _, c := range w.colliders {
		if c.ContainsPoint(p) {
			return c
		}
	}
	return nil
}

// QueryPointBody returns the owning body of the first collider containing
// the point, or nil.
func (w *World) QueryPointBody(p geom.Vec2) Transform {
	if c := w.QueryPoint(p); c != nil {
		return c.body
	}
	return nil
}

// Overlapping reports whether two colliders currently overlap. A collider
// never overlaps itself.
func (w *World) Overlapping(a, b *Collider) bool {
	return narrowTest(a, b).Overlapping
}

// OverlapsAnything reports whether the collider currently overlaps any other
// registered collider that passes its layer filter.
func (w *World) OverlapsAnything(c *Collider) bool {
	if c == nil {
		return false
	}
	for _, o := range w.colliders {
		if o == c || !c.compatible(o) {
			continue
		}
		if narrowTest(c, o).Overlapping {
			return true
		}
	}
	return false
}
