package geom

// AABB is an axis-aligned bounding box stored as its min/max corners.
// It is always derived from cached world-space geometry and never persisted
// across ticks.
type AABB struct {
	Min Vec2 `json:"min"`
	Max Vec2 `json:"max"`
}

// AABBFromPoints returns the tightest AABB enclosing the given points.
// An empty slice yields the zero box.
func AABBFromPoints(points []Vec2) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		if p.X < box.Min.X {
			box.Min.X = p.X
		}
		if p.Y < box.Min.Y {
			box.Min.Y = p.Y
		}
		if p.X > box.Max.X {
			box.Max.X = p.X
		}
		if p.Y > box.Max.Y {
			box.Max.Y = p.Y
		}
	}
	return box
}

// AABBAround returns the AABB of a circle with the given center and radius.
func AABBAround(center Vec2, radius float64) AABB {
	r := Vec2{radius, radius}
	return AABB{Min: center.Sub(r), Max: center.Add(r)}
}

// Overlaps reports whether two boxes overlap.
// Boxes that merely touch on an edge do not overlap; the test is strict and
// symmetric in its arguments.
func Overlaps(a, b AABB) bool {
	if a.Max.X <= b.Min.X || b.Max.X <= a.Min.X {
		return false
	}
	if a.Max.Y <= b.Min.Y || b.Max.Y <= a.Min.Y {
		return false
	}
	return true
}

// Center returns the midpoint of the box.
func (a AABB) Center() Vec2 {
	return Vec2{(a.Min.X + a.Max.X) / 2, (a.Min.Y + a.Max.Y) / 2}
}

// Width returns the box extent along x.
func (a AABB) Width() float64 { return a.Max.X - a.Min.X }

// Height returns the box extent along y.
func (a AABB) Height() float64 { return a.Max.Y - a.Min.Y }

// Contains reports whether the point lies inside the box (inclusive of the
// min edge, exclusive of the max edge, so adjacent boxes partition space).
func (a AABB) Contains(p Vec2) bool {
	return p.X >= a.Min.X && p.X < a.Max.X && p.Y >= a.Min.Y && p.Y < a.Max.Y
}
