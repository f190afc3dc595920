package geom

// Contact is the result of a narrow-phase overlap test.
// Normal and Depth are only meaningful when Overlapping is true; Normal is
// unit length and points from the first shape toward the second.
type Contact struct {
	Overlapping bool    `json:"overlapping"`
	Normal      Vec2    `json:"normal"`
	Depth       float64 `json:"depth"`
}

// depthPad inflates every reported penetration depth by a constant, applied
// once after the axis search. Without it, resolution at near-zero overlap
// jitters shapes in and out of contact on alternating ticks.
const depthPad = 1.0

// Project returns the scalar projection range of a vertex list onto a unit
// axis. An empty vertex list yields the empty range (0, 0); callers treat
// degenerate inputs as non-overlap.
func Project(verts []Vec2, axis Vec2) (min, max float64) {
	if len(verts) == 0 {
		return 0, 0
	}
	min = verts[0].Dot(axis)
	max = min
	for _, v := range verts[1:] {
		d := v.Dot(axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

// ProjectCircle returns the projection range of a circle onto a unit axis.
func ProjectCircle(center Vec2, radius float64, axis Vec2) (min, max float64) {
	d := center.Dot(axis)
	return d - radius, d + radius
}

// rangeOverlap returns the overlap magnitude of two projection ranges.
// Zero or negative means separated; ranges that merely touch count as
// separated, matching the AABB convention.
func rangeOverlap(minA, maxA, minB, maxB float64) float64 {
	return min(maxA, maxB) - max(minA, minB)
}

// SATPolygons tests two convex polygons with the Separating Axis Theorem.
// Every edge normal of A then of B is tried as a candidate axis; the first
// separating axis found ends the test early. Otherwise the axis with the
// minimum overlap becomes the resolution axis (ties keep the first axis
// found) and the normal is oriented from A's centroid toward B's centroid.
//
// Works for any convex polygon pair, not just rectangles. Polygons with
// fewer than three vertices are degenerate and report no overlap.
func SATPolygons(vertsA, vertsB []Vec2) Contact {
	if len(vertsA) < 3 || len(vertsB) < 3 {
		return Contact{}
	}

	best := Contact{}
	minOverlap := -1.0

	for _, verts := range [2][]Vec2{vertsA, vertsB} {
		for i := range verts {
			edge := verts[(i+1)%len(verts)].Sub(verts[i])
			axis := edge.Perp().Normalize()
			if axis == (Vec2{}) {
				continue // zero-length edge contributes no axis
			}

			minA, maxA := Project(vertsA, axis)
			minB, maxB := Project(vertsB, axis)
			overlap := rangeOverlap(minA, maxA, minB, maxB)
			if overlap <= 0 {
				return Contact{} // separating axis found
			}
			if minOverlap < 0 || overlap < minOverlap {
				minOverlap = overlap
				best.Normal = axis
			}
		}
	}
	if minOverlap < 0 {
		return Contact{} // all edges were degenerate
	}

	// Point the normal from A toward B.
	dir := Centroid(vertsB).Sub(Centroid(vertsA))
	if best.Normal.Dot(dir) < 0 {
		best.Normal = best.Normal.Neg()
	}

	best.Overlapping = true
	best.Depth = minOverlap + depthPad
	return best
}

// SATCircles tests two circles. Overlap iff the center distance is strictly
// less than the sum of radii.
func SATCircles(centerA Vec2, radiusA float64, centerB Vec2, radiusB float64) Contact {
	delta := centerB.Sub(centerA)
	dist := delta.Length()
	if dist >= radiusA+radiusB {
		return Contact{}
	}

	normal := delta.Normalize()
	if normal == (Vec2{}) {
		// Coincident centers leave the separation direction undefined;
		// fall back to +x so the normal stays unit length.
		normal = Vec2{X: 1}
	}
	return Contact{
		Overlapping: true,
		Normal:      normal,
		Depth:       (radiusA + radiusB) - dist + depthPad,
	}
}

// SATPolygonCircle tests a convex polygon against a circle. In addition to
// the polygon's edge normals it tries one extra axis: from the polygon vertex
// nearest the circle's center toward that center. A circle's closest feature
// to a polygon corner is not captured by any edge normal, so skipping this
// axis misses corner contacts.
//
// The normal points from the polygon toward the circle.
func SATPolygonCircle(verts []Vec2, center Vec2, radius float64) Contact {
	if len(verts) < 3 {
		return Contact{}
	}

	best := Contact{}
	minOverlap := -1.0

	test := func(axis Vec2) bool {
		minA, maxA := Project(verts, axis)
		minB, maxB := ProjectCircle(center, radius, axis)
		overlap := rangeOverlap(minA, maxA, minB, maxB)
		if overlap <= 0 {
			return false
		}
		if minOverlap < 0 || overlap < minOverlap {
			minOverlap = overlap
			best.Normal = axis
		}
		return true
	}

	for i := range verts {
		edge := verts[(i+1)%len(verts)].Sub(verts[i])
		axis := edge.Perp().Normalize()
		if axis == (Vec2{}) {
			continue
		}
		if !test(axis) {
			return Contact{}
		}
	}

	// Extra axis: nearest vertex toward the circle center.
	nearest := verts[0]
	nearestDist := center.Sub(verts[0]).LengthSq()
	for _, v := range verts[1:] {
		if d := center.Sub(v).LengthSq(); d < nearestDist {
			nearest = v
			nearestDist = d
		}
	}
	if axis := center.Sub(nearest).Normalize(); axis != (Vec2{}) {
		if !test(axis) {
			return Contact{}
		}
	}

	if minOverlap < 0 {
		return Contact{}
	}

	dir := center.Sub(Centroid(verts))
	if best.Normal.Dot(dir) < 0 {
		best.Normal = best.Normal.Neg()
	}

	best.Overlapping = true
	best.Depth = minOverlap + depthPad
	return best
}
