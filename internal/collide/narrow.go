package collide

import "collide2d/internal/geom"

// narrowFunc runs the exact overlap test for one kind combination. The
// returned normal points from a toward b.
type narrowFunc func(a, b *Collider) geom.Contact

// narrowDispatch selects the narrow-phase test by the pair's kind tags.
// Unknown combinations stay nil and resolve to "no overlap".
var narrowDispatch [kindCount][kindCount]narrowFunc

func init() {
	narrowDispatch[KindBox][KindBox] = collideBoxBox
	narrowDispatch[KindBox][KindCircle] = collideBoxCircle
	narrowDispatch[KindCircle][KindBox] = collideCircleBox
	narrowDispatch[KindCircle][KindCircle] = collideCircleCircle
}

// narrowTest dispatches a confirmed-overlap test for a candidate pair.
// Self pairs and unknown kind combinations report no overlap rather than
// failing the tick.
func narrowTest(a, b *Collider) geom.Contact {
	if a == nil || b == nil || a == b {
		return geom.Contact{}
	}
	if a.kind < 0 || a.kind >= kindCount || b.kind < 0 || b.kind >= kindCount {
		return geom.Contact{}
	}
	fn := narrowDispatch[a.kind][b.kind]
	if fn == nil {
		return geom.Contact{}
	}
	return fn(a, b)
}

func collideBoxBox(a, b *Collider) geom.Contact {
	return geom.SATPolygons(a.WorldVertices(), b.WorldVertices())
}

func collideBoxCircle(a, b *Collider) geom.Contact {
	center, radius := b.WorldCircle()
	return geom.SATPolygonCircle(a.WorldVertices(), center, radius)
}

func collideCircleBox(a, b *Collider) geom.Contact {
	// The polygon-circle test reports its normal polygon-to-circle; flip it
	// so the contract "from a toward b" holds for the caller's order.
	center, radius := a.WorldCircle()
	c := geom.SATPolygonCircle(b.WorldVertices(), center, radius)
	if c.Overlapping {
		c.Normal = c.Normal.Neg()
	}
	return c
}

func collideCircleCircle(a, b *Collider) geom.Contact {
	centerA, radiusA := a.WorldCircle()
	centerB, radiusB := b.WorldCircle()
	return geom.SATCircles(centerA, radiusA, centerB, radiusB)
}
