// Package collide implements the per-tick 2D collision pipeline: a registry
// of box and circle colliders, broad-phase candidate discovery, SAT narrow
// phase, enter/stay/exit event diffing, and mass-weighted positional
// resolution.
//
// The package consumes world-space poses through the Transform interface and
// never owns the bodies it reads; ownership of bodies and colliders stays
// with the caller.
package collide

import (
	"collide2d/internal/geom"
)

// Kind tags the shape variant of a collider.
type Kind int

const (
	KindBox Kind = iota
	KindCircle

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindCircle:
		return "circle"
	}
	return "unknown"
}

// Transform is the pose provider a collider reads its world placement from.
// Epoch must change whenever the pose changes; colliders compare it against
// a cached stamp so world geometry is only recomputed after a move.
// Translate is called by the resolve stage to separate overlapping bodies.
type Transform interface {
	Position() geom.Vec2
	Rotation() float64
	Scale() geom.Vec2
	Epoch() uint64
	Translate(delta geom.Vec2)
}

// Handler is an optional per-collider event callback. It receives the other
// member of the pair and runs synchronously during the event stage.
type Handler func(other *Collider)

// Collider is one registered shape: local shape parameters, per-instance
// flags, and cached world-space geometry derived from its body's pose.
type Collider struct {
	id   uint32
	kind Kind
	body Transform // non-owning; pose reads and resolve writes only

	// Local shape parameters.
	Offset      geom.Vec2 // local center offset from the body position
	HalfExtents geom.Vec2 // box only
	Radius      float64   // circle only

	// Collision filtering: two colliders are tested when each one's Layer
	// intersects the other's Mask.
	Layer uint32
	Mask  uint32

	Trigger bool    // detects and fires events but is never resolved
	Static  bool    // never moved by resolution
	Mass    float64 // positive; meaningful only when not static

	OnEnter Handler
	OnStay  Handler
	OnExit  Handler

	// Cached world geometry, refreshed lazily by epoch comparison.
	cacheEpoch  uint64
	cacheValid  bool
	worldVerts  []geom.Vec2
	worldCenter geom.Vec2
	worldRadius float64
	bounds      geom.AABB
}

// NewBox creates a box collider with the given local center offset and half
// extents, reading its pose from body.
func NewBox(body Transform, offset, halfExtents geom.Vec2) *Collider {
	return &Collider{
		kind:        KindBox,
		body:        body,
		Offset:      offset,
		HalfExtents: halfExtents,
		Layer:       1,
		Mask:        ^uint32(0),
		Mass:        1,
		worldVerts:  make([]geom.Vec2, 4),
	}
}

// NewCircle creates a circle collider with the given local center offset and
// radius, reading its pose from body.
func NewCircle(body Transform, offset geom.Vec2, radius float64) *Collider {
	return &Collider{
		kind:   KindCircle,
		body:   body,
		Offset: offset,
		Radius: radius,
		Layer:  1,
		Mask:   ^uint32(0),
		Mass:   1,
	}
}

// ID returns the registration identity. Zero means not registered.
func (c *Collider) ID() uint32 { return c.id }

// Kind returns the shape variant tag.
func (c *Collider) Kind() Kind { return c.kind }

// Body returns the collider's pose provider.
func (c *Collider) Body() Transform { return c.body }

// Invalidate drops the cached world geometry; the next query recomputes it
// even if the pose epoch has not changed. Needed after mutating local shape
// parameters in place.
func (c *Collider) Invalidate() { c.cacheValid = false }

// refresh recomputes world geometry when the pose changed since the last
// query.
func (c *Collider) refresh() {
	if c.body == nil {
		return
	}
	epoch := c.body.Epoch()
	if c.cacheValid && epoch == c.cacheEpoch {
		return
	}
	c.cacheEpoch = epoch
	c.cacheValid = true

	pos := c.body.Position()
	rot := c.body.Rotation()
	scale := c.body.Scale()

	switch c.kind {
	case KindBox:
		hx := c.HalfExtents.X * scale.X
		hy := c.HalfExtents.Y * scale.Y
		local := [4]geom.Vec2{
			{X: -hx, Y: -hy},
			{X: hx, Y: -hy},
			{X: hx, Y: hy},
			{X: -hx, Y: hy},
		}
		off := geom.Vec2{X: c.Offset.X * scale.X, Y: c.Offset.Y * scale.Y}
		for i, v := range local {
			c.worldVerts[i] = pos.Add(off.Add(v).Rotate(rot))
		}
		c.bounds = geom.AABBFromPoints(c.worldVerts)
		c.worldCenter = geom.Centroid(c.worldVerts)

	case KindCircle:
		off := geom.Vec2{X: c.Offset.X * scale.X, Y: c.Offset.Y * scale.Y}
		c.worldCenter = pos.Add(off.Rotate(rot))
		c.worldRadius = c.Radius * max(scale.X, scale.Y)
		c.bounds = geom.AABBAround(c.worldCenter, c.worldRadius)
	}
}

// Bounds returns the collider's current world-space AABB.
func (c *Collider) Bounds() geom.AABB {
	c.refresh()
	return c.bounds
}

// WorldVertices returns the box's world-space corner list. Nil for circles.
// The slice is owned by the collider and overwritten on the next refresh.
func (c *Collider) WorldVertices() []geom.Vec2 {
	c.refresh()
	if c.kind != KindBox {
		return nil
	}
	return c.worldVerts
}

// WorldCircle returns the circle's world-space center and radius.
func (c *Collider) WorldCircle() (geom.Vec2, float64) {
	c.refresh()
	return c.worldCenter, c.worldRadius
}

// ContainsPoint reports whether a world-space point lies inside the shape.
func (c *Collider) ContainsPoint(p geom.Vec2) bool {
	c.refresh()
	switch c.kind {
	case KindBox:
		return pointInConvex(c.worldVerts, p)
	case KindCircle:
		return p.Sub(c.worldCenter).LengthSq() <= c.worldRadius*c.worldRadius
	}
	return false
}

// compatible reports whether two colliders pass each other's layer filter.
func (c *Collider) compatible(o *Collider) bool {
	return c.Layer&o.Mask != 0 && o.Layer&c.Mask != 0
}

// pointInConvex tests a point against a convex polygon wound counter-
// clockwise: the point must not fall strictly outside any edge.
func pointInConvex(verts []geom.Vec2, p geom.Vec2) bool {
	if len(verts) < 3 {
		return false
	}
	for i := range verts {
		a := verts[i]
		b := verts[(i+1)%len(verts)]
		edge := b.Sub(a)
		if edge.X*(p.Y-a.Y)-edge.Y*(p.X-a.X) < 0 {
			return false
		}
	}
	return true
}
