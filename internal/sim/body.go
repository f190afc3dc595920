// Package sim provides the demo simulation driving the collision world: a
// set of moving bodies (the pose provider colliders read from) and a
// ticker-based engine that integrates velocities, steps the collision
// pipeline, and publishes immutable snapshots for the API layer.
package sim

import "collide2d/internal/geom"

// Body is a mutable 2D pose with linear and angular velocity. It implements
// collide.Transform: every pose change advances the epoch so colliders know
// to refresh their cached world geometry.
type Body struct {
	ID int `json:"id"`

	pos   geom.Vec2
	rot   float64
	scale geom.Vec2
	epoch uint64

	Velocity geom.Vec2 `json:"velocity"`
	Spin     float64   `json:"spin"` // radians per second

	// Extent is the body's nominal half-size, used only for bouncing off
	// the world bounds in the demo integrator.
	Extent float64 `json:"extent"`
}

// NewBody creates a body at the given position with identity scale.
func NewBody(id int, x, y float64) *Body {
	return &Body{
		ID:    id,
		pos:   geom.Vec2{X: x, Y: y},
		scale: geom.Vec2{X: 1, Y: 1},
		epoch: 1,
	}
}

func (b *Body) Position() geom.Vec2 { return b.pos }
func (b *Body) Rotation() float64   { return b.rot }
func (b *Body) Scale() geom.Vec2    { return b.scale }
func (b *Body) Epoch() uint64       { return b.epoch }

// Translate shifts the body; the collision world's resolve stage calls this
// to separate overlapping bodies.
func (b *Body) Translate(delta geom.Vec2) {
	b.pos = b.pos.Add(delta)
	b.epoch++
}

// SetPosition moves the body to an absolute position.
func (b *Body) SetPosition(p geom.Vec2) {
	b.pos = p
	b.epoch++
}

// SetRotation sets the body's orientation in radians.
func (b *Body) SetRotation(angle float64) {
	b.rot = angle
	b.epoch++
}

// SetScale sets the body's scale factors.
func (b *Body) SetScale(s geom.Vec2) {
	b.scale = s
	b.epoch++
}

// integrate advances the pose by dt seconds and bounces off the world
// bounds. Stationary bodies skip the epoch bump entirely.
func (b *Body) integrate(dt float64, bounds geom.AABB) {
	if b.Velocity == (geom.Vec2{}) && b.Spin == 0 {
		return
	}

	b.pos = b.pos.Add(b.Velocity.Scale(dt))
	b.rot += b.Spin * dt

	if b.pos.X-b.Extent < bounds.Min.X {
		b.pos.X = bounds.Min.X + b.Extent
		b.Velocity.X = -b.Velocity.X
	} else if b.pos.X+b.Extent > bounds.Max.X {
		b.pos.X = bounds.Max.X - b.Extent
		b.Velocity.X = -b.Velocity.X
	}
	if b.pos.Y-b.Extent < bounds.Min.Y {
		b.pos.Y = bounds.Min.Y + b.Extent
		b.Velocity.Y = -b.Velocity.Y
	} else if b.pos.Y+b.Extent > bounds.Max.Y {
		b.pos.Y = bounds.Max.Y - b.Extent
		b.Velocity.Y = -b.Velocity.Y
	}

	b.epoch++
}
