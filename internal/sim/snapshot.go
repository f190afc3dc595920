package sim

import (
	"collide2d/internal/collide"
	"collide2d/internal/geom"
)

// Snapshot is an immutable copy of the scene after one tick, safe to share
// with the API layer and websocket clients without further locking.
type Snapshot struct {
	Tick     int64             `json:"tick"`
	Shapes   []ShapeSnapshot   `json:"shapes"`
	Contacts []ContactSnapshot `json:"contacts"`
	Stats    collide.StepStats `json:"stats"`
	Enters   int64             `json:"enters"`
	Exits    int64             `json:"exits"`
}

// ShapeSnapshot is one collider's world-space state.
type ShapeSnapshot struct {
	ID       uint32      `json:"id"`
	Kind     string      `json:"kind"`
	Position geom.Vec2   `json:"position"`
	Rotation float64     `json:"rotation"`
	Bounds   geom.AABB   `json:"bounds"`
	Vertices []geom.Vec2 `json:"vertices,omitempty"` // boxes
	Radius   float64     `json:"radius,omitempty"`   // circles
	Static   bool        `json:"static,omitempty"`
	Trigger  bool        `json:"trigger,omitempty"`
}

// ContactSnapshot is one confirmed contact, canonical order, normal A to B.
type ContactSnapshot struct {
	A      uint32    `json:"a"`
	B      uint32    `json:"b"`
	Normal geom.Vec2 `json:"normal"`
	Depth  float64   `json:"depth"`
}

// buildSnapshot copies the live scene. Caller holds the engine lock.
func (e *Engine) buildSnapshot(stats collide.StepStats) *Snapshot {
	snap := &Snapshot{
		Tick:     e.tickCount,
		Shapes:   make([]ShapeSnapshot, 0, len(e.colliders)),
		Stats:    stats,
		Enters:   e.enters,
		Exits:    e.exits,
	}

	for i, c := range e.colliders {
		body := e.bodies[i]
		s := ShapeSnapshot{
			ID:       c.ID(),
			Kind:     c.Kind().String(),
			Position: body.Position(),
			Rotation: body.Rotation(),
			Bounds:   c.Bounds(),
			Static:   c.Static,
			Trigger:  c.Trigger,
		}
		switch c.Kind() {
		case collide.KindBox:
			s.Vertices = append([]geom.Vec2(nil), c.WorldVertices()...)
		case collide.KindCircle:
			_, s.Radius = c.WorldCircle()
		}
		snap.Shapes = append(snap.Shapes, s)
	}

	for _, ci := range e.world.Contacts() {
		snap.Contacts = append(snap.Contacts, ContactSnapshot{
			A:      ci.A.ID(),
			B:      ci.B.ID(),
			Normal: ci.Contact.Normal,
			Depth:  ci.Contact.Depth,
		})
	}

	return snap
}
