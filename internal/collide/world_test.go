package collide

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"collide2d/internal/collide/broadphase"
	"collide2d/internal/geom"
)

func newTestWorld() *World {
	return NewWorld(broadphase.NewBruteForce(16))
}

func TestRegisterAssignsIdentity(t *testing.T) {
	w := newTestWorld()
	a := NewBox(newStubBody(0, 0), geom.Vec2{}, geom.Vec2{X: 1, Y: 1})
	b := NewCircle(newStubBody(5, 5), geom.Vec2{}, 1)

	w.Register(a)
	w.Register(b)

	if a.ID() == 0 || b.ID() == 0 {
		t.Fatal("registered colliders must have a non-zero identity")
	}
	if a.ID() == b.ID() {
		t.Fatal("identities must be unique")
	}
	if b.ID() < a.ID() {
		t.Error("identities should be assigned in registration order")
	}
	if w.Len() != 2 {
		t.Errorf("Len = %d, want 2", w.Len())
	}
}

func TestRegisterTwiceIsNoop(t *testing.T) {
	w := newTestWorld()
	c := NewBox(newStubBody(0, 0), geom.Vec2{}, geom.Vec2{X: 1, Y: 1})

	w.Register(c)
	id := c.ID()
	w.Register(c)

	if c.ID() != id {
		t.Error("double registration must not reassign identity")
	}
	if w.Len() != 1 {
		t.Errorf("Len = %d, want 1", w.Len())
	}
}

func TestUnregister(t *testing.T) {
	w := newTestWorld()
	c := NewBox(newStubBody(0, 0), geom.Vec2{}, geom.Vec2{X: 1, Y: 1})

	w.Register(c)
	w.Unregister(c)
	if w.Len() != 0 {
		t.Errorf("Len = %d, want 0", w.Len())
	}
	if c.ID() != 0 {
		t.Error("unregistered collider should report zero identity")
	}

	// Removing an unknown collider is a defensive no-op.
	w.Unregister(c)
	w.Unregister(nil)
}

func TestMakePairCanonicalization(t *testing.T) {
	k1, swapped1 := MakePair(2, 7)
	k2, swapped2 := MakePair(7, 2)

	if k1 != k2 {
		t.Fatalf("MakePair not canonical: %v vs %v", k1, k2)
	}
	if k1 != (Pair{2, 7}) {
		t.Errorf("canonical pair = %v, want {2 7}", k1)
	}
	if swapped1 || !swapped2 {
		t.Error("swapped flags wrong: ascending input must not swap, descending must")
	}
}

func TestStepDetectsOverlap(t *testing.T) {
	w := newTestWorld()
	a := NewCircle(newStubBody(5, 5), geom.Vec2{}, 1)
	b := NewCircle(newStubBody(6.5, 5), geom.Vec2{}, 1)
	a.Trigger, b.Trigger = true, true // keep them overlapping across ticks
	w.Register(a)
	w.Register(b)

	w.Step()

	contacts := w.Contacts()
	if len(contacts) != 1 {
		t.Fatalf("Contacts = %d, want 1", len(contacts))
	}
	c := contacts[0]
	if c.A != a || c.B != b {
		t.Error("contact members should follow canonical ID order")
	}
	if math.Abs(c.Contact.Depth-1.5) > 1e-9 {
		t.Errorf("Depth = %v, want 1.5", c.Contact.Depth)
	}
	if math.Abs(c.Contact.Normal.X-1) > 1e-9 {
		t.Errorf("Normal = %v, want (1,0)", c.Contact.Normal)
	}
}

func TestStepSkipsWithFewerThanTwoShapes(t *testing.T) {
	w := newTestWorld()
	w.Step() // empty registry

	c := NewCircle(newStubBody(0, 0), geom.Vec2{}, 1)
	w.Register(c)
	w.Step() // single shape

	if s := w.LastStats(); s.Candidates != 0 || s.Contacts != 0 {
		t.Errorf("stats = %+v, want no candidates for <2 shapes", s)
	}
}

// TestSupersetProperty: narrow-phase confirmed pairs are always a subset of
// broad-phase candidates.
func TestSupersetProperty(t *testing.T) {
	w := NewWorld(broadphase.NewSpatialHash(50, 64))
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 60; i++ {
		body := newStubBody(rng.Float64()*400, rng.Float64()*400)
		var c *Collider
		if i%2 == 0 {
			c = NewBox(body, geom.Vec2{}, geom.Vec2{X: rng.Float64()*10 + 1, Y: rng.Float64()*10 + 1})
		} else {
			c = NewCircle(body, geom.Vec2{}, rng.Float64()*10+1)
		}
		c.Trigger = true
		w.Register(c)
	}

	for tick := 0; tick < 5; tick++ {
		w.Step()
		s := w.LastStats()
		if s.Contacts > s.Candidates {
			t.Fatalf("tick %d: %d contacts exceed %d candidates", tick, s.Contacts, s.Candidates)
		}
	}
}

// TestStrategyParityThroughWorld: the same scene stepped through each
// broad-phase strategy confirms an identical contact set.
func TestStrategyParityThroughWorld(t *testing.T) {
	world := geom.AABB{Max: geom.Vec2{X: 600, Y: 600}}
	strategies := map[string]broadphase.Strategy{
		"brute":    broadphase.NewBruteForce(64),
		"hash":     broadphase.NewSpatialHash(60, 64),
		"quadtree": broadphase.NewQuadtree(world, 4, 8, 64),
		"sweep":    broadphase.NewSweepAndPrune(64),
	}

	results := map[string][]Pair{}
	for name, s := range strategies {
		w := NewWorld(s)
		rng := rand.New(rand.NewSource(23)) // identical scene per strategy
		for i := 0; i < 80; i++ {
			body := newStubBody(rng.Float64()*560+20, rng.Float64()*560+20)
			var c *Collider
			if i%3 == 0 {
				c = NewCircle(body, geom.Vec2{}, rng.Float64()*8+1)
			} else {
				c = NewBox(body, geom.Vec2{}, geom.Vec2{X: rng.Float64()*8 + 1, Y: rng.Float64()*8 + 1})
			}
			c.Trigger = true
			w.Register(c)
		}
		w.Step()

		var pairs []Pair
		for _, ci := range w.Contacts() {
			pairs = append(pairs, Pair{ci.A.ID(), ci.B.ID()})
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].A != pairs[j].A {
				return pairs[i].A < pairs[j].A
			}
			return pairs[i].B < pairs[j].B
		})
		results[name] = pairs
	}

	want := results["brute"]
	for name, got := range results {
		if len(got) != len(want) {
			t.Fatalf("%s found %d contacts, brute force found %d", name, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("%s contact %d = %v, brute force has %v", name, i, got[i], want[i])
			}
		}
	}
}

// TestEventLifecycle: enter on the first overlapping tick, stay while the
// overlap persists, exit exactly once after separation, then silence.
func TestEventLifecycle(t *testing.T) {
	w := newTestWorld()
	bodyA := newStubBody(0, 0)
	bodyB := newStubBody(1, 0)
	a := NewCircle(bodyA, geom.Vec2{}, 1)
	b := NewCircle(bodyB, geom.Vec2{}, 1)
	a.Trigger, b.Trigger = true, true

	var events []string
	record := func(tag string) Handler {
		return func(other *Collider) { events = append(events, tag) }
	}
	a.OnEnter, a.OnStay, a.OnExit = record("a-enter"), record("a-stay"), record("a-exit")
	b.OnEnter, b.OnStay, b.OnExit = record("b-enter"), record("b-stay"), record("b-exit")

	w.Register(a)
	w.Register(b)

	count := func(tag string) int {
		n := 0
		for _, e := range events {
			if e == tag {
				n++
			}
		}
		return n
	}

	// Tick 1: overlap begins.
	w.Step()
	if count("a-enter") != 1 || count("b-enter") != 1 || len(events) != 2 {
		t.Fatalf("tick 1 events = %v, want one enter per member", events)
	}

	// Tick 2: still overlapping.
	events = nil
	w.Step()
	if count("a-stay") != 1 || count("b-stay") != 1 || len(events) != 2 {
		t.Fatalf("tick 2 events = %v, want one stay per member", events)
	}

	// Tick 3: separated.
	events = nil
	bodyB.moveTo(100, 100)
	w.Step()
	if count("a-exit") != 1 || count("b-exit") != 1 || len(events) != 2 {
		t.Fatalf("tick 3 events = %v, want one exit per member", events)
	}

	// Tick 4: nothing further.
	events = nil
	w.Step()
	if len(events) != 0 {
		t.Fatalf("tick 4 events = %v, want none", events)
	}
}

// TestEventHandlersOptional: unset handlers are skipped, not an error.
func TestEventHandlersOptional(t *testing.T) {
	w := newTestWorld()
	a := NewCircle(newStubBody(0, 0), geom.Vec2{}, 1)
	b := NewCircle(newStubBody(1, 0), geom.Vec2{}, 1)
	a.Trigger, b.Trigger = true, true
	w.Register(a)
	w.Register(b)

	w.Step() // must not panic with nil handlers
	w.Step()
}

// TestResolveMassSplit: masses 1 and 3, penetration 2 along (1,0): the light
// body moves 1.5 against the normal, the heavy one 0.5 along it.
func TestResolveMassSplit(t *testing.T) {
	w := newTestWorld()
	bodyA := newStubBody(0, 0)
	bodyB := newStubBody(1, 0)

	// Unit-half-extent boxes with centers 1 apart: raw overlap 1 on x,
	// reported depth 2 after inflation, normal (1,0).
	a := NewBox(bodyA, geom.Vec2{}, geom.Vec2{X: 1, Y: 1})
	b := NewBox(bodyB, geom.Vec2{}, geom.Vec2{X: 1, Y: 1})
	a.Mass, b.Mass = 1, 3
	w.Register(a)
	w.Register(b)

	w.Step()

	if math.Abs(bodyA.pos.X+1.5) > 1e-9 || bodyA.pos.Y != 0 {
		t.Errorf("light body at %v, want (-1.5, 0)", bodyA.pos)
	}
	if math.Abs(bodyB.pos.X-1.5) > 1e-9 || bodyB.pos.Y != 0 {
		t.Errorf("heavy body at %v, want (1.5, 0)", bodyB.pos)
	}
}

// TestResolveStatic: a static member absorbs nothing; the dynamic one moves
// the full depth.
func TestResolveStatic(t *testing.T) {
	w := newTestWorld()
	bodyA := newStubBody(0, 0)
	bodyB := newStubBody(1, 0)
	a := NewBox(bodyA, geom.Vec2{}, geom.Vec2{X: 1, Y: 1})
	b := NewBox(bodyB, geom.Vec2{}, geom.Vec2{X: 1, Y: 1})
	a.Static = true
	w.Register(a)
	w.Register(b)

	w.Step()

	if bodyA.pos != (geom.Vec2{}) {
		t.Errorf("static body moved to %v", bodyA.pos)
	}
	if math.Abs(bodyB.pos.X-3) > 1e-9 {
		t.Errorf("dynamic body at %v, want (3, 0)", bodyB.pos)
	}
}

func TestResolveBothStaticSkipped(t *testing.T) {
	w := newTestWorld()
	bodyA := newStubBody(0, 0)
	bodyB := newStubBody(1, 0)
	a := NewBox(bodyA, geom.Vec2{}, geom.Vec2{X: 1, Y: 1})
	b := NewBox(bodyB, geom.Vec2{}, geom.Vec2{X: 1, Y: 1})
	a.Static, b.Static = true, true
	w.Register(a)
	w.Register(b)

	w.Step()

	if bodyA.pos != (geom.Vec2{}) || bodyB.pos != (geom.Vec2{X: 1, Y: 0}) {
		t.Error("static pair must not move")
	}
}

func TestResolveTriggerSkipped(t *testing.T) {
	w := newTestWorld()
	bodyA := newStubBody(0, 0)
	bodyB := newStubBody(1, 0)
	a := NewBox(bodyA, geom.Vec2{}, geom.Vec2{X: 1, Y: 1})
	b := NewBox(bodyB, geom.Vec2{}, geom.Vec2{X: 1, Y: 1})
	a.Trigger = true
	w.Register(a)
	w.Register(b)

	var entered bool
	b.OnEnter = func(other *Collider) { entered = other == a }

	w.Step()

	if bodyA.pos != (geom.Vec2{}) || bodyB.pos != (geom.Vec2{X: 1, Y: 0}) {
		t.Error("trigger pairs must not be resolved")
	}
	if !entered {
		t.Error("trigger pairs still fire events")
	}
}

func TestLayerFilteredPairsSkipped(t *testing.T) {
	w := newTestWorld()
	a := NewCircle(newStubBody(0, 0), geom.Vec2{}, 1)
	b := NewCircle(newStubBody(1, 0), geom.Vec2{}, 1)
	a.Layer, a.Mask = 0b01, 0b01
	b.Layer, b.Mask = 0b10, 0b10
	w.Register(a)
	w.Register(b)

	w.Step()

	if len(w.Contacts()) != 0 {
		t.Error("layer-incompatible pair must not produce a contact")
	}
}

func TestMixedKindDetection(t *testing.T) {
	w := newTestWorld()
	box := NewBox(newStubBody(11, 2), geom.Vec2{}, geom.Vec2{X: 1, Y: 2})
	circle := NewCircle(newStubBody(12.5, 2), geom.Vec2{}, 1)
	box.Trigger, circle.Trigger = true, true
	w.Register(box)
	w.Register(circle)

	w.Step()

	contacts := w.Contacts()
	if len(contacts) != 1 {
		t.Fatalf("Contacts = %d, want 1", len(contacts))
	}
	c := contacts[0].Contact
	if math.Abs(c.Depth-1.5) > 1e-9 {
		t.Errorf("Depth = %v, want 1.5", c.Depth)
	}
	if math.Abs(c.Normal.X-1) > 1e-9 || math.Abs(c.Normal.Y) > 1e-9 {
		t.Errorf("Normal = %v, want (1,0)", c.Normal)
	}
}

// TestMixedKindDetectionCircleFirst: registering the circle before the box
// exercises the circle-box dispatch flip. The canonical first member is now
// the circle, so the stored normal must point circle-to-box.
func TestMixedKindDetectionCircleFirst(t *testing.T) {
	w := newTestWorld()
	circle := NewCircle(newStubBody(12.5, 2), geom.Vec2{}, 1)
	box := NewBox(newStubBody(11, 2), geom.Vec2{}, geom.Vec2{X: 1, Y: 2})
	box.Trigger, circle.Trigger = true, true
	w.Register(circle)
	w.Register(box)

	w.Step()

	contacts := w.Contacts()
	if len(contacts) != 1 {
		t.Fatalf("Contacts = %d, want 1", len(contacts))
	}
	if contacts[0].A != circle || contacts[0].B != box {
		t.Fatalf("contact order = (%d, %d), want circle %d first", contacts[0].A.ID(), contacts[0].B.ID(), circle.ID())
	}
	c := contacts[0].Contact
	if math.Abs(c.Depth-1.5) > 1e-9 {
		t.Errorf("Depth = %v, want 1.5", c.Depth)
	}
	if math.Abs(c.Normal.X+1) > 1e-9 || math.Abs(c.Normal.Y) > 1e-9 {
		t.Errorf("Normal = %v, want (-1,0)", c.Normal)
	}
}

// reversedStrategy wraps another strategy and emits every pair with the
// higher index first, so detect's canonicalization path has to swap and
// negate.
type reversedStrategy struct {
	inner broadphase.Strategy
	out   []broadphase.Pair
}

func (r *reversedStrategy) Add(index uint32, bounds geom.AABB) { r.inner.Add(index, bounds) }
func (r *reversedStrategy) Clear()                             { r.inner.Clear() }
func (r *reversedStrategy) Pairs() []broadphase.Pair {
	r.out = r.out[:0]
	for _, p := range r.inner.Pairs() {
		r.out = append(r.out, broadphase.Pair{A: p.B, B: p.A})
	}
	return r.out
}

// TestDetectCanonicalizesSwappedPairs: candidate pairs supplied in reversed
// identity order must land in the same canonical slot with the same
// orientation as pairs supplied in order.
func TestDetectCanonicalizesSwappedPairs(t *testing.T) {
	build := func(w *World) (*Collider, *Collider) {
		box := NewBox(newStubBody(11, 2), geom.Vec2{}, geom.Vec2{X: 1, Y: 2})
		circle := NewCircle(newStubBody(12.5, 2), geom.Vec2{}, 1)
		box.Trigger, circle.Trigger = true, true
		w.Register(box)
		w.Register(circle)
		return box, circle
	}

	forward := newTestWorld()
	fBox, fCircle := build(forward)
	forward.Step()

	reversed := NewWorld(&reversedStrategy{inner: broadphase.NewBruteForce(16)})
	rBox, rCircle := build(reversed)
	reversed.Step()

	fc, rc := forward.Contacts(), reversed.Contacts()
	if len(fc) != 1 || len(rc) != 1 {
		t.Fatalf("Contacts = %d and %d, want 1 each", len(fc), len(rc))
	}
	if fc[0].A != fBox || fc[0].B != fCircle {
		t.Fatalf("forward contact order = (%d, %d), want box first", fc[0].A.ID(), fc[0].B.ID())
	}
	if rc[0].A != rBox || rc[0].B != rCircle {
		t.Fatalf("reversed contact order = (%d, %d), want box first", rc[0].A.ID(), rc[0].B.ID())
	}
	if fc[0].Contact != rc[0].Contact {
		t.Errorf("contact mismatch: forward %+v, reversed %+v", fc[0].Contact, rc[0].Contact)
	}
	if math.Abs(rc[0].Contact.Normal.X-1) > 1e-9 || math.Abs(rc[0].Contact.Normal.Y) > 1e-9 {
		t.Errorf("Normal = %v, want (1,0)", rc[0].Contact.Normal)
	}
}

func TestQueryPoint(t *testing.T) {
	w := newTestWorld()
	box := NewBox(newStubBody(0, 0), geom.Vec2{}, geom.Vec2{X: 1, Y: 1})
	circleBody := newStubBody(10, 0)
	circle := NewCircle(circleBody, geom.Vec2{}, 2)
	w.Register(box)
	w.Register(circle)

	if got := w.QueryPoint(geom.Vec2{X: 0.5, Y: 0.5}); got != box {
		t.Error("point inside the box should find it")
	}
	if got := w.QueryPoint(geom.Vec2{X: 10, Y: 1}); got != circle {
		t.Error("point inside the circle should find it")
	}
	if got := w.QueryPoint(geom.Vec2{X: 5, Y: 5}); got != nil {
		t.Errorf("empty space returned %v", got)
	}
	if got := w.QueryPointBody(geom.Vec2{X: 10, Y: 0}); got != Transform(circleBody) {
		t.Error("QueryPointBody should return the owning body")
	}
}

func TestAdHocOverlapQueries(t *testing.T) {
	w := newTestWorld()
	a := NewCircle(newStubBody(0, 0), geom.Vec2{}, 1)
	b := NewCircle(newStubBody(1, 0), geom.Vec2{}, 1)
	far := NewCircle(newStubBody(50, 50), geom.Vec2{}, 1)
	w.Register(a)
	w.Register(b)
	w.Register(far)

	if !w.Overlapping(a, b) {
		t.Error("a and b overlap")
	}
	if w.Overlapping(a, far) {
		t.Error("a and far do not overlap")
	}
	if w.Overlapping(a, a) {
		t.Error("a collider never overlaps itself")
	}
	if !w.OverlapsAnything(a) {
		t.Error("a overlaps b")
	}
	if w.OverlapsAnything(far) {
		t.Error("far overlaps nothing")
	}
}

func BenchmarkWorldStep_50Brute(b *testing.B) {
	benchmarkWorldStep(b, broadphase.NewBruteForce(64), 50)
}

func BenchmarkWorldStep_200Hash(b *testing.B) {
	benchmarkWorldStep(b, broadphase.NewSpatialHash(60, 256), 200)
}

func BenchmarkWorldStep_200Quadtree(b *testing.B) {
	world := geom.AABB{Max: geom.Vec2{X: 1280, Y: 720}}
	benchmarkWorldStep(b, broadphase.NewQuadtree(world, 8, 10, 256), 200)
}

func benchmarkWorldStep(b *testing.B, s broadphase.Strategy, n int) {
	w := NewWorld(s)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < n; i++ {
		body := newStubBody(rng.Float64()*1200, rng.Float64()*700)
		var c *Collider
		if i%2 == 0 {
			c = NewBox(body, geom.Vec2{}, geom.Vec2{X: 10, Y: 10})
		} else {
			c = NewCircle(body, geom.Vec2{}, 10)
		}
		c.Trigger = true // keep the scene stable across iterations
		w.Register(c)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		w.Step()
	}
}
