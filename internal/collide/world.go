package collide

import (
	"time"

	"collide2d/internal/collide/broadphase"
	"collide2d/internal/geom"
)

// World owns the live collider registry and runs the per-tick pipeline:
// Detect discovers and confirms overlapping pairs, FireEvents diffs the
// result table against last tick's to deliver enter/stay/exit callbacks, and
// Resolve separates overlapping bodies using the contacts Detect computed.
//
// A World is single-threaded by design: Step runs to completion before the
// caller observes updated poses, and the registry must not be mutated while
// a Step is in progress. Callers owning multiple goroutines serialize access
// themselves (the sim engine holds its own lock around Step).
type World struct {
	colliders []*Collider          // insertion-ordered registry
	byID      map[uint32]*Collider // identity lookup for event delivery
	nextID    uint32

	strategy broadphase.Strategy

	// Result tables for event diffing. current is rebuilt every tick;
	// previous is last tick's table, consumed by the event stage and then
	// replaced wholesale by swap.
	current  map[Pair]geom.Contact
	previous map[Pair]geom.Contact

	// frame holds this tick's confirmed contacts with resolved collider
	// pointers, so the resolve stage reuses the geometry Detect computed
	// instead of re-querying poses.
	frame []frameContact

	stats StepStats
}

type frameContact struct {
	key     Pair
	a, b    *Collider
	contact geom.Contact
}

// StepStats captures per-tick diagnostics for the active broad-phase
// strategy. Useful for comparative tuning; not part of the correctness
// contract.
type StepStats struct {
	Elapsed    time.Duration `json:"elapsed"`
	Shapes     int           `json:"shapes"`
	Candidates int           `json:"candidates"`
	Contacts   int           `json:"contacts"`
}

// NewWorld creates a collision world using the given broad-phase strategy.
func NewWorld(strategy broadphase.Strategy) *World {
	return &World{
		byID:     make(map[uint32]*Collider),
		strategy: strategy,
		current:  make(map[Pair]geom.Contact),
		previous: make(map[Pair]geom.Contact),
		nextID:   1, // 0 is "unregistered"
	}
}

// Register adds a collider to the registry and assigns its identity.
// Registering an already-registered collider is a no-op. IDs are assigned in
// registration order and never reused while the collider stays registered.
func (w *World) Register(c *Collider) {
	if c == nil {
		return
	}
	if c.id != 0 && w.byID[c.id] == c {
		return
	}
	c.id = w.nextID
	w.nextID++
	w.colliders = append(w.colliders, c)
	w.byID[c.id] = c
}

// Unregister removes a collider from the registry. Removing a collider that
// is not registered is a no-op. Must not be called while a Step is running.
func (w *World) Unregister(c *Collider) {
	if c == nil || c.id == 0 || w.byID[c.id] != c {
		return
	}
	delete(w.byID, c.id)
	for i, o := range w.colliders {
		if o == c {
			w.colliders = append(w.colliders[:i], w.colliders[i+1:]...)
			break
		}
	}
	c.id = 0
}

// Len returns the number of registered colliders.
func (w *World) Len() int { return len(w.colliders) }

// Step runs one tick: Detect, then FireEvents, then Resolve, in strict
// order, and finally promotes the current result table to previous.
func (w *World) Step() {
	start := time.Now()

	w.detect()
	w.fireEvents()
	w.resolve()

	// Promote by swap, not copy; next tick's detect clears the stale map.
	w.previous, w.current = w.current, w.previous

	w.stats.Elapsed = time.Since(start)
	w.stats.Shapes = len(w.colliders)
	w.stats.Contacts = len(w.frame)
}

// LastStats returns diagnostics from the most recent Step.
func (w *World) LastStats() StepStats { return w.stats }

// ContactInfo is one confirmed contact from the most recent Step, in
// canonical pair order (A has the lower ID; the normal points A to B).
type ContactInfo struct {
	A, B    *Collider
	Contact geom.Contact
}

// Contacts returns the confirmed contacts from the most recent Step. The
// result is a fresh slice; the underlying colliders are live registry
// members.
func (w *World) Contacts() []ContactInfo {
	out := make([]ContactInfo, 0, len(w.frame))
	for _, fc := range w.frame {
		out = append(out, ContactInfo{A: fc.a, B: fc.b, Contact: fc.contact})
	}
	return out
}

func (w *World) detect() {
	clear(w.current)
	w.frame = w.frame[:0]
	w.stats.Candidates = 0

	if len(w.colliders) < 2 {
		return
	}

	w.strategy.Clear()
	for i, c := range w.colliders {
		w.strategy.Add(uint32(i), c.Bounds())
	}

	pairs := w.strategy.Pairs()
	w.stats.Candidates = len(pairs)

	for _, p := range pairs {
		a, b := w.colliders[p.A], w.colliders[p.B]
		if !a.compatible(b) {
			continue
		}
		contact := narrowTest(a, b)
		if !contact.Overlapping {
			continue
		}
		key, swapped := MakePair(a.id, b.id)
		if swapped {
			contact.Normal = contact.Normal.Neg()
			a, b = b, a
		}
		w.current[key] = contact
		w.frame = append(w.frame, frameContact{key: key, a: a, b: b, contact: contact})
	}
}

func (w *World) fireEvents() {
	for _, fc := range w.frame {
		if _, stayed := w.previous[fc.key]; stayed {
			fire(fc.a.OnStay, fc.b)
			fire(fc.b.OnStay, fc.a)
			delete(w.previous, fc.key)
		} else {
			fire(fc.a.OnEnter, fc.b)
			fire(fc.b.OnEnter, fc.a)
		}
	}

	// Whatever is left existed last tick but not this one.
	for key := range w.previous {
		a, b := w.byID[key.A], w.byID[key.B]
		if a != nil && b != nil {
			fire(a.OnExit, b)
			fire(b.OnExit, a)
		}
	}
}

func fire(h Handler, other *Collider) {
	if h != nil {
		h(other)
	}
}

func (w *World) resolve() {
	for _, fc := range w.frame {
		a, b := fc.a, fc.b
		if a.Trigger || b.Trigger {
			continue
		}
		if a.Static && b.Static {
			continue
		}

		n := fc.contact.Normal
		depth := fc.contact.Depth

		switch {
		case a.Static:
			b.body.Translate(n.Scale(depth))
		case b.Static:
			a.body.Translate(n.Scale(-depth))
		default:
			// Split inversely proportional to mass: the heavier member
			// moves less; the displacements sum to the full depth.
			ma, mb := max(a.Mass, 1e-9), max(b.Mass, 1e-9)
			total := ma + mb
			a.body.Translate(n.Scale(-depth * mb / total))
			b.body.Translate(n.Scale(depth * ma / total))
		}
	}
}
