package sim

import (
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"collide2d/internal/collide"
	"collide2d/internal/collide/broadphase"
	"collide2d/internal/config"
	"collide2d/internal/geom"
)

// TickFunc is called after every completed tick with the fresh snapshot and
// the collision world's per-tick diagnostics.
type TickFunc func(snap *Snapshot, stats collide.StepStats)

// Engine owns the demo scene: bodies, their colliders, and the collision
// world. One tick integrates velocities, steps the collision pipeline, and
// publishes a snapshot. All mutation happens under the engine lock; the
// collision world itself is single-threaded by contract.
type Engine struct {
	mu sync.Mutex

	world     *collide.World
	bodies    []*Body
	colliders []*collide.Collider

	worldCfg config.WorldConfig
	bounds   geom.AABB

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	tickCount int64
	rng       *rand.Rand

	// Event counters accumulated by the demo collider handlers.
	enters, exits int64

	onTick   TickFunc
	snapshot atomic.Pointer[Snapshot]
}

// NewEngine creates an engine with the configured broad-phase strategy.
func NewEngine(cfg config.AppConfig) *Engine {
	bounds := geom.AABB{Max: geom.Vec2{X: cfg.World.Width, Y: cfg.World.Height}}
	return &Engine{
		world:    collide.NewWorld(newStrategy(cfg.Broadphase, bounds)),
		worldCfg: cfg.World,
		bounds:   bounds,
		stopChan: make(chan struct{}),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// newStrategy builds the configured broad-phase strategy.
func newStrategy(cfg config.BroadphaseConfig, bounds geom.AABB) broadphase.Strategy {
	switch cfg.Strategy {
	case config.StrategyBrute:
		return broadphase.NewBruteForce(cfg.Capacity)
	case config.StrategyQuadtree:
		return broadphase.NewQuadtree(bounds, cfg.QuadtreeMaxItems, cfg.QuadtreeMinSize, cfg.Capacity)
	case config.StrategySweep:
		return broadphase.NewSweepAndPrune(cfg.Capacity)
	default:
		return broadphase.NewSpatialHash(cfg.CellSize, cfg.Capacity)
	}
}

// SetTickFunc installs the per-tick callback. Must be called before Start.
func (e *Engine) SetTickFunc(fn TickFunc) { e.onTick = fn }

// World exposes the collision world for ad-hoc queries. Callers must not
// use it while the engine is running; queries race with the tick loop.
func (e *Engine) World() *collide.World { return e.world }

// SpawnOptions configures a spawned demo shape.
type SpawnOptions struct {
	Velocity geom.Vec2
	Spin     float64
	Mass     float64
	Static   bool
	Trigger  bool
	Layer    uint32
	Mask     uint32
}

// SpawnBox adds a box body/collider pair to the scene.
func (e *Engine) SpawnBox(x, y float64, halfExtents geom.Vec2, opts SpawnOptions) *Body {
	e.mu.Lock()
	defer e.mu.Unlock()

	body := e.newBody(x, y, max(halfExtents.X, halfExtents.Y), opts)
	c := collide.NewBox(body, geom.Vec2{}, halfExtents)
	e.attach(body, c, opts)
	return body
}

// SpawnCircle adds a circle body/collider pair to the scene.
func (e *Engine) SpawnCircle(x, y, radius float64, opts SpawnOptions) *Body {
	e.mu.Lock()
	defer e.mu.Unlock()

	body := e.newBody(x, y, radius, opts)
	c := collide.NewCircle(body, geom.Vec2{}, radius)
	e.attach(body, c, opts)
	return body
}

func (e *Engine) newBody(x, y, extent float64, opts SpawnOptions) *Body {
	body := NewBody(len(e.bodies)+1, x, y)
	body.Velocity = opts.Velocity
	body.Spin = opts.Spin
	body.Extent = extent
	return body
}

func (e *Engine) attach(body *Body, c *collide.Collider, opts SpawnOptions) {
	c.Static = opts.Static
	c.Trigger = opts.Trigger
	if opts.Mass > 0 {
		c.Mass = opts.Mass
	}
	if opts.Layer != 0 {
		c.Layer = opts.Layer
	}
	if opts.Mask != 0 {
		c.Mask = opts.Mask
	}
	c.OnEnter = func(*collide.Collider) { e.enters++ }
	c.OnExit = func(*collide.Collider) { e.exits++ }

	e.world.Register(c)
	e.bodies = append(e.bodies, body)
	e.colliders = append(e.colliders, c)
}

// Remove detaches a body and its collider from the scene.
// Must not be called mid-tick; the engine lock serializes it against ticks.
func (e *Engine) Remove(body *Body) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, b := range e.bodies {
		if b != body {
			continue
		}
		e.world.Unregister(e.colliders[i])
		e.bodies = append(e.bodies[:i], e.bodies[i+1:]...)
		e.colliders = append(e.colliders[:i], e.colliders[i+1:]...)
		return
	}
}

// SpawnScene populates the demo: four static walls framing the world and n
// moving shapes, a mix of boxes and circles with one in five as a trigger.
func (e *Engine) SpawnScene(n int) {
	w, h := e.worldCfg.Width, e.worldCfg.Height
	wall := 10.0

	e.SpawnBox(w/2, wall/2, geom.Vec2{X: w / 2, Y: wall / 2}, SpawnOptions{Static: true})
	e.SpawnBox(w/2, h-wall/2, geom.Vec2{X: w / 2, Y: wall / 2}, SpawnOptions{Static: true})
	e.SpawnBox(wall/2, h/2, geom.Vec2{X: wall / 2, Y: h / 2}, SpawnOptions{Static: true})
	e.SpawnBox(w-wall/2, h/2, geom.Vec2{X: wall / 2, Y: h / 2}, SpawnOptions{Static: true})

	for i := 0; i < n; i++ {
		e.mu.Lock()
		x := e.rng.Float64()*(w-100) + 50
		y := e.rng.Float64()*(h-100) + 50
		vel := geom.Vec2{X: e.rng.Float64()*120 - 60, Y: e.rng.Float64()*120 - 60}
		size := e.rng.Float64()*15 + 5
		mass := e.rng.Float64()*4 + 1
		e.mu.Unlock()

		opts := SpawnOptions{Velocity: vel, Mass: mass, Trigger: i%5 == 4}
		if i%2 == 0 {
			e.SpawnBox(x, y, geom.Vec2{X: size, Y: size}, opts)
		} else {
			e.SpawnCircle(x, y, size, opts)
		}
	}
}

// Start begins the tick loop. A stopped engine can be started again.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	// Fresh channel per run: Stop closed the previous one.
	e.stopChan = make(chan struct{})
	stop := e.stopChan
	ticker := time.NewTicker(time.Second / time.Duration(e.worldCfg.TickRate))
	e.ticker = ticker
	e.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				e.tick()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("collision engine started at %d TPS (%d shapes)", e.worldCfg.TickRate, e.world.Len())
}

// Stop halts the tick loop. Safe to call twice.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("collision engine stopped")
}

// tick runs one frame: integrate poses, step the collision pipeline,
// publish the snapshot.
func (e *Engine) tick() {
	e.mu.Lock()

	e.tickCount++
	dt := 1.0 / float64(e.worldCfg.TickRate)

	for _, b := range e.bodies {
		b.integrate(dt, e.bounds)
	}

	e.world.Step()
	stats := e.world.LastStats()

	snap := e.buildSnapshot(stats)
	e.snapshot.Store(snap)
	onTick := e.onTick

	e.mu.Unlock()

	if onTick != nil {
		onTick(snap, stats)
	}
}

// TickOnce runs a single tick synchronously. Test and tooling hook.
func (e *Engine) TickOnce() { e.tick() }

// Snapshot returns the latest published snapshot, or nil before the first
// tick. The snapshot is immutable; readers never need the engine lock.
func (e *Engine) Snapshot() *Snapshot { return e.snapshot.Load() }
