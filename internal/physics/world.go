package physics

import (
	"log"

	"github.com/schillD/skate-game-sub000/internal/components"
	"github.com/schillD/skate-game-sub000/internal/engine"
)

// SteppingMode selects how wall-clock frame deltas become simulation steps.
type SteppingMode int

const (
	// StepVariableClamped integrates each frame with the reported delta,
	// clamped to MaxDelta. This is the default: physics and any fixed-step
	// game logic in the host may disagree on effective step size, which is
	// accepted.
	StepVariableClamped SteppingMode = iota
	// StepFixedAccumulator banks the reported delta and integrates in
	// FixedStep-sized slices.
	StepFixedAccumulator
)

// Config tunes the physics world. Zero values fall back to defaults.
type Config struct {
	MaxDelta         float32 // clamp on the per-frame delta, seconds
	SolverIterations int     // detect/resolve passes per frame
	GridDim          int     // cells per axis
	CellSize         float32 // world units per cell
	DetectorMode     DetectorMode
	Stepping         SteppingMode
	FixedStep        float32 // slice size for StepFixedAccumulator, seconds
}

func DefaultConfig() Config {
	return Config{
		MaxDelta:         0.1,
		SolverIterations: 3,
		GridDim:          DefaultGridDim,
		CellSize:         DefaultCellSize,
		DetectorMode:     DetectGrid,
		Stepping:         StepVariableClamped,
		FixedStep:        1.0 / 60.0,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxDelta <= 0 {
		c.MaxDelta = d.MaxDelta
	}
	if c.SolverIterations <= 0 {
		c.SolverIterations = d.SolverIterations
	}
	if c.GridDim <= 0 {
		c.GridDim = d.GridDim
	}
	if c.CellSize <= 0 {
		c.CellSize = d.CellSize
	}
	if c.FixedStep <= 0 {
		c.FixedStep = d.FixedStep
	}
	return c
}

// collisionPair tracks a contact pair across frames for enter/exit callbacks.
type collisionPair struct {
	a, b engine.Handle
}

func makeCollisionPair(a, b *components.Rigidbody) collisionPair {
	if a.Handle.Index > b.Handle.Index {
		a, b = b, a
	}
	return collisionPair{a: a.Handle, b: b.Handle}
}

// PhysicsWorld owns the body roster and drives the per-frame pipeline:
// refresh roster, integrate bodies, rebuild the broad-phase grid, then run
// the detect/resolve loop. Single-threaded and run-to-completion; the world
// holds no state between frames beyond the roster, the grid, and the pair
// buffers for callbacks.
type PhysicsWorld struct {
	cfg      Config
	scene    *engine.Scene
	manual   []*components.Rigidbody
	bodies   []*components.Rigidbody
	grid     *BroadPhaseGrid
	detector *CollisionDetector
	resolver *CollisionResolver

	// Body identity for pair dedup is issued here, not from a global counter.
	arena *engine.HandleArena

	accumulator float32

	activeCollisions  map[collisionPair][2]*components.Rigidbody
	currentCollisions map[collisionPair][2]*components.Rigidbody

	// OnContact fires once per contact per resolve pass.
	OnContact engine.EventWithArg[Contact]
}

func NewPhysicsWorld(cfg Config) *PhysicsWorld {
	cfg = cfg.withDefaults()
	grid := NewBroadPhaseGrid(cfg.GridDim, cfg.CellSize)
	return &PhysicsWorld{
		cfg:               cfg,
		grid:              grid,
		detector:          NewCollisionDetector(cfg.DetectorMode, grid),
		resolver:          NewCollisionResolver(),
		arena:             engine.NewHandleArena(),
		activeCollisions:  make(map[collisionPair][2]*components.Rigidbody),
		currentCollisions: make(map[collisionPair][2]*components.Rigidbody),
	}
}

// AttachScene makes the world rebuild its roster from the scene graph each
// step. While a scene is attached, manually added bodies are ignored.
func (p *PhysicsWorld) AttachScene(s *engine.Scene) {
	p.scene = s
}

// AddBody registers a body directly, for hosts that manage objects without a
// scene graph.
func (p *PhysicsWorld) AddBody(rb *components.Rigidbody) {
	p.manual = append(p.manual, rb)
}

// RemoveBody drops a manually registered body and retires its handle.
func (p *PhysicsWorld) RemoveBody(rb *components.Rigidbody) {
	for i, b := range p.manual {
		if b == rb {
			p.manual = append(p.manual[:i], p.manual[i+1:]...)
			p.arena.Release(rb.Handle)
			rb.Handle = engine.Handle{}
			return
		}
	}
}

// Bodies returns the roster from the most recent step.
func (p *PhysicsWorld) Bodies() []*components.Rigidbody {
	return p.bodies
}

// Step advances the simulation by one frame delta. In the default
// variable-clamped mode the delta is clamped to MaxDelta and integrated in a
// single slice; in fixed mode it is banked and consumed in FixedStep slices.
func (p *PhysicsWorld) Step(dt float32) {
	if dt <= 0 {
		return
	}
	if p.cfg.Stepping == StepFixedAccumulator {
		p.accumulator += dt
		for p.accumulator >= p.cfg.FixedStep {
			p.stepOnce(p.cfg.FixedStep)
			p.accumulator -= p.cfg.FixedStep
		}
		return
	}
	if dt > p.cfg.MaxDelta {
		dt = p.cfg.MaxDelta
	}
	p.stepOnce(dt)
}

func (p *PhysicsWorld) stepOnce(dt float32) {
	p.refreshRoster()

	clear(p.currentCollisions)

	// Integration. Kinematic bodies are never integrated but still need
	// fresh bounds in case the host moved them since last frame.
	for _, rb := range p.bodies {
		if rb.IsKinematic {
			rb.UpdateBounds()
			continue
		}
		rb.ApplyGravityStep(dt)
		rb.Integrate(dt)
	}

	p.grid.Rebuild(p.bodies)

	// Iterative relaxation: repeat detect/resolve to partially settle
	// multi-body overlaps. Not a converged solver; dense stacks may keep
	// residual penetration. Bounds and grid are not refreshed between passes.
	for i := 0; i < p.cfg.SolverIterations; i++ {
		contacts := p.detector.FindContacts(p.bodies)
		p.resolver.Resolve(contacts)
		for _, c := range contacts {
			p.recordCollision(c)
		}
	}

	p.dispatchCollisionCallbacks()
}

// refreshRoster rebuilds the active body list, from the scene graph when one
// is attached, otherwise from the manual list. O(n) full rescan each frame;
// a destroyed entity simply stops showing up. Bodies with no bound transform
// are skipped for the frame.
func (p *PhysicsWorld) refreshRoster() {
	p.bodies = p.bodies[:0]

	appendBody := func(rb *components.Rigidbody) {
		if rb.GetGameObject() == nil {
			log.Printf("Physics: body has no transform, skipping this frame")
			return
		}
		if rb.Handle.IsZero() {
			rb.Handle = p.arena.Alloc()
		}
		p.bodies = append(p.bodies, rb)
	}

	if p.scene != nil {
		p.scene.Walk(func(g *engine.GameObject) {
			if !g.Active {
				return
			}
			if rb := engine.GetComponent[*components.Rigidbody](g); rb != nil {
				appendBody(rb)
			}
		})
		return
	}
	for _, rb := range p.manual {
		appendBody(rb)
	}
}

func (p *PhysicsWorld) recordCollision(c Contact) {
	p.currentCollisions[makeCollisionPair(c.A, c.B)] = [2]*components.Rigidbody{c.A, c.B}
	p.OnContact.Invoke(c)
}

// dispatchCollisionCallbacks compares this frame's contact pairs against last
// frame's and sends OnCollisionEnter/OnCollisionExit to handler components.
func (p *PhysicsWorld) dispatchCollisionCallbacks() {
	for pair, bodies := range p.currentCollisions {
		if _, was := p.activeCollisions[pair]; !was {
			p.notifyCollisionEnter(bodies[0], bodies[1])
			p.notifyCollisionEnter(bodies[1], bodies[0])
		}
	}
	for pair, bodies := range p.activeCollisions {
		if _, still := p.currentCollisions[pair]; !still {
			p.notifyCollisionExit(bodies[0], bodies[1])
			p.notifyCollisionExit(bodies[1], bodies[0])
		}
	}

	// Swap buffers; the old active map becomes next frame's scratch.
	p.activeCollisions, p.currentCollisions = p.currentCollisions, p.activeCollisions
}

func (p *PhysicsWorld) notifyCollisionEnter(rb, other *components.Rigidbody) {
	g := rb.GetGameObject()
	og := other.GetGameObject()
	if g == nil || og == nil {
		return
	}
	for _, comp := range g.Components() {
		if handler, ok := comp.(engine.CollisionHandler); ok {
			handler.OnCollisionEnter(og)
		}
	}
}

func (p *PhysicsWorld) notifyCollisionExit(rb, other *components.Rigidbody) {
	g := rb.GetGameObject()
	og := other.GetGameObject()
	if g == nil || og == nil {
		return
	}
	for _, comp := range g.Components() {
		if handler, ok := comp.(engine.CollisionHandler); ok {
			handler.OnCollisionExit(og)
		}
	}
}
