package config

import (
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/schillD/skate-game-sub000/internal/components"
	"github.com/schillD/skate-game-sub000/internal/engine"
	"github.com/schillD/skate-game-sub000/internal/physics"
)

const (
	DefaultMaxDelta    = 0.1
	DefaultIterations  = 3
	DefaultGridDim     = 20
	DefaultCellSize    = 10.0
	DefaultFixedStep   = 1.0 / 60.0
	DefaultMass        = 1.0
	DefaultFriction    = 0.95
	DefaultRestitution = 0.5
	DefaultRadius      = 0.5
)

// World tunes the physics world.
type World struct {
	Gravity    [3]float32 `yaml:"gravity"`
	MaxDelta   float32    `yaml:"max_delta"`
	Iterations int        `yaml:"iterations"`
	GridDim    int        `yaml:"grid_dim"`
	CellSize   float32    `yaml:"cell_size"`
	Detector   string     `yaml:"detector"` // "grid" or "brute-force"
	Stepping   string     `yaml:"stepping"` // "variable" or "fixed"
	FixedStep  float32    `yaml:"fixed_step"`
}

// Body describes one rigidbody in a scene file. Per-body configuration is
// supplied at creation and not renegotiated at runtime.
type Body struct {
	Name        string     `yaml:"name"`
	Tags        []string   `yaml:"tags,omitempty"`
	Position    [3]float32 `yaml:"position"`
	Velocity    [3]float32 `yaml:"velocity,omitempty"`
	Mass float32 `yaml:"mass"`
	// Zero is a meaningful value for friction and restitution (ice, dead
	// bounce), so "unset" is nil rather than zero.
	Friction    *float32 `yaml:"friction,omitempty"`
	Restitution *float32 `yaml:"restitution,omitempty"`
	UseGravity  *bool      `yaml:"use_gravity,omitempty"`
	Kinematic   bool       `yaml:"kinematic,omitempty"`
	Shape       string     `yaml:"shape"` // "sphere", "box", or "capsule"
	Radius      float32    `yaml:"radius"`
	Height      float32    `yaml:"height"`
	Width       float32    `yaml:"width"`
	Layer       uint32     `yaml:"layer,omitempty"`
	Mask        uint32     `yaml:"mask,omitempty"`
}

// Scene is a loadable simulation setup: world tuning plus a body roster.
type Scene struct {
	World  World  `yaml:"world"`
	Bodies []Body `yaml:"bodies"`
}

func DefaultScene() *Scene {
	return &Scene{
		World: World{
			Gravity:    [3]float32{0, -9.8, 0},
			MaxDelta:   DefaultMaxDelta,
			Iterations: DefaultIterations,
			GridDim:    DefaultGridDim,
			CellSize:   DefaultCellSize,
			Detector:   "grid",
			Stepping:   "variable",
			FixedStep:  DefaultFixedStep,
		},
	}
}

// Load reads a scene file, filling unset fields with defaults and validating
// the result.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	scene := DefaultScene()
	if err := yaml.Unmarshal(data, scene); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	scene.applyBodyDefaults()
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return scene, nil
}

func (s *Scene) applyBodyDefaults() {
	for i := range s.Bodies {
		b := &s.Bodies[i]
		if b.Mass == 0 && !b.Kinematic {
			b.Mass = DefaultMass
		}
		if b.Friction == nil {
			b.Friction = f32ptr(DefaultFriction)
		}
		if b.Restitution == nil {
			b.Restitution = f32ptr(DefaultRestitution)
		}
		if b.Shape == "" {
			b.Shape = "sphere"
		}
		if b.Radius == 0 {
			b.Radius = DefaultRadius
		}
		if b.Height == 0 {
			b.Height = 1
		}
		if b.Width == 0 {
			b.Width = 1
		}
		if b.Layer == 0 {
			b.Layer = 1
		}
		if b.Mask == 0 {
			b.Mask = components.MaskAll
		}
	}
}

func (s *Scene) Validate() error {
	switch s.World.Detector {
	case "grid", "brute-force":
	default:
		return fmt.Errorf("unknown detector %q", s.World.Detector)
	}
	switch s.World.Stepping {
	case "variable", "fixed":
	default:
		return fmt.Errorf("unknown stepping mode %q", s.World.Stepping)
	}
	for _, b := range s.Bodies {
		if !b.Kinematic && b.Mass <= 0 {
			return fmt.Errorf("body %q: mass must be > 0 for non-kinematic bodies", b.Name)
		}
		if b.Friction != nil && (*b.Friction < 0 || *b.Friction > 1) {
			return fmt.Errorf("body %q: friction must be in [0,1]", b.Name)
		}
		if b.Restitution != nil && (*b.Restitution < 0 || *b.Restitution > 1) {
			return fmt.Errorf("body %q: restitution must be in [0,1]", b.Name)
		}
		if _, err := components.ParseShape(b.Shape); err != nil {
			return fmt.Errorf("body %q: %w", b.Name, err)
		}
	}
	return nil
}

// WorldConfig converts the world section to a physics.Config.
func (s *Scene) WorldConfig() physics.Config {
	cfg := physics.Config{
		MaxDelta:         s.World.MaxDelta,
		SolverIterations: s.World.Iterations,
		GridDim:          s.World.GridDim,
		CellSize:         s.World.CellSize,
		FixedStep:        s.World.FixedStep,
	}
	if s.World.Detector == "brute-force" {
		cfg.DetectorMode = physics.DetectBruteForce
	}
	if s.World.Stepping == "fixed" {
		cfg.Stepping = physics.StepFixedAccumulator
	}
	return cfg
}

// Build instantiates the configured bodies into an engine scene.
func (s *Scene) Build() *engine.Scene {
	scene := engine.NewScene("configured")
	gravity := vec3(s.World.Gravity)

	for _, def := range s.Bodies {
		g := engine.NewGameObject(def.Name)
		g.Tags = def.Tags
		g.Transform.Position = vec3(def.Position)

		rb := components.NewRigidbody()
		shape, _ := components.ParseShape(def.Shape) // validated in Load
		rb.Shape = shape
		rb.Mass = def.Mass
		if rb.Mass <= 0 {
			rb.Mass = DefaultMass // kinematic bodies keep an inert default
		}
		rb.Friction = *def.Friction
		rb.Restitution = *def.Restitution
		rb.Gravity = gravity
		if def.UseGravity != nil {
			rb.UseGravity = *def.UseGravity
		}
		rb.IsKinematic = def.Kinematic
		rb.Velocity = vec3(def.Velocity)
		rb.CollisionRadius = def.Radius
		rb.CollisionHeight = def.Height
		rb.CollisionWidth = def.Width
		rb.Layer = def.Layer
		rb.Mask = def.Mask

		g.AddComponent(rb)
		rb.UpdateBounds()
		scene.AddGameObject(g)
	}
	return scene
}

func vec3(v [3]float32) rl.Vector3 {
	return rl.NewVector3(v[0], v[1], v[2])
}

func f32ptr(v float32) *float32 {
	return &v
}
