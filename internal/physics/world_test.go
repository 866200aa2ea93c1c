package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/schillD/skate-game-sub000/internal/components"
	"github.com/schillD/skate-game-sub000/internal/engine"
)

func near(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func addBody(t *testing.T, scene *engine.Scene, name string, shape components.Shape, pos rl.Vector3) *components.Rigidbody {
	t.Helper()
	g := engine.NewGameObject(name)
	g.Transform.Position = pos
	rb := components.NewRigidbody()
	rb.Shape = shape
	g.AddComponent(rb)
	rb.UpdateBounds()
	scene.AddGameObject(g)
	return rb
}

func TestStepClampsLargeDelta(t *testing.T) {
	scene := engine.NewScene("clamp")
	rb := addBody(t, scene, "Faller", components.ShapeSphere, rl.Vector3{Y: 50})

	world := NewPhysicsWorld(DefaultConfig())
	world.AttachScene(scene)

	// A 5 second frame hitch must be clamped to MaxDelta (0.1 s) before
	// integration.
	world.Step(5.0)

	if !near(rb.Velocity.Y, -0.98, 0.001) {
		t.Errorf("Expected velocity.y -0.98 after one clamped step, got %v", rb.Velocity.Y)
	}
	pos := rb.GetGameObject().Transform.Position
	if pos.Y < 49.8 {
		t.Errorf("Expected position integrated with clamped delta, got y=%v", pos.Y)
	}
}

func TestTenClampedStepsAccumulateGravity(t *testing.T) {
	scene := engine.NewScene("fall")
	rb := addBody(t, scene, "Faller", components.ShapeSphere, rl.Vector3{Y: 5})
	rb.Mass = 1

	world := NewPhysicsWorld(DefaultConfig())
	world.AttachScene(scene)

	for i := 0; i < 10; i++ {
		world.Step(0.1)
	}

	if !near(rb.Velocity.Y, -9.8, 0.05) {
		t.Errorf("Expected velocity.y about -9.8 after ten 0.1s steps, got %v", rb.Velocity.Y)
	}
}

func TestFixedAccumulatorStepping(t *testing.T) {
	scene := engine.NewScene("fixed")
	rb := addBody(t, scene, "Faller", components.ShapeSphere, rl.Vector3{Y: 50})

	cfg := DefaultConfig()
	cfg.Stepping = StepFixedAccumulator
	cfg.FixedStep = 0.02
	world := NewPhysicsWorld(cfg)
	world.AttachScene(scene)

	// 0.05s banks two 0.02s slices and keeps 0.01s.
	world.Step(0.05)
	if !near(rb.Velocity.Y, -9.8*0.04, 0.001) {
		t.Errorf("Expected two fixed slices, got velocity.y %v", rb.Velocity.Y)
	}

	// Another 0.01s tops the bank up to one more slice.
	world.Step(0.01)
	if !near(rb.Velocity.Y, -9.8*0.06, 0.001) {
		t.Errorf("Expected three fixed slices total, got velocity.y %v", rb.Velocity.Y)
	}
}

func TestFallingBoxGroundsOnStaticBox(t *testing.T) {
	scene := engine.NewScene("landing")

	faller := addBody(t, scene, "Crate", components.ShapeBox, rl.Vector3{Y: 1.45})
	faller.CollisionWidth = 1
	faller.CollisionHeight = 1
	faller.UpdateBounds()

	ground := addBody(t, scene, "Ledge", components.ShapeBox, rl.Vector3{})
	ground.IsKinematic = true
	ground.CollisionWidth = 2
	ground.CollisionHeight = 2
	ground.UpdateBounds()

	world := NewPhysicsWorld(DefaultConfig())
	world.AttachScene(scene)

	var contact Contact
	seen := false
	world.OnContact.AddListener(func(c Contact) {
		if !seen {
			contact = c
			seen = true
		}
	})

	world.Step(0.016)

	if !seen {
		t.Fatal("Expected a contact between the falling box and the ledge")
	}
	if contact.A != faller {
		t.Fatal("Expected the falling box to be the contact receiver")
	}
	if contact.Normal.Y != 1 || contact.Normal.X != 0 || contact.Normal.Z != 0 {
		t.Errorf("Expected +Y contact normal, got %v", contact.Normal)
	}
	if !faller.IsGrounded {
		t.Error("Falling box should be grounded after resolving a top-face contact")
	}
	if ground.GetGameObject().Transform.Position != (rl.Vector3{}) {
		t.Error("Kinematic ledge must not move")
	}
}

func TestFloorListedFirstStillGroundsFaller(t *testing.T) {
	// Same landing scenario, but the kinematic floor precedes the faller in
	// the scene. The dynamic body must still be the contact receiver, so the
	// normal and grounding cannot depend on roster order.
	scene := engine.NewScene("landing-order")

	ground := addBody(t, scene, "Ledge", components.ShapeBox, rl.Vector3{})
	ground.IsKinematic = true
	ground.CollisionWidth = 2
	ground.CollisionHeight = 2
	ground.UpdateBounds()

	faller := addBody(t, scene, "Crate", components.ShapeBox, rl.Vector3{Y: 1.45})
	faller.CollisionWidth = 1
	faller.CollisionHeight = 1
	faller.UpdateBounds()

	world := NewPhysicsWorld(DefaultConfig())
	world.AttachScene(scene)

	var contact Contact
	seen := false
	world.OnContact.AddListener(func(c Contact) {
		if !seen {
			contact = c
			seen = true
		}
	})

	world.Step(0.016)

	if !seen {
		t.Fatal("Expected a contact between the falling box and the ledge")
	}
	if contact.A != faller {
		t.Fatal("Expected the dynamic box to be the contact receiver")
	}
	if contact.Normal.Y != 1 || contact.Normal.X != 0 || contact.Normal.Z != 0 {
		t.Errorf("Expected +Y contact normal, got %v", contact.Normal)
	}
	if !faller.IsGrounded {
		t.Error("Falling box should be grounded regardless of scene order")
	}
}

func TestHeadOnSphereResolutionStopsApproach(t *testing.T) {
	for _, restitution := range []float32{0, 0.5, 1} {
		scene := engine.NewScene("headon")
		a := addBody(t, scene, "A", components.ShapeSphere, rl.Vector3{X: -0.4})
		a.Velocity = rl.Vector3{X: 2}
		a.Restitution = restitution
		a.UseGravity = false
		b := addBody(t, scene, "B", components.ShapeSphere, rl.Vector3{X: 0.4})
		b.Velocity = rl.Vector3{X: -2}
		b.Restitution = restitution
		b.UseGravity = false

		world := NewPhysicsWorld(DefaultConfig())
		world.AttachScene(scene)
		world.Step(0.001)

		// Recompute the separation axis after resolution: the pair must no
		// longer be approaching along it.
		normal := rl.Vector3Normalize(rl.Vector3Subtract(
			a.GetGameObject().Transform.Position,
			b.GetGameObject().Transform.Position,
		))
		relVel := rl.Vector3Subtract(a.Velocity, b.Velocity)
		if rl.Vector3DotProduct(relVel, normal) < -1e-4 {
			t.Errorf("restitution %v: still approaching after resolution, relVel=%v", restitution, relVel)
		}
	}
}

type recordingHandler struct {
	engine.BaseComponent
	entered []string
	exited  []string
}

func (h *recordingHandler) OnCollisionEnter(other *engine.GameObject) {
	h.entered = append(h.entered, other.Name)
}

func (h *recordingHandler) OnCollisionExit(other *engine.GameObject) {
	h.exited = append(h.exited, other.Name)
}

func TestCollisionEnterExitCallbacks(t *testing.T) {
	scene := engine.NewScene("callbacks")
	a := addBody(t, scene, "Skater", components.ShapeSphere, rl.Vector3{X: -0.3})
	a.UseGravity = false
	a.Restitution = 0
	handler := &recordingHandler{}
	a.GetGameObject().AddComponent(handler)

	b := addBody(t, scene, "Cone", components.ShapeSphere, rl.Vector3{X: 0.3})
	b.UseGravity = false
	b.Restitution = 0

	world := NewPhysicsWorld(DefaultConfig())
	world.AttachScene(scene)

	world.Step(0.016)
	if len(handler.entered) != 1 || handler.entered[0] != "Cone" {
		t.Fatalf("Expected one OnCollisionEnter from Cone, got %v", handler.entered)
	}

	// Move the bodies apart; the pair should exit on the next step.
	a.GetGameObject().Transform.Position = rl.Vector3{X: -5}
	b.GetGameObject().Transform.Position = rl.Vector3{X: 5}
	world.Step(0.016)

	if len(handler.exited) != 1 || handler.exited[0] != "Cone" {
		t.Errorf("Expected one OnCollisionExit from Cone, got %v", handler.exited)
	}
}

func TestBodyWithoutTransformIsSkipped(t *testing.T) {
	world := NewPhysicsWorld(DefaultConfig())
	world.AddBody(components.NewRigidbody()) // never attached to a game object

	world.Step(0.016) // must not panic

	if len(world.Bodies()) != 0 {
		t.Errorf("Expected unbound body to be skipped, roster has %d bodies", len(world.Bodies()))
	}
}

func TestInactiveObjectsLeaveRoster(t *testing.T) {
	scene := engine.NewScene("roster")
	rb := addBody(t, scene, "Crate", components.ShapeBox, rl.Vector3{})
	rb.UseGravity = false

	world := NewPhysicsWorld(DefaultConfig())
	world.AttachScene(scene)

	world.Step(0.016)
	if len(world.Bodies()) != 1 {
		t.Fatalf("Expected 1 body in roster, got %d", len(world.Bodies()))
	}

	rb.GetGameObject().Active = false
	world.Step(0.016)
	if len(world.Bodies()) != 0 {
		t.Errorf("Expected inactive object dropped on rescan, got %d bodies", len(world.Bodies()))
	}
}
