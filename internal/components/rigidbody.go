package components

import (
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/schillD/skate-game-sub000/internal/engine"
)

// Shape selects the narrow-phase test for a rigidbody.
type Shape int

const (
	ShapeSphere Shape = iota
	ShapeBox
	// ShapeCapsule has no dedicated narrow phase; pairs involving it fall
	// through to the averaged-radius sphere approximation.
	ShapeCapsule
)

func (s Shape) String() string {
	switch s {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapeCapsule:
		return "capsule"
	}
	return "unknown"
}

// ParseShape maps a config string to a Shape.
func ParseShape(s string) (Shape, error) {
	switch s {
	case "sphere":
		return ShapeSphere, nil
	case "box":
		return ShapeBox, nil
	case "capsule":
		return ShapeCapsule, nil
	}
	return ShapeSphere, fmt.Errorf("unknown shape %q", s)
}

// MaskAll collides with every layer.
const MaskAll uint32 = 0xFFFFFFFF

// Damping reference rates. Exponents are normalized to a 60 Hz frame so the
// damping per wall-clock second is the same at any frame rate.
const (
	airDamping       = 0.98
	angularDamping   = 0.95
	sleepThresholdSq = 1e-4
)

// Collision is the result of a narrow-phase test: the contact normal points
// from the other body toward the receiver.
type Collision struct {
	Normal      rl.Vector3
	Penetration float32
}

// Rigidbody gives a game object mass, velocity, and a collision shape.
// Kinematic bodies ignore forces and are never moved by collision response;
// they act as immovable collision donors (ramps, rails, moving platforms).
type Rigidbody struct {
	engine.BaseComponent

	Velocity        rl.Vector3
	AngularVelocity rl.Vector3 // degrees per second on each axis
	Mass            float32    // must be > 0 for non-kinematic bodies
	Restitution     float32    // 0 = no bounce, 1 = perfect bounce
	Friction        float32    // horizontal velocity kept per 60 Hz frame while grounded
	Gravity         rl.Vector3
	UseGravity      bool
	IsKinematic     bool
	IsGrounded      bool // cleared each integration step, reset by contacts

	Shape           Shape
	CollisionRadius float32
	CollisionHeight float32
	CollisionWidth  float32

	// Two bodies collide only if each one's layer bit is present in the
	// other's mask.
	Layer uint32
	Mask  uint32

	// Handle is the identity the physics world issues for pair dedup.
	Handle engine.Handle

	PreviousPosition rl.Vector3 // last frame's position, informational only

	BoundingSphere BoundingSphere
	BoundingBox    AABB

	accumulatedForce rl.Vector3
}

func NewRigidbody() *Rigidbody {
	return &Rigidbody{
		Mass:            1.0,
		Restitution:     0.5,
		Friction:        0.95,
		Gravity:         rl.Vector3{X: 0, Y: -9.8, Z: 0},
		UseGravity:      true,
		Shape:           ShapeSphere,
		CollisionRadius: 0.5,
		CollisionHeight: 1.0,
		CollisionWidth:  1.0,
		Layer:           1,
		Mask:            MaskAll,
	}
}

// transform returns the bound transform, or nil when the rigidbody is not
// attached to a game object yet.
func (r *Rigidbody) transform() *engine.Transform {
	g := r.GetGameObject()
	if g == nil {
		return nil
	}
	return &g.Transform
}

func (r *Rigidbody) position() rl.Vector3 {
	if t := r.transform(); t != nil {
		return t.Position
	}
	return rl.Vector3{}
}

// ApplyForce adds a force to the body. Impulse forces change velocity
// immediately; continuous forces accumulate until the next Integrate call.
func (r *Rigidbody) ApplyForce(force rl.Vector3, isImpulse bool) {
	if r.IsKinematic {
		return
	}
	if isImpulse {
		r.Velocity = rl.Vector3Add(r.Velocity, rl.Vector3Scale(force, 1/r.Mass))
		return
	}
	r.accumulatedForce = rl.Vector3Add(r.accumulatedForce, force)
}

// ApplyGravityStep applies one frame's worth of gravity. Grounded bodies are
// supported by their contact and receive none.
func (r *Rigidbody) ApplyGravityStep(dt float32) {
	if r.IsKinematic || !r.UseGravity || r.IsGrounded {
		return
	}
	r.ApplyForce(rl.Vector3Scale(r.Gravity, r.Mass*dt), true)
}

// Integrate advances velocity, position, and orientation by dt and refreshes
// the cached bounds. Kinematic bodies are skipped entirely.
func (r *Rigidbody) Integrate(dt float32) {
	if r.IsKinematic {
		return
	}
	t := r.transform()
	if t == nil {
		return
	}

	accel := rl.Vector3Scale(r.accumulatedForce, 1/r.Mass)
	r.Velocity = rl.Vector3Add(r.Velocity, rl.Vector3Scale(accel, dt))

	// Friction reads last frame's contact state, so the grounded flag is
	// cleared only after damping; the box-box narrow phase re-establishes it
	// later in the frame.
	r.applyFrictionStep(dt)
	r.IsGrounded = false

	r.PreviousPosition = t.Position
	t.Position = rl.Vector3Add(t.Position, rl.Vector3Scale(r.Velocity, dt))

	if r.AngularVelocity.X != 0 || r.AngularVelocity.Y != 0 || r.AngularVelocity.Z != 0 {
		speed := rl.Vector3Length(r.AngularVelocity)
		axis := rl.Vector3Scale(r.AngularVelocity, 1/speed)
		spin := rl.QuaternionFromAxisAngle(axis, speed*dt*rl.Deg2rad)
		t.SetQuaternion(rl.QuaternionMultiply(spin, t.GetQuaternion()))
	}

	r.accumulatedForce = rl.Vector3{}
	r.UpdateBounds()
}

// applyFrictionStep damps horizontal and angular velocity. The exponent
// normalizes the per-frame factor to a 60 Hz reference frame rate.
func (r *Rigidbody) applyFrictionStep(dt float32) {
	frames := dt * 60
	damp := math32.Pow(airDamping, frames)
	if r.IsGrounded {
		damp = math32.Pow(r.Friction, frames)
	}
	r.Velocity.X *= damp
	r.Velocity.Z *= damp

	r.AngularVelocity = rl.Vector3Scale(r.AngularVelocity, math32.Pow(angularDamping, frames))

	// Snap tiny residual velocities to zero to stop perpetual jitter.
	if rl.Vector3LengthSqr(r.Velocity) < sleepThresholdSq {
		r.Velocity = rl.Vector3{}
	}
	if rl.Vector3LengthSqr(r.AngularVelocity) < sleepThresholdSq {
		r.AngularVelocity = rl.Vector3{}
	}
}

// UpdateBounds recomputes the cached bounding sphere and box from the current
// position. Bounds are only as fresh as the last Integrate call; they are not
// refreshed between solver iterations within a frame.
func (r *Rigidbody) UpdateBounds() {
	p := r.position()
	r.BoundingSphere = BoundingSphere{Center: p, Radius: r.CollisionRadius}
	half := rl.Vector3{X: r.CollisionWidth / 2, Y: r.CollisionHeight / 2, Z: r.CollisionWidth / 2}
	r.BoundingBox = AABB{Min: rl.Vector3Subtract(p, half), Max: rl.Vector3Add(p, half)}
}

// TestCollision runs the narrow phase against another body. The returned
// normal points from other toward the receiver.
func (r *Rigidbody) TestCollision(other *Rigidbody) (Collision, bool) {
	if r.Layer&other.Mask == 0 || other.Layer&r.Mask == 0 {
		return Collision{}, false
	}

	switch {
	case r.Shape == ShapeSphere && other.Shape == ShapeSphere:
		return r.sphereVsSphere(other)
	case r.Shape == ShapeBox && other.Shape == ShapeBox:
		return r.boxVsBox(other)
	default:
		// Mixed pairs and capsules: averaged-radius sphere approximation,
		// crude for elongated boxes.
		return r.fallbackSphere(other)
	}
}

func (r *Rigidbody) sphereVsSphere(other *Rigidbody) (Collision, bool) {
	diff := rl.Vector3Subtract(r.position(), other.position())
	dist := rl.Vector3Length(diff)
	minDist := r.BoundingSphere.Radius + other.BoundingSphere.Radius
	if dist >= minDist {
		return Collision{}, false
	}
	// Coincident centers divide by zero and propagate NaN.
	return Collision{
		Normal:      rl.Vector3Scale(diff, 1/dist),
		Penetration: minDist - dist,
	}, true
}

func (r *Rigidbody) boxVsBox(other *Rigidbody) (Collision, bool) {
	a := r.BoundingBox
	b := other.BoundingBox
	if !a.Intersects(b) {
		return Collision{}, false
	}

	sizeA := a.Size()
	sizeB := b.Size()
	delta := rl.Vector3Subtract(a.Center(), b.Center())

	overlapX := (sizeA.X+sizeB.X)/2 - math32.Abs(delta.X)
	overlapY := (sizeA.Y+sizeB.Y)/2 - math32.Abs(delta.Y)
	overlapZ := (sizeA.Z+sizeB.Z)/2 - math32.Abs(delta.Z)

	var col Collision
	if overlapX < overlapY && overlapX < overlapZ {
		col = Collision{Normal: rl.Vector3{X: sign(delta.X)}, Penetration: overlapX}
	} else if overlapY < overlapZ {
		col = Collision{Normal: rl.Vector3{Y: sign(delta.Y)}, Penetration: overlapY}
		if col.Normal.Y > 0.5 {
			r.IsGrounded = true
		}
	} else {
		col = Collision{Normal: rl.Vector3{Z: sign(delta.Z)}, Penetration: overlapZ}
	}
	return col, true
}

func (r *Rigidbody) fallbackSphere(other *Rigidbody) (Collision, bool) {
	diff := rl.Vector3Subtract(r.position(), other.position())
	dist := rl.Vector3Length(diff)
	avgRadius := (r.CollisionRadius + other.CollisionRadius) / 2
	if dist >= avgRadius {
		return Collision{}, false
	}
	return Collision{
		Normal:      rl.Vector3Scale(diff, 1/dist),
		Penetration: avgRadius - dist,
	}, true
}

// HandleCollision applies positional correction and impulse response for a
// contact with the given normal (pointing toward the receiver). Kinematic
// receivers are never moved.
func (r *Rigidbody) HandleCollision(other *Rigidbody, normal rl.Vector3, penetration float32) {
	if r.IsKinematic {
		return
	}
	t := r.transform()
	if t == nil {
		return
	}

	// Split the separation: the receiver always moves, the other body only
	// if it is not kinematic.
	push := rl.Vector3Scale(normal, penetration*0.5)
	t.Position = rl.Vector3Add(t.Position, push)
	if !other.IsKinematic {
		if ot := other.transform(); ot != nil {
			ot.Position = rl.Vector3Subtract(ot.Position, push)
		}
	}

	relVel := rl.Vector3Subtract(r.Velocity, other.Velocity)
	normalVel := rl.Vector3DotProduct(relVel, normal)
	if normalVel >= 0 {
		// Already separating.
		return
	}
	if r.IsGrounded {
		// Supported by a contact underneath; no bounce.
		return
	}

	restitution := r.Restitution
	if other.Restitution < restitution {
		restitution = other.Restitution
	}

	j := -(1 + restitution) * normalVel
	r.Velocity = rl.Vector3Add(r.Velocity, rl.Vector3Scale(normal, j/r.Mass))
	if !other.IsKinematic {
		other.Velocity = rl.Vector3Subtract(other.Velocity, rl.Vector3Scale(normal, j/other.Mass))
	}
}

func sign(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}
