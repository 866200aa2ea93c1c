package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/schillD/skate-game-sub000/internal/components"
)

type RaycastHit struct {
	Body     *components.Rigidbody
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// Raycast tests the ray against every body's cached bounds and returns the
// closest hit. Box bodies use their bounding box; everything else uses the
// bounding sphere.
func (p *PhysicsWorld) Raycast(origin, direction rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	direction = rl.Vector3Normalize(direction)
	closest := RaycastHit{Distance: maxDistance}
	hit := false

	for _, rb := range p.bodies {
		var info RaycastHit
		var ok bool
		if rb.Shape == components.ShapeBox {
			info, ok = raycastAABB(origin, direction, rb.BoundingBox, maxDistance)
		} else {
			info, ok = raycastSphere(origin, direction, rb.BoundingSphere, maxDistance)
		}
		if ok && info.Distance < closest.Distance {
			closest = info
			closest.Body = rb
			hit = true
		}
	}

	return closest, hit
}

func raycastAABB(origin, direction rl.Vector3, box components.AABB, maxDistance float32) (RaycastHit, bool) {
	min := box.Min
	max := box.Max

	var tmin, tmax float32

	// X slab
	if direction.X != 0 {
		t1 := (min.X - origin.X) / direction.X
		t2 := (max.X - origin.X) / direction.X
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = t1
		tmax = t2
	} else if origin.X < min.X || origin.X > max.X {
		return RaycastHit{}, false
	} else {
		tmin = -1e30
		tmax = 1e30
	}

	// Y slab
	if direction.Y != 0 {
		t1 := (min.Y - origin.Y) / direction.Y
		t2 := (max.Y - origin.Y) / direction.Y
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if origin.Y < min.Y || origin.Y > max.Y {
		return RaycastHit{}, false
	}

	if tmin > tmax {
		return RaycastHit{}, false
	}

	// Z slab
	if direction.Z != 0 {
		t1 := (min.Z - origin.Z) / direction.Z
		t2 := (max.Z - origin.Z) / direction.Z
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if origin.Z < min.Z || origin.Z > max.Z {
		return RaycastHit{}, false
	}

	if tmin > tmax || tmax < 0 || tmin > maxDistance {
		return RaycastHit{}, false
	}

	t := tmin
	if t < 0 {
		t = tmax
	}
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))

	// Face normal from whichever slab the hit point lies on.
	var normal rl.Vector3
	const epsilon = 0.001
	switch {
	case math32.Abs(point.X-min.X) < epsilon:
		normal = rl.Vector3{X: -1}
	case math32.Abs(point.X-max.X) < epsilon:
		normal = rl.Vector3{X: 1}
	case math32.Abs(point.Y-min.Y) < epsilon:
		normal = rl.Vector3{Y: -1}
	case math32.Abs(point.Y-max.Y) < epsilon:
		normal = rl.Vector3{Y: 1}
	case math32.Abs(point.Z-min.Z) < epsilon:
		normal = rl.Vector3{Z: -1}
	default:
		normal = rl.Vector3{Z: 1}
	}

	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}

func raycastSphere(origin, direction rl.Vector3, sphere components.BoundingSphere, maxDistance float32) (RaycastHit, bool) {
	oc := rl.Vector3Subtract(origin, sphere.Center)
	a := rl.Vector3DotProduct(direction, direction)
	b := 2.0 * rl.Vector3DotProduct(oc, direction)
	c := rl.Vector3DotProduct(oc, oc) - sphere.Radius*sphere.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return RaycastHit{}, false
	}

	t := (-b - math32.Sqrt(discriminant)) / (2 * a)
	if t < 0 {
		t = (-b + math32.Sqrt(discriminant)) / (2 * a)
	}
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, sphere.Center))

	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}
