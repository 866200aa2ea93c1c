package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// CollisionResolver applies positional correction and impulse response for
// each contact in both directions: A reacts to B, then B reacts to A with the
// normal flipped. This is an explicit both-ways approximation of Newton's
// third law rather than a shared constraint, so a pair may be corrected twice
// in one pass; the world's iteration loop relies on later passes seeing the
// updated velocities and skipping separated pairs.
type CollisionResolver struct{}

func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{}
}

func (r *CollisionResolver) Resolve(contacts []Contact) {
	for _, c := range contacts {
		c.A.HandleCollision(c.B, c.Normal, c.Penetration)
		c.B.HandleCollision(c.A, rl.Vector3Scale(c.Normal, -1), c.Penetration)
	}
}
