package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/schillD/skate-game-sub000/internal/components"
	"github.com/schillD/skate-game-sub000/internal/engine"
)

func makeBody(t *testing.T, name string, shape components.Shape, pos rl.Vector3, index uint32) *components.Rigidbody {
	t.Helper()
	g := engine.NewGameObject(name)
	g.Transform.Position = pos
	rb := components.NewRigidbody()
	rb.Shape = shape
	rb.Handle = engine.Handle{Index: index, Generation: 1}
	g.AddComponent(rb)
	rb.UpdateBounds()
	return rb
}

// contactSetKey summarizes a contact independent of detection order.
type contactSetKey struct {
	lo, hi uint32
}

func contactSet(t *testing.T, contacts []Contact) map[contactSetKey]float32 {
	t.Helper()
	set := make(map[contactSetKey]float32, len(contacts))
	for _, c := range contacts {
		lo, hi := c.A.Handle.Index, c.B.Handle.Index
		if lo > hi {
			lo, hi = hi, lo
		}
		key := contactSetKey{lo, hi}
		if _, dup := set[key]; dup {
			t.Errorf("Duplicate contact for pair (%d,%d)", lo, hi)
		}
		set[key] = c.Penetration
	}
	return set
}

func TestGridAndBruteForceAgree(t *testing.T) {
	positions := []rl.Vector3{
		{X: 0, Y: 0, Z: 0},
		{X: 0.6, Y: 0, Z: 0},   // overlaps body 0
		{X: 0.6, Y: 0.7, Z: 0}, // overlaps body 1
		{X: 5, Y: 0, Z: 0},     // isolated
		{X: -4, Y: 2, Z: 3},
		{X: -3.8, Y: 2.1, Z: 3}, // overlaps body 4
	}

	var bodies []*components.Rigidbody
	for i, pos := range positions {
		bodies = append(bodies, makeBody(t, "S", components.ShapeSphere, pos, uint32(i+1)))
	}
	bodies[4].IsKinematic = true

	grid := NewBroadPhaseGrid(DefaultGridDim, DefaultCellSize)
	grid.Rebuild(bodies)

	gridContacts := NewCollisionDetector(DetectGrid, grid).FindContacts(bodies)
	bruteContacts := NewCollisionDetector(DetectBruteForce, nil).FindContacts(bodies)

	gridSet := contactSet(t, gridContacts)
	bruteSet := contactSet(t, bruteContacts)

	if len(gridSet) != len(bruteSet) {
		t.Fatalf("Expected identical contact sets, grid has %d, brute force has %d", len(gridSet), len(bruteSet))
	}
	for key, pen := range gridSet {
		bp, ok := bruteSet[key]
		if !ok {
			t.Errorf("Pair (%d,%d) found by grid but not brute force", key.lo, key.hi)
			continue
		}
		if !near(pen, bp, 1e-5) {
			t.Errorf("Pair (%d,%d): penetration %v vs %v", key.lo, key.hi, pen, bp)
		}
	}
	// 0-1, 1-2, 0-2 (the cluster is mutually overlapping), and 4-5.
	if len(gridSet) != 4 {
		t.Errorf("Expected 4 contacts in this configuration, got %d", len(gridSet))
	}
}

func TestGridDedupsPairSharingMultipleCells(t *testing.T) {
	// A large body spans many cells; its partner co-resides in several of
	// them. The pair must still produce exactly one contact.
	big := makeBody(t, "Big", components.ShapeSphere, rl.Vector3{}, 1)
	big.CollisionRadius = 15
	big.UpdateBounds()
	small := makeBody(t, "Small", components.ShapeSphere, rl.Vector3{X: 12}, 2)
	small.CollisionRadius = 4
	small.UpdateBounds()

	grid := NewBroadPhaseGrid(DefaultGridDim, DefaultCellSize)
	grid.Rebuild([]*components.Rigidbody{big, small})

	contacts := NewCollisionDetector(DetectGrid, grid).FindContacts(nil)

	if len(contacts) != 1 {
		t.Errorf("Expected exactly 1 contact for a pair sharing multiple cells, got %d", len(contacts))
	}
}

func TestBruteForceSkipsStaticStaticPairs(t *testing.T) {
	a := makeBody(t, "WallA", components.ShapeBox, rl.Vector3{}, 1)
	a.IsKinematic = true
	b := makeBody(t, "WallB", components.ShapeBox, rl.Vector3{X: 0.2}, 2)
	b.IsKinematic = true

	contacts := NewCollisionDetector(DetectBruteForce, nil).FindContacts([]*components.Rigidbody{a, b})

	if len(contacts) != 0 {
		t.Errorf("Expected no static-static contacts, got %d", len(contacts))
	}
}

func TestGridSkipsStaticStaticPairs(t *testing.T) {
	a := makeBody(t, "WallA", components.ShapeBox, rl.Vector3{}, 1)
	a.IsKinematic = true
	b := makeBody(t, "WallB", components.ShapeBox, rl.Vector3{X: 0.2}, 2)
	b.IsKinematic = true

	grid := NewBroadPhaseGrid(DefaultGridDim, DefaultCellSize)
	grid.Rebuild([]*components.Rigidbody{a, b})
	contacts := NewCollisionDetector(DetectGrid, grid).FindContacts(nil)

	if len(contacts) != 0 {
		t.Errorf("Expected no static-static contacts, got %d", len(contacts))
	}
}

func TestVisitedPairsResetBetweenFrames(t *testing.T) {
	a := makeBody(t, "A", components.ShapeSphere, rl.Vector3{X: -0.3}, 1)
	b := makeBody(t, "B", components.ShapeSphere, rl.Vector3{X: 0.3}, 2)

	grid := NewBroadPhaseGrid(DefaultGridDim, DefaultCellSize)
	grid.Rebuild([]*components.Rigidbody{a, b})
	det := NewCollisionDetector(DetectGrid, grid)

	first := det.FindContacts(nil)
	second := det.FindContacts(nil)

	if len(first) != 1 || len(second) != 1 {
		t.Errorf("Expected the pair to be re-tested each pass, got %d then %d contacts", len(first), len(second))
	}
}
