package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/schillD/skate-game-sub000/internal/components"
)

// Contact is one resolved narrow-phase overlap. Normal points from B toward A.
type Contact struct {
	A           *components.Rigidbody
	B           *components.Rigidbody
	Normal      rl.Vector3
	Penetration float32
}

// DetectorMode selects how candidate pairs are found.
type DetectorMode int

const (
	// DetectGrid walks the broad-phase grid and tests co-resident pairs.
	DetectGrid DetectorMode = iota
	// DetectBruteForce tests dynamic-dynamic and dynamic-static pairs
	// directly; static-static pairs are never tested.
	DetectBruteForce
)

func (m DetectorMode) String() string {
	if m == DetectBruteForce {
		return "brute-force"
	}
	return "grid"
}

// pairKey identifies an unordered body pair by arena index, smaller first.
type pairKey struct {
	lo, hi uint32
}

func makePairKey(a, b *components.Rigidbody) pairKey {
	ia, ib := a.Handle.Index, b.Handle.Index
	if ia > ib {
		ia, ib = ib, ia
	}
	return pairKey{lo: ia, hi: ib}
}

// CollisionDetector produces the per-frame contact list. Both modes yield the
// same unordered contact set for the same body configuration; the grid just
// gets there without testing every pair.
type CollisionDetector struct {
	mode DetectorMode
	grid *BroadPhaseGrid

	// visited is reused across frames to avoid reallocating the pair set.
	visited map[pairKey]bool
}

func NewCollisionDetector(mode DetectorMode, grid *BroadPhaseGrid) *CollisionDetector {
	return &CollisionDetector{
		mode:    mode,
		grid:    grid,
		visited: make(map[pairKey]bool),
	}
}

func (d *CollisionDetector) Mode() DetectorMode {
	return d.mode
}

// FindContacts runs the narrow phase over candidate pairs and returns the
// deduplicated contact list for this pass.
func (d *CollisionDetector) FindContacts(bodies []*components.Rigidbody) []Contact {
	if d.mode == DetectBruteForce {
		return d.bruteForceContacts(bodies)
	}
	return d.gridContacts()
}

func (d *CollisionDetector) gridContacts() []Contact {
	clear(d.visited)

	var contacts []Contact
	for _, cell := range d.grid.Cells() {
		if len(cell) < 2 {
			continue
		}
		for i := 0; i < len(cell); i++ {
			for j := i + 1; j < len(cell); j++ {
				a, b := cell[i], cell[j]
				if a.IsKinematic && b.IsKinematic {
					continue
				}
				// The narrow-phase receiver decides grounding and normal
				// direction, so the dynamic body must receive regardless of
				// cell insertion order, matching brute-force mode.
				if a.IsKinematic {
					a, b = b, a
				}
				// A pair sharing several cells must only be tested once.
				key := makePairKey(a, b)
				if d.visited[key] {
					continue
				}
				d.visited[key] = true
				if col, ok := a.TestCollision(b); ok {
					contacts = append(contacts, Contact{A: a, B: b, Normal: col.Normal, Penetration: col.Penetration})
				}
			}
		}
	}
	return contacts
}

func (d *CollisionDetector) bruteForceContacts(bodies []*components.Rigidbody) []Contact {
	var dynamic, static []*components.Rigidbody
	for _, rb := range bodies {
		if rb.IsKinematic {
			static = append(static, rb)
		} else {
			dynamic = append(dynamic, rb)
		}
	}

	var contacts []Contact
	for i := 0; i < len(dynamic); i++ {
		for j := i + 1; j < len(dynamic); j++ {
			if col, ok := dynamic[i].TestCollision(dynamic[j]); ok {
				contacts = append(contacts, Contact{A: dynamic[i], B: dynamic[j], Normal: col.Normal, Penetration: col.Penetration})
			}
		}
	}
	for _, dyn := range dynamic {
		for _, st := range static {
			if col, ok := dyn.TestCollision(st); ok {
				contacts = append(contacts, Contact{A: dyn, B: st, Normal: col.Normal, Penetration: col.Penetration})
			}
		}
	}
	return contacts
}
