// Stress test comparing grid vs brute-force broad-phase collision detection
package main

import (
	"fmt"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/schillD/skate-game-sub000/internal/components"
	"github.com/schillD/skate-game-sub000/internal/engine"
	"github.com/schillD/skate-game-sub000/internal/physics"
)

const iterations = 10

func main() {
	testCounts := []int{100, 250, 500, 1000, 2000, 4000}

	for _, count := range testCounts {
		testDetectors(count)
	}
}

func testDetectors(count int) {
	rng := rand.New(rand.NewSource(42))

	// Spawn in a cube, size scales with count to keep density reasonable.
	spawnSize := float32(50.0) + float32(count)/100.0

	bodies := make([]*components.Rigidbody, count)
	for i := range bodies {
		obj := engine.NewGameObject(fmt.Sprintf("body-%d", i))
		obj.Transform.Position = rl.NewVector3(
			rng.Float32()*spawnSize-spawnSize/2,
			rng.Float32()*spawnSize-spawnSize/2,
			rng.Float32()*spawnSize-spawnSize/2,
		)

		rb := components.NewRigidbody()
		rb.CollisionRadius = 0.5 + rng.Float32()*0.5
		rb.Handle = engine.Handle{Index: uint32(i + 1), Generation: 1}
		obj.AddComponent(rb)
		rb.UpdateBounds()
		bodies[i] = rb
	}

	grid := physics.NewBroadPhaseGrid(physics.DefaultGridDim, physics.DefaultCellSize)
	gridDetector := physics.NewCollisionDetector(physics.DetectGrid, grid)
	bruteDetector := physics.NewCollisionDetector(physics.DetectBruteForce, nil)

	// Warm up
	grid.Rebuild(bodies)
	gridDetector.FindContacts(bodies)

	gridStart := time.Now()
	var gridContacts []physics.Contact
	for i := 0; i < iterations; i++ {
		grid.Rebuild(bodies)
		gridContacts = gridDetector.FindContacts(bodies)
	}
	gridTime := time.Since(gridStart) / iterations

	bruteStart := time.Now()
	var bruteContacts []physics.Contact
	for i := 0; i < iterations; i++ {
		bruteContacts = bruteDetector.FindContacts(bodies)
	}
	bruteTime := time.Since(bruteStart) / iterations

	speedup := float64(bruteTime) / float64(gridTime)

	match := "OK"
	if len(gridContacts) != len(bruteContacts) {
		match = "MISMATCH"
	}

	fmt.Printf("%5d bodies: grid %8v (%4d contacts) | brute %10v (%4d contacts) | %.1fx speedup [%s]\n",
		count, gridTime.Round(time.Microsecond), len(gridContacts),
		bruteTime.Round(time.Microsecond), len(bruteContacts), speedup, match)
}
