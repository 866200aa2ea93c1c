package physics

import (
	"github.com/schillD/skate-game-sub000/internal/components"
)

// Broad-phase grid defaults: a 20x20x20 lattice of 10-unit cells centered on
// the world origin. worldOffset shifts negative world coordinates into the
// non-negative index range.
const (
	DefaultGridDim  = 20
	DefaultCellSize = 10.0
	worldOffset     = 100.0
)

// BroadPhaseGrid is a uniform spatial hash over fixed world cells, rebuilt
// from scratch every frame. Bodies land in every cell their expanded bound
// (position ± collisionRadius) overlaps, so a pair of nearby bodies always
// shares at least one cell.
type BroadPhaseGrid struct {
	cellSize float32
	dim      int
	cells    [][]*components.Rigidbody
}

func NewBroadPhaseGrid(dim int, cellSize float32) *BroadPhaseGrid {
	if dim <= 0 {
		dim = DefaultGridDim
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &BroadPhaseGrid{
		cellSize: cellSize,
		dim:      dim,
		cells:    make([][]*components.Rigidbody, dim*dim*dim),
	}
}

func (g *BroadPhaseGrid) cellIndex(x, y, z int) int {
	return (x*g.dim+y)*g.dim + z
}

// clampIndex maps a world coordinate to a valid cell index on one axis.
func (g *BroadPhaseGrid) clampIndex(coord float32) int {
	idx := int((coord + worldOffset) / g.cellSize)
	if idx < 0 {
		return 0
	}
	if idx >= g.dim {
		return g.dim - 1
	}
	return idx
}

// Rebuild clears every cell and reinserts all bodies. Cell backing arrays are
// kept so steady-state rebuilds do not allocate.
func (g *BroadPhaseGrid) Rebuild(bodies []*components.Rigidbody) {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	for _, rb := range bodies {
		g.Insert(rb)
	}
}

// Insert adds a body to every cell overlapped by position ± collisionRadius.
func (g *BroadPhaseGrid) Insert(rb *components.Rigidbody) {
	pos := rb.BoundingSphere.Center
	r := rb.CollisionRadius

	minX := g.clampIndex(pos.X - r)
	maxX := g.clampIndex(pos.X + r)
	minY := g.clampIndex(pos.Y - r)
	maxY := g.clampIndex(pos.Y + r)
	minZ := g.clampIndex(pos.Z - r)
	maxZ := g.clampIndex(pos.Z + r)

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				idx := g.cellIndex(x, y, z)
				g.cells[idx] = append(g.cells[idx], rb)
			}
		}
	}
}

// Cells returns the raw cell slices for iteration by the detector.
func (g *BroadPhaseGrid) Cells() [][]*components.Rigidbody {
	return g.cells
}
