package engine

// Handle identifies a game object by arena slot and generation.
// A handle is only valid while its generation matches the arena's; slots are
// recycled on release with the generation bumped, so stale handles fail the
// Alive check instead of silently aliasing a new object.
type Handle struct {
	Index      uint32
	Generation uint32
}

// IsZero reports whether the handle was never issued by an arena.
func (h Handle) IsZero() bool {
	return h.Index == 0 && h.Generation == 0
}

// HandleArena issues generation-checked handles. The arena is owned by
// whoever owns the objects (the Scene, or a PhysicsWorld running without a
// scene); there is no process-wide counter.
type HandleArena struct {
	generations []uint32
	free        []uint32
}

func NewHandleArena() *HandleArena {
	// Slot 0 is reserved so the zero Handle is never a live handle.
	return &HandleArena{generations: []uint32{0}}
}

// Alloc issues a fresh handle, reusing a released slot if one is available.
func (a *HandleArena) Alloc() Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		return Handle{Index: idx, Generation: a.generations[idx]}
	}
	idx := uint32(len(a.generations))
	a.generations = append(a.generations, 1)
	return Handle{Index: idx, Generation: 1}
}

// Release retires a handle. The slot's generation is bumped so any copies of
// the handle still held elsewhere stop validating.
func (a *HandleArena) Release(h Handle) {
	if !a.Alive(h) {
		return
	}
	a.generations[h.Index]++
	a.free = append(a.free, h.Index)
}

// Alive reports whether the handle still refers to a live slot.
func (a *HandleArena) Alive(h Handle) bool {
	if h.Index == 0 || h.Index >= uint32(len(a.generations)) {
		return false
	}
	return a.generations[h.Index] == h.Generation
}
