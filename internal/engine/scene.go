package engine

type Scene struct {
	Name        string
	GameObjects []*GameObject
	arena       *HandleArena
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:        name,
		GameObjects: make([]*GameObject, 0),
		arena:       NewHandleArena(),
	}
}

// AddGameObject adds g to the scene and issues its handle from the scene's
// arena. Children added through AddChild get handles lazily via Walk callers
// that need identity, so nested objects should also be registered here.
func (s *Scene) AddGameObject(g *GameObject) {
	if g.ID.IsZero() {
		g.ID = s.arena.Alloc()
	}
	g.Scene = s
	s.GameObjects = append(s.GameObjects, g)
}

// RemoveGameObject detaches g and retires its handle. Anything still holding
// the old handle will fail the Alive check from here on.
func (s *Scene) RemoveGameObject(g *GameObject) {
	for i, obj := range s.GameObjects {
		if obj == g {
			s.GameObjects = append(s.GameObjects[:i], s.GameObjects[i+1:]...)
			s.arena.Release(g.ID)
			g.Scene = nil
			return
		}
	}
}

// Alive reports whether a previously issued handle still refers to an object
// in this scene.
func (s *Scene) Alive(h Handle) bool {
	return s.arena.Alive(h)
}

func (s *Scene) FindByName(name string) *GameObject {
	for _, g := range s.GameObjects {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func (s *Scene) FindByTag(tag string) []*GameObject {
	var result []*GameObject
	for _, g := range s.GameObjects {
		if g.HasTag(tag) {
			result = append(result, g)
		}
	}
	return result
}

// Walk visits every object in the scene, children included, in insertion
// order. Used by the physics world to rescan the roster each frame.
func (s *Scene) Walk(visit func(*GameObject)) {
	var rec func(g *GameObject)
	rec = func(g *GameObject) {
		visit(g)
		for _, child := range g.Children {
			rec(child)
		}
	}
	for _, g := range s.GameObjects {
		rec(g)
	}
}

func (s *Scene) Start() {
	for _, g := range s.GameObjects {
		g.Start()
	}
}

func (s *Scene) Update(deltaTime float32) {
	for _, g := range s.GameObjects {
		g.Update(deltaTime)
	}
}
