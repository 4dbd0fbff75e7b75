package goshape

// recursionGuard tracks the input identities currently on the active descent
// path. It is created per call and never shared. Push/pop follow strict
// stack discipline: every push is popped on all exit paths.
type recursionGuard struct {
	active map[uintptr]struct{}
}

// enter records id as in-progress. It reports false when id is already on
// the active path, which means the input structure is cyclic.
func (g *recursionGuard) enter(id uintptr) bool {
	if id == 0 {
		return true
	}
	if g.active == nil {
		g.active = make(map[uintptr]struct{}, 8)
	}
	if _, ok := g.active[id]; ok {
		return false
	}
	g.active[id] = struct{}{}
	return true
}

// exit removes id from the active path.
func (g *recursionGuard) exit(id uintptr) {
	if id == 0 || g.active == nil {
		return
	}
	delete(g.active, id)
}
