package round

// RespawnGate holds per-participant respawn eligibility, independent of
// the spawner. Respawning is allowed unless a mode explicitly blocks it.
type RespawnGate struct {
	blocked map[int]struct{}
}

func NewRespawnGate() *RespawnGate {
	return &RespawnGate{
		blocked: map[int]struct{}{},
	}
}

func (g *RespawnGate) Deny(id int) {
	g.blocked[id] = struct{}{}
}

func (g *RespawnGate) Allow(id int) {
	delete(g.blocked, id)
}

func (g *RespawnGate) CanRespawn(id int) bool {
	_, blocked := g.blocked[id]
	return !blocked
}

func (g *RespawnGate) CleanUp() {
	g.blocked = map[int]struct{}{}
}
