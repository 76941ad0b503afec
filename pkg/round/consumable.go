package round

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/rumpusparty/rumpus/pkg/timer"
)

// Placement configures one consumable spot: what spawns there, where,
// and how long it takes to come back after being taken.
type Placement struct {
	Kind         string
	Point        Vector
	RespawnDelay time.Duration
}

// Consumable is a pickup currently tracked by the spawner.
type Consumable struct {
	ID    int32
	Kind  string
	Point Vector

	taken        bool
	pendingSpawn *timer.Timer
}

// ConsumableSpawner places interactive pickups at configured points and
// respawns them after a per-placement delay. Respawns fire from timer
// goroutines, so all item state is guarded.
type ConsumableSpawner struct {
	mu         deadlock.Mutex
	placements []Placement
	items      map[int32]*Consumable
	nextID     int32
}

func NewConsumableSpawner() *ConsumableSpawner {
	return &ConsumableSpawner{
		items: map[int32]*Consumable{},
	}
}

func (m *ConsumableSpawner) Configure(placements []Placement) {
	m.mu.Lock()
	m.placements = placements
	m.mu.Unlock()
}

// SpawnInitial creates one consumable per configured placement.
func (m *ConsumableSpawner) SpawnInitial() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, placement := range m.placements {
		id := m.nextID
		m.nextID++
		m.items[id] = &Consumable{
			ID:    id,
			Kind:  placement.Kind,
			Point: placement.Point,
		}
	}
}

// Available reports whether the consumable with the given ID can
// currently be taken.
func (m *ConsumableSpawner) Available(id int32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	return ok && !item.taken
}

// Take consumes a pickup and schedules its respawn. It reports the kind
// taken; an unknown or already-taken pickup is rejected.
func (m *ConsumableSpawner) Take(id int32) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		log.Warn().Msgf("tried to take unknown consumable %d", id)
		return "", false
	}
	if item.taken {
		return "", false
	}
	item.taken = true

	delay := m.delayFor(item.Kind)
	if delay > 0 {
		item.pendingSpawn = timer.AfterFunc(delay, func() {
			m.mu.Lock()
			item.taken = false
			m.mu.Unlock()
		})
		item.pendingSpawn.Start()
	}
	return item.Kind, true
}

// delayFor finds the respawn delay for a kind. Callers hold m.mu.
func (m *ConsumableSpawner) delayFor(kind string) time.Duration {
	for _, placement := range m.placements {
		if placement.Kind == kind {
			return placement.RespawnDelay
		}
	}
	return 0
}

func (m *ConsumableSpawner) AvailableCount() (n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if !item.taken {
			n++
		}
	}
	return
}

// Pause suspends pending respawns.
func (m *ConsumableSpawner) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.pendingSpawn != nil {
			item.pendingSpawn.Pause()
		}
	}
}

// Resume restarts pending respawns with their remaining delay.
func (m *ConsumableSpawner) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.pendingSpawn != nil {
			item.pendingSpawn.Start()
		}
	}
}

func (m *ConsumableSpawner) CleanUp() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, item := range m.items {
		if item.pendingSpawn != nil {
			item.pendingSpawn.Stop()
		}
		delete(m.items, id)
	}
}
