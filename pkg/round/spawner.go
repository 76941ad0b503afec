package round

import (
	"github.com/rs/zerolog/log"
)

// Actor is a participant placed in the arena by the spawner.
type Actor struct {
	Participant *Participant
	Point       Vector
	Eliminated  bool
}

// Spawner places one actor per participant at the configured spawn
// points and tracks who is still standing.
type Spawner struct {
	participants []*Participant
	points       []Vector
	actors       map[int]*Actor
}

func NewSpawner(participants []*Participant) *Spawner {
	return &Spawner{
		participants: participants,
		actors:       map[int]*Actor{},
	}
}

func (s *Spawner) SetPoints(points []Vector) {
	s.points = points
}

// SpawnAll places every participant. When spawn points run short the
// remainder land at the default position with a warning rather than
// failing the round.
func (s *Spawner) SpawnAll() {
	if len(s.points) < len(s.participants) {
		log.Warn().Msgf(
			"%d spawn points for %d participants, using default position for the rest",
			len(s.points), len(s.participants),
		)
	}
	for i, p := range s.participants {
		point := Vector{}
		if i < len(s.points) {
			point = s.points[i]
		}
		p.Position = point
		s.actors[p.ID] = &Actor{
			Participant: p,
			Point:       point,
		}
	}
}

func (s *Spawner) Actor(id int) *Actor {
	return s.actors[id]
}

// Eliminate marks a participant's actor as out of the round.
func (s *Spawner) Eliminate(id int) {
	actor, ok := s.actors[id]
	if !ok {
		log.Warn().Msgf("cannot eliminate unspawned participant %d", id)
		return
	}
	actor.Eliminated = true
}

// Respawn puts an eliminated actor back at its designated point. It is
// idempotent: respawning a standing actor changes nothing.
func (s *Spawner) Respawn(id int) bool {
	actor, ok := s.actors[id]
	if !ok {
		log.Warn().Msgf("cannot respawn unspawned participant %d", id)
		return false
	}
	if !actor.Eliminated {
		return true
	}
	actor.Eliminated = false
	actor.Participant.Position = actor.Point
	return true
}

func (s *Spawner) AliveCount() (n int) {
	for _, actor := range s.actors {
		if !actor.Eliminated {
			n++
		}
	}
	return
}

func (s *Spawner) EliminatedCount() (n int) {
	for _, actor := range s.actors {
		if actor.Eliminated {
			n++
		}
	}
	return
}

func (s *Spawner) CleanUp() {
	s.actors = map[int]*Actor{}
}
