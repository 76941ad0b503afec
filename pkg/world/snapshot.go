package world

import (
	"time"

	"github.com/rumpusparty/rumpus/pkg/round"
)

type participantState struct {
	health   int
	lives    int
	alive    bool
	position round.Vector
}

// Snapshot is a point-in-time capture of the world, taken before a round
// starts and used as the rollback anchor if the round is abandoned.
type Snapshot struct {
	takenAt      time.Time
	participants map[int]participantState
	inventory    map[int]map[string]int
	nodes        map[string]bool
	scores       map[int]int
}

func (s *Snapshot) TakenAt() time.Time {
	return s.takenAt
}

func copyInventory(inventory map[int]map[string]int) map[int]map[string]int {
	out := make(map[int]map[string]int, len(inventory))
	for id, items := range inventory {
		copied := make(map[string]int, len(items))
		for item, n := range items {
			copied[item] = n
		}
		out[id] = copied
	}
	return out
}

func copyNodes(nodes map[string]bool) map[string]bool {
	out := make(map[string]bool, len(nodes))
	for node, open := range nodes {
		out[node] = open
	}
	return out
}

func copyScores(scores map[int]int) map[int]int {
	out := make(map[int]int, len(scores))
	for id, score := range scores {
		out[id] = score
	}
	return out
}
