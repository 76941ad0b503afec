package round

import (
	"github.com/rs/zerolog/log"
)

// VictoryKind selects how the evaluator decides a round is over.
type VictoryKind uint8

const (
	// VictoryElimination resolves when at most one participant remains.
	VictoryElimination VictoryKind = iota
	// VictoryScore resolves when a participant reaches the target score.
	VictoryScore
)

// WinCondition watches the participant set for a configured victory type
// and fires its resolve callback exactly once.
type WinCondition struct {
	participants []*Participant

	kind       VictoryKind
	target     int
	eliminated map[int]struct{}
	scores     map[int]int

	fired   bool
	resolve func(winners []int, draw bool)
}

func NewWinCondition(participants []*Participant) *WinCondition {
	return &WinCondition{
		participants: participants,
		eliminated:   map[int]struct{}{},
		scores:       map[int]int{},
	}
}

// Track configures the victory type and the callback to fire when it is
// satisfied. The target only matters for score-based victories.
func (w *WinCondition) Track(kind VictoryKind, target int, resolve func(winners []int, draw bool)) {
	w.kind = kind
	w.target = target
	w.resolve = resolve
}

// ReportElimination records a participant leaving the round and checks
// the condition.
func (w *WinCondition) ReportElimination(id int) {
	w.eliminated[id] = struct{}{}
	w.Check()
}

// AddScore credits a participant and checks the condition.
func (w *WinCondition) AddScore(id, n int) {
	w.scores[id] += n
	w.Check()
}

func (w *WinCondition) Score(id int) int {
	return w.scores[id]
}

// Check evaluates the condition and fires the resolve callback if it is
// satisfied. Later calls after a resolution do nothing.
func (w *WinCondition) Check() {
	if w.fired {
		return
	}

	var winners []int
	var done bool

	switch w.kind {
	case VictoryElimination:
		remaining := []int{}
		for _, p := range w.participants {
			if _, out := w.eliminated[p.ID]; !out {
				remaining = append(remaining, p.ID)
			}
		}
		if len(remaining) <= 1 {
			winners = remaining
			done = true
		}
	case VictoryScore:
		if w.target <= 0 {
			return
		}
		for _, p := range w.participants {
			if w.scores[p.ID] >= w.target {
				winners = append(winners, p.ID)
			}
		}
		done = len(winners) > 0
	}

	if !done {
		return
	}

	w.fired = true
	if w.resolve == nil {
		log.Warn().Msg("victory condition satisfied but no resolve callback is set")
		return
	}
	w.resolve(winners, len(winners) == 0)
}

// Fired reports whether the condition has already resolved.
func (w *WinCondition) Fired() bool {
	return w.fired
}

func (w *WinCondition) CleanUp() {
	w.resolve = nil
}
