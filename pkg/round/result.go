package round

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Outcome is how a round concluded.
type Outcome uint8

const (
	OutcomeVictory Outcome = iota
	OutcomeDefeat
	OutcomeDraw
	OutcomeTimeout
	OutcomeAbandoned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeDraw:
		return "draw"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// RewardKind is the closed set of reward types the world bridge can
// apply.
type RewardKind uint8

const (
	RewardHealth RewardKind = iota
	RewardLives
	RewardItem
	RewardScore
)

type Reward struct {
	Kind          RewardKind
	ParticipantID int
	Amount        int
	// Item names the granted item for RewardItem.
	Item string
}

type PenaltyKind uint8

const (
	PenaltyHealth PenaltyKind = iota
	PenaltyLives
	PenaltyItem
	PenaltyScore
)

type Penalty struct {
	Kind          PenaltyKind
	ParticipantID int
	Amount        int
	Item          string
}

// ItemChange adjusts a participant's count of an item.
type ItemChange struct {
	ParticipantID int
	Item          string
	Delta         int
}

// Progression names map nodes to open or close after the round, and
// whether the current objective was completed.
type Progression struct {
	Unlock            []string
	Block             []string
	ObjectiveComplete bool
}

// Result is the outcome payload a round produces exactly once. Modes fill
// it in before ending the round; the driver stamps duration and round
// type if the mode left them unset.
type Result struct {
	Outcome      Outcome
	Participants []int
	Winners      []int

	// Stats is the one genuinely free-form part of the payload.
	Stats map[string]any

	Rewards     []Reward
	Penalties   []Penalty
	Items       []ItemChange
	Progression *Progression

	Duration  time.Duration
	RoundType string
}

// NewResult builds a result, dropping any winner that is not also a
// participant.
func NewResult(outcome Outcome, participants []int, winners []int) *Result {
	present := map[int]struct{}{}
	for _, id := range participants {
		present[id] = struct{}{}
	}

	kept := make([]int, 0, len(winners))
	for _, id := range winners {
		if _, ok := present[id]; !ok {
			log.Warn().Msgf("dropping winner %d: not a participant", id)
			continue
		}
		kept = append(kept, id)
	}

	return &Result{
		Outcome:      outcome,
		Participants: participants,
		Winners:      kept,
		Stats:        map[string]any{},
	}
}
