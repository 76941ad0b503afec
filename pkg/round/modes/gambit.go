package modes

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/rumpusparty/rumpus/pkg/round"
	"github.com/rumpusparty/rumpus/pkg/timer"
)

func GambitBlueprint() round.Blueprint {
	return round.Blueprint{
		ID:          "gambit",
		Name:        "Gambit",
		Description: "Take turns, outthink the table.",
		Tag:         "gambit",
		MinPlayers:  2,
		MaxPlayers:  6,
		Duration:    5 * time.Minute,
		Tags:        []string{"turns", "strategy"},
		Enabled:     true,
	}
}

// Move is one turn's action from a participant.
type Move struct {
	ParticipantID int
	Action        string
	Target        int
}

// Gambit is the turn-based round: a fixed turn order, one move per turn,
// optional per-turn clock, and victory/max-turn checks after every
// accepted move.
type Gambit struct {
	mu   deadlock.Mutex
	host round.Host
	ctx  *round.Context

	// MaxTurns caps the number of full cycles through the order. Zero
	// means unlimited.
	MaxTurns int
	// TurnTime limits each turn. Zero waits forever.
	TurnTime time.Duration
	// Shuffle randomizes the turn order at setup.
	Shuffle bool
	// Seed makes a shuffled order reproducible. Zero seeds from the
	// clock.
	Seed int64

	// Validate accepts or rejects a proposed move. Nil accepts all.
	Validate func(Move) bool
	// CheckVictory inspects the move history after each accepted move.
	CheckVictory func(history []Move) (winners []int, done bool)
	// DefaultMove supplies the move applied when a turn times out. Nil
	// skips the turn instead.
	DefaultMove func(participantID int) *Move

	order    []int
	turn     int
	cycles   int
	awaiting bool
	history  []Move

	turnTimer    *timer.Timer
	queuedDamage []round.Report

	warnedNoValidate bool
	warnedNoVictory  bool
}

var (
	_ round.Mode     = &Gambit{}
	_ round.Pausable = &Gambit{}
)

func NewGambit() *Gambit {
	return &Gambit{}
}

func (g *Gambit) Blueprint() round.Blueprint {
	return GambitBlueprint()
}

func (g *Gambit) Setup(host round.Host, ctx *round.Context) error {
	g.host = host
	g.ctx = ctx

	// No physics and no spawning in a turn-based round.
	ctx.Disable(round.KindSpawner.String())
	ctx.Disable(round.KindConsumables.String())
	ctx.Disable(round.KindRespawnGate.String())

	g.order = ctx.ParticipantIDs()
	if g.Shuffle {
		seed := g.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(g.order), func(i, j int) {
			g.order[i], g.order[j] = g.order[j], g.order[i]
		})
	}
	return nil
}

func (g *Gambit) Start() {
	g.mu.Lock()
	g.beginTurn()
	g.mu.Unlock()
}

// TurnOrder returns the participant order for this round.
func (g *Gambit) TurnOrder() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	order := make([]int, len(g.order))
	copy(order, g.order)
	return order
}

// CurrentTurn returns whose move it is, or -1 when no move is awaited.
func (g *Gambit) CurrentTurn() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.awaiting || len(g.order) == 0 {
		return -1
	}
	return g.order[g.turn]
}

// History returns the accepted moves so far.
func (g *Gambit) History() []Move {
	g.mu.Lock()
	defer g.mu.Unlock()
	history := make([]Move, len(g.history))
	copy(history, g.history)
	return history
}

// SubmitMove accepts a move from the current participant while one is
// awaited. Anything else is rejected and logged, never fatal.
func (g *Gambit) SubmitMove(m Move) bool {
	g.mu.Lock()
	if !g.awaiting || len(g.order) == 0 {
		g.mu.Unlock()
		log.Warn().Msgf("rejecting move from %d: no move is awaited", m.ParticipantID)
		return false
	}
	current := g.order[g.turn]
	if m.ParticipantID != current {
		g.mu.Unlock()
		log.Warn().Msgf(
			"rejecting move from %d: it is %d's turn",
			m.ParticipantID, current,
		)
		return false
	}

	if g.Validate == nil {
		if !g.warnedNoValidate {
			log.Warn().Msg("gambit has no validation hook, accepting all moves")
			g.warnedNoValidate = true
		}
	} else if !g.Validate(m) {
		g.mu.Unlock()
		log.Debug().Msgf("move from %d failed validation", m.ParticipantID)
		return false
	}

	res := g.applyMove(m)
	g.mu.Unlock()

	if res != nil {
		g.host.End(res)
	}
	return true
}

// applyMove records an accepted move and advances the round. It returns
// a result when the round is over. Callers hold g.mu.
func (g *Gambit) applyMove(m Move) *round.Result {
	g.history = append(g.history, m)
	g.awaiting = false
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}
	return g.advance()
}

func (g *Gambit) advance() *round.Result {
	if winners, done := g.checkVictory(); done {
		// Resolving with nobody ahead is a draw, not an empty victory.
		outcome := round.OutcomeVictory
		if len(winners) == 0 {
			outcome = round.OutcomeDraw
		}
		return round.NewResult(outcome, g.ctx.ParticipantIDs(), winners)
	}

	g.turn++
	if g.turn >= len(g.order) {
		g.turn = 0
		g.cycles++
		if g.MaxTurns > 0 && g.cycles >= g.MaxTurns {
			// Nobody won within the turn budget.
			return round.NewResult(round.OutcomeDraw, g.ctx.ParticipantIDs(), nil)
		}
	}

	g.beginTurn()
	return nil
}

func (g *Gambit) checkVictory() ([]int, bool) {
	if g.CheckVictory == nil {
		if !g.warnedNoVictory {
			log.Warn().Msg("gambit has no victory hook, rounds only end on the turn cap")
			g.warnedNoVictory = true
		}
		return nil, false
	}
	return g.CheckVictory(g.history)
}

func (g *Gambit) beginTurn() {
	// Damage reported between turns lands at the start of the next one.
	for _, report := range g.queuedDamage {
		if victim := g.ctx.Participant(report.VictimID); victim != nil {
			victim.ApplyDamage(report.Amount)
		}
	}
	g.queuedDamage = nil

	g.awaiting = true
	if g.TurnTime > 0 {
		g.turnTimer = timer.AfterFunc(g.TurnTime, g.turnTimedOut)
		g.turnTimer.Start()
	}
}

func (g *Gambit) turnTimedOut() {
	g.mu.Lock()
	if !g.awaiting || len(g.order) == 0 {
		g.mu.Unlock()
		return
	}
	current := g.order[g.turn]

	var res *round.Result
	if g.DefaultMove != nil {
		if mv := g.DefaultMove(current); mv != nil {
			mv.ParticipantID = current
			log.Info().Msgf("turn timed out, applying default move for %d", current)
			res = g.applyMove(*mv)
			g.mu.Unlock()
			if res != nil {
				g.host.End(res)
			}
			return
		}
	}

	log.Info().Msgf("turn timed out, skipping %d", current)
	g.awaiting = false
	g.turnTimer = nil
	res = g.advance()
	g.mu.Unlock()

	if res != nil {
		g.host.End(res)
	}
}

// HandleDamage queues the report; a turn-based round only applies damage
// on turn boundaries.
func (g *Gambit) HandleDamage(victim *round.Participant, report round.Report) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queuedDamage = append(g.queuedDamage, report)
}

func (g *Gambit) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.turnTimer != nil {
		g.turnTimer.Pause()
	}
}

func (g *Gambit) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.turnTimer != nil {
		g.turnTimer.Start()
	}
}

func (g *Gambit) End(*round.Result) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.awaiting = false
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}
}
