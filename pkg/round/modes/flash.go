package modes

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/rumpusparty/rumpus/pkg/round"
	"github.com/rumpusparty/rumpus/pkg/timer"
)

func FlashBlueprint() round.Blueprint {
	return round.Blueprint{
		ID:          "flash",
		Name:        "Flash",
		Description: "A race of taps before the clock runs out.",
		Tag:         "flash",
		MinPlayers:  1,
		MaxPlayers:  8,
		Duration:    30 * time.Second,
		Tags:        []string{"ui", "minigame"},
		Enabled:     true,
	}
}

// Panel is the one UI element a Flash round builds per participant.
type Panel struct {
	ParticipantID int
	Label         string
	Score         int
}

// Flash is the UI-driven round: no physics, one panel per participant,
// discrete input events, and an optional countdown that ends the round
// with a timeout.
type Flash struct {
	mu   deadlock.Mutex
	host round.Host
	ctx  *round.Context

	// Countdown ends the round when it elapses. Zero runs forever.
	Countdown time.Duration
	// OnInput validates an input before it scores. Nil accepts all.
	OnInput func(participantID int, input round.Input) bool

	panels    map[int]*Panel
	crown     *round.CrownTracker
	countdown *timer.Timer

	warnedNoHook bool
}

var (
	_ round.Mode         = &Flash{}
	_ round.Pausable     = &Flash{}
	_ round.HandlesInput = &Flash{}
)

func NewFlash() *Flash {
	return &Flash{
		panels: map[int]*Panel{},
	}
}

func (f *Flash) Blueprint() round.Blueprint {
	return FlashBlueprint()
}

func (f *Flash) Setup(host round.Host, ctx *round.Context) error {
	f.host = host
	f.ctx = ctx

	// Nothing physical happens in a flash round.
	ctx.Disable(round.KindSpawner.String())
	ctx.Disable(round.KindConsumables.String())
	ctx.Disable(round.KindRespawnGate.String())

	f.crown, _ = ctx.Standard(round.KindCrown).(*round.CrownTracker)

	for _, p := range ctx.Participants() {
		f.panels[p.ID] = &Panel{
			ParticipantID: p.ID,
			Label:         p.Name,
		}
	}
	return nil
}

func (f *Flash) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Countdown > 0 {
		f.countdown = timer.AfterFunc(f.Countdown, f.timeout)
		f.countdown.Start()
	}
}

func (f *Flash) Panel(id int) *Panel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.panels[id]
}

// HandleInput scores an accepted input on the participant's panel and
// feeds the new score to the crown tracker.
func (f *Flash) HandleInput(participantID int, input round.Input) bool {
	f.mu.Lock()
	panel, ok := f.panels[participantID]
	if !ok {
		f.mu.Unlock()
		log.Warn().Msgf("dropping input from unknown participant %d", participantID)
		return false
	}

	if f.OnInput == nil && !f.warnedNoHook {
		log.Warn().Msg("flash round has no input hook, accepting all inputs")
		f.warnedNoHook = true
	}
	hook := f.OnInput
	f.mu.Unlock()

	if hook != nil && !hook(participantID, input) {
		return false
	}

	f.mu.Lock()
	panel.Score += input.Value
	score := panel.Score
	crown := f.crown
	f.mu.Unlock()

	if crown != nil {
		crown.Observe(participantID, score)
	}
	return true
}

// HandleDamage in a flash round knocks points off the victim's panel.
func (f *Flash) HandleDamage(victim *round.Participant, report round.Report) {
	f.mu.Lock()
	defer f.mu.Unlock()
	panel, ok := f.panels[victim.ID]
	if !ok {
		return
	}
	panel.Score -= report.Amount
	if panel.Score < 0 {
		panel.Score = 0
	}
}

func (f *Flash) timeout() {
	f.mu.Lock()
	best := 0
	winners := []int{}
	for id, panel := range f.panels {
		switch {
		case panel.Score > best:
			best = panel.Score
			winners = []int{id}
		case panel.Score == best && best > 0:
			winners = append(winners, id)
		}
	}
	stats := map[string]any{}
	for _, panel := range f.panels {
		stats[panel.Label] = panel.Score
	}
	ids := f.ctx.ParticipantIDs()
	f.mu.Unlock()

	res := round.NewResult(round.OutcomeTimeout, ids, winners)
	for key, value := range stats {
		res.Stats[key] = value
	}
	f.host.End(res)
}

func (f *Flash) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countdown != nil {
		f.countdown.Pause()
	}
}

func (f *Flash) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countdown != nil {
		f.countdown.Start()
	}
}

func (f *Flash) End(*round.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countdown != nil {
		f.countdown.Stop()
		f.countdown = nil
	}
}
