package round

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/rumpusparty/rumpus/pkg/timer"
	"github.com/rumpusparty/rumpus/pkg/utils"
)

// Phase is where a round is in its life.
type Phase uint8

const (
	PhaseUninitialized Phase = iota
	PhaseInitialized
	PhaseTutorial
	PhaseActive
	PhasePaused
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitialized:
		return "initialized"
	case PhaseTutorial:
		return "tutorial"
	case PhaseActive:
		return "active"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

// Driver runs the round state machine for a single mode. It owns the
// context for the round's lifetime, routes damage reports to the mode,
// and wires the crown tracker to modes that observe it.
//
// Mode hooks are always invoked without the driver's lock held, so a
// hook may call back into the driver (most commonly End).
type Driver struct {
	mu   deadlock.Mutex
	mode Mode

	ctx     *Context
	phase   Phase
	display Display

	damage    *DamageBus
	damageSub int

	crown        *CrownTracker
	withoutCrown bool

	events *utils.Topic[Event]

	tutorialTimer *timer.Timer
	startedAt     time.Time
	result        *Result
}

// Option adjusts driver construction.
type Option func(*Driver)

// WithoutCrown skips crown tracking entirely for this round.
func WithoutCrown() Option {
	return func(d *Driver) {
		d.withoutCrown = true
	}
}

func NewDriver(mode Mode, damage *DamageBus, display Display, opts ...Option) *Driver {
	if damage == nil {
		damage = NewDamageBus()
	}
	if display == nil {
		display = NopDisplay{}
	}
	d := &Driver{
		mode:    mode,
		damage:  damage,
		display: display,
		events:  utils.NewTopic[Event](),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

func (d *Driver) Context() *Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ctx
}

func (d *Driver) Mode() Mode {
	return d.mode
}

// Result returns the round's result once it has ended, nil before.
func (d *Driver) Result() *Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.result
}

// Events is the topic lifecycle notifications are published on.
func (d *Driver) Events() *utils.Topic[Event] {
	return d.events
}

// Initialize stores the context, subscribes the universal damage handler,
// runs the mode's setup hook, and wires the crown tracker. Initializing
// twice is a logged no-op; the first context stays.
func (d *Driver) Initialize(ctx *Context) {
	d.mu.Lock()
	if d.phase != PhaseUninitialized {
		d.mu.Unlock()
		log.Warn().Msgf("round %s is already initialized", d.mode.Blueprint().ID)
		return
	}
	d.ctx = ctx
	d.phase = PhaseInitialized
	d.mu.Unlock()

	sub := d.damage.Subscribe(d.handleDamage)
	d.mu.Lock()
	d.damageSub = sub
	d.mu.Unlock()

	if err := d.mode.Setup(d, ctx); err != nil {
		log.Warn().Err(err).Msgf("setup failed for round %s", d.mode.Blueprint().ID)
	}

	if d.withoutCrown {
		return
	}
	tracker, ok := ctx.Standard(KindCrown).(*CrownTracker)
	if !ok || tracker == nil {
		return
	}
	d.mu.Lock()
	d.crown = tracker
	d.mu.Unlock()
	if obs, ok := d.mode.(CrownObserver); ok {
		tracker.OnAward(obs.CrownAwarded)
		tracker.OnRemove(obs.CrownRemoved)
		tracker.OnTransfer(obs.CrownTransferred)
	}
}

// Start moves an initialized round toward active play. Modes with
// tutorial content show it first; a tutorial with a duration advances on
// its own.
func (d *Driver) Start() {
	d.mu.Lock()
	if d.phase != PhaseInitialized {
		d.mu.Unlock()
		log.Warn().Msgf("cannot start round from phase %s", d.phase)
		return
	}

	var tut *Tutorial
	if ht, ok := d.mode.(HasTutorial); ok {
		tut = ht.Tutorial()
	}

	if tut == nil {
		d.mu.Unlock()
		d.activate()
		return
	}

	d.phase = PhaseTutorial
	if tut.Duration > 0 {
		d.tutorialTimer = timer.AfterFunc(tut.Duration, d.FinishTutorial)
		d.tutorialTimer.Start()
	}
	d.mu.Unlock()

	d.publish(EventTutorialShown, nil)
}

// FinishTutorial dismisses the tutorial and activates the round. Calling
// it when no tutorial is showing is a no-op, so auto-advance and an
// explicit dismissal cannot double-start the round.
func (d *Driver) FinishTutorial() {
	d.mu.Lock()
	if d.phase != PhaseTutorial {
		d.mu.Unlock()
		return
	}
	if d.tutorialTimer != nil {
		d.tutorialTimer.Stop()
		d.tutorialTimer = nil
	}
	d.mu.Unlock()

	d.publish(EventTutorialFinished, nil)
	d.activate()
}

func (d *Driver) activate() {
	d.mu.Lock()
	d.phase = PhaseActive
	d.startedAt = time.Now()
	participants := d.ctx.Participants()
	d.mu.Unlock()

	d.display.ShowRound(participants)
	d.publish(EventStarted, nil)
	d.mode.Start()
}

// Pause suspends an active round.
func (d *Driver) Pause() {
	d.mu.Lock()
	if d.phase != PhaseActive {
		d.mu.Unlock()
		return
	}
	d.phase = PhasePaused
	d.mu.Unlock()

	if p, ok := d.mode.(Pausable); ok {
		p.Pause()
	}
	d.publish(EventPaused, nil)
}

// Resume continues a paused round.
func (d *Driver) Resume() {
	d.mu.Lock()
	if d.phase != PhasePaused {
		d.mu.Unlock()
		return
	}
	d.phase = PhaseActive
	d.mu.Unlock()

	if p, ok := d.mode.(Pausable); ok {
		p.Resume()
	}
	d.publish(EventResumed, nil)
}

// End finishes the round with the given result. Ending an already-ended
// round is a logged no-op; exactly one ended notification is published.
func (d *Driver) End(res *Result) {
	d.end(res, false)
}

// Abort force-ends the round with an abandoned result, waiting for the
// display to finish hiding before the abort hook runs, so dependent UI
// teardown has observed the end notification by the time the caller
// proceeds.
func (d *Driver) Abort() {
	d.mu.Lock()
	phase := d.phase
	ctx := d.ctx
	d.mu.Unlock()

	if phase == PhaseUninitialized || phase == PhaseEnded || ctx == nil {
		log.Warn().Msgf("cannot abort round from phase %s", phase)
		return
	}

	res := NewResult(OutcomeAbandoned, ctx.ParticipantIDs(), nil)
	d.end(res, true)

	if a, ok := d.mode.(Abortable); ok {
		a.Aborted()
	}
}

func (d *Driver) end(res *Result, forced bool) {
	d.mu.Lock()
	switch d.phase {
	case PhaseActive, PhasePaused:
	case PhaseInitialized, PhaseTutorial:
		if !forced {
			d.mu.Unlock()
			log.Warn().Msgf("cannot end round from phase %s", d.phase)
			return
		}
	default:
		d.mu.Unlock()
		log.Warn().Msgf("cannot end round from phase %s", d.phase)
		return
	}

	if d.tutorialTimer != nil {
		d.tutorialTimer.Stop()
		d.tutorialTimer = nil
	}
	d.phase = PhaseEnded

	if res.Duration <= 0 {
		if !d.startedAt.IsZero() {
			res.Duration = time.Since(d.startedAt)
		} else {
			res.Duration = 0
		}
	}
	if res.RoundType == "" {
		res.RoundType = d.mode.Blueprint().Tag
	}
	d.result = res

	sub := d.damageSub
	crown := d.crown
	ctx := d.ctx
	shown := !d.startedAt.IsZero()
	d.mu.Unlock()

	d.damage.Unsubscribe(sub)
	if crown != nil {
		crown.CleanUp()
	}

	// The hide call returns a completion channel; waiting on it replaces
	// any guess about how long dependent UI teardown takes. A round that
	// never activated never showed the display, so there is nothing to
	// hide.
	if shown {
		<-d.display.HideRound()
	}

	d.mode.End(res)
	if ctx != nil {
		ctx.Close()
	}

	d.publish(EventEnded, res)
}

func (d *Driver) publish(kind EventKind, res *Result) {
	d.events.Publish(Event{
		Kind:      kind,
		RoundType: d.mode.Blueprint().Tag,
		Result:    res,
		At:        time.Now(),
	})
}

// handleDamage resolves the victim against the frozen participant list
// and hands the report to the mode, the only place damage semantics are
// decided.
func (d *Driver) handleDamage(r Report) {
	d.mu.Lock()
	phase := d.phase
	ctx := d.ctx
	d.mu.Unlock()

	if ctx == nil || phase == PhaseEnded {
		return
	}

	victim := ctx.Participant(r.VictimID)
	if victim == nil {
		log.Warn().Msgf("dropping damage report for unknown victim %d", r.VictimID)
		return
	}

	d.mode.HandleDamage(victim, r)
}
