package round

import (
	"time"
)

// Blueprint is the metadata a round type exposes about itself, used by
// the registry for discovery and launch validation.
type Blueprint struct {
	ID          string
	Name        string
	Description string
	// Tag groups round types by family: "brawl", "flash", "gambit".
	Tag        string
	MinPlayers int
	MaxPlayers int
	Duration   time.Duration
	Tags       []string
	Enabled    bool
}

// Host is the driver surface a mode may call back into, chiefly to end
// the round it is running.
type Host interface {
	End(*Result)
	Phase() Phase
}

// Mode supplies the rules of one round type. The lifecycle driver owns
// the state machine and calls these hooks at the right moments.
type Mode interface {
	Blueprint() Blueprint
	// Setup runs during initialization, before the round starts. The
	// mode requests, disables, or overrides subsystems here.
	Setup(host Host, ctx *Context) error
	// Start runs when the round becomes active.
	Start()
	// HandleDamage is the only place mode-specific damage semantics are
	// decided. The victim has already been resolved.
	HandleDamage(victim *Participant, report Report)
	// End runs once when the round ends, after shared teardown.
	End(*Result)
}

// Pausable is implemented by modes with simulation to suspend.
type Pausable interface {
	Pause()
	Resume()
}

// Abortable is implemented by modes that need to know a round was torn
// down early rather than ending on its own terms.
type Abortable interface {
	Aborted()
}

// HasTutorial is implemented by modes that show rules before starting.
// A nil tutorial skips the phase.
type HasTutorial interface {
	Tutorial() *Tutorial
}

// CrownObserver is implemented by modes that react to the crown moving
// between participants.
type CrownObserver interface {
	CrownAwarded(id int)
	CrownRemoved(id int)
	CrownTransferred(from, to int)
}

// Input is a discrete UI input event forwarded to modes that handle them.
type Input struct {
	Kind  string
	Value int
}

// HandlesInput is implemented by modes driven by discrete input events.
type HandlesInput interface {
	HandleInput(participantID int, input Input) bool
}

// Tutorial is the payload shown to players before a round starts. A zero
// Duration waits for an explicit FinishTutorial call.
type Tutorial struct {
	Rules     []string
	Controls  map[string]string
	Objective string
	Tips      []string
	Duration  time.Duration
}

// Display is the shared round UI. ShowRound and HideRound are each called
// exactly once per round; HideRound returns a channel closed when the
// display has finished tearing down.
type Display interface {
	ShowRound([]*Participant)
	HideRound() <-chan struct{}
}

// NopDisplay satisfies Display without any UI attached.
type NopDisplay struct{}

func (NopDisplay) ShowRound([]*Participant) {}

func (NopDisplay) HideRound() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

// EventKind enumerates round lifecycle notifications.
type EventKind uint8

const (
	EventStarted EventKind = iota
	EventEnded
	EventPaused
	EventResumed
	EventTutorialShown
	EventTutorialFinished
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventEnded:
		return "ended"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventTutorialShown:
		return "tutorialshown"
	case EventTutorialFinished:
		return "tutorialfinished"
	}
	return "unknown"
}

// Event is a lifecycle notification. Result is set only for EventEnded.
type Event struct {
	Kind      EventKind
	RoundType string
	Result    *Result
	At        time.Time
}
