package world

import (
	"time"
)

// ChangeKind types a single unit of persistent state change.
type ChangeKind uint8

const (
	ChangeHealth ChangeKind = iota
	ChangeLives
	ChangeInventory
	ChangeProgression
	ChangeScore
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeHealth:
		return "health"
	case ChangeLives:
		return "lives"
	case ChangeInventory:
		return "inventory"
	case ChangeProgression:
		return "progression"
	case ChangeScore:
		return "score"
	}
	return "unknown"
}

// Change records one applied mutation with enough of a before/after
// snapshot to reverse it.
type Change struct {
	Kind     ChangeKind
	EntityID int
	// Item names the affected inventory item for ChangeInventory.
	Item string
	// Node names the affected map node for ChangeProgression.
	Node       string
	Old        int
	New        int
	At         time.Time
	Reversible bool
}

// Summary is published after each successful apply.
type Summary struct {
	RoundType string
	Outcome   string
	Changes   int
	At        time.Time
}
