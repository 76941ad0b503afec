package round

import (
	"github.com/rs/zerolog/log"
)

// Context mediates a round's access to participant data and subsystems.
// The participant list is frozen at construction; standard subsystems are
// built lazily and at most once per kind.
type Context struct {
	participants []*Participant

	standard  [kindCount]Subsystem
	overrides map[string]Subsystem
	disabled  map[string]struct{}

	// Settings carries free-form per-round configuration.
	Settings map[string]any

	closed bool
}

func NewContext(participants []*Participant) *Context {
	frozen := make([]*Participant, len(participants))
	copy(frozen, participants)
	return &Context{
		participants: frozen,
		overrides:    map[string]Subsystem{},
		disabled:     map[string]struct{}{},
		Settings:     map[string]any{},
	}
}

// Participants returns the frozen participant list.
func (c *Context) Participants() []*Participant {
	return c.participants
}

// Participant finds a record by ID. Player counts are small, so a linear
// scan is fine.
func (c *Context) Participant(id int) *Participant {
	for _, p := range c.participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (c *Context) ParticipantIDs() []int {
	ids := make([]int, 0, len(c.participants))
	for _, p := range c.participants {
		ids = append(ids, p.ID)
	}
	return ids
}

// Override registers a full replacement for a named subsystem. Overriding
// a name re-enables it if it was disabled.
func (c *Context) Override(name string, replacement Subsystem) {
	delete(c.disabled, name)
	c.overrides[name] = replacement
}

// Disable marks a subsystem unavailable for the rest of the round.
func (c *Context) Disable(name string) {
	c.disabled[name] = struct{}{}
}

// Available reports whether a lookup of name would return a subsystem.
func (c *Context) Available(name string) bool {
	if _, ok := c.overrides[name]; ok {
		return true
	}
	if _, ok := c.disabled[name]; ok {
		return false
	}
	if k, ok := kindByName(name); ok {
		return c.standard[k] != nil
	}
	return false
}

// Lookup returns the subsystem registered under name, honoring overrides
// and disables. Overrides win over disables.
func (c *Context) Lookup(name string) Subsystem {
	if s, ok := c.overrides[name]; ok {
		return s
	}
	if _, ok := c.disabled[name]; ok {
		return nil
	}
	if k, ok := kindByName(name); ok {
		return c.standard[k]
	}
	return nil
}

// Standard returns the lazily-constructed instance for one of the known
// kinds, building it on first use. Disabled kinds and unknown kinds are
// unavailable, not fatal.
func (c *Context) Standard(kind Kind) Subsystem {
	if kind >= kindCount {
		log.Error().Msgf("unknown subsystem kind %d requested", kind)
		return nil
	}
	name := kind.String()
	if s, ok := c.overrides[name]; ok {
		return s
	}
	if _, ok := c.disabled[name]; ok {
		return nil
	}
	if c.standard[kind] != nil {
		return c.standard[kind]
	}

	var s Subsystem
	switch kind {
	case KindSpawner:
		s = NewSpawner(c.participants)
	case KindConsumables:
		s = NewConsumableSpawner()
	case KindWinCondition:
		s = NewWinCondition(c.participants)
	case KindRespawnGate:
		s = NewRespawnGate()
	case KindCrown:
		s = NewCrownTracker()
	}
	c.standard[kind] = s
	return s
}

// Close tears down every subsystem the context constructed. It is safe to
// call more than once.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.closed = true
	for i, s := range c.standard {
		if s != nil {
			s.CleanUp()
			c.standard[i] = nil
		}
	}
	for name, s := range c.overrides {
		if s != nil {
			s.CleanUp()
		}
		delete(c.overrides, name)
	}
}

func kindByName(name string) (Kind, bool) {
	for k := Kind(0); k < kindCount; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return kindCount, false
}
