// Package registry tracks the available round types and the single
// active round. It validates launches, records history for finished
// rounds, and republishes their lifecycle events on one aggregate topic.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/rumpusparty/rumpus/pkg/config"
	"github.com/rumpusparty/rumpus/pkg/history"
	"github.com/rumpusparty/rumpus/pkg/round"
	"github.com/rumpusparty/rumpus/pkg/utils"
)

type Registry struct {
	mu deadlock.Mutex

	blueprints map[string]round.Blueprint
	factories  map[string]func() round.Mode

	damage  *round.DamageBus
	display round.Display

	active     *round.Driver
	activeDone chan struct{}

	sequence  uint64
	recent    []history.Entry
	recentCap int
	store     history.Store

	events *utils.Topic[round.Event]
}

func New(damage *round.DamageBus, display round.Display) *Registry {
	if damage == nil {
		damage = round.NewDamageBus()
	}
	if display == nil {
		display = round.NopDisplay{}
	}
	return &Registry{
		blueprints: map[string]round.Blueprint{},
		factories:  map[string]func() round.Mode{},
		damage:     damage,
		display:    display,
		recentCap:  32,
		events:     utils.NewTopic[round.Event](),
	}
}

// SetStore attaches a durable archive for finished rounds.
func (r *Registry) SetStore(store history.Store) {
	r.mu.Lock()
	r.store = store
	r.mu.Unlock()
}

// SetRecentCap bounds the in-memory history ring.
func (r *Registry) SetRecentCap(n int) {
	if n < 1 {
		n = 1
	}
	r.mu.Lock()
	r.recentCap = n
	r.mu.Unlock()
}

// Damage is the bus external damage sources report on.
func (r *Registry) Damage() *round.DamageBus {
	return r.damage
}

// Events carries every round's lifecycle notifications.
func (r *Registry) Events() *utils.Topic[round.Event] {
	return r.events
}

// Register adds a round type under its blueprint ID.
func (r *Registry) Register(bp round.Blueprint, factory func() round.Mode) error {
	if bp.ID == "" {
		return fmt.Errorf("blueprint has no ID")
	}
	if factory == nil {
		return fmt.Errorf("round type %s has no factory", bp.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blueprints[bp.ID]; ok {
		return fmt.Errorf("round type %s is already registered", bp.ID)
	}
	r.blueprints[bp.ID] = bp
	r.factories[bp.ID] = factory
	return nil
}

// Configure applies per-deployment overrides to registered round types.
// Overrides naming unknown types are logged and skipped.
func (r *Registry) Configure(overrides []config.RoundType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, override := range overrides {
		bp, ok := r.blueprints[override.ID]
		if !ok {
			log.Warn().Msgf("config names unknown round type %s", override.ID)
			continue
		}
		bp.Enabled = override.Enabled
		if override.MinPlayers > 0 {
			bp.MinPlayers = int(override.MinPlayers)
		}
		if override.MaxPlayers > 0 {
			bp.MaxPlayers = int(override.MaxPlayers)
		}
		if override.Seconds > 0 {
			bp.Duration = time.Duration(override.Seconds) * time.Second
		}
		bp.Tags = append(bp.Tags, override.Tags...)
		r.blueprints[override.ID] = bp
	}
}

// Blueprints lists every registered round type.
func (r *Registry) Blueprints() []round.Blueprint {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]round.Blueprint, 0, len(r.blueprints))
	for _, bp := range r.blueprints {
		out = append(out, bp)
	}
	return out
}

// Active returns the currently running round, nil when idle.
func (r *Registry) Active() *round.Driver {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Recent returns a copy of the in-memory history ring, newest last.
func (r *Registry) Recent() []history.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]history.Entry, len(r.recent))
	copy(out, r.recent)
	return out
}

// Launch validates and starts a round of the given type. A rejected
// launch logs the reason and returns nil without mutating anything.
func (r *Registry) Launch(typeID string, ctx *round.Context) *round.Driver {
	r.mu.Lock()

	bp, ok := r.blueprints[typeID]
	if !ok {
		r.mu.Unlock()
		log.Warn().Msgf("cannot launch unknown round type %s", typeID)
		return nil
	}
	if !bp.Enabled {
		r.mu.Unlock()
		log.Warn().Msgf("round type %s is disabled", typeID)
		return nil
	}

	n := len(ctx.Participants())
	if n < bp.MinPlayers || (bp.MaxPlayers > 0 && n > bp.MaxPlayers) {
		r.mu.Unlock()
		log.Warn().Msgf(
			"round type %s takes %d-%d players, got %d",
			typeID, bp.MinPlayers, bp.MaxPlayers, n,
		)
		return nil
	}

	if r.active != nil {
		r.mu.Unlock()
		log.Warn().Msgf("cannot launch %s: a round is already active", typeID)
		return nil
	}

	mode := r.factories[typeID]()
	driver := round.NewDriver(mode, r.damage, r.display)
	done := make(chan struct{})
	r.active = driver
	r.activeDone = done
	r.mu.Unlock()

	// Subscribe before the round can publish anything.
	sub := driver.Events().Subscribe()
	go r.watch(driver, sub, done)

	driver.Initialize(ctx)
	driver.Start()
	return driver
}

// EndCurrent aborts the active round, if any, and waits until its end
// notification has been recorded before returning.
func (r *Registry) EndCurrent() {
	r.mu.Lock()
	driver := r.active
	done := r.activeDone
	r.mu.Unlock()

	if driver == nil {
		return
	}
	driver.Abort()
	if done != nil {
		<-done
	}
}

// watch follows one round's events, recording history when it ends and
// releasing the active slot.
func (r *Registry) watch(driver *round.Driver, sub *utils.Subscriber[round.Event], done chan struct{}) {
	defer close(done)
	defer sub.Done()

	for ev := range sub.Recv() {
		r.events.Publish(ev)
		if ev.Kind != round.EventEnded {
			continue
		}
		r.record(ev.Result)

		r.mu.Lock()
		if r.active == driver {
			r.active = nil
			r.activeDone = nil
		}
		r.mu.Unlock()
		return
	}
}

func (r *Registry) record(res *round.Result) {
	if res == nil {
		return
	}

	r.mu.Lock()
	r.sequence++
	entry := history.Entry{
		Sequence:     r.sequence,
		RoundType:    res.RoundType,
		Outcome:      res.Outcome.String(),
		Participants: res.Participants,
		Winners:      res.Winners,
		Duration:     res.Duration,
		EndedAt:      time.Now(),
	}
	r.recent = append(r.recent, entry)
	if len(r.recent) > r.recentCap {
		r.recent = r.recent[len(r.recent)-r.recentCap:]
	}
	store := r.store
	r.mu.Unlock()

	if store == nil {
		return
	}
	data, err := history.Encode(entry)
	if err != nil {
		log.Warn().Err(err).Msg("could not encode history entry")
		return
	}
	key := fmt.Sprintf("%d", entry.Sequence)
	if err := store.Set(context.Background(), key, data); err != nil {
		log.Warn().Err(err).Msgf("could not archive round %s", key)
	}
}
