package world

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"gorm.io/gorm"

	"github.com/rumpusparty/rumpus/pkg/round"
	"github.com/rumpusparty/rumpus/pkg/utils"
)

// Bridge turns a finished round's result into persistent world state:
// participant health and lives, inventories, map-node availability, and
// scores. Every apply commits all of its changes or none of them, and
// each committed change lands in a log that a rollback can unwind.
type Bridge struct {
	mu deadlock.Mutex

	participants map[int]*round.Participant
	inventory    map[int]map[string]int
	nodes        map[string]bool
	scores       map[int]int

	committed []Change
	snap      *Snapshot

	db        *gorm.DB
	summaries *utils.Topic[Summary]
}

func NewBridge(participants []*round.Participant) *Bridge {
	byID := make(map[int]*round.Participant, len(participants))
	inventory := make(map[int]map[string]int, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
		inventory[p.ID] = map[string]int{}
	}
	return &Bridge{
		participants: byID,
		inventory:    inventory,
		nodes:        map[string]bool{},
		scores:       map[int]int{},
		summaries:    utils.NewTopic[Summary](),
	}
}

// AttachDB persists every committed change to the given database.
func (b *Bridge) AttachDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&ChangeRecord{}); err != nil {
		return err
	}
	b.mu.Lock()
	b.db = db
	b.mu.Unlock()
	return nil
}

// Summaries is the topic a change summary is published on after each
// successful apply.
func (b *Bridge) Summaries() *utils.Topic[Summary] {
	return b.summaries
}

// SetNode marks a map node open or closed.
func (b *Bridge) SetNode(node string, open bool) {
	b.mu.Lock()
	b.nodes[node] = open
	b.mu.Unlock()
}

// NodeOpen reports whether a map node is available.
func (b *Bridge) NodeOpen(node string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nodes[node]
}

// Inventory returns how many of an item a participant holds.
func (b *Bridge) Inventory(id int, item string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inventory[id][item]
}

// Score returns a participant's persistent score.
func (b *Bridge) Score(id int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scores[id]
}

// Committed returns a copy of the committed change log.
func (b *Bridge) Committed() []Change {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Change, len(b.committed))
	copy(out, b.committed)
	return out
}

// Snapshot captures the current world state as the rollback anchor for
// the round about to start. Taking a new snapshot replaces the previous
// one.
func (b *Bridge) Snapshot() {
	b.mu.Lock()
	defer b.mu.Unlock()

	states := make(map[int]participantState, len(b.participants))
	for id, p := range b.participants {
		states[id] = participantState{
			health:   p.Health,
			lives:    p.Lives,
			alive:    p.Alive,
			position: p.Position,
		}
	}
	b.snap = &Snapshot{
		takenAt:      time.Now(),
		participants: states,
		inventory:    copyInventory(b.inventory),
		nodes:        copyNodes(b.nodes),
		scores:       copyScores(b.scores),
	}
}

// Rollback restores the snapshot taken before the round started and
// clears the committed change log. It is used when a round is abandoned
// instead of completed.
func (b *Bridge) Rollback() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.snap == nil {
		return fmt.Errorf("no snapshot to roll back to")
	}

	for id, state := range b.snap.participants {
		p, ok := b.participants[id]
		if !ok {
			continue
		}
		p.Health = state.health
		p.Lives = state.lives
		p.Alive = state.alive
		p.Position = state.position
	}
	b.inventory = b.snap.inventory
	b.nodes = b.snap.nodes
	b.scores = b.snap.scores
	b.committed = nil
	b.snap = nil
	return nil
}

// Apply processes a result into a sequence of typed changes and commits
// them atomically. Applying the same result twice doubles its effects;
// callers apply exactly once.
func (b *Bridge) Apply(res *round.Result) error {
	b.mu.Lock()

	changes, err := b.plan(res)
	if err != nil {
		b.mu.Unlock()
		return err
	}

	for _, change := range changes {
		b.commit(change)
	}

	if b.db != nil {
		if err := b.persist(res.RoundType, changes); err != nil {
			// The in-memory world stays authoritative; losing the
			// database copy is logged, not fatal.
			log.Warn().Err(err).Msg("failed to persist change log")
		}
	}

	b.committed = append(b.committed, changes...)
	b.snap = nil
	b.mu.Unlock()

	b.summaries.Publish(Summary{
		RoundType: res.RoundType,
		Outcome:   res.Outcome.String(),
		Changes:   len(changes),
		At:        time.Now(),
	})
	return nil
}

// plan validates the whole result and produces the change sequence
// without touching any state, so a bad payload has no partial effect.
func (b *Bridge) plan(res *round.Result) ([]Change, error) {
	changes := []Change{}
	now := time.Now()

	health := map[int]int{}
	lives := map[int]int{}
	items := map[int]map[string]int{}
	scores := map[int]int{}
	for id, p := range b.participants {
		health[id] = p.Health
		lives[id] = p.Lives
		scores[id] = b.scores[id]
		items[id] = map[string]int{}
		for item, n := range b.inventory[id] {
			items[id][item] = n
		}
	}

	resolve := func(id int) (*round.Participant, error) {
		p, ok := b.participants[id]
		if !ok {
			return nil, fmt.Errorf("unknown participant %d", id)
		}
		return p, nil
	}

	clamp := func(v, lo, hi int) int {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}

	numeric := func(kind ChangeKind, id int, table map[int]int, delta, lo, hi int) {
		old := table[id]
		next := clamp(old+delta, lo, hi)
		table[id] = next
		changes = append(changes, Change{
			Kind:       kind,
			EntityID:   id,
			Old:        old,
			New:        next,
			At:         now,
			Reversible: true,
		})
	}

	item := func(id int, name string, delta int) {
		old := items[id][name]
		next := old + delta
		if next < 0 {
			next = 0
		}
		items[id][name] = next
		changes = append(changes, Change{
			Kind:       ChangeInventory,
			EntityID:   id,
			Item:       name,
			Old:        old,
			New:        next,
			At:         now,
			Reversible: true,
		})
	}

	for _, reward := range res.Rewards {
		p, err := resolve(reward.ParticipantID)
		if err != nil {
			return nil, err
		}
		switch reward.Kind {
		case round.RewardHealth:
			numeric(ChangeHealth, p.ID, health, reward.Amount, 0, p.MaxHealth)
		case round.RewardLives:
			numeric(ChangeLives, p.ID, lives, reward.Amount, 0, p.MaxLives)
		case round.RewardItem:
			item(p.ID, reward.Item, max(reward.Amount, 1))
		case round.RewardScore:
			numeric(ChangeScore, p.ID, scores, reward.Amount, 0, int(^uint(0)>>1))
		default:
			return nil, fmt.Errorf("unknown reward kind %d", reward.Kind)
		}
	}

	for _, penalty := range res.Penalties {
		p, err := resolve(penalty.ParticipantID)
		if err != nil {
			return nil, err
		}
		switch penalty.Kind {
		case round.PenaltyHealth:
			numeric(ChangeHealth, p.ID, health, -penalty.Amount, 0, p.MaxHealth)
		case round.PenaltyLives:
			numeric(ChangeLives, p.ID, lives, -penalty.Amount, 0, p.MaxLives)
		case round.PenaltyItem:
			item(p.ID, penalty.Item, -max(penalty.Amount, 1))
		case round.PenaltyScore:
			numeric(ChangeScore, p.ID, scores, -penalty.Amount, 0, int(^uint(0)>>1))
		default:
			return nil, fmt.Errorf("unknown penalty kind %d", penalty.Kind)
		}
	}

	for _, change := range res.Items {
		p, err := resolve(change.ParticipantID)
		if err != nil {
			return nil, err
		}
		item(p.ID, change.Item, change.Delta)
	}

	if res.Progression != nil {
		node := func(name string, open bool) {
			old := 0
			if b.nodes[name] {
				old = 1
			}
			next := 0
			if open {
				next = 1
			}
			changes = append(changes, Change{
				Kind:       ChangeProgression,
				Node:       name,
				Old:        old,
				New:        next,
				At:         now,
				Reversible: true,
			})
		}
		for _, name := range res.Progression.Unlock {
			node(name, true)
		}
		for _, name := range res.Progression.Block {
			node(name, false)
		}
	}

	return changes, nil
}

// commit applies one planned change to the live world.
func (b *Bridge) commit(change Change) {
	switch change.Kind {
	case ChangeHealth:
		if p := b.participants[change.EntityID]; p != nil {
			p.Health = change.New
			p.Alive = p.Health > 0
		}
	case ChangeLives:
		if p := b.participants[change.EntityID]; p != nil {
			p.Lives = change.New
		}
	case ChangeInventory:
		if _, ok := b.inventory[change.EntityID]; !ok {
			b.inventory[change.EntityID] = map[string]int{}
		}
		b.inventory[change.EntityID][change.Item] = change.New
	case ChangeProgression:
		b.nodes[change.Node] = change.New > 0
	case ChangeScore:
		b.scores[change.EntityID] = change.New
	}
}
