package modes

import (
	"sync"
	"testing"

	"github.com/rumpusparty/rumpus/pkg/round"
)

type mockHost struct {
	mu    sync.Mutex
	ended []*round.Result
	phase round.Phase
}

func (h *mockHost) End(res *round.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ended = append(h.ended, res)
	h.phase = round.PhaseEnded
}

func (h *mockHost) Phase() round.Phase {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.phase
}

// Ended copies the results handed to End, for tests that end rounds from
// timer goroutines.
func (h *mockHost) Ended() []*round.Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*round.Result, len(h.ended))
	copy(out, h.ended)
	return out
}

func brawlParticipants(n, lives int) []*round.Participant {
	out := make([]*round.Participant, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, round.NewParticipant(i, "brawler", 3, lives))
	}
	return out
}

func TestBrawlDamageGoesToHealth(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	participants := brawlParticipants(4, 0)
	ctx := round.NewContext(participants)

	b := NewBrawl()
	if err := b.Setup(host, ctx); err != nil {
		t.Fatal(err)
	}
	b.Start()

	victim := ctx.Participant(2)
	b.HandleDamage(victim, round.Report{VictimID: 2, AttackerID: 1, Amount: 1, Source: "test"})
	if victim.Health != 2 {
		t.Errorf("expected health 2, got %d", victim.Health)
	}
	if len(host.ended) != 0 {
		t.Error("a scratch should not end the round")
	}
}

func TestBrawlLastOneStandingWins(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	participants := brawlParticipants(3, 0)
	ctx := round.NewContext(participants)

	b := NewBrawl()
	if err := b.Setup(host, ctx); err != nil {
		t.Fatal(err)
	}
	b.Start()

	kill := func(id int) {
		b.HandleDamage(ctx.Participant(id), round.Report{VictimID: id, AttackerID: 3, Amount: 99})
	}
	kill(1)
	if len(host.ended) != 0 {
		t.Fatal("round ended with two participants standing")
	}
	kill(2)

	if len(host.ended) != 1 {
		t.Fatalf("expected one end, got %d", len(host.ended))
	}
	res := host.ended[0]
	if res.Outcome != round.OutcomeVictory {
		t.Errorf("expected victory, got %s", res.Outcome)
	}
	if len(res.Winners) != 1 || res.Winners[0] != 3 {
		t.Errorf("expected winner [3], got %v", res.Winners)
	}

	// Damage to an eliminated participant is skipped entirely.
	before := ctx.Participant(1).Health
	kill(1)
	if ctx.Participant(1).Health != before {
		t.Error("eliminated participant took damage")
	}
}

func TestBrawlLivesAllowRespawn(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	participants := brawlParticipants(2, 1)
	ctx := round.NewContext(participants)

	b := NewBrawl()
	if err := b.Setup(host, ctx); err != nil {
		t.Fatal(err)
	}
	b.Start()

	victim := ctx.Participant(1)
	b.HandleDamage(victim, round.Report{VictimID: 1, AttackerID: 2, Amount: 99})

	if !victim.Alive || victim.Health != victim.MaxHealth {
		t.Error("victim with a life left should respawn at full health")
	}
	if victim.Lives != 0 {
		t.Errorf("respawn should consume the life, got %d", victim.Lives)
	}
	if len(host.ended) != 0 {
		t.Error("respawn should not end the round")
	}

	// Out of lives: the next death eliminates and ends the round.
	b.HandleDamage(victim, round.Report{VictimID: 1, AttackerID: 2, Amount: 99})
	if len(host.ended) != 1 {
		t.Fatalf("expected the round to end, got %d ends", len(host.ended))
	}
}

func TestBrawlRespawnGateBlocks(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	participants := brawlParticipants(2, 5)
	ctx := round.NewContext(participants)

	b := NewBrawl()
	if err := b.Setup(host, ctx); err != nil {
		t.Fatal(err)
	}
	b.Start()

	gate, ok := ctx.Standard(round.KindRespawnGate).(*round.RespawnGate)
	if !ok {
		t.Fatal("brawl should have a respawn gate")
	}
	gate.Deny(1)

	victim := ctx.Participant(1)
	b.HandleDamage(victim, round.Report{VictimID: 1, AttackerID: 2, Amount: 99})

	if victim.Alive {
		t.Error("gated participant should stay down despite spare lives")
	}
	if len(host.ended) != 1 {
		t.Errorf("expected the round to end, got %d ends", len(host.ended))
	}
}
