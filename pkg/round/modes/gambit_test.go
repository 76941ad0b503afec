package modes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rumpusparty/rumpus/pkg/round"
)

func gambitParticipants(n int) []*round.Participant {
	out := make([]*round.Participant, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, round.NewParticipant(i, "schemer", 5, 0))
	}
	return out
}

func TestGambitTurnOrder(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	ctx := round.NewContext(gambitParticipants(3))

	g := NewGambit()
	require.NoError(t, g.Setup(host, ctx))
	g.Start()

	require.Equal(t, []int{1, 2, 3}, g.TurnOrder())
	require.Equal(t, 1, g.CurrentTurn())

	require.True(t, g.SubmitMove(Move{ParticipantID: 1, Action: "pass"}))
	require.Equal(t, 2, g.CurrentTurn())

	// Only the current participant may move.
	require.False(t, g.SubmitMove(Move{ParticipantID: 1, Action: "pass"}))
	require.Equal(t, 2, g.CurrentTurn())
	require.Len(t, g.History(), 1)
}

func TestGambitShuffledOrderIsPermutation(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	ctx := round.NewContext(gambitParticipants(5))

	g := NewGambit()
	g.Shuffle = true
	g.Seed = 42
	require.NoError(t, g.Setup(host, ctx))

	order := g.TurnOrder()
	require.Len(t, order, 5)
	seen := map[int]bool{}
	for _, id := range order {
		require.False(t, seen[id], "duplicate id %d in order", id)
		seen[id] = true
	}
	for i := 1; i <= 5; i++ {
		require.True(t, seen[i], "id %d missing from order", i)
	}

	// The same seed reproduces the order.
	again := NewGambit()
	again.Shuffle = true
	again.Seed = 42
	require.NoError(t, again.Setup(host, round.NewContext(gambitParticipants(5))))
	require.Equal(t, order, again.TurnOrder())
}

func TestGambitTurnCapDraws(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	ctx := round.NewContext(gambitParticipants(3))

	g := NewGambit()
	g.MaxTurns = 1
	require.NoError(t, g.Setup(host, ctx))
	g.Start()

	for id := 1; id <= 3; id++ {
		require.True(t, g.SubmitMove(Move{ParticipantID: id, Action: "pass"}))
	}

	require.Len(t, host.ended, 1)
	res := host.ended[0]
	require.Equal(t, round.OutcomeDraw, res.Outcome)
	require.Empty(t, res.Winners)
	require.Len(t, res.Participants, 3)

	// The round is over, nobody's move is awaited.
	require.Equal(t, -1, g.CurrentTurn())
	require.False(t, g.SubmitMove(Move{ParticipantID: 1, Action: "pass"}))
}

func TestGambitVictoryHookEndsRound(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	ctx := round.NewContext(gambitParticipants(2))

	g := NewGambit()
	g.CheckVictory = func(history []Move) ([]int, bool) {
		for _, m := range history {
			if m.Action == "win" {
				return []int{m.ParticipantID}, true
			}
		}
		return nil, false
	}
	require.NoError(t, g.Setup(host, ctx))
	g.Start()

	require.True(t, g.SubmitMove(Move{ParticipantID: 1, Action: "pass"}))
	require.Empty(t, host.ended)

	require.True(t, g.SubmitMove(Move{ParticipantID: 2, Action: "win"}))
	require.Len(t, host.ended, 1)
	res := host.ended[0]
	require.Equal(t, round.OutcomeVictory, res.Outcome)
	require.Equal(t, []int{2}, res.Winners)
}

func TestGambitVictoryHookWithoutWinnersDraws(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	ctx := round.NewContext(gambitParticipants(2))

	g := NewGambit()
	g.CheckVictory = func(history []Move) ([]int, bool) {
		// A stalemate: the round is over but nobody is ahead.
		return nil, len(history) >= 1
	}
	require.NoError(t, g.Setup(host, ctx))
	g.Start()

	require.True(t, g.SubmitMove(Move{ParticipantID: 1, Action: "pass"}))
	require.Len(t, host.ended, 1)
	res := host.ended[0]
	require.Equal(t, round.OutcomeDraw, res.Outcome)
	require.Empty(t, res.Winners)
}

func TestGambitValidateRejects(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	ctx := round.NewContext(gambitParticipants(2))

	g := NewGambit()
	g.Validate = func(m Move) bool { return m.Action != "cheat" }
	require.NoError(t, g.Setup(host, ctx))
	g.Start()

	require.False(t, g.SubmitMove(Move{ParticipantID: 1, Action: "cheat"}))
	require.Equal(t, 1, g.CurrentTurn())
	require.Empty(t, g.History())
}

func TestGambitTurnTimeoutAppliesDefaultMove(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	ctx := round.NewContext(gambitParticipants(2))

	g := NewGambit()
	g.TurnTime = 20 * time.Millisecond
	g.DefaultMove = func(participantID int) *Move {
		return &Move{Action: "pass"}
	}
	require.NoError(t, g.Setup(host, ctx))
	g.Start()
	defer g.End(nil)

	require.Eventually(t, func() bool {
		return g.CurrentTurn() == 2
	}, time.Second, 5*time.Millisecond, "turn never advanced past the clock")

	history := g.History()
	require.NotEmpty(t, history)
	require.Equal(t, 1, history[0].ParticipantID)
	require.Equal(t, "pass", history[0].Action)
}

func TestGambitDamageLandsOnTurnBoundary(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	ctx := round.NewContext(gambitParticipants(2))

	g := NewGambit()
	require.NoError(t, g.Setup(host, ctx))
	g.Start()

	victim := ctx.Participant(2)
	g.HandleDamage(victim, round.Report{VictimID: 2, AttackerID: 1, Amount: 2})
	require.Equal(t, victim.MaxHealth, victim.Health, "damage applied mid-turn")

	require.True(t, g.SubmitMove(Move{ParticipantID: 1, Action: "pass"}))
	require.Equal(t, 3, victim.Health, "queued damage should land at the turn boundary")
}
