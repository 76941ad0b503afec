package modes

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rumpusparty/rumpus/pkg/round"
)

func flashParticipants(n int) []*round.Participant {
	out := make([]*round.Participant, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, round.NewParticipant(i, fmt.Sprintf("tapper-%d", i), 5, 0))
	}
	return out
}

func TestFlashInputScoresPanel(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	ctx := round.NewContext(flashParticipants(2))

	f := NewFlash()
	require.NoError(t, f.Setup(host, ctx))
	f.Start()

	require.True(t, f.HandleInput(1, round.Input{Kind: "tap", Value: 2}))
	require.True(t, f.HandleInput(1, round.Input{Kind: "tap", Value: 1}))
	require.Equal(t, 3, f.Panel(1).Score)
	require.Equal(t, 0, f.Panel(2).Score)

	// Unknown participants never get a panel.
	require.False(t, f.HandleInput(99, round.Input{Kind: "tap", Value: 1}))
}

func TestFlashInputHookRejects(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	ctx := round.NewContext(flashParticipants(1))

	f := NewFlash()
	f.OnInput = func(participantID int, input round.Input) bool {
		return input.Kind == "tap"
	}
	require.NoError(t, f.Setup(host, ctx))
	f.Start()

	require.False(t, f.HandleInput(1, round.Input{Kind: "swipe", Value: 5}))
	require.Equal(t, 0, f.Panel(1).Score)

	require.True(t, f.HandleInput(1, round.Input{Kind: "tap", Value: 5}))
	require.Equal(t, 5, f.Panel(1).Score)
}

func TestFlashDamageDrainsScore(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	participants := flashParticipants(2)
	ctx := round.NewContext(participants)

	f := NewFlash()
	require.NoError(t, f.Setup(host, ctx))
	f.Start()

	require.True(t, f.HandleInput(1, round.Input{Kind: "tap", Value: 3}))
	f.HandleDamage(participants[0], round.Report{VictimID: 1, AttackerID: 2, Amount: 2})
	require.Equal(t, 1, f.Panel(1).Score)

	// Scores floor at zero and health is untouched.
	f.HandleDamage(participants[0], round.Report{VictimID: 1, AttackerID: 2, Amount: 99})
	require.Equal(t, 0, f.Panel(1).Score)
	require.Equal(t, participants[0].MaxHealth, participants[0].Health)
}

func TestFlashCrownFollowsLeader(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	ctx := round.NewContext(flashParticipants(2))

	f := NewFlash()
	require.NoError(t, f.Setup(host, ctx))
	f.Start()

	crown, ok := ctx.Standard(round.KindCrown).(*round.CrownTracker)
	require.True(t, ok)

	require.True(t, f.HandleInput(1, round.Input{Kind: "tap", Value: 2}))
	require.Equal(t, 1, crown.Holder())

	require.True(t, f.HandleInput(2, round.Input{Kind: "tap", Value: 5}))
	require.Equal(t, 2, crown.Holder())
}

func TestFlashCountdownTimesOut(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	ctx := round.NewContext(flashParticipants(3))

	f := NewFlash()
	f.Countdown = 30 * time.Millisecond
	require.NoError(t, f.Setup(host, ctx))
	f.Start()

	require.True(t, f.HandleInput(2, round.Input{Kind: "tap", Value: 4}))
	require.True(t, f.HandleInput(3, round.Input{Kind: "tap", Value: 1}))

	require.Eventually(t, func() bool {
		return len(host.Ended()) == 1
	}, time.Second, 5*time.Millisecond, "countdown never ended the round")

	res := host.Ended()[0]
	require.Equal(t, round.OutcomeTimeout, res.Outcome)
	require.Equal(t, []int{2}, res.Winners)
	require.Len(t, res.Participants, 3)
	require.Equal(t, 4, res.Stats["tapper-2"])
}

func TestFlashPauseHoldsCountdown(t *testing.T) {
	host := &mockHost{phase: round.PhaseActive}
	ctx := round.NewContext(flashParticipants(1))

	f := NewFlash()
	f.Countdown = 40 * time.Millisecond
	require.NoError(t, f.Setup(host, ctx))
	f.Start()
	f.Pause()

	time.Sleep(80 * time.Millisecond)
	require.Empty(t, host.Ended(), "paused countdown still fired")

	f.Resume()
	require.Eventually(t, func() bool {
		return len(host.Ended()) == 1
	}, time.Second, 5*time.Millisecond, "resumed countdown never fired")
}
