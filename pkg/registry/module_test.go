package registry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rumpusparty/rumpus/pkg/config"
	"github.com/rumpusparty/rumpus/pkg/history"
	"github.com/rumpusparty/rumpus/pkg/round"
)

type testMode struct {
	bp round.Blueprint
}

func (m *testMode) Blueprint() round.Blueprint { return m.bp }

func (m *testMode) Setup(host round.Host, ctx *round.Context) error { return nil }

func (m *testMode) Start() {}

func (m *testMode) HandleDamage(victim *round.Participant, report round.Report) {
	victim.ApplyDamage(report.Amount)
}

func (m *testMode) End(*round.Result) {}

func testBlueprint() round.Blueprint {
	return round.Blueprint{
		ID:         "test",
		Name:       "Test",
		Tag:        "test",
		MinPlayers: 1,
		MaxPlayers: 4,
		Enabled:    true,
	}
}

func testRegistry(t *testing.T) *Registry {
	r := New(nil, nil)
	bp := testBlueprint()
	require.NoError(t, r.Register(bp, func() round.Mode {
		return &testMode{bp: bp}
	}))
	return r
}

func participants(n int) []*round.Participant {
	out := make([]*round.Participant, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, round.NewParticipant(i, fmt.Sprintf("player-%d", i), 5, 1))
	}
	return out
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := testRegistry(t)
	require.Error(t, r.Register(testBlueprint(), func() round.Mode {
		return &testMode{bp: testBlueprint()}
	}))
	require.Len(t, r.Blueprints(), 1)
}

func TestLaunchWithinBounds(t *testing.T) {
	r := testRegistry(t)

	driver := r.Launch("test", round.NewContext(participants(4)))
	require.NotNil(t, driver)
	require.Equal(t, round.PhaseActive, driver.Phase())
	require.Equal(t, driver, r.Active())

	r.EndCurrent()
}

func TestLaunchRejectsTooManyPlayers(t *testing.T) {
	r := testRegistry(t)

	driver := r.Launch("test", round.NewContext(participants(5)))
	require.Nil(t, driver)
	require.Nil(t, r.Active())
	require.Empty(t, r.Recent())
}

func TestLaunchRejectsUnknownAndDisabled(t *testing.T) {
	r := testRegistry(t)

	require.Nil(t, r.Launch("bogus", round.NewContext(participants(2))))

	r.Configure([]config.RoundType{{ID: "test", Enabled: false}})
	require.Nil(t, r.Launch("test", round.NewContext(participants(2))))
}

func TestSingleActiveRound(t *testing.T) {
	r := testRegistry(t)

	first := r.Launch("test", round.NewContext(participants(2)))
	require.NotNil(t, first)

	second := r.Launch("test", round.NewContext(participants(2)))
	require.Nil(t, second)
	require.Equal(t, first, r.Active())

	// Ending the first frees the slot.
	r.EndCurrent()
	require.Nil(t, r.Active())

	third := r.Launch("test", round.NewContext(participants(2)))
	require.NotNil(t, third)
	r.EndCurrent()
}

func TestEndCurrentRecordsHistory(t *testing.T) {
	r := testRegistry(t)

	require.NotNil(t, r.Launch("test", round.NewContext(participants(3))))
	r.EndCurrent()

	recent := r.Recent()
	require.Len(t, recent, 1)
	require.Equal(t, uint64(1), recent[0].Sequence)
	require.Equal(t, "test", recent[0].RoundType)
	require.Equal(t, "abandoned", recent[0].Outcome)
	require.Len(t, recent[0].Participants, 3)

	// EndCurrent with nothing active is a no-op.
	r.EndCurrent()
	require.Len(t, r.Recent(), 1)
}

func TestNaturalEndFreesTheSlot(t *testing.T) {
	r := testRegistry(t)

	driver := r.Launch("test", round.NewContext(participants(2)))
	require.NotNil(t, driver)

	driver.End(round.NewResult(round.OutcomeVictory, []int{1, 2}, []int{1}))

	require.Eventually(t, func() bool {
		return r.Active() == nil
	}, time.Second, 5*time.Millisecond, "ended round never released the slot")

	recent := r.Recent()
	require.Len(t, recent, 1)
	require.Equal(t, "victory", recent[0].Outcome)
	require.Equal(t, []int{1}, recent[0].Winners)
}

func TestRecentRingIsBounded(t *testing.T) {
	r := testRegistry(t)
	r.SetRecentCap(2)

	for i := 0; i < 3; i++ {
		require.NotNil(t, r.Launch("test", round.NewContext(participants(2))))
		r.EndCurrent()
	}

	recent := r.Recent()
	require.Len(t, recent, 2)
	require.Equal(t, uint64(2), recent[0].Sequence)
	require.Equal(t, uint64(3), recent[1].Sequence)
}

func TestStoreArchivesFinishedRounds(t *testing.T) {
	r := testRegistry(t)
	store := history.FSStore(t.TempDir())
	r.SetStore(store)

	require.NotNil(t, r.Launch("test", round.NewContext(participants(2))))
	r.EndCurrent()

	data, err := store.Get(context.Background(), "1")
	require.NoError(t, err)

	entry, err := history.Decode(data)
	require.NoError(t, err)
	require.Equal(t, uint64(1), entry.Sequence)
	require.Equal(t, "test", entry.RoundType)
	require.Equal(t, "abandoned", entry.Outcome)
}

func TestDamageReachesActiveRound(t *testing.T) {
	r := testRegistry(t)

	people := participants(2)
	require.NotNil(t, r.Launch("test", round.NewContext(people)))

	r.Damage().Deliver(round.Report{VictimID: 2, AttackerID: 1, Amount: 2, Source: "test"})
	require.Equal(t, 3, people[1].Health)

	r.EndCurrent()
}
