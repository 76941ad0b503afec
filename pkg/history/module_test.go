package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testEntry() Entry {
	return Entry{
		Sequence:     7,
		RoundType:    "brawl",
		Outcome:      "victory",
		Participants: []int{1, 2, 3},
		Winners:      []int{2},
		Duration:     90 * time.Second,
		EndedAt:      time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
	}
}

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(testEntry())
	require.NoError(t, err)

	entry, err := Decode(data)
	require.NoError(t, err)

	want := testEntry()
	require.Equal(t, want.Sequence, entry.Sequence)
	require.Equal(t, want.RoundType, entry.RoundType)
	require.Equal(t, want.Outcome, entry.Outcome)
	require.Equal(t, want.Participants, entry.Participants)
	require.Equal(t, want.Winners, entry.Winners)
	require.Equal(t, want.Duration, entry.Duration)
	require.True(t, entry.EndedAt.Equal(want.EndedAt))
}

func TestFSStore(t *testing.T) {
	ctx := context.Background()
	store := FSStore(t.TempDir())

	_, err := store.Get(ctx, "7")
	require.ErrorIs(t, err, Missing)

	data, err := Encode(testEntry())
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "7", data))

	found, err := store.Get(ctx, "7")
	require.NoError(t, err)

	entry, err := Decode(found)
	require.NoError(t, err)
	require.Equal(t, uint64(7), entry.Sequence)
	require.Equal(t, []int{2}, entry.Winners)
}
