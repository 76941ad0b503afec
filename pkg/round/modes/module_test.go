package modes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefinitionsAreWellFormed(t *testing.T) {
	defs := Definitions()
	require.Len(t, defs, 3)

	seen := map[string]bool{}
	for _, def := range defs {
		require.NotEmpty(t, def.Blueprint.ID)
		require.False(t, seen[def.Blueprint.ID], "duplicate id %s", def.Blueprint.ID)
		seen[def.Blueprint.ID] = true

		mode := def.New()
		require.Equal(t, def.Blueprint.ID, mode.Blueprint().ID)
	}
}

func TestNewByID(t *testing.T) {
	mode, err := New("gambit")
	require.NoError(t, err)
	require.IsType(t, &Gambit{}, mode)

	_, err = New("bingo")
	require.Error(t, err)
}
