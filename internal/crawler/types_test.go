package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutcome_Validate(t *testing.T) {
	t.Parallel()

	player := &Player{URL: "https://example.com/players/1"}

	cases := []struct {
		name    string
		outcome Outcome
		wantErr error
	}{
		{
			name:    "result only",
			outcome: Outcome{URL: "u", Tries: 1, Result: player},
		},
		{
			name:    "error only",
			outcome: Outcome{URL: "u", Tries: 3, Error: "timeout"},
		},
		{
			name:    "neither",
			outcome: Outcome{URL: "u", Tries: 1},
			wantErr: ErrInvalidOutcome,
		},
		{
			name:    "both",
			outcome: Outcome{URL: "u", Tries: 1, Result: player, Error: "timeout"},
			wantErr: ErrInvalidOutcome,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.outcome.Validate()
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPlayer_Merge(t *testing.T) {
	t.Parallel()

	base := Player{
		URL:      "https://example.com/players/7",
		Name:     "A. Keeper",
		Team:     "Rovers",
		Position: "GK",
	}
	partial := Player{
		URL:       "https://example.com/players/7",
		Name:      "Alex Keeper",
		Height:    "191cm",
		BirthDate: "1998-03-14",
	}

	merged := base.Merge(partial)

	require.Equal(t, "Alex Keeper", merged.Name)
	require.Equal(t, "Rovers", merged.Team, "empty fields must not clobber existing data")
	require.Equal(t, "GK", merged.Position)
	require.Equal(t, "191cm", merged.Height)
	require.Equal(t, "1998-03-14", merged.BirthDate)

	// Receiver stays untouched.
	require.Empty(t, base.Height)
}

func TestPlayer_MergeIsIdempotent(t *testing.T) {
	t.Parallel()

	base := Player{URL: "https://example.com/players/9", Team: "United"}
	partial := Player{URL: "https://example.com/players/9", Name: "B. Winger", Weight: "74kg"}

	once := base.Merge(partial)
	twice := once.Merge(partial)
	require.Equal(t, once, twice)
}
