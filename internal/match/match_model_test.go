package match

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRefDecodesEveryShape(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain string", `"Tigers"`, "Tigers"},
		{"teamName object", `{"teamName":"Tigers"}`, "Tigers"},
		{"legacy name object", `{"name":"Tigers"}`, "Tigers"},
		{"teamName wins over name", `{"teamName":"Tigers","name":"Old Tigers"}`, "Tigers"},
		{"whitespace trimmed", `"  Tigers  "`, "Tigers"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var ref TeamRef
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &ref))
			assert.Equal(t, tc.want, ref.Name())
		})
	}
}

func TestTeamRefSnapshot(t *testing.T) {
	var ref TeamRef
	require.NoError(t, json.Unmarshal([]byte(`{"teamName":"Tigers","runs":80,"wickets":3,"balls":60}`), &ref))
	sc, ok := ref.Snapshot()
	require.True(t, ok)
	assert.Equal(t, Score{Runs: 80, Wickets: 3, Balls: 60}, sc)

	_, ok = TeamRef{TeamName: "Lions"}.Snapshot()
	assert.False(t, ok)
}

func TestOverCountTolerantDecoding(t *testing.T) {
	tests := []struct {
		raw  string
		want OverCount
	}{
		{`6`, 6},
		{`"6"`, 6},
		{`" 10 "`, 10},
		{`"not a number"`, 0},
		{`null`, 0},
	}
	for _, tc := range tests {
		var o OverCount
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &o))
		assert.Equal(t, tc.want, o, "raw: %s", tc.raw)
	}
}

func TestScoreDisplay(t *testing.T) {
	sc := Score{Runs: 97, Wickets: 4, Balls: 44}
	assert.Equal(t, "97/4", sc.Display())
	assert.Equal(t, "7.2", sc.OversDisplay())
}

func TestMatchCompletedSpellings(t *testing.T) {
	assert.True(t, (&Match{Status: StatusCompleted}).Completed())
	assert.True(t, (&Match{Status: "complete"}).Completed())
	assert.False(t, (&Match{Status: StatusLive}).Completed())
}

func TestMatchRosterAndPlayerName(t *testing.T) {
	m := &Match{
		TeamA: TeamRef{TeamName: "Tigers"},
		Players: map[string][]Player{
			"teamA": {{ID: "t1", Name: "Tushar"}},
			"teamB": {{ID: "l1", Name: "Lalit"}},
		},
	}
	assert.Equal(t, "Tushar", m.PlayerName("t1"))
	assert.Equal(t, "Lalit", m.PlayerName("l1"))
	assert.Equal(t, "ghost", m.PlayerName("ghost"), "unknown ids fall back to the id")
	assert.Len(t, m.Roster(SideA), 1)
	assert.Nil(t, (&Match{}).Roster(SideA))
}
