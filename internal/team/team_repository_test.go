package team

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KiranBagal-17/gully/internal/match"
	"github.com/KiranBagal-17/gully/internal/store"
)

func newTestRepo() *StoreTeamRepository {
	return NewStoreTeamRepository(store.NewMemoryStore())
}

func TestTeamLifecycle(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	squad := &Team{
		Name:        "Tigers",
		CaptainName: "Tushar",
		Players: []match.Player{
			{ID: "t1", Name: "Tushar"},
			{ID: "t2", Name: "Tanmay"},
		},
		CreatedBy: "user-1",
		CreatedAt: nowISO(),
	}
	id, err := repo.CreateTeam(ctx, squad)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.GetTeamByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tigers", got.Name)
	assert.Len(t, got.Players, 2)

	require.NoError(t, repo.PatchTeam(ctx, id, map[string]interface{}{"name": "Royal Tigers"}))
	got, err = repo.GetTeamByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Royal Tigers", got.Name)
	assert.Equal(t, "Tushar", got.CaptainName, "patch leaves other fields alone")

	require.NoError(t, repo.DeleteTeam(ctx, id))
	got, err = repo.GetTeamByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetTeamsSortedByCreation(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	for _, name := range []string{"Tigers", "Lions", "Panthers"} {
		_, err := repo.CreateTeam(ctx, &Team{Name: name})
		require.NoError(t, err)
	}

	teams, err := repo.GetTeams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 3)
	assert.Equal(t, "Tigers", teams[0].Name)
	assert.Equal(t, "Lions", teams[1].Name)
	assert.Equal(t, "Panthers", teams[2].Name)
}

func TestRosterSourceResolvesSavedTeam(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	id, err := repo.CreateTeam(ctx, &Team{
		Name:        "Tigers",
		CaptainName: "Tushar",
		Players:     []match.Player{{ID: "t1", Name: "Tushar"}, {ID: "t2", Name: "Tanmay"}},
	})
	require.NoError(t, err)

	var src match.RosterSource = NewRosterSource(repo)
	in, err := src.Roster(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, in)
	assert.Equal(t, id, in.ID)
	assert.Equal(t, "Tigers", in.TeamName)
	assert.Equal(t, "Tushar", in.CaptainName)
	assert.Len(t, in.Players, 2)

	in, err = src.Roster(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, in, "unknown ids resolve to nothing")
}

func TestRosterInputFeedsToss(t *testing.T) {
	squad := &Team{
		ID:          "team-1",
		Name:        "Tigers",
		CaptainName: "Tushar",
		Players:     []match.Player{{ID: "t1", Name: "Tushar"}},
	}
	in := squad.RosterInput()
	assert.Equal(t, "team-1", in.ID)
	assert.Equal(t, "Tigers", in.TeamName)
	assert.Equal(t, "Tushar", in.CaptainName)
	assert.Len(t, in.Players, 1)
}
