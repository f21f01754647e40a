package team

import (
	"context"
	"sort"

	"github.com/KiranBagal-17/gully/internal/match"
	"github.com/KiranBagal-17/gully/internal/store"
)

const teamsCollection = "teams"

// TeamRepository defines the interface for team data operations
type TeamRepository interface {
	CreateTeam(ctx context.Context, t *Team) (string, error)
	GetTeamByID(ctx context.Context, id string) (*Team, error)
	GetTeams(ctx context.Context) ([]*Team, error)
	PatchTeam(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteTeam(ctx context.Context, id string) error
}

// StoreTeamRepository implements TeamRepository over a document store.
type StoreTeamRepository struct {
	store store.Store
}

func NewStoreTeamRepository(st store.Store) *StoreTeamRepository {
	return &StoreTeamRepository{store: st}
}

func teamPath(id string) string {
	return teamsCollection + "/" + id
}

func (r *StoreTeamRepository) CreateTeam(ctx context.Context, t *Team) (string, error) {
	key, err := r.store.Append(ctx, teamsCollection, t)
	if err != nil {
		return "", err
	}
	t.ID = key
	return key, nil
}

// GetTeamByID returns (nil, nil) when the team does not exist.
func (r *StoreTeamRepository) GetTeamByID(ctx context.Context, id string) (*Team, error) {
	var t Team
	found, err := r.store.Read(ctx, teamPath(id), &t)
	if err != nil || !found {
		return nil, err
	}
	t.ID = id
	return &t, nil
}

func (r *StoreTeamRepository) GetTeams(ctx context.Context) ([]*Team, error) {
	raw := map[string]*Team{}
	if _, err := r.store.Read(ctx, teamsCollection, &raw); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Team, 0, len(keys))
	for _, k := range keys {
		t := raw[k]
		if t == nil {
			continue
		}
		t.ID = k
		out = append(out, t)
	}
	return out, nil
}

func (r *StoreTeamRepository) PatchTeam(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.store.Patch(ctx, teamPath(id), fields)
}

func (r *StoreTeamRepository) DeleteTeam(ctx context.Context, id string) error {
	return r.store.Write(ctx, teamPath(id), nil)
}

// RosterSource adapts the repository for toss-time squad lookup: the toss can
// name a registered team by id instead of restating its players.
type RosterSource struct {
	repo TeamRepository
}

func NewRosterSource(repo TeamRepository) *RosterSource {
	return &RosterSource{repo: repo}
}

func (s *RosterSource) Roster(ctx context.Context, teamID string) (*match.RosterInput, error) {
	t, err := s.repo.GetTeamByID(ctx, teamID)
	if err != nil || t == nil {
		return nil, err
	}
	in := t.RosterInput()
	return &in, nil
}
