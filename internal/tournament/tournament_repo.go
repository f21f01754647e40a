package tournament

import (
	"context"
	"sort"

	"github.com/KiranBagal-17/gully/internal/store"
)

const tournamentsCollection = "tournaments"

// TournamentRepository defines methods to interact with tournament
// documents.
type TournamentRepository interface {
	CreateTournament(ctx context.Context, t *Tournament) (string, error)
	GetTournamentByID(ctx context.Context, id string) (*Tournament, error)
	GetTournaments(ctx context.Context) ([]*Tournament, error)
	PatchTournament(ctx context.Context, id string, fields map[string]interface{}) error
}

// StoreTournamentRepository implements TournamentRepository over a document
// store.
type StoreTournamentRepository struct {
	store store.Store
}

func NewStoreTournamentRepository(st store.Store) *StoreTournamentRepository {
	return &StoreTournamentRepository{store: st}
}

func tournamentPath(id string) string {
	return tournamentsCollection + "/" + id
}

func (r *StoreTournamentRepository) CreateTournament(ctx context.Context, t *Tournament) (string, error) {
	key, err := r.store.Append(ctx, tournamentsCollection, t)
	if err != nil {
		return "", err
	}
	t.ID = key
	return key, nil
}

// GetTournamentByID returns (nil, nil) when the tournament does not exist.
func (r *StoreTournamentRepository) GetTournamentByID(ctx context.Context, id string) (*Tournament, error) {
	var t Tournament
	found, err := r.store.Read(ctx, tournamentPath(id), &t)
	if err != nil || !found {
		return nil, err
	}
	t.ID = id
	return &t, nil
}

func (r *StoreTournamentRepository) GetTournaments(ctx context.Context) ([]*Tournament, error) {
	raw := map[string]*Tournament{}
	if _, err := r.store.Read(ctx, tournamentsCollection, &raw); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Tournament, 0, len(keys))
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

func (r *StoreTournamentRepository) PatchTournament(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.store.Patch(ctx, tournamentPath(id), fields)
}
