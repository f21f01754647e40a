package match

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/KiranBagal-17/gully/internal/store"
)

const matchesCollection = "matches"

// MatchRepository defines methods to interact with match documents.
type MatchRepository interface {
	CreateMatch(ctx context.Context, m *Match) (string, error)
	GetMatchByID(ctx context.Context, id string) (*Match, error)
	GetMatches(ctx context.Context) ([]*Match, error)
	GetTournamentMatches(ctx context.Context, tournamentID string) ([]*Match, error)
	PatchMatch(ctx context.Context, id string, fields map[string]interface{}) error
	PatchLive(ctx context.Context, id string, fields map[string]interface{}) error
	AppendBall(ctx context.Context, id string, ev BallEvent) (string, error)
	LastBalls(ctx context.Context, id string, limit int) ([]BallEvent, error)
	EnsurePlayerStat(ctx context.Context, id, playerID string) error
	IncrementPlayerStat(ctx context.Context, id, playerID string, delta PlayerStat) error
	WatchMatch(id string, fn func(*Match)) (func(), error)
}

// StoreMatchRepository implements MatchRepository over a document store.
type StoreMatchRepository struct {
	store store.Store
}

func NewStoreMatchRepository(st store.Store) *StoreMatchRepository {
	return &StoreMatchRepository{store: st}
}

func matchPath(id string) string {
	return matchesCollection + "/" + id
}

func livePath(id string) string {
	return matchPath(id) + "/live"
}

// CreateMatch appends the match to the collection and returns its generated
// id.
func (r *StoreMatchRepository) CreateMatch(ctx context.Context, m *Match) (string, error) {
	key, err := r.store.Append(ctx, matchesCollection, m)
	if err != nil {
		return "", err
	}
	m.ID = key
	return key, nil
}

// GetMatchByID returns (nil, nil) when the match does not exist.
func (r *StoreMatchRepository) GetMatchByID(ctx context.Context, id string) (*Match, error) {
	var m Match
	found, err := r.store.Read(ctx, matchPath(id), &m)
	if err != nil || !found {
		return nil, err
	}
	m.ID = id
	return &m, nil
}

// GetMatches returns every match ordered by insertion key, which is
// creation order.
func (r *StoreMatchRepository) GetMatches(ctx context.Context) ([]*Match, error) {
	raw := map[string]*Match{}
	if _, err := r.store.Read(ctx, matchesCollection, &raw); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Match, 0, len(keys))
	for _, k := range keys {
		m := raw[k]
		if m == nil {
			continue
		}
		m.ID = k
		out = append(out, m)
	}
	return out, nil
}

func (r *StoreMatchRepository) GetTournamentMatches(ctx context.Context, tournamentID string) ([]*Match, error) {
	all, err := r.GetMatches(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Match, 0, len(all))
	for _, m := range all {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *StoreMatchRepository) PatchMatch(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.store.Patch(ctx, matchPath(id), fields)
}

func (r *StoreMatchRepository) PatchLive(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.store.Patch(ctx, livePath(id), fields)
}

// AppendBall pushes the event onto the match's ball log and returns the
// time-ordered key it was stored under.
func (r *StoreMatchRepository) AppendBall(ctx context.Context, id string, ev BallEvent) (string, error) {
	return r.store.Append(ctx, livePath(id)+"/ballsHistory", ev)
}

// LastBalls returns up to limit most recent ball events, oldest first.
func (r *StoreMatchRepository) LastBalls(ctx context.Context, id string, limit int) ([]BallEvent, error) {
	history := map[string]BallEvent{}
	if _, err := r.store.Read(ctx, livePath(id)+"/ballsHistory", &history); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(history))
	for k := range history {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[len(keys)-limit:]
	}
	out := make([]BallEvent, 0, len(keys))
	for _, k := range keys {
		out = append(out, history[k])
	}
	return out, nil
}

// EnsurePlayerStat writes a zeroed stat record for the player unless one
// already exists, so later increments always have a base.
func (r *StoreMatchRepository) EnsurePlayerStat(ctx context.Context, id, playerID string) error {
	path := livePath(id) + "/playerStats/" + playerID
	var existing PlayerStat
	found, err := r.store.Read(ctx, path, &existing)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	return r.store.Write(ctx, path, PlayerStat{})
}

// IncrementPlayerStat applies delta with a read-modify-write. The ledger is
// driven by a single scorer per match, which is what makes this safe; a
// retried write after a lost acknowledgement can double-count, and that is
// accepted rather than guarded against.
func (r *StoreMatchRepository) IncrementPlayerStat(ctx context.Context, id, playerID string, delta PlayerStat) error {
	path := livePath(id) + "/playerStats/" + playerID
	var current PlayerStat
	if _, err := r.store.Read(ctx, path, &current); err != nil {
		return err
	}
	current.Add(delta)
	return r.store.Write(ctx, path, current)
}

// WatchMatch subscribes to the match document. fn fires once immediately
// with the current state and again on every change; a nil match means the
// document does not exist. The returned func cancels the subscription.
func (r *StoreMatchRepository) WatchMatch(id string, fn func(*Match)) (func(), error) {
	return r.store.Subscribe(matchPath(id), func(raw json.RawMessage) {
		if len(raw) == 0 || string(raw) == "null" {
			fn(nil)
			return
		}
		var m Match
		if err := json.Unmarshal(raw, &m); err != nil {
			return
		}
		m.ID = id
		fn(&m)
	})
}
