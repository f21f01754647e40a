package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreWriteRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	type doc struct {
		Name string `json:"name"`
		Runs int    `json:"runs"`
	}

	require.NoError(t, s.Write(ctx, "matches/m1", doc{Name: "Tigers", Runs: 42}))

	var got doc
	found, err := s.Read(ctx, "matches/m1", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Tigers", got.Name)
	assert.Equal(t, 42, got.Runs)

	found, err = s.Read(ctx, "matches/nope", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStorePatchSlashKeys(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "matches/m1", map[string]interface{}{
		"live": map[string]interface{}{
			"scoreA": map[string]interface{}{"runs": 10, "balls": 12},
		},
	}))
	require.NoError(t, s.Patch(ctx, "matches/m1/live", map[string]interface{}{
		"scoreA/runs":      14,
		"currentOverBalls": 1,
	}))

	var live struct {
		ScoreA struct {
			Runs  int `json:"runs"`
			Balls int `json:"balls"`
		} `json:"scoreA"`
		CurrentOverBalls int `json:"currentOverBalls"`
	}
	found, err := s.Read(ctx, "matches/m1/live", &live)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 14, live.ScoreA.Runs)
	assert.Equal(t, 12, live.ScoreA.Balls, "sibling field untouched")
	assert.Equal(t, 1, live.CurrentOverBalls)
}

func TestMemoryStoreNilDeletes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "matches/m1", map[string]interface{}{"status": "live"}))
	require.NoError(t, s.Patch(ctx, "matches/m1", map[string]interface{}{"status": nil}))

	var m map[string]interface{}
	found, err := s.Read(ctx, "matches/m1", &m)
	require.NoError(t, err)
	require.True(t, found)
	_, ok := m["status"]
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "matches/m1", nil))
	found, err = s.Read(ctx, "matches/m1", &m)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreAppendOrdering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var keys []string
	for i := 0; i < 20; i++ {
		key, err := s.Append(ctx, "matches/m1/live/ballsHistory", map[string]interface{}{"runs": i})
		require.NoError(t, err)
		keys = append(keys, key)
	}
	for i := 1; i < len(keys); i++ {
		assert.Less(t, keys[i-1], keys[i], "push keys must sort in insertion order")
	}
}

func TestMemoryStoreSubscribe(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "matches/m1", map[string]interface{}{"status": "upcoming"}))

	var fired []string
	cancel, err := s.Subscribe("matches/m1", func(raw json.RawMessage) {
		fired = append(fired, string(raw))
	})
	require.NoError(t, err)
	defer cancel()

	require.Len(t, fired, 1, "subscription fires immediately with current state")
	assert.Contains(t, fired[0], "upcoming")

	require.NoError(t, s.Patch(ctx, "matches/m1", map[string]interface{}{"status": "live"}))
	require.Len(t, fired, 2)
	assert.Contains(t, fired[1], "live")

	// A mutation below the subscribed path still notifies.
	require.NoError(t, s.Write(ctx, "matches/m1/live", map[string]interface{}{"currentOverBalls": 0}))
	assert.Len(t, fired, 3)

	// Unrelated paths do not.
	require.NoError(t, s.Write(ctx, "matches/m2", map[string]interface{}{"status": "upcoming"}))
	assert.Len(t, fired, 3)

	cancel()
	require.NoError(t, s.Patch(ctx, "matches/m1", map[string]interface{}{"status": "completed"}))
	assert.Len(t, fired, 3, "cancelled subscription stops firing")
}
