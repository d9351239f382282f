package auditlog

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLogAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	input := map[string]any{"address": "1 Main St", "price": 2000}
	result := map[string]any{"status": "success"}

	err := s.Log(ctx, "townhall_submit_location", "location", "success", input, result, 42*time.Millisecond)
	require.NoError(t, err)

	records, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "townhall_submit_location", r.Tool)
	assert.Equal(t, "location", r.Action)
	assert.Equal(t, "success", r.Status)
	assert.Equal(t, int64(42), r.DurationMS)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(r.Input, &decoded))
	assert.Equal(t, "1 Main St", decoded["address"])
}

func TestRecentNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, status := range []string{"success", "validation_error", "error"} {
		require.NoError(t, s.Log(ctx, "townhall_submit", "", status, nil, nil, 0))
		time.Sleep(2 * time.Millisecond)
	}

	records, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "error", records[0].Status)
	assert.Equal(t, "validation_error", records[1].Status)
	assert.Equal(t, "success", records[2].Status)
}

func TestRecentLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Log(ctx, "townhall_submit_maturity", "project-maturity", "success", nil, nil, 0))
	}

	records, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestNilStoreIsNoop(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Log(context.Background(), "townhall_submit", "", "success", nil, nil, 0))

	records, err := s.Recent(context.Background(), 10)
	assert.NoError(t, err)
	assert.Nil(t, records)

	assert.NoError(t, s.Close())
}
