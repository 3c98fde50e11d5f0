package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetSetRemove(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", got)

	require.NoError(t, s.Remove(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAPIKey(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	assert.False(t, s.HasAPIKey(ctx))
	key, err := s.APIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", key)

	require.NoError(t, s.SetAPIKey(ctx, "sk-123"))
	assert.True(t, s.HasAPIKey(ctx))
	key, err = s.APIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-123", key)

	require.NoError(t, s.RemoveAPIKey(ctx))
	assert.False(t, s.HasAPIKey(ctx))
}

func TestValuesSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetAPIKey(ctx, "sk-keep"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	key, err := s.APIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-keep", key)
}
