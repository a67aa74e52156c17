package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/config"
	"github.com/pageza/tastybytes/backend/internal/testhelpers"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, Ping(ctx, s))

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "recipes", `[{"id":"1"}]`))
	v, ok, err := s.Get(ctx, "recipes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)

	// Overwrite
	require.NoError(t, s.Set(ctx, "recipes", "[]"))
	v, _, err = s.Get(ctx, "recipes")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	// Empty values are still present
	require.NoError(t, s.Set(ctx, "recipeUser", ""))
	v, ok, err = s.Get(ctx, "recipeUser")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)

	require.NoError(t, s.Remove(ctx, "recipeUser"))
	_, ok, err = s.Get(ctx, "recipeUser")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Remove(ctx, "never-set"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestGormStoreSQLite(t *testing.T) {
	cfg := config.Defaults()
	cfg.StoreType = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "store.db")

	s, err := NewStoreFromConfig(cfg, zap.NewNop())
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, Close(s))

	// Values survive reopening the file
	s, err = NewStoreFromConfig(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(s)
	v, ok, err := s.Get(context.Background(), "recipes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestGormStorePostgres(t *testing.T) {
	cfg := testhelpers.StartPostgres(t)

	s, err := NewStoreFromConfig(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(s)
	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	cfg := testhelpers.StartRedis(t)

	s, err := NewStoreFromConfig(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(s)
	exerciseStore(t, s)
}

func TestNewStoreFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.StoreType = config.StoreMemory
	s, err := NewStoreFromConfig(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	assert.NoError(t, Close(s))

	cfg.StoreType = "etcd"
	_, err = NewStoreFromConfig(cfg, zap.NewNop())
	assert.Error(t, err)
}
