package funding

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newCacheClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCatalogServedFromCache(t *testing.T) {
	mr, client := newCacheClient(t)

	cached := []PredefinedRound{
		{ID: 1, Name: "Pre-Seed", Sequence: 1},
		{ID: 2, Name: "Seed", Sequence: 2},
	}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, mr.Set(catalogCacheKey, string(payload)))

	// nil pool: a cache miss would panic, so this proves postgres is skipped.
	repo := NewCatalogRepository(nil, client, time.Minute)
	catalog, err := repo.ListPredefinedRounds(context.Background())
	require.NoError(t, err)
	require.Equal(t, cached, catalog)
}

func TestCatalogInvalidateDropsKey(t *testing.T) {
	mr, client := newCacheClient(t)
	require.NoError(t, mr.Set(catalogCacheKey, "[]"))

	repo := NewCatalogRepository(nil, client, time.Minute)
	require.NoError(t, repo.Invalidate(context.Background()))
	require.False(t, mr.Exists(catalogCacheKey))
}

func TestCatalogInvalidateWithoutRedis(t *testing.T) {
	repo := NewCatalogRepository(nil, nil, 0)
	require.NoError(t, repo.Invalidate(context.Background()))
}
