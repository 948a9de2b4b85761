package funding

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const catalogCacheKey = "funding:predefined_rounds"

// CatalogRepository serves the predefined round catalog, caching the rarely
// changing list in Redis.
type CatalogRepository struct {
	pool   *pgxpool.Pool
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogRepository constructs the catalog repository. The redis client
// may be nil, in which case every read hits postgres.
func NewCatalogRepository(pool *pgxpool.Pool, client *redis.Client, ttl time.Duration) *CatalogRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CatalogRepository{pool: pool, client: client, ttl: ttl}
}

// ListPredefinedRounds returns the catalog ordered by sequence.
func (r *CatalogRepository) ListPredefinedRounds(ctx context.Context) ([]PredefinedRound, error) {
	// Cache misses and cache trouble both fall through to postgres.
	if r.client != nil {
		if payload, err := r.client.Get(ctx, catalogCacheKey).Bytes(); err == nil {
			var cached []PredefinedRound
			if json.Unmarshal(payload, &cached) == nil {
				return cached, nil
			}
		}
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name, sequence FROM predefined_rounds ORDER BY sequence`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var catalog []PredefinedRound
	for rows.Next() {
		var entry PredefinedRound
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Sequence); err != nil {
			return nil, err
		}
		catalog = append(catalog, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if r.client != nil {
		if payload, err := json.Marshal(catalog); err == nil {
			_ = r.client.Set(ctx, catalogCacheKey, payload, r.ttl).Err()
		}
	}
	return catalog, nil
}

// Invalidate drops the cached catalog after seeding or edits.
func (r *CatalogRepository) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Del(ctx, catalogCacheKey).Err()
}
