package repositories

import (
	"context"
	"time"
)

const dedupKeyPrefix = "notify:dedup:"

// DedupRepository claims one-shot keys; the first claim wins until the TTL
// runs out.
type DedupRepository struct {
	cache CacheRepositoryInterface
}

func NewDedupRepository(cache CacheRepositoryInterface) *DedupRepository {
	return &DedupRepository{cache: cache}
}

func (r *DedupRepository) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.cache.SetNX(ctx, dedupKeyPrefix+key, 1, ttl)
}
