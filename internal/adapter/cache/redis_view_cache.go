package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
)

// RedisViewCache keeps view dedup markers in Redis so every replica shares them.
type RedisViewCache struct {
	client redis.UniversalClient
}

func NewRedisViewCache(client redis.UniversalClient) repository.ViewDedupCache {
	return &RedisViewCache{client: client}
}

// SetIfAbsent stores key with ttl. The first caller for a key wins.
func (r *RedisViewCache) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}
