package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"gbp_reviews/internal/adapters/observability"
	"gbp_reviews/internal/domain"
)

// snapshotKey is the single logical cache key; this service caches exactly
// one snapshot, not a collection.
const snapshotKey = "gbp:reviews:snapshot"

// Cache is the durable snapshot tier. Entries expire via the configured
// TTL; correctness relies on periodic re-synchronization, not eviction.
type Cache struct {
	c   *redis.Client
	ttl time.Duration
}

func New(addr, pass string, db int, ttl time.Duration) *Cache {
	return &Cache{
		c:   redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		ttl: ttl,
	}
}

func (r *Cache) Get(ctx context.Context) (domain.Snapshot, bool, error) {
	var snap domain.Snapshot
	v, err := r.c.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return snap, false, nil
	}
	if err != nil {
		return snap, false, err
	}
	if err := json.Unmarshal(v, &snap); err != nil {
		return domain.Snapshot{}, false, err
	}
	observability.ObserveCache("redis", "hit")
	return snap, true, nil
}

func (r *Cache) Set(ctx context.Context, snap domain.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, snapshotKey, b, r.ttl).Err()
}
