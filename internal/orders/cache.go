package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotCache caches order snapshots for Get lookups. A miss or any cache
// failure falls through to the store; the cache is never authoritative.
type SnapshotCache interface {
	Get(ctx context.Context, id string) (Order, bool)
	Set(ctx context.Context, o Order)
	Del(ctx context.Context, id string)
}

// RedisCache stores JSON-serialized snapshots under short TTLs.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *slog.Logger
}

// NewRedisCache connects to addr and namespaces keys under prefix.
func NewRedisCache(addr, prefix string, ttl time.Duration, log *slog.Logger) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
		ttl:    ttl,
		log:    log,
	}
}

func (c *RedisCache) key(id string) string {
	return fmt.Sprintf("%s:order:%s", c.prefix, id)
}

func (c *RedisCache) Get(ctx context.Context, id string) (Order, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return Order{}, false
	}
	if err != nil {
		c.log.Warn("order cache get failed", "order_id", id, "err", err)
		return Order{}, false
	}
	var o Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return Order{}, false
	}
	return o, true
}

func (c *RedisCache) Set(ctx context.Context, o Order) {
	raw, err := json.Marshal(o)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(o.ID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("order cache set failed", "order_id", o.ID, "err", err)
	}
}

func (c *RedisCache) Del(ctx context.Context, id string) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.log.Warn("order cache del failed", "order_id", id, "err", err)
	}
}

// CachedStore decorates a Store with read-through snapshot caching on Get.
// Writes invalidate before and refresh after, so a stale entry never outlives
// an update.
type CachedStore struct {
	Store
	cache SnapshotCache
}

// NewCachedStore wraps inner with cache.
func NewCachedStore(inner Store, cache SnapshotCache) *CachedStore {
	return &CachedStore{Store: inner, cache: cache}
}

func (s *CachedStore) Get(ctx context.Context, id string) (Order, error) {
	if o, ok := s.cache.Get(ctx, id); ok {
		return o, nil
	}
	o, err := s.Store.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	s.cache.Set(ctx, o)
	return o, nil
}

func (s *CachedStore) Update(ctx context.Context, id string, mutate func(*Order) error) (Order, error) {
	s.cache.Del(ctx, id)
	o, err := s.Store.Update(ctx, id, mutate)
	if err != nil {
		return Order{}, err
	}
	s.cache.Set(ctx, o)
	return o, nil
}
