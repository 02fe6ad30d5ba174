package quota

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CachedCounter wraps a MonitorCounterFunc with a per-user Redis cache.
// Counter functions run on every creation attempt and every tier-limit
// lookup, so an aggregate query over the monitors table gets expensive under
// dashboard traffic; the cache bounds that to one count per user per TTL.
//
// Staleness is bounded by the TTL. Callers that mutate the count (monitor
// create/delete) should Invalidate afterwards so quota decisions catch up
// immediately instead of after TTL expiry.
type CachedCounter struct {
	client *redis.Client
	ttl    time.Duration
	next   MonitorCounterFunc
}

// NewCachedCounter creates a CachedCounter over the given client.
// Panics if client or next is nil to fail fast during initialization.
func NewCachedCounter(client *redis.Client, ttl time.Duration, next MonitorCounterFunc) *CachedCounter {
	if client == nil {
		panic("quota: redis client is required")
	}
	if next == nil {
		panic("quota: wrapped MonitorCounterFunc is required")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &CachedCounter{
		client: client,
		ttl:    ttl,
		next:   next,
	}
}

// Count returns the cached monitor count, falling through to the wrapped
// counter on a miss. Cache write failures are swallowed: a broken cache must
// not block quota checks while the underlying counter still works.
func (c *CachedCounter) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	key := c.key(userID)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if n, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
			return n, nil
		}
		// Unparseable value means the key was clobbered; drop it and recount.
		_ = c.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		return 0, errors.Join(ErrCounterCacheUnavailable, err)
	}

	n, err := c.next(ctx, userID)
	if err != nil {
		return 0, err
	}

	_ = c.client.Set(ctx, key, strconv.FormatInt(n, 10), c.ttl).Err()
	return n, nil
}

// Invalidate drops the cached count for the user.
func (c *CachedCounter) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}

// Func adapts the cache to the MonitorCounterFunc signature expected by
// NewEnforcer.
func (c *CachedCounter) Func() MonitorCounterFunc {
	return c.Count
}

func (c *CachedCounter) key(userID uuid.UUID) string {
	return fmt.Sprintf("quota:monitors:%s", userID)
}
