// Package quota tracks per-user daily council usage.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/council-mode/council/internal/core"
)

// RedisQuota implements core.QuotaService with per-day Redis counters.
// Keys expire at the next UTC midnight so counters reset without a sweeper.
type RedisQuota struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// RedisOption customizes a RedisQuota.
type RedisOption func(*RedisQuota)

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) RedisOption {
	return func(q *RedisQuota) { q.now = now }
}

// NewRedisQuota builds a quota service backed by the given Redis client.
func NewRedisQuota(client *redis.Client, opts ...RedisOption) *RedisQuota {
	q := &RedisQuota{
		client: client,
		prefix: "council:quota",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *RedisQuota) key(userID string) string {
	day := q.now().UTC().Format("2006-01-02")
	return fmt.Sprintf("%s:%s:%s", q.prefix, day, userID)
}

// UsedToday returns the user's counter for the current UTC day.
func (q *RedisQuota) UsedToday(ctx context.Context, userID string) (int, error) {
	n, err := q.client.Get(ctx, q.key(userID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading quota for %s: %w", userID, err)
	}
	return n, nil
}

// Consume increments the user's counter and keeps the key expiring at the
// next UTC midnight.
func (q *RedisQuota) Consume(ctx context.Context, userID string) error {
	key := q.key(userID)
	now := q.now().UTC()
	midnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)

	pipe := q.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, midnight)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("consuming quota for %s: %w", userID, err)
	}
	return nil
}

var _ core.QuotaService = (*RedisQuota)(nil)
