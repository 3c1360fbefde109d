package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter throttles repeatable auth actions (password reset emails, signin
// attempts). Implementations must be safe for concurrent use.
type Limiter interface {
	// Cooldown sets a cooldown key if absent. It returns false when the key is
	// still cooling down, meaning the action should be skipped.
	Cooldown(ctx context.Context, key string, d time.Duration) (bool, error)

	// Allow increments a windowed counter and reports whether the count is
	// still at or below max.
	Allow(ctx context.Context, key string, max int64, window time.Duration) (bool, error)

	// Reset clears a counter, e.g. after a successful signin.
	Reset(ctx context.Context, key string) error
}

type redisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter returns a Redis-backed Limiter. All keys are namespaced
// under the given prefix.
func NewRedisLimiter(client *redis.Client, prefix string) Limiter {
	if prefix == "" {
		prefix = "authlimit"
	}
	return &redisLimiter{client: client, prefix: prefix}
}

func (l *redisLimiter) key(k string) string {
	return fmt.Sprintf("%s:%s", l.prefix, k)
}

func (l *redisLimiter) Cooldown(ctx context.Context, key string, d time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(key), 1, d).Result()
	if err != nil {
		return false, fmt.Errorf("limiter cooldown: %w", err)
	}
	return ok, nil
}

func (l *redisLimiter) Allow(ctx context.Context, key string, max int64, window time.Duration) (bool, error) {
	k := l.key(key)
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("limiter incr: %w", err)
	}
	if n == 1 {
		// First hit opens the window.
		if err := l.client.Expire(ctx, k, window).Err(); err != nil {
			return false, fmt.Errorf("limiter expire: %w", err)
		}
	}
	return n <= max, nil
}

func (l *redisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("limiter reset: %w", err)
	}
	return nil
}
