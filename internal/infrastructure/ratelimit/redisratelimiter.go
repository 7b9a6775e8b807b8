package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "siteforge:ratelimit"
	}
	return &RedisRateLimiter{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

var _ RateLimiter = (*RedisRateLimiter)(nil)

// Allow counts the request in every enabled window and denies it when any
// window is over its limit. The tightest window decides Remaining.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, config RateLimitConfig) (Decision, error) {
	now := l.now()
	decision := Decision{Allowed: true, Remaining: -1}

	windows := []struct {
		duration time.Duration
		limit    int
	}{
		{time.Minute, config.RequestsPerMinute},
		{time.Hour, config.RequestsPerHour},
		{24 * time.Hour, config.RequestsPerDay},
	}

	for _, window := range windows {
		if window.limit <= 0 {
			continue
		}

		count, err := l.hit(ctx, key, window.duration, now)
		if err != nil {
			return Decision{}, err
		}

		remaining := window.limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		if decision.Remaining < 0 || remaining < decision.Remaining {
			decision.Remaining = remaining
			decision.Limit = window.limit
		}
		if count > int64(window.limit) {
			decision.Allowed = false
			start := now.Truncate(window.duration)
			if wait := start.Add(window.duration).Sub(now); wait > decision.RetryAfter {
				decision.RetryAfter = wait
			}
		}
	}

	if decision.Remaining < 0 {
		decision.Remaining = 0
	}
	return decision, nil
}

func (l *RedisRateLimiter) hit(ctx context.Context, key string, window time.Duration, now time.Time) (int64, error) {
	redisKey := l.windowKey(key, window, now)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}
	return incr.Val(), nil
}

func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	pattern := fmt.Sprintf("%s:%s:*", l.prefix, key)

	iter := l.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := l.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", iter.Val(), err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %w", err)
	}
	return nil
}

func (l *RedisRateLimiter) windowKey(identifier string, window time.Duration, now time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%d", l.prefix, identifier, window.String(), now.Truncate(window).Unix())
}
