package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour
)

type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// Quota is the per-source request ceiling for each window.
type Quota struct {
	PerMinute int
	PerHour   int
}

// Limiter keeps a 60s and a 3600s counter per source on the shared store.
// Allow has no side effects; Record increments both counters and arms the
// window TTL on first increment. Callers must check Allow before Record.
type Limiter struct {
	redis    RedisClient
	quotas   map[string]Quota
	defaults Quota
}

func NewLimiter(redisClient RedisClient, quotas map[string]Quota, defaults Quota) *Limiter {
	if quotas == nil {
		quotas = make(map[string]Quota)
	}

	return &Limiter{
		redis:    redisClient,
		quotas:   quotas,
		defaults: defaults,
	}
}

func (l *Limiter) quotaFor(source string) Quota {
	if q, ok := l.quotas[source]; ok {
		return q
	}

	return l.defaults
}

// Allow reports whether source has quota left in both windows.
func (l *Limiter) Allow(ctx context.Context, source string) (bool, error) {
	quota := l.quotaFor(source)

	minuteCount, err := l.count(ctx, minuteKey(source))
	if err != nil {
		return false, fmt.Errorf("failed to read minute counter: %w", err)
	}

	if minuteCount >= int64(quota.PerMinute) {
		return false, nil
	}

	hourCount, err := l.count(ctx, hourKey(source))
	if err != nil {
		return false, fmt.Errorf("failed to read hour counter: %w", err)
	}

	return hourCount < int64(quota.PerHour), nil
}

// Record increments both window counters for source.
func (l *Limiter) Record(ctx context.Context, source string) error {
	if err := l.increment(ctx, minuteKey(source), minuteWindow); err != nil {
		return err
	}

	return l.increment(ctx, hourKey(source), hourWindow)
}

func (l *Limiter) count(ctx context.Context, key string) (int64, error) {
	val, err := l.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed counter %s: %w", key, err)
	}

	return count, nil
}

func (l *Limiter) increment(ctx context.Context, key string, window time.Duration) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", key, err)
	}

	// TTL is armed only by the first increment of a window so the counter
	// expires exactly one window after it started filling.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, window).Err(); err != nil {
			return fmt.Errorf("failed to set ttl on %s: %w", key, err)
		}
	}

	return nil
}

func minuteKey(source string) string {
	return fmt.Sprintf("ratelimit:%s:minute", source)
}

func hourKey(source string) string {
	return fmt.Sprintf("ratelimit:%s:hour", source)
}
