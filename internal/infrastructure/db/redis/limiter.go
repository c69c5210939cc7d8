package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/routinely/tracker/internal/core/ports"
)

// LoginLimiter keeps failed logins per origin in a sorted set scored by
// failure time, giving the same sliding window as the in-memory limiter.
// Key format: login_failures:<origin>
type LoginLimiter struct {
	client      *redis.Client
	maxFailures int
	window      time.Duration
	clock       ports.Clock
}

var _ ports.LoginLimiter = (*LoginLimiter)(nil)

func NewLoginLimiter(client *redis.Client, maxFailures int, window time.Duration, clock ports.Clock) *LoginLimiter {
	return &LoginLimiter{client: client, maxFailures: maxFailures, window: window, clock: clock}
}

func (l *LoginLimiter) Check(ctx context.Context, origin string) (time.Duration, error) {
	now := l.clock.Now()
	key := l.key(origin)

	if err := l.client.ZRemRangeByScore(ctx, key, "-inf", score(now.Add(-l.window))).Err(); err != nil {
		return 0, fmt.Errorf("limiter prune: %w", err)
	}
	count, err := l.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("limiter count: %w", err)
	}
	if count < int64(l.maxFailures) {
		return 0, nil
	}

	idx := count - int64(l.maxFailures)
	oldest, err := l.client.ZRangeWithScores(ctx, key, idx, idx).Result()
	if err != nil {
		return 0, fmt.Errorf("limiter oldest: %w", err)
	}
	if len(oldest) == 0 {
		return 0, nil
	}
	at := time.UnixMilli(int64(oldest[0].Score))
	return at.Add(l.window).Sub(now), nil
}

func (l *LoginLimiter) RecordFailure(ctx context.Context, origin string) error {
	now := l.clock.Now()
	key := l.key(origin)

	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: uuid.NewString()})
		pipe.ZRemRangeByRank(ctx, key, 0, int64(-l.maxFailures-1))
		pipe.Expire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("limiter record: %w", err)
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, origin string) error {
	return l.client.Del(ctx, l.key(origin)).Err()
}

func (l *LoginLimiter) key(origin string) string {
	return "login_failures:" + origin
}

// score is inclusive, so a failure exactly one window old is dropped.
func score(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
