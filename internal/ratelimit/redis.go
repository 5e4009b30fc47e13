package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aziwar/dr-islam-website-sub002/pkg/logging"
)

const redisKeyPrefix = "ratelimit:contact:"

// RedisLimiter enforces the fixed window through a shared Redis instance so
// multiple service instances see the same counts. It fails open on Redis
// errors: the endpoint staying available matters more than exact limiting.
type RedisLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	logger *logging.Logger
}

// NewRedisLimiter creates a limiter backed by the given Redis client.
func NewRedisLimiter(client *redis.Client, max int, window time.Duration, logger *logging.Logger) *RedisLimiter {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisLimiter{
		client: client,
		max:    max,
		window: window,
		logger: logger,
	}
}

// Check increments the identity's window counter atomically and compares it
// against the limit. The expiry is set only when the key has none, so the
// window is pinned to the first request and rejected retries cannot push
// their own unblock time further out. Increments past the limit are inert:
// the whole key expires at that pinned time regardless of the count.
func (l *RedisLimiter) Check(ctx context.Context, identity string) (Result, error) {
	key := redisKeyPrefix + identity

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn("rate limit check failed, allowing request", "error", err, "identity", identity)
		return Result{Allowed: true, Remaining: l.max - 1, ResetAt: time.Now().Add(l.window)}, nil
	}

	count := incr.Val()
	if count > int64(l.max) {
		ttl, err := l.client.TTL(ctx, key).Result()
		if err != nil || ttl <= 0 {
			ttl = l.window
		}
		return Result{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    time.Now().Add(ttl),
			RetryAfter: ttl,
		}, nil
	}

	remaining := l.max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   true,
		Remaining: remaining,
		ResetAt:   time.Now().Add(l.window),
	}, nil
}

var _ Limiter = (*RedisLimiter)(nil)
