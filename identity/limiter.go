package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	errRateLimited      = errors.New("rate limited")
	errRedisUnavailable = errors.New("identity redis unavailable")
)

// fixedWindowLimiter counts hits per key inside a fixed window. The first
// hit opens the window; once the count exceeds the maximum, further hits are
// rejected until the key expires.
type fixedWindowLimiter struct {
	redis  *redis.Client
	prefix string
	window time.Duration
	max    int
}

func newFixedWindowLimiter(redisClient *redis.Client, prefix string, window time.Duration, max int) *fixedWindowLimiter {
	return &fixedWindowLimiter{
		redis:  redisClient,
		prefix: prefix,
		window: window,
		max:    max,
	}
}

func (l *fixedWindowLimiter) enforce(ctx context.Context, key string) error {
	if l.max <= 0 {
		return nil
	}

	full := l.prefix + ":" + key

	count, err := l.redis.Incr(ctx, full).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, full, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", errRedisUnavailable, err)
		}
	}

	if count > int64(l.max) {
		return errRateLimited
	}

	return nil
}
