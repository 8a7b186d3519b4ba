package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Aashish23092/ghost-shift-audit/dto"
)

// Limiter tracks requests per client key within a window.
type Limiter interface {
	// Allow atomically admits and counts one request for key. It returns
	// whether the request is admitted and the requests left afterwards.
	Allow(ctx context.Context, key string) (bool, int, error)
	// Check reports whether key may make another request and how many
	// requests remain, without recording one.
	Check(ctx context.Context, key string) (bool, int, error)
	Limit() int
	Window() time.Duration
}

// MemoryLimiter is a per-process sliding-window limiter.
type MemoryLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (l *MemoryLimiter) Check(_ context.Context, key string) (bool, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := len(l.prune(key))
	if count >= l.limit {
		return false, 0, nil
	}
	return true, l.limit - count, nil
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.prune(key)
	if len(kept) >= l.limit {
		return false, 0, nil
	}
	l.requests[key] = append(kept, l.now())
	return true, l.limit - len(kept) - 1, nil
}

func (l *MemoryLimiter) Limit() int            { return l.limit }
func (l *MemoryLimiter) Window() time.Duration { return l.window }

// prune drops timestamps outside the window. Callers hold l.mu.
func (l *MemoryLimiter) prune(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	kept := l.requests[key][:0]
	for _, ts := range l.requests[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.requests, key)
		return nil
	}
	l.requests[key] = kept
	return kept
}

// RedisLimiter is a fixed-window limiter shared by every instance that
// talks to the same Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window, prefix: "ratelimit:"}
}

func (l *RedisLimiter) Check(ctx context.Context, key string) (bool, int, error) {
	count, err := l.client.Get(ctx, l.prefix+key).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, 0, fmt.Errorf("redis get: %w", err)
	}
	if count >= l.limit {
		return false, 0, nil
	}
	return true, l.limit - count, nil
}

// Allow counts the request first so concurrent callers each see a distinct
// count.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	count, err := l.client.Incr(ctx, l.prefix+key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis incr: %w", err)
	}
	// the first request of a window starts its expiry
	if count == 1 {
		if err := l.client.Expire(ctx, l.prefix+key, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("redis expire: %w", err)
		}
	}
	if count > int64(l.limit) {
		return false, 0, nil
	}
	return true, l.limit - int(count), nil
}

func (l *RedisLimiter) Limit() int            { return l.limit }
func (l *RedisLimiter) Window() time.Duration { return l.window }

// RateLimit rejects clients that have exhausted their quota with 429. When
// the limiter itself fails the request is let through.
func RateLimit(l Limiter, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		ctx := c.Request.Context()

		allowed, remaining, err := l.Allow(ctx, ip)
		if err != nil {
			logger.Warn().Err(err).Str("ip", ip).Msg("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		if !allowed {
			logger.Warn().
				Str("ip", ip).
				Str("path", c.Request.URL.Path).
				Msg("Rate limit exceeded")

			c.Header("X-RateLimit-Limit", strconv.Itoa(l.Limit()))
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "RATE_LIMITED",
				Message: fmt.Sprintf("Rate limit exceeded. Maximum %d uploads per %s. Please try again later.", l.Limit(), l.Window()),
				Code:    http.StatusTooManyRequests,
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}

// Status reports the quota of key without consuming it.
func Status(ctx context.Context, l Limiter, key string) (dto.RateLimitStatus, error) {
	allowed, remaining, err := l.Check(ctx, key)
	if err != nil {
		return dto.RateLimitStatus{}, err
	}
	return dto.RateLimitStatus{
		Remaining:     remaining,
		Limit:         l.Limit(),
		WindowSeconds: int(l.Window().Seconds()),
		IsAllowed:     allowed,
	}, nil
}
