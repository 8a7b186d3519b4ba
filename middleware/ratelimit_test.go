package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(l Limiter) *gin.Engine {
	logger := zerolog.Nop()
	r := gin.New()
	r.Use(RateLimit(l, &logger))
	r.GET("/scan", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doRequest(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/scan", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMemoryLimiterSlidingWindow(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(2, time.Hour)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	allowed, remaining, err := l.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 2, remaining)

	for want := 1; want >= 0; want-- {
		allowed, remaining, err = l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, want, remaining)
	}

	allowed, _, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, remaining, _ = l.Check(ctx, "1.2.3.4")
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, _, _ = l.Check(ctx, "5.6.7.8")
	assert.True(t, allowed)

	now = now.Add(time.Hour + time.Second)
	allowed, remaining, _ = l.Check(ctx, "1.2.3.4")
	assert.True(t, allowed)
	assert.Equal(t, 2, remaining)
}

func TestRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		requests   int
		wantStatus int
	}{
		{"under limit", 3, 2, http.StatusOK},
		{"at limit", 3, 3, http.StatusOK},
		{"over limit", 3, 4, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(NewMemoryLimiter(tt.limit, time.Hour))

			var w *httptest.ResponseRecorder
			for i := 0; i < tt.requests; i++ {
				w = doRequest(r, "10.0.0.1")
			}
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRateLimitMiddlewareHeaders(t *testing.T) {
	r := newTestRouter(NewMemoryLimiter(10, time.Hour))

	w := doRequest(r, "10.0.0.2")
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	r := newTestRouter(NewRedisLimiter(client, 1, time.Hour))

	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.3").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.3").Code)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(10, time.Hour)
	_, _, err := l.Allow(ctx, "10.0.0.4")
	require.NoError(t, err)

	status, err := Status(ctx, l, "10.0.0.4")
	require.NoError(t, err)
	assert.Equal(t, 9, status.Remaining)
	assert.Equal(t, 10, status.Limit)
	assert.Equal(t, 3600, status.WindowSeconds)
	assert.True(t, status.IsAllowed)
}

func TestMemoryLimiterConcurrentBurst(t *testing.T) {
	const limit = 5
	r := newTestRouter(NewMemoryLimiter(limit, time.Hour))

	var (
		wg       sync.WaitGroup
		admitted atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if doRequest(r, "10.0.0.9").Code == http.StatusOK {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(limit), admitted.Load())
}
