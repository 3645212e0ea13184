package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time          { return c.t }
func (c *stepClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *stepClock) {
	t.Helper()
	clk := &stepClock{t: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	rl.now = clk.Now
	t.Cleanup(rl.Stop)
	return rl, clk
}

func TestAllowWithinLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "clients are counted separately")
	assert.Equal(t, int64(1), rl.GetMetrics().TotalHits)
	assert.Equal(t, int64(2), rl.GetMetrics().ClientCount)
}

func TestWindowIsNotExtendedBySteadyTraffic(t *testing.T) {
	rl, clk := newTestLimiter(t, 2)

	require.True(t, rl.Allow("c"))
	clk.Advance(40 * time.Second)
	require.True(t, rl.Allow("c"))
	clk.Advance(10 * time.Second)
	assert.False(t, rl.Allow("c"))
	assert.Equal(t, 10*time.Second, rl.RetryAfter("c"))

	clk.Advance(10 * time.Second)
	assert.True(t, rl.Allow("c"), "a new window opens a minute after the first request")
}

func TestCleanupRemovesIdleClients(t *testing.T) {
	rl, clk := newTestLimiter(t, 5)
	rl.Allow("old")
	clk.Advance(11 * time.Minute)
	rl.Allow("fresh")

	assert.Equal(t, 1, rl.cleanupStaleEntries())
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	extract := func(r *http.Request) string { return r.RemoteAddr }

	t.Run("default rejection", func(t *testing.T) {
		h := rl.Middleware(extract, nil)(ok)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "a"
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	})

	t.Run("custom rejection", func(t *testing.T) {
		called := false
		h := rl.Middleware(extract, func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusServiceUnavailable)
		})(ok)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "b"
		h.ServeHTTP(httptest.NewRecorder(), req)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
