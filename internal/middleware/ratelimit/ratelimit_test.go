package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newLimiter(t *testing.T, perMinute int) (*Limiter, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, Now: c.Now})
	t.Cleanup(rl.Stop)
	return rl, c
}

func TestAllowWithinWindow(t *testing.T) {
	rl, _ := newLimiter(t, 2)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "clients are limited independently")
}

func TestAllowAfterWindowResets(t *testing.T) {
	rl, c := newLimiter(t, 1)

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	c.Advance(time.Minute)
	assert.True(t, rl.Allow("a"))
}

func TestRejectedRequestsDoNotExtendWindow(t *testing.T) {
	rl, c := newLimiter(t, 1)

	assert.True(t, rl.Allow("a"))
	c.Advance(30 * time.Second)
	assert.False(t, rl.Allow("a"))
	c.Advance(30 * time.Second)
	assert.True(t, rl.Allow("a"))
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, c := newLimiter(t, 5)
	rl.Allow("a")
	c.Advance(30 * time.Second)
	rl.Allow("b")
	c.Advance(45 * time.Second)

	rl.sweep()
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}

func TestMiddleware(t *testing.T) {
	rl, _ := newLimiter(t, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	key := func(*http.Request) string { return "client" }

	t.Run("default rejection", func(t *testing.T) {
		h := rl.Middleware(key, nil)(next)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transactions", nil))
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transactions", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	})

	t.Run("custom rejection", func(t *testing.T) {
		h := rl.Middleware(key, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})(next)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transactions", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}
