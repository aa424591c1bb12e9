// Package ratelimit throttles requests per client with a fixed one-minute window.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

const window = time.Minute

// Limiter counts requests per key inside fixed windows that open on a key's first request.
type Limiter struct {
	mu       sync.Mutex
	counters map[string]*counter
	done     chan struct{}
	stopOnce sync.Once

	limit      int
	sweepEvery time.Duration
	now        func() time.Time
}

type counter struct {
	opened time.Time
	hits   int
}

func (c *counter) expired(now time.Time) bool {
	return now.Sub(c.opened) >= window
}

type Config struct {
	RequestsPerMinute int
	// CleanupInterval is how often expired counters are dropped.
	CleanupInterval time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func DefaultConfig() Config {
	return Config{RequestsPerMinute: 60, CleanupInterval: 5 * time.Minute}
}

// NewLimiter starts a limiter and its sweeper. Call Stop to end the sweeper.
func NewLimiter(config Config) *Limiter {
	defaults := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = defaults.RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	l := &Limiter{
		counters:   make(map[string]*counter),
		done:       make(chan struct{}),
		limit:      config.RequestsPerMinute,
		sweepEvery: config.CleanupInterval,
		now:        config.Now,
	}
	go l.sweepLoop()
	return l
}

// Allow reports whether another request from key fits in the current window.
// Rejected requests still count but never move the window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.counters[key]
	if !ok || c.expired(now) {
		l.counters[key] = &counter{opened: now, hits: 1}
		return true
	}
	c.hits++
	return c.hits <= l.limit
}

func (l *Limiter) sweepLoop() {
	tick := time.NewTicker(l.sweepEvery)
	defer tick.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-tick.C:
			l.sweep()
		}
	}
}

// sweep drops the counters whose window has closed.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, c := range l.counters {
		if c.expired(now) {
			delete(l.counters, key)
		}
	}
}

// ActiveClients is the number of keys with a counter.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

// Stop ends the sweeper. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Middleware limits requests keyed by extractIP. onLimit writes the rejection; nil
// means a plain 429.
func (l *Limiter) Middleware(extractIP func(*http.Request) string, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(window.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.Allow(extractIP(r)) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", retryAfter)
			if onLimit == nil {
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			onLimit(w, r)
		})
	}
}
