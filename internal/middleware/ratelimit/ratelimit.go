package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultUpdatesPerMinute is the sustained rate per user.
	DefaultUpdatesPerMinute = 30
	// DefaultBurst is how many updates a user may send back to back.
	DefaultBurst = 10
	// DefaultCleanupInterval is the interval for cleaning up stale limiters.
	DefaultCleanupInterval = 5 * time.Minute
	// LimiterTTL is how long an idle user's limiter is kept.
	LimiterTTL = 10 * time.Minute
)

// Limiter is a token bucket per Telegram user. Tokens refill continuously
// at UpdatesPerMinute, so a user who keeps a normal pace is never locked out.
type Limiter struct {
	mu           sync.Mutex
	users        map[int64]*limiterEntry
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
	now          func() time.Time
	hits         int64

	limit           rate.Limit
	burst           int
	cleanupInterval time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Config holds rate limiter configuration
type Config struct {
	UpdatesPerMinute int
	Burst            int
	CleanupInterval  time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		UpdatesPerMinute: DefaultUpdatesPerMinute,
		Burst:            DefaultBurst,
		CleanupInterval:  DefaultCleanupInterval,
	}
}

// NewLimiter creates a new rate limiter
func NewLimiter(config Config) *Limiter {
	if config.UpdatesPerMinute <= 0 {
		config.UpdatesPerMinute = DefaultUpdatesPerMinute
	}
	if config.Burst <= 0 {
		config.Burst = min(DefaultBurst, config.UpdatesPerMinute)
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	rl := &Limiter{
		users:           make(map[int64]*limiterEntry),
		stopCleanup:     make(chan struct{}),
		now:             config.Now,
		limit:           rate.Limit(float64(config.UpdatesPerMinute) / 60.0),
		burst:           config.Burst,
		cleanupInterval: config.CleanupInterval,
	}
	go rl.startCleanup()
	return rl
}

// Allow reports whether an update from userID should be handled.
func (rl *Limiter) Allow(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, exists := rl.users[userID]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.users[userID] = entry
	}
	entry.lastSeen = now

	if !entry.limiter.AllowN(now, 1) {
		atomic.AddInt64(&rl.hits, 1)
		return false
	}
	return true
}

// RetryAfter estimates how long userID has to wait for the next token.
func (rl *Limiter) RetryAfter(userID int64) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.users[userID]
	if !exists {
		return 0
	}
	missing := 1 - entry.limiter.TokensAt(rl.now())
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(rl.limit) * float64(time.Second))
}

func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries forgets users idle for longer than LimiterTTL
func (rl *Limiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for id, entry := range rl.users {
		if now.Sub(entry.lastSeen) > LimiterTTL {
			delete(rl.users, id)
		}
	}
}

// ActiveUsers returns the number of currently tracked users
func (rl *Limiter) ActiveUsers() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.users)
}

// Stop shuts down the cleanup goroutine. Safe to call more than once.
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// Metrics for monitoring rate limit performance
type Metrics struct {
	TotalHits int64
	UserCount int64
}

// GetMetrics returns current rate limiting metrics
func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{
		TotalHits: atomic.LoadInt64(&rl.hits),
		UserCount: int64(rl.ActiveUsers()),
	}
}
