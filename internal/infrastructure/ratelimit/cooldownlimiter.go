package ratelimit

import (
	"sync"
	"time"
)

const defaultMaxTrackedUsers = 10000

// CooldownLimiter allows at most one message per user within a cooldown
// window. A denied call does not refresh the window. State is process-local
// and resets on restart.
type CooldownLimiter struct {
	mu         sync.Mutex
	cooldown   time.Duration
	lastSeen   map[int64]time.Time
	maxEntries int
	now        func() time.Time
}

// Option configures a CooldownLimiter.
type Option func(*CooldownLimiter)

// WithClock injects a clock, so tests can run without wall-time dependency.
func WithClock(now func() time.Time) Option {
	return func(l *CooldownLimiter) {
		l.now = now
	}
}

// WithMaxTrackedUsers caps the last-seen map; stale entries are pruned once
// the cap is exceeded.
func WithMaxTrackedUsers(n int) Option {
	return func(l *CooldownLimiter) {
		l.maxEntries = n
	}
}

// NewCooldownLimiter creates a limiter with the given per-user cooldown.
func NewCooldownLimiter(cooldown time.Duration, opts ...Option) *CooldownLimiter {
	l := &CooldownLimiter{
		cooldown:   cooldown,
		lastSeen:   make(map[int64]time.Time),
		maxEntries: defaultMaxTrackedUsers,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether a message from userID may be processed now. On accept
// the user's last-seen timestamp is updated.
func (l *CooldownLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if last, ok := l.lastSeen[userID]; ok {
		if now.Sub(last) < l.cooldown {
			return false
		}
	}

	if len(l.lastSeen) >= l.maxEntries {
		l.evictStaleLocked(now)
	}

	l.lastSeen[userID] = now
	return true
}

// evictStaleLocked drops entries whose cooldown has already expired. Callers
// must hold l.mu.
func (l *CooldownLimiter) evictStaleLocked(now time.Time) {
	for id, last := range l.lastSeen {
		if now.Sub(last) >= l.cooldown {
			delete(l.lastSeen, id)
		}
	}
}
