package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock is a manually advanced clock for wall-time-free tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestLimiter(opts ...Option) (*CooldownLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000000, 0)}
	opts = append(opts, WithClock(clock.Now))
	return NewCooldownLimiter(10*time.Second, opts...), clock
}

func TestAllow_WithinCooldown(t *testing.T) {
	l, clock := newTestLimiter()

	assert.True(t, l.Allow(1), "first message must pass")

	clock.Advance(5 * time.Second)
	assert.False(t, l.Allow(1), "message at t=5s must be dropped")
}

func TestAllow_AfterCooldown(t *testing.T) {
	l, clock := newTestLimiter()

	assert.True(t, l.Allow(1))

	clock.Advance(11 * time.Second)
	assert.True(t, l.Allow(1), "message at t=11s must pass")
}

func TestAllow_DeniedCallDoesNotRefreshWindow(t *testing.T) {
	l, clock := newTestLimiter()

	assert.True(t, l.Allow(1)) // t=0

	clock.Advance(9 * time.Second)
	assert.False(t, l.Allow(1)) // t=9, denied

	clock.Advance(2 * time.Second)
	// t=11: 11s since the accepted message; the denial at t=9 must not count.
	assert.True(t, l.Allow(1))
}

func TestAllow_UsersAreIndependent(t *testing.T) {
	l, clock := newTestLimiter()

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(2), "another user is not affected by user 1's window")

	clock.Advance(5 * time.Second)
	assert.False(t, l.Allow(1))
	assert.False(t, l.Allow(2))
}

func TestAllow_EvictsStaleEntriesAtCap(t *testing.T) {
	l, clock := newTestLimiter(WithMaxTrackedUsers(3))

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(2))
	assert.True(t, l.Allow(3))
	assert.Equal(t, 3, len(l.lastSeen))

	// All three windows expire; the next accept prunes them.
	clock.Advance(11 * time.Second)
	assert.True(t, l.Allow(4))
	assert.Equal(t, 1, len(l.lastSeen), "stale entries pruned when cap reached")
}
