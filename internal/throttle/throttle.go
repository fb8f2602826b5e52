// Package throttle enforces a per-key cooldown between mutations.
// Rapid repeats are dropped, not queued; the caller returns a cooldown
// error and the client retries after a beat.
package throttle

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultCooldown is the minimum gap between mutations on the same key.
const DefaultCooldown = 1500 * time.Millisecond

// Limiter tracks cooldowns per key. Keys are {userID}:{action} so one
// user's tag edits don't block their prompt edits, and one user never
// throttles another.
type Limiter struct {
	cooldown time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Limiter with the given cooldown. A non-positive
// cooldown falls back to the default.
func New(cooldown time.Duration) *Limiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Limiter{
		cooldown: cooldown,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether a mutation on the key may proceed now. A burst
// of one means the first call passes and repeats inside the cooldown
// window are rejected immediately.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.cooldown), 1)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}

// Reset clears the cooldown state for a key. Used by tests and when a
// user logs out.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.limiters, key)
	l.mu.Unlock()
}
