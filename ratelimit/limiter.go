// api/ratelimit/limiter.go
package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Limiter is a per-key sliding-window request counter. Each check prunes
// timestamps outside the trailing window, then compares the remaining count
// against the ceiling. A denied request is not recorded, so a throttled
// caller is not penalized twice.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time
	now    func() time.Time
}

// New creates a limiter allowing limit requests per window.
func New(limit int, window time.Duration) *Limiter {
	return NewWithClock(limit, window, time.Now)
}

// NewWithClock creates a limiter with an injected clock.
func NewWithClock(limit int, window time.Duration, clock func() time.Time) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    clock,
	}
}

// Allow reports whether a request under the key fits the window, recording
// it if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.limit {
		l.hits[key] = recent
		return false
	}

	l.hits[key] = append(recent, now)
	return true
}

// Reset drops all recorded requests for the key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hits, key)
}

// CredentialKey derives the rate-limit key from the raw credential string.
// Keying on the credential rather than the decoded user id is deliberate: a
// revoked-and-reissued token gets a fresh budget, matching the established
// behavior of this system.
func CredentialKey(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])[:16]
}
