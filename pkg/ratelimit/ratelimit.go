package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window counter keyed by an arbitrary string (usually a client IP).
type Limiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	window  time.Duration
	maxHits int
}

func NewLimiter(window time.Duration, maxHits int) *Limiter {
	return &Limiter{
		hits:    make(map[string][]time.Time),
		window:  window,
		maxHits: maxHits,
	}
}

// Allow records a hit for the key and reports whether it stays within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	recent := l.prune(key, now)

	if len(recent) >= l.maxHits {
		return false
	}

	l.hits[key] = append(recent, now)
	return true
}

// Reset forgets all recorded hits for the key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hits, key)
}

// prune drops hits that fell out of the window. Caller must hold the mutex.
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	windowStart := now.Add(-l.window)

	recent := l.hits[key][:0]
	for _, hit := range l.hits[key] {
		if hit.After(windowStart) {
			recent = append(recent, hit)
		}
	}

	l.hits[key] = recent
	return recent
}
