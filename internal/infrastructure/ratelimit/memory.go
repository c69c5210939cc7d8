// Package ratelimit holds the in-process login limiter and notification seen
// store used when no Redis is configured.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/routinely/tracker/internal/core/ports"
)

const (
	DefaultMaxFailures = 5
	DefaultWindow      = 15 * time.Minute
)

// MemoryLimiter tracks failed logins per origin in a sliding window.
// An origin with maxFailures failures inside the window is limited until the
// oldest of them leaves the window.
type MemoryLimiter struct {
	mu          sync.Mutex
	failures    map[string][]time.Time
	maxFailures int
	window      time.Duration
	clock       ports.Clock
}

func NewMemoryLimiter(maxFailures int, window time.Duration, clock ports.Clock) *MemoryLimiter {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &MemoryLimiter{
		failures:    make(map[string][]time.Time),
		maxFailures: maxFailures,
		window:      window,
		clock:       clock,
	}
}

func (l *MemoryLimiter) Check(_ context.Context, origin string) (time.Duration, error) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(origin, now)
	if len(recent) < l.maxFailures {
		return 0, nil
	}
	oldest := recent[len(recent)-l.maxFailures]
	return oldest.Add(l.window).Sub(now), nil
}

func (l *MemoryLimiter) RecordFailure(_ context.Context, origin string) error {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := append(l.prune(origin, now), now)
	if len(recent) > l.maxFailures {
		recent = recent[len(recent)-l.maxFailures:]
	}
	l.failures[origin] = recent
	return nil
}

func (l *MemoryLimiter) Reset(_ context.Context, origin string) error {
	l.mu.Lock()
	delete(l.failures, origin)
	l.mu.Unlock()
	return nil
}

// Purge drops origins whose failures have all expired.
func (l *MemoryLimiter) Purge() int {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for origin := range l.failures {
		if len(l.prune(origin, now)) == 0 {
			removed++
		}
	}
	return removed
}

// prune must be called with mu held.
func (l *MemoryLimiter) prune(origin string, now time.Time) []time.Time {
	failures := l.failures[origin]
	i := 0
	for i < len(failures) && now.Sub(failures[i]) >= l.window {
		i++
	}
	failures = failures[i:]
	if len(failures) == 0 {
		delete(l.failures, origin)
		return nil
	}
	l.failures[origin] = failures
	return failures
}
