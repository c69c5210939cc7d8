package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/routinely/tracker/internal/core/ports"
)

// DefaultSeenTTL outlives the day a notification id refers to.
const DefaultSeenTTL = 48 * time.Hour

// MemorySeenStore keeps seen and emailed notification ids in process memory.
type MemorySeenStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
	clock   ports.Clock
}

var _ ports.SeenStore = (*MemorySeenStore)(nil)

func NewMemorySeenStore(ttl time.Duration, clock ports.Clock) *MemorySeenStore {
	if ttl <= 0 {
		ttl = DefaultSeenTTL
	}
	return &MemorySeenStore{entries: make(map[string]time.Time), ttl: ttl, clock: clock}
}

func (s *MemorySeenStore) MarkSeen(_ context.Context, userID int64, notificationID string) error {
	s.mu.Lock()
	s.entries[seenKey(userID, notificationID)] = s.clock.Now().Add(s.ttl)
	s.mu.Unlock()
	return nil
}

func (s *MemorySeenStore) Seen(_ context.Context, userID int64, notificationIDs []string) (map[string]bool, error) {
	now := s.clock.Now()
	out := make(map[string]bool, len(notificationIDs))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range notificationIDs {
		if exp, ok := s.entries[seenKey(userID, id)]; ok && now.Before(exp) {
			out[id] = true
		}
	}
	return out, nil
}

func (s *MemorySeenStore) ClaimEmail(_ context.Context, userID int64, notificationID string) (bool, error) {
	now := s.clock.Now()
	key := mailedKey(userID, notificationID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if exp, ok := s.entries[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.entries[key] = now.Add(s.ttl)
	return true, nil
}

func (s *MemorySeenStore) ReleaseEmail(_ context.Context, userID int64, notificationID string) error {
	s.mu.Lock()
	delete(s.entries, mailedKey(userID, notificationID))
	s.mu.Unlock()
	return nil
}

// Purge drops expired entries.
func (s *MemorySeenStore) Purge() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

func seenKey(userID int64, id string) string   { return fmt.Sprintf("seen:%d:%s", userID, id) }
func mailedKey(userID int64, id string) string { return fmt.Sprintf("mailed:%d:%s", userID, id) }
