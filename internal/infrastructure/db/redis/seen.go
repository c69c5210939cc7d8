package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/routinely/tracker/internal/core/ports"
)

// SeenStore records acknowledged and emailed notifications in Redis.
// Key format: seen:<user_id>:<notification_id> and mailed:<user_id>:<notification_id>
type SeenStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.SeenStore = (*SeenStore)(nil)

func NewSeenStore(client *redis.Client, ttl time.Duration) *SeenStore {
	return &SeenStore{client: client, ttl: ttl}
}

// MarkSeen records the acknowledgement; it expires after ttl.
func (s *SeenStore) MarkSeen(ctx context.Context, userID int64, notificationID string) error {
	return s.client.Set(ctx, seenKey(userID, notificationID), "1", s.ttl).Err()
}

func (s *SeenStore) Seen(ctx context.Context, userID int64, notificationIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(notificationIDs))
	if len(notificationIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(notificationIDs))
	for i, id := range notificationIDs {
		keys[i] = seenKey(userID, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("seen check: %w", err)
	}
	for i, v := range values {
		if v != nil {
			out[notificationIDs[i]] = true
		}
	}
	return out, nil
}

// ClaimEmail uses SET NX so only the first caller across instances wins.
func (s *SeenStore) ClaimEmail(ctx context.Context, userID int64, notificationID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, mailedKey(userID, notificationID), "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("email claim: %w", err)
	}
	return ok, nil
}

func (s *SeenStore) ReleaseEmail(ctx context.Context, userID int64, notificationID string) error {
	if err := s.client.Del(ctx, mailedKey(userID, notificationID)).Err(); err != nil {
		return fmt.Errorf("email release: %w", err)
	}
	return nil
}

func seenKey(userID int64, id string) string   { return fmt.Sprintf("seen:%d:%s", userID, id) }
func mailedKey(userID int64, id string) string { return fmt.Sprintf("mailed:%d:%s", userID, id) }
