package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemorySeenStore_MarkSeen(t *testing.T) {
	clock := newClock()
	s := NewMemorySeenStore(time.Hour, clock)
	ctx := context.Background()

	_ = s.MarkSeen(ctx, 7, "routine-1-2026-03-02")

	seen, err := s.Seen(ctx, 7, []string{"routine-1-2026-03-02", "task-2-2026-03-02"})
	if err != nil {
		t.Fatalf("seen: %v", err)
	}
	if !seen["routine-1-2026-03-02"] || seen["task-2-2026-03-02"] {
		t.Fatalf("unexpected seen map: %v", seen)
	}

	other, _ := s.Seen(ctx, 8, []string{"routine-1-2026-03-02"})
	if other["routine-1-2026-03-02"] {
		t.Fatalf("seen marks must be per user")
	}

	clock.Advance(time.Hour)
	expired, _ := s.Seen(ctx, 7, []string{"routine-1-2026-03-02"})
	if expired["routine-1-2026-03-02"] {
		t.Fatalf("expected mark to expire")
	}
}

func TestMemorySeenStore_ClaimEmailOnce(t *testing.T) {
	clock := newClock()
	s := NewMemorySeenStore(time.Hour, clock)
	ctx := context.Background()

	first, _ := s.ClaimEmail(ctx, 1, "task-3-2026-03-02")
	second, _ := s.ClaimEmail(ctx, 1, "task-3-2026-03-02")
	if !first || second {
		t.Fatalf("expected only the first claim to win, got %v %v", first, second)
	}

	clock.Advance(2 * time.Hour)
	if n := s.Purge(); n != 1 {
		t.Fatalf("expected 1 purged entry, got %d", n)
	}
	again, _ := s.ClaimEmail(ctx, 1, "task-3-2026-03-02")
	if !again {
		t.Fatalf("expected claim to succeed after expiry")
	}
}

func TestMemorySeenStore_ReleaseEmail(t *testing.T) {
	s := NewMemorySeenStore(time.Hour, newClock())
	ctx := context.Background()

	if first, _ := s.ClaimEmail(ctx, 1, "routine-2-2026-03-02"); !first {
		t.Fatalf("expected first claim to win")
	}
	if err := s.ReleaseEmail(ctx, 1, "routine-2-2026-03-02"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if again, _ := s.ClaimEmail(ctx, 1, "routine-2-2026-03-02"); !again {
		t.Fatalf("expected claim to succeed after release")
	}
}
