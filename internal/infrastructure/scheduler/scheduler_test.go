package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestScheduler_RejectsShortInterval(t *testing.T) {
	s := New(time.UTC, zerolog.Nop())
	if _, err := s.Every("tight", 10*time.Millisecond, func() {}); err == nil {
		t.Fatalf("expected sub-second interval to be rejected")
	}
}

func TestScheduler_RunsAndRecovers(t *testing.T) {
	s := New(nil, zerolog.Nop())
	var runs atomic.Int32
	if _, err := s.Every("panicky", time.Second, func() {
		runs.Add(1)
		panic("boom")
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	s.Start()
	deadline := time.Now().Add(3500 * time.Millisecond)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	s.Stop()

	if runs.Load() < 2 {
		t.Fatalf("expected the job to keep running after a panic, ran %d times", runs.Load())
	}
}
