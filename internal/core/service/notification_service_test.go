package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/infrastructure/ratelimit"
)

type notificationFixture struct {
	svc   *NotificationService
	store *stubStore
	queue *stubQueue
	clock *fakeClock
	user  *domain.User
}

func newNotificationFixture(t *testing.T, email string, notify bool) *notificationFixture {
	t.Helper()
	store := newStubStore()
	clock := newFakeClock(monday(7, 0))
	queue := &stubQueue{}
	seen := ratelimit.NewMemorySeenStore(0, clock)

	user, err := stubUsers{store}.Create(context.Background(), &domain.User{
		Username: "ana", DisplayName: "Ana", Email: email, EmailNotifications: notify,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	svc := NewNotificationService(stubUsers{store}, stubTasks{store}, stubRoutines{store}, seen, queue, clock, zerolog.Nop())
	return &notificationFixture{svc: svc, store: store, queue: queue, clock: clock, user: user}
}

func (f *notificationFixture) addRoutine(schedule, days string) {
	_, _ = stubRoutines{f.store}.Create(context.Background(), &domain.Routine{
		OwnerID: f.user.ID, Title: "Skincare", TimeSchedule: schedule, DaysOfWeek: days, Active: true,
	})
}

func (f *notificationFixture) addTask(title, due string) {
	_, _ = stubTasks{f.store}.Create(context.Background(), &domain.Task{
		OwnerID: f.user.ID, Title: title, DueDate: due, Priority: domain.PriorityMedium,
	})
}

func TestNotificationService_Check_EmailsOnlyNowAndToday(t *testing.T) {
	f := newNotificationFixture(t, "ana@example.com", true)
	f.addRoutine("07:00", "monday")
	f.addTask("Pay rent", "2026-03-02")
	f.addTask("Buy flowers", "2026-03-03")

	got, err := f.svc.Check(context.Background(), f.user.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %+v", got)
	}

	sent := f.queue.sent()
	if len(sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(sent))
	}
	for _, m := range sent {
		if m.To != "ana@example.com" {
			t.Fatalf("unexpected recipient %q", m.To)
		}
		if strings.Contains(m.Subject, "Buy flowers") {
			t.Fatalf("task due tomorrow must not be emailed")
		}
	}
	if !strings.Contains(sent[0].HTMLBody, "Skincare") {
		t.Fatalf("routine email body missing title: %s", sent[0].HTMLBody)
	}
}

func TestNotificationService_Check_NoEmailWithoutOptIn(t *testing.T) {
	for _, tc := range []struct {
		name   string
		email  string
		notify bool
	}{
		{"flag off", "ana@example.com", false},
		{"no address", "", true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newNotificationFixture(t, tc.email, tc.notify)
			f.addRoutine("07:00", "monday")

			got, err := f.svc.Check(context.Background(), f.user.ID)
			if err != nil || len(got) != 1 {
				t.Fatalf("expected one notification, got %v %+v", err, got)
			}
			if n := len(f.queue.sent()); n != 0 {
				t.Fatalf("expected no emails, got %d", n)
			}
		})
	}
}

func TestNotificationService_Check_RefiresButEmailsOnce(t *testing.T) {
	f := newNotificationFixture(t, "ana@example.com", true)
	f.addRoutine("07:00", "monday")

	first, _ := f.svc.Check(context.Background(), f.user.ID)
	f.clock.Set(monday(7, 1))
	second, _ := f.svc.Check(context.Background(), f.user.ID)

	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Fatalf("expected the routine on both polls, got %+v and %+v", first, second)
	}
	if n := len(f.queue.sent()); n != 1 {
		t.Fatalf("expected a single email, got %d", n)
	}
}

func TestNotificationService_Check_FullQueueDoesNotFail(t *testing.T) {
	f := newNotificationFixture(t, "ana@example.com", true)
	f.queue.full = true
	f.addRoutine("07:00", "monday")

	got, err := f.svc.Check(context.Background(), f.user.ID)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected notification despite dropped email, got %v %+v", err, got)
	}
}

func TestNotificationService_Check_DroppedEmailRetriedOnNextPoll(t *testing.T) {
	f := newNotificationFixture(t, "ana@example.com", true)
	f.addRoutine("07:00", "monday")

	f.queue.full = true
	if _, err := f.svc.Check(context.Background(), f.user.ID); err != nil {
		t.Fatalf("first check: %v", err)
	}
	if n := len(f.queue.sent()); n != 0 {
		t.Fatalf("expected the email to be dropped, got %d", n)
	}

	f.queue.mu.Lock()
	f.queue.full = false
	f.queue.mu.Unlock()
	f.clock.Set(monday(7, 0).Add(30 * time.Second))
	got, err := f.svc.Check(context.Background(), f.user.ID)
	if err != nil || len(got) != 1 {
		t.Fatalf("second check: %v %+v", err, got)
	}
	if n := len(f.queue.sent()); n != 1 {
		t.Fatalf("expected the dropped email to be sent on the next poll, got %d", n)
	}

	f.clock.Set(monday(7, 1))
	_, _ = f.svc.Check(context.Background(), f.user.ID)
	if n := len(f.queue.sent()); n != 1 {
		t.Fatalf("expected no further email once queued, got %d", n)
	}
}

func TestNotificationService_MarkSeen(t *testing.T) {
	f := newNotificationFixture(t, "", false)
	f.addTask("Pay rent", "2026-03-02")

	got, _ := f.svc.Check(context.Background(), f.user.ID)
	if len(got) != 1 || got[0].Seen {
		t.Fatalf("expected one unseen notification, got %+v", got)
	}

	if err := f.svc.MarkSeen(context.Background(), f.user.ID, got[0].ID); err != nil {
		t.Fatalf("mark seen: %v", err)
	}
	again, _ := f.svc.Check(context.Background(), f.user.ID)
	if len(again) != 1 || !again[0].Seen {
		t.Fatalf("expected notification flagged seen, got %+v", again)
	}

	if err := f.svc.MarkSeen(context.Background(), f.user.ID, " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNotificationService_Check_UnknownUser(t *testing.T) {
	f := newNotificationFixture(t, "", false)
	if _, err := f.svc.Check(context.Background(), 999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
