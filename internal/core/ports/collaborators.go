package ports

import (
	"context"
	"time"

	"github.com/routinely/tracker/internal/core/domain"
)

// Clock is the source of the current time, in the tracker's time zone.
type Clock interface {
	Now() time.Time
}

// LoginLimiter counts failed logins per origin.
type LoginLimiter interface {
	// Check returns how long origin has to wait; zero means attempts are allowed.
	Check(ctx context.Context, origin string) (time.Duration, error)
	RecordFailure(ctx context.Context, origin string) error
	Reset(ctx context.Context, origin string) error
}

// SeenStore remembers which notifications a user has acknowledged and which
// have already been emailed.
type SeenStore interface {
	MarkSeen(ctx context.Context, userID int64, notificationID string) error
	Seen(ctx context.Context, userID int64, notificationIDs []string) (map[string]bool, error)
	// ClaimEmail returns true the first time it is called for a notification.
	ClaimEmail(ctx context.Context, userID int64, notificationID string) (bool, error)
	// ReleaseEmail drops a claim whose email never made it into the queue.
	ReleaseEmail(ctx context.Context, userID int64, notificationID string) error
}

// MailQueue accepts emails for asynchronous delivery. Enqueue never blocks;
// it reports false when the message was dropped.
type MailQueue interface {
	Enqueue(msg domain.EmailMessage) bool
}

// MailSink delivers one email.
type MailSink interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}
