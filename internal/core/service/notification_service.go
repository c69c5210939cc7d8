package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
	"github.com/routinely/tracker/internal/metrics"
)

const maxNotificationIDLength = 64

// NotificationService computes due notifications on demand and hands the
// email-worthy ones to the mail queue.
type NotificationService struct {
	users    ports.UserRepository
	tasks    ports.TaskRepository
	routines ports.RoutineRepository
	seen     ports.SeenStore
	mail     ports.MailQueue
	clock    ports.Clock
	log      zerolog.Logger
}

func NewNotificationService(
	users ports.UserRepository,
	tasks ports.TaskRepository,
	routines ports.RoutineRepository,
	seen ports.SeenStore,
	mail ports.MailQueue,
	clock ports.Clock,
	log zerolog.Logger,
) *NotificationService {
	return &NotificationService{
		users:    users,
		tasks:    tasks,
		routines: routines,
		seen:     seen,
		mail:     mail,
		clock:    clock,
		log:      log,
	}
}

// Check returns the user's due notifications. A routine keeps being reported
// on every call inside its tolerance window; Seen marks what the client has
// acknowledged. Email dispatch never blocks or fails the call.
func (s *NotificationService) Check(ctx context.Context, userID int64) ([]domain.Notification, error) {
	start := time.Now()
	defer func() { metrics.DueComputationDuration.Observe(time.Since(start).Seconds()) }()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check notifications: %w", err)
	}
	routines, err := s.routines.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check notifications: %w", err)
	}
	tasks, err := s.tasks.List(ctx, userID, domain.TaskFilterPending)
	if err != nil {
		return nil, fmt.Errorf("check notifications: %w", err)
	}

	log := s.log.With().Int64("user_id", userID).Logger()
	due := computeDue(s.clock.Now(), routines, tasks, log)
	if len(due) == 0 {
		return []domain.Notification{}, nil
	}

	s.flagSeen(ctx, userID, due)
	for _, n := range due {
		metrics.NotificationsTotal.WithLabelValues(string(n.Kind), string(n.Urgency)).Inc()
		if n.Emailable() && user.WantsEmail() {
			s.dispatchEmail(ctx, user, n)
		}
	}
	return due, nil
}

func (s *NotificationService) flagSeen(ctx context.Context, userID int64, due []domain.Notification) {
	if s.seen == nil {
		return
	}
	ids := make([]string, len(due))
	for i, n := range due {
		ids[i] = n.ID
	}
	seen, err := s.seen.Seen(ctx, userID, ids)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("seen lookup failed, reporting all as unseen")
		return
	}
	for i := range due {
		due[i].Seen = seen[due[i].ID]
	}
}

// dispatchEmail sends each notification at most once. The claim is taken
// only after rendering and is given back when the queue drops the email, so
// a later poll in the same window retries.
func (s *NotificationService) dispatchEmail(ctx context.Context, user *domain.User, n domain.Notification) {
	log := s.log.With().Int64("user_id", user.ID).Str("notification_id", n.ID).Logger()

	msg, err := renderEmail(user, n)
	if err != nil {
		log.Error().Err(err).Msg("email not rendered")
		return
	}

	claimed := false
	if s.seen != nil {
		first, err := s.seen.ClaimEmail(ctx, user.ID, n.ID)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("email claim failed, sending anyway")
		case !first:
			log.Debug().Msg("email already sent")
			return
		default:
			claimed = true
		}
	}

	if s.mail.Enqueue(msg) {
		metrics.EmailsTotal.WithLabelValues("queued").Inc()
		return
	}
	if claimed {
		if err := s.seen.ReleaseEmail(ctx, user.ID, n.ID); err != nil {
			log.Warn().Err(err).Msg("email claim not released, it will not be retried")
		}
	}
}

func (s *NotificationService) MarkSeen(ctx context.Context, userID int64, notificationID string) error {
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" || len(notificationID) > maxNotificationIDLength {
		return domain.NewValidationError("id", "invalid notification id")
	}
	if s.seen == nil {
		return nil
	}
	if err := s.seen.MarkSeen(ctx, userID, notificationID); err != nil {
		return fmt.Errorf("mark notification seen: %w", err)
	}
	return nil
}
