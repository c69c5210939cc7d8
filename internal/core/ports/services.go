package ports

import (
	"context"

	"github.com/routinely/tracker/internal/core/domain"
)

// SessionValidator resolves a session token to the signed-in user.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*domain.Session, error)
}

type AuthService interface {
	Register(ctx context.Context, username, password, displayName string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password, origin string) (*domain.Session, string, error)
	ValidateSession(ctx context.Context, token string) (*domain.Session, error)
	Profile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, email string, emailNotifications bool) (*domain.User, error)
	ChangeOwnPassword(ctx context.Context, userID int64, current, next string) error
}

type ItemService interface {
	AddTask(ctx context.Context, ownerID int64, in domain.TaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID int64, in domain.TaskInput) (*domain.Task, error)
	ToggleTask(ctx context.Context, ownerID, taskID int64) error
	DeleteTask(ctx context.Context, ownerID, taskID int64) error
	ListTasks(ctx context.Context, ownerID int64, filter domain.TaskFilter) ([]domain.Task, error)

	AddRoutine(ctx context.Context, ownerID int64, in domain.RoutineInput) (*domain.Routine, error)
	ToggleRoutine(ctx context.Context, ownerID, routineID int64) error
	DeleteRoutine(ctx context.Context, ownerID, routineID int64) error
	ListRoutines(ctx context.Context, ownerID int64) ([]domain.Routine, error)
	LogExecution(ctx context.Context, ownerID, routineID int64, notes string) (*domain.RoutineExecution, error)

	Dashboard(ctx context.Context, ownerID int64) (*domain.Dashboard, error)
}

type NotificationService interface {
	Check(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkSeen(ctx context.Context, userID int64, notificationID string) error
}

type AccountService interface {
	IsProtected(id int64) bool
	ListUsers(ctx context.Context) ([]domain.User, error)
	DeleteUser(ctx context.Context, targetID, adminID int64, origin string) error
	ChangePassword(ctx context.Context, targetID, adminID int64, newPassword, origin string) error
	ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error)
	RecordUnauthorized(ctx context.Context, actorID int64, username, origin, resource string)
}
