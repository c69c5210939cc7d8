package ports

import (
	"context"
	"time"

	"github.com/routinely/tracker/internal/core/domain"
)

// UserRepository persists user credentials and profile settings.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateProfile(ctx context.Context, id int64, email string, emailNotifications bool) error
	// Delete removes the user with every task, routine and execution it owns.
	Delete(ctx context.Context, id int64) error
}

// TaskRepository persists tasks. Every call is scoped to an owner.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Toggle(ctx context.Context, ownerID, taskID int64, at time.Time) error
	Delete(ctx context.Context, ownerID, taskID int64) error
	List(ctx context.Context, ownerID int64, filter domain.TaskFilter) ([]domain.Task, error)
}

// RoutineRepository persists routines and their execution log.
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.Routine) (*domain.Routine, error)
	FindByID(ctx context.Context, ownerID, routineID int64) (*domain.Routine, error)
	Toggle(ctx context.Context, ownerID, routineID int64) error
	Delete(ctx context.Context, ownerID, routineID int64) error
	List(ctx context.Context, ownerID int64) ([]domain.Routine, error)
	AppendExecution(ctx context.Context, exec *domain.RoutineExecution) (*domain.RoutineExecution, error)
}

// AuditRepository is an append-only log of security events.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// Store groups the typed repositories of one relational backend.
type Store interface {
	Users() UserRepository
	Tasks() TaskRepository
	Routines() RoutineRepository
	Audit() AuditRepository
	Ping(ctx context.Context) error
}
