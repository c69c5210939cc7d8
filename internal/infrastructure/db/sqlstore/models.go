package sqlstore

import (
	"time"

	"github.com/routinely/tracker/internal/core/domain"
)

type userModel struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement"`
	Username           string    `gorm:"size:50;not null;uniqueIndex"`
	PasswordHash       string    `gorm:"size:255;not null"`
	DisplayName        string    `gorm:"size:100;not null"`
	Email              string    `gorm:"size:255"`
	EmailNotifications bool      `gorm:"not null"`
	IsAdmin            bool      `gorm:"not null"`
	CreatedAt          time.Time `gorm:"not null"`

	Tasks    []taskModel    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Routines []routineModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (userModel) TableName() string { return "users" }

type taskModel struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	UserID      int64   `gorm:"not null;index"`
	Title       string  `gorm:"size:255;not null"`
	Description string  `gorm:"type:text"`
	Completed   bool    `gorm:"not null;index"`
	Priority    string  `gorm:"size:10;not null"`
	DueDate     *string `gorm:"size:10;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (taskModel) TableName() string { return "tasks" }

type routineModel struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	UserID       int64   `gorm:"not null;index"`
	Title        string  `gorm:"size:255;not null"`
	Description  string  `gorm:"type:text"`
	TimeSchedule *string `gorm:"size:8"`
	DaysOfWeek   string  `gorm:"size:80;not null"`
	Active       bool    `gorm:"not null"`
	CreatedAt    time.Time

	Executions []routineExecutionModel `gorm:"foreignKey:RoutineID;constraint:OnDelete:CASCADE"`
}

func (routineModel) TableName() string { return "routines" }

type routineExecutionModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	RoutineID    int64  `gorm:"not null;index"`
	ExecutedDate string `gorm:"size:10;not null"`
	ExecutedTime string `gorm:"size:8"`
	Notes        string `gorm:"type:text"`
	CreatedAt    time.Time
}

func (routineExecutionModel) TableName() string { return "routine_executions" }

type auditEntryModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Operation string    `gorm:"size:40;not null;index"`
	Outcome   string    `gorm:"size:20;not null"`
	ActorID   int64     `gorm:"index"`
	TargetID  int64     `gorm:"index"`
	Username  string    `gorm:"size:50"`
	Origin    string    `gorm:"size:64"`
	Detail    string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (auditEntryModel) TableName() string { return "audit_log" }

// ── mapping ───────────────────────────────────────────────────────────────────

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toUserModel(u *domain.User) userModel {
	return userModel{
		ID:                 u.ID,
		Username:           u.Username,
		PasswordHash:       u.PasswordHash,
		DisplayName:        u.DisplayName,
		Email:              u.Email,
		EmailNotifications: u.EmailNotifications,
		IsAdmin:            u.IsAdmin,
		CreatedAt:          u.CreatedAt,
	}
}

func (m userModel) toDomain() domain.User {
	return domain.User{
		ID:                 m.ID,
		Username:           m.Username,
		PasswordHash:       m.PasswordHash,
		DisplayName:        m.DisplayName,
		Email:              m.Email,
		EmailNotifications: m.EmailNotifications,
		IsAdmin:            m.IsAdmin,
		CreatedAt:          m.CreatedAt,
	}
}

func toTaskModel(t *domain.Task) taskModel {
	return taskModel{
		ID:          t.ID,
		UserID:      t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		DueDate:     nullable(t.DueDate),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (m taskModel) toDomain() domain.Task {
	return domain.Task{
		ID:          m.ID,
		OwnerID:     m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Completed:   m.Completed,
		Priority:    domain.Priority(m.Priority),
		DueDate:     deref(m.DueDate),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toRoutineModel(r *domain.Routine) routineModel {
	return routineModel{
		ID:           r.ID,
		UserID:       r.OwnerID,
		Title:        r.Title,
		Description:  r.Description,
		TimeSchedule: nullable(r.TimeSchedule),
		DaysOfWeek:   r.DaysOfWeek,
		Active:       r.Active,
		CreatedAt:    r.CreatedAt,
	}
}

func (m routineModel) toDomain() domain.Routine {
	return domain.Routine{
		ID:           m.ID,
		OwnerID:      m.UserID,
		Title:        m.Title,
		Description:  m.Description,
		TimeSchedule: deref(m.TimeSchedule),
		DaysOfWeek:   m.DaysOfWeek,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
	}
}

func toAuditModel(e *domain.AuditEntry) auditEntryModel {
	return auditEntryModel{
		ID:        e.ID,
		Operation: string(e.Operation),
		Outcome:   string(e.Outcome),
		ActorID:   e.ActorID,
		TargetID:  e.TargetID,
		Username:  e.Username,
		Origin:    e.Origin,
		Detail:    e.Detail,
		CreatedAt: e.CreatedAt,
	}
}

func (m auditEntryModel) toDomain() domain.AuditEntry {
	return domain.AuditEntry{
		ID:        m.ID,
		Operation: domain.AuditOperation(m.Operation),
		Outcome:   domain.AuditOutcome(m.Outcome),
		ActorID:   m.ActorID,
		TargetID:  m.TargetID,
		Username:  m.Username,
		Origin:    m.Origin,
		Detail:    m.Detail,
		CreatedAt: m.CreatedAt,
	}
}
