package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/routinely/tracker/internal/core/domain"
)

// ErrorResponse is the error envelope of every API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ── auth ──────────────────────────────────────────────────────────────────────

type registerRequest struct {
	Username    string `json:"username"     validate:"required,max=50"`
	Password    string `json:"password"     validate:"required"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
}

type profileRequest struct {
	Email              string `json:"email"               validate:"omitempty,email,max=255"`
	EmailNotifications bool   `json:"email_notifications"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

// ── items ─────────────────────────────────────────────────────────────────────

type taskRequest struct {
	Title       string `json:"title"       validate:"required,max=255"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
}

func (r taskRequest) toInput() domain.TaskInput {
	return domain.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
	}
}

type routineRequest struct {
	Title        string   `json:"title"         validate:"required,max=255"`
	Description  string   `json:"description"`
	TimeSchedule string   `json:"time_schedule"`
	DaysOfWeek   []string `json:"days_of_week"  validate:"required"`
}

func (r routineRequest) toInput() domain.RoutineInput {
	return domain.RoutineInput{
		Title:        r.Title,
		Description:  r.Description,
		TimeSchedule: r.TimeSchedule,
		Days:         r.DaysOfWeek,
	}
}

type executionRequest struct {
	Notes string `json:"notes" validate:"max=1000"`
}

type taskListResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type routineListResponse struct {
	Routines []domain.Routine `json:"routines"`
}

type notificationResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Count         int                   `json:"count"`
}

// ── admin ─────────────────────────────────────────────────────────────────────

type adminPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required"`
}

type adminUser struct {
	domain.User
	Protected bool `json:"protected"`
}

type userListResponse struct {
	Users []adminUser `json:"users"`
}

type auditListResponse struct {
	Entries []domain.AuditEntry `json:"entries"`
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}
