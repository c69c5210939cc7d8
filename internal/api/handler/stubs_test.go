package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/routinely/tracker/internal/api/middleware"
	"github.com/routinely/tracker/internal/core/domain"
)

type stubAuthService struct {
	registerFn      func(ctx context.Context, username, password, displayName string) (*domain.User, error)
	authenticateFn  func(ctx context.Context, username, password, origin string) (*domain.Session, string, error)
	validateFn      func(ctx context.Context, token string) (*domain.Session, error)
	profileFn       func(ctx context.Context, userID int64) (*domain.User, error)
	updateProfileFn func(ctx context.Context, userID int64, email string, notify bool) (*domain.User, error)
	changeFn        func(ctx context.Context, userID int64, current, next string) error
}

func (s *stubAuthService) Register(ctx context.Context, username, password, displayName string) (*domain.User, error) {
	return s.registerFn(ctx, username, password, displayName)
}

func (s *stubAuthService) Authenticate(ctx context.Context, username, password, origin string) (*domain.Session, string, error) {
	return s.authenticateFn(ctx, username, password, origin)
}

func (s *stubAuthService) ValidateSession(ctx context.Context, token string) (*domain.Session, error) {
	return s.validateFn(ctx, token)
}

func (s *stubAuthService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.profileFn(ctx, userID)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID int64, email string, notify bool) (*domain.User, error) {
	return s.updateProfileFn(ctx, userID, email, notify)
}

func (s *stubAuthService) ChangeOwnPassword(ctx context.Context, userID int64, current, next string) error {
	return s.changeFn(ctx, userID, current, next)
}

type stubItemService struct {
	addTaskFn      func(ctx context.Context, ownerID int64, in domain.TaskInput) (*domain.Task, error)
	updateTaskFn   func(ctx context.Context, ownerID, taskID int64, in domain.TaskInput) (*domain.Task, error)
	toggleTaskFn   func(ctx context.Context, ownerID, taskID int64) error
	deleteTaskFn   func(ctx context.Context, ownerID, taskID int64) error
	listTasksFn    func(ctx context.Context, ownerID int64, filter domain.TaskFilter) ([]domain.Task, error)
	addRoutineFn   func(ctx context.Context, ownerID int64, in domain.RoutineInput) (*domain.Routine, error)
	toggleRoutFn   func(ctx context.Context, ownerID, routineID int64) error
	deleteRoutFn   func(ctx context.Context, ownerID, routineID int64) error
	listRoutinesFn func(ctx context.Context, ownerID int64) ([]domain.Routine, error)
	logExecFn      func(ctx context.Context, ownerID, routineID int64, notes string) (*domain.RoutineExecution, error)
	dashboardFn    func(ctx context.Context, ownerID int64) (*domain.Dashboard, error)
}

func (s *stubItemService) AddTask(ctx context.Context, ownerID int64, in domain.TaskInput) (*domain.Task, error) {
	return s.addTaskFn(ctx, ownerID, in)
}

func (s *stubItemService) UpdateTask(ctx context.Context, ownerID, taskID int64, in domain.TaskInput) (*domain.Task, error) {
	return s.updateTaskFn(ctx, ownerID, taskID, in)
}

func (s *stubItemService) ToggleTask(ctx context.Context, ownerID, taskID int64) error {
	return s.toggleTaskFn(ctx, ownerID, taskID)
}

func (s *stubItemService) DeleteTask(ctx context.Context, ownerID, taskID int64) error {
	return s.deleteTaskFn(ctx, ownerID, taskID)
}

func (s *stubItemService) ListTasks(ctx context.Context, ownerID int64, filter domain.TaskFilter) ([]domain.Task, error) {
	return s.listTasksFn(ctx, ownerID, filter)
}

func (s *stubItemService) AddRoutine(ctx context.Context, ownerID int64, in domain.RoutineInput) (*domain.Routine, error) {
	return s.addRoutineFn(ctx, ownerID, in)
}

func (s *stubItemService) ToggleRoutine(ctx context.Context, ownerID, routineID int64) error {
	return s.toggleRoutFn(ctx, ownerID, routineID)
}

func (s *stubItemService) DeleteRoutine(ctx context.Context, ownerID, routineID int64) error {
	return s.deleteRoutFn(ctx, ownerID, routineID)
}

func (s *stubItemService) ListRoutines(ctx context.Context, ownerID int64) ([]domain.Routine, error) {
	return s.listRoutinesFn(ctx, ownerID)
}

func (s *stubItemService) LogExecution(ctx context.Context, ownerID, routineID int64, notes string) (*domain.RoutineExecution, error) {
	return s.logExecFn(ctx, ownerID, routineID, notes)
}

func (s *stubItemService) Dashboard(ctx context.Context, ownerID int64) (*domain.Dashboard, error) {
	return s.dashboardFn(ctx, ownerID)
}

type stubNotificationService struct {
	checkFn    func(ctx context.Context, userID int64) ([]domain.Notification, error)
	markSeenFn func(ctx context.Context, userID int64, id string) error
}

func (s *stubNotificationService) Check(ctx context.Context, userID int64) ([]domain.Notification, error) {
	return s.checkFn(ctx, userID)
}

func (s *stubNotificationService) MarkSeen(ctx context.Context, userID int64, id string) error {
	return s.markSeenFn(ctx, userID, id)
}

type stubAccountService struct {
	protected   map[int64]bool
	listUsersFn func(ctx context.Context) ([]domain.User, error)
	deleteFn    func(ctx context.Context, targetID, adminID int64, origin string) error
	passwordFn  func(ctx context.Context, targetID, adminID int64, newPassword, origin string) error
	auditFn     func(ctx context.Context, limit int) ([]domain.AuditEntry, error)
	denied      int
}

func (s *stubAccountService) IsProtected(id int64) bool { return s.protected[id] }

func (s *stubAccountService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.listUsersFn(ctx)
}

func (s *stubAccountService) DeleteUser(ctx context.Context, targetID, adminID int64, origin string) error {
	return s.deleteFn(ctx, targetID, adminID, origin)
}

func (s *stubAccountService) ChangePassword(ctx context.Context, targetID, adminID int64, newPassword, origin string) error {
	return s.passwordFn(ctx, targetID, adminID, newPassword, origin)
}

func (s *stubAccountService) ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	return s.auditFn(ctx, limit)
}

func (s *stubAccountService) RecordUnauthorized(context.Context, int64, string, string, string) {
	s.denied++
}

// newJSONContext builds an echo context for a JSON request with the
// validator installed, optionally signed in as userID.
func newJSONContext(method, target, body string, userID int64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID > 0 {
		c.Set(middleware.SessionKey, &domain.Session{UserID: userID, Username: "user"})
	}
	return c, rec
}
