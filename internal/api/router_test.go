package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/api/handler"
	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
)

// stubAuth accepts "admin-token" and "user-token"; anything else is expired.
type stubAuth struct {
	ports.AuthService
	authenticate func(username, password string) (*domain.Session, string, error)
	register     func(username string) (*domain.User, error)
}

func (s *stubAuth) ValidateSession(_ context.Context, token string) (*domain.Session, error) {
	switch token {
	case "admin-token":
		return &domain.Session{UserID: 1, Username: "principal", IsAdmin: true}, nil
	case "user-token":
		return &domain.Session{UserID: 7, Username: "guest"}, nil
	default:
		return nil, domain.ErrSessionExpired
	}
}

func (s *stubAuth) Authenticate(_ context.Context, username, password, _ string) (*domain.Session, string, error) {
	return s.authenticate(username, password)
}

func (s *stubAuth) Register(_ context.Context, username, _, _ string) (*domain.User, error) {
	return s.register(username)
}

type stubItems struct {
	ports.ItemService
	listErr error
}

func (s *stubItems) ListTasks(context.Context, int64, domain.TaskFilter) ([]domain.Task, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return []domain.Task{}, nil
}

func (s *stubItems) ToggleTask(context.Context, int64, int64) error { return domain.ErrNotFound }

type stubAccounts struct {
	ports.AccountService
	denied []string
}

func (s *stubAccounts) RecordUnauthorized(_ context.Context, _ int64, _, _, resource string) {
	s.denied = append(s.denied, resource)
}

func (s *stubAccounts) DeleteUser(_ context.Context, targetID, adminID int64, _ string) error {
	switch {
	case targetID == adminID:
		return domain.ErrSelfDelete
	case targetID == 2:
		return domain.ErrProtectedAccount
	case targetID == 99:
		return domain.ErrUserNotFound
	}
	return nil
}

type routerFixture struct {
	auth     *stubAuth
	items    *stubItems
	accounts *stubAccounts
	ready    map[string]handler.PingFunc
}

func newFixture() *routerFixture {
	return &routerFixture{
		auth: &stubAuth{
			authenticate: func(string, string) (*domain.Session, string, error) {
				return nil, "", domain.ErrInvalidCredentials
			},
			register: func(string) (*domain.User, error) { return nil, domain.ErrDuplicateUsername },
		},
		items:    &stubItems{},
		accounts: &stubAccounts{},
		ready:    map[string]handler.PingFunc{"database": func(context.Context) error { return nil }},
	}
}

func (f *routerFixture) do(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := NewRouter(Dependencies{
		Auth:      f.auth,
		Items:     f.items,
		Accounts:  f.accounts,
		Readiness: f.ready,
		Registry:  prometheus.NewRegistry(),
		Log:       zerolog.Nop(),
	})

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body handler.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestRouter_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		token  string
		body   string
		want   int
	}{
		{"duplicate username", http.MethodPost, "/auth/register", "", `{"username":"maria","password":"segredo123","display_name":"Maria"}`, http.StatusConflict},
		{"invalid credentials", http.MethodPost, "/auth/login", "", `{"username":"maria","password":"wrong"}`, http.StatusUnauthorized},
		{"missing field", http.MethodPost, "/auth/login", "", `{"username":"maria"}`, http.StatusBadRequest},
		{"no session", http.MethodGet, "/api/tasks", "", "", http.StatusUnauthorized},
		{"expired session", http.MethodGet, "/api/tasks", "stale", "", http.StatusUnauthorized},
		{"bad filter", http.MethodGet, "/api/tasks?filter=nope", "user-token", "", http.StatusBadRequest},
		{"list tasks", http.MethodGet, "/api/tasks", "user-token", "", http.StatusOK},
		{"foreign task", http.MethodPost, "/api/tasks/5/toggle", "user-token", "", http.StatusNotFound},
		{"non admin", http.MethodGet, "/admin/users", "user-token", "", http.StatusForbidden},
		{"self delete", http.MethodDelete, "/admin/users/1", "admin-token", "", http.StatusUnprocessableEntity},
		{"protected account", http.MethodDelete, "/admin/users/2", "admin-token", "", http.StatusConflict},
		{"unknown user", http.MethodDelete, "/admin/users/99", "admin-token", "", http.StatusNotFound},
		{"delete user", http.MethodDelete, "/admin/users/8", "admin-token", "", http.StatusNoContent},
		{"liveness", http.MethodGet, "/health", "", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newFixture().do(t, tt.method, tt.target, tt.token, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_RateLimitedLogin(t *testing.T) {
	f := newFixture()
	f.auth.authenticate = func(string, string) (*domain.Session, string, error) {
		return nil, "", &domain.RateLimitedError{RetryAfter: 89500 * time.Millisecond}
	}

	rec := f.do(t, http.MethodPost, "/auth/login", "", `{"username":"maria","password":"segredo123"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "90" {
		t.Fatalf("expected Retry-After 90, got %q", got)
	}
}

func TestRouter_StoreUnavailable(t *testing.T) {
	f := newFixture()
	f.items.listErr = fmt.Errorf("list tasks: %w: %w", domain.ErrStoreUnavailable, context.DeadlineExceeded)

	rec := f.do(t, http.MethodGet, "/api/tasks", "user-token", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if msg := errorBody(t, rec); strings.Contains(msg, "deadline") {
		t.Fatalf("internal cause leaked: %q", msg)
	}
}

func TestRouter_UnexpectedErrorIsGeneric(t *testing.T) {
	f := newFixture()
	f.items.listErr = fmt.Errorf("boom: secret detail")

	rec := f.do(t, http.MethodGet, "/api/tasks", "user-token", "")
	if rec.Code != http.StatusInternalServerError || errorBody(t, rec) != "internal server error" {
		t.Fatalf("expected generic 500, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_DeniedAdminAccessIsAudited(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodDelete, "/admin/users/8", "user-token", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if len(f.accounts.denied) != 1 || f.accounts.denied[0] != "DELETE /admin/users/8" {
		t.Fatalf("expected one audited denial, got %v", f.accounts.denied)
	}
}

func TestRouter_SessionCookie(t *testing.T) {
	f := newFixture()
	e := NewRouter(Dependencies{
		Auth:     f.auth,
		Items:    f.items,
		Accounts: f.accounts,
		Registry: prometheus.NewRegistry(),
		Log:      zerolog.Nop(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "user-token"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected cookie session to pass, got %d", rec.Code)
	}
}

func TestRouter_ReadinessDegraded(t *testing.T) {
	f := newFixture()
	f.ready["redis"] = func(context.Context) error { return fmt.Errorf("dial tcp: refused") }

	rec := f.do(t, http.MethodGet, "/health/ready", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
