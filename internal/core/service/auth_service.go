package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
	"github.com/routinely/tracker/internal/metrics"
)

const defaultSessionTTL = 2 * time.Hour

var validate = validator.New()

// sessionClaims is the JWT payload. IssuedAt is the login time.
type sessionClaims struct {
	UserID      int64  `json:"uid"`
	Username    string `json:"username"`
	DisplayName string `json:"name"`
	Admin       bool   `json:"admin"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login and session validation.
type AuthService struct {
	users      ports.UserRepository
	limiter    ports.LoginLimiter
	audit      auditor
	clock      ports.Clock
	jwtSecret  []byte
	sessionTTL time.Duration
	log        zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	limiter ports.LoginLimiter,
	audit ports.AuditRepository,
	clock ports.Clock,
	jwtSecret string,
	sessionTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &AuthService{
		users:      users,
		limiter:    limiter,
		audit:      auditor{repo: audit, clock: clock, log: log},
		clock:      clock,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		log:        log,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password, displayName string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	displayName = strings.TrimSpace(displayName)

	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := domain.ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		CreatedAt:    s.clock.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Authenticate checks the origin's rate limit, then the credentials. Unknown
// users and wrong passwords both count as a failure and both return
// ErrInvalidCredentials; only the audit log tells them apart.
func (s *AuthService) Authenticate(ctx context.Context, username, password, origin string) (*domain.Session, string, error) {
	username = strings.TrimSpace(username)

	wait, err := s.limiter.Check(ctx, origin)
	if err != nil {
		s.log.Warn().Err(err).Str("origin", origin).Msg("login limiter check failed, allowing attempt")
	} else if wait > 0 {
		metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
		s.audit.record(ctx, domain.AuditEntry{
			Operation: domain.AuditLogin,
			Outcome:   domain.OutcomeDenied,
			Username:  username,
			Origin:    origin,
			Detail:    "rate limited",
		})
		return nil, "", &domain.RateLimitedError{RetryAfter: wait}
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.loginFailed(ctx, origin, username, 0, "unknown user")
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("authenticate: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.loginFailed(ctx, origin, username, user.ID, "wrong password")
		return nil, "", domain.ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, origin); err != nil {
		s.log.Warn().Err(err).Str("origin", origin).Msg("failed to reset login limiter")
	}

	session, token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.audit.record(ctx, domain.AuditEntry{
		Operation: domain.AuditLogin,
		Outcome:   domain.OutcomeSuccess,
		ActorID:   user.ID,
		TargetID:  user.ID,
		Username:  user.Username,
		Origin:    origin,
	})
	return session, token, nil
}

func (s *AuthService) loginFailed(ctx context.Context, origin, username string, userID int64, detail string) {
	if err := s.limiter.RecordFailure(ctx, origin); err != nil {
		s.log.Warn().Err(err).Str("origin", origin).Msg("failed to record login failure")
	}
	metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
	s.audit.record(ctx, domain.AuditEntry{
		Operation: domain.AuditLogin,
		Outcome:   domain.OutcomeFailure,
		TargetID:  userID,
		Username:  username,
		Origin:    origin,
		Detail:    detail,
	})
}

func (s *AuthService) issue(user *domain.User) (*domain.Session, string, error) {
	loginAt := s.clock.Now().UTC().Truncate(time.Second)
	session := &domain.Session{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
		LoginAt:     loginAt,
		ExpiresAt:   loginAt.Add(s.sessionTTL),
	}

	claims := sessionClaims{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Admin:       user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(session.LoginAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, "", fmt.Errorf("sign session: %w", err)
	}
	return session, token, nil
}

// ValidateSession parses a session token. Tokens older than the session
// lifetime yield ErrSessionExpired; anything else invalid yields ErrUnauthorized.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock.Now))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, domain.ErrSessionExpired
	}
	if err != nil || !parsed.Valid || claims.IssuedAt == nil {
		return nil, domain.ErrUnauthorized
	}

	loginAt := claims.IssuedAt.Time
	if s.clock.Now().Sub(loginAt) >= s.sessionTTL {
		return nil, domain.ErrSessionExpired
	}

	// The account may have been deleted or demoted since login.
	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}

	return &domain.Session{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
		LoginAt:     loginAt,
		ExpiresAt:   loginAt.Add(s.sessionTTL),
	}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, email string, emailNotifications bool) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email != "" {
		if err := validate.Var(email, "email"); err != nil {
			return nil, domain.NewValidationError("email", "must be a valid email")
		}
	}
	if emailNotifications && email == "" {
		return nil, domain.NewValidationError("email", "is required to enable email notifications")
	}

	if err := s.users.UpdateProfile(ctx, userID, email, emailNotifications); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) ChangeOwnPassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}
	if err := domain.ValidatePassword(next); err != nil {
		return err
	}

	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.audit.record(ctx, domain.AuditEntry{
		Operation: domain.AuditChangePassword,
		Outcome:   domain.OutcomeSuccess,
		ActorID:   userID,
		TargetID:  userID,
		Username:  user.Username,
		Detail:    "self service",
	})
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
