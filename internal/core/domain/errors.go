package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotFound           = errors.New("not found")
	ErrRateLimited        = errors.New("too many failed login attempts")
	ErrSessionExpired     = errors.New("session expired")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrProtectedAccount   = errors.New("account is protected")
	ErrSelfDelete         = errors.New("cannot delete your own account")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// ValidationError describes bad input. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RateLimitedError carries how long the origin has to wait before retrying.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrRateLimited, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
