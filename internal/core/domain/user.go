package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	MinUsernameLength    = 3
	MaxUsernameLength    = 50
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 100
	MinPasswordLength    = 8
)

// User models an account owner. PasswordHash never leaves the process.
type User struct {
	ID                 int64     `json:"id"`
	Username           string    `json:"username"`
	PasswordHash       string    `json:"-"`
	DisplayName        string    `json:"display_name"`
	Email              string    `json:"email,omitempty"`
	EmailNotifications bool      `json:"email_notifications"`
	IsAdmin            bool      `json:"is_admin"`
	CreatedAt          time.Time `json:"created_at"`
}

// WantsEmail reports whether notification emails can be sent to the user.
func (u *User) WantsEmail() bool {
	return u.EmailNotifications && strings.TrimSpace(u.Email) != ""
}

// Session is the authenticated identity bound to a request.
type Session struct {
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	LoginAt     time.Time `json:"login_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return NewValidationError("username", "must be between 3 and 50 characters")
	}
	if strings.ContainsFunc(username, unicode.IsSpace) {
		return NewValidationError("username", "must not contain spaces")
	}
	return nil
}

func ValidateDisplayName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinDisplayNameLength || n > MaxDisplayNameLength {
		return NewValidationError("display_name", "must be between 2 and 100 characters")
	}
	return nil
}

// ValidatePassword enforces the password policy shared by registration,
// self-service changes and admin resets.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return NewValidationError("password", "must be at least 8 characters")
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return NewValidationError("password", "must contain at least one letter and one digit")
	}
	return nil
}
