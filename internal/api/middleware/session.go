package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
)

const (
	// SessionKey is the echo context key holding the *domain.Session.
	SessionKey = "session"
	// SessionCookie is the cookie login sets for browser clients.
	SessionCookie = "session"
)

// Session validates the session token and injects the session into context.
// The token is read from a Bearer Authorization header, falling back to the
// session cookie.
func Session(auth ports.SessionValidator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := tokenFrom(c)
			if err != nil {
				return err
			}

			session, err := auth.ValidateSession(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrSessionExpired) || errors.Is(err, domain.ErrUnauthorized) {
					log.Warn().
						Str("origin", c.RealIP()).
						Str("path", c.Request().URL.Path).
						Str("reason", err.Error()).
						Msg("session rejected")
				}
				return err
			}

			c.Set(SessionKey, session)
			return next(c)
		}
	}
}

func tokenFrom(c echo.Context) (string, error) {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "missing session")
}

// SessionFrom returns the session injected by Session.
func SessionFrom(c echo.Context) (*domain.Session, error) {
	session, ok := c.Get(SessionKey).(*domain.Session)
	if !ok || session == nil {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}
