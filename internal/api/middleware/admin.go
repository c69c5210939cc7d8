package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/core/domain"
)

// AccessAuditor records denied attempts on admin resources.
type AccessAuditor interface {
	RecordUnauthorized(ctx context.Context, actorID int64, username, origin, resource string)
}

// RequireAdmin lets only admin sessions through. Must run after Session.
// Every rejection is audited.
func RequireAdmin(audit AccessAuditor, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := SessionFrom(c)
			if err != nil {
				return err
			}
			if !session.IsAdmin {
				resource := c.Request().Method + " " + c.Request().URL.Path
				log.Warn().
					Int64("user_id", session.UserID).
					Str("origin", c.RealIP()).
					Str("resource", resource).
					Msg("admin access denied")
				audit.RecordUnauthorized(c.Request().Context(), session.UserID, session.Username, c.RealIP(), resource)
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
