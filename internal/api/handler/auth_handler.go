package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/routinely/tracker/internal/api/middleware"
	"github.com/routinely/tracker/internal/core/ports"
)

type AuthHandler struct {
	authService  ports.AuthService
	secureCookie bool
}

// NewAuthHandler builds the auth endpoints. secureCookie marks the session
// cookie HTTPS-only.
func NewAuthHandler(authService ports.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{User: user})
}

// Login authenticates a user, returns a session token and sets the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, token, err := h.authService.Authenticate(c.Request().Context(), req.Username, req.Password, c.RealIP())
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, loginResponse{Token: token, Session: session})
}

// Logout clears the session cookie. Bearer tokens simply expire.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

// Me returns the signed-in user's profile.
//
// @Summary      Current user
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Profile(c.Request().Context(), session.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// UpdateProfile sets the notification email preferences.
//
// @Summary      Update profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileRequest  true  "Email preferences"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /api/me/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.authService.UpdateProfile(c.Request().Context(), session.UserID, req.Email, req.EmailNotifications)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// ChangePassword changes the signed-in user's password.
//
// @Summary      Change own password
// @Tags         profile
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  passwordRequest  true  "Current and new password"
// @Success      204
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /api/me/password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	var req passwordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.authService.ChangeOwnPassword(c.Request().Context(), session.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
