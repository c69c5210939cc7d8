package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/routinely/tracker/internal/api/middleware"
	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
)

type AdminHandler struct {
	accounts ports.AccountService
}

func NewAdminHandler(accounts ports.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

// ListUsers returns every account with its protection flag.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userListResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.accounts.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]adminUser, 0, len(users))
	for _, u := range users {
		out = append(out, adminUser{User: u, Protected: h.accounts.IsProtected(u.ID)})
	}
	return c.JSON(http.StatusOK, userListResponse{Users: out})
}

// ChangePassword resets another user's password.
//
// @Summary      Reset user password
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  int                   true  "User ID"
// @Param        body  body  adminPasswordRequest  true  "New password"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/users/{id}/password [put]
func (h *AdminHandler) ChangePassword(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req adminPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.accounts.ChangePassword(c.Request().Context(), id, session.UserID, req.NewPassword, c.RealIP()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteUser removes an account with everything it owns.
//
// @Summary      Delete user
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  int  true  "User ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.accounts.DeleteUser(c.Request().Context(), id, session.UserID, c.RealIP()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Audit returns the newest audit entries.
//
// @Summary      Audit log
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum entries (default 100)"
// @Success      200    {object}  auditListResponse
// @Router       /admin/audit [get]
func (h *AdminHandler) Audit(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return domain.NewValidationError("limit", "must be a non-negative integer")
		}
		limit = n
	}
	entries, err := h.accounts.ListAudit(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, auditListResponse{Entries: entries})
}
