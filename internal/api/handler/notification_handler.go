package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/routinely/tracker/internal/api/middleware"
	"github.com/routinely/tracker/internal/core/ports"
)

type NotificationHandler struct {
	notifications ports.NotificationService
}

func NewNotificationHandler(notifications ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// Check returns what is due for the signed-in user right now. Clients poll it.
//
// @Summary      Due notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  notificationResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) Check(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	due, err := h.notifications.Check(c.Request().Context(), session.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notificationResponse{Notifications: due, Count: len(due)})
}

// MarkSeen acknowledges a notification so later checks report it as seen.
//
// @Summary      Acknowledge notification
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "Notification ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Router       /api/notifications/{id}/seen [post]
func (h *NotificationHandler) MarkSeen(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkSeen(c.Request().Context(), session.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
