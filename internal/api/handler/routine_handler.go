package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/routinely/tracker/internal/api/middleware"
	"github.com/routinely/tracker/internal/core/ports"
)

type RoutineHandler struct {
	items ports.ItemService
}

func NewRoutineHandler(items ports.ItemService) *RoutineHandler {
	return &RoutineHandler{items: items}
}

// List returns the signed-in user's routines ordered by time of day.
//
// @Summary      List routines
// @Tags         routines
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  routineListResponse
// @Router       /api/routines [get]
func (h *RoutineHandler) List(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	routines, err := h.items.ListRoutines(c.Request().Context(), session.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, routineListResponse{Routines: routines})
}

// Create adds a routine. Weekdays accept English or Portuguese names.
//
// @Summary      Create routine
// @Tags         routines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      routineRequest  true  "Routine"
// @Success      201   {object}  domain.Routine
// @Failure      400   {object}  ErrorResponse
// @Router       /api/routines [post]
func (h *RoutineHandler) Create(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	var req routineRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	routine, err := h.items.AddRoutine(c.Request().Context(), session.UserID, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, routine)
}

// Toggle flips a routine between active and paused.
//
// @Summary      Toggle routine
// @Tags         routines
// @Security     BearerAuth
// @Param        id  path  int  true  "Routine ID"
// @Success      204
// @Router       /api/routines/{id}/toggle [post]
func (h *RoutineHandler) Toggle(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.items.ToggleRoutine(c.Request().Context(), session.UserID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a routine and its execution log.
//
// @Summary      Delete routine
// @Tags         routines
// @Security     BearerAuth
// @Param        id  path  int  true  "Routine ID"
// @Success      204
// @Router       /api/routines/{id} [delete]
func (h *RoutineHandler) Delete(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.items.DeleteRoutine(c.Request().Context(), session.UserID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// LogExecution records that a routine was done now.
//
// @Summary      Log routine execution
// @Tags         routines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int               true  "Routine ID"
// @Param        body  body      executionRequest  false "Notes"
// @Success      201   {object}  domain.RoutineExecution
// @Failure      404   {object}  ErrorResponse
// @Router       /api/routines/{id}/executions [post]
func (h *RoutineHandler) LogExecution(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req executionRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}
	exec, err := h.items.LogExecution(c.Request().Context(), session.UserID, id, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, exec)
}
