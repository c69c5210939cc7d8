package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/routinely/tracker/internal/api/middleware"
	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
)

type TaskHandler struct {
	items ports.ItemService
}

func NewTaskHandler(items ports.ItemService) *TaskHandler {
	return &TaskHandler{items: items}
}

// List returns the signed-in user's tasks.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        filter  query     string  false  "all, pending or completed"
// @Success      200     {object}  taskListResponse
// @Failure      400     {object}  ErrorResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	filter, err := domain.ParseTaskFilter(c.QueryParam("filter"))
	if err != nil {
		return err
	}
	tasks, err := h.items.ListTasks(c.Request().Context(), session.UserID, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskListResponse{Tasks: tasks})
}

// Create adds a task.
//
// @Summary      Create task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      taskRequest  true  "Task"
// @Success      201   {object}  domain.Task
// @Failure      400   {object}  ErrorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	var req taskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	task, err := h.items.AddTask(c.Request().Context(), session.UserID, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// Update edits a task's fields. Completion is changed with Toggle.
//
// @Summary      Update task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Task ID"
// @Param        body  body      taskRequest  true  "Task"
// @Success      200   {object}  domain.Task
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req taskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	task, err := h.items.UpdateTask(c.Request().Context(), session.UserID, id, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Toggle flips a task's completion flag.
//
// @Summary      Toggle task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id  path  int  true  "Task ID"
// @Success      204
// @Router       /api/tasks/{id}/toggle [post]
func (h *TaskHandler) Toggle(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.items.ToggleTask(c.Request().Context(), session.UserID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a task.
//
// @Summary      Delete task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id  path  int  true  "Task ID"
// @Success      204
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.items.DeleteTask(c.Request().Context(), session.UserID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Dashboard returns today's summary: pending tasks and routines scheduled today.
//
// @Summary      Dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Dashboard
// @Router       /api/dashboard [get]
func (h *TaskHandler) Dashboard(c echo.Context) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		return err
	}
	dash, err := h.items.Dashboard(c.Request().Context(), session.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dash)
}
