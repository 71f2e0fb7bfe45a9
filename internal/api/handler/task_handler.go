package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskly/task-tracker/internal/core/ports"
)

// TaskHandler serves the owner-scoped task endpoints. Every route expects
// the Auth middleware in front of it.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List returns the caller's tasks.
//
// @Summary      List tasks
// @Description  Earliest deadline first, tasks without a deadline last, newest first within a tie.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listTasksResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.List(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskListResponse(tasks))
}

// Get returns one of the caller's tasks.
//
// @Summary      Get task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	taskID, err := parseTaskID(c)
	if err != nil {
		return err
	}

	task, err := h.service.Get(c.Request().Context(), id.UserID, taskID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Create adds a task owned by the caller.
//
// @Summary      Create task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), id.UserID, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// Update applies a partial update to one of the caller's tasks.
//
// @Summary      Update task
// @Description  Only fields present in the body change; null clears description or deadline.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	taskID, err := parseTaskID(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	task, err := h.service.Update(c.Request().Context(), id.UserID, taskID, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete removes one of the caller's tasks.
//
// @Summary      Delete task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id   path  int  true  "Task ID"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	taskID, err := parseTaskID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id.UserID, taskID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
