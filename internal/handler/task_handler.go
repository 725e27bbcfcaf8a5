package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/task_management_sample/internal/auth"
	"github.com/locvowork/task_management_sample/internal/domain"
	"github.com/locvowork/task_management_sample/internal/service"
	"github.com/locvowork/task_management_sample/internal/service/serviceutils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TaskHandler struct {
	service service.TaskService
}

func NewTaskHandler(svc service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// ListHandler handles GET /api/tasks?status=&priority=&search=
func (h *TaskHandler) ListHandler(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := auth.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	tasks, err := h.service.List(ctx, user.ID, filterFromQuery(c))
	if err != nil {
		return serviceutils.HandleError(ctx, c, "Failed to fetch tasks", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "", echo.Map{"tasks": tasks})
}

// GetHandler handles GET /api/tasks/:id
func (h *TaskHandler) GetHandler(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := auth.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := taskID(c)
	if err != nil {
		return serviceutils.HandleError(ctx, c, "Failed to fetch task", err)
	}

	task, err := h.service.Get(ctx, user.ID, id)
	if err != nil {
		return serviceutils.HandleError(ctx, c, "Failed to fetch task", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "", echo.Map{"task": task})
}

// CreateHandler handles POST /api/tasks
func (h *TaskHandler) CreateHandler(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := auth.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req domain.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	task, err := h.service.Create(ctx, user.ID, req)
	if err != nil {
		return serviceutils.HandleError(ctx, c, "Failed to create task", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Task created", echo.Map{"task": task})
}

// UpdateHandler handles PUT and PATCH /api/tasks/:id. Both are partial updates:
// fields missing from the body keep their value.
func (h *TaskHandler) UpdateHandler(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := auth.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := taskID(c)
	if err != nil {
		return serviceutils.HandleError(ctx, c, "Failed to update task", err)
	}
	var patch domain.TaskPatch
	if err := c.Bind(&patch); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	task, err := h.service.Update(ctx, user.ID, id, patch)
	if err != nil {
		return serviceutils.HandleError(ctx, c, "Failed to update task", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Task updated", echo.Map{"task": task})
}

// DeleteHandler handles DELETE /api/tasks/:id
func (h *TaskHandler) DeleteHandler(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := auth.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := taskID(c)
	if err != nil {
		return serviceutils.HandleError(ctx, c, "Failed to delete task", err)
	}

	if err := h.service.Delete(ctx, user.ID, id); err != nil {
		return serviceutils.HandleError(ctx, c, "Failed to delete task", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Task deleted", nil)
}

// RemindersHandler handles GET /api/tasks/reminders?window=1m
func (h *TaskHandler) RemindersHandler(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := auth.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	window := service.DefaultReminderWindow
	if raw := c.QueryParam("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return serviceutils.ResponseError(c, http.StatusBadRequest, fmt.Sprintf("Invalid window %q", raw), nil)
		}
		window = d
	}

	tasks, err := h.service.DueReminders(ctx, user.ID, window)
	if err != nil {
		return serviceutils.HandleError(ctx, c, "Failed to fetch reminders", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "", echo.Map{"tasks": tasks})
}

// ExportHandler handles GET /api/tasks/export with the same filters as ListHandler.
func (h *TaskHandler) ExportHandler(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := auth.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	buf := new(bytes.Buffer)
	if err := h.service.Export(ctx, user.ID, filterFromQuery(c), buf); err != nil {
		return serviceutils.HandleError(ctx, c, "Failed to export tasks", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="tasks.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(buf.Len()))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func filterFromQuery(c echo.Context) domain.TaskFilter {
	return domain.TaskFilter{
		Status:   domain.Status(c.QueryParam("status")),
		Priority: domain.Priority(c.QueryParam("priority")),
		Search:   c.QueryParam("search"),
	}
}

func taskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validation("Invalid task id")
	}
	return id, nil
}

func unauthorized(c echo.Context) error {
	return serviceutils.ResponseError(c, http.StatusUnauthorized, "Unauthorized", nil)
}
