package handlers

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"taskmaster/internal/models"
)

type taskTextRequest struct {
	Text string `json:"text"`
}

type tasksResponse struct {
	Filter models.Filter    `json:"filter"`
	Tasks  []models.Task    `json:"tasks"`
	Stats  models.TaskStats `json:"stats"`
}

func (h *Handler) listTasks(c echo.Context) error {
	filter, err := models.ParseFilter(c.QueryParam("filter"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: ErrInvalidFilter, Field: "filter"})
	}

	tasks := slices.Collect(h.engine.Tasks(filter))
	if tasks == nil {
		tasks = []models.Task{}
	}
	return c.JSON(http.StatusOK, tasksResponse{
		Filter: filter,
		Tasks:  tasks,
		Stats:  h.engine.Stats(),
	})
}

func (h *Handler) createTask(c echo.Context) error {
	var req taskTextRequest
	if err := decodeBody(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: ErrInvalidBody})
	}

	task, notices, err := h.engine.AddTask(c.Request().Context(), req.Text)
	if err != nil {
		return respondWithServiceError(c, h.log, "Failed to add task", err)
	}

	resp := h.mutation(notices)
	resp.Task = &task
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) toggleTask(c echo.Context) error {
	id := models.TaskID(c.Param("id"))
	notices, err := h.engine.ToggleTask(c.Request().Context(), id)
	if err != nil {
		return respondWithServiceError(c, h.log, "Failed to toggle task", err)
	}
	return c.JSON(http.StatusOK, h.withTask(h.mutation(notices), id))
}

func (h *Handler) updateTask(c echo.Context) error {
	var req taskTextRequest
	if err := decodeBody(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: ErrInvalidBody})
	}

	id := models.TaskID(c.Param("id"))
	notices, err := h.engine.EditTask(c.Request().Context(), id, req.Text)
	if err != nil {
		return respondWithServiceError(c, h.log, "Failed to edit task", err)
	}
	return c.JSON(http.StatusOK, h.withTask(h.mutation(notices), id))
}

func (h *Handler) deleteTask(c echo.Context) error {
	notices, err := h.engine.DeleteTask(c.Request().Context(), models.TaskID(c.Param("id")))
	if err != nil {
		return respondWithServiceError(c, h.log, "Failed to delete task", err)
	}
	return c.JSON(http.StatusOK, h.mutation(notices))
}

func (h *Handler) clearCompleted(c echo.Context) error {
	removed, notices, err := h.engine.ClearCompleted(c.Request().Context())
	if err != nil {
		return respondWithServiceError(c, h.log, "Failed to clear completed tasks", err)
	}
	resp := h.mutation(notices)
	resp.Removed = &removed
	return c.JSON(http.StatusOK, resp)
}

// withTask attaches the task when it still exists. Unknown ids are not an
// error; the response simply carries no task.
func (h *Handler) withTask(resp mutationResponse, id models.TaskID) mutationResponse {
	if task, ok := h.engine.Task(id); ok {
		resp.Task = &task
	}
	return resp
}
