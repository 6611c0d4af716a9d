package handlers

import (
	"context"
	"iter"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"taskmaster/internal/models"
	"taskmaster/internal/security"
	"taskmaster/internal/service"
)

// TaskEngine is the part of the engine the HTTP API exposes
type TaskEngine interface {
	StartSession(ctx context.Context, name string) ([]models.Notice, error)
	AddTask(ctx context.Context, text string) (models.Task, []models.Notice, error)
	ToggleTask(ctx context.Context, id models.TaskID) ([]models.Notice, error)
	EditTask(ctx context.Context, id models.TaskID, text string) ([]models.Notice, error)
	DeleteTask(ctx context.Context, id models.TaskID) ([]models.Notice, error)
	ClearCompleted(ctx context.Context) (int, []models.Notice, error)
	Tasks(filter models.Filter) iter.Seq[models.Task]
	Task(id models.TaskID) (models.Task, bool)
	User() models.User
	Leaderboard() []service.RankedEntry
	UserRank() int
	Stats() models.TaskStats
}

// Handler serves the JSON API of one engine
type Handler struct {
	engine TaskEngine
	log    logrus.FieldLogger
}

func NewHandler(engine TaskEngine, log logrus.FieldLogger) *Handler {
	return &Handler{engine: engine, log: log}
}

// Register wires up all API routes on the provided Echo instance. Mutating
// routes are rate limited per client when limiter is not nil.
func (h *Handler) Register(e *echo.Echo, limiter *security.RateLimiter) {
	e.JSONSerializer = SonicSerializer{}

	var limit []echo.MiddlewareFunc
	if limiter != nil {
		limit = append(limit, RateLimit(limiter))
	}

	api := e.Group("/api")
	api.GET("/tasks", h.listTasks)
	api.POST("/tasks", h.createTask, limit...)
	api.POST("/tasks/clear-completed", h.clearCompleted, limit...)
	api.POST("/tasks/:id/toggle", h.toggleTask, limit...)
	api.PUT("/tasks/:id", h.updateTask, limit...)
	api.DELETE("/tasks/:id", h.deleteTask, limit...)

	api.GET("/user", h.getUser)
	api.POST("/session", h.startSession, limit...)
	api.GET("/leaderboard", h.getLeaderboard)
	api.GET("/stats", h.getStats)

	e.GET("/healthz", h.healthz)
}

// mutationResponse is returned by every state-changing route
type mutationResponse struct {
	Task    *models.Task    `json:"task,omitempty"`
	Removed *int            `json:"removed,omitempty"`
	User    models.User     `json:"user"`
	Notices []models.Notice `json:"notices"`
}

func (h *Handler) mutation(notices []models.Notice) mutationResponse {
	if notices == nil {
		notices = []models.Notice{}
	}
	return mutationResponse{User: h.engine.User(), Notices: notices}
}
