package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskmaster/internal/models"
	"taskmaster/internal/service"
)

type sessionRequest struct {
	Name string `json:"name"`
}

type userResponse struct {
	models.User
	HasSession bool `json:"hasSession"`
}

type leaderboardResponse struct {
	Entries     []service.RankedEntry `json:"entries"`
	CurrentUser string                `json:"currentUser,omitempty"`
	CurrentRank int                   `json:"currentRank,omitempty"`
}

func (h *Handler) getUser(c echo.Context) error {
	u := h.engine.User()
	return c.JSON(http.StatusOK, userResponse{User: u, HasSession: u.HasSession()})
}

func (h *Handler) startSession(c echo.Context) error {
	var req sessionRequest
	if err := decodeBody(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: ErrInvalidBody})
	}

	notices, err := h.engine.StartSession(c.Request().Context(), req.Name)
	if err != nil {
		return respondWithServiceError(c, h.log, "Failed to start session", err)
	}
	return c.JSON(http.StatusOK, h.mutation(notices))
}

func (h *Handler) getLeaderboard(c echo.Context) error {
	entries := h.engine.Leaderboard()
	if entries == nil {
		entries = []service.RankedEntry{}
	}
	return c.JSON(http.StatusOK, leaderboardResponse{
		Entries:     entries,
		CurrentUser: h.engine.User().Name,
		CurrentRank: h.engine.UserRank(),
	})
}

func (h *Handler) getStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.engine.Stats())
}

func (h *Handler) healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
