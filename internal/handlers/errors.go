package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"taskmaster/internal/service"
	"taskmaster/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondWithError(c echo.Context, log logrus.FieldLogger, status int, userMsg, logMsg string, err error) error {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error(logMsg)
	}
	return c.JSON(status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps engine errors to responses. Validation
// failures are the caller's fault and are not logged.
func respondWithServiceError(c echo.Context, log logrus.FieldLogger, logMsg string, err error) error {
	var ve validation.ValidationError
	switch {
	case errors.Is(err, service.ErrEmptyTaskText):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Task text is required", Field: "text"})
	case errors.Is(err, service.ErrEmptyName):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Name is required", Field: "name"})
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, service.ErrNotOpen):
		return respondWithError(c, log, http.StatusServiceUnavailable, ErrServiceUnavailable, logMsg, err)
	default:
		return respondWithError(c, log, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
