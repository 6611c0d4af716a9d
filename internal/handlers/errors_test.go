package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"taskmaster/internal/service"
	"taskmaster/internal/validation"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.JSONSerializer = SonicSerializer{}
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodPost, "/api/tasks", nil), rec), rec
}

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	c, rec := newContext()
	logger, hook := test.NewNullLogger()

	if err := respondWithError(c, logger, http.StatusTeapot, "Teapot", "", nil); err != nil {
		t.Fatalf("respondWithError returned %v", err)
	}

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status 418, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "{\"error\":\"Teapot\"}\n" {
		t.Fatalf("unexpected body %q", body)
	}
	if len(hook.AllEntries()) != 0 {
		t.Fatalf("nothing should be logged without an error")
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	c, _ := newContext()
	logger, hook := test.NewNullLogger()

	_ = respondWithError(c, logger, http.StatusInternalServerError, ErrInternalServerError, "", errors.New("boom"))

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Level != logrus.ErrorLevel {
		t.Errorf("expected error level, got %s", entry.Level)
	}
	if entry.Message != ErrInternalServerError {
		t.Errorf("expected user message as log message, got %q", entry.Message)
	}
	if err, ok := entry.Data[logrus.ErrorKey].(error); !ok || err.Error() != "boom" {
		t.Errorf("expected wrapped error in log entry, got %v", entry.Data[logrus.ErrorKey])
	}
}

func TestRespondWithServiceErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "empty text", err: service.ErrEmptyTaskText, status: http.StatusBadRequest},
		{name: "empty name", err: service.ErrEmptyName, status: http.StatusBadRequest},
		{name: "validation", err: validation.ValidationError{Field: "text", Message: "text is required", Err: validation.ErrRequired}, status: http.StatusBadRequest},
		{name: "not open", err: service.ErrNotOpen, status: http.StatusServiceUnavailable},
		{name: "storage", err: errors.New("disk full"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext()
			logger, _ := test.NewNullLogger()
			_ = respondWithServiceError(c, logger, "op failed", tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}
