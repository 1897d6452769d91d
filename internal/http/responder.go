package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/staff-scheduler/internal/application"
)

var (
	errBadRequestBody    = errors.New("request body is not valid JSON")
	errInvalidScheduleID = errors.New("schedule ID is missing or invalid")
	errInvalidStaffID    = errors.New("staff ID is missing or invalid")
	errInvalidTaskID     = errors.New("task ID is missing or invalid")
	errInvalidDate       = errors.New("date must be formatted as YYYY-MM-DD")
)

// envelope is the uniform response body for every endpoint. Code carries the
// HTTP status so clients reading the body alone can still classify it.
type envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	Data      any               `json:"data,omitempty"`
	Code      int               `json:"code"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp string            `json:"timestamp"`
}

type responder struct {
	logger *slog.Logger
	now    func() time.Time
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger), now: time.Now}
}

func (r responder) writeData(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	r.writeJSON(ctx, w, status, envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Code:      status,
		Timestamp: r.timestamp(),
	})
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, envelope{
		Success:   false,
		Message:   message,
		Code:      status,
		Timestamp: r.timestamp(),
	})
}

// handleServiceError maps application sentinels onto HTTP statuses: validation
// to 400, not found to 404, conflicts to 409 and transport outages to 503.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusBadRequest, envelope{
			Success:   false,
			Message:   "validation failed",
			Code:      http.StatusBadRequest,
			Errors:    vErr.FieldErrors,
			Timestamp: r.timestamp(),
		})
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeError(ctx, w, http.StatusNotFound, err)
	case errors.Is(err, application.ErrConflict):
		r.writeError(ctx, w, http.StatusConflict, err)
	case errors.Is(err, application.ErrServiceUnavailable):
		r.writeError(ctx, w, http.StatusServiceUnavailable, err)
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, envelope{
			Success:   false,
			Message:   "internal server error",
			Code:      http.StatusInternalServerError,
			Timestamp: r.timestamp(),
		})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func (r responder) timestamp() string {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	return now().UTC().Format(time.RFC3339)
}
