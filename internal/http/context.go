package http

import (
	"context"
	"log/slog"

	"github.com/example/staff-scheduler/internal/logging"
)

type contextKey string

const (
	scheduleIDContextKey contextKey = "schedule_id"
	staffIDContextKey    contextKey = "staff_id"
	taskIDContextKey     contextKey = "task_id"
)

// ContextWithScheduleID injects the schedule identifier resolved from the request path.
func ContextWithScheduleID(ctx context.Context, scheduleID string) context.Context {
	return context.WithValue(ctx, scheduleIDContextKey, scheduleID)
}

// ScheduleIDFromContext extracts a schedule identifier previously associated with the context.
func ScheduleIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(scheduleIDContextKey).(string)
	return id, ok
}

// ContextWithStaffID injects the staff identifier resolved from the request path.
func ContextWithStaffID(ctx context.Context, staffID string) context.Context {
	return context.WithValue(ctx, staffIDContextKey, staffID)
}

// StaffIDFromContext extracts a staff identifier previously associated with the context.
func StaffIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(staffIDContextKey).(string)
	return id, ok
}

// ContextWithTaskID injects the task identifier resolved from the request path.
func ContextWithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskIDContextKey, taskID)
}

// TaskIDFromContext extracts a task identifier previously associated with the context.
func TaskIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(taskIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches a request scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a request scoped logger from the context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
