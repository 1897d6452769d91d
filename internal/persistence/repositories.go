package persistence

import (
	"context"
	"time"
)

// StaffRepository exposes CRUD operations for the staff directory.
type StaffRepository interface {
	CreateStaff(ctx context.Context, staff Staff) error
	UpdateStaff(ctx context.Context, staff Staff) error
	GetStaff(ctx context.Context, id string) (Staff, error)
	GetStaffByEmail(ctx context.Context, email string) (Staff, error)
	ListStaff(ctx context.Context, filter StaffFilter) ([]Staff, error)
	DeleteStaff(ctx context.Context, id string) error
}

// TaskRepository exposes CRUD operations for the task catalog.
type TaskRepository interface {
	CreateTask(ctx context.Context, task Task) error
	UpdateTask(ctx context.Context, task Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// ScheduleRepository stores schedules and their assignment sub-records.
type ScheduleRepository interface {
	// CreateSchedule inserts the schedule and its assignments in one
	// transaction. A non-nil guard re-validates staff availability inside
	// the same transaction and fails with ErrScheduleConflict.
	CreateSchedule(ctx context.Context, schedule Schedule, guard *ConflictGuard) error
	UpdateSchedule(ctx context.Context, schedule Schedule) error
	GetSchedule(ctx context.Context, id string) (Schedule, error)
	ListSchedules(ctx context.Context, filter ScheduleFilter) ([]Schedule, error)
	// DeleteSchedule removes the schedule and every child referencing it
	// through ParentScheduleID.
	DeleteSchedule(ctx context.Context, id string) error
	// ListActiveBookings returns (scheduleID, staffID, scheduledDate)
	// triples for schedules of the given type with status scheduled or
	// in_progress whose date falls within [from, to).
	ListActiveBookings(ctx context.Context, scheduleType string, from, to time.Time) ([]Booking, error)
	UpdateAssignment(ctx context.Context, scheduleID, staffID string, patch AssignmentPatch) (Assignment, error)
	RecordDelivery(ctx context.Context, scheduleID, staffID string, record DeliveryRecord) error
	SetNotificationStatus(ctx context.Context, scheduleID, status string) error
}
