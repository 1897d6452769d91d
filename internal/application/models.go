// Package application contains the use-case services that sit between the
// HTTP handlers and the persistence layer.
package application

import (
	"time"

	"github.com/example/staff-scheduler/internal/persistence"
)

// Staff directory statuses.
const (
	StaffStatusActive   = "active"
	StaffStatusInactive = "inactive"
	StaffStatusOnLeave  = "on_leave"
)

// Task catalog statuses.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// Schedule statuses. A schedule is "active" for conflict purposes while
// scheduled or in_progress.
const (
	ScheduleStatusScheduled  = "scheduled"
	ScheduleStatusInProgress = "in_progress"
	ScheduleStatusCompleted  = "completed"
	ScheduleStatusCancelled  = "cancelled"
	ScheduleStatusOverdue    = "overdue"
)

// Assignment statuses track per-staff progress within a schedule.
const (
	AssignmentStatusPending    = "pending"
	AssignmentStatusInProgress = "in_progress"
	AssignmentStatusCompleted  = "completed"
	AssignmentStatusCancelled  = "cancelled"
	AssignmentStatusOverdue    = "overdue"
)

// Priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notification aggregate statuses stored on the schedule.
const (
	NotificationPending     = "pending"
	NotificationAllSent     = "all_sent"
	NotificationPartialSent = "partial_sent"
	NotificationFailed      = "failed"
)

// Per-assignment e-mail delivery statuses.
const (
	EmailStatusSent        = "sent"
	EmailStatusFailed      = "failed"
	EmailStatusUnavailable = "service_unavailable"
)

// StaffInput carries the writable fields of a staff record.
type StaffInput struct {
	EmployeeID string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Role       string
	Department string
	Status     string
}

// TaskInput carries the writable fields of a task catalog entry.
type TaskInput struct {
	TaskID      string
	Title       string
	Description string
	Category    string
	Status      string
}

// ScheduleInput carries the fields of a schedule creation request.
type ScheduleInput struct {
	ScheduleType      string
	TaskID            string
	StaffIDs          []string
	ScheduledDate     time.Time
	EndDate           *time.Time
	TimeSlot          string
	Recurrence        string
	RecurrenceEndDate *time.Time
	Priority          string
	EstimatedHours    float64
	Department        string
	Location          string
	Notes             string
	// StrictAvailability rejects the whole request on any conflict instead
	// of dropping the conflicting staff members.
	StrictAvailability bool
}

// ScheduleUpdateInput carries the mutable fields of a schedule. Nil members
// leave the stored value untouched. Staff assignments are replaced wholesale
// when StaffIDs is non-nil.
type ScheduleUpdateInput struct {
	ScheduledDate  *time.Time
	EndDate        *time.Time
	TimeSlot       *string
	Priority       *string
	EstimatedHours *float64
	Status         *string
	Department     *string
	Location       *string
	Notes          *string
	StaffIDs       []string
}

// AssignmentStatusInput carries a per-staff assignment status update.
type AssignmentStatusInput struct {
	Status      string
	Notes       *string
	HoursWorked *float64
	Rating      *int
}

// DeliveryOutcome reports the notification result for one assignee.
type DeliveryOutcome struct {
	StaffID     string
	StaffName   string
	StaffEmail  string
	Sent        bool
	EmailStatus string
	MessageID   string
	Detail      string
}

// CreateScheduleResult is the full outcome of a schedule creation request.
type CreateScheduleResult struct {
	Schedule           persistence.Schedule
	SkippedStaffIDs    []string
	GeneratedChildren  int
	SkippedOccurrences int
	Notifications      []DeliveryOutcome
	NotificationStatus string
}

// NotificationResult reports a notification re-send for one schedule.
type NotificationResult struct {
	ScheduleID         string
	Outcomes           []DeliveryOutcome
	NotificationStatus string
}

// WorkloadSummary aggregates a staff member's schedules over a date range.
type WorkloadSummary struct {
	StaffID         string
	From            time.Time
	To              time.Time
	TotalSchedules  int
	CompletedCount  int
	CancelledCount  int
	ActiveCount     int
	EstimatedHours  float64
	HoursWorked     float64
	ByCategory      map[string]int
	SchedulesByDate map[string][]string
}

// StaffAvailability partitions active staff for one date.
type StaffAvailability struct {
	Date         time.Time
	ScheduleType string
	Available    []persistence.Staff
	Booked       []BookedStaff
}

// BookedStaff names the schedule that occupies a staff member.
type BookedStaff struct {
	Staff      persistence.Staff
	ScheduleID string
}

// ReportRow is one (date, status) bucket of the schedule report.
type ReportRow struct {
	Date       string
	Status     string
	Count      int
	TotalHours float64
	StaffCount int
}

// ScheduleReport groups schedules by date and status over a range.
type ScheduleReport struct {
	From       time.Time
	To         time.Time
	Department string
	Total      int
	Rows       []ReportRow
}

// CalendarDay lists the schedules touching one calendar day.
type CalendarDay struct {
	Date      string
	Schedules []CalendarEntry
}

// CalendarEntry is the compact schedule form rendered in the calendar view.
type CalendarEntry struct {
	ScheduleID   string
	ScheduleType string
	TaskTitle    string
	Status       string
	Priority     string
	TimeSlot     string
	StaffCount   int
}
