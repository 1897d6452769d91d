package persistence

import "time"

// Staff represents an employee record in the staff directory.
type Staff struct {
	ID         string
	EmployeeID string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Role       string
	Department string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Task represents a catalog entry for a unit of work.
type Task struct {
	ID          string
	TaskID      string
	Title       string
	Description string
	Category    string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Schedule represents a stored schedule binding a task to staff on a date or
// date range. The task title/description/category columns are snapshots taken
// at creation time.
type Schedule struct {
	ID                 string
	ScheduleType       string
	TaskID             string
	TaskTitle          string
	TaskDescription    string
	TaskCategory       string
	Priority           string
	EstimatedHours     float64
	ScheduledDate      time.Time
	EndDate            *time.Time
	TimeSlot           string
	Recurrence         string
	RecurrenceEndDate  *time.Time
	Status             string
	NotificationStatus string
	Department         string
	Location           string
	Notes              string
	ParentScheduleID   *string
	Assignments        []Assignment
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Assignment is a per-staff sub-record of a schedule. StaffName and StaffEmail
// are snapshots captured at assignment time and are not refreshed when the
// staff record changes.
type Assignment struct {
	ScheduleID       string
	StaffID          string
	StaffName        string
	StaffEmail       string
	Status           string
	StartTime        *time.Time
	EndTime          *time.Time
	HoursWorked      float64
	Rating           int
	Notes            string
	Rotated          bool
	NotificationSent bool
	EmailStatus      string
	EmailMessageID   string
	CompletedAt      *time.Time
}

// AssignmentPatch carries the mutable fields of an assignment status update.
// Nil members leave the stored value untouched.
type AssignmentPatch struct {
	Status      *string
	Notes       *string
	HoursWorked *float64
	Rating      *int
	CompletedAt *time.Time
}

// DeliveryRecord captures the outcome of a notification send for one
// assignment.
type DeliveryRecord struct {
	Sent        bool
	EmailStatus string
	MessageID   string
}

// Booking is the flattened (schedule, staff, date) view used for conflict
// detection and availability queries.
type Booking struct {
	ScheduleID    string
	StaffID       string
	ScheduledDate time.Time
}

// ScheduleFilter narrows schedule queries.
type ScheduleFilter struct {
	ScheduleType     string
	Status           string
	StaffID          string
	Priority         string
	Department       string
	Search           string
	DateFrom         *time.Time
	DateTo           *time.Time
	ParentScheduleID *string
}

// ConflictGuard re-checks staff availability inside the creation transaction.
// A schedule insert carrying a guard fails with ErrScheduleConflict when any
// listed staff member already holds an active schedule of the same type whose
// date falls inside [WindowStart, WindowEnd).
type ConflictGuard struct {
	StaffIDs    []string
	WindowStart time.Time
	WindowEnd   time.Time
}

// StaffFilter narrows staff directory queries.
type StaffFilter struct {
	Department string
	Role       string
	Status     string
	Search     string
}

// TaskFilter narrows task catalog queries.
type TaskFilter struct {
	Category string
	Status   string
	Search   string
}
