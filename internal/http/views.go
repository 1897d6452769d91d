package http

import (
	"time"

	"github.com/example/staff-scheduler/internal/application"
	"github.com/example/staff-scheduler/internal/persistence"
)

type assignmentView struct {
	StaffID          string   `json:"staff_id"`
	StaffName        string   `json:"staff_name"`
	StaffEmail       string   `json:"staff_email"`
	Status           string   `json:"status"`
	StartTime        *string  `json:"start_time,omitempty"`
	EndTime          *string  `json:"end_time,omitempty"`
	HoursWorked      float64  `json:"hours_worked"`
	Rating           int      `json:"rating,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	Rotated          bool     `json:"rotated"`
	NotificationSent bool     `json:"notification_sent"`
	EmailStatus      string   `json:"email_status,omitempty"`
	EmailMessageID   string   `json:"email_message_id,omitempty"`
	CompletedAt      *string  `json:"completed_at,omitempty"`
}

type scheduleView struct {
	ID                 string           `json:"id"`
	ScheduleType       string           `json:"schedule_type"`
	TaskID             string           `json:"task_id"`
	TaskTitle          string           `json:"task_title"`
	TaskDescription    string           `json:"task_description,omitempty"`
	TaskCategory       string           `json:"task_category,omitempty"`
	Priority           string           `json:"priority"`
	EstimatedHours     float64          `json:"estimated_hours"`
	ScheduledDate      string           `json:"scheduled_date"`
	EndDate            *string          `json:"end_date,omitempty"`
	TimeSlot           string           `json:"time_slot"`
	Recurrence         string           `json:"recurrence"`
	RecurrenceEndDate  *string          `json:"recurrence_end_date,omitempty"`
	Status             string           `json:"status"`
	NotificationStatus string           `json:"notification_status"`
	Department         string           `json:"department,omitempty"`
	Location           string           `json:"location,omitempty"`
	Notes              string           `json:"notes,omitempty"`
	ParentScheduleID   *string          `json:"parent_schedule_id,omitempty"`
	Assignments        []assignmentView `json:"assignments"`
	CreatedAt          string           `json:"created_at"`
	UpdatedAt          string           `json:"updated_at"`
}

func newAssignmentView(assignment persistence.Assignment) assignmentView {
	return assignmentView{
		StaffID:          assignment.StaffID,
		StaffName:        assignment.StaffName,
		StaffEmail:       assignment.StaffEmail,
		Status:           assignment.Status,
		StartTime:        formatTimestampPtr(assignment.StartTime),
		EndTime:          formatTimestampPtr(assignment.EndTime),
		HoursWorked:      assignment.HoursWorked,
		Rating:           assignment.Rating,
		Notes:            assignment.Notes,
		Rotated:          assignment.Rotated,
		NotificationSent: assignment.NotificationSent,
		EmailStatus:      assignment.EmailStatus,
		EmailMessageID:   assignment.EmailMessageID,
		CompletedAt:      formatTimestampPtr(assignment.CompletedAt),
	}
}

func newScheduleView(schedule persistence.Schedule) scheduleView {
	assignments := make([]assignmentView, 0, len(schedule.Assignments))
	for _, assignment := range schedule.Assignments {
		assignments = append(assignments, newAssignmentView(assignment))
	}
	return scheduleView{
		ID:                 schedule.ID,
		ScheduleType:       schedule.ScheduleType,
		TaskID:             schedule.TaskID,
		TaskTitle:          schedule.TaskTitle,
		TaskDescription:    schedule.TaskDescription,
		TaskCategory:       schedule.TaskCategory,
		Priority:           schedule.Priority,
		EstimatedHours:     schedule.EstimatedHours,
		ScheduledDate:      schedule.ScheduledDate.Format(dateLayout),
		EndDate:            formatDatePtr(schedule.EndDate),
		TimeSlot:           schedule.TimeSlot,
		Recurrence:         schedule.Recurrence,
		RecurrenceEndDate:  formatDatePtr(schedule.RecurrenceEndDate),
		Status:             schedule.Status,
		NotificationStatus: schedule.NotificationStatus,
		Department:         schedule.Department,
		Location:           schedule.Location,
		Notes:              schedule.Notes,
		ParentScheduleID:   schedule.ParentScheduleID,
		Assignments:        assignments,
		CreatedAt:          schedule.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          schedule.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type deliveryOutcomeView struct {
	StaffID     string `json:"staff_id"`
	StaffEmail  string `json:"staff_email"`
	Sent        bool   `json:"sent"`
	EmailStatus string `json:"email_status"`
	MessageID   string `json:"message_id,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

type createScheduleView struct {
	Schedule           scheduleView          `json:"schedule"`
	SkippedStaffIDs    []string              `json:"skipped_staff_ids,omitempty"`
	GeneratedChildren  int                   `json:"generated_children"`
	SkippedOccurrences int                   `json:"skipped_occurrences"`
	Notifications      []deliveryOutcomeView `json:"notifications,omitempty"`
	NotificationStatus string                `json:"notification_status"`
}

func newCreateScheduleView(result application.CreateScheduleResult) createScheduleView {
	notifications := make([]deliveryOutcomeView, 0, len(result.Notifications))
	for _, outcome := range result.Notifications {
		notifications = append(notifications, deliveryOutcomeView{
			StaffID:     outcome.StaffID,
			StaffEmail:  outcome.StaffEmail,
			Sent:        outcome.Sent,
			EmailStatus: outcome.EmailStatus,
			MessageID:   outcome.MessageID,
			Detail:      outcome.Detail,
		})
	}
	return createScheduleView{
		Schedule:           newScheduleView(result.Schedule),
		SkippedStaffIDs:    result.SkippedStaffIDs,
		GeneratedChildren:  result.GeneratedChildren,
		SkippedOccurrences: result.SkippedOccurrences,
		Notifications:      notifications,
		NotificationStatus: result.NotificationStatus,
	}
}

type notificationResultView struct {
	ScheduleID         string                `json:"schedule_id"`
	Outcomes           []deliveryOutcomeView `json:"outcomes,omitempty"`
	NotificationStatus string                `json:"notification_status"`
}

func newNotificationResultView(result application.NotificationResult) notificationResultView {
	outcomes := make([]deliveryOutcomeView, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		outcomes = append(outcomes, deliveryOutcomeView{
			StaffID:     outcome.StaffID,
			StaffEmail:  outcome.StaffEmail,
			Sent:        outcome.Sent,
			EmailStatus: outcome.EmailStatus,
			MessageID:   outcome.MessageID,
			Detail:      outcome.Detail,
		})
	}
	return notificationResultView{
		ScheduleID:         result.ScheduleID,
		Outcomes:           outcomes,
		NotificationStatus: result.NotificationStatus,
	}
}

type workloadView struct {
	StaffID         string              `json:"staff_id"`
	From            string              `json:"from"`
	To              string              `json:"to"`
	TotalSchedules  int                 `json:"total_schedules"`
	CompletedCount  int                 `json:"completed_count"`
	CancelledCount  int                 `json:"cancelled_count"`
	ActiveCount     int                 `json:"active_count"`
	EstimatedHours  float64             `json:"estimated_hours"`
	HoursWorked     float64             `json:"hours_worked"`
	ByCategory      map[string]int      `json:"by_category,omitempty"`
	SchedulesByDate map[string][]string `json:"schedules_by_date,omitempty"`
}

func newWorkloadView(summary application.WorkloadSummary) workloadView {
	return workloadView{
		StaffID:         summary.StaffID,
		From:            summary.From.Format(dateLayout),
		To:              summary.To.Format(dateLayout),
		TotalSchedules:  summary.TotalSchedules,
		CompletedCount:  summary.CompletedCount,
		CancelledCount:  summary.CancelledCount,
		ActiveCount:     summary.ActiveCount,
		EstimatedHours:  summary.EstimatedHours,
		HoursWorked:     summary.HoursWorked,
		ByCategory:      summary.ByCategory,
		SchedulesByDate: summary.SchedulesByDate,
	}
}

type staffView struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func newStaffView(staff persistence.Staff) staffView {
	return staffView{
		ID:         staff.ID,
		EmployeeID: staff.EmployeeID,
		FirstName:  staff.FirstName,
		LastName:   staff.LastName,
		Email:      staff.Email,
		Phone:      staff.Phone,
		Role:       staff.Role,
		Department: staff.Department,
		Status:     staff.Status,
		CreatedAt:  staff.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  staff.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type taskView struct {
	ID          string `json:"id"`
	TaskRef     string `json:"task_ref"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func newTaskView(task persistence.Task) taskView {
	return taskView{
		ID:          task.ID,
		TaskRef:     task.TaskID,
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type bookedStaffView struct {
	Staff      staffView `json:"staff"`
	ScheduleID string    `json:"schedule_id"`
}

type availabilityView struct {
	Date         string            `json:"date"`
	ScheduleType string            `json:"schedule_type"`
	Available    []staffView       `json:"available"`
	Booked       []bookedStaffView `json:"booked"`
}

func newAvailabilityView(availability application.StaffAvailability) availabilityView {
	view := availabilityView{
		Date:         availability.Date.Format(dateLayout),
		ScheduleType: availability.ScheduleType,
		Available:    make([]staffView, 0, len(availability.Available)),
		Booked:       make([]bookedStaffView, 0, len(availability.Booked)),
	}
	for _, member := range availability.Available {
		view.Available = append(view.Available, newStaffView(member))
	}
	for _, booked := range availability.Booked {
		view.Booked = append(view.Booked, bookedStaffView{
			Staff:      newStaffView(booked.Staff),
			ScheduleID: booked.ScheduleID,
		})
	}
	return view
}

type reportRowView struct {
	Date       string  `json:"date"`
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	TotalHours float64 `json:"total_hours"`
	StaffCount int     `json:"staff_count"`
}

type reportView struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	Department string          `json:"department,omitempty"`
	Total      int             `json:"total"`
	Rows       []reportRowView `json:"rows"`
}

func newReportView(report application.ScheduleReport) reportView {
	rows := make([]reportRowView, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, reportRowView{
			Date:       row.Date,
			Status:     row.Status,
			Count:      row.Count,
			TotalHours: row.TotalHours,
			StaffCount: row.StaffCount,
		})
	}
	return reportView{
		From:       report.From.Format(dateLayout),
		To:         report.To.Format(dateLayout),
		Department: report.Department,
		Total:      report.Total,
		Rows:       rows,
	}
}

type calendarEntryView struct {
	ScheduleID   string `json:"schedule_id"`
	ScheduleType string `json:"schedule_type"`
	TaskTitle    string `json:"task_title"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	TimeSlot     string `json:"time_slot"`
	StaffCount   int    `json:"staff_count"`
}

type calendarDayView struct {
	Date      string              `json:"date"`
	Schedules []calendarEntryView `json:"schedules"`
}

type calendarView struct {
	Year  int               `json:"year"`
	Month int               `json:"month"`
	Days  []calendarDayView `json:"days"`
}

func newCalendarView(year int, month time.Month, days []application.CalendarDay) calendarView {
	view := calendarView{Year: year, Month: int(month), Days: make([]calendarDayView, 0, len(days))}
	for _, day := range days {
		entries := make([]calendarEntryView, 0, len(day.Schedules))
		for _, entry := range day.Schedules {
			entries = append(entries, calendarEntryView{
				ScheduleID:   entry.ScheduleID,
				ScheduleType: entry.ScheduleType,
				TaskTitle:    entry.TaskTitle,
				Status:       entry.Status,
				Priority:     entry.Priority,
				TimeSlot:     entry.TimeSlot,
				StaffCount:   entry.StaffCount,
			})
		}
		view.Days = append(view.Days, calendarDayView{Date: day.Date, Schedules: entries})
	}
	return view
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(dateLayout)
	return &formatted
}

func formatTimestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}
