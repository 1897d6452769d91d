package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/staff-scheduler/internal/persistence"
	"github.com/example/staff-scheduler/internal/recurrence"
	"github.com/example/staff-scheduler/internal/scheduler"
)

// ScheduleStore captures the persistence interactions needed by the schedule
// service.
type ScheduleStore interface {
	CreateSchedule(ctx context.Context, schedule persistence.Schedule, guard *persistence.ConflictGuard) error
	UpdateSchedule(ctx context.Context, schedule persistence.Schedule) error
	GetSchedule(ctx context.Context, id string) (persistence.Schedule, error)
	ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
	ListActiveBookings(ctx context.Context, scheduleType string, from, to time.Time) ([]persistence.Booking, error)
	UpdateAssignment(ctx context.Context, scheduleID, staffID string, patch persistence.AssignmentPatch) (persistence.Assignment, error)
	RecordDelivery(ctx context.Context, scheduleID, staffID string, record persistence.DeliveryRecord) error
	SetNotificationStatus(ctx context.Context, scheduleID, status string) error
}

// ScheduleService orchestrates conflict checks, recurrence expansion,
// persistence and notification dispatch for schedules.
type ScheduleService struct {
	schedules   ScheduleStore
	staff       StaffDirectory
	tasks       TaskCatalog
	dispatcher  *NotificationDispatcher
	engine      *recurrence.Engine
	location    *time.Location
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewScheduleService wires dependencies for schedule operations. A nil
// dispatcher disables notifications.
func NewScheduleService(schedules ScheduleStore, staff StaffDirectory, tasks TaskCatalog, dispatcher *NotificationDispatcher, loc *time.Location, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if loc == nil {
		loc = time.UTC
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		schedules:   schedules,
		staff:       staff,
		tasks:       tasks,
		dispatcher:  dispatcher,
		engine:      recurrence.NewEngine(loc),
		location:    loc,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

var schedulePriorities = map[string]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

var scheduleStatuses = map[string]bool{
	ScheduleStatusScheduled:  true,
	ScheduleStatusInProgress: true,
	ScheduleStatusCompleted:  true,
	ScheduleStatusCancelled:  true,
	ScheduleStatusOverdue:    true,
}

var assignmentStatuses = map[string]bool{
	AssignmentStatusPending:    true,
	AssignmentStatusInProgress: true,
	AssignmentStatusCompleted:  true,
	AssignmentStatusCancelled:  true,
	AssignmentStatusOverdue:    true,
}

// CreateSchedule validates the request, checks every assignee for double
// bookings, persists the schedule together with its recurrence children and
// dispatches assignment letters. Notification failures never fail the call.
func (s *ScheduleService) CreateSchedule(ctx context.Context, input ScheduleInput) (CreateScheduleResult, error) {
	if s == nil {
		return CreateScheduleResult{}, fmt.Errorf("ScheduleService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "schedule", "create", "schedule_type", input.ScheduleType)

	normalizeScheduleInput(&input)
	if vErr := validateScheduleInput(input); vErr.HasErrors() {
		logger.Warn("schedule validation failed", "fields", vErr.FieldErrors)
		return CreateScheduleResult{}, vErr
	}

	task, err := s.tasks.GetTask(ctx, input.TaskID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return CreateScheduleResult{}, fmt.Errorf("%w: task %s", ErrNotFound, input.TaskID)
		}
		return CreateScheduleResult{}, fmt.Errorf("failed to load task: %w", err)
	}

	assignees, err := s.resolveAssignees(ctx, input.StaffIDs)
	if err != nil {
		return CreateScheduleResult{}, err
	}

	scheduleType := scheduler.ScheduleType(input.ScheduleType)
	window := scheduler.BookingWindow(scheduleType, input.ScheduledDate, s.location)

	bookings, err := s.activeBookings(ctx, input.ScheduleType, window)
	if err != nil {
		return CreateScheduleResult{}, err
	}

	conflicts := scheduler.DetectConflicts(bookings, input.StaffIDs, scheduleType, window)
	conflicted := scheduler.ConflictingStaff(conflicts)

	if len(conflicted) > 0 && input.StrictAvailability {
		logger.Warn("schedule rejected on conflict", "staff_ids", conflicted)
		return CreateScheduleResult{}, fmt.Errorf("%w: staff already booked in window: %s", ErrConflict, strings.Join(conflicted, ", "))
	}

	kept, skipped := partitionAssignees(assignees, conflicted)
	if len(kept) == 0 {
		logger.Warn("schedule rejected, every assignee booked", "staff_ids", conflicted)
		return CreateScheduleResult{}, fmt.Errorf("%w: all requested staff are already booked in this window", ErrConflict)
	}

	now := s.now().UTC()
	schedule := s.buildSchedule(input, task, kept, now)
	s.annotateRotation(ctx, &schedule, window)

	guard := &persistence.ConflictGuard{
		StaffIDs:    assignmentStaffIDs(schedule.Assignments),
		WindowStart: window.Start,
		WindowEnd:   window.End,
	}
	if err := s.schedules.CreateSchedule(ctx, schedule, guard); err != nil {
		if errors.Is(err, persistence.ErrScheduleConflict) {
			return CreateScheduleResult{}, fmt.Errorf("%w: staff booked concurrently", ErrConflict)
		}
		if errors.Is(err, persistence.ErrForeignKeyViolation) {
			return CreateScheduleResult{}, fmt.Errorf("%w: referenced task or staff no longer exists", ErrNotFound)
		}
		logger.Error("failed to create schedule", "error", err)
		return CreateScheduleResult{}, fmt.Errorf("failed to create schedule: %w", err)
	}

	result := CreateScheduleResult{
		Schedule:        schedule,
		SkippedStaffIDs: skipped,
	}

	generated, skippedOccurrences := s.expandRecurrence(ctx, logger, schedule)
	result.GeneratedChildren = generated
	result.SkippedOccurrences = skippedOccurrences

	result.Notifications = s.dispatcher.Dispatch(ctx, schedule)
	result.NotificationStatus = AggregateNotificationStatus(result.Notifications)
	recordOutcomes(ctx, s.schedules, logger, schedule.ID, result.Notifications, result.NotificationStatus)
	applyOutcomes(&result.Schedule, result.Notifications, result.NotificationStatus)

	logger.Info("schedule created",
		"schedule_id", schedule.ID,
		"assignees", len(schedule.Assignments),
		"skipped_staff", len(skipped),
		"children", generated,
		"notification_status", result.NotificationStatus)
	return result, nil
}

// GetSchedule loads one schedule with its assignments.
func (s *ScheduleService) GetSchedule(ctx context.Context, id string) (persistence.Schedule, error) {
	if s == nil {
		return persistence.Schedule{}, fmt.Errorf("ScheduleService is nil")
	}
	schedule, err := s.schedules.GetSchedule(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Schedule{}, fmt.Errorf("%w: schedule %s", ErrNotFound, id)
		}
		return persistence.Schedule{}, fmt.Errorf("failed to load schedule: %w", err)
	}
	return schedule, nil
}

// ListSchedules returns schedules matching the filter, newest date first.
func (s *ScheduleService) ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}
	if filter.Status != "" && !scheduleStatuses[filter.Status] {
		vErr := &ValidationError{}
		vErr.add("status", "unknown schedule status")
		return nil, vErr
	}
	if filter.ScheduleType != "" && filter.ScheduleType != string(scheduler.TypeDaily) && filter.ScheduleType != string(scheduler.TypeWeekly) {
		vErr := &ValidationError{}
		vErr.add("schedule_type", "schedule type must be daily or weekly")
		return nil, vErr
	}
	schedules, err := s.schedules.ListSchedules(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// UpdateSchedule applies changes to an existing schedule. Type, task and
// recurrence lineage are immutable. Moving the date re-runs conflict checks
// for every assignee.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, id string, input ScheduleUpdateInput) (persistence.Schedule, error) {
	if s == nil {
		return persistence.Schedule{}, fmt.Errorf("ScheduleService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "schedule", "update", "schedule_id", id)

	existing, err := s.GetSchedule(ctx, id)
	if err != nil {
		return persistence.Schedule{}, err
	}

	vErr := &ValidationError{}
	if input.Priority != nil && !schedulePriorities[*input.Priority] {
		vErr.add("priority", "priority must be low, medium, high or urgent")
	}
	if input.Status != nil && !scheduleStatuses[*input.Status] {
		vErr.add("status", "status must be scheduled, in_progress, completed, cancelled or overdue")
	}
	if input.TimeSlot != nil && !scheduler.ValidTimeSlot(scheduler.TimeSlot(*input.TimeSlot)) {
		vErr.add("time_slot", "time slot must be morning, afternoon, full_day or custom")
	}
	if input.EstimatedHours != nil && *input.EstimatedHours < 0 {
		vErr.add("estimated_hours", "estimated hours cannot be negative")
	}
	if vErr.HasErrors() {
		logger.Warn("schedule validation failed", "fields", vErr.FieldErrors)
		return persistence.Schedule{}, vErr
	}

	updated := existing
	if input.ScheduledDate != nil {
		updated.ScheduledDate = *input.ScheduledDate
	}
	if input.EndDate != nil {
		updated.EndDate = input.EndDate
	}
	if input.TimeSlot != nil {
		updated.TimeSlot = *input.TimeSlot
	}
	if input.Priority != nil {
		updated.Priority = *input.Priority
	}
	if input.EstimatedHours != nil {
		updated.EstimatedHours = *input.EstimatedHours
	}
	if input.Status != nil {
		updated.Status = *input.Status
	}
	if input.Department != nil {
		updated.Department = *input.Department
	}
	if input.Location != nil {
		updated.Location = *input.Location
	}
	if input.Notes != nil {
		updated.Notes = *input.Notes
	}

	if input.StaffIDs != nil {
		assignees, err := s.resolveAssignees(ctx, input.StaffIDs)
		if err != nil {
			return persistence.Schedule{}, err
		}
		updated.Assignments = s.buildAssignments(id, assignees, updated)
	} else if input.ScheduledDate != nil || input.TimeSlot != nil {
		updated.Assignments = s.rebindAssignmentTimes(updated)
	}

	dateMoved := input.ScheduledDate != nil && !input.ScheduledDate.Equal(existing.ScheduledDate)
	if (dateMoved || input.StaffIDs != nil) && isActiveStatus(updated.Status) {
		if err := s.ensureNoConflicts(ctx, updated); err != nil {
			return persistence.Schedule{}, err
		}
	}

	updated.UpdatedAt = s.now().UTC()
	if err := s.schedules.UpdateSchedule(ctx, updated); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Schedule{}, fmt.Errorf("%w: schedule %s", ErrNotFound, id)
		}
		logger.Error("failed to update schedule", "error", err)
		return persistence.Schedule{}, fmt.Errorf("failed to update schedule: %w", err)
	}

	logger.Info("schedule updated")
	return updated, nil
}

// DeleteSchedule removes a schedule and every recurrence child generated
// from it.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("ScheduleService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "schedule", "delete", "schedule_id", id)

	if err := s.schedules.DeleteSchedule(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("%w: schedule %s", ErrNotFound, id)
		}
		logger.Error("failed to delete schedule", "error", err)
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	logger.Info("schedule deleted")
	return nil
}

// UpdateAssignmentStatus patches one staff member's assignment. Completing an
// assignment stamps CompletedAt exactly once; repeated completion requests
// leave the original timestamp untouched.
func (s *ScheduleService) UpdateAssignmentStatus(ctx context.Context, scheduleID, staffID string, input AssignmentStatusInput) (persistence.Assignment, error) {
	if s == nil {
		return persistence.Assignment{}, fmt.Errorf("ScheduleService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "schedule", "assignment_status", "schedule_id", scheduleID, "staff_id", staffID)

	vErr := &ValidationError{}
	if !assignmentStatuses[input.Status] {
		vErr.add("status", "status must be pending, in_progress, completed, cancelled or overdue")
	}
	if input.HoursWorked != nil && *input.HoursWorked < 0 {
		vErr.add("hours_worked", "hours worked cannot be negative")
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		vErr.add("rating", "rating must be between 1 and 5")
	}
	if vErr.HasErrors() {
		return persistence.Assignment{}, vErr
	}

	schedule, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return persistence.Assignment{}, err
	}
	current, ok := findAssignment(schedule.Assignments, staffID)
	if !ok {
		return persistence.Assignment{}, fmt.Errorf("%w: staff %s is not assigned to schedule %s", ErrNotFound, staffID, scheduleID)
	}

	patch := persistence.AssignmentPatch{
		Status:      &input.Status,
		Notes:       input.Notes,
		HoursWorked: input.HoursWorked,
		Rating:      input.Rating,
	}
	if input.Status == AssignmentStatusCompleted && current.CompletedAt == nil {
		completedAt := s.now().UTC()
		patch.CompletedAt = &completedAt
	}

	assignment, err := s.schedules.UpdateAssignment(ctx, scheduleID, staffID, patch)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Assignment{}, fmt.Errorf("%w: assignment for staff %s", ErrNotFound, staffID)
		}
		logger.Error("failed to update assignment", "error", err)
		return persistence.Assignment{}, fmt.Errorf("failed to update assignment: %w", err)
	}

	logger.Info("assignment updated", "status", input.Status)
	return assignment, nil
}

// ResendNotifications re-sends assignment letters to every assignee whose
// earlier delivery did not succeed. It fails with ErrServiceUnavailable when
// no mail transport is configured or the transport rejects every recipient
// as unreachable.
func (s *ScheduleService) ResendNotifications(ctx context.Context, scheduleID string) (NotificationResult, error) {
	if s == nil {
		return NotificationResult{}, fmt.Errorf("ScheduleService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "schedule", "resend_notifications", "schedule_id", scheduleID)

	if !s.dispatcher.Enabled() {
		return NotificationResult{}, fmt.Errorf("%w: mail transport is not configured", ErrServiceUnavailable)
	}

	schedule, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return NotificationResult{}, err
	}

	outcomes := s.dispatcher.Dispatch(ctx, schedule)
	if len(outcomes) == 0 {
		return NotificationResult{
			ScheduleID:         scheduleID,
			NotificationStatus: schedule.NotificationStatus,
		}, nil
	}

	unavailable := 0
	for _, outcome := range outcomes {
		if outcome.EmailStatus == EmailStatusUnavailable {
			unavailable++
		}
	}

	applyOutcomes(&schedule, outcomes, "")
	status := notificationStatusFor(schedule.Assignments)
	recordOutcomes(ctx, s.schedules, logger, scheduleID, outcomes, status)

	if unavailable == len(outcomes) {
		logger.Warn("mail transport unreachable for every recipient")
		return NotificationResult{}, fmt.Errorf("%w: mail transport unreachable", ErrServiceUnavailable)
	}

	logger.Info("notifications resent", "attempted", len(outcomes), "status", status)
	return NotificationResult{
		ScheduleID:         scheduleID,
		Outcomes:           outcomes,
		NotificationStatus: status,
	}, nil
}

func (s *ScheduleService) resolveAssignees(ctx context.Context, staffIDs []string) ([]persistence.Staff, error) {
	assignees := make([]persistence.Staff, 0, len(staffIDs))
	inactive := make([]string, 0)
	for _, staffID := range staffIDs {
		member, err := s.staff.GetStaff(ctx, staffID)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return nil, fmt.Errorf("%w: staff %s", ErrNotFound, staffID)
			}
			return nil, fmt.Errorf("failed to load staff %s: %w", staffID, err)
		}
		if member.Status != StaffStatusActive {
			inactive = append(inactive, staffID)
			continue
		}
		assignees = append(assignees, member)
	}
	if len(inactive) > 0 {
		vErr := &ValidationError{}
		vErr.add("staff_ids", fmt.Sprintf("staff not active: %s", strings.Join(inactive, ", ")))
		return nil, vErr
	}
	return assignees, nil
}

func (s *ScheduleService) activeBookings(ctx context.Context, scheduleType string, window scheduler.Window) ([]scheduler.Booking, error) {
	rows, err := s.schedules.ListActiveBookings(ctx, scheduleType, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load active bookings: %w", err)
	}
	bookings := make([]scheduler.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, scheduler.Booking{
			ScheduleID: row.ScheduleID,
			StaffID:    row.StaffID,
			Date:       row.ScheduledDate,
		})
	}
	return bookings, nil
}

func (s *ScheduleService) buildSchedule(input ScheduleInput, task persistence.Task, assignees []persistence.Staff, now time.Time) persistence.Schedule {
	schedule := persistence.Schedule{
		ID:                 s.scheduleID(input.ScheduleType, input.ScheduledDate),
		ScheduleType:       input.ScheduleType,
		TaskID:             task.ID,
		TaskTitle:          task.Title,
		TaskDescription:    task.Description,
		TaskCategory:       task.Category,
		Priority:           input.Priority,
		EstimatedHours:     input.EstimatedHours,
		ScheduledDate:      startOfDay(input.ScheduledDate, s.location),
		EndDate:            input.EndDate,
		TimeSlot:           input.TimeSlot,
		Recurrence:         input.Recurrence,
		RecurrenceEndDate:  input.RecurrenceEndDate,
		Status:             ScheduleStatusScheduled,
		NotificationStatus: NotificationPending,
		Department:         input.Department,
		Location:           input.Location,
		Notes:              input.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if schedule.ScheduleType == string(scheduler.TypeWeekly) && schedule.EndDate == nil {
		week := scheduler.WeekWindow(schedule.ScheduledDate, s.location)
		end := week.End.AddDate(0, 0, -1)
		schedule.EndDate = &end
	}

	schedule.Assignments = s.buildAssignments(schedule.ID, assignees, schedule)
	return schedule
}

func (s *ScheduleService) buildAssignments(scheduleID string, assignees []persistence.Staff, schedule persistence.Schedule) []persistence.Assignment {
	start, end := scheduler.SlotBounds(scheduler.TimeSlot(schedule.TimeSlot), schedule.ScheduledDate, s.location)
	assignments := make([]persistence.Assignment, 0, len(assignees))
	for _, member := range assignees {
		assignment := persistence.Assignment{
			ScheduleID: scheduleID,
			StaffID:    member.ID,
			StaffName:  strings.TrimSpace(member.FirstName + " " + member.LastName),
			StaffEmail: member.Email,
			Status:     AssignmentStatusPending,
		}
		if !start.IsZero() {
			assignmentStart, assignmentEnd := start, end
			assignment.StartTime = &assignmentStart
			assignment.EndTime = &assignmentEnd
		}
		assignments = append(assignments, assignment)
	}
	return assignments
}

func (s *ScheduleService) rebindAssignmentTimes(schedule persistence.Schedule) []persistence.Assignment {
	start, end := scheduler.SlotBounds(scheduler.TimeSlot(schedule.TimeSlot), schedule.ScheduledDate, s.location)
	assignments := make([]persistence.Assignment, len(schedule.Assignments))
	copy(assignments, schedule.Assignments)
	for i := range assignments {
		if start.IsZero() {
			continue
		}
		assignmentStart, assignmentEnd := start, end
		assignments[i].StartTime = &assignmentStart
		assignments[i].EndTime = &assignmentEnd
	}
	return assignments
}

// annotateRotation flags assignees who completed a task of the same category
// during the preceding week. The flag is advisory; it never blocks creation.
func (s *ScheduleService) annotateRotation(ctx context.Context, schedule *persistence.Schedule, window scheduler.Window) {
	if schedule.TaskCategory == "" {
		return
	}
	from := window.Start.AddDate(0, 0, -7)
	to := window.Start
	status := ScheduleStatusCompleted
	for i := range schedule.Assignments {
		history, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{
			StaffID:  schedule.Assignments[i].StaffID,
			Status:   status,
			DateFrom: &from,
			DateTo:   &to,
		})
		if err != nil {
			continue
		}
		for _, past := range history {
			if past.TaskCategory == schedule.TaskCategory {
				schedule.Assignments[i].Rotated = true
				break
			}
		}
	}
}

// expandRecurrence creates child schedules for each occurrence. Children that
// collide with existing bookings are skipped rather than failing the parent.
func (s *ScheduleService) expandRecurrence(ctx context.Context, logger *slog.Logger, parent persistence.Schedule) (created, skipped int) {
	occurrences, err := s.engine.Expand(recurrence.Rule{
		Kind:  recurrence.Kind(parent.Recurrence),
		Start: parent.ScheduledDate,
		Until: parent.RecurrenceEndDate,
	})
	if err != nil || len(occurrences) == 0 {
		return 0, 0
	}

	scheduleType := scheduler.ScheduleType(parent.ScheduleType)
	var span time.Duration
	if parent.EndDate != nil {
		span = parent.EndDate.Sub(parent.ScheduledDate)
	}

	for _, occurrence := range occurrences {
		child := parent
		child.ID = s.scheduleID(parent.ScheduleType, occurrence.Date)
		child.ScheduledDate = occurrence.Date
		child.ParentScheduleID = &parent.ID
		child.Recurrence = string(recurrence.KindOnce)
		child.RecurrenceEndDate = nil
		child.NotificationStatus = NotificationPending
		if parent.EndDate != nil {
			end := occurrence.Date.Add(span)
			child.EndDate = &end
		}

		assignees := make([]persistence.Staff, 0, len(parent.Assignments))
		for _, assignment := range parent.Assignments {
			assignees = append(assignees, persistence.Staff{
				ID:    assignment.StaffID,
				Email: assignment.StaffEmail,
			})
		}
		child.Assignments = s.buildAssignments(child.ID, assignees, child)
		for i, assignment := range parent.Assignments {
			child.Assignments[i].StaffName = assignment.StaffName
		}

		window := scheduler.BookingWindow(scheduleType, occurrence.Date, s.location)
		guard := &persistence.ConflictGuard{
			StaffIDs:    assignmentStaffIDs(child.Assignments),
			WindowStart: window.Start,
			WindowEnd:   window.End,
		}
		if err := s.schedules.CreateSchedule(ctx, child, guard); err != nil {
			if errors.Is(err, persistence.ErrScheduleConflict) {
				skipped++
				continue
			}
			logger.Error("failed to create recurrence child", "date", occurrence.Date.Format("2006-01-02"), "error", err)
			skipped++
			continue
		}
		created++
	}
	return created, skipped
}

func (s *ScheduleService) ensureNoConflicts(ctx context.Context, schedule persistence.Schedule) error {
	scheduleType := scheduler.ScheduleType(schedule.ScheduleType)
	window := scheduler.BookingWindow(scheduleType, schedule.ScheduledDate, s.location)

	bookings, err := s.activeBookings(ctx, schedule.ScheduleType, window)
	if err != nil {
		return err
	}
	// The schedule's own bookings never conflict with itself.
	filtered := bookings[:0]
	for _, booking := range bookings {
		if booking.ScheduleID == schedule.ID {
			continue
		}
		filtered = append(filtered, booking)
	}

	conflicts := scheduler.DetectConflicts(filtered, assignmentStaffIDs(schedule.Assignments), scheduleType, window)
	if conflicted := scheduler.ConflictingStaff(conflicts); len(conflicted) > 0 {
		return fmt.Errorf("%w: staff already booked in window: %s", ErrConflict, strings.Join(conflicted, ", "))
	}
	return nil
}

// scheduleID builds a human scannable identifier such as
// SCH-DLY-20240610-ab12cd.
func (s *ScheduleService) scheduleID(scheduleType string, date time.Time) string {
	code := "DLY"
	if scheduleType == string(scheduler.TypeWeekly) {
		code = "WKL"
	}
	suffix := strings.ReplaceAll(s.idGenerator(), "-", "")
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("SCH-%s-%s-%s", code, date.Format("20060102"), suffix)
}

func normalizeScheduleInput(input *ScheduleInput) {
	input.ScheduleType = strings.TrimSpace(strings.ToLower(input.ScheduleType))
	input.TimeSlot = strings.TrimSpace(strings.ToLower(input.TimeSlot))
	input.Recurrence = strings.TrimSpace(strings.ToLower(input.Recurrence))
	input.Priority = strings.TrimSpace(strings.ToLower(input.Priority))
	if input.TimeSlot == "" {
		input.TimeSlot = string(scheduler.SlotFullDay)
	}
	if input.Recurrence == "" {
		input.Recurrence = string(recurrence.KindOnce)
	}
	if input.Priority == "" {
		input.Priority = PriorityMedium
	}
	input.StaffIDs = uniqueStrings(input.StaffIDs)
}

func validateScheduleInput(input ScheduleInput) *ValidationError {
	vErr := &ValidationError{}

	if input.ScheduleType != string(scheduler.TypeDaily) && input.ScheduleType != string(scheduler.TypeWeekly) {
		vErr.add("schedule_type", "schedule type must be daily or weekly")
	}
	if strings.TrimSpace(input.TaskID) == "" {
		vErr.add("task_id", "task ID is required")
	}
	if len(input.StaffIDs) == 0 {
		vErr.add("staff_ids", "at least one staff member is required")
	}
	if input.ScheduledDate.IsZero() {
		vErr.add("scheduled_date", "scheduled date is required")
	}
	if input.EndDate != nil && input.EndDate.Before(input.ScheduledDate) {
		vErr.add("end_date", "end date cannot precede the scheduled date")
	}
	if !scheduler.ValidTimeSlot(scheduler.TimeSlot(input.TimeSlot)) {
		vErr.add("time_slot", "time slot must be morning, afternoon, full_day or custom")
	}
	if !recurrence.Valid(recurrence.Kind(input.Recurrence)) {
		vErr.add("recurrence", "recurrence must be once, daily, weekdays or weekly")
	}
	if input.RecurrenceEndDate != nil && input.RecurrenceEndDate.Before(input.ScheduledDate) {
		vErr.add("recurrence_end_date", "recurrence end date cannot precede the scheduled date")
	}
	if !schedulePriorities[input.Priority] {
		vErr.add("priority", "priority must be low, medium, high or urgent")
	}
	if input.EstimatedHours < 0 {
		vErr.add("estimated_hours", "estimated hours cannot be negative")
	}

	return vErr
}

func partitionAssignees(assignees []persistence.Staff, conflicted []string) (kept []persistence.Staff, skipped []string) {
	conflictSet := make(map[string]bool, len(conflicted))
	for _, id := range conflicted {
		conflictSet[id] = true
	}
	for _, member := range assignees {
		if conflictSet[member.ID] {
			skipped = append(skipped, member.ID)
			continue
		}
		kept = append(kept, member)
	}
	sort.Strings(skipped)
	return kept, skipped
}

func applyOutcomes(schedule *persistence.Schedule, outcomes []DeliveryOutcome, status string) {
	if len(outcomes) == 0 {
		return
	}
	byStaff := make(map[string]DeliveryOutcome, len(outcomes))
	for _, outcome := range outcomes {
		byStaff[outcome.StaffID] = outcome
	}
	for i := range schedule.Assignments {
		outcome, ok := byStaff[schedule.Assignments[i].StaffID]
		if !ok {
			continue
		}
		schedule.Assignments[i].NotificationSent = outcome.Sent
		schedule.Assignments[i].EmailStatus = outcome.EmailStatus
		schedule.Assignments[i].EmailMessageID = outcome.MessageID
	}
	schedule.NotificationStatus = status
}

func findAssignment(assignments []persistence.Assignment, staffID string) (persistence.Assignment, bool) {
	for _, assignment := range assignments {
		if assignment.StaffID == staffID {
			return assignment, true
		}
	}
	return persistence.Assignment{}, false
}

func assignmentStaffIDs(assignments []persistence.Assignment) []string {
	ids := make([]string, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.StaffID)
	}
	return ids
}

func isActiveStatus(status string) bool {
	return status == ScheduleStatusScheduled || status == ScheduleStatusInProgress
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
