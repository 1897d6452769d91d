package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/example/staff-scheduler/internal/mail"
	"github.com/example/staff-scheduler/internal/persistence"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeStaff(id, first, last, email string) persistence.Staff {
	return persistence.Staff{
		ID:         id,
		EmployeeID: "EMP-" + id,
		FirstName:  first,
		LastName:   last,
		Email:      email,
		Status:     StaffStatusActive,
	}
}

func auditTask() persistence.Task {
	return persistence.Task{
		ID:          "task-1",
		TaskID:      "TSK-001",
		Title:       "Inventory audit",
		Description: "Count warehouse stock",
		Category:    "operations",
		Status:      TaskStatusPending,
	}
}

func newTestScheduleService(store *scheduleStoreStub, staff *staffDirectoryStub, tasks *taskCatalogStub, sender mail.Sender) *ScheduleService {
	var dispatcher *NotificationDispatcher
	if sender != nil {
		dispatcher = NewNotificationDispatcher(sender, 0, discardLogger())
	}
	now := fixedClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewScheduleService(store, staff, tasks, dispatcher, time.UTC, sequentialIDs(""), now, discardLogger())
}

func TestCreateSchedule_SnapshotsTaskAndStaff(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	staff := newStaffDirectoryStub(activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"))
	tasks := newTaskCatalogStub(auditTask())
	sender := &senderStub{}
	svc := newTestScheduleService(store, staff, tasks, sender)

	result, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		TimeSlot:      "morning",
		Priority:      "high",
	})
	if err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	schedule := result.Schedule
	if !strings.HasPrefix(schedule.ID, "SCH-DLY-20240610-") {
		t.Errorf("unexpected schedule ID %q", schedule.ID)
	}
	if schedule.TaskTitle != "Inventory audit" || schedule.TaskCategory != "operations" {
		t.Errorf("task snapshot not captured: %+v", schedule)
	}
	if len(schedule.Assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(schedule.Assignments))
	}
	assignment := schedule.Assignments[0]
	if assignment.StaffName != "Ada Lovelace" || assignment.StaffEmail != "ada@example.com" {
		t.Errorf("staff snapshot not captured: %+v", assignment)
	}
	if assignment.StartTime == nil || assignment.StartTime.Hour() != 9 || assignment.EndTime.Hour() != 12 {
		t.Errorf("morning slot bounds not applied: %+v", assignment)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 letter, got %d", len(sender.sent))
	}
	if result.NotificationStatus != NotificationAllSent {
		t.Errorf("expected all_sent, got %q", result.NotificationStatus)
	}
}

func TestCreateSchedule_DropsDoubleBookedStaff(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	staff := newStaffDirectoryStub(
		activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"),
		activeStaff("stf-2", "Grace", "Hopper", "grace@example.com"),
	)
	tasks := newTaskCatalogStub(auditTask())
	svc := newTestScheduleService(store, staff, tasks, &senderStub{})

	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	first, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: date,
	})
	if err != nil {
		t.Fatalf("first CreateSchedule failed: %v", err)
	}

	second, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1", "stf-2"},
		ScheduledDate: date,
	})
	if err != nil {
		t.Fatalf("second CreateSchedule failed: %v", err)
	}

	if len(second.SkippedStaffIDs) != 1 || second.SkippedStaffIDs[0] != "stf-1" {
		t.Fatalf("expected stf-1 skipped, got %v", second.SkippedStaffIDs)
	}
	if len(second.Schedule.Assignments) != 1 || second.Schedule.Assignments[0].StaffID != "stf-2" {
		t.Fatalf("expected only stf-2 assigned, got %+v", second.Schedule.Assignments)
	}
	if first.Schedule.ID == second.Schedule.ID {
		t.Error("schedule IDs must differ")
	}
}

func TestCreateSchedule_SecondBookingSameDayConflicts(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	staff := newStaffDirectoryStub(activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"))
	tasks := newTaskCatalogStub(auditTask())
	second := auditTask()
	second.ID = "task-2"
	second.TaskID = "TSK-002"
	second.Title = "Stock transfer"
	tasks.records[second.ID] = second
	svc := newTestScheduleService(store, staff, tasks, nil)

	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	if _, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: date,
	}); err != nil {
		t.Fatalf("first CreateSchedule failed: %v", err)
	}

	// Even in drop mode the request must fail with a conflict when every
	// requested staff member is already booked that day.
	_, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-2",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: date,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if len(store.schedules) != 1 {
		t.Fatalf("conflicting schedule must not persist, have %d", len(store.schedules))
	}
}

func TestCreateSchedule_StrictModeRejectsOnConflict(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	staff := newStaffDirectoryStub(
		activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"),
		activeStaff("stf-2", "Grace", "Hopper", "grace@example.com"),
	)
	tasks := newTaskCatalogStub(auditTask())
	svc := newTestScheduleService(store, staff, tasks, nil)

	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	if _, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: date,
	}); err != nil {
		t.Fatalf("first CreateSchedule failed: %v", err)
	}

	_, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:       "daily",
		TaskID:             "task-1",
		StaffIDs:           []string{"stf-1", "stf-2"},
		ScheduledDate:      date,
		StrictAvailability: true,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateSchedule_WeeklyConflictSpansWholeWeek(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	staff := newStaffDirectoryStub(activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"))
	tasks := newTaskCatalogStub(auditTask())
	svc := newTestScheduleService(store, staff, tasks, nil)

	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	first, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "weekly",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: monday,
	})
	if err != nil {
		t.Fatalf("first CreateSchedule failed: %v", err)
	}
	if first.Schedule.EndDate == nil || first.Schedule.EndDate.Day() != 16 {
		t.Fatalf("expected weekly end date 2024-06-16, got %v", first.Schedule.EndDate)
	}

	// A thursday in the same week collides; the next monday does not.
	thursday := time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)
	_, err = svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:       "weekly",
		TaskID:             "task-1",
		StaffIDs:           []string{"stf-1"},
		ScheduledDate:      thursday,
		StrictAvailability: true,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for same week, got %v", err)
	}

	nextMonday := time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)
	if _, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:       "weekly",
		TaskID:             "task-1",
		StaffIDs:           []string{"stf-1"},
		ScheduledDate:      nextMonday,
		StrictAvailability: true,
	}); err != nil {
		t.Fatalf("next week should not conflict: %v", err)
	}
}

func TestCreateSchedule_ExpandsWeeklyRecurrence(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	staff := newStaffDirectoryStub(activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"))
	tasks := newTaskCatalogStub(auditTask())
	svc := newTestScheduleService(store, staff, tasks, nil)

	until := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:      "weekly",
		TaskID:            "task-1",
		StaffIDs:          []string{"stf-1"},
		ScheduledDate:     time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Recurrence:        "weekly",
		RecurrenceEndDate: &until,
	})
	if err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	if result.GeneratedChildren != 4 {
		t.Fatalf("expected 4 children (06-10, 06-17, 06-24, 07-01), got %d", result.GeneratedChildren)
	}
	if len(store.schedules) != 5 {
		t.Fatalf("expected 5 stored schedules, got %d", len(store.schedules))
	}
	for _, schedule := range store.schedules[1:] {
		if schedule.ParentScheduleID == nil || *schedule.ParentScheduleID != result.Schedule.ID {
			t.Errorf("child %s missing parent linkage", schedule.ID)
		}
	}
}

func TestCreateSchedule_PersistsWhenMailTransportDown(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	staff := newStaffDirectoryStub(activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"))
	tasks := newTaskCatalogStub(auditTask())
	sender := &senderStub{err: fmt.Errorf("%w: connection refused", mail.ErrUnavailable)}
	svc := newTestScheduleService(store, staff, tasks, sender)

	result, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("schedule creation must survive mail outage: %v", err)
	}

	if result.NotificationStatus != NotificationFailed {
		t.Errorf("expected notification status failed, got %q", result.NotificationStatus)
	}
	if len(result.Notifications) != 1 || result.Notifications[0].EmailStatus != EmailStatusUnavailable {
		t.Errorf("expected service_unavailable outcome, got %+v", result.Notifications)
	}
	stored, err := store.GetSchedule(context.Background(), result.Schedule.ID)
	if err != nil {
		t.Fatalf("schedule not persisted: %v", err)
	}
	if stored.NotificationStatus != NotificationFailed {
		t.Errorf("stored notification status = %q", stored.NotificationStatus)
	}
}

func TestCreateSchedule_PartialDeliveryMarksPartialSent(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	staff := newStaffDirectoryStub(
		activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"),
		activeStaff("stf-2", "Grace", "Hopper", "grace@example.com"),
	)
	tasks := newTaskCatalogStub(auditTask())
	sender := &senderStub{perAddr: map[string]error{"grace@example.com": errors.New("mailbox full")}}
	svc := newTestScheduleService(store, staff, tasks, sender)

	result, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1", "stf-2"},
		ScheduledDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}
	if result.NotificationStatus != NotificationPartialSent {
		t.Errorf("expected partial_sent, got %q", result.NotificationStatus)
	}
}

func TestCreateSchedule_UnknownTask(t *testing.T) {
	t.Parallel()

	svc := newTestScheduleService(&scheduleStoreStub{}, newStaffDirectoryStub(), newTaskCatalogStub(), nil)
	_, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "missing",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateSchedule_InactiveStaffRejected(t *testing.T) {
	t.Parallel()

	inactive := activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com")
	inactive.Status = StaffStatusOnLeave
	svc := newTestScheduleService(&scheduleStoreStub{}, newStaffDirectoryStub(inactive), newTaskCatalogStub(auditTask()), nil)

	_, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateSchedule_ValidationErrors(t *testing.T) {
	t.Parallel()

	svc := newTestScheduleService(&scheduleStoreStub{}, newStaffDirectoryStub(), newTaskCatalogStub(), nil)
	_, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType: "hourly",
		Recurrence:   "fortnightly",
		Priority:     "asap",
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"schedule_type", "task_id", "staff_ids", "scheduled_date", "recurrence", "priority"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("expected field error for %s, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestCreateSchedule_MarksRotation(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	store.schedules = append(store.schedules, persistence.Schedule{
		ID:            "SCH-DLY-20240604-past01",
		ScheduleType:  "daily",
		TaskCategory:  "operations",
		Status:        ScheduleStatusCompleted,
		ScheduledDate: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		Assignments:   []persistence.Assignment{{StaffID: "stf-1"}},
	})
	staff := newStaffDirectoryStub(activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"))
	tasks := newTaskCatalogStub(auditTask())
	svc := newTestScheduleService(store, staff, tasks, nil)

	result, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}
	if !result.Schedule.Assignments[0].Rotated {
		t.Error("expected rotation flag for staff who completed same category last week")
	}
}

func TestResendNotifications_NoTransportConfigured(t *testing.T) {
	t.Parallel()

	svc := newTestScheduleService(&scheduleStoreStub{}, newStaffDirectoryStub(), newTaskCatalogStub(), nil)
	_, err := svc.ResendNotifications(context.Background(), "SCH-1")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestResendNotifications_RetriesOnlyUndelivered(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	staff := newStaffDirectoryStub(
		activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"),
		activeStaff("stf-2", "Grace", "Hopper", "grace@example.com"),
	)
	tasks := newTaskCatalogStub(auditTask())
	sender := &senderStub{perAddr: map[string]error{"grace@example.com": errors.New("mailbox full")}}
	svc := newTestScheduleService(store, staff, tasks, sender)

	created, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1", "stf-2"},
		ScheduledDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}
	if created.NotificationStatus != NotificationPartialSent {
		t.Fatalf("expected partial_sent after creation, got %q", created.NotificationStatus)
	}
	delivered := len(sender.sent)

	sender.mu.Lock()
	sender.perAddr = nil
	sender.mu.Unlock()

	result, err := svc.ResendNotifications(context.Background(), created.Schedule.ID)
	if err != nil {
		t.Fatalf("ResendNotifications failed: %v", err)
	}
	if len(result.Outcomes) != 1 || result.Outcomes[0].StaffID != "stf-2" {
		t.Fatalf("expected a single retry for stf-2, got %+v", result.Outcomes)
	}
	if result.NotificationStatus != NotificationAllSent {
		t.Errorf("expected all_sent after retry, got %q", result.NotificationStatus)
	}
	if len(sender.sent) != delivered+1 {
		t.Errorf("already delivered letters must not be resent, sent %d", len(sender.sent))
	}
	stored, err := store.GetSchedule(context.Background(), created.Schedule.ID)
	if err != nil {
		t.Fatalf("schedule not found: %v", err)
	}
	if stored.NotificationStatus != NotificationAllSent {
		t.Errorf("stored notification status = %q", stored.NotificationStatus)
	}
}

func TestResendNotifications_TransportUnreachable(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	staff := newStaffDirectoryStub(activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"))
	tasks := newTaskCatalogStub(auditTask())
	sender := &senderStub{err: fmt.Errorf("%w: connection refused", mail.ErrUnavailable)}
	svc := newTestScheduleService(store, staff, tasks, sender)

	created, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	_, err = svc.ResendNotifications(context.Background(), created.Schedule.ID)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestUpdateAssignmentStatus_CompletedAtSetOnce(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	staff := newStaffDirectoryStub(activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"))
	tasks := newTaskCatalogStub(auditTask())
	svc := newTestScheduleService(store, staff, tasks, nil)

	created, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}

	first, err := svc.UpdateAssignmentStatus(context.Background(), created.Schedule.ID, "stf-1", AssignmentStatusInput{Status: "completed"})
	if err != nil {
		t.Fatalf("UpdateAssignmentStatus failed: %v", err)
	}
	if first.CompletedAt == nil {
		t.Fatal("expected CompletedAt to be set")
	}

	second, err := svc.UpdateAssignmentStatus(context.Background(), created.Schedule.ID, "stf-1", AssignmentStatusInput{Status: "completed"})
	if err != nil {
		t.Fatalf("second UpdateAssignmentStatus failed: %v", err)
	}
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("CompletedAt must not change on repeat completion: %v vs %v", second.CompletedAt, first.CompletedAt)
	}
}

func TestUpdateAssignmentStatus_RejectsBadRating(t *testing.T) {
	t.Parallel()

	svc := newTestScheduleService(&scheduleStoreStub{}, newStaffDirectoryStub(), newTaskCatalogStub(), nil)
	rating := 9
	_, err := svc.UpdateAssignmentStatus(context.Background(), "sch-1", "stf-1", AssignmentStatusInput{Status: "completed", Rating: &rating})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteSchedule_CascadesToChildren(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	staff := newStaffDirectoryStub(activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"))
	tasks := newTaskCatalogStub(auditTask())
	svc := newTestScheduleService(store, staff, tasks, nil)

	until := time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)
	created, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:      "weekly",
		TaskID:            "task-1",
		StaffIDs:          []string{"stf-1"},
		ScheduledDate:     time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Recurrence:        "weekly",
		RecurrenceEndDate: &until,
	})
	if err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}
	if len(store.schedules) != 3 {
		t.Fatalf("expected parent plus 2 children, got %d", len(store.schedules))
	}

	if err := svc.DeleteSchedule(context.Background(), created.Schedule.ID); err != nil {
		t.Fatalf("DeleteSchedule failed: %v", err)
	}
	if len(store.schedules) != 0 {
		t.Fatalf("expected cascade delete, %d schedules remain", len(store.schedules))
	}
}

func TestUpdateSchedule_MoveOntoBookedDateConflicts(t *testing.T) {
	t.Parallel()

	store := &scheduleStoreStub{}
	staff := newStaffDirectoryStub(activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"))
	tasks := newTaskCatalogStub(auditTask())
	svc := newTestScheduleService(store, staff, tasks, nil)

	if _, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("first CreateSchedule failed: %v", err)
	}
	second, err := svc.CreateSchedule(context.Background(), ScheduleInput{
		ScheduleType:  "daily",
		TaskID:        "task-1",
		StaffIDs:      []string{"stf-1"},
		ScheduledDate: time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("second CreateSchedule failed: %v", err)
	}

	moved := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	_, err = svc.UpdateSchedule(context.Background(), second.Schedule.ID, ScheduleUpdateInput{ScheduledDate: &moved})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when moving onto a booked date, got %v", err)
	}
}
