package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/staff-scheduler/internal/mail"
	"github.com/example/staff-scheduler/internal/persistence"
)

type staffDirectoryStub struct {
	records map[string]persistence.Staff
	err     error
	created []persistence.Staff
	updated []persistence.Staff
	deleted []string
}

func newStaffDirectoryStub(records ...persistence.Staff) *staffDirectoryStub {
	stub := &staffDirectoryStub{records: make(map[string]persistence.Staff)}
	for _, record := range records {
		stub.records[record.ID] = record
	}
	return stub
}

func (s *staffDirectoryStub) CreateStaff(ctx context.Context, staff persistence.Staff) error {
	if s.err != nil {
		return s.err
	}
	for _, existing := range s.records {
		if existing.EmployeeID == staff.EmployeeID || strings.EqualFold(existing.Email, staff.Email) {
			return persistence.ErrDuplicate
		}
	}
	s.records[staff.ID] = staff
	s.created = append(s.created, staff)
	return nil
}

func (s *staffDirectoryStub) UpdateStaff(ctx context.Context, staff persistence.Staff) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.records[staff.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.records[staff.ID] = staff
	s.updated = append(s.updated, staff)
	return nil
}

func (s *staffDirectoryStub) GetStaff(ctx context.Context, id string) (persistence.Staff, error) {
	if s.err != nil {
		return persistence.Staff{}, s.err
	}
	staff, ok := s.records[id]
	if !ok {
		return persistence.Staff{}, persistence.ErrNotFound
	}
	return staff, nil
}

func (s *staffDirectoryStub) GetStaffByEmail(ctx context.Context, email string) (persistence.Staff, error) {
	for _, staff := range s.records {
		if strings.EqualFold(staff.Email, email) {
			return staff, nil
		}
	}
	return persistence.Staff{}, persistence.ErrNotFound
}

func (s *staffDirectoryStub) ListStaff(ctx context.Context, filter persistence.StaffFilter) ([]persistence.Staff, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []persistence.Staff
	for _, staff := range s.records {
		if filter.Status != "" && staff.Status != filter.Status {
			continue
		}
		if filter.Department != "" && staff.Department != filter.Department {
			continue
		}
		out = append(out, staff)
	}
	return out, nil
}

func (s *staffDirectoryStub) DeleteStaff(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.records[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.records, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type taskCatalogStub struct {
	records map[string]persistence.Task
	err     error
	created []persistence.Task
	updated []persistence.Task
	deleted []string
}

func newTaskCatalogStub(records ...persistence.Task) *taskCatalogStub {
	stub := &taskCatalogStub{records: make(map[string]persistence.Task)}
	for _, record := range records {
		stub.records[record.ID] = record
	}
	return stub
}

func (s *taskCatalogStub) CreateTask(ctx context.Context, task persistence.Task) error {
	if s.err != nil {
		return s.err
	}
	for _, existing := range s.records {
		if existing.TaskID == task.TaskID {
			return persistence.ErrDuplicate
		}
	}
	s.records[task.ID] = task
	s.created = append(s.created, task)
	return nil
}

func (s *taskCatalogStub) UpdateTask(ctx context.Context, task persistence.Task) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.records[task.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.records[task.ID] = task
	s.updated = append(s.updated, task)
	return nil
}

func (s *taskCatalogStub) GetTask(ctx context.Context, id string) (persistence.Task, error) {
	if s.err != nil {
		return persistence.Task{}, s.err
	}
	task, ok := s.records[id]
	if !ok {
		return persistence.Task{}, persistence.ErrNotFound
	}
	return task, nil
}

func (s *taskCatalogStub) ListTasks(ctx context.Context, filter persistence.TaskFilter) ([]persistence.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []persistence.Task
	for _, task := range s.records {
		if filter.Category != "" && task.Category != filter.Category {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (s *taskCatalogStub) DeleteTask(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.records[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.records, id)
	s.deleted = append(s.deleted, id)
	return nil
}

// scheduleStoreStub keeps schedules in memory and honours the conflict guard
// the same way the SQLite repository does.
type scheduleStoreStub struct {
	mu        sync.Mutex
	schedules []persistence.Schedule
	createErr error
	listErr   error
}

func (s *scheduleStoreStub) CreateSchedule(ctx context.Context, schedule persistence.Schedule, guard *persistence.ConflictGuard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if guard != nil {
		guarded := make(map[string]bool, len(guard.StaffIDs))
		for _, id := range guard.StaffIDs {
			guarded[id] = true
		}
		for _, existing := range s.schedules {
			if existing.ScheduleType != schedule.ScheduleType {
				continue
			}
			if existing.Status != ScheduleStatusScheduled && existing.Status != ScheduleStatusInProgress {
				continue
			}
			if existing.ScheduledDate.Before(guard.WindowStart) || !existing.ScheduledDate.Before(guard.WindowEnd) {
				continue
			}
			for _, assignment := range existing.Assignments {
				if guarded[assignment.StaffID] {
					return persistence.ErrScheduleConflict
				}
			}
		}
	}
	s.schedules = append(s.schedules, schedule)
	return nil
}

func (s *scheduleStoreStub) UpdateSchedule(ctx context.Context, schedule persistence.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.schedules {
		if s.schedules[i].ID == schedule.ID {
			s.schedules[i] = schedule
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (s *scheduleStoreStub) GetSchedule(ctx context.Context, id string) (persistence.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, schedule := range s.schedules {
		if schedule.ID == id {
			return schedule, nil
		}
	}
	return persistence.Schedule{}, persistence.ErrNotFound
}

func (s *scheduleStoreStub) ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []persistence.Schedule
	for _, schedule := range s.schedules {
		if filter.ScheduleType != "" && schedule.ScheduleType != filter.ScheduleType {
			continue
		}
		if filter.Status != "" && schedule.Status != filter.Status {
			continue
		}
		if filter.Department != "" && schedule.Department != filter.Department {
			continue
		}
		if filter.DateFrom != nil && schedule.ScheduledDate.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && !schedule.ScheduledDate.Before(*filter.DateTo) {
			continue
		}
		if filter.StaffID != "" {
			if _, ok := findAssignment(schedule.Assignments, filter.StaffID); !ok {
				continue
			}
		}
		out = append(out, schedule)
	}
	return out, nil
}

func (s *scheduleStoreStub) DeleteSchedule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	kept := s.schedules[:0]
	for _, schedule := range s.schedules {
		if schedule.ID == id {
			found = true
			continue
		}
		if schedule.ParentScheduleID != nil && *schedule.ParentScheduleID == id {
			continue
		}
		kept = append(kept, schedule)
	}
	s.schedules = kept
	if !found {
		return persistence.ErrNotFound
	}
	return nil
}

func (s *scheduleStoreStub) ListActiveBookings(ctx context.Context, scheduleType string, from, to time.Time) ([]persistence.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []persistence.Booking
	for _, schedule := range s.schedules {
		if schedule.ScheduleType != scheduleType {
			continue
		}
		if schedule.Status != ScheduleStatusScheduled && schedule.Status != ScheduleStatusInProgress {
			continue
		}
		if schedule.ScheduledDate.Before(from) || !schedule.ScheduledDate.Before(to) {
			continue
		}
		for _, assignment := range schedule.Assignments {
			out = append(out, persistence.Booking{
				ScheduleID:    schedule.ID,
				StaffID:       assignment.StaffID,
				ScheduledDate: schedule.ScheduledDate,
			})
		}
	}
	return out, nil
}

func (s *scheduleStoreStub) UpdateAssignment(ctx context.Context, scheduleID, staffID string, patch persistence.AssignmentPatch) (persistence.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.schedules {
		if s.schedules[i].ID != scheduleID {
			continue
		}
		for j := range s.schedules[i].Assignments {
			assignment := &s.schedules[i].Assignments[j]
			if assignment.StaffID != staffID {
				continue
			}
			if patch.Status != nil {
				assignment.Status = *patch.Status
			}
			if patch.Notes != nil {
				assignment.Notes = *patch.Notes
			}
			if patch.HoursWorked != nil {
				assignment.HoursWorked = *patch.HoursWorked
			}
			if patch.Rating != nil {
				assignment.Rating = *patch.Rating
			}
			if patch.CompletedAt != nil {
				assignment.CompletedAt = patch.CompletedAt
			}
			return *assignment, nil
		}
	}
	return persistence.Assignment{}, persistence.ErrNotFound
}

func (s *scheduleStoreStub) RecordDelivery(ctx context.Context, scheduleID, staffID string, record persistence.DeliveryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.schedules {
		if s.schedules[i].ID != scheduleID {
			continue
		}
		for j := range s.schedules[i].Assignments {
			if s.schedules[i].Assignments[j].StaffID != staffID {
				continue
			}
			s.schedules[i].Assignments[j].NotificationSent = record.Sent
			s.schedules[i].Assignments[j].EmailStatus = record.EmailStatus
			s.schedules[i].Assignments[j].EmailMessageID = record.MessageID
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (s *scheduleStoreStub) SetNotificationStatus(ctx context.Context, scheduleID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.schedules {
		if s.schedules[i].ID == scheduleID {
			s.schedules[i].NotificationStatus = status
			return nil
		}
	}
	return persistence.ErrNotFound
}

type senderStub struct {
	mu       sync.Mutex
	sent     []mail.Message
	err      error
	perAddr  map[string]error
	sequence int
}

func (s *senderStub) Send(ctx context.Context, msg mail.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if err, ok := s.perAddr[msg.To]; ok && err != nil {
		return "", err
	}
	s.sequence++
	s.sent = append(s.sent, msg)
	return fmt.Sprintf("msg-%d", s.sequence), nil
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%06d", prefix, n)
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
