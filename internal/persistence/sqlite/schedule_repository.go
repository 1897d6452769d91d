package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/staff-scheduler/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository using SQLite.
type ScheduleRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewScheduleRepository creates a new SQLite schedule repository.
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const scheduleColumns = "id, schedule_type, task_id, task_title, task_description, task_category, priority, estimated_hours, scheduled_date, end_date, time_slot, recurrence, recurrence_end_date, status, notification_status, department, location, notes, parent_schedule_id, created_at, updated_at"

const assignmentColumns = "schedule_id, staff_id, staff_name, staff_email, status, start_time, end_time, hours_worked, rating, notes, rotated, notification_sent, email_status, email_message_id, completed_at"

// CreateSchedule inserts a schedule with its assignments in one transaction.
// When guard is non-nil the conflict window is re-checked inside the same
// transaction, closing the gap between the service pre-check and the write.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule persistence.Schedule, guard *persistence.ConflictGuard) error {
	if schedule.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if len(schedule.Assignments) == 0 {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if guard != nil && len(guard.StaffIDs) > 0 {
			booked, err := r.anyBookedTx(tx, schedule.ScheduleType, guard)
			if err != nil {
				return err
			}
			if booked {
				return persistence.ErrScheduleConflict
			}
		}

		query := `
			INSERT INTO schedules (` + scheduleColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := r.helper.ExecTx(tx, query,
			schedule.ID,
			schedule.ScheduleType,
			schedule.TaskID,
			schedule.TaskTitle,
			schedule.TaskDescription,
			schedule.TaskCategory,
			schedule.Priority,
			schedule.EstimatedHours,
			formatTime(schedule.ScheduledDate),
			nullableTime(schedule.EndDate),
			schedule.TimeSlot,
			schedule.Recurrence,
			nullableTime(schedule.RecurrenceEndDate),
			schedule.Status,
			schedule.NotificationStatus,
			schedule.Department,
			schedule.Location,
			schedule.Notes,
			nullableString(schedule.ParentScheduleID),
			formatTime(schedule.CreatedAt),
			formatTime(schedule.UpdatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		return r.insertAssignmentsTx(tx, schedule.ID, schedule.Assignments)
	})
}

// UpdateSchedule updates a schedule's mutable fields and replaces its
// assignments. ScheduleType, TaskID and ParentScheduleID are immutable.
func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, schedule persistence.Schedule) error {
	if schedule.ID == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE schedules
			SET priority = ?, estimated_hours = ?, scheduled_date = ?, end_date = ?, time_slot = ?,
				recurrence = ?, recurrence_end_date = ?, status = ?, notification_status = ?,
				department = ?, location = ?, notes = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := r.helper.ExecTx(tx, query,
			schedule.Priority,
			schedule.EstimatedHours,
			formatTime(schedule.ScheduledDate),
			nullableTime(schedule.EndDate),
			schedule.TimeSlot,
			schedule.Recurrence,
			nullableTime(schedule.RecurrenceEndDate),
			schedule.Status,
			schedule.NotificationStatus,
			schedule.Department,
			schedule.Location,
			schedule.Notes,
			formatTime(schedule.UpdatedAt),
			schedule.ID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		if schedule.Assignments == nil {
			return nil
		}

		if _, err := r.helper.ExecTx(tx, "DELETE FROM assignments WHERE schedule_id = ?", schedule.ID); err != nil {
			return r.mapper.MapError(err)
		}
		return r.insertAssignmentsTx(tx, schedule.ID, schedule.Assignments)
	})
}

// GetSchedule retrieves a schedule with its assignments by ID.
func (r *ScheduleRepository) GetSchedule(ctx context.Context, id string) (persistence.Schedule, error) {
	if id == "" {
		return persistence.Schedule{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, "SELECT "+scheduleColumns+" FROM schedules WHERE id = ?", id)
	schedule, err := scanScheduleRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Schedule{}, persistence.ErrNotFound
		}
		return persistence.Schedule{}, r.mapper.MapError(err)
	}

	assignments, err := r.loadAssignments(ctx, id)
	if err != nil {
		return persistence.Schedule{}, err
	}
	schedule.Assignments = assignments
	return schedule, nil
}

// ListSchedules lists schedules matching the filter ordered by scheduled date.
func (r *ScheduleRepository) ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error) {
	query, args := buildScheduleListQuery(filter)

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var schedules []persistence.Schedule
	for rows.Next() {
		schedule, err := scanScheduleRecord(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	for i := range schedules {
		assignments, err := r.loadAssignments(ctx, schedules[i].ID)
		if err != nil {
			return nil, err
		}
		schedules[i].Assignments = assignments
	}
	return schedules, nil
}

// DeleteSchedule removes a schedule and every child that references it as
// parent. Assignment rows cascade via the foreign key.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := r.helper.ExecTx(tx, "DELETE FROM schedules WHERE parent_schedule_id = ?", id); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(tx, "DELETE FROM schedules WHERE id = ?", id)
		if err != nil {
			return r.mapper.MapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// ListActiveBookings returns active (scheduled or in-progress) bookings of the
// given type with a scheduled date inside [from, to).
func (r *ScheduleRepository) ListActiveBookings(ctx context.Context, scheduleType string, from, to time.Time) ([]persistence.Booking, error) {
	query := `
		SELECT s.id, a.staff_id, s.scheduled_date
		FROM schedules s
		JOIN assignments a ON a.schedule_id = s.id
		WHERE s.schedule_type = ?
		  AND s.status IN ('scheduled', 'in_progress')
		  AND s.scheduled_date >= ? AND s.scheduled_date < ?
		ORDER BY s.scheduled_date ASC, s.id ASC
	`

	rows, err := r.helper.Query(ctx, query, scheduleType, formatTime(from), formatTime(to))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		var booking persistence.Booking
		var dateStr string
		if err := rows.Scan(&booking.ScheduleID, &booking.StaffID, &dateStr); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if booking.ScheduledDate, err = parseTime(dateStr); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return bookings, nil
}

// UpdateAssignment applies a patch to one assignment and returns the updated
// record.
func (r *ScheduleRepository) UpdateAssignment(ctx context.Context, scheduleID, staffID string, patch persistence.AssignmentPatch) (persistence.Assignment, error) {
	var sets []string
	var args []any

	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *patch.Notes)
	}
	if patch.HoursWorked != nil {
		sets = append(sets, "hours_worked = ?")
		args = append(args, *patch.HoursWorked)
	}
	if patch.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *patch.Rating)
	}
	if patch.CompletedAt != nil {
		sets = append(sets, "completed_at = ?")
		args = append(args, formatTime(*patch.CompletedAt))
	}

	if len(sets) > 0 {
		query := "UPDATE assignments SET " + strings.Join(sets, ", ") + " WHERE schedule_id = ? AND staff_id = ?"
		args = append(args, scheduleID, staffID)

		result, err := r.helper.Exec(ctx, query, args...)
		if err != nil {
			return persistence.Assignment{}, r.mapper.MapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return persistence.Assignment{}, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.Assignment{}, persistence.ErrNotFound
		}
	}

	row := r.helper.QueryRow(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE schedule_id = ? AND staff_id = ?",
		scheduleID, staffID)
	assignment, err := scanAssignmentRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Assignment{}, persistence.ErrNotFound
		}
		return persistence.Assignment{}, r.mapper.MapError(err)
	}
	return assignment, nil
}

// RecordDelivery stores the outcome of a notification send for one assignment.
func (r *ScheduleRepository) RecordDelivery(ctx context.Context, scheduleID, staffID string, record persistence.DeliveryRecord) error {
	query := `
		UPDATE assignments
		SET notification_sent = ?, email_status = ?, email_message_id = ?
		WHERE schedule_id = ? AND staff_id = ?
	`
	sent := 0
	if record.Sent {
		sent = 1
	}
	result, err := r.helper.Exec(ctx, query, sent, record.EmailStatus, record.MessageID, scheduleID, staffID)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// SetNotificationStatus stores the schedule-level aggregate delivery status.
func (r *ScheduleRepository) SetNotificationStatus(ctx context.Context, scheduleID, status string) error {
	result, err := r.helper.Exec(ctx, "UPDATE schedules SET notification_status = ? WHERE id = ?", status, scheduleID)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *ScheduleRepository) anyBookedTx(tx *sql.Tx, scheduleType string, guard *persistence.ConflictGuard) (bool, error) {
	placeholders := make([]string, len(guard.StaffIDs))
	args := make([]any, 0, len(guard.StaffIDs)+3)
	for i, staffID := range guard.StaffIDs {
		placeholders[i] = "?"
		args = append(args, staffID)
	}
	args = append(args, scheduleType, formatTime(guard.WindowStart), formatTime(guard.WindowEnd))

	query := `
		SELECT 1
		FROM schedules s
		JOIN assignments a ON a.schedule_id = s.id
		WHERE a.staff_id IN (` + strings.Join(placeholders, ",") + `)
		  AND s.schedule_type = ?
		  AND s.status IN ('scheduled', 'in_progress')
		  AND s.scheduled_date >= ? AND s.scheduled_date < ?
		LIMIT 1
	`

	var one int
	err := r.helper.QueryRowTx(tx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, r.mapper.MapError(err)
	}
	return true, nil
}

func (r *ScheduleRepository) insertAssignmentsTx(tx *sql.Tx, scheduleID string, assignments []persistence.Assignment) error {
	query := `
		INSERT INTO assignments (` + assignmentColumns + `, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, assignment := range assignments {
		rotated := 0
		if assignment.Rotated {
			rotated = 1
		}
		sent := 0
		if assignment.NotificationSent {
			sent = 1
		}

		_, err := r.helper.ExecTx(tx, query,
			scheduleID,
			assignment.StaffID,
			assignment.StaffName,
			assignment.StaffEmail,
			assignment.Status,
			nullableTime(assignment.StartTime),
			nullableTime(assignment.EndTime),
			assignment.HoursWorked,
			assignment.Rating,
			assignment.Notes,
			rotated,
			sent,
			assignment.EmailStatus,
			assignment.EmailMessageID,
			nullableTime(assignment.CompletedAt),
			i,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
	}
	return nil
}

func (r *ScheduleRepository) loadAssignments(ctx context.Context, scheduleID string) ([]persistence.Assignment, error) {
	query := "SELECT " + assignmentColumns + " FROM assignments WHERE schedule_id = ? ORDER BY position ASC"

	rows, err := r.helper.Query(ctx, query, scheduleID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var assignments []persistence.Assignment
	for rows.Next() {
		assignment, err := scanAssignmentRecord(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return assignments, nil
}

func buildScheduleListQuery(filter persistence.ScheduleFilter) (string, []any) {
	query := "SELECT DISTINCT s." + strings.ReplaceAll(scheduleColumns, ", ", ", s.") + " FROM schedules s"

	var conditions []string
	var args []any

	if filter.StaffID != "" {
		query += " JOIN assignments a ON a.schedule_id = s.id"
		conditions = append(conditions, "a.staff_id = ?")
		args = append(args, filter.StaffID)
	}
	if filter.ScheduleType != "" {
		conditions = append(conditions, "s.schedule_type = ?")
		args = append(args, filter.ScheduleType)
	}
	if filter.Status != "" {
		conditions = append(conditions, "s.status = ?")
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		conditions = append(conditions, "s.priority = ?")
		args = append(args, filter.Priority)
	}
	if filter.Department != "" {
		conditions = append(conditions, "s.department = ?")
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(s.task_title LIKE ? OR s.notes LIKE ? OR s.location LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "s.scheduled_date >= ?")
		args = append(args, formatTime(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "s.scheduled_date < ?")
		args = append(args, formatTime(*filter.DateTo))
	}
	if filter.ParentScheduleID != nil {
		conditions = append(conditions, "s.parent_schedule_id = ?")
		args = append(args, *filter.ParentScheduleID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.scheduled_date ASC, s.id ASC"

	return query, args
}

func scanScheduleRecord(scanner rowScanner) (persistence.Schedule, error) {
	var schedule persistence.Schedule
	var scheduledDate, createdAt, updatedAt string
	var endDate, recurrenceEnd, parentID sql.NullString

	err := scanner.Scan(
		&schedule.ID,
		&schedule.ScheduleType,
		&schedule.TaskID,
		&schedule.TaskTitle,
		&schedule.TaskDescription,
		&schedule.TaskCategory,
		&schedule.Priority,
		&schedule.EstimatedHours,
		&scheduledDate,
		&endDate,
		&schedule.TimeSlot,
		&schedule.Recurrence,
		&recurrenceEnd,
		&schedule.Status,
		&schedule.NotificationStatus,
		&schedule.Department,
		&schedule.Location,
		&schedule.Notes,
		&parentID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Schedule{}, err
	}

	if schedule.ScheduledDate, err = parseTime(scheduledDate); err != nil {
		return persistence.Schedule{}, err
	}
	if schedule.EndDate, err = timeFromNullable(endDate); err != nil {
		return persistence.Schedule{}, err
	}
	if schedule.RecurrenceEndDate, err = timeFromNullable(recurrenceEnd); err != nil {
		return persistence.Schedule{}, err
	}
	schedule.ParentScheduleID = stringFromNullable(parentID)
	if schedule.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Schedule{}, err
	}
	if schedule.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Schedule{}, err
	}
	return schedule, nil
}

func scanAssignmentRecord(scanner rowScanner) (persistence.Assignment, error) {
	var assignment persistence.Assignment
	var startTime, endTime, completedAt sql.NullString
	var rotated, sent int

	err := scanner.Scan(
		&assignment.ScheduleID,
		&assignment.StaffID,
		&assignment.StaffName,
		&assignment.StaffEmail,
		&assignment.Status,
		&startTime,
		&endTime,
		&assignment.HoursWorked,
		&assignment.Rating,
		&assignment.Notes,
		&rotated,
		&sent,
		&assignment.EmailStatus,
		&assignment.EmailMessageID,
		&completedAt,
	)
	if err != nil {
		return persistence.Assignment{}, err
	}

	assignment.Rotated = rotated != 0
	assignment.NotificationSent = sent != 0
	if assignment.StartTime, err = timeFromNullable(startTime); err != nil {
		return persistence.Assignment{}, err
	}
	if assignment.EndTime, err = timeFromNullable(endTime); err != nil {
		return persistence.Assignment{}, err
	}
	if assignment.CompletedAt, err = timeFromNullable(completedAt); err != nil {
		return persistence.Assignment{}, err
	}
	return assignment, nil
}
