package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/staff-scheduler/internal/persistence"
	"github.com/example/staff-scheduler/internal/scheduler"
)

// ReportService derives workload, availability, report and calendar views
// from stored schedules. All figures are computed per request; nothing is
// cached or denormalized.
type ReportService struct {
	schedules ScheduleStore
	staff     StaffDirectory
	location  *time.Location
	logger    *slog.Logger
}

// NewReportService wires dependencies for reporting operations.
func NewReportService(schedules ScheduleStore, staff StaffDirectory, loc *time.Location, logger *slog.Logger) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		schedules: schedules,
		staff:     staff,
		location:  loc,
		logger:    defaultLogger(logger),
	}
}

// Workload aggregates one staff member's schedules over [from, to].
func (s *ReportService) Workload(ctx context.Context, staffID string, from, to time.Time) (WorkloadSummary, error) {
	if s == nil {
		return WorkloadSummary{}, fmt.Errorf("ReportService is nil")
	}
	if _, err := s.staff.GetStaff(ctx, staffID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return WorkloadSummary{}, fmt.Errorf("%w: staff %s", ErrNotFound, staffID)
		}
		return WorkloadSummary{}, fmt.Errorf("failed to load staff: %w", err)
	}
	if vErr := validateRange(from, to); vErr.HasErrors() {
		return WorkloadSummary{}, vErr
	}

	rangeEnd := to.AddDate(0, 0, 1)
	schedules, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{
		StaffID:  staffID,
		DateFrom: &from,
		DateTo:   &rangeEnd,
	})
	if err != nil {
		return WorkloadSummary{}, fmt.Errorf("failed to list schedules: %w", err)
	}

	summary := WorkloadSummary{
		StaffID:         staffID,
		From:            from,
		To:              to,
		ByCategory:      make(map[string]int),
		SchedulesByDate: make(map[string][]string),
	}
	for _, schedule := range schedules {
		summary.TotalSchedules++
		summary.EstimatedHours += schedule.EstimatedHours
		if schedule.TaskCategory != "" {
			summary.ByCategory[schedule.TaskCategory]++
		}
		day := schedule.ScheduledDate.In(s.location).Format("2006-01-02")
		summary.SchedulesByDate[day] = append(summary.SchedulesByDate[day], schedule.ID)

		switch schedule.Status {
		case ScheduleStatusCompleted:
			summary.CompletedCount++
		case ScheduleStatusCancelled:
			summary.CancelledCount++
		default:
			summary.ActiveCount++
		}
		if assignment, ok := findAssignment(schedule.Assignments, staffID); ok {
			summary.HoursWorked += assignment.HoursWorked
		}
	}
	return summary, nil
}

// Availability partitions active staff into available and booked for one
// date. The booking window follows the schedule type: the calendar day for
// daily, the Monday-start week for weekly.
func (s *ReportService) Availability(ctx context.Context, date time.Time, scheduleType string) (StaffAvailability, error) {
	if s == nil {
		return StaffAvailability{}, fmt.Errorf("ReportService is nil")
	}
	if scheduleType == "" {
		scheduleType = string(scheduler.TypeDaily)
	}
	if scheduleType != string(scheduler.TypeDaily) && scheduleType != string(scheduler.TypeWeekly) {
		vErr := &ValidationError{}
		vErr.add("schedule_type", "schedule type must be daily or weekly")
		return StaffAvailability{}, vErr
	}
	if date.IsZero() {
		vErr := &ValidationError{}
		vErr.add("date", "date is required")
		return StaffAvailability{}, vErr
	}

	active, err := s.staff.ListStaff(ctx, persistence.StaffFilter{Status: StaffStatusActive})
	if err != nil {
		return StaffAvailability{}, fmt.Errorf("failed to list staff: %w", err)
	}

	window := scheduler.BookingWindow(scheduler.ScheduleType(scheduleType), date, s.location)
	bookings, err := s.schedules.ListActiveBookings(ctx, scheduleType, window.Start, window.End)
	if err != nil {
		return StaffAvailability{}, fmt.Errorf("failed to load bookings: %w", err)
	}

	bookedBy := make(map[string]string, len(bookings))
	for _, booking := range bookings {
		if _, ok := bookedBy[booking.StaffID]; !ok {
			bookedBy[booking.StaffID] = booking.ScheduleID
		}
	}

	result := StaffAvailability{
		Date:         date,
		ScheduleType: scheduleType,
		Available:    make([]persistence.Staff, 0, len(active)),
	}
	for _, member := range active {
		if scheduleID, ok := bookedBy[member.ID]; ok {
			result.Booked = append(result.Booked, BookedStaff{Staff: member, ScheduleID: scheduleID})
			continue
		}
		result.Available = append(result.Available, member)
	}
	return result, nil
}

// Report groups schedules by date and status over [from, to], optionally
// narrowed to one department.
func (s *ReportService) Report(ctx context.Context, from, to time.Time, department string) (ScheduleReport, error) {
	if s == nil {
		return ScheduleReport{}, fmt.Errorf("ReportService is nil")
	}
	if vErr := validateRange(from, to); vErr.HasErrors() {
		return ScheduleReport{}, vErr
	}

	rangeEnd := to.AddDate(0, 0, 1)
	schedules, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{
		Department: department,
		DateFrom:   &from,
		DateTo:     &rangeEnd,
	})
	if err != nil {
		return ScheduleReport{}, fmt.Errorf("failed to list schedules: %w", err)
	}

	type bucket struct {
		count int
		hours float64
		staff map[string]struct{}
	}
	buckets := make(map[string]map[string]*bucket)
	for _, schedule := range schedules {
		day := schedule.ScheduledDate.In(s.location).Format("2006-01-02")
		if buckets[day] == nil {
			buckets[day] = make(map[string]*bucket)
		}
		b := buckets[day][schedule.Status]
		if b == nil {
			b = &bucket{staff: make(map[string]struct{})}
			buckets[day][schedule.Status] = b
		}
		b.count++
		b.hours += schedule.EstimatedHours
		for _, assignment := range schedule.Assignments {
			b.staff[assignment.StaffID] = struct{}{}
		}
	}

	report := ScheduleReport{
		From:       from,
		To:         to,
		Department: department,
		Total:      len(schedules),
	}
	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		statuses := make([]string, 0, len(buckets[day]))
		for status := range buckets[day] {
			statuses = append(statuses, status)
		}
		sort.Strings(statuses)
		for _, status := range statuses {
			b := buckets[day][status]
			report.Rows = append(report.Rows, ReportRow{
				Date:       day,
				Status:     status,
				Count:      b.count,
				TotalHours: b.hours,
				StaffCount: len(b.staff),
			})
		}
	}
	return report, nil
}

// Calendar lists the schedules of one month keyed by day. Weekly schedules
// appear on every day of their date range.
func (s *ReportService) Calendar(ctx context.Context, year int, month time.Month) ([]CalendarDay, error) {
	if s == nil {
		return nil, fmt.Errorf("ReportService is nil")
	}
	if month < time.January || month > time.December {
		vErr := &ValidationError{}
		vErr.add("month", "month must be between 1 and 12")
		return nil, vErr
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, s.location)
	monthEnd := monthStart.AddDate(0, 1, 0)
	// Weekly schedules starting late in the previous month can reach into
	// this one, so widen the query window by a week.
	queryStart := monthStart.AddDate(0, 0, -7)

	schedules, err := s.schedules.ListSchedules(ctx, persistence.ScheduleFilter{
		DateFrom: &queryStart,
		DateTo:   &monthEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	byDay := make(map[string][]CalendarEntry)
	for _, schedule := range schedules {
		entry := CalendarEntry{
			ScheduleID:   schedule.ID,
			ScheduleType: schedule.ScheduleType,
			TaskTitle:    schedule.TaskTitle,
			Status:       schedule.Status,
			Priority:     schedule.Priority,
			TimeSlot:     schedule.TimeSlot,
			StaffCount:   len(schedule.Assignments),
		}

		first := schedule.ScheduledDate.In(s.location)
		last := first
		if schedule.EndDate != nil {
			last = schedule.EndDate.In(s.location)
		}
		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			if day.Before(monthStart) || !day.Before(monthEnd) {
				continue
			}
			key := day.Format("2006-01-02")
			byDay[key] = append(byDay[key], entry)
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	calendar := make([]CalendarDay, 0, len(days))
	for _, day := range days {
		calendar = append(calendar, CalendarDay{Date: day, Schedules: byDay[day]})
	}
	return calendar, nil
}

func validateRange(from, to time.Time) *ValidationError {
	vErr := &ValidationError{}
	if from.IsZero() {
		vErr.add("from", "start date is required")
	}
	if to.IsZero() {
		vErr.add("to", "end date is required")
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		vErr.add("to", "end date cannot precede the start date")
	}
	return vErr
}
