package scheduler

import "time"

// ScheduleType discriminates the two booking granularities.
type ScheduleType string

const (
	// TypeDaily books staff for a single calendar day.
	TypeDaily ScheduleType = "daily"
	// TypeWeekly books staff for a Monday-start ISO week.
	TypeWeekly ScheduleType = "weekly"
)

// Booking is the minimal view of a persisted schedule needed for conflict
// detection: which staff member is held, by which schedule, on which date.
type Booking struct {
	ScheduleID string
	StaffID    string
	Date       time.Time
}

// Conflict reports a double booking of a staff member within a window.
type Conflict struct {
	StaffID        string
	WithScheduleID string
	Type           ScheduleType
}

// Window is a half-open [Start, End) time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DayWindow returns the [start-of-day, start-of-next-day) window containing t
// in the given location.
func DayWindow(t time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekWindow returns the Monday-start ISO week window containing t.
func WeekWindow(t time.Time, loc *time.Location) Window {
	day := DayWindow(t, loc)
	// Monday == 1 in Go's weekday numbering, Sunday == 0.
	offset := (int(day.Start.Weekday()) + 6) % 7
	start := day.Start.AddDate(0, 0, -offset)
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// BookingWindow returns the conflict window for a schedule type: the calendar
// day for daily schedules, the ISO week for weekly ones.
func BookingWindow(scheduleType ScheduleType, t time.Time, loc *time.Location) Window {
	if scheduleType == TypeWeekly {
		return WeekWindow(t, loc)
	}
	return DayWindow(t, loc)
}

// DetectConflicts returns one conflict per existing booking that holds any of
// the candidate staff inside the window. Existing bookings outside the window
// are ignored so callers may pass unfiltered result sets.
func DetectConflicts(existing []Booking, staffIDs []string, scheduleType ScheduleType, window Window) []Conflict {
	if len(existing) == 0 || len(staffIDs) == 0 {
		return nil
	}

	candidates := make(map[string]struct{}, len(staffIDs))
	for _, id := range staffIDs {
		if id != "" {
			candidates[id] = struct{}{}
		}
	}

	var conflicts []Conflict
	for _, booking := range existing {
		if _, ok := candidates[booking.StaffID]; !ok {
			continue
		}
		if !window.Contains(booking.Date) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			StaffID:        booking.StaffID,
			WithScheduleID: booking.ScheduleID,
			Type:           scheduleType,
		})
	}
	return conflicts
}

// ConflictingStaff collapses conflicts to the distinct set of staff IDs
// involved, preserving first-seen order.
func ConflictingStaff(conflicts []Conflict) []string {
	if len(conflicts) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(conflicts))
	out := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		if _, ok := seen[c.StaffID]; ok {
			continue
		}
		seen[c.StaffID] = struct{}{}
		out = append(out, c.StaffID)
	}
	return out
}
