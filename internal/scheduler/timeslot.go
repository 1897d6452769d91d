package scheduler

import "time"

// TimeSlot names a default working window within a scheduled day.
type TimeSlot string

const (
	// SlotMorning covers 09:00-12:00.
	SlotMorning TimeSlot = "morning"
	// SlotAfternoon covers 13:00-17:00.
	SlotAfternoon TimeSlot = "afternoon"
	// SlotFullDay covers 09:00-17:00.
	SlotFullDay TimeSlot = "full_day"
	// SlotCustom defers to caller supplied bounds.
	SlotCustom TimeSlot = "custom"
)

// ValidTimeSlot reports whether the value names a known slot.
func ValidTimeSlot(slot TimeSlot) bool {
	switch slot {
	case SlotMorning, SlotAfternoon, SlotFullDay, SlotCustom:
		return true
	}
	return false
}

// SlotBounds returns the default start and end instants for a slot on the
// given date. Custom slots return zero times; callers supply their own bounds.
func SlotBounds(slot TimeSlot, date time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := date.In(loc)
	at := func(hour int) time.Time {
		return time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	}

	switch slot {
	case SlotMorning:
		return at(9), at(12)
	case SlotAfternoon:
		return at(13), at(17)
	case SlotFullDay:
		return at(9), at(17)
	default:
		return time.Time{}, time.Time{}
	}
}
