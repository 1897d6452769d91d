package recurrence

import (
	"errors"
	"time"
)

// Kind represents supported recurrence cadences.
type Kind string

const (
	// KindOnce disables expansion; the parent is the only occurrence.
	KindOnce Kind = "once"
	// KindDaily repeats every calendar day.
	KindDaily Kind = "daily"
	// KindWeekdays repeats every day except Saturday and Sunday.
	KindWeekdays Kind = "weekdays"
	// KindWeekly repeats every seventh day.
	KindWeekly Kind = "weekly"
)

// Valid reports whether the kind names a supported cadence.
func Valid(kind Kind) bool {
	switch kind {
	case KindOnce, KindDaily, KindWeekdays, KindWeekly:
		return true
	}
	return false
}

// MaxOccurrences caps generated instances per rule. It is a safety valve
// against pathological date ranges, not a business rule.
const MaxOccurrences = 50

// Default expansion horizons applied when a rule carries no explicit end.
const (
	defaultDailyHorizon    = 30 * 24 * time.Hour
	defaultWeekdaysHorizon = 90 * 24 * time.Hour
	defaultWeeklyHorizon   = 365 * 24 * time.Hour
)

// ErrInvalidKind indicates the recurrence cadence is not supported.
var ErrInvalidKind = errors.New("recurrence: invalid kind")

// Rule describes how a parent schedule repeats.
type Rule struct {
	Kind  Kind
	Start time.Time
	// Until bounds expansion inclusively. When nil the kind's default
	// horizon from Start applies.
	Until *time.Time
}

// Occurrence is a generated instance date. The parent itself is never
// included; the first occurrence is one step after Start.
type Occurrence struct {
	Date time.Time
}

// Engine expands recurrence rules into occurrence dates.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that normalizes dates to the provided
// location. If loc is nil, UTC is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

// Expand generates occurrence dates following the rule's cadence, stopping at
// the inclusive end bound and never exceeding MaxOccurrences.
func (e *Engine) Expand(rule Rule) ([]Occurrence, error) {
	loc := e.location
	if loc == nil {
		loc = time.UTC
	}

	if rule.Kind == KindOnce {
		return nil, nil
	}
	if !Valid(rule.Kind) {
		return nil, ErrInvalidKind
	}

	start := startOfDay(rule.Start, loc)
	until := start.Add(defaultHorizon(rule.Kind))
	if rule.Until != nil {
		until = startOfDay(*rule.Until, loc)
	}
	if until.Before(start) {
		return nil, nil
	}

	occurrences := make([]Occurrence, 0)
	current := next(rule.Kind, start)
	for !current.After(until) && len(occurrences) < MaxOccurrences {
		occurrences = append(occurrences, Occurrence{Date: current})
		current = next(rule.Kind, current)
	}

	if len(occurrences) == 0 {
		return nil, nil
	}
	return occurrences, nil
}

func defaultHorizon(kind Kind) time.Duration {
	switch kind {
	case KindWeekdays:
		return defaultWeekdaysHorizon
	case KindWeekly:
		return defaultWeeklyHorizon
	default:
		return defaultDailyHorizon
	}
}

func next(kind Kind, from time.Time) time.Time {
	switch kind {
	case KindWeekly:
		return from.AddDate(0, 0, 7)
	case KindWeekdays:
		candidate := from.AddDate(0, 0, 1)
		for candidate.Weekday() == time.Saturday || candidate.Weekday() == time.Sunday {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate
	default:
		return from.AddDate(0, 0, 1)
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
