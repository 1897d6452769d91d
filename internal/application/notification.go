package application

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/example/staff-scheduler/internal/mail"
	"github.com/example/staff-scheduler/internal/persistence"
)

// NotificationDispatcher sends assignment letters to every assignee of a
// schedule and records per-assignment delivery outcomes. Delivery failures
// are reported, never raised: a schedule is persisted whether or not its
// notifications went out.
type NotificationDispatcher struct {
	sender  mail.Sender
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewNotificationDispatcher wires the outbound transport. A nil sender
// disables dispatch. ratePerSecond caps outbound sends; zero or negative
// disables pacing.
func NewNotificationDispatcher(sender mail.Sender, ratePerSecond float64, logger *slog.Logger) *NotificationDispatcher {
	var limiter *rate.Limiter
	if ratePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}
	return &NotificationDispatcher{
		sender:  sender,
		limiter: limiter,
		logger:  defaultLogger(logger),
	}
}

// Enabled reports whether an outbound transport is wired.
func (d *NotificationDispatcher) Enabled() bool {
	return d != nil && d.sender != nil
}

// Dispatch sends one assignment letter per assignee that has not been
// notified yet. It returns the per-assignee outcomes.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, schedule persistence.Schedule) []DeliveryOutcome {
	if d == nil || d.sender == nil {
		return nil
	}
	logger := serviceLogger(ctx, d.logger, "notifications", "dispatch", "schedule_id", schedule.ID)

	outcomes := make([]DeliveryOutcome, 0, len(schedule.Assignments))
	for _, assignment := range schedule.Assignments {
		if assignment.NotificationSent {
			continue
		}
		outcomes = append(outcomes, d.send(ctx, logger, schedule, assignment))
	}
	return outcomes
}

func (d *NotificationDispatcher) send(ctx context.Context, logger *slog.Logger, schedule persistence.Schedule, assignment persistence.Assignment) DeliveryOutcome {
	outcome := DeliveryOutcome{
		StaffID:    assignment.StaffID,
		StaffName:  assignment.StaffName,
		StaffEmail: assignment.StaffEmail,
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			outcome.EmailStatus = EmailStatusUnavailable
			outcome.Detail = err.Error()
			return outcome
		}
	}

	body, err := mail.RenderAssignmentLetter(mail.LetterData{
		RecipientName: assignment.StaffName,
		TaskTitle:     schedule.TaskTitle,
		TaskCategory:  schedule.TaskCategory,
		ScheduleID:    schedule.ID,
		ScheduleType:  schedule.ScheduleType,
		Date:          schedule.ScheduledDate,
		EndDate:       schedule.EndDate,
		StartTime:     assignment.StartTime,
		EndTime:       assignment.EndTime,
		Priority:      schedule.Priority,
		Location:      schedule.Location,
		Notes:         schedule.Notes,
	})
	if err != nil {
		logger.Error("failed to render assignment letter", "staff_id", assignment.StaffID, "error", err)
		outcome.EmailStatus = EmailStatusFailed
		outcome.Detail = err.Error()
		return outcome
	}

	messageID, err := d.sender.Send(ctx, mail.Message{
		To:       assignment.StaffEmail,
		ToName:   assignment.StaffName,
		Subject:  mail.AssignmentSubject(schedule.TaskTitle, schedule.ScheduledDate),
		HTMLBody: body,
	})
	if err != nil {
		if errors.Is(err, mail.ErrUnavailable) {
			logger.Warn("mail transport unavailable", "staff_id", assignment.StaffID, "error", err)
			outcome.EmailStatus = EmailStatusUnavailable
		} else {
			logger.Warn("assignment letter rejected", "staff_id", assignment.StaffID, "error", err)
			outcome.EmailStatus = EmailStatusFailed
		}
		outcome.Detail = err.Error()
		return outcome
	}

	logger.Info("assignment letter sent", "staff_id", assignment.StaffID, "message_id", messageID)
	outcome.Sent = true
	outcome.EmailStatus = EmailStatusSent
	outcome.MessageID = messageID
	return outcome
}

// AggregateNotificationStatus folds per-assignee outcomes into the status
// stored on the schedule.
func AggregateNotificationStatus(outcomes []DeliveryOutcome) string {
	if len(outcomes) == 0 {
		return NotificationPending
	}
	sent := 0
	for _, outcome := range outcomes {
		if outcome.Sent {
			sent++
		}
	}
	switch {
	case sent == len(outcomes):
		return NotificationAllSent
	case sent > 0:
		return NotificationPartialSent
	default:
		return NotificationFailed
	}
}

// notificationStatusFor derives the aggregate status from the delivery flags
// currently held on the assignments.
func notificationStatusFor(assignments []persistence.Assignment) string {
	if len(assignments) == 0 {
		return NotificationPending
	}
	sent := 0
	for _, assignment := range assignments {
		if assignment.NotificationSent {
			sent++
		}
	}
	switch {
	case sent == len(assignments):
		return NotificationAllSent
	case sent > 0:
		return NotificationPartialSent
	default:
		return NotificationFailed
	}
}

// recordOutcomes persists per-assignment delivery records and the aggregate
// status. Persistence failures here are logged and swallowed; delivery
// already happened.
func recordOutcomes(ctx context.Context, store ScheduleStore, logger *slog.Logger, scheduleID string, outcomes []DeliveryOutcome, status string) {
	for _, outcome := range outcomes {
		record := persistence.DeliveryRecord{
			Sent:        outcome.Sent,
			EmailStatus: outcome.EmailStatus,
			MessageID:   outcome.MessageID,
		}
		if err := store.RecordDelivery(ctx, scheduleID, outcome.StaffID, record); err != nil {
			logger.Error("failed to record delivery", "staff_id", outcome.StaffID, "error", err)
		}
	}
	if len(outcomes) > 0 {
		if err := store.SetNotificationStatus(ctx, scheduleID, status); err != nil {
			logger.Error("failed to update notification status", "error", err)
		}
	}
}
