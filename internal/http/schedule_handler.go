package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/staff-scheduler/internal/application"
	"github.com/example/staff-scheduler/internal/persistence"
)

const dateLayout = "2006-01-02"

type scheduleService interface {
	CreateSchedule(ctx context.Context, input application.ScheduleInput) (application.CreateScheduleResult, error)
	GetSchedule(ctx context.Context, id string) (persistence.Schedule, error)
	ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error)
	UpdateSchedule(ctx context.Context, id string, input application.ScheduleUpdateInput) (persistence.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
	UpdateAssignmentStatus(ctx context.Context, scheduleID, staffID string, input application.AssignmentStatusInput) (persistence.Assignment, error)
	ResendNotifications(ctx context.Context, scheduleID string) (application.NotificationResult, error)
}

type reportService interface {
	Workload(ctx context.Context, staffID string, from, to time.Time) (application.WorkloadSummary, error)
	Availability(ctx context.Context, date time.Time, scheduleType string) (application.StaffAvailability, error)
	Report(ctx context.Context, from, to time.Time, department string) (application.ScheduleReport, error)
	Calendar(ctx context.Context, year int, month time.Month) ([]application.CalendarDay, error)
}

// ScheduleHandler serves the /schedules and /daily-schedules surfaces. The
// daily surface pins the schedule type; everything else is shared.
type ScheduleHandler struct {
	service       scheduleService
	reports       reportService
	responder     responder
	strictDefault bool
	logger        *slog.Logger
}

// NewScheduleHandler wires the schedule and report services. strictDefault
// controls whether creation rejects on conflict when the request does not
// say otherwise.
func NewScheduleHandler(service scheduleService, reports reportService, strictDefault bool, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service:       service,
		reports:       reports,
		responder:     newResponder(logger),
		strictDefault: strictDefault,
		logger:        defaultLogger(logger),
	}
}

type scheduleRequest struct {
	ScheduleType       string   `json:"schedule_type"`
	TaskID             string   `json:"task_id"`
	StaffIDs           []string `json:"staff_ids"`
	ScheduledDate      string   `json:"scheduled_date"`
	EndDate            string   `json:"end_date"`
	TimeSlot           string   `json:"time_slot"`
	Recurrence         string   `json:"recurrence"`
	RecurrenceEndDate  string   `json:"recurrence_end_date"`
	Priority           string   `json:"priority"`
	EstimatedHours     float64  `json:"estimated_hours"`
	Department         string   `json:"department"`
	Location           string   `json:"location"`
	Notes              string   `json:"notes"`
	StrictAvailability *bool    `json:"strict_availability"`
}

func (req scheduleRequest) toInput(strictDefault bool, forcedType string) (application.ScheduleInput, error) {
	input := application.ScheduleInput{
		ScheduleType:       req.ScheduleType,
		TaskID:             req.TaskID,
		StaffIDs:           req.StaffIDs,
		TimeSlot:           req.TimeSlot,
		Recurrence:         req.Recurrence,
		Priority:           req.Priority,
		EstimatedHours:     req.EstimatedHours,
		Department:         req.Department,
		Location:           req.Location,
		Notes:              req.Notes,
		StrictAvailability: strictDefault,
	}
	if forcedType != "" {
		input.ScheduleType = forcedType
	}
	if req.StrictAvailability != nil {
		input.StrictAvailability = *req.StrictAvailability
	}

	if req.ScheduledDate != "" {
		date, err := time.Parse(dateLayout, req.ScheduledDate)
		if err != nil {
			return application.ScheduleInput{}, fmt.Errorf("scheduled_date: %w", errInvalidDate)
		}
		input.ScheduledDate = date
	}
	if req.EndDate != "" {
		date, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return application.ScheduleInput{}, fmt.Errorf("end_date: %w", errInvalidDate)
		}
		input.EndDate = &date
	}
	if req.RecurrenceEndDate != "" {
		date, err := time.Parse(dateLayout, req.RecurrenceEndDate)
		if err != nil {
			return application.ScheduleInput{}, fmt.Errorf("recurrence_end_date: %w", errInvalidDate)
		}
		input.RecurrenceEndDate = &date
	}
	return input, nil
}

type scheduleUpdateRequest struct {
	ScheduledDate  *string  `json:"scheduled_date"`
	EndDate        *string  `json:"end_date"`
	TimeSlot       *string  `json:"time_slot"`
	Priority       *string  `json:"priority"`
	EstimatedHours *float64 `json:"estimated_hours"`
	Status         *string  `json:"status"`
	Department     *string  `json:"department"`
	Location       *string  `json:"location"`
	Notes          *string  `json:"notes"`
	StaffIDs       []string `json:"staff_ids"`
}

func (req scheduleUpdateRequest) toInput() (application.ScheduleUpdateInput, error) {
	input := application.ScheduleUpdateInput{
		TimeSlot:       req.TimeSlot,
		Priority:       req.Priority,
		EstimatedHours: req.EstimatedHours,
		Status:         req.Status,
		Department:     req.Department,
		Location:       req.Location,
		Notes:          req.Notes,
		StaffIDs:       req.StaffIDs,
	}
	if req.ScheduledDate != nil {
		date, err := time.Parse(dateLayout, *req.ScheduledDate)
		if err != nil {
			return application.ScheduleUpdateInput{}, fmt.Errorf("scheduled_date: %w", errInvalidDate)
		}
		input.ScheduledDate = &date
	}
	if req.EndDate != nil {
		date, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			return application.ScheduleUpdateInput{}, fmt.Errorf("end_date: %w", errInvalidDate)
		}
		input.EndDate = &date
	}
	return input, nil
}

type assignmentStatusRequest struct {
	Status      string   `json:"status"`
	Notes       *string  `json:"notes"`
	HoursWorked *float64 `json:"hours_worked"`
	Rating      *int     `json:"rating"`
}

// Create handles POST /schedules and POST /daily-schedules.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request, forcedType string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, err := req.toInput(h.strictDefault, forcedType)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.CreateSchedule(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusCreated, "schedule created", newCreateScheduleView(result))
}

// List handles GET /schedules and GET /daily-schedules.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request, forcedType string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filter, err := scheduleFilterFromQuery(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if forcedType != "" {
		filter.ScheduleType = forcedType
	}

	schedules, err := h.service.ListSchedules(r.Context(), filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	views := make([]scheduleView, 0, len(schedules))
	for _, schedule := range schedules {
		views = append(views, newScheduleView(schedule))
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", views)
}

// Get handles GET /schedules/{id}.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := h.scheduleID(w, r)
	if !ok {
		return
	}

	schedule, err := h.service.GetSchedule(r.Context(), scheduleID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", newScheduleView(schedule))
}

// Update handles PUT /schedules/{id}.
func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := h.scheduleID(w, r)
	if !ok {
		return
	}

	var req scheduleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	schedule, err := h.service.UpdateSchedule(r.Context(), scheduleID, input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "schedule updated", newScheduleView(schedule))
}

// Delete handles DELETE /schedules/{id}.
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := h.scheduleID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSchedule(r.Context(), scheduleID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// UpdateAssignmentStatus handles PATCH /schedules/{id}/assignments/{staffId}/status.
func (h *ScheduleHandler) UpdateAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := h.scheduleID(w, r)
	if !ok {
		return
	}
	staffID, ok := StaffIDFromContext(r.Context())
	if !ok || strings.TrimSpace(staffID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStaffID)
		return
	}

	var req assignmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	assignment, err := h.service.UpdateAssignmentStatus(r.Context(), scheduleID, staffID, application.AssignmentStatusInput{
		Status:      req.Status,
		Notes:       req.Notes,
		HoursWorked: req.HoursWorked,
		Rating:      req.Rating,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "assignment updated", newAssignmentView(assignment))
}

// ResendNotifications handles POST /schedules/{id}/notifications.
func (h *ScheduleHandler) ResendNotifications(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := h.scheduleID(w, r)
	if !ok {
		return
	}

	result, err := h.service.ResendNotifications(r.Context(), scheduleID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "notifications dispatched", newNotificationResultView(result))
}

// Workload handles GET /schedules/staff/{staffId}/workload.
func (h *ScheduleHandler) Workload(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.reports == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	staffID, ok := StaffIDFromContext(r.Context())
	if !ok || strings.TrimSpace(staffID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStaffID)
		return
	}

	query := r.URL.Query()
	from, to, err := rangeFromQuery(query, 30)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	summary, err := h.reports.Workload(r.Context(), staffID, from, to)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", newWorkloadView(summary))
}

// Availability handles GET /schedules/availability/{date}.
func (h *ScheduleHandler) Availability(w http.ResponseWriter, r *http.Request, rawDate string) {
	if h == nil || h.reports == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	date, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	availability, err := h.reports.Availability(r.Context(), date, r.URL.Query().Get("schedule_type"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", newAvailabilityView(availability))
}

// Report handles GET /schedules/report.
func (h *ScheduleHandler) Report(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.reports == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	query := r.URL.Query()
	from, to, err := rangeFromQuery(query, 7)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	report, err := h.reports.Report(r.Context(), from, to, query.Get("department"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", newReportView(report))
}

// Calendar handles GET /schedules/calendar/view.
func (h *ScheduleHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.reports == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	query := r.URL.Query()
	now := time.Now()
	year := now.Year()
	month := now.Month()
	if raw := query.Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("year must be numeric"))
			return
		}
		year = parsed
	}
	// month accepts either a bare month number or a YYYY-MM value.
	if raw := query.Get("month"); raw != "" {
		if parsed, err := time.Parse("2006-01", raw); err == nil {
			year = parsed.Year()
			month = parsed.Month()
		} else {
			parsedMonth, err := strconv.Atoi(raw)
			if err != nil || parsedMonth < 1 || parsedMonth > 12 {
				h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("month must be 1-12 or YYYY-MM"))
				return
			}
			month = time.Month(parsedMonth)
		}
	}

	calendar, err := h.reports.Calendar(r.Context(), year, month)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", newCalendarView(year, month, calendar))
}

func (h *ScheduleHandler) scheduleID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return "", false
	}
	scheduleID, ok := ScheduleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(scheduleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return "", false
	}
	return scheduleID, true
}

func scheduleFilterFromQuery(query url.Values) (persistence.ScheduleFilter, error) {
	filter := persistence.ScheduleFilter{
		ScheduleType: query.Get("schedule_type"),
		Status:       query.Get("status"),
		StaffID:      query.Get("staff_id"),
		Priority:     query.Get("priority"),
		Department:   query.Get("department"),
		Search:       query.Get("search"),
	}
	if raw := query.Get("date_from"); raw != "" {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return persistence.ScheduleFilter{}, fmt.Errorf("date_from: %w", errInvalidDate)
		}
		filter.DateFrom = &date
	}
	if raw := query.Get("date_to"); raw != "" {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return persistence.ScheduleFilter{}, fmt.Errorf("date_to: %w", errInvalidDate)
		}
		end := date.AddDate(0, 0, 1)
		filter.DateTo = &end
	}
	return filter, nil
}

// rangeFromQuery reads from/to dates, defaulting to a window of defaultDays
// ending today when absent.
func rangeFromQuery(query url.Values, defaultDays int) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -defaultDays)

	if raw := query.Get("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("from: %w", errInvalidDate)
		}
		from = parsed
	}
	if raw := query.Get("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("to: %w", errInvalidDate)
		}
		to = parsed
	}
	return from, to, nil
}
