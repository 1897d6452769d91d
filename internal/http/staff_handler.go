package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/staff-scheduler/internal/application"
	"github.com/example/staff-scheduler/internal/persistence"
)

type staffService interface {
	CreateStaff(ctx context.Context, input application.StaffInput) (persistence.Staff, error)
	UpdateStaff(ctx context.Context, id string, input application.StaffInput) (persistence.Staff, error)
	GetStaff(ctx context.Context, id string) (persistence.Staff, error)
	ListStaff(ctx context.Context, filter persistence.StaffFilter) ([]persistence.Staff, error)
	DeactivateStaff(ctx context.Context, id string) (persistence.Staff, error)
	RemoveStaff(ctx context.Context, id string) error
}

// StaffHandler serves the /staff surface.
type StaffHandler struct {
	service   staffService
	responder responder
}

func NewStaffHandler(service staffService, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{service: service, responder: newResponder(logger)}
}

type staffRequest struct {
	EmployeeID string `json:"employee_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Status     string `json:"status"`
}

func (req staffRequest) toInput() application.StaffInput {
	return application.StaffInput{
		EmployeeID: req.EmployeeID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Role:       req.Role,
		Department: req.Department,
		Status:     req.Status,
	}
}

// Create handles POST /staff.
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	staff, err := h.service.CreateStaff(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusCreated, "staff created", newStaffView(staff))
}

// List handles GET /staff.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	staff, err := h.service.ListStaff(r.Context(), persistence.StaffFilter{
		Department: query.Get("department"),
		Role:       query.Get("role"),
		Status:     query.Get("status"),
		Search:     query.Get("search"),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	views := make([]staffView, 0, len(staff))
	for _, member := range staff {
		views = append(views, newStaffView(member))
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", views)
}

// Get handles GET /staff/{id}.
func (h *StaffHandler) Get(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staffID(w, r)
	if !ok {
		return
	}

	staff, err := h.service.GetStaff(r.Context(), staffID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "", newStaffView(staff))
}

// Update handles PUT /staff/{id}.
func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staffID(w, r)
	if !ok {
		return
	}

	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	staff, err := h.service.UpdateStaff(r.Context(), staffID, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "staff updated", newStaffView(staff))
}

// Delete handles DELETE /staff/{id}. The default is a soft delete that marks
// the record inactive; ?hard=true removes the row permanently.
func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staffID(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("hard") == "true" {
		if err := h.service.RemoveStaff(r.Context(), staffID); err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
		return
	}

	staff, err := h.service.DeactivateStaff(r.Context(), staffID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "staff deactivated", newStaffView(staff))
}

func (h *StaffHandler) staffID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return "", false
	}
	staffID, ok := StaffIDFromContext(r.Context())
	if !ok || strings.TrimSpace(staffID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStaffID)
		return "", false
	}
	return staffID, true
}
