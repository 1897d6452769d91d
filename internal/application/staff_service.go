package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/staff-scheduler/internal/persistence"
)

// StaffDirectory captures the persistence interactions needed by the staff
// service.
type StaffDirectory interface {
	CreateStaff(ctx context.Context, staff persistence.Staff) error
	UpdateStaff(ctx context.Context, staff persistence.Staff) error
	GetStaff(ctx context.Context, id string) (persistence.Staff, error)
	GetStaffByEmail(ctx context.Context, email string) (persistence.Staff, error)
	ListStaff(ctx context.Context, filter persistence.StaffFilter) ([]persistence.Staff, error)
	DeleteStaff(ctx context.Context, id string) error
}

// StaffService orchestrates validation and persistence for the staff
// directory.
type StaffService struct {
	staff       StaffDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewStaffService wires dependencies for staff directory operations.
func NewStaffService(staff StaffDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *StaffService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &StaffService{
		staff:       staff,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

var staffStatuses = map[string]bool{
	StaffStatusActive:   true,
	StaffStatusInactive: true,
	StaffStatusOnLeave:  true,
}

// CreateStaff validates and stores a new staff record. The employee ID is
// generated when absent; employee ID and e-mail address must be unique across
// the directory.
func (s *StaffService) CreateStaff(ctx context.Context, input StaffInput) (persistence.Staff, error) {
	if s == nil {
		return persistence.Staff{}, fmt.Errorf("StaffService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "staff", "create")

	if input.Status == "" {
		input.Status = StaffStatusActive
	}
	if strings.TrimSpace(input.EmployeeID) == "" {
		input.EmployeeID = s.generateEmployeeID()
	}
	if vErr := validateStaffInput(input); vErr.HasErrors() {
		logger.Warn("staff validation failed", "fields", vErr.FieldErrors)
		return persistence.Staff{}, vErr
	}

	now := s.now().UTC()
	staff := persistence.Staff{
		ID:         s.idGenerator(),
		EmployeeID: strings.TrimSpace(input.EmployeeID),
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:      strings.TrimSpace(input.Phone),
		Role:       strings.TrimSpace(input.Role),
		Department: strings.TrimSpace(input.Department),
		Status:     input.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.staff.CreateStaff(ctx, staff); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return persistence.Staff{}, fmt.Errorf("%w: employee ID or e-mail already registered", ErrConflict)
		}
		logger.Error("failed to create staff", "error", err)
		return persistence.Staff{}, fmt.Errorf("failed to create staff: %w", err)
	}

	logger.Info("staff created", "staff_id", staff.ID, "employee_id", staff.EmployeeID)
	return staff, nil
}

// UpdateStaff applies changes to an existing staff record. The employee ID is
// immutable once assigned.
func (s *StaffService) UpdateStaff(ctx context.Context, id string, input StaffInput) (persistence.Staff, error) {
	if s == nil {
		return persistence.Staff{}, fmt.Errorf("StaffService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "staff", "update", "staff_id", id)

	existing, err := s.staff.GetStaff(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Staff{}, fmt.Errorf("%w: staff %s", ErrNotFound, id)
		}
		return persistence.Staff{}, fmt.Errorf("failed to load staff: %w", err)
	}

	if input.EmployeeID == "" {
		input.EmployeeID = existing.EmployeeID
	}
	if input.Status == "" {
		input.Status = existing.Status
	}
	if vErr := validateStaffInput(input); vErr.HasErrors() {
		logger.Warn("staff validation failed", "fields", vErr.FieldErrors)
		return persistence.Staff{}, vErr
	}
	if strings.TrimSpace(input.EmployeeID) != existing.EmployeeID {
		vErr := &ValidationError{}
		vErr.add("employee_id", "employee ID cannot be changed")
		return persistence.Staff{}, vErr
	}

	updated := existing
	updated.FirstName = strings.TrimSpace(input.FirstName)
	updated.LastName = strings.TrimSpace(input.LastName)
	updated.Email = strings.ToLower(strings.TrimSpace(input.Email))
	updated.Phone = strings.TrimSpace(input.Phone)
	updated.Role = strings.TrimSpace(input.Role)
	updated.Department = strings.TrimSpace(input.Department)
	updated.Status = input.Status
	updated.UpdatedAt = s.now().UTC()

	if err := s.staff.UpdateStaff(ctx, updated); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return persistence.Staff{}, fmt.Errorf("%w: e-mail already registered", ErrConflict)
		}
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Staff{}, fmt.Errorf("%w: staff %s", ErrNotFound, id)
		}
		logger.Error("failed to update staff", "error", err)
		return persistence.Staff{}, fmt.Errorf("failed to update staff: %w", err)
	}

	logger.Info("staff updated")
	return updated, nil
}

// GetStaff loads one staff record by ID.
func (s *StaffService) GetStaff(ctx context.Context, id string) (persistence.Staff, error) {
	if s == nil {
		return persistence.Staff{}, fmt.Errorf("StaffService is nil")
	}
	staff, err := s.staff.GetStaff(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Staff{}, fmt.Errorf("%w: staff %s", ErrNotFound, id)
		}
		return persistence.Staff{}, fmt.Errorf("failed to load staff: %w", err)
	}
	return staff, nil
}

// ListStaff returns directory entries matching the filter.
func (s *StaffService) ListStaff(ctx context.Context, filter persistence.StaffFilter) ([]persistence.Staff, error) {
	if s == nil {
		return nil, fmt.Errorf("StaffService is nil")
	}
	if filter.Status != "" && !staffStatuses[filter.Status] {
		vErr := &ValidationError{}
		vErr.add("status", "unknown staff status")
		return nil, vErr
	}
	staff, err := s.staff.ListStaff(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

// DeactivateStaff marks a staff member inactive without removing history.
func (s *StaffService) DeactivateStaff(ctx context.Context, id string) (persistence.Staff, error) {
	if s == nil {
		return persistence.Staff{}, fmt.Errorf("StaffService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "staff", "deactivate", "staff_id", id)

	existing, err := s.staff.GetStaff(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Staff{}, fmt.Errorf("%w: staff %s", ErrNotFound, id)
		}
		return persistence.Staff{}, fmt.Errorf("failed to load staff: %w", err)
	}

	existing.Status = StaffStatusInactive
	existing.UpdatedAt = s.now().UTC()
	if err := s.staff.UpdateStaff(ctx, existing); err != nil {
		logger.Error("failed to deactivate staff", "error", err)
		return persistence.Staff{}, fmt.Errorf("failed to deactivate staff: %w", err)
	}

	logger.Info("staff deactivated")
	return existing, nil
}

// RemoveStaff permanently deletes a staff record. Deletion fails while any
// schedule still references the record.
func (s *StaffService) RemoveStaff(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("StaffService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "staff", "remove", "staff_id", id)

	if err := s.staff.DeleteStaff(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("%w: staff %s", ErrNotFound, id)
		}
		if errors.Is(err, persistence.ErrForeignKeyViolation) {
			return fmt.Errorf("%w: staff %s still has schedule assignments", ErrConflict, id)
		}
		logger.Error("failed to remove staff", "error", err)
		return fmt.Errorf("failed to remove staff: %w", err)
	}

	logger.Info("staff removed")
	return nil
}

// generateEmployeeID builds a directory identifier such as EMP-2024-ab12cd.
func (s *StaffService) generateEmployeeID() string {
	suffix := strings.ReplaceAll(s.idGenerator(), "-", "")
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("EMP-%d-%s", s.now().UTC().Year(), suffix)
}

func validateStaffInput(input StaffInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.EmployeeID) == "" {
		vErr.add("employee_id", "employee ID is required")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		vErr.add("first_name", "first name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		vErr.add("last_name", "last name is required")
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "e-mail address is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "e-mail address is invalid")
	}

	if !staffStatuses[input.Status] {
		vErr.add("status", "status must be active, inactive or on_leave")
	}

	return vErr
}
