package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/staff-scheduler/internal/persistence"
)

func newTestStaffService(stub *staffDirectoryStub) *StaffService {
	now := fixedClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewStaffService(stub, sequentialIDs("stf-"), now, discardLogger())
}

func TestCreateStaff_NormalizesAndDefaults(t *testing.T) {
	t.Parallel()

	stub := newStaffDirectoryStub()
	svc := newTestStaffService(stub)

	staff, err := svc.CreateStaff(context.Background(), StaffInput{
		EmployeeID: " EMP-001 ",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "Ada@Example.COM",
	})
	if err != nil {
		t.Fatalf("CreateStaff failed: %v", err)
	}
	if staff.Email != "ada@example.com" {
		t.Errorf("expected lowercased e-mail, got %q", staff.Email)
	}
	if staff.EmployeeID != "EMP-001" {
		t.Errorf("expected trimmed employee ID, got %q", staff.EmployeeID)
	}
	if staff.Status != StaffStatusActive {
		t.Errorf("expected default status active, got %q", staff.Status)
	}
	if staff.ID == "" {
		t.Error("expected generated ID")
	}
}

func TestCreateStaff_ValidationErrors(t *testing.T) {
	t.Parallel()

	svc := newTestStaffService(newStaffDirectoryStub())
	_, err := svc.CreateStaff(context.Background(), StaffInput{Email: "not-an-address", Status: "retired"})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"first_name", "last_name", "email", "status"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("expected field error for %s, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestCreateStaff_GeneratesEmployeeID(t *testing.T) {
	t.Parallel()

	svc := newTestStaffService(newStaffDirectoryStub())
	staff, err := svc.CreateStaff(context.Background(), StaffInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	if err != nil {
		t.Fatalf("CreateStaff failed: %v", err)
	}
	if !strings.HasPrefix(staff.EmployeeID, "EMP-2024-") {
		t.Errorf("expected generated EMP-2024-* employee ID, got %q", staff.EmployeeID)
	}
}

func TestCreateStaff_DuplicateEmployeeID(t *testing.T) {
	t.Parallel()

	svc := newTestStaffService(newStaffDirectoryStub())
	input := StaffInput{
		EmployeeID: "EMP-001",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
	}
	if _, err := svc.CreateStaff(context.Background(), input); err != nil {
		t.Fatalf("first CreateStaff failed: %v", err)
	}

	input.Email = "other@example.com"
	_, err := svc.CreateStaff(context.Background(), input)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUpdateStaff_EmployeeIDImmutable(t *testing.T) {
	t.Parallel()

	stub := newStaffDirectoryStub(activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"))
	svc := newTestStaffService(stub)

	_, err := svc.UpdateStaff(context.Background(), "stf-1", StaffInput{
		EmployeeID: "EMP-999",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := vErr.FieldErrors["employee_id"]; !ok {
		t.Errorf("expected employee_id field error, got %v", vErr.FieldErrors)
	}
}

func TestDeactivateStaff_PreservesRecord(t *testing.T) {
	t.Parallel()

	stub := newStaffDirectoryStub(activeStaff("stf-1", "Ada", "Lovelace", "ada@example.com"))
	svc := newTestStaffService(stub)

	staff, err := svc.DeactivateStaff(context.Background(), "stf-1")
	if err != nil {
		t.Fatalf("DeactivateStaff failed: %v", err)
	}
	if staff.Status != StaffStatusInactive {
		t.Errorf("expected inactive, got %q", staff.Status)
	}
	if _, err := svc.GetStaff(context.Background(), "stf-1"); err != nil {
		t.Errorf("record must survive deactivation: %v", err)
	}
}

func TestRemoveStaff_NotFound(t *testing.T) {
	t.Parallel()

	svc := newTestStaffService(newStaffDirectoryStub())
	if err := svc.RemoveStaff(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListStaff_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	svc := newTestStaffService(newStaffDirectoryStub())
	_, err := svc.ListStaff(context.Background(), persistence.StaffFilter{Status: "sabbatical"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
