package application

import "errors"

var (
	// ErrNotFound is returned when a referenced task, staff member,
	// schedule or assignment does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when a staff member is already booked in the
	// requested window, or a unique field collides.
	ErrConflict = errors.New("application: conflict")
	// ErrServiceUnavailable is returned when a required external
	// collaborator (the mail transport) cannot be reached.
	ErrServiceUnavailable = errors.New("application: service unavailable")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
