package application

import "errors"

var (
	// ErrUnauthorized is returned when no authenticated caller is present.
	ErrUnauthorized = errors.New("application: authorization required")
	// ErrForbidden is returned when the caller is not the owning organizer.
	ErrForbidden = errors.New("application: forbidden")
	// ErrNotFound is returned when a referenced key does not resolve.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned for duplicate registrations, sold out
	// conferences, and write contention that exhausted its retries.
	ErrConflict = errors.New("application: conflict")
	// ErrSpeakerMismatch is returned when a session's declared speaker does
	// not match the authenticated caller's verified email. This is treated as
	// an integrity violation: correct clients can never trigger it.
	ErrSpeakerMismatch = errors.New("application: speaker identity mismatch")
	// ErrInvalidFilter is returned when a query filter names an unknown field
	// or operator, or carries a non-numeric value for a numeric field.
	ErrInvalidFilter = errors.New("application: invalid filter")
	// ErrMultipleInequalityFilters is returned when filters apply non-equality
	// operators to more than one distinct field in a single query.
	ErrMultipleInequalityFilters = errors.New("application: inequality filters limited to one field")
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
