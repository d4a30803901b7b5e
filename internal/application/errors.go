package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission
	// for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a record with the same key exists.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrResourceUnavailable is returned when the target resource is under
	// maintenance; it rejects every booking attempt regardless of date.
	ErrResourceUnavailable = errors.New("application: resource under maintenance")
	// ErrDeskTaken is returned when the desk is already occupied on the
	// effective date, whether by an exact-date or a recurring booking.
	ErrDeskTaken = errors.New("application: desk already booked for that day")
	// ErrDeskLimitExceeded is returned when a non-admin user already holds a
	// desk booking on the requested date.
	ErrDeskLimitExceeded = errors.New("application: user already holds a desk that day")
	// ErrSlotOverlap is returned when a meeting-room request overlaps an
	// existing booking's time slot.
	ErrSlotOverlap = errors.New("application: time slot overlaps an existing booking")
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
