// Package apperrors defines the error taxonomy shared across the
// booking core. Sentinel values let controllers map failures to HTTP
// statuses without inspecting storage detail, and structured errors
// carry enough context for the caller to act (which seats conflicted,
// how many seats are stranding a resize).
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEventNotFound is returned when the referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrBookingNotFound is returned when the referenced booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmptySelection is returned when a booking request names no seats.
	ErrEmptySelection = errors.New("seat selection must not be empty")

	// ErrForbidden is returned when the caller attempts an operation on a
	// resource they do not own or lack the role for. Controllers translate
	// this into HTTP 403.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict signals a transient write conflict on the same event
	// (lock contention, serialization failure). It is retriable with the
	// same input, unlike SeatUnavailableError.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrServiceUnavailable is surfaced after bounded retries of a
	// transient storage failure are exhausted.
	ErrServiceUnavailable = errors.New("service temporarily unavailable")

	// ErrEventEnded is returned when booking against an event that has
	// already ended.
	ErrEventEnded = errors.New("event has ended")
)

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidation builds a ValidationError for a field.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// SeatUnavailableError reports that some requested seats are already
// held by another booking. Conflicting lists exactly the seats that
// could not be booked; Available lists the seats currently free so the
// caller can pick again. This failure is not retriable with the same
// input.
type SeatUnavailableError struct {
	Conflicting []string
	Available   []string
}

func (e *SeatUnavailableError) Error() string {
	if len(e.Conflicting) == 0 {
		return fmt.Sprintf("only %d seats available", len(e.Available))
	}
	return fmt.Sprintf("seats not available: %s", strings.Join(e.Conflicting, ", "))
}

// CapacityConflictError reports that a seat-count reduction would
// strand already-booked seats.
type CapacityConflictError struct {
	Requested int
	Booked    int
}

func (e *CapacityConflictError) Error() string {
	return fmt.Sprintf("cannot resize to %d seats: %d seats already booked", e.Requested, e.Booked)
}

// IsSeatUnavailable reports whether err is (or wraps) a SeatUnavailableError.
func IsSeatUnavailable(err error) (*SeatUnavailableError, bool) {
	var su *SeatUnavailableError
	ok := errors.As(err, &su)
	return su, ok
}

// IsCapacityConflict reports whether err is (or wraps) a CapacityConflictError.
func IsCapacityConflict(err error) (*CapacityConflictError, bool) {
	var cc *CapacityConflictError
	ok := errors.As(err, &cc)
	return cc, ok
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
