package models

import (
	"errors"
	"fmt"
)

// Lifecycle error taxonomy. Every error that crosses the service boundary is
// mapped to one of these before it reaches a handler.
var (
	// ErrNotFound indicates an unknown resource or reservation ID
	ErrNotFound = errors.New("not found")

	// ErrCapacityExceeded indicates the requested passenger count exceeds resource capacity
	ErrCapacityExceeded = errors.New("passenger count exceeds resource capacity")

	// ErrConflict indicates the resource or seat was taken at commit time
	ErrConflict = errors.New("resource is not available for the requested window")

	// ErrInvalidTransition indicates a status guard violation (double pay, double cancel)
	ErrInvalidTransition = errors.New("reservation status does not allow this operation")

	// ErrAmountMismatch indicates the paid amount does not equal the quoted amount
	ErrAmountMismatch = errors.New("payment amount does not match the quoted amount")

	// ErrQuoteExpired indicates the quote validity window has passed; a fresh quote is required
	ErrQuoteExpired = errors.New("quote has expired")

	// ErrTransientStore indicates the persistence layer was unreachable; the whole
	// operation must be retried by the caller
	ErrTransientStore = errors.New("storage temporarily unavailable")
)

// SeatUnavailableError reports a seat that was already held or occupied when a
// hold was attempted. It unwraps to ErrConflict so callers can match the kind.
type SeatUnavailableError struct {
	ResourceID string
	SeatCode   string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seat %s on resource %s is unavailable", e.SeatCode, e.ResourceID)
}

func (e *SeatUnavailableError) Unwrap() error {
	return ErrConflict
}
