// Package services holds the scheduling and session-ledger core. The error
// values here are the domain taxonomy; controllers translate them into HTTP
// statuses and never retry them automatically.
package services

import (
	"errors"
	"fmt"

	"wellness-backend/models"
)

var (
	// ErrNotFound is returned when a referenced customer, reservation,
	// package or service type does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientSessions is returned when a package balance (or the
	// named sub-pool) is exhausted. The ledger is left untouched.
	ErrInsufficientSessions = errors.New("insufficient sessions")

	// ErrPackageExpired is returned when consuming from a package past its
	// expiry date.
	ErrPackageExpired = errors.New("package expired")

	// ErrValidation is wrapped around malformed sub-pool allocations and
	// bad request payloads.
	ErrValidation = errors.New("validation failed")
)

// InvalidTransitionError reports an illegal lifecycle move on a reservation.
type InvalidTransitionError struct {
	State  models.ReservationStatus
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s reservation in %s state", e.Action, e.State)
}

// ConflictError reports a double-booked slot. The service and staff checks
// are independent; a caller may see either or both set.
type ConflictError struct {
	Service bool
	Staff   bool
}

func (e *ConflictError) Error() string {
	switch {
	case e.Service && e.Staff:
		return "time slot already booked for this service and staff member"
	case e.Staff:
		return "staff member already booked at this time"
	default:
		return "time slot already booked for this service"
	}
}
