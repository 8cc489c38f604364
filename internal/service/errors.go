// Package service contains the reservation lifecycle: the admission flow
// composing policy, conflict detection and persistence, plus the error
// taxonomy handlers translate into HTTP responses.
package service

import (
	"fmt"
	"net/http"
)

// ServiceError is an expected, user-facing outcome of a lifecycle
// operation.  Each kind carries its own status code and message so
// callers can distinguish "slot taken" from "not allowed" from "bad
// input"; there is no catch-all that collapses them.
type ServiceError struct {
	Err        error
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Predeclared outcomes.  Conflicts deliberately map to 400 rather than
// 409: the booking clients treat every admission refusal as a bad
// request with a distinguishing message.
var (
	ErrInvalidRange = &ServiceError{
		Message:    "start time must be before end time",
		StatusCode: http.StatusBadRequest,
	}
	ErrPastBooking = &ServiceError{
		Message:    "you can't book past times",
		StatusCode: http.StatusBadRequest,
	}
	ErrExceedsMaxDuration = &ServiceError{
		Message:    "reservation exceeds maximum allowed duration of 4 hours",
		StatusCode: http.StatusBadRequest,
	}
	ErrTimeSlotTaken = &ServiceError{
		Message:    "this time slot is already booked",
		StatusCode: http.StatusBadRequest,
	}
	ErrRoomNotFound = &ServiceError{
		Message:    "room not found",
		StatusCode: http.StatusNotFound,
	}
	ErrReservationNotFound = &ServiceError{
		Message:    "reservation not found",
		StatusCode: http.StatusNotFound,
	}
	ErrNotOwner = &ServiceError{
		Message:    "you didn't book this slot",
		StatusCode: http.StatusForbidden,
	}
	ErrCancelForbidden = &ServiceError{
		Message:    "unauthorized to cancel this reservation",
		StatusCode: http.StatusForbidden,
	}
)
