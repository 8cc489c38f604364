package booking

import (
	"errors"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
)

// MaxStudentDuration caps a single booking for non-staff roles at four
// hours.  STAFF is exempt.
const MaxStudentDuration = 240 * time.Minute

// Policy violations returned by Validate.  The service layer maps these
// onto its user-facing error taxonomy.
var (
	ErrPastBooking  = errors.New("you can't book past times")
	ErrMaxDuration  = errors.New("reservation exceeds maximum allowed duration of 4 hours")
	ErrInvalidRange = errors.New("start time must be before end time")
)

// Validate applies the stateless booking rules to a candidate interval.
// Rules run in order and the first failure wins:
//
//  1. the interval itself must be well-formed (start < end),
//  2. the start must not lie in the past, for any role,
//  3. the duration must not exceed MaxStudentDuration unless the
//     requester is STAFF.
//
// Validate knows nothing about other reservations; conflict detection is
// a separate concern.
func Validate(now, start, end time.Time, role string) error {
	if !start.Before(end) {
		return ErrInvalidRange
	}
	if start.Before(now) {
		return ErrPastBooking
	}
	if end.Sub(start) > MaxStudentDuration && role != model.RoleStaff {
		return ErrMaxDuration
	}
	return nil
}
