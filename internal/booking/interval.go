// Package booking contains the pure admission rules for reservations:
// the interval overlap predicate, the booking policy, the visibility
// filter for listings and the per-room lock that serializes conflicting
// writes.  Nothing in this package touches the database or the HTTP
// layer, which keeps every rule independently testable.
package booking

import "time"

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2)
// intersect.  Two windows that touch at a boundary (e1 == s2 or e2 == s1)
// do not overlap, so a reservation may start exactly when another ends.
// This predicate is the single definition of "already booked"; the SQL
// overlap query in the repository mirrors it exactly.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
