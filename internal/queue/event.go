// Package queue defines message payloads exchanged over the message
// broker, the publisher used by the lifecycle service and the background
// consumer that delivers notifications.
package queue

import "time"

// ConfirmedQueueName is the durable queue reservation confirmations are
// published to and consumed from.
const ConfirmedQueueName = "reservation.confirmed"

// ReservationConfirmedEvent is published after a reservation commits.
// It carries enough information for downstream consumers (confirmation
// email, calendar sync, analytics) to act without querying the primary
// database.  The window is present twice: as instants for the calendar
// sync and as pre-formatted human labels for the email body.
type ReservationConfirmedEvent struct {
	ReservationID uint64    `json:"reservation_id"`
	RoomID        uint64    `json:"room_id"`
	RoomName      string    `json:"room_name"`
	UserEmail     string    `json:"user_email"`
	UserName      string    `json:"user_name"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	StartsAt      string    `json:"starts_at"`
	EndsAt        string    `json:"ends_at"`
	ConfirmedAt   string    `json:"confirmed_at"`
}
