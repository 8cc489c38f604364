package model

import "time"

// Reservation status values.  Only RESERVED rows participate in overlap
// checks; CANCELLED rows are kept for audit and are invisible to the
// conflict query.
const (
	StatusReserved  = "RESERVED"
	StatusCancelled = "CANCELLED"
)

// Reservation records a booking of one room for a half-open time window
// [StartTime, EndTime).  Two reservations that merely touch at a boundary
// (one ends exactly when the other starts) do not overlap and may both
// exist.
//
// Fields:
//  ID        – primary key identifier.
//  RoomID    – room being reserved.
//  UserID    – user who created the reservation.
//  StartTime – inclusive start instant (UTC).
//  EndTime   – exclusive end instant (UTC).
//  Status    – RESERVED or CANCELLED.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uint64    // reservations.id
	RoomID    uint64    // reservations.room_id
	UserID    uint64    // reservations.user_id
	StartTime time.Time // reservations.start_time
	EndTime   time.Time // reservations.end_time
	Status    string    // reservations.status
	CreatedAt time.Time // reservations.created_at
	UpdatedAt time.Time // reservations.updated_at
}

// ReservedRow is a reservation joined with its room and creator, as
// returned by the range listing query.  The creator's email and name are
// needed so the visibility filter can decide whether to expose the name
// to the viewer.
type ReservedRow struct {
	ID           uint64
	RoomID       uint64
	RoomName     string
	StartTime    time.Time
	EndTime      time.Time
	CreatorID    uint64
	CreatorEmail string
	CreatorName  string
}

// RoomReservations groups redacted slots per room for the unavailable-slot
// listing.  Slots are ordered by start time ascending.
type RoomReservations struct {
	RoomID   uint64 `json:"room_id"`
	RoomName string `json:"room_name"`
	Slots    []Slot `json:"slots"`
}

// Slot is one reserved window within a room listing.  BookedBy is nil
// unless the viewer is STAFF or is the slot's creator.
type Slot struct {
	ID        uint64    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	BookedBy  *string   `json:"booked_by"`
}
