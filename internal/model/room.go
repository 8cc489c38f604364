package model

import "time"

// Room is a bookable shared room.  Rooms are created by STAFF and are
// immutable afterwards; reservations reference them by ID.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human-friendly room name shown in listings and emails.
//  CreatedAt – creation timestamp.
type Room struct {
	ID        uint64    // rooms.id
	Name      string    // rooms.name
	CreatedAt time.Time // rooms.created_at
}
