// Package repository contains data access logic separated from HTTP
// handlers.  This file defines sentinel error values reused across the
// repositories.  Higher layers translate them into the user-facing error
// taxonomy; for example ErrRoomNotFound becomes a 404 response while a
// raw driver error becomes a logged 500.
package repository

import "errors"

// ErrRoomNotFound is returned when a room lookup matches no row.
var ErrRoomNotFound = errors.New("room not found")

// ErrReservationNotFound is returned when a reservation lookup matches no
// row, including the case where an update or cancel targets a missing id.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrEmailExists is returned when user creation hits the unique email key.
var ErrEmailExists = errors.New("email already exists")
