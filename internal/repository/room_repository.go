package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/room-reservation/internal/model"
)

// RoomRepo encapsulates all database queries related to rooms.  Rooms are
// a small, mostly static table: STAFF create them and reservations
// reference them by id.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the provided DB handle.  This
// allows dependency injection of the database in tests and at startup.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// Create inserts a new room.  On success the room's ID field is
// populated with the auto-generated value, and a follow-up SELECT fills
// the timestamp defaults so callers receive a fully populated record.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	const qInsert = "INSERT INTO rooms (name) VALUES (?)"
	res, err := r.db.ExecContext(ctx, qInsert, room.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)

	const qSelect = "SELECT name, created_at FROM rooms WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, room.ID).Scan(&room.Name, &room.CreatedAt)
}

// GetByID fetches a room by its ID.  It returns ErrRoomNotFound if no
// row is found.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = "SELECT id, name, created_at FROM rooms WHERE id = ?"
	var room model.Room
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&room.ID, &room.Name, &room.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// List returns all rooms ordered by id.
func (r *RoomRepo) List(ctx context.Context) ([]*model.Room, error) {
	const q = "SELECT id, name, created_at FROM rooms ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Room
	for rows.Next() {
		room := new(model.Room)
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
