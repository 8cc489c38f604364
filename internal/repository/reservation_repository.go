package repository

import (
	"context"
	"database/sql"
	"errors"

	"time"

	"github.com/iliyamo/room-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  A
// reservation books one room for a half-open [start_time, end_time)
// window.  All timestamp fields are stored in UTC.  Callers serialize
// conflicting writes per room; the repository only guarantees that each
// individual operation is atomic.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// HasOverlap reports whether any RESERVED reservation for the room
// intersects the half-open candidate window.  excludeID removes one
// reservation from consideration so an update never conflicts with
// itself; pass 0 when creating.  The WHERE clause is the SQL rendering of
// booking.Overlaps: start_time < end AND end_time > start, which makes a
// shared boundary (end == start) a non-conflict.
func (r *ReservationRepo) HasOverlap(ctx context.Context, roomID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	const q = `SELECT EXISTS (
	             SELECT 1 FROM reservations
	             WHERE room_id = ?
	               AND status = 'RESERVED'
	               AND id <> ?
	               AND start_time < ?
	               AND end_time > ?
	           )`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, roomID, excludeID, end, start).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a new RESERVED reservation inside a transaction and
// populates the generated ID and timestamp defaults on the provided
// record.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const qInsert = `INSERT INTO reservations (room_id, user_id, start_time, end_time, status)
	                 VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, qInsert, res.RoomID, res.UserID, res.StartTime, res.EndTime, model.StatusReserved)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.Status = model.StatusReserved

	// Query back the full row to populate timestamps and defaults.
	const qSelect = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	if err := tx.QueryRowContext(ctx, qSelect, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a reservation regardless of status.  It returns
// ErrReservationNotFound when no row matches.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, room_id, user_id, start_time, end_time, status, created_at, updated_at
	           FROM reservations WHERE id = ?`
	var res model.Reservation
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.RoomID, &res.UserID, &res.StartTime, &res.EndTime,
		&res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// Update persists a mutated room/window for an existing reservation.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations SET room_id = ?, start_time = ?, end_time = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, res.RoomID, res.StartTime, res.EndTime, res.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Row vanished between lookup and update; surface as not found
		// rather than silently succeeding.  RowsAffected is also 0 when
		// the update is a no-op with identical values, which MySQL
		// reports the same way, so re-check existence.
		if _, getErr := r.GetByID(ctx, res.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Cancel transitions a reservation to CANCELLED.  The row is retained
// for audit; the status filter in HasOverlap and ListBetween removes it
// from the active-conflict set.  Cancelling an already cancelled
// reservation is a no-op.
func (r *ReservationRepo) Cancel(ctx context.Context, id uint64) error {
	const q = `UPDATE reservations SET status = 'CANCELLED' WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// ListBetween returns all RESERVED reservations whose window intersects
// [start, end), joined with room and creator details for the listing.
// Ordering by room id then start time gives a stable grouping for the
// handler layer.
func (r *ReservationRepo) ListBetween(ctx context.Context, start, end time.Time) ([]model.ReservedRow, error) {
	const q = `SELECT r.id, r.room_id, rm.name, r.start_time, r.end_time,
	                  u.id, u.email, u.name
	           FROM reservations r
	           JOIN rooms rm ON rm.id = r.room_id
	           JOIN users u  ON u.id = r.user_id
	           WHERE r.status = 'RESERVED'
	             AND r.start_time < ?
	             AND r.end_time > ?
	           ORDER BY r.room_id, r.start_time`
	rows, err := r.db.QueryContext(ctx, q, end, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ReservedRow, 0)
	for rows.Next() {
		var row model.ReservedRow
		if err := rows.Scan(
			&row.ID, &row.RoomID, &row.RoomName, &row.StartTime, &row.EndTime,
			&row.CreatorID, &row.CreatorEmail, &row.CreatorName,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
