package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// emailTimeLayout is the human-readable format used in confirmation
// events and mail.
const emailTimeLayout = "Monday, January 2, 2006 at 3:04 PM"

// notifyTimeout bounds the detached notification publish so a dead
// broker cannot accumulate unbounded background goroutines.
const notifyTimeout = 20 * time.Second

// RoomStore is the room lookup the lifecycle consumes.  The MySQL
// RoomRepo implements it; tests substitute an in-memory fake.
type RoomStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
}

// ReservationStore is the reservation persistence the lifecycle
// consumes: range queries, the overlap check and transactional writes.
type ReservationStore interface {
	HasOverlap(ctx context.Context, roomID uint64, start, end time.Time, excludeID uint64) (bool, error)
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	Update(ctx context.Context, res *model.Reservation) error
	Cancel(ctx context.Context, id uint64) error
	ListBetween(ctx context.Context, start, end time.Time) ([]model.ReservedRow, error)
}

// Notifier receives the fire-and-forget confirmation trigger.  The
// RabbitMQ publisher implements it in production.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
}

// ReservationService implements the reservation lifecycle: create,
// list, update and cancel.  The overlap check and the following write
// run under a per-room lock, so for any set of concurrent attempts on
// overlapping intervals of one room at most one succeeds.
type ReservationService struct {
	rooms        RoomStore
	reservations ReservationStore
	locks        *booking.RoomLocks
	notifier     Notifier

	// now is swappable in tests; defaults to time.Now.
	now func() time.Time
}

// NewReservationService wires the lifecycle with its collaborators.
// notifier may be nil, which disables confirmation events.
func NewReservationService(rooms RoomStore, reservations ReservationStore, notifier Notifier) *ReservationService {
	return &ReservationService{
		rooms:        rooms,
		reservations: reservations,
		locks:        booking.NewRoomLocks(),
		notifier:     notifier,
		now:          time.Now,
	}
}

// Create admits a new reservation: room lookup, booking policy, then
// conflict check and insert under the room's lock.  On success the
// confirmation event is handed off to a detached goroutine; a publish
// failure is logged and never surfaces to the caller.
func (s *ReservationService) Create(ctx context.Context, roomID uint64, start, end time.Time, requester model.Identity) (*model.Reservation, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	if err := s.validatePolicy(start, end, requester.Role); err != nil {
		return nil, err
	}

	s.locks.Lock(roomID)
	defer s.locks.Unlock(roomID)

	overlap, err := s.reservations.HasOverlap(ctx, roomID, start, end, 0)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrTimeSlotTaken
	}

	res := &model.Reservation{
		RoomID:    roomID,
		UserID:    requester.UserID,
		StartTime: start,
		EndTime:   end,
	}
	if err := s.reservations.Create(ctx, res); err != nil {
		return nil, err
	}

	s.notifyConfirmed(res, room, requester)
	return res, nil
}

// ListUnavailable returns the reserved slots of every room intersecting
// the date window [startDate, endDate+1day), grouped by room with slots
// ordered by start time.  Each slot's creator is redacted for the viewer
// by the visibility filter.
func (s *ReservationService) ListUnavailable(ctx context.Context, startDate, endDate time.Time, viewer model.Identity) ([]model.RoomReservations, error) {
	windowStart := startDate
	windowEnd := endDate.AddDate(0, 0, 1)

	rows, err := s.reservations.ListBetween(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	// Rows arrive ordered by room id then start time, so grouping is a
	// single pass.
	result := make([]model.RoomReservations, 0)
	for _, row := range rows {
		if len(result) == 0 || result[len(result)-1].RoomID != row.RoomID {
			result = append(result, model.RoomReservations{
				RoomID:   row.RoomID,
				RoomName: row.RoomName,
				Slots:    make([]model.Slot, 0, 4),
			})
		}
		group := &result[len(result)-1]
		group.Slots = append(group.Slots, model.Slot{
			ID:        row.ID,
			StartTime: row.StartTime,
			EndTime:   row.EndTime,
			BookedBy:  booking.BookedBy(row.CreatorEmail, row.CreatorName, viewer),
		})
	}
	return result, nil
}

// Update moves an existing reservation to a new room and/or window.
// Only the creator may update; the candidate is re-validated against the
// policy and checked for conflicts excluding the reservation itself.
func (s *ReservationService) Update(ctx context.Context, id, roomID uint64, start, end time.Time, requester model.Identity) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	// A cancelled reservation left the active set for good.
	if res.Status != model.StatusReserved {
		return nil, ErrReservationNotFound
	}
	if res.UserID != requester.UserID {
		return nil, ErrNotOwner
	}

	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if err := s.validatePolicy(start, end, requester.Role); err != nil {
		return nil, err
	}

	// Lock the target room: the mutation inserts the new window there.
	// Moving away from the old room only shrinks its conflict set.
	s.locks.Lock(roomID)
	defer s.locks.Unlock(roomID)

	overlap, err := s.reservations.HasOverlap(ctx, roomID, start, end, id)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrTimeSlotTaken
	}

	res.RoomID = roomID
	res.StartTime = start
	res.EndTime = end
	if err := s.reservations.Update(ctx, res); err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// Cancel transitions a reservation to CANCELLED.  The creator or any
// STAFF user may cancel; the record stays behind for audit.
func (s *ReservationService) Cancel(ctx context.Context, id uint64, requester model.Identity) error {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return ErrReservationNotFound
		}
		return err
	}

	if !requester.IsStaff() && res.UserID != requester.UserID {
		return ErrCancelForbidden
	}

	return s.reservations.Cancel(ctx, id)
}

// validatePolicy maps the pure policy verdicts onto the service error
// taxonomy.
func (s *ReservationService) validatePolicy(start, end time.Time, role string) error {
	switch err := booking.Validate(s.now().UTC(), start, end, role); {
	case err == nil:
		return nil
	case errors.Is(err, booking.ErrInvalidRange):
		return ErrInvalidRange
	case errors.Is(err, booking.ErrPastBooking):
		return ErrPastBooking
	case errors.Is(err, booking.ErrMaxDuration):
		return ErrExceedsMaxDuration
	default:
		return err
	}
}

// notifyConfirmed hands the confirmation event to the notifier on a
// detached goroutine with its own bounded context.  The caller's
// response never waits on it and never observes its failure.
func (s *ReservationService) notifyConfirmed(res *model.Reservation, room *model.Room, requester model.Identity) {
	if s.notifier == nil {
		return
	}
	ev := queue.ReservationConfirmedEvent{
		ReservationID: res.ID,
		RoomID:        room.ID,
		RoomName:      room.Name,
		UserEmail:     requester.Email,
		UserName:      requester.Name,
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
		StartsAt:      res.StartTime.Format(emailTimeLayout),
		EndsAt:        res.EndTime.Format(emailTimeLayout),
		ConfirmedAt:   s.now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.ReservationConfirmed(ctx, ev); err != nil {
			log.Printf("reservation %d: confirmation event publish failed: %v", ev.ReservationID, err)
		}
	}()
}
