package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/room-reservation/internal/booking"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// fakeRooms is an in-memory RoomStore.
type fakeRooms struct {
	rooms map[uint64]*model.Room
}

func (f *fakeRooms) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	if r, ok := f.rooms[id]; ok {
		return r, nil
	}
	return nil, repository.ErrRoomNotFound
}

// fakeReservations is an in-memory ReservationStore.  A configurable
// pause between the overlap check and the insert widens the
// check-then-act window so a missing per-room lock would make the
// concurrency test fail.
type fakeReservations struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Reservation
	users  map[uint64]model.Identity // creator identity per user id, for listing rows
	rooms  map[uint64]*model.Room
	pause  time.Duration
}

func newFakeReservations(rooms map[uint64]*model.Room) *fakeReservations {
	return &fakeReservations{
		nextID: 1,
		rows:   make(map[uint64]*model.Reservation),
		users:  make(map[uint64]model.Identity),
		rooms:  rooms,
	}
}

func (f *fakeReservations) HasOverlap(_ context.Context, roomID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	f.mu.Lock()
	found := false
	for _, r := range f.rows {
		if r.RoomID != roomID || r.Status != model.StatusReserved || r.ID == excludeID {
			continue
		}
		if booking.Overlaps(r.StartTime, r.EndTime, start, end) {
			found = true
			break
		}
	}
	f.mu.Unlock()
	if f.pause > 0 {
		time.Sleep(f.pause)
	}
	return found, nil
}

func (f *fakeReservations) Create(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	res.ID = f.nextID
	f.nextID++
	res.Status = model.StatusReserved
	cp := *res
	f.rows[res.ID] = &cp
	return nil
}

func (f *fakeReservations) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, repository.ErrReservationNotFound
}

func (f *fakeReservations) Update(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[res.ID]
	if !ok {
		return repository.ErrReservationNotFound
	}
	r.RoomID, r.StartTime, r.EndTime = res.RoomID, res.StartTime, res.EndTime
	return nil
}

func (f *fakeReservations) Cancel(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[id]; ok {
		r.Status = model.StatusCancelled
	}
	return nil
}

func (f *fakeReservations) ListBetween(_ context.Context, start, end time.Time) ([]model.ReservedRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ReservedRow
	// Deterministic ordering: room id ascending, then start time, as the
	// SQL query guarantees.
	for id := uint64(1); id < f.nextID; id++ {
		r, ok := f.rows[id]
		if !ok || r.Status != model.StatusReserved {
			continue
		}
		if !booking.Overlaps(r.StartTime, r.EndTime, start, end) {
			continue
		}
		creator := f.users[r.UserID]
		out = append(out, model.ReservedRow{
			ID:           r.ID,
			RoomID:       r.RoomID,
			RoomName:     f.rooms[r.RoomID].Name,
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			CreatorID:    r.UserID,
			CreatorEmail: creator.Email,
			CreatorName:  creator.Name,
		})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && (out[j].RoomID < out[j-1].RoomID ||
			(out[j].RoomID == out[j-1].RoomID && out[j].StartTime.Before(out[j-1].StartTime))); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

// reservedCount returns active reservations for a room.
func (f *fakeReservations) reservedCount(roomID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.RoomID == roomID && r.Status == model.StatusReserved {
			n++
		}
	}
	return n
}

// fakeNotifier records published events.
type fakeNotifier struct {
	mu     sync.Mutex
	events []queue.ReservationConfirmedEvent
	seen   chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{seen: make(chan struct{}, 64)}
}

func (f *fakeNotifier) ReservationConfirmed(_ context.Context, ev queue.ReservationConfirmedEvent) error {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
	f.seen <- struct{}{}
	return nil
}

var (
	testNow   = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	studentA  = model.Identity{UserID: 1, Email: "alice@example.org", Name: "Alice", Role: model.RoleStudent}
	studentB  = model.Identity{UserID: 2, Email: "bob@example.org", Name: "Bob", Role: model.RoleStudent}
	staffUser = model.Identity{UserID: 3, Email: "staff@example.org", Name: "Staff", Role: model.RoleStaff}
)

func newTestService(t *testing.T) (*ReservationService, *fakeReservations, *fakeNotifier) {
	t.Helper()
	rooms := map[uint64]*model.Room{
		1: {ID: 1, Name: "Aurora"},
		2: {ID: 2, Name: "Borealis"},
	}
	store := newFakeReservations(rooms)
	for _, id := range []model.Identity{studentA, studentB, staffUser} {
		store.users[id.UserID] = id
	}
	notifier := newFakeNotifier()
	svc := NewReservationService(&fakeRooms{rooms: rooms}, store, notifier)
	svc.now = func() time.Time { return testNow }
	return svc, store, notifier
}

// at translates clock-hours on the fixed test day.
func at(hour, min int) time.Time {
	return time.Date(2025, 6, 2, hour, min, 0, 0, time.UTC)
}

func TestCreateScenarios(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	// Room 1, 10:00-11:00 by student A succeeds.
	first, err := svc.Create(ctx, 1, at(10, 0), at(11, 0), studentA)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if first.Status != model.StatusReserved {
		t.Fatalf("expected RESERVED, got %s", first.Status)
	}

	// Overlapping 10:30-11:30 by student B conflicts.
	_, err = svc.Create(ctx, 1, at(10, 30), at(11, 30), studentB)
	if !errors.Is(err, ErrTimeSlotTaken) {
		t.Fatalf("expected ErrTimeSlotTaken, got %v", err)
	}

	// Touching boundary 11:00-12:00 is not a conflict.
	if _, err = svc.Create(ctx, 1, at(11, 0), at(12, 0), studentB); err != nil {
		t.Fatalf("boundary create: %v", err)
	}

	// Same window in another room never conflicts.
	if _, err = svc.Create(ctx, 2, at(10, 0), at(11, 0), studentB); err != nil {
		t.Fatalf("other room create: %v", err)
	}

	if n := store.reservedCount(1); n != 2 {
		t.Fatalf("room 1: expected 2 active reservations, got %d", n)
	}
}

func TestCreatePolicy(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("past start rejected for every role", func(t *testing.T) {
		for _, who := range []model.Identity{studentA, staffUser} {
			_, err := svc.Create(ctx, 1, at(7, 0), at(9, 0), who)
			if !errors.Is(err, ErrPastBooking) {
				t.Errorf("%s: expected ErrPastBooking, got %v", who.Role, err)
			}
		}
	})

	t.Run("five hours rejected for student, allowed for staff", func(t *testing.T) {
		_, err := svc.Create(ctx, 1, at(10, 0), at(15, 0), studentA)
		if !errors.Is(err, ErrExceedsMaxDuration) {
			t.Fatalf("student: expected ErrExceedsMaxDuration, got %v", err)
		}
		if _, err := svc.Create(ctx, 1, at(10, 0), at(15, 0), staffUser); err != nil {
			t.Fatalf("staff: %v", err)
		}
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, 1, at(12, 0), at(11, 0), studentA)
		if !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("unknown room rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, 99, at(10, 0), at(11, 0), studentA)
		if !errors.Is(err, ErrRoomNotFound) {
			t.Fatalf("expected ErrRoomNotFound, got %v", err)
		}
	})
}

func TestCreateConcurrentSameSlot(t *testing.T) {
	svc, store, _ := newTestService(t)
	// Widen the check-then-act window; without the per-room lock both
	// goroutines would pass the overlap check and both would insert.
	store.pause = 20 * time.Millisecond

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			who := studentA
			if i%2 == 1 {
				who = studentB
			}
			_, errs[i] = svc.Create(context.Background(), 1, at(9, 0), at(10, 0), who)
		}(i)
	}
	wg.Wait()

	var created, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrTimeSlotTaken):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 || conflicted != attempts-1 {
		t.Fatalf("expected exactly 1 success and %d conflicts, got %d/%d", attempts-1, created, conflicted)
	}
	if n := store.reservedCount(1); n != 1 {
		t.Fatalf("store holds %d active reservations for the slot, want 1", n)
	}
}

func TestCreatePublishesConfirmation(t *testing.T) {
	svc, _, notifier := newTestService(t)

	res, err := svc.Create(context.Background(), 1, at(10, 0), at(11, 0), studentA)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	select {
	case <-notifier.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation event was never published")
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	ev := notifier.events[0]
	if ev.ReservationID != res.ID || ev.RoomName != "Aurora" || ev.UserEmail != studentA.Email {
		t.Fatalf("unexpected event payload: %+v", ev)
	}
	if ev.StartsAt != "Monday, June 2, 2025 at 10:00 AM" {
		t.Fatalf("unexpected start label: %q", ev.StartsAt)
	}
	if !ev.StartTime.Equal(at(10, 0)) || !ev.EndTime.Equal(at(11, 0)) {
		t.Fatalf("unexpected event window: %s..%s", ev.StartTime, ev.EndTime)
	}
}

func TestListUnavailable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	mustCreate := func(roomID uint64, start, end time.Time, who model.Identity) *model.Reservation {
		t.Helper()
		res, err := svc.Create(ctx, roomID, start, end, who)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		return res
	}
	aRes := mustCreate(1, at(10, 0), at(11, 0), studentA)
	mustCreate(1, at(14, 0), at(15, 0), studentB)
	mustCreate(2, at(9, 0), at(10, 0), studentB)

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	t.Run("groups by room and orders slots", func(t *testing.T) {
		got, err := svc.ListUnavailable(ctx, day, day, staffUser)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 rooms, got %d", len(got))
		}
		if got[0].RoomID != 1 || got[1].RoomID != 2 {
			t.Fatalf("unexpected room order: %d, %d", got[0].RoomID, got[1].RoomID)
		}
		if len(got[0].Slots) != 2 || got[0].Slots[0].StartTime.After(got[0].Slots[1].StartTime) {
			t.Fatalf("room 1 slots not ordered by start: %+v", got[0].Slots)
		}
	})

	t.Run("staff sees every creator", func(t *testing.T) {
		got, _ := svc.ListUnavailable(ctx, day, day, staffUser)
		for _, room := range got {
			for _, slot := range room.Slots {
				if slot.BookedBy == nil {
					t.Fatalf("staff viewer missing creator on slot %d", slot.ID)
				}
			}
		}
	})

	t.Run("student sees only their own name", func(t *testing.T) {
		got, _ := svc.ListUnavailable(ctx, day, day, studentA)
		for _, room := range got {
			for _, slot := range room.Slots {
				if slot.ID == aRes.ID {
					if slot.BookedBy == nil || *slot.BookedBy != "Alice" {
						t.Fatalf("owner cannot see their own booking: %+v", slot)
					}
				} else if slot.BookedBy != nil {
					t.Fatalf("foreign booking leaked creator %q", *slot.BookedBy)
				}
			}
		}
	})

	t.Run("window excludes other days", func(t *testing.T) {
		nextDay := day.AddDate(0, 0, 1)
		got, err := svc.ListUnavailable(ctx, nextDay, nextDay, staffUser)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected empty listing for next day, got %d rooms", len(got))
		}
	})
}

func TestUpdate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, 1, at(10, 0), at(11, 0), studentA)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, 1, at(12, 0), at(13, 0), studentB); err != nil {
		t.Fatalf("create second: %v", err)
	}

	t.Run("only the creator may update", func(t *testing.T) {
		_, err := svc.Update(ctx, res.ID, 1, at(15, 0), at(16, 0), studentB)
		if !errors.Is(err, ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
		// STAFF may cancel anyone's booking but not rewrite it.
		_, err = svc.Update(ctx, res.ID, 1, at(15, 0), at(16, 0), staffUser)
		if !errors.Is(err, ErrNotOwner) {
			t.Fatalf("staff: expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("update never conflicts with itself", func(t *testing.T) {
		got, err := svc.Update(ctx, res.ID, 1, at(10, 30), at(11, 30), studentA)
		if err != nil {
			t.Fatalf("self-overlapping update: %v", err)
		}
		if !got.StartTime.Equal(at(10, 30)) {
			t.Fatalf("window not updated: %+v", got)
		}
	})

	t.Run("update conflicts with other reservations", func(t *testing.T) {
		_, err := svc.Update(ctx, res.ID, 1, at(12, 30), at(13, 30), studentA)
		if !errors.Is(err, ErrTimeSlotTaken) {
			t.Fatalf("expected ErrTimeSlotTaken, got %v", err)
		}
	})

	t.Run("update can move rooms", func(t *testing.T) {
		got, err := svc.Update(ctx, res.ID, 2, at(12, 30), at(13, 30), studentA)
		if err != nil {
			t.Fatalf("move to free room: %v", err)
		}
		if got.RoomID != 2 {
			t.Fatalf("room not updated: %+v", got)
		}
	})

	t.Run("missing reservation", func(t *testing.T) {
		_, err := svc.Update(ctx, 999, 1, at(15, 0), at(16, 0), studentA)
		if !errors.Is(err, ErrReservationNotFound) {
			t.Fatalf("expected ErrReservationNotFound, got %v", err)
		}
	})
}

func TestCancel(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, 1, at(10, 0), at(11, 0), studentA)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("stranger may not cancel", func(t *testing.T) {
		if err := svc.Cancel(ctx, res.ID, studentB); !errors.Is(err, ErrCancelForbidden) {
			t.Fatalf("expected ErrCancelForbidden, got %v", err)
		}
	})

	t.Run("creator may cancel, slot is freed", func(t *testing.T) {
		if err := svc.Cancel(ctx, res.ID, studentA); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if n := store.reservedCount(1); n != 0 {
			t.Fatalf("expected 0 active reservations, got %d", n)
		}
		// The freed window is bookable again.
		if _, err := svc.Create(ctx, 1, at(10, 0), at(11, 0), studentB); err != nil {
			t.Fatalf("rebook after cancel: %v", err)
		}
	})

	t.Run("staff may cancel anyone's booking", func(t *testing.T) {
		other, err := svc.Create(ctx, 2, at(10, 0), at(11, 0), studentB)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := svc.Cancel(ctx, other.ID, staffUser); err != nil {
			t.Fatalf("staff cancel: %v", err)
		}
	})

	t.Run("missing reservation", func(t *testing.T) {
		if err := svc.Cancel(ctx, 999, staffUser); !errors.Is(err, ErrReservationNotFound) {
			t.Fatalf("expected ErrReservationNotFound, got %v", err)
		}
	})
}
