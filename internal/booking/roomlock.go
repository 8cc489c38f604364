package booking

import "sync"

// RoomLocks serializes writes per room so that the overlap check and the
// following insert or update run as one critical section.  Without it two
// concurrent creates for the same room can both pass the conflict check
// before either commits.  Locks for unrelated rooms never contend beyond
// the brief map access.
//
// Entries are reference counted and removed once the last holder
// releases, so the map does not accumulate a mutex per room ever seen.
type RoomLocks struct {
	mu    sync.Mutex
	locks map[uint64]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// NewRoomLocks returns an empty lock table.
func NewRoomLocks() *RoomLocks {
	return &RoomLocks{locks: make(map[uint64]*roomLock)}
}

// Lock acquires the exclusive lock for the given room, creating the entry
// on first use.  It blocks while another goroutine holds the same room.
func (rl *RoomLocks) Lock(roomID uint64) {
	rl.mu.Lock()
	l, ok := rl.locks[roomID]
	if !ok {
		l = &roomLock{}
		rl.locks[roomID] = l
	}
	l.refs++
	rl.mu.Unlock()

	l.mu.Lock()
}

// Unlock releases the room's lock and drops the entry when no other
// goroutine is holding or waiting on it.
func (rl *RoomLocks) Unlock(roomID uint64) {
	rl.mu.Lock()
	l, ok := rl.locks[roomID]
	if !ok {
		rl.mu.Unlock()
		panic("booking: unlock of unheld room lock")
	}
	l.refs--
	if l.refs == 0 {
		delete(rl.locks, roomID)
	}
	rl.mu.Unlock()

	l.mu.Unlock()
}
