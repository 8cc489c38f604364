package booking

import (
	"sync"
	"testing"
)

func TestRoomLocksMutualExclusion(t *testing.T) {
	rl := NewRoomLocks()
	const workers = 32
	const iterations = 100

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				rl.Lock(7)
				counter++
				rl.Unlock(7)
			}
		}()
	}
	wg.Wait()

	if counter != workers*iterations {
		t.Fatalf("expected %d increments, got %d", workers*iterations, counter)
	}
}

func TestRoomLocksIndependentRooms(t *testing.T) {
	rl := NewRoomLocks()

	rl.Lock(1)
	done := make(chan struct{})
	go func() {
		// A different room must not block behind room 1.
		rl.Lock(2)
		rl.Unlock(2)
		close(done)
	}()
	<-done
	rl.Unlock(1)
}

func TestRoomLocksEntriesAreReleased(t *testing.T) {
	rl := NewRoomLocks()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(room uint64) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rl.Lock(room)
				rl.Unlock(room)
			}
		}(uint64(i))
	}
	wg.Wait()

	rl.mu.Lock()
	remaining := len(rl.locks)
	rl.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected empty lock table after release, %d entries remain", remaining)
	}
}
