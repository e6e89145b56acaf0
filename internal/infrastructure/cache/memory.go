package cache

import (
	"context"
	"sync"

	interfaces "tutor-registry/internal/interfaces/infrastructure"
)

// MemorySeatCache is the in-process seat counter used when cache.type is
// "memory" and by tests. A single mutex gives the same
// check-and-decrement atomicity the Redis Lua script provides.
type MemorySeatCache struct {
	mu    sync.Mutex
	seats map[string]int64
}

func NewMemorySeatCache() *MemorySeatCache {
	return &MemorySeatCache{seats: make(map[string]int64)}
}

func (m *MemorySeatCache) ReserveSeat(ctx context.Context, subjectID, availabilityID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := seatKey(subjectID, availabilityID)
	current, ok := m.seats[key]
	if !ok {
		return 0, interfaces.ErrSeatsNotTracked
	}
	if current <= 0 {
		return 0, interfaces.ErrNoSeats
	}
	m.seats[key] = current - 1
	return current - 1, nil
}

func (m *MemorySeatCache) ReleaseSeat(ctx context.Context, subjectID, availabilityID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seats[seatKey(subjectID, availabilityID)]++
	return nil
}

func (m *MemorySeatCache) InitSeats(ctx context.Context, subjectID, availabilityID uint, seats int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := seatKey(subjectID, availabilityID)
	if _, ok := m.seats[key]; ok {
		return nil
	}
	m.seats[key] = seats
	return nil
}

func (m *MemorySeatCache) DropSeats(ctx context.Context, subjectID, availabilityID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seats, seatKey(subjectID, availabilityID))
	return nil
}
