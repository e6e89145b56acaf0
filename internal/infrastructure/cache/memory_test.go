package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	interfaces "tutor-registry/internal/interfaces/infrastructure"
)

func TestMemorySeatCacheReserve(t *testing.T) {
	ctx := context.Background()
	seats := NewMemorySeatCache()

	if _, err := seats.ReserveSeat(ctx, 1, 1); !errors.Is(err, interfaces.ErrSeatsNotTracked) {
		t.Fatalf("Expected ErrSeatsNotTracked before init, got %v", err)
	}

	if err := seats.InitSeats(ctx, 1, 1, 2); err != nil {
		t.Fatalf("InitSeats failed: %v", err)
	}

	remaining, err := seats.ReserveSeat(ctx, 1, 1)
	if err != nil {
		t.Fatalf("Expected reservation to succeed, got %v", err)
	}
	if remaining != 1 {
		t.Errorf("Expected 1 seat remaining, got %d", remaining)
	}

	if _, err := seats.ReserveSeat(ctx, 1, 1); err != nil {
		t.Fatalf("Expected reservation to succeed, got %v", err)
	}
	if _, err := seats.ReserveSeat(ctx, 1, 1); !errors.Is(err, interfaces.ErrNoSeats) {
		t.Fatalf("Expected ErrNoSeats once exhausted, got %v", err)
	}

	if err := seats.ReleaseSeat(ctx, 1, 1); err != nil {
		t.Fatalf("ReleaseSeat failed: %v", err)
	}
	if _, err := seats.ReserveSeat(ctx, 1, 1); err != nil {
		t.Fatalf("Expected reservation after release to succeed, got %v", err)
	}
}

func TestMemorySeatCacheInitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	seats := NewMemorySeatCache()

	if err := seats.InitSeats(ctx, 1, 1, 3); err != nil {
		t.Fatalf("InitSeats failed: %v", err)
	}
	if _, err := seats.ReserveSeat(ctx, 1, 1); err != nil {
		t.Fatalf("Reservation failed: %v", err)
	}

	// A late initializer must not reset the counter.
	if err := seats.InitSeats(ctx, 1, 1, 3); err != nil {
		t.Fatalf("InitSeats failed: %v", err)
	}
	remaining, err := seats.ReserveSeat(ctx, 1, 1)
	if err != nil {
		t.Fatalf("Reservation failed: %v", err)
	}
	if remaining != 1 {
		t.Errorf("Expected 1 seat remaining, got %d", remaining)
	}
}

func TestMemorySeatCacheDrop(t *testing.T) {
	ctx := context.Background()
	seats := NewMemorySeatCache()

	if err := seats.InitSeats(ctx, 1, 1, 1); err != nil {
		t.Fatalf("InitSeats failed: %v", err)
	}
	if err := seats.DropSeats(ctx, 1, 1); err != nil {
		t.Fatalf("DropSeats failed: %v", err)
	}
	if _, err := seats.ReserveSeat(ctx, 1, 1); !errors.Is(err, interfaces.ErrSeatsNotTracked) {
		t.Fatalf("Expected ErrSeatsNotTracked after drop, got %v", err)
	}
}

func TestMemorySeatCacheConcurrentReservations(t *testing.T) {
	ctx := context.Background()
	seats := NewMemorySeatCache()

	const capacity = 8
	const contenders = 100
	if err := seats.InitSeats(ctx, 1, 1, capacity); err != nil {
		t.Fatalf("InitSeats failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := seats.ReserveSeat(ctx, 1, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, interfaces.ErrNoSeats) {
			t.Fatalf("Unexpected error under contention: %v", err)
		}
	}
	if succeeded != capacity {
		t.Errorf("Expected exactly %d successful reservations, got %d", capacity, succeeded)
	}
}
