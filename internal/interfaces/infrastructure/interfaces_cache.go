package infrastructure

import (
	"context"
	"errors"
)

var (
	// ErrNoSeats means the slot counter is at zero.
	ErrNoSeats = errors.New("no seats available")
	// ErrSeatsNotTracked means the slot has no counter yet.
	ErrSeatsNotTracked = errors.New("slot seats not tracked")
)

// SlotSeatCache tracks remaining seats per (subject, availability) slot.
// Reserve must be atomic: of N concurrent calls against a counter holding
// K seats, exactly K succeed. This serializes the capacity check against
// the enrolment insert that follows it.
type SlotSeatCache interface {
	// ReserveSeat atomically takes one seat and returns the remaining
	// count. Returns ErrNoSeats when the counter is at zero and
	// ErrSeatsNotTracked when no counter exists for the slot yet.
	ReserveSeat(ctx context.Context, subjectID, availabilityID uint) (int64, error)

	// ReleaseSeat returns a previously reserved seat.
	ReleaseSeat(ctx context.Context, subjectID, availabilityID uint) error

	// InitSeats sets the counter for a slot, typically to
	// capacity - count(enrolments) read from the store.
	InitSeats(ctx context.Context, subjectID, availabilityID uint, seats int64) error

	// DropSeats removes the counter for a slot so the next reservation
	// re-initializes it from the store.
	DropSeats(ctx context.Context, subjectID, availabilityID uint) error
}
