package registry

import (
	"errors"
	"fmt"
)

// Business rule violations. Handlers map these to 400 responses.
var (
	ErrInvalidSlot         = errors.New("subject does not offer this availability slot")
	ErrSlotFull            = errors.New("slot has reached maximum capacity")
	ErrNameTaken           = errors.New("user with this name already exists")
	ErrAlreadyEnrolled     = errors.New("user already enrolled in this slot")
	ErrUserNotFound        = errors.New("user not found")
	ErrSubjectNotFound     = errors.New("subject not found")
	ErrUnknownAvailability = errors.New("availability does not exist")
	ErrNoUsers             = errors.New("no users in record")
	ErrNoUsersMatchFilter  = errors.New("no users found with given filters")
)

// RollbackError reports a failed compensating action: a multi-step workflow
// failed midway and the inverse operation that should have removed the
// partial state failed as well. The store is left inconsistent and needs
// manual remediation, so this is distinguished from an ordinary failure.
type RollbackError struct {
	Op              string
	Cause           error
	CompensationErr error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("%s failed (%v) and rollback failed (%v): persisted state is inconsistent",
		e.Op, e.Cause, e.CompensationErr)
}

func (e *RollbackError) Unwrap() error {
	return e.Cause
}
