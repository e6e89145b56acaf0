package infrastructure

import (
	"context"

	"tutor-registry/internal/domain/registry"
)

// The repository interfaces below form the data service gateway: the sole
// point of contact with persistent state. Every call is one remote round
// trip with no implicit transaction; lookups return (nil, nil) when the
// record does not exist.

// UserRepository handles persistence for users
type UserRepository interface {
	Create(ctx context.Context, user *registry.User) error
	GetByID(ctx context.Context, id uint) (*registry.User, error)
	GetByName(ctx context.Context, name string) (*registry.User, error)
	ListWithEnrolments(ctx context.Context) ([]*registry.User, error)
	Delete(ctx context.Context, id uint) (*registry.User, error)
}

// SubjectRepository handles persistence for subjects
type SubjectRepository interface {
	Create(ctx context.Context, subject *registry.Subject) error
	GetByID(ctx context.Context, id uint) (*registry.Subject, error)
	GetWithSlots(ctx context.Context, id uint) (*registry.Subject, error)
	List(ctx context.Context) ([]*registry.Subject, error)
	Delete(ctx context.Context, id uint) error
}

// AvailabilityRepository handles the static day-of-week reference data
type AvailabilityRepository interface {
	GetByID(ctx context.Context, id uint) (*registry.Availability, error)
	List(ctx context.Context) ([]*registry.Availability, error)
}

// SubjectAvailabilityRepository handles a subject's offer set
type SubjectAvailabilityRepository interface {
	Exists(ctx context.Context, subjectID, availabilityID uint) (bool, error)
	CreateBatch(ctx context.Context, slots []registry.SubjectAvailability) error
	GetBySubject(ctx context.Context, subjectID uint) ([]*registry.SubjectAvailability, error)
}

// EnrolmentRepository handles user-to-slot enrolment links
type EnrolmentRepository interface {
	Create(ctx context.Context, enrolment *registry.Enrolment) error
	CountBySlot(ctx context.Context, subjectID, availabilityID uint) (int64, error)
	Exists(ctx context.Context, userID, subjectID, availabilityID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]*registry.Enrolment, error)
	ListFiltered(ctx context.Context, filter registry.GroupFilter) ([]*registry.Enrolment, error)
}
