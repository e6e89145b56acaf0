package repository

import (
	"context"

	"tutor-registry/internal/domain/registry"
	interfaces "tutor-registry/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// EnrolmentRepository implements the enrolment gateway using GORM
type EnrolmentRepository struct {
	db *gorm.DB
}

// NewEnrolmentRepository creates a new GORM enrolment repository
func NewEnrolmentRepository(db *gorm.DB) interfaces.EnrolmentRepository {
	return &EnrolmentRepository{db: db}
}

// Create inserts an enrolment row linking a user to a slot
func (r *EnrolmentRepository) Create(ctx context.Context, enrolment *registry.Enrolment) error {
	return r.db.WithContext(ctx).Create(enrolment).Error
}

// CountBySlot counts enrolment rows for a (subject, availability) pair
func (r *EnrolmentRepository) CountBySlot(ctx context.Context, subjectID, availabilityID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&registry.Enrolment{}).
		Where("subject_id = ? AND availability_id = ?", subjectID, availabilityID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists reports whether the user is already enrolled in the slot
func (r *EnrolmentRepository) Exists(ctx context.Context, userID, subjectID, availabilityID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&registry.Enrolment{}).
		Where("user_id = ? AND subject_id = ? AND availability_id = ?", userID, subjectID, availabilityID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser retrieves a user's enrolments with subject and availability joined
func (r *EnrolmentRepository) ListByUser(ctx context.Context, userID uint) ([]*registry.Enrolment, error) {
	var enrolments []*registry.Enrolment
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Availability").
		Where("user_id = ?", userID).
		Find(&enrolments).Error
	if err != nil {
		return nil, err
	}
	return enrolments, nil
}

// ListFiltered retrieves enrolments matching the optional subject and
// availability filters, with user, subject and availability joined
func (r *EnrolmentRepository) ListFiltered(ctx context.Context, filter registry.GroupFilter) ([]*registry.Enrolment, error) {
	query := r.db.WithContext(ctx).
		Preload("User").
		Preload("Subject").
		Preload("Availability").
		Model(&registry.Enrolment{})

	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.AvailabilityID != nil {
		query = query.Where("availability_id = ?", *filter.AvailabilityID)
	}

	var enrolments []*registry.Enrolment
	if err := query.Find(&enrolments).Error; err != nil {
		return nil, err
	}
	return enrolments, nil
}
