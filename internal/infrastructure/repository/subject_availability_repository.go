package repository

import (
	"context"

	"tutor-registry/internal/domain/registry"
	interfaces "tutor-registry/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// SubjectAvailabilityRepository implements the offer-set gateway using GORM
type SubjectAvailabilityRepository struct {
	db *gorm.DB
}

// NewSubjectAvailabilityRepository creates a new GORM offer-set repository
func NewSubjectAvailabilityRepository(db *gorm.DB) interfaces.SubjectAvailabilityRepository {
	return &SubjectAvailabilityRepository{db: db}
}

// Exists reports whether the subject offers the availability slot
func (r *SubjectAvailabilityRepository) Exists(ctx context.Context, subjectID, availabilityID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&registry.SubjectAvailability{}).
		Where("subject_id = ? AND availability_id = ?", subjectID, availabilityID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateBatch inserts one offer-set row per slot in a single call
func (r *SubjectAvailabilityRepository) CreateBatch(ctx context.Context, slots []registry.SubjectAvailability) error {
	return r.db.WithContext(ctx).Create(&slots).Error
}

// GetBySubject retrieves a subject's offer set with availabilities joined
func (r *SubjectAvailabilityRepository) GetBySubject(ctx context.Context, subjectID uint) ([]*registry.SubjectAvailability, error) {
	var slots []*registry.SubjectAvailability
	err := r.db.WithContext(ctx).
		Preload("Availability").
		Where("subject_id = ?", subjectID).
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}
