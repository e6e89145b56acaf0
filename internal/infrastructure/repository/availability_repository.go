package repository

import (
	"context"

	"tutor-registry/internal/domain/registry"
	interfaces "tutor-registry/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// AvailabilityRepository implements the availability gateway using GORM
type AvailabilityRepository struct {
	db *gorm.DB
}

// NewAvailabilityRepository creates a new GORM availability repository
func NewAvailabilityRepository(db *gorm.DB) interfaces.AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// GetByID retrieves an availability slot by id
func (r *AvailabilityRepository) GetByID(ctx context.Context, id uint) (*registry.Availability, error) {
	var availability registry.Availability
	err := r.db.WithContext(ctx).First(&availability, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &availability, nil
}

// List retrieves all availability slots ordered by id
func (r *AvailabilityRepository) List(ctx context.Context) ([]*registry.Availability, error) {
	var availabilities []*registry.Availability
	err := r.db.WithContext(ctx).Order("id").Find(&availabilities).Error
	if err != nil {
		return nil, err
	}
	return availabilities, nil
}
