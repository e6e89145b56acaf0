package repository

import (
	"context"

	"tutor-registry/internal/domain/registry"
	interfaces "tutor-registry/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// SubjectRepository implements the subject gateway using GORM
type SubjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository creates a new GORM subject repository
func NewSubjectRepository(db *gorm.DB) interfaces.SubjectRepository {
	return &SubjectRepository{db: db}
}

// Create inserts a subject and fills in the generated id
func (r *SubjectRepository) Create(ctx context.Context, subject *registry.Subject) error {
	return r.db.WithContext(ctx).Omit("OfferedSlots").Create(subject).Error
}

// GetByID retrieves a subject by id
func (r *SubjectRepository) GetByID(ctx context.Context, id uint) (*registry.Subject, error) {
	var subject registry.Subject
	err := r.db.WithContext(ctx).First(&subject, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &subject, nil
}

// GetWithSlots retrieves a subject joined with its offer set
func (r *SubjectRepository) GetWithSlots(ctx context.Context, id uint) (*registry.Subject, error) {
	var subject registry.Subject
	err := r.db.WithContext(ctx).
		Preload("OfferedSlots").
		Preload("OfferedSlots.Availability").
		First(&subject, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &subject, nil
}

// List retrieves all subjects with their offer sets
func (r *SubjectRepository) List(ctx context.Context) ([]*registry.Subject, error) {
	var subjects []*registry.Subject
	err := r.db.WithContext(ctx).
		Preload("OfferedSlots").
		Preload("OfferedSlots.Availability").
		Find(&subjects).Error
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

// Delete removes a subject by id. Its offer set rows are removed by the
// store's cascade.
func (r *SubjectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&registry.Subject{}, "id = ?", id).Error
}
