package repository

import (
	"context"

	"tutor-registry/internal/domain/registry"
	interfaces "tutor-registry/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// UserRepository implements the user gateway using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new GORM user repository
func NewUserRepository(db *gorm.DB) interfaces.UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and fills in the generated id
func (r *UserRepository) Create(ctx context.Context, user *registry.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*registry.User, error) {
	var user registry.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByName retrieves a user by exact name
func (r *UserRepository) GetByName(ctx context.Context, name string) (*registry.User, error) {
	var user registry.User
	err := r.db.WithContext(ctx).First(&user, "name = ?", name).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListWithEnrolments retrieves every user joined with their enrolments,
// each expanded to subject and availability
func (r *UserRepository) ListWithEnrolments(ctx context.Context) ([]*registry.User, error) {
	var users []*registry.User
	err := r.db.WithContext(ctx).
		Preload("Enrolments").
		Preload("Enrolments.Subject").
		Preload("Enrolments.Availability").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Delete removes a user by id and returns the deleted row. Enrolments
// referencing the user are removed by the store's cascade.
func (r *UserRepository) Delete(ctx context.Context, id uint) (*registry.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	if err := r.db.WithContext(ctx).Delete(&registry.User{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return user, nil
}
