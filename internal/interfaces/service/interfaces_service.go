package service

import (
	"context"

	"tutor-registry/internal/domain/registry"
)

// RegistryService is the enrolment workflow surface consumed by the HTTP
// handlers.
type RegistryService interface {
	CreateUserWithEnrolment(ctx context.Context, req *registry.CreateUserRequest) (*registry.UserProfile, error)
	EnrolExistingUser(ctx context.Context, req *registry.EnrolRequest) (*registry.Enrolment, error)
	CreateSubjectWithOfferedSlots(ctx context.Context, req *registry.CreateSubjectRequest) (*registry.Subject, error)
	DeleteUser(ctx context.Context, id uint) (*registry.DeleteUserResponse, error)
	Roster(ctx context.Context) ([]*registry.UserProfile, error)
	GroupedRoster(ctx context.Context, filter registry.GroupFilter) (*registry.GroupSummary, error)
	ListSubjects(ctx context.Context) ([]*registry.Subject, error)
	ListAvailabilities(ctx context.Context) ([]*registry.Availability, error)
}
