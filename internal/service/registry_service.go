package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"tutor-registry/internal/domain/registry"
	"tutor-registry/internal/infrastructure/repository"
	interfaces "tutor-registry/internal/interfaces/infrastructure"
	serviceInterfaces "tutor-registry/internal/interfaces/service"
	"tutor-registry/pkg/logger"
)

// DefaultSlotCapacity is the maximum number of users per
// (subject, availability) slot unless configured otherwise.
const DefaultSlotCapacity = 8

var _ serviceInterfaces.RegistryService = (*RegistryService)(nil)

// RegistryService orchestrates the enrolment workflows on top of the data
// service gateway. The gateway carries no transactions, so multi-step
// writes run as sagas and the capacity check is serialized through an
// atomic seat counter.
type RegistryService struct {
	userRepo     interfaces.UserRepository
	subjectRepo  interfaces.SubjectRepository
	availRepo    interfaces.AvailabilityRepository
	slotRepo     interfaces.SubjectAvailabilityRepository
	enrolRepo    interfaces.EnrolmentRepository
	seatCache    interfaces.SlotSeatCache
	slotCapacity int
}

func NewRegistryService(
	userRepo interfaces.UserRepository,
	subjectRepo interfaces.SubjectRepository,
	availRepo interfaces.AvailabilityRepository,
	slotRepo interfaces.SubjectAvailabilityRepository,
	enrolRepo interfaces.EnrolmentRepository,
	seatCache interfaces.SlotSeatCache,
	slotCapacity int,
) *RegistryService {
	if slotCapacity <= 0 {
		slotCapacity = DefaultSlotCapacity
	}
	return &RegistryService{
		userRepo:     userRepo,
		subjectRepo:  subjectRepo,
		availRepo:    availRepo,
		slotRepo:     slotRepo,
		enrolRepo:    enrolRepo,
		seatCache:    seatCache,
		slotCapacity: slotCapacity,
	}
}

// Validation predicates. Each is a single round trip to the gateway.

// IsValidSubjectAvailability reports whether the subject offers the slot.
func (s *RegistryService) IsValidSubjectAvailability(ctx context.Context, subjectID, availabilityID uint) (bool, error) {
	exists, err := s.slotRepo.Exists(ctx, subjectID, availabilityID)
	if err != nil {
		return false, fmt.Errorf("failed to check subject availabilities: %w", err)
	}
	return exists, nil
}

// IsEnrolmentFull reports whether the slot already holds the maximum
// number of enrolments.
func (s *RegistryService) IsEnrolmentFull(ctx context.Context, subjectID, availabilityID uint) (bool, error) {
	count, err := s.enrolRepo.CountBySlot(ctx, subjectID, availabilityID)
	if err != nil {
		return false, fmt.Errorf("failed to check slot enrolment count: %w", err)
	}
	return count >= int64(s.slotCapacity), nil
}

// IsUserEnrolled reports whether the user already holds an enrolment for
// the slot.
func (s *RegistryService) IsUserEnrolled(ctx context.Context, userID, subjectID, availabilityID uint) (bool, error) {
	enrolled, err := s.enrolRepo.Exists(ctx, userID, subjectID, availabilityID)
	if err != nil {
		return false, fmt.Errorf("failed to check if user is already enrolled: %w", err)
	}
	return enrolled, nil
}

// GetExistingUser looks a user up by exact name, nil when absent.
func (s *RegistryService) GetExistingUser(ctx context.Context, name string) (*registry.User, error) {
	user, err := s.userRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	return user, nil
}

// reserveSeat atomically takes one seat for the slot, initializing the
// counter from the store on first use. Of N concurrent reservations
// against K remaining seats exactly K succeed, which closes the gap
// between the capacity check and the enrolment insert.
func (s *RegistryService) reserveSeat(ctx context.Context, subjectID, availabilityID uint) error {
	remaining, err := s.seatCache.ReserveSeat(ctx, subjectID, availabilityID)
	if errors.Is(err, interfaces.ErrSeatsNotTracked) {
		count, countErr := s.enrolRepo.CountBySlot(ctx, subjectID, availabilityID)
		if countErr != nil {
			return fmt.Errorf("failed to check slot enrolment count: %w", countErr)
		}

		seats := int64(s.slotCapacity) - count
		if seats < 0 {
			seats = 0
		}
		if initErr := s.seatCache.InitSeats(ctx, subjectID, availabilityID, seats); initErr != nil {
			return fmt.Errorf("failed to initialize seat counter: %w", initErr)
		}

		remaining, err = s.seatCache.ReserveSeat(ctx, subjectID, availabilityID)
	}
	if err != nil {
		if errors.Is(err, interfaces.ErrNoSeats) {
			return registry.ErrSlotFull
		}
		return fmt.Errorf("failed to reserve seat: %w", err)
	}

	logger.Debug("Reserved seat for slot (%d,%d), %d remaining", subjectID, availabilityID, remaining)
	return nil
}

func (s *RegistryService) releaseSeat(ctx context.Context, subjectID, availabilityID uint) {
	if err := s.seatCache.ReleaseSeat(ctx, subjectID, availabilityID); err != nil {
		logger.Error("Failed to release reserved seat for slot (%d,%d): %v", subjectID, availabilityID, err)
	}
}

// CreateUserWithEnrolment creates a user together with their first
// enrolment as one logical operation. If the enrolment insert fails the
// user insert is compensated, so no user is left with zero enrolments.
func (s *RegistryService) CreateUserWithEnrolment(ctx context.Context, req *registry.CreateUserRequest) (*registry.UserProfile, error) {
	logger.Info("Creating user %q with enrolment in slot (%d,%d)", req.Name, req.SubjectID, req.AvailabilityID)

	valid, err := s.IsValidSubjectAvailability(ctx, req.SubjectID, req.AvailabilityID)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, registry.ErrInvalidSlot
	}

	full, err := s.IsEnrolmentFull(ctx, req.SubjectID, req.AvailabilityID)
	if err != nil {
		return nil, err
	}
	if full {
		return nil, registry.ErrSlotFull
	}

	existing, err := s.GetExistingUser(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, registry.ErrNameTaken
	}

	if err := s.reserveSeat(ctx, req.SubjectID, req.AvailabilityID); err != nil {
		return nil, err
	}

	user := &registry.User{Name: req.Name}

	var workflow saga
	workflow.add(sagaStep{
		name: "insert user",
		run: func(ctx context.Context) error {
			return s.userRepo.Create(ctx, user)
		},
		compensate: func(ctx context.Context) error {
			_, err := s.userRepo.Delete(ctx, user.ID)
			return err
		},
	})
	workflow.add(sagaStep{
		name: "insert enrolment",
		run: func(ctx context.Context) error {
			return s.enrolRepo.Create(ctx, &registry.Enrolment{
				UserID:         user.ID,
				SubjectID:      req.SubjectID,
				AvailabilityID: req.AvailabilityID,
			})
		},
	})

	if err := workflow.execute(ctx); err != nil {
		s.releaseSeat(ctx, req.SubjectID, req.AvailabilityID)

		var rollbackErr *registry.RollbackError
		if errors.As(err, &rollbackErr) {
			logger.Error("User creation left inconsistent state: %v", err)
			return nil, err
		}
		if repository.IsDuplicate(err) {
			// The name uniqueness pre-check raced a concurrent insert;
			// the store's unique constraint is authoritative.
			return nil, registry.ErrNameTaken
		}
		logger.Error("User creation failed: %v", err)
		return nil, fmt.Errorf("failed to create user with enrolment: %w", err)
	}

	return s.fetchProfile(ctx, user.ID)
}

// EnrolExistingUser adds a user to an additional slot. No compensation is
// needed because no user row is created on this path.
func (s *RegistryService) EnrolExistingUser(ctx context.Context, req *registry.EnrolRequest) (*registry.Enrolment, error) {
	logger.Info("Enrolling user %d in slot (%d,%d)", req.UserID, req.SubjectID, req.AvailabilityID)

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if user == nil {
		return nil, registry.ErrUserNotFound
	}

	valid, err := s.IsValidSubjectAvailability(ctx, req.SubjectID, req.AvailabilityID)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, registry.ErrInvalidSlot
	}

	full, err := s.IsEnrolmentFull(ctx, req.SubjectID, req.AvailabilityID)
	if err != nil {
		return nil, err
	}
	if full {
		return nil, registry.ErrSlotFull
	}

	enrolled, err := s.IsUserEnrolled(ctx, req.UserID, req.SubjectID, req.AvailabilityID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, registry.ErrAlreadyEnrolled
	}

	if err := s.reserveSeat(ctx, req.SubjectID, req.AvailabilityID); err != nil {
		return nil, err
	}

	enrolment := &registry.Enrolment{
		UserID:         req.UserID,
		SubjectID:      req.SubjectID,
		AvailabilityID: req.AvailabilityID,
	}
	if err := s.enrolRepo.Create(ctx, enrolment); err != nil {
		s.releaseSeat(ctx, req.SubjectID, req.AvailabilityID)
		if repository.IsDuplicate(err) {
			return nil, registry.ErrAlreadyEnrolled
		}
		logger.Error("Enrolment insert failed: %v", err)
		return nil, fmt.Errorf("failed to enrol user: %w", err)
	}

	return enrolment, nil
}

// CreateSubjectWithOfferedSlots creates a subject and its offer set as one
// logical operation, compensating the subject insert when the offer-set
// insert fails.
func (s *RegistryService) CreateSubjectWithOfferedSlots(ctx context.Context, req *registry.CreateSubjectRequest) (*registry.Subject, error) {
	logger.Info("Creating subject %q offering %d slots", req.Name, len(req.AvailabilityIDs))

	seen := make(map[uint]bool, len(req.AvailabilityIDs))
	ids := make([]uint, 0, len(req.AvailabilityIDs))
	for _, id := range req.AvailabilityIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)

		availability, err := s.availRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check availability: %w", err)
		}
		if availability == nil {
			return nil, registry.ErrUnknownAvailability
		}
	}

	subject := &registry.Subject{Name: req.Name, Description: req.Description}

	var workflow saga
	workflow.add(sagaStep{
		name: "insert subject",
		run: func(ctx context.Context) error {
			return s.subjectRepo.Create(ctx, subject)
		},
		compensate: func(ctx context.Context) error {
			return s.subjectRepo.Delete(ctx, subject.ID)
		},
	})
	workflow.add(sagaStep{
		name: "insert offered slots",
		run: func(ctx context.Context) error {
			slots := make([]registry.SubjectAvailability, 0, len(ids))
			for _, id := range ids {
				slots = append(slots, registry.SubjectAvailability{
					SubjectID:      subject.ID,
					AvailabilityID: id,
				})
			}
			return s.slotRepo.CreateBatch(ctx, slots)
		},
	})

	if err := workflow.execute(ctx); err != nil {
		var rollbackErr *registry.RollbackError
		if errors.As(err, &rollbackErr) {
			logger.Error("Subject creation left inconsistent state: %v", err)
			return nil, err
		}
		logger.Error("Subject creation failed: %v", err)
		return nil, fmt.Errorf("failed to create subject with offered slots: %w", err)
	}

	return s.subjectRepo.GetWithSlots(ctx, subject.ID)
}

// DeleteUser removes a user; the store cascade removes their enrolments.
// Seat counters for the slots the user held are dropped so the next
// reservation re-initializes them from the store.
func (s *RegistryService) DeleteUser(ctx context.Context, id uint) (*registry.DeleteUserResponse, error) {
	enrolments, err := s.enrolRepo.ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user enrolments: %w", err)
	}

	user, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	if user == nil {
		return nil, registry.ErrUserNotFound
	}

	for _, e := range enrolments {
		if err := s.seatCache.DropSeats(ctx, e.SubjectID, e.AvailabilityID); err != nil {
			logger.Warn("Failed to drop seat counter for slot (%d,%d): %v", e.SubjectID, e.AvailabilityID, err)
		}
	}

	logger.Info("Deleted user %d (%s) and %d enrolments via cascade", user.ID, user.Name, len(enrolments))
	return &registry.DeleteUserResponse{
		Message:     "User deleted successfully",
		DeletedUser: user,
	}, nil
}

// Roster returns every user joined with their enrolments.
func (s *RegistryService) Roster(ctx context.Context) ([]*registry.UserProfile, error) {
	users, err := s.userRepo.ListWithEnrolments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	if len(users) == 0 {
		return nil, registry.ErrNoUsers
	}

	profiles := make([]*registry.UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, profileFromUser(user))
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
	return profiles, nil
}

// GroupedRoster returns the names of users having at least one enrolment
// matching the optional subject and availability filters, plus a summary
// naming what was filtered on.
func (s *RegistryService) GroupedRoster(ctx context.Context, filter registry.GroupFilter) (*registry.GroupSummary, error) {
	var subjectName, day string

	if filter.SubjectID != nil {
		subject, err := s.subjectRepo.GetByID(ctx, *filter.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch subject: %w", err)
		}
		if subject == nil {
			return nil, registry.ErrSubjectNotFound
		}
		subjectName = subject.Name
	}
	if filter.AvailabilityID != nil {
		availability, err := s.availRepo.GetByID(ctx, *filter.AvailabilityID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch availability: %w", err)
		}
		if availability == nil {
			return nil, registry.ErrUnknownAvailability
		}
		day = availability.Day
	}

	enrolments, err := s.enrolRepo.ListFiltered(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch enrolments: %w", err)
	}

	namesSeen := make(map[string]bool)
	names := make([]string, 0, len(enrolments))
	for _, e := range enrolments {
		if e.User.Name == "" || namesSeen[e.User.Name] {
			continue
		}
		namesSeen[e.User.Name] = true
		names = append(names, e.User.Name)
	}
	if len(names) == 0 {
		return nil, registry.ErrNoUsersMatchFilter
	}
	sort.Strings(names)

	var message string
	switch {
	case subjectName != "" && day != "":
		message = fmt.Sprintf("Users enrolled in %s on %s", subjectName, day)
	case subjectName != "":
		message = fmt.Sprintf("Users enrolled in %s", subjectName)
	case day != "":
		message = fmt.Sprintf("Users enrolled on %s", day)
	default:
		message = "All enrolled users"
	}

	return &registry.GroupSummary{Message: message, Names: names}, nil
}

// ListSubjects returns all subjects with their offer sets.
func (s *RegistryService) ListSubjects(ctx context.Context) ([]*registry.Subject, error) {
	subjects, err := s.subjectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subjects: %w", err)
	}
	return subjects, nil
}

// ListAvailabilities returns the day-of-week reference data.
func (s *RegistryService) ListAvailabilities(ctx context.Context) ([]*registry.Availability, error) {
	availabilities, err := s.availRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availabilities: %w", err)
	}
	return availabilities, nil
}

func (s *RegistryService) fetchProfile(ctx context.Context, userID uint) (*registry.UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user details: %w", err)
	}
	if user == nil {
		return nil, registry.ErrUserNotFound
	}

	enrolments, err := s.enrolRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user details: %w", err)
	}

	profile := &registry.UserProfile{
		ID:         user.ID,
		Name:       user.Name,
		Enrolments: make([]registry.EnrolmentDetail, 0, len(enrolments)),
	}
	for _, e := range enrolments {
		profile.Enrolments = append(profile.Enrolments, registry.EnrolmentDetail{
			SubjectID:      e.SubjectID,
			SubjectName:    e.Subject.Name,
			AvailabilityID: e.AvailabilityID,
			Day:            e.Availability.Day,
		})
	}
	return profile, nil
}

func profileFromUser(user *registry.User) *registry.UserProfile {
	profile := &registry.UserProfile{
		ID:         user.ID,
		Name:       user.Name,
		Enrolments: make([]registry.EnrolmentDetail, 0, len(user.Enrolments)),
	}
	for _, e := range user.Enrolments {
		profile.Enrolments = append(profile.Enrolments, registry.EnrolmentDetail{
			SubjectID:      e.SubjectID,
			SubjectName:    e.Subject.Name,
			AvailabilityID: e.AvailabilityID,
			Day:            e.Availability.Day,
		})
	}
	return profile
}
