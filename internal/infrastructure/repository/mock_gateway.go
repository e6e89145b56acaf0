package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"tutor-registry/internal/domain/registry"
	interfaces "tutor-registry/internal/interfaces/infrastructure"
)

// MockGateway is an in-memory implementation of the whole data service
// gateway, used by tests and by the memory wiring mode. The Users(),
// Subjects(), Availabilities(), Slots() and Enrolments() views expose it
// through the individual repository interfaces. Error fields inject
// failures into individual operations so workflows can be exercised
// against partial-failure scenarios.
type MockGateway struct {
	mu sync.RWMutex

	users          map[uint]*registry.User
	subjects       map[uint]*registry.Subject
	availabilities map[uint]*registry.Availability
	subjectSlots   []registry.SubjectAvailability
	enrolments     []registry.Enrolment

	nextUserID      uint
	nextSubjectID   uint
	nextSlotID      uint
	nextEnrolmentID uint

	CreateUserErr      error
	DeleteUserErr      error
	CreateEnrolmentErr error
	CreateSlotsErr     error
	DeleteSubjectErr   error
	ReadErr            error
}

// NewMockGateway creates an empty in-memory gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{
		users:          make(map[uint]*registry.User),
		subjects:       make(map[uint]*registry.Subject),
		availabilities: make(map[uint]*registry.Availability),
	}
}

// Interface views

func (g *MockGateway) Users() interfaces.UserRepository { return mockUserRepo{g} }
func (g *MockGateway) Subjects() interfaces.SubjectRepository { return mockSubjectRepo{g} }
func (g *MockGateway) Availabilities() interfaces.AvailabilityRepository {
	return mockAvailabilityRepo{g}
}
func (g *MockGateway) Slots() interfaces.SubjectAvailabilityRepository { return mockSlotRepo{g} }
func (g *MockGateway) Enrolments() interfaces.EnrolmentRepository { return mockEnrolmentRepo{g} }

// Seed helpers

// SeedAvailability inserts a day slot and returns it
func (g *MockGateway) SeedAvailability(id uint, day string) *registry.Availability {
	g.mu.Lock()
	defer g.mu.Unlock()
	a := &registry.Availability{ID: id, Day: day, CreatedAt: time.Now()}
	g.availabilities[id] = a
	return a
}

// SeedSubject inserts a subject offering the given availability ids
func (g *MockGateway) SeedSubject(name string, availabilityIDs ...uint) *registry.Subject {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextSubjectID++
	s := &registry.Subject{ID: g.nextSubjectID, Name: name, CreatedAt: time.Now()}
	g.subjects[s.ID] = s
	for _, aid := range availabilityIDs {
		g.nextSlotID++
		g.subjectSlots = append(g.subjectSlots, registry.SubjectAvailability{
			ID:             g.nextSlotID,
			SubjectID:      s.ID,
			AvailabilityID: aid,
		})
	}
	return s
}

// Test assertion helpers

// EnrolmentCount reports the total number of enrolment rows
func (g *MockGateway) EnrolmentCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.enrolments)
}

// UserCount reports the total number of user rows
func (g *MockGateway) UserCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.users)
}

// User operations

func (g *MockGateway) createUser(user *registry.User) error {
	if g.CreateUserErr != nil {
		return g.CreateUserErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, existing := range g.users {
		if existing.Name == user.Name {
			return errors.New(`duplicate key value violates unique constraint "users_name_key"`)
		}
	}
	g.nextUserID++
	user.ID = g.nextUserID
	user.CreatedAt = time.Now()
	stored := *user
	g.users[user.ID] = &stored
	return nil
}

func (g *MockGateway) getUserByID(id uint) (*registry.User, error) {
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	user, ok := g.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (g *MockGateway) getUserByName(name string) (*registry.User, error) {
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, user := range g.users {
		if user.Name == name {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (g *MockGateway) listUsersWithEnrolments() ([]*registry.User, error) {
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	users := make([]*registry.User, 0, len(g.users))
	for _, user := range g.users {
		copied := *user
		copied.Enrolments = g.enrolmentsForUserLocked(user.ID)
		users = append(users, &copied)
	}
	return users, nil
}

func (g *MockGateway) deleteUser(id uint) (*registry.User, error) {
	if g.DeleteUserErr != nil {
		return nil, g.DeleteUserErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	user, ok := g.users[id]
	if !ok {
		return nil, nil
	}
	delete(g.users, id)

	// Mirror the store's ON DELETE CASCADE
	kept := g.enrolments[:0]
	for _, e := range g.enrolments {
		if e.UserID != id {
			kept = append(kept, e)
		}
	}
	g.enrolments = kept

	copied := *user
	return &copied, nil
}

// Subject operations

func (g *MockGateway) createSubject(subject *registry.Subject) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextSubjectID++
	subject.ID = g.nextSubjectID
	subject.CreatedAt = time.Now()
	stored := *subject
	stored.OfferedSlots = nil
	g.subjects[subject.ID] = &stored
	return nil
}

func (g *MockGateway) getSubjectByID(id uint) (*registry.Subject, error) {
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	subject, ok := g.subjects[id]
	if !ok {
		return nil, nil
	}
	copied := *subject
	return &copied, nil
}

func (g *MockGateway) getSubjectWithSlots(id uint) (*registry.Subject, error) {
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.subjectWithSlotsLocked(id), nil
}

func (g *MockGateway) subjectWithSlotsLocked(id uint) *registry.Subject {
	subject, ok := g.subjects[id]
	if !ok {
		return nil
	}
	copied := *subject
	for _, slot := range g.subjectSlots {
		if slot.SubjectID == id {
			s := slot
			if a, ok := g.availabilities[slot.AvailabilityID]; ok {
				s.Availability = *a
			}
			copied.OfferedSlots = append(copied.OfferedSlots, s)
		}
	}
	return &copied
}

func (g *MockGateway) listSubjects() ([]*registry.Subject, error) {
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	subjects := make([]*registry.Subject, 0, len(g.subjects))
	for id := range g.subjects {
		subjects = append(subjects, g.subjectWithSlotsLocked(id))
	}
	return subjects, nil
}

func (g *MockGateway) deleteSubject(id uint) error {
	if g.DeleteSubjectErr != nil {
		return g.DeleteSubjectErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.subjects, id)
	kept := g.subjectSlots[:0]
	for _, slot := range g.subjectSlots {
		if slot.SubjectID != id {
			kept = append(kept, slot)
		}
	}
	g.subjectSlots = kept
	return nil
}

// Availability operations

func (g *MockGateway) getAvailabilityByID(id uint) (*registry.Availability, error) {
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	availability, ok := g.availabilities[id]
	if !ok {
		return nil, nil
	}
	copied := *availability
	return &copied, nil
}

func (g *MockGateway) listAvailabilities() ([]*registry.Availability, error) {
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	availabilities := make([]*registry.Availability, 0, len(g.availabilities))
	for _, a := range g.availabilities {
		copied := *a
		availabilities = append(availabilities, &copied)
	}
	return availabilities, nil
}

// Offer-set operations

func (g *MockGateway) slotExists(subjectID, availabilityID uint) (bool, error) {
	if g.ReadErr != nil {
		return false, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, slot := range g.subjectSlots {
		if slot.SubjectID == subjectID && slot.AvailabilityID == availabilityID {
			return true, nil
		}
	}
	return false, nil
}

func (g *MockGateway) createSlotBatch(slots []registry.SubjectAvailability) error {
	if g.CreateSlotsErr != nil {
		return g.CreateSlotsErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range slots {
		g.nextSlotID++
		slots[i].ID = g.nextSlotID
		g.subjectSlots = append(g.subjectSlots, slots[i])
	}
	return nil
}

func (g *MockGateway) slotsBySubject(subjectID uint) ([]*registry.SubjectAvailability, error) {
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	var slots []*registry.SubjectAvailability
	for _, slot := range g.subjectSlots {
		if slot.SubjectID == subjectID {
			s := slot
			if a, ok := g.availabilities[slot.AvailabilityID]; ok {
				s.Availability = *a
			}
			slots = append(slots, &s)
		}
	}
	return slots, nil
}

// Enrolment operations

func (g *MockGateway) createEnrolment(enrolment *registry.Enrolment) error {
	if g.CreateEnrolmentErr != nil {
		return g.CreateEnrolmentErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range g.enrolments {
		if e.UserID == enrolment.UserID && e.SubjectID == enrolment.SubjectID && e.AvailabilityID == enrolment.AvailabilityID {
			return errors.New(`duplicate key value violates unique constraint "idx_user_slot"`)
		}
	}
	g.nextEnrolmentID++
	enrolment.ID = g.nextEnrolmentID
	enrolment.CreatedAt = time.Now()
	stored := *enrolment
	stored.User = registry.User{}
	stored.Subject = registry.Subject{}
	stored.Availability = registry.Availability{}
	g.enrolments = append(g.enrolments, stored)
	return nil
}

func (g *MockGateway) countBySlot(subjectID, availabilityID uint) (int64, error) {
	if g.ReadErr != nil {
		return 0, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	var count int64
	for _, e := range g.enrolments {
		if e.SubjectID == subjectID && e.AvailabilityID == availabilityID {
			count++
		}
	}
	return count, nil
}

func (g *MockGateway) enrolmentExists(userID, subjectID, availabilityID uint) (bool, error) {
	if g.ReadErr != nil {
		return false, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, e := range g.enrolments {
		if e.UserID == userID && e.SubjectID == subjectID && e.AvailabilityID == availabilityID {
			return true, nil
		}
	}
	return false, nil
}

func (g *MockGateway) listEnrolmentsByUser(userID uint) ([]*registry.Enrolment, error) {
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	enrolments := g.enrolmentsForUserLocked(userID)
	result := make([]*registry.Enrolment, 0, len(enrolments))
	for i := range enrolments {
		e := enrolments[i]
		result = append(result, &e)
	}
	return result, nil
}

func (g *MockGateway) listEnrolmentsFiltered(filter registry.GroupFilter) ([]*registry.Enrolment, error) {
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	var result []*registry.Enrolment
	for _, e := range g.enrolments {
		if filter.SubjectID != nil && e.SubjectID != *filter.SubjectID {
			continue
		}
		if filter.AvailabilityID != nil && e.AvailabilityID != *filter.AvailabilityID {
			continue
		}
		expanded := e
		if user, ok := g.users[e.UserID]; ok {
			expanded.User = *user
		}
		if subject, ok := g.subjects[e.SubjectID]; ok {
			expanded.Subject = *subject
		}
		if availability, ok := g.availabilities[e.AvailabilityID]; ok {
			expanded.Availability = *availability
		}
		result = append(result, &expanded)
	}
	return result, nil
}

func (g *MockGateway) enrolmentsForUserLocked(userID uint) []registry.Enrolment {
	var enrolments []registry.Enrolment
	for _, e := range g.enrolments {
		if e.UserID != userID {
			continue
		}
		expanded := e
		if subject, ok := g.subjects[e.SubjectID]; ok {
			expanded.Subject = *subject
		}
		if availability, ok := g.availabilities[e.AvailabilityID]; ok {
			expanded.Availability = *availability
		}
		enrolments = append(enrolments, expanded)
	}
	return enrolments
}

// View adapters

type mockUserRepo struct{ g *MockGateway }

func (r mockUserRepo) Create(ctx context.Context, user *registry.User) error {
	return r.g.createUser(user)
}
func (r mockUserRepo) GetByID(ctx context.Context, id uint) (*registry.User, error) {
	return r.g.getUserByID(id)
}
func (r mockUserRepo) GetByName(ctx context.Context, name string) (*registry.User, error) {
	return r.g.getUserByName(name)
}
func (r mockUserRepo) ListWithEnrolments(ctx context.Context) ([]*registry.User, error) {
	return r.g.listUsersWithEnrolments()
}
func (r mockUserRepo) Delete(ctx context.Context, id uint) (*registry.User, error) {
	return r.g.deleteUser(id)
}

type mockSubjectRepo struct{ g *MockGateway }

func (r mockSubjectRepo) Create(ctx context.Context, subject *registry.Subject) error {
	return r.g.createSubject(subject)
}
func (r mockSubjectRepo) GetByID(ctx context.Context, id uint) (*registry.Subject, error) {
	return r.g.getSubjectByID(id)
}
func (r mockSubjectRepo) GetWithSlots(ctx context.Context, id uint) (*registry.Subject, error) {
	return r.g.getSubjectWithSlots(id)
}
func (r mockSubjectRepo) List(ctx context.Context) ([]*registry.Subject, error) {
	return r.g.listSubjects()
}
func (r mockSubjectRepo) Delete(ctx context.Context, id uint) error {
	return r.g.deleteSubject(id)
}

type mockAvailabilityRepo struct{ g *MockGateway }

func (r mockAvailabilityRepo) GetByID(ctx context.Context, id uint) (*registry.Availability, error) {
	return r.g.getAvailabilityByID(id)
}
func (r mockAvailabilityRepo) List(ctx context.Context) ([]*registry.Availability, error) {
	return r.g.listAvailabilities()
}

type mockSlotRepo struct{ g *MockGateway }

func (r mockSlotRepo) Exists(ctx context.Context, subjectID, availabilityID uint) (bool, error) {
	return r.g.slotExists(subjectID, availabilityID)
}
func (r mockSlotRepo) CreateBatch(ctx context.Context, slots []registry.SubjectAvailability) error {
	return r.g.createSlotBatch(slots)
}
func (r mockSlotRepo) GetBySubject(ctx context.Context, subjectID uint) ([]*registry.SubjectAvailability, error) {
	return r.g.slotsBySubject(subjectID)
}

type mockEnrolmentRepo struct{ g *MockGateway }

func (r mockEnrolmentRepo) Create(ctx context.Context, enrolment *registry.Enrolment) error {
	return r.g.createEnrolment(enrolment)
}
func (r mockEnrolmentRepo) CountBySlot(ctx context.Context, subjectID, availabilityID uint) (int64, error) {
	return r.g.countBySlot(subjectID, availabilityID)
}
func (r mockEnrolmentRepo) Exists(ctx context.Context, userID, subjectID, availabilityID uint) (bool, error) {
	return r.g.enrolmentExists(userID, subjectID, availabilityID)
}
func (r mockEnrolmentRepo) ListByUser(ctx context.Context, userID uint) ([]*registry.Enrolment, error) {
	return r.g.listEnrolmentsByUser(userID)
}
func (r mockEnrolmentRepo) ListFiltered(ctx context.Context, filter registry.GroupFilter) ([]*registry.Enrolment, error) {
	return r.g.listEnrolmentsFiltered(filter)
}
