package registry

import (
	"time"
)

// User is a student registered in the system. Names are unique across users.
type User struct {
	ID         uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string      `json:"name" gorm:"unique;not null"`
	CreatedAt  time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
	Enrolments []Enrolment `json:"enrolments,omitempty" gorm:"foreignKey:UserID"`
}

// Subject is a taught subject together with the slots it is offered at.
type Subject struct {
	ID           uint                  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string                `json:"name" gorm:"not null"`
	Description  *string               `json:"description,omitempty"`
	CreatedAt    time.Time             `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time             `json:"updated_at" gorm:"autoUpdateTime"`
	OfferedSlots []SubjectAvailability `json:"offered_slots,omitempty" gorm:"foreignKey:SubjectID"`
}

// Availability is a weekly slot label (a day of week). Static reference data.
type Availability struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Day       string    `json:"day" gorm:"unique;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// SubjectAvailability declares that a subject may be taught at an
// availability slot. The set of these rows is the legal domain of
// (subject_id, availability_id) pairs an enrolment may reference.
type SubjectAvailability struct {
	ID             uint         `json:"id" gorm:"primaryKey;autoIncrement"`
	SubjectID      uint         `json:"subject_id" gorm:"not null;uniqueIndex:idx_subject_slot"`
	AvailabilityID uint         `json:"availability_id" gorm:"not null;uniqueIndex:idx_subject_slot"`
	CreatedAt      time.Time    `json:"created_at" gorm:"autoCreateTime"`
	Subject        Subject      `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Availability   Availability `json:"availability,omitempty" gorm:"foreignKey:AvailabilityID"`
}

// TableName keeps the join table name explicit rather than letting gorm
// pluralise it.
func (SubjectAvailability) TableName() string {
	return "subject_availabilities"
}

// Enrolment links a user to one (subject, availability) slot.
// The (user_id, subject_id, availability_id) triple is unique.
type Enrolment struct {
	ID             uint         `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID         uint         `json:"user_id" gorm:"not null;uniqueIndex:idx_user_slot"`
	SubjectID      uint         `json:"subject_id" gorm:"not null;uniqueIndex:idx_user_slot"`
	AvailabilityID uint         `json:"availability_id" gorm:"not null;uniqueIndex:idx_user_slot"`
	CreatedAt      time.Time    `json:"created_at" gorm:"autoCreateTime"`
	User           User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Subject        Subject      `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Availability   Availability `json:"availability,omitempty" gorm:"foreignKey:AvailabilityID"`
}

func (Enrolment) TableName() string {
	return "user_subjects_availabilities"
}

// Request DTOs

// CreateUserRequest creates a user together with their first enrolment.
type CreateUserRequest struct {
	Name           string `json:"name" validate:"required,min=1,max=100"`
	SubjectID      uint   `json:"subject_id" validate:"required"`
	AvailabilityID uint   `json:"availability_id" validate:"required"`
}

// EnrolRequest adds an existing user to an additional slot.
type EnrolRequest struct {
	UserID         uint `json:"user_id" validate:"required"`
	SubjectID      uint `json:"subject_id" validate:"required"`
	AvailabilityID uint `json:"availability_id" validate:"required"`
}

// CreateSubjectRequest creates a subject and its offer set in one workflow.
type CreateSubjectRequest struct {
	Name            string  `json:"name" validate:"required,min=1,max=100"`
	Description     *string `json:"description,omitempty"`
	AvailabilityIDs []uint  `json:"availability_ids" validate:"required,min=1,dive,required"`
}

// GroupFilter narrows the grouped roster to a subject and/or a day.
// Both fields are optional.
type GroupFilter struct {
	SubjectID      *uint
	AvailabilityID *uint
}

// Response DTOs

// EnrolmentDetail is one enrolment expanded to subject name and day.
type EnrolmentDetail struct {
	SubjectID      uint   `json:"subject_id"`
	SubjectName    string `json:"subject_name"`
	AvailabilityID uint   `json:"availability_id"`
	Day            string `json:"day"`
}

// UserProfile is a user joined with all their enrolments.
type UserProfile struct {
	ID         uint              `json:"id"`
	Name       string            `json:"name"`
	Enrolments []EnrolmentDetail `json:"enrolments"`
}

// GroupSummary is the grouped roster payload: a human-readable summary of
// the applied filters plus the matching user names.
type GroupSummary struct {
	Message string   `json:"message"`
	Names   []string `json:"names"`
}

// DeleteUserResponse reports the removed user back to the caller.
type DeleteUserResponse struct {
	Message     string `json:"message"`
	DeletedUser *User  `json:"deletedUser"`
}
