package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsFinal reports whether no further transition is allowed out of s.
func (s Status) IsFinal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type Type string

const (
	TypeConsultation Type = "consultation"
	TypeExam         Type = "exam"
	TypeVaccination  Type = "vaccination"
	TypeSurgery      Type = "surgery"
	TypeFollowUp     Type = "follow_up"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeConsultation, TypeExam, TypeVaccination, TypeSurgery, TypeFollowUp:
		return true
	}
	return false
}

type Appointment struct {
	ID             uuid.UUID
	SubjectID      uuid.UUID // the animal
	PractitionerID uuid.UUID
	ScheduledAt    time.Time
	Type           Type
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Practitioner is the scheduler's read-only view of a veterinarian.
type Practitioner struct {
	ID     uuid.UUID
	Name   string
	Active bool
}

// ScheduleCommand carries the mutable fields for Schedule and Update.
type ScheduleCommand struct {
	SubjectID      uuid.UUID
	PractitionerID uuid.UUID
	ScheduledAt    time.Time
	Type           Type
}

// Filter narrows List. Zero fields are ignored; From/To bound ScheduledAt
// inclusively.
type Filter struct {
	PractitionerID *uuid.UUID
	SubjectID      *uuid.UUID
	Status         *Status
	Type           *Type
	From           *time.Time
	To             *time.Time
}

type Availability struct {
	PractitionerID   uuid.UUID
	PractitionerName string
	Date             time.Time
	Available        []time.Time
	Occupied         []time.Time
}
