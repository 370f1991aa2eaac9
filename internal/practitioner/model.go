package practitioner

import (
	"time"

	"github.com/google/uuid"
)

type Sex string

const (
	SexFemale      Sex = "female"
	SexMale        Sex = "male"
	SexUnspecified Sex = "unspecified"
)

func (s Sex) IsValid() bool {
	switch s {
	case SexFemale, SexMale, SexUnspecified:
		return true
	}
	return false
}

// Practitioner is a veterinarian in the clinic directory.
type Practitioner struct {
	ID         uuid.UUID
	Name       string
	Sex        Sex
	NationalID string
	Specialty  *string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Input carries the writable fields for Create and Update.
// A nil Active means true on Create and "unchanged" on Update.
type Input struct {
	Name       string
	Sex        Sex
	NationalID string
	Specialty  *string
	Active     *bool
}

// ListFilter narrows List. Name and Specialty match case-insensitive substrings.
type ListFilter struct {
	Active    *bool
	Name      string
	Specialty string
}
