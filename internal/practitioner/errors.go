package practitioner

import "github.com/hackgods/vet-appointment-scheduling/internal/apperr"

var (
	ErrNotFound            = apperr.New(apperr.NotFound, "practitioner not found")
	ErrDuplicateNationalID = apperr.New(apperr.DuplicateIdentifier, "national id already registered")
	ErrInUse               = apperr.New(apperr.Conflict, "practitioner has appointments and cannot be deleted")
)
