package practitioner

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/vet-appointment-scheduling/internal/appointment"
	"github.com/hackgods/vet-appointment-scheduling/internal/apperr"
)

// Lookup exposes the directory to the scheduler.
func Lookup(svc *Service) appointment.PractitionerLookup {
	return appointment.PractitionerLookupFunc(func(ctx context.Context, id uuid.UUID) (appointment.Practitioner, error) {
		p, err := svc.Get(ctx, id)
		if err != nil {
			if apperr.Is(err, apperr.NotFound) {
				return appointment.Practitioner{}, appointment.ErrPractitionerNotFound
			}
			return appointment.Practitioner{}, err
		}
		return appointment.Practitioner{ID: p.ID, Name: p.Name, Active: p.Active}, nil
	})
}
