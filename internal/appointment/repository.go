package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistent collection of appointments. The scheduler is its
// only writer.
type Store interface {
	// Save inserts when a.ID is uuid.Nil (assigning the id) and updates
	// otherwise. UpdatedAt is refreshed in both cases.
	Save(ctx context.Context, a *Appointment) (*Appointment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// FindByPractitionerAndDate returns the non-cancelled appointments of one
	// practitioner scheduled in [dayStart, dayEnd), ordered by time.
	FindByPractitionerAndDate(ctx context.Context, practitionerID uuid.UUID, dayStart, dayEnd time.Time) ([]Appointment, error)

	List(ctx context.Context, f Filter) ([]Appointment, error)
}

// PractitionerLookup resolves practitioners owned by the directory.
// A missing practitioner must be reported as ErrPractitionerNotFound.
type PractitionerLookup interface {
	GetPractitioner(ctx context.Context, id uuid.UUID) (Practitioner, error)
}

type PractitionerLookupFunc func(ctx context.Context, id uuid.UUID) (Practitioner, error)

func (f PractitionerLookupFunc) GetPractitioner(ctx context.Context, id uuid.UUID) (Practitioner, error) {
	return f(ctx, id)
}
