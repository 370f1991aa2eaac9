package practitioner

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Practitioner) (*Practitioner, error)
	Update(ctx context.Context, p *Practitioner) (*Practitioner, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Practitioner, error)
	// FindByNationalID returns ErrNotFound when nobody holds the id.
	FindByNationalID(ctx context.Context, nationalID string) (*Practitioner, error)
	List(ctx context.Context, f ListFilter) ([]Practitioner, error)
	CountActive(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
