package practitioner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/vet-appointment-scheduling/internal/apperr"
)

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

func (s *Service) Create(ctx context.Context, in Input) (*Practitioner, error) {
	in = normalize(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := s.ensureNationalIDFree(ctx, in.NationalID, uuid.Nil); err != nil {
		return nil, err
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	p, err := s.repo.Create(ctx, &Practitioner{
		Name:       in.Name,
		Sex:        in.Sex,
		NationalID: in.NationalID,
		Specialty:  in.Specialty,
		Active:     active,
	})
	if err != nil {
		return nil, fmt.Errorf("create practitioner: %w", err)
	}

	s.log.Info("practitioner created", zap.String("practitioner_id", p.ID.String()))
	return p, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Practitioner, error) {
	in = normalize(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.NationalID != in.NationalID {
		if err := s.ensureNationalIDFree(ctx, in.NationalID, id); err != nil {
			return nil, err
		}
	}

	p.Name = in.Name
	p.Sex = in.Sex
	p.NationalID = in.NationalID
	p.Specialty = in.Specialty
	if in.Active != nil {
		p.Active = *in.Active
	}

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update practitioner: %w", err)
	}
	return updated, nil
}

// Deactivate keeps the record but blocks new bookings. Existing appointments
// are left untouched.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return p, nil
	}

	p.Active = false
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("deactivate practitioner: %w", err)
	}

	s.log.Info("practitioner deactivated", zap.String("practitioner_id", id.String()))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if apperr.KindOf(err) != apperr.Internal {
			return err
		}
		return fmt.Errorf("delete practitioner: %w", err)
	}
	s.log.Info("practitioner deleted", zap.String("practitioner_id", id.String()))
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Practitioner, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Specialty = strings.TrimSpace(f.Specialty)
	return s.repo.List(ctx, f)
}

func (s *Service) CountActive(ctx context.Context) (int64, error) {
	return s.repo.CountActive(ctx)
}

func (s *Service) ensureNationalIDFree(ctx context.Context, nationalID string, self uuid.UUID) error {
	existing, err := s.repo.FindByNationalID(ctx, nationalID)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check national id: %w", err)
	case existing.ID != self:
		return ErrDuplicateNationalID
	}
	return nil
}

func normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.NationalID = strings.TrimSpace(in.NationalID)
	if in.Sex == "" {
		in.Sex = SexUnspecified
	}
	if in.Specialty != nil {
		sp := strings.TrimSpace(*in.Specialty)
		if sp == "" {
			in.Specialty = nil
		} else {
			in.Specialty = &sp
		}
	}
	return in
}

func validateInput(in Input) error {
	switch {
	case in.Name == "":
		return apperr.New(apperr.Validation, "name is required")
	case len(in.Name) > 100:
		return apperr.New(apperr.Validation, "name must be at most 100 characters")
	case in.NationalID == "":
		return apperr.New(apperr.Validation, "national id is required")
	case len(in.NationalID) > 100:
		return apperr.New(apperr.Validation, "national id must be at most 100 characters")
	case !in.Sex.IsValid():
		return apperr.New(apperr.Validation, fmt.Sprintf("unknown sex %q", in.Sex))
	case in.Specialty != nil && len(*in.Specialty) > 100:
		return apperr.New(apperr.Validation, "specialty must be at most 100 characters")
	}
	return nil
}
