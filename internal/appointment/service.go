package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hackgods/vet-appointment-scheduling/internal/apperr"
	"github.com/hackgods/vet-appointment-scheduling/internal/events"
	redisclient "github.com/hackgods/vet-appointment-scheduling/internal/redis"
)

const defaultLookupTimeout = 2 * time.Second

// Observer receives the outcome of every scheduler operation.
type Observer interface {
	ObserveOperation(op string, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, error) {}

type Service struct {
	store         Store
	lookup        PractitionerLookup
	locker        redisclient.Locker
	policy        Policy
	conflicts     *ConflictDetector
	clock         Clock
	publisher     events.Publisher
	observer      Observer
	log           *zap.Logger
	tracer        trace.Tracer
	lookupTimeout time.Duration
}

type Option func(*Service)

func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.publisher = p } }

func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

func WithTracer(t trace.Tracer) Option { return func(s *Service) { s.tracer = t } }

// WithLookupTimeout bounds every call to the practitioner directory.
func WithLookupTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lookupTimeout = d
		}
	}
}

func NewService(store Store, lookup PractitionerLookup, locker redisclient.Locker, policy Policy, opts ...Option) *Service {
	s := &Service{
		store:         store,
		lookup:        lookup,
		locker:        locker,
		policy:        policy,
		conflicts:     NewConflictDetector(store, policy),
		clock:         SystemClock{},
		publisher:     events.Nop{},
		observer:      nopObserver{},
		log:           zap.NewNop(),
		tracer:        otel.Tracer("github.com/hackgods/vet-appointment-scheduling/internal/appointment"),
		lookupTimeout: defaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Policy() Policy { return s.policy }

// Schedule books a new appointment. Checks run in a fixed order: practitioner,
// past timestamp, conflict, business hours, slot boundary.
func (s *Service) Schedule(ctx context.Context, cmd ScheduleCommand) (_ *Appointment, err error) {
	ctx, span := s.tracer.Start(ctx, "appointment.Schedule", trace.WithAttributes(
		attribute.String("practitioner.id", cmd.PractitionerID.String()),
	))
	defer func() { s.finish(span, "schedule", err) }()

	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	var created *Appointment
	err = s.validateAndWrite(ctx, cmd, nil, func(lockCtx context.Context) error {
		appt, err := s.store.Save(lockCtx, &Appointment{
			SubjectID:      cmd.SubjectID,
			PractitionerID: cmd.PractitionerID,
			ScheduledAt:    cmd.ScheduledAt,
			Type:           cmd.Type,
			Status:         StatusScheduled,
		})
		if err != nil {
			return fmt.Errorf("save appointment: %w", err)
		}
		created = appt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("appointment scheduled",
		zap.String("appointment_id", created.ID.String()),
		zap.String("practitioner_id", created.PractitionerID.String()),
		zap.Time("scheduled_at", created.ScheduledAt),
	)
	s.emit(ctx, events.AppointmentScheduled, created, map[string]any{
		"practitioner_id": created.PractitionerID.String(),
		"subject_id":      created.SubjectID.String(),
		"scheduled_at":    created.ScheduledAt,
		"type":            created.Type,
	})

	return created, nil
}

// Update overwrites the mutable fields of a scheduled appointment. The
// appointment is excluded from its own conflict check.
func (s *Service) Update(ctx context.Context, id uuid.UUID, cmd ScheduleCommand) (_ *Appointment, err error) {
	ctx, span := s.tracer.Start(ctx, "appointment.Update", trace.WithAttributes(
		attribute.String("appointment.id", id.String()),
	))
	defer func() { s.finish(span, "update", err) }()

	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	var updated *Appointment
	err = s.withLock(ctx, appointmentKey(id), func(ctx context.Context) error {
		appt, err := s.store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if appt.Status.IsFinal() {
			return ErrImmutableState
		}

		return s.validateAndWrite(ctx, cmd, &id, func(lockCtx context.Context) error {
			appt.SubjectID = cmd.SubjectID
			appt.PractitionerID = cmd.PractitionerID
			appt.ScheduledAt = cmd.ScheduledAt
			appt.Type = cmd.Type

			saved, err := s.store.Save(lockCtx, appt)
			if err != nil {
				return fmt.Errorf("save appointment: %w", err)
			}
			updated = saved
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.AppointmentUpdated, updated, map[string]any{
		"practitioner_id": updated.PractitionerID.String(),
		"scheduled_at":    updated.ScheduledAt,
		"type":            updated.Type,
	})

	return updated, nil
}

// Cancel checks the notice window before looking at the current status.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (_ *Appointment, err error) {
	ctx, span := s.tracer.Start(ctx, "appointment.Cancel", trace.WithAttributes(
		attribute.String("appointment.id", id.String()),
	))
	defer func() { s.finish(span, "cancel", err) }()

	var cancelled *Appointment
	err = s.withLock(ctx, appointmentKey(id), func(ctx context.Context) error {
		appt, err := s.store.FindByID(ctx, id)
		if err != nil {
			return err
		}

		switch {
		case !s.policy.CanCancel(appt.ScheduledAt, s.clock.Now()):
			return ErrCancellationWindow
		case appt.Status == StatusCancelled:
			return ErrAlreadyCancelled
		case appt.Status == StatusCompleted:
			return ErrAlreadyCompleted
		}

		appt.Status = StatusCancelled
		saved, err := s.store.Save(ctx, appt)
		if err != nil {
			return fmt.Errorf("save appointment: %w", err)
		}
		cancelled = saved
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("appointment cancelled", zap.String("appointment_id", id.String()))
	s.emit(ctx, events.AppointmentCancelled, cancelled, nil)

	return cancelled, nil
}

// SetStatus moves a scheduled appointment to scheduled or completed.
// Cancellation has its own operation.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) (_ *Appointment, err error) {
	ctx, span := s.tracer.Start(ctx, "appointment.SetStatus", trace.WithAttributes(
		attribute.String("appointment.id", id.String()),
		attribute.String("appointment.status", string(status)),
	))
	defer func() { s.finish(span, "set_status", err) }()

	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	var (
		changed *Appointment
		from    Status
	)
	err = s.withLock(ctx, appointmentKey(id), func(ctx context.Context) error {
		appt, err := s.store.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if status == StatusCancelled {
			return ErrUseCancel
		}
		if appt.Status.IsFinal() {
			return ErrImmutableState
		}

		from = appt.Status
		appt.Status = status
		saved, err := s.store.Save(ctx, appt)
		if err != nil {
			return fmt.Errorf("save appointment: %w", err)
		}
		changed = saved
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.AppointmentStatusChanged, changed, map[string]any{
		"from": from,
		"to":   status,
	})

	return changed, nil
}

// Availability partitions the business-day slots of date into free and
// occupied. Slots already in the past are left out of Available.
func (s *Service) Availability(ctx context.Context, practitionerID uuid.UUID, date time.Time) (_ *Availability, err error) {
	ctx, span := s.tracer.Start(ctx, "appointment.Availability", trace.WithAttributes(
		attribute.String("practitioner.id", practitionerID.String()),
	))
	defer func() { s.finish(span, "availability", err) }()

	p, err := s.activePractitioner(ctx, practitionerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	day := s.policy.DayStart(date)
	if day.Before(s.policy.DayStart(now)) {
		return nil, ErrPastDate
	}

	dayStart, dayEnd := s.policy.DayBounds(day)
	booked, err := s.store.FindByPractitionerAndDate(ctx, practitionerID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load practitioner day: %w", err)
	}

	occupied := make([]time.Time, 0, len(booked))
	taken := make(map[int64]struct{}, len(booked))
	for _, a := range booked {
		if a.Status == StatusCancelled {
			continue
		}
		occupied = append(occupied, a.ScheduledAt)
		taken[a.ScheduledAt.UnixNano()] = struct{}{}
	}

	available := make([]time.Time, 0)
	for slot := range s.policy.EachSlot(day) {
		if _, ok := taken[slot.UnixNano()]; ok {
			continue
		}
		if slot.Before(now) {
			continue
		}
		available = append(available, slot)
	}

	return &Availability{
		PractitionerID:   p.ID,
		PractitionerName: p.Name,
		Date:             day,
		Available:        available,
		Occupied:         occupied,
	}, nil
}

// IsAvailable reports whether at is free of conflicts for the practitioner.
// It does not check hours, boundaries or the practitioner itself.
func (s *Service) IsAvailable(ctx context.Context, practitionerID uuid.UUID, at time.Time) (bool, error) {
	_, found, err := s.conflicts.FindConflict(ctx, practitionerID, at, nil)
	if err != nil {
		return false, err
	}
	return !found, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Appointment, error) {
	return s.store.List(ctx, f)
}

// Upcoming lists scheduled appointments at or after now.
func (s *Service) Upcoming(ctx context.Context) ([]Appointment, error) {
	now := s.clock.Now()
	status := StatusScheduled
	return s.store.List(ctx, Filter{Status: &status, From: &now})
}

// Today lists every appointment on the current calendar date, any status.
func (s *Service) Today(ctx context.Context) ([]Appointment, error) {
	start, end := s.policy.DayBounds(s.clock.Now())
	last := end.Add(-time.Nanosecond)
	return s.store.List(ctx, Filter{From: &start, To: &last})
}

// validateAndWrite runs the practitioner, past, conflict, hours and boundary
// checks in that order and calls write while holding the practitioner-day
// lock.
func (s *Service) validateAndWrite(ctx context.Context, cmd ScheduleCommand, exclude *uuid.UUID, write func(ctx context.Context) error) error {
	if _, err := s.activePractitioner(ctx, cmd.PractitionerID); err != nil {
		return err
	}
	if !cmd.ScheduledAt.After(s.clock.Now()) {
		return ErrPastTimestamp
	}

	key := practitionerDayKey(cmd.PractitionerID, s.policy.DayStart(cmd.ScheduledAt))
	return s.withLock(ctx, key, func(ctx context.Context) error {
		_, found, err := s.conflicts.FindConflict(ctx, cmd.PractitionerID, cmd.ScheduledAt, exclude)
		if err != nil {
			return err
		}
		if found {
			return ErrSlotConflict
		}
		if !s.policy.WithinBusinessHours(cmd.ScheduledAt) {
			return ErrOutOfHours
		}
		if !s.policy.OnSlotBoundary(cmd.ScheduledAt) {
			return ErrMisalignedSlot
		}
		return write(ctx)
	})
}

func (s *Service) activePractitioner(ctx context.Context, id uuid.UUID) (Practitioner, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	p, err := s.lookup.GetPractitioner(lookupCtx, id)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return Practitioner{}, ErrPractitionerNotFound
		}
		return Practitioner{}, apperr.Wrap(apperr.ServiceUnavailable, "practitioner lookup", err)
	}
	if !p.Active {
		return Practitioner{}, ErrPractitionerInactive
	}
	return p, nil
}

// withLock separates failures to take the lock from errors returned by fn.
func (s *Service) withLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	var (
		ran   bool
		inner error
	)
	err := s.locker.WithLock(ctx, key, func(ctx context.Context) error {
		ran = true
		inner = fn(ctx)
		return inner
	})
	if ran {
		return inner
	}
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		s.log.Warn("lock wait exceeded", zap.String("key", key))
		return ErrSchedulingUnavailable
	}
	if err != nil {
		return apperr.Wrap(apperr.ServiceUnavailable, "acquire lock", err)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, eventType string, appt *Appointment, payload map[string]any) {
	ev := events.Event{
		Type:          eventType,
		AppointmentID: appt.ID,
		Payload:       payload,
		OccurredAt:    s.clock.Now(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("failed to publish event",
			zap.String("event_type", eventType),
			zap.String("appointment_id", appt.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) finish(span trace.Span, op string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.KindOf(err).String())
	}
	span.End()
	s.observer.ObserveOperation(op, err)
}

func validateCommand(cmd ScheduleCommand) error {
	if !cmd.Type.IsValid() {
		return ErrInvalidType
	}
	if cmd.SubjectID == uuid.Nil {
		return apperr.New(apperr.Validation, "subject id is required")
	}
	if cmd.PractitionerID == uuid.Nil {
		return apperr.New(apperr.Validation, "practitioner id is required")
	}
	return nil
}

func appointmentKey(id uuid.UUID) string {
	return "appointment:" + id.String()
}

func practitionerDayKey(id uuid.UUID, day time.Time) string {
	return "practitioner:" + id.String() + ":" + day.Format(time.DateOnly)
}
