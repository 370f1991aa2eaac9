package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	AppointmentScheduled     = "APPOINTMENT_SCHEDULED"
	AppointmentUpdated       = "APPOINTMENT_UPDATED"
	AppointmentCancelled     = "APPOINTMENT_CANCELLED"
	AppointmentStatusChanged = "APPOINTMENT_STATUS_CHANGED"
)

type Event struct {
	Type          string
	AppointmentID uuid.UUID
	Payload       map[string]any
	OccurredAt    time.Time
}

// RoutingKey maps APPOINTMENT_STATUS_CHANGED to appointment.status_changed.
func (e Event) RoutingKey() string {
	return strings.ToLower(strings.Replace(e.Type, "_", ".", 1))
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Fanout delivers to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
