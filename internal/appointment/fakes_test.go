package appointment

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/vet-appointment-scheduling/internal/events"
)

// memStore keeps appointments in memory and mimics the partial unique index
// unless noUniqueIndex is set. readDelay stretches the gap between a day read
// and the following write.
type memStore struct {
	mu            sync.Mutex
	items         map[uuid.UUID]Appointment
	noUniqueIndex bool
	readDelay     time.Duration
}

func newMemStore() *memStore {
	return &memStore{items: make(map[uuid.UUID]Appointment)}
}

func (m *memStore) Save(_ context.Context, a *Appointment) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *a
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
		cp.CreatedAt = time.Now()
	}
	if cp.Status != StatusCancelled && !m.noUniqueIndex {
		for _, other := range m.items {
			if other.ID != cp.ID && other.Status != StatusCancelled &&
				other.PractitionerID == cp.PractitionerID && other.ScheduledAt.Equal(cp.ScheduledAt) {
				return nil, ErrSlotConflict
			}
		}
	}
	cp.UpdatedAt = time.Now()
	m.items[cp.ID] = cp
	return &cp, nil
}

func (m *memStore) FindByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.items[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (m *memStore) FindByPractitionerAndDate(_ context.Context, practitionerID uuid.UUID, dayStart, dayEnd time.Time) ([]Appointment, error) {
	if m.readDelay > 0 {
		defer time.Sleep(m.readDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Appointment
	for _, a := range m.items {
		if a.PractitionerID != practitionerID || a.Status == StatusCancelled {
			continue
		}
		if a.ScheduledAt.Before(dayStart) || !a.ScheduledAt.Before(dayEnd) {
			continue
		}
		out = append(out, a)
	}
	sortByTime(out)
	return out, nil
}

func (m *memStore) List(_ context.Context, f Filter) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Appointment
	for _, a := range m.items {
		switch {
		case f.PractitionerID != nil && a.PractitionerID != *f.PractitionerID,
			f.SubjectID != nil && a.SubjectID != *f.SubjectID,
			f.Status != nil && a.Status != *f.Status,
			f.Type != nil && a.Type != *f.Type,
			f.From != nil && a.ScheduledAt.Before(*f.From),
			f.To != nil && a.ScheduledAt.After(*f.To):
			continue
		}
		out = append(out, a)
	}
	sortByTime(out)
	return out, nil
}

// put stores a as-is, bypassing every rule.
func (m *memStore) put(a Appointment) Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Type == "" {
		a.Type = TypeConsultation
	}
	if a.SubjectID == uuid.Nil {
		a.SubjectID = uuid.New()
	}
	m.items[a.ID] = a
	return a
}

func sortByTime(as []Appointment) {
	slices.SortFunc(as, func(a, b Appointment) int { return a.ScheduledAt.Compare(b.ScheduledAt) })
}

type directory map[uuid.UUID]Practitioner

func (d directory) GetPractitioner(_ context.Context, id uuid.UUID) (Practitioner, error) {
	p, ok := d[id]
	if !ok {
		return Practitioner{}, ErrPractitionerNotFound
	}
	return p, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturePublisher) Publish(_ context.Context, ev events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *capturePublisher) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Type
	}
	return out
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, events.Event) error {
	return errors.New("broker unavailable")
}

type countingObserver struct {
	mu  sync.Mutex
	ops map[string]int
}

func (o *countingObserver) ObserveOperation(op string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ops == nil {
		o.ops = make(map[string]int)
	}
	o.ops[op]++
}

// passThroughLocker runs fn without any mutual exclusion.
type passThroughLocker struct{}

func (passThroughLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
