package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ConflictDetector struct {
	store  Store
	policy Policy
}

func NewConflictDetector(store Store, policy Policy) *ConflictDetector {
	return &ConflictDetector{store: store, policy: policy}
}

// FindConflict returns the first live appointment time of practitionerID on
// at's date that lies less than one slot interval from at. exclude, when set,
// is skipped so an appointment never collides with itself.
func (d *ConflictDetector) FindConflict(ctx context.Context, practitionerID uuid.UUID, at time.Time, exclude *uuid.UUID) (time.Time, bool, error) {
	dayStart, dayEnd := d.policy.DayBounds(at)

	existing, err := d.store.FindByPractitionerAndDate(ctx, practitionerID, dayStart, dayEnd)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load practitioner day: %w", err)
	}

	interval := int64(d.policy.SlotMinutes)
	for _, a := range existing {
		if exclude != nil && a.ID == *exclude {
			continue
		}
		if a.Status == StatusCancelled {
			continue
		}
		if minutesApart(a.ScheduledAt, at) < interval {
			return a.ScheduledAt, true, nil
		}
	}

	return time.Time{}, false, nil
}

// minutesApart is |a-b| in whole minutes, truncated.
func minutesApart(a, b time.Time) int64 {
	m := int64(a.Sub(b) / time.Minute)
	if m < 0 {
		return -m
	}
	return m
}
