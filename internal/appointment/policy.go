package appointment

import (
	"fmt"
	"time"

	"github.com/hackgods/vet-appointment-scheduling/internal/apperr"
)

// Policy holds the clinic's business hours. It is built once at startup and
// treated as immutable.
type Policy struct {
	OpeningHour  int
	ClosingHour  int
	SlotMinutes  int
	CancelNotice time.Duration
	Location     *time.Location
}

// NewPolicy validates and returns a policy. A nil loc means time.Local.
func NewPolicy(openingHour, closingHour, slotMinutes, cancelNoticeHours int, loc *time.Location) (Policy, error) {
	if loc == nil {
		loc = time.Local
	}
	p := Policy{
		OpeningHour:  openingHour,
		ClosingHour:  closingHour,
		SlotMinutes:  slotMinutes,
		CancelNotice: time.Duration(cancelNoticeHours) * time.Hour,
		Location:     loc,
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	switch {
	case p.OpeningHour < 0 || p.OpeningHour > 23:
		return apperr.New(apperr.Validation, fmt.Sprintf("opening hour %d out of range 0-23", p.OpeningHour))
	case p.ClosingHour < 0 || p.ClosingHour > 23:
		return apperr.New(apperr.Validation, fmt.Sprintf("closing hour %d out of range 0-23", p.ClosingHour))
	case p.ClosingHour <= p.OpeningHour:
		return apperr.New(apperr.Validation, "closing hour must be after opening hour")
	case p.SlotMinutes <= 0 || 60%p.SlotMinutes != 0:
		return apperr.New(apperr.Validation, fmt.Sprintf("slot interval %d must divide 60", p.SlotMinutes))
	case p.CancelNotice < 0:
		return apperr.New(apperr.Validation, "cancellation notice must not be negative")
	}
	return nil
}

func (p Policy) SlotInterval() time.Duration {
	return time.Duration(p.SlotMinutes) * time.Minute
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// WithinBusinessHours reports opening:00 <= time of day <= closing:00.
// The closing instant itself is accepted.
func (p Policy) WithinBusinessHours(t time.Time) bool {
	lt := t.In(p.location())
	tod := time.Duration(lt.Hour())*time.Hour +
		time.Duration(lt.Minute())*time.Minute +
		time.Duration(lt.Second())*time.Second +
		time.Duration(lt.Nanosecond())

	open := time.Duration(p.OpeningHour) * time.Hour
	closing := time.Duration(p.ClosingHour) * time.Hour
	return tod >= open && tod <= closing
}

// OnSlotBoundary checks only the minute of the hour.
func (p Policy) OnSlotBoundary(t time.Time) bool {
	if p.SlotMinutes <= 0 {
		return false
	}
	return t.In(p.location()).Minute()%p.SlotMinutes == 0
}

// CanCancel reports now + notice <= scheduledAt.
func (p Policy) CanCancel(scheduledAt, now time.Time) bool {
	return !now.Add(p.CancelNotice).After(scheduledAt)
}

// DayStart returns midnight of t's calendar date in the policy zone.
func (p Policy) DayStart(t time.Time) time.Time {
	loc := p.location()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayBounds returns [midnight, next midnight) for t's calendar date.
func (p Policy) DayBounds(t time.Time) (time.Time, time.Time) {
	start := p.DayStart(t)
	return start, start.AddDate(0, 0, 1)
}
