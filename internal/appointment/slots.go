package appointment

import (
	"iter"
	"slices"
	"time"
)

// EachSlot yields the slot start times of date's business day in order:
// opening:00, then every SlotMinutes, stopping before closing:00.
// The sequence is a pure function of date and policy and may be ranged over
// any number of times.
func (p Policy) EachSlot(date time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		step := p.SlotInterval()
		if step <= 0 {
			return
		}

		day := p.DayStart(date)
		y, m, d := day.Date()
		cur := time.Date(y, m, d, p.OpeningHour, 0, 0, 0, day.Location())
		end := time.Date(y, m, d, p.ClosingHour, 0, 0, 0, day.Location())

		for cur.Before(end) {
			if !yield(cur) {
				return
			}
			cur = cur.Add(step)
		}
	}
}

// DaySlots collects EachSlot.
func (p Policy) DaySlots(date time.Time) []time.Time {
	return slices.Collect(p.EachSlot(date))
}
