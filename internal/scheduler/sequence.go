package scheduler

import (
	"iter"
	"time"
)

// DateOf strips the clock from t, keeping t's calendar date, and returns it
// as midnight UTC. Convert t to the user's location first.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths moves d by n calendar months, clamping the day to the last day
// of the target month (Jan 31 + 1 month = Feb 29 in 2024).
func AddMonths(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Sequence is the ordered list of due dates of an obligation. Open-ended
// sequences are never materialized: iterate with All and stop, or use the
// bounded helpers Take and Until.
type Sequence struct {
	anchor  time.Time
	cadence Frequency
	count   int // -1 for open-ended
}

// DueDates returns the due-date sequence of o.
func DueDates(o Obligation) Sequence {
	anchor := DateOf(o.AnchorDueDate)
	switch p := o.Plan.(type) {
	case InstallmentPlan:
		return Sequence{anchor: anchor, cadence: p.Cadence, count: p.Count}
	case RecurringPlan:
		return Sequence{anchor: anchor, cadence: p.Cadence, count: -1}
	default:
		return Sequence{anchor: anchor, cadence: OneTime, count: 1}
	}
}

// Bounded reports whether the sequence has a terminal date.
func (s Sequence) Bounded() bool { return s.count >= 0 }

// Len returns the number of dates, and false for open-ended sequences.
func (s Sequence) Len() (int, bool) {
	if !s.Bounded() {
		return 0, false
	}
	return s.count, true
}

// At returns the i-th due date (0-based), computed from the anchor.
func (s Sequence) At(i int) (time.Time, bool) {
	if i < 0 || (s.Bounded() && i >= s.count) {
		return time.Time{}, false
	}
	switch s.cadence {
	case Monthly:
		return AddMonths(s.anchor, i), true
	case Weekly:
		return s.anchor.AddDate(0, 0, 7*i), true
	default:
		return s.anchor, i == 0
	}
}

// First returns the anchor date.
func (s Sequence) First() time.Time { return s.anchor }

// Last returns the terminal due date, and false for open-ended sequences.
func (s Sequence) Last() (time.Time, bool) {
	if !s.Bounded() || s.count == 0 {
		return time.Time{}, false
	}
	return s.At(s.count - 1)
}

// All yields every due date in order. For open-ended sequences the iterator
// never ends on its own; the consumer must stop. Each call restarts at the
// anchor.
func (s Sequence) All() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for i := 0; ; i++ {
			d, ok := s.At(i)
			if !ok || !yield(d) {
				return
			}
		}
	}
}

// Take returns at most n due dates from the start.
func (s Sequence) Take(n int) []time.Time {
	if n <= 0 {
		return nil
	}
	if size, ok := s.Len(); ok && size < n {
		n = size
	}
	dates := make([]time.Time, 0, n)
	for d := range s.All() {
		dates = append(dates, d)
		if len(dates) == n {
			break
		}
	}
	return dates
}

// Until returns the due dates on or before end.
func (s Sequence) Until(end time.Time) []time.Time {
	end = DateOf(end)
	var dates []time.Time
	for d := range s.All() {
		if d.After(end) {
			break
		}
		dates = append(dates, d)
	}
	return dates
}

// Between returns the due dates in [from, to], with their indexes.
func (s Sequence) Between(from, to time.Time) []Indexed {
	from, to = DateOf(from), DateOf(to)
	var out []Indexed
	i := 0
	for d := range s.All() {
		if d.After(to) {
			break
		}
		if !d.Before(from) {
			out = append(out, Indexed{Index: i, Date: d})
		}
		i++
	}
	return out
}

// Indexed is a due date with its 0-based position in the sequence.
type Indexed struct {
	Index int
	Date  time.Time
}
