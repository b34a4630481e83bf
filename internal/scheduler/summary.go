package scheduler

import (
	"fmt"
	"time"

	"github.com/mmynk/debtplan/internal/money"
)

// DateLayout is the date format used in summaries and on the wire.
const DateLayout = "2006-01-02"

// ScheduleKind classifies the shape of a schedule.
type ScheduleKind string

const (
	KindSingle    ScheduleKind = "single"
	KindTerminal  ScheduleKind = "terminal"
	KindOpenEnded ScheduleKind = "open-ended"
)

// Summary is the human-facing description of a schedule.
type Summary struct {
	Kind         ScheduleKind
	Frequency    Frequency
	Installments int // 0 unless Kind is KindTerminal
	First        time.Time
	Last         time.Time // zero for open-ended schedules
	// PerOccurrence is the charge of each occurrence; for installments it is
	// the regular share (the last one may differ by the rounding remainder).
	PerOccurrence money.Amount
}

// Summarize derives the schedule summary of o.
func Summarize(o Obligation) Summary {
	seq := DueDates(o)
	s := Summary{
		Frequency:     o.Plan.Frequency(),
		First:         seq.First(),
		PerOccurrence: OccurrenceAmount(o, 0),
	}
	switch p := o.Plan.(type) {
	case InstallmentPlan:
		s.Kind = KindTerminal
		s.Installments = p.Count
		s.Last, _ = seq.Last()
	case RecurringPlan:
		s.Kind = KindOpenEnded
	default:
		s.Kind = KindSingle
		s.Last = s.First
	}
	return s
}

// String renders the summary, e.g.
// "12 monthly installments starting 2024-01-31, last installment 2024-12-31".
func (s Summary) String() string {
	first := s.First.Format(DateLayout)
	switch s.Kind {
	case KindTerminal:
		if s.Installments == 1 {
			return fmt.Sprintf("1 %s installment due %s, last installment %s",
				s.Frequency, first, s.Last.Format(DateLayout))
		}
		return fmt.Sprintf("%d %s installments starting %s, last installment %s",
			s.Installments, s.Frequency, first, s.Last.Format(DateLayout))
	case KindOpenEnded:
		return fmt.Sprintf("%s, recurring from %s with no end date", s.Frequency, first)
	default:
		return fmt.Sprintf("one-time payment due %s", first)
	}
}
