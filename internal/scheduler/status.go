package scheduler

import (
	"time"

	"github.com/mmynk/debtplan/internal/money"
)

// Status is the lifecycle state of an obligation.
type Status string

const (
	StatusActive  Status = "active"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// CanTransition reports whether the lifecycle allows moving from one status
// to another. Paid is terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusActive:
		return to == StatusPaid || to == StatusOverdue
	case StatusOverdue:
		// back to active only when the due date is corrected by an edit
		return to == StatusPaid || to == StatusActive
	default:
		return false
	}
}

// OccurrenceAmount is the charge of the i-th occurrence. Installment plans
// split the total across installments (remainder on the last); recurring
// plans charge the full amount each time.
func OccurrenceAmount(o Obligation, i int) money.Amount {
	switch p := o.Plan.(type) {
	case InstallmentPlan:
		if i < 0 || i >= p.Count {
			return money.Zero
		}
		return o.TotalAmount.Share(p.Count, i)
	case RecurringPlan:
		if i < 0 {
			return money.Zero
		}
		return o.TotalAmount
	default:
		if i != 0 {
			return money.Zero
		}
		return o.TotalAmount
	}
}

// PaidTotal sums the payment amounts.
func PaidTotal(payments []Payment) money.Amount {
	total := money.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// CoveredOccurrences counts the leading occurrences fully paid by the
// cumulative payments. An obligation without an amount covers nothing.
func CoveredOccurrences(o Obligation, payments []Payment) int {
	total := o.TotalAmount.Cents()
	if total <= 0 {
		return 0
	}
	paid := PaidTotal(payments).Cents()
	if paid <= 0 {
		return 0
	}

	switch p := o.Plan.(type) {
	case InstallmentPlan:
		if paid >= total {
			return p.Count
		}
		// Leading shares round down to zero when the total has fewer cents
		// than installments; they are covered only with the last share.
		share := total / int64(p.Count)
		if share == 0 {
			return 0
		}
		return int(min(paid/share, int64(p.Count-1)))
	case RecurringPlan:
		return int(paid / total)
	default:
		if paid >= total {
			return 1
		}
		return 0
	}
}

// RelevantDueDate is the first due date not covered by payments. It returns
// false when every occurrence of a bounded schedule is covered.
func RelevantDueDate(o Obligation, payments []Payment) (time.Time, bool) {
	return DueDates(o).At(CoveredOccurrences(o, payments))
}

// NextDueDate is the relevant due date of an unsettled obligation. It
// returns false once the obligation is paid or fully covered.
func NextDueDate(o Obligation, payments []Payment) (time.Time, bool) {
	if o.Paid {
		return time.Time{}, false
	}
	return RelevantDueDate(o, payments)
}

// ClassifyStatus derives the status as of the given date. Paid comes from the
// stored flag; overdue means the relevant due date is strictly before asOf
// (date-only). A due date equal to asOf is not yet overdue.
func ClassifyStatus(o Obligation, payments []Payment, asOf time.Time) Status {
	if o.Paid {
		return StatusPaid
	}
	due, ok := RelevantDueDate(o, payments)
	if ok && due.Before(DateOf(asOf)) {
		return StatusOverdue
	}
	return StatusActive
}

// DaysOverdue is the number of days between the relevant due date and asOf,
// or 0 when the obligation is not overdue.
func DaysOverdue(o Obligation, payments []Payment, asOf time.Time) int {
	if ClassifyStatus(o, payments, asOf) != StatusOverdue {
		return 0
	}
	due, _ := RelevantDueDate(o, payments)
	return int(DateOf(asOf).Sub(due).Hours() / 24)
}

// OccurrenceState is the state of a single scheduled occurrence.
type OccurrenceState string

const (
	OccurrencePaid    OccurrenceState = "paid"
	OccurrenceOverdue OccurrenceState = "overdue"
	OccurrencePending OccurrenceState = "pending"
	// OccurrenceClosed marks uncovered occurrences of a settled obligation.
	OccurrenceClosed OccurrenceState = "closed"
)

// Occurrence is one row of a schedule.
type Occurrence struct {
	Index   int
	DueDate time.Time
	Amount  money.Amount
	State   OccurrenceState
}

// Occurrences lists up to limit occurrences with their state as of asOf.
// Bounded schedules are listed in full when limit <= 0; open-ended ones
// return nothing without a positive limit.
func Occurrences(o Obligation, payments []Payment, asOf time.Time, limit int) []Occurrence {
	seq := DueDates(o)
	if size, ok := seq.Len(); ok && (limit <= 0 || limit > size) {
		limit = size
	}
	if limit <= 0 {
		return nil
	}

	covered := CoveredOccurrences(o, payments)
	today := DateOf(asOf)

	out := make([]Occurrence, 0, limit)
	for i, d := range seq.Take(limit) {
		occ := Occurrence{Index: i, DueDate: d, Amount: OccurrenceAmount(o, i)}
		switch {
		case i < covered:
			occ.State = OccurrencePaid
		case o.Paid:
			occ.State = OccurrenceClosed
		case d.Before(today):
			occ.State = OccurrenceOverdue
		default:
			occ.State = OccurrencePending
		}
		out = append(out, occ)
	}
	return out
}
