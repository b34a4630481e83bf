package scheduler

import (
	"sort"
	"time"

	"github.com/mmynk/debtplan/internal/money"
)

// Item pairs an obligation with its payments for aggregate computations.
type Item struct {
	ID         string
	Obligation Obligation
	Payments   []Payment
}

// Totals aggregates a set of obligations as of a date.
type Totals struct {
	Count        int
	Active       int
	Overdue      int
	Paid         int
	TotalAmount  money.Amount // sum of obligation totals
	PaidAmount   money.Amount // sum of all payments
	Outstanding  money.Amount // sum of per-obligation outstanding balances, paid ones excluded
	OverdueDue   money.Amount // outstanding balance of overdue obligations
	NextDueDate  time.Time    // earliest relevant due date among unpaid obligations
	NextDueTitle string
}

// ComputeTotals aggregates items as of asOf.
//
// Algorithm:
// - each obligation is classified independently
// - outstanding balances are clamped per obligation, so one overpayment
//   never hides another obligation's debt
// - settled obligations contribute to counts and paid amounts only
func ComputeTotals(items []Item, asOf time.Time) Totals {
	t := Totals{Count: len(items)}
	for _, it := range items {
		o := it.Obligation
		t.TotalAmount = t.TotalAmount.Add(o.TotalAmount)
		t.PaidAmount = t.PaidAmount.Add(PaidTotal(it.Payments))

		status := ClassifyStatus(o, it.Payments, asOf)
		switch status {
		case StatusPaid:
			t.Paid++
			continue
		case StatusOverdue:
			t.Overdue++
		default:
			t.Active++
		}

		outstanding := OutstandingBalance(o, it.Payments)
		t.Outstanding = t.Outstanding.Add(outstanding)
		if status == StatusOverdue {
			t.OverdueDue = t.OverdueDue.Add(outstanding)
		}

		if due, ok := RelevantDueDate(o, it.Payments); ok {
			if t.NextDueDate.IsZero() || due.Before(t.NextDueDate) {
				t.NextDueDate = due
				t.NextDueTitle = o.Title
			}
		}
	}
	return t
}

// UpcomingDue is one occurrence inside a date window.
type UpcomingDue struct {
	ID     string
	Title  string
	Index  int
	Date   time.Time
	Amount money.Amount
}

// Upcoming lists the uncovered occurrences of unpaid obligations falling in
// [from, to], ordered by date then title.
func Upcoming(items []Item, from, to time.Time) []UpcomingDue {
	var out []UpcomingDue
	for _, it := range items {
		o := it.Obligation
		if o.Paid {
			continue
		}
		covered := CoveredOccurrences(o, it.Payments)
		for _, d := range DueDates(o).Between(from, to) {
			if d.Index < covered {
				continue
			}
			out = append(out, UpcomingDue{
				ID:     it.ID,
				Title:  o.Title,
				Index:  d.Index,
				Date:   d.Date,
				Amount: OccurrenceAmount(o, d.Index),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Title < out[j].Title
	})
	return out
}
