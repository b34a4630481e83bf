package models

import (
	"cmp"
	"slices"
	"time"

	"github.com/mmynk/debtplan/internal/money"
	"github.com/mmynk/debtplan/internal/scheduler"
)

// Payment is an amount recorded against an obligation. Payments are deleted
// together with their obligation.
type Payment struct {
	ID           string
	ObligationID string
	Amount       money.Amount
	PaymentDate  time.Time // date-only
	Notes        string
	CreatedAt    int64
}

// SchedulerPayments converts stored payments for the scheduler.
func SchedulerPayments(payments []*Payment) []scheduler.Payment {
	out := make([]scheduler.Payment, 0, len(payments))
	for _, p := range payments {
		out = append(out, scheduler.Payment{Amount: p.Amount, PaymentDate: p.PaymentDate})
	}
	return out
}

// SortPayments orders payments by payment date, then creation time and ID,
// matching the order stores list them in.
func SortPayments(payments []*Payment) {
	slices.SortFunc(payments, func(a, b *Payment) int {
		if c := a.PaymentDate.Compare(b.PaymentDate); c != 0 {
			return c
		}
		if c := cmp.Compare(a.CreatedAt, b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
