package scheduler

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mmynk/debtplan/internal/money"
)

// OverpaymentPolicy decides what happens to a payment larger than the
// outstanding balance.
type OverpaymentPolicy int

const (
	// AllowOverpayment records the payment and clamps the balance at zero.
	AllowOverpayment OverpaymentPolicy = iota
	// RejectOverpayment refuses the payment with ErrOverpayment.
	RejectOverpayment
)

// ParseOverpaymentPolicy accepts "allow" (default when empty) or "reject".
func ParseOverpaymentPolicy(s string) (OverpaymentPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "allow", "clamp":
		return AllowOverpayment, nil
	case "reject":
		return RejectOverpayment, nil
	default:
		return AllowOverpayment, fmt.Errorf("unknown overpayment policy %q", s)
	}
}

func (p OverpaymentPolicy) String() string {
	if p == RejectOverpayment {
		return "reject"
	}
	return "allow"
}

// OutstandingBalance is max(0, total - sum of payments).
func OutstandingBalance(o Obligation, payments []Payment) money.Amount {
	return o.TotalAmount.Sub(PaidTotal(payments)).ClampZero()
}

// AccruedBalance is what has come due through asOf minus what was paid,
// clamped at zero. For recurring obligations this is the running balance;
// for bounded ones it never exceeds OutstandingBalance.
func AccruedBalance(o Obligation, payments []Payment, asOf time.Time) money.Amount {
	due := money.Zero
	for i := range DueDates(o).Until(asOf) {
		due = due.Add(OccurrenceAmount(o, i))
	}
	return due.Sub(PaidTotal(payments)).ClampZero()
}

// PaymentResult is the outcome of ApplyPayment.
type PaymentResult struct {
	// Payments is the payment set including the new payment.
	Payments []Payment
	// Outstanding is the balance after the payment, never negative.
	Outstanding money.Amount
	// Overpaid is how much the payments exceed the total, if at all.
	Overpaid money.Amount
	// Settles reports whether the payment covers the balance that was
	// outstanding before it. It does not mark the obligation paid; that is
	// the caller's explicit settle action.
	Settles bool
}

// ApplyPayment adds p to the payment set and recomputes the balance.
func ApplyPayment(o Obligation, payments []Payment, p Payment, policy OverpaymentPolicy) (PaymentResult, error) {
	if o.Paid {
		return PaymentResult{}, ErrAlreadyPaid
	}
	if !p.Amount.IsPositive() {
		return PaymentResult{}, invalid("amount", "must be greater than zero")
	}

	before := OutstandingBalance(o, payments)
	if policy == RejectOverpayment && p.Amount.Cmp(before) > 0 {
		return PaymentResult{}, fmt.Errorf("%w: paying %s against %s", ErrOverpayment, p.Amount, before)
	}

	all := append(slices.Clone(payments), p)
	paid := PaidTotal(all)
	return PaymentResult{
		Payments:    all,
		Outstanding: o.TotalAmount.Sub(paid).ClampZero(),
		Overpaid:    paid.Sub(o.TotalAmount).ClampZero(),
		Settles:     p.Amount.Cmp(before) >= 0,
	}, nil
}

// Settlement is the pay-in-full action computed by Settle.
type Settlement struct {
	// Remaining is the amount to record so the balance reaches zero. It is
	// zero when payments already cover the total.
	Remaining money.Amount
	// Obligation is the settled obligation (Paid set).
	Obligation Obligation
}

// Settle computes the pay-in-full transition: the remaining balance to
// record and the obligation marked paid.
func Settle(o Obligation, payments []Payment) (Settlement, error) {
	if o.Paid {
		return Settlement{}, ErrAlreadyPaid
	}
	settled := o
	settled.Paid = true
	return Settlement{
		Remaining:  OutstandingBalance(o, payments),
		Obligation: settled,
	}, nil
}

// PlanLocked reports whether the plan of an obligation with these payments
// is frozen.
func PlanLocked(payments []Payment) bool {
	return len(payments) > 0
}

// CheckPlanChange returns ErrPlanLocked when payments exist and the plan
// differs from the current one.
func CheckPlanChange(current, next Plan, payments []Payment) error {
	if PlanLocked(payments) && !SamePlan(current, next) {
		return ErrPlanLocked
	}
	return nil
}
