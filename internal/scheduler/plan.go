// Package scheduler derives due-date schedules, lifecycle status and balances
// for recurring, installment and one-time obligations.
//
// Every function is pure: the current date is always passed in as asOf, and
// nothing here performs I/O. Dates are date-only values; see DateOf.
package scheduler

import (
	"strings"
	"time"

	"github.com/mmynk/debtplan/internal/money"
)

// Frequency is the cadence of an obligation.
type Frequency string

const (
	Monthly Frequency = "monthly"
	Weekly  Frequency = "weekly"
	OneTime Frequency = "one-time"
)

// ParseFrequency accepts "monthly", "weekly" and "one-time" (case-insensitive;
// "one_time" and "onetime" are tolerated).
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly":
		return Monthly, nil
	case "weekly":
		return Weekly, nil
	case "one-time", "one_time", "onetime":
		return OneTime, nil
	case "":
		return "", invalid("payment_frequency", "required")
	default:
		return "", invalid("payment_frequency", "unsupported value %q", s)
	}
}

// Plan describes how an obligation repeats. It is one of OneTimePlan,
// InstallmentPlan or RecurringPlan.
type Plan interface {
	Frequency() Frequency
	validate() error
}

// OneTimePlan has a single due date, the anchor.
type OneTimePlan struct{}

// InstallmentPlan has Count due dates spaced by Cadence.
type InstallmentPlan struct {
	Cadence Frequency
	Count   int
}

// MaxInstallments bounds InstallmentPlan.Count: a century of monthly
// installments.
const MaxInstallments = 1200

// RecurringPlan repeats every Cadence with no terminal date.
type RecurringPlan struct {
	Cadence Frequency
}

func (OneTimePlan) Frequency() Frequency       { return OneTime }
func (p InstallmentPlan) Frequency() Frequency { return p.Cadence }
func (p RecurringPlan) Frequency() Frequency   { return p.Cadence }

func (OneTimePlan) validate() error { return nil }

func (p InstallmentPlan) validate() error {
	if err := validateCadence(p.Cadence); err != nil {
		return err
	}
	if p.Count < 1 || p.Count > MaxInstallments {
		return invalid("installments", "must be between 1 and %d, got %d", MaxInstallments, p.Count)
	}
	return nil
}

func (p RecurringPlan) validate() error {
	return validateCadence(p.Cadence)
}

func validateCadence(f Frequency) error {
	if f != Monthly && f != Weekly {
		return invalid("payment_frequency", "cadence must be monthly or weekly, got %q", f)
	}
	return nil
}

// NewPlan builds a Plan from the loose persisted shape. For one-time
// obligations isRecurring and installments are ignored. A non-recurring
// monthly or weekly obligation requires installments >= 1.
func NewPlan(freq Frequency, isRecurring bool, installments *int) (Plan, error) {
	var plan Plan
	switch {
	case freq == OneTime:
		plan = OneTimePlan{}
	case isRecurring:
		plan = RecurringPlan{Cadence: freq}
	case installments == nil:
		return nil, invalid("installments", "required for a non-recurring %s obligation", freq)
	default:
		plan = InstallmentPlan{Cadence: freq, Count: *installments}
	}
	if err := plan.validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// PlanFields maps a Plan back to the persisted shape.
func PlanFields(p Plan) (freq Frequency, isRecurring bool, installments *int) {
	switch p := p.(type) {
	case InstallmentPlan:
		n := p.Count
		return p.Cadence, false, &n
	case RecurringPlan:
		return p.Cadence, true, nil
	default:
		return OneTime, false, nil
	}
}

// SamePlan reports whether a and b describe the same schedule shape.
func SamePlan(a, b Plan) bool {
	return a == b
}

// Obligation is the scheduler's view of a debt.
type Obligation struct {
	Title         string
	TotalAmount   money.Amount
	Plan          Plan
	AnchorDueDate time.Time
	// Paid is the stored settlement flag. It is set only by an explicit
	// pay-in-full action and never cleared.
	Paid bool
}

// Validate checks the obligation is well-formed.
func (o Obligation) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return invalid("title", "required")
	}
	if o.TotalAmount.IsNegative() {
		return invalid("total_amount", "must not be negative")
	}
	if o.Plan == nil {
		return invalid("payment_frequency", "required")
	}
	if err := o.Plan.validate(); err != nil {
		return err
	}
	if o.AnchorDueDate.IsZero() {
		return invalid("anchor_due_date", "required")
	}
	return nil
}

// Payment is a recorded amount against an obligation.
type Payment struct {
	Amount      money.Amount
	PaymentDate time.Time
}
