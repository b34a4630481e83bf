package models

import (
	"time"

	"github.com/mmynk/debtplan/internal/money"
	"github.com/mmynk/debtplan/internal/scheduler"
)

// Stored obligation statuses. Overdue is never stored.
const (
	StatusActive = string(scheduler.StatusActive)
	StatusPaid   = string(scheduler.StatusPaid)
)

// Obligation represents a debt owned by a user.
type Obligation struct {
	// ID is the unique identifier for the obligation (UUID format).
	ID string

	// OwnerID is the user who owns this obligation.
	OwnerID string

	// Title is the display name (e.g., "Car loan", "Rent").
	Title string

	// CategoryID optionally references a category managed elsewhere.
	CategoryID string

	// Description is free text with no effect on the schedule.
	Description string

	// TotalAmount is the amount owed. For recurring obligations it is the
	// charge of each occurrence. May be zero when the user fills it in later.
	TotalAmount money.Amount

	// Frequency is "monthly", "weekly" or "one-time".
	Frequency string

	// IsRecurring marks an open-ended monthly or weekly obligation.
	IsRecurring bool

	// Installments is the number of occurrences of a non-recurring monthly or
	// weekly obligation; nil otherwise.
	Installments *int

	// AnchorDueDate is the first due date.
	AnchorDueDate time.Time

	// Status is the stored lifecycle fact: StatusActive or StatusPaid.
	Status string

	// PaidAt is the Unix timestamp of the settlement; zero while active.
	PaidAt int64

	// CreatedAt is the Unix timestamp when the obligation was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last edit.
	UpdatedAt int64
}

// IsPaid reports whether the obligation was settled.
func (o *Obligation) IsPaid() bool {
	return o.Status == StatusPaid
}

// Plan builds the validated payment plan from the stored fields.
func (o *Obligation) Plan() (scheduler.Plan, error) {
	freq, err := scheduler.ParseFrequency(o.Frequency)
	if err != nil {
		return nil, err
	}
	return scheduler.NewPlan(freq, o.IsRecurring, o.Installments)
}

// SetPlan stores plan in the loose persisted shape.
func (o *Obligation) SetPlan(plan scheduler.Plan) {
	freq, recurring, n := scheduler.PlanFields(plan)
	o.Frequency = string(freq)
	o.IsRecurring = recurring
	o.Installments = n
}

// ToScheduler converts the record into the scheduler's view.
func (o *Obligation) ToScheduler() (scheduler.Obligation, error) {
	plan, err := o.Plan()
	if err != nil {
		return scheduler.Obligation{}, err
	}
	return scheduler.Obligation{
		Title:         o.Title,
		TotalAmount:   o.TotalAmount,
		Plan:          plan,
		AnchorDueDate: o.AnchorDueDate,
		Paid:          o.IsPaid(),
	}, nil
}
