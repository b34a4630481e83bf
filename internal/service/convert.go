package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/debtplan/internal/auth"
	"github.com/mmynk/debtplan/internal/middleware"
	"github.com/mmynk/debtplan/internal/models"
	"github.com/mmynk/debtplan/internal/money"
	"github.com/mmynk/debtplan/internal/scheduler"
	"github.com/mmynk/debtplan/internal/storage"
	"github.com/mmynk/debtplan/pkg/api"
)

// requireUser returns the authenticated user ID set by the auth interceptor.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// codeOf maps domain errors to Connect codes.
func codeOf(err error) connect.Code {
	var ce *connect.Error
	switch {
	case errors.As(err, &ce):
		return ce.Code()
	case scheduler.IsValidationError(err), errors.Is(err, money.ErrInvalidAmount):
		return connect.CodeInvalidArgument
	case errors.Is(err, storage.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, scheduler.ErrAlreadyPaid),
		errors.Is(err, scheduler.ErrPlanLocked),
		errors.Is(err, scheduler.ErrOverpayment):
		return connect.CodeFailedPrecondition
	default:
		return connect.CodeInternal
	}
}

// fail logs err at a level matching its cause and converts it to a Connect
// error.
func (s *ObligationService) fail(op string, err error) error {
	code := codeOf(err)
	if code == connect.CodeInternal {
		s.logger.Error(op+" failed", "error", err)
	} else {
		s.logger.Warn(op+" rejected", "code", code.String(), "error", err)
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	return connect.NewError(code, err)
}

func parseDate(field, raw string) (time.Time, error) {
	d, err := time.Parse(scheduler.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &scheduler.ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("must be a YYYY-MM-DD date, got %q", raw),
		}
	}
	return d, nil
}

func parseAmount(field, raw string) (money.Amount, error) {
	a, err := money.Parse(raw)
	if err != nil {
		return money.Zero, &scheduler.ValidationError{Field: field, Reason: err.Error()}
	}
	return a, nil
}

// applyInput copies validated input onto o. The stored settlement state is
// left untouched.
func applyInput(o *models.Obligation, in api.ObligationInput) error {
	total := money.Zero
	if strings.TrimSpace(in.TotalAmount) != "" {
		var err error
		if total, err = parseAmount("total_amount", in.TotalAmount); err != nil {
			return err
		}
	}

	freq, err := scheduler.ParseFrequency(in.PaymentFrequency)
	if err != nil {
		return err
	}
	plan, err := scheduler.NewPlan(freq, in.IsRecurring, in.Installments)
	if err != nil {
		return err
	}

	if strings.TrimSpace(in.AnchorDueDate) == "" {
		return &scheduler.ValidationError{Field: "anchor_due_date", Reason: "required"}
	}
	anchor, err := parseDate("anchor_due_date", in.AnchorDueDate)
	if err != nil {
		return err
	}

	candidate := scheduler.Obligation{
		Title:         strings.TrimSpace(in.Title),
		TotalAmount:   total,
		Plan:          plan,
		AnchorDueDate: anchor,
	}
	if err := candidate.Validate(); err != nil {
		return err
	}

	o.Title = candidate.Title
	o.CategoryID = strings.TrimSpace(in.CategoryID)
	o.Description = in.Description
	o.TotalAmount = total
	o.AnchorDueDate = anchor
	o.SetPlan(plan)
	return nil
}

// toAPIObligation builds the response view of o with every field derived as
// of asOf.
func (s *ObligationService) toAPIObligation(o *models.Obligation, payments []*models.Payment, asOf time.Time) (*api.Obligation, error) {
	so, err := o.ToScheduler()
	if err != nil {
		return nil, fmt.Errorf("stored obligation %s: %w", o.ID, err)
	}
	sp := models.SchedulerPayments(payments)
	summary := scheduler.Summarize(so)
	outstanding := scheduler.OutstandingBalance(so, sp)

	dto := &api.Obligation{
		ID:                   o.ID,
		Title:                o.Title,
		CategoryID:           o.CategoryID,
		Description:          o.Description,
		TotalAmount:          o.TotalAmount.String(),
		PaymentFrequency:     o.Frequency,
		IsRecurring:          o.IsRecurring,
		Installments:         o.Installments,
		AnchorDueDate:        o.AnchorDueDate.Format(scheduler.DateLayout),
		Status:               string(scheduler.ClassifyStatus(so, sp, asOf)),
		PaidAmount:           scheduler.PaidTotal(sp).String(),
		Outstanding:          outstanding.String(),
		AccruedBalance:       scheduler.AccruedBalance(so, sp, asOf).String(),
		CoveredOccurrences:   scheduler.CoveredOccurrences(so, sp),
		DaysOverdue:          scheduler.DaysOverdue(so, sp, asOf),
		ScheduleKind:         string(summary.Kind),
		Summary:              summary.String(),
		PerOccurrence:        summary.PerOccurrence.String(),
		FormattedTotal:       s.formatter.Format(o.TotalAmount),
		FormattedOutstanding: s.formatter.Format(outstanding),
		PlanLocked:           scheduler.PlanLocked(sp),
		PaidAt:               o.PaidAt,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
	if due, ok := scheduler.NextDueDate(so, sp); ok {
		dto.NextDueDate = due.Format(scheduler.DateLayout)
	}
	if !summary.Last.IsZero() {
		dto.LastDueDate = summary.Last.Format(scheduler.DateLayout)
	}
	return dto, nil
}

func (s *ObligationService) toAPIPayment(p *models.Payment) *api.Payment {
	return &api.Payment{
		ID:              p.ID,
		ObligationID:    p.ObligationID,
		Amount:          p.Amount.String(),
		FormattedAmount: s.formatter.Format(p.Amount),
		PaymentDate:     p.PaymentDate.Format(scheduler.DateLayout),
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
	}
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
