package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/debtplan/internal/metrics"
	"github.com/mmynk/debtplan/internal/models"
	"github.com/mmynk/debtplan/internal/money"
	"github.com/mmynk/debtplan/internal/scheduler"
	"github.com/mmynk/debtplan/pkg/api"
)

// RecordPayment adds a payment to an open obligation. A payment covering
// the balance does not settle the obligation; SettleObligation does.
func (s *ObligationService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount("amount", req.Msg.Amount)
	if err != nil {
		return nil, s.fail("RecordPayment", err)
	}
	today := s.today()
	paidOn := today
	if strings.TrimSpace(req.Msg.PaymentDate) != "" {
		if paidOn, err = parseDate("payment_date", req.Msg.PaymentDate); err != nil {
			return nil, s.fail("RecordPayment", err)
		}
	}

	if err := requireID(req.Msg.ObligationID); err != nil {
		return nil, s.fail("RecordPayment", err)
	}

	var (
		result scheduler.PaymentResult
		p      *models.Payment
	)
	o, payments, err := s.store.RecordPayment(ctx, userID, req.Msg.ObligationID,
		func(o *models.Obligation, payments []*models.Payment) (*models.Payment, error) {
			so, err := o.ToScheduler()
			if err != nil {
				return nil, err
			}
			result, err = scheduler.ApplyPayment(so, models.SchedulerPayments(payments),
				scheduler.Payment{Amount: amount, PaymentDate: paidOn}, s.policy)
			if err != nil {
				return nil, err
			}
			p = &models.Payment{Amount: amount, PaymentDate: paidOn, Notes: req.Msg.Notes}
			return p, nil
		})
	if err != nil {
		s.observeRejection(err)
		return nil, s.fail("RecordPayment", fmt.Errorf("failed to record payment: %w", err))
	}

	switch {
	case result.Overpaid.IsPositive():
		s.metrics.ObservePayment(metrics.PaymentOverpaid)
	case result.Settles:
		s.metrics.ObservePayment(metrics.PaymentFull)
	default:
		s.metrics.ObservePayment(metrics.PaymentPartial)
	}

	dto, err := s.toAPIObligation(o, payments, today)
	if err != nil {
		return nil, s.fail("RecordPayment", err)
	}
	s.logger.Info("Payment recorded",
		"user_id", userID,
		"obligation_id", o.ID,
		"amount", amount.String(),
		"outstanding", result.Outstanding.String(),
	)
	return connect.NewResponse(&api.RecordPaymentResponse{
		Payment:        s.toAPIPayment(p),
		Obligation:     dto,
		Overpaid:       result.Overpaid.String(),
		SettlesBalance: result.Settles,
	}), nil
}

// SettleObligation is the pay-in-full action: the remaining balance, when
// positive, is recorded as a payment and the obligation is marked paid.
func (s *ObligationService) SettleObligation(ctx context.Context, req *connect.Request[api.SettleObligationRequest]) (*connect.Response[api.SettleObligationResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	paidOn := s.today()
	if strings.TrimSpace(req.Msg.PaymentDate) != "" {
		if paidOn, err = parseDate("payment_date", req.Msg.PaymentDate); err != nil {
			return nil, s.fail("SettleObligation", err)
		}
	}

	if err := requireID(req.Msg.ObligationID); err != nil {
		return nil, s.fail("SettleObligation", err)
	}

	var settling *models.Payment
	o, payments, err := s.store.SettleObligation(ctx, userID, req.Msg.ObligationID, now.Unix(),
		func(o *models.Obligation, payments []*models.Payment) (*models.Payment, error) {
			so, err := o.ToScheduler()
			if err != nil {
				return nil, err
			}
			settlement, err := scheduler.Settle(so, models.SchedulerPayments(payments))
			if err != nil {
				return nil, err
			}
			if !settlement.Remaining.IsPositive() {
				return nil, nil
			}
			settling = &models.Payment{Amount: settlement.Remaining, PaymentDate: paidOn, Notes: req.Msg.Notes}
			return settling, nil
		})
	if err != nil {
		s.observeRejection(err)
		return nil, s.fail("SettleObligation", fmt.Errorf("failed to settle obligation %s: %w", req.Msg.ObligationID, err))
	}
	s.metrics.ObserveSettlement()

	dto, err := s.toAPIObligation(o, payments, s.today())
	if err != nil {
		return nil, s.fail("SettleObligation", err)
	}

	resp := &api.SettleObligationResponse{Obligation: dto}
	remaining := money.Zero
	if settling != nil {
		resp.SettlingPayment = s.toAPIPayment(settling)
		remaining = settling.Amount
	}
	s.logger.Info("Obligation settled", "user_id", userID, "obligation_id", o.ID, "remaining", remaining.String())
	return connect.NewResponse(resp), nil
}

// ListPayments returns the payments of an owned obligation by date.
func (s *ObligationService) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	_, payments, err := s.load(ctx, userID, req.Msg.ObligationID)
	if err != nil {
		return nil, s.fail("ListPayments", err)
	}

	out := make([]*api.Payment, 0, len(payments))
	paid := money.Zero
	for _, p := range payments {
		out = append(out, s.toAPIPayment(p))
		paid = paid.Add(p.Amount)
	}
	return connect.NewResponse(&api.ListPaymentsResponse{Payments: out, PaidAmount: paid.String()}), nil
}

// DeletePayment removes a payment from an open obligation. Payments of a
// settled obligation are kept so the record stays consistent.
func (s *ObligationService) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	o, payments, err := s.load(ctx, userID, req.Msg.ObligationID)
	if err != nil {
		return nil, s.fail("DeletePayment", err)
	}
	if o.IsPaid() {
		s.observeRejection(scheduler.ErrAlreadyPaid)
		return nil, s.fail("DeletePayment", scheduler.ErrAlreadyPaid)
	}
	if err := s.store.DeletePayment(ctx, o.ID, req.Msg.PaymentID); err != nil {
		return nil, s.fail("DeletePayment", fmt.Errorf("failed to delete payment %s: %w", req.Msg.PaymentID, err))
	}

	remaining := payments[:0]
	for _, p := range payments {
		if p.ID != req.Msg.PaymentID {
			remaining = append(remaining, p)
		}
	}
	dto, err := s.toAPIObligation(o, remaining, s.today())
	if err != nil {
		return nil, s.fail("DeletePayment", err)
	}
	s.logger.Info("Payment deleted", "user_id", userID, "obligation_id", o.ID, "payment_id", req.Msg.PaymentID)
	return connect.NewResponse(&api.DeletePaymentResponse{Obligation: dto}), nil
}

func (s *ObligationService) observeRejection(err error) {
	switch {
	case errors.Is(err, scheduler.ErrAlreadyPaid):
		s.metrics.ObserveRejection("already_paid")
	case errors.Is(err, scheduler.ErrOverpayment):
		s.metrics.ObserveRejection("overpayment")
	case errors.Is(err, scheduler.ErrPlanLocked):
		s.metrics.ObserveRejection("plan_locked")
	}
}
