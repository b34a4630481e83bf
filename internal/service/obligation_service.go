package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/debtplan/internal/config"
	"github.com/mmynk/debtplan/internal/metrics"
	"github.com/mmynk/debtplan/internal/models"
	"github.com/mmynk/debtplan/internal/money"
	"github.com/mmynk/debtplan/internal/scheduler"
	"github.com/mmynk/debtplan/internal/storage"
	"github.com/mmynk/debtplan/pkg/api"
)

// ObligationOptions configures an ObligationService. Zero values fall back
// to the defaults used by the server config.
type ObligationOptions struct {
	Formatter *money.Formatter
	Location  *time.Location
	Policy    scheduler.OverpaymentPolicy
	// Horizon is the number of occurrences listed for open-ended schedules
	// when the request sets no limit.
	Horizon int
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// ObligationService implements the Connect ObligationService.
type ObligationService struct {
	store     storage.Store
	formatter *money.Formatter
	location  *time.Location
	policy    scheduler.OverpaymentPolicy
	horizon   int
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewObligationService creates an ObligationService backed by store.
func NewObligationService(store storage.Store, opts ObligationOptions) *ObligationService {
	s := &ObligationService{
		store:     store,
		formatter: opts.Formatter,
		location:  opts.Location,
		policy:    opts.Policy,
		horizon:   opts.Horizon,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       time.Now,
	}
	if s.formatter == nil {
		s.formatter, _ = money.NewFormatter("pt-BR", "BRL")
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.horizon <= 0 {
		s.horizon = 24
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// WithClock replaces the clock used to decide "today". Intended for tests.
func (s *ObligationService) WithClock(now func() time.Time) *ObligationService {
	s.now = now
	return s
}

// today is the current calendar date in the configured location.
func (s *ObligationService) today() time.Time {
	return scheduler.DateOf(s.now().In(s.location))
}

// asOf resolves the optional as_of request field.
func (s *ObligationService) asOf(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return s.today(), nil
	}
	return parseDate("as_of", raw)
}

// CreateObligation validates and stores a new obligation for the caller.
func (s *ObligationService) CreateObligation(ctx context.Context, req *connect.Request[api.CreateObligationRequest]) (*connect.Response[api.CreateObligationResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	o := &models.Obligation{OwnerID: userID}
	if err := applyInput(o, req.Msg.ObligationInput); err != nil {
		return nil, s.fail("CreateObligation", err)
	}
	if err := s.store.CreateObligation(ctx, o); err != nil {
		return nil, s.fail("CreateObligation", fmt.Errorf("failed to create obligation: %w", err))
	}

	dto, err := s.toAPIObligation(o, nil, s.today())
	if err != nil {
		return nil, s.fail("CreateObligation", err)
	}
	s.logger.Info("Obligation created", "user_id", userID, "obligation_id", o.ID, "summary", dto.Summary)
	return connect.NewResponse(&api.CreateObligationResponse{Obligation: dto}), nil
}

// GetObligation returns one obligation with its derived fields.
func (s *ObligationService) GetObligation(ctx context.Context, req *connect.Request[api.GetObligationRequest]) (*connect.Response[api.GetObligationResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	asOf, err := s.asOf(req.Msg.AsOf)
	if err != nil {
		return nil, s.fail("GetObligation", err)
	}

	o, payments, err := s.load(ctx, userID, req.Msg.ID)
	if err != nil {
		return nil, s.fail("GetObligation", err)
	}
	dto, err := s.toAPIObligation(o, payments, asOf)
	if err != nil {
		return nil, s.fail("GetObligation", err)
	}
	return connect.NewResponse(&api.GetObligationResponse{Obligation: dto}), nil
}

// ListObligations returns the caller's obligations, optionally narrowed by
// derived status and category.
func (s *ObligationService) ListObligations(ctx context.Context, req *connect.Request[api.ListObligationsRequest]) (*connect.Response[api.ListObligationsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	asOf, err := s.asOf(req.Msg.AsOf)
	if err != nil {
		return nil, s.fail("ListObligations", err)
	}

	// overdue is never stored, so active and overdue share the stored filter
	filter := storage.ObligationFilter{CategoryID: req.Msg.CategoryID}
	want := scheduler.Status(strings.ToLower(strings.TrimSpace(req.Msg.Status)))
	switch want {
	case "":
	case scheduler.StatusPaid:
		filter.Status = models.StatusPaid
	case scheduler.StatusActive, scheduler.StatusOverdue:
		filter.Status = models.StatusActive
	default:
		return nil, s.fail("ListObligations", &scheduler.ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("must be active, overdue or paid, got %q", req.Msg.Status),
		})
	}

	obligations, payments, err := s.loadAll(ctx, userID, filter)
	if err != nil {
		return nil, s.fail("ListObligations", err)
	}

	out := make([]*api.Obligation, 0, len(obligations))
	for _, o := range obligations {
		dto, err := s.toAPIObligation(o, payments[o.ID], asOf)
		if err != nil {
			return nil, s.fail("ListObligations", err)
		}
		if want != "" && dto.Status != string(want) {
			continue
		}
		out = append(out, dto)
	}
	return connect.NewResponse(&api.ListObligationsResponse{Obligations: out}), nil
}

// UpdateObligation replaces the editable fields. The payment plan is frozen
// once a payment exists; the settlement state is never touched.
func (s *ObligationService) UpdateObligation(ctx context.Context, req *connect.Request[api.UpdateObligationRequest]) (*connect.Response[api.UpdateObligationResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	current, payments, err := s.load(ctx, userID, req.Msg.ID)
	if err != nil {
		return nil, s.fail("UpdateObligation", err)
	}
	currentPlan, err := current.Plan()
	if err != nil {
		return nil, s.fail("UpdateObligation", fmt.Errorf("stored obligation %s: %w", current.ID, err))
	}

	next := *current
	if err := applyInput(&next, req.Msg.ObligationInput); err != nil {
		return nil, s.fail("UpdateObligation", err)
	}
	nextPlan, err := next.Plan()
	if err != nil {
		return nil, s.fail("UpdateObligation", err)
	}
	if err := scheduler.CheckPlanChange(currentPlan, nextPlan, models.SchedulerPayments(payments)); err != nil {
		s.observeRejection(err)
		return nil, s.fail("UpdateObligation", err)
	}

	if err := s.store.UpdateObligation(ctx, &next); err != nil {
		return nil, s.fail("UpdateObligation", fmt.Errorf("failed to update obligation: %w", err))
	}

	dto, err := s.toAPIObligation(&next, payments, s.today())
	if err != nil {
		return nil, s.fail("UpdateObligation", err)
	}
	s.logger.Info("Obligation updated", "user_id", userID, "obligation_id", next.ID)
	return connect.NewResponse(&api.UpdateObligationResponse{Obligation: dto}), nil
}

// DeleteObligation removes an obligation together with its payments.
func (s *ObligationService) DeleteObligation(ctx context.Context, req *connect.Request[api.DeleteObligationRequest]) (*connect.Response[api.DeleteObligationResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteObligation(ctx, userID, req.Msg.ID); err != nil {
		return nil, s.fail("DeleteObligation", fmt.Errorf("failed to delete obligation %s: %w", req.Msg.ID, err))
	}
	s.logger.Info("Obligation deleted", "user_id", userID, "obligation_id", req.Msg.ID)
	return connect.NewResponse(&api.DeleteObligationResponse{}), nil
}

// GetSchedule lists the occurrences of an obligation with their state.
func (s *ObligationService) GetSchedule(ctx context.Context, req *connect.Request[api.GetScheduleRequest]) (*connect.Response[api.GetScheduleResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	sched, err := s.schedule(ctx, userID, req.Msg.ID, req.Msg.Limit, req.Msg.AsOf)
	if err != nil {
		return nil, s.fail("GetSchedule", err)
	}

	occurrences := make([]*api.Occurrence, 0, len(sched.occurrences))
	for _, occ := range sched.occurrences {
		occurrences = append(occurrences, &api.Occurrence{
			Index:           occ.Index,
			DueDate:         occ.DueDate.Format(scheduler.DateLayout),
			Amount:          occ.Amount.String(),
			FormattedAmount: s.formatter.Format(occ.Amount),
			State:           string(occ.State),
		})
	}
	return connect.NewResponse(&api.GetScheduleResponse{
		Obligation:  sched.dto,
		Occurrences: occurrences,
		Truncated:   sched.truncated,
	}), nil
}

// schedule is the data shared by GetSchedule and ExportSchedule.
type schedule struct {
	asOf        time.Time
	dto         *api.Obligation
	obligation  scheduler.Obligation
	payments    []scheduler.Payment
	occurrences []scheduler.Occurrence
	truncated   bool
}

func (s *ObligationService) schedule(ctx context.Context, userID, id string, limit int, rawAsOf string) (*schedule, error) {
	asOf, err := s.asOf(rawAsOf)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, &scheduler.ValidationError{Field: "limit", Reason: "must not be negative"}
	}
	limit = min(limit, config.MaxScheduleHorizon)

	o, payments, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	dto, err := s.toAPIObligation(o, payments, asOf)
	if err != nil {
		return nil, err
	}
	so, err := o.ToScheduler()
	if err != nil {
		return nil, err
	}

	size, bounded := scheduler.DueDates(so).Len()
	switch {
	case limit == 0 && bounded:
		limit = min(size, config.MaxScheduleHorizon)
	case limit == 0:
		limit = s.horizon
	}
	sp := models.SchedulerPayments(payments)
	occurrences := scheduler.Occurrences(so, sp, asOf, limit)
	return &schedule{
		asOf:        asOf,
		dto:         dto,
		obligation:  so,
		payments:    sp,
		occurrences: occurrences,
		truncated:   !bounded || size > len(occurrences),
	}, nil
}

// load fetches an owned obligation and its payments.
func (s *ObligationService) load(ctx context.Context, userID, id string) (*models.Obligation, []*models.Payment, error) {
	if err := requireID(id); err != nil {
		return nil, nil, err
	}
	o, err := s.store.GetObligation(ctx, userID, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get obligation %s: %w", id, err)
	}
	payments, err := s.store.ListPayments(ctx, o.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list payments of %s: %w", id, err)
	}
	return o, payments, nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &scheduler.ValidationError{Field: "id", Reason: "required"}
	}
	return nil
}

// loadAll fetches the owner's obligations and their payments in two queries.
func (s *ObligationService) loadAll(ctx context.Context, userID string, filter storage.ObligationFilter) ([]*models.Obligation, map[string][]*models.Payment, error) {
	obligations, err := s.store.ListObligations(ctx, userID, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list obligations: %w", err)
	}
	ids := make([]string, 0, len(obligations))
	for _, o := range obligations {
		ids = append(ids, o.ID)
	}
	payments, err := s.store.ListPaymentsByObligations(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return obligations, payments, nil
}
