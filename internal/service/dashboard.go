package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/debtplan/internal/export"
	"github.com/mmynk/debtplan/internal/models"
	"github.com/mmynk/debtplan/internal/scheduler"
	"github.com/mmynk/debtplan/internal/storage"
	"github.com/mmynk/debtplan/pkg/api"
)

const (
	defaultHorizonDays = 30
	maxHorizonDays     = 366
)

// GetDashboard aggregates the caller's obligations and lists the uncovered
// occurrences due in the next HorizonDays days.
func (s *ObligationService) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	asOf, err := s.asOf(req.Msg.AsOf)
	if err != nil {
		return nil, s.fail("GetDashboard", err)
	}
	days := req.Msg.HorizonDays
	switch {
	case days == 0:
		days = defaultHorizonDays
	case days < 0 || days > maxHorizonDays:
		return nil, s.fail("GetDashboard", &scheduler.ValidationError{
			Field:  "horizon_days",
			Reason: "must be between 1 and 366",
		})
	}

	obligations, payments, err := s.loadAll(ctx, userID, storage.ObligationFilter{})
	if err != nil {
		return nil, s.fail("GetDashboard", err)
	}
	items := make([]scheduler.Item, 0, len(obligations))
	for _, o := range obligations {
		so, err := o.ToScheduler()
		if err != nil {
			s.logger.Warn("Skipping malformed obligation", "obligation_id", o.ID, "error", err)
			continue
		}
		items = append(items, scheduler.Item{
			ID:         o.ID,
			Obligation: so,
			Payments:   models.SchedulerPayments(payments[o.ID]),
		})
	}

	totals := scheduler.ComputeTotals(items, asOf)
	resp := &api.GetDashboardResponse{
		AsOf:                 asOf.Format(scheduler.DateLayout),
		Count:                totals.Count,
		Active:               totals.Active,
		Overdue:              totals.Overdue,
		Paid:                 totals.Paid,
		TotalAmount:          totals.TotalAmount.String(),
		PaidAmount:           totals.PaidAmount.String(),
		Outstanding:          totals.Outstanding.String(),
		OverdueAmount:        totals.OverdueDue.String(),
		FormattedOutstanding: s.formatter.Format(totals.Outstanding),
		NextDueTitle:         totals.NextDueTitle,
	}
	if !totals.NextDueDate.IsZero() {
		resp.NextDueDate = totals.NextDueDate.Format(scheduler.DateLayout)
	}

	upcoming := scheduler.Upcoming(items, asOf, asOf.AddDate(0, 0, days-1))
	resp.Upcoming = make([]*api.UpcomingDue, 0, len(upcoming))
	for _, u := range upcoming {
		resp.Upcoming = append(resp.Upcoming, &api.UpcomingDue{
			ObligationID:    u.ID,
			Title:           u.Title,
			Index:           u.Index,
			DueDate:         u.Date.Format(scheduler.DateLayout),
			Amount:          u.Amount.String(),
			FormattedAmount: s.formatter.Format(u.Amount),
		})
	}
	return connect.NewResponse(resp), nil
}

// ExportSchedule renders the schedule of an obligation as an XLSX workbook.
func (s *ObligationService) ExportSchedule(ctx context.Context, req *connect.Request[api.ExportScheduleRequest]) (*connect.Response[api.ExportScheduleResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	sched, err := s.schedule(ctx, userID, req.Msg.ID, req.Msg.Limit, req.Msg.AsOf)
	if err != nil {
		return nil, s.fail("ExportSchedule", err)
	}

	content, err := export.ScheduleWorkbook(export.Schedule{
		Title:       sched.obligation.Title,
		Summary:     sched.dto.Summary,
		Status:      scheduler.Status(sched.dto.Status),
		AsOf:        sched.asOf,
		Occurrences: sched.occurrences,
		Paid:        scheduler.PaidTotal(sched.payments),
		Outstanding: scheduler.OutstandingBalance(sched.obligation, sched.payments),
		Format:      s.formatter.Format,
	})
	if err != nil {
		return nil, s.fail("ExportSchedule", err)
	}

	s.logger.Info("Schedule exported", "user_id", userID, "obligation_id", req.Msg.ID, "rows", len(sched.occurrences))
	return connect.NewResponse(&api.ExportScheduleResponse{
		Filename:    export.Filename(sched.obligation.Title, sched.asOf),
		ContentType: export.ContentType,
		Content:     content,
	}), nil
}
