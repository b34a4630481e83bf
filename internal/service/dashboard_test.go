package service

import (
	"bytes"
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/debtplan/internal/export"
	"github.com/mmynk/debtplan/pkg/api"
)

func TestGetDashboard(t *testing.T) {
	env := setupTestEnv(t, ObligationOptions{})
	ctx := context.Background()
	token := env.register(t, "ana@example.com")

	rent := env.create(t, token, api.ObligationInput{Title: "Rent", TotalAmount: "900", PaymentFrequency: "monthly", IsRecurring: true, AnchorDueDate: "2024-01-05"})
	env.create(t, token, api.ObligationInput{Title: "Gym", TotalAmount: "50", PaymentFrequency: "weekly", IsRecurring: true, AnchorDueDate: "2024-03-12"})
	done := env.create(t, token, api.ObligationInput{Title: "Fine", TotalAmount: "75", PaymentFrequency: "one-time", AnchorDueDate: "2024-02-01"})

	// covers January and February
	if _, err := env.obligations.RecordPayment(ctx, authed(token, &api.RecordPaymentRequest{ObligationID: rent.ID, Amount: "1800", PaymentDate: "2024-02-01"})); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if _, err := env.obligations.SettleObligation(ctx, authed(token, &api.SettleObligationRequest{ObligationID: done.ID})); err != nil {
		t.Fatalf("SettleObligation failed: %v", err)
	}

	resp, err := env.obligations.GetDashboard(ctx, authed(token, &api.GetDashboardRequest{}))
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	d := resp.Msg
	if d.AsOf != "2024-03-10" || d.Count != 3 || d.Active != 1 || d.Overdue != 1 || d.Paid != 1 {
		t.Errorf("counts = %+v", d)
	}
	if d.TotalAmount != "1025.00" || d.PaidAmount != "1875.00" {
		t.Errorf("amounts: total %s, paid %s", d.TotalAmount, d.PaidAmount)
	}
	if d.NextDueDate != "2024-03-05" || d.NextDueTitle != "Rent" {
		t.Errorf("next due = %s %s", d.NextDueDate, d.NextDueTitle)
	}

	// window 2024-03-10 .. 2024-04-08
	want := []struct{ title, date string }{
		{"Gym", "2024-03-12"},
		{"Gym", "2024-03-19"},
		{"Gym", "2024-03-26"},
		{"Gym", "2024-04-02"},
		{"Rent", "2024-04-05"},
	}
	if len(d.Upcoming) != len(want) {
		t.Fatalf("upcoming = %d items, want %d", len(d.Upcoming), len(want))
	}
	for i, w := range want {
		if d.Upcoming[i].Title != w.title || d.Upcoming[i].DueDate != w.date {
			t.Errorf("upcoming[%d] = %s %s, want %s %s", i, d.Upcoming[i].Title, d.Upcoming[i].DueDate, w.title, w.date)
		}
	}
	if d.Upcoming[4].Index != 3 || d.Upcoming[4].Amount != "900.00" {
		t.Errorf("rent occurrence = %+v", d.Upcoming[4])
	}

	t.Run("custom window and as_of", func(t *testing.T) {
		resp, err := env.obligations.GetDashboard(ctx, authed(token, &api.GetDashboardRequest{AsOf: "2024-03-12", HorizonDays: 1}))
		if err != nil {
			t.Fatalf("GetDashboard failed: %v", err)
		}
		if len(resp.Msg.Upcoming) != 1 || resp.Msg.Upcoming[0].DueDate != "2024-03-12" {
			t.Errorf("upcoming = %+v", resp.Msg.Upcoming)
		}
	})

	t.Run("rejects a negative window", func(t *testing.T) {
		_, err := env.obligations.GetDashboard(ctx, authed(token, &api.GetDashboardRequest{HorizonDays: -1}))
		wantCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestExportSchedule(t *testing.T) {
	env := setupTestEnv(t, ObligationOptions{})
	ctx := context.Background()
	token := env.register(t, "ana@example.com")

	o := env.create(t, token, api.ObligationInput{Title: "Car Loan", TotalAmount: "12000", PaymentFrequency: "monthly", Installments: intPtr(12), AnchorDueDate: "2024-01-31"})
	if _, err := env.obligations.RecordPayment(ctx, authed(token, &api.RecordPaymentRequest{ObligationID: o.ID, Amount: "1000"})); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	resp, err := env.obligations.ExportSchedule(ctx, authed(token, &api.ExportScheduleRequest{ID: o.ID}))
	if err != nil {
		t.Fatalf("ExportSchedule failed: %v", err)
	}
	if resp.Msg.Filename != "car-loan-2024-03-10.xlsx" || resp.Msg.ContentType != export.ContentType {
		t.Errorf("file = %s (%s)", resp.Msg.Filename, resp.Msg.ContentType)
	}

	f, err := excelize.OpenReader(bytes.NewReader(resp.Msg.Content))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Schedule")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if rows[0][0] != "Car Loan" {
		t.Errorf("title cell = %q", rows[0][0])
	}
	// header at row 4, occurrences from row 5
	first, last := rows[4], rows[15]
	if first[1] != "2024-01-31" || first[4] != "paid" {
		t.Errorf("first occurrence row = %v", first)
	}
	if last[1] != "2024-12-31" || last[4] != "pending" {
		t.Errorf("last occurrence row = %v", last)
	}

	_, err = env.obligations.ExportSchedule(ctx, authed(token, &api.ExportScheduleRequest{ID: o.ID, Limit: -1}))
	wantCode(t, err, connect.CodeInvalidArgument)
}
