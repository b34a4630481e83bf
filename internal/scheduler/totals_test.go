package scheduler

import (
	"testing"

	"github.com/mmynk/debtplan/internal/money"
)

func TestComputeTotals(t *testing.T) {
	asOf := date(2024, 3, 20)
	items := []Item{
		{
			ID:         "fine",
			Obligation: Obligation{Title: "Fine", TotalAmount: money.MustParse("300.00"), Plan: OneTimePlan{}, AnchorDueDate: date(2024, 3, 15)},
		},
		{
			ID:         "loan",
			Obligation: installments(Monthly, 12, date(2024, 1, 10)),
			Payments:   []Payment{pay("300.00", date(2024, 3, 1))},
		},
		{
			ID:         "phone",
			Obligation: Obligation{Title: "Phone", TotalAmount: money.MustParse("500.00"), Plan: OneTimePlan{}, AnchorDueDate: date(2024, 6, 1)},
			Payments:   []Payment{pay("600.00", date(2024, 3, 1))},
		},
		{
			ID:         "car",
			Obligation: Obligation{Title: "Car", TotalAmount: money.MustParse("1000.00"), Plan: OneTimePlan{}, AnchorDueDate: date(2024, 1, 1), Paid: true},
			Payments:   []Payment{pay("1000.00", date(2024, 1, 1))},
		},
	}

	got := ComputeTotals(items, asOf)

	if got.Count != 4 || got.Active != 2 || got.Overdue != 1 || got.Paid != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 4/2/1/1", got.Count, got.Active, got.Overdue, got.Paid)
	}
	if got.TotalAmount.String() != "3000.00" {
		t.Errorf("TotalAmount = %s, want 3000.00", got.TotalAmount)
	}
	if got.PaidAmount.String() != "1900.00" {
		t.Errorf("PaidAmount = %s, want 1900.00", got.PaidAmount)
	}
	// 300 (fine) + 900 (loan) + 0 (overpaid phone)
	if got.Outstanding.String() != "1200.00" {
		t.Errorf("Outstanding = %s, want 1200.00", got.Outstanding)
	}
	if got.OverdueDue.String() != "300.00" {
		t.Errorf("OverdueDue = %s, want 300.00", got.OverdueDue)
	}
	if !got.NextDueDate.Equal(date(2024, 3, 15)) || got.NextDueTitle != "Fine" {
		t.Errorf("next due = %s %q", got.NextDueDate.Format(DateLayout), got.NextDueTitle)
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	got := ComputeTotals(nil, date(2024, 1, 1))
	if got.Count != 0 || !got.Outstanding.IsZero() || !got.NextDueDate.IsZero() {
		t.Errorf("empty totals = %+v", got)
	}
}

func TestUpcoming(t *testing.T) {
	items := []Item{
		{ID: "rent", Obligation: Obligation{Title: "Rent", TotalAmount: money.MustParse("900.00"), Plan: RecurringPlan{Cadence: Monthly}, AnchorDueDate: date(2024, 1, 5)}},
		{ID: "gym", Obligation: Obligation{Title: "Gym", TotalAmount: money.MustParse("20.00"), Plan: RecurringPlan{Cadence: Weekly}, AnchorDueDate: date(2024, 1, 1)},
			Payments: []Payment{pay("60.00", date(2024, 1, 1))}},
		{ID: "car", Obligation: Obligation{Title: "Car", TotalAmount: money.MustParse("10.00"), Plan: OneTimePlan{}, AnchorDueDate: date(2024, 1, 10), Paid: true}},
	}

	got := Upcoming(items, date(2024, 1, 1), date(2024, 1, 31))

	// gym covers Jan 1, 8 and 15; Jan 22 and 29 remain. Rent is due Jan 5.
	want := []struct {
		title string
		day   int
	}{{"Rent", 5}, {"Gym", 22}, {"Gym", 29}}
	if len(got) != len(want) {
		t.Fatalf("Upcoming returned %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Title != w.title || got[i].Date.Day() != w.day {
			t.Errorf("entry %d = %s on %s, want %s on day %d", i, got[i].Title, got[i].Date.Format(DateLayout), w.title, w.day)
		}
	}
	if got[0].Amount.String() != "900.00" || got[1].Index != 3 {
		t.Errorf("unexpected entry details: %+v %+v", got[0], got[1])
	}
}
