package scheduler

import (
	"errors"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/mmynk/debtplan/internal/money"
)

func pay(amount string, on time.Time) Payment {
	return Payment{Amount: money.MustParse(amount), PaymentDate: on}
}

func TestNewPlan(t *testing.T) {
	tests := []struct {
		name         string
		freq         Frequency
		recurring    bool
		installments *int
		want         Plan
		wantErr      bool
	}{
		{name: "one-time ignores installments", freq: OneTime, installments: intPtr(5), want: OneTimePlan{}},
		{name: "one-time ignores recurrence", freq: OneTime, recurring: true, want: OneTimePlan{}},
		{name: "recurring monthly", freq: Monthly, recurring: true, want: RecurringPlan{Cadence: Monthly}},
		{name: "recurring weekly ignores installments", freq: Weekly, recurring: true, installments: intPtr(3), want: RecurringPlan{Cadence: Weekly}},
		{name: "monthly installments", freq: Monthly, installments: intPtr(12), want: InstallmentPlan{Cadence: Monthly, Count: 12}},
		{name: "missing installments", freq: Monthly, wantErr: true},
		{name: "zero installments", freq: Weekly, installments: intPtr(0), wantErr: true},
		{name: "negative installments", freq: Monthly, installments: intPtr(-2), wantErr: true},
		{name: "most installments", freq: Monthly, installments: intPtr(MaxInstallments), want: InstallmentPlan{Cadence: Monthly, Count: MaxInstallments}},
		{name: "too many installments", freq: Weekly, installments: intPtr(MaxInstallments + 1), wantErr: true},
		{name: "absurd installments", freq: Monthly, installments: intPtr(math.MaxInt), wantErr: true},
		{name: "unknown cadence", freq: Frequency("daily"), recurring: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPlan(tt.freq, tt.recurring, tt.installments)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPlan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !IsValidationError(err) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("NewPlan() = %#v, want %#v", got, tt.want)
			}

			freq, recurring, n := PlanFields(got)
			back, err := NewPlan(freq, recurring, n)
			if err != nil || back != got {
				t.Errorf("PlanFields round trip = %#v, %v", back, err)
			}
		})
	}
}

func TestParseFrequency(t *testing.T) {
	for in, want := range map[string]Frequency{"monthly": Monthly, " Weekly ": Weekly, "one-time": OneTime, "one_time": OneTime} {
		got, err := ParseFrequency(in)
		if err != nil || got != want {
			t.Errorf("ParseFrequency(%q) = %q, %v", in, got, err)
		}
	}
	for _, in := range []string{"", "yearly"} {
		if _, err := ParseFrequency(in); !IsValidationError(err) {
			t.Errorf("ParseFrequency(%q) error = %v, want ValidationError", in, err)
		}
	}
}

func TestObligationValidate(t *testing.T) {
	valid := installments(Monthly, 3, date(2024, time.January, 1))
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid obligation rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(o *Obligation)
		field  string
	}{
		{"empty title", func(o *Obligation) { o.Title = "  " }, "title"},
		{"negative amount", func(o *Obligation) { o.TotalAmount = money.MustParse("-1") }, "total_amount"},
		{"nil plan", func(o *Obligation) { o.Plan = nil }, "payment_frequency"},
		{"bad installments", func(o *Obligation) { o.Plan = InstallmentPlan{Cadence: Monthly} }, "installments"},
		{"no anchor", func(o *Obligation) { o.AnchorDueDate = time.Time{} }, "anchor_due_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mutate(&o)
			err := o.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}

	if err := (Obligation{Title: "x", Plan: OneTimePlan{}, AnchorDueDate: date(2024, 1, 1)}).Validate(); err != nil {
		t.Errorf("zero total amount should be allowed: %v", err)
	}
}

func TestClassifyStatus(t *testing.T) {
	oneTime := Obligation{
		Title:         "Doctor",
		TotalAmount:   money.MustParse("300.00"),
		Plan:          OneTimePlan{},
		AnchorDueDate: date(2024, time.March, 15),
	}
	weeklyRecurring := Obligation{
		Title:         "Cleaner",
		TotalAmount:   money.MustParse("80.00"),
		Plan:          RecurringPlan{Cadence: Weekly},
		AnchorDueDate: date(2024, time.January, 1),
	}
	monthly := installments(Monthly, 12, date(2024, time.January, 10)) // 100.00 each

	tests := []struct {
		name     string
		o        Obligation
		payments []Payment
		asOf     time.Time
		want     Status
	}{
		{name: "one-time past due", o: oneTime, asOf: date(2024, time.March, 16), want: StatusOverdue},
		{name: "one-time due today", o: oneTime, asOf: time.Date(2024, time.March, 15, 23, 59, 0, 0, time.UTC), want: StatusActive},
		{name: "one-time fully paid but not settled", o: oneTime, payments: []Payment{pay("300.00", date(2024, 3, 1))}, asOf: date(2024, time.April, 1), want: StatusActive},
		{name: "weekly recurring due today", o: weeklyRecurring, asOf: date(2024, time.January, 1), want: StatusActive},
		{name: "weekly recurring missed first", o: weeklyRecurring, asOf: date(2024, time.January, 2), want: StatusOverdue},
		{name: "weekly recurring two paid, third due", o: weeklyRecurring, payments: []Payment{pay("160.00", date(2024, 1, 1))}, asOf: date(2024, time.January, 15), want: StatusActive},
		{name: "weekly recurring two paid, third missed", o: weeklyRecurring, payments: []Payment{pay("160.00", date(2024, 1, 1))}, asOf: date(2024, time.January, 16), want: StatusOverdue},
		{name: "installments partially covered", o: monthly, payments: []Payment{pay("250.00", date(2024, 2, 1))}, asOf: date(2024, time.March, 10), want: StatusActive},
		{name: "installments behind", o: monthly, payments: []Payment{pay("250.00", date(2024, 2, 1))}, asOf: date(2024, time.March, 11), want: StatusOverdue},
		{name: "installments all covered", o: monthly, payments: []Payment{pay("1200.00", date(2024, 2, 1))}, asOf: date(2026, time.January, 1), want: StatusActive},
		{name: "settled", o: func() Obligation { o := oneTime; o.Paid = true; return o }(), asOf: date(2030, 1, 1), want: StatusPaid},
		{name: "no amount is never covered", o: Obligation{Title: "TBD", Plan: OneTimePlan{}, AnchorDueDate: date(2024, 1, 1)}, payments: []Payment{pay("5.00", date(2024, 1, 1))}, asOf: date(2024, 1, 2), want: StatusOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyStatus(tt.o, tt.payments, tt.asOf)
			if got != tt.want {
				t.Errorf("ClassifyStatus() = %s, want %s", got, tt.want)
			}
			if again := ClassifyStatus(tt.o, tt.payments, tt.asOf); again != got {
				t.Errorf("ClassifyStatus() not idempotent: %s then %s", got, again)
			}
		})
	}
}

func TestOverdueIsMonotonicInTime(t *testing.T) {
	obligations := []Obligation{
		{Title: "one", TotalAmount: money.MustParse("20"), Plan: OneTimePlan{}, AnchorDueDate: date(2024, 3, 15)},
		{Title: "weekly", TotalAmount: money.MustParse("10"), Plan: RecurringPlan{Cadence: Weekly}, AnchorDueDate: date(2024, 1, 1)},
		installments(Monthly, 6, date(2024, 1, 31)),
	}
	payments := []Payment{pay("10.00", date(2024, 1, 1))}

	for _, o := range obligations {
		seenOverdue := false
		for day := date(2023, 12, 1); day.Before(date(2025, 1, 1)); day = day.AddDate(0, 0, 1) {
			status := ClassifyStatus(o, payments, day)
			if seenOverdue && status != StatusOverdue {
				t.Fatalf("%s: reverted to %s on %s", o.Title, status, day.Format(DateLayout))
			}
			if status == StatusOverdue {
				seenOverdue = true
			}
		}
		if !seenOverdue {
			t.Errorf("%s: never became overdue", o.Title)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusActive, StatusPaid, true},
		{StatusActive, StatusOverdue, true},
		{StatusOverdue, StatusPaid, true},
		{StatusOverdue, StatusActive, true},
		{StatusPaid, StatusActive, false},
		{StatusPaid, StatusOverdue, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestDaysOverdue(t *testing.T) {
	o := Obligation{Title: "Fine", TotalAmount: money.MustParse("50"), Plan: OneTimePlan{}, AnchorDueDate: date(2024, 3, 15)}
	if got := DaysOverdue(o, nil, date(2024, 3, 15)); got != 0 {
		t.Errorf("DaysOverdue on due date = %d", got)
	}
	if got := DaysOverdue(o, nil, date(2024, 3, 25)); got != 10 {
		t.Errorf("DaysOverdue = %d, want 10", got)
	}
}

func TestOccurrences(t *testing.T) {
	o := Obligation{
		Title:         "Laptop",
		TotalAmount:   money.MustParse("1000.00"),
		Plan:          InstallmentPlan{Cadence: Monthly, Count: 3},
		AnchorDueDate: date(2024, 1, 31),
	}
	payments := []Payment{pay("333.33", date(2024, 1, 30))}

	occ := Occurrences(o, payments, date(2024, 3, 1), 0)
	if len(occ) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(occ))
	}

	wantStates := []OccurrenceState{OccurrencePaid, OccurrenceOverdue, OccurrencePending}
	wantAmounts := []string{"333.33", "333.33", "333.34"}
	wantDates := []time.Time{date(2024, 1, 31), date(2024, 2, 29), date(2024, 3, 31)}
	for i, got := range occ {
		if got.State != wantStates[i] {
			t.Errorf("occurrence %d state = %s, want %s", i, got.State, wantStates[i])
		}
		if got.Amount.String() != wantAmounts[i] {
			t.Errorf("occurrence %d amount = %s, want %s", i, got.Amount, wantAmounts[i])
		}
		if !got.DueDate.Equal(wantDates[i]) {
			t.Errorf("occurrence %d date = %s", i, got.DueDate.Format(DateLayout))
		}
	}

	recurring := Obligation{Title: "Rent", TotalAmount: money.MustParse("900"), Plan: RecurringPlan{Cadence: Monthly}, AnchorDueDate: date(2024, 1, 5)}
	if got := Occurrences(recurring, nil, date(2024, 1, 1), 0); got != nil {
		t.Errorf("open-ended schedule without limit = %v, want nil", got)
	}
	if got := Occurrences(recurring, nil, date(2024, 1, 1), 6); len(got) != 6 {
		t.Errorf("open-ended schedule with limit 6 returned %d", len(got))
	}

	settled := o
	settled.Paid = true
	occ = Occurrences(settled, payments, date(2024, 3, 1), 0)
	if occ[1].State != OccurrenceClosed {
		t.Errorf("uncovered occurrence of settled obligation = %s, want closed", occ[1].State)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		o    Obligation
		kind ScheduleKind
		text string
	}{
		{
			name: "terminal",
			o:    installments(Monthly, 12, date(2024, 1, 31)),
			kind: KindTerminal,
			text: "12 monthly installments starting 2024-01-31, last installment 2024-12-31",
		},
		{
			name: "single installment",
			o:    installments(Weekly, 1, date(2024, 5, 6)),
			kind: KindTerminal,
			text: "1 weekly installment due 2024-05-06, last installment 2024-05-06",
		},
		{
			name: "open-ended",
			o:    Obligation{Title: "Gym", Plan: RecurringPlan{Cadence: Weekly}, AnchorDueDate: date(2024, 1, 1)},
			kind: KindOpenEnded,
			text: "weekly, recurring from 2024-01-01 with no end date",
		},
		{
			name: "single",
			o:    Obligation{Title: "Fine", Plan: OneTimePlan{}, AnchorDueDate: date(2024, 3, 15)},
			kind: KindSingle,
			text: "one-time payment due 2024-03-15",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.o)
			if s.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", s.Kind, tt.kind)
			}
			if s.String() != tt.text {
				t.Errorf("String() = %q, want %q", s.String(), tt.text)
			}
		})
	}
}

var lastInstallment = regexp.MustCompile(`last installment (\d{4}-\d{2}-\d{2})`)

func TestSummaryLastDateRoundTrip(t *testing.T) {
	anchors := []time.Time{date(2024, 1, 31), date(2023, 8, 29), date(2024, 2, 29), date(2025, 12, 31)}
	for _, anchor := range anchors {
		for _, freq := range []Frequency{Monthly, Weekly} {
			for _, n := range []int{1, 2, 11, 12, 25} {
				o := installments(freq, n, anchor)
				m := lastInstallment.FindStringSubmatch(Summarize(o).String())
				if m == nil {
					t.Fatalf("summary has no last installment: %q", Summarize(o).String())
				}
				parsed, err := time.Parse(DateLayout, m[1])
				if err != nil {
					t.Fatalf("parse %q: %v", m[1], err)
				}
				last, _ := DueDates(o).Last()
				if !parsed.Equal(last) {
					t.Errorf("%s x%d from %s: summary says %s, sequence ends %s",
						freq, n, anchor.Format(DateLayout), m[1], last.Format(DateLayout))
				}
			}
		}
	}
}

func TestNextDueDate(t *testing.T) {
	o := Obligation{
		Title:         "Course",
		TotalAmount:   money.MustParse("300"),
		Plan:          InstallmentPlan{Cadence: Monthly, Count: 3},
		AnchorDueDate: date(2024, 1, 10),
	}

	if due, ok := NextDueDate(o, nil); !ok || !due.Equal(date(2024, 1, 10)) {
		t.Errorf("NextDueDate() = %s, %v; want 2024-01-10", due.Format(DateLayout), ok)
	}
	if due, ok := NextDueDate(o, []Payment{pay("150", date(2024, 1, 9))}); !ok || !due.Equal(date(2024, 2, 10)) {
		t.Errorf("NextDueDate() after one share = %s, %v; want 2024-02-10", due.Format(DateLayout), ok)
	}
	if _, ok := NextDueDate(o, []Payment{pay("300", date(2024, 1, 9))}); ok {
		t.Error("fully covered schedule has no next due date")
	}

	o.Paid = true
	if _, ok := NextDueDate(o, nil); ok {
		t.Error("paid obligation has no next due date")
	}
}

func TestHugeInstallmentCountStaysCheap(t *testing.T) {
	// built directly, bypassing validation
	o := Obligation{
		Title:         "Huge",
		TotalAmount:   money.MustParse("1000.00"),
		Plan:          InstallmentPlan{Cadence: Monthly, Count: math.MaxInt},
		AnchorDueDate: date(2024, 1, 10),
	}
	if err := o.Validate(); !IsValidationError(err) {
		t.Errorf("Validate() = %v, want ValidationError", err)
	}

	if s := Summarize(o); !s.PerOccurrence.IsZero() {
		t.Errorf("PerOccurrence = %s, want 0.00", s.PerOccurrence)
	}
	if got := OccurrenceAmount(o, math.MaxInt-1); got.String() != "1000.00" {
		t.Errorf("last share = %s, want 1000.00", got)
	}
	occ := Occurrences(o, nil, date(2024, 3, 11), 3)
	if len(occ) != 3 || occ[2].State != OccurrenceOverdue || !occ[2].Amount.IsZero() {
		t.Errorf("Occurrences = %+v", occ)
	}
}

func TestZeroShareCoverage(t *testing.T) {
	// 0.05 over 10 installments: nine 0.00 shares then 0.05
	o := Obligation{
		Title:         "Tiny",
		TotalAmount:   money.MustParse("0.05"),
		Plan:          InstallmentPlan{Cadence: Weekly, Count: 10},
		AnchorDueDate: date(2024, 1, 1),
	}

	tests := []struct {
		name     string
		payments []Payment
		want     int
	}{
		{"no payments", nil, 0},
		{"one cent", []Payment{pay("0.01", date(2024, 1, 1))}, 0},
		{"four cents", []Payment{pay("0.03", date(2024, 1, 1)), pay("0.01", date(2024, 1, 2))}, 0},
		{"the total", []Payment{pay("0.05", date(2024, 1, 1))}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoveredOccurrences(o, tt.payments); got != tt.want {
				t.Errorf("CoveredOccurrences() = %d, want %d", got, tt.want)
			}
		})
	}

	due, ok := NextDueDate(o, []Payment{pay("0.01", date(2024, 1, 1))})
	if !ok || !due.Equal(date(2024, 1, 1)) {
		t.Errorf("NextDueDate() = %s, %v; want 2024-01-01", due.Format(DateLayout), ok)
	}
}
