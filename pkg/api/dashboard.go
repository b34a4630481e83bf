package api

type GetDashboardRequest struct {
	AsOf string `json:"as_of,omitempty"`
	// HorizonDays is the upcoming window; 30 when zero.
	HorizonDays int `json:"horizon_days,omitempty"`
}

// UpcomingDue is one uncovered occurrence inside the dashboard window.
type UpcomingDue struct {
	ObligationID    string `json:"obligation_id"`
	Title           string `json:"title"`
	Index           int    `json:"index"`
	DueDate         string `json:"due_date"`
	Amount          string `json:"amount"`
	FormattedAmount string `json:"formatted_amount"`
}

type GetDashboardResponse struct {
	AsOf                 string         `json:"as_of"`
	Count                int            `json:"count"`
	Active               int            `json:"active"`
	Overdue              int            `json:"overdue"`
	Paid                 int            `json:"paid"`
	TotalAmount          string         `json:"total_amount"`
	PaidAmount           string         `json:"paid_amount"`
	Outstanding          string         `json:"outstanding"`
	OverdueAmount        string         `json:"overdue_amount"`
	FormattedOutstanding string         `json:"formatted_outstanding"`
	NextDueDate          string         `json:"next_due_date,omitempty"`
	NextDueTitle         string         `json:"next_due_title,omitempty"`
	Upcoming             []*UpcomingDue `json:"upcoming"`
}
