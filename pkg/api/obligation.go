package api

// Obligation is a stored obligation plus the fields derived from its
// schedule and payments as of the request date.
type Obligation struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	CategoryID       string `json:"category_id,omitempty"`
	Description      string `json:"description,omitempty"`
	TotalAmount      string `json:"total_amount"`
	PaymentFrequency string `json:"payment_frequency"`
	IsRecurring      bool   `json:"is_recurring"`
	Installments     *int   `json:"installments,omitempty"`
	AnchorDueDate    string `json:"anchor_due_date"`

	// Derived as of the request date.
	Status               string `json:"status"`
	PaidAmount           string `json:"paid_amount"`
	Outstanding          string `json:"outstanding"`
	AccruedBalance       string `json:"accrued_balance"`
	CoveredOccurrences   int    `json:"covered_occurrences"`
	NextDueDate          string `json:"next_due_date,omitempty"`
	LastDueDate          string `json:"last_due_date,omitempty"`
	DaysOverdue          int    `json:"days_overdue,omitempty"`
	ScheduleKind         string `json:"schedule_kind"`
	Summary              string `json:"summary"`
	PerOccurrence        string `json:"per_occurrence"`
	FormattedTotal       string `json:"formatted_total"`
	FormattedOutstanding string `json:"formatted_outstanding"`
	PlanLocked           bool   `json:"plan_locked"`

	PaidAt    int64 `json:"paid_at,omitempty"`
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ObligationInput carries the editable fields of an obligation.
type ObligationInput struct {
	Title            string `json:"title"`
	CategoryID       string `json:"category_id,omitempty"`
	Description      string `json:"description,omitempty"`
	TotalAmount      string `json:"total_amount,omitempty"`
	PaymentFrequency string `json:"payment_frequency"`
	IsRecurring      bool   `json:"is_recurring,omitempty"`
	Installments     *int   `json:"installments,omitempty"`
	AnchorDueDate    string `json:"anchor_due_date"`
}

type CreateObligationRequest struct {
	ObligationInput
}

type CreateObligationResponse struct {
	Obligation *Obligation `json:"obligation"`
}

type GetObligationRequest struct {
	ID   string `json:"id"`
	AsOf string `json:"as_of,omitempty"`
}

type GetObligationResponse struct {
	Obligation *Obligation `json:"obligation"`
}

type ListObligationsRequest struct {
	// Status is "active", "overdue", "paid" or empty for all.
	Status     string `json:"status,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	AsOf       string `json:"as_of,omitempty"`
}

type ListObligationsResponse struct {
	Obligations []*Obligation `json:"obligations"`
}

// UpdateObligationRequest replaces the editable fields of an obligation.
type UpdateObligationRequest struct {
	ID string `json:"id"`
	ObligationInput
}

type UpdateObligationResponse struct {
	Obligation *Obligation `json:"obligation"`
}

type DeleteObligationRequest struct {
	ID string `json:"id"`
}

type DeleteObligationResponse struct{}

// Occurrence is one scheduled due date.
type Occurrence struct {
	Index           int    `json:"index"`
	DueDate         string `json:"due_date"`
	Amount          string `json:"amount"`
	FormattedAmount string `json:"formatted_amount"`
	// State is "paid", "overdue", "pending" or "closed".
	State string `json:"state"`
}

type GetScheduleRequest struct {
	ID string `json:"id"`
	// Limit bounds the number of occurrences; open-ended schedules use the
	// server horizon when zero.
	Limit int    `json:"limit,omitempty"`
	AsOf  string `json:"as_of,omitempty"`
}

type GetScheduleResponse struct {
	Obligation  *Obligation   `json:"obligation"`
	Occurrences []*Occurrence `json:"occurrences"`
	// Truncated is set when more occurrences exist than were returned.
	Truncated bool `json:"truncated"`
}

type ExportScheduleRequest struct {
	ID    string `json:"id"`
	Limit int    `json:"limit,omitempty"`
	AsOf  string `json:"as_of,omitempty"`
}

type ExportScheduleResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}
