package api

type Payment struct {
	ID              string `json:"id"`
	ObligationID    string `json:"obligation_id"`
	Amount          string `json:"amount"`
	FormattedAmount string `json:"formatted_amount"`
	PaymentDate     string `json:"payment_date"`
	Notes           string `json:"notes,omitempty"`
	CreatedAt       int64  `json:"created_at"`
}

type RecordPaymentRequest struct {
	ObligationID string `json:"obligation_id"`
	Amount       string `json:"amount"`
	// PaymentDate defaults to today.
	PaymentDate string `json:"payment_date,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type RecordPaymentResponse struct {
	Payment    *Payment    `json:"payment"`
	Obligation *Obligation `json:"obligation"`
	// Overpaid is how much the payments exceed the total.
	Overpaid string `json:"overpaid"`
	// SettlesBalance reports that the payment covered the outstanding
	// balance. The obligation stays open until SettleObligation is called.
	SettlesBalance bool `json:"settles_balance"`
}

// SettleObligationRequest is the pay-in-full action. The remaining balance,
// if any, is recorded as a payment dated PaymentDate (default today).
type SettleObligationRequest struct {
	ObligationID string `json:"obligation_id"`
	PaymentDate  string `json:"payment_date,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type SettleObligationResponse struct {
	Obligation *Obligation `json:"obligation"`
	// SettlingPayment is nil when payments already covered the total.
	SettlingPayment *Payment `json:"settling_payment,omitempty"`
}

type ListPaymentsRequest struct {
	ObligationID string `json:"obligation_id"`
}

type ListPaymentsResponse struct {
	Payments   []*Payment `json:"payments"`
	PaidAmount string     `json:"paid_amount"`
}

type DeletePaymentRequest struct {
	ObligationID string `json:"obligation_id"`
	PaymentID    string `json:"payment_id"`
}

type DeletePaymentResponse struct {
	Obligation *Obligation `json:"obligation"`
}
