package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyPaid is returned for payment actions on a settled obligation.
	ErrAlreadyPaid = errors.New("obligation is already paid")

	// ErrOverpayment is returned under RejectOverpayment when a payment
	// exceeds the outstanding balance.
	ErrOverpayment = errors.New("payment exceeds outstanding balance")

	// ErrPlanLocked is returned when the payment plan of an obligation with
	// recorded payments is changed.
	ErrPlanLocked = errors.New("payment plan cannot change after payments are recorded")
)

// ValidationError reports malformed obligation or payment input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
