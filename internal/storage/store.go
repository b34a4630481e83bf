// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/debtplan/internal/models"
)

// ErrNotFound is returned when a requested record does not exist (or is not
// visible to the requesting owner).
var ErrNotFound = errors.New("not found")

// ObligationFilter narrows ListObligations.
type ObligationFilter struct {
	// Status limits results to one stored status ("active" or "paid").
	// Empty returns both.
	Status string
	// CategoryID limits results to one category. Empty returns all.
	CategoryID string
}

// PaymentFunc builds the payment to write from an obligation and its
// recorded payments. Stores call it inside the write transaction with the
// obligation locked, so its checks see committed state only. A nil payment
// writes nothing; an error aborts the transaction and is returned unwrapped.
type PaymentFunc func(o *models.Obligation, payments []*models.Payment) (*models.Payment, error)

// Store defines the interface for obligation storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// CreateObligation persists a new obligation. ID, CreatedAt and UpdatedAt
	// are populated by the store when empty.
	CreateObligation(ctx context.Context, o *models.Obligation) error

	// GetObligation retrieves an obligation owned by ownerID.
	// Returns ErrNotFound if it does not exist or belongs to someone else.
	GetObligation(ctx context.Context, ownerID, id string) (*models.Obligation, error)

	// ListObligations returns the owner's obligations ordered by anchor due
	// date, then title.
	ListObligations(ctx context.Context, ownerID string, filter ObligationFilter) ([]*models.Obligation, error)

	// UpdateObligation overwrites the editable fields of an existing obligation.
	// Returns ErrNotFound if it does not exist for the owner.
	UpdateObligation(ctx context.Context, o *models.Obligation) error

	// DeleteObligation removes an obligation and its payments.
	DeleteObligation(ctx context.Context, ownerID, id string) error

	// ListPayments returns an obligation's payments ordered by payment date.
	ListPayments(ctx context.Context, obligationID string) ([]*models.Payment, error)

	// ListPaymentsByObligations returns payments grouped by obligation ID.
	ListPaymentsByObligations(ctx context.Context, obligationIDs []string) (map[string][]*models.Payment, error)

	// DeletePayment removes one payment of an obligation.
	DeletePayment(ctx context.Context, obligationID, paymentID string) error

	// RecordPayment writes the payment fn builds for an open obligation of
	// the owner, in one transaction. Returns ErrNotFound when the obligation
	// is missing and scheduler.ErrAlreadyPaid when it is settled. The
	// obligation and its payments, the new one included, are returned.
	RecordPayment(ctx context.Context, ownerID, id string, fn PaymentFunc) (*models.Obligation, []*models.Payment, error)

	// SettleObligation is RecordPayment that also marks the obligation paid
	// at paidAt. fn may return a nil payment when nothing is left to pay.
	SettleObligation(ctx context.Context, ownerID, id string, paidAt int64, fn PaymentFunc) (*models.Obligation, []*models.Payment, error)

	// CreateUser inserts a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns ErrNotFound when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns ErrNotFound when no user has the ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
