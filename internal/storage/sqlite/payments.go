package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/debtplan/internal/models"
	"github.com/mmynk/debtplan/internal/scheduler"
	"github.com/mmynk/debtplan/internal/storage"
)

// dbtx is satisfied by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const paymentColumns = `id, obligation_id, amount, payment_date, notes, created_at`

// preparePayment generates the ID and timestamp if not set.
func preparePayment(p *models.Payment) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
}

func insertPayment(ctx context.Context, db dbtx, p *models.Payment) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO payments (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.ObligationID, p.Amount, formatDate(p.PaymentDate), p.Notes, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	var paymentDate string
	if err := row.Scan(&p.ID, &p.ObligationID, &p.Amount, &paymentDate, &p.Notes, &p.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.PaymentDate, err = parseDate(paymentDate); err != nil {
		return nil, err
	}
	return p, nil
}

// RecordPayment writes the payment built by fn for an open obligation.
func (s *SQLiteStore) RecordPayment(ctx context.Context, ownerID, id string, fn storage.PaymentFunc) (*models.Obligation, []*models.Payment, error) {
	return s.writePayment(ctx, ownerID, id, fn, nil)
}

// SettleObligation writes the settling payment built by fn, if any, and
// marks the obligation paid in one transaction.
func (s *SQLiteStore) SettleObligation(ctx context.Context, ownerID, id string, paidAt int64, fn storage.PaymentFunc) (*models.Obligation, []*models.Payment, error) {
	return s.writePayment(ctx, ownerID, id, fn, &paidAt)
}

// writePayment runs fn against the obligation and its payments inside a
// write transaction. Transactions begin IMMEDIATE (see New), so no other
// writer can commit between the reads and the insert.
func (s *SQLiteStore) writePayment(ctx context.Context, ownerID, id string, fn storage.PaymentFunc, paidAt *int64) (*models.Obligation, []*models.Payment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	o, err := scanObligation(tx.QueryRowContext(ctx,
		`SELECT `+obligationColumns+` FROM obligations WHERE id = ? AND owner_id = ?`, id, ownerID,
	))
	if notFound(err) {
		return nil, nil, fmt.Errorf("obligation %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get obligation: %w", err)
	}
	if o.IsPaid() {
		return nil, nil, scheduler.ErrAlreadyPaid
	}

	byObligation, err := queryPayments(ctx, tx, []string{id})
	if err != nil {
		return nil, nil, err
	}
	payments := byObligation[id]

	p, err := fn(o, payments)
	if err != nil {
		return nil, nil, err
	}
	if p != nil {
		p.ObligationID = id
		preparePayment(p)
		if err := insertPayment(ctx, tx, p); err != nil {
			return nil, nil, err
		}
		payments = append(payments, p)
		models.SortPayments(payments)
	}

	if paidAt != nil {
		if _, err := tx.ExecContext(ctx,
			"UPDATE obligations SET status = ?, paid_at = ?, updated_at = ? WHERE id = ?",
			models.StatusPaid, *paidAt, *paidAt, id,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to mark obligation paid: %w", err)
		}
		o.Status = models.StatusPaid
		o.PaidAt = *paidAt
		o.UpdatedAt = *paidAt
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return o, payments, nil
}

// ListPayments retrieves all payments of an obligation, oldest first.
func (s *SQLiteStore) ListPayments(ctx context.Context, obligationID string) ([]*models.Payment, error) {
	byObligation, err := s.ListPaymentsByObligations(ctx, []string{obligationID})
	if err != nil {
		return nil, err
	}
	return byObligation[obligationID], nil
}

// ListPaymentsByObligations retrieves the payments of several obligations in
// one query.
func (s *SQLiteStore) ListPaymentsByObligations(ctx context.Context, obligationIDs []string) (map[string][]*models.Payment, error) {
	return queryPayments(ctx, s.db, obligationIDs)
}

func queryPayments(ctx context.Context, db dbtx, obligationIDs []string) (map[string][]*models.Payment, error) {
	result := make(map[string][]*models.Payment, len(obligationIDs))
	if len(obligationIDs) == 0 {
		return result, nil
	}

	args := make([]any, len(obligationIDs))
	for i, id := range obligationIDs {
		args[i] = id
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE obligation_id IN (`+placeholders(len(obligationIDs))+`)
		 ORDER BY payment_date, created_at, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		result[p.ObligationID] = append(result[p.ObligationID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return result, nil
}

// DeletePayment removes a payment of an obligation.
func (s *SQLiteStore) DeletePayment(ctx context.Context, obligationID, paymentID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM payments WHERE id = ? AND obligation_id = ?", paymentID, obligationID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return expectOneRow(res, "payment", paymentID)
}
