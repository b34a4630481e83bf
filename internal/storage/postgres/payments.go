package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/debtplan/internal/models"
	"github.com/mmynk/debtplan/internal/scheduler"
	"github.com/mmynk/debtplan/internal/storage"
)

func preparePayment(p *models.Payment) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
}

func insertPayment(ctx context.Context, db dbtx, p *models.Payment) error {
	_, err := db.Exec(ctx, `
		INSERT INTO payments (id, obligation_id, amount, payment_date, notes, created_at)
		VALUES ($1, $2, $3::numeric, $4::date, $5, $6)`,
		p.ID, p.ObligationID, p.Amount.String(), formatDate(p.PaymentDate), p.Notes, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// RecordPayment writes the payment built by fn for an open obligation.
func (s *PostgresStore) RecordPayment(ctx context.Context, ownerID, id string, fn storage.PaymentFunc) (*models.Obligation, []*models.Payment, error) {
	return s.writePayment(ctx, ownerID, id, fn, nil)
}

// SettleObligation writes the settling payment built by fn, if any, and
// marks the obligation paid in one transaction.
func (s *PostgresStore) SettleObligation(ctx context.Context, ownerID, id string, paidAt int64, fn storage.PaymentFunc) (*models.Obligation, []*models.Payment, error) {
	return s.writePayment(ctx, ownerID, id, fn, &paidAt)
}

// writePayment locks the obligation row and runs fn against it and its
// payments before inserting, so concurrent writers see each other's payments.
func (s *PostgresStore) writePayment(ctx context.Context, ownerID, id string, fn storage.PaymentFunc, paidAt *int64) (*models.Obligation, []*models.Payment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	o, err := scanObligation(tx.QueryRow(ctx,
		selectObligation+` WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, ownerID,
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
		if _, err := tx.Exec(ctx,
			`UPDATE obligations SET status = $2, paid_at = $3, updated_at = $3 WHERE id = $1`,
			id, models.StatusPaid, *paidAt,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to mark obligation paid: %w", err)
		}
		o.Status = models.StatusPaid
		o.PaidAt = *paidAt
		o.UpdatedAt = *paidAt
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return o, payments, nil
}

// ListPayments retrieves all payments of an obligation, oldest first.
func (s *PostgresStore) ListPayments(ctx context.Context, obligationID string) ([]*models.Payment, error) {
	byObligation, err := s.ListPaymentsByObligations(ctx, []string{obligationID})
	if err != nil {
		return nil, err
	}
	return byObligation[obligationID], nil
}

// ListPaymentsByObligations retrieves the payments of several obligations.
func (s *PostgresStore) ListPaymentsByObligations(ctx context.Context, obligationIDs []string) (map[string][]*models.Payment, error) {
	return queryPayments(ctx, s.pool, obligationIDs)
}

func queryPayments(ctx context.Context, db dbtx, obligationIDs []string) (map[string][]*models.Payment, error) {
	result := make(map[string][]*models.Payment, len(obligationIDs))
	if len(obligationIDs) == 0 {
		return result, nil
	}

	rows, err := db.Query(ctx, `
		SELECT id, obligation_id, amount::text, payment_date, notes, created_at
		FROM payments
		WHERE obligation_id = ANY($1)
		ORDER BY payment_date, created_at, id`,
		obligationIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &models.Payment{}
		var amount string
		if err := rows.Scan(&p.ID, &p.ObligationID, &amount, &p.PaymentDate, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if p.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		result[p.ObligationID] = append(result[p.ObligationID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return result, nil
}

// DeletePayment removes a payment of an obligation.
func (s *PostgresStore) DeletePayment(ctx context.Context, obligationID, paymentID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM payments WHERE id = $1 AND obligation_id = $2`, paymentID, obligationID)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return expectOneRow(tag, "payment", paymentID)
}
