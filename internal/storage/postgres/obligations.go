package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/debtplan/internal/models"
	"github.com/mmynk/debtplan/internal/storage"
)

const selectObligation = `
	SELECT id, owner_id, title, category_id, description, total_amount::text, frequency,
	       is_recurring, installments, anchor_due_date, status, paid_at, created_at, updated_at
	FROM obligations`

func scanObligation(row interface{ Scan(dest ...any) error }) (*models.Obligation, error) {
	o := &models.Obligation{}
	var total string
	var installments *int32
	if err := row.Scan(
		&o.ID, &o.OwnerID, &o.Title, &o.CategoryID, &o.Description, &total, &o.Frequency,
		&o.IsRecurring, &installments, &o.AnchorDueDate, &o.Status, &o.PaidAt, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if installments != nil {
		n := int(*installments)
		o.Installments = &n
	}
	var err error
	if o.TotalAmount, err = parseAmount(total); err != nil {
		return nil, err
	}
	return o, nil
}

// CreateObligation persists a new obligation.
func (s *PostgresStore) CreateObligation(ctx context.Context, o *models.Obligation) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.CreatedAt == 0 {
		o.CreatedAt = time.Now().Unix()
	}
	if o.UpdatedAt == 0 {
		o.UpdatedAt = o.CreatedAt
	}
	if o.Status == "" {
		o.Status = models.StatusActive
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO obligations (
			id, owner_id, title, category_id, description, total_amount, frequency,
			is_recurring, installments, anchor_due_date, status, paid_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10::date, $11, $12, $13, $14)`,
		o.ID, o.OwnerID, o.Title, o.CategoryID, o.Description, o.TotalAmount.String(), o.Frequency,
		o.IsRecurring, o.Installments, formatDate(o.AnchorDueDate), o.Status, o.PaidAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert obligation: %w", err)
	}
	return nil
}

// GetObligation retrieves an obligation by ID for its owner.
func (s *PostgresStore) GetObligation(ctx context.Context, ownerID, id string) (*models.Obligation, error) {
	row := s.pool.QueryRow(ctx, selectObligation+` WHERE id = $1 AND owner_id = $2`, id, ownerID)
	o, err := scanObligation(row)
	if notFound(err) {
		return nil, fmt.Errorf("obligation %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get obligation: %w", err)
	}
	return o, nil
}

// ListObligations retrieves the owner's obligations.
func (s *PostgresStore) ListObligations(ctx context.Context, ownerID string, filter storage.ObligationFilter) ([]*models.Obligation, error) {
	query := selectObligation + ` WHERE owner_id = $1`
	args := []any{ownerID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += ` AND category_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY anchor_due_date, title`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list obligations: %w", err)
	}
	defer rows.Close()

	var obligations []*models.Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		obligations = append(obligations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate obligations: %w", err)
	}
	return obligations, nil
}

// UpdateObligation overwrites the editable fields of an obligation.
func (s *PostgresStore) UpdateObligation(ctx context.Context, o *models.Obligation) error {
	o.UpdatedAt = time.Now().Unix()
	tag, err := s.pool.Exec(ctx, `
		UPDATE obligations
		SET title = $3, category_id = $4, description = $5, total_amount = $6::numeric,
		    frequency = $7, is_recurring = $8, installments = $9, anchor_due_date = $10::date,
		    updated_at = $11
		WHERE id = $1 AND owner_id = $2`,
		o.ID, o.OwnerID, o.Title, o.CategoryID, o.Description, o.TotalAmount.String(),
		o.Frequency, o.IsRecurring, o.Installments, formatDate(o.AnchorDueDate), o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update obligation: %w", err)
	}
	return expectOneRow(tag, "obligation", o.ID)
}

// DeleteObligation removes an obligation; its payments cascade.
func (s *PostgresStore) DeleteObligation(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM obligations WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete obligation: %w", err)
	}
	return expectOneRow(tag, "obligation", id)
}
