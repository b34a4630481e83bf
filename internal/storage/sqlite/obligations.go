package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/debtplan/internal/models"
	"github.com/mmynk/debtplan/internal/storage"
)

const obligationColumns = `id, owner_id, title, category_id, description, total_amount, frequency,
	is_recurring, installments, anchor_due_date, status, paid_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObligation(row rowScanner) (*models.Obligation, error) {
	o := &models.Obligation{}
	var installments sql.NullInt64
	var anchor string
	if err := row.Scan(
		&o.ID, &o.OwnerID, &o.Title, &o.CategoryID, &o.Description, &o.TotalAmount, &o.Frequency,
		&o.IsRecurring, &installments, &anchor, &o.Status, &o.PaidAt, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if installments.Valid {
		n := int(installments.Int64)
		o.Installments = &n
	}
	var err error
	if o.AnchorDueDate, err = parseDate(anchor); err != nil {
		return nil, err
	}
	return o, nil
}

func nullableInstallments(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

// CreateObligation persists a new obligation to the database.
func (s *SQLiteStore) CreateObligation(ctx context.Context, o *models.Obligation) error {
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

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO obligations (`+obligationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.OwnerID, o.Title, o.CategoryID, o.Description, o.TotalAmount, o.Frequency,
		o.IsRecurring, nullableInstallments(o.Installments), formatDate(o.AnchorDueDate),
		o.Status, o.PaidAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert obligation: %w", err)
	}
	return nil
}

// GetObligation retrieves an obligation by ID for its owner.
func (s *SQLiteStore) GetObligation(ctx context.Context, ownerID, id string) (*models.Obligation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+obligationColumns+` FROM obligations WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
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
func (s *SQLiteStore) ListObligations(ctx context.Context, ownerID string, filter storage.ObligationFilter) ([]*models.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations WHERE owner_id = ?`
	args := []any{ownerID}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	query += ` ORDER BY anchor_due_date, title`

	rows, err := s.db.QueryContext(ctx, query, args...)
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
// Status and PaidAt change only through SettleObligation.
func (s *SQLiteStore) UpdateObligation(ctx context.Context, o *models.Obligation) error {
	o.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE obligations
		 SET title = ?, category_id = ?, description = ?, total_amount = ?, frequency = ?,
		     is_recurring = ?, installments = ?, anchor_due_date = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		o.Title, o.CategoryID, o.Description, o.TotalAmount, o.Frequency,
		o.IsRecurring, nullableInstallments(o.Installments), formatDate(o.AnchorDueDate), o.UpdatedAt,
		o.ID, o.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update obligation: %w", err)
	}
	return expectOneRow(res, "obligation", o.ID)
}

// DeleteObligation removes an obligation; its payments cascade.
func (s *SQLiteStore) DeleteObligation(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM obligations WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete obligation: %w", err)
	}
	return expectOneRow(res, "obligation", id)
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
