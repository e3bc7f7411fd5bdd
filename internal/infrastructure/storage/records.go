package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eshaffer321/ledger-recon/internal/domain/exceptions"
)

const recordColumns = `id, invoice, amount, invoice_date, vendor_name, entity, status, comments, added_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (exceptions.Record, error) {
	var r exceptions.Record
	var status string
	err := row.Scan(
		&r.ID,
		&r.Invoice,
		&r.Amount,
		&r.Date,
		&r.VendorName,
		&r.Entity,
		&status,
		&r.Comments,
		&r.AddedAt,
	)
	r.Status = exceptions.Status(status)
	return r, err
}

// GetAll returns every record, newest first
func (s *Storage) GetAll(ctx context.Context) ([]exceptions.Record, error) {
	return s.List(ctx, exceptions.Filter{})
}

// List returns the records passing filter, newest first. Status is filtered
// in SQL; the text and wildcard filters run in Go.
func (s *Storage) List(ctx context.Context, filter exceptions.Filter) ([]exceptions.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM exception_records`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY added_at DESC, rowid ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]exceptions.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	filter.Status = ""
	return filter.Apply(records), nil
}

// Get returns one record
func (s *Storage) Get(ctx context.Context, id string) (*exceptions.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM exception_records WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	return &r, nil
}

// PutMany inserts records in one transaction, replacing any with the same ID
func (s *Storage) PutMany(ctx context.Context, records []exceptions.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO exception_records (`+recordColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		invoice = excluded.invoice,
		amount = excluded.amount,
		invoice_date = excluded.invoice_date,
		vendor_name = excluded.vendor_name,
		entity = excluded.entity,
		status = excluded.status,
		comments = excluded.comments,
		added_at = excluded.added_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		status := r.Status
		if status == "" {
			status = exceptions.StatusIncomplete
		}
		_, err := stmt.ExecContext(ctx,
			r.ID,
			r.Invoice,
			r.Amount.StringFixed(2),
			r.Date,
			r.VendorName,
			r.Entity,
			string(status),
			r.Comments,
			r.AddedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to save record %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// UpdatePartial applies patch to one record and returns the result
func (s *Storage) UpdatePartial(ctx context.Context, id string, patch exceptions.Patch) (*exceptions.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM exception_records WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", id, err)
	}

	patch.Apply(&r)

	_, err = tx.ExecContext(ctx,
		`UPDATE exception_records SET status = ?, comments = ? WHERE id = ?`,
		string(r.Status), r.Comments, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update record %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes one record
func (s *Storage) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exception_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every record
func (s *Storage) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM exception_records`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}
