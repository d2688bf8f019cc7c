package expenses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kakeibo/internal/client/models"
	"github.com/dmitrijs2005/kakeibo/internal/common"
	"github.com/dmitrijs2005/kakeibo/internal/dbx"
)

const columns = `client_uuid, date, amount, category, note, paid_by, op, status, updated_at`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a new SQLiteRepository backed by the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Put inserts a new expense or replaces every column of the stored one.
func (r *SQLiteRepository) Put(ctx context.Context, e models.Expense) error {
	query := `INSERT INTO expenses (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_uuid) DO UPDATE SET
			date = excluded.date,
			amount = excluded.amount,
			category = excluded.category,
			note = excluded.note,
			paid_by = excluded.paid_by,
			op = excluded.op,
			status = excluded.status,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, args(e)...)
	if err != nil {
		return fmt.Errorf("failed to put expense %s: %w", e.ClientUUID, err)
	}
	return nil
}

// Get retrieves an expense by UUID. Returns common.ErrNotFound if absent.
func (r *SQLiteRepository) Get(ctx context.Context, uuid string) (models.Expense, error) {
	query := `SELECT ` + columns + ` FROM expenses WHERE client_uuid = ?`

	e, err := scan(r.db.QueryRowContext(ctx, query, uuid))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Expense{}, common.ErrNotFound
	}
	if err != nil {
		return models.Expense{}, fmt.Errorf("failed to get expense %s: %w", uuid, err)
	}
	return e, nil
}

// Delete removes the expense with the given UUID.
func (r *SQLiteRepository) Delete(ctx context.Context, uuid string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE client_uuid = ?`, uuid)
	if err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", uuid, err)
	}
	return nil
}

// GetAll returns all stored expenses, newest date first.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Expense, error) {
	return r.list(ctx, `SELECT `+columns+` FROM expenses ORDER BY date DESC, client_uuid DESC`)
}

func (r *SQLiteRepository) GetByStatus(ctx context.Context, status models.Status) ([]models.Expense, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidStatus, status)
	}
	return r.list(ctx, `SELECT `+columns+` FROM expenses WHERE status = ? ORDER BY date DESC, client_uuid DESC`, status)
}

func (r *SQLiteRepository) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidStatus, status)
	}

	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE status = ?`, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return n, nil
}

// GetByDateRange returns live expenses dated within [from, to].
func (r *SQLiteRepository) GetByDateRange(ctx context.Context, from, to string) ([]models.Expense, error) {
	query := `SELECT ` + columns + ` FROM expenses
		WHERE date >= ? AND date <= ? AND op <> 'delete'
		ORDER BY date DESC, client_uuid DESC`
	return r.list(ctx, query, from, to)
}

// PutUnlessPending upserts e, leaving a pending local row untouched.
func (r *SQLiteRepository) PutUnlessPending(ctx context.Context, e models.Expense) (bool, error) {
	query := `INSERT INTO expenses (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_uuid) DO UPDATE SET
			date = excluded.date,
			amount = excluded.amount,
			category = excluded.category,
			note = excluded.note,
			paid_by = excluded.paid_by,
			op = excluded.op,
			status = excluded.status,
			updated_at = excluded.updated_at
		WHERE expenses.status <> 'pending'`

	res, err := r.db.ExecContext(ctx, query, args(e)...)
	if err != nil {
		return false, fmt.Errorf("failed to merge expense %s: %w", e.ClientUUID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// PutIfAbsent inserts e only when no row with its UUID exists.
func (r *SQLiteRepository) PutIfAbsent(ctx context.Context, e models.Expense) (bool, error) {
	query := `INSERT INTO expenses (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_uuid) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, args(e)...)
	if err != nil {
		return false, fmt.Errorf("failed to insert expense %s: %w", e.ClientUUID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// MarkSyncedIfUnchanged flips the row to synced only while it is still
// pending and still holds exactly the content of sent.
func (r *SQLiteRepository) MarkSyncedIfUnchanged(ctx context.Context, sent models.Expense, stamp string) (bool, error) {
	query := `UPDATE expenses SET status = 'synced', updated_at = ?
		WHERE client_uuid = ? AND status = 'pending' AND updated_at = ?
			AND date = ? AND amount = ? AND category = ? AND note = ?
			AND paid_by = ? AND op = ?`

	res, err := r.db.ExecContext(ctx, query, stamp,
		sent.ClientUUID, sent.UpdatedAt,
		sent.Date, sent.Amount, sent.Category, sent.Note,
		string(sent.PaidBy), string(sent.Op))
	if err != nil {
		return false, fmt.Errorf("failed to mark expense %s synced: %w", sent.ClientUUID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteSyncedBefore purges synced expenses dated before cutoff.
func (r *SQLiteRepository) DeleteSyncedBefore(ctx context.Context, cutoff string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE status = 'synced' AND date < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expenses: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, params ...any) ([]models.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to select expenses: %w", err)
	}
	defer rows.Close()

	var result []models.Expense
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense rows: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (models.Expense, error) {
	var e models.Expense
	err := s.Scan(&e.ClientUUID, &e.Date, &e.Amount, &e.Category, &e.Note,
		&e.PaidBy, &e.Op, &e.Status, &e.UpdatedAt)
	return e, err
}

func args(e models.Expense) []any {
	return []any{e.ClientUUID, e.Date, e.Amount, e.Category, e.Note,
		string(e.PaidBy), string(e.Op), string(e.Status), e.UpdatedAt}
}
