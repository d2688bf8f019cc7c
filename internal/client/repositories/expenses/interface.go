package expenses

import (
	"context"

	"github.com/dmitrijs2005/kakeibo/internal/client/models"
)

// Repository describes storage operations on expense records.
type Repository interface {
	// Put inserts the record or replaces the stored one with the same UUID.
	// Callers always supply the full record.
	Put(ctx context.Context, e models.Expense) error

	// Get returns the record or common.ErrNotFound.
	Get(ctx context.Context, uuid string) (models.Expense, error)

	// Delete removes the row. Deleting an absent UUID is not an error.
	Delete(ctx context.Context, uuid string) error

	// GetAll returns every stored record, logically deleted ones included.
	GetAll(ctx context.Context) ([]models.Expense, error)

	// GetByStatus returns all records with the given status.
	GetByStatus(ctx context.Context, status models.Status) ([]models.Expense, error)

	// CountByStatus counts records with the given status.
	CountByStatus(ctx context.Context, status models.Status) (int, error)

	// GetByDateRange returns records dated within [from, to], excluding
	// those with op=delete.
	GetByDateRange(ctx context.Context, from, to string) ([]models.Expense, error)

	// PutUnlessPending writes e unless a stored record with the same UUID is
	// pending. It reports whether the row was written.
	PutUnlessPending(ctx context.Context, e models.Expense) (bool, error)

	// PutIfAbsent inserts e unless a record with the same UUID is stored.
	// It reports whether the row was written.
	PutIfAbsent(ctx context.Context, e models.Expense) (bool, error)

	// MarkSyncedIfUnchanged sets the record synced with updated_at = stamp,
	// but only if the stored row is pending and matches sent column for
	// column. It reports whether the row changed.
	MarkSyncedIfUnchanged(ctx context.Context, sent models.Expense, stamp string) (bool, error)

	// DeleteSyncedBefore removes synced records dated before cutoff and
	// returns how many were removed.
	DeleteSyncedBefore(ctx context.Context, cutoff string) (int, error)
}
