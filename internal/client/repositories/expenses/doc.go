// Package expenses provides the client-side persistence layer for expense
// records.
//
// # Overview
//
// The package defines a Repository interface for the record store keyed by
// client UUID. The SQLite implementation (SQLiteRepository) runs over a
// dbx.DBTX, so the same code works on *sql.DB and inside a *sql.Tx.
//
// # Indexes
//
// Reads by sync status use idx_expenses_status; date range reads use
// idx_expenses_date. Range reads never return logically deleted rows;
// status reads do, because the pending queue must show deletions in flight.
//
// # Conflict-aware writes
//
// PutUnlessPending is the write path of the remote merge: a single
// INSERT ... ON CONFLICT statement that leaves a pending local row untouched.
// PutIfAbsent is the restore path and never replaces a stored row.
// MarkSyncedIfUnchanged applies a server acknowledgement only to a row that
// still holds the content that was pushed.
//
// Typical Usage
//
//	repo := expenses.NewSQLiteRepository(db)
//	_ = repo.Put(ctx, e)
//	one, _ := repo.Get(ctx, id)
//	queue, _ := repo.GetByStatus(ctx, models.StatusPending)
//	march, _ := repo.GetByDateRange(ctx, "2025-03-01", "2025-03-31")
package expenses
