// Package services implements the expense engine on top of the local store
// and the server client.
//
//   - ExpenseService: record lifecycle (upsert, logical delete, hard delete,
//     mark synced) and the read views (pending queue, date range, summary).
//   - SyncService: pushes the pending queue and applies the server's
//     accept/reject partition. At most one round runs at a time.
//   - MergeService: pulls recent server history without touching pending
//     local records, and purges old synced records.
//   - BackupService: encrypted snapshots of the store.
package services
