// Package storage opens the local SQLite store, applies the embedded schema
// migrations and runs the one-time copy of the legacy pending table.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/client/migrations"
	"github.com/dmitrijs2005/kakeibo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/kakeibo/internal/filex"
	"github.com/dmitrijs2005/kakeibo/internal/logging"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Store bundles the database handle with the metadata repository. Expense
// repositories are built by the services, per handle or per transaction.
type Store struct {
	DB       *sql.DB
	Metadata metadata.Repository
}

// filePragmas make a second process wait for the write lock instead of
// failing with SQLITE_BUSY. Transactions take the lock at BEGIN so a read
// inside one is never upgraded under a concurrent writer.
const filePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"

// withPragmas appends filePragmas to a file DSN. In-memory DSNs are
// returned unchanged.
func withPragmas(dsn string) string {
	if filex.IsMemoryDSN(dsn) {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + filePragmas
	}
	return dsn + "?" + filePragmas
}

// RunMigrations brings the schema to the latest embedded version.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Open opens the store at dsn. Open and schema errors are returned; a failed
// legacy copy is only logged and the store is still usable.
func Open(ctx context.Context, dsn string, log logging.Logger) (*Store, error) {
	return open(ctx, dsn, log, time.Now)
}

func open(ctx context.Context, dsn string, log logging.Logger, now func() time.Time) (*Store, error) {
	if _, err := filex.EnsureParentDir(dsn); err != nil {
		return nil, fmt.Errorf("failed to prepare database directory: %w", err)
	}

	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := migrateLegacyPending(ctx, db, now()); err != nil {
		log.Warn(ctx, "legacy pending migration skipped", "error", err)
	}

	return &Store{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
	}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}
