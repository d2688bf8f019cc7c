package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/client/models"
	"github.com/dmitrijs2005/kakeibo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/kakeibo/internal/dbx"
)

// LegacyPendingKey is the meta key holding the MigrationState of the
// pending-table copy.
const LegacyPendingKey = "migration.legacy_pending"

const legacyPendingVersion = 1

// LegacyMigrationState returns the recorded state of the legacy copy, or nil
// if it has not completed.
func LegacyMigrationState(ctx context.Context, db dbx.DBTX) (*models.MigrationState, error) {
	return metadata.NewSQLiteRepository(db).MigrationState(ctx, LegacyPendingKey)
}

// migrateLegacyPending copies rows of the legacy pending table into expenses
// as pending records. Rows already present in expenses win. Rows the
// current schema would refuse stay behind in the legacy table, which is
// never changed. The copy and its completion state commit together.
func migrateLegacyPending(ctx context.Context, db *sql.DB, now time.Time) error {
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		meta := metadata.NewSQLiteRepository(tx)

		st, err := meta.MigrationState(ctx, LegacyPendingKey)
		if err != nil {
			return err
		}
		if st != nil && st.Version >= legacyPendingVersion {
			return nil
		}

		stamp := models.Timestamp(now)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO expenses (client_uuid, date, amount, category, note, paid_by, op, status, updated_at)
			SELECT client_uuid, date, amount, category, COALESCE(note, ''), paid_by,
				CASE WHEN op = 'delete' THEN 'delete' ELSE 'upsert' END,
				'pending', ?
			FROM pending
			WHERE amount BETWEEN 1 AND 1000000000 AND paid_by IN ('me', 'her')
			ON CONFLICT(client_uuid) DO NOTHING`, stamp)
		if err != nil {
			return fmt.Errorf("failed to copy legacy pending rows: %w", err)
		}

		return meta.SetMigrationState(ctx, LegacyPendingKey, models.MigrationState{
			Version:     legacyPendingVersion,
			CompletedAt: stamp,
		})
	})
}
