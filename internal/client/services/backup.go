package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/client/backup"
	"github.com/dmitrijs2005/kakeibo/internal/client/models"
	"github.com/dmitrijs2005/kakeibo/internal/client/repositories/expenses"
	"github.com/dmitrijs2005/kakeibo/internal/common"
	"github.com/dmitrijs2005/kakeibo/internal/cryptox"
	"github.com/dmitrijs2005/kakeibo/internal/dbx"
	"github.com/dmitrijs2005/kakeibo/internal/logging"
	"github.com/google/uuid"
)

// Snapshot is the plaintext content of a backup.
type Snapshot struct {
	Created string           `json:"created"`
	Records []models.Expense `json:"records"`
}

// RestoreReport counts what a restore did with the snapshot records.
type RestoreReport struct {
	Records  int
	Restored int
	// SkippedExisting counts records already present locally. The local
	// copy always wins, whatever its status.
	SkippedExisting int
	SkippedInvalid  int
}

// BackupService seals the local store into encrypted snapshots and reads
// them back.
type BackupService interface {
	// Create seals a snapshot of every local record and uploads it. It
	// returns the object key.
	Create(ctx context.Context) (string, error)

	// Restore downloads and opens the snapshot at key and inserts the
	// records missing from the local store. Existing local rows are never
	// overwritten.
	Restore(ctx context.Context, key string) (RestoreReport, error)
}

type backupService struct {
	db         *sql.DB
	uploader   backup.Uploader
	passphrase []byte
	log        logging.Logger
	now        func() time.Time
}

func NewBackupService(db *sql.DB, uploader backup.Uploader, passphrase string, log logging.Logger, now func() time.Time) BackupService {
	if now == nil {
		now = time.Now
	}
	return &backupService{
		db:         db,
		uploader:   uploader,
		passphrase: []byte(passphrase),
		log:        log.With("component", "backup"),
		now:        now,
	}
}

// ObjectKey names a snapshot taken at t.
func ObjectKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("backups/%04d/%02d/%02d/%s.bin", t.Year(), t.Month(), t.Day(), uuid.NewString())
}

func (s *backupService) Create(ctx context.Context) (string, error) {
	if len(s.passphrase) == 0 {
		return "", fmt.Errorf("%w: backup passphrase is not set", common.ErrConfiguration)
	}

	records, err := expenses.NewSQLiteRepository(s.db).GetAll(ctx)
	if err != nil {
		return "", err
	}
	if records == nil {
		records = []models.Expense{}
	}

	now := s.now()
	plain, err := json.Marshal(Snapshot{Created: models.Timestamp(now), Records: records})
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	sealed, err := cryptox.Seal(s.passphrase, plain)
	if err != nil {
		return "", fmt.Errorf("failed to seal snapshot: %w", err)
	}

	key := ObjectKey(now)
	if err := s.uploader.Upload(ctx, key, sealed); err != nil {
		return "", err
	}

	s.log.Info(ctx, "backup uploaded", "key", key, "records", len(records), "bytes", len(sealed))
	return key, nil
}

func (s *backupService) Restore(ctx context.Context, key string) (RestoreReport, error) {
	if len(s.passphrase) == 0 {
		return RestoreReport{}, fmt.Errorf("%w: backup passphrase is not set", common.ErrConfiguration)
	}

	sealed, err := s.uploader.Download(ctx, key)
	if err != nil {
		return RestoreReport{}, err
	}

	plain, err := cryptox.Open(s.passphrase, sealed)
	if err != nil {
		return RestoreReport{}, fmt.Errorf("failed to open snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(plain, &snap); err != nil {
		return RestoreReport{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	report, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (RestoreReport, error) {
		repo := expenses.NewSQLiteRepository(tx)
		r := RestoreReport{Records: len(snap.Records)}

		for _, e := range snap.Records {
			if err := models.ValidateRecord(e); err != nil || !e.Op.Valid() || !e.Status.Valid() {
				r.SkippedInvalid++
				continue
			}
			written, err := repo.PutIfAbsent(ctx, e)
			if err != nil {
				return RestoreReport{}, err
			}
			if written {
				r.Restored++
			} else {
				r.SkippedExisting++
			}
		}
		return r, nil
	})
	if err != nil {
		return RestoreReport{}, fmt.Errorf("failed to restore snapshot: %w", err)
	}

	s.log.Info(ctx, "backup restored", "key", key, "restored", report.Restored,
		"skipped_existing", report.SkippedExisting, "skipped_invalid", report.SkippedInvalid)
	return report, nil
}
