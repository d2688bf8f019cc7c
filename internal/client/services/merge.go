package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/client/client"
	"github.com/dmitrijs2005/kakeibo/internal/client/models"
	"github.com/dmitrijs2005/kakeibo/internal/client/repositories/expenses"
	"github.com/dmitrijs2005/kakeibo/internal/common"
	"github.com/dmitrijs2005/kakeibo/internal/dbx"
	"github.com/dmitrijs2005/kakeibo/internal/logging"
)

const (
	DefaultPullMonths = 2
	DefaultPageSize   = 200
)

// MergeService brings server records into the local store and prunes old
// synced ones.
type MergeService interface {
	// Pull fetches the last months calendar months and merges them.
	Pull(ctx context.Context, months int) (models.PullReport, error)
	// Purge drops synced records dated before cutoff.
	Purge(ctx context.Context, cutoff string) (int, error)
	PurgeOlderThan(ctx context.Context, months int) (int, error)
}

type mergeService struct {
	db       *sql.DB
	client   client.Client
	log      logging.Logger
	now      func() time.Time
	pageSize int
}

// MergeOption configures NewMergeService.
type MergeOption func(*mergeService)

// WithPageSize sets the listing page size. Values outside 1..200 are ignored.
func WithPageSize(n int) MergeOption {
	return func(s *mergeService) {
		if n >= 1 && n <= DefaultPageSize {
			s.pageSize = n
		}
	}
}

func WithMergeClock(now func() time.Time) MergeOption {
	return func(s *mergeService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMergeService builds the merge service over db and c.
func NewMergeService(db *sql.DB, c client.Client, log logging.Logger, opts ...MergeOption) MergeService {
	s := &mergeService{
		db:       db,
		client:   c,
		log:      log.With("component", "merge"),
		now:      time.Now,
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pull fetches server records of the last months calendar months, page by
// page until a short page, and merges them. Records pending locally are
// never overwritten.
func (s *mergeService) Pull(ctx context.Context, months int) (models.PullReport, error) {
	if months <= 0 {
		months = DefaultPullMonths
	}
	start, end := models.RecentMonthsRange(s.now(), months)

	var report models.PullReport
	for offset := 0; ; {
		rows, err := s.client.FetchExpenses(ctx, start, end, s.pageSize, offset)
		if err != nil {
			return report, fmt.Errorf("pull failed at offset %d: %w", offset, err)
		}
		report.Pages++
		report.Fetched += len(rows)

		if len(rows) > 0 {
			if err := s.mergePage(ctx, rows, &report); err != nil {
				return report, err
			}
		}

		if len(rows) < s.pageSize {
			break
		}
		offset += len(rows)
	}

	s.log.Info(ctx, "pull finished",
		"start", start,
		"end", end,
		"pages", report.Pages,
		"fetched", report.Fetched,
		"merged", report.Merged,
		"skipped_pending", report.SkippedPending,
		"skipped_no_uuid", report.SkippedNoUUID,
		"skipped_invalid", report.SkippedInvalid)

	return report, nil
}

func (s *mergeService) mergePage(ctx context.Context, rows []models.RemoteExpense, report *models.PullReport) error {
	stamp := models.Timestamp(s.now())

	var page models.PullReport
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		page = models.PullReport{}
		repo := expenses.NewSQLiteRepository(tx)

		for _, r := range rows {
			e, ok := s.fromRemote(ctx, r, &page)
			if !ok {
				continue
			}
			e.UpdatedAt = stamp

			written, err := repo.PutUnlessPending(ctx, e)
			if err != nil {
				return err
			}
			if written {
				page.Merged++
			} else {
				page.SkippedPending++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to merge page: %w", err)
	}

	report.Merged += page.Merged
	report.SkippedPending += page.SkippedPending
	report.SkippedNoUUID += page.SkippedNoUUID
	report.SkippedInvalid += page.SkippedInvalid
	return nil
}

func (s *mergeService) fromRemote(ctx context.Context, r models.RemoteExpense, page *models.PullReport) (models.Expense, bool) {
	if r.ClientUUID == nil || strings.TrimSpace(*r.ClientUUID) == "" {
		page.SkippedNoUUID++
		var id any
		if r.ID != nil {
			id = *r.ID
		}
		s.log.Warn(ctx, "skipping server record without client_uuid", "id", id, "date", r.Date)
		return models.Expense{}, false
	}

	e := models.Expense{
		ClientUUID: strings.TrimSpace(*r.ClientUUID),
		Date:       r.Date,
		Amount:     r.Amount,
		Category:   r.Category,
		PaidBy:     models.PaidByMe,
		Op:         models.OpUpsert,
		Status:     models.StatusSynced,
	}
	if r.Note != nil {
		e.Note = *r.Note
	}
	if r.PaidBy != nil {
		e.PaidBy = *r.PaidBy
	}

	if err := models.ValidateRecord(e); err != nil {
		page.SkippedInvalid++
		s.log.Warn(ctx, "skipping invalid server record", "client_uuid", e.ClientUUID, "error", err)
		return models.Expense{}, false
	}
	return e, true
}

// Purge removes synced records dated before cutoff. Pending records stay
// regardless of age.
func (s *mergeService) Purge(ctx context.Context, cutoff string) (int, error) {
	if err := models.ValidateDate("cutoff", cutoff); err != nil {
		return 0, err
	}

	n, err := expenses.NewSQLiteRepository(s.db).DeleteSyncedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.log.Info(ctx, "purged synced expenses", "cutoff", cutoff, "removed", n)
	return n, nil
}

// PurgeOlderThan purges synced records dated before the first day of the
// month months ago.
func (s *mergeService) PurgeOlderThan(ctx context.Context, months int) (int, error) {
	if months < 1 {
		return 0, common.NewValidationError("months", "must be at least 1")
	}
	cutoff := models.MonthsAgo(s.now(), months).Format(common.DateLayout)
	return s.Purge(ctx, cutoff)
}
