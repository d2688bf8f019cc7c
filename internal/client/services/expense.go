package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/client/models"
	"github.com/dmitrijs2005/kakeibo/internal/client/repositories/expenses"
	"github.com/dmitrijs2005/kakeibo/internal/common"
	"github.com/dmitrijs2005/kakeibo/internal/dbx"
)

// ExpenseService owns the local record lifecycle: every write marks the
// record pending until a sync round confirms it.
type ExpenseService interface {
	// Upsert validates e and stores it as a pending upsert.
	Upsert(ctx context.Context, e models.Expense) (models.Expense, error)
	// MarkDelete turns an existing record into a pending delete.
	MarkDelete(ctx context.Context, uuid string) (models.Expense, error)
	// HardDelete drops the row without telling the server.
	HardDelete(ctx context.Context, uuid string) error
	// MarkSynced flips the named records to synced unconditionally.
	MarkSynced(ctx context.Context, uuids []string) (int, error)
	// ConfirmSynced flips each sent record to synced unless it changed
	// locally after it was sent.
	ConfirmSynced(ctx context.Context, sent []models.Expense) (int, error)
	Get(ctx context.Context, uuid string) (models.Expense, error)

	Pending(ctx context.Context) ([]models.Expense, error)
	PendingCount(ctx context.Context) (int, error)
	ByRange(ctx context.Context, from, to string) ([]models.Expense, error)
	Summary(ctx context.Context, from, to string) (models.Summary, error)
	All(ctx context.Context) ([]models.Expense, error)
}

type expenseService struct {
	db   *sql.DB
	repo expenses.Repository
	now  func() time.Time
}

// NewExpenseService builds the lifecycle service over db. now defaults to
// time.Now.
func NewExpenseService(db *sql.DB, now func() time.Time) ExpenseService {
	if now == nil {
		now = time.Now
	}
	return &expenseService{db: db, repo: expenses.NewSQLiteRepository(db), now: now}
}

func (s *expenseService) stamp() string {
	return models.Timestamp(s.now())
}

func (s *expenseService) Upsert(ctx context.Context, e models.Expense) (models.Expense, error) {
	if err := models.ValidateExpense(e); err != nil {
		return models.Expense{}, err
	}

	e.Op = models.OpUpsert
	e.Status = models.StatusPending
	e.UpdatedAt = s.stamp()

	if err := s.repo.Put(ctx, e); err != nil {
		return models.Expense{}, fmt.Errorf("saving error: %w", err)
	}
	return e, nil
}

func (s *expenseService) MarkDelete(ctx context.Context, uuid string) (models.Expense, error) {
	e, err := s.repo.Get(ctx, uuid)
	if err != nil {
		return models.Expense{}, fmt.Errorf("mark delete %s: %w", uuid, err)
	}

	e.Op = models.OpDelete
	e.Status = models.StatusPending
	e.UpdatedAt = s.stamp()

	if err := s.repo.Put(ctx, e); err != nil {
		return models.Expense{}, fmt.Errorf("saving error: %w", err)
	}
	return e, nil
}

func (s *expenseService) HardDelete(ctx context.Context, uuid string) error {
	if err := s.repo.Delete(ctx, uuid); err != nil {
		return fmt.Errorf("error deleting expense: %w", err)
	}
	return nil
}

// MarkSynced flips the given records to synced in one transaction. UUIDs
// not present locally are skipped. It returns how many records changed.
func (s *expenseService) MarkSynced(ctx context.Context, uuids []string) (int, error) {
	if len(uuids) == 0 {
		return 0, nil
	}

	stamp := s.stamp()
	return dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (int, error) {
		repo := expenses.NewSQLiteRepository(tx)
		seen := make(map[string]struct{}, len(uuids))
		n := 0

		for _, id := range uuids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			e, err := repo.Get(ctx, id)
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			if err != nil {
				return 0, err
			}

			e.Status = models.StatusSynced
			e.UpdatedAt = stamp
			if err := repo.Put(ctx, e); err != nil {
				return 0, err
			}
			n++
		}
		return n, nil
	})
}

// ConfirmSynced applies a server acknowledgement in one transaction. A
// record edited, deleted or discarded while the push was in flight keeps
// its local state and goes out with the next round.
func (s *expenseService) ConfirmSynced(ctx context.Context, sent []models.Expense) (int, error) {
	if len(sent) == 0 {
		return 0, nil
	}

	stamp := s.stamp()
	return dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (int, error) {
		repo := expenses.NewSQLiteRepository(tx)
		n := 0
		for _, e := range sent {
			changed, err := repo.MarkSyncedIfUnchanged(ctx, e, stamp)
			if err != nil {
				return 0, err
			}
			if changed {
				n++
			}
		}
		return n, nil
	})
}

func (s *expenseService) Get(ctx context.Context, uuid string) (models.Expense, error) {
	e, err := s.repo.Get(ctx, uuid)
	if err != nil {
		return models.Expense{}, fmt.Errorf("error retrieving expense: %w", err)
	}
	return e, nil
}

func (s *expenseService) Pending(ctx context.Context) ([]models.Expense, error) {
	items, err := s.repo.GetByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("error retrieving pending expenses: %w", err)
	}
	models.SortForPresentation(items)
	return items, nil
}

func (s *expenseService) PendingCount(ctx context.Context) (int, error) {
	return s.repo.CountByStatus(ctx, models.StatusPending)
}

func (s *expenseService) ByRange(ctx context.Context, from, to string) ([]models.Expense, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	items, err := s.repo.GetByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("error retrieving expenses: %w", err)
	}
	models.SortForPresentation(items)
	return items, nil
}

func (s *expenseService) Summary(ctx context.Context, from, to string) (models.Summary, error) {
	items, err := s.ByRange(ctx, from, to)
	if err != nil {
		return models.Summary{}, err
	}
	return models.Summarize(from, to, items), nil
}

func (s *expenseService) All(ctx context.Context) ([]models.Expense, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving expenses: %w", err)
	}
	models.SortForPresentation(items)
	return items, nil
}

func validateRange(from, to string) error {
	if err := models.ValidateDate("start", from); err != nil {
		return err
	}
	if err := models.ValidateDate("end", to); err != nil {
		return err
	}
	if from > to {
		return common.NewValidationError("range", "start must not be after end")
	}
	return nil
}
