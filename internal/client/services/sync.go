package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/kakeibo/internal/client/client"
	"github.com/dmitrijs2005/kakeibo/internal/client/models"
	"github.com/dmitrijs2005/kakeibo/internal/logging"
)

// MaxSyncItems is the largest batch the server accepts in one request.
const MaxSyncItems = 1000

// SyncService pushes the pending queue to the server.
type SyncService interface {
	Sync(ctx context.Context) (models.SyncReport, error)
}

type syncService struct {
	client   client.Client
	expenses ExpenseService
	log      logging.Logger
	running  atomic.Bool
}

// NewSyncService builds a single-flight sync service.
func NewSyncService(c client.Client, expenses ExpenseService, log logging.Logger) SyncService {
	return &syncService{client: c, expenses: expenses, log: log.With("component", "sync")}
}

// Sync pushes a snapshot of the pending queue and marks the accepted records
// synced, as long as they still match what was sent. A call made while
// another is in flight returns at once with Skipped set. Nothing in the
// store changes before the server answers.
func (s *syncService) Sync(ctx context.Context) (models.SyncReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Debug(ctx, "sync already in flight")
		return models.SyncReport{Skipped: true}, nil
	}
	defer s.running.Store(false)

	pending, err := s.expenses.Pending(ctx)
	if err != nil {
		return models.SyncReport{}, err
	}
	if len(pending) == 0 {
		return models.SyncReport{NothingToSync: true}, nil
	}

	var report models.SyncReport
	if len(pending) > MaxSyncItems {
		report.Deferred = len(pending) - MaxSyncItems
		pending = pending[:MaxSyncItems]
	}
	report.Submitted = len(pending)

	res, err := s.client.PushExpenses(ctx, pending)
	if err != nil {
		return report, fmt.Errorf("sync failed: %w", err)
	}

	ok, rejected := s.partition(ctx, pending, res)

	n, err := s.expenses.ConfirmSynced(ctx, ok)
	if err != nil {
		return report, fmt.Errorf("failed to apply sync result: %w", err)
	}

	report.Accepted = len(ok)
	report.Rejected = rejected
	report.Superseded = len(ok) - n
	s.log.Info(ctx, "sync finished",
		"submitted", report.Submitted,
		"accepted", report.Accepted,
		"superseded", report.Superseded,
		"rejected", report.Rejected,
		"deferred", report.Deferred)

	return report, nil
}

// partition reduces the server answer to the submitted records. A UUID
// listed as rejected stays pending even if it is also listed as accepted.
func (s *syncService) partition(ctx context.Context, submitted []models.Expense, res models.SyncResult) ([]models.Expense, int) {
	sent := make(map[string]models.Expense, len(submitted))
	for _, e := range submitted {
		sent[e.ClientUUID] = e
	}

	ng := make(map[string]struct{}, len(res.NgUUIDs))
	for _, id := range res.NgUUIDs {
		if _, ok := sent[id]; !ok {
			s.log.Warn(ctx, "server rejected an unknown uuid", "client_uuid", id)
			continue
		}
		ng[id] = struct{}{}
	}

	answered := make(map[string]struct{}, len(sent))
	var ok []models.Expense
	for _, id := range res.OkUUIDs {
		e, known := sent[id]
		if !known {
			s.log.Warn(ctx, "server accepted an unknown uuid", "client_uuid", id)
			continue
		}
		if _, bad := ng[id]; bad {
			s.log.Warn(ctx, "uuid both accepted and rejected, keeping it pending", "client_uuid", id)
			continue
		}
		if _, dup := answered[id]; dup {
			continue
		}
		answered[id] = struct{}{}
		ok = append(ok, e)
	}

	for id := range sent {
		_, a := answered[id]
		_, r := ng[id]
		if !a && !r {
			s.log.Warn(ctx, "server did not answer for uuid, keeping it pending", "client_uuid", id)
		}
	}

	return ok, len(ng)
}
