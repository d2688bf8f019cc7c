package client

import (
	"context"

	"github.com/dmitrijs2005/kakeibo/internal/client/models"
)

// Client is the summary server API used by the sync services.
type Client interface {
	// Ping checks that the server is reachable and healthy.
	Ping(ctx context.Context) error

	// PushExpenses submits items in a single request and returns the
	// server's accept/reject partition.
	PushExpenses(ctx context.Context, items []models.Expense) (models.SyncResult, error)

	// FetchExpenses returns one page of server records dated within
	// [start, end].
	FetchExpenses(ctx context.Context, start, end string, limit, offset int) ([]models.RemoteExpense, error)
}
