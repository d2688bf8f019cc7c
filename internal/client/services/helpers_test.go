package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/client/models"
	"github.com/dmitrijs2005/kakeibo/internal/client/storage"
	"github.com/dmitrijs2005/kakeibo/internal/logging"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func setupStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(context.Background(), ":memory:", logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

const (
	uuidA = "00000000-0000-4000-8000-00000000000a"
	uuidB = "00000000-0000-4000-8000-00000000000b"
	uuidC = "00000000-0000-4000-8000-00000000000c"
	uuidD = "00000000-0000-4000-8000-00000000000d"
)

func input(id, date string, amount int64) models.Expense {
	return models.Expense{
		ClientUUID: id,
		Date:       date,
		Amount:     amount,
		Category:   "食費",
		Note:       "memo",
		PaidBy:     models.PaidByMe,
	}
}

func ids(items []models.Expense) []string {
	out := make([]string, 0, len(items))
	for _, e := range items {
		out = append(out, e.ClientUUID)
	}
	return out
}
