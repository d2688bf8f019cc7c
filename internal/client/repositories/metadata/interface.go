// Package metadata stores small key/value settings of the local store:
// provisioned configuration and one-time migration state.
package metadata

import (
	"context"

	"github.com/dmitrijs2005/kakeibo/internal/client/models"
)

// Repository is a key/value store over the meta table.
// Get of a missing key returns (nil, nil).
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Setting returns a provisioned text value with surrounding space
	// removed. ok is false when the key was never set.
	Setting(ctx context.Context, key string) (value string, ok bool, err error)
	SetSetting(ctx context.Context, key, value string) error

	// MigrationState returns the recorded state under key, or nil when the
	// migration has not completed.
	MigrationState(ctx context.Context, key string) (*models.MigrationState, error)
	SetMigrationState(ctx context.Context, key string, st models.MigrationState) error
}
