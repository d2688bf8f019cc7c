package metadata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/kakeibo/internal/client/models"
	"github.com/dmitrijs2005/kakeibo/internal/dbx"
)

const (
	selectValue = `SELECT value FROM meta WHERE key = ?`
	upsertValue = `INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
)

// SQLiteRepository implements Repository over the meta table of a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to db, which may be a
// transaction.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns the raw value under key, or nil when it is absent.
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, selectValue, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to get meta[%s]: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, upsertValue, key, value); err != nil {
		return fmt.Errorf("failed to set meta[%s]: %w", key, err)
	}
	return nil
}

// Delete removes key. A missing key is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM meta WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete meta[%s]: %w", key, err)
	}
	return nil
}

// Clear removes every key, migration state included.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM meta`); err != nil {
		return fmt.Errorf("failed to clear meta: %w", err)
	}
	return nil
}

// List returns all stored pairs.
func (r *SQLiteRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM meta ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list meta: %w", err)
	}
	defer rows.Close()

	pairs := make(map[string][]byte)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan meta row: %w", err)
		}
		pairs[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meta rows: %w", err)
	}
	return pairs, nil
}

// Setting reads a provisioned text value such as the server base URL.
func (r *SQLiteRepository) Setting(ctx context.Context, key string) (string, bool, error) {
	raw, err := r.Get(ctx, key)
	if err != nil || raw == nil {
		return "", false, err
	}
	return strings.TrimSpace(string(raw)), true, nil
}

// SetSetting stores value with surrounding space removed.
func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	return r.Set(ctx, key, []byte(strings.TrimSpace(value)))
}

// MigrationState decodes the JSON state stored under key.
func (r *SQLiteRepository) MigrationState(ctx context.Context, key string) (*models.MigrationState, error) {
	raw, err := r.Get(ctx, key)
	if err != nil || raw == nil {
		return nil, err
	}

	var st models.MigrationState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("failed to decode migration state %s: %w", key, err)
	}
	return &st, nil
}

// SetMigrationState records st under key as JSON.
func (r *SQLiteRepository) SetMigrationState(ctx context.Context, key string, st models.MigrationState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode migration state %s: %w", key, err)
	}
	return r.Set(ctx, key, raw)
}
