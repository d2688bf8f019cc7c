package config

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/kakeibo/internal/client/repositories/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func metaRepo(t *testing.T) *metadata.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE meta (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return metadata.NewSQLiteRepository(db)
}

func TestMetadataProvider_FallbackThenPersisted(t *testing.T) {
	ctx := context.Background()
	p := NewMetadataProvider(metaRepo(t), " https://env.example ", "env-key")

	u, err := p.BaseURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example", u)

	require.NoError(t, p.SetBaseURL(ctx, "  https://saved.example/ "))
	require.NoError(t, p.SetAccessKey(ctx, " saved-key "))

	u, err = p.BaseURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://saved.example/", u)

	k, err := p.AccessKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "saved-key", k)

	require.NoError(t, p.Clear(ctx))

	k, err = p.AccessKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "env-key", k)
}

func TestMetadataProvider_EmptyMeansUnconfigured(t *testing.T) {
	ctx := context.Background()
	p := NewMetadataProvider(metaRepo(t), "", "")

	u, err := p.BaseURL(ctx)
	require.NoError(t, err)
	assert.Empty(t, u)

	k, err := p.AccessKey(ctx)
	require.NoError(t, err)
	assert.Empty(t, k)
}

type failingRepo struct {
	metadata.Repository
}

func (failingRepo) Setting(context.Context, string) (string, bool, error) {
	return "", false, errors.New("db closed")
}

func TestMetadataProvider_ReadErrorIsWrapped(t *testing.T) {
	p := NewMetadataProvider(failingRepo{}, "x", "y")

	_, err := p.BaseURL(context.Background())
	require.ErrorContains(t, err, "failed to read config.base_url")
}

func TestStaticProvider(t *testing.T) {
	ctx := context.Background()
	var p Provider = NewStaticProvider(" http://localhost:8787 ", "k")

	u, _ := p.BaseURL(ctx)
	assert.Equal(t, "http://localhost:8787", u)

	require.NoError(t, p.SetAccessKey(ctx, "k2"))
	k, _ := p.AccessKey(ctx)
	assert.Equal(t, "k2", k)

	require.NoError(t, p.Clear(ctx))
	u, _ = p.BaseURL(ctx)
	k, _ = p.AccessKey(ctx)
	assert.Empty(t, u)
	assert.Empty(t, k)
}
