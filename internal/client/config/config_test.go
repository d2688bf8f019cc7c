package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "~/.config/kakeibo/kakeibo.db", c.DatabasePath)
	assert.Empty(t, c.BaseURL)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, 2, c.PullMonths)
	assert.Equal(t, 200, c.PageSize)
	assert.Equal(t, 30*time.Second, c.WatchInterval)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	require.NoError(t, c.Validate())
}

func TestLoad_EmptyViperUsesDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "kakeibo", "kakeibo.db"), cfg.DatabasePath)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestNewViper_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kakeibo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/kakeibo-test.db
server:
  base_url: "  https://example.test/  "
  access_key: file-key
  request_timeout: 5s
sync:
  pull_months: 3
  page_size: 50
logging:
  format: json
backup:
  bucket: backups
`), 0o600))

	t.Setenv("KAKEIBO_SERVER_ACCESS_KEY", "env-key")
	t.Setenv("KAKEIBO_LOGGING_LEVEL", "debug")

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/kakeibo-test.db", cfg.DatabasePath)
	assert.Equal(t, "https://example.test/", cfg.BaseURL)
	assert.Equal(t, "env-key", cfg.AccessKey)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.PullMonths)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "backups", cfg.Backup.Bucket)
	assert.Equal(t, "auto", cfg.Backup.Region)
}

func TestNewViper_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kakeibo.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sync":{"watch_interval":"1m"}}`), 0o600))

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.WatchInterval)
}

func TestNewViper_MissingExplicitFileFails(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorContains(t, err, "failed to read config")
}

func TestNewViper_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := NewViper(path)
	require.Error(t, err)
}

func TestLoad_RejectsBadNumbers(t *testing.T) {
	tests := map[string]func(v *viper.Viper){
		"timeout":   func(v *viper.Viper) { v.Set("server.request_timeout", "0s") },
		"months":    func(v *viper.Viper) { v.Set("sync.pull_months", 0) },
		"page size": func(v *viper.Viper) { v.Set("sync.page_size", 201) },
		"interval":  func(v *viper.Viper) { v.Set("sync.watch_interval", "-1s") },
		"db path":   func(v *viper.Viper) { v.Set("database.path", "") },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			mutate(v)
			_, err := Load(v)
			require.ErrorIs(t, err, common.ErrConfiguration)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("KAKEIBO_TEST_DIR", "/var/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "x.db"), ExpandPath("~/x.db"))
	assert.Equal(t, "/var/data/x.db", ExpandPath("$KAKEIBO_TEST_DIR/x.db"))
	assert.Equal(t, "/abs/x.db", ExpandPath("/abs/x.db"))
}
