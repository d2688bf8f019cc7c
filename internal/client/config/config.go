package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/common"
	"github.com/spf13/viper"
)

const EnvPrefix = "KAKEIBO"

// MaxPageSize is the largest page the summary server returns.
const MaxPageSize = 200

// BackupConfig holds the encrypted snapshot upload settings.
type BackupConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Passphrase      string
}

// Config holds runtime settings for the kakeibo CLI.
//
// Units: RequestTimeout and WatchInterval are time.Duration values
// (e.g. 15*time.Second); PullMonths counts calendar months including the
// current one.
type Config struct {
	DatabasePath   string
	BaseURL        string
	AccessKey      string
	RequestTimeout time.Duration
	PullMonths     int
	PageSize       int
	WatchInterval  time.Duration
	LogLevel       string
	LogFormat      string
	Backup         BackupConfig
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "~/.config/kakeibo/kakeibo.db"
	c.BaseURL = ""
	c.AccessKey = ""
	c.RequestTimeout = 15 * time.Second
	c.PullMonths = 2
	c.PageSize = MaxPageSize
	c.WatchInterval = 30 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.Backup = BackupConfig{Region: "auto"}
}

func setDefaults(v *viper.Viper) {
	var c Config
	c.LoadDefaults()

	v.SetDefault("database.path", c.DatabasePath)
	v.SetDefault("server.base_url", c.BaseURL)
	v.SetDefault("server.access_key", c.AccessKey)
	v.SetDefault("server.request_timeout", c.RequestTimeout)
	v.SetDefault("sync.pull_months", c.PullMonths)
	v.SetDefault("sync.page_size", c.PageSize)
	v.SetDefault("sync.watch_interval", c.WatchInterval)
	v.SetDefault("logging.level", c.LogLevel)
	v.SetDefault("logging.format", c.LogFormat)
	v.SetDefault("backup.bucket", c.Backup.Bucket)
	v.SetDefault("backup.region", c.Backup.Region)
	v.SetDefault("backup.endpoint", c.Backup.Endpoint)
	v.SetDefault("backup.access_key_id", c.Backup.AccessKeyID)
	v.SetDefault("backup.secret_access_key", c.Backup.SecretAccessKey)
	v.SetDefault("backup.passphrase", c.Backup.Passphrase)
}

// NewViper returns a viper instance with defaults, KAKEIBO_ environment
// lookup and, when found, the config file read in. An empty path searches
// the standard locations; a missing file there is not an error.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(ExpandPath(path))
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "kakeibo"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return v, nil
}

// Load builds a Config from v. Values v does not know keep their defaults.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	c := &Config{
		DatabasePath:   ExpandPath(v.GetString("database.path")),
		BaseURL:        strings.TrimSpace(v.GetString("server.base_url")),
		AccessKey:      strings.TrimSpace(v.GetString("server.access_key")),
		RequestTimeout: v.GetDuration("server.request_timeout"),
		PullMonths:     v.GetInt("sync.pull_months"),
		PageSize:       v.GetInt("sync.page_size"),
		WatchInterval:  v.GetDuration("sync.watch_interval"),
		LogLevel:       v.GetString("logging.level"),
		LogFormat:      v.GetString("logging.format"),
		Backup: BackupConfig{
			Bucket:          v.GetString("backup.bucket"),
			Region:          v.GetString("backup.region"),
			Endpoint:        v.GetString("backup.endpoint"),
			AccessKeyID:     v.GetString("backup.access_key_id"),
			SecretAccessKey: v.GetString("backup.secret_access_key"),
			Passphrase:      v.GetString("backup.passphrase"),
		},
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the numeric settings.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database path is empty", common.ErrConfiguration)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", common.ErrConfiguration)
	}
	if c.PullMonths < 1 {
		return fmt.Errorf("%w: pull months must be at least 1", common.ErrConfiguration)
	}
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page size must be between 1 and %d", common.ErrConfiguration, MaxPageSize)
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("%w: watch interval must be positive", common.ErrConfiguration)
	}
	return nil
}

// ExpandPath expands a leading ~ and environment variables in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
