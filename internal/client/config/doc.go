// Package config loads runtime configuration for the kakeibo CLI and
// provides the server settings to the sync engine.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (YAML or JSON) given by --config, otherwise
//     config.yaml searched in $HOME/.config/kakeibo and the working directory.
//  3. Environment variables prefixed KAKEIBO_, with dots replaced by
//     underscores (KAKEIBO_SERVER_BASE_URL, KAKEIBO_LOGGING_LEVEL).
//  4. Command-line flags bound through viper.
//
// # File schema
//
//	database:
//	  path: ~/.config/kakeibo/kakeibo.db
//	server:
//	  base_url: https://kakeibo.example.com
//	  access_key: secret
//	  request_timeout: 15s
//	sync:
//	  pull_months: 2
//	  page_size: 200
//	  watch_interval: 30s
//	logging:
//	  level: info
//	  format: text
//	backup:
//	  bucket: kakeibo-backups
//	  region: auto
//	  endpoint: http://127.0.0.1:9000
//	  passphrase: correct horse
//
// # Provider
//
// The sync engine never reads Config directly for the base URL and access
// key. It asks a Provider, which lets a device be provisioned once
// (persisted in the local meta table) while Config supplies the fallback.
//
// Primary API
//
//   - type Config                 : all runtime settings
//   - func NewViper(path string)  : viper instance wired to file and env
//   - func Load(v)                : builds Config from defaults and viper
//   - type Provider               : base URL and access key source
//   - type MetadataProvider       : persisted values with static fallback
//   - type StaticProvider         : fixed values
package config
