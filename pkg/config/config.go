package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Config is the resolved application configuration. Values come from
// defaults, then the optional yaml config file, then INKSTONE_* environment
// variables, in that order.
type Config struct {
	Environment string `koanf:"environment"`
	Hostname    string `koanf:"-"`

	ServerHost string `koanf:"server_host"`
	ServerPort int    `koanf:"server_port"`

	DatabaseFilePath             string `koanf:"database_file_path"`
	DatabaseDebug                bool   `koanf:"database_debug"`
	DatabaseMaxRetries           int    `koanf:"database_max_retries"`
	DatabaseConnectRetryCount    int    `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelaySec int    `koanf:"database_connect_retry_delay_sec"`
	DatabaseBusyTimeoutMS        int    `koanf:"database_busy_timeout_ms"`

	JWTSecret string `koanf:"jwt_secret"`

	MediaDir        string `koanf:"media_dir"`
	FrontendDistDir string `koanf:"frontend_dist_dir"`

	BackupDir             string `koanf:"backup_dir"`
	BackupIntervalMinutes int    `koanf:"backup_interval_minutes"`
	BackupRetention       int    `koanf:"backup_retention"`

	DiscordWebhookURL string `koanf:"discord_webhook_url"`
}

const (
	configFileENV = "INKSTONE_CONFIG_FILE"
	envPrefix     = "INKSTONE_"
)

func defaults() *Config {
	return &Config{
		Environment:                  "development",
		ServerPort:                   8574,
		DatabaseFilePath:             "inkstone.db",
		DatabaseMaxRetries:           5,
		DatabaseConnectRetryCount:    5,
		DatabaseConnectRetryDelaySec: 2,
		DatabaseBusyTimeoutMS:        5000,
		JWTSecret:                    "insecure-dev-secret",
		MediaDir:                     "media",
		FrontendDistDir:              "frontend/dist",
		BackupDir:                    "backups",
		BackupIntervalMinutes:        24 * 60,
		BackupRetention:              7,
	}
}

func New() (*Config, error) {
	cfg := defaults()

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = "inkstone.yml"
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "failed to load config file")
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cfg.Hostname = hostname

	if cfg.Environment == "production" && cfg.JWTSecret == defaults().JWTSecret {
		return nil, errors.New("jwt_secret must be set in production")
	}

	return cfg, nil
}

// DatabaseConnectRetryDelay returns the delay between connection attempts.
func (c *Config) DatabaseConnectRetryDelay() time.Duration {
	return time.Duration(c.DatabaseConnectRetryDelaySec) * time.Second
}

// DatabaseBusyTimeout returns how long SQLite waits before SQLITE_BUSY.
func (c *Config) DatabaseBusyTimeout() time.Duration {
	return time.Duration(c.DatabaseBusyTimeoutMS) * time.Millisecond
}

// BackupInterval returns how often the backup scheduler runs.
func (c *Config) BackupInterval() time.Duration {
	return time.Duration(c.BackupIntervalMinutes) * time.Minute
}
