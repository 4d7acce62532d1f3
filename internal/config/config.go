package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	defaultAPIBaseURL = "https://api.twitter.com/1.1"
	envPrefix         = "FEEDVIEW"

	SnapshotStoreSQLite = "sqlite"
	SnapshotStoreRedis  = "redis"
)

// Config holds runtime settings for the CLI app.
type Config struct {
	Token         string `envconfig:"TOKEN"`
	APIBaseURL    string `envconfig:"API_BASE_URL" default:"https://api.twitter.com/1.1"`
	DBPath        string `envconfig:"DB_PATH" default:"feedview.db"`
	SnapshotStore string `envconfig:"SNAPSHOT_STORE" default:"sqlite"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	LogPath       string `envconfig:"LOG_PATH" default:"feedview.log"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	MetricsAddr   string `envconfig:"METRICS_ADDR"`
}

// LoadFromEnv reads FEEDVIEW_* variables, seeding them from ./.env when the
// file exists. Variables already set in the environment win.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	cfg.APIBaseURL = strings.TrimSpace(cfg.APIBaseURL)
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	cfg.SnapshotStore = strings.ToLower(strings.TrimSpace(cfg.SnapshotStore))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Token == "" {
		return errors.New("FEEDVIEW_TOKEN is required")
	}
	if c.APIBaseURL == "" {
		return errors.New("APIBaseURL is required")
	}
	if c.APIBaseURL[len(c.APIBaseURL)-1] == '/' {
		return fmt.Errorf("APIBaseURL must not end with '/': %s", c.APIBaseURL)
	}
	switch c.SnapshotStore {
	case SnapshotStoreSQLite:
		if c.DBPath == "" {
			return errors.New("DBPath is required")
		}
	case SnapshotStoreRedis:
		if c.RedisAddr == "" {
			return errors.New("FEEDVIEW_REDIS_ADDR is required when SnapshotStore is redis")
		}
		if c.DBPath == "" {
			return errors.New("DBPath is required")
		}
	default:
		return fmt.Errorf("SnapshotStore must be sqlite or redis: %s", c.SnapshotStore)
	}
	if c.LogPath == "" {
		return errors.New("LogPath is required")
	}
	return nil
}
