// Package config loads daylist configuration from disk and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all daylist settings.
type Config struct {
	// DBPath is the local SQLite database file.
	DBPath string `mapstructure:"db_path"`

	// PrimaryURL, when set, makes the store an embedded replica of a
	// remote libSQL primary. Empty means purely local.
	PrimaryURL string `mapstructure:"primary_url"`

	// AuthToken authenticates against the remote primary.
	AuthToken string `mapstructure:"auth_token"`

	// SyncInterval is how often the replica pulls from the primary.
	SyncInterval time.Duration `mapstructure:"sync_interval"`

	// InboxDir is the drop directory watched by the inbox daemon.
	InboxDir string `mapstructure:"inbox_dir"`

	// DashboardPort is the WebSocket dashboard listen port.
	DashboardPort int `mapstructure:"dashboard_port"`

	// LogFile, when set, routes logs there with rotation instead of stderr.
	LogFile string `mapstructure:"log_file"`
}

// DefaultConfig returns the defaults used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		DBPath:        filepath.Join(Dir(), "daylist.db"),
		SyncInterval:  time.Minute,
		InboxDir:      filepath.Join(Dir(), "inbox"),
		DashboardPort: 8080,
	}
}

// Dir returns the daylist config directory (~/.daylist).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".daylist"
	}
	return filepath.Join(home, ".daylist")
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the config file if present and applies DAYLIST_* environment
// overrides. A missing file is not an error; defaults are returned.
func Load() (*Config, error) {
	return loadFrom(Path())
}

func loadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("daylist")
	v.AutomaticEnv()
	for _, key := range []string{
		"db_path", "primary_url", "auth_token", "sync_interval",
		"inbox_dir", "dashboard_port", "log_file",
	} {
		// AutomaticEnv alone does not surface env-only keys through
		// Unmarshal; explicit binds do.
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}
