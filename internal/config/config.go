// Package config loads f1dash settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FirstSeason is the earliest season the OpenF1 API carries.
const FirstSeason = 2023

// Config holds all f1dash configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	API        APIConfig        `toml:"api"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultYear int `toml:"default_year,omitempty"` // 0 means the current season
	Workers     int `toml:"workers"`
}

// APIConfig holds fetch layer settings.
type APIConfig struct {
	BaseURL     string `toml:"base_url,omitempty"`
	CacheTTLSec int    `toml:"cache_ttl_sec"`
	DiskCache   bool   `toml:"disk_cache"`
	CachePath   string `toml:"cache_path,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds settings for the background server.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	IntervalSec  int    `toml:"interval_sec"`
	EventsBuffer int    `toml:"events_buffer"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Workers: 4,
		},
		API: APIConfig{
			CacheTTLSec: 300,
		},
		Appearance: AppearanceConfig{
			Theme: "pitwall",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSec:  300,
			EventsBuffer: 200,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "f1dash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "f1dash")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "f1dash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "f1dash")
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies environment overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	return ApplyEnv(cfg)
}

// ApplyEnv overlays OPENF1_BASE_URL, F1DASH_YEAR and F1DASH_WORKERS.
func ApplyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("OPENF1_BASE_URL")); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("F1DASH_YEAR"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("invalid F1DASH_YEAR %q: %w", v, err)
		}
		cfg.General.DefaultYear = n
	}
	if v := os.Getenv("F1DASH_WORKERS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("invalid F1DASH_WORKERS %q: %w", v, err)
		}
		cfg.General.Workers = n
	}
	return cfg, nil
}

// Validate rejects settings the rest of the program cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.General.DefaultYear != 0 && c.General.DefaultYear < FirstSeason {
		errs = append(errs, fmt.Errorf("default_year %d: OpenF1 data starts in %d", c.General.DefaultYear, FirstSeason))
	}
	if c.General.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.General.Workers))
	}
	if c.API.CacheTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache_ttl_sec must be positive, got %d", c.API.CacheTTLSec))
	}
	if c.Daemon.IntervalSec <= 0 {
		errs = append(errs, fmt.Errorf("daemon interval_sec must be positive, got %d", c.Daemon.IntervalSec))
	}
	return errors.Join(errs...)
}

// Year returns the configured season, or the current one when unset.
func (c Config) Year(now time.Time) int {
	if c.General.DefaultYear != 0 {
		return c.General.DefaultYear
	}
	return now.Year()
}

// CacheTTL returns the response freshness window.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.API.CacheTTLSec) * time.Second
}

// PollInterval returns the daemon poll interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Daemon.IntervalSec) * time.Second
}

// CacheDBPath returns the disk cache location.
func (c Config) CacheDBPath() string {
	if c.API.CachePath != "" {
		return c.API.CachePath
	}
	return filepath.Join(CacheDir(), "responses.db")
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
