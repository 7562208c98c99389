// Package config loads and normalizes the server's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// AssetCacheConfig configures the offline asset cache in front of the
// site's origin. When Origin is empty the cache is disabled and static
// files are served from StaticDir instead.
type AssetCacheConfig struct {
	// Origin is the base URL assets are fetched from, e.g. "https://cdn.pomtech.example".
	Origin string `yaml:"origin" json:"origin"`

	// Version names the current cache generation. Bumping it is the only
	// supported invalidation mechanism; older generations are swept on
	// the next activation.
	Version string `yaml:"version" json:"version"`

	// Manifest is the fixed, ordered list of asset paths populated at install.
	Manifest []string `yaml:"manifest" json:"manifest"`

	// Dir is the filesystem root holding cache generations.
	Dir string `yaml:"dir" json:"dir"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// DataDir holds the SQLite database.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// StaticDir is served at / when the asset cache is disabled.
	StaticDir string `yaml:"static_dir" json:"static_dir"`

	// Timezone is the IANA zone used for "today", reminder scans and the
	// midnight rollover (e.g. "Europe/Paris").
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls the first column of the month grid.
	// Supported values: "sunday" (default) and "monday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// ReminderScan is the cron spec driving reminder scans.
	ReminderScan string `yaml:"reminder_scan" json:"reminder_scan"`

	// SearchHistoryLimit caps the number of retained search entries.
	SearchHistoryLimit int `yaml:"search_history_limit" json:"search_history_limit"`

	// Assets configures the offline asset cache.
	Assets AssetCacheConfig `yaml:"assets" json:"assets"`
}

// Default returns the in-memory default configuration.
func Default() *Config {
	return &Config{
		Listen:             ":8099",
		DataDir:            "./data",
		StaticDir:          "./static",
		Timezone:           "UTC",
		WeekStart:          "sunday",
		ReminderScan:       "@every 1m",
		SearchHistoryLimit: 10,
	}
}

// Normalize fills in missing or zero values so partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	d := Default()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.StaticDir == "" {
		c.StaticDir = d.StaticDir
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	switch c.WeekStart {
	case "sunday", "monday":
	default:
		c.WeekStart = d.WeekStart
	}
	if c.ReminderScan == "" {
		c.ReminderScan = d.ReminderScan
	}
	if c.SearchHistoryLimit <= 0 {
		c.SearchHistoryLimit = d.SearchHistoryLimit
	}
	if c.Assets.Dir == "" {
		c.Assets.Dir = filepath.Join(c.DataDir, "assetcache")
	}
	if c.Assets.Version == "" {
		c.Assets.Version = "v1"
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads configuration from the given YAML path. If the file does not
// exist, a default config is written there (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
