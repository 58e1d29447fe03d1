package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration, loaded from a YAML
// file at startup. A default file is written on first run.
type Config struct {
	// Listen is the HTTP listen address for the web UI.
	Listen string `yaml:"listen"`

	// Database is the path to the SQLite database file.
	Database string `yaml:"database"`

	// FeedURL is the iCalendar feed the game schedule is imported from.
	FeedURL string `yaml:"feed_url"`

	// RefreshCron is a cron-style schedule string (e.g. "0 */6 * * *")
	// for periodic calendar imports. Empty disables the schedule; the
	// calendar can still be refreshed manually from the UI.
	RefreshCron string `yaml:"refresh"`

	// CacheFile is where the last successfully fetched feed body is
	// kept so a flaky feed host does not blank the calendar.
	CacheFile string `yaml:"cache_file"`

	// CacheMaxAgeHours bounds how stale the cached feed may be before
	// it is no longer used as a fallback.
	CacheMaxAgeHours int `yaml:"cache_max_age_hours"`

	// MinPlayers is the count below which a game cannot start.
	MinPlayers int `yaml:"min_players"`

	// IdealPlayers is the count at which the roster is full, subs included.
	IdealPlayers int `yaml:"ideal_players"`

	// LogLevel is one of debug, info, error.
	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Listen:           "127.0.0.1:8080",
		Database:         "rsvp.db",
		FeedURL:          "",
		RefreshCron:      "0 */6 * * *",
		CacheFile:        "calendar_cache.json",
		CacheMaxAgeHours: 12,
		MinPlayers:       8,
		IdealPlayers:     12,
		LogLevel:         "info",
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Database == "" {
		c.Database = "rsvp.db"
	}
	if c.CacheFile == "" {
		c.CacheFile = "calendar_cache.json"
	}
	if c.CacheMaxAgeHours <= 0 {
		c.CacheMaxAgeHours = 12
	}
	if c.MinPlayers <= 0 {
		c.MinPlayers = 8
	}
	if c.IdealPlayers < c.MinPlayers {
		c.IdealPlayers = c.MinPlayers
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// CacheMaxAge returns CacheMaxAgeHours as a time.Duration.
func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.CacheMaxAgeHours) * time.Hour
}

// Load loads configuration from the given YAML path. If the file does
// not exist, a default config is written there and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to path atomically (temp file + rename).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".rsvp-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
