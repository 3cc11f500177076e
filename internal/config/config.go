// Package config loads the sync configuration: non-secret settings from a
// YAML file, credentials from the environment (optionally sourced from a
// .env file).
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// GuestyConfig configures the reservation source.
type GuestyConfig struct {
	BaseURL string `yaml:"base_url"`
	// ListingID, when set, switches reservation discovery to the listing's
	// availability calendar instead of a windowed reservation search.
	ListingID string `yaml:"listing_id"`
	// Credentials come from the environment, never from the YAML file.
	Username  string `yaml:"-"`
	Password  string `yaml:"-"`
	AccountID string `yaml:"-"`
	APIKey    string `yaml:"-"`
}

// AugustConfig configures the access provider.
type AugustConfig struct {
	BaseURL string `yaml:"base_url"`
	// LockID is the lock that guest codes are loaded onto.
	LockID string `yaml:"lock_id"`

	InstallID  string `yaml:"-"`
	Password   string `yaml:"-"`
	Identifier string `yaml:"-"`
	APIKey     string `yaml:"-"`
}

// CalendarConfig configures the calendar downstream.
type CalendarConfig struct {
	// Enabled gates the calendar sync; access-code provisioning runs
	// regardless.
	Enabled    bool   `yaml:"enabled"`
	BaseURL    string `yaml:"base_url"`
	CalendarID string `yaml:"calendar_id"`
	MaxResults int    `yaml:"max_results"`

	Token string `yaml:"-"`
}

// SyncConfig tunes the reconciliation engine.
type SyncConfig struct {
	// WindowDays bounds how far ahead reservations are considered.
	WindowDays int `yaml:"window_days"`
	// PageSize is the reservation listing page size.
	PageSize int `yaml:"page_size"`
	// PollInterval is the delay between pin status polls.
	PollInterval Duration `yaml:"poll_interval"`
	// MaxPolls bounds the pin status poll loop per request.
	MaxPolls int `yaml:"max_polls"`
	// WatchInterval is the delay between runs in watch mode.
	WatchInterval Duration `yaml:"watch_interval"`
	// MetricsAddr is the listen address of the watch-mode metrics endpoint.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Config is the full sync configuration.
type Config struct {
	Guesty   GuestyConfig   `yaml:"guesty"`
	August   AugustConfig   `yaml:"august"`
	Calendar CalendarConfig `yaml:"calendar"`
	Sync     SyncConfig     `yaml:"sync"`
}

// applyDefaults fills unset tuning values.
func (c *Config) applyDefaults() {
	if c.Sync.WindowDays == 0 {
		c.Sync.WindowDays = 7
	}
	if c.Sync.PageSize == 0 {
		c.Sync.PageSize = 25
	}
	if c.Sync.PollInterval == 0 {
		c.Sync.PollInterval = Duration(30 * time.Second)
	}
	if c.Sync.MaxPolls == 0 {
		c.Sync.MaxPolls = 120
	}
	if c.Sync.WatchInterval == 0 {
		c.Sync.WatchInterval = Duration(15 * time.Minute)
	}
	if c.Sync.MetricsAddr == "" {
		c.Sync.MetricsAddr = ":9464"
	}
	if c.Calendar.MaxResults == 0 {
		c.Calendar.MaxResults = 250
	}
}

// Validate checks that every setting a run depends on is present.
func (c *Config) Validate() error {
	if c.Guesty.Username == "" || c.Guesty.Password == "" {
		return fmt.Errorf("guesty credentials missing: set GUESTY_USERNAME and GUESTY_PASSWORD")
	}
	if c.Guesty.AccountID == "" {
		return fmt.Errorf("guesty account missing: set GUESTY_ACCOUNT")
	}
	if c.August.InstallID == "" || c.August.Password == "" || c.August.Identifier == "" {
		return fmt.Errorf("august credentials missing: set AUGUST_INSTALL_ID, AUGUST_PASSWORD and AUGUST_IDENTIFIER")
	}
	if c.August.LockID == "" {
		return fmt.Errorf("august lock missing: set august.lock_id or AUGUST_LOCK")
	}
	if c.Calendar.Enabled && c.Calendar.CalendarID == "" {
		return fmt.Errorf("calendar sync enabled but calendar_id is not set")
	}
	if c.Sync.WindowDays < 1 {
		return fmt.Errorf("sync window_days must be at least 1, got %d", c.Sync.WindowDays)
	}
	if c.Sync.MaxPolls < 1 {
		return fmt.Errorf("sync max_polls must be at least 1, got %d", c.Sync.MaxPolls)
	}
	return nil
}
