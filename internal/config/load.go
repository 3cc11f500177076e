package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path, overlays credentials from the
// environment and applies defaults. A missing file is not an error; the
// environment alone can carry a full configuration. A .env file in the
// working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Fall through to env-only configuration.
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.loadEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnv overlays secrets and env-only overrides onto the config.
func (c *Config) loadEnv() {
	c.Guesty.Username = getEnv("GUESTY_USERNAME", c.Guesty.Username)
	c.Guesty.Password = getEnv("GUESTY_PASSWORD", c.Guesty.Password)
	c.Guesty.AccountID = getEnv("GUESTY_ACCOUNT", c.Guesty.AccountID)
	c.Guesty.APIKey = getEnv("GUESTY_API_KEY", c.Guesty.APIKey)
	c.Guesty.ListingID = getEnv("GUESTY_LISTING", c.Guesty.ListingID)

	c.August.InstallID = getEnv("AUGUST_INSTALL_ID", c.August.InstallID)
	c.August.Password = getEnv("AUGUST_PASSWORD", c.August.Password)
	c.August.Identifier = getEnv("AUGUST_IDENTIFIER", c.August.Identifier)
	c.August.APIKey = getEnv("AUGUST_API_KEY", c.August.APIKey)
	c.August.LockID = getEnv("AUGUST_LOCK", c.August.LockID)

	c.Calendar.Token = getEnv("CALENDAR_TOKEN", c.Calendar.Token)
	c.Calendar.CalendarID = getEnv("CALENDAR_ID", c.Calendar.CalendarID)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
