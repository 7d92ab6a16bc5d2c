// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/wayfare/internal/conflict"
	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	Trip     TripConfig     `toml:"trip"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
	UI       UIConfig       `toml:"ui"`
}

// ScheduleConfig holds the time grid and conflict rules.
type ScheduleConfig struct {
	IntervalMinutes     int    `toml:"interval_minutes"`      // 15, 30 or 60
	StartHour           int    `toml:"start_hour"`            // first hour shown
	EndHour             int    `toml:"end_hour"`              // exclusive, up to 24
	TravelBufferMinutes int    `toml:"travel_buffer_minutes"` // 0 disables buffer warnings
	BusinessOpen        string `toml:"business_open"`         // e.g. "09:00" (optional)
	BusinessClose       string `toml:"business_close"`        // e.g. "18:00" (optional)
}

// TripConfig describes the trip being planned.
type TripConfig struct {
	Name      string `toml:"name"`
	StartDate string `toml:"start_date"` // YYYY-MM-DD (optional)
	EndDate   string `toml:"end_date"`   // YYYY-MM-DD (optional)
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
	File  string `toml:"file"`  // empty logs to stderr
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			IntervalMinutes: 30,
			StartHour:       8,
			EndHour:         22,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			Theme: "mocha",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wayfare.db"
	}
	return filepath.Join(home, ".local", "share", "wayfare", "wayfare.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "wayfare", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	ints := []struct {
		env string
		dst *int
	}{
		{"WAYFARE_INTERVAL_MINUTES", &cfg.Schedule.IntervalMinutes},
		{"WAYFARE_START_HOUR", &cfg.Schedule.StartHour},
		{"WAYFARE_END_HOUR", &cfg.Schedule.EndHour},
		{"WAYFARE_TRAVEL_BUFFER_MINUTES", &cfg.Schedule.TravelBufferMinutes},
	}
	for _, o := range ints {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", o.env, v)
		}
		*o.dst = n
	}

	strs := []struct {
		env string
		dst *string
	}{
		{"WAYFARE_BUSINESS_OPEN", &cfg.Schedule.BusinessOpen},
		{"WAYFARE_BUSINESS_CLOSE", &cfg.Schedule.BusinessClose},
		{"WAYFARE_TRIP_NAME", &cfg.Trip.Name},
		{"WAYFARE_TRIP_START", &cfg.Trip.StartDate},
		{"WAYFARE_TRIP_END", &cfg.Trip.EndDate},
		{"WAYFARE_DB_PATH", &cfg.Storage.DBPath},
		{"WAYFARE_LOG_LEVEL", &cfg.Log.Level},
		{"WAYFARE_LOG_FILE", &cfg.Log.File},
		{"WAYFARE_UI_THEME", &cfg.UI.Theme},
	}
	for _, o := range strs {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Grid(); err != nil {
		return err
	}

	if c.Schedule.TravelBufferMinutes < 0 {
		return errors.New("travel_buffer_minutes cannot be negative")
	}

	// Business hours: both must be set or neither
	hasOpen := c.Schedule.BusinessOpen != ""
	hasClose := c.Schedule.BusinessClose != ""
	if hasOpen != hasClose {
		return errors.New("both business_open and business_close must be set, or neither")
	}
	if hasOpen {
		if err := validateTime(c.Schedule.BusinessOpen, "business_open"); err != nil {
			return err
		}
		if err := validateTime(c.Schedule.BusinessClose, "business_close"); err != nil {
			return err
		}
		if c.Schedule.BusinessOpen >= c.Schedule.BusinessClose {
			return errors.New("business_open must be before business_close")
		}
	}

	if c.Trip.StartDate != "" || c.Trip.EndDate != "" {
		if _, err := c.TripRange(); err != nil {
			return err
		}
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	return nil
}

var validLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validateTime checks if a time string is a valid HH:MM time.
func validateTime(t, field string) error {
	if len(t) != 5 {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	if _, err := timegrid.TimeToMinutes(t); err != nil {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	return nil
}

// Grid returns the validated time grid configuration.
func (c *Config) Grid() (timegrid.Config, error) {
	return timegrid.NewConfig(c.Schedule.IntervalMinutes, c.Schedule.StartHour, c.Schedule.EndHour)
}

// HasBusinessHours returns true if business hours are configured.
func (c *Config) HasBusinessHours() bool {
	return c.Schedule.BusinessOpen != "" && c.Schedule.BusinessClose != ""
}

// Rules returns the conflict detection options derived from the schedule.
func (c *Config) Rules() conflict.Options {
	opts := conflict.Options{TravelBufferMinutes: c.Schedule.TravelBufferMinutes}
	if c.HasBusinessHours() {
		opts.BusinessHours = &conflict.BusinessHours{
			Open:  c.Schedule.BusinessOpen,
			Close: c.Schedule.BusinessClose,
		}
	}
	return opts
}

// HasTrip returns true if the trip dates are configured.
func (c *Config) HasTrip() bool {
	return c.Trip.StartDate != "" && c.Trip.EndDate != ""
}

// TripRange returns the configured trip dates. Both dates must be set.
func (c *Config) TripRange() (*dateutil.DateRange, error) {
	if !c.HasTrip() {
		return nil, errors.New("both trip start_date and end_date must be set")
	}
	r, err := dateutil.NewDateRange(c.Trip.StartDate, c.Trip.EndDate)
	if err != nil {
		return nil, fmt.Errorf("trip dates: %w", err)
	}
	return r, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
