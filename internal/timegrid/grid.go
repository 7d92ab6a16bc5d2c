package timegrid

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every *ConfigurationError.
var ErrConfiguration = errors.New("invalid scheduling configuration")

// ConfigurationError reports an invalid grid configuration field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid scheduling configuration: %s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrConfiguration) match.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// Supported slot intervals in minutes.
var validIntervals = map[int]bool{15: true, 30: true, 60: true}

// Config describes the visible grid of a day.
type Config struct {
	IntervalMinutes int // 15, 30 or 60
	StartHour       int // first visible hour, 0-23
	EndHour         int // last visible boundary, 1-24, inclusive
}

// DefaultConfig covers the whole day in 30 minute slots.
func DefaultConfig() Config {
	return Config{IntervalMinutes: 30, StartHour: 0, EndHour: 24}
}

// NewConfig builds and validates a grid configuration.
func NewConfig(interval, startHour, endHour int) (Config, error) {
	cfg := Config{IntervalMinutes: interval, StartHour: startHour, EndHour: endHour}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration once so the rest of the grid code can
// assume it is well formed.
func (c Config) Validate() error {
	if !validIntervals[c.IntervalMinutes] {
		return &ConfigurationError{
			Field:  "interval_minutes",
			Reason: fmt.Sprintf("must be 15, 30 or 60, got %d", c.IntervalMinutes),
		}
	}
	if c.StartHour < 0 || c.StartHour > 23 {
		return &ConfigurationError{Field: "start_hour", Reason: fmt.Sprintf("must be 0-23, got %d", c.StartHour)}
	}
	if c.EndHour < 1 || c.EndHour > 24 {
		return &ConfigurationError{Field: "end_hour", Reason: fmt.Sprintf("must be 1-24, got %d", c.EndHour)}
	}
	if c.StartHour >= c.EndHour {
		return &ConfigurationError{
			Field:  "start_hour",
			Reason: fmt.Sprintf("must be before end_hour (%d >= %d)", c.StartHour, c.EndHour),
		}
	}
	return nil
}

// Slot is one row of the grid.
type Slot struct {
	Index   int
	Minutes int    // start in minutes since midnight
	Time    string // "HH:MM"; the end-of-day boundary is "24:00"
	Label   string // "2:30 PM"
	IsHour  bool
}

// GenerateSlots returns one slot per interval from StartHour:00 through
// EndHour:00 inclusive. The sequence is gapless and deterministic.
// An invalid config yields no slots.
func GenerateSlots(cfg Config) []Slot {
	if cfg.Validate() != nil {
		return nil
	}
	slots := make([]Slot, 0, cfg.SlotCount())
	for i, m := 0, cfg.StartHour*60; m <= cfg.EndHour*60; i, m = i+1, m+cfg.IntervalMinutes {
		slots = append(slots, Slot{
			Index:   i,
			Minutes: m,
			Time:    clock(m),
			Label:   Label(m),
			IsHour:  m%60 == 0,
		})
	}
	return slots
}

// SlotCount returns the number of slots GenerateSlots produces.
func (c Config) SlotCount() int {
	if c.IntervalMinutes <= 0 || c.EndHour <= c.StartHour {
		return 0
	}
	return (c.EndHour-c.StartHour)*60/c.IntervalMinutes + 1
}

// Bounds returns the visible range [lo, hi) in minutes. An activity may end
// exactly at hi.
func (c Config) Bounds() (lo, hi int) {
	return c.StartHour * 60, min(c.EndHour*60, MinutesPerDay)
}

// MinutesAt returns the start of slot index i in minutes since midnight.
func (c Config) MinutesAt(i int) int {
	return c.StartHour*60 + i*c.IntervalMinutes
}

// TimeAt returns the start of slot index i as "HH:MM", clamped to the day.
func (c Config) TimeAt(i int) string {
	return MinutesToTime(c.MinutesAt(i))
}

// IndexOf returns the slot index containing t, clamped to the grid.
func (c Config) IndexOf(t string) (int, error) {
	m, err := TimeToMinutes(t)
	if err != nil {
		return 0, err
	}
	idx := (m - c.StartHour*60) / c.IntervalMinutes
	if m < c.StartHour*60 {
		idx = 0
	}
	if last := c.SlotCount() - 1; idx > last {
		idx = last
	}
	return idx, nil
}

// SlotsFor returns how many slots a duration occupies, rounding up.
func (c Config) SlotsFor(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return (minutes + c.IntervalMinutes - 1) / c.IntervalMinutes
}
