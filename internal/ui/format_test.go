package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/javiermolinar/wayfare/internal/config"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{135, "2h15m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.minutes); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Louvre", 10, "Louvre"},
		{"Musée de l'Orangerie", 10, "Musée d..."},
		{"abc", 2, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func scheduled(t *testing.T, name string, day int, start, end string, source itinerary.Source) *itinerary.Activity {
	t.Helper()
	a, err := itinerary.NewWishlistItem(name, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Schedule(saturday.AddDate(0, 0, day), start, end); err != nil {
		t.Fatal(err)
	}
	a.Source = source
	return a
}

func TestComputeDayStats(t *testing.T) {
	grid := timegrid.DefaultConfig()
	lo, hi := grid.Bounds()

	day := []*itinerary.Activity{
		scheduled(t, "Museum", 0, "09:00", "11:00", itinerary.SourceManual),
		scheduled(t, "Train", 0, "15:00", "15:45", itinerary.SourceCalendar),
	}
	s := ComputeDayStats(day, grid)
	if s.Activities != 2 || s.BusyMinutes != 165 || s.Imported != 1 {
		t.Errorf("unexpected stats: %+v", s)
	}
	if s.FreeMinutes != hi-lo-165 {
		t.Errorf("free = %d, want %d", s.FreeMinutes, hi-lo-165)
	}
}

func TestFormatItinerary(t *testing.T) {
	activities := []*itinerary.Activity{
		scheduled(t, "Louvre", 0, "09:00", "12:00", itinerary.SourceManual),
		scheduled(t, "Lunch", 0, "12:30", "13:30", itinerary.SourceManual),
		scheduled(t, "Versailles", 1, "10:00", "16:00", itinerary.SourceCalendar),
	}
	activities[0].Address = "Rue de Rivoli"

	got := FormatItinerary("", activities)
	want := "Sat Jun 14\n" +
		"  09:00-12:00 Louvre (Rue de Rivoli)\n" +
		"  12:30-13:30 Lunch\n" +
		"\n" +
		"Sun Jun 15\n" +
		"  10:00-16:00 Versailles\n"
	if got != want {
		t.Errorf("FormatItinerary =\n%s\nwant\n%s", got, want)
	}
}

func TestPrintItinerary_GroupsByDay(t *testing.T) {
	DisableColor()
	activities := []*itinerary.Activity{
		scheduled(t, "Louvre", 0, "09:00", "12:00", itinerary.SourceManual),
		scheduled(t, "Versailles", 1, "10:00", "16:00", itinerary.SourceCalendar),
	}

	var buf bytes.Buffer
	printItinerary(&buf, activities, timegrid.DefaultConfig(), PrintOpts{ShowDuration: true, MaxNameWidth: 20})
	out := buf.String()

	if strings.Count(out, "===") != 4 {
		t.Errorf("expected two day headers: %q", out)
	}
	if !strings.Contains(out, "=== 2025-06-14 Sat ===") || !strings.Contains(out, "=== 2025-06-15 Sun ===") {
		t.Errorf("unexpected headers: %q", out)
	}
	if !strings.Contains(out, "1 from calendar") {
		t.Errorf("expected calendar count on the second day: %q", out)
	}
	if !strings.Contains(out, "6h") {
		t.Errorf("expected duration column: %q", out)
	}
}

func TestRunConfigInteractive_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wayfare", "config.toml")
	var out bytes.Buffer

	if err := runConfigInteractive(path, strings.NewReader("n\n"), &out); err != nil {
		t.Fatalf("runConfigInteractive failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if !strings.Contains(out.String(), "interval_minutes      = 30") {
		t.Errorf("expected defaults printed: %q", out.String())
	}
}

func TestRunConfigInteractive_Edit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.Default().SaveTo(path); err != nil {
		t.Fatal(err)
	}

	// Answer yes, then: interval, start, end, buffer, open, close, trip
	// name, trip start, trip end, db path, log level, theme.
	answers := strings.Join([]string{
		"y", "15", "", "", "20", "09:00", "18:00",
		"Lisbon", "2025-09-01", "2025-09-05", "", "", "latte",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := runConfigInteractive(path, strings.NewReader(answers), &out); err != nil {
		t.Fatalf("runConfigInteractive failed: %v\n%s", err, out.String())
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Schedule.IntervalMinutes != 15 || cfg.Schedule.TravelBufferMinutes != 20 {
		t.Errorf("schedule not saved: %+v", cfg.Schedule)
	}
	if cfg.Schedule.BusinessOpen != "09:00" || cfg.Schedule.BusinessClose != "18:00" {
		t.Errorf("business hours not saved: %+v", cfg.Schedule)
	}
	if cfg.Trip.Name != "Lisbon" || cfg.Trip.EndDate != "2025-09-05" {
		t.Errorf("trip not saved: %+v", cfg.Trip)
	}
	if cfg.UI.Theme != "latte" {
		t.Errorf("theme = %q, want latte", cfg.UI.Theme)
	}
}

func TestRunConfigInteractive_InvalidNotSaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.Default().SaveTo(path); err != nil {
		t.Fatal(err)
	}

	answers := "y\n45\n\n\n\n\n\n\n\n\n\n\n\n"
	var out bytes.Buffer
	if err := runConfigInteractive(path, strings.NewReader(answers), &out); err == nil {
		t.Error("expected validation error for a 45 minute interval")
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Schedule.IntervalMinutes != 30 {
		t.Errorf("invalid config was saved: interval %d", cfg.Schedule.IntervalMinutes)
	}
}
