package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/wayfare/internal/config"
	"github.com/javiermolinar/wayfare/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  wayfare config`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigInteractive(config.DefaultConfigPath(), os.Stdin, a.out)
		},
	}
}

func runConfigInteractive(configPath string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Check if file exists
	_, fileErr := os.Stat(configPath)
	isNew := os.IsNotExist(fileErr)

	if isNew {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	// Display current config
	printConfig(out, cfg)

	reader := bufio.NewReader(in)

	// Ask if user wants to edit
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	// Interactive editing
	cfg.Schedule.IntervalMinutes = promptInt(reader, out, "Slot interval in minutes (15, 30, 60)", cfg.Schedule.IntervalMinutes)
	cfg.Schedule.StartHour = promptInt(reader, out, "First hour of the day", cfg.Schedule.StartHour)
	cfg.Schedule.EndHour = promptInt(reader, out, "Last hour of the day", cfg.Schedule.EndHour)
	cfg.Schedule.TravelBufferMinutes = promptInt(reader, out, "Travel buffer in minutes (0 to disable)", cfg.Schedule.TravelBufferMinutes)
	cfg.Schedule.BusinessOpen = promptValue(reader, out, "Business open (empty to disable)", cfg.Schedule.BusinessOpen)
	cfg.Schedule.BusinessClose = promptValue(reader, out, "Business close (empty to disable)", cfg.Schedule.BusinessClose)
	cfg.Trip.Name = promptValue(reader, out, "Trip name", cfg.Trip.Name)
	cfg.Trip.StartDate = promptValue(reader, out, "Trip start (YYYY-MM-DD)", cfg.Trip.StartDate)
	cfg.Trip.EndDate = promptValue(reader, out, "Trip end (YYYY-MM-DD)", cfg.Trip.EndDate)
	cfg.Storage.DBPath = promptValue(reader, out, "Database path", cfg.Storage.DBPath)
	cfg.Log.Level = promptValue(reader, out, "Log level", cfg.Log.Level)
	cfg.UI.Theme = promptTheme(reader, out, cfg.UI.Theme)

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Save
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "──────────────────────")
	fmt.Fprintln(out, "[schedule]")
	fmt.Fprintf(out, "  interval_minutes      = %d\n", cfg.Schedule.IntervalMinutes)
	fmt.Fprintf(out, "  start_hour            = %d\n", cfg.Schedule.StartHour)
	fmt.Fprintf(out, "  end_hour              = %d\n", cfg.Schedule.EndHour)
	fmt.Fprintf(out, "  travel_buffer_minutes = %d\n", cfg.Schedule.TravelBufferMinutes)
	if cfg.HasBusinessHours() {
		fmt.Fprintf(out, "  business_open         = %s\n", cfg.Schedule.BusinessOpen)
		fmt.Fprintf(out, "  business_close        = %s\n", cfg.Schedule.BusinessClose)
	}
	if cfg.Trip.Name != "" || cfg.HasTrip() {
		fmt.Fprintln(out, "\n[trip]")
		fmt.Fprintf(out, "  name                  = %s\n", cfg.Trip.Name)
		fmt.Fprintf(out, "  start_date            = %s\n", cfg.Trip.StartDate)
		fmt.Fprintf(out, "  end_date              = %s\n", cfg.Trip.EndDate)
	}
	fmt.Fprintln(out, "\n[storage]")
	fmt.Fprintf(out, "  db_path               = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(out, "\n[log]")
	fmt.Fprintf(out, "  level                 = %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		fmt.Fprintf(out, "  file                  = %s\n", cfg.Log.File)
	}
	fmt.Fprintln(out, "\n[ui]")
	fmt.Fprintf(out, "  theme                 = %s\n", cfg.UI.Theme)
}

func promptYesNo(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(out, "  %s: ", label)
	} else {
		fmt.Fprintf(out, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	if input == "-" {
		return ""
	}
	return input
}

func promptInt(reader *bufio.Reader, out io.Writer, label string, current int) int {
	for {
		value := promptValue(reader, out, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		fmt.Fprintf(out, "  %q is not a number\n", value)
	}
}

func promptTheme(reader *bufio.Reader, out io.Writer, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(promptValue(reader, out, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		if value == strings.ToLower(current) {
			// Nothing typed and the saved theme is unknown.
			t, _ := theme.Load(value)
			return t.Name
		}
		fmt.Fprintf(out, "  Invalid theme %q. Available: %s\n", value, options)
	}
}
