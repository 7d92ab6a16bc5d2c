package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/javiermolinar/wayfare/internal/conflict"
)

// Color definitions for consistent styling across the UI.
var (
	// Manually planned activities: cyan
	colorActivity = color.New(color.FgCyan)

	// Imported calendar events: magenta, they are fixed bookings
	colorCalendar = color.New(color.FgMagenta)

	// Blocking conflicts: bold red
	colorConflict = color.New(color.FgRed, color.Bold)

	// Warnings and adjusted placements: yellow
	colorWarning = color.New(color.FgYellow)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Confirmations: green
	colorSuccess = color.New(color.FgGreen)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatActivity(s string) string {
	return colorActivity.Sprint(s)
}

func formatCalendar(s string) string {
	return colorCalendar.Sprint(s)
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatSuccess(s string) string {
	return colorSuccess.Sprint(s)
}

func formatWarning(s string) string {
	return colorWarning.Sprint(s)
}

// formatMuted formats text as secondary/muted.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

// formatSeverity colors text by conflict severity.
func formatSeverity(sev conflict.Severity, s string) string {
	switch sev {
	case conflict.SeverityHigh:
		return colorConflict.Sprint(s)
	case conflict.SeverityMedium:
		return colorWarning.Sprint(s)
	default:
		return colorMuted.Sprint(s)
	}
}
