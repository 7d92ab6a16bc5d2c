// Package theme provides color themes for the TUI.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds all colors for a TUI theme.
type Theme struct {
	Name        string
	Bg          string // Base background
	BgHighlight string // Activity blocks, subtle highlight
	BgSelection string // Cursor, selection
	Fg          string // Primary foreground
	FgMuted     string // Empty slots, muted elements
	Accent      string // Title, primary accent, borders
	Activity    string // Manually planned activities
	Calendar    string // Activities imported from a calendar
	Conflict    string // Blocking overlap
	Warning     string // Buffer and opening hours warnings, held activity
	Pending     string // Activity waiting for persistence
}

var builtin = map[string]Theme{
	"mocha": {
		Name: "mocha", Bg: "#1e1e2e", BgHighlight: "#313244", BgSelection: "#45475a",
		Fg: "#cdd6f4", FgMuted: "#6c7086", Accent: "#cba6f7",
		Activity: "#89b4fa", Calendar: "#94e2d5", Conflict: "#f38ba8", Warning: "#fab387", Pending: "#f9e2af",
	},
	"macchiato": {
		Name: "macchiato", Bg: "#24273a", BgHighlight: "#363a4f", BgSelection: "#494d64",
		Fg: "#cad3f5", FgMuted: "#6e738d", Accent: "#c6a0f6",
		Activity: "#8aadf4", Calendar: "#8bd5ca", Conflict: "#ed8796", Warning: "#f5a97f", Pending: "#eed49f",
	},
	"frappe": {
		Name: "frappe", Bg: "#303446", BgHighlight: "#414559", BgSelection: "#51576d",
		Fg: "#c6d0f5", FgMuted: "#737994", Accent: "#ca9ee6",
		Activity: "#8caaee", Calendar: "#81c8be", Conflict: "#e78284", Warning: "#ef9f76", Pending: "#e5c890",
	},
	"latte": {
		Name: "latte", Bg: "#eff1f5", BgHighlight: "#ccd0da", BgSelection: "#bcc0cc",
		Fg: "#4c4f69", FgMuted: "#9ca0b0", Accent: "#8839ef",
		Activity: "#1e66f5", Calendar: "#179299", Conflict: "#d20f39", Warning: "#fe640b", Pending: "#df8e1d",
	},
}

// Color returns a lipgloss.Color for the given hex string.
func Color(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

// Load returns a theme by name. Falls back to mocha if the theme is not found.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = "mocha"
	}
	name = strings.ToLower(name)

	t, ok := builtin[name]
	if !ok {
		if name != "mocha" {
			return Load("mocha")
		}
		return nil, fmt.Errorf("loading theme %q: not found", name)
	}
	return &t, nil
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	_, ok := builtin[strings.ToLower(name)]
	return ok
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
