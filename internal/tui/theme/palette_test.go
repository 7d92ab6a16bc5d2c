package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewPalette_BlockShades(t *testing.T) {
	base := &Theme{
		Bg:          "#101010",
		BgHighlight: "#202020",
		BgSelection: "#303030",
		Fg:          "#ffffff",
		FgMuted:     "#aaaaaa",
		Accent:      "#ff0000",
		Activity:    "#112233",
		Calendar:    "#445566",
		Conflict:    "#ff3344",
		Warning:     "#888888",
	}

	palette := NewPalette(base)

	if palette.ActivityBg != lipgloss.Color(darkenColor(base.Activity)) {
		t.Fatalf("ActivityBg = %q, want %q", palette.ActivityBg, darkenColor(base.Activity))
	}
	if palette.CalendarBg != lipgloss.Color(darkenColor(base.Calendar)) {
		t.Fatalf("CalendarBg = %q, want %q", palette.CalendarBg, darkenColor(base.Calendar))
	}
	if palette.ActivityBgAlt != lipgloss.Color(alternateShade(darkenColor(base.Activity), false)) {
		t.Fatalf("ActivityBgAlt = %q", palette.ActivityBgAlt)
	}
	if palette.Pending != lipgloss.Color(base.Warning) {
		t.Fatalf("Pending = %q, want fallback to warning %q", palette.Pending, base.Warning)
	}
}

func TestNewPalette_ModalColors(t *testing.T) {
	base := &Theme{
		Bg:          "#101010",
		BgHighlight: "#202020",
		BgSelection: "#303030",
		Fg:          "#ffffff",
		FgMuted:     "#aaaaaa",
		Accent:      "#ff0000",
	}

	palette := NewPalette(base)
	if palette.Modal.Bg != lipgloss.Color(base.BgHighlight) {
		t.Fatalf("Modal.Bg = %q, want %q", palette.Modal.Bg, base.BgHighlight)
	}
	if palette.Modal.Border.Dark != base.Accent {
		t.Fatalf("Modal.Border.Dark = %q, want %q", palette.Modal.Border.Dark, base.Accent)
	}
	if palette.Modal.Highlight.Dark != base.BgSelection {
		t.Fatalf("Modal.Highlight.Dark = %q, want %q", palette.Modal.Highlight.Dark, base.BgSelection)
	}
}

func TestNewPalette_LightThemeLightensBlocks(t *testing.T) {
	base := &Theme{
		Bg:       "#f5f5f5",
		Fg:       "#222222",
		Accent:   "#2f6feb",
		Activity: "#1d8a8a",
		Calendar: "#2f8f2f",
		Conflict: "#c2410c",
		Warning:  "#c97b00",
	}

	palette := NewPalette(base)
	if relativeLuminance(string(palette.ActivityBg)) <= relativeLuminance(base.Activity) {
		t.Fatalf("ActivityBg luminance = %f, want greater than Activity", relativeLuminance(string(palette.ActivityBg)))
	}
	if relativeLuminance(string(palette.CalendarBg)) <= relativeLuminance(base.Calendar) {
		t.Fatalf("CalendarBg luminance = %f, want greater than Calendar", relativeLuminance(string(palette.CalendarBg)))
	}
}

func TestNewPalette_NilUsesMocha(t *testing.T) {
	palette := NewPalette(nil)
	mocha, _ := Load("mocha")
	if palette.Bg != lipgloss.Color(mocha.Bg) {
		t.Fatalf("Bg = %q, want %q", palette.Bg, mocha.Bg)
	}
}

func TestChooseTextColorPrefersContrast(t *testing.T) {
	bg := "#f0f0f0"
	lightText := "#ffffff"
	darkText := "#111111"

	if got := chooseTextColor(bg, lightText, darkText); got != darkText {
		t.Fatalf("chooseTextColor(%q, %q, %q) = %q, want %q", bg, lightText, darkText, got, darkText)
	}
}

func TestDarkenColorFloor(t *testing.T) {
	if got := darkenColor("#000000"); got != "#282828" {
		t.Errorf("darkenColor(black) = %q, want #282828", got)
	}
	if got := darkenColor("red"); got != "red" {
		t.Errorf("darkenColor(invalid) = %q, want unchanged", got)
	}
}
