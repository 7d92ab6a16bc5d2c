package theme

import (
	"math"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Activity    lipgloss.Color
	Calendar    lipgloss.Color
	Conflict    lipgloss.Color
	Warning     lipgloss.Color
	Pending     lipgloss.Color

	ActivityBg    lipgloss.Color
	ActivityBgAlt lipgloss.Color
	CalendarBg    lipgloss.Color
	CalendarBgAlt lipgloss.Color
	ConflictBg    lipgloss.Color

	TextOnAccent   lipgloss.Color
	TextOnWarning  lipgloss.Color
	TextOnConflict lipgloss.Color
	TextOnActivity lipgloss.Color
	TextOnCalendar lipgloss.Color

	Modal ModalColors
}

// ModalColors holds modal-specific colors derived from a Theme.
type ModalColors struct {
	Bg        lipgloss.Color
	Border    lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load("mocha")
	}

	isLight := isLightTheme(t.Bg)
	activityBgHex := blockBg(t.Activity, t.Bg, isLight)
	calendarBgHex := blockBg(t.Calendar, t.Bg, isLight)
	conflictBgHex := blockBg(t.Conflict, t.Bg, isLight)

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Activity:    lipgloss.Color(t.Activity),
		Calendar:    lipgloss.Color(t.Calendar),
		Conflict:    lipgloss.Color(t.Conflict),
		Warning:     lipgloss.Color(t.Warning),
		Pending:     lipgloss.Color(coalesce(t.Pending, t.Warning)),

		ActivityBg:    lipgloss.Color(activityBgHex),
		ActivityBgAlt: lipgloss.Color(alternateShade(activityBgHex, isLight)),
		CalendarBg:    lipgloss.Color(calendarBgHex),
		CalendarBgAlt: lipgloss.Color(alternateShade(calendarBgHex, isLight)),
		ConflictBg:    lipgloss.Color(conflictBgHex),

		TextOnAccent:   lipgloss.Color(chooseTextColor(t.Accent, t.Bg, t.Fg)),
		TextOnWarning:  lipgloss.Color(chooseTextColor(t.Warning, t.Bg, t.Fg)),
		TextOnConflict: lipgloss.Color(chooseTextColor(conflictBgHex, t.Bg, t.Fg)),
		TextOnActivity: lipgloss.Color(chooseTextColor(activityBgHex, t.Bg, t.Fg)),
		TextOnCalendar: lipgloss.Color(chooseTextColor(calendarBgHex, t.Bg, t.Fg)),

		Modal: ModalColors{
			Bg:        lipgloss.Color(coalesce(t.BgHighlight, t.Bg)),
			Border:    adaptiveColor(t.Accent),
			Text:      adaptiveColor(t.Fg),
			Muted:     adaptiveColor(t.FgMuted),
			Highlight: adaptiveColor(coalesce(t.BgSelection, t.Accent)),
		},
	}
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

func blockBg(accent, bg string, isLight bool) string {
	if isLight {
		return blendColors(accent, bg, 0.75)
	}
	return darkenColor(accent)
}

// darkenColor creates a darker version of a hex color for backgrounds.
// It blends towards black with a minimum floor so blocks stay visible on
// dark themes.
func darkenColor(hex string) string {
	r, g, b, ok := rgb(hex)
	if !ok {
		return hex
	}

	const factor = 0.50
	const floor = 40
	return formatHexColor(
		max(int(float64(r)*factor), floor),
		max(int(float64(g)*factor), floor),
		max(int(float64(b)*factor), floor),
	)
}

// alternateShade creates a subtle alternate shade for adjacent activities.
func alternateShade(hex string, isLight bool) string {
	if _, _, _, ok := rgb(hex); !ok {
		return hex
	}
	if isLight {
		return blendColors(hex, "#000000", 0.10)
	}
	return blendColors(hex, "#ffffff", 0.30)
}

func rgb(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	return parseHex(hex[1:3]), parseHex(hex[3:5]), parseHex(hex[5:7]), true
}

// parseHex parses a 2-character hex string into an integer.
func parseHex(s string) int {
	var val int
	for i := 0; i < len(s); i++ {
		val *= 16
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}

// formatHexColor formats RGB values as a hex color string.
func formatHexColor(r, g, b int) string {
	const hex = "0123456789abcdef"
	result := make([]byte, 7)
	result[0] = '#'
	result[1] = hex[r>>4]
	result[2] = hex[r&0xf]
	result[3] = hex[g>>4]
	result[4] = hex[g&0xf]
	result[5] = hex[b>>4]
	result[6] = hex[b&0xf]
	return string(result)
}

func adaptiveColor(hex string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{
		Dark:  hex,
		Light: hex,
	}
}

func chooseTextColor(bg, lightText, darkText string) string {
	lightContrast := contrastRatio(bg, lightText)
	darkContrast := contrastRatio(bg, darkText)
	if lightContrast >= darkContrast {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1 := relativeLuminance(a)
	l2 := relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	r, g, b, ok := rgb(hex)
	if !ok {
		return 0
	}
	return 0.2126*srgbToLinear(r) + 0.7152*srgbToLinear(g) + 0.0722*srgbToLinear(b)
}

func srgbToLinear(c int) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func blendColors(a, b string, ratio float64) string {
	ar, ag, ab, okA := rgb(a)
	br, bg, bb, okB := rgb(b)
	if !okA || !okB {
		return a
	}
	ratio = min(max(ratio, 0), 1)

	mix := func(x, y int) int {
		return int(float64(x)*(1-ratio) + float64(y)*ratio)
	}
	return formatHexColor(mix(ar, br), mix(ag, bg), mix(ab, bb))
}
