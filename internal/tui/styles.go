package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/wayfare/internal/tui/theme"
)

// Styles holds all lipgloss styles for the board, derived from a theme.
type Styles struct {
	palette *theme.Palette

	// Header
	TitleStyle     lipgloss.Style
	DayStyle       lipgloss.Style
	DayTodayStyle  lipgloss.Style
	TripRangeStyle lipgloss.Style

	// Time column
	TimeLabelStyle     lipgloss.Style
	TimeLabelHourStyle lipgloss.Style
	CursorLabelStyle   lipgloss.Style

	// Grid cells
	EmptyCellStyle      lipgloss.Style
	CursorCellStyle     lipgloss.Style
	ActivityStyle       lipgloss.Style
	ActivityAltStyle    lipgloss.Style // adjacent manual activities
	CalendarStyle       lipgloss.Style
	CalendarAltStyle    lipgloss.Style // adjacent imported activities
	PendingStyle        lipgloss.Style // waiting for storage
	HeldStyle           lipgloss.Style // picked up, still at its old place
	PreviewOKStyle      lipgloss.Style
	PreviewWarnStyle    lipgloss.Style
	PreviewBlockedStyle lipgloss.Style

	// Wishlist panel
	PanelStyle        lipgloss.Style
	PanelTitleStyle   lipgloss.Style
	WishItemStyle     lipgloss.Style
	WishSelectedStyle lipgloss.Style
	WishLengthStyle   lipgloss.Style

	// Footer
	StatusStyle      lipgloss.Style
	StatusErrorStyle lipgloss.Style
	HelpStyle        lipgloss.Style
	HelpKeyStyle     lipgloss.Style
	SuggestionStyle  lipgloss.Style

	// Confirm modal
	ModalStyle      lipgloss.Style
	ModalTitleStyle lipgloss.Style
	ModalTextStyle  lipgloss.Style
	ModalMutedStyle lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)

	block := lipgloss.NewStyle().Bold(true)

	return &Styles{
		palette: p,

		TitleStyle: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		DayStyle: lipgloss.NewStyle().
			Foreground(p.Fg).
			Bold(true),
		DayTodayStyle: lipgloss.NewStyle().
			Foreground(p.TextOnAccent).
			Background(p.Accent).
			Bold(true).
			Padding(0, 1),
		TripRangeStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted),

		TimeLabelStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted),
		TimeLabelHourStyle: lipgloss.NewStyle().
			Foreground(p.Fg),
		CursorLabelStyle: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),

		EmptyCellStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted),
		CursorCellStyle: lipgloss.NewStyle().
			Foreground(p.Fg).
			Background(p.BgSelection),
		ActivityStyle: block.
			Foreground(p.TextOnActivity).
			Background(p.ActivityBg),
		ActivityAltStyle: block.
			Foreground(p.TextOnActivity).
			Background(p.ActivityBgAlt),
		CalendarStyle: block.
			Foreground(p.TextOnCalendar).
			Background(p.CalendarBg),
		CalendarAltStyle: block.
			Foreground(p.TextOnCalendar).
			Background(p.CalendarBgAlt),
		PendingStyle: lipgloss.NewStyle().
			Foreground(p.Pending).
			Background(p.BgHighlight).
			Italic(true),
		HeldStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted).
			Background(p.BgHighlight).
			Strikethrough(true),
		PreviewOKStyle: block.
			Foreground(p.TextOnAccent).
			Background(p.Accent),
		PreviewWarnStyle: block.
			Foreground(p.TextOnWarning).
			Background(p.Warning),
		PreviewBlockedStyle: block.
			Foreground(p.TextOnConflict).
			Background(p.ConflictBg),

		PanelStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.FgMuted).
			Padding(0, 1),
		PanelTitleStyle: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		WishItemStyle: lipgloss.NewStyle().
			Foreground(p.Fg),
		WishSelectedStyle: lipgloss.NewStyle().
			Foreground(p.Fg).
			Background(p.BgSelection).
			Bold(true),
		WishLengthStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted),

		StatusStyle: lipgloss.NewStyle().
			Foreground(p.Accent),
		StatusErrorStyle: lipgloss.NewStyle().
			Foreground(p.Conflict).
			Bold(true),
		HelpStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted),
		HelpKeyStyle: lipgloss.NewStyle().
			Foreground(p.Fg).
			Bold(true),
		SuggestionStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted).
			Italic(true),

		ModalStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Modal.Border).
			Background(p.Modal.Bg).
			Padding(1, 2),
		ModalTitleStyle: lipgloss.NewStyle().
			Foreground(p.Modal.Highlight).
			Background(p.Modal.Bg).
			Bold(true),
		ModalTextStyle: lipgloss.NewStyle().
			Foreground(p.Modal.Text).
			Background(p.Modal.Bg),
		ModalMutedStyle: lipgloss.NewStyle().
			Foreground(p.Modal.Muted).
			Background(p.Modal.Bg),
	}
}
