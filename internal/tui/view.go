package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/wayfare/internal/conflict"
	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/duration"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/timegrid"
	"github.com/javiermolinar/wayfare/internal/tui/input"
)

// Layout constants.
const (
	labelWidth      = 10 // cursor marker, "12:30 PM" and a space
	wishlistWidth   = 32
	minGridWidth    = 40
	minCellWidth    = 8
	ellipsis        = "…"
	emptyCellMarker = "·"
)

// View renders the model.
func (m Model) View() string {
	header := m.renderHeader()

	var body string
	if m.mode == ModeConfirm {
		body = lipgloss.Place(m.width, m.visibleRows(), lipgloss.Center, lipgloss.Center, m.renderConfirm())
	} else {
		body = m.renderBody()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.renderStatus(),
		m.renderHelp(),
	)
}

func (m Model) renderHeader() string {
	parts := []string{m.styles.TitleStyle.Render("wayfare")}
	if name := m.config.Trip.Name; name != "" {
		parts = append(parts, m.styles.DayStyle.Render(name))
	}

	dayLabel := m.day.Format("Mon Jan 2")
	if dateutil.SameDay(m.day, m.now()) {
		parts = append(parts, m.styles.DayTodayStyle.Render(dayLabel))
	} else {
		parts = append(parts, m.styles.DayStyle.Render(dayLabel))
	}

	if m.trip != nil {
		n := int(dateutil.TruncateToDay(m.day).Sub(dateutil.TruncateToDay(m.trip.Start)).Hours()/24) + 1
		parts = append(parts, m.styles.TripRangeStyle.Render(fmt.Sprintf("day %d/%d", n, m.trip.Len())))
	}
	if m.loading {
		parts = append(parts, m.styles.TripRangeStyle.Render("loading"+ellipsis))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderBody() string {
	gridWidth := m.width
	showWishlist := m.width-wishlistWidth-1 >= minGridWidth
	if showWishlist {
		gridWidth = m.width - wishlistWidth - 1
	}

	grid := m.renderGrid(gridWidth)
	if !showWishlist {
		return grid
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, grid, " ", m.renderWishlist())
}

// renderGrid draws the visible rows of the day.
func (m Model) renderGrid(width int) string {
	rows := m.visibleRows()
	if len(m.slots) == 0 {
		return m.styles.EmptyCellStyle.Render("no slots")
	}

	cellWidth := max(width-labelWidth, minCellWidth)
	acts := m.orch.Day(m.day)
	occ := m.occupancy(acts)
	shade := make(map[string]bool, len(acts))
	for i, a := range acts {
		shade[a.ID] = i%2 == 1
	}

	var (
		preview   *conflict.Interval
		prevStyle lipgloss.Style
		prevText  string
	)
	if m.mode == ModeHold && m.preview != nil && dateutil.SameDay(m.preview.Placement.Date, m.day) {
		if iv, ok := previewInterval(m.preview.Placement); ok {
			preview = &iv
		}
		switch {
		case m.preview.Blocking:
			prevStyle = m.styles.PreviewBlockedStyle
		case len(m.preview.Conflicts) > 0:
			prevStyle = m.styles.PreviewWarnStyle
		default:
			prevStyle = m.styles.PreviewOKStyle
		}
		name := m.held
		if a, ok := m.orch.Activity(m.held); ok {
			name = a.Name
		}
		prevText = "▶ " + name + " " + previewLabel(m.preview.Placement)
	}

	lines := make([]string, 0, rows)
	prevStarted := false
	end := min(m.scrollOffset+rows, len(m.slots))
	for r := m.scrollOffset; r < end; r++ {
		label := m.renderLabel(r)

		var cell string
		switch {
		case preview != nil && m.rowInterval(r).Overlaps(*preview):
			text := ""
			if !prevStarted {
				text = prevText
				prevStarted = true
			}
			cell = renderCell(prevStyle, text, cellWidth)

		case occ[r] != nil:
			a := occ[r]
			text := ""
			if r == m.scrollOffset || occ[r-1] != a {
				text = a.Name + " " + rangeLabel(a.Start, a.End)
				if m.orch.Pending(a.ID) {
					text += " " + ellipsis
				}
			}
			cell = renderCell(m.activityStyle(a, shade[a.ID]), text, cellWidth)

		case r == m.cursor && m.focus == FocusGrid:
			cell = renderCell(m.styles.CursorCellStyle, "", cellWidth)

		default:
			text := ""
			if m.slots[r].IsHour {
				text = emptyCellMarker
			}
			cell = renderCell(m.styles.EmptyCellStyle, text, cellWidth)
		}
		lines = append(lines, label+cell)
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// previewInterval is the span the hover block covers. A placement running
// past midnight covers the rest of the day.
func previewInterval(p itinerary.Placement) (conflict.Interval, bool) {
	if p.End == "" {
		s, err := timegrid.TimeToMinutes(p.Start)
		return conflict.Interval{Start: s, End: timegrid.MinutesPerDay}, err == nil
	}
	iv, err := conflict.ParseInterval(p.Start, p.End)
	return iv, err == nil
}

func previewLabel(p itinerary.Placement) string {
	if p.End == "" {
		return p.Start + "-past midnight"
	}
	return rangeLabel(p.Start, p.End)
}

func (m Model) renderLabel(r int) string {
	marker := " "
	style := m.styles.TimeLabelStyle
	if m.slots[r].IsHour {
		style = m.styles.TimeLabelHourStyle
	}
	if r == m.cursor && m.focus == FocusGrid {
		marker = "▸"
		style = m.styles.CursorLabelStyle
	}
	return style.Render(fmt.Sprintf("%s%8s ", marker, m.slots[r].Label))
}

func (m Model) activityStyle(a *itinerary.Activity, alt bool) lipgloss.Style {
	switch {
	case a.ID == m.held:
		return m.styles.HeldStyle
	case m.orch.Pending(a.ID):
		return m.styles.PendingStyle
	case a.Source == itinerary.SourceCalendar && alt:
		return m.styles.CalendarAltStyle
	case a.Source == itinerary.SourceCalendar:
		return m.styles.CalendarStyle
	case alt:
		return m.styles.ActivityAltStyle
	default:
		return m.styles.ActivityStyle
	}
}

func renderCell(style lipgloss.Style, text string, width int) string {
	text = ansi.Truncate(text, width, ellipsis)
	return style.Width(width).MaxWidth(width).Render(text)
}

// renderWishlist draws the panel of unscheduled activities.
func (m Model) renderWishlist() string {
	wish := m.orch.Wishlist()
	inner := wishlistWidth - 4 // border and padding
	height := max(m.visibleRows()-2, 1)

	lines := []string{m.styles.PanelTitleStyle.Render(fmt.Sprintf("Wishlist (%d)", len(wish)))}
	if len(wish) == 0 {
		lines = append(lines, m.styles.WishLengthStyle.Render("press a to add"))
	}

	room := height - 1
	start := 0
	if m.wishCursor >= room {
		start = m.wishCursor - room + 1
	}
	for i := start; i < len(wish) && i < start+room; i++ {
		a := wish[i]
		length := wishLength(a)
		nameWidth := max(inner-lipgloss.Width(length)-1, 1)
		name := ansi.Truncate(a.Name, nameWidth, ellipsis)
		pad := max(inner-lipgloss.Width(name)-lipgloss.Width(length), 1)

		line := name + strings.Repeat(" ", pad)
		if i == m.wishCursor && m.focus == FocusWishlist {
			lines = append(lines, m.styles.WishSelectedStyle.Render(line+length))
			continue
		}
		lines = append(lines, m.styles.WishItemStyle.Render(line)+m.styles.WishLengthStyle.Render(length))
	}

	return m.styles.PanelStyle.
		Width(wishlistWidth - 2).
		Height(height).
		Render(strings.Join(lines, "\n"))
}

// wishLength is the remembered length, or "~" and an estimate.
func wishLength(a *itinerary.Activity) string {
	if a.DurationMinutes > 0 {
		return lengthLabel(a.DurationMinutes)
	}
	est := duration.EstimateDuration(duration.Place{
		Name:             a.Name,
		Types:            a.Types,
		Rating:           a.Rating,
		UserRatingsTotal: a.UserRatingsTotal,
	}, duration.Context{})
	return "~" + lengthLabel(est.Minutes)
}

func (m Model) renderStatus() string {
	switch m.mode {
	case ModeHold:
		return m.renderPreviewStatus()
	case ModePrompt:
		line := m.prompt.View()
		if hints := input.TypeSuggestions(m.prompt.Value(), duration.KnownTypes()); len(hints) > 0 {
			line += "  " + m.styles.SuggestionStyle.Render(strings.Join(hints, " "))
		}
		return ansi.Truncate(line, m.width, ellipsis)
	}

	if m.statusMsg != "" {
		style := m.styles.StatusStyle
		if m.statusErr {
			style = m.styles.StatusErrorStyle
		}
		return style.Render(ansi.Truncate(m.statusMsg, m.width, ellipsis))
	}

	acts := m.orch.Day(m.day)
	busy := 0
	for _, a := range acts {
		busy += a.Duration()
	}
	if len(acts) == 0 {
		return m.styles.HelpStyle.Render("nothing planned")
	}
	return m.styles.HelpStyle.Render(fmt.Sprintf("%d planned, %s busy", len(acts), lengthLabel(busy)))
}

func (m Model) renderPreviewStatus() string {
	name := m.held
	if a, ok := m.orch.Activity(m.held); ok {
		name = a.Name
	}
	if m.previewErr != nil {
		return m.styles.StatusErrorStyle.Render(fmt.Sprintf("Moving %s: %v", name, m.previewErr))
	}
	if m.preview == nil {
		return ""
	}

	p := m.preview
	line := fmt.Sprintf("Moving %s to %s", name, previewLabel(p.Placement))
	style := m.styles.StatusStyle
	switch {
	case p.OutOfRange:
		line += ": does not fit before the end of the day, drop finds the nearest free slot"
		style = m.styles.StatusErrorStyle
	case p.Blocking:
		line += ": blocked, " + conflict.Summary(p.Conflicts, m.names()) + ", drop finds the nearest free slot"
		style = m.styles.StatusErrorStyle
	case len(p.Conflicts) > 0:
		line += ": " + conflict.Summary(p.Conflicts, m.names())
	default:
		line += ": free"
	}
	return style.Render(ansi.Truncate(line, m.width, ellipsis))
}

func (m Model) renderHelp() string {
	var keys [][2]string
	switch m.mode {
	case ModeHold:
		keys = [][2]string{{"j/k", "slot"}, {"h/l", "day"}, {"enter", "drop"}, {"esc", "cancel"}}
	case ModePrompt:
		keys = [][2]string{{"enter", "add"}, {"tab", "complete #type"}, {"esc", "cancel"}}
	case ModeConfirm:
		keys = [][2]string{{"y", "remove"}, {"n", "cancel"}}
	default:
		keys = [][2]string{
			{"j/k", "move"}, {"h/l", "day"}, {"enter", "pick up"}, {"a", "add"},
			{"u", "unschedule"}, {"x", "remove"}, {"tab", "wishlist"}, {"q", "quit"},
		}
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, m.styles.HelpKeyStyle.Render(k[0])+" "+m.styles.HelpStyle.Render(k[1]))
	}
	return ansi.Truncate(strings.Join(parts, m.styles.HelpStyle.Render(" · ")), m.width, ellipsis)
}

func (m Model) renderConfirm() string {
	title := m.styles.ModalTitleStyle.Render("Remove activity")
	text := m.styles.ModalTextStyle.Render(fmt.Sprintf("Remove %s?", m.confirmName))
	hint := m.styles.ModalMutedStyle.Render("y to remove, n to cancel")
	return m.styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", text, hint))
}
