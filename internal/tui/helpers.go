package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/wayfare/internal/conflict"
	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/placement"
	"github.com/javiermolinar/wayfare/internal/tui/commands"
)

// Lines used by the header and footer around the grid.
const chromeLines = 3

const (
	statusDuration = 3 * time.Second
	errorDuration  = 5 * time.Second
)

// rowInterval returns the minutes covered by grid row r.
func (m *Model) rowInterval(r int) conflict.Interval {
	start := m.slots[r].Minutes
	return conflict.Interval{Start: start, End: start + m.grid.IntervalMinutes}
}

// occupancy maps each grid row to the activity covering it, if any.
func (m *Model) occupancy(acts []*itinerary.Activity) []*itinerary.Activity {
	rows := make([]*itinerary.Activity, len(m.slots))
	for _, a := range acts {
		iv, err := conflict.ParseInterval(a.Start, a.End)
		if err != nil {
			continue
		}
		for r := range m.slots {
			if rows[r] == nil && m.rowInterval(r).Overlaps(iv) {
				rows[r] = a
			}
		}
	}
	return rows
}

// activityAtCursor returns the activity under the grid cursor.
func (m *Model) activityAtCursor() *itinerary.Activity {
	if len(m.slots) == 0 {
		return nil
	}
	return m.occupancy(m.orch.Day(m.day))[m.cursor]
}

// selectedWish returns the highlighted wishlist item.
func (m *Model) selectedWish() *itinerary.Activity {
	wish := m.orch.Wishlist()
	if m.wishCursor < 0 || m.wishCursor >= len(wish) {
		return nil
	}
	return wish[m.wishCursor]
}

// selected returns the activity the next action applies to.
func (m *Model) selected() *itinerary.Activity {
	if m.focus == FocusWishlist {
		return m.selectedWish()
	}
	return m.activityAtCursor()
}

func (m *Model) visibleRows() int {
	return max(m.height-chromeLines, 1)
}

func (m *Model) ensureCursorVisible() {
	rows := m.visibleRows()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+rows {
		m.scrollOffset = m.cursor - rows + 1
	}
	m.scrollOffset = max(min(m.scrollOffset, len(m.slots)-rows), 0)
}

func (m *Model) setCursor(r int) {
	m.cursor = max(min(r, len(m.slots)-1), 0)
	m.ensureCursorVisible()
}

func (m *Model) cursorTo(t string) {
	if idx, err := m.grid.IndexOf(t); err == nil {
		m.setCursor(idx)
	}
}

// focusCursor puts the cursor on the first activity of the day, the
// current time when the day is today, or the start of the grid.
func (m *Model) focusCursor() {
	if acts := m.orch.Day(m.day); len(acts) > 0 {
		m.cursorTo(acts[0].Start)
		return
	}
	now := m.now()
	if dateutil.SameDay(now, m.day) {
		m.cursorTo(now.Format("15:04"))
		return
	}
	m.setCursor(0)
}

// clampWishCursor keeps the wishlist selection inside the list.
func (m *Model) clampWishCursor() {
	n := len(m.orch.Wishlist())
	m.wishCursor = max(min(m.wishCursor, n-1), 0)
}

// target is the slot under the cursor for the held activity.
func (m *Model) target() placement.Target {
	return placement.Target{ActivityID: m.held, Date: m.day, Start: m.slots[m.cursor].Time}
}

// refreshPreview recomputes the hover feedback for the held activity.
func (m *Model) refreshPreview() {
	if m.mode != ModeHold || len(m.slots) == 0 {
		m.preview, m.previewErr = nil, nil
		return
	}
	p, err := m.orch.Preview(m.target())
	if err != nil {
		m.preview, m.previewErr = nil, err
		return
	}
	m.preview, m.previewErr = &p, nil
}

// names maps activity IDs to names for conflict messages.
func (m *Model) names() map[string]string {
	acts := m.orch.Activities()
	out := make(map[string]string, len(acts))
	for _, a := range acts {
		out[a.ID] = a.Name
	}
	return out
}

// changeDay moves the board by delta days, staying inside the trip.
func (m *Model) changeDay(delta int) {
	day := m.day.AddDate(0, 0, delta)
	if m.trip != nil && !m.trip.Contains(day) {
		return
	}
	m.day = day
	if m.mode == ModeHold {
		m.refreshPreview()
		return
	}
	m.focusCursor()
}

func (m *Model) flash(msg string) tea.Cmd {
	return m.setStatus(msg, false, statusDuration)
}

func (m *Model) flashError(msg string) tea.Cmd {
	return m.setStatus(msg, true, errorDuration)
}

func (m *Model) setStatus(msg string, isErr bool, d time.Duration) tea.Cmd {
	m.statusMsg = msg
	m.statusErr = isErr
	m.statusTime = m.now().Add(d)
	return tea.Tick(d, func(time.Time) tea.Msg {
		return commands.ClearStatusMsg{}
	})
}

// rangeLabel renders "10:00-11:30".
func rangeLabel(start, end string) string {
	return start + "-" + end
}

// lengthLabel renders a duration in minutes as "1h30m".
func lengthLabel(minutes int) string {
	h, mins := minutes/60, minutes%60
	switch {
	case minutes <= 0:
		return ""
	case h == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, mins)
	}
}
