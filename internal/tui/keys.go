package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/wayfare/internal/conflict"
	"github.com/javiermolinar/wayfare/internal/duration"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/placement"
	"github.com/javiermolinar/wayfare/internal/tui/commands"
	"github.com/javiermolinar/wayfare/internal/tui/input"
)

// handleKeyMsg routes key presses by mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModePrompt:
		return m.handlePromptKey(msg)
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	case ModeHold:
		return m.handleHoldKey(msg)
	default:
		return m.handleNormalKey(msg)
	}
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "j", "down":
		m.moveDown()
	case "k", "up":
		m.moveUp()
	case "h", "left", "[":
		m.changeDay(-1)
	case "l", "right", "]":
		m.changeDay(1)
	case "t":
		m.day = m.startDay()
		m.focusCursor()
	case "tab":
		if m.focus == FocusGrid {
			m.focus = FocusWishlist
			m.clampWishCursor()
		} else {
			m.focus = FocusGrid
		}

	case "enter", " ", "m":
		return m.pickUp()
	case "a":
		m.mode = ModePrompt
		m.prompt.SetValue("")
		cmd := m.prompt.Focus()
		return m, cmd
	case "u":
		return m.unschedule()
	case "x", "d":
		a := m.selected()
		if a == nil {
			return m, nil
		}
		m.mode = ModeConfirm
		m.confirmID = a.ID
		m.confirmName = a.Name
	case "r":
		m.loading = true
		return m, commands.Load(m.repo)
	}
	return m, nil
}

func (m *Model) moveDown() {
	if m.focus == FocusWishlist {
		m.wishCursor++
		m.clampWishCursor()
		return
	}
	m.setCursor(m.cursor + 1)
}

func (m *Model) moveUp() {
	if m.focus == FocusWishlist {
		m.wishCursor--
		m.clampWishCursor()
		return
	}
	m.setCursor(m.cursor - 1)
}

// pickUp starts moving the selected activity.
func (m Model) pickUp() (tea.Model, tea.Cmd) {
	a := m.selected()
	if a == nil {
		return m, nil
	}
	m.held = a.ID
	m.mode = ModeHold
	if m.focus == FocusWishlist {
		m.focus = FocusGrid
		if !a.IsScheduled() {
			m.focusCursor()
		}
	}
	m.refreshPreview()
	return m, nil
}

func (m Model) handleHoldKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = ModeNormal
		m.held = ""
		m.refreshPreview()
	case "j", "down":
		m.setCursor(m.cursor + 1)
		m.refreshPreview()
	case "k", "up":
		m.setCursor(m.cursor - 1)
		m.refreshPreview()
	case "h", "left", "[":
		m.changeDay(-1)
	case "l", "right", "]":
		m.changeDay(1)
	case "enter", " ", "m":
		return m.drop()
	}
	return m, nil
}

// drop resolves the held activity into the slot under the cursor, shows
// the result at once and persists it in the background.
func (m Model) drop() (tea.Model, tea.Cmd) {
	w, err := m.orch.Drop(m.target())
	name := m.held
	if a, ok := m.orch.Activity(m.held); ok {
		name = a.Name
	}
	m.mode = ModeNormal
	m.held = ""
	m.refreshPreview()

	if err != nil {
		if errors.Is(err, placement.ErrNoValidSlot) {
			cmd := m.flashError(fmt.Sprintf("No free slot for %s on %s", name, m.day.Format("Mon Jan 2")))
			return m, cmd
		}
		cmd := m.flashError(fmt.Sprintf("Error: %v", err))
		return m, cmd
	}

	d := w.Decision
	m.cursorTo(d.Placement.Start)
	m.logger.Debug().
		Str("activity", w.ActivityID).
		Str("start", d.Placement.Start).
		Bool("adjusted", d.Adjusted).
		Msg("dropped")

	var status string
	switch {
	case d.Adjusted && d.OutOfRange:
		status = fmt.Sprintf("%s does not fit at %s, moved to %s",
			name, d.Requested.Start, rangeLabel(d.Placement.Start, d.Placement.End))
	case d.Adjusted:
		status = fmt.Sprintf("%s was taken, moved %s to %s",
			rangeLabel(d.Requested.Start, d.Requested.End), name, rangeLabel(d.Placement.Start, d.Placement.End))
	case len(d.Warnings) > 0:
		status = fmt.Sprintf("Placed %s %s: %s", name,
			rangeLabel(d.Placement.Start, d.Placement.End), conflict.Summary(d.Warnings, m.names()))
	default:
		status = fmt.Sprintf("Placed %s %s", name, rangeLabel(d.Placement.Start, d.Placement.End))
	}
	if d.Estimated != nil {
		status += fmt.Sprintf(" (estimated %s)", lengthLabel(d.Estimated.Minutes))
	}
	cmd := tea.Batch(m.flash(status), commands.Persist(m.orch, w))
	return m, cmd
}

func (m Model) unschedule() (tea.Model, tea.Cmd) {
	a := m.selected()
	if a == nil || a.IsWishlist() {
		return m, nil
	}
	if m.orch.Pending(a.ID) {
		cmd := m.flash(fmt.Sprintf("%s is still being saved", a.Name))
		return m, cmd
	}
	return m, commands.Unschedule(m.repo, a.ID)
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		id, name := m.confirmID, m.confirmName
		m.mode = ModeNormal
		m.confirmID, m.confirmName = "", ""
		return m, commands.Delete(m.repo, id, name)
	case "n", "esc", "q":
		m.mode = ModeNormal
		m.confirmID, m.confirmName = "", ""
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.prompt.Blur()
		return m, nil

	case "tab":
		if value, ok := input.TypeAutocomplete(m.prompt.Value(), duration.KnownTypes()); ok {
			m.prompt.SetValue(value)
			m.prompt.CursorEnd()
		}
		return m, nil

	case "enter":
		in, err := input.ParseWishlistInput(m.prompt.Value())
		if err != nil {
			cmd := m.flashError(fmt.Sprintf("Error: %v", err))
			return m, cmd
		}
		a, err := itinerary.NewWishlistItem(in.Name, in.Types)
		if err != nil {
			cmd := m.flashError(fmt.Sprintf("Error: %v", err))
			return m, cmd
		}
		a.DurationMinutes = in.Minutes
		m.mode = ModeNormal
		m.prompt.Blur()
		m.prompt.SetValue("")
		return m, commands.CreateWishlistItem(m.repo, a)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}
