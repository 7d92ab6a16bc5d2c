package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/wayfare/internal/placement"
	"github.com/javiermolinar/wayfare/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorVisible()
		return m, nil

	case commands.LoadedMsg:
		m.orch.Load(msg.Activities)
		m.loading = false
		if m.mode == ModeHold {
			if _, ok := m.orch.Activity(m.held); !ok {
				m.mode = ModeNormal
				m.held = ""
			}
		}
		if !m.loaded {
			m.loaded = true
			m.focusCursor()
		}
		m.clampWishCursor()
		m.refreshPreview()
		return m, nil

	case commands.PersistedMsg:
		return m.handlePersisted(msg)

	case commands.CreatedMsg:
		if err := m.orch.Track(msg.Activity); err != nil {
			return m, commands.Load(m.repo)
		}
		m.focus = FocusWishlist
		for i, a := range m.orch.Wishlist() {
			if a.ID == msg.Activity.ID {
				m.wishCursor = i
			}
		}
		cmd := m.flash(fmt.Sprintf("Added %s to the wishlist", msg.Activity.Name))
		return m, cmd

	case commands.UnscheduledMsg:
		if err := m.orch.Track(msg.Activity); err != nil {
			return m, commands.Load(m.repo)
		}
		m.clampWishCursor()
		cmd := m.flash(fmt.Sprintf("Moved %s back to the wishlist", msg.Activity.Name))
		return m, cmd

	case commands.DeletedMsg:
		m.orch.Forget(msg.ID)
		m.clampWishCursor()
		cmd := m.flash(fmt.Sprintf("Removed %s", msg.Name))
		return m, cmd

	case commands.ErrMsg:
		m.err = msg.Err
		m.loading = false
		m.logger.Error().Err(msg.Err).Msg("command failed")
		cmd := m.flashError(fmt.Sprintf("Error: %v", msg.Err))
		return m, cmd

	case commands.StatusMsgCmd:
		cmd := m.flash(msg.Msg)
		return m, cmd

	case commands.ClearStatusMsg:
		if !m.now().Before(m.statusTime) {
			m.statusMsg = ""
			m.statusErr = false
		}
		return m, nil
	}

	// Handle prompt input when in prompt mode
	if m.mode == ModePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handlePersisted reports how a background write settled. The orchestrator
// has already committed or rolled back; a superseded write says nothing
// because a newer move owns the activity now.
func (m Model) handlePersisted(msg commands.PersistedMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Err == nil:
		return m, nil
	case errors.Is(msg.Err, placement.ErrSuperseded):
		return m, nil
	}

	m.err = msg.Err
	m.logger.Warn().Err(msg.Err).Str("activity", msg.Write.ActivityID).Msg("placement not saved")
	m.refreshPreview()
	cmd := m.flashError(fmt.Sprintf("Not saved, moved back: %v", msg.Err))
	return m, cmd
}
