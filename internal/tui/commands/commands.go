// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/placement"
)

// WriteTimeout bounds a single persistence call started from the board.
const WriteTimeout = 10 * time.Second

// LoadedMsg is sent when the itinerary has been read from storage.
type LoadedMsg struct {
	Activities []*itinerary.Activity
}

// PersistedMsg is sent when a placement write has settled.
type PersistedMsg struct {
	Write *placement.Write
	Err   error
}

// CreatedMsg is sent when a new wishlist item has been stored.
type CreatedMsg struct {
	Activity *itinerary.Activity
}

// UnscheduledMsg is sent when an activity went back to the wishlist.
type UnscheduledMsg struct {
	Activity *itinerary.Activity
}

// DeletedMsg is sent when an activity has been removed.
type DeletedMsg struct {
	ID   string
	Name string
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// Load reads every activity, scheduled and wishlist.
func Load(repo itinerary.Repository) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), WriteTimeout)
		defer cancel()

		acts, err := repo.ListAllActivities(ctx)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("loading itinerary: %w", err)}
		}
		return LoadedMsg{Activities: acts}
	}
}

// Persist hands an optimistic write to the orchestrator and reports how it
// settled. The orchestrator has already rolled back on failure.
func Persist(o *placement.Orchestrator, w *placement.Write) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), WriteTimeout)
		defer cancel()
		return PersistedMsg{Write: w, Err: o.Persist(ctx, w)}
	}
}

// CreateWishlistItem stores a new unscheduled activity.
func CreateWishlistItem(repo itinerary.Repository, a *itinerary.Activity) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), WriteTimeout)
		defer cancel()

		if err := repo.CreateActivity(ctx, a); err != nil {
			return ErrMsg{Err: fmt.Errorf("adding %q: %w", a.Name, err)}
		}
		return CreatedMsg{Activity: a}
	}
}

// Unschedule moves an activity back to the wishlist.
func Unschedule(repo itinerary.Repository, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), WriteTimeout)
		defer cancel()

		if err := repo.UnscheduleActivity(ctx, id); err != nil {
			return ErrMsg{Err: err}
		}
		a, err := repo.GetActivity(ctx, id)
		if err != nil {
			return ErrMsg{Err: err}
		}
		if a == nil {
			return ErrMsg{Err: itinerary.ErrActivityNotFound}
		}
		return UnscheduledMsg{Activity: a}
	}
}

// Delete removes an activity.
func Delete(repo itinerary.Repository, id, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), WriteTimeout)
		defer cancel()

		if err := repo.DeleteActivity(ctx, id); err != nil {
			return ErrMsg{Err: fmt.Errorf("removing %q: %w", name, err)}
		}
		return DeletedMsg{ID: id, Name: name}
	}
}
