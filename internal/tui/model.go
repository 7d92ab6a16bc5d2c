// Package tui provides the terminal board for wayfare: a day grid the user
// moves activities around on, with a wishlist panel beside it.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/javiermolinar/wayfare/internal/config"
	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/placement"
	"github.com/javiermolinar/wayfare/internal/timegrid"
	"github.com/javiermolinar/wayfare/internal/tui/commands"
	"github.com/javiermolinar/wayfare/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal  Mode = iota
	ModeHold         // carrying an activity to a new slot
	ModePrompt       // typing a new wishlist item
	ModeConfirm      // confirming a delete
)

// Focus is the panel receiving navigation keys.
type Focus int

const (
	FocusGrid Focus = iota
	FocusWishlist
)

// Default size until the terminal reports its own.
const (
	defaultWidth  = 100
	defaultHeight = 30
)

// Model is the main TUI model.
type Model struct {
	// Dependencies
	repo   itinerary.Repository
	config *config.Config
	orch   *placement.Orchestrator
	logger zerolog.Logger

	// Theme and styles
	theme  *theme.Theme
	styles *Styles

	// Grid
	grid  timegrid.Config
	slots []timegrid.Slot // rows; the end-of-day boundary is not a row
	trip  *dateutil.DateRange
	day   time.Time

	// State
	cursor     int // row index in the grid
	focus      Focus
	wishCursor int
	mode       Mode
	loading    bool
	loaded     bool

	// Hold mode
	held       string // ID of the activity being moved
	preview    *placement.Preview
	previewErr error

	// Confirm mode
	confirmID   string
	confirmName string

	// Components
	prompt textinput.Model

	// Terminal dimensions
	width        int
	height       int
	scrollOffset int

	// Messages
	statusMsg  string
	statusErr  bool
	statusTime time.Time

	// Error state
	err error

	now func() time.Time
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
		m.day = m.startDay()
	}
}

// New creates a new TUI model.
func New(repo itinerary.Repository, cfg *config.Config, opts placement.Options, modelOpts ...ModelOption) *Model {
	ti := textinput.New()
	ti.Placeholder = "Name #type ~90m"
	ti.CharLimit = 256

	// Load theme from config
	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load("mocha")
	}
	styles := NewStyles(t)
	ti.PromptStyle = styles.StatusStyle
	ti.PlaceholderStyle = styles.SuggestionStyle

	grid := timegrid.DefaultConfig()
	if opts.Grid != nil {
		grid = *opts.Grid
	} else if g, err := cfg.Grid(); err == nil {
		grid = g
		opts.Grid = &grid
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "tui").Logger()
	}

	slots := timegrid.GenerateSlots(grid)
	if len(slots) > 1 {
		slots = slots[:len(slots)-1]
	}

	m := &Model{
		repo:    repo,
		config:  cfg,
		orch:    placement.New(repo, opts),
		logger:  logger,
		theme:   t,
		styles:  styles,
		grid:    grid,
		slots:   slots,
		mode:    ModeNormal,
		loading: true,
		prompt:  ti,
		width:   defaultWidth,
		height:  defaultHeight,
		now:     time.Now,
	}
	if cfg.HasTrip() {
		if r, err := cfg.TripRange(); err == nil {
			m.trip = r
		}
	}
	m.day = m.startDay()

	for _, opt := range modelOpts {
		opt(m)
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return commands.Load(m.repo)
}

// startDay is today inside the trip, else the first trip day.
func (m *Model) startDay() time.Time {
	today := dateutil.TruncateToDay(m.now())
	if m.trip == nil || m.trip.Contains(today) {
		return today
	}
	return dateutil.TruncateToDay(m.trip.Start)
}

// Run starts the TUI.
func Run(repo itinerary.Repository, cfg *config.Config, opts placement.Options) error {
	model := New(repo, cfg, opts)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
