package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/wayfare/internal/config"
	"github.com/javiermolinar/wayfare/internal/db"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/logging"
	"github.com/javiermolinar/wayfare/internal/placement"
	"github.com/javiermolinar/wayfare/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo    itinerary.Repository
	ownRepo bool // opened by ensureRepo, closed by Close
	config  *config.Config
	root    *cobra.Command
	debug   bool // Enable debug logging
	out     io.Writer
	logger  zerolog.Logger
	logFile *os.File
}

// NewApp creates a new CLI application with the given repository and config.
// A nil repository is opened lazily from the configured database path.
func NewApp(repo itinerary.Repository, cfg *config.Config) *App {
	a := &App{repo: repo, config: cfg, out: os.Stdout, logger: zerolog.Nop()}

	a.root = &cobra.Command{
		Use:   "wayfare",
		Short: "Plan trip days on a time grid",
		Long: `Wayfare schedules the places on your travel wishlist into the days
of a trip.

Activities snap to a time grid; dropping one onto a taken slot moves it to
the nearest free one, and travel buffers and opening hours raise warnings.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupLogging(cmd == a.root)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			opts, err := placementOptions(a.config, a.logger)
			if err != nil {
				return err
			}
			return tui.Run(a.repo, a.config, opts)
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.wishlistCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.slotsCmd())
	a.root.AddCommand(a.checkCmd())
	a.root.AddCommand(a.placeCmd())
	a.root.AddCommand(a.moveCmd())
	a.root.AddCommand(a.unscheduleCmd())
	a.root.AddCommand(a.removeCmd())
	a.root.AddCommand(a.estimateCmd())
	a.root.AddCommand(a.importCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "wayfare %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the repository when the app opened it, and the log file.
func (a *App) Close() error {
	var err error
	if a.ownRepo && a.repo != nil {
		err = a.repo.Close()
		a.repo = nil
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
	return err
}

// setupLogging configures the logger. The board owns the terminal, so it
// only logs to a file: the configured one, or a temp file with --debug.
func (a *App) setupLogging(board bool) error {
	level := a.config.Log.Level
	if a.debug {
		level = "debug"
	}

	path := a.config.Log.File
	if path == "" && board {
		if !a.debug {
			a.logger = zerolog.Nop()
			return nil
		}
		path = filepath.Join(os.TempDir(), "wayfare-debug.log")
	}

	var w io.Writer = os.Stderr
	if path != "" {
		f, err := logging.OpenFile(path)
		if err != nil {
			return err
		}
		a.logFile = f
		w = f
	}

	logger, err := logging.Setup(level, w)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// ensureRepo opens the configured database when no repository was given.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}
	path := a.config.Storage.DBPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	repo, err := db.New(path)
	if err != nil {
		return err
	}
	a.repo = repo
	a.ownRepo = true
	a.logger.Debug().Str("path", path).Msg("database opened")
	return nil
}

// orchestrator loads every activity into a fresh placement orchestrator.
func (a *App) orchestrator(ctx context.Context) (*placement.Orchestrator, error) {
	opts, err := placementOptions(a.config, a.logger)
	if err != nil {
		return nil, err
	}
	activities, err := a.repo.ListAllActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}
	o := placement.New(a.repo, opts)
	o.Load(activities)
	return o, nil
}

// placementOptions maps the scheduling config onto orchestrator options.
func placementOptions(cfg *config.Config, logger zerolog.Logger) (placement.Options, error) {
	grid, err := cfg.Grid()
	if err != nil {
		return placement.Options{}, err
	}
	rules := cfg.Rules()
	return placement.Options{
		Grid:                &grid,
		BusinessHours:       rules.BusinessHours,
		TravelBufferMinutes: rules.TravelBufferMinutes,
		Logger:              &logger,
	}, nil
}
