package ui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/ics"
)

func (a *App) importCmd() *cobra.Command {
	var (
		url       string
		startDate string
		endDate   string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "import [calendar.ics]",
		Short: "Import bookings from an ICS calendar",
		Long: `Import timed events from an ICS file or feed as fixed activities.

Only events inside the trip (or --start/--end) are imported. Recurring
events are expanded. All-day events, events crossing midnight, events
already imported and events overlapping an existing activity are skipped.

Example:
  wayfare import ~/Downloads/bookings.ics
  wayfare import --url=https://example.com/trip.ics --start=2025-06-14 --end=2025-06-20`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if (len(args) == 1) == (url != "") {
				return fmt.Errorf("pass either a calendar file or --url")
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			dates, err := a.importRange(startDate, endDate)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			var r io.Reader
			if url != "" {
				body, err := ics.Fetch(ctx, nil, url)
				if err != nil {
					return err
				}
				r = bytes.NewReader(body)
			} else {
				path, err := resolvePath(args[0])
				if err != nil {
					return err
				}
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("opening calendar: %w", err)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			report, err := ics.NewImporter(a.repo, a.logger).Import(ctx, r, *dates)
			if err != nil {
				return err
			}
			printImportReport(a.out, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Fetch the calendar from a URL")
	cmd.Flags().StringVar(&startDate, "start", "", "First date to import (YYYY-MM-DD, default trip start)")
	cmd.Flags().StringVar(&endDate, "end", "", "Last date to import (YYYY-MM-DD, default trip end)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Give up after this long")

	return cmd
}

// importRange uses the flags when given, else the configured trip.
func (a *App) importRange(startDate, endDate string) (*dateutil.DateRange, error) {
	if startDate != "" {
		return dateutil.NewDateRange(startDate, endDate)
	}
	if endDate != "" {
		return nil, fmt.Errorf("--end requires --start")
	}
	if !a.config.HasTrip() {
		return nil, fmt.Errorf("no trip dates configured, pass --start and --end")
	}
	return a.config.TripRange()
}

func printImportReport(w io.Writer, report *ics.Report) {
	for _, act := range report.Imported {
		fmt.Fprintf(w, "  %s %s %s-%s %s\n", formatSuccess("+"),
			act.Date.Format(dateutil.Layout), act.Start, act.End, formatCalendar(act.Name))
	}
	for _, s := range report.Skipped {
		name := s.Occurrence.Summary
		if name == "" {
			name = s.Occurrence.UID
		}
		fmt.Fprintf(w, "  %s %s %s %s\n", formatMuted("-"),
			s.Occurrence.Start.Format("2006-01-02 15:04"), name, formatMuted("("+s.Reason+")"))
	}
	fmt.Fprintf(w, "Imported %d events, skipped %d\n", len(report.Imported), len(report.Skipped))
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
