package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

func (a *App) listCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		verbose   bool
		noColor   bool
		copyText  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled activities in a date range",
		Long: `List all activities scheduled within a date range.

If no dates are specified, lists the configured trip, or today when no
trip is set. If only --start is specified, lists that single day.
With --copy the itinerary is also copied to the clipboard as plain text.`,
		Example: `  wayfare list
  wayfare list --start=2025-06-14
  wayfare list --start=2025-06-14 --end=2025-06-20 --copy`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			dateRange, err := a.listRange(startDate, endDate)
			if err != nil {
				return err
			}
			grid, err := a.config.Grid()
			if err != nil {
				return err
			}

			activities, err := a.repo.ListActivitiesByDateRange(context.Background(), dateRange.Start, dateRange.End)
			if err != nil {
				return fmt.Errorf("listing activities: %w", err)
			}

			if len(activities) == 0 {
				fmt.Fprintln(a.out, "No activities found in the specified date range.")
				return nil
			}

			printItinerary(a.out, activities, grid, PrintOpts{Verbose: verbose, ShowDuration: true, ShowID: true})

			if copyText {
				text := FormatItinerary(a.config.Trip.Name, activities)
				if err := copyToClipboard(text); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(a.out, formatSuccess("Itinerary copied to clipboard."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD, defaults to the trip start or today)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD, defaults to start date)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show full names, addresses and notes")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&copyText, "copy", false, "Copy the itinerary to the clipboard")

	return cmd
}

// listRange picks the explicit range, the trip, or today.
func (a *App) listRange(startDate, endDate string) (*dateutil.DateRange, error) {
	if startDate == "" && endDate == "" && a.config.HasTrip() {
		return a.config.TripRange()
	}
	return dateutil.NewDateRange(startDate, endDate)
}

// printItinerary prints activities grouped by date with a stats line per day.
func printItinerary(w io.Writer, activities []*itinerary.Activity, grid timegrid.Config, opts PrintOpts) {
	maxNameWidth := opts.CalcMaxNameWidth(32)

	var day []*itinerary.Activity
	flush := func() {
		if len(day) == 0 {
			return
		}
		PrintDayStats(w, ComputeDayStats(day, grid))
		day = day[:0]
	}

	for i, act := range activities {
		if !act.IsScheduled() {
			continue
		}
		if len(day) == 0 || !dateutil.SameDay(*day[0].Date, *act.Date) {
			flush()
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, formatHeader(dayHeader(act)))
		}
		PrintActivityRow(w, act, opts, maxNameWidth)
		day = append(day, act)
	}
	flush()
}
