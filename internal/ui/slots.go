package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/wayfare/internal/conflict"
	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

func (a *App) slotsCmd() *cobra.Command {
	var (
		date    string
		minutes int
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Show the time grid of a day",
		Long: `Show every slot of the day's grid and what occupies it.

With --fits, only the start times where an activity of that many minutes
fits without overlapping anything are listed.`,
		Example: `  wayfare slots --date=2025-06-14
  wayfare slots --date=saturday --fits=90`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			day, err := dateutil.ParseRelativeDate(date, time.Now())
			if err != nil {
				return err
			}
			grid, err := a.config.Grid()
			if err != nil {
				return err
			}
			activities, err := a.repo.ListActivitiesByDateRange(context.Background(), day, day)
			if err != nil {
				return fmt.Errorf("listing activities: %w", err)
			}

			fmt.Fprintln(a.out, formatHeader(day.Format("Monday, Jan 2 2006")))
			if minutes > 0 {
				return printFreeStarts(a.out, grid, activities, minutes)
			}
			return printSlots(a.out, grid, activities)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow or a weekday)")
	cmd.Flags().IntVar(&minutes, "fits", 0, "Only list starts where this many minutes fit")

	return cmd
}

// printSlots prints each grid slot with the activity covering it.
func printSlots(w io.Writer, grid timegrid.Config, activities []*itinerary.Activity) error {
	slots := timegrid.GenerateSlots(grid)
	for i, s := range slots {
		if i == len(slots)-1 {
			// The closing boundary has no length.
			fmt.Fprintf(w, "  %8s  %s\n", s.Label, formatMuted("end of day"))
			break
		}
		slot := conflict.Interval{Start: s.Minutes, End: s.Minutes + grid.IntervalMinutes}
		occupant, err := occupantOf(slot, activities)
		if err != nil {
			return err
		}

		label := fmt.Sprintf("%8s", s.Label)
		if !s.IsHour {
			label = formatMuted(label)
		}
		switch {
		case occupant == nil:
			fmt.Fprintf(w, "  %s  %s\n", label, formatMuted("·"))
		case occupant.Source == itinerary.SourceCalendar:
			fmt.Fprintf(w, "  %s  %s\n", label, formatCalendar(occupant.Name))
		default:
			fmt.Fprintf(w, "  %s  %s\n", label, formatActivity(occupant.Name))
		}
	}
	return nil
}

func occupantOf(slot conflict.Interval, activities []*itinerary.Activity) (*itinerary.Activity, error) {
	for _, act := range activities {
		iv, err := conflict.ParseInterval(act.Start, act.End)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", act.ID, err)
		}
		if iv.Overlaps(slot) {
			return act, nil
		}
	}
	return nil, nil
}

// printFreeStarts lists grid starts where minutes fit without an overlap.
func printFreeStarts(w io.Writer, grid timegrid.Config, activities []*itinerary.Activity, minutes int) error {
	starts, err := freeStarts(grid, itinerary.Placements(activities), minutes)
	if err != nil {
		return err
	}
	if len(starts) == 0 {
		fmt.Fprintf(w, "No room for %s on this day.\n", FormatDuration(minutes))
		return nil
	}
	for _, s := range starts {
		end, err := timegrid.EndTime(timegrid.MustTimeToMinutes(s) + minutes)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s-%s\n", s, end)
	}
	return nil
}

func freeStarts(grid timegrid.Config, existing []itinerary.Placement, minutes int) ([]string, error) {
	lo, hi := grid.Bounds()
	var out []string
	for m := lo; m+minutes <= hi; m += grid.IntervalMinutes {
		candidate := conflict.Interval{Start: m, End: m + minutes}
		free := true
		for _, p := range existing {
			iv, err := conflict.ParseInterval(p.Start, p.End)
			if err != nil {
				return nil, fmt.Errorf("activity %s: %w", p.ID, err)
			}
			if candidate.Overlaps(iv) {
				free = false
				break
			}
		}
		if free {
			out = append(out, timegrid.MinutesToTime(m))
		}
	}
	return out, nil
}
