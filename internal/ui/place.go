package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/wayfare/internal/conflict"
	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/placement"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

func (a *App) checkCmd() *cobra.Command {
	var (
		date  string
		start string
	)

	cmd := &cobra.Command{
		Use:   "check [id]",
		Short: "Check a placement for conflicts without changing anything",
		Long: `Report what would conflict if the activity started at --start on --date.

Overlaps block a placement; travel-buffer and business-hours findings are
warnings only.

Example:
  wayfare check 3f2a9c1e --date=2025-06-14 --start=10:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()
			act, err := findActivity(ctx, a.repo, args[0])
			if err != nil {
				return err
			}
			day, err := dateutil.ParseRelativeDate(date, time.Now())
			if err != nil {
				return err
			}

			o, err := a.orchestrator(ctx)
			if err != nil {
				return err
			}
			preview, err := o.Preview(placement.Target{ActivityID: act.ID, Date: day, Start: start})
			if err != nil {
				return err
			}

			p := preview.Placement
			end := p.End
			if end == "" {
				end = "past midnight"
			}
			fmt.Fprintf(a.out, "%s on %s %s-%s\n", act.Name, p.Date.Format(dateutil.Layout), p.Start, end)
			switch {
			case preview.OutOfRange:
				fmt.Fprintln(a.out, formatSeverity(conflict.SeverityHigh, "  does not fit before the end of the day"))
			case len(preview.Conflicts) == 0:
				fmt.Fprintln(a.out, formatSuccess("  no conflicts"))
			case preview.Blocking:
				fmt.Fprintln(a.out, formatSeverity(conflict.SeverityHigh, "  blocked"))
			default:
				fmt.Fprintln(a.out, formatWarning("  allowed with warnings"))
			}
			PrintConflicts(a.out, preview.Conflicts, activityNames(o.Activities()))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow or a weekday)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM, required)")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func (a *App) placeCmd() *cobra.Command {
	var (
		date  string
		start string
	)

	cmd := &cobra.Command{
		Use:   "place [id]",
		Short: "Place an activity, moving it to the nearest free slot if needed",
		Long: `Schedule a wishlist item or move a scheduled activity.

If the requested slot overlaps another activity, the nearest free slot on
the same day is used instead, trying later times first. Wishlist items
without a known length get an estimated one.

Example:
  wayfare place 3f2a9c1e --date=2025-06-14 --start=10:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()
			act, err := findActivity(ctx, a.repo, args[0])
			if err != nil {
				return err
			}
			day, err := dateutil.ParseRelativeDate(date, time.Now())
			if err != nil {
				return err
			}

			o, err := a.orchestrator(ctx)
			if err != nil {
				return err
			}
			w, err := o.Drop(placement.Target{ActivityID: act.ID, Date: day, Start: start})
			if err != nil {
				return err
			}
			if err := o.Persist(ctx, w); err != nil {
				return err
			}

			a.logger.Info().
				Str("activity", act.ID).
				Str("start", w.Decision.Placement.Start).
				Bool("adjusted", w.Decision.Adjusted).
				Msg("activity placed")
			printPlaced(a.out, w.Stored(), w.Decision, activityNames(o.Activities()))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow or a weekday)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM, required)")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func (a *App) moveCmd() *cobra.Command {
	var (
		date  string
		start string
		end   string
	)

	cmd := &cobra.Command{
		Use:   "move [id]",
		Short: "Move an activity to an exact time",
		Long: `Move an activity to exactly --start on --date, keeping its length
unless --end is given. Fails instead of adjusting when the time is taken.

Example:
  wayfare move 3f2a9c1e --date=2025-06-15 --start=14:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()
			act, err := findActivity(ctx, a.repo, args[0])
			if err != nil {
				return err
			}
			day, err := dateutil.ParseRelativeDate(date, time.Now())
			if err != nil {
				return err
			}

			if end == "" {
				length := act.Duration()
				if length <= 0 {
					return fmt.Errorf("%q has no length yet, pass --end or use place", act.Name)
				}
				if end, err = timegrid.AddMinutes(start, length); err != nil {
					return fmt.Errorf("%q lasts %s and does not fit at %s: %w",
						act.Name, FormatDuration(length), start, err)
				}
			}

			moved, err := a.repo.SetActivityDateTime(ctx, act.ID, day, start, end)
			if err != nil {
				return fmt.Errorf("moving activity: %w", err)
			}
			a.logger.Info().Str("activity", moved.ID).Str("start", moved.Start).Msg("activity moved")
			fmt.Fprintf(a.out, "Moved [%s] %s to %s %s-%s\n",
				shortID(moved.ID), moved.Name, moved.Date.Format(dateutil.Layout), moved.Start, moved.End)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow or a weekday)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM, required)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM, default keeps the length)")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func (a *App) unscheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unschedule [id]",
		Short: "Move an activity back to the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()
			act, err := findActivity(ctx, a.repo, args[0])
			if err != nil {
				return err
			}
			if act.IsWishlist() {
				fmt.Fprintf(a.out, "%s is already on the wishlist.\n", act.Name)
				return nil
			}
			if err := a.repo.UnscheduleActivity(ctx, act.ID); err != nil {
				return fmt.Errorf("unscheduling activity: %w", err)
			}
			a.logger.Info().Str("activity", act.ID).Msg("activity unscheduled")
			fmt.Fprintf(a.out, "Moved %s back to the wishlist\n", act.Name)
			return nil
		},
	}
}

func (a *App) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove [id]",
		Aliases: []string{"rm"},
		Short:   "Delete an activity",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := context.Background()
			act, err := findActivity(ctx, a.repo, args[0])
			if err != nil {
				return err
			}
			if err := a.repo.DeleteActivity(ctx, act.ID); err != nil {
				return fmt.Errorf("deleting activity: %w", err)
			}
			a.logger.Info().Str("activity", act.ID).Msg("activity deleted")
			fmt.Fprintf(a.out, "Removed %s\n", describe(act))
			return nil
		},
	}
}

func describe(act *itinerary.Activity) string {
	if act.IsWishlist() {
		return act.Name + " (wishlist)"
	}
	return fmt.Sprintf("%s (%s %s-%s)", act.Name, act.Date.Format(dateutil.Layout), act.Start, act.End)
}
