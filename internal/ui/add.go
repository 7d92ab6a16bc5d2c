package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/placement"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

func (a *App) addCmd() *cobra.Command {
	var (
		types    string
		placeID  string
		address  string
		notes    string
		rating   float64
		reviews  int
		minutes  int
		date     string
		start    string
		end      string
		fixed    bool
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a place to the wishlist or straight onto a day",
		Long: `Add a place to visit.

Without --start the place goes to the wishlist. With --start it is placed
on --date (default today); if the slot is taken it moves to the nearest
free one. The length comes from --end or --duration, otherwise it is
estimated from the place types.

Example:
  wayfare add "Louvre" --types=museum,tourist_attraction --rating=4.7 --reviews=250000
  wayfare add "Bouillon Chartier" --types=restaurant --date=2025-06-14 --start=19:30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			act, err := itinerary.NewWishlistItem(args[0], itinerary.ParseTypes(types))
			if err != nil {
				return err
			}
			act.PlaceID = placeID
			act.Address = address
			act.Notes = notes
			if fixed {
				act.Source = itinerary.SourceCalendar
			}
			if cmd.Flags().Changed("rating") {
				act.Rating = &rating
			}
			if cmd.Flags().Changed("reviews") {
				act.UserRatingsTotal = &reviews
			}
			if minutes < 0 {
				return fmt.Errorf("duration must be positive")
			}
			act.DurationMinutes = minutes

			ctx := context.Background()
			if start == "" {
				if end != "" {
					return fmt.Errorf("--end requires --start")
				}
				if err := a.repo.CreateActivity(ctx, act); err != nil {
					return fmt.Errorf("creating activity: %w", err)
				}
				a.logger.Info().Str("activity", act.ID).Str("name", act.Name).Msg("added to wishlist")
				fmt.Fprintf(a.out, "Added to wishlist [%s]: %s\n", shortID(act.ID), act.Name)
				return nil
			}

			day, err := dateutil.ParseRelativeDate(date, time.Now())
			if err != nil {
				return err
			}
			if end != "" {
				m, err := timegrid.Duration(start, end)
				if err != nil {
					return err
				}
				if m <= 0 {
					return itinerary.ErrEndBeforeStart
				}
				act.DurationMinutes = m
			}

			o, err := a.orchestrator(ctx)
			if err != nil {
				return err
			}
			w, err := o.Add(act, day, start)
			if err != nil {
				return err
			}
			if err := o.Persist(ctx, w); err != nil {
				return err
			}

			stored := w.Stored()
			a.logger.Info().Str("activity", stored.ID).Str("name", stored.Name).Msg("activity placed")
			printPlaced(a.out, stored, w.Decision, activityNames(o.Activities()))
			return nil
		},
	}

	cmd.Flags().StringVar(&types, "types", "", "Place types, comma-separated (e.g. museum,cafe)")
	cmd.Flags().StringVar(&placeID, "place-id", "", "External place identifier")
	cmd.Flags().StringVar(&address, "address", "", "Address")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().Float64Var(&rating, "rating", 0, "Place rating (0-5)")
	cmd.Flags().IntVar(&reviews, "reviews", 0, "Number of ratings")
	cmd.Flags().IntVar(&minutes, "duration", 0, "Length in minutes (default: estimated)")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow or a weekday)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM); omit to add to the wishlist")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM)")
	cmd.Flags().BoolVar(&fixed, "fixed", false, "Mark as a fixed booking rather than a manual plan")

	return cmd
}

func (a *App) wishlistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wishlist",
		Short: "List places not yet scheduled",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			items, err := a.repo.ListWishlist(context.Background())
			if err != nil {
				return fmt.Errorf("listing wishlist: %w", err)
			}
			if len(items) == 0 {
				fmt.Fprintln(a.out, "Wishlist is empty.")
				return nil
			}
			fmt.Fprintln(a.out, formatHeader(fmt.Sprintf("Wishlist (%d)", len(items))))
			for _, item := range items {
				PrintWishlistRow(a.out, item)
			}
			return nil
		},
	}
}

// printPlaced reports where an activity ended up, with the one-time notice
// when it was moved and any warnings at its final slot.
func printPlaced(w io.Writer, act *itinerary.Activity, d placement.Decision, names map[string]string) {
	fmt.Fprintf(w, "Placed [%s] %s on %s %s-%s\n",
		shortID(act.ID), act.Name, act.Date.Format(dateutil.Layout), act.Start, act.End)
	switch {
	case d.Adjusted && d.OutOfRange:
		fmt.Fprintln(w, formatWarning(fmt.Sprintf("  does not fit at %s, moved to the nearest free slot",
			d.Requested.Start)))
	case d.Adjusted:
		fmt.Fprintln(w, formatWarning(fmt.Sprintf("  %s-%s was taken, moved to the nearest free slot",
			d.Requested.Start, d.Requested.End)))
	}
	if d.Estimated != nil {
		fmt.Fprintln(w, formatMuted(fmt.Sprintf("  length estimated at %s (%s, %s confidence)",
			FormatDuration(d.Estimated.Minutes), d.Estimated.Category, d.Estimated.Confidence)))
	}
	PrintConflicts(w, d.Warnings, names)
}
