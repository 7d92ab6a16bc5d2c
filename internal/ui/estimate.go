package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/duration"
	"github.com/javiermolinar/wayfare/internal/itinerary"
)

func (a *App) estimateCmd() *cobra.Command {
	var (
		types   string
		rating  float64
		reviews int
		at      string
		date    string
		id      string
	)

	cmd := &cobra.Command{
		Use:   "estimate [name]",
		Short: "Estimate how long a visit takes",
		Long: `Estimate the visit length of a place from its types, name and rating.

Use --id to estimate a wishlist item already saved.

Example:
  wayfare estimate "Louvre" --types=museum --rating=4.7 --reviews=250000 --date=saturday
  wayfare estimate --id=3f2a9c1e --at=19:00`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			place := duration.Place{Types: itinerary.ParseTypes(types)}
			switch {
			case id != "":
				if err := a.ensureRepo(); err != nil {
					return err
				}
				act, err := findActivity(context.Background(), a.repo, id)
				if err != nil {
					return err
				}
				place = duration.Place{
					Name:             act.Name,
					Types:            act.Types,
					Rating:           act.Rating,
					UserRatingsTotal: act.UserRatingsTotal,
				}
			case len(args) == 1:
				place.Name = args[0]
			default:
				return fmt.Errorf("pass a place name or --id")
			}
			if cmd.Flags().Changed("rating") {
				place.Rating = &rating
			}
			if cmd.Flags().Changed("reviews") {
				place.UserRatingsTotal = &reviews
			}

			day, err := dateutil.ParseRelativeDate(date, time.Now())
			if err != nil {
				return err
			}

			est := duration.EstimateDuration(place, duration.Context{
				TimeOfDay: at,
				IsWeekend: dateutil.IsWeekend(day),
			})
			fmt.Fprintf(a.out, "%s: %s\n", place.Name, formatHeader(FormatDuration(est.Minutes)))
			fmt.Fprintln(a.out, formatMuted(fmt.Sprintf("  category %s, %s confidence", est.Category, est.Confidence)))
			return nil
		},
	}

	cmd.Flags().StringVar(&types, "types", "", "Place types, comma-separated")
	cmd.Flags().Float64Var(&rating, "rating", 0, "Place rating (0-5)")
	cmd.Flags().IntVar(&reviews, "reviews", 0, "Number of ratings")
	cmd.Flags().StringVar(&at, "at", "", "Time of the visit (HH:MM)")
	cmd.Flags().StringVar(&date, "date", "", "Date of the visit, used for weekend crowds")
	cmd.Flags().StringVar(&id, "id", "", "Estimate a saved activity")

	return cmd
}
