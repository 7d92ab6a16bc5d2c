package itinerary

import (
	"slices"
	"strings"
	"time"

	"github.com/javiermolinar/wayfare/internal/dateutil"
)

// Trip groups activities into days over a date range plus a wishlist.
type Trip struct {
	Range    dateutil.DateRange
	Days     []*Day
	Wishlist []*Activity
}

// NewTrip distributes activities over the days of r. Scheduled activities
// outside the range are ignored; unscheduled ones go to the wishlist.
func NewTrip(r dateutil.DateRange, activities []*Activity) (*Trip, error) {
	t := &Trip{Range: r}
	for _, d := range r.Days() {
		t.Days = append(t.Days, NewDay(d))
	}

	for _, a := range activities {
		if a.IsWishlist() {
			t.Wishlist = append(t.Wishlist, a)
			continue
		}
		day := t.Day(*a.Date)
		if day == nil {
			continue
		}
		if err := day.Add(a); err != nil {
			return nil, err
		}
	}

	slices.SortStableFunc(t.Wishlist, func(x, y *Activity) int {
		return strings.Compare(x.Name, y.Name)
	})
	return t, nil
}

// Day returns the Day for the given date, or nil if outside the trip.
func (t *Trip) Day(date time.Time) *Day {
	for _, d := range t.Days {
		if dateutil.SameDay(date, d.Date) {
			return d
		}
	}
	return nil
}

// Scheduled returns every scheduled activity in day order.
func (t *Trip) Scheduled() []*Activity {
	var out []*Activity
	for _, d := range t.Days {
		out = append(out, d.activities...)
	}
	return out
}
