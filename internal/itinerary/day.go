package itinerary

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

// Day holds the scheduled activities of a single date.
type Day struct {
	Date       time.Time
	activities []*Activity // sorted by Start
}

// NewDay creates a Day for the given date.
func NewDay(date time.Time) *Day {
	return &Day{Date: dateutil.TruncateToDay(date)}
}

// NewDayWithActivities creates a Day from a slice of activities.
// Returns ErrTimeBlockOverlap if any two activities overlap.
func NewDayWithActivities(date time.Time, activities []*Activity) (*Day, error) {
	d := NewDay(date)
	for _, a := range activities {
		if err := d.Add(a); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Activities returns a copy of the activity slice.
func (d *Day) Activities() []*Activity {
	return slices.Clone(d.activities)
}

// Add inserts an activity keeping start order.
// Returns ErrTimeBlockOverlap if it overlaps an activity already on the day.
func (d *Day) Add(a *Activity) error {
	if a == nil || !a.IsScheduled() {
		return nil
	}
	if !dateutil.SameDay(*a.Date, d.Date) {
		return fmt.Errorf("activity %q is on %s, not %s",
			a.Name, a.Date.Format(dateutil.Layout), d.Date.Format(dateutil.Layout))
	}

	overlap, err := d.FindOverlapping(a.Start, a.End, a.ID)
	if err != nil {
		return err
	}
	if overlap != nil {
		return fmt.Errorf("%w: %q (%s-%s) conflicts with %q (%s-%s)",
			ErrTimeBlockOverlap,
			a.Name, a.Start, a.End,
			overlap.Name, overlap.Start, overlap.End,
		)
	}

	d.activities = append(d.activities, a)
	slices.SortStableFunc(d.activities, func(x, y *Activity) int {
		return strings.Compare(x.Start, y.Start)
	})
	return nil
}

// FindOverlapping returns the first activity overlapping [start, end),
// skipping the activity with excludeID.
func (d *Day) FindOverlapping(start, end, excludeID string) (*Activity, error) {
	s, err := timegrid.TimeToMinutes(start)
	if err != nil {
		return nil, err
	}
	e, err := timegrid.EndToMinutes(end)
	if err != nil {
		return nil, err
	}
	for _, a := range d.activities {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		as, ae, err := a.minutes()
		if err != nil {
			return nil, err
		}
		if s < ae && as < e {
			return a, nil
		}
	}
	return nil, nil
}

// Remove deletes an activity by ID and returns it, or nil if absent.
func (d *Day) Remove(id string) *Activity {
	for i, a := range d.activities {
		if a.ID == id {
			d.activities = slices.Delete(d.activities, i, i+1)
			return a
		}
	}
	return nil
}

// Len returns the number of activities on the day.
func (d *Day) Len() int {
	return len(d.activities)
}

// BusyMinutes returns the total scheduled time.
func (d *Day) BusyMinutes() int {
	total := 0
	for _, a := range d.activities {
		total += a.Duration()
	}
	return total
}

func (a *Activity) minutes() (int, int, error) {
	p, _ := a.Placement()
	return p.Minutes()
}
