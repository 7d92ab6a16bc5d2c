package itinerary

import (
	"fmt"
	"time"

	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

// Placement is an activity's position on the calendar.
type Placement struct {
	ID      string
	PlaceID string
	Date    time.Time // calendar date, time of day ignored
	Start   string    // "HH:MM" or "HH:MM:SS"
	End     string    // exclusive; may be "24:00"
}

// Validate checks both times parse and start is before end.
func (p Placement) Validate() error {
	if p.Start == "" || p.End == "" {
		return ErrMissingTime
	}
	s, err := timegrid.TimeToMinutes(p.Start)
	if err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	e, err := timegrid.EndToMinutes(p.End)
	if err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if e <= s {
		return ErrEndBeforeStart
	}
	return nil
}

// Minutes returns start and end in minutes since midnight.
func (p Placement) Minutes() (start, end int, err error) {
	start, err = timegrid.TimeToMinutes(p.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("start time: %w", err)
	}
	end, err = timegrid.EndToMinutes(p.End)
	if err != nil {
		return 0, 0, fmt.Errorf("end time: %w", err)
	}
	return start, end, nil
}

// SameDate reports whether both placements fall on the same calendar date.
func (p Placement) SameDate(other Placement) bool {
	return dateutil.SameDay(p.Date, other.Date)
}

// Placements extracts placements of the scheduled activities.
func Placements(activities []*Activity) []Placement {
	out := make([]Placement, 0, len(activities))
	for _, a := range activities {
		if p, ok := a.Placement(); ok {
			out = append(out, p)
		}
	}
	return out
}
