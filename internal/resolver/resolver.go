// Package resolver finds the nearest non-conflicting start time for an
// activity when the requested one is taken.
package resolver

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/wayfare/internal/conflict"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

// DefaultStepMinutes is the search step when no grid is configured.
const DefaultStepMinutes = 15

// ErrInvalidDuration is returned for non-positive durations.
var ErrInvalidDuration = errors.New("duration must be positive")

// Options tunes FindNearestValidSlot.
type Options struct {
	ExcludeID   string           // the activity being moved
	StepMinutes int              // 0 uses the grid interval or DefaultStepMinutes
	Grid        *timegrid.Config // bounds the search to the visible grid
}

// Slot is a resolved placement.
type Slot struct {
	Start string
	End   string
	// Offset is the distance from the requested start in minutes;
	// positive means later.
	Offset int
}

// Adjusted reports whether the slot differs from the requested start.
func (s Slot) Adjusted() bool {
	return s.Offset != 0
}

// FindNearestValidSlot returns the requested slot when nothing overlaps it,
// otherwise the closest slot that is free, trying later before earlier at
// each distance. Only direct overlaps count; buffer and business-hours
// warnings never move an activity. Returns nil, nil when the day has no
// room inside the bounds.
func FindNearestValidSlot(
	desiredStart string,
	durationMinutes int,
	date time.Time,
	existing []itinerary.Placement,
	opts Options,
) (*Slot, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDuration, durationMinutes)
	}
	start, err := timegrid.TimeToMinutes(desiredStart)
	if err != nil {
		return nil, err
	}

	if err := validateExisting(existing); err != nil {
		return nil, err
	}

	step := opts.StepMinutes
	lo, hi := 0, timegrid.MinutesPerDay
	if opts.Grid != nil {
		lo, hi = opts.Grid.Bounds()
		if step <= 0 {
			step = opts.Grid.IntervalMinutes
		}
	}
	if step <= 0 {
		step = DefaultStepMinutes
	}

	detectOpts := conflict.Options{ExcludeID: opts.ExcludeID}
	fits := func(s int) (bool, error) {
		if s < lo || s+durationMinutes > hi {
			return false, nil
		}
		candidate := itinerary.Placement{
			ID:    opts.ExcludeID,
			Date:  date,
			Start: timegrid.MinutesToTime(s),
			End:   clockEnd(s + durationMinutes),
		}
		conflicts, err := conflict.Detect(candidate, existing, detectOpts)
		if err != nil {
			return false, err
		}
		return !conflict.Blocking(conflicts), nil
	}

	ok, err := fits(start)
	if err != nil {
		return nil, err
	}
	if ok {
		return newSlot(start, durationMinutes, 0), nil
	}

	for k := 1; ; k++ {
		offsets := [2]int{k * step, -k * step}
		for _, off := range offsets {
			s := start + off
			if s < lo || s+durationMinutes > hi {
				continue
			}
			ok, err := fits(s)
			if err != nil {
				return nil, err
			}
			if ok {
				return newSlot(s, durationMinutes, off), nil
			}
		}
		// Both directions only move further out from here.
		if start+k*step+durationMinutes > hi && start-k*step < lo {
			return nil, nil
		}
	}
}

func newSlot(start, duration, offset int) *Slot {
	return &Slot{
		Start:  timegrid.MinutesToTime(start),
		End:    clockEnd(start + duration),
		Offset: offset,
	}
}

// clockEnd formats an end the bounds check has already accepted.
func clockEnd(m int) string {
	end, err := timegrid.EndTime(m)
	if err != nil {
		panic(err)
	}
	return end
}

// validateExisting fails fast on malformed times so the search loop can
// only end in a slot or exhaustion.
func validateExisting(existing []itinerary.Placement) error {
	for _, p := range existing {
		if _, err := conflict.ParseInterval(p.Start, p.End); err != nil {
			return fmt.Errorf("activity %s: %w", p.ID, err)
		}
	}
	return nil
}
