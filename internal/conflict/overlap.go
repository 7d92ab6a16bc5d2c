// Package conflict decides whether a placement collides with anything else
// on the itinerary and how badly.
package conflict

import "github.com/javiermolinar/wayfare/internal/timegrid"

// Interval is a half-open range [Start, End) in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open intervals intersect.
// Back-to-back intervals do not overlap.
func (a Interval) Overlaps(b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// OverlapMinutes returns the length of the intersection, or 0.
func (a Interval) OverlapMinutes(b Interval) int {
	lo := max(a.Start, b.Start)
	hi := min(a.End, b.End)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Gap returns the minutes between two non-overlapping intervals in either
// order. Overlapping intervals have a gap of 0.
func (a Interval) Gap(b Interval) int {
	switch {
	case a.End <= b.Start:
		return b.Start - a.End
	case b.End <= a.Start:
		return a.Start - b.End
	default:
		return 0
	}
}

// ParseInterval parses two time strings into an Interval.
func ParseInterval(start, end string) (Interval, error) {
	s, err := timegrid.TimeToMinutes(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := timegrid.EndToMinutes(end)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: e}, nil
}

// IntervalsOverlap reports whether [aStart, aEnd) and [bStart, bEnd)
// intersect.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd string) (bool, error) {
	a, err := ParseInterval(aStart, aEnd)
	if err != nil {
		return false, err
	}
	b, err := ParseInterval(bStart, bEnd)
	if err != nil {
		return false, err
	}
	return a.Overlaps(b), nil
}
