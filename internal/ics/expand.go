package ics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

// maxOccurrences caps a single series so an unbounded RRULE cannot flood
// the itinerary.
const maxOccurrences = 500

// Occurrence is one concrete instance of an event.
type Occurrence struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// Key identifies the instance across imports.
func (o Occurrence) Key() string {
	return "ics:" + o.UID + "@" + o.Start.UTC().Format("20060102T150405Z")
}

// Expand turns events into occurrences overlapping [from, to), converted to
// loc (time.Local when nil). Recurring events honor EXDATE and RECURRENCE-ID
// overrides. Occurrences are sorted by start.
func Expand(events []Event, from, to time.Time, loc *time.Location) ([]Occurrence, error) {
	if to.Before(from) {
		return nil, errors.New("expand: range end is before range start")
	}
	if loc == nil {
		loc = time.Local
	}

	var base []Event
	overrides := make(map[string][]Event)
	for _, ev := range events {
		if ev.IsOverride() {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		base = append(base, ev)
	}

	var out []Occurrence
	for _, ev := range base {
		occ, err := expandEvent(ev, overrides[ev.UID], from, to, loc)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", ev.UID, err)
		}
		out = append(out, occ...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func expandEvent(ev Event, overrides []Event, from, to time.Time, loc *time.Location) ([]Occurrence, error) {
	if ev.RRule == "" {
		if !overlaps(ev.Start, ev.End, from, to) {
			return nil, nil
		}
		return []Occurrence{instance(ev, overrides, ev.Start, loc)}, nil
	}

	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		return nil, fmt.Errorf("parsing RRULE %q: %w", ev.RRule, err)
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen the window by the event length so instances already running
	// at from are included.
	length := ev.End.Sub(ev.Start)
	starts := set.Between(from.Add(-length).In(ev.Start.Location()), to.In(ev.Start.Location()), true)
	if len(starts) > maxOccurrences {
		starts = starts[:maxOccurrences]
	}

	var out []Occurrence
	for _, s := range starts {
		occ := instance(ev, overrides, s, loc)
		if overlaps(occ.Start, occ.End, from, to) {
			out = append(out, occ)
		}
	}
	return out, nil
}

// instance builds the occurrence starting at start, applying a matching
// override.
func instance(ev Event, overrides []Event, start time.Time, loc *time.Location) Occurrence {
	end := start.Add(ev.End.Sub(ev.Start))
	for _, ov := range overrides {
		if ov.Recurrence.Equal(start) {
			ev, start, end = ov, ov.Start, ov.End
			break
		}
	}
	return Occurrence{
		UID:         ev.UID,
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       start.In(loc),
		End:         end.In(loc),
		AllDay:      ev.AllDay,
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aEnd.After(aStart) {
		// Zero-length events count when they fall inside the window.
		return !aStart.Before(bStart) && aStart.Before(bEnd)
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
