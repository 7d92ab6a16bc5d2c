package conflict

import (
	"fmt"
	"slices"
	"strings"

	"github.com/javiermolinar/wayfare/internal/itinerary"
)

// Severity ranks how bad a conflict is.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Reason explains why a conflict was raised.
type Reason string

const (
	ReasonOverlap Reason = "overlap"
	ReasonBuffer  Reason = "buffer"
	ReasonHours   Reason = "hours"
)

// Conflict is a single finding about a candidate placement.
type Conflict struct {
	WithID   string // empty for business-hours conflicts
	Severity Severity
	Reason   Reason
	Start    string // other activity's times, empty for business hours
	End      string
}

func (c Conflict) String() string {
	switch c.Reason {
	case ReasonOverlap:
		return fmt.Sprintf("overlaps %s (%s-%s)", c.WithID, c.Start, c.End)
	case ReasonBuffer:
		return fmt.Sprintf("too close to %s (%s-%s)", c.WithID, c.Start, c.End)
	case ReasonHours:
		return "outside business hours"
	default:
		return string(c.Reason)
	}
}

// BusinessHours is the opening window a placement should sit inside.
type BusinessHours struct {
	Open  string
	Close string
}

// Options tunes Detect.
type Options struct {
	BusinessHours       *BusinessHours
	TravelBufferMinutes int    // minimum gap between activities, 0 disables
	ExcludeID           string // entry to ignore, normally the candidate itself
}

// Detect returns every conflict between candidate and existing, most severe
// first. Only entries on the candidate's date are considered. Detect is pure
// and deterministic; it fails only on malformed times.
func Detect(candidate itinerary.Placement, existing []itinerary.Placement, opts Options) ([]Conflict, error) {
	cand, err := ParseInterval(candidate.Start, candidate.End)
	if err != nil {
		return nil, fmt.Errorf("candidate: %w", err)
	}

	var conflicts []Conflict
	for _, other := range existing {
		if opts.ExcludeID != "" && other.ID == opts.ExcludeID {
			continue
		}
		if !candidate.SameDate(other) {
			continue
		}

		iv, err := ParseInterval(other.Start, other.End)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", other.ID, err)
		}

		switch {
		case cand.Overlaps(iv):
			conflicts = append(conflicts, Conflict{
				WithID: other.ID, Severity: SeverityHigh, Reason: ReasonOverlap,
				Start: other.Start, End: other.End,
			})
		case opts.TravelBufferMinutes > 0 && cand.Gap(iv) < opts.TravelBufferMinutes:
			conflicts = append(conflicts, Conflict{
				WithID: other.ID, Severity: SeverityMedium, Reason: ReasonBuffer,
				Start: other.Start, End: other.End,
			})
		}
	}

	if bh := opts.BusinessHours; bh != nil {
		hours, err := ParseInterval(bh.Open, bh.Close)
		if err != nil {
			return nil, fmt.Errorf("business hours: %w", err)
		}
		if cand.Start < hours.Start || cand.End > hours.End {
			conflicts = append(conflicts, Conflict{Severity: SeverityLow, Reason: ReasonHours})
		}
	}

	slices.SortStableFunc(conflicts, func(a, b Conflict) int {
		return int(b.Severity) - int(a.Severity)
	})
	return conflicts, nil
}

// Blocking reports whether any conflict prevents the placement.
// Only direct overlaps block; buffer and hours conflicts are warnings.
func Blocking(conflicts []Conflict) bool {
	return MaxSeverity(conflicts) >= SeverityHigh
}

// MaxSeverity returns the highest severity present, or 0 when empty.
func MaxSeverity(conflicts []Conflict) Severity {
	var top Severity
	for _, c := range conflicts {
		top = max(top, c.Severity)
	}
	return top
}

// Filter keeps conflicts at or above floor.
func Filter(conflicts []Conflict, floor Severity) []Conflict {
	var out []Conflict
	for _, c := range conflicts {
		if c.Severity >= floor {
			out = append(out, c)
		}
	}
	return out
}

// Warnings returns the non-blocking conflicts.
func Warnings(conflicts []Conflict) []Conflict {
	var out []Conflict
	for _, c := range conflicts {
		if c.Severity < SeverityHigh {
			out = append(out, c)
		}
	}
	return out
}

// Summary joins conflicts into a single line for status messages.
// names maps activity IDs to display names; missing IDs are shown as is.
func Summary(conflicts []Conflict, names map[string]string) string {
	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		if name, ok := names[c.WithID]; ok {
			c.WithID = name
		}
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "; ")
}
