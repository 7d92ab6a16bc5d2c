// Package itinerary defines the core domain types for wayfare.
package itinerary

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

// Validation errors.
var (
	ErrEmptyName      = errors.New("name cannot be empty")
	ErrEndBeforeStart = errors.New("end time must be after start time")
	ErrMissingTime    = errors.New("scheduled activity needs both start and end")
)

// Domain errors.
var (
	ErrTimeBlockOverlap = errors.New("activity overlaps with an existing activity")
	ErrActivityNotFound = errors.New("activity not found")
)

// Source records where an activity came from.
type Source string

const (
	SourceManual   Source = "manual"
	SourceCalendar Source = "calendar"
)

// Activity is a place or event on the trip. An activity without a date is
// on the wishlist.
type Activity struct {
	ID               string
	Name             string
	PlaceID          string
	Types            []string
	Rating           *float64
	UserRatingsTotal *int
	Address          string
	Notes            string
	Date             *time.Time // nil means wishlist
	Start            string     // "HH:MM", empty on the wishlist
	End              string     // "HH:MM", empty on the wishlist
	DurationMinutes  int        // preferred length when unscheduled, 0 = estimate
	Source           Source
	CreatedAt        time.Time
}

// NewWishlistItem creates an unscheduled activity.
func NewWishlistItem(name string, types []string) (*Activity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Activity{
		Name:      name,
		Types:     normalizeTypes(types),
		Source:    SourceManual,
		CreatedAt: time.Now(),
	}, nil
}

// New creates a scheduled activity.
// date can be empty (defaults to today) or in YYYY-MM-DD format.
// start and end must be valid times with end after start.
func New(name, date, start, end string, types []string) (*Activity, error) {
	a, err := NewWishlistItem(name, types)
	if err != nil {
		return nil, err
	}

	d, err := dateutil.ParseDate(date)
	if err != nil {
		return nil, err
	}

	if err := a.Schedule(d, start, end); err != nil {
		return nil, err
	}
	return a, nil
}

// Schedule places the activity on a date and time after validating it.
func (a *Activity) Schedule(date time.Time, start, end string) error {
	p := Placement{ID: a.ID, Date: date, Start: start, End: end}
	if err := p.Validate(); err != nil {
		return err
	}
	d := dateutil.TruncateToDay(date)
	a.Date = &d
	a.Start = start
	a.End = end
	return nil
}

// Unschedule moves the activity back to the wishlist, remembering its length.
func (a *Activity) Unschedule() {
	if m := a.Duration(); m > 0 {
		a.DurationMinutes = m
	}
	a.Date = nil
	a.Start = ""
	a.End = ""
}

// IsScheduled returns true if the activity has a date and time.
func (a *Activity) IsScheduled() bool {
	return a.Date != nil && a.Start != "" && a.End != ""
}

// IsWishlist returns true if the activity is not on the calendar.
func (a *Activity) IsWishlist() bool {
	return !a.IsScheduled()
}

// Duration returns the scheduled length in minutes, or DurationMinutes for
// unscheduled activities.
func (a *Activity) Duration() int {
	if !a.IsScheduled() {
		return a.DurationMinutes
	}
	m, err := timegrid.Duration(a.Start, a.End)
	if err != nil || m < 0 {
		return 0
	}
	return m
}

// Placement returns the calendar placement of a scheduled activity.
func (a *Activity) Placement() (Placement, bool) {
	if !a.IsScheduled() {
		return Placement{}, false
	}
	return Placement{
		ID:      a.ID,
		PlaceID: a.PlaceID,
		Date:    *a.Date,
		Start:   a.Start,
		End:     a.End,
	}, true
}

// Clone returns a deep copy.
func (a *Activity) Clone() *Activity {
	if a == nil {
		return nil
	}
	c := *a
	c.Types = append([]string(nil), a.Types...)
	if a.Date != nil {
		d := *a.Date
		c.Date = &d
	}
	if a.Rating != nil {
		r := *a.Rating
		c.Rating = &r
	}
	if a.UserRatingsTotal != nil {
		n := *a.UserRatingsTotal
		c.UserRatingsTotal = &n
	}
	return &c
}

// HasType reports whether the activity carries the given place type.
func (a *Activity) HasType(t string) bool {
	for _, have := range a.Types {
		if have == t {
			return true
		}
	}
	return false
}

// String renders a short one-line description.
func (a *Activity) String() string {
	if !a.IsScheduled() {
		return fmt.Sprintf("%s (wishlist)", a.Name)
	}
	return fmt.Sprintf("%s %s %s-%s", a.Name, a.Date.Format(dateutil.Layout), a.Start, a.End)
}

func normalizeTypes(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ParseTypes splits a comma separated list of place types.
func ParseTypes(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return normalizeTypes(strings.Split(s, ","))
}
