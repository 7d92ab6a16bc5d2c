package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

// Store is the subset of the repository the importer writes to.
type Store interface {
	CreateActivity(ctx context.Context, a *itinerary.Activity) error
	FindByPlaceID(ctx context.Context, placeID string) (*itinerary.Activity, error)
}

// Skip reasons.
const (
	SkipAllDay    = "all-day"
	SkipMultiDay  = "spans midnight"
	SkipDuplicate = "already imported"
	SkipOverlap   = "overlaps an activity"
)

// Skipped is an occurrence that was not imported.
type Skipped struct {
	Occurrence Occurrence
	Reason     string
	Detail     string
}

// Report summarizes an import.
type Report struct {
	Imported []*itinerary.Activity
	Skipped  []Skipped
}

// Importer turns calendar occurrences into calendar-sourced activities.
type Importer struct {
	store  Store
	logger zerolog.Logger

	// Location is the trip's time zone; event times are converted to it.
	Location *time.Location
}

// NewImporter creates an Importer working in local time.
func NewImporter(store Store, logger zerolog.Logger) *Importer {
	return &Importer{
		store:    store,
		logger:   logger.With().Str("component", "ics").Logger(),
		Location: time.Local,
	}
}

// Import parses r and stores every occurrence inside the date range. All-day
// and multi-day events, instances imported before, and instances that would
// overlap an existing activity are skipped and reported.
func (im *Importer) Import(ctx context.Context, r io.Reader, dates dateutil.DateRange) (*Report, error) {
	events, err := Parse(r)
	if err != nil {
		return nil, err
	}

	loc := im.Location
	if loc == nil {
		loc = time.Local
	}
	from := midnight(dates.Start, loc)
	to := midnight(dates.End, loc).AddDate(0, 0, 1)
	occurrences, err := Expand(events, from, to, loc)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, occ := range occurrences {
		a, reason := ToActivity(occ)
		if a == nil {
			report.Skipped = append(report.Skipped, Skipped{Occurrence: occ, Reason: reason})
			continue
		}

		existing, err := im.store.FindByPlaceID(ctx, a.PlaceID)
		if err != nil {
			return report, fmt.Errorf("checking %q: %w", occ.Summary, err)
		}
		if existing != nil {
			report.Skipped = append(report.Skipped, Skipped{Occurrence: occ, Reason: SkipDuplicate})
			continue
		}

		if err := im.store.CreateActivity(ctx, a); err != nil {
			if errors.Is(err, itinerary.ErrTimeBlockOverlap) {
				report.Skipped = append(report.Skipped, Skipped{Occurrence: occ, Reason: SkipOverlap, Detail: err.Error()})
				continue
			}
			return report, fmt.Errorf("importing %q: %w", occ.Summary, err)
		}
		report.Imported = append(report.Imported, a)
	}

	im.logger.Info().
		Int("events", len(events)).
		Int("imported", len(report.Imported)).
		Int("skipped", len(report.Skipped)).
		Msg("calendar import finished")
	return report, nil
}

// ToActivity converts an occurrence that fits inside one day. Otherwise it
// returns nil and the skip reason. An event ending exactly at midnight ends
// at "24:00".
func ToActivity(occ Occurrence) (*itinerary.Activity, string) {
	if occ.AllDay {
		return nil, SkipAllDay
	}

	day := midnight(occ.Start, occ.Start.Location())
	start := occ.Start.Format("15:04")
	var end string
	switch {
	case dateutil.SameDay(occ.Start, occ.End):
		end = occ.End.Format("15:04")
	case occ.End.Equal(day.AddDate(0, 0, 1)):
		end = timegrid.EndOfDay
	default:
		return nil, SkipMultiDay
	}
	if end <= start {
		end, _ = timegrid.EndTime(timegrid.MustTimeToMinutes(start) + 1)
	}

	name := occ.Summary
	if name == "" {
		name = "Calendar event"
	}
	a := &itinerary.Activity{
		Name:    name,
		PlaceID: occ.Key(),
		Address: occ.Location,
		Notes:   occ.Description,
		Source:  itinerary.SourceCalendar,
	}
	if err := a.Schedule(day, start, end); err != nil {
		return nil, err.Error()
	}
	return a, ""
}

// midnight returns the start of t's calendar date in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// MaxFeedBytes caps the size of a downloaded feed.
const MaxFeedBytes = 10 << 20

// ErrFeedTooLarge is returned when a feed exceeds MaxFeedBytes.
var ErrFeedTooLarge = errors.New("calendar feed too large")

// Fetch downloads an ICS feed of at most MaxFeedBytes.
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching calendar: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxFeedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	if len(body) > MaxFeedBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFeedTooLarge, MaxFeedBytes)
	}
	return body, nil
}
