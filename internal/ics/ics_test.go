package ics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/itinerary"
)

func calendar(events ...string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//wayfare//test//EN",
	}
	for _, e := range events {
		lines = append(lines, strings.Split(strings.TrimSpace(e), "\n")...)
	}
	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

const (
	louvreTour = `BEGIN:VEVENT
UID:louvre-1
SUMMARY:Louvre guided tour
LOCATION:Rue de Rivoli
DESCRIPTION:Meet at the pyramid
DTSTART:20250614T100000Z
DTEND:20250614T120000Z
END:VEVENT`

	hotelStay = `BEGIN:VEVENT
UID:hotel-1
SUMMARY:Hotel
DTSTART;VALUE=DATE:20250614
DTEND;VALUE=DATE:20250616
END:VEVENT`

	nightTrain = `BEGIN:VEVENT
UID:train-1
SUMMARY:Night train
DTSTART:20250615T220000Z
DTEND:20250616T070000Z
END:VEVENT`

	lateDinner = `BEGIN:VEVENT
UID:dinner-1
SUMMARY:Late dinner
DTSTART:20250616T220000Z
DTEND:20250617T000000Z
END:VEVENT`

	breakfast = `BEGIN:VEVENT
UID:breakfast-1
SUMMARY:Breakfast
DTSTART:20250614T080000Z
DTEND:20250614T083000Z
RRULE:FREQ=DAILY;COUNT=5
EXDATE:20250616T080000Z
END:VEVENT
BEGIN:VEVENT
UID:breakfast-1
RECURRENCE-ID:20250615T080000Z
SUMMARY:Late breakfast
DTSTART:20250615T090000Z
DTEND:20250615T093000Z
END:VEVENT`
)

var (
	june14 = time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	june18 = time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)
)

func TestParse(t *testing.T) {
	events, err := Parse(strings.NewReader(calendar(louvreTour, hotelStay)))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	tour := events[0]
	if tour.UID != "louvre-1" || tour.Summary != "Louvre guided tour" || tour.Location != "Rue de Rivoli" {
		t.Errorf("unexpected event: %+v", tour)
	}
	if tour.AllDay {
		t.Error("timed event marked all-day")
	}
	if !tour.Start.Equal(time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", tour.Start)
	}
	if got := tour.End.Sub(tour.Start); got != 2*time.Hour {
		t.Errorf("length = %v, want 2h", got)
	}

	if !events[1].AllDay {
		t.Error("VALUE=DATE event should be all-day")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse(strings.NewReader("not a calendar")); err == nil {
		t.Error("expected error")
	}
}

func TestParse_RecurrenceFields(t *testing.T) {
	events, err := Parse(strings.NewReader(calendar(breakfast)))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].RRule != "FREQ=DAILY;COUNT=5" || len(events[0].ExDates) != 1 {
		t.Errorf("series = %+v", events[0])
	}
	if !events[1].IsOverride() {
		t.Error("expected override")
	}
}

func TestExpand_Recurring(t *testing.T) {
	events, err := Parse(strings.NewReader(calendar(breakfast)))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	occ, err := Expand(events, june14, june18, time.UTC)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	want := []struct {
		summary string
		start   string
	}{
		{"Breakfast", "2025-06-14 08:00"},
		{"Late breakfast", "2025-06-15 09:00"},
		{"Breakfast", "2025-06-17 08:00"},
	}
	if len(occ) != len(want) {
		t.Fatalf("got %d occurrences, want %d: %+v", len(occ), len(want), occ)
	}
	for i, w := range want {
		if occ[i].Summary != w.summary || occ[i].Start.Format("2006-01-02 15:04") != w.start {
			t.Errorf("occurrence %d = %s at %s, want %s at %s",
				i, occ[i].Summary, occ[i].Start.Format("2006-01-02 15:04"), w.summary, w.start)
		}
	}
	if occ[0].Key() == occ[2].Key() {
		t.Error("instances of a series need distinct keys")
	}
}

func TestExpand_RangeFilter(t *testing.T) {
	events, _ := Parse(strings.NewReader(calendar(louvreTour)))

	occ, err := Expand(events, june14.AddDate(0, 0, 1), june18, time.UTC)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(occ) != 0 {
		t.Errorf("expected no occurrences outside the range, got %d", len(occ))
	}

	if _, err := Expand(events, june18, june14, time.UTC); err == nil {
		t.Error("expected error for reversed range")
	}
}

func TestToActivity(t *testing.T) {
	at := func(day, hour, minute int) time.Time {
		return time.Date(2025, 6, day, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		occ        Occurrence
		wantReason string
		wantStart  string
		wantEnd    string
	}{
		{
			name:      "same day",
			occ:       Occurrence{UID: "a", Summary: "Tour", Start: at(14, 10, 0), End: at(14, 12, 0)},
			wantStart: "10:00",
			wantEnd:   "12:00",
		},
		{
			name:      "ends at midnight",
			occ:       Occurrence{UID: "b", Summary: "Dinner", Start: at(14, 22, 0), End: at(15, 0, 0)},
			wantStart: "22:00",
			wantEnd:   "24:00",
		},
		{
			name:      "zero length",
			occ:       Occurrence{UID: "c", Summary: "Check-in", Start: at(14, 15, 0), End: at(14, 15, 0)},
			wantStart: "15:00",
			wantEnd:   "15:01",
		},
		{
			name:      "zero length before midnight",
			occ:       Occurrence{UID: "c2", Summary: "Curfew", Start: at(14, 23, 59), End: at(14, 23, 59)},
			wantStart: "23:59",
			wantEnd:   "24:00",
		},
		{
			name:       "all day",
			occ:        Occurrence{UID: "d", Start: at(14, 0, 0), End: at(15, 0, 0), AllDay: true},
			wantReason: SkipAllDay,
		},
		{
			name:       "overnight",
			occ:        Occurrence{UID: "e", Start: at(14, 22, 0), End: at(15, 7, 0)},
			wantReason: SkipMultiDay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, reason := ToActivity(tt.occ)
			if tt.wantReason != "" {
				if a != nil || reason != tt.wantReason {
					t.Errorf("got %v, %q; want skip %q", a, reason, tt.wantReason)
				}
				return
			}
			if a == nil {
				t.Fatalf("unexpected skip: %s", reason)
			}
			if a.Start != tt.wantStart || a.End != tt.wantEnd {
				t.Errorf("got %s-%s, want %s-%s", a.Start, a.End, tt.wantStart, tt.wantEnd)
			}
			if a.Source != itinerary.SourceCalendar || a.PlaceID != tt.occ.Key() {
				t.Errorf("unexpected activity: %+v", a)
			}
		})
	}
}

type fakeStore struct {
	byPlace map[string]*itinerary.Activity
	clashes map[string]bool // names that overlap an existing activity
}

func newFakeStore() *fakeStore {
	return &fakeStore{byPlace: make(map[string]*itinerary.Activity), clashes: make(map[string]bool)}
}

func (s *fakeStore) CreateActivity(_ context.Context, a *itinerary.Activity) error {
	if s.clashes[a.Name] {
		return fmt.Errorf("%w: conflicts with %q", itinerary.ErrTimeBlockOverlap, "Museum")
	}
	a.ID = fmt.Sprintf("id-%d", len(s.byPlace)+1)
	s.byPlace[a.PlaceID] = a
	return nil
}

func (s *fakeStore) FindByPlaceID(_ context.Context, placeID string) (*itinerary.Activity, error) {
	return s.byPlace[placeID], nil
}

func TestImporter_Import(t *testing.T) {
	store := newFakeStore()
	store.clashes["Late dinner"] = true

	im := NewImporter(store, zerolog.Nop())
	im.Location = time.UTC
	trip := dateutil.DateRange{Start: june14, End: june18.AddDate(0, 0, -1)}
	ics := calendar(louvreTour, hotelStay, nightTrain, lateDinner, breakfast)

	report, err := im.Import(context.Background(), strings.NewReader(ics), trip)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	// Louvre plus three breakfasts.
	if len(report.Imported) != 4 {
		t.Fatalf("imported %d, want 4: %v", len(report.Imported), report.Imported)
	}
	reasons := make(map[string]int)
	for _, s := range report.Skipped {
		reasons[s.Reason]++
	}
	if reasons[SkipAllDay] != 1 || reasons[SkipMultiDay] != 1 || reasons[SkipOverlap] != 1 {
		t.Errorf("skip reasons = %v", reasons)
	}

	again, err := im.Import(context.Background(), strings.NewReader(ics), trip)
	if err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	if len(again.Imported) != 0 {
		t.Errorf("second import should find duplicates, imported %d", len(again.Imported))
	}
	dups := 0
	for _, s := range again.Skipped {
		if s.Reason == SkipDuplicate {
			dups++
		}
	}
	if dups != 4 {
		t.Errorf("duplicates = %d, want 4", dups)
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trip.ics" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(calendar(louvreTour)))
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), srv.Client(), srv.URL+"/trip.ics")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(string(body), "louvre-1") {
		t.Errorf("unexpected body: %q", body)
	}

	if _, err := Fetch(context.Background(), srv.Client(), srv.URL+"/missing.ics"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestFetch_RejectsOversizedFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunk := bytes.Repeat([]byte("X"), 1<<20)
		for range MaxFeedBytes>>20 + 1 {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	body, err := Fetch(context.Background(), srv.Client(), srv.URL)
	if !errors.Is(err, ErrFeedTooLarge) {
		t.Fatalf("Fetch = %d bytes, %v, want ErrFeedTooLarge", len(body), err)
	}
}
