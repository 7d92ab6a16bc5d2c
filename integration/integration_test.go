package integration

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/wayfare/internal/conflict"
	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/db"
	"github.com/javiermolinar/wayfare/internal/ics"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/placement"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

var grid = timegrid.Config{IntervalMinutes: 30, StartHour: 8, EndHour: 22}

const bookings = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//wayfare//integration//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:louvre-1\r\n" +
	"SUMMARY:Louvre guided tour\r\n" +
	"LOCATION:Rue de Rivoli\r\n" +
	"DTSTART:20250614T100000Z\r\n" +
	"DTEND:20250614T120000Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:hotel-1\r\n" +
	"SUMMARY:Hotel\r\n" +
	"DTSTART;VALUE=DATE:20250614\r\n" +
	"DTEND;VALUE=DATE:20250616\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

// openRepo creates a fresh repository for each test with automatic cleanup.
func openRepo(t *testing.T) *db.SQLite {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// createActivity is a helper to create and insert a scheduled activity.
func createActivity(t *testing.T, repo *db.SQLite, name, date, start, end string) *itinerary.Activity {
	t.Helper()
	a, err := itinerary.New(name, date, start, end, nil)
	if err != nil {
		t.Fatalf("failed to create activity: %v", err)
	}
	if err := repo.CreateActivity(context.Background(), a); err != nil {
		t.Fatalf("failed to insert activity: %v", err)
	}
	return a
}

func loadOrchestrator(t *testing.T, repo *db.SQLite) *placement.Orchestrator {
	t.Helper()
	acts, err := repo.ListAllActivities(context.Background())
	if err != nil {
		t.Fatalf("ListAllActivities failed: %v", err)
	}
	o := placement.New(repo, placement.Options{Grid: &grid})
	o.Load(acts)
	return o
}

func TestImportThenPlaceAroundBooking(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	dates, err := dateutil.NewDateRange("2025-06-14", "2025-06-16")
	if err != nil {
		t.Fatal(err)
	}
	im := ics.NewImporter(repo, zerolog.Nop())
	im.Location = time.UTC

	report, err := im.Import(ctx, strings.NewReader(bookings), *dates)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(report.Imported) != 1 || len(report.Skipped) != 1 {
		t.Fatalf("imported %d, skipped %d; want 1 and 1", len(report.Imported), len(report.Skipped))
	}
	if report.Skipped[0].Reason != ics.SkipAllDay {
		t.Errorf("skip reason = %q, want %q", report.Skipped[0].Reason, ics.SkipAllDay)
	}

	o := loadOrchestrator(t, repo)
	saturday := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	w, err := o.Add(&itinerary.Activity{Name: "Crêpes", Types: []string{"cafe"}, DurationMinutes: 60}, saturday, "11:00")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !w.Decision.Adjusted || w.Decision.Placement.Start != "12:00" {
		t.Errorf("placement = %+v, want adjusted to 12:00", w.Decision.Placement)
	}
	if err := o.Persist(ctx, w); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	stored := w.Stored()
	got, err := repo.GetActivity(ctx, stored.ID)
	if err != nil || got == nil {
		t.Fatalf("GetActivity = %v, %v", got, err)
	}
	if got.Start != "12:00" || got.End != "13:00" {
		t.Errorf("stored = %s-%s, want 12:00-13:00", got.Start, got.End)
	}

	// Nothing stored overlaps anything else.
	acts, err := repo.ListActivitiesByDateRange(ctx, dates.Start, dates.End)
	if err != nil {
		t.Fatal(err)
	}
	placements := itinerary.Placements(acts)
	for _, p := range placements {
		conflicts, err := conflict.Detect(p, placements, conflict.Options{ExcludeID: p.ID})
		if err != nil {
			t.Fatal(err)
		}
		if conflict.Blocking(conflicts) {
			t.Errorf("%s overlaps: %v", p.ID, conflicts)
		}
	}

	// Importing again finds the booking already there.
	report, err = im.Import(ctx, strings.NewReader(bookings), *dates)
	if err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	if len(report.Imported) != 0 || len(report.Skipped) != 2 {
		t.Errorf("reimport imported %d, skipped %d; want 0 and 2", len(report.Imported), len(report.Skipped))
	}
}

func TestDrops_LastWriterWins(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	louvre := createActivity(t, repo, "Louvre", "2025-06-14", "10:00", "12:00")

	o := loadOrchestrator(t, repo)
	day := *louvre.Date

	first, err := o.Drop(placement.Target{ActivityID: louvre.ID, Date: day, Start: "14:00"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := o.Drop(placement.Target{ActivityID: louvre.ID, Date: day, Start: "16:00"})
	if err != nil {
		t.Fatal(err)
	}

	if err := o.Persist(ctx, first); !errors.Is(err, placement.ErrSuperseded) {
		t.Errorf("first Persist = %v, want ErrSuperseded", err)
	}
	if err := o.Persist(ctx, second); err != nil {
		t.Fatalf("second Persist failed: %v", err)
	}

	got, err := repo.GetActivity(ctx, louvre.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Start != "16:00" || got.End != "18:00" {
		t.Errorf("stored = %s-%s, want 16:00-18:00", got.Start, got.End)
	}
	if first.State() != placement.StateSuperseded || second.State() != placement.StateCommitted {
		t.Errorf("states = %s, %s", first.State(), second.State())
	}
}

func TestDrop_RollsBackOnStoreOverlap(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	louvre := createActivity(t, repo, "Louvre", "2025-06-14", "10:00", "12:00")

	o := loadOrchestrator(t, repo)

	// Booked by another process after the board loaded.
	createActivity(t, repo, "Boat", "2025-06-14", "15:00", "16:00")

	w, err := o.Drop(placement.Target{ActivityID: louvre.ID, Date: *louvre.Date, Start: "15:00"})
	if err != nil {
		t.Fatal(err)
	}
	err = o.Persist(ctx, w)
	if !errors.Is(err, itinerary.ErrTimeBlockOverlap) {
		t.Fatalf("Persist = %v, want ErrTimeBlockOverlap", err)
	}

	local, _ := o.Activity(louvre.ID)
	if local.Start != "10:00" {
		t.Errorf("local start = %s, want rollback to 10:00", local.Start)
	}
	stored, _ := repo.GetActivity(ctx, louvre.ID)
	if stored.Start != "10:00" {
		t.Errorf("stored start = %s, want 10:00", stored.Start)
	}
}

func TestScheduledDateSurvivesRoundTrip(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	now := time.Now()
	today := dateutil.TruncateToDay(now)
	a := createActivity(t, repo, "Today", today.Format(dateutil.Layout), "10:00", "11:00")

	acts, err := repo.ListActivitiesByDateRange(ctx, today, today)
	if err != nil {
		t.Fatalf("ListActivitiesByDateRange failed: %v", err)
	}
	if len(acts) != 1 || acts[0].ID != a.ID {
		t.Fatalf("got %v, want today's activity", acts)
	}
	if !dateutil.SameDay(*acts[0].Date, now) {
		t.Errorf("stored date %v is not today (%v)", acts[0].Date, now)
	}
}
