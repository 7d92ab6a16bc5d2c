package ui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/wayfare/internal/config"
	"github.com/javiermolinar/wayfare/internal/db"
	"github.com/javiermolinar/wayfare/internal/duration"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

var saturday = time.Date(2025, 6, 14, 0, 0, 0, 0, time.Local)

type testEnv struct {
	t    *testing.T
	repo *db.SQLite
	cfg  *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	DisableColor()

	repo, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	cfg := config.Default()
	cfg.Log.Level = "error"
	return &testEnv{t: t, repo: repo, cfg: cfg}
}

// run executes one command on a fresh App so flag values do not leak
// between invocations.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var out bytes.Buffer
	app := NewApp(e.repo, e.cfg)
	app.out = &out
	app.root.SetArgs(args)
	app.root.SetOut(&out)
	app.root.SetErr(&out)
	err := app.Execute()
	_ = app.Close()
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

func (e *testEnv) create(name, start, end string) *itinerary.Activity {
	e.t.Helper()
	a, err := itinerary.NewWishlistItem(name, nil)
	if err != nil {
		e.t.Fatal(err)
	}
	if start != "" {
		if err := a.Schedule(saturday, start, end); err != nil {
			e.t.Fatal(err)
		}
	}
	if err := e.repo.CreateActivity(context.Background(), a); err != nil {
		e.t.Fatalf("CreateActivity(%s) failed: %v", name, err)
	}
	return a
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("version")
	if !strings.Contains(out, "wayfare dev") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestAddAndList(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("add", "Louvre", "--types=museum", "--rating=4.7", "--reviews=250000")
	if !strings.Contains(out, "Added to wishlist") {
		t.Errorf("unexpected add output: %q", out)
	}

	out = env.mustRun("wishlist")
	if !strings.Contains(out, "Louvre") || !strings.Contains(out, "★4.7") {
		t.Errorf("wishlist missing Louvre: %q", out)
	}

	out = env.mustRun("add", "Lunch", "--types=restaurant", "--date=2025-06-14", "--start=12:00", "--end=13:00")
	if !strings.Contains(out, "Placed") || !strings.Contains(out, "2025-06-14 12:00-13:00") {
		t.Errorf("unexpected placed output: %q", out)
	}

	out = env.mustRun("list", "--start=2025-06-14")
	if !strings.Contains(out, "12:00-13:00") || !strings.Contains(out, "Lunch") {
		t.Errorf("list missing lunch: %q", out)
	}
	if strings.Contains(out, "Louvre") {
		t.Errorf("list should not show wishlist items: %q", out)
	}
}

func TestAdd_EstimatesLength(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("add", "Orsay", "--types=museum", "--date=2025-06-14", "--start=10:00")
	if !strings.Contains(out, "length estimated") {
		t.Errorf("expected estimate notice: %q", out)
	}
}

func TestAdd_EndWithoutStart(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.run("add", "Louvre", "--end=12:00"); err == nil {
		t.Error("expected error for --end without --start")
	}
}

func TestPlace_AdjustsToNearestFreeSlot(t *testing.T) {
	env := newTestEnv(t)
	env.create("Lunch", "12:00", "13:00")
	cafe := env.create("Cafe", "09:00", "10:00")

	out := env.mustRun("place", cafe.ID, "--date=2025-06-14", "--start=12:30")
	if !strings.Contains(out, "13:00-14:00") {
		t.Errorf("expected move to 13:00-14:00: %q", out)
	}
	if !strings.Contains(out, "was taken") {
		t.Errorf("expected adjusted notice: %q", out)
	}

	got, err := env.repo.GetActivity(context.Background(), cafe.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Start != "13:00" || got.End != "14:00" {
		t.Errorf("stored %s-%s, want 13:00-14:00", got.Start, got.End)
	}
}

func TestPlace_WishlistItemUsesRememberedLength(t *testing.T) {
	env := newTestEnv(t)
	tour := env.create("Walking tour", "", "")
	if _, err := env.repo.SetActivityDateTime(context.Background(), tour.ID, saturday, "09:00", "10:30"); err != nil {
		t.Fatal(err)
	}
	if err := env.repo.UnscheduleActivity(context.Background(), tour.ID); err != nil {
		t.Fatal(err)
	}

	out := env.mustRun("place", shortID(tour.ID), "--date=2025-06-14", "--start=15:00")
	if !strings.Contains(out, "15:00-16:30") {
		t.Errorf("expected 90 minute placement: %q", out)
	}
}

func TestMove_RejectsOverlap(t *testing.T) {
	env := newTestEnv(t)
	env.create("Lunch", "12:00", "13:00")
	museum := env.create("Museum", "09:00", "11:00")

	_, err := env.run("move", museum.ID, "--date=2025-06-14", "--start=11:30")
	if !errors.Is(err, itinerary.ErrTimeBlockOverlap) {
		t.Errorf("expected ErrTimeBlockOverlap, got %v", err)
	}

	out := env.mustRun("move", museum.ID, "--date=2025-06-14", "--start=13:00")
	if !strings.Contains(out, "13:00-15:00") {
		t.Errorf("expected length kept: %q", out)
	}
}

func TestMove_RejectsRunningPastMidnight(t *testing.T) {
	env := newTestEnv(t)
	show := env.create("Cabaret", "20:00", "21:00")

	_, err := env.run("move", show.ID, "--date=2025-06-14", "--start=23:30")
	if !errors.Is(err, timegrid.ErrOutsideDay) {
		t.Fatalf("expected ErrOutsideDay, got %v", err)
	}
	got, _ := env.repo.GetActivity(context.Background(), show.ID)
	if got.Start != "20:00" || got.End != "21:00" {
		t.Errorf("failed move changed the activity to %s-%s", got.Start, got.End)
	}

	out := env.mustRun("move", show.ID, "--date=2025-06-14", "--start=23:00")
	if !strings.Contains(out, "23:00-24:00") {
		t.Errorf("expected the full hour up to midnight: %q", out)
	}
}

func TestCheck_PastEndOfGrid(t *testing.T) {
	env := newTestEnv(t)
	museum := env.create("Museum", "09:00", "11:00")

	out := env.mustRun("check", museum.ID, "--date=2025-06-14", "--start=21:00")
	if !strings.Contains(out, "21:00-23:00") || !strings.Contains(out, "does not fit") {
		t.Errorf("expected an out of range report: %q", out)
	}
}

func TestCheck(t *testing.T) {
	env := newTestEnv(t)
	env.create("Lunch", "12:00", "13:00")
	museum := env.create("Museum", "09:00", "11:00")

	out := env.mustRun("check", museum.ID, "--date=2025-06-14", "--start=11:00")
	if !strings.Contains(out, "blocked") || !strings.Contains(out, "overlaps Lunch") {
		t.Errorf("expected blocking overlap with Lunch: %q", out)
	}

	out = env.mustRun("check", museum.ID, "--date=2025-06-14", "--start=14:00")
	if !strings.Contains(out, "no conflicts") {
		t.Errorf("expected no conflicts: %q", out)
	}

	got, _ := env.repo.GetActivity(context.Background(), museum.ID)
	if got.Start != "09:00" {
		t.Errorf("check must not move the activity, start = %s", got.Start)
	}
}

func TestCheck_BufferWarning(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Schedule.TravelBufferMinutes = 30
	env.create("Lunch", "12:00", "13:00")
	museum := env.create("Museum", "09:00", "11:00")

	out := env.mustRun("check", museum.ID, "--date=2025-06-14", "--start=13:00")
	if !strings.Contains(out, "allowed with warnings") || !strings.Contains(out, "too close to Lunch") {
		t.Errorf("expected buffer warning: %q", out)
	}
}

func TestUnscheduleAndRemove(t *testing.T) {
	env := newTestEnv(t)
	museum := env.create("Museum", "09:00", "11:00")

	out := env.mustRun("unschedule", museum.ID)
	if !strings.Contains(out, "back to the wishlist") {
		t.Errorf("unexpected output: %q", out)
	}
	out = env.mustRun("unschedule", museum.ID)
	if !strings.Contains(out, "already on the wishlist") {
		t.Errorf("unexpected output: %q", out)
	}

	env.mustRun("remove", museum.ID)
	got, err := env.repo.GetActivity(context.Background(), museum.ID)
	if err != nil || got != nil {
		t.Errorf("expected activity removed, got %v, %v", got, err)
	}

	if _, err := env.run("remove", museum.ID); !errors.Is(err, itinerary.ErrActivityNotFound) {
		t.Errorf("expected ErrActivityNotFound, got %v", err)
	}
}

func TestSlots(t *testing.T) {
	env := newTestEnv(t)
	env.create("Lunch", "12:00", "13:00")

	out := env.mustRun("slots", "--date=2025-06-14")
	if !strings.Contains(out, "12:00 PM  Lunch") || !strings.Contains(out, "12:30 PM  Lunch") {
		t.Errorf("expected lunch in both noon slots: %q", out)
	}
	if strings.Contains(out, "1:00 PM  Lunch") {
		t.Errorf("lunch ends at 13:00, slot should be free: %q", out)
	}

	out = env.mustRun("slots", "--date=2025-06-14", "--fits=60")
	if !strings.Contains(out, "11:00-12:00") || !strings.Contains(out, "13:00-14:00") {
		t.Errorf("expected adjacent starts to fit: %q", out)
	}
	if strings.Contains(out, "12:00-13:00") || strings.Contains(out, "11:30-12:30") {
		t.Errorf("overlapping starts listed: %q", out)
	}
}

func TestList_Copy(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Trip.Name = "Paris"
	env.create("Lunch", "12:00", "13:00")

	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	defer func() { copyToClipboard = orig }()

	out := env.mustRun("list", "--start=2025-06-14", "--copy")
	if !strings.Contains(out, "copied") {
		t.Errorf("expected copy confirmation: %q", out)
	}
	want := "Paris\n\nSat Jun 14\n  12:00-13:00 Lunch\n"
	if copied != want {
		t.Errorf("copied %q, want %q", copied, want)
	}
}

func TestList_DefaultsToTrip(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Trip.StartDate = "2025-06-13"
	env.cfg.Trip.EndDate = "2025-06-15"
	env.create("Lunch", "12:00", "13:00")

	out := env.mustRun("list")
	if !strings.Contains(out, "Lunch") {
		t.Errorf("expected trip range listing: %q", out)
	}
}

func TestEstimate(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("estimate", "Louvre", "--types=museum", "--date=2025-06-14")
	want := duration.EstimateDuration(
		duration.Place{Name: "Louvre", Types: []string{"museum"}},
		duration.Context{IsWeekend: true},
	)
	if !strings.Contains(out, FormatDuration(want.Minutes)) || !strings.Contains(out, string(want.Category)) {
		t.Errorf("output %q does not match %+v", out, want)
	}

	if _, err := env.run("estimate"); err == nil {
		t.Error("expected error without a name or --id")
	}
}

func TestImport(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "trip.ics")
	ics := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//wayfare//test//EN",
		"BEGIN:VEVENT",
		"UID:tour-1",
		"SUMMARY:Catacombs tour",
		"DTSTART:20250614T120000Z",
		"DTEND:20250614T130000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n") + "\r\n"
	if err := os.WriteFile(path, []byte(ics), 0o644); err != nil {
		t.Fatal(err)
	}

	out := env.mustRun("import", path, "--start=2025-06-13", "--end=2025-06-15")
	if !strings.Contains(out, "Imported 1 events, skipped 0") {
		t.Errorf("unexpected output: %q", out)
	}

	out = env.mustRun("import", path, "--start=2025-06-13", "--end=2025-06-15")
	if !strings.Contains(out, "Imported 0 events, skipped 1") || !strings.Contains(out, "already imported") {
		t.Errorf("expected duplicate skip: %q", out)
	}
}

func TestImport_NeedsRange(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.run("import", "trip.ics"); err == nil {
		t.Error("expected error without a trip or range")
	}
	if _, err := env.run("import"); err == nil {
		t.Error("expected error without a file or --url")
	}
}

func TestFindActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, id := range []string{"abcd1111", "abcd2222"} {
		a, _ := itinerary.NewWishlistItem("Place "+id, nil)
		a.ID = id
		if err := env.repo.CreateActivity(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"abcd1111", "abcd1111", false},
		{"abcd2", "abcd2222", false},
		{"abcd", "", true},
		{"ab", "", true},
		{"ffff", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			a, err := findActivity(ctx, env.repo, tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", a)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.ID != tt.want {
				t.Errorf("got %s, want %s", a.ID, tt.want)
			}
		})
	}
}
