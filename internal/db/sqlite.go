// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/itinerary"
)

// SQLite implements itinerary.Repository using SQLite.
type SQLite struct {
	db *sql.DB
}

var _ itinerary.Repository = (*SQLite)(nil)

const activityColumns = `
	id, name, place_id, types, rating, user_ratings_total, address, notes,
	scheduled_date, scheduled_start, scheduled_end, duration_minutes, source, created_at`

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection serializes transactions, so an overlap check and the
	// write that follows it cannot interleave with another writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// CreateActivity adds a new activity, generating an ID when empty.
// Returns ErrTimeBlockOverlap if a scheduled activity overlaps an existing one.
func (s *SQLite) CreateActivity(ctx context.Context, a *itinerary.Activity) error {
	if strings.TrimSpace(a.Name) == "" {
		return itinerary.ErrEmptyName
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if a.IsScheduled() {
		if err := s.checkOverlap(ctx, tx, *a.Date, a.Start, a.End, ""); err != nil {
			return err
		}
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.Source == "" {
		a.Source = itinerary.SourceManual
	}

	query := `
		INSERT INTO activities (` + activityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	date, start, end := scheduleArgs(a)
	_, err = tx.ExecContext(ctx, query,
		a.ID,
		a.Name,
		a.PlaceID,
		strings.Join(a.Types, ","),
		a.Rating,
		a.UserRatingsTotal,
		a.Address,
		a.Notes,
		date,
		start,
		end,
		a.DurationMinutes,
		a.Source,
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetActivity retrieves an activity by ID.
func (s *SQLite) GetActivity(ctx context.Context, id string) (*itinerary.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = ?`

	a, err := scanActivity(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	return a, nil
}

// FindByPlaceID returns the first activity with the given place ID, or nil.
func (s *SQLite) FindByPlaceID(ctx context.Context, placeID string) (*itinerary.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE place_id = ? ORDER BY created_at LIMIT 1`

	a, err := scanActivity(s.db.QueryRowContext(ctx, query, placeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	return a, nil
}

// ListActivitiesByDateRange returns all activities scheduled within the date range (inclusive).
func (s *SQLite) ListActivitiesByDateRange(ctx context.Context, start, end time.Time) ([]*itinerary.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE scheduled_date >= ? AND scheduled_date <= ?
		ORDER BY scheduled_date, scheduled_start, name
	`
	return s.query(ctx, query, start.Format(dateutil.Layout), end.Format(dateutil.Layout))
}

// ListWishlist returns unscheduled activities ordered by name.
func (s *SQLite) ListWishlist(ctx context.Context) ([]*itinerary.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE scheduled_date IS NULL
		ORDER BY name COLLATE NOCASE, created_at
	`
	return s.query(ctx, query)
}

// ListAllActivities returns scheduled activities in order, then the wishlist.
func (s *SQLite) ListAllActivities(ctx context.Context) ([]*itinerary.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		ORDER BY scheduled_date IS NULL, scheduled_date, scheduled_start, name COLLATE NOCASE
	`
	return s.query(ctx, query)
}

// SetActivityDateTime schedules an activity, or moves it if already scheduled.
// Returns ErrTimeBlockOverlap if the new slot overlaps another activity.
func (s *SQLite) SetActivityDateTime(ctx context.Context, id string, date time.Time, start, end string) (*itinerary.Activity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = ?`
	a, err := scanActivity(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", itinerary.ErrActivityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}

	if err := a.Schedule(date, start, end); err != nil {
		return nil, err
	}
	if err := s.checkOverlap(ctx, tx, *a.Date, a.Start, a.End, id); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE activities SET scheduled_date = ?, scheduled_start = ?, scheduled_end = ?, duration_minutes = ? WHERE id = ?`,
		a.Date.Format(dateutil.Layout), a.Start, a.End, a.DurationMinutes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating activity times: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return a, nil
}

// UnscheduleActivity moves an activity back to the wishlist, remembering
// its length.
func (s *SQLite) UnscheduleActivity(ctx context.Context, id string) error {
	a, err := s.GetActivity(ctx, id)
	if err != nil {
		return fmt.Errorf("getting activity: %w", err)
	}
	if a == nil {
		return fmt.Errorf("%w: %s", itinerary.ErrActivityNotFound, id)
	}
	a.Unschedule()

	query := `
		UPDATE activities
		SET scheduled_date = NULL, scheduled_start = NULL, scheduled_end = NULL, duration_minutes = ?
		WHERE id = ?
	`
	if _, err := s.db.ExecContext(ctx, query, a.DurationMinutes, id); err != nil {
		return fmt.Errorf("unscheduling activity: %w", err)
	}
	return nil
}

// DeleteActivity removes an activity.
func (s *SQLite) DeleteActivity(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", itinerary.ErrActivityNotFound, id)
	}
	return nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLite) query(ctx context.Context, query string, args ...any) ([]*itinerary.Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var activities []*itinerary.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}

	return activities, nil
}

func scanActivity(row rowScanner) (*itinerary.Activity, error) {
	var (
		a         itinerary.Activity
		types     string
		rating    sql.NullFloat64
		ratings   sql.NullInt64
		date      sql.NullString
		start     sql.NullString
		end       sql.NullString
		source    string
		createdAt string
	)

	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.PlaceID,
		&types,
		&rating,
		&ratings,
		&a.Address,
		&a.Notes,
		&date,
		&start,
		&end,
		&a.DurationMinutes,
		&source,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	a.Types = itinerary.ParseTypes(types)
	a.Source = itinerary.Source(source)

	if rating.Valid {
		a.Rating = &rating.Float64
	}
	if ratings.Valid {
		n := int(ratings.Int64)
		a.UserRatingsTotal = &n
	}

	if date.Valid {
		d, err := parseDate(date.String)
		if err != nil {
			return nil, fmt.Errorf("parsing scheduled date: %w", err)
		}
		a.Date = &d
		a.Start = start.String
		a.End = end.String
	}

	if a.CreatedAt, err = parseDate(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}

	return &a, nil
}

func scheduleArgs(a *itinerary.Activity) (date, start, end any) {
	if !a.IsScheduled() {
		return nil, nil, nil
	}
	return a.Date.Format(dateutil.Layout), a.Start, a.End
}

// parseDate parses a date string in various formats SQLite might return.
// Date-only values (midnight) are parsed in local timezone to match time.Now() behavior.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateutil.Layout, s, time.Local); err == nil {
		return t, nil
	}

	// SQLite returns DATE columns as "2006-01-02T00:00:00Z"; treat as local midnight.
	if len(s) == 20 && s[10] == 'T' && s[19] == 'Z' && s[11:19] == "00:00:00" {
		if t, err := time.ParseInLocation(dateutil.Layout, s[:10], time.Local); err == nil {
			return t, nil
		}
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}

// checkOverlap reports an existing activity on date whose time block overlaps
// [start, end). Two ranges overlap if start1 < end2 AND start2 < end1.
func (s *SQLite) checkOverlap(ctx context.Context, q queryer, date time.Time, start, end, excludeID string) error {
	query := `
		SELECT id, scheduled_start, scheduled_end, name
		FROM activities
		WHERE scheduled_date = ?
		  AND id != ?
		  AND scheduled_start < ?
		  AND scheduled_end > ?
		LIMIT 1
	`

	var (
		id         string
		existStart string
		existEnd   string
		name       string
	)

	err := q.QueryRowContext(ctx, query,
		date.Format(dateutil.Layout),
		excludeID,
		end,
		start,
	).Scan(&id, &existStart, &existEnd, &name)

	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking overlap: %w", err)
	}

	return fmt.Errorf("%w: conflicts with %q (%s-%s)",
		itinerary.ErrTimeBlockOverlap, name, existStart, existEnd)
}
