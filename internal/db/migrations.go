package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS activities (
			id                 TEXT PRIMARY KEY,
			name               TEXT NOT NULL,
			place_id           TEXT NOT NULL DEFAULT '',
			types              TEXT NOT NULL DEFAULT '',
			rating             REAL,
			user_ratings_total INTEGER,
			address            TEXT NOT NULL DEFAULT '',
			notes              TEXT NOT NULL DEFAULT '',
			scheduled_date     DATE,
			scheduled_start    TIME,
			scheduled_end      TIME,
			duration_minutes   INTEGER NOT NULL DEFAULT 0,
			source             TEXT NOT NULL DEFAULT 'manual' CHECK(source IN ('manual', 'calendar')),
			created_at         DATETIME DEFAULT CURRENT_TIMESTAMP,
			CHECK ((scheduled_date IS NULL) = (scheduled_start IS NULL)),
			CHECK ((scheduled_start IS NULL) = (scheduled_end IS NULL))
		);

		CREATE INDEX IF NOT EXISTS idx_activities_scheduled ON activities(scheduled_date, scheduled_start);
		CREATE INDEX IF NOT EXISTS idx_activities_place ON activities(place_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating activities table: %w", err)
	}

	return nil
}
