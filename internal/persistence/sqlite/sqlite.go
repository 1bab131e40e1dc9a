// Package sqlite persists the event collection in a structured on-device
// database keyed by event id, with secondary indices on start and end.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/example/pocket-calendar/internal/calendar"
	"github.com/example/pocket-calendar/internal/persistence"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps the SQLite database handle.
type Store struct {
	db *sql.DB
}

// Open connects to the database identified by the DSN.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// modernc's driver serializes writers; a single connection avoids
	// SQLITE_BUSY under the store's synchronous mutation model.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: load migrations: %w", err)
	}

	driver, err := sqlitemigrate.WithInstance(s.db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("sqlite: migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("sqlite: migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sqlite: apply migrations: %w", err)
	}
	return nil
}

// Save replaces the stored collection with the supplied one inside a single
// transaction.
func (s *Store) Save(ctx context.Context, events []calendar.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("sqlite: clear events: %w", err)
	}

	const insert = `INSERT INTO events
		(id, title, description, location, category, start_at, end_at, all_day, color, recurrence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, event := range events {
		rec := persistence.FromEvent(event)

		var recurrence sql.NullString
		if rec.Recurrence != nil {
			data, err := json.Marshal(rec.Recurrence)
			if err != nil {
				return fmt.Errorf("sqlite: encode recurrence for %s: %w", rec.ID, err)
			}
			recurrence = sql.NullString{String: string(data), Valid: true}
		}

		_, err := tx.ExecContext(ctx, insert,
			rec.ID,
			rec.Title,
			rec.Description,
			rec.Location,
			rec.Category,
			rec.Start.Format(time.RFC3339Nano),
			rec.End.Format(time.RFC3339Nano),
			boolToInt(rec.AllDay),
			rec.Color,
			recurrence,
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert event %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Load restores the stored collection ordered by start instant.
func (s *Store) Load(ctx context.Context) ([]calendar.Event, error) {
	const query = `SELECT id, title, description, location, category,
		start_at, end_at, all_day, color, recurrence
		FROM events ORDER BY start_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query events: %w", err)
	}
	defer rows.Close()

	var events []calendar.Event
	for rows.Next() {
		var (
			rec        persistence.Record
			startAt    string
			endAt      string
			allDay     int
			recurrence sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Location, &rec.Category,
			&startAt, &endAt, &allDay, &rec.Color, &recurrence); err != nil {
			return nil, fmt.Errorf("sqlite: scan event: %w", err)
		}

		rec.Start, err = time.Parse(time.RFC3339Nano, startAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse start for %s: %w", rec.ID, err)
		}
		rec.End, err = time.Parse(time.RFC3339Nano, endAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse end for %s: %w", rec.ID, err)
		}
		rec.AllDay = allDay != 0

		if recurrence.Valid {
			var rule persistence.RuleRecord
			if err := json.Unmarshal([]byte(recurrence.String), &rule); err != nil {
				return nil, fmt.Errorf("sqlite: decode recurrence for %s: %w", rec.ID, err)
			}
			rec.Recurrence = &rule
		}

		events = append(events, rec.ToEvent())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate events: %w", err)
	}

	return events, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
