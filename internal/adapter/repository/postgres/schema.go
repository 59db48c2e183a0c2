package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS screenings (
		id         TEXT PRIMARY KEY,
		starts_at  TIMESTAMPTZ,
		status     TEXT NOT NULL DEFAULT 'SCHEDULED'
	)`,
	`CREATE TABLE IF NOT EXISTS screening_seats (
		screening_id TEXT NOT NULL REFERENCES screenings(id),
		seat_id      TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'AVAILABLE',
		version      INT NOT NULL DEFAULT 0,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (screening_id, seat_id)
	)`,
	`CREATE TABLE IF NOT EXISTS holds (
		id           UUID PRIMARY KEY,
		screening_id TEXT NOT NULL REFERENCES screenings(id),
		holder_id    TEXT NOT NULL,
		seat_ids     TEXT[] NOT NULL,
		status       TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		expires_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_holds_active ON holds (screening_id, expires_at) WHERE status = 'ACTIVE'`,
}

// Migrate creates the tables the store needs when they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
