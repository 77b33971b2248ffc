package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migrations holds the schema in version order. Each entry runs once inside
// its own transaction and is recorded in schema_migrations.
var migrations = []string{
	// 1: initial schema.
	`
	CREATE TABLE profiles (
		user_id        TEXT PRIMARY KEY,
		display_name   TEXT NOT NULL,
		main_email     TEXT NOT NULL,
		tee_shirt_size TEXT NOT NULL DEFAULT 'NOT_SPECIFIED',
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	);

	CREATE TABLE profile_attendance (
		user_id        TEXT    NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
		position       INTEGER NOT NULL,
		conference_key TEXT    NOT NULL,
		PRIMARY KEY (user_id, position)
	);

	CREATE TABLE profile_wishlist (
		user_id     TEXT    NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		session_key TEXT    NOT NULL,
		PRIMARY KEY (user_id, position)
	);

	CREATE TABLE conferences (
		organizer_id     TEXT    NOT NULL,
		local_id         INTEGER NOT NULL,
		name             TEXT    NOT NULL,
		description      TEXT    NOT NULL DEFAULT '',
		city             TEXT    NOT NULL DEFAULT '',
		month            INTEGER NOT NULL DEFAULT 0,
		start_date       TEXT    NOT NULL DEFAULT '',
		end_date         TEXT    NOT NULL DEFAULT '',
		max_attendees    INTEGER NOT NULL DEFAULT 0,
		seats_available  INTEGER NOT NULL DEFAULT 0 CHECK (seats_available >= 0),
		featured_speaker TEXT    NOT NULL DEFAULT '',
		created_at       TEXT    NOT NULL,
		updated_at       TEXT    NOT NULL,
		PRIMARY KEY (organizer_id, local_id)
	);

	CREATE TABLE conference_topics (
		organizer_id TEXT    NOT NULL,
		local_id     INTEGER NOT NULL,
		position     INTEGER NOT NULL,
		topic        TEXT    NOT NULL,
		PRIMARY KEY (organizer_id, local_id, position),
		FOREIGN KEY (organizer_id, local_id)
			REFERENCES conferences(organizer_id, local_id) ON DELETE CASCADE
	);

	CREATE TABLE sessions (
		organizer_id        TEXT    NOT NULL,
		conference_local_id INTEGER NOT NULL,
		local_id            INTEGER NOT NULL,
		name                TEXT    NOT NULL,
		speaker_user_id     TEXT    NOT NULL,
		duration            INTEGER NOT NULL DEFAULT 0,
		session_type        TEXT    NOT NULL DEFAULT 'NOT_SPECIFIED',
		session_date        TEXT    NOT NULL DEFAULT '',
		start_time          TEXT    NOT NULL DEFAULT '',
		created_at          TEXT    NOT NULL,
		updated_at          TEXT    NOT NULL,
		PRIMARY KEY (organizer_id, conference_local_id, local_id),
		FOREIGN KEY (organizer_id, conference_local_id)
			REFERENCES conferences(organizer_id, local_id) ON DELETE CASCADE
	);

	CREATE TABLE session_highlights (
		organizer_id        TEXT    NOT NULL,
		conference_local_id INTEGER NOT NULL,
		session_local_id    INTEGER NOT NULL,
		position            INTEGER NOT NULL,
		highlight           TEXT    NOT NULL,
		PRIMARY KEY (organizer_id, conference_local_id, session_local_id, position),
		FOREIGN KEY (organizer_id, conference_local_id, session_local_id)
			REFERENCES sessions(organizer_id, conference_local_id, local_id) ON DELETE CASCADE
	);

	CREATE INDEX idx_conferences_city ON conferences(city);
	CREATE INDEX idx_conferences_seats ON conferences(seats_available);
	CREATE INDEX idx_sessions_speaker ON sessions(speaker_user_id);
	`,
}

// Migrate applies all pending schema migrations.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	_, err := cp.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	err = cp.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for version := current + 1; version <= len(migrations); version++ {
		ddl := migrations[version-1]
		err := cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(ddl); err != nil {
				return fmt.Errorf("migration %d failed: %w", version, err)
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
				version, time.Now().UTC().Format(time.RFC3339))
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}
