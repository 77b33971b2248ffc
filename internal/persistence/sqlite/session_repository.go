package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/example/conference-central/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

const sessionColumns = `organizer_id, conference_local_id, local_id, name,
	speaker_user_id, duration, session_type, session_date, start_time,
	created_at, updated_at`

// CreateSession allocates the next child ID under the conference, inserts the
// session with its highlights, and records the featured speaker when one is
// given. The whole unit is one transaction; a vanished conference aborts it
// with ErrNotFound.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session, featuredSpeaker string) (persistence.Session, error) {
	key := session.Key.Conference
	if key.OrganizerID == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			var exists int
			err := tx.QueryRow(
				"SELECT COUNT(*) FROM conferences WHERE organizer_id = ? AND local_id = ?",
				key.OrganizerID, key.LocalID).Scan(&exists)
			if err != nil {
				return err
			}
			if exists == 0 {
				return persistence.ErrNotFound
			}

			var nextID int64
			err = tx.QueryRow(`
				SELECT COALESCE(MAX(local_id), 0) + 1 FROM sessions
				WHERE organizer_id = ? AND conference_local_id = ?
			`, key.OrganizerID, key.LocalID).Scan(&nextID)
			if err != nil {
				return err
			}
			session.Key.LocalID = nextID

			_, err = tx.Exec(`
				INSERT INTO sessions (`+sessionColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				key.OrganizerID,
				key.LocalID,
				session.Key.LocalID,
				session.Name,
				session.SpeakerUserID,
				session.Duration,
				session.Type,
				formatTime(session.Date),
				session.StartTime,
				formatTime(session.CreatedAt),
				formatTime(session.UpdatedAt),
			)
			if err != nil {
				return err
			}

			for position, highlight := range session.Highlights {
				_, err := tx.Exec(`
					INSERT INTO session_highlights (organizer_id, conference_local_id, session_local_id, position, highlight)
					VALUES (?, ?, ?, ?, ?)
				`, key.OrganizerID, key.LocalID, session.Key.LocalID, position, highlight)
				if err != nil {
					return err
				}
			}

			if featuredSpeaker != "" {
				_, err := tx.Exec(`
					UPDATE conferences SET featured_speaker = ?
					WHERE organizer_id = ? AND local_id = ?
				`, featuredSpeaker, key.OrganizerID, key.LocalID)
				if err != nil {
					return err
				}
			}

			return nil
		})
	})
	if err != nil {
		return persistence.Session{}, err
	}

	return session, nil
}

// GetSession retrieves a session by key.
func (r *SessionRepository) GetSession(ctx context.Context, key persistence.SessionKey) (persistence.Session, error) {
	query := "SELECT " + sessionColumns + ` FROM sessions
		WHERE organizer_id = ? AND conference_local_id = ? AND local_id = ?`

	session, err := scanSession(r.helper.QueryRow(ctx, query,
		key.Conference.OrganizerID, key.Conference.LocalID, key.LocalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, r.mapper.MapError(err)
	}

	if session.Highlights, err = r.loadHighlights(ctx, key); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// GetSessions resolves the given keys, skipping keys that no longer resolve.
// Result order follows the key order.
func (r *SessionRepository) GetSessions(ctx context.Context, keys []persistence.SessionKey) ([]persistence.Session, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	predicates := make([]string, 0, len(keys))
	args := make([]any, 0, 3*len(keys))
	for _, key := range keys {
		predicates = append(predicates, "(organizer_id = ? AND conference_local_id = ? AND local_id = ?)")
		args = append(args, key.Conference.OrganizerID, key.Conference.LocalID, key.LocalID)
	}

	query := "SELECT " + sessionColumns + " FROM sessions WHERE " + strings.Join(predicates, " OR ")
	sessions, err := r.querySessions(ctx, query, args)
	if err != nil {
		return nil, err
	}

	byKey := make(map[persistence.SessionKey]persistence.Session, len(sessions))
	for _, session := range sessions {
		byKey[session.Key] = session
	}

	ordered := make([]persistence.Session, 0, len(keys))
	for _, key := range keys {
		if session, ok := byKey[key]; ok {
			ordered = append(ordered, session)
		}
	}
	return ordered, nil
}

// ListConferenceSessions returns a conference's sessions in creation order.
func (r *SessionRepository) ListConferenceSessions(ctx context.Context, key persistence.ConferenceKey) ([]persistence.Session, error) {
	query := "SELECT " + sessionColumns + ` FROM sessions
		WHERE organizer_id = ? AND conference_local_id = ?
		ORDER BY local_id ASC`
	return r.querySessions(ctx, query, []any{key.OrganizerID, key.LocalID})
}

// ListSessionsBySpeaker returns all sessions by one speaker across
// conferences.
func (r *SessionRepository) ListSessionsBySpeaker(ctx context.Context, speakerUserID string) ([]persistence.Session, error) {
	query := "SELECT " + sessionColumns + ` FROM sessions
		WHERE speaker_user_id = ?
		ORDER BY organizer_id ASC, conference_local_id ASC, local_id ASC`
	return r.querySessions(ctx, query, []any{speakerUserID})
}

func (r *SessionRepository) querySessions(ctx context.Context, query string, args []any) ([]persistence.Session, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var sessions []persistence.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	for i := range sessions {
		if sessions[i].Highlights, err = r.loadHighlights(ctx, sessions[i].Key); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (r *SessionRepository) loadHighlights(ctx context.Context, key persistence.SessionKey) ([]string, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT highlight FROM session_highlights
		WHERE organizer_id = ? AND conference_local_id = ? AND session_local_id = ?
		ORDER BY position ASC
	`, key.Conference.OrganizerID, key.Conference.LocalID, key.LocalID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var highlights []string
	for rows.Next() {
		var highlight string
		if err := rows.Scan(&highlight); err != nil {
			return nil, r.mapper.MapError(err)
		}
		highlights = append(highlights, highlight)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return highlights, nil
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var session persistence.Session
	var dateStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&session.Key.Conference.OrganizerID,
		&session.Key.Conference.LocalID,
		&session.Key.LocalID,
		&session.Name,
		&session.SpeakerUserID,
		&session.Duration,
		&session.Type,
		&dateStr,
		&session.StartTime,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Session{}, err
	}

	if session.Date, err = parseTime(dateStr); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Session{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}
