package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/conference-central/internal/persistence"
)

// ConferenceRepository implements persistence.ConferenceRepository using
// SQLite. The Mutate* methods run their read-modify-write units inside a
// single transaction and retry on lock contention.
type ConferenceRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewConferenceRepository creates a new SQLite conference repository.
func NewConferenceRepository(pool *ConnectionPool) *ConferenceRepository {
	return &ConferenceRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

const conferenceColumns = `organizer_id, local_id, name, description, city, month,
	start_date, end_date, max_attendees, seats_available, featured_speaker,
	created_at, updated_at`

// CreateConference allocates the next child ID under the organizer and
// inserts the conference with its topics.
func (r *ConferenceRepository) CreateConference(ctx context.Context, conference persistence.Conference) (persistence.Conference, error) {
	if conference.Key.OrganizerID == "" {
		return persistence.Conference{}, persistence.ErrConstraintViolation
	}

	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			var nextID int64
			err := tx.QueryRow(
				"SELECT COALESCE(MAX(local_id), 0) + 1 FROM conferences WHERE organizer_id = ?",
				conference.Key.OrganizerID).Scan(&nextID)
			if err != nil {
				return err
			}
			conference.Key.LocalID = nextID

			_, err = tx.Exec(`
				INSERT INTO conferences (`+conferenceColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				conference.Key.OrganizerID,
				conference.Key.LocalID,
				conference.Name,
				conference.Description,
				conference.City,
				conference.Month,
				formatTime(conference.StartDate),
				formatTime(conference.EndDate),
				conference.MaxAttendees,
				conference.SeatsAvailable,
				conference.FeaturedSpeaker,
				formatTime(conference.CreatedAt),
				formatTime(conference.UpdatedAt),
			)
			if err != nil {
				return err
			}

			return rewriteTopicsTx(tx, conference.Key, conference.Topics)
		})
	})
	if err != nil {
		return persistence.Conference{}, err
	}

	return conference, nil
}

// GetConference retrieves a conference by key.
func (r *ConferenceRepository) GetConference(ctx context.Context, key persistence.ConferenceKey) (persistence.Conference, error) {
	query := "SELECT " + conferenceColumns + " FROM conferences WHERE organizer_id = ? AND local_id = ?"

	conference, err := scanConference(r.helper.QueryRow(ctx, query, key.OrganizerID, key.LocalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Conference{}, persistence.ErrNotFound
		}
		return persistence.Conference{}, r.mapper.MapError(err)
	}

	if err := r.attachChildren(ctx, &conference); err != nil {
		return persistence.Conference{}, err
	}
	return conference, nil
}

// GetConferences resolves the given keys, skipping keys that no longer
// resolve. Result order follows the key order.
func (r *ConferenceRepository) GetConferences(ctx context.Context, keys []persistence.ConferenceKey) ([]persistence.Conference, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	predicates := make([]string, 0, len(keys))
	args := make([]any, 0, 2*len(keys))
	for _, key := range keys {
		predicates = append(predicates, "(organizer_id = ? AND local_id = ?)")
		args = append(args, key.OrganizerID, key.LocalID)
	}

	query := "SELECT " + conferenceColumns + " FROM conferences WHERE " + strings.Join(predicates, " OR ")
	conferences, err := r.queryConferences(ctx, query, args)
	if err != nil {
		return nil, err
	}

	byKey := make(map[persistence.ConferenceKey]persistence.Conference, len(conferences))
	for _, conference := range conferences {
		byKey[conference.Key] = conference
	}

	ordered := make([]persistence.Conference, 0, len(keys))
	for _, key := range keys {
		if conference, ok := byKey[key]; ok {
			ordered = append(ordered, conference)
		}
	}
	return ordered, nil
}

// ListConferencesByOrganizer returns the organizer's conferences in creation
// order.
func (r *ConferenceRepository) ListConferencesByOrganizer(ctx context.Context, organizerID string) ([]persistence.Conference, error) {
	query := "SELECT " + conferenceColumns + " FROM conferences WHERE organizer_id = ? ORDER BY local_id ASC"
	return r.queryConferences(ctx, query, []any{organizerID})
}

// QueryConferences executes a compiled query plan.
func (r *ConferenceRepository) QueryConferences(ctx context.Context, plan persistence.ConferenceQuery) ([]persistence.Conference, error) {
	query, args, err := buildConferenceQuery(plan)
	if err != nil {
		return nil, err
	}
	return r.queryConferences(ctx, query, args)
}

// ListAlmostSoldOut returns conferences with 0 < seatsAvailable <= maxSeats
// ordered by name.
func (r *ConferenceRepository) ListAlmostSoldOut(ctx context.Context, maxSeats int) ([]persistence.Conference, error) {
	query := "SELECT " + conferenceColumns + ` FROM conferences
		WHERE seats_available > 0 AND seats_available <= ?
		ORDER BY name ASC, organizer_id ASC, local_id ASC`
	return r.queryConferences(ctx, query, []any{maxSeats})
}

// MutateConference runs a read-modify-write unit against one conference.
func (r *ConferenceRepository) MutateConference(ctx context.Context, key persistence.ConferenceKey, fn func(*persistence.Conference) error) (persistence.Conference, error) {
	var result persistence.Conference

	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			conference, err := getConferenceTx(tx, key)
			if err != nil {
				return err
			}
			if err := fn(&conference); err != nil {
				return err
			}
			if err := updateConferenceTx(tx, conference); err != nil {
				return err
			}
			result = conference
			return nil
		})
	})
	if err != nil {
		return persistence.Conference{}, err
	}
	return result, nil
}

// MutateRegistration runs a read-modify-write unit against a profile and a
// conference together.
func (r *ConferenceRepository) MutateRegistration(ctx context.Context, userID string, key persistence.ConferenceKey, fn func(*persistence.Profile, *persistence.Conference) error) (persistence.Profile, persistence.Conference, error) {
	var resultProfile persistence.Profile
	var resultConference persistence.Conference

	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			profile, err := getProfileTx(tx, userID)
			if err != nil {
				return err
			}
			conference, err := getConferenceTx(tx, key)
			if err != nil {
				return err
			}
			if err := fn(&profile, &conference); err != nil {
				return err
			}
			if err := saveProfileTx(tx, profile); err != nil {
				return err
			}
			if err := updateConferenceTx(tx, conference); err != nil {
				return err
			}
			resultProfile = profile
			resultConference = conference
			return nil
		})
	})
	if err != nil {
		return persistence.Profile{}, persistence.Conference{}, err
	}
	return resultProfile, resultConference, nil
}

// queryConferences runs a conference select and attaches topics and session
// IDs to every row.
func (r *ConferenceRepository) queryConferences(ctx context.Context, query string, args []any) ([]persistence.Conference, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var conferences []persistence.Conference
	for rows.Next() {
		conference, err := scanConference(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		conferences = append(conferences, conference)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	for i := range conferences {
		if err := r.attachChildren(ctx, &conferences[i]); err != nil {
			return nil, err
		}
	}
	return conferences, nil
}

func (r *ConferenceRepository) attachChildren(ctx context.Context, conference *persistence.Conference) error {
	topics, err := r.loadTopics(ctx, conference.Key)
	if err != nil {
		return err
	}
	conference.Topics = topics

	sessionIDs, err := r.loadSessionIDs(ctx, conference.Key)
	if err != nil {
		return err
	}
	conference.SessionIDs = sessionIDs
	return nil
}

func (r *ConferenceRepository) loadTopics(ctx context.Context, key persistence.ConferenceKey) ([]string, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT topic FROM conference_topics
		WHERE organizer_id = ? AND local_id = ?
		ORDER BY position ASC
	`, key.OrganizerID, key.LocalID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, r.mapper.MapError(err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return topics, nil
}

func (r *ConferenceRepository) loadSessionIDs(ctx context.Context, key persistence.ConferenceKey) ([]string, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT local_id FROM sessions
		WHERE organizer_id = ? AND conference_local_id = ?
		ORDER BY local_id ASC
	`, key.OrganizerID, key.LocalID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var sessionIDs []string
	for rows.Next() {
		var localID int64
		if err := rows.Scan(&localID); err != nil {
			return nil, r.mapper.MapError(err)
		}
		sessionKey := persistence.SessionKey{Conference: key, LocalID: localID}
		sessionIDs = append(sessionIDs, sessionKey.Encode())
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return sessionIDs, nil
}

func scanConference(row rowScanner) (persistence.Conference, error) {
	var conference persistence.Conference
	var startDateStr, endDateStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&conference.Key.OrganizerID,
		&conference.Key.LocalID,
		&conference.Name,
		&conference.Description,
		&conference.City,
		&conference.Month,
		&startDateStr,
		&endDateStr,
		&conference.MaxAttendees,
		&conference.SeatsAvailable,
		&conference.FeaturedSpeaker,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Conference{}, err
	}

	if conference.StartDate, err = parseTime(startDateStr); err != nil {
		return persistence.Conference{}, err
	}
	if conference.EndDate, err = parseTime(endDateStr); err != nil {
		return persistence.Conference{}, err
	}
	if conference.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Conference{}, err
	}
	if conference.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Conference{}, err
	}
	return conference, nil
}

// getConferenceTx loads a conference with its topics and session IDs within
// an open transaction, so records returned from mutation units are complete.
func getConferenceTx(tx *sql.Tx, key persistence.ConferenceKey) (persistence.Conference, error) {
	query := "SELECT " + conferenceColumns + " FROM conferences WHERE organizer_id = ? AND local_id = ?"
	conference, err := scanConference(tx.QueryRow(query, key.OrganizerID, key.LocalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Conference{}, persistence.ErrNotFound
		}
		return persistence.Conference{}, err
	}

	if conference.Topics, err = loadTopicsTx(tx, key); err != nil {
		return persistence.Conference{}, err
	}
	if conference.SessionIDs, err = loadSessionIDsTx(tx, key); err != nil {
		return persistence.Conference{}, err
	}
	return conference, nil
}

func loadTopicsTx(tx *sql.Tx, key persistence.ConferenceKey) ([]string, error) {
	rows, err := tx.Query(`
		SELECT topic FROM conference_topics
		WHERE organizer_id = ? AND local_id = ?
		ORDER BY position ASC
	`, key.OrganizerID, key.LocalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func loadSessionIDsTx(tx *sql.Tx, key persistence.ConferenceKey) ([]string, error) {
	rows, err := tx.Query(`
		SELECT local_id FROM sessions
		WHERE organizer_id = ? AND conference_local_id = ?
		ORDER BY local_id ASC
	`, key.OrganizerID, key.LocalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessionIDs []string
	for rows.Next() {
		var localID int64
		if err := rows.Scan(&localID); err != nil {
			return nil, err
		}
		sessionKey := persistence.SessionKey{Conference: key, LocalID: localID}
		sessionIDs = append(sessionIDs, sessionKey.Encode())
	}
	return sessionIDs, rows.Err()
}

func getProfileTx(tx *sql.Tx, userID string) (persistence.Profile, error) {
	query := `
		SELECT user_id, display_name, main_email, tee_shirt_size, created_at, updated_at
		FROM profiles
		WHERE user_id = ?
	`
	profile, err := scanProfile(tx.QueryRow(query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Profile{}, persistence.ErrNotFound
		}
		return persistence.Profile{}, err
	}

	for _, list := range []struct {
		table  string
		column string
		dest   *[]string
	}{
		{"profile_attendance", "conference_key", &profile.AttendingKeys},
		{"profile_wishlist", "session_key", &profile.Wishlist},
	} {
		rows, err := tx.Query(
			"SELECT "+list.column+" FROM "+list.table+" WHERE user_id = ? ORDER BY position ASC", userID)
		if err != nil {
			return persistence.Profile{}, err
		}
		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				rows.Close()
				return persistence.Profile{}, err
			}
			*list.dest = append(*list.dest, key)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return persistence.Profile{}, err
		}
		rows.Close()
	}

	return profile, nil
}

func updateConferenceTx(tx *sql.Tx, conference persistence.Conference) error {
	result, err := tx.Exec(`
		UPDATE conferences
		SET name = ?, description = ?, city = ?, month = ?, start_date = ?,
			end_date = ?, max_attendees = ?, seats_available = ?,
			featured_speaker = ?, updated_at = ?
		WHERE organizer_id = ? AND local_id = ?
	`,
		conference.Name,
		conference.Description,
		conference.City,
		conference.Month,
		formatTime(conference.StartDate),
		formatTime(conference.EndDate),
		conference.MaxAttendees,
		conference.SeatsAvailable,
		conference.FeaturedSpeaker,
		formatTime(conference.UpdatedAt),
		conference.Key.OrganizerID,
		conference.Key.LocalID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return rewriteTopicsTx(tx, conference.Key, conference.Topics)
}

func rewriteTopicsTx(tx *sql.Tx, key persistence.ConferenceKey, topics []string) error {
	_, err := tx.Exec(
		"DELETE FROM conference_topics WHERE organizer_id = ? AND local_id = ?",
		key.OrganizerID, key.LocalID)
	if err != nil {
		return err
	}
	for position, topic := range topics {
		_, err := tx.Exec(`
			INSERT INTO conference_topics (organizer_id, local_id, position, topic)
			VALUES (?, ?, ?, ?)
		`, key.OrganizerID, key.LocalID, position, topic)
		if err != nil {
			return err
		}
	}
	return nil
}

// buildConferenceQuery translates a compiled plan into SQL. Topic conditions
// match any of a conference's topics via EXISTS; topic ordering uses the
// minimum topic.
func buildConferenceQuery(plan persistence.ConferenceQuery) (string, []any, error) {
	query := "SELECT " + conferenceColumns + " FROM conferences c"

	var conditions []string
	var args []any
	for _, condition := range plan.Conditions {
		switch condition.Field {
		case persistence.FieldTopics:
			conditions = append(conditions, fmt.Sprintf(`EXISTS (
				SELECT 1 FROM conference_topics t
				WHERE t.organizer_id = c.organizer_id AND t.local_id = c.local_id
					AND t.topic %s ?)`, condition.Operator))
		default:
			column, err := conferenceColumn(condition.Field)
			if err != nil {
				return "", nil, err
			}
			conditions = append(conditions, fmt.Sprintf("c.%s %s ?", column, condition.Operator))
		}
		args = append(args, condition.Value)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := make([]string, 0, len(plan.OrderBy)+1)
	for _, field := range plan.OrderBy {
		if field == persistence.FieldTopics {
			orderBy = append(orderBy, `(SELECT MIN(topic) FROM conference_topics t
				WHERE t.organizer_id = c.organizer_id AND t.local_id = c.local_id) ASC`)
			continue
		}
		column, err := conferenceColumn(field)
		if err != nil {
			return "", nil, err
		}
		orderBy = append(orderBy, "c."+column+" ASC")
	}
	orderBy = append(orderBy, "c.organizer_id ASC", "c.local_id ASC")
	query += " ORDER BY " + strings.Join(orderBy, ", ")

	return query, args, nil
}

func conferenceColumn(field persistence.FieldName) (string, error) {
	switch field {
	case persistence.FieldConferenceName:
		return "name", nil
	case persistence.FieldCity:
		return "city", nil
	case persistence.FieldMonth:
		return "month", nil
	case persistence.FieldMaxAttendees:
		return "max_attendees", nil
	default:
		return "", fmt.Errorf("unsupported query field %q", field)
	}
}
