package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/conference-central/internal/persistence"
)

// ProfileRepository implements persistence.ProfileRepository using SQLite.
type ProfileRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewProfileRepository creates a new SQLite profile repository.
func NewProfileRepository(pool *ConnectionPool) *ProfileRepository {
	return &ProfileRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// GetProfile retrieves a profile by user ID.
func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (persistence.Profile, error) {
	if userID == "" {
		return persistence.Profile{}, persistence.ErrNotFound
	}

	query := `
		SELECT user_id, display_name, main_email, tee_shirt_size, created_at, updated_at
		FROM profiles
		WHERE user_id = ?
	`

	profile, err := scanProfile(r.helper.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Profile{}, persistence.ErrNotFound
		}
		return persistence.Profile{}, r.mapper.MapError(err)
	}

	if profile.AttendingKeys, err = r.loadKeyList(ctx, "profile_attendance", "conference_key", userID); err != nil {
		return persistence.Profile{}, err
	}
	if profile.Wishlist, err = r.loadKeyList(ctx, "profile_wishlist", "session_key", userID); err != nil {
		return persistence.Profile{}, err
	}

	return profile, nil
}

// SaveProfile inserts or updates a profile together with its attendance and
// wishlist entries.
func (r *ProfileRepository) SaveProfile(ctx context.Context, profile persistence.Profile) (persistence.Profile, error) {
	if profile.UserID == "" {
		return persistence.Profile{}, persistence.ErrConstraintViolation
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		return saveProfileTx(tx, profile)
	})
	if err != nil {
		return persistence.Profile{}, r.mapper.MapError(err)
	}

	return r.GetProfile(ctx, profile.UserID)
}

// GetProfiles resolves profiles for the given user IDs. Missing IDs are
// skipped.
func (r *ProfileRepository) GetProfiles(ctx context.Context, userIDs []string) ([]persistence.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT user_id, display_name, main_email, tee_shirt_size, created_at, updated_at
		FROM profiles
		WHERE user_id IN (` + placeholders(len(userIDs)) + `)
		ORDER BY user_id ASC
	`
	args := make([]any, 0, len(userIDs))
	for _, id := range userIDs {
		args = append(args, id)
	}

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var profiles []persistence.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	for i := range profiles {
		if profiles[i].AttendingKeys, err = r.loadKeyList(ctx, "profile_attendance", "conference_key", profiles[i].UserID); err != nil {
			return nil, err
		}
		if profiles[i].Wishlist, err = r.loadKeyList(ctx, "profile_wishlist", "session_key", profiles[i].UserID); err != nil {
			return nil, err
		}
	}

	return profiles, nil
}

// loadKeyList loads an ordered key column for one user from a position table.
func (r *ProfileRepository) loadKeyList(ctx context.Context, table, column, userID string) ([]string, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT "+column+" FROM "+table+" WHERE user_id = ? ORDER BY position ASC", userID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, r.mapper.MapError(err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return keys, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (persistence.Profile, error) {
	var profile persistence.Profile
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&profile.UserID,
		&profile.DisplayName,
		&profile.MainEmail,
		&profile.TeeShirtSize,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Profile{}, err
	}

	if profile.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Profile{}, err
	}
	if profile.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Profile{}, err
	}
	return profile, nil
}

// saveProfileTx writes the profile row and rewrites its key lists within an
// open transaction. Shared with the registration unit in the conference
// repository.
func saveProfileTx(tx *sql.Tx, profile persistence.Profile) error {
	_, err := tx.Exec(`
		INSERT INTO profiles (user_id, display_name, main_email, tee_shirt_size, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			main_email = excluded.main_email,
			tee_shirt_size = excluded.tee_shirt_size,
			updated_at = excluded.updated_at
	`,
		profile.UserID,
		profile.DisplayName,
		profile.MainEmail,
		profile.TeeShirtSize,
		formatTime(profile.CreatedAt),
		formatTime(profile.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if err := rewriteKeyListTx(tx, "profile_attendance", "conference_key", profile.UserID, profile.AttendingKeys); err != nil {
		return err
	}
	return rewriteKeyListTx(tx, "profile_wishlist", "session_key", profile.UserID, profile.Wishlist)
}

func rewriteKeyListTx(tx *sql.Tx, table, column, userID string, keys []string) error {
	if _, err := tx.Exec("DELETE FROM "+table+" WHERE user_id = ?", userID); err != nil {
		return err
	}
	for position, key := range keys {
		_, err := tx.Exec(
			"INSERT INTO "+table+" (user_id, position, "+column+") VALUES (?, ?, ?)",
			userID, position, key)
		if err != nil {
			return err
		}
	}
	return nil
}
