package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

// ProfileStorage persists profiles keyed by unique_id.
type ProfileStorage struct {
	conn   *Connection
	logger arbor.ILogger
}

// NewProfileStorage creates a profile storage over an open connection.
func NewProfileStorage(conn *Connection, logger arbor.ILogger) *ProfileStorage {
	return &ProfileStorage{conn: conn, logger: logger}
}

const profileColumns = `id, unique_id, nickname, avatar_url, signature,
	following_count, follower_count, heart_count, video_count,
	verified, private, sec_uid, user_id, last_scraped, raw`

// UpsertProfile inserts or updates by unique_id and returns the persisted
// record with its surrogate id.
func (s *ProfileStorage) UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	raw := string(profile.Raw)
	if raw == "" {
		raw = "{}"
	}

	_, err := s.conn.DB().ExecContext(ctx, `
		INSERT INTO profiles (
			unique_id, nickname, avatar_url, signature,
			following_count, follower_count, heart_count, video_count,
			verified, private, sec_uid, user_id, last_scraped, raw
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(unique_id) DO UPDATE SET
			nickname        = excluded.nickname,
			avatar_url      = excluded.avatar_url,
			signature       = excluded.signature,
			following_count = excluded.following_count,
			follower_count  = excluded.follower_count,
			heart_count     = excluded.heart_count,
			video_count     = excluded.video_count,
			verified        = excluded.verified,
			private         = excluded.private,
			sec_uid         = excluded.sec_uid,
			user_id         = excluded.user_id,
			last_scraped    = excluded.last_scraped,
			raw             = excluded.raw`,
		profile.UniqueID, profile.Nickname, profile.AvatarURL, profile.Signature,
		profile.FollowingCount, profile.FollowerCount, profile.HeartCount, profile.VideoCount,
		profile.Verified, profile.Private, profile.SecUID, profile.UserID,
		profile.LastScraped, raw,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile %s: %w", profile.UniqueID, err)
	}

	return s.GetProfileByUniqueID(ctx, profile.UniqueID)
}

// GetProfileByUniqueID fetches one profile, or interfaces.ErrNotFound.
func (s *ProfileStorage) GetProfileByUniqueID(ctx context.Context, uniqueID string) (*models.Profile, error) {
	row := s.conn.DB().QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE unique_id = ?`, uniqueID)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", uniqueID, err)
	}
	return profile, nil
}

// ListProfiles returns a page of profiles ordered by most recent scrape.
func (s *ProfileStorage) ListProfiles(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	rows, err := s.conn.DB().QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles
		 ORDER BY last_scraped DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*models.Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// CountProfiles returns the total number of stored profiles.
func (s *ProfileStorage) CountProfiles(ctx context.Context) (int, error) {
	var count int
	err := s.conn.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	var raw string
	err := row.Scan(
		&p.ID, &p.UniqueID, &p.Nickname, &p.AvatarURL, &p.Signature,
		&p.FollowingCount, &p.FollowerCount, &p.HeartCount, &p.VideoCount,
		&p.Verified, &p.Private, &p.SecUID, &p.UserID, &p.LastScraped, &raw,
	)
	if err != nil {
		return nil, err
	}
	p.Raw = []byte(raw)
	return &p, nil
}
