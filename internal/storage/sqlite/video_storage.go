package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/models"
)

// VideoStorage persists content items keyed by video_id. Hashtags and
// mentions are stored as JSON arrays in text columns.
type VideoStorage struct {
	conn   *Connection
	logger arbor.ILogger
}

// NewVideoStorage creates a video storage over an open connection.
func NewVideoStorage(conn *Connection, logger arbor.ILogger) *VideoStorage {
	return &VideoStorage{conn: conn, logger: logger}
}

const videoColumns = `id, profile_id, video_id, description, create_time,
	play_url, cover_url, like_count, comment_count, share_count, view_count,
	duration, music_title, music_author, music_url, hashtags, mentions,
	last_scraped, raw`

// UpsertVideo inserts or updates by video_id and returns the persisted
// record with its surrogate id.
func (s *VideoStorage) UpsertVideo(ctx context.Context, video *models.Video) (*models.Video, error) {
	hashtags, err := marshalStrings(video.Hashtags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode hashtags for %s: %w", video.VideoID, err)
	}
	mentions, err := marshalStrings(video.Mentions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mentions for %s: %w", video.VideoID, err)
	}
	raw := string(video.Raw)
	if raw == "" {
		raw = "{}"
	}

	_, err = s.conn.DB().ExecContext(ctx, `
		INSERT INTO videos (
			profile_id, video_id, description, create_time,
			play_url, cover_url, like_count, comment_count, share_count,
			view_count, duration, music_title, music_author, music_url,
			hashtags, mentions, last_scraped, raw
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			profile_id    = excluded.profile_id,
			description   = excluded.description,
			create_time   = excluded.create_time,
			play_url      = excluded.play_url,
			cover_url     = excluded.cover_url,
			like_count    = excluded.like_count,
			comment_count = excluded.comment_count,
			share_count   = excluded.share_count,
			view_count    = excluded.view_count,
			duration      = excluded.duration,
			music_title   = excluded.music_title,
			music_author  = excluded.music_author,
			music_url     = excluded.music_url,
			hashtags      = excluded.hashtags,
			mentions      = excluded.mentions,
			last_scraped  = excluded.last_scraped,
			raw           = excluded.raw`,
		video.ProfileID, video.VideoID, video.Description, video.CreateTime,
		video.PlayURL, video.CoverURL, video.LikeCount, video.CommentCount, video.ShareCount,
		video.ViewCount, video.Duration, video.MusicTitle, video.MusicAuthor, video.MusicURL,
		hashtags, mentions, video.LastScraped, raw,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert video %s: %w", video.VideoID, err)
	}

	row := s.conn.DB().QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE video_id = ?`, video.VideoID)
	stored, err := scanVideo(row)
	if err != nil {
		return nil, fmt.Errorf("failed to read back video %s: %w", video.VideoID, err)
	}
	return stored, nil
}

// ListVideosByProfile returns every video for a profile, newest first by
// site timestamp.
func (s *VideoStorage) ListVideosByProfile(ctx context.Context, profileID int64) ([]*models.Video, error) {
	rows, err := s.conn.DB().QueryContext(ctx,
		`SELECT `+videoColumns+` FROM videos
		 WHERE profile_id = ? ORDER BY create_time DESC, video_id`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos for profile %d: %w", profileID, err)
	}
	defer rows.Close()

	videos := make([]*models.Video, 0)
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// CountVideos returns the total number of stored videos.
func (s *VideoStorage) CountVideos(ctx context.Context) (int, error) {
	var count int
	err := s.conn.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return count, nil
}

func scanVideo(row rowScanner) (*models.Video, error) {
	var v models.Video
	var createTime sql.NullTime
	var hashtags, mentions, raw string
	err := row.Scan(
		&v.ID, &v.ProfileID, &v.VideoID, &v.Description, &createTime,
		&v.PlayURL, &v.CoverURL, &v.LikeCount, &v.CommentCount, &v.ShareCount,
		&v.ViewCount, &v.Duration, &v.MusicTitle, &v.MusicAuthor, &v.MusicURL,
		&hashtags, &mentions, &v.LastScraped, &raw,
	)
	if err != nil {
		return nil, err
	}
	if createTime.Valid {
		t := createTime.Time
		v.CreateTime = &t
	}
	if err := json.Unmarshal([]byte(hashtags), &v.Hashtags); err != nil {
		v.Hashtags = []string{}
	}
	if err := json.Unmarshal([]byte(mentions), &v.Mentions); err != nil {
		v.Mentions = []string{}
	}
	v.Raw = []byte(raw)
	return &v, nil
}

func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
