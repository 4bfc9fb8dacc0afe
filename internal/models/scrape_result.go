package models

import (
	"encoding/json"
	"time"
)

// Profile is a normalized account record. ID is the storage surrogate key;
// UniqueID is the natural key profiles are upserted by.
type Profile struct {
	ID             int64           `json:"id"`
	UniqueID       string          `json:"unique_id"`
	Nickname       string          `json:"nickname,omitempty"`
	AvatarURL      string          `json:"avatar_url,omitempty"`
	Signature      string          `json:"signature,omitempty"`
	FollowingCount int64           `json:"following_count"`
	FollowerCount  int64           `json:"follower_count"`
	HeartCount     int64           `json:"heart_count"`
	VideoCount     int64           `json:"video_count"`
	Verified       bool            `json:"verified"`
	Private        bool            `json:"private"`
	SecUID         string          `json:"sec_uid,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	LastScraped    time.Time       `json:"last_scraped"`
	Raw            json.RawMessage `json:"-"`
}

// Video is a normalized content item. VideoID is the site's id and the
// upsert key; ProfileID links to the owning profile's surrogate key.
type Video struct {
	ID           int64           `json:"id"`
	ProfileID    int64           `json:"profile_id"`
	VideoID      string          `json:"video_id"`
	Description  string          `json:"description,omitempty"`
	CreateTime   *time.Time      `json:"create_time,omitempty"`
	PlayURL      string          `json:"play_url,omitempty"`
	CoverURL     string          `json:"cover_url,omitempty"`
	LikeCount    int64           `json:"like_count"`
	CommentCount int64           `json:"comment_count"`
	ShareCount   int64           `json:"share_count"`
	ViewCount    int64           `json:"view_count"`
	Duration     int64           `json:"duration"`
	MusicTitle   string          `json:"music_title,omitempty"`
	MusicAuthor  string          `json:"music_author,omitempty"`
	MusicURL     string          `json:"music_url,omitempty"`
	Hashtags     []string        `json:"hashtags"`
	Mentions     []string        `json:"mentions"`
	LastScraped  time.Time       `json:"last_scraped"`
	Raw          json.RawMessage `json:"-"`
}

// ScrapeResult is one complete scrape outcome: the matched profile, every
// content item found, and the match quality. RawState carries the original
// page state for snapshot archival and is never serialized to clients.
type ScrapeResult struct {
	Profile       Profile         `json:"profile"`
	Videos        []Video         `json:"videos"`
	DegradedMatch bool            `json:"degraded_match"`
	ScrapedAt     time.Time       `json:"scraped_at"`
	RawState      json.RawMessage `json:"-"`
}
