package scraper

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/ternarybob/specto/internal/models"
)

// Normalization is a pure projection from the foreign, untyped page-state
// records into the stable output shape. Every field resolves through an
// explicit alias chain; numeric counters default to zero when absent under
// every alias.

var (
	hashtagPattern = regexp.MustCompile(`#\w+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
)

// NormalizeProfile maps a profile record and its stats record. The
// caller-supplied target identifier is the last-resort unique id.
func NormalizeProfile(user, stats map[string]any, target string) models.Profile {
	uniqueID := stringField(user, "uniqueId", "unique_id", "shortId")
	if uniqueID == "" {
		uniqueID = target
	}

	raw, _ := json.Marshal(user)

	return models.Profile{
		UniqueID:       uniqueID,
		Nickname:       stringField(user, "nickname", "displayName", "screen_name"),
		AvatarURL:      stringField(user, "avatarLarger", "avatar", "avatarMedium", "avatarThumb"),
		Signature:      stringField(user, "signature"),
		FollowingCount: intField(stats, "followingCount", "following"),
		FollowerCount:  intField(stats, "followerCount", "follower"),
		HeartCount:     intField(stats, "heartCount", "heart"),
		VideoCount:     intField(stats, "videoCount", "video"),
		Verified:       boolField(user, "verified"),
		Private:        boolField(user, "private", "privateAccount"),
		SecUID:         stringField(user, "secUid", "sec_uid"),
		UserID:         stringField(user, "id", "userId"),
		LastScraped:    time.Now(),
		Raw:            raw,
	}
}

// NormalizeVideo maps a content item record. Engagement counters resolve
// independently through their own alias chains; hashtags and mentions are
// derived from the description text.
func NormalizeVideo(item map[string]any) models.Video {
	stats := mapField(item, "stats")
	video := mapField(item, "video")
	music := mapField(item, "music")
	author := mapField(item, "author")

	desc := stringField(item, "desc", "description")

	coverURL := stringField(video, "dynamicCover", "cover", "originCover")
	if coverURL == "" {
		coverURL = stringField(author, "avatarThumb")
	}

	duration := intField(stats, "duration")
	if duration == 0 {
		duration = intField(video, "duration")
	}

	raw, _ := json.Marshal(item)

	v := models.Video{
		VideoID:      stringField(item, "id", "videoId"),
		Description:  desc,
		PlayURL:      stringField(video, "playAddr", "downloadAddr"),
		CoverURL:     coverURL,
		LikeCount:    intField(stats, "diggCount", "likes"),
		CommentCount: intField(stats, "commentCount", "comments"),
		ShareCount:   intField(stats, "shareCount", "shares"),
		ViewCount:    intField(stats, "playCount", "views"),
		Duration:     duration,
		MusicTitle:   stringField(music, "title"),
		MusicAuthor:  stringField(music, "authorName"),
		MusicURL:     stringField(music, "playUrl"),
		Hashtags:     ExtractHashtags(desc),
		Mentions:     ExtractMentions(desc),
		LastScraped:  time.Now(),
		Raw:          raw,
	}

	// Timestamps arrive as epoch seconds; absent or zero stays nil.
	if epoch := intField(item, "createTime", "create_time"); epoch > 0 {
		t := time.Unix(epoch, 0).UTC()
		v.CreateTime = &t
	}

	return v
}

// ExtractHashtags returns every #-token in order of first appearance.
// Duplicates are retained as found.
func ExtractHashtags(desc string) []string {
	if desc == "" {
		return []string{}
	}
	tags := hashtagPattern.FindAllString(desc, -1)
	if tags == nil {
		return []string{}
	}
	return tags
}

// ExtractMentions returns every @-token in order of first appearance.
func ExtractMentions(desc string) []string {
	if desc == "" {
		return []string{}
	}
	mentions := mentionPattern.FindAllString(desc, -1)
	if mentions == nil {
		return []string{}
	}
	return mentions
}

// stringField resolves the first non-empty string under the alias chain.
func stringField(m map[string]any, aliases ...string) string {
	for _, alias := range aliases {
		if v, ok := m[alias].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// intField resolves the first numeric value under the alias chain. JSON
// numbers arrive as float64; numeric strings are tolerated since the site
// has shipped both. Negative values are clamped to zero.
func intField(m map[string]any, aliases ...string) int64 {
	for _, alias := range aliases {
		switch v := m[alias].(type) {
		case float64:
			if v < 0 {
				return 0
			}
			return int64(v)
		case int64:
			if v < 0 {
				return 0
			}
			return v
		case int:
			if v < 0 {
				return 0
			}
			return int64(v)
		case json.Number:
			if n, err := v.Int64(); err == nil && n >= 0 {
				return n
			}
		}
	}
	return 0
}

// boolField resolves the first boolean under the alias chain.
func boolField(m map[string]any, aliases ...string) bool {
	for _, alias := range aliases {
		if v, ok := m[alias].(bool); ok {
			return v
		}
	}
	return false
}

// mapField resolves a nested object, returning an empty map when absent so
// callers never branch on nil.
func mapField(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}
