package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProfile(t *testing.T) {
	tests := []struct {
		name   string
		user   map[string]any
		stats  map[string]any
		target string
		check  func(t *testing.T, uniqueID, nickname string, followers int64, verified bool)
	}{
		{
			name: "Primary Aliases",
			user: map[string]any{
				"uniqueId": "cooluser",
				"nickname": "Cool User",
				"verified": true,
			},
			stats:  map[string]any{"followerCount": float64(1500)},
			target: "cooluser",
			check: func(t *testing.T, uniqueID, nickname string, followers int64, verified bool) {
				assert.Equal(t, "cooluser", uniqueID)
				assert.Equal(t, "Cool User", nickname)
				assert.Equal(t, int64(1500), followers)
				assert.True(t, verified)
			},
		},
		{
			name: "Fallback Aliases",
			user: map[string]any{
				"unique_id":   "legacyuser",
				"displayName": "Legacy",
			},
			stats:  map[string]any{"follower": float64(7)},
			target: "legacyuser",
			check: func(t *testing.T, uniqueID, nickname string, followers int64, verified bool) {
				assert.Equal(t, "legacyuser", uniqueID)
				assert.Equal(t, "Legacy", nickname)
				assert.Equal(t, int64(7), followers)
			},
		},
		{
			name:   "No Identifier Falls Back To Target",
			user:   map[string]any{"nickname": "Anon"},
			stats:  map[string]any{},
			target: "requested",
			check: func(t *testing.T, uniqueID, nickname string, followers int64, verified bool) {
				assert.Equal(t, "requested", uniqueID)
				assert.Equal(t, int64(0), followers)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NormalizeProfile(tt.user, tt.stats, tt.target)
			tt.check(t, p.UniqueID, p.Nickname, p.FollowerCount, p.Verified)
		})
	}
}

func TestNormalizeProfileCounterDefaults(t *testing.T) {
	p := NormalizeProfile(map[string]any{"uniqueId": "x"}, nil, "x")

	assert.Equal(t, int64(0), p.FollowingCount)
	assert.Equal(t, int64(0), p.FollowerCount)
	assert.Equal(t, int64(0), p.HeartCount)
	assert.Equal(t, int64(0), p.VideoCount)
}

func TestNormalizeVideo(t *testing.T) {
	item := map[string]any{
		"id":         "7123456789",
		"desc":       "check this out #fyp #viral @friend",
		"createTime": float64(1700000000),
		"stats": map[string]any{
			"diggCount":    float64(100),
			"commentCount": float64(10),
			"shareCount":   float64(5),
			"playCount":    float64(9000),
			"duration":     float64(32),
		},
		"video": map[string]any{
			"playAddr":     "https://cdn.example/play.mp4",
			"dynamicCover": "https://cdn.example/cover.jpg",
		},
		"music": map[string]any{
			"title":      "original sound",
			"authorName": "someone",
			"playUrl":    "https://cdn.example/sound.mp3",
		},
	}

	v := NormalizeVideo(item)

	assert.Equal(t, "7123456789", v.VideoID)
	assert.Equal(t, int64(100), v.LikeCount)
	assert.Equal(t, int64(9000), v.ViewCount)
	assert.Equal(t, int64(32), v.Duration)
	assert.Equal(t, "https://cdn.example/play.mp4", v.PlayURL)
	assert.Equal(t, "https://cdn.example/cover.jpg", v.CoverURL)
	assert.Equal(t, "original sound", v.MusicTitle)
	assert.Equal(t, []string{"#fyp", "#viral"}, v.Hashtags)
	assert.Equal(t, []string{"@friend"}, v.Mentions)

	if assert.NotNil(t, v.CreateTime) {
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), *v.CreateTime)
	}
}

func TestNormalizeVideoMissingFields(t *testing.T) {
	v := NormalizeVideo(map[string]any{"id": "1"})

	assert.Equal(t, "1", v.VideoID)
	assert.Nil(t, v.CreateTime)
	assert.Equal(t, int64(0), v.LikeCount)
	assert.Empty(t, v.Hashtags)
	assert.Empty(t, v.Mentions)
}

func TestNormalizeVideoCoverFallsBackToAuthorAvatar(t *testing.T) {
	v := NormalizeVideo(map[string]any{
		"id":     "2",
		"author": map[string]any{"avatarThumb": "https://cdn.example/avatar.jpg"},
	})

	assert.Equal(t, "https://cdn.example/avatar.jpg", v.CoverURL)
}

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want []string
	}{
		{"Empty", "", []string{}},
		{"None", "plain description", []string{}},
		{"Ordered", "#first text #second", []string{"#first", "#second"}},
		{"Duplicates Retained", "#cat stuff #cat", []string{"#cat", "#cat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHashtags(tt.desc))
		})
	}
}

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want []string
	}{
		{"Empty", "", []string{}},
		{"Ordered", "@alice then @bob", []string{"@alice", "@bob"}},
		{"Duplicates Retained", "@x @x", []string{"@x", "@x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMentions(tt.desc))
		})
	}
}

func TestIntFieldClampsNegative(t *testing.T) {
	m := map[string]any{"followerCount": float64(-5)}
	assert.Equal(t, int64(0), intField(m, "followerCount"))
}
