package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/specto/internal/models"
)

func pageState(users, stats, items map[string]map[string]any) *models.PageState {
	return &models.PageState{
		UserModule: models.UserModule{Users: users, Stats: stats},
		ItemModule: items,
	}
}

func TestProjectResultMatchesTarget(t *testing.T) {
	state := pageState(
		map[string]map[string]any{
			"other":    {"uniqueId": "other", "nickname": "Other"},
			"cooluser": {"uniqueId": "cooluser", "nickname": "Cool"},
		},
		map[string]map[string]any{
			"cooluser": {"followerCount": float64(42)},
		},
		nil,
	)

	result, err := projectResult(state, "cooluser")
	require.NoError(t, err)

	assert.Equal(t, "cooluser", result.Profile.UniqueID)
	assert.Equal(t, int64(42), result.Profile.FollowerCount)
	assert.False(t, result.DegradedMatch)
}

func TestProjectResultResolvesStatsByInternalID(t *testing.T) {
	state := pageState(
		map[string]map[string]any{
			"cooluser": {"uniqueId": "cooluser", "id": "6789"},
		},
		map[string]map[string]any{
			"6789": {"followerCount": float64(1500)},
		},
		nil,
	)

	result, err := projectResult(state, "cooluser")
	require.NoError(t, err)

	assert.Equal(t, "cooluser", result.Profile.UniqueID)
	assert.Equal(t, int64(1500), result.Profile.FollowerCount)
}

func TestProjectResultStatsFallBackToFirstRecord(t *testing.T) {
	state := pageState(
		map[string]map[string]any{
			"cooluser": {"uniqueId": "cooluser", "id": "6789"},
		},
		map[string]map[string]any{
			"unrelated-key": {"followerCount": float64(7)},
		},
		nil,
	)

	result, err := projectResult(state, "cooluser")
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.Profile.FollowerCount)
}

func TestProjectResultMatchIsCaseInsensitive(t *testing.T) {
	state := pageState(
		map[string]map[string]any{
			"k": {"uniqueId": "CoolUser"},
		},
		nil, nil,
	)

	result, err := projectResult(state, "cooluser")
	require.NoError(t, err)
	assert.False(t, result.DegradedMatch)
}

func TestProjectResultFallsBackToFirstProfile(t *testing.T) {
	state := pageState(
		map[string]map[string]any{
			"zzz": {"uniqueId": "zzz"},
			"aaa": {"uniqueId": "aaa"},
		},
		nil, nil,
	)

	result, err := projectResult(state, "missing")
	require.NoError(t, err)

	// Sorted key order makes the fallback deterministic
	assert.Equal(t, "aaa", result.Profile.UniqueID)
	assert.True(t, result.DegradedMatch)
}

func TestProjectResultNoProfilesIsFatal(t *testing.T) {
	state := pageState(map[string]map[string]any{}, nil, nil)

	_, err := projectResult(state, "anyone")
	assert.True(t, IsKind(err, KindTargetNotFound))
}

func TestProjectResultTakesAllItemsUnfiltered(t *testing.T) {
	state := pageState(
		map[string]map[string]any{
			"u": {"uniqueId": "u"},
		},
		nil,
		map[string]map[string]any{
			"200": {"id": "200", "desc": "second"},
			"100": {"id": "100", "desc": "first"},
			"300": {"id": "300", "desc": "by someone else entirely"},
		},
	)

	result, err := projectResult(state, "u")
	require.NoError(t, err)
	require.Len(t, result.Videos, 3)

	// Sorted item key order
	assert.Equal(t, "100", result.Videos[0].VideoID)
	assert.Equal(t, "200", result.Videos[1].VideoID)
	assert.Equal(t, "300", result.Videos[2].VideoID)
}

func TestProjectResultUnwrapsNestedItems(t *testing.T) {
	state := pageState(
		map[string]map[string]any{
			"u": {"uniqueId": "u"},
		},
		nil,
		map[string]map[string]any{
			"items": {
				"200": map[string]any{"id": "200", "desc": "second"},
				"100": map[string]any{"id": "100", "desc": "first"},
			},
		},
	)

	result, err := projectResult(state, "u")
	require.NoError(t, err)
	require.Len(t, result.Videos, 2)

	assert.Equal(t, "100", result.Videos[0].VideoID)
	assert.Equal(t, "200", result.Videos[1].VideoID)
}
