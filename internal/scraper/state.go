package scraper

import (
	"sort"
	"strings"

	"github.com/ternarybob/specto/internal/models"
)

// profileMatchAliases are the fields a profile record is matched against
// when locating the requested target, in preference order.
var profileMatchAliases = []string{"uniqueId", "unique_id", "nickname", "shortId"}

// projectResult locates the target's profile and stats in the parsed page
// state and normalizes every content item present. Pure; no I/O.
//
// The embedded state may include items by other authors; all of them are
// taken as found, unfiltered. When no profile matches the requested
// identifier the first available profile is used and the result is flagged
// as a degraded match. A state with no profiles at all is fatal.
func projectResult(state *models.PageState, target string) (*models.ScrapeResult, error) {
	users := state.UserModule.Users
	if len(users) == 0 {
		return nil, NewError(KindTargetNotFound, "page state contains no profile records")
	}

	// Map order is not stable; sorted keys keep the fallback deterministic.
	keys := make([]string, 0, len(users))
	for k := range users {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	matchKey := ""
	for _, key := range keys {
		if profileMatches(users[key], target) {
			matchKey = key
			break
		}
	}

	degraded := false
	if matchKey == "" {
		matchKey = keys[0]
		degraded = true
	}

	stats := statsForProfile(state.UserModule.Stats, users[matchKey], matchKey)
	profile := NormalizeProfile(users[matchKey], stats, target)

	items := contentItems(state.ItemModule)
	itemKeys := make([]string, 0, len(items))
	for k := range items {
		itemKeys = append(itemKeys, k)
	}
	sort.Strings(itemKeys)

	videos := make([]models.Video, 0, len(itemKeys))
	for _, key := range itemKeys {
		videos = append(videos, NormalizeVideo(items[key]))
	}

	return &models.ScrapeResult{
		Profile:       profile,
		Videos:        videos,
		DegradedMatch: degraded,
	}, nil
}

// statsForProfile resolves the stat record for a matched profile. Stat
// maps are keyed by the profile's internal numeric id, not by the handle
// the profile itself is keyed under, so the id field wins; the profile's
// own key and then the first available record cover states that key stats
// differently.
func statsForProfile(stats map[string]map[string]any, user map[string]any, matchKey string) map[string]any {
	if len(stats) == 0 {
		return nil
	}
	if id := stringField(user, "id", "userId"); id != "" {
		if s, ok := stats[id]; ok {
			return s
		}
	}
	if s, ok := stats[matchKey]; ok {
		return s
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return stats[keys[0]]
}

// contentItems returns the content records keyed by id. Some page states
// nest the records under a single "items" entry instead of keying them
// directly; that wrapper is unwrapped here.
func contentItems(module map[string]map[string]any) map[string]map[string]any {
	if len(module) != 1 {
		return module
	}
	wrapped, ok := module["items"]
	if !ok {
		return module
	}

	items := make(map[string]map[string]any, len(wrapped))
	for key, value := range wrapped {
		item, ok := value.(map[string]any)
		if !ok {
			continue
		}
		items[key] = item
	}
	return items
}

// profileMatches checks the record against the requested identifier under
// every known alias field, case-insensitively.
func profileMatches(user map[string]any, target string) bool {
	for _, alias := range profileMatchAliases {
		if v, ok := user[alias].(string); ok && strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
