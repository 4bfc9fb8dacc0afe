package scraper

import "github.com/ternarybob/specto/internal/models"

// sessionCookieNames is the allow-list of cookie names that signal an
// authenticated session. Order matters: the first list entry present in a
// cookie set wins the tie-break. Presence alone is sufficient - the value
// is an opaque token only the site can interpret.
var sessionCookieNames = []string{
	"sessionid",
	"session_id",
	"sid_tt",
}

// FindSessionCookie returns the highest-priority session cookie in the
// set, by allow-list order.
func FindSessionCookie(set models.CookieSet) (models.Cookie, bool) {
	for _, name := range sessionCookieNames {
		for _, c := range set {
			if c.Name == name {
				return c, true
			}
		}
	}
	return models.Cookie{}, false
}

// HasSessionCookie reports whether the set contains any recognized session
// cookie.
func HasSessionCookie(set models.CookieSet) bool {
	_, ok := FindSessionCookie(set)
	return ok
}
