package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/specto/internal/models"
)

func TestFindSessionCookie(t *testing.T) {
	tests := []struct {
		name     string
		set      models.CookieSet
		wantName string
		found    bool
	}{
		{
			name:  "Empty Set",
			set:   models.CookieSet{},
			found: false,
		},
		{
			name: "No Recognized Names",
			set: models.CookieSet{
				{Name: "tt_csrf_token", Value: "x"},
				{Name: "msToken", Value: "y"},
			},
			found: false,
		},
		{
			name: "Single Session Cookie",
			set: models.CookieSet{
				{Name: "sid_tt", Value: "tok"},
			},
			wantName: "sid_tt",
			found:    true,
		},
		{
			name: "Allow List Order Wins Tie Break",
			set: models.CookieSet{
				{Name: "sid_tt", Value: "b"},
				{Name: "sessionid", Value: "a"},
			},
			wantName: "sessionid",
			found:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cookie, ok := FindSessionCookie(tt.set)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.wantName, cookie.Name)
			}
			assert.Equal(t, tt.found, HasSessionCookie(tt.set))
		})
	}
}
