package interfaces

import (
	"context"

	"github.com/ternarybob/specto/internal/models"
)

// Scraper is the browser-automation core: login yields an authenticated
// cookie set, scrape consumes one to produce a normalized result. Both
// acquire and release their own page session.
type Scraper interface {
	Login(ctx context.Context, cred models.Credential) (models.CookieSet, error)
	Scrape(ctx context.Context, cookies models.CookieSet, target string) (*models.ScrapeResult, error)
}

// ScrapeRunner is the orchestration surface consumed by the HTTP layer and
// the async job manager: the same pipelines as Scraper plus persistence.
type ScrapeRunner interface {
	Login(ctx context.Context, cred models.Credential) (models.CookieSet, error)
	Scrape(ctx context.Context, cookies models.CookieSet, target string) (*models.ScrapeResult, error)
	LoginScrape(ctx context.Context, cred models.Credential, target string) (*models.ScrapeResult, error)
}
