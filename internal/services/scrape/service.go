package scrape

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

// Config holds orchestration settings.
type Config struct {
	// RateLimitPerMinute caps scrape pipeline starts. Zero disables the
	// limiter.
	RateLimitPerMinute int

	// Snapshots enables raw page-state archival per scrape.
	Snapshots bool
}

// Service is the orchestration layer over the browser core: it applies the
// rate limit, runs the pipelines, persists normalized results and archives
// raw state. Implements interfaces.ScrapeRunner.
type Service struct {
	scraper   interfaces.Scraper
	profiles  interfaces.ProfileStorage
	videos    interfaces.VideoStorage
	snapshots interfaces.SnapshotStore // nil when archival is disabled
	limiter   *rate.Limiter
	config    Config
	logger    arbor.ILogger
}

// NewService creates the orchestration service. snapshots may be nil.
func NewService(
	scraper interfaces.Scraper,
	profiles interfaces.ProfileStorage,
	videos interfaces.VideoStorage,
	snapshots interfaces.SnapshotStore,
	config Config,
	logger arbor.ILogger,
) *Service {
	var limiter *rate.Limiter
	if config.RateLimitPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(config.RateLimitPerMinute)/60.0), 1)
	}
	return &Service{
		scraper:   scraper,
		profiles:  profiles,
		videos:    videos,
		snapshots: snapshots,
		limiter:   limiter,
		config:    config,
		logger:    logger,
	}
}

// Login runs the login pipeline and returns the authenticated cookie set.
// Cookies pass through to the caller; nothing about them is persisted.
func (s *Service) Login(ctx context.Context, cred models.Credential) (models.CookieSet, error) {
	return s.scraper.Login(ctx, cred)
}

// Scrape runs the scrape pipeline with caller-supplied cookies, persists
// the normalized result and returns it with storage ids populated.
func (s *Service) Scrape(ctx context.Context, cookies models.CookieSet, target string) (*models.ScrapeResult, error) {
	if err := s.waitRateLimit(ctx); err != nil {
		return nil, err
	}

	result, err := s.scraper.Scrape(ctx, cookies, target)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, result); err != nil {
		return nil, err
	}
	s.archive(ctx, target, result)

	return result, nil
}

// LoginScrape chains login and scrape in one flow. The cookie set obtained
// from login exists only for the duration of the call.
func (s *Service) LoginScrape(ctx context.Context, cred models.Credential, target string) (*models.ScrapeResult, error) {
	cookies, err := s.scraper.Login(ctx, cred)
	if err != nil {
		return nil, err
	}
	return s.Scrape(ctx, cookies, target)
}

func (s *Service) waitRateLimit(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait cancelled: %w", err)
	}
	return nil
}

// persist upserts the profile, then every video under its surrogate id.
// The profile write must succeed before any video write is attempted.
func (s *Service) persist(ctx context.Context, result *models.ScrapeResult) error {
	stored, err := s.profiles.UpsertProfile(ctx, &result.Profile)
	if err != nil {
		return fmt.Errorf("failed to persist profile %s: %w", result.Profile.UniqueID, err)
	}
	result.Profile = *stored

	for i := range result.Videos {
		result.Videos[i].ProfileID = stored.ID
		storedVideo, err := s.videos.UpsertVideo(ctx, &result.Videos[i])
		if err != nil {
			return fmt.Errorf("failed to persist video %s: %w", result.Videos[i].VideoID, err)
		}
		result.Videos[i] = *storedVideo
	}

	s.logger.Info().
		Str("unique_id", stored.UniqueID).
		Int64("profile_id", stored.ID).
		Int("videos", len(result.Videos)).
		Msg("Scrape result persisted")

	return nil
}

// archive stores the raw page state when archival is enabled. Best-effort:
// failures are logged and never fail the scrape.
func (s *Service) archive(ctx context.Context, target string, result *models.ScrapeResult) {
	if s.snapshots == nil || !s.config.Snapshots || len(result.RawState) == 0 {
		return
	}
	if err := s.snapshots.SaveSnapshot(ctx, target, result.RawState); err != nil {
		s.logger.Warn().Err(err).Str("target", target).Msg("Page state snapshot failed")
	}
}
