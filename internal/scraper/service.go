package scraper

import (
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
)

// Config holds scraper pipeline settings.
type Config struct {
	// LoginTimeout is the overall ceiling for one login attempt, and the
	// budget for session-cookie polling within it.
	LoginTimeout time.Duration

	// PollInterval is the session-cookie polling interval.
	PollInterval time.Duration

	// NavigationTimeout bounds each individual page navigation.
	NavigationTimeout time.Duration

	// MaxNavAttempts is the scrape pipeline's navigation retry budget.
	MaxNavAttempts int

	// NavRetryDelay is the delay between navigation attempts.
	NavRetryDelay time.Duration

	// ScreenshotDir receives diagnostic screenshots on failure.
	ScreenshotDir string
}

// Service drives the login state machine and the scrape pipeline. Every
// invocation acquires its own page session and releases it on all exit
// paths; invocations are strictly sequential internally and safe to run
// concurrently with each other.
type Service struct {
	provider interfaces.BrowserProvider
	config   Config
	logger   arbor.ILogger
}

// NewService creates a scraper service.
func NewService(provider interfaces.BrowserProvider, config Config, logger arbor.ILogger) *Service {
	if config.LoginTimeout <= 0 {
		config.LoginTimeout = 60 * time.Second
	}
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.NavigationTimeout <= 0 {
		config.NavigationTimeout = 60 * time.Second
	}
	if config.MaxNavAttempts <= 0 {
		config.MaxNavAttempts = 3
	}
	if config.NavRetryDelay <= 0 {
		config.NavRetryDelay = 2 * time.Second
	}
	if config.ScreenshotDir == "" {
		config.ScreenshotDir = "logs"
	}
	return &Service{
		provider: provider,
		config:   config,
		logger:   logger,
	}
}
