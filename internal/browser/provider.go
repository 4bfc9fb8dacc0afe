package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
)

// Config holds browser session settings resolved from application config.
type Config struct {
	Headless          bool
	ExecutablePath    string
	Attach            bool
	AttachEndpoint    string
	NavigationTimeout time.Duration
	UserAgent         string
	WindowWidth       int
	WindowHeight      int
	ProxyEnabled      bool
	ProxyServer       string
	ProxyUsername     string
	ProxyPassword     string
}

// Provider launches or attaches to a browser and yields page sessions.
type Provider struct {
	config Config
	logger arbor.ILogger
}

// NewProvider creates a browser provider.
func NewProvider(config Config, logger arbor.ILogger) *Provider {
	if config.NavigationTimeout <= 0 {
		config.NavigationTimeout = 60 * time.Second
	}
	if config.WindowWidth <= 0 || config.WindowHeight <= 0 {
		config.WindowWidth = 1920
		config.WindowHeight = 1080
	}
	return &Provider{
		config: config,
		logger: logger,
	}
}

// Acquire yields a fresh page session. When attach mode is configured the
// provider connects to the external DevTools endpoint first and falls back
// to launching its own instance if the connection fails. Launch failure is
// fatal for the calling operation; retries belong to the caller.
func (p *Provider) Acquire(ctx context.Context) (interfaces.PageSession, error) {
	if p.config.Attach {
		sess, err := p.attach(ctx)
		if err == nil {
			return sess, nil
		}
		p.logger.Warn().
			Err(err).
			Str("endpoint", p.config.AttachEndpoint).
			Msg("Attach to running browser failed, launching new instance")
	}
	return p.launch(ctx)
}

// attach connects to an already-running browser via its DevTools endpoint.
// The returned session is not owned: releasing it closes only the page this
// provider opened, never the external process.
func (p *Provider) attach(ctx context.Context) (interfaces.PageSession, error) {
	allocatorCtx, allocatorCancel := chromedp.NewRemoteAllocator(ctx, p.config.AttachEndpoint)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	sess := &pageSession{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{browserCancel, allocatorCancel},
		owned:   false,
		logger:  p.logger,
	}

	if err := p.prepare(browserCtx); err != nil {
		sess.Release()
		return nil, fmt.Errorf("attached browser failed startup check: %w", err)
	}

	p.logger.Debug().
		Str("endpoint", p.config.AttachEndpoint).
		Msg("Attached to running browser")

	return sess, nil
}

// launch starts an isolated browser instance owned by the session.
func (p *Provider) launch(ctx context.Context) (interfaces.PageSession, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.config.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(p.config.WindowWidth, p.config.WindowHeight),
	)
	if p.config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(p.config.UserAgent))
	}
	if execPath := p.executablePath(); execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}
	if p.config.ProxyEnabled && p.config.ProxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(p.config.ProxyServer))
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	sess := &pageSession{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{browserCancel, allocatorCancel},
		owned:   true,
		logger:  p.logger,
	}

	if err := p.prepare(browserCtx); err != nil {
		sess.Release()
		return nil, fmt.Errorf("browser instance failed startup check: %w", err)
	}

	if p.config.requiresProxyAuth() {
		if err := p.enableProxyAuth(browserCtx); err != nil {
			sess.Release()
			return nil, fmt.Errorf("failed to enable proxy authentication: %w", err)
		}
	}

	p.logger.Debug().
		Bool("headless", p.config.Headless).
		Bool("proxy", p.config.ProxyEnabled).
		Bool("proxy_auth", p.config.requiresProxyAuth()).
		Msg("Launched browser instance")

	return sess, nil
}

// executablePath resolves the browser binary: explicit override first, then
// known install locations. Empty means chromedp's default lookup applies.
func (p *Provider) executablePath() string {
	if p.config.ExecutablePath != "" {
		return p.config.ExecutablePath
	}
	return discoverExecutable()
}

// prepare verifies the browser responds and installs the stealth init
// script so automation markers are masked on every document the session
// navigates to.
func (p *Provider) prepare(browserCtx context.Context) error {
	testCtx, cancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer cancel()

	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		return err
	}

	var title string
	if err := chromedp.Run(testCtx, chromedp.Title(&title)); err != nil {
		return err
	}

	return chromedp.Run(testCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	}))
}

// pageSession implements interfaces.PageSession. Cancel functions are run
// in order: browser context first (closes the page/tab), allocator second
// (tears down the launched process, or just the remote connection for
// attached sessions).
type pageSession struct {
	ctx      context.Context
	cancels  []context.CancelFunc
	owned    bool
	logger   arbor.ILogger
	mu       sync.Mutex
	released bool
}

func (s *pageSession) Context() context.Context {
	return s.ctx
}

func (s *pageSession) Owned() bool {
	return s.owned
}

func (s *pageSession) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	s.released = true

	for _, cancel := range s.cancels {
		cancel()
	}

	s.logger.Debug().
		Bool("owned", s.owned).
		Msg("Page session released")
}
