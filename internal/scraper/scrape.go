package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/ternarybob/specto/internal/browser"
	"github.com/ternarybob/specto/internal/models"
)

// targetDomain is the default cookie domain applied to entries without one.
const targetDomain = ".tiktok.com"

// ErrEmptyCookieSet is returned when scrape is called without cookies.
var ErrEmptyCookieSet = errors.New("cookie set is empty")

// Scrape navigates to the target's profile with the supplied session
// cookies, extracts the embedded page state and returns the normalized
// result. The page session is released on all exit paths.
func (s *Service) Scrape(ctx context.Context, cookies models.CookieSet, target string) (*models.ScrapeResult, error) {
	if len(cookies) == 0 {
		return nil, ErrEmptyCookieSet
	}
	target = strings.TrimPrefix(strings.TrimSpace(target), "@")
	if target == "" {
		return nil, errors.New("target username is required")
	}

	sess, err := s.provider.Acquire(ctx)
	if err != nil {
		return nil, WrapError(KindBrowserLaunch, "failed to acquire browser session", err)
	}
	defer sess.Release()

	pctx := sess.Context()

	result, err := s.runScrape(pctx, cookies, target)
	if err != nil {
		browser.CaptureScreenshot(pctx, s.logger, s.config.ScreenshotDir, "scrape-failed")
		return nil, err
	}

	s.logger.Info().
		Str("target", target).
		Str("matched", result.Profile.UniqueID).
		Int("videos", len(result.Videos)).
		Bool("degraded_match", result.DegradedMatch).
		Msg("Scrape succeeded")

	return result, nil
}

func (s *Service) runScrape(pctx context.Context, cookies models.CookieSet, target string) (*models.ScrapeResult, error) {
	if err := s.injectCookies(pctx, cookies); err != nil {
		return nil, err
	}

	if err := s.navigateProfile(pctx, target); err != nil {
		return nil, err
	}

	raw, err := s.extractPageState(pctx)
	if err != nil {
		return nil, err
	}

	var state models.PageState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, WrapError(KindMalformedState, "page state is not valid JSON", err)
	}

	result, err := projectResult(&state, target)
	if err != nil {
		return nil, err
	}
	if result.DegradedMatch {
		s.logger.Warn().
			Str("requested", target).
			Str("matched", result.Profile.UniqueID).
			Msg("No profile matched the requested identifier; fell back to first available profile")
	}

	result.ScrapedAt = time.Now()
	result.RawState = json.RawMessage(raw)
	return result, nil
}

// injectCookies installs the session cookies into the page session,
// defaulting missing domains to the target site's.
func (s *Service) injectCookies(pctx context.Context, cookies models.CookieSet) error {
	tctx, cancel := context.WithTimeout(pctx, 30*time.Second)
	defer cancel()

	if err := chromedp.Run(tctx, network.Enable()); err != nil {
		return WrapError(KindBrowserLaunch, "failed to enable network domain", err)
	}

	err := chromedp.Run(tctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			domain := c.Domain
			if domain == "" {
				domain = targetDomain
			}
			// Leading dot trips the DevTools cookie API
			domain = strings.TrimPrefix(domain, ".")

			path := c.Path
			if path == "" {
				path = "/"
			}

			param := network.SetCookie(c.Name, c.Value).
				WithDomain(domain).
				WithPath(path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly)

			if c.Expires > 0 {
				expiry := time.Unix(int64(c.Expires), 0)
				if expiry.After(time.Now()) {
					e := cdp.TimeSinceEpoch(expiry)
					param = param.WithExpires(&e)
				}
			}

			switch strings.ToLower(c.SameSite) {
			case "strict":
				param = param.WithSameSite(network.CookieSameSiteStrict)
			case "lax":
				param = param.WithSameSite(network.CookieSameSiteLax)
			case "none":
				param = param.WithSameSite(network.CookieSameSiteNone)
			}

			if err := param.Do(ctx); err != nil {
				s.logger.Debug().
					Err(err).
					Str("cookie_name", c.Name).
					Str("domain", domain).
					Msg("Cookie injection failed")
			}
		}
		return nil
	}))
	if err != nil {
		return WrapError(KindBrowserLaunch, "cookie injection failed", err)
	}

	s.logger.Debug().
		Int("cookie_count", len(cookies)).
		Msg("Cookies injected into page session")
	return nil
}

// navigateProfile loads the target's profile page with bounded retry.
// Response status classification is best-effort: 404 means the target does
// not exist, 429 means rate limiting; server errors and transport failures
// are retried up to the attempt budget.
func (s *Service) navigateProfile(pctx context.Context, target string) error {
	profileURL := "https://www.tiktok.com/@" + url.PathEscape(target)

	var lastErr error
	for attempt := 1; attempt <= s.config.MaxNavAttempts; attempt++ {
		tctx, cancel := context.WithTimeout(pctx, s.config.NavigationTimeout)
		resp, err := chromedp.RunResponse(tctx, chromedp.Navigate(profileURL))
		cancel()

		if err == nil {
			if resp != nil {
				switch {
				case resp.Status == 404:
					return NewError(KindTargetNotFound, fmt.Sprintf("profile page for %q returned 404", target))
				case resp.Status == 429:
					return NewError(KindRateLimited, "profile page returned 429, rate limited by site")
				case resp.Status >= 500:
					lastErr = fmt.Errorf("profile page returned status %d", resp.Status)
				default:
					return nil
				}
			} else {
				return nil
			}
		} else {
			lastErr = err
		}

		s.logger.Debug().
			Err(lastErr).
			Int("attempt", attempt).
			Int("max_attempts", s.config.MaxNavAttempts).
			Str("url", profileURL).
			Msg("Profile navigation attempt failed")

		if attempt < s.config.MaxNavAttempts {
			if err := s.sleep(pctx, s.config.NavRetryDelay); err != nil {
				return WrapError(KindNavigation, "navigation cancelled", err)
			}
		}
	}

	return WrapError(KindNavigation,
		fmt.Sprintf("profile navigation failed after %d attempts", s.config.MaxNavAttempts), lastErr)
}
