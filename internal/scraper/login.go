package scraper

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/ternarybob/specto/internal/browser"
	"github.com/ternarybob/specto/internal/models"
)

// Login drives a page session through credential entry and submission and
// returns the authenticated cookie set. The returned set always contains at
// least one recognized session cookie.
//
// State sequence: navigate login surface -> locate form -> enter
// credentials -> submit -> await session cookie. Captcha/verification walls
// and rejected credentials are terminal and never retried here.
func (s *Service) Login(ctx context.Context, cred models.Credential) (models.CookieSet, error) {
	sess, err := s.provider.Acquire(ctx)
	if err != nil {
		return nil, WrapError(KindBrowserLaunch, "failed to acquire browser session", err)
	}
	defer sess.Release()

	pctx := sess.Context()

	cookies, err := s.runLogin(pctx, cred)
	if err != nil {
		browser.CaptureScreenshot(pctx, s.logger, s.config.ScreenshotDir, "login-failed")
		return nil, err
	}

	// Cookie names only; values are session tokens and never logged
	s.logger.Info().
		Str("username", cred.Username).
		Int("cookie_count", len(cookies)).
		Strs("cookie_names", cookies.Names()).
		Msg("Login succeeded")

	return cookies, nil
}

func (s *Service) runLogin(pctx context.Context, cred models.Credential) (models.CookieSet, error) {
	cookies, err := s.navigateLoginSurface(pctx)
	if err != nil {
		return nil, err
	}
	if cookies != nil {
		// A session cookie was already present on the login surface.
		return cookies, nil
	}

	if err := s.fillLoginForm(pctx, cred); err != nil {
		return nil, err
	}

	s.submitLoginForm(pctx)

	return s.awaitSessionCookie(pctx, cred.Username)
}

// navigateLoginSurface tries the ordered login URL list and stops on the
// first usable surface. Returns a non-nil cookie set if the browser turns
// out to be authenticated already.
func (s *Service) navigateLoginSurface(pctx context.Context) (models.CookieSet, error) {
	for _, loginURL := range loginURLs {
		tctx, cancel := context.WithTimeout(pctx, s.config.NavigationTimeout)
		err := chromedp.Run(tctx, chromedp.Navigate(loginURL))
		cancel()
		if err != nil {
			s.logger.Debug().Err(err).Str("url", loginURL).Msg("Login URL failed to load")
			continue
		}

		if set, err := s.currentCookies(pctx); err == nil && HasSessionCookie(set) {
			s.logger.Info().Str("url", loginURL).Msg("Already authenticated, session cookie present")
			return set, nil
		}

		if s.probeSelector(pctx, `input[name="email"], input[name="username"], input[type="password"]`) {
			s.logger.Debug().Str("url", loginURL).Msg("Login form found")
			return nil, nil
		}

		// Non-login surface loaded; follow a login entry point if one exists.
		if s.clickSelector(pctx, loginLinkSelector) {
			s.logger.Debug().Str("url", loginURL).Msg("Followed login link")
			s.sleep(pctx, 2*time.Second)
			return nil, nil
		}

		s.logger.Debug().Str("url", loginURL).Msg("Page loaded but no login surface found")
	}

	return nil, NewError(KindNavigation, "no login surface reachable; network block or site change suspected")
}

// fillLoginForm probes the candidate selector lists and types the
// credentials. When either field is missing it clicks one alternate-method
// control and re-probes once before failing.
func (s *Service) fillLoginForm(pctx context.Context, cred models.Credential) error {
	typedUser := s.typeIntoFirst(pctx, usernameSelectors, cred.Username)
	typedPass := s.typeIntoFirst(pctx, passwordSelectors, cred.Password)

	if !typedUser || !typedPass {
		s.logger.Debug().
			Bool("username_typed", typedUser).
			Bool("password_typed", typedPass).
			Msg("Form fields incomplete, trying alternate login surface")

		for _, xpath := range altLoginXPaths {
			if s.clickXPath(pctx, xpath) {
				s.sleep(pctx, 2*time.Second)
				break
			}
		}

		typedUser = s.typeIntoFirst(pctx, usernameSelectors, cred.Username) || typedUser
		typedPass = s.typeIntoFirst(pctx, passwordSelectors, cred.Password) || typedPass
	}

	if !typedUser || !typedPass {
		return NewError(KindFormNotFound, "login form fields not found after fallback")
	}
	return nil
}

// submitLoginForm presses Enter in the password field, then falls back to
// one submit-control click if the form is still visible.
func (s *Service) submitLoginForm(pctx context.Context) {
	if sel, ok := s.firstPresent(pctx, passwordSelectors); ok {
		tctx, cancel := context.WithTimeout(pctx, 5*time.Second)
		if err := chromedp.Run(tctx, chromedp.SendKeys(sel, kb.Enter, chromedp.ByQuery)); err != nil {
			s.logger.Debug().Err(err).Msg("Enter key submission failed")
		}
		cancel()
	}

	s.sleep(pctx, 500*time.Millisecond)

	// Form gone means Enter worked; otherwise take the one allowed click.
	if _, stillVisible := s.firstPresent(pctx, passwordSelectors); !stillVisible {
		return
	}
	for _, sel := range submitSelectors {
		if s.clickSelector(pctx, sel) {
			s.logger.Debug().Str("selector", sel).Msg("Clicked submit control")
			return
		}
	}
}

// awaitSessionCookie polls for a recognized session cookie, inspecting
// visible page text each round for verification walls and credential
// rejection. When the polling budget runs out, one fallback navigation to
// the user's own profile URL is attempted before declaring timeout.
func (s *Service) awaitSessionCookie(pctx context.Context, username string) (models.CookieSet, error) {
	deadline := time.Now().Add(s.config.LoginTimeout)

	for time.Now().Before(deadline) {
		set, err := s.currentCookies(pctx)
		if err == nil && HasSessionCookie(set) {
			cookie, _ := FindSessionCookie(set)
			s.logger.Debug().Str("cookie_name", cookie.Name).Msg("Session cookie found")
			return set, nil
		}

		bodyText := s.bodyText(pctx)
		if captchaPattern.MatchString(bodyText) {
			return nil, NewError(KindCaptchaBlocked, "verification or captcha step displayed; manual interaction required")
		}
		if rejectionPattern.MatchString(bodyText) {
			return nil, NewError(KindCredentialsRejected, "credentials rejected or account locked")
		}

		if err := s.sleep(pctx, s.config.PollInterval); err != nil {
			return nil, WrapError(KindSessionTimeout, "login cancelled while polling for session cookie", err)
		}
	}

	// Fallback: visiting the user's own profile sometimes coaxes the cookie.
	s.logger.Debug().Msg("Polling budget exhausted, trying profile navigation fallback")
	tctx, cancel := context.WithTimeout(pctx, 8*time.Second)
	navErr := chromedp.Run(tctx, chromedp.Navigate("https://www.tiktok.com/@"+url.PathEscape(username)))
	cancel()
	if navErr == nil {
		if set, err := s.currentCookies(pctx); err == nil && HasSessionCookie(set) {
			return set, nil
		}
	}

	return nil, NewError(KindSessionTimeout, "login did not produce a session cookie within the timeout")
}

// currentCookies reads all cookies visible to the page session.
func (s *Service) currentCookies(pctx context.Context) (models.CookieSet, error) {
	tctx, cancel := context.WithTimeout(pctx, 10*time.Second)
	defer cancel()

	var cdpCookies []*network.Cookie
	err := chromedp.Run(tctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cdpCookies, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}

	set := make(models.CookieSet, 0, len(cdpCookies))
	for _, c := range cdpCookies {
		set = append(set, models.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: string(c.SameSite),
		})
	}
	return set, nil
}

// probeSelector reports whether any element matches the selector, without
// waiting for one to appear.
func (s *Service) probeSelector(pctx context.Context, sel string) bool {
	tctx, cancel := context.WithTimeout(pctx, 5*time.Second)
	defer cancel()

	var found bool
	script := fmt.Sprintf(`document.querySelector(%q) !== null`, sel)
	if err := chromedp.Run(tctx, chromedp.Evaluate(script, &found)); err != nil {
		return false
	}
	return found
}

// firstPresent returns the first selector from the candidate list that
// matches an element on the page.
func (s *Service) firstPresent(pctx context.Context, selectors []string) (string, bool) {
	for _, sel := range selectors {
		if s.probeSelector(pctx, sel) {
			return sel, true
		}
	}
	return "", false
}

// typeIntoFirst clears and types into the first matching candidate field.
// Missing selectors are absorbed locally; only total failure is reported.
func (s *Service) typeIntoFirst(pctx context.Context, selectors []string, value string) bool {
	sel, ok := s.firstPresent(pctx, selectors)
	if !ok {
		return false
	}

	tctx, cancel := context.WithTimeout(pctx, 15*time.Second)
	defer cancel()

	err := chromedp.Run(tctx,
		chromedp.Click(sel, chromedp.ByQuery),
		chromedp.SetValue(sel, "", chromedp.ByQuery),
		chromedp.SendKeys(sel, value, chromedp.ByQuery),
	)
	if err != nil {
		s.logger.Debug().Err(err).Str("selector", sel).Msg("Typing into field failed")
		return false
	}
	return true
}

// clickSelector clicks the first element matching a CSS selector. Returns
// false when nothing matched.
func (s *Service) clickSelector(pctx context.Context, sel string) bool {
	tctx, cancel := context.WithTimeout(pctx, 5*time.Second)
	defer cancel()

	var clicked bool
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); if (el) { el.click(); return true; } return false; })()`, sel)
	if err := chromedp.Run(tctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return false
	}
	return clicked
}

// clickXPath clicks the first element matching an XPath expression.
func (s *Service) clickXPath(pctx context.Context, xpath string) bool {
	tctx, cancel := context.WithTimeout(pctx, 5*time.Second)
	defer cancel()

	var clicked bool
	script := fmt.Sprintf(
		`(() => {
			const r = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null);
			if (r.singleNodeValue) { r.singleNodeValue.click(); return true; }
			return false;
		})()`, xpath)
	if err := chromedp.Run(tctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return false
	}
	return clicked
}

// bodyText returns the page's visible text, empty on any failure.
func (s *Service) bodyText(pctx context.Context) string {
	tctx, cancel := context.WithTimeout(pctx, 5*time.Second)
	defer cancel()

	var text string
	if err := chromedp.Run(tctx, chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text)); err != nil {
		return ""
	}
	return text
}

// sleep waits for the duration or until the context is done.
func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
