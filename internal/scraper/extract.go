package scraper

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// statePattern matches the inline assignment form of the state blob inside
// a script body.
var statePattern = regexp.MustCompile(`(?s)window\.SIGI_STATE\s*=\s*(\{.*?\});`)

// extractPageState locates the embedded state JSON via three strategies in
// order: the dedicated script tag, the global variable, and a raw scan over
// all script bodies. First success wins; exhausting all three is fatal.
func (s *Service) extractPageState(pctx context.Context) (string, error) {
	if raw, ok := s.extractFromScriptTag(pctx); ok {
		s.logger.Debug().Str("strategy", "script_tag").Msg("Page state extracted")
		return raw, nil
	}

	if raw, ok := s.extractFromGlobal(pctx); ok {
		s.logger.Debug().Str("strategy", "global_variable").Msg("Page state extracted")
		return raw, nil
	}

	if raw, ok := s.extractFromScriptScan(pctx); ok {
		s.logger.Debug().Str("strategy", "script_scan").Msg("Page state extracted")
		return raw, nil
	}

	return "", NewError(KindExtraction, "page state not found by any extraction strategy")
}

// extractFromScriptTag reads the dedicated state script element.
func (s *Service) extractFromScriptTag(pctx context.Context) (string, bool) {
	tctx, cancel := context.WithTimeout(pctx, 10*time.Second)
	defer cancel()

	var raw string
	script := `(() => { const el = document.getElementById('SIGI_STATE'); return el ? el.textContent : ""; })()`
	if err := chromedp.Run(tctx, chromedp.Evaluate(script, &raw)); err != nil {
		s.logger.Debug().Err(err).Msg("Script tag extraction failed")
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// extractFromGlobal waits briefly for the global state variable to appear,
// then serializes it.
func (s *Service) extractFromGlobal(pctx context.Context) (string, bool) {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		tctx, cancel := context.WithTimeout(pctx, 5*time.Second)
		var present bool
		err := chromedp.Run(tctx, chromedp.Evaluate(`typeof window.SIGI_STATE !== 'undefined'`, &present))
		cancel()
		if err != nil {
			s.logger.Debug().Err(err).Msg("Global variable probe failed")
			return "", false
		}
		if present {
			tctx, cancel := context.WithTimeout(pctx, 5*time.Second)
			var raw string
			err := chromedp.Run(tctx, chromedp.Evaluate(`JSON.stringify(window.SIGI_STATE)`, &raw))
			cancel()
			if err != nil || strings.TrimSpace(raw) == "" {
				return "", false
			}
			return raw, true
		}
		if err := s.sleep(pctx, 250*time.Millisecond); err != nil {
			return "", false
		}
	}
	return "", false
}

// extractFromScriptScan pulls the full page HTML and scans every script
// body for the inline state assignment.
func (s *Service) extractFromScriptScan(pctx context.Context) (string, bool) {
	tctx, cancel := context.WithTimeout(pctx, 10*time.Second)
	defer cancel()

	var html string
	if err := chromedp.Run(tctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		s.logger.Debug().Err(err).Msg("Full page HTML retrieval failed")
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		s.logger.Debug().Err(err).Msg("Page HTML parse failed")
		return "", false
	}

	var raw string
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if m := statePattern.FindStringSubmatch(sel.Text()); m != nil {
			raw = m[1]
			return false
		}
		return true
	})

	return raw, raw != ""
}
