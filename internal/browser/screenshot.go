package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
)

// CaptureScreenshot writes a diagnostic screenshot of the current page into
// dir. Best-effort: failures are logged and never returned, so a screenshot
// problem cannot mask the error that triggered it.
func CaptureScreenshot(ctx context.Context, logger arbor.ILogger, dir, label string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Debug().Err(err).Str("dir", dir).Msg("Screenshot directory unavailable")
		return
	}

	shotCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(shotCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		logger.Debug().Err(err).Str("label", label).Msg("Screenshot capture failed")
		return
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.png", label, time.Now().Format("20060102-150405")))
	if err := os.WriteFile(path, buf, 0644); err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("Screenshot write failed")
		return
	}

	logger.Info().Str("path", path).Msg("Diagnostic screenshot saved")
}
