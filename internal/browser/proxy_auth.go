package browser

import (
	"context"

	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/chromedp"
)

// requiresProxyAuth reports whether the configured proxy needs credential
// answering. A proxy without a username authenticates nothing.
func (c Config) requiresProxyAuth() bool {
	return c.ProxyEnabled && c.ProxyServer != "" && c.ProxyUsername != ""
}

// proxyAuthResponse builds the challenge answer from the configured
// credentials.
func proxyAuthResponse(username, password string) *fetch.AuthChallengeResponse {
	return &fetch.AuthChallengeResponse{
		Response: fetch.AuthChallengeResponseResponseProvideCredentials,
		Username: username,
		Password: password,
	}
}

// enableProxyAuth turns on fetch-domain auth interception and answers
// proxy challenges with the configured credentials. Paused requests are
// continued untouched; only the auth event is acted on.
func (p *Provider) enableProxyAuth(browserCtx context.Context) error {
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *fetch.EventAuthRequired:
			if ev.AuthChallenge == nil || ev.AuthChallenge.Source != fetch.AuthChallengeSourceProxy {
				return
			}
			requestID := ev.RequestID
			go func() {
				err := chromedp.Run(browserCtx,
					fetch.ContinueWithAuth(requestID, proxyAuthResponse(p.config.ProxyUsername, p.config.ProxyPassword)),
				)
				if err != nil {
					p.logger.Debug().Err(err).Msg("Proxy auth answer failed")
				}
			}()
		case *fetch.EventRequestPaused:
			requestID := ev.RequestID
			go func() {
				if err := chromedp.Run(browserCtx, fetch.ContinueRequest(requestID)); err != nil {
					p.logger.Debug().Err(err).Msg("Request continue failed")
				}
			}()
		}
	})

	return chromedp.Run(browserCtx, fetch.Enable().WithHandleAuthRequests(true))
}
