package browser

import (
	"testing"

	"github.com/chromedp/cdproto/fetch"
	"github.com/stretchr/testify/assert"
)

func TestRequiresProxyAuth(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   bool
	}{
		{
			name:   "Disabled",
			config: Config{ProxyServer: "socks5://p:1080", ProxyUsername: "u"},
			want:   false,
		},
		{
			name:   "No Server",
			config: Config{ProxyEnabled: true, ProxyUsername: "u"},
			want:   false,
		},
		{
			name:   "No Username",
			config: Config{ProxyEnabled: true, ProxyServer: "socks5://p:1080"},
			want:   false,
		},
		{
			name: "Credentialed Proxy",
			config: Config{
				ProxyEnabled:  true,
				ProxyServer:   "socks5://p:1080",
				ProxyUsername: "u",
				ProxyPassword: "secret",
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.requiresProxyAuth())
		})
	}
}

func TestProxyAuthResponseCarriesCredentials(t *testing.T) {
	resp := proxyAuthResponse("user", "secret")

	assert.Equal(t, fetch.AuthChallengeResponseResponseProvideCredentials, resp.Response)
	assert.Equal(t, "user", resp.Username)
	assert.Equal(t, "secret", resp.Password)
}
