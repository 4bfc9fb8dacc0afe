package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Browser BrowserConfig `toml:"browser"`
	Login   LoginConfig   `toml:"login"`
	Scrape  ScrapeConfig  `toml:"scrape"`
	Storage StorageConfig `toml:"storage"`
	Jobs    JobsConfig    `toml:"jobs"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// BrowserConfig holds browser session settings.
type BrowserConfig struct {
	Headless          bool        `toml:"headless"`
	ExecutablePath    string      `toml:"executable_path"` // empty = discover known install locations
	Attach            bool        `toml:"attach"`
	AttachEndpoint    string      `toml:"attach_endpoint"` // DevTools endpoint, e.g. http://127.0.0.1:9222
	NavigationTimeout string      `toml:"navigation_timeout"`
	UserAgent         string      `toml:"user_agent"`
	WindowWidth       int         `toml:"window_width"`
	WindowHeight      int         `toml:"window_height"`
	Proxy             ProxyConfig `toml:"proxy"`
}

// ProxyConfig holds optional proxy settings for launched browsers.
type ProxyConfig struct {
	Enabled  bool   `toml:"enabled"`
	Server   string `toml:"server"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// LoginConfig holds login state machine settings.
type LoginConfig struct {
	Timeout      string `toml:"timeout"`       // overall ceiling for one login attempt
	PollInterval string `toml:"poll_interval"` // session-cookie polling interval
}

// ScrapeConfig holds scrape pipeline settings.
type ScrapeConfig struct {
	MaxNavAttempts     int    `toml:"max_nav_attempts"`
	NavRetryDelay      string `toml:"nav_retry_delay"`
	RateLimitPerMinute int    `toml:"rate_limit_per_minute"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path"`
	BadgerDir  string `toml:"badger_dir"`
	Snapshots  bool   `toml:"snapshots"` // archive raw page state per scrape
}

// JobsConfig holds async job registry settings.
type JobsConfig struct {
	Retention        string `toml:"retention"`         // terminal jobs older than this are evicted
	EvictionSchedule string `toml:"eviction_schedule"` // cron expression
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string   `toml:"level"`
	Output []string `toml:"output"` // "console", "file"
}

// NewDefaultConfig returns a config with sensible defaults applied.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8085,
		},
		Browser: BrowserConfig{
			Headless:          true,
			NavigationTimeout: "60s",
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			WindowWidth:       1920,
			WindowHeight:      1080,
			AttachEndpoint:    "http://127.0.0.1:9222",
		},
		Login: LoginConfig{
			Timeout:      "60s",
			PollInterval: "1s",
		},
		Scrape: ScrapeConfig{
			MaxNavAttempts:     3,
			NavRetryDelay:      "2s",
			RateLimitPerMinute: 6,
		},
		Storage: StorageConfig{
			SQLitePath: "./data/specto.db",
			BadgerDir:  "./data/snapshots",
			Snapshots:  true,
		},
		Jobs: JobsConfig{
			Retention:        "1h",
			EvictionSchedule: "*/5 * * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"console", "file"},
		},
	}
}

// LoadFromFiles loads configuration with precedence:
// defaults -> file1 -> file2 -> ... -> environment variables.
// Later files override earlier ones; env overrides all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// ApplyFlagOverrides applies command-line flag values (highest priority).
// Zero values mean the flag was not supplied.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies SPECTO_* environment variables over the loaded
// configuration.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SPECTO_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("SPECTO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("SPECTO_HEADLESS"); v != "" {
		if headless, err := strconv.ParseBool(v); err == nil {
			config.Browser.Headless = headless
		}
	}
	if v := os.Getenv("SPECTO_BROWSER_PATH"); v != "" {
		config.Browser.ExecutablePath = v
	}
	if v := os.Getenv("SPECTO_BROWSER_ATTACH"); v != "" {
		if attach, err := strconv.ParseBool(v); err == nil {
			config.Browser.Attach = attach
		}
	}
	if v := os.Getenv("SPECTO_BROWSER_ATTACH_ENDPOINT"); v != "" {
		config.Browser.AttachEndpoint = v
	}
	if v := os.Getenv("SPECTO_NAVIGATION_TIMEOUT"); v != "" {
		if _, err := time.ParseDuration(v); err == nil {
			config.Browser.NavigationTimeout = v
		}
	}
	if v := os.Getenv("SPECTO_PROXY_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			config.Browser.Proxy.Enabled = enabled
		}
	}
	if v := os.Getenv("SPECTO_PROXY_SERVER"); v != "" {
		config.Browser.Proxy.Server = v
	}
	if v := os.Getenv("SPECTO_PROXY_USERNAME"); v != "" {
		config.Browser.Proxy.Username = v
	}
	if v := os.Getenv("SPECTO_PROXY_PASSWORD"); v != "" {
		config.Browser.Proxy.Password = v
	}
	if v := os.Getenv("SPECTO_LOGIN_TIMEOUT"); v != "" {
		if _, err := time.ParseDuration(v); err == nil {
			config.Login.Timeout = v
		}
	}
	if v := os.Getenv("SPECTO_SQLITE_PATH"); v != "" {
		config.Storage.SQLitePath = v
	}
	if v := os.Getenv("SPECTO_BADGER_DIR"); v != "" {
		config.Storage.BadgerDir = v
	}
	if v := os.Getenv("SPECTO_SNAPSHOTS"); v != "" {
		if snapshots, err := strconv.ParseBool(v); err == nil {
			config.Storage.Snapshots = snapshots
		}
	}
	if v := os.Getenv("SPECTO_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// NavigationTimeoutDuration returns the parsed navigation timeout ceiling,
// falling back to 60s on a missing or malformed value.
func (c *BrowserConfig) NavigationTimeoutDuration() time.Duration {
	return parseDurationOr(c.NavigationTimeout, 60*time.Second)
}

// TimeoutDuration returns the parsed login timeout ceiling.
func (c *LoginConfig) TimeoutDuration() time.Duration {
	return parseDurationOr(c.Timeout, 60*time.Second)
}

// PollIntervalDuration returns the parsed cookie polling interval.
func (c *LoginConfig) PollIntervalDuration() time.Duration {
	return parseDurationOr(c.PollInterval, time.Second)
}

// NavRetryDelayDuration returns the parsed delay between navigation retries.
func (c *ScrapeConfig) NavRetryDelayDuration() time.Duration {
	return parseDurationOr(c.NavRetryDelay, 2*time.Second)
}

// RetentionDuration returns the parsed terminal-job retention window.
func (c *JobsConfig) RetentionDuration() time.Duration {
	return parseDurationOr(c.Retention, time.Hour)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
