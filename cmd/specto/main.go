package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/browser"
	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/handlers"
	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/scraper"
	"github.com/ternarybob/specto/internal/server"
	"github.com/ternarybob/specto/internal/services/jobs"
	"github.com/ternarybob/specto/internal/services/scrape"
	"github.com/ternarybob/specto/internal/storage/badger"
	"github.com/ternarybob/specto/internal/storage/sqlite"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Specto version %s\n", common.GetVersion())
		os.Exit(0)
	}

	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> files -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	var err error

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("specto.toml"); err == nil {
			configFiles = append(configFiles, "specto.toml")
		}
	}

	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, finalPort, *serverHost)

	logger = common.InitLogger(config)

	common.PrintBanner(common.LoadVersionFromFile())

	logger.Info().
		Strs("config_files", configFiles).
		Int("port", config.Server.Port).
		Str("host", config.Server.Host).
		Str("log_level", config.Logging.Level).
		Msg("Application configuration loaded")

	// Relational store for normalized results
	conn, err := sqlite.NewConnection(config.Storage.SQLitePath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	defer conn.Close()

	profileStorage := sqlite.NewProfileStorage(conn, logger)
	videoStorage := sqlite.NewVideoStorage(conn, logger)

	// Snapshot archive is optional; disabled config skips the store entirely
	var snapshotStorage *badger.SnapshotStorage
	if config.Storage.Snapshots {
		kvConn, err := badger.NewConnection(config.Storage.BadgerDir, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to open snapshot store")
		}
		defer kvConn.Close()
		snapshotStorage = badger.NewSnapshotStorage(kvConn, logger)
	}

	// Browser automation core
	provider := browser.NewProvider(browser.Config{
		Headless:          config.Browser.Headless,
		ExecutablePath:    config.Browser.ExecutablePath,
		Attach:            config.Browser.Attach,
		AttachEndpoint:    config.Browser.AttachEndpoint,
		NavigationTimeout: config.Browser.NavigationTimeoutDuration(),
		UserAgent:         config.Browser.UserAgent,
		WindowWidth:       config.Browser.WindowWidth,
		WindowHeight:      config.Browser.WindowHeight,
		ProxyEnabled:      config.Browser.Proxy.Enabled,
		ProxyServer:       config.Browser.Proxy.Server,
		ProxyUsername:     config.Browser.Proxy.Username,
		ProxyPassword:     config.Browser.Proxy.Password,
	}, logger)

	scraperService := scraper.NewService(provider, scraper.Config{
		LoginTimeout:      config.Login.TimeoutDuration(),
		PollInterval:      config.Login.PollIntervalDuration(),
		NavigationTimeout: config.Browser.NavigationTimeoutDuration(),
		MaxNavAttempts:    config.Scrape.MaxNavAttempts,
		NavRetryDelay:     config.Scrape.NavRetryDelayDuration(),
	}, logger)

	// Orchestration over the core: rate limit, persistence, archival.
	// The typed-nil check matters: assigning a nil *SnapshotStorage to the
	// interface would defeat the service's nil guard.
	var snapshots interfaces.SnapshotStore
	if snapshotStorage != nil {
		snapshots = snapshotStorage
	}
	scrapeService := scrape.NewService(scraperService, profileStorage, videoStorage, snapshots, scrape.Config{
		RateLimitPerMinute: config.Scrape.RateLimitPerMinute,
		Snapshots:          config.Storage.Snapshots,
	}, logger)

	// Async job registry
	jobStore := jobs.NewMemoryStore()
	jobManager := jobs.NewManager(jobStore, scrapeService, jobs.Config{
		Retention:        config.Jobs.RetentionDuration(),
		EvictionSchedule: config.Jobs.EvictionSchedule,
	}, logger)

	wsHandler := handlers.NewWebSocketHandler(logger)
	jobManager.SetNotify(wsHandler.BroadcastJobUpdate)

	if err := jobManager.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start job manager")
	}
	defer jobManager.Stop()

	srv := server.New(config.Server.Host, config.Server.Port, server.Handlers{
		API:  handlers.NewAPIHandler(logger),
		Auth: handlers.NewAuthHandler(scrapeService, logger),
		Job:  handlers.NewJobHandler(jobManager, logger),
		User: handlers.NewUserHandler(profileStorage, videoStorage, logger),
		WS:   wsHandler,
	}, logger)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Fatal().Str("panic", fmt.Sprintf("%v", r)).Msg("Server goroutine panicked")
			}
		}()

		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Give goroutine a moment to start
	time.Sleep(100 * time.Millisecond)

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("Interrupt signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
}
