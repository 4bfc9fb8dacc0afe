package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/handlers"
)

// Handlers bundles the endpoint handlers the router wires up.
type Handlers struct {
	API  *handlers.APIHandler
	Auth *handlers.AuthHandler
	Job  *handlers.JobHandler
	User *handlers.UserHandler
	WS   *handlers.WebSocketHandler
}

// Server manages the HTTP server and routes.
type Server struct {
	handlers Handlers
	logger   arbor.ILogger
	router   *http.ServeMux
	server   *http.Server
}

// New creates the HTTP server. Pipeline calls hold the connection open for
// the whole browser flow, so the write timeout must exceed the login and
// navigation ceilings combined.
func New(host string, port int, h Handlers, logger arbor.ILogger) *Server {
	s := &Server{
		handlers: h,
		logger:   logger,
	}

	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", host, port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withConditionalMiddleware(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	s.logger.Info().
		Str("address", s.server.Addr).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}
