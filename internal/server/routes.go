package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (job status push)
	mux.HandleFunc("/ws", s.handlers.WS.HandleWebSocket)

	// API routes - Synchronous pipelines
	mux.HandleFunc("/api/auth/login-scrape", s.handlers.Auth.LoginScrapeHandler) // POST - login then scrape
	mux.HandleFunc("/api/auth/login-only", s.handlers.Auth.LoginHandler)         // POST - login, return cookies
	mux.HandleFunc("/api/auth/scrape-only", s.handlers.Auth.ScrapeHandler)       // POST - scrape with supplied cookies

	// API routes - Async jobs
	mux.HandleFunc("/api/jobs", s.handlers.Job.JobsHandler)     // POST (submit), GET (list)
	mux.HandleFunc("/api/jobs/", s.handlers.Job.JobByIDHandler) // GET/DELETE /{id}

	// API routes - Persisted data
	mux.HandleFunc("/api/users", s.handlers.User.ListUsersHandler) // GET - list profiles
	mux.HandleFunc("/api/users/", s.handlers.User.GetUserHandler)  // GET /{unique_id} with videos

	// API routes - System
	mux.HandleFunc("/api/version", s.handlers.API.VersionHandler)
	mux.HandleFunc("/api/health", s.handlers.API.HealthHandler)
	mux.HandleFunc("/health", s.handlers.API.HealthHandler)
	mux.HandleFunc("/version", s.handlers.API.VersionHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handlers.API.NotFoundHandler)

	return mux
}
