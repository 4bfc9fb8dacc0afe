package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/scraper"
)

var validate = validator.New()

// AuthHandler serves the synchronous pipeline endpoints: combined
// login+scrape, login-only (returns cookies), and scrape-only (accepts
// cookies).
type AuthHandler struct {
	runner interfaces.ScrapeRunner
	logger arbor.ILogger
}

// NewAuthHandler creates the pipeline endpoints handler.
func NewAuthHandler(runner interfaces.ScrapeRunner, logger arbor.ILogger) *AuthHandler {
	return &AuthHandler{runner: runner, logger: logger}
}

// LoginScrapeRequest is the combined pipeline request body. An absent
// target means scrape the account that just logged in.
type LoginScrapeRequest struct {
	Username       string `json:"username" validate:"required"`
	Password       string `json:"password" validate:"required"`
	TargetUsername string `json:"target_username"`
}

// LoginRequest is the login-only request body.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ScrapeRequest is the scrape-only request body.
type ScrapeRequest struct {
	TargetUsername string           `json:"target_username" validate:"required"`
	Cookies        models.CookieSet `json:"cookies" validate:"required,min=1"`
}

// LoginScrapeHandler runs login then scrape in one synchronous call.
// POST /api/auth/login-scrape
func (h *AuthHandler) LoginScrapeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req LoginScrapeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	target := req.TargetUsername
	if target == "" {
		target = req.Username
	}

	result, err := h.runner.LoginScrape(r.Context(), models.Credential{
		Username: req.Username,
		Password: req.Password,
	}, target)
	if err != nil {
		h.writeScraperError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// LoginHandler runs login only and returns the cookie set to the caller.
// Cookies exist only in this response; nothing is retained server-side.
// POST /api/auth/login-only
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cookies, err := h.runner.Login(r.Context(), models.Credential{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.writeScraperError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"cookies": cookies,
	})
}

// ScrapeHandler runs the scrape pipeline with caller-supplied cookies.
// POST /api/auth/scrape-only
func (h *AuthHandler) ScrapeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ScrapeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.runner.Scrape(r.Context(), req.Cookies, req.TargetUsername)
	if err != nil {
		h.writeScraperError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// writeScraperError maps classified pipeline failures onto HTTP statuses.
func (h *AuthHandler) writeScraperError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch scraper.KindOf(err) {
	case scraper.KindCaptchaBlocked:
		status = http.StatusForbidden
	case scraper.KindCredentialsRejected:
		status = http.StatusUnauthorized
	case scraper.KindRateLimited:
		status = http.StatusTooManyRequests
	case scraper.KindSessionTimeout, scraper.KindNavigation:
		status = http.StatusRequestTimeout
	case scraper.KindTargetNotFound:
		status = http.StatusNotFound
	case scraper.KindExtraction, scraper.KindMalformedState:
		status = http.StatusBadGateway
	case scraper.KindFormNotFound:
		status = http.StatusBadGateway
	case scraper.KindBrowserLaunch:
		status = http.StatusInternalServerError
	default:
		if errors.Is(err, scraper.ErrEmptyCookieSet) {
			status = http.StatusBadRequest
		}
	}

	h.logger.Warn().
		Err(err).
		Int("status", status).
		Msg("Pipeline request failed")

	response := map[string]string{
		"status": "error",
		"error":  err.Error(),
	}
	if kind := scraper.KindOf(err); kind != "" {
		response["error_kind"] = string(kind)
	}
	WriteJSON(w, status, response)
}

// decodeAndValidate parses the JSON body into dst and runs struct
// validation, writing the 400 response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}
