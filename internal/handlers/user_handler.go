package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
)

// UserHandler serves persisted profile and video data.
type UserHandler struct {
	profiles interfaces.ProfileStorage
	videos   interfaces.VideoStorage
	logger   arbor.ILogger
}

// NewUserHandler creates the persisted-data endpoints handler.
func NewUserHandler(profiles interfaces.ProfileStorage, videos interfaces.VideoStorage, logger arbor.ILogger) *UserHandler {
	return &UserHandler{profiles: profiles, videos: videos, logger: logger}
}

// ListUsersHandler returns a page of stored profiles ordered by most
// recent scrape.
// GET /api/users?limit=&offset=
func (h *UserHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit, offset := GetPaginationParams(r)

	profiles, err := h.profiles.ListProfiles(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("Profile listing failed")
		WriteError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	total, err := h.profiles.CountProfiles(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Profile count failed")
		WriteError(w, http.StatusInternalServerError, "Failed to count profiles")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"profiles": profiles,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetUserHandler returns one stored profile with its videos.
// GET /api/users/{unique_id}
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	uniqueID := strings.TrimPrefix(r.URL.Path, "/api/users/")
	if uniqueID == "" || strings.Contains(uniqueID, "/") {
		WriteError(w, http.StatusBadRequest, "Invalid username")
		return
	}

	profile, err := h.profiles.GetProfileByUniqueID(r.Context(), uniqueID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Profile not found")
			return
		}
		h.logger.Error().Err(err).Str("unique_id", uniqueID).Msg("Profile lookup failed")
		WriteError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	videos, err := h.videos.ListVideosByProfile(r.Context(), profile.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("unique_id", uniqueID).Msg("Video listing failed")
		WriteError(w, http.StatusInternalServerError, "Failed to list videos")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"profile": profile,
		"videos":  videos,
	})
}
