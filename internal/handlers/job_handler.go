package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/services/jobs"
)

// JobHandler serves the async job endpoints.
type JobHandler struct {
	manager *jobs.Manager
	logger  arbor.ILogger
}

// NewJobHandler creates the job endpoints handler.
func NewJobHandler(manager *jobs.Manager, logger arbor.ILogger) *JobHandler {
	return &JobHandler{manager: manager, logger: logger}
}

// SubmitJobRequest is the async submission body. An absent target means
// scrape the account that logs in.
type SubmitJobRequest struct {
	Username       string `json:"username" validate:"required"`
	Password       string `json:"password" validate:"required"`
	TargetUsername string `json:"target_username"`
}

// SubmitJobHandler registers an async login+scrape job and returns its
// snapshot immediately with 202.
// POST /api/jobs
func (h *JobHandler) SubmitJobHandler(w http.ResponseWriter, r *http.Request) {
	var req SubmitJobRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	target := strings.TrimPrefix(strings.TrimSpace(req.TargetUsername), "@")
	if target == "" {
		target = req.Username
	}

	job, err := h.manager.Submit(models.Credential{
		Username: req.Username,
		Password: req.Password,
	}, target)
	if err != nil {
		h.logger.Error().Err(err).Msg("Job submission failed")
		WriteError(w, http.StatusInternalServerError, "Failed to submit job")
		return
	}

	WriteJSON(w, http.StatusAccepted, job)
}

// ListJobsHandler returns snapshots of all registered jobs, newest first.
// GET /api/jobs
func (h *JobHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	list := h.manager.List()
	WriteJSON(w, http.StatusOK, map[string]any{
		"jobs":  list,
		"count": len(list),
	})
}

// JobsHandler dispatches the collection route by method.
func (h *JobHandler) JobsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.SubmitJobHandler(w, r)
	case http.MethodGet:
		h.ListJobsHandler(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// JobByIDHandler dispatches /api/jobs/{id} by method: GET returns the
// snapshot, DELETE removes a terminal job from the registry.
func (h *JobHandler) JobByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "Invalid job id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getJob(w, id)
	case http.MethodDelete:
		h.deleteJob(w, id)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *JobHandler) getJob(w http.ResponseWriter, id string) {
	job, err := h.manager.Get(id)
	if err != nil {
		if errors.Is(err, interfaces.ErrJobNotFound) {
			WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.Error().Err(err).Str("job_id", id).Msg("Job lookup failed")
		WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

func (h *JobHandler) deleteJob(w http.ResponseWriter, id string) {
	if err := h.manager.Delete(id); err != nil {
		switch {
		case errors.Is(err, interfaces.ErrJobNotFound):
			WriteError(w, http.StatusNotFound, "Job not found")
		case errors.Is(err, jobs.ErrJobNotTerminal):
			WriteError(w, http.StatusConflict, "Job is still in progress")
		default:
			h.logger.Error().Err(err).Str("job_id", id).Msg("Job delete failed")
			WriteError(w, http.StatusInternalServerError, "Failed to delete job")
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"id":     id,
	})
}
