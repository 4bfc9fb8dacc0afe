package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/services/jobs"
)

func newTestJobHandler(runner *stubRunner) *JobHandler {
	manager := jobs.NewManager(jobs.NewMemoryStore(), runner, jobs.Config{}, arbor.NewLogger())
	return NewJobHandler(manager, arbor.NewLogger())
}

func TestSubmitJobReturnsAccepted(t *testing.T) {
	h := newTestJobHandler(&stubRunner{
		result: &models.ScrapeResult{Profile: models.Profile{UniqueID: "t"}},
	})

	rec := postJSON(t, h.JobsHandler, "/api/jobs",
		`{"username":"u","password":"p","target_username":"@t"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var job models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.NotEmpty(t, job.ID)
	// Leading @ is stripped at the boundary
	assert.Equal(t, "t", job.TargetUsername)
}

func TestSubmitJobValidation(t *testing.T) {
	h := newTestJobHandler(&stubRunner{})

	rec := postJSON(t, h.JobsHandler, "/api/jobs", `{"username":"u"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJobByPath(t *testing.T) {
	h := newTestJobHandler(&stubRunner{
		result: &models.ScrapeResult{Profile: models.Profile{UniqueID: "t"}},
	})

	rec := postJSON(t, h.JobsHandler, "/api/jobs",
		`{"username":"u","password":"p","target_username":"t"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var submitted models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+submitted.ID, nil)
	getRec := httptest.NewRecorder()
	h.JobByIDHandler(getRec, req)

	require.Equal(t, http.StatusOK, getRec.Code)

	var job models.Job
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &job))
	assert.Equal(t, submitted.ID, job.ID)
}

func TestGetJobUnknownID(t *testing.T) {
	h := newTestJobHandler(&stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil)
	rec := httptest.NewRecorder()
	h.JobByIDHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteJob(t *testing.T) {
	h := newTestJobHandler(&stubRunner{
		result: &models.ScrapeResult{Profile: models.Profile{UniqueID: "t"}},
	})

	rec := postJSON(t, h.JobsHandler, "/api/jobs",
		`{"username":"u","password":"p","target_username":"t"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var submitted models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))

	// Wait for the background flow to finish before deleting
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := h.manager.Get(submitted.ID)
		require.NoError(t, err)
		if job.IsTerminal() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/jobs/"+submitted.ID, nil)
	delRec := httptest.NewRecorder()
	h.JobByIDHandler(delRec, req)
	require.Equal(t, http.StatusOK, delRec.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/api/jobs/"+submitted.ID, nil)
	getRec := httptest.NewRecorder()
	h.JobByIDHandler(getRec, getReq)
	assert.Equal(t, http.StatusNotFound, getRec.Code)
}

func TestListJobs(t *testing.T) {
	h := newTestJobHandler(&stubRunner{
		result: &models.ScrapeResult{Profile: models.Profile{UniqueID: "t"}},
	})

	rec := postJSON(t, h.JobsHandler, "/api/jobs",
		`{"username":"u","password":"p","target_username":"t"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	listRec := httptest.NewRecorder()
	h.JobsHandler(listRec, req)

	require.Equal(t, http.StatusOK, listRec.Code)

	var body struct {
		Jobs  []models.Job `json:"jobs"`
		Count int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
}
