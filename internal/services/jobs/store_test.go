package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

func newJob(id string, status models.JobStatus, updatedAt time.Time) *models.Job {
	return &models.Job{
		ID:             id,
		Status:         status,
		TargetUsername: "someone",
		CreatedAt:      updatedAt,
		UpdatedAt:      updatedAt,
	}
}

func TestMemoryStoreCreateGet(t *testing.T) {
	store := NewMemoryStore()
	job := newJob("a", models.JobStatusPending, time.Now())

	require.NoError(t, store.Create(job))

	got, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, models.JobStatusPending, got.Status)
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, interfaces.ErrJobNotFound)
}

func TestMemoryStoreReadersGetCopies(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Create(newJob("a", models.JobStatusPending, time.Now())))

	got, err := store.Get("a")
	require.NoError(t, err)
	got.Status = models.JobStatusFailed

	again, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, again.Status)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now()
	require.NoError(t, store.Create(newJob("old", models.JobStatusPending, base.Add(-time.Minute))))
	require.NoError(t, store.Create(newJob("new", models.JobStatusPending, base)))

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
}

func TestMemoryStoreEvictTerminalBefore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	old := now.Add(-2 * time.Hour)

	require.NoError(t, store.Create(newJob("done-old", models.JobStatusCompleted, old)))
	require.NoError(t, store.Create(newJob("failed-old", models.JobStatusFailed, old)))
	require.NoError(t, store.Create(newJob("done-recent", models.JobStatusCompleted, now)))
	require.NoError(t, store.Create(newJob("running-old", models.JobStatusRunning, old)))

	evicted := store.EvictTerminalBefore(now.Add(-time.Hour))
	assert.Equal(t, 2, evicted)

	_, err := store.Get("done-old")
	assert.ErrorIs(t, err, interfaces.ErrJobNotFound)
	_, err = store.Get("failed-old")
	assert.ErrorIs(t, err, interfaces.ErrJobNotFound)

	// Recent terminal and non-terminal jobs survive regardless of age
	_, err = store.Get("done-recent")
	assert.NoError(t, err)
	_, err = store.Get("running-old")
	assert.NoError(t, err)
}
