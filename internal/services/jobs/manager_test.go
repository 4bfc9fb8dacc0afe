package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/scraper"
)

// fakeRunner satisfies interfaces.ScrapeRunner for driving the manager.
type fakeRunner struct {
	mu      sync.Mutex
	result  *models.ScrapeResult
	err     error
	panics  bool
	started chan struct{}
	block   chan struct{}
}

func (r *fakeRunner) Login(ctx context.Context, cred models.Credential) (models.CookieSet, error) {
	return nil, errors.New("not used")
}

func (r *fakeRunner) Scrape(ctx context.Context, cookies models.CookieSet, target string) (*models.ScrapeResult, error) {
	return nil, errors.New("not used")
}

func (r *fakeRunner) LoginScrape(ctx context.Context, cred models.Credential, target string) (*models.ScrapeResult, error) {
	if r.started != nil {
		close(r.started)
	}
	if r.block != nil {
		<-r.block
	}
	if r.panics {
		panic("pipeline exploded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.err
}

func newTestManager(runner interfaces.ScrapeRunner) *Manager {
	return NewManager(NewMemoryStore(), runner, Config{}, arbor.NewLogger())
}

// awaitTerminal polls the manager until the job reaches a final status.
func awaitTerminal(t *testing.T, m *Manager, id string) *models.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := m.Get(id)
		require.NoError(t, err)
		if job.IsTerminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal status")
	return nil
}

func TestSubmitReturnsImmediately(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	m := newTestManager(runner)

	job, err := m.Submit(models.Credential{Username: "u", Password: "p"}, "target")
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "target", job.TargetUsername)
	// Snapshot at submission is pending or already running, never terminal
	assert.False(t, job.IsTerminal())

	close(runner.block)
	awaitTerminal(t, m, job.ID)
}

func TestJobCompletes(t *testing.T) {
	runner := &fakeRunner{
		result: &models.ScrapeResult{
			Profile:       models.Profile{UniqueID: "target"},
			Videos:        make([]models.Video, 3),
			DegradedMatch: false,
		},
	}
	m := newTestManager(runner)

	job, err := m.Submit(models.Credential{Username: "u", Password: "p"}, "target")
	require.NoError(t, err)

	final := awaitTerminal(t, m, job.ID)
	assert.Equal(t, models.JobStatusCompleted, final.Status)
	require.NotNil(t, final.Result)
	assert.Equal(t, "target", final.Result.ProfileUniqueID)
	assert.Equal(t, 3, final.Result.VideosScraped)
	assert.NotNil(t, final.CompletedAt)
	assert.Empty(t, final.Error)
}

func TestJobFailsWithErrorKind(t *testing.T) {
	runner := &fakeRunner{
		err: scraper.NewError(scraper.KindCaptchaBlocked, "verification wall"),
	}
	m := newTestManager(runner)

	job, err := m.Submit(models.Credential{Username: "u", Password: "p"}, "target")
	require.NoError(t, err)

	final := awaitTerminal(t, m, job.ID)
	assert.Equal(t, models.JobStatusFailed, final.Status)
	assert.Equal(t, string(scraper.KindCaptchaBlocked), final.ErrorKind)
	assert.Contains(t, final.Error, "verification wall")
	assert.Nil(t, final.Result)
}

func TestJobPanicBecomesFailed(t *testing.T) {
	runner := &fakeRunner{panics: true}
	m := newTestManager(runner)

	job, err := m.Submit(models.Credential{Username: "u", Password: "p"}, "target")
	require.NoError(t, err)

	final := awaitTerminal(t, m, job.ID)
	assert.Equal(t, models.JobStatusFailed, final.Status)
	assert.Contains(t, final.Error, "internal error")
}

func TestTerminalStatusIsStable(t *testing.T) {
	runner := &fakeRunner{result: &models.ScrapeResult{Profile: models.Profile{UniqueID: "t"}}}
	m := newTestManager(runner)

	job, err := m.Submit(models.Credential{Username: "u", Password: "p"}, "t")
	require.NoError(t, err)

	first := awaitTerminal(t, m, job.ID)
	time.Sleep(50 * time.Millisecond)
	second, err := m.Get(job.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
}

func TestGetUnknownJob(t *testing.T) {
	m := newTestManager(&fakeRunner{})

	_, err := m.Get("does-not-exist")
	assert.ErrorIs(t, err, interfaces.ErrJobNotFound)
}

func TestNotifyReceivesStatusChanges(t *testing.T) {
	runner := &fakeRunner{result: &models.ScrapeResult{Profile: models.Profile{UniqueID: "t"}}}
	m := newTestManager(runner)

	var mu sync.Mutex
	statuses := make([]models.JobStatus, 0)
	m.SetNotify(func(job models.Job) {
		mu.Lock()
		statuses = append(statuses, job.Status)
		mu.Unlock()
	})

	job, err := m.Submit(models.Credential{Username: "u", Password: "p"}, "t")
	require.NoError(t, err)
	awaitTerminal(t, m, job.ID)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, statuses, 2)
	assert.Equal(t, models.JobStatusRunning, statuses[0])
	assert.Equal(t, models.JobStatusCompleted, statuses[1])
}
