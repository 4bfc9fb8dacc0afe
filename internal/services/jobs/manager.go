package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/scraper"
)

// Config holds job manager settings.
type Config struct {
	// Retention is how long terminal jobs stay queryable before eviction.
	Retention time.Duration

	// EvictionSchedule is the cron expression for the eviction sweep.
	EvictionSchedule string
}

// Manager owns the async scrape flow: submission returns immediately with
// a queryable job, a background goroutine runs the pipeline and advances
// the job through its forward-only lifecycle. An eviction sweep removes
// aged-out terminal jobs on a cron schedule.
type Manager struct {
	store  interfaces.JobStore
	runner interfaces.ScrapeRunner
	config Config
	logger arbor.ILogger
	cron   *cron.Cron

	// notify, when set, receives a copy of the job after every status
	// change. Used for websocket fan-out.
	notify func(models.Job)
}

// NewManager creates a job manager. Eviction does not run until Start.
func NewManager(store interfaces.JobStore, runner interfaces.ScrapeRunner, config Config, logger arbor.ILogger) *Manager {
	if config.Retention <= 0 {
		config.Retention = time.Hour
	}
	if config.EvictionSchedule == "" {
		config.EvictionSchedule = "*/5 * * * *"
	}
	return &Manager{
		store:  store,
		runner: runner,
		config: config,
		logger: logger,
		cron:   cron.New(),
	}
}

// SetNotify installs the status-change listener. Must be called before any
// job is submitted.
func (m *Manager) SetNotify(fn func(models.Job)) {
	m.notify = fn
}

// Start schedules the terminal-job eviction sweep.
func (m *Manager) Start() error {
	_, err := m.cron.AddFunc(m.config.EvictionSchedule, func() {
		cutoff := time.Now().Add(-m.config.Retention)
		if evicted := m.store.EvictTerminalBefore(cutoff); evicted > 0 {
			m.logger.Debug().Int("evicted", evicted).Msg("Evicted aged-out terminal jobs")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job eviction: %w", err)
	}
	m.cron.Start()
	return nil
}

// Stop halts the eviction schedule. In-flight jobs keep running; their
// goroutines own their own lifecycle.
func (m *Manager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

// Submit registers a pending job and launches the login+scrape flow in the
// background. Returns the job snapshot immediately.
func (m *Manager) Submit(cred models.Credential, target string) (*models.Job, error) {
	now := time.Now()
	job := &models.Job{
		ID:             uuid.New().String(),
		Status:         models.JobStatusPending,
		TargetUsername: target,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := m.store.Create(job); err != nil {
		return nil, fmt.Errorf("failed to register job: %w", err)
	}

	m.logger.Info().
		Str("job_id", job.ID).
		Str("target", target).
		Msg("Scrape job submitted")

	go m.run(job.ID, cred, target)

	return job.Clone(), nil
}

// Get returns the current snapshot of a job.
func (m *Manager) Get(id string) (*models.Job, error) {
	return m.store.Get(id)
}

// List returns snapshots of all registered jobs, newest first.
func (m *Manager) List() []*models.Job {
	return m.store.List()
}

// ErrJobNotTerminal is returned when deletion targets a job still owned by
// a running background flow.
var ErrJobNotTerminal = errors.New("job has not finished")

// Delete removes a terminal job from the registry. In-flight jobs cannot
// be deleted; their background flow owns them until they finish.
func (m *Manager) Delete(id string) error {
	job, err := m.store.Get(id)
	if err != nil {
		return err
	}
	if !job.IsTerminal() {
		return ErrJobNotTerminal
	}
	return m.store.Delete(id)
}

// run is the background flow owning one job. It is the job's only writer.
func (m *Manager) run(id string, cred models.Credential, target string) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().
				Str("job_id", id).
				Str("panic", fmt.Sprint(r)).
				Msg("Scrape job panicked")
			m.finish(id, nil, fmt.Errorf("internal error: %v", r))
		}
	}()

	m.transition(id, func(job *models.Job) {
		now := time.Now()
		job.Status = models.JobStatusRunning
		job.StartedAt = &now
	})

	result, err := m.runner.LoginScrape(context.Background(), cred, target)
	m.finish(id, result, err)
}

// finish moves the job to its terminal status.
func (m *Manager) finish(id string, result *models.ScrapeResult, err error) {
	m.transition(id, func(job *models.Job) {
		if job.IsTerminal() {
			// Already finalized (panic path after a finish), leave it be.
			return
		}
		now := time.Now()
		job.CompletedAt = &now
		if err != nil {
			job.Status = models.JobStatusFailed
			job.Error = err.Error()
			if kind := scraper.KindOf(err); kind != "" {
				job.ErrorKind = string(kind)
			}
			return
		}
		job.Status = models.JobStatusCompleted
		job.Result = &models.JobResult{
			ProfileUniqueID: result.Profile.UniqueID,
			VideosScraped:   len(result.Videos),
			DegradedMatch:   result.DegradedMatch,
		}
	})
}

// transition applies a mutation to the stored job and fans out the change.
func (m *Manager) transition(id string, mutate func(*models.Job)) {
	job, err := m.store.Get(id)
	if err != nil {
		// Evicted between updates; nothing left to advance.
		m.logger.Debug().Str("job_id", id).Msg("Job gone before transition")
		return
	}

	mutate(job)
	job.UpdatedAt = time.Now()

	if err := m.store.Update(job); err != nil {
		m.logger.Debug().Err(err).Str("job_id", id).Msg("Job update failed")
		return
	}

	m.logger.Info().
		Str("job_id", id).
		Str("status", string(job.Status)).
		Msg("Job status changed")

	if m.notify != nil {
		m.notify(*job.Clone())
	}
}
