package interfaces

import (
	"errors"
	"time"

	"github.com/ternarybob/specto/internal/models"
)

// ErrJobNotFound is returned when a job id is not present in the store.
var ErrJobNotFound = errors.New("job not found")

// JobStore is the registry of async scrape jobs. The in-memory
// implementation matches the ephemeral semantics callers expect (lost on
// restart); the interface exists so a durable store can be swapped in
// without touching the submission path.
//
// Concurrency contract: exactly one writer per job (the background flow
// that owns it), any number of readers.
type JobStore interface {
	Create(job *models.Job) error
	Get(id string) (*models.Job, error)
	List() []*models.Job
	Update(job *models.Job) error
	Delete(id string) error

	// EvictTerminalBefore removes terminal jobs whose last update is older
	// than the cutoff, returning the number evicted.
	EvictTerminalBefore(cutoff time.Time) int
}
