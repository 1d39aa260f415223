// Package tracker owns the map of job id -> job state. It is the only shared
// mutable state in the process: writers are the engine's progress callback and
// completion paths, readers are the polling handlers.
package tracker

import (
	"sync"
	"time"

	"github.com/govdl/govdl/internal/domain"
	"github.com/govdl/govdl/internal/infra/logger"
)

type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
	log  *logger.Logger
}

func New(log *logger.Logger) *Tracker {
	return &Tracker{
		jobs: make(map[string]*domain.Job),
		log:  log,
	}
}

// Create inserts a fresh record in the waiting state. First writer wins: an
// existing record is never overwritten.
func (t *Tracker) Create(id, url string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.jobs[id]; ok {
		return
	}

	t.jobs[id] = &domain.Job{
		ID:        id,
		URL:       url,
		Status:    domain.StatusWaiting,
		CreatedAt: time.Now(),
	}
}

// Update applies a mutation to the record under the store lock. Unknown ids
// are logged and ignored: updates arrive from a callback deep inside the
// resolver's call stack, where the caller has no way to recover. Records in a
// terminal state are left untouched.
func (t *Tracker) Update(id string, apply func(*domain.Job)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		t.log.Warn("progress update for unknown download %s dropped", id)
		return
	}

	if job.Status.Terminal() {
		return
	}

	apply(job)
}

// Get returns a snapshot copy of the record. Mutating the returned value has
// no effect on the store.
func (t *Tracker) Get(id string) (domain.Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[id]
	if !ok {
		return domain.Job{}, false
	}
	return *job, true
}
