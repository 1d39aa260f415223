package store

import (
	"context"
	"os"
	"time"

	"github.com/govdl/govdl/internal/app"
)

// Janitor enforces the retention policy: terminal jobs older than the
// configured retention lose their on-disk file and their history row.
// Retention zero means keep everything, which matches the behavior of running
// without a janitor at all.
type Janitor struct {
	app *app.Context
}

func NewJanitor(appCtx *app.Context) *Janitor {
	return &Janitor{app: appCtx}
}

// Run blocks until the context is cancelled. Call it in its own goroutine.
func (j *Janitor) Run(ctx context.Context) {
	retention := j.app.Config.History.Retention
	if retention <= 0 {
		return
	}

	ticker := time.NewTicker(j.app.Config.History.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(time.Now().Add(-retention))
		}
	}
}

// Sweep evicts every job that finished before the cutoff.
func (j *Janitor) Sweep(cutoff time.Time) {
	aged, err := j.app.History.JobsOlderThan(cutoff)
	if err != nil {
		j.app.Logger.Error("janitor: listing aged downloads failed: %v", err)
		return
	}

	for _, job := range aged {
		if job.ServerPath != "" {
			if err := os.Remove(job.ServerPath); err != nil && !os.IsNotExist(err) {
				j.app.Logger.Warn("janitor: could not remove %s: %v", job.ServerPath, err)
				continue
			}
		}

		if err := j.app.History.DeleteJob(job.ID); err != nil {
			j.app.Logger.Warn("janitor: could not delete history row %s: %v", job.ID, err)
			continue
		}

		j.app.Logger.Info("janitor: evicted download %s (%s)", job.ID, job.SuggestedName)
	}
}
