package app

import (
	"context"
	"time"

	"github.com/govdl/govdl/internal/domain"
	"github.com/govdl/govdl/internal/infra/config"
	"github.com/govdl/govdl/internal/infra/logger"
)

// Resolver is the external media collaborator. Given a URL it either
// enumerates variants (Probe) or produces a file on local storage (Fetch).
// This allows the engine and controllers to call it without importing the
// resolver package.
type Resolver interface {
	Probe(ctx context.Context, url string) (*domain.MediaInfo, error)
	Fetch(ctx context.Context, url string, opts domain.FetchOptions, progress domain.ProgressFunc) (*domain.FetchResult, error)
}

// History records terminal jobs for the history endpoint and the retention
// janitor.
type History interface {
	SaveJob(job *domain.Job) error
	RecentJobs(limit int) ([]*domain.Job, error)
	JobsOlderThan(cutoff time.Time) ([]*domain.Job, error)
	DeleteJob(id string) error
}

// Context holds the core environment and shared resources for govdl.
// It acts as the "Single Source of Truth" for the application state.
type Context struct {
	Config *config.Config
	Logger *logger.Logger

	Resolver Resolver
	History  History
}

// NewContext initializes the base environment.
func NewContext(cfg *config.Config, log *logger.Logger) *Context {
	return &Context{
		Config: cfg,
		Logger: log,
	}
}
