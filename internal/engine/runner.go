// Package engine turns one blocking resolver invocation into a non-blocking
// background job observable through the tracker.
package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/govdl/govdl/internal/app"
	"github.com/govdl/govdl/internal/domain"
	"github.com/govdl/govdl/internal/selector"
	"github.com/govdl/govdl/internal/tracker"
)

// Validation failures, surfaced before any job state exists.
var (
	ErrMissingURL    = errors.New("URL is required for download")
	ErrMissingFormat = errors.New("Format ID is required for video downloads")
)

type Runner struct {
	app     *app.Context
	tracker *tracker.Tracker
}

func NewRunner(appCtx *app.Context, tr *tracker.Tracker) *Runner {
	return &Runner{
		app:     appCtx,
		tracker: tr,
	}
}

// Submit validates the request, registers the job record and launches the
// background goroutine. It returns the id without waiting for any network
// activity; the record exists before this returns, so an immediate poll
// always finds it.
func (r *Runner) Submit(url string, prefs domain.Preferences) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", ErrMissingURL
	}
	// Video downloads need an explicit format choice; audio-only picks its
	// own stream.
	if !prefs.AudioOnly && prefs.FormatID == "" {
		return "", ErrMissingFormat
	}

	id := ksuid.New().String()
	r.tracker.Create(id, url)

	go r.run(id, url, prefs)

	return id, nil
}

// run is the background unit: one goroutine per job, alive for the full
// transfer and postprocessing. Nothing it does may crash the host process.
func (r *Runner) run(id, url string, prefs domain.Preferences) {
	defer func() {
		if rec := recover(); rec != nil {
			r.app.Logger.Error("download %s panicked: %v", id, rec)
			r.finalize(id, "An unexpected server error occurred during download processing.", "")
		}
	}()

	ctx := context.Background()
	if timeout := r.app.Config.Download.JobTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	opts := selector.Build(prefs)

	result, err := r.app.Resolver.Fetch(ctx, url, opts, r.progressFunc(id))
	if err != nil {
		r.failJob(ctx, id, url, err)
		return
	}

	r.completeJob(id, url, opts, result)
}

// progressFunc maps resolver ticks onto tracker writes. It runs inline in the
// resolver's call stack, so it does nothing but a keyed store mutation.
func (r *Runner) progressFunc(id string) domain.ProgressFunc {
	return func(evt domain.ProgressEvent) {
		switch evt.Status {
		case domain.ProgressDownloading:
			r.tracker.Update(id, func(j *domain.Job) {
				j.Status = domain.StatusDownloading
				j.DownloadedBytes = evt.DownloadedBytes
				j.TotalBytes = evt.TotalBytes
				j.Speed = evt.Speed
				j.ETA = evt.ETA
				if evt.Filename != "" {
					j.DisplayName = filepath.Base(evt.Filename)
				}
				if pct := percent(evt); pct > j.Progress {
					j.Progress = pct
				}
			})
		case domain.ProgressFinished:
			// Transfer complete, postprocessing (merge/convert) pending.
			r.tracker.Update(id, func(j *domain.Job) {
				j.Status = domain.StatusProcessing
				j.Progress = 100
				j.Speed = ""
				j.ETA = ""
				if evt.Filename != "" {
					j.DisplayName = filepath.Base(evt.Filename)
				}
			})
		}
	}
}

func percent(evt domain.ProgressEvent) float64 {
	if evt.TotalBytes <= 0 {
		return 0
	}
	pct := float64(evt.DownloadedBytes) / float64(evt.TotalBytes) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (r *Runner) failJob(ctx context.Context, id, url string, err error) {
	if ctx.Err() == context.DeadlineExceeded {
		r.app.Logger.Warn("download %s timed out (%s)", id, url)
		r.finalize(id, "Download timed out.", "The server-side time limit for a single download was reached.")
		return
	}

	var rerr *domain.ResolverError
	if errors.As(err, &rerr) {
		c := Classify(rerr.Message)
		r.app.Logger.Error("download %s failed (%s): %s", id, url, rerr.Message)
		r.finalize(id, c.Message, c.Details)
		return
	}

	r.app.Logger.Error("download %s failed unexpectedly (%s): %v", id, url, err)
	r.finalize(id, "An unexpected error occurred during download processing.", "")
}

func (r *Runner) completeJob(id, url string, opts domain.FetchOptions, result *domain.FetchResult) {
	// Resolver success means nothing if the file is not actually there.
	if result == nil || result.Filepath == "" {
		r.finalize(id, "File not found on server after download processing.", "")
		return
	}
	if _, err := os.Stat(result.Filepath); err != nil {
		r.app.Logger.Error("download %s: output file missing at %s", id, result.Filepath)
		r.finalize(id, "File not found on server after download processing.", "")
		return
	}

	ext := result.Ext
	if opts.ForcedExt != "" {
		// A conversion pass ran; trust the requested codec over whatever
		// container extension the resolver reports.
		ext = opts.ForcedExt
	}

	title := result.Title
	if title == "" {
		title = "video"
	}

	r.tracker.Update(id, func(j *domain.Job) {
		j.Status = domain.StatusCompleted
		j.Progress = 100
		j.Speed = ""
		j.ETA = ""
		j.ServerPath = result.Filepath
		j.SuggestedName = title + "." + ext
		j.ContentType = ContentTypeForExt(ext)
		j.FinishedAt = time.Now()
	})

	r.app.Logger.Info("download %s completed: %s", id, result.Filepath)
	r.recordHistory(id)
}

// finalize writes the terminal error state. It is the only error path out of
// a background job; the caller has already logged the cause.
func (r *Runner) finalize(id, message, details string) {
	r.tracker.Update(id, func(j *domain.Job) {
		j.Status = domain.StatusError
		j.Error = message
		j.ErrorDetails = details
		j.Speed = ""
		j.ETA = ""
		j.FinishedAt = time.Now()
	})

	r.recordHistory(id)
}

func (r *Runner) recordHistory(id string) {
	if r.app.History == nil {
		return
	}

	job, ok := r.tracker.Get(id)
	if !ok {
		return
	}

	if err := r.app.History.SaveJob(&job); err != nil {
		r.app.Logger.Warn("failed to record download %s in history: %v", id, err)
	}
}
