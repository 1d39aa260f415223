package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/govdl/govdl/internal/app"
	"github.com/govdl/govdl/internal/domain"
	"github.com/govdl/govdl/internal/engine"
	"github.com/govdl/govdl/internal/tracker"
)

type DownloadController struct {
	App     *app.Context
	Runner  *engine.Runner
	Tracker *tracker.Tracker
}

// Probe enumerates the downloadable variants for a URL. It is synchronous:
// the caller waits for the full resolver round trip.
func (ctrl *DownloadController) Probe(c *echo.Context) error {
	var req ProbeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
	}

	if strings.TrimSpace(req.URL) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "URL is required"})
	}

	info, err := ctrl.App.Resolver.Probe(c.Request().Context(), req.URL)
	if err != nil {
		var rerr *domain.ResolverError
		if errors.As(err, &rerr) {
			cls := engine.Classify(rerr.Message)
			ctrl.App.Logger.Error("probe failed for %s: %s", req.URL, rerr.Message)

			status := http.StatusInternalServerError
			if cls.BotChallenge {
				status = http.StatusForbidden
			}
			return c.JSON(status, ErrorResponse{Error: cls.Message, Details: cls.Details})
		}

		ctrl.App.Logger.Error("probe failed unexpectedly for %s: %v", req.URL, err)
		return c.JSON(http.StatusInternalServerError,
			ErrorResponse{Error: "An unexpected error occurred while fetching video info."})
	}

	return c.JSON(http.StatusOK, info)
}

// Start accepts a download request and returns a job id immediately; the
// transfer runs in the background.
func (ctrl *DownloadController) Start(c *echo.Context) error {
	url := c.QueryParam("url")

	prefs := domain.Preferences{
		FormatID:       c.QueryParam("format_id"),
		AudioOnly:      queryBool(c, "audioOnly"),
		AudioFormat:    queryDefault(c, "audioFormat", "best"),
		VideoQuality:   queryDefault(c, "videoQuality", "best"),
		EmbedSubtitles: queryBool(c, "embedSubs"),
	}

	id, err := ctrl.Runner.Submit(url, prefs)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, StartResponse{DownloadID: id, Status: "started"})
}

// Progress returns the current job snapshot for polling clients.
func (ctrl *DownloadController) Progress(c *echo.Context) error {
	job, ok := ctrl.Tracker.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.ErrJobNotFound.Error()})
	}

	return c.JSON(http.StatusOK, job)
}

// File streams the completed download. Before completion it answers with a
// retryable "not ready", not a hard failure.
func (ctrl *DownloadController) File(c *echo.Context) error {
	job, ok := ctrl.Tracker.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.ErrJobNotFound.Error()})
	}

	if job.Status != domain.StatusCompleted {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.ErrJobNotReady.Error()})
	}

	f, err := os.Open(job.ServerPath)
	if err != nil {
		// Completed but gone: the file was removed behind our back.
		ctrl.App.Logger.Error("completed download %s has no file at %s", job.ID, job.ServerPath)
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.ErrFileMissing.Error()})
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", job.SuggestedName))
	return c.Stream(http.StatusOK, job.ContentType, f)
}

// History lists recent terminal jobs from the persistent store.
func (ctrl *DownloadController) History(c *echo.Context) error {
	if ctrl.App.History == nil {
		return c.JSON(http.StatusOK, []*domain.Job{})
	}

	jobs, err := ctrl.App.History.RecentJobs(50)
	if err != nil {
		ctrl.App.Logger.Error("history query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Could not load download history."})
	}

	if jobs == nil {
		jobs = []*domain.Job{}
	}
	return c.JSON(http.StatusOK, jobs)
}

func queryBool(c *echo.Context, name string) bool {
	return strings.EqualFold(c.QueryParam(name), "true")
}

func queryDefault(c *echo.Context, name, fallback string) string {
	if v := c.QueryParam(name); v != "" {
		return v
	}
	return fallback
}
