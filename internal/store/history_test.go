package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govdl/govdl/internal/app"
	"github.com/govdl/govdl/internal/domain"
	"github.com/govdl/govdl/internal/infra/config"
	"github.com/govdl/govdl/internal/infra/logger"
	"github.com/govdl/govdl/internal/store"
)

func newStore(t *testing.T) *store.HistoryStore {
	t.Helper()
	s, err := store.NewHistoryStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func terminalJob(id string, status domain.JobStatus, finished time.Time) *domain.Job {
	return &domain.Job{
		ID:            id,
		URL:           "https://example.com/" + id,
		Status:        status,
		SuggestedName: id + ".mp4",
		ContentType:   "video/mp4",
		TotalBytes:    2048,
		CreatedAt:     finished.Add(-time.Minute),
		FinishedAt:    finished,
	}
}

func TestSaveAndRecentJobs(t *testing.T) {
	s := newStore(t)

	now := time.Now().Truncate(time.Second)
	require.NoError(t, s.SaveJob(terminalJob("old", domain.StatusCompleted, now.Add(-2*time.Hour))))
	require.NoError(t, s.SaveJob(terminalJob("new", domain.StatusCompleted, now)))

	failed := terminalJob("bad", domain.StatusError, now.Add(-time.Hour))
	failed.Error = "This video is unavailable."
	require.NoError(t, s.SaveJob(failed))

	jobs, err := s.RecentJobs(10)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	assert.Equal(t, "new", jobs[0].ID, "newest first")
	assert.Equal(t, "bad", jobs[1].ID)
	assert.Equal(t, "old", jobs[2].ID)

	assert.Equal(t, domain.StatusError, jobs[1].Status)
	assert.Equal(t, "This video is unavailable.", jobs[1].Error)
	assert.Equal(t, int64(2048), jobs[0].TotalBytes)
	assert.Equal(t, float64(100), jobs[0].Progress)
}

func TestRecentJobsLimit(t *testing.T) {
	s := newStore(t)

	now := time.Now()
	for i := 0; i < 5; i++ {
		job := terminalJob(string(rune('a'+i)), domain.StatusCompleted, now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.SaveJob(job))
	}

	jobs, err := s.RecentJobs(2)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestSaveJobIsUpsert(t *testing.T) {
	s := newStore(t)

	now := time.Now()
	require.NoError(t, s.SaveJob(terminalJob("dup", domain.StatusCompleted, now)))

	updated := terminalJob("dup", domain.StatusCompleted, now)
	updated.SuggestedName = "renamed.mp4"
	require.NoError(t, s.SaveJob(updated))

	jobs, err := s.RecentJobs(10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "renamed.mp4", jobs[0].SuggestedName)
}

func TestJobsOlderThanAndDelete(t *testing.T) {
	s := newStore(t)

	now := time.Now().Truncate(time.Second)
	require.NoError(t, s.SaveJob(terminalJob("aged", domain.StatusCompleted, now.Add(-48*time.Hour))))
	require.NoError(t, s.SaveJob(terminalJob("fresh", domain.StatusCompleted, now)))

	aged, err := s.JobsOlderThan(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	require.Len(t, aged, 1)
	assert.Equal(t, "aged", aged[0].ID)

	require.NoError(t, s.DeleteJob("aged"))

	aged, err = s.JobsOlderThan(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Empty(t, aged)
}

func TestJanitorSweep(t *testing.T) {
	s := newStore(t)

	outDir := t.TempDir()
	agedFile := filepath.Join(outDir, "aged.mp4")
	freshFile := filepath.Join(outDir, "fresh.mp4")
	require.NoError(t, os.WriteFile(agedFile, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(freshFile, []byte("x"), 0644))

	now := time.Now().Truncate(time.Second)

	aged := terminalJob("aged", domain.StatusCompleted, now.Add(-48*time.Hour))
	aged.ServerPath = agedFile
	require.NoError(t, s.SaveJob(aged))

	fresh := terminalJob("fresh", domain.StatusCompleted, now)
	fresh.ServerPath = freshFile
	require.NoError(t, s.SaveJob(fresh))

	log, err := logger.New(filepath.Join(t.TempDir(), "test.log"), logger.LevelError, false)
	require.NoError(t, err)
	cfg := &config.Config{}
	cfg.History.Retention = 24 * time.Hour
	appCtx := app.NewContext(cfg, log)
	appCtx.History = s

	store.NewJanitor(appCtx).Sweep(now.Add(-24 * time.Hour))

	_, statErr := os.Stat(agedFile)
	assert.True(t, os.IsNotExist(statErr), "aged file is removed")
	_, statErr = os.Stat(freshFile)
	assert.NoError(t, statErr, "fresh file is untouched")

	jobs, err := s.RecentJobs(10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "fresh", jobs[0].ID)
}
