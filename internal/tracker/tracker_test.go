package tracker_test

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govdl/govdl/internal/domain"
	"github.com/govdl/govdl/internal/infra/logger"
	"github.com/govdl/govdl/internal/tracker"
)

func newTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	log, err := logger.New(filepath.Join(t.TempDir(), "test.log"), logger.LevelError, false)
	require.NoError(t, err)
	return tracker.New(log)
}

func TestCreateAndGet(t *testing.T) {
	tr := newTracker(t)
	tr.Create("abc", "https://example.com/v1")

	job, ok := tr.Get("abc")
	require.True(t, ok)
	assert.Equal(t, domain.StatusWaiting, job.Status)
	assert.Zero(t, job.Progress)
	assert.Zero(t, job.DownloadedBytes)
	assert.False(t, job.CreatedAt.IsZero())
}

func TestGetUnknownID(t *testing.T) {
	tr := newTracker(t)

	_, ok := tr.Get("never-issued")
	assert.False(t, ok)
}

func TestCreateFirstWriterWins(t *testing.T) {
	tr := newTracker(t)
	tr.Create("abc", "https://example.com/v1")
	tr.Update("abc", func(j *domain.Job) {
		j.Status = domain.StatusDownloading
		j.Progress = 42
	})

	tr.Create("abc", "https://example.com/other")

	job, ok := tr.Get("abc")
	require.True(t, ok)
	assert.Equal(t, domain.StatusDownloading, job.Status)
	assert.Equal(t, float64(42), job.Progress)
	assert.Equal(t, "https://example.com/v1", job.URL)
}

func TestUpdateUnknownIDIsSilent(t *testing.T) {
	tr := newTracker(t)

	assert.NotPanics(t, func() {
		tr.Update("missing", func(j *domain.Job) {
			j.Progress = 50
		})
	})
}

func TestTerminalStateIsFrozen(t *testing.T) {
	tr := newTracker(t)
	tr.Create("abc", "https://example.com/v1")
	tr.Update("abc", func(j *domain.Job) {
		j.Status = domain.StatusCompleted
		j.Progress = 100
	})

	tr.Update("abc", func(j *domain.Job) {
		j.Status = domain.StatusDownloading
		j.Progress = 10
	})

	job, _ := tr.Get("abc")
	assert.Equal(t, domain.StatusCompleted, job.Status)
	assert.Equal(t, float64(100), job.Progress)
}

func TestGetReturnsSnapshot(t *testing.T) {
	tr := newTracker(t)
	tr.Create("abc", "https://example.com/v1")

	job, _ := tr.Get("abc")
	job.Status = domain.StatusError
	job.Error = "mutated copy"

	fresh, _ := tr.Get("abc")
	assert.Equal(t, domain.StatusWaiting, fresh.Status)
	assert.Empty(t, fresh.Error)
}

func TestConcurrentJobsDoNotInterleave(t *testing.T) {
	tr := newTracker(t)

	const jobs = 8
	ids := make([]string, jobs)
	for i := range ids {
		ids[i] = fmt.Sprintf("job-%d", i)
		tr.Create(ids[i], fmt.Sprintf("https://example.com/v%d", i))
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(id string, base int64) {
			defer wg.Done()
			for n := int64(1); n <= 100; n++ {
				tr.Update(id, func(j *domain.Job) {
					j.Status = domain.StatusDownloading
					j.DownloadedBytes = base + n
				})
			}
		}(id, int64(i)*1000)
	}
	wg.Wait()

	for i, id := range ids {
		job, ok := tr.Get(id)
		require.True(t, ok)
		assert.Equal(t, int64(i)*1000+100, job.DownloadedBytes,
			"updates for one job must never land under another id")
	}
}
