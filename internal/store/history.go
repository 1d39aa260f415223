package store

import (
	"time"

	"github.com/govdl/govdl/internal/domain"
)

// SaveJob upserts a terminal job record. Calling it twice for the same id
// (completion then a late correction) keeps the last write.
func (s *HistoryStore) SaveJob(job *domain.Job) error {
	query := `INSERT OR REPLACE INTO download_history
              (id, url, status, suggested_name, content_type, server_path, total_bytes, error, error_details, created_at, finished_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		job.ID,
		job.URL,
		string(job.Status),
		job.SuggestedName,
		job.ContentType,
		job.ServerPath,
		job.TotalBytes,
		job.Error,
		job.ErrorDetails,
		job.CreatedAt.Unix(),
		job.FinishedAt.Unix(),
	)
	return err
}

// RecentJobs returns terminal jobs, newest first.
func (s *HistoryStore) RecentJobs(limit int) ([]*domain.Job, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`SELECT id, url, status, suggested_name, content_type, server_path, total_bytes, error, error_details, created_at, finished_at
                             FROM download_history
                             ORDER BY finished_at DESC
                             LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobs(rows)
}

// JobsOlderThan returns jobs that finished before the cutoff; the janitor
// uses it to pick eviction candidates.
func (s *HistoryStore) JobsOlderThan(cutoff time.Time) ([]*domain.Job, error) {
	rows, err := s.db.Query(`SELECT id, url, status, suggested_name, content_type, server_path, total_bytes, error, error_details, created_at, finished_at
                             FROM download_history
                             WHERE finished_at < ?`, cutoff.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobs(rows)
}

func (s *HistoryStore) DeleteJob(id string) error {
	_, err := s.db.Exec(`DELETE FROM download_history WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanJobs(rows rowScanner) ([]*domain.Job, error) {
	var jobs []*domain.Job
	for rows.Next() {
		job := &domain.Job{}
		var status string
		var createdAt, finishedAt int64

		err := rows.Scan(&job.ID, &job.URL, &status, &job.SuggestedName, &job.ContentType,
			&job.ServerPath, &job.TotalBytes, &job.Error, &job.ErrorDetails, &createdAt, &finishedAt)
		if err != nil {
			return nil, err
		}

		job.Status = domain.JobStatus(status)
		job.CreatedAt = time.Unix(createdAt, 0)
		job.FinishedAt = time.Unix(finishedAt, 0)
		if job.Status == domain.StatusCompleted {
			job.Progress = 100
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}
