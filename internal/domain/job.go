package domain

import "time"

type JobStatus string

const (
	StatusWaiting     JobStatus = "waiting"
	StatusDownloading JobStatus = "downloading"
	StatusProcessing  JobStatus = "processing" // transfer done, postprocessing (merge/convert) pending
	StatusCompleted   JobStatus = "completed"
	StatusError       JobStatus = "error"
)

// Terminal reports whether a status accepts no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Job is the observable state of one download request. One record exists per
// id for the process lifetime; it is created before the background goroutine
// starts so an immediate poll never misses it.
type Job struct {
	ID  string `json:"download_id"`
	URL string `json:"-"`

	Status   JobStatus `json:"status"`
	Progress float64   `json:"progress"`

	DisplayName     string `json:"display_name,omitempty"`
	Speed           string `json:"speed,omitempty"`
	ETA             string `json:"eta,omitempty"`
	TotalBytes      int64  `json:"total_bytes"`
	DownloadedBytes int64  `json:"downloaded_bytes"`

	Error        string `json:"error,omitempty"`
	ErrorDetails string `json:"error_details,omitempty"`

	// Set only on completion.
	ServerPath    string `json:"-"`
	SuggestedName string `json:"suggested_name,omitempty"`
	ContentType   string `json:"content_type,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// Preferences are the user-facing download options carried by a start
// request. They are transient; the selector turns them into resolver options.
type Preferences struct {
	FormatID       string
	AudioOnly      bool
	AudioFormat    string // "best" or an explicit codec (mp3, m4a, ...)
	VideoQuality   string // "best" or a numeric height
	EmbedSubtitles bool
}
