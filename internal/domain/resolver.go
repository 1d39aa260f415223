package domain

// MediaInfo is the probe result: top-level metadata plus the variant list.
// Field names mirror the resolver's JSON output so the API response schema
// stays stable across resolver upgrades.
type MediaInfo struct {
	ID             string   `json:"id,omitempty"`
	Title          string   `json:"title"`
	Uploader       string   `json:"uploader"`
	Duration       float64  `json:"duration"`
	DurationString string   `json:"duration_string"`
	Thumbnail      string   `json:"thumbnail"`
	Description    string   `json:"description"`
	WebpageURL     string   `json:"webpage_url"`
	Formats        []Format `json:"formats"`
	OriginalURL    string   `json:"original_url"`
}

// Format describes one downloadable variant.
type Format struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Resolution     string  `json:"resolution"`
	FormatNote     string  `json:"format_note"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	FPS            float64 `json:"fps"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	TBR            float64 `json:"tbr"`
	ABR            float64 `json:"abr"`
	VBR            float64 `json:"vbr"`
	URL            string  `json:"url"`
	ManifestURL    string  `json:"manifest_url"`
	Protocol       string  `json:"protocol"`
	Language       string  `json:"language"`
}

// FetchOptions is the selector's output: everything the resolver needs beyond
// the URL itself. Every field has a safe zero value.
type FetchOptions struct {
	// FormatExpr is the format-selection expression, including fallback tiers.
	FormatExpr string
	// ExtractAudio requests an audio-only postprocessing pass.
	ExtractAudio bool
	// AudioFormat is the target codec for the extraction pass; empty means
	// the resolver keeps whatever container it fetched.
	AudioFormat string
	// MergeContainer normalizes muxed output to a single container.
	MergeContainer string
	// EmbedSubtitles requests subtitle fetch + embedding.
	EmbedSubtitles bool
	// SubtitleLangs restricts subtitle languages. Only meaningful with
	// EmbedSubtitles.
	SubtitleLangs []string
	// ForcedExt overrides the resolver-reported extension when deriving the
	// client-facing filename (explicit audio codec conversions).
	ForcedExt string
}

type ProgressState string

const (
	ProgressDownloading ProgressState = "downloading"
	ProgressFinished    ProgressState = "finished"
	ProgressError       ProgressState = "error"
)

// ProgressEvent is one tick of the resolver's inline progress callback.
type ProgressEvent struct {
	Status          ProgressState `json:"status"`
	DownloadedBytes int64         `json:"downloaded_bytes"`
	TotalBytes      int64         `json:"total_bytes"`
	Speed           string        `json:"speed"`
	ETA             string        `json:"eta"`
	Filename        string        `json:"filename"`
}

// ProgressFunc runs inside the resolver's call stack; implementations must be
// fast and must not block.
type ProgressFunc func(ProgressEvent)

// FetchResult is what a successful fetch leaves behind on local storage.
type FetchResult struct {
	Title    string `json:"title"`
	Ext      string `json:"ext"`
	Filepath string `json:"filepath"`
}
