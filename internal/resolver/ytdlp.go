// Package resolver adapts the external yt-dlp binary behind the app.Resolver
// interface. It is the only place that knows how the binary is invoked and
// how its output streams are parsed.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/govdl/govdl/internal/domain"
	"github.com/govdl/govdl/internal/infra/config"
	"github.com/govdl/govdl/internal/infra/logger"
)

type YtDlp struct {
	binary      string
	outDir      string
	cookiesFile string
	log         *logger.Logger
}

func New(cfg *config.Config, log *logger.Logger) *YtDlp {
	return &YtDlp{
		binary:      cfg.Resolver.Binary,
		outDir:      cfg.Download.OutDir,
		cookiesFile: cfg.Resolver.CookiesFile,
		log:         log,
	}
}

// probeJSON mirrors the subset of yt-dlp's -J output we surface. Formats and
// the top-level entry share a shape so the single-entry fallback can reuse it.
type probeJSON struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Uploader       string     `json:"uploader"`
	Duration       float64    `json:"duration"`
	DurationString string     `json:"duration_string"`
	Thumbnail      string     `json:"thumbnail"`
	Description    string     `json:"description"`
	WebpageURL     string     `json:"webpage_url"`
	Formats        []probeFmt `json:"formats"`

	// Top-level variant fields, used when no formats array is present
	// (direct file URLs with no alternatives).
	probeFmt
}

type probeFmt struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
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

// Probe enumerates the downloadable variants for a URL without transferring
// anything. It blocks for the full resolver round trip.
func (y *YtDlp) Probe(ctx context.Context, url string) (*domain.MediaInfo, error) {
	args := []string{"-J", "--no-playlist", "--no-warnings"}
	if y.cookiesFile != "" {
		args = append(args, "--cookies", y.cookiesFile)
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, y.binary, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, wrapExecError(err)
	}

	var data probeJSON
	if err := json.Unmarshal(output, &data); err != nil {
		return nil, fmt.Errorf("resolver returned malformed metadata: %w", err)
	}

	info := &domain.MediaInfo{
		ID:             data.ID,
		Title:          data.Title,
		Uploader:       data.Uploader,
		Duration:       data.Duration,
		DurationString: data.DurationString,
		Thumbnail:      data.Thumbnail,
		Description:    data.Description,
		WebpageURL:     data.WebpageURL,
		OriginalURL:    url,
		Formats:        make([]domain.Format, 0, len(data.Formats)),
	}

	for _, f := range data.Formats {
		info.Formats = append(info.Formats, mapFormat(f))
	}

	// Some extractors return a bare direct URL with no variant list.
	// Synthesize a single entry from the top-level fields so clients always
	// see at least one format.
	if len(info.Formats) == 0 && data.probeFmt.URL != "" {
		direct := data.probeFmt
		if direct.FormatID == "" {
			direct.FormatID = "source"
		}
		if direct.Ext == "" {
			direct.Ext = "unknown"
		}
		if direct.FormatNote == "" {
			direct.FormatNote = "Direct Source"
		}
		info.Formats = append(info.Formats, mapFormat(direct))
	}

	return info, nil
}

func mapFormat(f probeFmt) domain.Format {
	resolution := f.Resolution
	if f.Width > 0 && f.Height > 0 {
		resolution = fmt.Sprintf("%dx%d", f.Width, f.Height)
	}

	return domain.Format{
		FormatID:       f.FormatID,
		Ext:            f.Ext,
		Resolution:     resolution,
		FormatNote:     f.FormatNote,
		Filesize:       f.Filesize,
		FilesizeApprox: f.FilesizeApprox,
		FPS:            f.FPS,
		VCodec:         f.VCodec,
		ACodec:         f.ACodec,
		TBR:            f.TBR,
		ABR:            f.ABR,
		VBR:            f.VBR,
		URL:            f.URL,
		ManifestURL:    f.ManifestURL,
		Protocol:       f.Protocol,
		Language:       f.Language,
	}
}

// wrapExecError surfaces the binary's stderr as the error message so the
// classification layer can pattern-match it. Process-level failures (binary
// missing, context cancelled) pass through untouched.
func wrapExecError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(string(exitErr.Stderr))
		if msg == "" {
			msg = exitErr.String()
		}
		return &domain.ResolverError{Message: msg}
	}
	return err
}
