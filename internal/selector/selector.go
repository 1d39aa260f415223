// Package selector translates user-facing download preferences into the
// format-selection expression and option overrides consumed by the resolver.
package selector

import (
	"fmt"
	"strconv"

	"github.com/govdl/govdl/internal/domain"
)

const (
	bestAudioExpr = "bestaudio/best"
	bestVideoExpr = "bestvideo+bestaudio/best"

	// Subtitle language is fixed; the UI has no language picker.
	defaultSubtitleLang = "en"
)

// Build never fails: invalid preferences degrade to safe defaults rather
// than rejecting the request.
func Build(prefs domain.Preferences) domain.FetchOptions {
	if prefs.AudioOnly {
		return buildAudio(prefs)
	}
	return buildVideo(prefs)
}

func buildAudio(prefs domain.Preferences) domain.FetchOptions {
	// A supplied format id is ignored: audio-only always chases the best
	// pure-audio stream.
	opts := domain.FetchOptions{
		FormatExpr:   bestAudioExpr,
		ExtractAudio: true,
	}

	if prefs.AudioFormat != "" && prefs.AudioFormat != "best" {
		opts.FormatExpr = fmt.Sprintf("bestaudio[ext=%s]/bestaudio", prefs.AudioFormat)
		// Conversion happens in postprocessing, so the output extension is
		// the requested codec no matter what container was fetched.
		opts.AudioFormat = prefs.AudioFormat
		opts.ForcedExt = prefs.AudioFormat
	}

	opts.EmbedSubtitles, opts.SubtitleLangs = subtitles(prefs)

	return opts
}

func buildVideo(prefs domain.Preferences) domain.FetchOptions {
	base := prefs.FormatID
	if base == "" {
		base = bestVideoExpr
	}

	opts := domain.FetchOptions{
		FormatExpr:     base,
		MergeContainer: "mp4",
	}

	if prefs.VideoQuality != "" && prefs.VideoQuality != "best" {
		if height, err := strconv.Atoi(prefs.VideoQuality); err == nil {
			// Three fallback tiers, best first: the chosen format bounded by
			// height, then best video under the ceiling plus best audio,
			// then best combined under the ceiling.
			opts.FormatExpr = fmt.Sprintf(
				"%s[height<=?%d]/bestvideo[height<=?%d]+bestaudio/best[height<=?%d]",
				base, height, height, height,
			)
		}
		// Unparseable quality falls through to the unbounded base selection.
	}

	opts.EmbedSubtitles, opts.SubtitleLangs = subtitles(prefs)

	return opts
}

func subtitles(prefs domain.Preferences) (bool, []string) {
	if !prefs.EmbedSubtitles {
		return false, nil
	}
	return true, []string{defaultSubtitleLang}
}
