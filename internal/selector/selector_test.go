package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/govdl/govdl/internal/domain"
	"github.com/govdl/govdl/internal/selector"
)

func TestBuildAudioBest(t *testing.T) {
	opts := selector.Build(domain.Preferences{
		AudioOnly:   true,
		AudioFormat: "best",
	})

	assert.Equal(t, "bestaudio/best", opts.FormatExpr)
	assert.True(t, opts.ExtractAudio)
	assert.Empty(t, opts.AudioFormat, "no conversion pass for 'best'")
	assert.Empty(t, opts.ForcedExt)
	assert.Empty(t, opts.MergeContainer)
}

func TestBuildAudioExplicitCodec(t *testing.T) {
	opts := selector.Build(domain.Preferences{
		AudioOnly:   true,
		AudioFormat: "mp3",
		FormatID:    "22", // ignored for audio-only
	})

	assert.Equal(t, "bestaudio[ext=mp3]/bestaudio", opts.FormatExpr)
	assert.Equal(t, "mp3", opts.AudioFormat)
	assert.Equal(t, "mp3", opts.ForcedExt, "suggested extension must be the requested codec")
}

func TestBuildVideoWithFormatID(t *testing.T) {
	opts := selector.Build(domain.Preferences{
		FormatID:     "137",
		VideoQuality: "best",
	})

	assert.Equal(t, "137", opts.FormatExpr)
	assert.Equal(t, "mp4", opts.MergeContainer)
	assert.False(t, opts.ExtractAudio)
}

func TestBuildVideoDefaultSelection(t *testing.T) {
	opts := selector.Build(domain.Preferences{})

	assert.Equal(t, "bestvideo+bestaudio/best", opts.FormatExpr)
	assert.Equal(t, "mp4", opts.MergeContainer)
}

func TestBuildVideoHeightCeiling(t *testing.T) {
	opts := selector.Build(domain.Preferences{
		FormatID:     "22",
		VideoQuality: "720",
	})

	assert.Equal(t,
		"22[height<=?720]/bestvideo[height<=?720]+bestaudio/best[height<=?720]",
		opts.FormatExpr,
		"all three fallback tiers carry the height bound")
}

func TestBuildVideoInvalidQualityFallsBack(t *testing.T) {
	opts := selector.Build(domain.Preferences{
		FormatID:     "22",
		VideoQuality: "abc",
	})

	assert.Equal(t, "22", opts.FormatExpr, "unparseable quality degrades to the unbounded base")
}

func TestBuildSubtitles(t *testing.T) {
	opts := selector.Build(domain.Preferences{
		FormatID:       "22",
		EmbedSubtitles: true,
	})

	assert.True(t, opts.EmbedSubtitles)
	assert.Equal(t, []string{"en"}, opts.SubtitleLangs)
}
