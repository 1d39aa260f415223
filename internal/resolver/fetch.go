package resolver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/govdl/govdl/internal/domain"
)

// Output filenames are namespaced by resolver id + format id so concurrent
// jobs in the shared out dir never collide.
const outputTemplate = "%(id)s_%(format_id)s.%(ext)s"

// Tagged line protocol on the subprocess output streams. The progress
// template emits one JSON line per tick; the print directive emits a single
// JSON result line after the final file is in place.
const (
	progressTag = "GOVDL-PROGRESS:"
	resultTag   = "GOVDL-RESULT:"

	progressTemplate = "download:" + progressTag +
		`{"status":"%(progress.status)s",` +
		`"downloaded_bytes":%(progress.downloaded_bytes|0)d,` +
		`"total_bytes":%(progress.total_bytes,progress.total_bytes_estimate|0)d,` +
		`"speed":"%(progress._speed_str|)s",` +
		`"eta":"%(progress._eta_str|)s",` +
		`"filename":%(progress.filename)j}`

	resultTemplate = "after_move:" + resultTag +
		`{"title":%(title)j,"ext":%(ext)j,"filepath":%(filepath)j}`

	// How many unrecognized output lines to keep for error reporting.
	tailLines = 20
)

// Fetch runs one resolver subprocess to completion, invoking the progress
// callback inline for every parsed tick. It blocks for the full transfer and
// postprocessing; cancelling the context kills the subprocess.
func (y *YtDlp) Fetch(ctx context.Context, url string, opts domain.FetchOptions, progress domain.ProgressFunc) (*domain.FetchResult, error) {
	args := y.fetchArgs(url, opts)
	y.log.Debug("resolver fetch: %s %s", y.binary, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, y.binary, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start resolver: %w", err)
	}

	p := &outputParser{progress: progress}

	// Progress lines land on one stream, diagnostics on the other; which is
	// which depends on the resolver's quiet heuristics, so both get the same
	// treatment.
	var wg sync.WaitGroup
	for _, pipe := range []io.Reader{stdout, stderr} {
		wg.Add(1)
		go func(r io.Reader) {
			defer wg.Done()
			scanner := bufio.NewScanner(r)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				p.handleLine(scanner.Text())
			}
		}(pipe)
	}
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.ResolverError{Message: p.tailText()}
	}

	result := p.result()
	if result == nil {
		return nil, fmt.Errorf("resolver reported success but produced no result: %s", p.tailText())
	}

	return result, nil
}

func (y *YtDlp) fetchArgs(url string, opts domain.FetchOptions) []string {
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"--force-overwrites",
		"--newline",
		"--progress",
		"-o", filepath.Join(y.outDir, outputTemplate),
		"--progress-template", progressTemplate,
		"--print", resultTemplate,
	}

	if opts.FormatExpr != "" {
		args = append(args, "-f", opts.FormatExpr)
	}

	if opts.ExtractAudio {
		args = append(args, "-x")
		if opts.AudioFormat != "" {
			// --audio-quality 0 is the resolver's best setting for the
			// requested codec.
			args = append(args, "--audio-format", opts.AudioFormat, "--audio-quality", "0")
		}
	}

	if opts.MergeContainer != "" {
		args = append(args, "--merge-output-format", opts.MergeContainer)
	}

	if opts.EmbedSubtitles {
		args = append(args, "--write-subs", "--embed-subs")
		if len(opts.SubtitleLangs) > 0 {
			args = append(args, "--sub-langs", strings.Join(opts.SubtitleLangs, ","))
		}
	}

	if y.cookiesFile != "" {
		args = append(args, "--cookies", y.cookiesFile)
	}

	return append(args, url)
}

// outputParser demultiplexes the tagged line protocol. Both stream scanners
// feed it, so its state is lock-protected.
type outputParser struct {
	mu       sync.Mutex
	progress domain.ProgressFunc
	res      *domain.FetchResult
	tail     []string
}

func (p *outputParser) handleLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	if payload, ok := strings.CutPrefix(line, progressTag); ok {
		var evt domain.ProgressEvent
		if err := json.Unmarshal([]byte(payload), &evt); err != nil {
			return // malformed tick, skip it
		}
		if p.progress != nil {
			p.progress(evt)
		}
		return
	}

	if payload, ok := strings.CutPrefix(line, resultTag); ok {
		var res domain.FetchResult
		if err := json.Unmarshal([]byte(payload), &res); err == nil {
			p.mu.Lock()
			p.res = &res
			p.mu.Unlock()
		}
		return
	}

	p.mu.Lock()
	p.tail = append(p.tail, line)
	if len(p.tail) > tailLines {
		p.tail = p.tail[len(p.tail)-tailLines:]
	}
	p.mu.Unlock()
}

func (p *outputParser) result() *domain.FetchResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.res
}

func (p *outputParser) tailText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.tail) == 0 {
		return "resolver exited with an error and no output"
	}
	return strings.Join(p.tail, "\n")
}
