package mediabackend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
)

const maxStderrBytes = 8 * 1024

// CommandRunner runs external commands. Tests replace it to avoid ffmpeg.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner runs commands with os/exec and keeps the stderr tail in
// the returned error.
type ExecCommandRunner struct{}

func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &tailWriter{buf: &stderr, limit: maxStderrBytes}
	cmd.Stdout = io.Discard

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited %d: %s", filepath.Base(name), exitErr.ExitCode(), truncate(stderr.String(), 512))
		}
		return err
	}
	return nil
}

func (r *ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// FFmpeg extracts thumbnails and trims clips.
type FFmpeg struct {
	path   string
	runner CommandRunner
}

type FFmpegOption func(*FFmpeg)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) FFmpegOption {
	return func(f *FFmpeg) {
		if path != "" {
			f.path = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) FFmpegOption {
	return func(f *FFmpeg) {
		f.runner = runner
	}
}

func NewFFmpeg(opts ...FFmpegOption) *FFmpeg {
	f := &FFmpeg{
		path:   "ffmpeg",
		runner: &ExecCommandRunner{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ThumbnailPattern is the output pattern for one-per-second thumbnails.
const ThumbnailPattern = "thumb_%04d.jpg"

// Thumbnails writes one JPEG per second of input into outDir.
func (f *FFmpeg) Thumbnails(ctx context.Context, input, outDir string) error {
	args := []string{
		"-i", input,
		"-vf", "fps=1,scale=160:-2",
		"-q:v", "5",
		"-y",
		filepath.Join(outDir, ThumbnailPattern),
	}
	if err := f.runner.Run(ctx, f.path, args...); err != nil {
		return fmt.Errorf("ffmpeg thumbnails failed: %w", err)
	}
	return nil
}

// Trim copies [start, end) seconds of input to output without re-encoding.
func (f *FFmpeg) Trim(ctx context.Context, input string, start, end float64, output string) error {
	args := []string{
		"-i", input,
		"-ss", formatSeconds(start),
		"-to", formatSeconds(end),
		"-c", "copy",
		"-y",
		output,
	}
	if err := f.runner.Run(ctx, f.path, args...); err != nil {
		return fmt.Errorf("ffmpeg trim failed: %w", err)
	}
	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (f *FFmpeg) VerifyInstalled(ctx context.Context) error {
	if _, err := f.runner.Output(ctx, f.path, "-version"); err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// tailWriter keeps only the last limit bytes written.
type tailWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *tailWriter) Write(p []byte) (int, error) {
	n := len(p)
	w.buf.Write(p)
	if w.buf.Len() > w.limit {
		b := w.buf.Bytes()
		tail := append([]byte(nil), b[len(b)-w.limit:]...)
		w.buf.Reset()
		w.buf.Write(tail)
	}
	return n, nil
}
