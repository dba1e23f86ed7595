package mediabackend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
)

// fakeRunner records ffmpeg invocations and writes the files ffmpeg would.
type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	err    error
	thumbs int
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	out := args[len(args)-1]
	if strings.Contains(out, "%04d") {
		for i := 1; i <= f.thumbs; i++ {
			if err := os.WriteFile(fmt.Sprintf(out, i), []byte("jpeg"), 0o644); err != nil {
				return err
			}
		}
		return nil
	}
	return os.WriteFile(out, []byte("clip"), 0o644)
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	return []byte("ffmpeg version test"), f.err
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestFFmpeg_Trim(t *testing.T) {
	runner := &fakeRunner{}
	ff := NewFFmpeg(WithFFmpegPath("/opt/bin/ffmpeg"), WithCommandRunner(runner))

	out := filepath.Join(t.TempDir(), "clip.mp4")
	if err := ff.Trim(context.Background(), "/media/talk.mp4", 1.5, 12, out); err != nil {
		t.Fatalf("Trim() error = %v", err)
	}

	want := []string{"/opt/bin/ffmpeg", "-i", "/media/talk.mp4", "-ss", "1.500", "-to", "12.000", "-c", "copy", "-y", out}
	if !reflect.DeepEqual(runner.calls[0], want) {
		t.Errorf("args = %v, want %v", runner.calls[0], want)
	}
}

func TestFFmpeg_Thumbnails(t *testing.T) {
	runner := &fakeRunner{thumbs: 2}
	ff := NewFFmpeg(WithCommandRunner(runner))
	dir := t.TempDir()

	if err := ff.Thumbnails(context.Background(), "in.mp4", dir); err != nil {
		t.Fatalf("Thumbnails() error = %v", err)
	}

	args := runner.calls[0]
	if args[0] != "ffmpeg" {
		t.Errorf("binary = %q, want default ffmpeg", args[0])
	}
	if !strings.HasPrefix(args[4], "fps=1") {
		t.Errorf("filter = %q, want fps=1", args[4])
	}
	if got := args[len(args)-1]; got != filepath.Join(dir, ThumbnailPattern) {
		t.Errorf("output = %q", got)
	}
}

func TestFFmpeg_Errors(t *testing.T) {
	boom := errors.New("exit status 1")
	ff := NewFFmpeg(WithCommandRunner(&fakeRunner{err: boom}))

	if err := ff.Trim(context.Background(), "a.mp4", 0, 1, "b.mp4"); !errors.Is(err, boom) {
		t.Errorf("Trim() error = %v, want wrapped runner error", err)
	}
	if err := ff.Thumbnails(context.Background(), "a.mp4", t.TempDir()); !errors.Is(err, boom) {
		t.Errorf("Thumbnails() error = %v", err)
	}
	if err := ff.VerifyInstalled(context.Background()); err == nil {
		t.Error("VerifyInstalled() expected error")
	}
}

func TestTailWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &tailWriter{buf: &buf, limit: 4}

	w.Write([]byte("abc"))
	w.Write([]byte("defgh"))

	if buf.String() != "efgh" {
		t.Errorf("tail = %q, want efgh", buf.String())
	}
}
