package mediabackend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heimdex/heimdex-editor/internal/backend"
)

type testBackend struct {
	server  *httptest.Server
	runner  *fakeRunner
	store   *Store
	exports string
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	root := t.TempDir()

	store, err := NewStore(filepath.Join(root, "media"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	pub, err := NewFSPublisher(filepath.Join(root, "exports"))
	if err != nil {
		t.Fatalf("NewFSPublisher() error = %v", err)
	}

	runner := &fakeRunner{thumbs: 3}
	tb := &testBackend{runner: runner, store: store, exports: filepath.Join(root, "exports")}

	mux := http.NewServeMux()
	tb.server = httptest.NewServer(mux)
	t.Cleanup(tb.server.Close)

	b := New(Config{
		PublicURL: tb.server.URL + "/",
		Store:     store,
		FFmpeg:    NewFFmpeg(WithCommandRunner(runner)),
		Publisher: pub,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	mux.Handle("/", b.Router())
	return tb
}

func (tb *testBackend) client() *backend.HTTPClient {
	return backend.NewHTTPClient(tb.server.URL, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBackend_UploadThumbnailsExport(t *testing.T) {
	tb := newTestBackend(t)
	client := tb.client()
	ctx := context.Background()

	up, err := client.Upload(ctx, "keynote.mp4", strings.NewReader("0123456789"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasSuffix(up.Filename, "_keynote.mp4") {
		t.Errorf("filename = %q", up.Filename)
	}
	if up.URL != tb.server.URL+"/media/"+up.Filename {
		t.Errorf("url = %q", up.URL)
	}

	thumbs, err := client.Thumbnails(ctx, up.Filename)
	if err != nil {
		t.Fatalf("Thumbnails() error = %v", err)
	}
	if len(thumbs) != 3 || !strings.HasSuffix(thumbs[0], "/thumb_0001.jpg") {
		t.Fatalf("thumbnails = %v", thumbs)
	}

	// second request reuses the extracted files
	if _, err := client.Thumbnails(ctx, up.Filename); err != nil {
		t.Fatalf("Thumbnails() second call error = %v", err)
	}
	if n := tb.runner.callCount(); n != 1 {
		t.Errorf("ffmpeg calls = %d, want 1", n)
	}

	resp, err := client.Export(ctx, backend.ExportRequest{
		Filename: up.Filename,
		Clips:    []backend.ExportClip{{Start: 0, End: 2}, {Start: 5, End: 9}},
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if resp.Status != "ok" || len(resp.Outputs) != 2 {
		t.Fatalf("export response = %+v", resp)
	}
	base := strings.TrimSuffix(up.Filename, ".mp4")
	if filepath.Base(resp.Outputs[1]) != base+"_clip_002.mp4" {
		t.Errorf("second output = %q", resp.Outputs[1])
	}
	for _, out := range resp.Outputs {
		if _, err := os.Stat(out); err != nil {
			t.Errorf("published file missing: %v", err)
		}
	}
}

func TestBackend_MediaServesRange(t *testing.T) {
	tb := newTestBackend(t)
	up, err := tb.client().Upload(context.Background(), "clip.mp4", strings.NewReader("0123456789"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, up.URL, nil)
	req.Header.Set("Range", "bytes=2-5")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET media error = %v", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusPartialContent || string(body) != "2345" {
		t.Errorf("range response = %d %q", res.StatusCode, body)
	}
	if got := res.Header.Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestBackend_Errors(t *testing.T) {
	tb := newTestBackend(t)
	client := tb.client()
	ctx := context.Background()

	_, err := client.Upload(ctx, "notes.txt", strings.NewReader("x"))
	var netErr *backend.NetworkError
	if !errors.As(err, &netErr) || netErr.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("non-video upload error = %v", err)
	}

	if _, err := client.Thumbnails(ctx, "missing.mp4"); !errors.As(err, &netErr) || netErr.StatusCode != http.StatusNotFound {
		t.Errorf("missing thumbnails error = %v", err)
	}

	tests := []struct {
		name string
		req  backend.ExportRequest
		want int
	}{
		{"no clips", backend.ExportRequest{Filename: "x.mp4"}, http.StatusBadRequest},
		{"inverted clip", backend.ExportRequest{Filename: "x.mp4", Clips: []backend.ExportClip{{Start: 3, End: 1}}}, http.StatusBadRequest},
		{"unknown media", backend.ExportRequest{Filename: "x.mp4", Clips: []backend.ExportClip{{Start: 0, End: 1}}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Export(ctx, tt.req)
			if !errors.As(err, &netErr) || netErr.StatusCode != tt.want {
				t.Errorf("Export() error = %v, want status %d", err, tt.want)
			}
		})
	}
}

func TestBackend_UploadRequiresVideoField(t *testing.T) {
	tb := newTestBackend(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "talk.mp4")
	fw.Write([]byte("x"))
	mw.Close()

	res, err := http.Post(tb.server.URL+"/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer res.Body.Close()

	var body map[string]string
	json.NewDecoder(res.Body).Decode(&body)
	if res.StatusCode != http.StatusBadRequest || body["code"] != "BAD_REQUEST" {
		t.Errorf("response = %d %v", res.StatusCode, body)
	}
}

func TestBackend_ExportTrimFailurePublishesNothing(t *testing.T) {
	tb := newTestBackend(t)
	up, err := tb.client().Upload(context.Background(), "talk.mp4", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	tb.runner.err = io.ErrUnexpectedEOF
	_, err = tb.client().Export(context.Background(), backend.ExportRequest{
		Filename: up.Filename,
		Clips:    []backend.ExportClip{{Start: 0, End: 1}},
	})
	if err == nil {
		t.Fatal("expected export error")
	}

	entries, _ := os.ReadDir(tb.exports)
	if len(entries) != 0 {
		t.Errorf("published %d files after failed export", len(entries))
	}
}
