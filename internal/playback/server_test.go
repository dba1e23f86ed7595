package playback

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeMedia(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestMediaServer_WholeFile(t *testing.T) {
	dir := t.TempDir()
	writeMedia(t, dir, "clip.mp4", "0123456789")
	srv := NewMediaServer(dir, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/media/clip.mp4", nil)
	if err := srv.ServeFile(rr, req, "clip.mp4"); err != nil {
		t.Fatalf("ServeFile error = %v", err)
	}

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "0123456789" {
		t.Fatalf("body = %q", rr.Body.String())
	}
	if rr.Header().Get("Content-Type") != "video/mp4" {
		t.Fatalf("content type = %q, want video/mp4", rr.Header().Get("Content-Type"))
	}
}

func TestMediaServer_PartialContent(t *testing.T) {
	dir := t.TempDir()
	writeMedia(t, dir, "thumbs/a/0001.jpg", "abcdefghij")
	srv := NewMediaServer(dir, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Range", "bytes=2-5")
	if err := srv.ServeFile(rr, req, "thumbs/a/0001.jpg"); err != nil {
		t.Fatalf("ServeFile error = %v", err)
	}

	if rr.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rr.Code)
	}
	if rr.Body.String() != "cdef" {
		t.Fatalf("body = %q, want cdef", rr.Body.String())
	}
	if got := rr.Header().Get("Content-Range"); got != "bytes 2-5/10" {
		t.Fatalf("Content-Range = %q", got)
	}
}

func TestMediaServer_Unsatisfiable(t *testing.T) {
	dir := t.TempDir()
	writeMedia(t, dir, "clip.mp4", "abc")
	srv := NewMediaServer(dir, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Range", "bytes=10-")
	srv.ServeFile(rr, req, "clip.mp4")

	if rr.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("status = %d, want 416", rr.Code)
	}
}

func TestMediaServer_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	srv := NewMediaServer(filepath.Join(dir, "media"), nil)
	writeMedia(t, dir, "secret.txt", "nope")

	for _, name := range []string{"../secret.txt", "", "a/../../secret.txt"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		srv.ServeFile(rr, req, name)
		if rr.Code != http.StatusNotFound {
			t.Errorf("ServeFile(%q) status = %d, want 404", name, rr.Code)
		}
	}
}
