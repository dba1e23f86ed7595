package playback

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrOutsideRoot = errors.New("path escapes media root")

func init() {
	// not in Go's builtin table; don't depend on the host's mime.types
	_ = mime.AddExtensionType(".mp4", "video/mp4")
	_ = mime.AddExtensionType(".mov", "video/quicktime")
	_ = mime.AddExtensionType(".mkv", "video/x-matroska")
}

// MediaServer streams files below a root directory, honouring Range requests
// so a browser player can scrub.
type MediaServer struct {
	root   string
	logger *slog.Logger
}

func NewMediaServer(root string, logger *slog.Logger) *MediaServer {
	return &MediaServer{root: root, logger: logger}
}

// Resolve maps a slash-separated name to a path inside the root.
func (s *MediaServer) Resolve(name string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.FromSlash(name))
	if cleaned == string(filepath.Separator) || strings.Contains(name, "..") {
		return "", ErrOutsideRoot
	}
	return filepath.Join(s.root, cleaned), nil
}

func (s *MediaServer) ServeFile(w http.ResponseWriter, r *http.Request, name string) error {
	path, err := s.Resolve(name)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "file not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("failed to open media: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat media: %w", err)
	}
	if stat.IsDir() {
		http.Error(w, "file not found", http.StatusNotFound)
		return nil
	}

	size := stat.Size()
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	span, partial, err := ParseRange(r.Header.Get("Range"), size)
	switch {
	case errors.Is(err, ErrUnsatisfiable):
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	case err != nil:
		// malformed ranges fall back to the whole file
		partial = false
	}

	if !partial {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		_, err = io.Copy(w, file)
		return err
	}

	w.Header().Set("Content-Length", strconv.FormatInt(span.Length(), 10))
	w.Header().Set("Content-Range", span.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := file.Seek(span.Start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	_, err = io.CopyN(w, file, span.Length())
	return err
}
