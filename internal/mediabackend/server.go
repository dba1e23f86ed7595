// Package mediabackend is a local implementation of the upload, thumbnail
// and export backend the editor talks to. It stores uploads on disk, extracts
// thumbnails and trims clips with ffmpeg, and hands exported clips to a
// Publisher.
package mediabackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/heimdex-editor/internal/api"
	"github.com/heimdex/heimdex-editor/internal/backend"
	"github.com/heimdex/heimdex-editor/internal/export"
	"github.com/heimdex/heimdex-editor/internal/playback"
)

// DefaultMaxUploadBytes caps a single upload.
const DefaultMaxUploadBytes = 4 << 30

type Config struct {
	Port           int
	PublicURL      string
	Store          *Store
	FFmpeg         *FFmpeg
	Publisher      Publisher
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Backend serves the media backend HTTP contract.
type Backend struct {
	cfg   Config
	media *playback.MediaServer

	// one extraction per file at a time
	thumbMu sync.Mutex
	thumbs  map[string]*sync.Mutex
}

func New(cfg Config) *Backend {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	cfg.PublicURL = strings.TrimSuffix(cfg.PublicURL, "/")
	return &Backend{
		cfg:    cfg,
		media:  playback.NewMediaServer(cfg.Store.Root(), cfg.Logger),
		thumbs: make(map[string]*sync.Mutex),
	}
}

func (b *Backend) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(api.RequestIDMiddleware())
	r.Use(api.RecoveryMiddleware(b.cfg.Logger))
	r.Use(api.LoggingMiddleware(b.cfg.Logger))
	r.Use(api.CORS(nil))

	r.Post("/upload", b.uploadHandler)
	r.Get("/thumbnails/{filename}", b.thumbnailsHandler)
	r.Post("/export", b.exportHandler)
	r.Get("/media/*", b.mediaHandler)
	r.Head("/media/*", b.mediaHandler)

	return r
}

// NewServer wraps the router in an http.Server bound to loopback.
func (b *Backend) NewServer() *http.Server {
	return &http.Server{
		Addr:        fmt.Sprintf("127.0.0.1:%d", b.cfg.Port),
		Handler:     b.Router(),
		ReadTimeout: 15 * time.Minute,
		IdleTimeout: 60 * time.Second,
	}
}

func (b *Backend) mediaURL(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return b.cfg.PublicURL + "/media/" + strings.Join(parts, "/")
}

func (b *Backend) uploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, b.cfg.MaxUploadBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "multipart body required", "BAD_REQUEST")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			api.WriteError(w, http.StatusBadRequest, "video field is required", "BAD_REQUEST")
			return
		}
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid multipart body", "BAD_REQUEST")
			return
		}
		if part.FormName() != backend.UploadField {
			part.Close()
			continue
		}

		stored, err := b.cfg.Store.Save(part.FileName(), part)
		part.Close()
		switch {
		case errors.Is(err, ErrUnsupportedMedia):
			api.WriteError(w, http.StatusUnsupportedMediaType, err.Error(), "UNSUPPORTED_MEDIA")
			return
		case err != nil:
			b.cfg.Logger.Error("upload failed", "error", err)
			api.WriteError(w, http.StatusInternalServerError, "failed to store upload", "INTERNAL_ERROR")
			return
		}

		b.cfg.Logger.Info("media uploaded", "filename", stored)
		api.WriteJSON(w, http.StatusOK, backend.UploadResponse{
			URL:      b.mediaURL(stored),
			Filename: stored,
		})
		return
	}
}

func (b *Backend) thumbnailsHandler(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	thumbs, err := b.ensureThumbnails(r.Context(), filename)
	switch {
	case errors.Is(err, ErrMediaNotFound):
		api.WriteError(w, http.StatusNotFound, "media not found", "NOT_FOUND")
		return
	case err != nil:
		b.cfg.Logger.Error("thumbnail extraction failed", "filename", filename, "error", err)
		api.WriteError(w, http.StatusInternalServerError, "thumbnail extraction failed", "INTERNAL_ERROR")
		return
	}

	urls := make([]string, len(thumbs))
	for i, t := range thumbs {
		urls[i] = b.mediaURL(t)
	}
	api.WriteJSON(w, http.StatusOK, backend.ThumbnailsResponse{Thumbnails: urls})
}

// ensureThumbnails extracts thumbnails on first request and reuses them
// afterwards.
func (b *Backend) ensureThumbnails(ctx context.Context, filename string) ([]string, error) {
	src, err := b.cfg.Store.Path(filename)
	if err != nil {
		return nil, err
	}

	mu := b.thumbLock(filename)
	mu.Lock()
	defer mu.Unlock()

	if thumbs, err := b.cfg.Store.Thumbnails(filename); err != nil || len(thumbs) > 0 {
		return thumbs, err
	}

	dir := b.cfg.Store.ThumbnailDir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if err := b.cfg.FFmpeg.Thumbnails(ctx, src, dir); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return b.cfg.Store.Thumbnails(filename)
}

func (b *Backend) thumbLock(filename string) *sync.Mutex {
	b.thumbMu.Lock()
	defer b.thumbMu.Unlock()
	mu, ok := b.thumbs[filename]
	if !ok {
		mu = &sync.Mutex{}
		b.thumbs[filename] = mu
	}
	return mu
}

func (b *Backend) exportHandler(w http.ResponseWriter, r *http.Request) {
	var req backend.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	ranges := make([]export.Range, len(req.Clips))
	for i, c := range req.Clips {
		ranges[i] = export.Range{Start: c.Start, End: c.End}
	}
	if err := export.ValidateRanges(ranges); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}

	src, err := b.cfg.Store.Path(req.Filename)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "media not found", "NOT_FOUND")
		return
	}

	outputs, err := b.export(r.Context(), src, req.Filename, ranges)
	if err != nil {
		b.cfg.Logger.Error("export failed", "filename", req.Filename, "error", err)
		api.WriteError(w, http.StatusInternalServerError, "export failed", "EXPORT_FAILED")
		return
	}

	b.cfg.Logger.Info("export complete", "filename", req.Filename, "clip_count", len(outputs))
	api.WriteJSON(w, http.StatusOK, backend.ExportResponse{Status: "ok", Outputs: outputs})
}

// export trims every range into a scratch dir and publishes the results in
// order. Nothing is published unless every trim succeeds.
func (b *Backend) export(ctx context.Context, src, filename string, ranges []export.Range) ([]string, error) {
	work, err := os.MkdirTemp("", "heimdex-export-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(work)

	ext := filepath.Ext(filename)
	locals := make([]string, len(ranges))
	for i, rg := range ranges {
		locals[i] = filepath.Join(work, export.ClipName(filename, i)+ext)
		if err := b.cfg.FFmpeg.Trim(ctx, src, rg.Start, rg.End, locals[i]); err != nil {
			return nil, fmt.Errorf("clip %d: %w", i+1, err)
		}
	}

	outputs := make([]string, len(locals))
	for i, local := range locals {
		out, err := b.cfg.Publisher.Publish(ctx, local, filepath.Base(local))
		if err != nil {
			return nil, err
		}
		outputs[i] = out
	}
	return outputs, nil
}

func (b *Backend) mediaHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if err := b.media.ServeFile(w, r, name); err != nil {
		b.cfg.Logger.Error("media serve error", "name", name, "error", err)
	}
}
