// Package backend talks to the media backend that stores uploads, renders
// thumbnails and exports clip ranges.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const (
	OpUpload     = "upload"
	OpThumbnails = "thumbnails"
	OpExport     = "export"
)

// Client is the upload/export backend as seen by an editor session.
type Client interface {
	Upload(ctx context.Context, name string, media io.Reader) (*UploadResponse, error)
	Thumbnails(ctx context.Context, filename string) ([]string, error)
	Export(ctx context.Context, req ExportRequest) (*ExportResponse, error)
}

// NetworkError is any failed round trip to the backend: a transport error or
// a non-2xx status.
type NetworkError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true for server errors (5xx) and transport errors.
// Client errors (4xx) are considered permanent.
func (e *NetworkError) IsRetryable() bool {
	return e.Err != nil || e.StatusCode >= http.StatusInternalServerError
}

// IsNetworkError reports whether err came from a backend round trip.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// Retryable reports whether err is a backend failure worth retrying.
func Retryable(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr) && netErr.IsRetryable()
}

// StubClient accepts everything and returns fixed data. The editor uses it
// when the backend URL is "stub", for demos without a media backend.
type StubClient struct {
	logger *slog.Logger
}

func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{logger: logger}
}

func (c *StubClient) Upload(ctx context.Context, name string, media io.Reader) (*UploadResponse, error) {
	n, _ := io.Copy(io.Discard, media)
	c.logger.Info("backend stub: upload requested", "name", name, "bytes", n)
	return &UploadResponse{URL: "stub://media/" + name, Filename: name}, nil
}

func (c *StubClient) Thumbnails(ctx context.Context, filename string) ([]string, error) {
	c.logger.Info("backend stub: thumbnails requested", "filename", filename)
	return []string{}, nil
}

func (c *StubClient) Export(ctx context.Context, req ExportRequest) (*ExportResponse, error) {
	c.logger.Info("backend stub: export requested", "filename", req.Filename, "clip_count", len(req.Clips))
	return &ExportResponse{Status: "ok"}, nil
}
