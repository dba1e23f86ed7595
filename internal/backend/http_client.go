package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heimdex/heimdex-editor/internal/logging"
)

// UploadField is the multipart field carrying the media file.
const UploadField = "video"

// HTTPClient calls a backend that implements the upload/thumbnail/export
// contract over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient builds a client for baseURL. A zero timeout means requests
// only end when their context does.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *HTTPClient) Upload(ctx context.Context, name string, media io.Reader) (*UploadResponse, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(UploadField, name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, media); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.Info("uploading media to backend", "name", name)

	var out UploadResponse
	if err := c.do(req, OpUpload, &out); err != nil {
		pr.Close()
		return nil, err
	}
	if out.URL == "" || out.Filename == "" {
		return nil, &NetworkError{Op: OpUpload, StatusCode: http.StatusOK, Body: "response missing url or filename"}
	}
	return &out, nil
}

func (c *HTTPClient) Thumbnails(ctx context.Context, filename string) ([]string, error) {
	endpoint := c.baseURL + "/thumbnails/" + url.PathEscape(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var out ThumbnailsResponse
	if err := c.do(req, OpThumbnails, &out); err != nil {
		return nil, err
	}
	if out.Thumbnails == nil {
		out.Thumbnails = []string{}
	}
	return out.Thumbnails, nil
}

func (c *HTTPClient) Export(ctx context.Context, payload ExportRequest) (*ExportResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal export payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/export", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("requesting export",
		"filename", payload.Filename,
		"clip_count", len(payload.Clips),
		"body_bytes", len(body),
	)

	var out ExportResponse
	if err := c.do(req, OpExport, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends req and decodes a 2xx JSON body into out. An empty 2xx body is
// accepted.
func (c *HTTPClient) do(req *http.Request, op string, out interface{}) error {
	id := logging.RequestIDFromContext(req.Context())
	if id == "" {
		id = uuid.NewString()[:8]
	}
	req.Header.Set(logging.RequestIDHeader, id)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)
var _ Client = (*StubClient)(nil)
